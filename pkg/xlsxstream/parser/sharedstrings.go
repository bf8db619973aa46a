package parser

import (
	"bufio"
	"encoding/xml"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"sync"
)

// DefaultCacheLimit is the largest shared-string table held in memory.
const DefaultCacheLimit = 50000

// SharedStrings resolves shared-string indices. Tables up to the cache
// limit are loaded at open; larger ones, or ones that do not declare a
// count, are scanned on demand with a one-entry memo. A resolver is safe
// for concurrent use; lookups are serialized.
type SharedStrings struct {
	mu    sync.Mutex
	path  string
	log   *slog.Logger
	count int
	known bool
	cache []string

	file    *os.File
	decoder *xml.Decoder
	next    int

	memoIndex int
	memoValue string
	memoValid bool

	// scan statistics
	rewinds int
	scanned int
}

// OpenSharedStrings opens the shared-string part staged at path. An empty
// path yields a resolver with no entries.
func OpenSharedStrings(path string, limit int, log *slog.Logger) (*SharedStrings, error) {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	ss := &SharedStrings{path: path, log: log, known: path == ""}
	if path == "" {
		ss.cache = []string{}
		return ss, nil
	}
	if err := ss.openStream(); err != nil {
		return nil, err
	}
	if !ss.known || limit <= 0 || ss.count > limit {
		log.Debug("shared strings streamed", "path", path, "count", ss.count, "known", ss.known, "limit", limit)
		return ss, nil
	}

	ss.cache = make([]string, 0, ss.count)
	for {
		s, ok, err := ss.readItem()
		if err != nil {
			ss.closeStream()
			return nil, err
		}
		if !ok {
			break
		}
		ss.cache = append(ss.cache, s)
	}
	ss.closeStream()
	log.Debug("shared strings cached", "path", path, "count", len(ss.cache))
	return ss, nil
}

// openStream positions a fresh decoder just past the sst start element and
// records the declared count.
func (ss *SharedStrings) openStream() error {
	f, err := os.Open(ss.path)
	if err != nil {
		return fmt.Errorf("open shared strings: %w", err)
	}
	dec := xml.NewDecoder(bufio.NewReader(f))
	for {
		token, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			f.Close()
			return fmt.Errorf("read shared strings: %w", err)
		}
		if se, ok := token.(xml.StartElement); ok && se.Name.Local == "sst" {
			ss.readCount(se)
			break
		}
	}
	ss.file, ss.decoder, ss.next = f, dec, 0
	return nil
}

func (ss *SharedStrings) readCount(se xml.StartElement) {
	if ss.known {
		return
	}
	for _, name := range []string{"uniqueCount", "count"} {
		if n, err := strconv.Atoi(attrValue(se, name)); err == nil && n >= 0 {
			ss.count, ss.known = n, true
			return
		}
	}
}

// readItem returns the text of the next si element. ok is false once the
// table is exhausted.
func (ss *SharedStrings) readItem() (s string, ok bool, err error) {
	for {
		token, err := ss.decoder.Token()
		if err == io.EOF {
			return "", false, nil
		}
		if err != nil {
			return "", false, fmt.Errorf("read shared strings: %w", err)
		}
		switch t := token.(type) {
		case xml.StartElement:
			if t.Name.Local == "si" {
				s, err := readRichText(ss.decoder)
				if err != nil {
					return "", false, fmt.Errorf("read shared string %d: %w", ss.next, err)
				}
				return s, true, nil
			}
		case xml.EndElement:
			if t.Name.Local == "sst" {
				return "", false, nil
			}
		}
	}
}

func (ss *SharedStrings) closeStream() {
	if ss.file != nil {
		ss.file.Close()
		ss.file, ss.decoder = nil, nil
	}
}

// Resolve returns the string at index i. Indices outside the table
// resolve to the empty string.
func (ss *SharedStrings) Resolve(i int) (string, error) {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	if i < 0 {
		return "", nil
	}
	if ss.cache != nil {
		if i >= len(ss.cache) {
			return "", nil
		}
		return ss.cache[i], nil
	}
	if ss.known && i >= ss.count {
		return "", nil
	}
	if ss.memoValid && ss.memoIndex == i {
		return ss.memoValue, nil
	}
	if ss.decoder == nil || i < ss.next {
		ss.closeStream()
		if err := ss.openStream(); err != nil {
			return "", err
		}
		ss.rewinds++
	}
	for {
		s, ok, err := ss.readItem()
		if err != nil {
			return "", err
		}
		if !ok {
			ss.count, ss.known = ss.next, true
			return "", nil
		}
		idx := ss.next
		ss.next++
		ss.scanned++
		if idx == i {
			ss.memoIndex, ss.memoValue, ss.memoValid = i, s, true
			return s, nil
		}
	}
}

// Cached reports whether the whole table is held in memory.
func (ss *SharedStrings) Cached() bool {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	return ss.cache != nil
}

// Count returns the declared entry count, or -1 when the part declares
// none and the table has not been scanned to its end.
func (ss *SharedStrings) Count() int {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	switch {
	case ss.cache != nil:
		return len(ss.cache)
	case ss.known:
		return ss.count
	}
	return -1
}

// Close releases the streaming file handle. It is safe to call twice.
func (ss *SharedStrings) Close() error {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	ss.closeStream()
	ss.memoValid = false
	return nil
}
