package xlsxstream

import (
	"bytes"
	"log/slog"
	"strings"
	"sync"

	"github.com/ukaji3/xlsxstream-go/pkg/xlsxstream/models"
	"github.com/ukaji3/xlsxstream-go/pkg/xlsxstream/parser"
)

// Workbook is an open xlsx package. It owns the staged worksheet files,
// the shared-string resolver and the style table shared by its sheets.
type Workbook struct {
	path    string
	opts    Options
	log     *slog.Logger
	archive *archive
	strings *parser.SharedStrings
	styles  *parser.StyleTable
	sheets  []*Sheet
	areas   map[string][]models.PrintArea

	mu      sync.Mutex
	cursors []*parser.RowIterator
	closed  bool
}

// Open opens the workbook at path. The returned workbook must be closed to
// remove its staging directory.
func Open(path string, opts Options) (*Workbook, error) {
	log := opts.logger()
	arc, err := openArchive(path, opts.StagingRoot(), log)
	if err != nil {
		return nil, err
	}

	ss, err := parser.OpenSharedStrings(arc.sharedStrings, opts.CacheLimit(), log)
	if err != nil {
		arc.cleanup()
		return nil, &FormatError{Path: path, Part: sharedStringsPart, Reason: "unreadable shared strings", Err: err}
	}

	styleOpts := parser.StyleOptions{Symbols: opts.NumberSymbols(), DateAsTime: opts.DateAsTime}
	st := parser.NewStyleTable(styleOpts)
	if arc.styles != nil {
		if st, err = parser.ParseStyles(bytes.NewReader(arc.styles), styleOpts); err != nil {
			ss.Close()
			arc.cleanup()
			return nil, &FormatError{Path: path, Part: stylesPart, Reason: "malformed styles", Err: err}
		}
	}
	log.Debug("workbook opened", "path", path, "sheets", len(arc.sheets), "cell_formats", st.Len(), "shared_strings_cached", ss.Cached())

	wb := &Workbook{
		path:    path,
		opts:    opts,
		log:     log,
		archive: arc,
		strings: ss,
		styles:  st,
		areas:   printAreas(arc.names, arc.sheets),
	}
	for _, entry := range arc.sheets {
		wb.sheets = append(wb.sheets, &Sheet{
			RowIterator: parser.NewRowIterator(entry.path, ss, st),
			wb:          wb,
			name:        entry.name,
			state:       entry.state,
			part:        entry.part,
		})
	}
	return wb, nil
}

// Path returns the source file.
func (wb *Workbook) Path() string { return wb.path }

// Sheets returns the worksheets in ascending part-number order.
func (wb *Workbook) Sheets() []*Sheet {
	return wb.sheets
}

// Sheet returns the sheet at zero-based index i.
func (wb *Workbook) Sheet(i int) (*Sheet, error) {
	if i < 0 || i >= len(wb.sheets) {
		return nil, &IndexError{Index: i, Count: len(wb.sheets)}
	}
	return wb.sheets[i], nil
}

// SheetByName returns the sheet with the given name, compared
// case-insensitively as Excel does.
func (wb *Workbook) SheetByName(name string) (*Sheet, error) {
	for _, s := range wb.sheets {
		if strings.EqualFold(s.name, name) {
			return s, nil
		}
	}
	return nil, ErrSheetNotFound
}

// SharedStrings returns the workbook's shared-string resolver.
func (wb *Workbook) SharedStrings() *parser.SharedStrings { return wb.strings }

// Styles returns the workbook's style table.
func (wb *Workbook) Styles() *parser.StyleTable { return wb.styles }

// Close releases every cursor and removes the staged files. It is safe to
// call more than once.
func (wb *Workbook) Close() error {
	wb.mu.Lock()
	defer wb.mu.Unlock()
	if wb.closed {
		return nil
	}
	wb.closed = true

	var firstErr error
	for _, s := range wb.sheets {
		if err := s.RowIterator.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	for _, c := range wb.cursors {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	wb.cursors = nil
	if err := wb.strings.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	wb.archive.cleanup()
	return firstErr
}

func (wb *Workbook) newCursor(path string) (*parser.RowIterator, error) {
	wb.mu.Lock()
	defer wb.mu.Unlock()
	if wb.closed {
		return nil, ErrClosed
	}
	it := parser.NewRowIterator(path, wb.strings, wb.styles)
	wb.cursors = append(wb.cursors, it)
	return it, nil
}
