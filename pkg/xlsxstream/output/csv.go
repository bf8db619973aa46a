package output

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"

	"github.com/ukaji3/xlsxstream-go/pkg/xlsxstream/parser"
)

// CSVWriter streams rows as CSV records, optionally transcoding the output
// from UTF-8 into another character set.
type CSVWriter struct {
	w      *csv.Writer
	closer io.Closer
}

// NewCSVWriter wraps w. encoding is a WHATWG label such as "shift_jis" or
// "windows-1252"; empty or "utf-8" writes UTF-8 unchanged.
func NewCSVWriter(w io.Writer, encoding string) (*CSVWriter, error) {
	cw := &CSVWriter{}
	if encoding != "" && !strings.EqualFold(encoding, "utf-8") && !strings.EqualFold(encoding, "utf8") {
		enc, err := htmlindex.Get(encoding)
		if err != nil {
			return nil, fmt.Errorf("unknown output encoding %q: %w", encoding, err)
		}
		tw := transform.NewWriter(w, enc.NewEncoder())
		cw.closer = tw
		w = tw
	}
	cw.w = csv.NewWriter(w)
	return cw, nil
}

// WriteRow writes one row as a record.
func (cw *CSVWriter) WriteRow(row parser.Row) error {
	return cw.w.Write(row.Strings())
}

// WriteLine writes a single-field record such as a sheet separator.
func (cw *CSVWriter) WriteLine(s string) error {
	return cw.w.Write([]string{s})
}

// Close flushes buffered records and the transcoder.
func (cw *CSVWriter) Close() error {
	cw.w.Flush()
	if err := cw.w.Error(); err != nil {
		return err
	}
	if cw.closer != nil {
		return cw.closer.Close()
	}
	return nil
}
