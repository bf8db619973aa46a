package parser

import (
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"sync"

	"github.com/ukaji3/xlsxstream-go/pkg/xlsxstream/numfmt"
)

// StyleOptions controls how formatted values are rendered.
type StyleOptions struct {
	Symbols numfmt.Symbols
	// DateAsTime renders date formats as time.Time instead of text.
	DateAsTime bool
}

// StyleTable maps cell style ids to number formats and renders raw values
// with them. Compiled formats are cached per number format id.
type StyleTable struct {
	xfs    []int
	custom map[int]string
	opts   StyleOptions

	mu      sync.Mutex
	formats map[int]*numfmt.Format
}

// NewStyleTable returns a table with no cell formats, used when a
// workbook has no styles part.
func NewStyleTable(opts StyleOptions) *StyleTable {
	defaults := numfmt.DefaultSymbols()
	if opts.Symbols.Decimal == "" {
		opts.Symbols.Decimal = defaults.Decimal
	}
	if opts.Symbols.Thousands == "" {
		opts.Symbols.Thousands = defaults.Thousands
	}
	return &StyleTable{
		custom:  make(map[int]string),
		opts:    opts,
		formats: make(map[int]*numfmt.Format),
	}
}

// ParseStyles reads the numFmts and cellXfs lists of a styles part.
// A cell format whose applyNumberFormat is off maps to General unless it
// already names General.
func ParseStyles(r io.Reader, opts StyleOptions) (*StyleTable, error) {
	st := NewStyleTable(opts)
	decoder := xml.NewDecoder(r)
	var inNumFmts, inCellXfs bool
	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse styles: %w", err)
		}
		switch t := token.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "numFmts":
				inNumFmts = true
			case "cellXfs":
				inCellXfs = true
			case "numFmt":
				if !inNumFmts {
					continue
				}
				id, err := strconv.Atoi(attrValue(t, "numFmtId"))
				if err != nil {
					continue
				}
				st.custom[id] = attrValue(t, "formatCode")
			case "xf":
				if !inCellXfs {
					continue
				}
				id, _ := strconv.Atoi(attrValue(t, "numFmtId"))
				apply := attrValue(t, "applyNumberFormat")
				if id != 0 && apply != "1" && apply != "true" {
					id = 0
				}
				st.xfs = append(st.xfs, id)
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "numFmts":
				inNumFmts = false
			case "cellXfs":
				inCellXfs = false
			}
		}
	}
	return st, nil
}

// NumFmtID returns the number format id of a cell style.
func (st *StyleTable) NumFmtID(styleID int) (int, bool) {
	if styleID == 0 && len(st.xfs) == 0 {
		return 0, true
	}
	if styleID < 0 || styleID >= len(st.xfs) {
		return 0, false
	}
	return st.xfs[styleID], true
}

// FormatCode returns the code of a number format id. Custom codes take
// precedence over the builtin table.
func (st *StyleTable) FormatCode(numFmtID int) string {
	if code, ok := st.custom[numFmtID]; ok {
		return code
	}
	code, _ := numfmt.Builtin(numFmtID)
	return code
}

// Len returns the number of cell formats.
func (st *StyleTable) Len() int { return len(st.xfs) }

// FormatValue renders a raw cell value with the number format of styleID.
// Non-numeric values and unknown style ids return raw unchanged; General
// yields a float64.
func (st *StyleTable) FormatValue(raw string, styleID int) any {
	v, ok := numfmt.ParseNumber(raw)
	if !ok {
		return raw
	}
	numFmtID, ok := st.NumFmtID(styleID)
	if !ok {
		return raw
	}
	if numFmtID == 0 {
		return v
	}
	f := st.format(numFmtID)
	if st.opts.DateAsTime {
		if rule, x := f.Section(v); rule.Kind == numfmt.KindDateTime {
			if t, ok := numfmt.SerialTime(x); ok {
				return t
			}
		}
	}
	return f.Render(raw)
}

func (st *StyleTable) format(numFmtID int) *numfmt.Format {
	st.mu.Lock()
	defer st.mu.Unlock()
	f, ok := st.formats[numFmtID]
	if !ok {
		f = numfmt.Compile(st.FormatCode(numFmtID), st.opts.Symbols)
		st.formats[numFmtID] = f
	}
	return f
}
