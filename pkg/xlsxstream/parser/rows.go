package parser

import (
	"bufio"
	"encoding/xml"
	"fmt"
	"io"
	"iter"
	"os"
	"strconv"
	"strings"
)

type rowState int

const (
	stateBeforeFirstRow rowState = iota
	stateInRow
	stateAfterLastRow
)

// RowIterator streams the rows of a worksheet part. A new iterator is
// positioned before the first row; Next must be called before Row.
//
//	for it.Next() {
//		row := it.Row()
//	}
//	if err := it.Err(); err != nil {
//		...
//	}
type RowIterator struct {
	path    string
	strings *SharedStrings
	styles  *StyleTable

	file    *os.File
	decoder *xml.Decoder
	state   rowState
	row     Row
	rowNum  int
	seq     int
	err     error
}

// NewRowIterator returns an iterator over the worksheet staged at path.
// The file is opened on the first call to Next. ss and st may be nil.
func NewRowIterator(path string, ss *SharedStrings, st *StyleTable) *RowIterator {
	return &RowIterator{path: path, strings: ss, styles: st}
}

// Path returns the staged worksheet file.
func (it *RowIterator) Path() string { return it.path }

// Next advances to the next row. It returns false after the last row or
// on error; further calls keep returning false.
func (it *RowIterator) Next() bool {
	if it.state == stateAfterLastRow || it.err != nil {
		it.row = Row{}
		return false
	}
	if it.decoder == nil {
		if err := it.open(); err != nil {
			it.fail(err)
			return false
		}
	}
	for {
		token, err := it.decoder.Token()
		if err == io.EOF {
			it.finish()
			return false
		}
		if err != nil {
			it.fail(fmt.Errorf("read worksheet %s: %w", it.path, err))
			return false
		}
		se, ok := token.(xml.StartElement)
		if !ok || se.Name.Local != "row" {
			continue
		}
		if err := it.readRow(se); err != nil {
			it.fail(fmt.Errorf("read worksheet %s row %d: %w", it.path, it.rowNum, err))
			return false
		}
		it.state = stateInRow
		return true
	}
}

// Row returns the current row. It is empty before the first and after
// the last row.
func (it *RowIterator) Row() Row {
	if it.state != stateInRow {
		return Row{}
	}
	return it.row
}

// RowNumber returns the 1-based number of the current row, taken from its
// r attribute when present.
func (it *RowIterator) RowNumber() int {
	if it.state != stateInRow {
		return 0
	}
	return it.rowNum
}

// Err returns the first read error.
func (it *RowIterator) Err() error { return it.err }

// Rewind restarts iteration from before the first row.
func (it *RowIterator) Rewind() error {
	it.closeFile()
	it.state = stateBeforeFirstRow
	it.row, it.rowNum, it.seq, it.err = nil, 0, 0, nil
	if err := it.open(); err != nil {
		it.fail(err)
		return err
	}
	return nil
}

// All rewinds the iterator and yields every row with its row number.
// Check Err after the loop.
func (it *RowIterator) All() iter.Seq2[int, Row] {
	return func(yield func(int, Row) bool) {
		if err := it.Rewind(); err != nil {
			return
		}
		for it.Next() {
			if !yield(it.rowNum, it.row) {
				return
			}
		}
	}
}

// Close releases the worksheet file. The iterator is exhausted afterwards.
func (it *RowIterator) Close() error {
	err := it.closeFile()
	it.state = stateAfterLastRow
	it.row = Row{}
	return err
}

func (it *RowIterator) open() error {
	f, err := os.Open(it.path)
	if err != nil {
		return fmt.Errorf("open worksheet: %w", err)
	}
	it.file = f
	it.decoder = xml.NewDecoder(bufio.NewReader(f))
	return nil
}

func (it *RowIterator) closeFile() error {
	if it.file == nil {
		return nil
	}
	err := it.file.Close()
	it.file, it.decoder = nil, nil
	return err
}

func (it *RowIterator) finish() {
	it.closeFile()
	it.state = stateAfterLastRow
	it.row = Row{}
}

func (it *RowIterator) fail(err error) {
	it.err = err
	it.finish()
}

func (it *RowIterator) readRow(se xml.StartElement) error {
	it.seq++
	it.rowNum = it.seq
	if n, err := strconv.Atoi(attrValue(se, "r")); err == nil && n > 0 {
		it.rowNum = n
		it.seq = n
	}
	row := make(Row, spanWidth(attrValue(se, "spans")))
	for i := range row {
		row[i] = ""
	}

	col := -1
	for {
		token, err := it.decoder.Token()
		if err != nil {
			return err
		}
		switch t := token.(type) {
		case xml.StartElement:
			if t.Name.Local != "c" {
				if err := it.decoder.Skip(); err != nil {
					return err
				}
				continue
			}
			col, row, err = it.readCell(t, col, row)
			if err != nil {
				return err
			}
		case xml.EndElement:
			if t.Name.Local == "row" {
				it.row = row
				return nil
			}
		}
	}
}

// readCell decodes one c element into row. A cell without a usable
// reference takes the column after prev.
func (it *RowIterator) readCell(se xml.StartElement, prev int, row Row) (int, Row, error) {
	col := prev + 1
	if letters, _ := splitCellRef(attrValue(se, "r")); letters != "" {
		if idx, err := ColumnIndex(letters); err == nil {
			col = idx
		}
	}
	styleID, _ := strconv.Atoi(attrValue(se, "s"))
	cellType := attrValue(se, "t")

	var value string
	for {
		token, err := it.decoder.Token()
		if err != nil {
			return col, row, err
		}
		if end, ok := token.(xml.EndElement); ok && end.Name.Local == "c" {
			break
		}
		start, ok := token.(xml.StartElement)
		if !ok {
			continue
		}
		switch start.Name.Local {
		case "v":
			value, err = readElementText(it.decoder)
		case "is":
			value, err = readRichText(it.decoder)
		default:
			err = it.decoder.Skip()
		}
		if err != nil {
			return col, row, err
		}
	}

	if cellType == "s" && value != "" {
		idx, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return col, row, fmt.Errorf("shared string index %q: %w", value, err)
		}
		value = ""
		if it.strings != nil {
			if value, err = it.strings.Resolve(idx); err != nil {
				return col, row, err
			}
		}
	}

	for len(row) <= col {
		row = append(row, "")
	}
	if value == "" {
		return col, row, nil
	}
	if it.styles != nil {
		row[col] = it.styles.FormatValue(value, styleID)
	} else {
		row[col] = value
	}
	return col, row, nil
}

// spanWidth returns the highest column of a spans attribute such as
// "1:5" or "1:3 7:9".
func spanWidth(spans string) int {
	width := 0
	for _, span := range strings.Fields(spans) {
		_, upper, ok := strings.Cut(span, ":")
		if !ok {
			upper = span
		}
		if n, err := strconv.Atoi(upper); err == nil && n > width && n <= MaxColumns {
			width = n
		}
	}
	return width
}
