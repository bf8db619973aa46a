package xlsxstream

import (
	"github.com/ukaji3/xlsxstream-go/pkg/xlsxstream/models"
	"github.com/ukaji3/xlsxstream-go/pkg/xlsxstream/parser"
)

// Sheet is a worksheet of an open workbook. It embeds a row cursor, so
//
//	for sheet.Next() {
//		row := sheet.Row()
//	}
//
// streams its rows. A Sheet's cursor is not safe for concurrent use; take
// an independent one with Cursor.
type Sheet struct {
	*parser.RowIterator

	wb    *Workbook
	name  string
	state string
	part  int
}

// Name returns the sheet name.
func (s *Sheet) Name() string { return s.name }

// Visible reports whether the sheet is neither hidden nor very hidden.
func (s *Sheet) Visible() bool { return s.state == "" || s.state == "visible" }

// PartNumber returns N of the sheet's xl/worksheets/sheetN.xml part.
func (s *Sheet) PartNumber() int { return s.part }

// PrintAreas returns the print areas defined for the sheet.
func (s *Sheet) PrintAreas() []models.PrintArea { return s.wb.areas[s.name] }

// Cursor returns a new iterator over the sheet that shares the workbook's
// resolver and style table. The workbook closes it on Close.
func (s *Sheet) Cursor() (*parser.RowIterator, error) {
	return s.wb.newCursor(s.Path())
}
