package models

// WorkbookData represents an extracted workbook.
type WorkbookData struct {
	// BookName is the file name of the workbook.
	BookName string `json:"book_name"`
	// Sheets lists the worksheets in part order.
	Sheets []SheetData `json:"sheets"`
}

// Sheet returns the sheet with the given name.
func (w *WorkbookData) Sheet(name string) (SheetData, bool) {
	for _, s := range w.Sheets {
		if s.Name == name {
			return s, true
		}
	}
	return SheetData{}, false
}
