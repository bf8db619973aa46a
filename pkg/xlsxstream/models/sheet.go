package models

// SheetData represents the extracted contents of one worksheet.
type SheetData struct {
	// Name is the sheet name as declared in the workbook.
	Name string `json:"name"`
	// Hidden is set for hidden and very hidden sheets.
	Hidden bool `json:"hidden,omitempty"`
	// Rows contains the non-empty rows in document order.
	Rows []CellRow `json:"rows"`
	// TableCandidates contains cell ranges that likely hold a table.
	TableCandidates []string `json:"table_candidates,omitempty"`
	// PrintAreas contains the print areas defined for the sheet.
	PrintAreas []PrintArea `json:"print_areas,omitempty"`
}
