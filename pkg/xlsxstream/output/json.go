// Package output serializes extracted workbooks.
package output

import (
	"encoding/json"

	"github.com/ukaji3/xlsxstream-go/pkg/xlsxstream/models"
)

// ToJSON serializes a workbook.
func ToJSON(wb *models.WorkbookData, pretty bool) ([]byte, error) {
	return marshal(wb, pretty)
}

// SheetToJSON serializes a single sheet.
func SheetToJSON(sheet *models.SheetData, pretty bool) ([]byte, error) {
	return marshal(sheet, pretty)
}

// PrintAreaViewToJSON serializes a print area view.
func PrintAreaViewToJSON(view *models.PrintAreaView, pretty bool) ([]byte, error) {
	return marshal(view, pretty)
}

func marshal(v interface{}, pretty bool) ([]byte, error) {
	if pretty {
		return json.MarshalIndent(v, "", "  ")
	}
	return json.Marshal(v)
}
