package xlsxstream

import (
	"path/filepath"
	"strconv"

	"github.com/ukaji3/xlsxstream-go/pkg/xlsxstream/models"
	"github.com/ukaji3/xlsxstream-go/pkg/xlsxstream/parser"
)

// Extract reads every sheet of a workbook into memory as sparse rows.
func Extract(path string, opts Options) (*models.WorkbookData, error) {
	wb, err := Open(path, opts)
	if err != nil {
		return nil, err
	}
	defer wb.Close()

	data := &models.WorkbookData{
		BookName: filepath.Base(path),
		Sheets:   make([]models.SheetData, 0, len(wb.Sheets())),
	}
	for _, sheet := range wb.Sheets() {
		sd, err := extractSheet(sheet, opts)
		if err != nil {
			return nil, err
		}
		data.Sheets = append(data.Sheets, sd)
	}
	return data, nil
}

func extractSheet(sheet *Sheet, opts Options) (models.SheetData, error) {
	sd := models.SheetData{
		Name:   sheet.Name(),
		Hidden: !sheet.Visible(),
		Rows:   []models.CellRow{},
	}
	var detector *parser.TableDetector
	if opts.ShouldDetectTables() {
		detector = parser.NewTableDetector(parser.DefaultTableParams())
	}

	for rowNum, row := range sheet.All() {
		cellMap := make(map[string]interface{})
		for colIdx, v := range row {
			if parser.CellText(v) == "" {
				continue
			}
			cellMap[strconv.Itoa(colIdx+1)] = v
		}
		if len(cellMap) == 0 {
			continue
		}
		sd.Rows = append(sd.Rows, models.CellRow{R: rowNum, C: cellMap})
		if detector != nil {
			detector.Observe(rowNum, row)
		}
	}
	if err := sheet.Err(); err != nil {
		return sd, NewExtractionError(sheet.Name(), "rows", err)
	}

	if detector != nil {
		sd.TableCandidates = detector.Candidates()
	}
	if opts.ShouldIncludePrintAreas() {
		sd.PrintAreas = sheet.PrintAreas()
	}
	return sd, nil
}
