package xlsxstream

import (
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/ukaji3/xlsxstream-go/pkg/xlsxstream/models"
)

const printAreaName = "_xlnm.Print_Area"

// printAreas collects the print areas declared by the manifest's defined
// names, keyed by sheet name.
func printAreas(names []definedName, sheets []sheetEntry) map[string][]models.PrintArea {
	byIndex := make(map[int]string, len(sheets))
	for _, s := range sheets {
		byIndex[s.index] = s.name
	}

	result := make(map[string][]models.PrintArea)
	for _, dn := range names {
		if !strings.EqualFold(dn.name, printAreaName) {
			continue
		}
		sheetName, areas := parsePrintAreaReference(dn.refersTo)
		if idx, err := strconv.Atoi(dn.localSheetID); err == nil {
			if name, ok := byIndex[idx]; ok {
				sheetName = name
			}
		}
		if sheetName != "" && len(areas) > 0 {
			result[sheetName] = append(result[sheetName], areas...)
		}
	}
	return result
}

// parsePrintAreaReference parses a print area reference string.
// Format: 'SheetName'!$A$1:$D$10 or SheetName!$A$1:$D$10,SheetName!$F$1:$G$2
func parsePrintAreaReference(ref string) (string, []models.PrintArea) {
	var areas []models.PrintArea
	var sheetName string
	for _, part := range strings.Split(ref, ",") {
		part = strings.TrimSpace(part)
		idx := strings.LastIndex(part, "!")
		if idx < 0 {
			continue
		}
		if sheetName == "" {
			sheetName = strings.ReplaceAll(strings.Trim(part[:idx], "'"), "''", "'")
		}
		if area, ok := parseRangeToArea(part[idx+1:]); ok {
			areas = append(areas, area)
		}
	}
	return sheetName, areas
}

// parseRangeToArea parses a range string like $A$1:$D$10.
func parseRangeToArea(rangeStr string) (models.PrintArea, bool) {
	start, end, ok := strings.Cut(strings.ReplaceAll(rangeStr, "$", ""), ":")
	if !ok {
		end = start
	}
	startCol, startRow, err := excelize.CellNameToCoordinates(start)
	if err != nil {
		return models.PrintArea{}, false
	}
	endCol, endRow, err := excelize.CellNameToCoordinates(end)
	if err != nil {
		return models.PrintArea{}, false
	}
	return models.PrintArea{R1: startRow, C1: startCol, R2: endRow, C2: endCol}, true
}
