package parser

import "fmt"

// TableDetectionParams holds parameters for table detection.
type TableDetectionParams struct {
	DensityMin       float64
	CoverageMin      float64
	MinNonemptyCells int
}

// DefaultTableParams returns default table detection parameters.
func DefaultTableParams() TableDetectionParams {
	return TableDetectionParams{
		DensityMin:       0.04,
		CoverageMin:      0.2,
		MinNonemptyCells: 3,
	}
}

// TableDetector accumulates the bounding box of non-empty cells while rows
// stream past, so a sheet never has to be held in memory.
type TableDetector struct {
	params                         TableDetectionParams
	minRow, maxRow, minCol, maxCol int
	nonEmpty                       int
}

// NewTableDetector returns a detector with an empty bounding box.
func NewTableDetector(params TableDetectionParams) *TableDetector {
	return &TableDetector{params: params, minRow: -1, maxRow: -1, minCol: -1, maxCol: -1}
}

// Observe records the non-empty cells of a row. rowNum is 1-based.
func (d *TableDetector) Observe(rowNum int, row Row) {
	for col, v := range row {
		if CellText(v) == "" {
			continue
		}
		d.nonEmpty++
		if d.minRow < 0 || rowNum < d.minRow {
			d.minRow = rowNum
		}
		if rowNum > d.maxRow {
			d.maxRow = rowNum
		}
		if d.minCol < 0 || col < d.minCol {
			d.minCol = col
		}
		if col > d.maxCol {
			d.maxCol = col
		}
	}
}

// Candidates returns the ranges (e.g. "A1:D10") that likely hold a table.
func (d *TableDetector) Candidates() []string {
	if d.minRow < 0 || d.nonEmpty < d.params.MinNonemptyCells {
		return nil
	}
	totalCells := (d.maxRow - d.minRow + 1) * (d.maxCol - d.minCol + 1)
	density := float64(d.nonEmpty) / float64(totalCells)
	if density < d.params.DensityMin {
		return nil
	}

	startCol, err := ColumnName(d.minCol)
	if err != nil {
		return nil
	}
	endCol, err := ColumnName(d.maxCol)
	if err != nil {
		return nil
	}
	return []string{fmt.Sprintf("%s%d:%s%d", startCol, d.minRow, endCol, d.maxRow)}
}

// DetectTables runs a detector over rows numbered from 1.
func DetectTables(rows []Row, params TableDetectionParams) []string {
	d := NewTableDetector(params)
	for i, row := range rows {
		d.Observe(i+1, row)
	}
	return d.Candidates()
}
