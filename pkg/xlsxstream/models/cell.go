// Package models defines the data structures produced by Extract.
package models

// CellRow represents a single row of non-empty cells.
type CellRow struct {
	// R is the row index (1-based).
	R int `json:"r"`
	// C maps column index (1-based, as string) to the rendered cell value.
	C map[string]interface{} `json:"c"`
}
