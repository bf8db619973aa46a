package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectTables(t *testing.T) {
	rows := []Row{
		{"", "", ""},
		{"", "name", "qty"},
		{"", "bolt", float64(4)},
		{"", "nut", float64(9)},
	}
	assert.Equal(t, []string{"B2:C4"}, DetectTables(rows, DefaultTableParams()))
}

func TestDetectTablesTooSparse(t *testing.T) {
	rows := []Row{{"x"}, {"", "y"}}
	assert.Nil(t, DetectTables(rows, DefaultTableParams()))

	params := DefaultTableParams()
	params.MinNonemptyCells = 1
	params.DensityMin = 0.9
	assert.Nil(t, DetectTables(rows, params))
}

func TestTableDetectorStreaming(t *testing.T) {
	d := NewTableDetector(DefaultTableParams())
	d.Observe(10, Row{"a", "b"})
	d.Observe(12, Row{"", "", "c"})
	assert.Equal(t, []string{"A10:C12"}, d.Candidates())
}

func TestRowStrings(t *testing.T) {
	row := Row{"a", float64(1.5), "", nil}
	assert.Equal(t, []string{"a", "1.5", "", ""}, row.Strings())
	assert.False(t, row.Empty())
	assert.True(t, Row{"", ""}.Empty())
}
