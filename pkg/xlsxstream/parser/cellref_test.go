package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestColumnIndex(t *testing.T) {
	tests := []struct {
		input    string
		expected int
	}{
		{"A", 0},
		{"Z", 25},
		{"AA", 26},
		{"AZ", 51},
		{"BA", 52},
		{"AMJ", 1023},
		{"XFD", 16383},
		{"ab", 27},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ColumnIndex(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestColumnIndexInvalid(t *testing.T) {
	for _, input := range []string{"", "A1", "1", "A-B", "XFE", "AAAA"} {
		_, err := ColumnIndex(input)
		assert.ErrorIs(t, err, ErrInvalidColumn, input)
	}
}

func TestColumnIndexMatchesExcelize(t *testing.T) {
	for i := 0; i < MaxColumns; i++ {
		name, err := excelize.ColumnNumberToName(i + 1)
		require.NoError(t, err)

		got, err := ColumnIndex(name)
		require.NoError(t, err)
		require.Equal(t, i, got, name)

		back, err := ColumnName(i)
		require.NoError(t, err)
		require.Equal(t, name, back)
	}
}

func TestColumnNameOutOfRange(t *testing.T) {
	_, err := ColumnName(-1)
	assert.ErrorIs(t, err, ErrInvalidColumn)
	_, err = ColumnName(MaxColumns)
	assert.ErrorIs(t, err, ErrInvalidColumn)
}

func TestSplitCellRef(t *testing.T) {
	letters, digits := splitCellRef("AB12")
	assert.Equal(t, "AB", letters)
	assert.Equal(t, "12", digits)

	letters, digits = splitCellRef("C")
	assert.Equal(t, "C", letters)
	assert.Empty(t, digits)

	letters, _ = splitCellRef("7")
	assert.Empty(t, letters)
}
