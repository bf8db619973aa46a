package xlsxstream

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/ukaji3/xlsxstream-go/pkg/xlsxstream/numfmt"
)

func TestExtract(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Sheet1"
	require.NoError(t, f.SetCellValue(sheetName, "A1", "Header1"))
	require.NoError(t, f.SetCellValue(sheetName, "B1", "Header2"))
	require.NoError(t, f.SetCellValue(sheetName, "A2", 100))
	require.NoError(t, f.SetCellValue(sheetName, "B2", 200.5))
	require.NoError(t, f.SetCellValue(sheetName, "A4", "Text"))
	_, err := f.NewSheet("Empty")
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "test.xlsx")
	require.NoError(t, f.SaveAs(path))

	data, err := Extract(path, Options{TempDir: t.TempDir()})
	require.NoError(t, err)

	assert.Equal(t, "test.xlsx", data.BookName)
	require.Len(t, data.Sheets, 2)

	sheet := data.Sheets[0]
	assert.Equal(t, "Sheet1", sheet.Name)
	require.Len(t, sheet.Rows, 3)
	assert.Equal(t, 1, sheet.Rows[0].R)
	assert.Equal(t, "Header1", sheet.Rows[0].C["1"])
	assert.Equal(t, float64(100), sheet.Rows[1].C["1"])
	assert.Equal(t, 200.5, sheet.Rows[1].C["2"])
	assert.Equal(t, 4, sheet.Rows[2].R)
	assert.Len(t, sheet.Rows[2].C, 1)
	assert.Equal(t, []string{"A1:B4"}, sheet.TableCandidates)

	empty, ok := data.Sheet("Empty")
	require.True(t, ok)
	assert.Empty(t, empty.Rows)
	assert.Nil(t, empty.TableCandidates)
}

func TestExtractWithoutTables(t *testing.T) {
	path := writeZip(t, map[string]string{
		"xl/workbook.xml":          manifest("Sheet1=rId1"),
		"xl/worksheets/sheet1.xml": inlineSheet([]string{"a", "b"}, []string{"c", "d"}),
	})
	off := false
	data, err := Extract(path, Options{TempDir: t.TempDir(), DetectTables: &off})
	require.NoError(t, err)
	require.Len(t, data.Sheets, 1)
	assert.Len(t, data.Sheets[0].Rows, 2)
	assert.Nil(t, data.Sheets[0].TableCandidates)
}

func TestExtractReportsRowErrors(t *testing.T) {
	path := writeZip(t, map[string]string{
		"xl/workbook.xml":          manifest("Broken=rId1"),
		"xl/worksheets/sheet1.xml": `<worksheet><sheetData><row r="1"><c r="A1"><v>1</v></row>`,
	})
	_, err := Extract(path, Options{TempDir: t.TempDir()})
	var ee *ExtractionError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, "Broken", ee.SheetName)
	assert.Equal(t, "rows", ee.Component)
}

func TestOptions(t *testing.T) {
	opts := DefaultOptions()
	assert.Equal(t, 50000, opts.CacheLimit())
	assert.True(t, opts.ShouldDetectTables())
	assert.True(t, opts.ShouldIncludePrintAreas())
	assert.Equal(t, ".", opts.NumberSymbols().Decimal)
	assert.Equal(t, ",", opts.NumberSymbols().Thousands)

	opts.Symbols = &numfmt.Symbols{Currency: "€"}
	assert.Equal(t, numfmt.Symbols{Decimal: ".", Thousands: ",", Currency: "€"}, opts.NumberSymbols())
	opts.Symbols = &numfmt.Symbols{Decimal: ",", Thousands: "."}
	assert.Equal(t, numfmt.Symbols{Decimal: ",", Thousands: "."}, opts.NumberSymbols())

	zero := 0
	opts.SharedStringCacheLimit = &zero
	assert.Equal(t, 0, opts.CacheLimit())
}
