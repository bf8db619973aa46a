package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/ukaji3/xlsxstream-go/pkg/xlsxstream"
	"github.com/ukaji3/xlsxstream-go/pkg/xlsxstream/models"
)

func writeWorkbook(t *testing.T) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]interface{}{"item", "price"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]interface{}{"tea", 1234.5}))
	style, err := f.NewStyle(&excelize.Style{NumFmt: 4})
	require.NoError(t, err)
	require.NoError(t, f.SetCellStyle("Sheet1", "B2", "B2", style))
	require.NoError(t, f.SetDefinedName(&excelize.DefinedName{
		Name:     "_xlnm.Print_Area",
		RefersTo: "Sheet1!$A$1:$A$2",
		Scope:    "Sheet1",
	}))

	_, err = f.NewSheet("Notes")
	require.NoError(t, err)
	require.NoError(t, f.SetCellValue("Notes", "A1", "hello"))

	path := filepath.Join(t.TempDir(), "book.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), err
}

func TestCSVFirstSheet(t *testing.T) {
	out, err := execute(t, writeWorkbook(t))
	require.NoError(t, err)
	assert.Equal(t, "item,price\ntea,\"1,234.50\"\n", out)
}

func TestCSVSeparators(t *testing.T) {
	out, err := execute(t, writeWorkbook(t), "--decimal-sep", ",", "--thousands-sep", ".")
	require.NoError(t, err)
	assert.Equal(t, "item,price\ntea,\"1.234,50\"\n", out)
}

func TestCSVAllSheets(t *testing.T) {
	out, err := execute(t, writeWorkbook(t), "--sheet", "0", "--cache-limit", "0")
	require.NoError(t, err)
	assert.Equal(t, "Sheet1\nitem,price\ntea,\"1,234.50\"\n--------\nNotes\nhello\n", out)
}

func TestCSVSheetByName(t *testing.T) {
	out, err := execute(t, writeWorkbook(t), "--sheet-name", "notes")
	require.NoError(t, err)
	assert.Equal(t, "hello\n", out)

	_, err = execute(t, writeWorkbook(t), "--sheet-name", "missing")
	assert.ErrorIs(t, err, xlsxstream.ErrSheetNotFound)

	_, err = execute(t, writeWorkbook(t), "--sheet", "9")
	assert.ErrorIs(t, err, xlsxstream.ErrSheetIndex)
}

func TestCSVEncoding(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]interface{}{"café", "crème"}))
	path := filepath.Join(t.TempDir(), "latin.xlsx")
	require.NoError(t, f.SaveAs(path))

	out, err := execute(t, path, "--encoding", "windows-1252")
	require.NoError(t, err)
	assert.Equal(t, "caf\xe9,cr\xe8me\n", out)

	_, err = execute(t, path, "--encoding", "no-such-charset")
	assert.Error(t, err)
}

func TestJSONOutput(t *testing.T) {
	path := writeWorkbook(t)
	outPath := filepath.Join(t.TempDir(), "out.json")
	_, err := execute(t, path, "--format", "json", "--output", outPath)
	require.NoError(t, err)

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	var wb models.WorkbookData
	require.NoError(t, json.Unmarshal(data, &wb))

	assert.Equal(t, "book.xlsx", wb.BookName)
	require.Len(t, wb.Sheets, 2)
	assert.Equal(t, "1,234.50", wb.Sheets[0].Rows[1].C["2"])
	assert.Equal(t, []string{"A1:B2"}, wb.Sheets[0].TableCandidates)
	require.Len(t, wb.Sheets[0].PrintAreas, 1)
}

func TestJSONFileSplits(t *testing.T) {
	sheetsDir := filepath.Join(t.TempDir(), "sheets")
	areasDir := filepath.Join(t.TempDir(), "areas")
	out, err := execute(t, writeWorkbook(t), "--format", "json", "--sheets-dir", sheetsDir, "--print-areas-dir", areasDir)
	require.NoError(t, err)
	assert.Empty(t, out)

	assert.FileExists(t, filepath.Join(sheetsDir, "Sheet1.json"))
	assert.FileExists(t, filepath.Join(sheetsDir, "Notes.json"))

	data, err := os.ReadFile(filepath.Join(areasDir, "Sheet1_area1.json"))
	require.NoError(t, err)
	var view models.PrintAreaView
	require.NoError(t, json.Unmarshal(data, &view))
	require.Len(t, view.Rows, 2)
	assert.Len(t, view.Rows[1].C, 1)
	assert.Equal(t, "tea", view.Rows[1].C["1"])
}

func TestInvalidInvocations(t *testing.T) {
	_, err := execute(t, writeWorkbook(t), "--format", "xml")
	assert.Error(t, err)

	_, err = execute(t)
	assert.Error(t, err)

	_, err = execute(t, filepath.Join(t.TempDir(), "missing.xlsx"))
	assert.ErrorIs(t, err, xlsxstream.ErrPermission)
}
