package parser

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const mainNS = `xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main"`

// writePart stages an xml part in a temporary directory.
func writePart(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`+"\n"+body), 0o600))
	return path
}

func writeSheet(t *testing.T, rows string) string {
	t.Helper()
	return writePart(t, "sheet1.xml", `<worksheet `+mainNS+`><dimension ref="A1"/><sheetData>`+rows+`</sheetData></worksheet>`)
}
