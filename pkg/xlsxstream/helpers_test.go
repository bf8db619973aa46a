package xlsxstream

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const (
	mainNS = `xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main"`
	relNS  = `xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships"`
)

// writeZip assembles an archive from member name to content.
func writeZip(t *testing.T, parts map[string]string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "book.xlsx")
	out, err := os.Create(path)
	require.NoError(t, err)
	zw := zip.NewWriter(out)

	names := make([]string, 0, len(parts))
	for name := range parts {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(parts[name]))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	require.NoError(t, out.Close())
	return path
}

// manifest declares sheets given as name=relationshipID pairs.
func manifest(sheets ...string) string {
	var sb strings.Builder
	sb.WriteString(`<workbook ` + mainNS + ` ` + relNS + `><sheets>`)
	for i, s := range sheets {
		name, rID, _ := strings.Cut(s, "=")
		fmt.Fprintf(&sb, `<sheet name="%s" sheetId="%d" r:id="%s"/>`, name, i+1, rID)
	}
	sb.WriteString(`</sheets></workbook>`)
	return sb.String()
}

// inlineSheet renders rows of inline-string cells.
func inlineSheet(rows ...[]string) string {
	var sb strings.Builder
	sb.WriteString(`<worksheet ` + mainNS + `><sheetData>`)
	for r, row := range rows {
		fmt.Fprintf(&sb, `<row r="%d">`, r+1)
		for c, v := range row {
			name, _ := excelize.CoordinatesToCellName(c+1, r+1)
			fmt.Fprintf(&sb, `<c r="%s" t="inlineStr"><is><t>%s</t></is></c>`, name, v)
		}
		sb.WriteString(`</row>`)
	}
	sb.WriteString(`</sheetData></worksheet>`)
	return sb.String()
}

func stagingEntries(t *testing.T, dir string) []os.DirEntry {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	return entries
}

func readAll(t *testing.T, s *Sheet) [][]string {
	t.Helper()
	var out [][]string
	for _, row := range s.All() {
		out = append(out, row.Strings())
	}
	require.NoError(t, s.Err())
	return out
}
