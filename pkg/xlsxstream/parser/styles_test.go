package parser

import (
	"io"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/ukaji3/xlsxstream-go/pkg/xlsxstream/numfmt"
)

const stylesXML = `<styleSheet ` + mainNS + `>
<numFmts count="1"><numFmt numFmtId="164" formatCode="0.000"/></numFmts>
<cellStyleXfs count="1"><xf numFmtId="10" applyNumberFormat="1"/></cellStyleXfs>
<cellXfs count="5">
<xf numFmtId="0" fontId="0"/>
<xf numFmtId="164" applyNumberFormat="1"/>
<xf numFmtId="14" applyNumberFormat="true"/>
<xf numFmtId="4"/>
<xf numFmtId="10" applyNumberFormat="1"/>
</cellXfs>
<dxfs count="1"><dxf><numFmt numFmtId="165" formatCode="0.0"/></dxf></dxfs>
</styleSheet>`

func parseTestStyles(t *testing.T, opts StyleOptions) *StyleTable {
	t.Helper()
	st, err := ParseStyles(strings.NewReader(stylesXML), opts)
	require.NoError(t, err)
	return st
}

func TestParseStyles(t *testing.T) {
	st := parseTestStyles(t, StyleOptions{})
	assert.Equal(t, 5, st.Len())

	tests := []struct {
		styleID  int
		expected int
	}{
		{0, 0},
		{1, 164},
		{2, 14},
		{3, 0},
		{4, 10},
	}
	for _, tt := range tests {
		got, ok := st.NumFmtID(tt.styleID)
		require.True(t, ok)
		assert.Equal(t, tt.expected, got, "style %d", tt.styleID)
	}

	_, ok := st.NumFmtID(5)
	assert.False(t, ok)

	assert.Equal(t, "0.000", st.FormatCode(164))
	assert.Equal(t, "mm-dd-yy", st.FormatCode(14))
	assert.Empty(t, st.FormatCode(165))
}

func TestFormatValue(t *testing.T) {
	st := parseTestStyles(t, StyleOptions{})

	tests := []struct {
		name     string
		raw      string
		styleID  int
		expected any
	}{
		{"custom code", "1.23456", 1, "1.235"},
		{"builtin date", "44197", 2, "01-01-21"},
		{"apply flag off", "5", 3, float64(5)},
		{"percent", "0.256", 4, "25.60%"},
		{"general", "5", 0, float64(5)},
		{"text", "abc", 1, "abc"},
		{"unknown style", "5", 99, "5"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, st.FormatValue(tt.raw, tt.styleID))
		})
	}
}

func TestFormatValueWithoutStyles(t *testing.T) {
	st := NewStyleTable(StyleOptions{})
	assert.Equal(t, float64(7), st.FormatValue("7", 0))
	assert.Equal(t, "7", st.FormatValue("7", 1))
}

func TestFormatValueDateAsTime(t *testing.T) {
	st := parseTestStyles(t, StyleOptions{DateAsTime: true})
	assert.Equal(t, time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC), st.FormatValue("44197", 2))
	assert.Equal(t, "1.235", st.FormatValue("1.23456", 1))
}

func TestFormatValueSymbols(t *testing.T) {
	st, err := ParseStyles(strings.NewReader(stylesXML), StyleOptions{
		Symbols: numfmt.Symbols{Decimal: ",", Thousands: "."},
	})
	require.NoError(t, err)
	assert.Equal(t, "1,235", st.FormatValue("1.23456", 1))
}

func TestFormatValueDefaultThousands(t *testing.T) {
	doc := `<styleSheet ` + mainNS + `><cellXfs count="2">
<xf numFmtId="0"/><xf numFmtId="4" applyNumberFormat="1"/>
</cellXfs></styleSheet>`
	tests := []struct {
		name string
		sym  numfmt.Symbols
		want string
	}{
		{"zero symbols", numfmt.Symbols{}, "1,234.50"},
		{"currency only", numfmt.Symbols{Currency: "€"}, "1,234.50"},
		{"explicit thousands", numfmt.Symbols{Thousands: " "}, "1 234.50"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st, err := ParseStyles(strings.NewReader(doc), StyleOptions{Symbols: tt.sym})
			require.NoError(t, err)
			assert.Equal(t, tt.want, st.FormatValue("1234.5", 1))
		})
	}
}

func TestParseStylesMalformed(t *testing.T) {
	_, err := ParseStyles(strings.NewReader(`<styleSheet><cellXfs>`), StyleOptions{})
	assert.Error(t, err)
}

func TestParseStylesFromExcelize(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	dateStyle, err := f.NewStyle(&excelize.Style{NumFmt: 14})
	require.NoError(t, err)
	custom := "#,##0.000"
	customStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: &custom})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "styles.xlsx")
	require.NoError(t, f.SaveAs(path))

	zr, err := zip.OpenReader(path)
	require.NoError(t, err)
	defer zr.Close()

	var st *StyleTable
	for _, zf := range zr.File {
		if zf.Name != "xl/styles.xml" {
			continue
		}
		rc, err := zf.Open()
		require.NoError(t, err)
		data, err := io.ReadAll(rc)
		rc.Close()
		require.NoError(t, err)
		st, err = ParseStyles(strings.NewReader(string(data)), StyleOptions{})
		require.NoError(t, err)
	}
	require.NotNil(t, st)

	assert.Equal(t, "01-01-21", st.FormatValue("44197", dateStyle))
	assert.Equal(t, "1,234.500", st.FormatValue("1234.5", customStyle))
}
