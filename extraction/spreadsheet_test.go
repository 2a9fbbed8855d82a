package extraction

import (
	"archive/zip"
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

func TestReadRows_CSV(t *testing.T) {
	data := []byte("Name,Phone,Designation,Salary\nJane Doe,555-010-1234,Engineer,\"85,000\"\n,,,\nRaj,9876543210,,50000\n")

	rows, err := ReadRows("staff.csv", data)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, 1, rows[0].Index)
	assert.Equal(t, "Name: Jane Doe\nPhone: 555-010-1234\nDesignation: Engineer\nSalary: 85,000", rows[0].Text)
	assert.Equal(t, 2, rows[1].Index)
	assert.Equal(t, "Name: Raj\nPhone: 9876543210\nSalary: 50000", rows[1].Text)
}

func TestReadRows_DelimiterDetection(t *testing.T) {
	tests := []struct {
		name string
		file string
		data string
	}{
		{"semicolon", "a.csv", "Name;Phone\nJane;123\n"},
		{"tab by extension", "a.tsv", "Name\tPhone\nJane\t123\n"},
		{"tab by content", "upload", "Name\tPhone\nJane\t123\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, err := ReadRows(tt.file, []byte(tt.data))
			require.NoError(t, err)
			require.Len(t, rows, 1)
			assert.Equal(t, "Name: Jane\nPhone: 123", rows[0].Text)
		})
	}
}

func TestReadRows_Encodings(t *testing.T) {
	const text = "Name,Designation\nJosé,Ingénieur\n"
	const want = "Name: José\nDesignation: Ingénieur"

	utf16, err := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder().Bytes([]byte(text))
	require.NoError(t, err)
	latin1, err := charmap.ISO8859_1.NewEncoder().Bytes([]byte(text))
	require.NoError(t, err)

	tests := []struct {
		name string
		data []byte
	}{
		{"utf-8", []byte(text)},
		{"utf-8 bom", append([]byte{0xEF, 0xBB, 0xBF}, text...)},
		{"utf-16 bom", utf16},
		{"latin-1", latin1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, err := ReadRows("people.csv", tt.data)
			require.NoError(t, err)
			require.Len(t, rows, 1)
			assert.Equal(t, want, rows[0].Text)
		})
	}
}

func TestReadRows_Errors(t *testing.T) {
	_, err := ReadRows("x.csv", []byte("  \n"))
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = ReadRows("x.csv", []byte("Name,Phone\n"))
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Contains(t, err.Error(), "no data rows")

	_, err = ReadRows("x.xlsx", []byte("not a zip"))
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestReadRows_PlainText(t *testing.T) {
	rows, err := ReadRows("note.txt", []byte("  Jane Doe, engineer, 5550101234  \n"))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Jane Doe, engineer, 5550101234", rows[0].Text)
}

func buildXLSX(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, body := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestReadRows_XLSX(t *testing.T) {
	data := buildXLSX(t, map[string]string{
		"xl/sharedStrings.xml": `<?xml version="1.0"?>
<sst xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main">
  <si><t>Name</t></si><si><t>Phone</t></si><si><t>Salary</t></si>
  <si><r><t>Jane </t></r><r><t>Doe</t></r></si>
</sst>`,
		"xl/worksheets/sheet1.xml": `<?xml version="1.0"?>
<worksheet xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main">
  <sheetData>
    <row r="1"><c r="A1" t="s"><v>0</v></c><c r="B1" t="s"><v>1</v></c><c r="C1" t="s"><v>2</v></c></row>
    <row r="2"><c r="A2" t="s"><v>3</v></c><c r="C2"><v>72000</v></c></row>
    <row r="3"><c r="A3" t="inlineStr"><is><t>Raj</t></is></c><c r="B3"><v>9876543210</v></c></row>
  </sheetData>
</worksheet>`,
		"xl/worksheets/sheet2.xml": `<worksheet><sheetData><row><c><v>ignored</v></c></row></sheetData></worksheet>`,
	})

	rows, err := ReadRows("book.xlsx", data)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Name: Jane Doe\nSalary: 72000", rows[0].Text)
	assert.Equal(t, "Name: Raj\nPhone: 9876543210", rows[1].Text)
}

func sheetXML(rows string) string {
	return `<worksheet xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main"><sheetData>` + rows + `</sheetData></worksheet>`
}

func TestReadRows_XLSXCellOutsideSheet(t *testing.T) {
	for _, ref := range []string{"XFE2", "ZZZZZ2", "ZZZZZZZZZZZZZZZZ2"} {
		data := buildXLSX(t, map[string]string{
			"xl/worksheets/sheet1.xml": sheetXML(`<row><c r="A1" t="inlineStr"><is><t>Name</t></is></c></row>` +
				`<row><c r="` + ref + `" t="inlineStr"><is><t>x</t></is></c></row>`),
		})
		_, err := ReadRows("book.xlsx", data)
		require.Error(t, err, ref)
		assert.ErrorIs(t, err, ErrInvalidInput, ref)
	}
}

func TestReadRows_XLSXLastColumn(t *testing.T) {
	data := buildXLSX(t, map[string]string{
		"xl/worksheets/sheet1.xml": sheetXML(`<row><c r="A1" t="inlineStr"><is><t>Name</t></is></c></row>` +
			`<row><c r="A2" t="inlineStr"><is><t>Jane</t></is></c><c r="XFD2"><v>7</v></c></row>`),
	})
	rows, err := ReadRows("book.xlsx", data)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Name: Jane\nColumn 16384: 7", rows[0].Text)
}

func TestReadRows_XLSXTooManyCells(t *testing.T) {
	var b strings.Builder
	b.WriteString(`<row><c r="A1" t="inlineStr"><is><t>Name</t></is></c></row>`)
	for i := 2; i < 70; i++ {
		fmt.Fprintf(&b, `<row><c r="XFD%d"><v>1</v></c></row>`, i)
	}
	data := buildXLSX(t, map[string]string{"xl/worksheets/sheet1.xml": sheetXML(b.String())})
	_, err := ReadRows("book.xlsx", data)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestReadRows_XLSXWithoutSheet(t *testing.T) {
	data := buildXLSX(t, map[string]string{"docProps/app.xml": "<x/>"})
	_, err := ReadRows("book.xlsx", data)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestDetectFileKind(t *testing.T) {
	assert.Equal(t, FileXLSX, DetectFileKind("A.XLSX", nil))
	assert.Equal(t, FileTSV, DetectFileKind("a.tsv", nil))
	assert.Equal(t, FileText, DetectFileKind("a.txt", nil))
	assert.Equal(t, FileXLSX, DetectFileKind("upload", []byte("PK\x03\x04rest")))
	assert.Equal(t, FileCSV, DetectFileKind("upload", []byte("a,b")))
}

func TestColumnIndex(t *testing.T) {
	assert.Equal(t, 0, columnIndex("A1"))
	assert.Equal(t, 2, columnIndex("C12"))
	assert.Equal(t, 26, columnIndex("AA3"))
	assert.Equal(t, -1, columnIndex(""))
	assert.Equal(t, maxXLSXColumn, columnIndex("XFD9"))
	assert.Equal(t, maxXLSXColumn+1, columnIndex("XFE9"))
	assert.Equal(t, maxXLSXColumn+1, columnIndex("ZZZZZZZZZZZZZZZZZZZZ1"))
}
