package extraction

import (
	"archive/zip"
	"bytes"
	"encoding/csv"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// FileKind 上传文件类型
type FileKind string

const (
	FileCSV  FileKind = "csv"
	FileTSV  FileKind = "tsv"
	FileXLSX FileKind = "xlsx"
	FileText FileKind = "text"
)

// DetectFileKind 依据扩展名与魔数判断文件类型
func DetectFileKind(name string, data []byte) FileKind {
	switch strings.ToLower(path.Ext(name)) {
	case ".xlsx", ".xlsm":
		return FileXLSX
	case ".tsv", ".tab":
		return FileTSV
	case ".csv":
		return FileCSV
	case ".txt", ".md":
		return FileText
	}
	if bytes.HasPrefix(data, []byte("PK\x03\x04")) {
		return FileXLSX
	}
	return FileCSV
}

// Row 表格中的一行，Text 为 "表头: 值" 形式的多行文本，供抽取器使用
type Row struct {
	Index int // 数据行序号，从 1 开始
	Text  string
}

// ErrEmptyFile 文件为空
var ErrEmptyFile = &Error{Kind: KindInvalidInput, Message: "the uploaded file is empty"}

// ErrNoRows 文件中没有数据行
var ErrNoRows = &Error{Kind: KindInvalidInput, Message: "the uploaded file contains no data rows"}

// ReadRows 把上传文件拆成待抽取的行。
// 纯文本文件整体作为一行返回。
func ReadRows(name string, data []byte) ([]Row, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrEmptyFile
	}

	kind := DetectFileKind(name, data)
	var (
		table [][]string
		err   error
	)
	switch kind {
	case FileXLSX:
		table, err = readXLSX(data)
	case FileText:
		text, derr := decodeText(data)
		if derr != nil {
			return nil, derr
		}
		return []Row{{Index: 1, Text: strings.TrimSpace(text)}}, nil
	default:
		table, err = readDelimited(data, kind)
	}
	if err != nil {
		return nil, err
	}
	return tableRows(table)
}

// decodeText 识别 BOM（UTF-8/UTF-16），非 UTF-8 内容按 Latin-1 解码
func decodeText(data []byte) (string, error) {
	if hasBOM(data) {
		dec := unicode.BOMOverride(encoding.Nop.NewDecoder())
		out, _, err := transform.Bytes(dec, data)
		if err != nil {
			return "", &Error{Kind: KindInvalidInput, Message: "the uploaded file has an unreadable encoding", Cause: err}
		}
		return string(out), nil
	}
	if utf8.Valid(data) {
		return string(data), nil
	}
	out, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
	if err != nil {
		return "", &Error{Kind: KindInvalidInput, Message: "the uploaded file has an unreadable encoding", Cause: err}
	}
	return string(out), nil
}

func hasBOM(data []byte) bool {
	return bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}) ||
		bytes.HasPrefix(data, []byte{0xFE, 0xFF}) ||
		bytes.HasPrefix(data, []byte{0xFF, 0xFE})
}

func readDelimited(data []byte, kind FileKind) ([][]string, error) {
	text, err := decodeText(data)
	if err != nil {
		return nil, err
	}

	r := csv.NewReader(strings.NewReader(text))
	r.Comma = detectDelimiter(text, kind)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.TrimLeadingSpace = true

	table, err := r.ReadAll()
	if err != nil {
		return nil, &Error{Kind: KindInvalidInput, Message: "the uploaded file is not a readable spreadsheet", Cause: err}
	}
	return table, nil
}

func detectDelimiter(text string, kind FileKind) rune {
	if kind == FileTSV {
		return '\t'
	}
	header := text
	if nl := strings.IndexByte(header, '\n'); nl >= 0 {
		header = header[:nl]
	}
	best, bestCount := ',', strings.Count(header, ",")
	for _, c := range []rune{';', '\t'} {
		if n := strings.Count(header, string(c)); n > bestCount {
			best, bestCount = c, n
		}
	}
	return best
}

// tableRows 首行作为表头，其余非空行转换为 Row
func tableRows(table [][]string) ([]Row, error) {
	if len(table) == 0 {
		return nil, ErrEmptyFile
	}
	header := make([]string, len(table[0]))
	for i, h := range table[0] {
		header[i] = strings.TrimSpace(h)
	}

	var rows []Row
	for _, rec := range table[1:] {
		var b strings.Builder
		for i, v := range rec {
			v = strings.TrimSpace(v)
			if v == "" {
				continue
			}
			label := fmt.Sprintf("Column %d", i+1)
			if i < len(header) && header[i] != "" {
				label = header[i]
			}
			b.WriteString(label)
			b.WriteString(": ")
			b.WriteString(v)
			b.WriteByte('\n')
		}
		if b.Len() == 0 {
			continue
		}
		rows = append(rows, Row{Index: len(rows) + 1, Text: strings.TrimRight(b.String(), "\n")})
	}
	if len(rows) == 0 {
		return nil, ErrNoRows
	}
	return rows, nil
}

// --- xlsx ---

type xlsxSharedStrings struct {
	Items []xlsxRichText `xml:"si"`
}

type xlsxRun struct {
	T string `xml:"t"`
}

type xlsxRichText struct {
	T    string    `xml:"t"`
	Runs []xlsxRun `xml:"r"`
}

func (r xlsxRichText) text() string {
	if len(r.Runs) == 0 {
		return r.T
	}
	var b strings.Builder
	b.WriteString(r.T)
	for _, run := range r.Runs {
		b.WriteString(run.T)
	}
	return b.String()
}

type xlsxWorksheet struct {
	Rows []struct {
		Cells []xlsxCell `xml:"c"`
	} `xml:"sheetData>row"`
}

type xlsxCell struct {
	Ref    string       `xml:"r,attr"`
	Type   string       `xml:"t,attr"`
	Value  string       `xml:"v"`
	Inline xlsxRichText `xml:"is"`
}

const maxXLSXPart = 32 << 20

// maxXLSXColumn 最后一列 XFD 的列号（从 0 开始）
const maxXLSXColumn = 16383

// maxXLSXCells 补齐空单元格后整张表的单元格上限
const maxXLSXCells = 1 << 20

// readXLSX 读取工作簿中的第一张工作表
func readXLSX(data []byte) ([][]string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, &Error{Kind: KindInvalidInput, Message: "the uploaded workbook cannot be opened", Cause: err}
	}

	var shared []string
	var sheet *zip.File
	for _, f := range zr.File {
		switch {
		case f.Name == "xl/sharedStrings.xml":
			var ss xlsxSharedStrings
			if err := decodeZipXML(f, &ss); err != nil {
				return nil, err
			}
			for _, item := range ss.Items {
				shared = append(shared, item.text())
			}
		case strings.HasPrefix(f.Name, "xl/worksheets/sheet") && strings.HasSuffix(f.Name, ".xml"):
			if sheet == nil || f.Name < sheet.Name {
				sheet = f
			}
		}
	}
	if sheet == nil {
		return nil, &Error{Kind: KindInvalidInput, Message: "the uploaded workbook has no worksheet"}
	}

	var ws xlsxWorksheet
	if err := decodeZipXML(sheet, &ws); err != nil {
		return nil, err
	}

	table := make([][]string, 0, len(ws.Rows))
	cells := 0
	for _, row := range ws.Rows {
		var out []string
		for i, c := range row.Cells {
			col := columnIndex(c.Ref)
			if col < 0 {
				col = i
			}
			if col > maxXLSXColumn {
				return nil, &Error{Kind: KindInvalidInput, Message: fmt.Sprintf("the uploaded workbook has a cell outside the sheet (%q)", c.Ref)}
			}
			if col >= len(out) {
				cells += col + 1 - len(out)
				if cells > maxXLSXCells {
					return nil, &Error{Kind: KindInvalidInput, Message: "the uploaded workbook is too large"}
				}
			}
			for len(out) <= col {
				out = append(out, "")
			}
			out[col] = cellValue(c, shared)
		}
		table = append(table, out)
	}
	return table, nil
}

func decodeZipXML(f *zip.File, v any) error {
	rc, err := f.Open()
	if err != nil {
		return &Error{Kind: KindInvalidInput, Message: "the uploaded workbook is damaged", Cause: err}
	}
	defer rc.Close()
	if err := xml.NewDecoder(io.LimitReader(rc, maxXLSXPart)).Decode(v); err != nil {
		return &Error{Kind: KindInvalidInput, Message: "the uploaded workbook is damaged", Cause: err}
	}
	return nil
}

func cellValue(c xlsxCell, shared []string) string {
	switch c.Type {
	case "s":
		idx, err := strconv.Atoi(strings.TrimSpace(c.Value))
		if err != nil || idx < 0 || idx >= len(shared) {
			return ""
		}
		return shared[idx]
	case "inlineStr":
		return c.Inline.text()
	}
	return c.Value
}

// columnIndex 把 "C12" 这样的单元格引用转换为从 0 开始的列号。
// 超出 XFD 的引用返回 maxXLSXColumn+1。
func columnIndex(ref string) int {
	col := 0
	n := 0
	for _, r := range ref {
		if r < 'A' || r > 'Z' {
			break
		}
		col = col*26 + int(r-'A'+1)
		n++
		if col > maxXLSXColumn+1 {
			return maxXLSXColumn + 1
		}
	}
	if n == 0 {
		return -1
	}
	return col - 1
}

// IsInvalidInput 判断错误是否为输入类错误
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}
