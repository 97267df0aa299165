package importer

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// 优先读取的工作表名
var preferredSheets = []string{"Changes", "Employees", "Template"}

var zipMagic = []byte("PK\x03\x04")

// DetectFormat 按扩展名判断格式，没有扩展名时看文件头
func DetectFormat(name string, data []byte) Format {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx", ".xlsm":
		return FormatXLSX
	case ".csv", ".txt":
		return FormatCSV
	}
	if bytes.HasPrefix(data, zipMagic) {
		return FormatXLSX
	}
	return FormatCSV
}

// ReadTable 读取 CSV 或 XLSX，返回表头与数据行。
// 数据行统一补齐或截断到表头列数，空行丢弃。
func ReadTable(name string, r io.Reader) (*Table, []Warning, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, fmt.Errorf("read file: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil, ErrEmptyFile
	}

	var raw [][]string
	table := &Table{Format: DetectFormat(name, data)}
	switch table.Format {
	case FormatXLSX:
		table.Sheet, raw, err = readXLSX(data)
	default:
		raw, err = readCSV(data)
	}
	if err != nil {
		return nil, nil, err
	}
	if len(raw) == 0 {
		return nil, nil, ErrEmptyFile
	}

	table.Headers = make([]string, len(raw[0]))
	for i, h := range raw[0] {
		table.Headers[i] = cleanCell(h)
	}
	width := len(table.Headers)

	var warnings []Warning
	for i, row := range raw[1:] {
		rowNum := i + 2
		if blankRow(row) {
			continue
		}
		if len(row) > width {
			extra := row[width:]
			if !blankRow(extra) {
				warnings = append(warnings, Warning{
					Row:     rowNum,
					Message: fmt.Sprintf("row has %d columns, expected %d; extra columns ignored", len(row), width),
				})
			}
			row = row[:width]
		}
		cells := make([]string, width)
		for j, v := range row {
			cells[j] = cleanCell(v)
		}
		table.Rows = append(table.Rows, cells)
	}
	return table, warnings, nil
}

// readCSV 解析 CSV，兼容 UTF-8/UTF-16 BOM
func readCSV(data []byte) ([][]string, error) {
	decoder := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	reader := csv.NewReader(transform.NewReader(bytes.NewReader(data), decoder))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var rows [][]string
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse csv: %w", err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// readXLSX 读取优先工作表，找不到时读取第一个
func readXLSX(data []byte) (string, [][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return "", nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return "", nil, ErrEmptyFile
	}
	sheet := sheets[0]
	for _, want := range preferredSheets {
		if idx, _ := f.GetSheetIndex(want); idx >= 0 {
			sheet = want
			break
		}
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return "", nil, fmt.Errorf("read sheet %s: %w", sheet, err)
	}
	return sheet, rows, nil
}

func cleanCell(v string) string {
	return strings.TrimSpace(strings.TrimPrefix(v, "\ufeff"))
}

func blankRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
