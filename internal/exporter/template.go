package exporter

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/shivamuserology/bulk-change/internal/model"
	"github.com/shivamuserology/bulk-change/internal/wizard"
)

var (
	ErrNoEmployees     = errors.New("no employees selected")
	ErrNoResults       = errors.New("no finished execution to export")
	ErrUnsupportedType = errors.New("unsupported export format")
)

const (
	templateSheet = "Template"
	fieldsSheet   = "Fields"
)

// 导出格式
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

// Exporter 模板与结果报告导出器
type Exporter struct {
	machine *wizard.Machine
}

// NewExporter 创建导出器
func NewExporter(machine *wizard.Machine) *Exporter {
	return &Exporter{machine: machine}
}

// TemplateFilename 模板下载文件名
func TemplateFilename(format string) string {
	return "bulk_change_template." + format
}

// TemplateTable 模板内容：Employee ID, Name, 已选字段显示名；每行为所选员工的当前值
func (e *Exporter) TemplateTable(s wizard.State) ([]string, [][]string) {
	index := e.machine.Dataset().Index()
	headers := []string{"Employee ID", "Name"}
	for _, id := range s.SelectedFields {
		headers = append(headers, index.Label(id))
	}

	rows := make([][]string, 0, len(s.SelectedEmployees))
	for _, id := range s.SelectedEmployees {
		emp, ok := e.machine.Dataset().Employee(id)
		if !ok {
			continue
		}
		row := []string{emp.ID, emp.FullName()}
		for _, fieldID := range s.SelectedFields {
			v, _ := emp.FieldValue(fieldID)
			row = append(row, v)
		}
		rows = append(rows, row)
	}
	return headers, rows
}

// WriteTemplateCSV 写出 CSV 模板
func (e *Exporter) WriteTemplateCSV(w io.Writer, s wizard.State) error {
	if len(s.SelectedEmployees) == 0 {
		return ErrNoEmployees
	}
	headers, rows := e.TemplateTable(s)

	cw := csv.NewWriter(w)
	if err := cw.Write(headers); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("write rows: %w", err)
	}
	return nil
}

// TemplateWorkbook 生成 XLSX 模板：表头样式、枚举字段下拉校验，以及字段说明页
func (e *Exporter) TemplateWorkbook(s wizard.State) (*excelize.File, error) {
	if len(s.SelectedEmployees) == 0 {
		return nil, ErrNoEmployees
	}
	headers, rows := e.TemplateTable(s)

	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", templateSheet); err != nil {
		_ = f.Close()
		return nil, err
	}
	if err := writeTable(f, templateSheet, headers, stringRows(rows)); err != nil {
		_ = f.Close()
		return nil, err
	}

	index := e.machine.Dataset().Index()
	lastRow := len(rows) + 1
	for i, fieldID := range s.SelectedFields {
		field, ok := index.Field(fieldID)
		if !ok || field.Type != model.FieldDropdown || len(field.Options) == 0 || lastRow < 2 {
			continue
		}
		col, _ := excelize.ColumnNumberToName(i + 3)
		dv := excelize.NewDataValidation(true)
		dv.Sqref = fmt.Sprintf("%s2:%s%d", col, col, lastRow)
		if err := dv.SetDropList(field.Options); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("field %s: %w", fieldID, err)
		}
		if err := f.AddDataValidation(templateSheet, dv); err != nil {
			_ = f.Close()
			return nil, err
		}
	}
	_ = f.SetPanes(templateSheet, &excelize.Panes{
		Freeze:      true,
		XSplit:      1,
		YSplit:      1,
		TopLeftCell: "B2",
		ActivePane:  "bottomRight",
	})
	_ = f.SetColWidth(templateSheet, "A", "A", 14)
	_ = f.SetColWidth(templateSheet, "B", "B", 24)
	if len(headers) > 2 {
		last, _ := excelize.ColumnNumberToName(len(headers))
		_ = f.SetColWidth(templateSheet, "C", last, 20)
	}

	if err := e.writeFieldsSheet(f, s); err != nil {
		_ = f.Close()
		return nil, err
	}
	f.SetActiveSheet(0)
	return f, nil
}

// writeFieldsSheet 字段说明：id、显示名、类型、当前权限场景下的权限、可选值
func (e *Exporter) writeFieldsSheet(f *excelize.File, s wizard.State) error {
	if _, err := f.NewSheet(fieldsSheet); err != nil {
		return err
	}
	index := e.machine.Dataset().Index()
	headers := []string{"Field ID", "Label", "Category", "Type", "Permission", "Options"}
	rows := make([][]any, 0, len(s.SelectedFields))
	for _, id := range s.SelectedFields {
		field, ok := index.Field(id)
		if !ok {
			continue
		}
		rows = append(rows, []any{
			field.ID,
			field.Label,
			index.CategoryOf(id),
			string(field.Type),
			string(e.machine.FieldPermission(s, id)),
			strings.Join(field.Options, ", "),
		})
	}
	return writeTable(f, fieldsSheet, headers, rows)
}

// writeTable 写表头（加粗、底色）与数据行
func writeTable(f *excelize.File, sheet string, headers []string, rows [][]any) error {
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#E2E8F0"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return err
	}
	if err := f.SetRowStyle(sheet, 1, 1, headerStyle); err != nil {
		return err
	}

	for r, row := range rows {
		for c, v := range row {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
	}
	return nil
}

func stringRows(rows [][]string) [][]any {
	out := make([][]any, len(rows))
	for i, row := range rows {
		out[i] = make([]any, len(row))
		for j, v := range row {
			out[i][j] = v
		}
	}
	return out
}
