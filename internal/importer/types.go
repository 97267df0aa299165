package importer

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrEmptyFile     = errors.New("file contains no data rows")
	ErrMissingColumn = errors.New("required column not found")
)

// Format 文件格式
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// FileKind 文件内容类型
type FileKind string

const (
	KindEmployeeList FileKind = "employee_list" // 员工名单：一列 id 或邮箱
	KindComplete     FileKind = "complete"      // 完整修改：employee_id,field,type,value,is_percent
	KindTemplate     FileKind = "template"      // 模板回填：Employee ID,Name,<字段>
	KindUnknown      FileKind = "unknown"
)

// Warning 非致命问题，行号从 1 开始（表头为第 1 行）
type Warning struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// Table 读入的原始表格
type Table struct {
	Format  Format
	Sheet   string
	Headers []string
	Rows    [][]string
}

// Report 导入报告
type Report struct {
	Filename     string        `json:"filename"`
	Format       Format        `json:"format"`
	Kind         FileKind      `json:"kind"`
	TotalRows    int           `json:"totalRows"`
	ImportedRows int           `json:"importedRows"`
	ErrorRows    int           `json:"errorRows"`
	Warnings     []Warning     `json:"warnings,omitempty"`
	Duration     time.Duration `json:"duration"`
}

func (r *Report) warnf(row int, format string, args ...any) {
	r.Warnings = append(r.Warnings, Warning{Row: row, Message: fmt.Sprintf(format, args...)})
}
