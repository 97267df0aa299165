package importer

import (
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/shivamuserology/bulk-change/internal/mockdata"
	"github.com/shivamuserology/bulk-change/internal/wizard"
)

// Coordinator 导入协调器：读取文件并对照数据集解析
type Coordinator struct {
	data *mockdata.Dataset
}

// NewCoordinator 创建导入协调器
func NewCoordinator(data *mockdata.Dataset) *Coordinator {
	return &Coordinator{data: data}
}

// EmployeeList 员工名单解析结果
type EmployeeList struct {
	IDs    []string `json:"ids"`
	Report Report   `json:"report"`
}

// CompleteFile 完整修改文件解析结果
type CompleteFile struct {
	Payload wizard.CompletePayload `json:"payload"`
	Report  Report                 `json:"report"`
}

// importContext 单次导入的上下文
type importContext struct {
	table     *Table
	report    Report
	startTime time.Time
}

// open 读取文件并初始化报告
func (c *Coordinator) open(name string, r io.Reader, kind FileKind) (*importContext, error) {
	start := time.Now()
	table, warnings, err := ReadTable(name, r)
	if err != nil {
		return nil, err
	}
	return &importContext{
		table:     table,
		startTime: start,
		report: Report{
			Filename:  filepath.Base(name),
			Format:    table.Format,
			Kind:      kind,
			TotalRows: len(table.Rows),
			Warnings:  warnings,
		},
	}, nil
}

func (ctx *importContext) finish() Report {
	ctx.report.Duration = time.Since(ctx.startTime)
	return ctx.report
}

// Detect 读取表头并识别文件类型
func (c *Coordinator) Detect(name string, r io.Reader) (FileKind, error) {
	table, _, err := ReadTable(name, r)
	if err != nil {
		return KindUnknown, err
	}
	return Recognize(c.data.Index(), table.Headers), nil
}

// resolveEmployee 员工 id 或邮箱解析为 id；无法解析时返回原值，由向导计入无效
func (c *Coordinator) resolveEmployee(ctx *importContext, row int, v string) string {
	if id, ok := c.data.ResolveIdentifier(v); ok {
		return id
	}
	ctx.report.ErrorRows++
	ctx.report.warnf(row, "unknown employee %q", v)
	return v
}

func missingColumn(name string) error {
	return fmt.Errorf("%w: %s", ErrMissingColumn, name)
}
