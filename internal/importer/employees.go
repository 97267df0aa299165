package importer

import (
	"io"
)

// ParseEmployeeList 解析员工名单。
// 按表头找 id 列或邮箱列；都没有时取第一列，且表头本身是员工时视为无表头文件。
// 无法识别的条目原样保留，由向导在导入时计为无效。
func (c *Coordinator) ParseEmployeeList(name string, r io.Reader) (*EmployeeList, error) {
	ctx, err := c.open(name, r, KindEmployeeList)
	if err != nil {
		return nil, err
	}
	table := ctx.table

	col := findColumn(table.Headers, idHeaders)
	if col < 0 {
		col = findColumn(table.Headers, emailHeaders)
	}
	rows := table.Rows
	firstRow := 2
	if col < 0 {
		col = 0
		if _, ok := c.data.ResolveIdentifier(table.Headers[0]); ok {
			rows = append([][]string{table.Headers}, rows...)
			firstRow = 1
			ctx.report.TotalRows++
		}
	}
	if len(rows) == 0 {
		return nil, ErrEmptyFile
	}

	ids := make([]string, 0, len(rows))
	for i, row := range rows {
		v := row[col]
		if v == "" {
			ctx.report.warnf(firstRow+i, "empty identifier")
			ctx.report.ErrorRows++
			continue
		}
		id := c.resolveEmployee(ctx, firstRow+i, v)
		if c.data.Has(id) {
			ctx.report.ImportedRows++
		}
		ids = append(ids, id)
	}

	return &EmployeeList{IDs: ids, Report: ctx.finish()}, nil
}
