package importer

import (
	"io"
	"strconv"

	"github.com/shivamuserology/bulk-change/internal/model"
	"github.com/shivamuserology/bulk-change/internal/wizard"
)

// ParseTemplate 解析回填的宽表模板（Employee ID,Name,<字段显示名>）。
// 每个字段只在所有改动单元格取值一致时生成一条 set 修改；
// 空单元格或与当前值相同的单元格视为未改动。
func (c *Coordinator) ParseTemplate(name string, r io.Reader) (*CompleteFile, error) {
	ctx, err := c.open(name, r, KindTemplate)
	if err != nil {
		return nil, err
	}
	table := ctx.table
	if len(table.Rows) == 0 {
		return nil, ErrEmptyFile
	}

	idCol := findColumn(table.Headers, idHeaders)
	if idCol < 0 {
		return nil, missingColumn("Employee ID")
	}
	columns := fieldColumns(c.data.Index(), table.Headers, idCol, findColumn(table.Headers, nameHeaders))
	if len(columns) == 0 {
		return nil, missingColumn("field")
	}

	payload := wizard.CompletePayload{
		EmployeeIDs: []string{},
		Fields:      []string{},
		Values:      map[string]model.EditSpec{},
	}
	changed := make(map[string][]string, len(columns))
	seen := map[string]bool{}

	for i, row := range table.Rows {
		rowNum := i + 2
		if row[idCol] == "" {
			ctx.report.ErrorRows++
			ctx.report.warnf(rowNum, "missing employee id")
			continue
		}
		id := c.resolveEmployee(ctx, rowNum, row[idCol])
		if !seen[id] {
			seen[id] = true
			payload.EmployeeIDs = append(payload.EmployeeIDs, id)
		}
		emp, ok := c.data.Employee(id)
		if !ok {
			continue
		}
		ctx.report.ImportedRows++

		for col, fieldID := range columns {
			v := row[col]
			if v == "" {
				continue
			}
			current, _ := emp.FieldValue(fieldID)
			f, _ := c.data.Index().Field(fieldID)
			if sameValue(f, current, v) {
				continue
			}
			changed[fieldID] = append(changed[fieldID], v)
		}
	}

	for _, fieldID := range c.data.Index().FieldIDs() {
		values, ok := changed[fieldID]
		if !ok {
			continue
		}
		if !allEqual(values) {
			ctx.report.warnf(0, "field %s has different values across employees; per-employee values are not supported, field skipped", fieldID)
			continue
		}
		spec := model.EditSpec{Type: model.EditSet, Value: values[0]}
		f, _ := c.data.Index().Field(fieldID)
		if err := spec.Validate(f); err != nil {
			ctx.report.warnf(0, "field %s: %v", fieldID, err)
			continue
		}
		payload.Fields = append(payload.Fields, fieldID)
		payload.Values[fieldID] = spec
	}
	for col := range table.Headers {
		fieldID, ok := columns[col]
		if !ok {
			continue
		}
		if _, ok := changed[fieldID]; !ok {
			ctx.report.warnf(0, "no changes for field %s", fieldID)
		}
	}

	return &CompleteFile{Payload: payload, Report: ctx.finish()}, nil
}

// sameValue 数值字段按数值比较，其余按字符串比较
func sameValue(f *model.Field, current, v string) bool {
	if f != nil && f.Type.Numeric() {
		a, errA := strconv.ParseFloat(current, 64)
		b, errB := strconv.ParseFloat(v, 64)
		if errA == nil && errB == nil {
			return a == b
		}
	}
	return current == v
}

func allEqual(values []string) bool {
	for _, v := range values[1:] {
		if v != values[0] {
			return false
		}
	}
	return true
}
