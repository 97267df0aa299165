package importer

import (
	"io"
	"strconv"
	"strings"

	"github.com/shivamuserology/bulk-change/internal/model"
	"github.com/shivamuserology/bulk-change/internal/wizard"
)

// ParseCompleteFile 解析长表格式的完整修改文件：
// employee_id,field,type,value,is_percent（type 与 is_percent 可省略）。
// 同一字段以第一条修改为准，后续不一致的修改只记警告。
func (c *Coordinator) ParseCompleteFile(name string, r io.Reader) (*CompleteFile, error) {
	ctx, err := c.open(name, r, KindComplete)
	if err != nil {
		return nil, err
	}
	table := ctx.table
	if len(table.Rows) == 0 {
		return nil, ErrEmptyFile
	}

	idCol := findColumn(table.Headers, idHeaders)
	if idCol < 0 {
		idCol = findColumn(table.Headers, emailHeaders)
	}
	fieldCol := findColumn(table.Headers, fieldHeaders)
	valueCol := findColumn(table.Headers, valueHeaders)
	typeCol := findColumn(table.Headers, typeHeaders)
	percentCol := findColumn(table.Headers, percentHeaders)
	switch {
	case idCol < 0:
		return nil, missingColumn("employee_id")
	case fieldCol < 0:
		return nil, missingColumn("field")
	case valueCol < 0:
		return nil, missingColumn("value")
	}

	payload := wizard.CompletePayload{
		EmployeeIDs: []string{},
		Fields:      []string{},
		Values:      map[string]model.EditSpec{},
	}
	seenEmployee := map[string]bool{}
	firstRowOf := map[string]int{}

	for i, row := range table.Rows {
		rowNum := i + 2
		rawID, rawField := row[idCol], row[fieldCol]
		if rawID == "" || rawField == "" {
			ctx.report.ErrorRows++
			ctx.report.warnf(rowNum, "missing employee or field")
			continue
		}

		spec, err := parseSpec(cell(row, typeCol), row[valueCol], cell(row, percentCol))
		if err != nil {
			ctx.report.ErrorRows++
			ctx.report.warnf(rowNum, "%v", err)
			continue
		}

		fieldID := rawField
		if f, ok := ResolveField(c.data.Index(), rawField); ok {
			fieldID = f.ID
		} else {
			ctx.report.warnf(rowNum, "unknown field %q", rawField)
		}

		id := c.resolveEmployee(ctx, rowNum, rawID)
		if !seenEmployee[id] {
			seenEmployee[id] = true
			payload.EmployeeIDs = append(payload.EmployeeIDs, id)
		}

		if prev, ok := payload.Values[fieldID]; ok {
			if prev != spec {
				ctx.report.warnf(rowNum, "conflicting edit for field %s; keeping row %d", fieldID, firstRowOf[fieldID])
			}
		} else {
			payload.Fields = append(payload.Fields, fieldID)
			payload.Values[fieldID] = spec
			firstRowOf[fieldID] = rowNum
		}
		ctx.report.ImportedRows++
	}

	return &CompleteFile{Payload: payload, Report: ctx.finish()}, nil
}

// parseSpec 由单元格构造修改描述，value 以 % 结尾时视为百分比
func parseSpec(typ, value, percent string) (model.EditSpec, error) {
	spec := model.EditSpec{Type: model.EditSet, Value: value}
	if typ != "" {
		spec.Type = model.EditType(strings.ToLower(typ))
	}
	switch spec.Type {
	case model.EditSet, model.EditReplace, model.EditIncrease, model.EditDecrease:
	default:
		return spec, model.ErrUnknownEditType
	}
	if strings.HasSuffix(value, "%") {
		spec.Value = strings.TrimSpace(strings.TrimSuffix(value, "%"))
		spec.IsPercent = true
	}
	if percent != "" {
		b, err := parseBool(percent)
		if err != nil {
			return spec, err
		}
		spec.IsPercent = spec.IsPercent || b
	}
	if spec.Relative() {
		if _, err := strconv.ParseFloat(spec.Value, 64); err != nil {
			return spec, model.ErrNonNumericValue
		}
	}
	return spec, nil
}

func parseBool(v string) (bool, error) {
	switch strings.ToLower(v) {
	case "y", "yes", "x":
		return true, nil
	case "n", "no":
		return false, nil
	}
	return strconv.ParseBool(v)
}

func cell(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return row[col]
}
