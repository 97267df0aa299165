package wizard

import (
	"fmt"
	"strings"

	"github.com/shivamuserology/bulk-change/internal/model"
)

// ImportSummary 导入结果摘要
type ImportSummary struct {
	Valid         int      `json:"valid"`
	Invalid       int      `json:"invalid"`
	InvalidIDs    []string `json:"invalidIds"`
	SkippedFields []string `json:"skippedFields,omitempty"`
}

// CompletePayload 完整导入数据：员工、字段与每个字段的修改
type CompletePayload struct {
	EmployeeIDs []string                  `json:"employeeIds"`
	Fields      []string                  `json:"fields"`
	Values      map[string]model.EditSpec `json:"values"`
}

func trimIDs(ids []string) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = strings.TrimSpace(id)
	}
	return out
}

// ImportCSVEmployees 以导入的 id 列表替换员工选择并跳到第 2 步。
// valid + invalid 始终等于输入条数（含重复）。
func (m *Machine) ImportCSVEmployees(s State, ids []string) (State, ImportSummary, error) {
	if err := ensureIdle(&s); err != nil {
		return s, ImportSummary{}, err
	}
	valid, invalid := m.data.Partition(trimIDs(ids))
	summary := ImportSummary{
		Valid:      len(valid),
		Invalid:    len(invalid),
		InvalidIDs: invalid,
	}

	next := s.Clone()
	next.SelectedEmployees = dedupe(valid)
	next.CurrentStep = StepAttributes
	invalidate(&next)
	next.ActionLog = m.prependLog(next.ActionLog, model.ActionLogEntry{
		Type:    model.LogImport,
		Summary: fmt.Sprintf("Imported %d employees from CSV", summary.Valid),
		Details: map[string]any{
			"valid":      summary.Valid,
			"invalid":    summary.Invalid,
			"invalidIds": copyStrings(invalid),
		},
	})
	return next, summary, nil
}

// ImportCSVComplete 以完整导入数据覆盖员工、字段与修改，并跳到第 4 步。
// 未知字段与当前权限下不可访问的字段不会进入选择与修改，记录在 SkippedFields。
func (m *Machine) ImportCSVComplete(s State, payload CompletePayload) (State, ImportSummary, error) {
	if err := ensureIdle(&s); err != nil {
		return s, ImportSummary{}, err
	}
	valid, invalid := m.data.Partition(trimIDs(payload.EmployeeIDs))
	summary := ImportSummary{
		Valid:      len(valid),
		Invalid:    len(invalid),
		InvalidIDs: invalid,
	}

	fields := make([]string, 0, len(payload.Fields))
	for _, id := range dedupe(payload.Fields) {
		if m.FieldPermission(s, id) == model.PermissionNoAccess {
			summary.SkippedFields = append(summary.SkippedFields, id)
			continue
		}
		fields = append(fields, id)
	}

	values := make(map[string]model.EditSpec, len(fields))
	for _, id := range fields {
		spec, ok := payload.Values[id]
		if !ok {
			continue
		}
		f, _ := m.data.Index().Field(id)
		if err := spec.Validate(f); err != nil {
			return s, ImportSummary{}, fmt.Errorf("field %s: %w", id, err)
		}
		values[id] = spec
	}

	next := s.Clone()
	next.SelectedEmployees = dedupe(valid)
	next.SelectedFields = fields
	next.FieldValues = values
	next.CurrentStep = StepValidate
	invalidate(&next)
	next.ActionLog = m.prependLog(next.ActionLog, model.ActionLogEntry{
		Type:    model.LogImport,
		Summary: fmt.Sprintf("Imported %d employees and %d fields from CSV", summary.Valid, len(fields)),
		Details: map[string]any{
			"valid":         summary.Valid,
			"invalid":       summary.Invalid,
			"invalidIds":    copyStrings(invalid),
			"fields":        copyStrings(fields),
			"skippedFields": copyStrings(summary.SkippedFields),
		},
	})
	return next, summary, nil
}
