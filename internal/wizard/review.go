package wizard

import (
	"fmt"
	"time"

	"github.com/shivamuserology/bulk-change/internal/model"
)

const displayDateLayout = "Jan 2, 2006"

// DefaultPreviewLimit 复核页预览的员工数
const DefaultPreviewLimit = 5

// FieldChange 复核页的单个字段修改
type FieldChange struct {
	FieldID       string           `json:"fieldId"`
	Label         string           `json:"label"`
	Permission    model.Permission `json:"permission"`
	Change        string           `json:"change"`
	NeedsApproval bool             `json:"needsApproval"`
}

// PreviewValue 单个员工单个字段的修改前后值
type PreviewValue struct {
	Before string `json:"before"`
	After  string `json:"after"`
	Error  string `json:"error,omitempty"`
}

// PreviewRow 单个员工的修改预览
type PreviewRow struct {
	EmployeeID string                  `json:"employeeId"`
	Name       string                  `json:"name"`
	Values     map[string]PreviewValue `json:"values"`
}

// Review 第 5 步复核摘要
type Review struct {
	EmployeeCount  int           `json:"employeeCount"`
	FieldCount     int           `json:"fieldCount"`
	EffectiveDate  string        `json:"effectiveDate"`
	Changes        []FieldChange `json:"changes"`
	NeedsApproval  bool          `json:"needsApproval"`
	ApprovalFields []string      `json:"approvalFields,omitempty"`
	Message        string        `json:"message"`
	Preview        []PreviewRow  `json:"preview"`
}

// NextPayPeriod 下一个发薪周期：下个月 1 日
func NextPayPeriod(now time.Time) time.Time {
	y, mo, _ := now.Date()
	return time.Date(y, mo+1, 1, 0, 0, 0, 0, now.Location())
}

// EffectiveDateLabel 生效时间的展示文本
func (m *Machine) EffectiveDateLabel(d EffectiveDate) string {
	switch d.Kind {
	case EffectiveImmediate, "":
		return "Immediately"
	case EffectiveNextPayPeriod:
		return NextPayPeriod(m.now()).Format(displayDateLayout)
	case EffectiveCustom:
		t, err := time.Parse(dateLayout, d.CustomDate)
		if err != nil {
			return "Custom date"
		}
		return t.Format(displayDateLayout)
	}
	return string(d.Kind)
}

// ReviewSummary 生成复核摘要；审批只在非 full_access 场景下生效
func (m *Machine) ReviewSummary(s State, previewLimit int) Review {
	r := Review{
		EmployeeCount: len(s.SelectedEmployees),
		FieldCount:    len(s.SelectedFields),
		EffectiveDate: m.EffectiveDateLabel(s.EffectiveDate),
		Changes:       make([]FieldChange, 0, len(s.SelectedFields)),
		Preview:       []PreviewRow{},
	}
	idx := m.data.Index()
	for _, id := range s.SelectedFields {
		perm := m.FieldPermission(s, id)
		change := "Default/Unchanged"
		if spec, ok := s.FieldValues[id]; ok {
			change = spec.Describe()
		}
		fc := FieldChange{
			FieldID:    id,
			Label:      idx.Label(id),
			Permission: perm,
			Change:     change,
		}
		if perm == model.PermissionApprovalRequired && s.PermissionScenario != PermissionFullAccess {
			fc.NeedsApproval = true
			r.ApprovalFields = append(r.ApprovalFields, id)
		}
		r.Changes = append(r.Changes, fc)
	}
	r.NeedsApproval = len(r.ApprovalFields) > 0

	if r.NeedsApproval {
		r.Message = "All changes will be queued for approval. Notifications will be sent once reviewed."
	} else {
		r.Message = fmt.Sprintf("You are about to update %d employee records. This action cannot be undone.", r.EmployeeCount)
	}

	if previewLimit <= 0 {
		previewLimit = DefaultPreviewLimit
	}
	for _, empID := range s.SelectedEmployees {
		if len(r.Preview) >= previewLimit {
			break
		}
		e, ok := m.data.Employee(empID)
		if !ok {
			continue
		}
		row := PreviewRow{EmployeeID: e.ID, Name: e.FullName(), Values: map[string]PreviewValue{}}
		for _, id := range s.SelectedFields {
			before, _ := e.FieldValue(id)
			pv := PreviewValue{Before: before, After: before}
			if spec, ok := s.FieldValues[id]; ok {
				after, err := spec.Apply(before)
				if err != nil {
					pv.Error = err.Error()
				} else {
					pv.After = after
				}
			}
			row.Values[id] = pv
		}
		r.Preview = append(r.Preview, row)
	}
	return r
}
