package wizard

import (
	"time"

	"github.com/shivamuserology/bulk-change/internal/model"
)

// EffectiveKind 生效时间类型
type EffectiveKind string

const (
	EffectiveImmediate     EffectiveKind = "immediate"
	EffectiveNextPayPeriod EffectiveKind = "next_pay_period"
	EffectiveCustom        EffectiveKind = "custom"
)

// EffectiveDate 生效时间选择
type EffectiveDate struct {
	Kind       EffectiveKind `json:"kind"`
	CustomDate string        `json:"customDate,omitempty"` // YYYY-MM-DD，仅 custom 使用
}

// Draft 草稿：可编辑状态子集的快照，只存在于内存
type Draft struct {
	ID                string                    `json:"id"`
	SavedAt           time.Time                 `json:"savedAt"`
	SelectedEmployees []string                  `json:"selectedEmployees"`
	SelectedFields    []string                  `json:"selectedFields"`
	FieldValues       map[string]model.EditSpec `json:"fieldValues"`
	EffectiveDate     EffectiveDate             `json:"effectiveDate"`
	CurrentStep       Step                      `json:"currentStep"`
}

// State 向导状态：可序列化，只能通过 Machine 的动作方法产生新值
type State struct {
	CurrentStep       Step                      `json:"currentStep"`
	SelectedEmployees []string                  `json:"selectedEmployees"`
	Filters           map[string][]string       `json:"filters"`
	SelectedFields    []string                  `json:"selectedFields"`
	FieldValues       map[string]model.EditSpec `json:"fieldValues"`
	EffectiveDate     EffectiveDate             `json:"effectiveDate"`
	ValidationResults *model.ValidationResult   `json:"validationResults"`
	ExecutionStatus   *model.ExecutionStatus    `json:"executionStatus"`
	ActionLog         []model.ActionLogEntry    `json:"actionLog"`

	// 演示控制
	PermissionScenario PermissionScenario `json:"permissionScenario"`
	OutcomeScenario    OutcomeScenario    `json:"outcomeScenario"`
	EntryMode          EntryMode          `json:"entryMode"`

	Drafts         []Draft `json:"drafts"`
	CurrentDraftID string  `json:"currentDraftId,omitempty"`
}

// blankState 不含操作日志的初始状态
func blankState() State {
	return State{
		CurrentStep:        StepSelect,
		SelectedEmployees:  []string{},
		Filters:            map[string][]string{},
		SelectedFields:     []string{},
		FieldValues:        map[string]model.EditSpec{},
		EffectiveDate:      EffectiveDate{Kind: EffectiveImmediate},
		ActionLog:          []model.ActionLogEntry{},
		PermissionScenario: PermissionFullAccess,
		OutcomeScenario:    OutcomeHappyPath,
		EntryMode:          EntryUIGuided,
		Drafts:             []Draft{},
	}
}

// Clone 深拷贝，动作方法在副本上修改以保证不改动输入
func (s State) Clone() State {
	out := s
	out.SelectedEmployees = copyStrings(s.SelectedEmployees)
	out.SelectedFields = copyStrings(s.SelectedFields)
	out.Filters = copyFilters(s.Filters)
	out.FieldValues = copyValues(s.FieldValues)
	out.ValidationResults = s.ValidationResults.Clone()
	out.ExecutionStatus = s.ExecutionStatus.Clone()

	out.ActionLog = make([]model.ActionLogEntry, len(s.ActionLog))
	for i, e := range s.ActionLog {
		out.ActionLog[i] = e.Clone()
	}
	out.Drafts = make([]Draft, len(s.Drafts))
	for i, d := range s.Drafts {
		out.Drafts[i] = d.clone()
	}
	return out
}

func (d Draft) clone() Draft {
	d.SelectedEmployees = copyStrings(d.SelectedEmployees)
	d.SelectedFields = copyStrings(d.SelectedFields)
	d.FieldValues = copyValues(d.FieldValues)
	return d
}

// IsEmployeeSelected 员工是否已选中
func (s *State) IsEmployeeSelected(id string) bool {
	return indexOf(s.SelectedEmployees, id) >= 0
}

// IsFieldSelected 字段是否已选中
func (s *State) IsFieldSelected(id string) bool {
	return indexOf(s.SelectedFields, id) >= 0
}

func copyStrings(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}

func copyFilters(in map[string][]string) map[string][]string {
	out := make(map[string][]string, len(in))
	for k, v := range in {
		out[k] = copyStrings(v)
	}
	return out
}

func copyValues(in map[string]model.EditSpec) map[string]model.EditSpec {
	out := make(map[string]model.EditSpec, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func indexOf(items []string, v string) int {
	for i, it := range items {
		if it == v {
			return i
		}
	}
	return -1
}

// dedupe 去重并保持首次出现的顺序
func dedupe(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, it := range items {
		if _, ok := seen[it]; ok {
			continue
		}
		seen[it] = struct{}{}
		out = append(out, it)
	}
	return out
}
