package wizard

import (
	"github.com/shivamuserology/bulk-change/internal/model"
)

// ValidationRequestFor 由状态构造校验请求
func ValidationRequestFor(s State) ValidationRequest {
	return ValidationRequest{
		SelectedEmployees: copyStrings(s.SelectedEmployees),
		SelectedFields:    copyStrings(s.SelectedFields),
		FieldValues:       copyValues(s.FieldValues),
		Outcome:           s.OutcomeScenario,
		Permission:        s.PermissionScenario,
	}
}

// RunValidation 运行校验策略并整体替换校验结果
func (m *Machine) RunValidation(s State) (State, error) {
	if err := ensureIdle(&s); err != nil {
		return s, err
	}
	if len(s.SelectedEmployees) == 0 {
		return s, ErrNoEmployees
	}
	result := m.validator.Validate(ValidationRequestFor(s))
	result.CheckedAt = m.now()

	next := s.Clone()
	next.ValidationResults = &result
	if next.ExecutionStatus.Finished() {
		next.ExecutionStatus = nil
	}
	return next, nil
}

// CanProceed 当前校验结果是否允许进入复核
func (s *State) CanProceed() bool {
	return s.ValidationResults.CanProceed()
}

// ValidationSummary 校验结果计数
type ValidationSummary struct {
	Status         model.ValidationStatus `json:"status"`
	Passed         int                    `json:"passed"`
	Failed         int                    `json:"failed"`
	Errors         int                    `json:"errors"`
	BlockingErrors int                    `json:"blockingErrors"`
	Warnings       int                    `json:"warnings"`
}

// Summarize 汇总校验结果，nil 返回零值
func Summarize(r *model.ValidationResult) ValidationSummary {
	if r == nil {
		return ValidationSummary{}
	}
	return ValidationSummary{
		Status:         r.Status,
		Passed:         len(r.PassedEmployees),
		Failed:         len(r.FailedEmployees),
		Errors:         len(r.Errors),
		BlockingErrors: r.BlockingErrors(),
		Warnings:       len(r.Warnings),
	}
}
