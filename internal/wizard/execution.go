package wizard

import (
	"fmt"

	"github.com/shivamuserology/bulk-change/internal/model"
)

// ExecutionRequestFor 由状态构造执行请求
func ExecutionRequestFor(s State) ExecutionRequest {
	return ExecutionRequest{
		EmployeeIDs: copyStrings(s.SelectedEmployees),
		Fields:      copyStrings(s.SelectedFields),
		Values:      copyValues(s.FieldValues),
		Outcome:     s.OutcomeScenario,
	}
}

// BeginExecution 进入执行步骤并标记为 running。
// 要求校验已通过，且同一时刻只有一次执行。
func (m *Machine) BeginExecution(s State) (State, error) {
	if err := ensureIdle(&s); err != nil {
		return s, err
	}
	if len(s.SelectedEmployees) == 0 {
		return s, ErrNothingToExecute
	}
	if len(s.SelectedFields) == 0 {
		return s, ErrNoFields
	}
	if !s.ValidationResults.CanProceed() {
		return s, ErrValidationBlocking
	}
	next := s.Clone()
	next.CurrentStep = StepExecute
	next.ExecutionStatus = &model.ExecutionStatus{
		Status:    model.ExecutionRunning,
		Total:     len(s.SelectedEmployees),
		StartedAt: m.now(),
	}
	return next, nil
}

// RecordProgress 写入执行进度，仅在 running 时有效
func (m *Machine) RecordProgress(s State, progress model.ExecutionStatus) (State, error) {
	if s.ExecutionStatus == nil || s.ExecutionStatus.Finished() {
		return s, ErrNoExecution
	}
	next := s.Clone()
	p := progress.Clone()
	p.Status = model.ExecutionRunning
	p.StartedAt = s.ExecutionStatus.StartedAt
	p.FinishedAt = nil
	next.ExecutionStatus = p
	return next, nil
}

// CompleteExecution 写入最终结果并追加一条 bulk_change 审计记录
func (m *Machine) CompleteExecution(s State, final model.ExecutionStatus) (State, error) {
	if s.ExecutionStatus == nil || s.ExecutionStatus.Finished() {
		return s, ErrNoExecution
	}
	if final.Status == model.ExecutionRunning {
		return s, fmt.Errorf("final status must not be %q", final.Status)
	}
	now := m.now()
	next := s.Clone()
	result := final.Clone()
	result.StartedAt = s.ExecutionStatus.StartedAt
	if result.FinishedAt == nil {
		result.FinishedAt = &now
	}
	next.ExecutionStatus = result

	entry := model.ActionLogEntry{
		Type:    model.LogBulkChange,
		Status:  logStatusFor(result.Status),
		Summary: fmt.Sprintf("Updated %d employees", len(s.SelectedEmployees)),
		Details: map[string]any{
			"employeeCount": len(s.SelectedEmployees),
			"fields":        copyStrings(s.SelectedFields),
			"effectiveDate": m.EffectiveDateLabel(s.EffectiveDate),
			"scenario":      string(s.OutcomeScenario),
			"successCount":  result.SuccessCount,
			"failedCount":   result.FailedCount,
		},
	}
	if result.Status == model.ExecutionCancelled {
		entry.Summary = fmt.Sprintf("Cancelled after updating %d of %d employees", result.Processed, result.Total)
	}
	next.ActionLog = m.prependLog(next.ActionLog, entry)
	return next, nil
}

func logStatusFor(status model.ExecutionState) string {
	switch status {
	case model.ExecutionPartial:
		return model.LogStatusPartial
	case model.ExecutionCancelled:
		return model.LogStatusCancelled
	default:
		return model.LogStatusSuccess
	}
}
