package simulator

import (
	"context"
	"time"

	"github.com/shivamuserology/bulk-change/internal/model"
	"github.com/shivamuserology/bulk-change/internal/wizard"
)

// DefaultExecutionDelay 每名员工的模拟处理耗时
const DefaultExecutionDelay = 100 * time.Millisecond

// Executor 可取消的执行模拟器：逐个处理员工，每次迭代前检查 ctx
type Executor struct {
	Delay time.Duration
	now   func() time.Time
}

// NewExecutor 创建执行模拟器，delay < 0 时使用默认值
func NewExecutor(delay time.Duration) *Executor {
	if delay < 0 {
		delay = DefaultExecutionDelay
	}
	return &Executor{Delay: delay, now: time.Now}
}

// Execute 实现 wizard.Executor
func (x *Executor) Execute(ctx context.Context, req wizard.ExecutionRequest, progress wizard.ProgressFunc) model.ExecutionStatus {
	total := len(req.EmployeeIDs)
	started := x.now()

	for i, id := range req.EmployeeIDs {
		if err := x.wait(ctx); err != nil {
			return cancelledStatus(req.EmployeeIDs, i, started, x.now())
		}
		if progress != nil {
			progress(model.ExecutionStatus{
				Status:          model.ExecutionRunning,
				Progress:        percent(i+1, total),
				CurrentEmployee: id,
				Processed:       i + 1,
				Total:           total,
				StartedAt:       started,
			})
		}
	}

	final := FinalStatus(req.EmployeeIDs, req.Outcome)
	final.StartedAt = started
	finished := x.now()
	final.FinishedAt = &finished
	return final
}

// wait 等待一个处理周期，期间被取消则返回 ctx 的错误
func (x *Executor) wait(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if x.Delay <= 0 {
		return nil
	}
	t := time.NewTimer(x.Delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// FinalStatus 按结果场景给出执行的最终状态。
// partial_failure：最后 ceil(N/10) 名员工失败，其余成功。
// tpa_failure：全部成功，但 Google Workspace 待同步、GitHub 同步失败。
func FinalStatus(ids []string, outcome wizard.OutcomeScenario) model.ExecutionStatus {
	total := len(ids)
	status := model.ExecutionStatus{
		Status:       model.ExecutionSuccess,
		Progress:     100,
		Processed:    total,
		Total:        total,
		SuccessCount: total,
		TPAStatus:    allIntegrations(model.SyncSuccess),
	}

	switch outcome {
	case wizard.OutcomePartialFailure:
		failed := (total + 9) / 10
		if failed > 0 {
			status.Status = model.ExecutionPartial
			status.FailedCount = failed
			status.SuccessCount = total - failed
			status.FailedEmployees = append([]string{}, ids[total-failed:]...)
		}
	case wizard.OutcomeTPAFailure:
		status.TPAStatus[model.IntegrationGoogleWorkspace] = model.SyncPending
		status.TPAStatus[model.IntegrationGithub] = model.SyncFailed
	}
	return status
}

// cancelledStatus 取消后的部分结果：已处理的员工视为成功，其余列入 skipped
func cancelledStatus(ids []string, processed int, started, finished time.Time) model.ExecutionStatus {
	total := len(ids)
	return model.ExecutionStatus{
		Status:           model.ExecutionCancelled,
		Progress:         percent(processed, total),
		Processed:        processed,
		Total:            total,
		SuccessCount:     processed,
		SkippedEmployees: append([]string{}, ids[processed:]...),
		TPAStatus:        allIntegrations(model.SyncPending),
		StartedAt:        started,
		FinishedAt:       &finished,
	}
}

func allIntegrations(s model.SyncStatus) map[model.Integration]model.SyncStatus {
	out := make(map[model.Integration]model.SyncStatus, len(model.Integrations))
	for _, in := range model.Integrations {
		out[in] = s
	}
	return out
}

func percent(done, total int) float64 {
	if total == 0 {
		return 100
	}
	return float64(done) * 100 / float64(total)
}
