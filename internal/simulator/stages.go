package simulator

import (
	"context"
	"time"
)

// DefaultValidationTick 校验动画每步间隔
const DefaultValidationTick = 150 * time.Millisecond

// Stage 校验阶段及其完成时的进度阈值
type Stage struct {
	Threshold int    `json:"threshold"`
	Label     string `json:"label"`
}

// ValidationStages 校验阶段，按顺序完成
var ValidationStages = []Stage{
	{Threshold: 20, Label: "Checking business rules"},
	{Threshold: 40, Label: "Validating permissions"},
	{Threshold: 60, Label: "Checking downstream systems"},
	{Threshold: 80, Label: "Verifying third-party apps"},
	{Threshold: 100, Label: "Detecting conflicts"},
}

// StageProgress 一次进度推送
type StageProgress struct {
	Progress  int      `json:"progress"`
	Current   string   `json:"current"`
	Completed []string `json:"completed"`
}

// CompletedStages 进度达到阈值的阶段
func CompletedStages(progress int) []string {
	out := []string{}
	for _, st := range ValidationStages {
		if progress >= st.Threshold {
			out = append(out, st.Label)
		}
	}
	return out
}

// currentStage 尚未完成的第一个阶段，全部完成时返回最后一个
func currentStage(progress int) string {
	for _, st := range ValidationStages {
		if progress < st.Threshold {
			return st.Label
		}
	}
	return ValidationStages[len(ValidationStages)-1].Label
}

// RunStages 以 tick 为间隔从 10% 推进到 100%，每步回调 emit
func RunStages(ctx context.Context, tick time.Duration, emit func(StageProgress)) error {
	for p := 10; p <= 100; p += 10 {
		if tick > 0 {
			t := time.NewTimer(tick)
			select {
			case <-ctx.Done():
				t.Stop()
				return ctx.Err()
			case <-t.C:
			}
		} else if err := ctx.Err(); err != nil {
			return err
		}
		emit(StageProgress{
			Progress:  p,
			Current:   currentStage(p),
			Completed: CompletedStages(p),
		})
	}
	return nil
}
