package wizard

import "fmt"

// Step 向导步骤（1-7）
type Step int

const (
	StepSelect Step = iota + 1
	StepAttributes
	StepValues
	StepValidate
	StepReview
	StepExecute
	StepResults
)

// FirstStep / LastStep 步骤边界
const (
	FirstStep = StepSelect
	LastStep  = StepResults
)

// StepInfo 步骤展示信息
type StepInfo struct {
	ID    Step   `json:"id"`
	Name  string `json:"name"`
	Short string `json:"short"`
}

// Steps 固定的步骤序列
var Steps = []StepInfo{
	{ID: StepSelect, Name: "Select Employees", Short: "Select"},
	{ID: StepAttributes, Name: "Choose Attributes", Short: "Attributes"},
	{ID: StepValues, Name: "Specify Values", Short: "Values"},
	{ID: StepValidate, Name: "Validation", Short: "Validate"},
	{ID: StepReview, Name: "Review & Confirm", Short: "Review"},
	{ID: StepExecute, Name: "Execute", Short: "Execute"},
	{ID: StepResults, Name: "Post-Execution", Short: "Results"},
}

// Valid 是否在 1..7 范围内
func (s Step) Valid() bool {
	return s >= FirstStep && s <= LastStep
}

func (s Step) String() string {
	if !s.Valid() {
		return fmt.Sprintf("Step(%d)", int(s))
	}
	return Steps[s-1].Short
}

// StartStep 进入方式决定初始步骤
func StartStep(mode EntryMode) Step {
	switch mode {
	case EntryCSVComplete:
		return StepValidate
	case EntryCSVEmployeeList:
		return StepAttributes
	default:
		return StepSelect
	}
}

// CheckTransition 步骤跳转守卫：纯函数，只依赖状态。
// 后退总是允许；前进需满足每一步的前置条件。
func CheckTransition(s *State, target Step) error {
	if !target.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidStep, int(target))
	}
	if s.ExecutionStatus != nil && !s.ExecutionStatus.Finished() && target != StepExecute {
		return ErrExecutionRunning
	}
	if target <= s.CurrentStep {
		return nil
	}
	if target > StepSelect && len(s.SelectedEmployees) == 0 {
		return ErrNoEmployees
	}
	if target > StepAttributes && len(s.SelectedFields) == 0 {
		return ErrNoFields
	}
	if target > StepValidate && !s.ValidationResults.CanProceed() {
		return ErrValidationBlocking
	}
	if target > StepExecute && !s.ExecutionStatus.Finished() {
		return ErrExecutionIncomplete
	}
	return nil
}

// reachableStep 从第一步出发不超过 target 的最远可达步骤
func reachableStep(s State, target Step) Step {
	probe := s
	probe.CurrentStep = FirstStep
	for target > FirstStep && CheckTransition(&probe, target) != nil {
		target--
	}
	return target
}
