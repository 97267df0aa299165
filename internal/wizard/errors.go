package wizard

import "errors"

var (
	ErrInvalidStep         = errors.New("step out of range")
	ErrNoEmployees         = errors.New("select at least one employee first")
	ErrNoFields            = errors.New("select at least one field first")
	ErrValidationBlocking  = errors.New("validation has not passed")
	ErrExecutionIncomplete = errors.New("execution has not finished")
	ErrExecutionRunning    = errors.New("execution is running")
	ErrNothingToExecute    = errors.New("no employees selected for execution")
	ErrUnknownEmployee     = errors.New("unknown employee")
	ErrUnknownField        = errors.New("unknown field")
	ErrFieldNoAccess       = errors.New("field is not editable under the current permission scenario")
	ErrFieldNotSelected    = errors.New("field is not selected")
	ErrNoExecution         = errors.New("no execution in progress")
	ErrCustomDateRequired  = errors.New("custom effective date requires a date")
	ErrInvalidDate         = errors.New("invalid date, expected YYYY-MM-DD")
	ErrUnknownDateKind     = errors.New("unknown effective date kind")
	ErrDraftNotFound       = errors.New("draft not found")
	ErrLogEntryNotFound    = errors.New("action log entry not found")
	ErrUnknownScenario     = errors.New("unknown scenario")
)
