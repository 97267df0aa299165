package model

import "time"

// ValidationStatus 校验结论
type ValidationStatus string

const (
	ValidationSuccess ValidationStatus = "success"
	ValidationWarning ValidationStatus = "warning"
	ValidationError   ValidationStatus = "error"
)

// ValidationIssue 校验问题（错误或警告），只是展示用数据，不会作为 Go error 传播
type ValidationIssue struct {
	Type      string   `json:"type"` // circular_manager / invalid_email / salary_band ...
	Message   string   `json:"message"`
	Employees []string `json:"employees"`
	Blocking  bool     `json:"blocking"`
}

// ValidationResult 一次校验的完整结果，每次运行整体重算
type ValidationResult struct {
	Status          ValidationStatus  `json:"status"`
	Errors          []ValidationIssue `json:"errors"`
	Warnings        []ValidationIssue `json:"warnings"`
	PassedEmployees []string          `json:"passedEmployees"`
	FailedEmployees []string          `json:"failedEmployees"`
	CheckedAt       time.Time         `json:"checkedAt"`
}

// BlockingErrors 阻断性错误数量
func (r *ValidationResult) BlockingErrors() int {
	n := 0
	for _, e := range r.Errors {
		if e.Blocking {
			n++
		}
	}
	return n
}

// CanProceed 是否允许进入复核步骤
func (r *ValidationResult) CanProceed() bool {
	if r == nil {
		return false
	}
	return r.Status != ValidationError && r.BlockingErrors() == 0
}

// Integration 第三方应用（TPA）
type Integration string

const (
	IntegrationSlack           Integration = "slack"
	IntegrationGoogleWorkspace Integration = "googleWorkspace"
	IntegrationGithub          Integration = "github"
)

// Integrations 按展示顺序排列的集成列表
var Integrations = []Integration{IntegrationSlack, IntegrationGoogleWorkspace, IntegrationGithub}

// SyncStatus 集成同步状态
type SyncStatus string

const (
	SyncSuccess SyncStatus = "success"
	SyncPending SyncStatus = "pending"
	SyncFailed  SyncStatus = "failed"
)

// ExecutionState 执行状态
type ExecutionState string

const (
	ExecutionRunning   ExecutionState = "running"
	ExecutionSuccess   ExecutionState = "success"
	ExecutionPartial   ExecutionState = "partial"
	ExecutionCancelled ExecutionState = "cancelled"
)

// ExecutionStatus 执行进度与最终结果
type ExecutionStatus struct {
	Status           ExecutionState             `json:"status"`
	Progress         float64                    `json:"progress"` // 0-100
	CurrentEmployee  string                     `json:"currentEmployee,omitempty"`
	Processed        int                        `json:"processed"`
	Total            int                        `json:"total"`
	SuccessCount     int                        `json:"successCount"`
	FailedCount      int                        `json:"failedCount"`
	FailedEmployees  []string                   `json:"failedEmployees,omitempty"`
	SkippedEmployees []string                   `json:"skippedEmployees,omitempty"` // 取消后未处理的员工
	TPAStatus        map[Integration]SyncStatus `json:"tpaStatus,omitempty"`
	StartedAt        time.Time                  `json:"startedAt"`
	FinishedAt       *time.Time                 `json:"finishedAt,omitempty"`
}

// Finished 是否已结束（成功、部分失败或取消）
func (s *ExecutionStatus) Finished() bool {
	return s != nil && s.Status != ExecutionRunning
}

// Clone 深拷贝
func (s *ExecutionStatus) Clone() *ExecutionStatus {
	if s == nil {
		return nil
	}
	out := *s
	out.FailedEmployees = cloneStrings(s.FailedEmployees)
	out.SkippedEmployees = cloneStrings(s.SkippedEmployees)
	if s.TPAStatus != nil {
		out.TPAStatus = make(map[Integration]SyncStatus, len(s.TPAStatus))
		for k, v := range s.TPAStatus {
			out.TPAStatus[k] = v
		}
	}
	if s.FinishedAt != nil {
		t := *s.FinishedAt
		out.FinishedAt = &t
	}
	return &out
}

// Clone 深拷贝
func (r *ValidationResult) Clone() *ValidationResult {
	if r == nil {
		return nil
	}
	out := *r
	out.Errors = cloneIssues(r.Errors)
	out.Warnings = cloneIssues(r.Warnings)
	out.PassedEmployees = cloneStrings(r.PassedEmployees)
	out.FailedEmployees = cloneStrings(r.FailedEmployees)
	return &out
}

func cloneIssues(in []ValidationIssue) []ValidationIssue {
	if in == nil {
		return nil
	}
	out := make([]ValidationIssue, len(in))
	for i, is := range in {
		is.Employees = cloneStrings(is.Employees)
		out[i] = is
	}
	return out
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
