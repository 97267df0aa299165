package model

import "time"

// 操作日志类型
const (
	LogBulkChange   = "bulk_change"
	LogSingleChange = "single_change"
	LogRevert       = "revert"
	LogImport       = "import"
)

// 操作日志状态
const (
	LogStatusSuccess   = "success"
	LogStatusPartial   = "partial"
	LogStatusReverted  = "reverted"
	LogStatusCancelled = "cancelled"
)

// ActionLogEntry 会话审计记录（只追加，不用于回放）
type ActionLogEntry struct {
	ID        string         `json:"id"`
	Timestamp time.Time      `json:"timestamp"`
	Status    string         `json:"status"`
	Type      string         `json:"type"`
	Summary   string         `json:"summary"`
	Details   map[string]any `json:"details,omitempty"`
}

// Clone 拷贝（details 为浅拷贝，写入后不再修改）
func (e ActionLogEntry) Clone() ActionLogEntry {
	if e.Details != nil {
		d := make(map[string]any, len(e.Details))
		for k, v := range e.Details {
			d[k] = v
		}
		e.Details = d
	}
	return e
}
