package wizard

import (
	"fmt"
	"sort"
	"time"

	"github.com/shivamuserology/bulk-change/internal/model"
)

// defaultActionLog 演示用历史记录，时间相对于 now，按时间倒序
func defaultActionLog(now time.Time) []model.ActionLogEntry {
	ago := func(d time.Duration) time.Time { return now.Add(-d) }
	single := func(id string, d time.Duration, empID, name, label, field string, oldValue, newValue any) model.ActionLogEntry {
		return model.ActionLogEntry{
			ID:        id,
			Timestamp: ago(d),
			Status:    model.LogStatusSuccess,
			Type:      model.LogSingleChange,
			Summary:   fmt.Sprintf("Updated %s for %s", label, name),
			Details: map[string]any{
				"employeeId":   empID,
				"employeeName": name,
				"field":        field,
				"oldValue":     oldValue,
				"newValue":     newValue,
			},
		}
	}

	entries := []model.ActionLogEntry{
		{
			ID:        "log_bulk_1",
			Timestamp: ago(2 * time.Hour),
			Status:    model.LogStatusSuccess,
			Type:      model.LogBulkChange,
			Summary:   "Updated 124 employees",
			Details: map[string]any{
				"employeeCount": 124,
				"fields":        []string{"department", "workLocation", "title"},
				"effectiveDate": "Feb 1, 2026",
				"scenario":      string(OutcomeHappyPath),
			},
		},
		{
			ID:        "log_bulk_2",
			Timestamp: ago(24 * time.Hour),
			Status:    model.LogStatusSuccess,
			Type:      model.LogBulkChange,
			Summary:   "Updated 45 employees",
			Details: map[string]any{
				"employeeCount": 45,
				"fields":        []string{"compensation", "equity"},
				"effectiveDate": "Immediate",
				"scenario":      string(OutcomeWithWarnings),
			},
		},
		single("log_single_1", 5*time.Minute, "EMP0001", "James Smith", "Department", "department", "Engineering", "Platform"),
		single("log_single_2", 15*time.Minute, "EMP0002", "Mary Johnson", "Work Location", "workLocation", "Remote", "San Francisco, CA"),
		single("log_single_3", 45*time.Minute, "EMP0003", "Robert Brown", "Job Title", "title", "Engineer", "Senior Engineer"),
		single("log_single_4", 120*time.Minute, "EMP0004", "Emily White", "Compensation", "compensation", 120000, 135000),
		single("log_single_5", 300*time.Minute, "EMP0005", "Michael Green", "Manager", "managerName", "Sarah Connors", "John Connor"),
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Timestamp.After(entries[j].Timestamp)
	})
	return entries
}

// prependLog 补全 id/时间/状态后插入到日志最前
func (m *Machine) prependLog(log []model.ActionLogEntry, entry model.ActionLogEntry) []model.ActionLogEntry {
	if entry.ID == "" {
		entry.ID = "log_" + m.newID()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = m.now()
	}
	if entry.Status == "" {
		entry.Status = model.LogStatusSuccess
	}
	out := make([]model.ActionLogEntry, 0, len(log)+1)
	out = append(out, entry)
	return append(out, log...)
}

// AddLogEntry 追加一条审计记录
func (m *Machine) AddLogEntry(s State, entry model.ActionLogEntry) State {
	next := s.Clone()
	next.ActionLog = m.prependLog(next.ActionLog, entry.Clone())
	return next
}

// FindLogEntry 按 id 查找审计记录
func (s *State) FindLogEntry(id string) (model.ActionLogEntry, bool) {
	for _, e := range s.ActionLog {
		if e.ID == id {
			return e, true
		}
	}
	return model.ActionLogEntry{}, false
}

// RevertAction 将记录标记为 reverted 并在最前插入撤销记录；重复撤销不产生变化
func (m *Machine) RevertAction(s State, logID string) (State, error) {
	target, ok := s.FindLogEntry(logID)
	if !ok {
		return s, fmt.Errorf("%w: %s", ErrLogEntryNotFound, logID)
	}
	if target.Status == model.LogStatusReverted {
		return s.Clone(), nil
	}
	next := s.Clone()
	for i := range next.ActionLog {
		if next.ActionLog[i].ID == logID {
			next.ActionLog[i].Status = model.LogStatusReverted
		}
	}
	next.ActionLog = m.prependLog(next.ActionLog, model.ActionLogEntry{
		ID:      "log_revert_" + m.newID(),
		Type:    model.LogRevert,
		Summary: "Reverted: " + target.Summary,
		Details: map[string]any{"revertedLogId": logID},
	})
	return next, nil
}
