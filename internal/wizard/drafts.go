package wizard

import (
	"fmt"

	"github.com/shivamuserology/bulk-change/internal/model"
)

// SaveDraft 保存可编辑部分的快照，返回草稿 id
func (m *Machine) SaveDraft(s State) (State, string) {
	next := s.Clone()
	draft := Draft{
		ID:                "draft_" + m.newID(),
		SavedAt:           m.now(),
		SelectedEmployees: copyStrings(s.SelectedEmployees),
		SelectedFields:    copyStrings(s.SelectedFields),
		FieldValues:       copyValues(s.FieldValues),
		EffectiveDate:     s.EffectiveDate,
		CurrentStep:       s.CurrentStep,
	}
	next.Drafts = append(next.Drafts, draft)
	next.CurrentDraftID = draft.ID
	return next, draft.ID
}

func (s *State) findDraft(id string) int {
	for i, d := range s.Drafts {
		if d.ID == id {
			return i
		}
	}
	return -1
}

// LoadDraft 恢复草稿快照。字段若在当前权限场景下不可访问则一并丢弃
func (m *Machine) LoadDraft(s State, id string) (State, error) {
	if err := ensureIdle(&s); err != nil {
		return s, err
	}
	i := s.findDraft(id)
	if i < 0 {
		return s, fmt.Errorf("%w: %s", ErrDraftNotFound, id)
	}
	next := s.Clone()
	d := next.Drafts[i].clone()
	next.SelectedEmployees = d.SelectedEmployees
	next.SelectedFields = d.SelectedFields
	next.FieldValues = d.FieldValues
	next.EffectiveDate = d.EffectiveDate
	next.CurrentStep = d.CurrentStep
	next.CurrentDraftID = d.ID

	kept := make([]string, 0, len(next.SelectedFields))
	for _, f := range next.SelectedFields {
		if m.FieldPermission(next, f) != model.PermissionNoAccess {
			kept = append(kept, f)
		}
	}
	next.SelectedFields = kept
	pruneValues(&next)

	// 草稿保存时的步骤可能已越过当前未满足的前置条件
	next.ValidationResults = nil
	next.ExecutionStatus = nil
	next.CurrentStep = reachableStep(next, d.CurrentStep)
	return next, nil
}

// DeleteDraft 删除草稿
func (m *Machine) DeleteDraft(s State, id string) (State, error) {
	i := s.findDraft(id)
	if i < 0 {
		return s, fmt.Errorf("%w: %s", ErrDraftNotFound, id)
	}
	next := s.Clone()
	next.Drafts = append(next.Drafts[:i], next.Drafts[i+1:]...)
	if next.CurrentDraftID == id {
		next.CurrentDraftID = ""
	}
	return next, nil
}
