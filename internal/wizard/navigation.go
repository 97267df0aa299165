package wizard

import "github.com/shivamuserology/bulk-change/internal/model"

// GoToStep 跳转到指定步骤，受 CheckTransition 约束
func (m *Machine) GoToStep(s State, target Step) (State, error) {
	if err := CheckTransition(&s, target); err != nil {
		return s, err
	}
	next := s.Clone()
	next.CurrentStep = target
	return next, nil
}

// NextStep 前进一步，最后一步保持不动
func (m *Machine) NextStep(s State) (State, error) {
	if s.CurrentStep >= LastStep {
		return s.Clone(), nil
	}
	return m.GoToStep(s, s.CurrentStep+1)
}

// PrevStep 后退一步，第一步保持不动
func (m *Machine) PrevStep(s State) (State, error) {
	if s.CurrentStep <= FirstStep {
		return s.Clone(), nil
	}
	return m.GoToStep(s, s.CurrentStep-1)
}

// SetPermissionScenario 切换权限场景；变为不可访问的已选字段会被移除
func (m *Machine) SetPermissionScenario(s State, scenario PermissionScenario) (State, error) {
	if _, err := ParsePermissionScenario(string(scenario)); err != nil {
		return s, err
	}
	if err := ensureIdle(&s); err != nil {
		return s, err
	}
	next := s.Clone()
	next.PermissionScenario = scenario

	kept := make([]string, 0, len(next.SelectedFields))
	for _, id := range next.SelectedFields {
		if m.FieldPermission(next, id) != model.PermissionNoAccess {
			kept = append(kept, id)
		}
	}
	if len(kept) != len(next.SelectedFields) {
		next.SelectedFields = kept
		pruneValues(&next)
	}
	invalidate(&next)
	return next, nil
}

// SetOutcomeScenario 切换结果场景，已有校验结果随之失效
func (m *Machine) SetOutcomeScenario(s State, scenario OutcomeScenario) (State, error) {
	if _, err := ParseOutcomeScenario(string(scenario)); err != nil {
		return s, err
	}
	if err := ensureIdle(&s); err != nil {
		return s, err
	}
	next := s.Clone()
	next.OutcomeScenario = scenario
	invalidate(&next)
	return next, nil
}

// SetEntryMode 切换进入方式并按其重新确定当前步骤
func (m *Machine) SetEntryMode(s State, mode EntryMode) (State, error) {
	if _, err := ParseEntryMode(string(mode)); err != nil {
		return s, err
	}
	if err := ensureIdle(&s); err != nil {
		return s, err
	}
	next := s.Clone()
	next.EntryMode = mode
	next.CurrentStep = StartStep(mode)
	return next, nil
}

// Reset 恢复初始状态并回到第 1 步，保留演示场景、进入方式、草稿与操作日志
func (m *Machine) Reset(s State) (State, error) {
	if err := ensureIdle(&s); err != nil {
		return s, err
	}
	prev := s.Clone()
	next := blankState()
	next.PermissionScenario = prev.PermissionScenario
	next.OutcomeScenario = prev.OutcomeScenario
	next.EntryMode = prev.EntryMode
	next.Drafts = prev.Drafts
	next.ActionLog = prev.ActionLog
	return next, nil
}
