package wizard

import (
	"fmt"
	"time"

	"github.com/shivamuserology/bulk-change/internal/model"
)

const dateLayout = "2006-01-02"

// SelectEmployee 切换员工的选中状态
func (m *Machine) SelectEmployee(s State, id string) (State, error) {
	if err := ensureIdle(&s); err != nil {
		return s, err
	}
	if !m.data.Has(id) {
		return s, fmt.Errorf("%w: %s", ErrUnknownEmployee, id)
	}
	next := s.Clone()
	if i := indexOf(next.SelectedEmployees, id); i >= 0 {
		next.SelectedEmployees = append(next.SelectedEmployees[:i], next.SelectedEmployees[i+1:]...)
	} else {
		next.SelectedEmployees = append(next.SelectedEmployees, id)
	}
	invalidate(&next)
	return next, nil
}

// SelectAllEmployees 整体替换员工选择（去重，保持顺序）
func (m *Machine) SelectAllEmployees(s State, ids []string) (State, error) {
	if err := ensureIdle(&s); err != nil {
		return s, err
	}
	for _, id := range ids {
		if !m.data.Has(id) {
			return s, fmt.Errorf("%w: %s", ErrUnknownEmployee, id)
		}
	}
	next := s.Clone()
	next.SelectedEmployees = dedupe(ids)
	invalidate(&next)
	return next, nil
}

// ClearEmployees 清空员工选择
func (m *Machine) ClearEmployees(s State) (State, error) {
	if err := ensureIdle(&s); err != nil {
		return s, err
	}
	next := s.Clone()
	next.SelectedEmployees = []string{}
	invalidate(&next)
	return next, nil
}

// checkFieldSelectable 字段存在且当前权限允许选择
func (m *Machine) checkFieldSelectable(s State, id string) error {
	if _, ok := m.data.Index().Field(id); !ok {
		return fmt.Errorf("%w: %s", ErrUnknownField, id)
	}
	if m.FieldPermission(s, id) == model.PermissionNoAccess {
		return fmt.Errorf("%w: %s", ErrFieldNoAccess, id)
	}
	return nil
}

// SelectField 切换字段选中状态；取消选择时同时丢弃该字段的待定修改
func (m *Machine) SelectField(s State, id string) (State, error) {
	if err := ensureIdle(&s); err != nil {
		return s, err
	}
	next := s.Clone()
	if i := indexOf(next.SelectedFields, id); i >= 0 {
		next.SelectedFields = append(next.SelectedFields[:i], next.SelectedFields[i+1:]...)
		delete(next.FieldValues, id)
		invalidate(&next)
		return next, nil
	}
	if err := m.checkFieldSelectable(s, id); err != nil {
		return s, err
	}
	next.SelectedFields = append(next.SelectedFields, id)
	invalidate(&next)
	return next, nil
}

// SetSelectedFields 整体替换字段选择
func (m *Machine) SetSelectedFields(s State, ids []string) (State, error) {
	if err := ensureIdle(&s); err != nil {
		return s, err
	}
	for _, id := range ids {
		if err := m.checkFieldSelectable(s, id); err != nil {
			return s, err
		}
	}
	next := s.Clone()
	next.SelectedFields = dedupe(ids)
	pruneValues(&next)
	invalidate(&next)
	return next, nil
}

// pruneValues 丢弃未选中字段的待定修改
func pruneValues(s *State) {
	for id := range s.FieldValues {
		if !s.IsFieldSelected(id) {
			delete(s.FieldValues, id)
		}
	}
}

// SetFieldValue 设置字段的待定修改，同一字段后写覆盖前写
func (m *Machine) SetFieldValue(s State, fieldID string, spec model.EditSpec) (State, error) {
	if err := ensureIdle(&s); err != nil {
		return s, err
	}
	f, ok := m.data.Index().Field(fieldID)
	if !ok {
		return s, fmt.Errorf("%w: %s", ErrUnknownField, fieldID)
	}
	if !s.IsFieldSelected(fieldID) {
		return s, fmt.Errorf("%w: %s", ErrFieldNotSelected, fieldID)
	}
	if err := spec.Validate(f); err != nil {
		return s, err
	}
	next := s.Clone()
	next.FieldValues[fieldID] = spec
	invalidate(&next)
	return next, nil
}

// ClearFieldValue 删除字段的待定修改
func (m *Machine) ClearFieldValue(s State, fieldID string) (State, error) {
	if err := ensureIdle(&s); err != nil {
		return s, err
	}
	next := s.Clone()
	if _, ok := next.FieldValues[fieldID]; ok {
		delete(next.FieldValues, fieldID)
		invalidate(&next)
	}
	return next, nil
}

// SetFilters 整体替换筛选条件；空值列表的字段视为不过滤
func (m *Machine) SetFilters(s State, filters map[string][]string) (State, error) {
	for id := range filters {
		if _, ok := m.data.Index().Field(id); !ok {
			return s, fmt.Errorf("%w: %s", ErrUnknownField, id)
		}
	}
	next := s.Clone()
	next.Filters = map[string][]string{}
	for id, values := range filters {
		if len(values) == 0 {
			continue
		}
		next.Filters[id] = dedupe(values)
	}
	return next, nil
}

// ClearFilters 清空全部筛选条件
func (m *Machine) ClearFilters(s State) State {
	next := s.Clone()
	next.Filters = map[string][]string{}
	return next
}

// SetEffectiveDate 设置生效时间；custom 必须给出 YYYY-MM-DD 日期
func (m *Machine) SetEffectiveDate(s State, kind EffectiveKind, customDate string) (State, error) {
	if err := ensureIdle(&s); err != nil {
		return s, err
	}
	date := EffectiveDate{Kind: kind}
	switch kind {
	case EffectiveImmediate, EffectiveNextPayPeriod:
	case EffectiveCustom:
		if customDate == "" {
			return s, ErrCustomDateRequired
		}
		if _, err := time.Parse(dateLayout, customDate); err != nil {
			return s, fmt.Errorf("%w: %q", ErrInvalidDate, customDate)
		}
		date.CustomDate = customDate
	default:
		return s, fmt.Errorf("%w: %q", ErrUnknownDateKind, kind)
	}
	next := s.Clone()
	next.EffectiveDate = date
	return next, nil
}
