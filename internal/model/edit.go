package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// EditType 修改方式
type EditType string

const (
	EditSet      EditType = "set"
	EditIncrease EditType = "increase"
	EditDecrease EditType = "decrease"
	EditReplace  EditType = "replace"
)

var (
	ErrUnknownEditType  = errors.New("unknown edit type")
	ErrNonNumericValue  = errors.New("increase/decrease requires a numeric value")
	ErrNonNumericField  = errors.New("increase/decrease requires a numeric field")
	ErrOptionNotAllowed = errors.New("value is not one of the field options")
	ErrInvalidNumber    = errors.New("numeric field requires a finite number")
)

// EditSpec 单个字段的待定修改描述
type EditSpec struct {
	Type      EditType `json:"type"`
	Value     string   `json:"value"`
	IsPercent bool     `json:"isPercent,omitempty"`
}

// UnmarshalJSON 兼容 value 为数字或字符串
func (s *EditSpec) UnmarshalJSON(data []byte) error {
	var raw struct {
		Type      EditType        `json:"type"`
		Value     json.RawMessage `json:"value"`
		IsPercent bool            `json:"isPercent"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	s.Type = raw.Type
	s.IsPercent = raw.IsPercent
	s.Value = ""

	if len(raw.Value) == 0 || string(raw.Value) == "null" {
		return nil
	}
	var str string
	if err := json.Unmarshal(raw.Value, &str); err == nil {
		s.Value = str
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(raw.Value, &num); err != nil {
		return fmt.Errorf("edit value must be a string or number: %w", err)
	}
	s.Value = num.String()
	return nil
}

// Relative 是否为相对修改
func (s EditSpec) Relative() bool {
	return s.Type == EditIncrease || s.Type == EditDecrease
}

// Validate 检查修改描述与字段定义是否匹配
func (s EditSpec) Validate(f *Field) error {
	switch s.Type {
	case EditSet, EditReplace:
		if f != nil && f.Type == FieldDropdown && s.Value != "" && len(f.Options) > 0 && !f.HasOption(s.Value) {
			return fmt.Errorf("%w: %s=%q", ErrOptionNotAllowed, f.ID, s.Value)
		}
		if f != nil && f.Type.Numeric() && strings.TrimSpace(s.Value) != "" {
			if _, err := parseFinite(s.Value); err != nil {
				return fmt.Errorf("%w: %s=%q", ErrInvalidNumber, f.ID, s.Value)
			}
		}
		return nil
	case EditIncrease, EditDecrease:
		if f != nil && !f.Type.Numeric() {
			return fmt.Errorf("%w: %s", ErrNonNumericField, f.ID)
		}
		if _, err := parseFinite(s.Value); err != nil {
			return ErrNonNumericValue
		}
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownEditType, s.Type)
	}
}

// Apply 计算修改后的值
func (s EditSpec) Apply(current string) (string, error) {
	switch s.Type {
	case EditSet, EditReplace:
		return s.Value, nil
	case EditIncrease, EditDecrease:
		delta, err := parseFinite(s.Value)
		if err != nil {
			return "", ErrNonNumericValue
		}
		base := 0.0
		if strings.TrimSpace(current) != "" {
			base, err = parseFinite(current)
			if err != nil {
				return "", fmt.Errorf("current value %q is not numeric", current)
			}
		}
		if s.IsPercent {
			delta = base * delta / 100
		}
		if s.Type == EditDecrease {
			delta = -delta
		}
		next := math.Round((base+delta)*100) / 100
		return strconv.FormatFloat(next, 'f', -1, 64), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownEditType, s.Type)
}

// parseFinite 解析数值，拒绝 NaN 与 ±Inf
func parseFinite(v string) (float64, error) {
	n, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, fmt.Errorf("%q is not a finite number", v)
	}
	return n, nil
}

// Describe 修改描述的展示文本
func (s EditSpec) Describe() string {
	suffix := ""
	if s.IsPercent {
		suffix = "%"
	}
	switch s.Type {
	case EditIncrease:
		return "+" + s.Value + suffix
	case EditDecrease:
		return "-" + s.Value + suffix
	}
	if s.Value == "" {
		return "Not set"
	}
	return s.Value
}

// WithValue 返回字段被替换后的员工副本（用于规则校验与预览）
func (e Employee) WithValue(fieldID, value string) (Employee, error) {
	num := func() (float64, error) {
		if value == "" {
			return 0, nil
		}
		return strconv.ParseFloat(value, 64)
	}
	switch fieldID {
	case "title":
		e.Title = value
	case "department":
		e.Department = value
	case "team":
		e.Team = value
	case "compensation", "targetBonus", "equity":
		v, err := num()
		if err != nil {
			return e, fmt.Errorf("%s: %w", fieldID, err)
		}
		switch fieldID {
		case "compensation":
			e.Compensation = v
		case "targetBonus":
			e.TargetBonus = v
		default:
			e.Equity = v
		}
	case "workEmail":
		e.WorkEmail = value
	case "manager":
		e.Manager = value
	case "workLocation":
		e.WorkLocation = value
	case "preferredName":
		e.PreferredName = value
	case "dateOfBirth":
		e.DateOfBirth = value
	case "homeCity":
		e.HomeCity = value
	case "homeState":
		e.HomeState = value
	case "personalEmail":
		e.PersonalEmail = value
	case "personalPhone":
		e.PersonalPhone = value
	case "nationalId":
		e.NationalID = value
	case "workAuthorization":
		e.WorkAuthorization = value
	case "citizenship":
		e.Citizenship = value
	case "status":
		e.Status = value
	case "hireDate":
		e.HireDate = value
	default:
		return e, fmt.Errorf("field %s is not editable", fieldID)
	}
	return e, nil
}
