package wizard

import "fmt"

// PermissionScenario 演示用权限场景
type PermissionScenario string

const (
	PermissionFullAccess PermissionScenario = "full_access"
	PermissionMixed      PermissionScenario = "mixed"
	PermissionRestricted PermissionScenario = "restricted"
)

// OutcomeScenario 演示用结果场景，决定校验/执行模拟器返回哪种预设结果
type OutcomeScenario string

const (
	OutcomeHappyPath      OutcomeScenario = "happy_path"
	OutcomeWithWarnings   OutcomeScenario = "with_warnings"
	OutcomeWithErrors     OutcomeScenario = "with_errors"
	OutcomePartialFailure OutcomeScenario = "partial_failure"
	OutcomeTPAFailure     OutcomeScenario = "tpa_failure"
)

// EntryMode 向导的进入方式
type EntryMode string

const (
	EntryUIGuided        EntryMode = "ui_guided"
	EntryCSVEmployeeList EntryMode = "csv_employee_list"
	EntryCSVTemplate     EntryMode = "csv_template"
	EntryCSVComplete     EntryMode = "csv_complete"
)

// PermissionScenarios 全部权限场景（展示顺序）
var PermissionScenarios = []PermissionScenario{PermissionFullAccess, PermissionMixed, PermissionRestricted}

// OutcomeScenarios 全部结果场景（展示顺序）
var OutcomeScenarios = []OutcomeScenario{OutcomeHappyPath, OutcomeWithWarnings, OutcomeWithErrors, OutcomePartialFailure, OutcomeTPAFailure}

// EntryModes 全部进入方式（展示顺序）
var EntryModes = []EntryMode{EntryUIGuided, EntryCSVEmployeeList, EntryCSVTemplate, EntryCSVComplete}

// ParsePermissionScenario 解析权限场景
func ParsePermissionScenario(s string) (PermissionScenario, error) {
	for _, v := range PermissionScenarios {
		if string(v) == s {
			return v, nil
		}
	}
	return "", fmt.Errorf("%w: permission scenario %q", ErrUnknownScenario, s)
}

// ParseOutcomeScenario 解析结果场景
func ParseOutcomeScenario(s string) (OutcomeScenario, error) {
	for _, v := range OutcomeScenarios {
		if string(v) == s {
			return v, nil
		}
	}
	return "", fmt.Errorf("%w: outcome scenario %q", ErrUnknownScenario, s)
}

// ParseEntryMode 解析进入方式
func ParseEntryMode(s string) (EntryMode, error) {
	for _, v := range EntryModes {
		if string(v) == s {
			return v, nil
		}
	}
	return "", fmt.Errorf("%w: entry mode %q", ErrUnknownScenario, s)
}
