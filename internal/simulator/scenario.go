package simulator

import (
	"fmt"

	"github.com/shivamuserology/bulk-change/internal/mockdata"
	"github.com/shivamuserology/bulk-change/internal/model"
	"github.com/shivamuserology/bulk-change/internal/wizard"
)

// 预设问题类型
const (
	IssueUnknownEmployee = "unknown_employee"
	IssueBenefitsImpact  = "benefits_impact"
	IssueTPADelay        = "tpa_delay"
	IssueCircularManager = "circular_manager"
	IssueInvalidEmail    = "invalid_email"
	IssueSalaryBand      = "salary_band"
	IssueInvalidValue    = "invalid_value"
)

// ScenarioValidator 演示用校验器：按结果场景返回预设结果，与员工数据本身无关。
// 不变式：passed + failed == selected，数据集中不存在的 id 一律进入 failed。
type ScenarioValidator struct {
	Data *mockdata.Dataset
}

// NewScenarioValidator 创建演示校验器
func NewScenarioValidator(data *mockdata.Dataset) *ScenarioValidator {
	return &ScenarioValidator{Data: data}
}

// Validate 实现 wizard.Validator
func (v *ScenarioValidator) Validate(req wizard.ValidationRequest) model.ValidationResult {
	result := model.ValidationResult{
		Status:          model.ValidationSuccess,
		Errors:          []model.ValidationIssue{},
		Warnings:        []model.ValidationIssue{},
		PassedEmployees: []string{},
		FailedEmployees: []string{},
	}

	var unknown []string
	for _, id := range req.SelectedEmployees {
		e, ok := v.Data.Employee(id)
		switch {
		case !ok:
			unknown = append(unknown, id)
			result.FailedEmployees = append(result.FailedEmployees, id)
		case req.Outcome == wizard.OutcomeWithErrors && e.HasEdgeCase():
			result.FailedEmployees = append(result.FailedEmployees, id)
		default:
			result.PassedEmployees = append(result.PassedEmployees, id)
		}
	}

	switch req.Outcome {
	case wizard.OutcomeWithWarnings:
		result.Status = model.ValidationWarning
		result.Warnings = append(result.Warnings,
			model.ValidationIssue{
				Type:      IssueBenefitsImpact,
				Message:   "3 employees will trigger benefits eligibility review",
				Employees: []string{"EMP0053"},
			},
			model.ValidationIssue{
				Type:      IssueTPADelay,
				Message:   "Google Workspace sync may take up to 24 hours",
				Employees: []string{},
			},
		)
	case wizard.OutcomeWithErrors:
		result.Status = model.ValidationError
		result.Errors = append(result.Errors,
			model.ValidationIssue{
				Type:      IssueCircularManager,
				Message:   "EMP0047 has circular manager reference",
				Employees: []string{"EMP0047"},
				Blocking:  true,
			},
			model.ValidationIssue{
				Type:      IssueInvalidEmail,
				Message:   "EMP0048 has invalid email format",
				Employees: []string{"EMP0048"},
				Blocking:  true,
			},
			model.ValidationIssue{
				Type:      IssueSalaryBand,
				Message:   "EMP0049 compensation exceeds salary band",
				Employees: []string{"EMP0049"},
				Blocking:  false,
			},
		)
	}

	if len(unknown) > 0 {
		result.Status = model.ValidationError
		result.Errors = append(result.Errors, unknownEmployeeIssue(unknown))
	}
	return result
}

func unknownEmployeeIssue(ids []string) model.ValidationIssue {
	msg := ids[0] + " does not exist"
	if len(ids) > 1 {
		msg = fmt.Sprintf("%d selected employees do not exist", len(ids))
	}
	return model.ValidationIssue{
		Type:      IssueUnknownEmployee,
		Message:   msg,
		Employees: ids,
		Blocking:  true,
	}
}
