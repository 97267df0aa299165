package simulator

import (
	_ "embed"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"gopkg.in/yaml.v3"

	"github.com/shivamuserology/bulk-change/internal/mockdata"
	"github.com/shivamuserology/bulk-change/internal/model"
	"github.com/shivamuserology/bulk-change/internal/wizard"
)

//go:embed rules.yaml
var defaultRulesYAML []byte

// Severity 规则命中后的问题级别
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Rule 单条校验规则，When 为针对修改后员工记录求值的 expr 布尔表达式
type Rule struct {
	Type     string   `yaml:"type" json:"type"`
	Severity Severity `yaml:"severity" json:"severity"`
	Blocking bool     `yaml:"blocking" json:"blocking"`
	Message  string   `yaml:"message" json:"message"`
	When     string   `yaml:"when" json:"when"`
}

type ruleSet struct {
	Rules []Rule `yaml:"rules"`
}

var errEmptyRules = errors.New("rule set is empty")

// LoadRules 解析 YAML 规则文档
func LoadRules(data []byte) ([]Rule, error) {
	var rs ruleSet
	if err := yaml.Unmarshal(data, &rs); err != nil {
		return nil, fmt.Errorf("parse rules: %w", err)
	}
	if len(rs.Rules) == 0 {
		return nil, errEmptyRules
	}
	for i, r := range rs.Rules {
		if r.Type == "" || strings.TrimSpace(r.When) == "" {
			return nil, fmt.Errorf("rule %d: type and when are required", i)
		}
		switch r.Severity {
		case SeverityError, SeverityWarning:
		case "":
			rs.Rules[i].Severity = SeverityError
		default:
			return nil, fmt.Errorf("rule %s: unknown severity %q", r.Type, r.Severity)
		}
	}
	return rs.Rules, nil
}

// DefaultRules 内置规则
func DefaultRules() ([]Rule, error) {
	return LoadRules(defaultRulesYAML)
}

// RulesValidator 基于规则的校验器，可替换演示用的 ScenarioValidator
type RulesValidator struct {
	data  *mockdata.Dataset
	rules []Rule
	cache *programCache
}

// ruleEnv 编译期使用的变量表样例
func ruleEnv() map[string]any {
	var zero model.Employee
	env := zero.Vars()
	env["before"] = zero.Vars()
	env["changed"] = []string{}
	return env
}

// NewRulesValidator 编译全部规则，任何一条失败都返回错误
func NewRulesValidator(data *mockdata.Dataset, rules []Rule) (*RulesValidator, error) {
	if len(rules) == 0 {
		return nil, errEmptyRules
	}
	v := &RulesValidator{
		data:  data,
		rules: rules,
		cache: newProgramCache(256),
	}
	for _, r := range rules {
		if _, err := v.program(r); err != nil {
			return nil, err
		}
	}
	return v, nil
}

// Rules 当前规则
func (v *RulesValidator) Rules() []Rule {
	out := make([]Rule, len(v.rules))
	copy(out, v.rules)
	return out
}

func (v *RulesValidator) program(r Rule) (*vm.Program, error) {
	p, err := v.cache.GetOrCompute(r.When, func() (*vm.Program, error) {
		return expr.Compile(r.When, expr.Env(ruleEnv()), expr.AsBool())
	})
	if err != nil {
		return nil, fmt.Errorf("compile rule %s: %w", r.Type, err)
	}
	return p, nil
}

// project 把待定修改应用到员工副本上
func project(e model.Employee, fields []string, values map[string]model.EditSpec) (model.Employee, error) {
	out := e
	for _, id := range fields {
		spec, ok := values[id]
		if !ok {
			continue
		}
		current, _ := out.FieldValue(id)
		next, err := spec.Apply(current)
		if err != nil {
			return e, fmt.Errorf("%s: %w", id, err)
		}
		if out, err = out.WithValue(id, next); err != nil {
			return e, err
		}
	}
	return out, nil
}

// Validate 实现 wizard.Validator。命中 error 级别规则的员工进入 failed
func (v *RulesValidator) Validate(req wizard.ValidationRequest) model.ValidationResult {
	result := model.ValidationResult{
		Status:          model.ValidationSuccess,
		Errors:          []model.ValidationIssue{},
		Warnings:        []model.ValidationIssue{},
		PassedEmployees: []string{},
		FailedEmployees: []string{},
	}

	hits := make(map[string][]string, len(v.rules))
	var unknown, invalid []string
	var invalidMsg string

	for _, id := range req.SelectedEmployees {
		e, ok := v.data.Employee(id)
		if !ok {
			unknown = append(unknown, id)
			result.FailedEmployees = append(result.FailedEmployees, id)
			continue
		}
		projected, err := project(*e, req.SelectedFields, req.FieldValues)
		if err != nil {
			invalid = append(invalid, id)
			if invalidMsg == "" {
				invalidMsg = err.Error()
			}
			result.FailedEmployees = append(result.FailedEmployees, id)
			continue
		}

		env := projected.Vars()
		env["before"] = e.Vars()
		env["changed"] = req.SelectedFields

		failed := false
		for _, r := range v.rules {
			if !v.match(r, env) {
				continue
			}
			hits[r.Type] = append(hits[r.Type], id)
			if r.Severity == SeverityError {
				failed = true
			}
		}
		if failed {
			result.FailedEmployees = append(result.FailedEmployees, id)
		} else {
			result.PassedEmployees = append(result.PassedEmployees, id)
		}
	}

	for _, r := range v.rules {
		ids, ok := hits[r.Type]
		if !ok {
			continue
		}
		issue := model.ValidationIssue{
			Type:      r.Type,
			Message:   describeHits(r.Message, ids),
			Employees: ids,
			Blocking:  r.Blocking && r.Severity == SeverityError,
		}
		if r.Severity == SeverityWarning {
			result.Warnings = append(result.Warnings, issue)
		} else {
			result.Errors = append(result.Errors, issue)
		}
	}
	if len(invalid) > 0 {
		result.Errors = append(result.Errors, model.ValidationIssue{
			Type:      IssueInvalidValue,
			Message:   invalidMsg,
			Employees: invalid,
			Blocking:  true,
		})
	}
	if len(unknown) > 0 {
		result.Errors = append(result.Errors, unknownEmployeeIssue(unknown))
	}

	switch {
	case len(result.Errors) > 0:
		result.Status = model.ValidationError
	case len(result.Warnings) > 0:
		result.Status = model.ValidationWarning
	}
	return result
}

// match 规则求值出错时记录日志并视为未命中
func (v *RulesValidator) match(r Rule, env map[string]any) bool {
	p, err := v.program(r)
	if err != nil {
		log.Printf("规则 %s 编译失败: %v", r.Type, err)
		return false
	}
	out, err := expr.Run(p, env)
	if err != nil {
		log.Printf("规则 %s 求值失败 (员工 %v): %v", r.Type, env["id"], err)
		return false
	}
	b, ok := out.(bool)
	return ok && b
}

func describeHits(msg string, ids []string) string {
	if len(ids) == 1 {
		return ids[0] + ": " + msg
	}
	return fmt.Sprintf("%d employees: %s", len(ids), msg)
}
