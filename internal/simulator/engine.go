package simulator

import (
	"fmt"

	"github.com/shivamuserology/bulk-change/internal/mockdata"
	"github.com/shivamuserology/bulk-change/internal/wizard"
)

// 校验引擎名称（config: validation.engine）
const (
	EngineScenario = "scenario"
	EngineRules    = "rules"
)

// NewValidator 按引擎名称创建校验器
func NewValidator(engine string, data *mockdata.Dataset) (wizard.Validator, error) {
	switch engine {
	case "", EngineScenario:
		return NewScenarioValidator(data), nil
	case EngineRules:
		rules, err := DefaultRules()
		if err != nil {
			return nil, err
		}
		return NewRulesValidator(data, rules)
	default:
		return nil, fmt.Errorf("unknown validation engine %q", engine)
	}
}
