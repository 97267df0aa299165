package wizard

import "github.com/shivamuserology/bulk-change/internal/model"

// PermissionPolicy 根据演示权限场景解析字段权限
type PermissionPolicy interface {
	Resolve(scenario PermissionScenario, field *model.Field) model.Permission
}

// ScenarioPermissions 默认权限策略：full_access 全部可编辑，mixed 与 restricted 使用字段默认权限
type ScenarioPermissions struct{}

// Resolve 实现 PermissionPolicy
func (ScenarioPermissions) Resolve(scenario PermissionScenario, field *model.Field) model.Permission {
	if field == nil {
		return model.PermissionNoAccess
	}
	if scenario == PermissionFullAccess {
		return model.PermissionFull
	}
	return field.DefaultPermission
}
