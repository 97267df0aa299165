package wizard

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/shivamuserology/bulk-change/internal/mockdata"
	"github.com/shivamuserology/bulk-change/internal/model"
)

// ValidationRequest 校验输入：选中的员工与字段、待定修改以及演示场景
type ValidationRequest struct {
	SelectedEmployees []string
	SelectedFields    []string
	FieldValues       map[string]model.EditSpec
	Outcome           OutcomeScenario
	Permission        PermissionScenario
}

// Validator 校验策略。演示模拟器与规则引擎都实现该接口
type Validator interface {
	Validate(req ValidationRequest) model.ValidationResult
}

// ExecutionRequest 执行输入
type ExecutionRequest struct {
	EmployeeIDs []string
	Fields      []string
	Values      map[string]model.EditSpec
	Outcome     OutcomeScenario
}

// ProgressFunc 每处理完一名员工回调一次
type ProgressFunc func(status model.ExecutionStatus)

// Executor 执行策略。必须在每次迭代前检查 ctx，取消时返回 cancelled 状态
type Executor interface {
	Execute(ctx context.Context, req ExecutionRequest, progress ProgressFunc) model.ExecutionStatus
}

// Machine 向导状态机：持有只读依赖，每个动作接收当前 State 返回新的 State
type Machine struct {
	data        *mockdata.Dataset
	validator   Validator
	permissions PermissionPolicy
	now         func() time.Time
	newID       func() string
}

// Option Machine 配置项
type Option func(*Machine)

// WithClock 替换时钟（测试使用固定时间）
func WithClock(now func() time.Time) Option {
	return func(m *Machine) { m.now = now }
}

// WithIDGenerator 替换 id 生成器
func WithIDGenerator(gen func() string) Option {
	return func(m *Machine) { m.newID = gen }
}

// WithPermissionPolicy 替换字段权限策略
func WithPermissionPolicy(p PermissionPolicy) Option {
	return func(m *Machine) { m.permissions = p }
}

// NewMachine 创建状态机
func NewMachine(data *mockdata.Dataset, validator Validator, opts ...Option) *Machine {
	m := &Machine{
		data:        data,
		validator:   validator,
		permissions: ScenarioPermissions{},
		now:         time.Now,
		newID:       uuid.NewString,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Dataset 只读数据集
func (m *Machine) Dataset() *mockdata.Dataset {
	return m.data
}

// Now 状态机时钟
func (m *Machine) Now() time.Time {
	return m.now()
}

// Initial 会话开始时的状态，操作日志带演示历史
func (m *Machine) Initial() State {
	s := blankState()
	s.ActionLog = defaultActionLog(m.now())
	return s
}

// FieldPermission 当前权限场景下字段的实际权限，未知字段视为 no_access
func (m *Machine) FieldPermission(s State, fieldID string) model.Permission {
	f, ok := m.data.Index().Field(fieldID)
	if !ok {
		return model.PermissionNoAccess
	}
	return m.permissions.Resolve(s.PermissionScenario, f)
}

// ensureIdle 执行中拒绝修改
func ensureIdle(s *State) error {
	if s.ExecutionStatus != nil && !s.ExecutionStatus.Finished() {
		return ErrExecutionRunning
	}
	return nil
}

// invalidate 输入变化后旧的校验与执行结果失效
func invalidate(s *State) {
	s.ValidationResults = nil
	if s.ExecutionStatus.Finished() {
		s.ExecutionStatus = nil
	}
}
