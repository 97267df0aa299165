package mockdata

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/shivamuserology/bulk-change/internal/model"
)

// DefaultSeed 演示数据的固定随机种子
const DefaultSeed uint64 = 20260201

//go:embed fieldschema.yaml
var fieldSchemaYAML []byte

// LoadSchema 解析字段结构 YAML 并构建索引
func LoadSchema(data []byte) (*model.SchemaIndex, error) {
	var schema model.FieldSchema
	if err := yaml.Unmarshal(data, &schema); err != nil {
		return nil, fmt.Errorf("failed to parse field schema: %w", err)
	}
	if len(schema.Categories) == 0 {
		return nil, fmt.Errorf("field schema has no categories")
	}
	return model.NewSchemaIndex(schema)
}

// Dataset 只读演示数据集：员工 + 字段结构
type Dataset struct {
	employees []model.Employee
	byID      map[string]int
	byEmail   map[string]int
	index     *model.SchemaIndex
}

// NewDataset 构建数据集，员工 id 必须唯一
func NewDataset(employees []model.Employee, index *model.SchemaIndex) (*Dataset, error) {
	ds := &Dataset{
		employees: employees,
		byID:      make(map[string]int, len(employees)),
		byEmail:   make(map[string]int, len(employees)),
		index:     index,
	}
	for i, e := range employees {
		if _, dup := ds.byID[e.ID]; dup {
			return nil, fmt.Errorf("duplicate employee id: %s", e.ID)
		}
		ds.byID[e.ID] = i
		if e.WorkEmail != "" {
			ds.byEmail[strings.ToLower(e.WorkEmail)] = i
		}
	}
	return ds, nil
}

var (
	defaultOnce sync.Once
	defaultDS   *Dataset
	defaultErr  error
)

// Default 进程级默认数据集（只加载一次）
func Default() (*Dataset, error) {
	defaultOnce.Do(func() {
		defaultDS, defaultErr = Build(DefaultSeed, time.Now())
	})
	return defaultDS, defaultErr
}

// Build 用指定种子构建一份新的数据集
func Build(seed uint64, now time.Time) (*Dataset, error) {
	index, err := LoadSchema(fieldSchemaYAML)
	if err != nil {
		return nil, err
	}
	return NewDataset(GenerateEmployees(seed, now), index)
}

// Employees 全部员工（调用方不得修改）
func (d *Dataset) Employees() []model.Employee {
	return d.employees
}

// Employee 按 id 查找员工
func (d *Dataset) Employee(id string) (*model.Employee, bool) {
	i, ok := d.byID[id]
	if !ok {
		return nil, false
	}
	return &d.employees[i], true
}

// Has 员工是否存在
func (d *Dataset) Has(id string) bool {
	_, ok := d.byID[id]
	return ok
}

// ResolveIdentifier 接受员工 id 或工作邮箱，返回员工 id
func (d *Dataset) ResolveIdentifier(v string) (string, bool) {
	v = strings.TrimSpace(v)
	if i, ok := d.byID[strings.ToUpper(v)]; ok {
		return d.employees[i].ID, true
	}
	if i, ok := d.byEmail[strings.ToLower(v)]; ok {
		return d.employees[i].ID, true
	}
	return "", false
}

// Partition 按是否存在于数据集划分 id，保持输入顺序与重复项
func (d *Dataset) Partition(ids []string) (valid, invalid []string) {
	valid = []string{}
	invalid = []string{}
	for _, id := range ids {
		if d.Has(id) {
			valid = append(valid, id)
		} else {
			invalid = append(invalid, id)
		}
	}
	return valid, invalid
}

// Index 字段索引
func (d *Dataset) Index() *model.SchemaIndex {
	return d.index
}

// Schema 字段结构
func (d *Dataset) Schema() model.FieldSchema {
	return d.index.Schema()
}

// Len 员工数量
func (d *Dataset) Len() int {
	return len(d.employees)
}
