package model

import "fmt"

// Permission 字段编辑权限
type Permission string

const (
	PermissionFull             Permission = "full"
	PermissionApprovalRequired Permission = "approval_required"
	PermissionNoAccess         Permission = "no_access"
)

// FieldType 字段类型
type FieldType string

const (
	FieldText     FieldType = "text"
	FieldNumber   FieldType = "number"
	FieldCurrency FieldType = "currency"
	FieldDate     FieldType = "date"
	FieldDropdown FieldType = "dropdown"
)

// Numeric 是否为数值型字段（支持增减）
func (t FieldType) Numeric() bool {
	return t == FieldNumber || t == FieldCurrency
}

// Field 可批量修改的字段定义
type Field struct {
	ID                string     `json:"id" yaml:"id"`
	Label             string     `json:"label" yaml:"label"`
	Type              FieldType  `json:"type" yaml:"type"`
	Options           []string   `json:"options,omitempty" yaml:"options,omitempty"`
	DefaultPermission Permission `json:"defaultPermission" yaml:"defaultPermission"`
}

// HasOption 枚举字段是否包含该选项
func (f *Field) HasOption(v string) bool {
	for _, o := range f.Options {
		if o == v {
			return true
		}
	}
	return false
}

// Category 字段分类
type Category struct {
	ID     string  `json:"id" yaml:"id"`
	Label  string  `json:"label" yaml:"label"`
	Fields []Field `json:"fields" yaml:"fields"`
}

// FieldSchema 字段结构（只读参考数据）
type FieldSchema struct {
	Categories []Category `json:"categories" yaml:"categories"`
}

// SchemaIndex 字段索引：加载时一次性构建，避免按 id 线性扫描嵌套数组
type SchemaIndex struct {
	schema     FieldSchema
	fields     map[string]*Field
	categoryOf map[string]string
	order      []string
}

// NewSchemaIndex 构建字段索引，字段 id 必须全局唯一
func NewSchemaIndex(schema FieldSchema) (*SchemaIndex, error) {
	idx := &SchemaIndex{
		schema:     schema,
		fields:     make(map[string]*Field),
		categoryOf: make(map[string]string),
	}
	for ci := range idx.schema.Categories {
		cat := &idx.schema.Categories[ci]
		for fi := range cat.Fields {
			f := &cat.Fields[fi]
			if f.ID == "" {
				return nil, fmt.Errorf("category %s: field without id", cat.ID)
			}
			if _, dup := idx.fields[f.ID]; dup {
				return nil, fmt.Errorf("duplicate field id: %s", f.ID)
			}
			if f.DefaultPermission == "" {
				f.DefaultPermission = PermissionFull
			}
			idx.fields[f.ID] = f
			idx.categoryOf[f.ID] = cat.ID
			idx.order = append(idx.order, f.ID)
		}
	}
	return idx, nil
}

// Field 按 id 查找字段
func (i *SchemaIndex) Field(id string) (*Field, bool) {
	f, ok := i.fields[id]
	return f, ok
}

// CategoryOf 字段所属分类 id
func (i *SchemaIndex) CategoryOf(id string) string {
	return i.categoryOf[id]
}

// Label 字段显示名，未知字段返回 id 本身
func (i *SchemaIndex) Label(id string) string {
	if f, ok := i.fields[id]; ok {
		return f.Label
	}
	return id
}

// FieldIDs 按结构顺序排列的所有字段 id
func (i *SchemaIndex) FieldIDs() []string {
	out := make([]string, len(i.order))
	copy(out, i.order)
	return out
}

// ByLabel 按显示名反查字段（模板表头解析用）
func (i *SchemaIndex) ByLabel(label string) (*Field, bool) {
	for _, id := range i.order {
		if f := i.fields[id]; f.Label == label {
			return f, true
		}
	}
	return nil, false
}

// Schema 原始字段结构
func (i *SchemaIndex) Schema() FieldSchema {
	return i.schema
}
