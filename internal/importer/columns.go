package importer

import (
	"strings"

	"github.com/shivamuserology/bulk-change/internal/model"
)

// 表头别名（规范化后比较）
var (
	idHeaders      = []string{"employeeid", "empid", "id", "employee", "employeenumber"}
	emailHeaders   = []string{"workemail", "email", "emailaddress"}
	fieldHeaders   = []string{"field", "fieldid", "attribute"}
	typeHeaders    = []string{"type", "edittype", "changetype", "operation"}
	valueHeaders   = []string{"value", "newvalue"}
	percentHeaders = []string{"ispercent", "percent", "percentage"}
	nameHeaders    = []string{"name", "fullname", "employeename"}
)

// NormalizeHeader 规范化表头：小写，去掉空白、下划线、连字符
func NormalizeHeader(h string) string {
	h = strings.ToLower(cleanCell(h))
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '_', '-', '.':
			return -1
		}
		return r
	}, h)
}

// findColumn 返回第一个匹配任一别名的列，找不到返回 -1
func findColumn(headers []string, aliases []string) int {
	for i, h := range headers {
		n := NormalizeHeader(h)
		for _, a := range aliases {
			if n == a {
				return i
			}
		}
	}
	return -1
}

// ResolveField 按 id、显示名或规范化后的名称查找字段
func ResolveField(index *model.SchemaIndex, header string) (*model.Field, bool) {
	header = cleanCell(header)
	if header == "" {
		return nil, false
	}
	if f, ok := index.Field(header); ok {
		return f, true
	}
	if f, ok := index.ByLabel(header); ok {
		return f, true
	}
	n := NormalizeHeader(header)
	for _, id := range index.FieldIDs() {
		f, _ := index.Field(id)
		if NormalizeHeader(f.ID) == n || NormalizeHeader(f.Label) == n {
			return f, true
		}
	}
	return nil, false
}

// fieldColumns 模板中的字段列：列索引 -> 字段 id
func fieldColumns(index *model.SchemaIndex, headers []string, skip ...int) map[int]string {
	out := make(map[int]string)
	for i, h := range headers {
		if containsInt(skip, i) {
			continue
		}
		if f, ok := ResolveField(index, h); ok {
			out[i] = f.ID
		}
	}
	return out
}

// Recognize 按表头识别文件类型
func Recognize(index *model.SchemaIndex, headers []string) FileKind {
	idCol := findColumn(headers, idHeaders)
	if idCol >= 0 && findColumn(headers, fieldHeaders) >= 0 && findColumn(headers, valueHeaders) >= 0 {
		return KindComplete
	}
	if idCol >= 0 {
		skip := []int{idCol, findColumn(headers, nameHeaders)}
		if len(fieldColumns(index, headers, skip...)) > 0 {
			return KindTemplate
		}
		return KindEmployeeList
	}
	if findColumn(headers, emailHeaders) >= 0 || len(headers) == 1 {
		return KindEmployeeList
	}
	return KindUnknown
}

func containsInt(items []int, v int) bool {
	for _, it := range items {
		if it == v {
			return true
		}
	}
	return false
}
