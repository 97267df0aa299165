package wizard

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/shivamuserology/bulk-change/internal/model"
)

// MatchesFilters 字段之间为 AND，同一字段的多个取值为 OR
func MatchesFilters(e *model.Employee, filters map[string][]string) bool {
	for fieldID, accepted := range filters {
		if len(accepted) == 0 {
			continue
		}
		v, ok := e.FieldValue(fieldID)
		if !ok || indexOf(accepted, v) < 0 {
			return false
		}
	}
	return true
}

// FilterEmployees 按状态中的筛选条件过滤数据集
func (m *Machine) FilterEmployees(s State) []model.Employee {
	all := m.data.Employees()
	out := make([]model.Employee, 0, len(all))
	for i := range all {
		if MatchesFilters(&all[i], s.Filters) {
			out = append(out, all[i])
		}
	}
	return out
}

// Search 按姓名、职位、部门或 id 模糊匹配（Unicode 大小写折叠）
func Search(employees []model.Employee, term string) []model.Employee {
	term = strings.TrimSpace(term)
	if term == "" {
		return employees
	}
	fold := cases.Fold()
	needle := fold.String(term)

	out := make([]model.Employee, 0)
	for i := range employees {
		e := &employees[i]
		haystack := []string{e.FullName(), e.PreferredName, e.Title, e.Department, e.ID}
		for _, h := range haystack {
			if strings.Contains(fold.String(h), needle) {
				out = append(out, *e)
				break
			}
		}
	}
	return out
}

// FacetCounts 每个字段取值的员工数，用于筛选面板
func FacetCounts(employees []model.Employee, fieldIDs []string) map[string]map[string]int {
	out := make(map[string]map[string]int, len(fieldIDs))
	for _, id := range fieldIDs {
		counts := map[string]int{}
		for i := range employees {
			if v, ok := employees[i].FieldValue(id); ok && v != "" {
				counts[v]++
			}
		}
		out[id] = counts
	}
	return out
}
