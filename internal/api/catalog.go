package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/shivamuserology/bulk-change/internal/model"
	"github.com/shivamuserology/bulk-change/internal/wizard"
)

// facetFields 员工列表筛选面板的字段
var facetFields = []string{"department", "workLocation", "status"}

// StatusResponse 系统状态响应
type StatusResponse struct {
	Sessions  int    `json:"sessions"`  // 活跃会话数
	Employees int    `json:"employees"` // 模拟员工数
	Fields    int    `json:"fields"`    // 可编辑字段数
	Engine    string `json:"engine"`    // 校验引擎
}

// GetStatus 获取系统状态
// GET /api/status
func (h *Handler) GetStatus(c *gin.Context) {
	data := h.machine.Dataset()
	c.JSON(http.StatusOK, StatusResponse{
		Sessions:  h.store.Count(),
		Employees: data.Len(),
		Fields:    len(data.Index().FieldIDs()),
		Engine:    h.settings.Engine,
	})
}

// ListSteps 步骤列表
// GET /api/steps
func (h *Handler) ListSteps(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"steps": wizard.Steps})
}

// StepGraph 步骤流转图（Graphviz DOT）
// GET /api/steps/graph
func (h *Handler) StepGraph(c *gin.Context) {
	dot, err := wizard.StepGraph()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "text/vnd.graphviz; charset=utf-8", []byte(dot))
}

// GetSchema 字段定义
// GET /api/schema
func (h *Handler) GetSchema(c *gin.Context) {
	c.JSON(http.StatusOK, h.machine.Dataset().Schema())
}

// EmployeesResponse 员工列表响应
type EmployeesResponse struct {
	Employees []model.Employee          `json:"employees"`
	Total     int                       `json:"total"`
	Facets    map[string]map[string]int `json:"facets"`
	Filters   map[string][]string       `json:"filters"`
}

// ListEmployees 搜索并筛选员工
// GET /api/employees?q=ali&filter=department:Engineering&filter=status:Active
func (h *Handler) ListEmployees(c *gin.Context) {
	filters := parseFilters(c.QueryArray("filter"))

	all := h.machine.Dataset().Employees()
	matched := make([]model.Employee, 0, len(all))
	for i := range all {
		if wizard.MatchesFilters(&all[i], filters) {
			matched = append(matched, all[i])
		}
	}
	matched = wizard.Search(matched, c.Query("q"))

	c.JSON(http.StatusOK, EmployeesResponse{
		Employees: matched,
		Total:     len(matched),
		Facets:    wizard.FacetCounts(all, facetFields),
		Filters:   filters,
	})
}

// parseFilters 解析 field:value 形式的筛选参数
func parseFilters(raw []string) map[string][]string {
	filters := map[string][]string{}
	for _, f := range raw {
		field, value, ok := strings.Cut(f, ":")
		field = strings.TrimSpace(field)
		if !ok || field == "" {
			continue
		}
		filters[field] = append(filters[field], strings.TrimSpace(value))
	}
	return filters
}
