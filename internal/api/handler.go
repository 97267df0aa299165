package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/shivamuserology/bulk-change/internal/exporter"
	"github.com/shivamuserology/bulk-change/internal/importer"
	"github.com/shivamuserology/bulk-change/internal/session"
	"github.com/shivamuserology/bulk-change/internal/wizard"
)

// Settings 模拟相关配置
type Settings struct {
	ExecutionDelay time.Duration // 每名员工的处理间隔
	ValidationTick time.Duration // 校验动画每步间隔
	CancelCutoff   float64       // 超过该进度后不允许取消
	Engine         string        // 校验引擎名称
}

// Handler API 处理器
type Handler struct {
	store     *session.Store
	machine   *wizard.Machine
	importer  *importer.Coordinator
	exporter  *exporter.Exporter
	downloads *downloadStore
	settings  Settings
}

// NewHandler 创建 API 处理器
func NewHandler(store *session.Store, settings Settings) *Handler {
	machine := store.Machine()
	return &Handler{
		store:     store,
		machine:   machine,
		importer:  importer.NewCoordinator(machine.Dataset()),
		exporter:  exporter.NewExporter(machine),
		downloads: newDownloadStore(),
		settings:  settings,
	}
}

// RegisterRoutes 注册 API 路由
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	// 系统与目录
	router.GET("/status", h.GetStatus)
	router.GET("/steps", h.ListSteps)
	router.GET("/steps/graph", h.StepGraph)
	router.GET("/schema", h.GetSchema)
	router.GET("/employees", h.ListEmployees)

	// 会话
	router.POST("/sessions", h.CreateSession)
	s := router.Group("/sessions/:id")
	s.GET("", h.GetSession)
	s.DELETE("", h.DeleteSession)

	// 选择
	s.POST("/employees/toggle", h.ToggleEmployee)
	s.PUT("/employees", h.SetEmployees)
	s.DELETE("/employees", h.ClearEmployees)
	s.POST("/fields/toggle", h.ToggleField)
	s.PUT("/fields", h.SetFields)
	s.PUT("/values/:field", h.SetValue)
	s.DELETE("/values/:field", h.ClearValue)
	s.PUT("/filters", h.SetFilters)
	s.DELETE("/filters", h.ClearFilters)
	s.PUT("/effective-date", h.SetEffectiveDate)

	// 导航与演示控制
	s.POST("/step", h.GoToStep)
	s.POST("/next", h.NextStep)
	s.POST("/prev", h.PrevStep)
	s.PUT("/scenarios", h.SetScenarios)
	s.POST("/reset", h.Reset)

	// 校验与执行
	s.POST("/validate", h.Validate)
	s.POST("/validate/stream", h.ValidateStream)
	s.GET("/review", h.Review)
	s.POST("/execute", h.Execute)
	s.POST("/execute/cancel", h.CancelExecution)

	// 草稿
	s.POST("/drafts", h.SaveDraft)
	s.POST("/drafts/:draftId/load", h.LoadDraft)
	s.DELETE("/drafts/:draftId", h.DeleteDraft)

	// 导入导出
	s.POST("/import/employees", h.ImportEmployees)
	s.POST("/import/complete", h.ImportComplete)
	s.POST("/import/template", h.ImportTemplate)
	s.GET("/template", h.ExportTemplate)
	s.POST("/export/results", h.ExportResults)
	router.GET("/export/download/:token", h.Download)

	// 操作日志
	s.GET("/log", h.GetLog)
	s.POST("/log", h.AddLogEntry)
	s.POST("/log/:logId/revert", h.RevertLog)
}

// statusFor 错误到 HTTP 状态码的映射
func statusFor(err error) int {
	switch {
	case errors.Is(err, session.ErrNotFound),
		errors.Is(err, wizard.ErrDraftNotFound),
		errors.Is(err, wizard.ErrLogEntryNotFound),
		errors.Is(err, errTokenNotFound):
		return http.StatusNotFound
	case errors.Is(err, wizard.ErrExecutionRunning),
		errors.Is(err, wizard.ErrNoExecution),
		errors.Is(err, session.ErrNoExecution),
		errors.Is(err, session.ErrCancelTooLate):
		return http.StatusConflict
	default:
		return http.StatusBadRequest
	}
}

func fail(c *gin.Context, err error) {
	c.AbortWithStatusJSON(statusFor(err), gin.H{"error": err.Error()})
}

// session 按路径参数取会话，失败时已写响应
func (h *Handler) session(c *gin.Context) (*session.Session, bool) {
	s, err := h.store.Get(c.Param("id"))
	if err != nil {
		fail(c, err)
		return nil, false
	}
	return s, true
}

// bind 解析 JSON 请求体，失败时已写响应
func bind(c *gin.Context, v any) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return false
	}
	return true
}
