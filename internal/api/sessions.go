package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/shivamuserology/bulk-change/internal/model"
	"github.com/shivamuserology/bulk-change/internal/session"
	"github.com/shivamuserology/bulk-change/internal/wizard"
)

// SessionResponse 会话状态响应
type SessionResponse struct {
	ID         string                   `json:"id"`
	State      wizard.State             `json:"state"`
	CanProceed bool                     `json:"canProceed"`
	Validation wizard.ValidationSummary `json:"validation"`
	Running    bool                     `json:"running"`
}

func sessionResponse(s *session.Session, st wizard.State) SessionResponse {
	return SessionResponse{
		ID:         s.ID,
		State:      st,
		CanProceed: st.CanProceed(),
		Validation: wizard.Summarize(st.ValidationResults),
		Running:    s.Running(),
	}
}

// dispatch 对会话执行一个动作并返回新状态
func (h *Handler) dispatch(c *gin.Context, action func(wizard.State) (wizard.State, error)) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	st, err := s.Dispatch(action)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, sessionResponse(s, st))
}

// CreateSession 新建会话
// POST /api/sessions
func (h *Handler) CreateSession(c *gin.Context) {
	s := h.store.Create()
	c.JSON(http.StatusCreated, sessionResponse(s, s.Snapshot()))
}

// GetSession 获取会话状态
// GET /api/sessions/:id
func (h *Handler) GetSession(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, sessionResponse(s, s.Snapshot()))
}

// DeleteSession 删除会话
// DELETE /api/sessions/:id
func (h *Handler) DeleteSession(c *gin.Context) {
	if err := h.store.Delete(c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type idRequest struct {
	ID string `json:"id" binding:"required"`
}

type idsRequest struct {
	IDs []string `json:"ids"`
}

// ToggleEmployee 切换员工选中状态
// POST /api/sessions/:id/employees/toggle
func (h *Handler) ToggleEmployee(c *gin.Context) {
	var req idRequest
	if !bind(c, &req) {
		return
	}
	h.dispatch(c, func(st wizard.State) (wizard.State, error) {
		return h.machine.SelectEmployee(st, req.ID)
	})
}

// SetEmployees 整体替换员工选择
// PUT /api/sessions/:id/employees
func (h *Handler) SetEmployees(c *gin.Context) {
	var req idsRequest
	if !bind(c, &req) {
		return
	}
	h.dispatch(c, func(st wizard.State) (wizard.State, error) {
		return h.machine.SelectAllEmployees(st, req.IDs)
	})
}

// ClearEmployees 清空员工选择
// DELETE /api/sessions/:id/employees
func (h *Handler) ClearEmployees(c *gin.Context) {
	h.dispatch(c, h.machine.ClearEmployees)
}

// ToggleField 切换字段选中状态
// POST /api/sessions/:id/fields/toggle
func (h *Handler) ToggleField(c *gin.Context) {
	var req idRequest
	if !bind(c, &req) {
		return
	}
	h.dispatch(c, func(st wizard.State) (wizard.State, error) {
		return h.machine.SelectField(st, req.ID)
	})
}

// SetFields 整体替换字段选择
// PUT /api/sessions/:id/fields
func (h *Handler) SetFields(c *gin.Context) {
	var req idsRequest
	if !bind(c, &req) {
		return
	}
	h.dispatch(c, func(st wizard.State) (wizard.State, error) {
		return h.machine.SetSelectedFields(st, req.IDs)
	})
}

// SetValue 设置字段修改
// PUT /api/sessions/:id/values/:field
func (h *Handler) SetValue(c *gin.Context) {
	var spec model.EditSpec
	if !bind(c, &spec) {
		return
	}
	field := c.Param("field")
	h.dispatch(c, func(st wizard.State) (wizard.State, error) {
		return h.machine.SetFieldValue(st, field, spec)
	})
}

// ClearValue 清除字段修改
// DELETE /api/sessions/:id/values/:field
func (h *Handler) ClearValue(c *gin.Context) {
	field := c.Param("field")
	h.dispatch(c, func(st wizard.State) (wizard.State, error) {
		return h.machine.ClearFieldValue(st, field)
	})
}

// SetFilters 设置员工筛选条件
// PUT /api/sessions/:id/filters
func (h *Handler) SetFilters(c *gin.Context) {
	var req struct {
		Filters map[string][]string `json:"filters"`
	}
	if !bind(c, &req) {
		return
	}
	h.dispatch(c, func(st wizard.State) (wizard.State, error) {
		return h.machine.SetFilters(st, req.Filters)
	})
}

// ClearFilters 清空筛选条件
// DELETE /api/sessions/:id/filters
func (h *Handler) ClearFilters(c *gin.Context) {
	h.dispatch(c, func(st wizard.State) (wizard.State, error) {
		return h.machine.ClearFilters(st), nil
	})
}

// SetEffectiveDate 设置生效时间
// PUT /api/sessions/:id/effective-date
func (h *Handler) SetEffectiveDate(c *gin.Context) {
	var req wizard.EffectiveDate
	if !bind(c, &req) {
		return
	}
	h.dispatch(c, func(st wizard.State) (wizard.State, error) {
		return h.machine.SetEffectiveDate(st, req.Kind, req.CustomDate)
	})
}

// GoToStep 跳转到指定步骤
// POST /api/sessions/:id/step
func (h *Handler) GoToStep(c *gin.Context) {
	var req struct {
		Step int `json:"step"`
	}
	if !bind(c, &req) {
		return
	}
	h.dispatch(c, func(st wizard.State) (wizard.State, error) {
		return h.machine.GoToStep(st, wizard.Step(req.Step))
	})
}

// NextStep 前进一步
// POST /api/sessions/:id/next
func (h *Handler) NextStep(c *gin.Context) {
	h.dispatch(c, h.machine.NextStep)
}

// PrevStep 后退一步
// POST /api/sessions/:id/prev
func (h *Handler) PrevStep(c *gin.Context) {
	h.dispatch(c, h.machine.PrevStep)
}

// ScenariosRequest 演示控制，空值表示不修改
type ScenariosRequest struct {
	Permission string `json:"permission"`
	Outcome    string `json:"outcome"`
	EntryMode  string `json:"entryMode"`
}

// SetScenarios 设置权限场景、结果场景与进入方式
// PUT /api/sessions/:id/scenarios
func (h *Handler) SetScenarios(c *gin.Context) {
	var req ScenariosRequest
	if !bind(c, &req) {
		return
	}
	h.dispatch(c, func(st wizard.State) (wizard.State, error) {
		var err error
		if req.Permission != "" {
			p, perr := wizard.ParsePermissionScenario(req.Permission)
			if perr != nil {
				return st, perr
			}
			if st, err = h.machine.SetPermissionScenario(st, p); err != nil {
				return st, err
			}
		}
		if req.Outcome != "" {
			o, perr := wizard.ParseOutcomeScenario(req.Outcome)
			if perr != nil {
				return st, perr
			}
			if st, err = h.machine.SetOutcomeScenario(st, o); err != nil {
				return st, err
			}
		}
		if req.EntryMode != "" {
			m, perr := wizard.ParseEntryMode(req.EntryMode)
			if perr != nil {
				return st, perr
			}
			if st, err = h.machine.SetEntryMode(st, m); err != nil {
				return st, err
			}
		}
		return st, nil
	})
}

// Reset 重置向导
// POST /api/sessions/:id/reset
func (h *Handler) Reset(c *gin.Context) {
	h.dispatch(c, h.machine.Reset)
}

// Review 第 5 步复核摘要
// GET /api/sessions/:id/review?limit=5
func (h *Handler) Review(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	limit := wizard.DefaultPreviewLimit
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = n
	}
	c.JSON(http.StatusOK, h.machine.ReviewSummary(s.Snapshot(), limit))
}

// SaveDraft 保存草稿
// POST /api/sessions/:id/drafts
func (h *Handler) SaveDraft(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var draftID string
	st, err := s.Dispatch(func(st wizard.State) (wizard.State, error) {
		next, id := h.machine.SaveDraft(st)
		draftID = id
		return next, nil
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"draftId": draftID, "session": sessionResponse(s, st)})
}

// LoadDraft 恢复草稿
// POST /api/sessions/:id/drafts/:draftId/load
func (h *Handler) LoadDraft(c *gin.Context) {
	draftID := c.Param("draftId")
	h.dispatch(c, func(st wizard.State) (wizard.State, error) {
		return h.machine.LoadDraft(st, draftID)
	})
}

// DeleteDraft 删除草稿
// DELETE /api/sessions/:id/drafts/:draftId
func (h *Handler) DeleteDraft(c *gin.Context) {
	draftID := c.Param("draftId")
	h.dispatch(c, func(st wizard.State) (wizard.State, error) {
		return h.machine.DeleteDraft(st, draftID)
	})
}

// GetLog 操作日志
// GET /api/sessions/:id/log
func (h *Handler) GetLog(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": s.Snapshot().ActionLog})
}

// LogEntryRequest 追加操作日志请求
type LogEntryRequest struct {
	Type    string         `json:"type"`
	Summary string         `json:"summary"`
	Details map[string]any `json:"details"`
}

var errInvalidLogEntry = errors.New("log entry requires summary and type single_change or bulk_change")

// AddLogEntry 追加一条操作日志（如单员工修改）
// POST /api/sessions/:id/log
func (h *Handler) AddLogEntry(c *gin.Context) {
	var req LogEntryRequest
	if !bind(c, &req) {
		return
	}
	if req.Type == "" {
		req.Type = model.LogSingleChange
	}
	if strings.TrimSpace(req.Summary) == "" || (req.Type != model.LogSingleChange && req.Type != model.LogBulkChange) {
		fail(c, errInvalidLogEntry)
		return
	}
	h.dispatch(c, func(st wizard.State) (wizard.State, error) {
		return h.machine.AddLogEntry(st, model.ActionLogEntry{
			Type:    req.Type,
			Summary: strings.TrimSpace(req.Summary),
			Details: req.Details,
		}), nil
	})
}

// RevertLog 撤销一条操作日志
// POST /api/sessions/:id/log/:logId/revert
func (h *Handler) RevertLog(c *gin.Context) {
	logID := c.Param("logId")
	h.dispatch(c, func(st wizard.State) (wizard.State, error) {
		return h.machine.RevertAction(st, logID)
	})
}
