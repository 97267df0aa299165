package api

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/shivamuserology/bulk-change/internal/session"
	"github.com/shivamuserology/bulk-change/internal/simulator"
	"github.com/shivamuserology/bulk-change/internal/wizard"
)

// eventStream SSE 输出
type eventStream struct {
	c       *gin.Context
	flusher http.Flusher
}

// openStream 写入 SSE 响应头
func openStream(c *gin.Context) (*eventStream, bool) {
	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "streaming not supported"})
		return nil, false
	}
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)
	return &eventStream{c: c, flusher: flusher}, true
}

// send SSE 格式: data: {json}\n\n
func (es *eventStream) send(event session.ProgressEvent) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	b, err := json.Marshal(event)
	if err != nil {
		return
	}
	fmt.Fprintf(es.c.Writer, "data: %s\n\n", b)
	es.flusher.Flush()
}

// Validate 同步运行校验
// POST /api/sessions/:id/validate
func (h *Handler) Validate(c *gin.Context) {
	h.dispatch(c, h.machine.RunValidation)
}

// ValidateStream 推送校验阶段进度，结束后写入校验结果
// POST /api/sessions/:id/validate/stream
func (h *Handler) ValidateStream(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	if st := s.Snapshot(); len(st.SelectedEmployees) == 0 {
		fail(c, wizard.ErrNoEmployees)
		return
	}
	if s.Running() {
		fail(c, wizard.ErrExecutionRunning)
		return
	}

	es, ok := openStream(c)
	if !ok {
		return
	}
	es.send(session.ProgressEvent{
		Type:    session.EventStart,
		Message: "Running validation",
		Data:    map[string]any{"stages": simulator.ValidationStages},
	})

	err := simulator.RunStages(c.Request.Context(), h.settings.ValidationTick, func(p simulator.StageProgress) {
		es.send(session.ProgressEvent{
			Type:    session.EventProgress,
			Message: p.Current,
			Data:    p,
		})
	})
	if err != nil {
		// 客户端已断开
		return
	}

	st, err := s.Dispatch(h.machine.RunValidation)
	if err != nil {
		es.send(session.ProgressEvent{
			Type:    session.EventError,
			Message: "Validation failed: " + err.Error(),
		})
		return
	}
	es.send(session.ProgressEvent{
		Type:    session.EventDone,
		Message: "Validation complete",
		Data: map[string]any{
			"result":     st.ValidationResults,
			"summary":    wizard.Summarize(st.ValidationResults),
			"canProceed": st.CanProceed(),
		},
	})
}

// Execute 启动执行并推送进度。客户端断开后执行继续，状态可通过会话查询。
// POST /api/sessions/:id/execute
func (h *Handler) Execute(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	progressChan, err := s.StartExecution(simulator.NewExecutor(h.settings.ExecutionDelay))
	if err != nil {
		fail(c, err)
		return
	}
	log.Printf("会话 %s 开始执行", s.ID)

	es, ok := openStream(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case event, open := <-progressChan:
			if !open {
				return
			}
			es.send(event)
		}
	}
}

// CancelExecution 取消执行
// POST /api/sessions/:id/execute/cancel
func (h *Handler) CancelExecution(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	if err := s.CancelExecution(h.settings.CancelCutoff); err != nil {
		fail(c, err)
		return
	}
	log.Printf("会话 %s 请求取消执行", s.ID)
	c.JSON(http.StatusAccepted, gin.H{"cancelled": true})
}
