package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/shivamuserology/bulk-change/internal/model"
	"github.com/shivamuserology/bulk-change/internal/wizard"
)

var (
	ErrNotFound      = errors.New("session not found")
	ErrNoExecution   = errors.New("no execution is running")
	ErrCancelTooLate = errors.New("execution is past the cancellation cutoff")
)

// 进度事件类型
const (
	EventStart     = "start"
	EventProgress  = "progress"
	EventDone      = "done"
	EventCancelled = "cancelled"
	EventError     = "error"
)

// ProgressEvent 执行进度事件
type ProgressEvent struct {
	Type      string      `json:"type"`      // start/progress/done/cancelled/error
	Message   string      `json:"message"`   // 事件消息
	Data      interface{} `json:"data"`      // 附加数据
	Timestamp time.Time   `json:"timestamp"` // 时间戳
}

// Session 单个向导会话。状态只通过 Dispatch 写入
type Session struct {
	ID        string
	CreatedAt time.Time

	mu       sync.Mutex
	state    wizard.State
	machine  *wizard.Machine
	lastSeen time.Time

	// 正在进行的执行
	cancel context.CancelFunc
	done   chan struct{}
}

func newSession(id string, machine *wizard.Machine, now time.Time) *Session {
	return &Session{
		ID:        id,
		CreatedAt: now,
		state:     machine.Initial(),
		machine:   machine,
		lastSeen:  now,
	}
}

// Snapshot 当前状态的深拷贝
func (s *Session) Snapshot() wizard.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Dispatch 在会话锁内执行一个动作，成功后替换状态
func (s *Session) Dispatch(action func(wizard.State) (wizard.State, error)) (wizard.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := action(s.state)
	if err != nil {
		return s.state.Clone(), err
	}
	s.state = next
	return next.Clone(), nil
}

// Running 是否有执行在进行
func (s *Session) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.done != nil
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// StartExecution 启动后台执行，返回进度通道（执行结束后关闭）。
// 同一会话同一时刻只允许一次执行。
func (s *Session) StartExecution(exec wizard.Executor) (<-chan ProgressEvent, error) {
	s.mu.Lock()
	if s.done != nil {
		s.mu.Unlock()
		return nil, wizard.ErrExecutionRunning
	}
	next, err := s.machine.BeginExecution(s.state)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	s.state = next
	req := wizard.ExecutionRequestFor(next)

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})
	done := s.done
	s.mu.Unlock()

	// 容量足够容纳全部事件，读端离开时执行也不会阻塞
	progressChan := make(chan ProgressEvent, len(req.EmployeeIDs)+4)
	sendProgress(progressChan, ProgressEvent{
		Type:      EventStart,
		Message:   fmt.Sprintf("Updating %d employees", len(req.EmployeeIDs)),
		Data:      map[string]any{"total": len(req.EmployeeIDs), "fields": req.Fields},
		Timestamp: time.Now(),
	})

	go func() {
		defer close(progressChan)
		defer close(done)
		defer cancel()

		final := exec.Execute(ctx, req, func(p model.ExecutionStatus) {
			if _, err := s.Dispatch(func(st wizard.State) (wizard.State, error) {
				return s.machine.RecordProgress(st, p)
			}); err != nil {
				return
			}
			sendProgress(progressChan, ProgressEvent{
				Type:      EventProgress,
				Message:   p.CurrentEmployee,
				Data:      p,
				Timestamp: time.Now(),
			})
		})

		s.mu.Lock()
		next, err := s.machine.CompleteExecution(s.state, final)
		if err == nil {
			s.state = next
		}
		s.cancel = nil
		s.done = nil
		s.mu.Unlock()

		if err != nil {
			sendProgress(progressChan, ProgressEvent{
				Type:      EventError,
				Message:   "Execution failed: " + err.Error(),
				Timestamp: time.Now(),
			})
			return
		}
		event := ProgressEvent{
			Type:      EventDone,
			Message:   "Execution complete",
			Data:      next.ExecutionStatus,
			Timestamp: time.Now(),
		}
		if final.Status == model.ExecutionCancelled {
			event.Type = EventCancelled
			event.Message = fmt.Sprintf("Cancelled after %d of %d employees", final.Processed, final.Total)
		}
		sendProgress(progressChan, event)
	}()

	return progressChan, nil
}

// CancelExecution 请求取消执行；进度超过 cutoffPercent 后拒绝
func (s *Session) CancelExecution(cutoffPercent float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.done == nil || s.cancel == nil {
		return ErrNoExecution
	}
	if st := s.state.ExecutionStatus; st != nil && st.Progress > cutoffPercent {
		return fmt.Errorf("%w: %.0f%% processed", ErrCancelTooLate, st.Progress)
	}
	s.cancel()
	return nil
}

// Wait 等待当前执行结束，没有执行时立即返回
func (s *Session) Wait(ctx context.Context) error {
	s.mu.Lock()
	done := s.done
	s.mu.Unlock()
	if done == nil {
		return nil
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// stop 取消执行（会话删除或过期时）
func (s *Session) stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
}

// sendProgress 非阻塞发送，通道已满时丢弃事件
func sendProgress(ch chan ProgressEvent, event ProgressEvent) {
	select {
	case ch <- event:
	default:
	}
}
