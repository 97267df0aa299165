package session

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/shivamuserology/bulk-change/internal/wizard"
)

// DefaultTTL 会话空闲过期时间
const DefaultTTL = 2 * time.Hour

// Store 内存会话存储
type Store struct {
	machine  *wizard.Machine
	ttl      time.Duration
	now      func() time.Time
	sessions map[string]*Session
	mu       sync.RWMutex
}

// NewStore 创建会话存储，ttl <= 0 时不过期
func NewStore(machine *wizard.Machine, ttl time.Duration) *Store {
	return &Store{
		machine:  machine,
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[string]*Session),
	}
}

// Machine 会话共享的状态机
func (st *Store) Machine() *wizard.Machine {
	return st.machine
}

// Create 新建会话
func (st *Store) Create() *Session {
	st.mu.Lock()
	defer st.mu.Unlock()

	s := newSession(uuid.NewString(), st.machine, st.now())
	st.sessions[s.ID] = s
	return s
}

// Get 获取会话并刷新活跃时间；已过期的会话视为不存在
func (st *Store) Get(id string) (*Session, error) {
	st.mu.RLock()
	s, ok := st.sessions[id]
	st.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}

	now := st.now()
	if st.expired(s, now) {
		st.remove(id)
		return nil, ErrNotFound
	}
	s.touch(now)
	return s, nil
}

// Delete 删除会话，正在进行的执行会被取消
func (st *Store) Delete(id string) error {
	if !st.remove(id) {
		return ErrNotFound
	}
	return nil
}

// Count 会话数量
func (st *Store) Count() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

// PurgeExpired 清理过期会话，返回清理数量
func (st *Store) PurgeExpired() int {
	now := st.now()

	st.mu.RLock()
	var expired []string
	for id, s := range st.sessions {
		if st.expired(s, now) {
			expired = append(expired, id)
		}
	}
	st.mu.RUnlock()

	n := 0
	for _, id := range expired {
		if st.remove(id) {
			n++
		}
	}
	return n
}

// RunJanitor 周期清理过期会话，直到 ctx 结束
func (st *Store) RunJanitor(ctx context.Context, interval time.Duration) {
	if st.ttl <= 0 || interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := st.PurgeExpired(); n > 0 {
				log.Printf("清理过期会话: %d", n)
			}
		}
	}
}

// expired 执行中的会话不过期
func (st *Store) expired(s *Session, now time.Time) bool {
	if st.ttl <= 0 || s.Running() {
		return false
	}
	return now.Sub(s.idleSince()) > st.ttl
}

func (st *Store) remove(id string) bool {
	st.mu.Lock()
	s, ok := st.sessions[id]
	delete(st.sessions, id)
	st.mu.Unlock()
	if ok {
		s.stop()
	}
	return ok
}
