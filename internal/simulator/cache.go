package simulator

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"

	"github.com/expr-lang/expr/vm"
)

// programCache 编译后的规则表达式缓存，按表达式内容去重
type programCache struct {
	mu    sync.RWMutex
	max   int
	items map[string]*vm.Program
}

func newProgramCache(max int) *programCache {
	return &programCache{
		max:   max,
		items: make(map[string]*vm.Program, max),
	}
}

func (c *programCache) GetOrCompute(src string, fn func() (*vm.Program, error)) (*vm.Program, error) {
	key := hash(src)

	c.mu.RLock()
	if p, ok := c.items[key]; ok {
		c.mu.RUnlock()
		return p, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()

	if p, ok := c.items[key]; ok {
		return p, nil
	}

	p, err := fn()
	if err != nil {
		return nil, err
	}
	if len(c.items) < c.max {
		c.items[key] = p
	}
	return p, nil
}

func (c *programCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

func hash(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
