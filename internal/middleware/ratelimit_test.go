package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func newRouter(rl *RateLimiter) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(rl.Middleware())
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	return r
}

func get(r http.Handler, remote string) int {
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.RemoteAddr = remote
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Code
}

// TestRateLimitPerIP 测试按 IP 限流
func TestRateLimitPerIP(t *testing.T) {
	r := newRouter(NewRateLimiter(2, time.Hour))

	for i := 0; i < 2; i++ {
		if code := get(r, "10.0.0.1:1000"); code != http.StatusOK {
			t.Fatalf("request %d: code = %d, want 200", i, code)
		}
	}
	if code := get(r, "10.0.0.1:1001"); code != http.StatusTooManyRequests {
		t.Errorf("third request: code = %d, want 429", code)
	}
	if code := get(r, "10.0.0.2:1000"); code != http.StatusOK {
		t.Errorf("other client: code = %d, want 200", code)
	}
}

// TestRateLimitDisabled 测试 requests 为 0 时不限流
func TestRateLimitDisabled(t *testing.T) {
	r := newRouter(NewRateLimiter(0, time.Minute))
	for i := 0; i < 10; i++ {
		if code := get(r, "10.0.0.1:1000"); code != http.StatusOK {
			t.Fatalf("code = %d, want 200", code)
		}
	}
}

// TestCleanup 测试清理空闲限流器
func TestCleanup(t *testing.T) {
	rl := NewRateLimiter(5, time.Minute)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	rl.GetLimiter("a")
	now = now.Add(10 * time.Minute)
	rl.GetLimiter("b")

	if n := rl.Cleanup(5 * time.Minute); n != 1 {
		t.Errorf("Cleanup() = %d, want 1", n)
	}
	if rl.Size() != 1 {
		t.Errorf("Size() = %d, want 1", rl.Size())
	}
}
