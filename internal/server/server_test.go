package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shivamuserology/bulk-change/internal/config"
)

func newTestServer(t *testing.T, devMode bool) *Server {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Server.DevMode = devMode
	s, err := NewServer(cfg)
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	return s
}

func get(h http.Handler, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

// TestIndexPage 测试嵌入的首页
func TestIndexPage(t *testing.T) {
	s := newTestServer(t, false)
	w := get(s.Handler(), "/")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "Bulk Employee Change") {
		t.Errorf("index: code = %d", w.Code)
	}
	if w := get(s.Handler(), "/api/unknown"); w.Code != http.StatusNotFound {
		t.Errorf("unknown api: code = %d, want 404", w.Code)
	}
}

// TestDevModeRedirect 测试开发模式重定向
func TestDevModeRedirect(t *testing.T) {
	s := newTestServer(t, true)
	w := get(s.Handler(), "/wizard")
	if w.Code != http.StatusTemporaryRedirect {
		t.Fatalf("code = %d, want 307", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "http://localhost:5173/wizard" {
		t.Errorf("Location = %s", loc)
	}
}

// TestCORSPreflight 测试 CORS 预检
func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t, false)
	req := httptest.NewRequest(http.MethodOptions, "/api/sessions", nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	if w.Code != http.StatusNoContent || w.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Errorf("preflight: code = %d, headers %v", w.Code, w.Header())
	}
}

// TestRateLimitedAPI 测试 API 限流
func TestRateLimitedAPI(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.RateLimit.Requests = 1
	s, err := NewServer(cfg)
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	if w := get(s.Handler(), "/api/status"); w.Code != http.StatusOK {
		t.Fatalf("first request: code = %d", w.Code)
	}
	if w := get(s.Handler(), "/api/status"); w.Code != http.StatusTooManyRequests {
		t.Errorf("second request: code = %d, want 429", w.Code)
	}
}
