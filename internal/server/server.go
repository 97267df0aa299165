package server

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/shivamuserology/bulk-change/internal/api"
	"github.com/shivamuserology/bulk-change/internal/config"
	"github.com/shivamuserology/bulk-change/internal/middleware"
	"github.com/shivamuserology/bulk-change/internal/mockdata"
	"github.com/shivamuserology/bulk-change/internal/session"
	"github.com/shivamuserology/bulk-change/internal/simulator"
	"github.com/shivamuserology/bulk-change/internal/wizard"
)

//go:embed all:web
var staticFiles embed.FS

// Server HTTP服务器
type Server struct {
	cfg      *config.AppConfig
	router   *gin.Engine
	sessions *session.Store
	limiter  *middleware.RateLimiter
	api      *api.Handler
}

// NewServer 创建服务器
func NewServer(cfg *config.AppConfig) (*Server, error) {
	devMode := cfg.Server.DevMode
	if !devMode {
		gin.SetMode(gin.ReleaseMode)
	}

	data, err := mockdata.Default()
	if err != nil {
		return nil, fmt.Errorf("load mock data: %w", err)
	}
	validator, err := simulator.NewValidator(cfg.Validation.Engine, data)
	if err != nil {
		return nil, err
	}
	sessions := session.NewStore(wizard.NewMachine(data, validator), cfg.Session.TTL.Duration)

	s := &Server{
		cfg:      cfg,
		router:   gin.Default(),
		sessions: sessions,
		limiter:  middleware.NewRateLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window.Duration),
		api: api.NewHandler(sessions, api.Settings{
			ExecutionDelay: cfg.Simulation.ExecutionDelay.Duration,
			ValidationTick: cfg.Simulation.ValidationTick.Duration,
			CancelCutoff:   cfg.Simulation.CancelCutoffPercent,
			Engine:         cfg.Validation.Engine,
		}),
	}

	if err := s.setupRoutes(devMode); err != nil {
		return nil, err
	}
	return s, nil
}

// setupRoutes 设置路由
func (s *Server) setupRoutes(devMode bool) error {
	// CORS
	s.router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	apiGroup := s.router.Group("/api")
	apiGroup.Use(s.limiter.Middleware())
	s.api.RegisterRoutes(apiGroup)

	if devMode {
		// 开发模式：页面重定向到前端开发服务器
		frontend := strings.TrimRight(s.cfg.Server.FrontendURL, "/")
		s.router.NoRoute(func(c *gin.Context) {
			if strings.HasPrefix(c.Request.URL.Path, "/api/") {
				c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
				return
			}
			c.Redirect(http.StatusTemporaryRedirect, frontend+c.Request.URL.Path)
		})
		return nil
	}

	// 生产模式：使用 embed 的静态页面
	sub, err := fs.Sub(staticFiles, "web")
	if err != nil {
		return err
	}
	index, err := fs.ReadFile(sub, "index.html")
	if err != nil {
		return fmt.Errorf("read embedded index: %w", err)
	}
	s.router.GET("/", func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html; charset=utf-8", index)
	})
	s.router.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api/") {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.Data(http.StatusOK, "text/html; charset=utf-8", index)
	})
	return nil
}

// StartBackground 启动会话清理与限流器清理，直到 ctx 结束
func (s *Server) StartBackground(ctx context.Context) {
	go s.sessions.RunJanitor(ctx, s.cfg.Session.CleanupInterval.Duration)
	if interval := s.cfg.Session.CleanupInterval.Duration; interval > 0 {
		go s.limiter.RunCleanup(ctx, interval)
	}
}

// Handler 路由（用于测试）
func (s *Server) Handler() http.Handler {
	return s.router
}

// Sessions 会话存储
func (s *Server) Sessions() *session.Store {
	return s.sessions
}

// Run 启动服务器
func (s *Server) Run(addr string) error {
	return s.router.Run(addr)
}
