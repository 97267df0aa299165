package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

// EnvPrefix 环境变量前缀
const EnvPrefix = "BULKWIZARD_"

// AppConfig 应用配置
type AppConfig struct {
	Server     ServerConfig     `toml:"server"`
	Session    SessionConfig    `toml:"session"`
	Simulation SimulationConfig `toml:"simulation"`
	Validation ValidationConfig `toml:"validation"`
	RateLimit  RateLimitConfig  `toml:"rate_limit"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port        int    `toml:"port"`
	DevMode     bool   `toml:"dev_mode"`
	FrontendURL string `toml:"frontend_url"` // 开发模式下根路径重定向到前端开发服务器
	OpenBrowser bool   `toml:"open_browser"`
}

// SessionConfig 会话配置
type SessionConfig struct {
	TTL             Duration `toml:"ttl"`
	CleanupInterval Duration `toml:"cleanup_interval"`
}

// SimulationConfig 模拟器节奏
type SimulationConfig struct {
	ExecutionDelay      Duration `toml:"execution_delay"` // 每名员工的处理间隔
	ValidationTick      Duration `toml:"validation_tick"` // 校验阶段动画间隔
	CancelCutoffPercent float64  `toml:"cancel_cutoff_percent"`
}

// ValidationConfig 校验策略
type ValidationConfig struct {
	Engine string `toml:"engine"` // scenario / rules
}

// RateLimitConfig 每个客户端 IP 在窗口内的请求上限
type RateLimitConfig struct {
	Requests int      `toml:"requests"`
	Window   Duration `toml:"window"`
}

// LoadConfigInfo 配置加载元信息
type LoadConfigInfo struct {
	Path          string
	FileFound     bool
	PortSpecified bool
	EnvOverrides  []string
}

// Duration 以 "30s"、"2h" 形式读写的时长
type Duration struct {
	time.Duration
}

// UnmarshalText 支持 Go 时长字符串，纯数字按秒处理
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := parseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText 输出 Go 时长字符串
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// DefaultConfig 默认配置
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Port:        20262,
			DevMode:     false,
			FrontendURL: "http://localhost:5173",
			OpenBrowser: true,
		},
		Session: SessionConfig{
			TTL:             Duration{2 * time.Hour},
			CleanupInterval: Duration{5 * time.Minute},
		},
		Simulation: SimulationConfig{
			ExecutionDelay:      Duration{100 * time.Millisecond},
			ValidationTick:      Duration{150 * time.Millisecond},
			CancelCutoffPercent: 50,
		},
		Validation: ValidationConfig{
			Engine: "scenario",
		},
		RateLimit: RateLimitConfig{
			Requests: 300,
			Window:   Duration{time.Minute},
		},
	}
}

// Validate 检查配置取值范围
func (c *AppConfig) Validate() error {
	var errs []error
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port out of range: %d", c.Server.Port))
	}
	if c.Simulation.ExecutionDelay.Duration < 0 || c.Simulation.ValidationTick.Duration < 0 {
		errs = append(errs, errors.New("simulation delays must not be negative"))
	}
	if c.Simulation.CancelCutoffPercent < 0 || c.Simulation.CancelCutoffPercent > 100 {
		errs = append(errs, fmt.Errorf("simulation.cancel_cutoff_percent out of range: %v", c.Simulation.CancelCutoffPercent))
	}
	switch c.Validation.Engine {
	case "", "scenario", "rules":
	default:
		errs = append(errs, fmt.Errorf("validation.engine must be scenario or rules, got %q", c.Validation.Engine))
	}
	if c.RateLimit.Requests < 0 {
		errs = append(errs, errors.New("rate_limit.requests must not be negative"))
	}
	if c.RateLimit.Requests > 0 && c.RateLimit.Window.Duration <= 0 {
		errs = append(errs, errors.New("rate_limit.window must be positive"))
	}
	return errors.Join(errs...)
}

func isPortSpecifiedInToml(data []byte) bool {
	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return false
	}

	serverAny, ok := raw["server"]
	if !ok {
		return false
	}

	serverMap, ok := serverAny.(map[string]any)
	if !ok {
		return false
	}

	_, ok = serverMap["port"]
	return ok
}

// GetExeDir 获取可执行文件所在目录
func GetExeDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	return filepath.Dir(exe), nil
}

// ConfigPath 可执行文件同目录下的 config.toml
func ConfigPath() string {
	exeDir, err := GetExeDir()
	if err != nil {
		// 无法获取可执行文件目录，使用当前目录
		exeDir = "."
	}
	return filepath.Join(exeDir, "config.toml")
}

// LoadConfigWithInfo 加载配置：默认值 <- config.toml <- .env / 环境变量
func LoadConfigWithInfo() (*AppConfig, LoadConfigInfo, error) {
	path := ConfigPath()
	loadDotEnv(filepath.Join(filepath.Dir(path), ".env"), ".env")
	return LoadFrom(path, os.LookupEnv)
}

// LoadFrom 从指定路径加载配置，lookup 提供环境变量
func LoadFrom(path string, lookup func(string) (string, bool)) (*AppConfig, LoadConfigInfo, error) {
	info := LoadConfigInfo{Path: path}
	config := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		info.FileFound = true
		info.PortSpecified = isPortSpecifiedInToml(data)
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, info, fmt.Errorf("parse %s: %w", path, err)
		}
	case os.IsNotExist(err):
		// 配置文件不存在，使用默认配置
	default:
		return nil, info, err
	}

	overrides, err := applyEnv(config, lookup)
	if err != nil {
		return nil, info, err
	}
	info.EnvOverrides = overrides
	if contains(overrides, EnvPrefix+"PORT") {
		info.PortSpecified = true
	}

	if err := config.Validate(); err != nil {
		return nil, info, err
	}
	return config, info, nil
}

// LoadConfig 从 config.toml 加载配置
// 配置文件位于可执行文件同目录下
func LoadConfig() (*AppConfig, error) {
	config, _, err := LoadConfigWithInfo()
	return config, err
}

// SaveConfig 保存配置到指定路径
func SaveConfig(config *AppConfig, path string) error {
	data, err := toml.Marshal(config)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// loadDotEnv 依次加载存在的 .env 文件；已有环境变量不会被覆盖
func loadDotEnv(paths ...string) {
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		_ = godotenv.Load(p)
	}
}

// envBinding 一个环境变量到配置项的绑定
type envBinding struct {
	key   string
	apply func(c *AppConfig, v string) error
}

var envBindings = []envBinding{
	{"PORT", func(c *AppConfig, v string) (err error) { c.Server.Port, err = strconv.Atoi(v); return }},
	{"DEV_MODE", func(c *AppConfig, v string) (err error) { c.Server.DevMode, err = strconv.ParseBool(v); return }},
	{"FRONTEND_URL", func(c *AppConfig, v string) error { c.Server.FrontendURL = v; return nil }},
	{"OPEN_BROWSER", func(c *AppConfig, v string) (err error) { c.Server.OpenBrowser, err = strconv.ParseBool(v); return }},
	{"SESSION_TTL", func(c *AppConfig, v string) error { return c.Session.TTL.UnmarshalText([]byte(v)) }},
	{"EXECUTION_DELAY", func(c *AppConfig, v string) error { return c.Simulation.ExecutionDelay.UnmarshalText([]byte(v)) }},
	{"VALIDATION_TICK", func(c *AppConfig, v string) error { return c.Simulation.ValidationTick.UnmarshalText([]byte(v)) }},
	{"CANCEL_CUTOFF_PERCENT", func(c *AppConfig, v string) (err error) {
		c.Simulation.CancelCutoffPercent, err = strconv.ParseFloat(v, 64)
		return
	}},
	{"VALIDATION_ENGINE", func(c *AppConfig, v string) error { c.Validation.Engine = strings.ToLower(v); return nil }},
	{"RATE_LIMIT_REQUESTS", func(c *AppConfig, v string) (err error) { c.RateLimit.Requests, err = strconv.Atoi(v); return }},
	{"RATE_LIMIT_WINDOW", func(c *AppConfig, v string) error { return c.RateLimit.Window.UnmarshalText([]byte(v)) }},
}

// applyEnv 环境变量覆盖（用于 E2E / 本地运行），返回生效的变量名
func applyEnv(c *AppConfig, lookup func(string) (string, bool)) ([]string, error) {
	var applied []string
	for _, b := range envBindings {
		key := EnvPrefix + b.key
		v, ok := lookup(key)
		if !ok || strings.TrimSpace(v) == "" {
			continue
		}
		if err := b.apply(c, strings.TrimSpace(v)); err != nil {
			return applied, fmt.Errorf("%s: %w", key, err)
		}
		applied = append(applied, key)
	}
	return applied, nil
}

func parseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if d, err := time.ParseDuration(s); err == nil {
		return d, nil
	}
	// 纯数字按秒处理
	if i, err := strconv.Atoi(s); err == nil {
		return time.Duration(i) * time.Second, nil
	}
	return 0, fmt.Errorf("invalid duration %q", s)
}

func contains(items []string, v string) bool {
	for _, it := range items {
		if it == v {
			return true
		}
	}
	return false
}
