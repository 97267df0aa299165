package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/shivamuserology/bulk-change/internal/config"
	"github.com/shivamuserology/bulk-change/internal/server"
	"github.com/shivamuserology/bulk-change/internal/util"
)

var (
	port      int
	devMode   bool
	noBrowser bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE:  runServe,
}

func init() {
	addServeFlags(serveCmd)
	rootCmd.AddCommand(serveCmd)
}

func addServeFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&port, "port", 0, "服务端口 (config.toml 优先；仅当未显式配置 port 时生效)")
	cmd.Flags().BoolVar(&devMode, "dev", false, "开发模式")
	cmd.Flags().BoolVar(&noBrowser, "no-browser", false, "不自动打开浏览器")
}

func runServe(cmd *cobra.Command, args []string) error {
	fmt.Println("==========================================")
	fmt.Println("  Bulk Change - 员工批量修改向导")
	fmt.Println("==========================================")

	// 加载配置
	cfg, info, err := config.LoadConfigWithInfo()
	if err != nil {
		log.Printf("加载配置失败，使用默认配置: %v", err)
		cfg = config.DefaultConfig()
		info = config.LoadConfigInfo{}
	}
	if info.FileFound {
		fmt.Printf("配置文件: %s\n", info.Path)
	}
	for _, key := range info.EnvOverrides {
		fmt.Printf("环境变量覆盖: %s\n", key)
	}

	// 命令行参数覆盖配置
	if port > 0 && !info.PortSpecified {
		cfg.Server.Port = port
	}
	if devMode {
		cfg.Server.DevMode = true
	}

	// 端口被占用时向后查找
	if p, err := util.FindAvailablePort(cfg.Server.Port, 20); err != nil {
		return fmt.Errorf("端口不可用: %w", err)
	} else if p != cfg.Server.Port {
		log.Printf("端口 %d 已被占用，改用 %d", cfg.Server.Port, p)
		cfg.Server.Port = p
	}

	srv, err := server.NewServer(cfg)
	if err != nil {
		return fmt.Errorf("创建服务失败: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	srv.StartBackground(ctx)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	url := fmt.Sprintf("http://localhost:%d", cfg.Server.Port)

	go func() {
		fmt.Printf("服务启动中，监听端口 %d ...\n", cfg.Server.Port)
		if err := srv.Run(addr); err != nil {
			log.Fatalf("服务启动失败: %v", err)
		}
	}()

	switch {
	case cfg.Server.DevMode:
		fmt.Printf("开发模式: 前端 %s，API %s/api\n", cfg.Server.FrontendURL, url)
	case cfg.Server.OpenBrowser && !noBrowser:
		fmt.Printf("正在打开浏览器: %s\n", url)
		if err := util.OpenBrowserWithFallback(url); err != nil {
			fmt.Printf("无法自动打开浏览器，请手动访问: %s\n", url)
		}
	default:
		fmt.Printf("请访问: %s\n", url)
	}

	fmt.Println("\n按 Ctrl+C 停止服务...")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	fmt.Println("\n正在关闭服务...")
	return nil
}
