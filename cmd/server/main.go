package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/palemoky/checkers-duel/internal/config"
	"github.com/palemoky/checkers-duel/internal/logger"
	"github.com/palemoky/checkers-duel/internal/server"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "配置文件路径")
	flag.Parse()

	// 加载配置
	cfg, cfgErr := config.Load(*configPath)
	if cfgErr != nil {
		cfg = config.Default()
	}
	if err := cfg.ApplyEnv(); err != nil {
		_, _ = os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}

	if err := logger.Init(cfg.Log.Options()); err != nil {
		_, _ = os.Stderr.WriteString("初始化日志失败: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer logger.Sync()

	if cfgErr != nil {
		logger.L().Warn("加载配置文件失败，使用默认配置", zap.String("path", *configPath), zap.Error(cfgErr))
	}

	// 创建服务器
	srv, err := server.NewServer(cfg)
	if err != nil {
		logger.L().Fatal("创建服务器失败", zap.Error(err))
	}

	// 优雅关闭：等待进行中的对局结束
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		logger.L().Info("正在关闭服务器...")
		srv.GracefulShutdown(cfg.Game.ShutdownTimeoutDuration())
	}()

	logger.L().Info("🎮 跳棋对战服务器启动中...")
	if err := srv.Start(); err != nil {
		logger.L().Fatal("服务器启动失败", zap.Error(err))
	}
}
