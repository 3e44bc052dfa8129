package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"enib-internships/backend/config"
	"enib-internships/backend/internal/api/handler"
	"enib-internships/backend/internal/api/router"
	"enib-internships/backend/internal/metrics"
	"enib-internships/backend/internal/notify"
	"enib-internships/backend/internal/progress"
	"enib-internships/backend/internal/repository"
	"enib-internships/backend/internal/service"
	"enib-internships/backend/internal/statistics"
	"enib-internships/backend/pkg/cas"
	"enib-internships/backend/pkg/database"
	"enib-internships/backend/pkg/jwt"
	applogger "enib-internships/backend/pkg/logger"
	"enib-internships/backend/pkg/redis"
	"enib-internships/backend/pkg/tracing"
)

func main() {
	configPath := flag.String("config", "", "配置文件路径")
	flag.Parse()

	// 1. 加载配置
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	// 2. 初始化日志
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("应用启动中...",
		zap.String("env", cfg.App.Env),
		zap.Int("port", cfg.Server.Port),
		zap.String("log_level", cfg.Log.Level),
	)

	// 3. 链路追踪
	shutdownTracing, err := tracing.Init(&cfg.Tracing, logger)
	if err != nil {
		logger.Fatal("初始化链路追踪失败", zap.Error(err))
	}

	// 4. 连接数据库并执行迁移
	db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		logger.Fatal("数据库连接失败", zap.Error(err))
	}
	logger.Info("数据库连接成功")

	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("获取底层 sql.DB 失败", zap.Error(err))
	}
	if err := database.RunMigrations(sqlDB, logger); err != nil {
		logger.Fatal("数据库迁移失败", zap.Error(err))
	}

	// 5. 连接 Redis（可选：连接失败时降级运行，不中断启动）
	rdb, err := redis.NewClient(&cfg.Redis, logger)
	if err != nil {
		logger.Warn("Redis 连接失败，Token 黑名单、限流与跨实例进度推送将不可用", zap.Error(err))
		rdb = nil
	}

	rootCtx, stop := context.WithCancel(context.Background())
	defer stop()

	// 6. 统计缓存、指标、进度推送、通知
	stats := statistics.NewCache()
	m := metrics.New(stats)

	hub := progress.NewHub(logger)
	var transport progress.Transport = hub
	if cfg.Feature.ProgressBroker == "redis" && rdb != nil {
		rt := progress.NewRedisTransport(rdb, progress.DefaultRedisChannel, logger)
		transport = rt
		go func() {
			if err := rt.Forward(rootCtx, hub); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("进度事件订阅中断", zap.Error(err))
			}
		}()
	}

	sender, err := notify.New(&cfg.Notify, logger)
	if err != nil {
		logger.Fatal("初始化通知发送器失败", zap.Error(err))
	}

	// 7. 依赖注入: Repository → Service → Handler
	deps := service.Deps{
		Config:   cfg,
		Repo:     repository.NewRepository(db),
		Stats:    stats,
		Progress: transport,
		Notifier: sender,
		Metrics:  m,
		JWT:      jwt.NewManager(&cfg.Auth),
		CAS:      cas.NewClient(&cfg.Auth.CAS),
		Logger:   logger,
	}
	if rdb != nil {
		deps.Blacklist = rdb
	}
	svc := service.NewService(deps)

	// 8. 从数据库初始化统计缓存
	initCtx, cancelInit := context.WithTimeout(rootCtx, 30*time.Second)
	if err := svc.Statistics.Resync(initCtx); err != nil {
		logger.Fatal("初始化统计缓存失败", zap.Error(err))
	}
	cancelInit()

	h := handler.NewHandler(svc, hub)
	engine := router.Setup(cfg, h, deps.JWT, rdb, m, logger)

	// 9. 启动 HTTP 服务器（优雅关闭）
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second, // 批次发布同步执行，预留更长写超时
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("HTTP 服务器已启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP 服务器异常", zap.Error(err))
		}
	}()

	// 10. 监听系统信号，优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("收到关闭信号，开始优雅关闭...", zap.String("signal", sig.String()))
	stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("服务器关闭异常", zap.Error(err))
	}

	if err := sender.Close(); err != nil {
		logger.Warn("关闭通知发送器失败", zap.Error(err))
	}
	if err := shutdownTracing(ctx); err != nil {
		logger.Warn("关闭链路追踪失败", zap.Error(err))
	}

	// 关闭数据库连接
	if closeDB, _ := db.DB(); closeDB != nil {
		closeDB.Close()
	}

	// 关闭 Redis 连接
	if rdb != nil {
		rdb.Close()
	}

	logger.Info("服务器已关闭")
}
