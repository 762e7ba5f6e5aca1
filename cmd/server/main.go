package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"coursepath/config"
	"coursepath/internal/api/handler"
	"coursepath/internal/api/router"
	"coursepath/internal/repository"
	"coursepath/internal/service"
	"coursepath/pkg/database"
	"coursepath/pkg/jwt"
	applogger "coursepath/pkg/logger"
	"coursepath/pkg/redis"
	"coursepath/pkg/tracing"
)

func main() {
	// 1. 加载配置
	cfg, err := config.Load(os.Getenv("PLANNER_CONFIG"))
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
		zap.Int("port", cfg.Server.Port),
		zap.String("db_driver", cfg.Database.Driver),
		zap.String("log_level", cfg.Log.Level),
	)

	// 3. 链路追踪
	shutdownTracing, err := tracing.Init(context.Background(), &cfg.Trace, logger)
	if err != nil {
		logger.Fatal("初始化链路追踪失败", zap.Error(err))
	}

	// 4. 连接数据库并迁移
	db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		logger.Fatal("数据库连接失败", zap.Error(err))
	}
	if err := migrate(db, cfg.Database.Driver, logger); err != nil {
		logger.Fatal("数据库迁移失败", zap.Error(err))
	}

	// 5. 连接 Redis（可选：连接失败时降级运行，不中断启动）
	rdb, err := redis.NewClient(&cfg.Redis, logger)
	if err != nil {
		logger.Warn("Redis 连接失败，审计缓存、Token 黑名单与限流将不可用", zap.Error(err))
		rdb = nil
	}

	// 6. 依赖注入: Repository → Service → Handler
	jwtMgr := jwt.NewManager(&cfg.Auth)
	repo := repository.NewRepository(db)
	var cache service.AuditCache
	if rdb != nil {
		cache = rdb
	}
	svc := service.NewService(cfg, repo, cache, logger)
	h := handler.NewHandler(svc)

	// 7. 初始化路由
	engine := router.Setup(cfg, h, jwtMgr, rdb, logger)

	// 8. 启动 HTTP 服务器（优雅关闭）
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("HTTP 服务器已启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP 服务器异常", zap.Error(err))
		}
	}()

	// 9. 监听系统信号，优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("收到关闭信号，开始优雅关闭...", zap.String("signal", sig.String()))

	wait := cfg.Server.ShutdownWait
	if wait <= 0 {
		wait = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), wait)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("服务器关闭异常", zap.Error(err))
	}
	if err := shutdownTracing(ctx); err != nil {
		logger.Warn("链路追踪关闭异常", zap.Error(err))
	}

	if sqlDB, _ := db.DB(); sqlDB != nil {
		sqlDB.Close()
	}
	if rdb != nil {
		rdb.Close()
	}

	logger.Info("服务器已关闭")
}

// migrate postgres 执行 SQL 迁移，sqlite 本地模式按模型建表
func migrate(db *gorm.DB, driver string, logger *zap.Logger) error {
	if driver == "sqlite" {
		return repository.AutoMigrate(db)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("获取底层 sql.DB 失败: %w", err)
	}
	return database.RunMigrations(sqlDB, logger)
}
