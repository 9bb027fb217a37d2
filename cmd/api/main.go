package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"flavor-pairing/internal/api"
	"flavor-pairing/internal/api/middleware"
	"flavor-pairing/internal/core/pairing"
	"flavor-pairing/internal/core/session"
	"flavor-pairing/internal/infrastructure/config"
	"flavor-pairing/internal/infrastructure/metrics"
	"flavor-pairing/internal/pkg/common"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// 載入 .env
	if err := godotenv.Load(); err != nil {
		fmt.Println("Warning: .env file not found")
	}

	// 載入設定
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 初始化 logger（需在載入 config 後）
	if err := common.InitLogger(cfg.LogLevel, cfg.LogFile); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer common.Sync()

	common.LogInfo("載入設定",
		zap.String("data_source", cfg.Data.Source),
		zap.String("default_mode", cfg.Selector.DefaultMode),
		zap.Int("max_attempts", cfg.Selector.MaxAttempts),
		zap.Bool("redis_enabled", cfg.Redis.Enabled),
	)

	// 載入配對資料
	src, err := pairing.NewSource(cfg.Data)
	if err != nil {
		common.LogFatal("Invalid data source", zap.Error(err))
	}
	// 最多三個檔案，每個含重試
	loadTimeout := cfg.Data.RemoteTimeout * time.Duration(3*(cfg.Data.RemoteRetries+1))
	loadCtx, cancelLoad := context.WithTimeout(context.Background(), loadTimeout)
	provider, err := pairing.LoadProvider(loadCtx, src)
	cancelLoad()
	if err != nil {
		common.LogFatal("Failed to load pairing data", zap.Error(err))
	}

	// 預先建圖
	provider.Graph(false)
	provider.Graph(true)

	deps := api.Dependencies{Provider: provider}

	// 初始化 session 儲存
	var store session.Store
	if cfg.Redis.Enabled {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		redisStore, err := session.NewRedisStore(ctx, cfg.Redis, cfg.Session.TTL)
		cancel()
		if err != nil {
			common.LogFatal("Failed to initialize redis session store", zap.Error(err))
		}
		defer redisStore.Close()
		store = redisStore
		deps.Redis = redisStore
	}

	manager := session.NewManager(cfg, store)
	defer manager.Close()
	deps.Sessions = session.NewService(manager, provider, cfg.Selector)

	if cfg.Metrics.Enabled {
		m := metrics.New()
		m.RegisterSessionGauge(manager.Len)
		deps.Sessions.SetObserver(m)
		deps.Metrics = m
	}

	dedup := middleware.NewDeduplicator(cfg.DedupWindow)
	defer dedup.Stop()
	deps.Deduplicator = dedup

	// 設置路由
	router, err := api.SetupRouter(cfg, deps)
	if err != nil {
		common.LogError("Failed to setup router", zap.Error(err))
		os.Exit(1)
	}

	// 設置 HTTP 服務器
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// 啟動服務器
	go func() {
		common.LogInfo("啟動應用",
			zap.String("version", cfg.App.Version),
			zap.String("env", cfg.App.Env),
			zap.Bool("debug", cfg.App.Debug),
			zap.Int("port", cfg.Server.Port),
		)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			common.LogFatal("Failed to start server",
				zap.Error(err),
			)
		}
	}()

	// 等待中斷信號
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	common.LogInfo("Shutting down server...")

	// 設置關閉超時
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		common.LogError("Server forced to shutdown",
			zap.Error(err),
		)
		return
	}

	common.LogInfo("Server exited")
}
