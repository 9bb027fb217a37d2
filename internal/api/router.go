package api

import (
	"fmt"
	"time"

	"flavor-pairing/internal/api/handlers/health"
	pairingHandler "flavor-pairing/internal/api/handlers/pairing"
	sessionHandler "flavor-pairing/internal/api/handlers/session"
	"flavor-pairing/internal/api/middleware"
	"flavor-pairing/internal/core/pairing"
	"flavor-pairing/internal/core/selector"
	"flavor-pairing/internal/core/session"
	"flavor-pairing/internal/core/suggest"
	"flavor-pairing/internal/infrastructure/config"
	"flavor-pairing/internal/infrastructure/metrics"
	"flavor-pairing/internal/pkg/common"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Dependencies 路由所需的服務
type Dependencies struct {
	Provider     *pairing.Provider
	Sessions     *session.Service
	Redis        health.Pinger
	Deduplicator *middleware.Deduplicator
	Metrics      *metrics.Metrics
}

// SetupRouter 設置路由
func SetupRouter(cfg *config.Config, deps Dependencies) (*gin.Engine, error) {
	if deps.Provider == nil || deps.Sessions == nil {
		return nil, fmt.Errorf("router requires pairing provider and session service")
	}

	common.LogInfo("Starting router setup",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
	)

	// 設置 gin 模式
	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// 註冊基礎中間件
	router.Use(middleware.Recovery())
	router.Use(requestid.New()) // 自動生成請求 ID
	router.Use(middleware.Logger())

	var observer selector.Observer
	if deps.Metrics != nil {
		router.Use(middleware.Metrics(deps.Metrics))
		observer = deps.Metrics
	}

	// CORS 設置
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	router.Use(middleware.BodySizeLimit(cfg.Server.MaxBodyBytes))
	router.Use(middleware.Timeout(cfg.Server.RequestTimeout))

	suggestSvc := suggest.NewService(deps.Provider)
	healthH := health.NewHandler(cfg, deps.Provider, deps.Sessions.Stats, deps.Redis)
	pairingH := pairingHandler.NewHandler(deps.Provider, suggestSvc, cfg, observer)
	sessionH := sessionHandler.NewHandler(deps.Sessions, suggestSvc)

	// 健康檢查路由
	router.GET("/health", healthH.HealthCheck)
	router.GET("/ready", healthH.ReadinessCheck)
	router.GET("/live", healthH.LivenessCheck)
	if deps.Metrics != nil {
		router.GET(cfg.Metrics.Path, gin.WrapH(deps.Metrics.Handler()))
	}

	// API 路由組
	api := router.Group("/api/v1")
	if cfg.RateLimit.Enabled {
		api.Use(middleware.RateLimit(cfg.RateLimit.Requests, cfg.RateLimit.Window))
	}
	{
		api.GET("/ingredients", pairingH.ListIngredients)
		api.GET("/ingredients/:name", pairingH.GetIngredient)

		// 只有結果相同的查詢才去重；session 操作（重抽、鎖定切換、復原）本來就會重複
		idempotent := api.Group("")
		if deps.Deduplicator != nil {
			idempotent.Use(deps.Deduplicator.Middleware())
		}
		idempotent.POST("/pairing/score", pairingH.Score)
		idempotent.POST("/restrictions/check", pairingH.CheckRestrictions)

		api.POST("/pairing/select", pairingH.Select)

		sessions := api.Group("/sessions")
		{
			sessions.POST("", sessionH.Create)
			sessions.GET("/:id", sessionH.Get)
			sessions.DELETE("/:id", sessionH.Delete)
			sessions.PUT("/:id/settings", sessionH.UpdateSettings)
			sessions.GET("/:id/suggestions", sessionH.Suggestions)

			sessions.POST("/:id/generate", sessionH.Generate)
			sessions.POST("/:id/undo", sessionH.Undo)
			sessions.POST("/:id/reset", sessionH.Reset)
			sessions.POST("/:id/add", sessionH.Add)
			sessions.POST("/:id/target/increment", sessionH.IncrementTarget)
			sessions.POST("/:id/target/decrement", sessionH.DecrementTarget)
			sessions.POST("/:id/slots/:index/lock", sessionH.LockToggle)
			sessions.POST("/:id/slots/:index/remove", sessionH.Remove)
		}
	}

	common.LogInfo("Router setup completed successfully",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.Bool("rate_limit", cfg.RateLimit.Enabled),
		zap.Bool("deduplication", deps.Deduplicator != nil),
		zap.Bool("metrics", deps.Metrics != nil),
		zap.Bool("redis", deps.Redis != nil),
		zap.Duration("timeout", cfg.Server.RequestTimeout),
		zap.Int64("max_body_size", cfg.Server.MaxBodyBytes),
	)

	return router, nil
}
