package health

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"flavor-pairing/internal/core/pairing"
	"flavor-pairing/internal/infrastructure/config"
	"flavor-pairing/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// HealthResponse 健康檢查響應
type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Runtime   map[string]interface{} `json:"runtime"`
	Data      *DataStatus            `json:"data,omitempty"`
	Sessions  map[string]interface{} `json:"sessions,omitempty"`
}

// DataStatus 配對資料狀態
type DataStatus struct {
	Source        string `json:"source"`
	Ingredients   int    `json:"ingredients"`
	Pairings      int    `json:"pairings"`
	Profiles      int    `json:"profiles"`
	ExtraPairings int    `json:"experimental_pairings"`
}

// Pinger 外部依賴的連線檢查
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler 健康檢查處理器
type Handler struct {
	cfg      *config.Config
	provider *pairing.Provider
	stats    func() map[string]interface{}
	redis    Pinger
}

// NewHandler 創建處理器；stats 與 redis 可為 nil
func NewHandler(cfg *config.Config, provider *pairing.Provider, stats func() map[string]interface{}, redis Pinger) *Handler {
	return &Handler{
		cfg:      cfg,
		provider: provider,
		stats:    stats,
		redis:    redis,
	}
}

// HealthCheck 健康檢查處理器
func (h *Handler) HealthCheck(c *gin.Context) {
	// 獲取運行時信息
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	base := h.provider.Graph(false)
	full := h.provider.Graph(true)

	response := HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   h.cfg.App.Version,
		Runtime: map[string]interface{}{
			"goroutines": runtime.NumGoroutine(),
			"memory": map[string]interface{}{
				"alloc":       m.Alloc,
				"total_alloc": m.TotalAlloc,
				"sys":         m.Sys,
				"num_gc":      m.NumGC,
			},
		},
		Data: &DataStatus{
			Source:        h.cfg.Data.Source,
			Ingredients:   full.Size(),
			Pairings:      base.EdgeCount(),
			ExtraPairings: full.EdgeCount() - base.EdgeCount(),
			Profiles:      h.provider.Profiles().Len(),
		},
	}
	if h.stats != nil {
		response.Sessions = h.stats()
	}

	common.LogDebug("Health check request",
		zap.String("client_ip", c.ClientIP()),
		zap.String("path", c.Request.URL.Path),
	)

	c.JSON(http.StatusOK, response)
}

// ReadinessCheck 就緒檢查：配對資料已載入且 Redis 可連線
func (h *Handler) ReadinessCheck(c *gin.Context) {
	if h.provider.Graph(false).Size() == 0 {
		_, resp := common.AsResponse(common.ErrDataUnavailable)
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not_ready",
			"error":  resp,
		})
		return
	}

	if h.redis != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.redis.Ping(ctx); err != nil {
			common.LogWarn("Redis not reachable", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "not_ready",
				"error":  "redis unavailable",
			})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
	})
}

// LivenessCheck 存活檢查處理器
func (h *Handler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "alive",
	})
}
