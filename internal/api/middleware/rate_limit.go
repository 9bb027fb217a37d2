package middleware

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"flavor-pairing/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RateLimiter 令牌桶限流器
type RateLimiter struct {
	mu       sync.Mutex
	tokens   float64
	capacity float64
	rate     float64
	lastTime time.Time
}

// NewRateLimiter 創建新的限流器：window 內最多 requests 次
func NewRateLimiter(requests int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		tokens:   float64(requests),
		capacity: float64(requests),
		rate:     float64(requests) / window.Seconds(),
		lastTime: time.Now(),
	}
}

// Allow 檢查是否允許請求
func (rl *RateLimiter) Allow() bool {
	return rl.allowAt(time.Now())
}

func (rl *RateLimiter) allowAt(now time.Time) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	elapsed := now.Sub(rl.lastTime).Seconds()
	if elapsed > 0 {
		rl.tokens = min(rl.capacity, rl.tokens+elapsed*rl.rate)
		rl.lastTime = now
	}

	if rl.tokens >= 1 {
		rl.tokens--
		return true
	}
	return false
}

// clientLimiters 每個用戶端 IP 一個限流器
type clientLimiters struct {
	mu       sync.Mutex
	limiters map[string]*clientLimiter
	requests int
	window   time.Duration
}

type clientLimiter struct {
	limiter  *RateLimiter
	lastSeen time.Time
}

func (cl *clientLimiters) get(key string, now time.Time) *RateLimiter {
	cl.mu.Lock()
	defer cl.mu.Unlock()

	entry, ok := cl.limiters[key]
	if !ok {
		entry = &clientLimiter{limiter: NewRateLimiter(cl.requests, cl.window)}
		cl.limiters[key] = entry
	}
	entry.lastSeen = now

	// 閒置超過兩個視窗的用戶端已回滿令牌，直接移除
	if len(cl.limiters) > 1024 {
		for k, e := range cl.limiters {
			if now.Sub(e.lastSeen) > 2*cl.window {
				delete(cl.limiters, k)
			}
		}
	}
	return entry.limiter
}

// RateLimit 依用戶端 IP 限流的中間件
func RateLimit(requests int, window time.Duration) gin.HandlerFunc {
	clients := &clientLimiters{
		limiters: make(map[string]*clientLimiter),
		requests: requests,
		window:   window,
	}

	return func(c *gin.Context) {
		now := time.Now()
		if !clients.get(c.ClientIP(), now).allowAt(now) {
			common.LogInfo("Rate limit exceeded",
				zap.String("ip", c.ClientIP()),
				zap.String("path", c.Request.URL.Path),
			)

			c.Header("Retry-After", fmt.Sprintf("%d", int(window.Seconds())))
			_, resp := common.AsResponse(common.ErrTooManyRequests)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, resp)
			return
		}

		c.Next()
	}
}
