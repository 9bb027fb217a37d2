// Package pairing 食材、配對評分與無狀態選取的 HTTP 處理器
package pairing

import (
	"net/http"
	"strconv"
	"time"

	"flavor-pairing/internal/api/handlers"
	"flavor-pairing/internal/core/compat"
	corePairing "flavor-pairing/internal/core/pairing"
	"flavor-pairing/internal/core/restriction"
	"flavor-pairing/internal/core/selector"
	"flavor-pairing/internal/core/suggest"
	"flavor-pairing/internal/infrastructure/config"
	"flavor-pairing/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler 配對相關處理器
type Handler struct {
	provider *corePairing.Provider
	suggest  *suggest.Service
	cfg      config.SelectorConfig
	maxSize  int
	observer selector.Observer
}

// NewHandler 創建處理器；observer 可為 nil
func NewHandler(provider *corePairing.Provider, suggestSvc *suggest.Service, cfg *config.Config, observer selector.Observer) *Handler {
	return &Handler{
		provider: provider,
		suggest:  suggestSvc,
		cfg:      cfg.Selector,
		maxSize:  cfg.Selection.MaxSize,
		observer: observer,
	}
}

// ScoreRequest 評分請求
type ScoreRequest struct {
	Candidate      string   `json:"candidate" binding:"required"`
	Reference      []string `json:"reference"`
	Experimental   bool     `json:"experimental"`
	IncludePartial bool     `json:"include_partial"`
}

// ScoreResponse 評分響應
type ScoreResponse struct {
	Candidate string `json:"candidate"`
	compat.Result
	Accepted bool `json:"accepted"`
}

// SelectRequest 無狀態選取請求
type SelectRequest struct {
	Count        int                `json:"count"`
	Locked       []string           `json:"locked"`
	Mode         string             `json:"mode"`
	Restrictions restriction.Config `json:"restrictions"`
	Experimental bool               `json:"experimental"`
	Seed         uint64             `json:"seed"`
}

// SelectResponse 選取響應
type SelectResponse struct {
	Mode       selector.Mode `json:"mode"`
	Selections []string      `json:"selections"`
	Success    bool          `json:"success"`
	Duration   string        `json:"duration"`
}

// CheckRequest 限制檢查請求
type CheckRequest struct {
	Names        []string           `json:"names" binding:"required"`
	Restrictions restriction.Config `json:"restrictions"`
}

// ListIngredients GET /ingredients?q=&experimental=
func (h *Handler) ListIngredients(c *gin.Context) {
	experimental, _ := strconv.ParseBool(c.Query("experimental"))
	names := h.suggest.Search(c.Query("q"), experimental)

	c.JSON(http.StatusOK, gin.H{
		"ingredients": names,
		"count":       len(names),
	})
}

// GetIngredient GET /ingredients/:name
func (h *Handler) GetIngredient(c *gin.Context) {
	requestID := handlers.RequestID(c)
	experimental, _ := strconv.ParseBool(c.Query("experimental"))

	detail, err := h.suggest.Ingredient(c.Param("name"), experimental)
	if err != nil {
		handlers.WriteError(c, requestID, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

// Score POST /pairing/score
func (h *Handler) Score(c *gin.Context) {
	requestID := handlers.RequestID(c)

	var req ScoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handlers.WriteError(c, requestID, handlers.BindError(err))
		return
	}

	graph := h.provider.Graph(req.Experimental)
	result := compat.Score(req.Candidate, req.Reference, graph)

	c.JSON(http.StatusOK, ScoreResponse{
		Candidate: req.Candidate,
		Result:    result,
		Accepted:  compat.Accept(result, req.IncludePartial),
	})
}

// Select POST /pairing/select
func (h *Handler) Select(c *gin.Context) {
	requestID := handlers.RequestID(c)

	var req SelectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handlers.WriteError(c, requestID, handlers.BindError(err))
		return
	}

	if req.Count < 0 || req.Count+len(req.Locked) > h.maxSize {
		handlers.WriteError(c, requestID, common.NewValidationError("count out of range"))
		return
	}

	mode, err := selector.ParseMode(req.Mode)
	if req.Mode == "" {
		mode, err = selector.ParseMode(h.cfg.DefaultMode)
	}
	if err != nil {
		handlers.WriteError(c, requestID, common.ErrInvalidMode.Wrap(err))
		return
	}

	seed := req.Seed
	if seed == 0 {
		seed = h.cfg.Seed
	}

	graph := h.provider.Graph(req.Experimental)
	filter := restriction.NewFilter(req.Restrictions, h.provider.Profiles())
	opts := []selector.Option{selector.WithMaxAttempts(h.cfg.MaxAttempts)}
	if h.observer != nil {
		opts = append(opts, selector.WithObserver(h.observer))
	}
	sel := selector.New(graph, selector.NewRand(seed), opts...)

	start := time.Now()
	picks := sel.Select(req.Count, req.Locked, mode, filter.IsRestricted)
	success := len(picks) == req.Count
	if !success {
		common.LogInfo("無狀態選取失敗",
			zap.String("request_id", requestID),
			zap.String("mode", string(mode)),
			zap.Int("count", req.Count),
			zap.Int("found", len(picks)),
		)
		picks = []string{}
	}

	c.JSON(http.StatusOK, SelectResponse{
		Mode:       mode,
		Selections: picks,
		Success:    success,
		Duration:   time.Since(start).String(),
	})
}

// CheckRestrictions POST /restrictions/check
func (h *Handler) CheckRestrictions(c *gin.Context) {
	requestID := handlers.RequestID(c)

	var req CheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handlers.WriteError(c, requestID, handlers.BindError(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"restricted": h.suggest.Check(req.Names, req.Restrictions),
	})
}
