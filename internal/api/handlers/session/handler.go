// Package session 選取 session 的 HTTP 處理器
package session

import (
	"context"
	"net/http"
	"strconv"

	"flavor-pairing/internal/api/handlers"
	"flavor-pairing/internal/core/restriction"
	coreSession "flavor-pairing/internal/core/session"
	"flavor-pairing/internal/core/suggest"
	"flavor-pairing/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler session 處理器
type Handler struct {
	sessions *coreSession.Service
	suggest  *suggest.Service
}

// NewHandler 創建處理器
func NewHandler(sessions *coreSession.Service, suggestSvc *suggest.Service) *Handler {
	return &Handler{
		sessions: sessions,
		suggest:  suggestSvc,
	}
}

// CreateRequest 建立 session 請求
type CreateRequest struct {
	Target       *int               `json:"target"`
	Mode         string             `json:"mode"`
	Experimental bool               `json:"experimental"`
	Restrictions restriction.Config `json:"restrictions"`
}

// AddRequest 手動加入食材
type AddRequest struct {
	Name string `json:"name" binding:"required"`
}

// SettingsRequest 更新設定，未提供的欄位不變
type SettingsRequest struct {
	Mode         *string            `json:"mode"`
	Experimental *bool              `json:"experimental"`
	Restrictions restriction.Config `json:"restrictions"`
}

// Create POST /sessions
func (h *Handler) Create(c *gin.Context) {
	requestID := handlers.RequestID(c)

	var req CreateRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			handlers.WriteError(c, requestID, handlers.BindError(err))
			return
		}
	}

	target := -1
	if req.Target != nil {
		if *req.Target < 0 {
			handlers.WriteError(c, requestID, common.NewValidationError("target must not be negative"))
			return
		}
		target = *req.Target
	}

	view, err := h.sessions.Create(c.Request.Context(), coreSession.CreateRequest{
		Target:              target,
		Mode:                req.Mode,
		IncludeExperimental: req.Experimental,
		Restrictions:        req.Restrictions,
	})
	if err != nil {
		handlers.WriteError(c, requestID, err)
		return
	}
	c.JSON(http.StatusCreated, view)
}

// Get GET /sessions/:id
func (h *Handler) Get(c *gin.Context) {
	requestID := handlers.RequestID(c)

	view, err := h.sessions.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		handlers.WriteError(c, requestID, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// Delete DELETE /sessions/:id
func (h *Handler) Delete(c *gin.Context) {
	requestID := handlers.RequestID(c)

	if err := h.sessions.Delete(c.Request.Context(), c.Param("id")); err != nil {
		handlers.WriteError(c, requestID, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// action 無請求體的 session 操作
type action func(ctx context.Context, id string) (coreSession.View, error)

func (h *Handler) run(c *gin.Context, name string, fn action) {
	requestID := handlers.RequestID(c)
	id := c.Param("id")

	view, err := fn(c.Request.Context(), id)
	if err != nil {
		handlers.WriteError(c, requestID, err)
		return
	}

	common.LogDebug("Session 操作完成",
		zap.String("request_id", requestID),
		zap.String("session_id", id),
		zap.String("action", name),
		zap.Strings("items", view.Selection.Items),
	)
	c.JSON(http.StatusOK, view)
}

// Generate POST /sessions/:id/generate
func (h *Handler) Generate(c *gin.Context) {
	h.run(c, "generate", h.sessions.Generate)
}

// Undo POST /sessions/:id/undo
func (h *Handler) Undo(c *gin.Context) {
	h.run(c, "undo", h.sessions.Undo)
}

// Reset POST /sessions/:id/reset
func (h *Handler) Reset(c *gin.Context) {
	h.run(c, "reset", h.sessions.Reset)
}

// IncrementTarget POST /sessions/:id/target/increment
func (h *Handler) IncrementTarget(c *gin.Context) {
	h.run(c, "increment", h.sessions.IncrementTarget)
}

// DecrementTarget POST /sessions/:id/target/decrement
func (h *Handler) DecrementTarget(c *gin.Context) {
	h.run(c, "decrement", h.sessions.DecrementTarget)
}

// Add POST /sessions/:id/add
func (h *Handler) Add(c *gin.Context) {
	requestID := handlers.RequestID(c)

	var req AddRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handlers.WriteError(c, requestID, handlers.BindError(err))
		return
	}

	h.run(c, "add", func(ctx context.Context, id string) (coreSession.View, error) {
		return h.sessions.Add(ctx, id, req.Name)
	})
}

// slotIndex 解析路徑中的 :index
func slotIndex(c *gin.Context) (int, error) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		return 0, common.ErrInvalidSlot.Wrap(err)
	}
	return index, nil
}

// LockToggle POST /sessions/:id/slots/:index/lock
func (h *Handler) LockToggle(c *gin.Context) {
	index, err := slotIndex(c)
	if err != nil {
		handlers.WriteError(c, handlers.RequestID(c), err)
		return
	}
	h.run(c, "lock", func(ctx context.Context, id string) (coreSession.View, error) {
		return h.sessions.LockToggle(ctx, id, index)
	})
}

// Remove POST /sessions/:id/slots/:index/remove
func (h *Handler) Remove(c *gin.Context) {
	index, err := slotIndex(c)
	if err != nil {
		handlers.WriteError(c, handlers.RequestID(c), err)
		return
	}
	h.run(c, "remove", func(ctx context.Context, id string) (coreSession.View, error) {
		return h.sessions.Remove(ctx, id, index)
	})
}

// UpdateSettings PUT /sessions/:id/settings
func (h *Handler) UpdateSettings(c *gin.Context) {
	requestID := handlers.RequestID(c)

	var req SettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handlers.WriteError(c, requestID, handlers.BindError(err))
		return
	}

	h.run(c, "settings", func(ctx context.Context, id string) (coreSession.View, error) {
		return h.sessions.UpdateSettings(ctx, id, coreSession.SettingsPatch{
			Mode:                req.Mode,
			IncludeExperimental: req.Experimental,
			Restrictions:        req.Restrictions,
		})
	})
}

// Suggestions GET /sessions/:id/suggestions?q=&partial=&limit=
func (h *Handler) Suggestions(c *gin.Context) {
	requestID := handlers.RequestID(c)

	view, err := h.sessions.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		handlers.WriteError(c, requestID, err)
		return
	}

	partial, _ := strconv.ParseBool(c.Query("partial"))
	limit, _ := strconv.Atoi(c.Query("limit"))

	suggestions := h.suggest.Suggestions(suggest.Request{
		Selection:           view.Selection.Items,
		Query:               c.Query("q"),
		IncludePartial:      partial,
		IncludeExperimental: view.Settings.IncludeExperimental,
		Restrictions:        view.Settings.Restrictions,
		Limit:               limit,
	})

	c.JSON(http.StatusOK, gin.H{
		"session_id":  view.ID,
		"reference":   view.Selection.Items,
		"suggestions": suggestions,
	})
}
