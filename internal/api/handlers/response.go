// Package handlers HTTP 處理器共用的請求 ID 與錯誤響應
package handlers

import (
	"errors"
	"net/http"

	"flavor-pairing/internal/pkg/common"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RequestID 取得請求 ID，沒有時產生一個並寫回響應標頭
func RequestID(c *gin.Context) string {
	if id := requestid.Get(c); id != "" {
		return id
	}
	if id := c.GetHeader("X-Request-ID"); id != "" {
		return id
	}
	id := common.GenerateUUID()
	c.Header("X-Request-ID", id)
	return id
}

// WriteError 記錄錯誤並以 ErrorResponse 回應
func WriteError(c *gin.Context, requestID string, err error) {
	status, resp := common.AsResponse(err)

	fields := []zap.Field{
		zap.Error(err),
		zap.String("request_id", requestID),
		zap.String("path", c.Request.URL.Path),
		zap.Int("status", status),
	}
	if status >= http.StatusInternalServerError {
		common.LogError("Request failed", fields...)
	} else {
		common.LogWarn("Request rejected", fields...)
	}

	_ = c.Error(err)
	c.AbortWithStatusJSON(status, resp)
}

// BindError 將 JSON 解析錯誤轉成 ErrInvalidRequest
func BindError(err error) error {
	var ce *common.CustomError
	if errors.As(err, &ce) {
		return err
	}
	return common.ErrInvalidRequest.Wrap(err)
}
