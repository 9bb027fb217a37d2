package common

import (
	"strings"

	"github.com/google/uuid"
)

// GenerateUUID 生成 UUID
func GenerateUUID() string {
	return uuid.New().String()
}

// NormalizeName 食材名稱比對用的標準形式（去空白、小寫）
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
