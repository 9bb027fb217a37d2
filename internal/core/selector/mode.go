package selector

import (
	"fmt"
	"strings"
)

// Mode 相容模式
type Mode string

const (
	// ModePerfect 每個食材都與其他所有食材（含鎖定）配對
	ModePerfect Mode = "perfect"
	// ModeMixed 每個食材至少與一個既有食材配對
	ModeMixed Mode = "mixed"
	// ModeRandom 不限制配對
	ModeRandom Mode = "random"
)

// ParseMode 解析模式字串，不分大小寫
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModePerfect, ModeMixed, ModeRandom:
		return m, nil
	default:
		return "", fmt.Errorf("unknown mode %q", s)
	}
}

func (m Mode) String() string {
	return string(m)
}
