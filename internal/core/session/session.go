// Package session 管理每位使用者的選取狀態
package session

import (
	"sync"
	"time"

	"flavor-pairing/internal/core/restriction"
	"flavor-pairing/internal/core/selection"
	"flavor-pairing/internal/core/selector"
)

// Settings session 的選取偏好
type Settings struct {
	Mode                selector.Mode      `json:"mode"`
	IncludeExperimental bool               `json:"experimental"`
	Restrictions        restriction.Config `json:"restrictions"`
}

// Session 單一使用者的選取狀態；操作前須持有 mu，存取時間欄位由 Manager.mu 保護
type Session struct {
	ID string

	mu       sync.Mutex
	settings Settings
	state    *selection.State
	rng      selector.Rand

	createdAt   time.Time
	lastAccess  time.Time
	expiresAt   time.Time
	accessCount int
}

// Settings 目前設定
func (s *Session) Settings() Settings {
	return s.settings
}

// SetSettings 更新設定，限制設定會複製一份
func (s *Session) SetSettings(settings Settings) {
	cfg := make(restriction.Config, len(settings.Restrictions))
	for k, v := range settings.Restrictions {
		cfg[k] = v
	}
	settings.Restrictions = cfg
	s.settings = settings
}

// State 選取狀態
func (s *Session) State() *selection.State {
	return s.state
}

// Rand session 專屬的隨機來源
func (s *Session) Rand() selector.Rand {
	return s.rng
}

// View 對外輸出的 session 內容
type View struct {
	ID        string             `json:"id"`
	Settings  Settings           `json:"settings"`
	Selection selection.Snapshot `json:"selection"`
	MaxSize   int                `json:"max_size"`
	CanUndo   bool               `json:"can_undo"`
	CreatedAt time.Time          `json:"created_at"`
	ExpiresAt time.Time          `json:"expires_at"`
}

func (s *Session) view() View {
	return View{
		ID:        s.ID,
		Settings:  s.settings,
		Selection: s.state.Snapshot(),
		MaxSize:   s.state.MaxSize(),
		CanUndo:   s.state.CanUndo(),
		CreatedAt: s.createdAt,
	}
}

// Persisted 持久化格式
type Persisted struct {
	ID        string           `json:"id"`
	Settings  Settings         `json:"settings"`
	Record    selection.Record `json:"record"`
	CreatedAt time.Time        `json:"created_at"`
}

func (s *Session) persisted() Persisted {
	return Persisted{
		ID:        s.ID,
		Settings:  s.settings,
		Record:    s.state.Export(),
		CreatedAt: s.createdAt,
	}
}
