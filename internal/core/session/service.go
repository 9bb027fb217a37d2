package session

import (
	"context"
	"fmt"

	"flavor-pairing/internal/core/pairing"
	"flavor-pairing/internal/core/restriction"
	"flavor-pairing/internal/core/selection"
	"flavor-pairing/internal/core/selector"
	"flavor-pairing/internal/infrastructure/config"
	"flavor-pairing/internal/pkg/common"

	"go.uber.org/zap"
)

// Service session 上的選取操作
type Service struct {
	manager     *Manager
	provider    *pairing.Provider
	maxAttempts int
	defaultMode selector.Mode
	observer    selector.Observer
}

// NewService 創建 session 服務
func NewService(manager *Manager, provider *pairing.Provider, cfg config.SelectorConfig) *Service {
	mode, err := selector.ParseMode(cfg.DefaultMode)
	if err != nil {
		mode = selector.ModePerfect
	}
	return &Service{
		manager:     manager,
		provider:    provider,
		maxAttempts: cfg.MaxAttempts,
		defaultMode: mode,
	}
}

// SetObserver 設定選取結果的回報對象，需在開始服務前呼叫
func (svc *Service) SetObserver(o selector.Observer) {
	svc.observer = o
}

// CreateRequest 建立 session 參數；Target < 0 使用預設
type CreateRequest struct {
	Target              int
	Mode                string
	IncludeExperimental bool
	Restrictions        restriction.Config
}

// SettingsPatch 只更新非 nil 欄位
type SettingsPatch struct {
	Mode                *string
	IncludeExperimental *bool
	Restrictions        restriction.Config
}

// Create 建立 session
func (svc *Service) Create(ctx context.Context, req CreateRequest) (View, error) {
	mode := svc.defaultMode
	if req.Mode != "" {
		m, err := selector.ParseMode(req.Mode)
		if err != nil {
			return View{}, common.ErrInvalidMode.Wrap(err)
		}
		mode = m
	}
	if req.Target > svc.manager.selectionCfg.MaxSize {
		return View{}, common.ErrInvalidSlot.Wrap(
			fmt.Errorf("target %d exceeds max size %d", req.Target, svc.manager.selectionCfg.MaxSize))
	}

	return svc.manager.Create(ctx, Settings{
		Mode:                mode,
		IncludeExperimental: req.IncludeExperimental,
		Restrictions:        req.Restrictions,
	}, req.Target)
}

// Get 取得 session
func (svc *Service) Get(ctx context.Context, id string) (View, error) {
	return svc.manager.Get(ctx, id)
}

// Delete 刪除 session
func (svc *Service) Delete(ctx context.Context, id string) error {
	return svc.manager.Delete(ctx, id)
}

// Graph session 設定對應的配對圖
func (svc *Service) Graph(settings Settings) *pairing.Graph {
	return svc.provider.Graph(settings.IncludeExperimental)
}

// Filter session 設定對應的限制判斷器
func (svc *Service) Filter(settings Settings) *restriction.Filter {
	return restriction.NewFilter(settings.Restrictions, svc.provider.Profiles())
}

// picker 以 session 的圖、限制與隨機來源建立 Picker；呼叫端須持有 s.mu
func (svc *Service) picker(s *Session, mode selector.Mode) selection.Picker {
	settings := s.Settings()
	opts := []selector.Option{selector.WithMaxAttempts(svc.maxAttempts)}
	if svc.observer != nil {
		opts = append(opts, selector.WithObserver(svc.observer))
	}
	sel := selector.New(svc.Graph(settings), s.Rand(), opts...)
	filter := svc.Filter(settings)

	return func(count int, locked []string) []string {
		return sel.Select(count, locked, mode, filter.IsRestricted)
	}
}

// Generate 重新挑選所有未鎖定的格子
func (svc *Service) Generate(ctx context.Context, id string) (View, error) {
	return svc.manager.Update(ctx, id, func(s *Session) error {
		mode := s.Settings().Mode
		if err := s.State().Generate(svc.picker(s, mode)); err != nil {
			common.LogWarn("產生組合失敗",
				zap.String("session_id", id),
				zap.String("mode", string(mode)),
				zap.Int("target", s.State().Target()),
				zap.Int("locked", len(s.State().LockedIndices())),
			)
			return err
		}
		return nil
	})
}

// Undo 復原上一步；沒有歷史時不做事
func (svc *Service) Undo(ctx context.Context, id string) (View, error) {
	return svc.manager.Update(ctx, id, func(s *Session) error {
		s.State().Undo()
		return nil
	})
}

// Reset 清空選取
func (svc *Service) Reset(ctx context.Context, id string) (View, error) {
	return svc.manager.Update(ctx, id, func(s *Session) error {
		s.State().Reset()
		return nil
	})
}

// Add 手動加入食材，名稱不分大小寫
func (svc *Service) Add(ctx context.Context, id, name string) (View, error) {
	return svc.manager.Update(ctx, id, func(s *Session) error {
		canonical, ok := svc.Graph(s.Settings()).Resolve(name)
		if !ok {
			return common.ErrIngredientUnknown.Wrap(fmt.Errorf("%q", name))
		}
		return s.State().Add(canonical)
	})
}

// LockToggle 切換鎖定
func (svc *Service) LockToggle(ctx context.Context, id string, index int) (View, error) {
	return svc.manager.Update(ctx, id, func(s *Session) error {
		return s.State().LockToggle(index)
	})
}

// Remove 移除一格
func (svc *Service) Remove(ctx context.Context, id string, index int) (View, error) {
	return svc.manager.Update(ctx, id, func(s *Session) error {
		return s.State().Remove(index)
	})
}

// IncrementTarget 增加一格，優先找與全部已選食材相容的食材
func (svc *Service) IncrementTarget(ctx context.Context, id string) (View, error) {
	return svc.manager.Update(ctx, id, func(s *Session) error {
		s.State().IncrementTarget(svc.picker(s, selector.ModePerfect))
		return nil
	})
}

// DecrementTarget 減少一格
func (svc *Service) DecrementTarget(ctx context.Context, id string) (View, error) {
	return svc.manager.Update(ctx, id, func(s *Session) error {
		s.State().DecrementTarget()
		return nil
	})
}

// UpdateSettings 更新模式、實驗性配對與限制設定
func (svc *Service) UpdateSettings(ctx context.Context, id string, patch SettingsPatch) (View, error) {
	var mode selector.Mode
	if patch.Mode != nil {
		m, err := selector.ParseMode(*patch.Mode)
		if err != nil {
			return View{}, common.ErrInvalidMode.Wrap(err)
		}
		mode = m
	}

	return svc.manager.Update(ctx, id, func(s *Session) error {
		settings := s.Settings()
		if patch.Mode != nil {
			settings.Mode = mode
		}
		if patch.IncludeExperimental != nil {
			settings.IncludeExperimental = *patch.IncludeExperimental
		}
		if patch.Restrictions != nil {
			settings.Restrictions = patch.Restrictions
		}
		s.SetSettings(settings)
		return nil
	})
}

// Stats session 統計
func (svc *Service) Stats() map[string]interface{} {
	return svc.manager.GetStats()
}
