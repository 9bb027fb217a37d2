package session

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync"
	"time"

	"flavor-pairing/internal/core/selection"
	"flavor-pairing/internal/core/selector"
	"flavor-pairing/internal/infrastructure/config"
	"flavor-pairing/internal/pkg/common"

	"go.uber.org/zap"
)

// Store session 快照的外部儲存
type Store interface {
	Save(ctx context.Context, p Persisted) error
	Load(ctx context.Context, id string) (*Persisted, error)
	Delete(ctx context.Context, id string) error
	// Touch 延長快照的保存期限；不存在時回傳 ErrNotStored
	Touch(ctx context.Context, id string) error
}

// ErrNotStored 外部儲存中沒有此 session
var ErrNotStored = errors.New("session not stored")

// Manager 記憶體內的 session 儲存，具 TTL 與 LRU 淘汰
type Manager struct {
	sessionCfg   config.SessionConfig
	selectionCfg config.SelectionConfig
	store        Store

	mu       sync.RWMutex
	sessions map[string]*Session
	stats    managerStats

	seedMu sync.Mutex
	seeds  *rand.Rand

	now  func() time.Time
	done chan struct{}
	once sync.Once
}

// managerStats 統計
type managerStats struct {
	hits      int64
	misses    int64
	restored  int64
	evictions int64
	errors    int64
}

// NewManager 創建 session 管理器；store 可為 nil
func NewManager(cfg *config.Config, store Store) *Manager {
	m := &Manager{
		sessionCfg:   cfg.Session,
		selectionCfg: cfg.Selection,
		store:        store,
		sessions:     make(map[string]*Session),
		seeds:        selector.NewRand(cfg.Selector.Seed),
		now:          time.Now,
		done:         make(chan struct{}),
	}

	// 啟動清理過期 session 的協程
	go m.startCleanup()

	common.LogInfo("Session 管理員已初始化",
		zap.Int("最大容量", cfg.Session.MaxSessions),
		zap.Duration("存活時間", cfg.Session.TTL),
		zap.Duration("清理間隔", cfg.Session.CleanupInterval),
		zap.Bool("persistent", store != nil),
	)

	return m
}

func (m *Manager) newRand() selector.Rand {
	m.seedMu.Lock()
	defer m.seedMu.Unlock()
	seed := m.seeds.Uint64()
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

func (m *Manager) selectionOptions(target int) selection.Options {
	return selection.Options{
		MaxSize:      m.selectionCfg.MaxSize,
		Target:       target,
		HistoryLimit: m.selectionCfg.HistoryLimit,
	}
}

// Create 建立新 session；target < 0 時使用預設目標數
func (m *Manager) Create(ctx context.Context, settings Settings, target int) (View, error) {
	if target < 0 {
		target = m.selectionCfg.DefaultTarget
	}

	now := m.now()
	s := &Session{
		ID:         common.GenerateUUID(),
		state:      selection.New(m.selectionOptions(target)),
		rng:        m.newRand(),
		createdAt:  now,
		lastAccess: now,
		expiresAt:  now.Add(m.sessionCfg.TTL),
	}
	s.SetSettings(settings)

	if err := m.insert(s); err != nil {
		return View{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	m.persist(ctx, s)

	common.LogInfo("Session 已建立",
		zap.String("session_id", s.ID),
		zap.String("mode", string(settings.Mode)),
		zap.Int("target", s.state.Target()),
	)
	return m.viewOf(s), nil
}

// insert 加入 session，容量不足時先清理過期項目再做 LRU 淘汰
func (m *Manager) insert(s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.sessions) >= m.sessionCfg.MaxSessions {
		evicted := m.cleanup()
		common.LogInfo("Session 清理執行",
			zap.Int("清理數量", evicted),
		)

		if len(m.sessions) >= m.sessionCfg.MaxSessions {
			m.evictLRU()
		}

		if len(m.sessions) >= m.sessionCfg.MaxSessions {
			m.stats.errors++
			common.LogWarn("Session 儲存已滿",
				zap.Int("目前容量", len(m.sessions)),
			)
			return common.ErrSessionStoreFull
		}
	}

	m.sessions[s.ID] = s
	return nil
}

// lookup 取得 session，記憶體沒有時嘗試從外部儲存還原
func (m *Manager) lookup(ctx context.Context, id string) (*Session, error) {
	now := m.now()

	m.mu.Lock()
	s, exists := m.sessions[id]
	if exists && now.After(s.expiresAt) {
		delete(m.sessions, id)
		m.stats.evictions++
		exists = false
		common.LogInfo("Session 已過期", zap.String("session_id", id))
	}
	if exists {
		s.lastAccess = now
		s.accessCount++
		s.expiresAt = now.Add(m.sessionCfg.TTL)
		m.stats.hits++
		m.mu.Unlock()
		common.LogSessionHit("memory", id)
		m.touch(ctx, s)
		return s, nil
	}
	m.stats.misses++
	m.mu.Unlock()
	common.LogSessionMiss("memory", id)

	s, err := m.restore(ctx, id)
	if err != nil {
		return nil, err
	}
	m.touch(ctx, s)
	return s, nil
}

// touch 讓外部快照的期限跟著記憶體內的期限延長；快照遺失時重新寫入
func (m *Manager) touch(ctx context.Context, s *Session) {
	if m.store == nil {
		return
	}
	err := m.store.Touch(ctx, s.ID)
	if err == nil {
		return
	}
	if errors.Is(err, ErrNotStored) {
		s.mu.Lock()
		m.persist(ctx, s)
		s.mu.Unlock()
		return
	}

	m.mu.Lock()
	m.stats.errors++
	m.mu.Unlock()
	common.LogWarn("Failed to refresh session ttl",
		zap.Error(err),
		zap.String("session_id", s.ID),
	)
}

func (m *Manager) restore(ctx context.Context, id string) (*Session, error) {
	if m.store == nil {
		return nil, common.ErrSessionNotFound
	}

	p, err := m.store.Load(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotStored) {
			common.LogSessionMiss("redis", id)
			return nil, common.ErrSessionNotFound
		}
		common.LogError("Failed to load session",
			zap.Error(err),
			zap.String("session_id", id),
		)
		return nil, storeError(ctx, err)
	}
	common.LogSessionHit("redis", id)

	now := m.now()
	s := &Session{
		ID:         p.ID,
		state:      selection.FromRecord(p.Record, m.selectionOptions(m.selectionCfg.DefaultTarget)),
		rng:        m.newRand(),
		createdAt:  p.CreatedAt,
		lastAccess: now,
		expiresAt:  now.Add(m.sessionCfg.TTL),
	}
	s.SetSettings(p.Settings)

	// 併發還原時以先放入者為準
	m.mu.Lock()
	if existing, ok := m.sessions[id]; ok {
		m.mu.Unlock()
		return existing, nil
	}
	m.mu.Unlock()

	if err := m.insert(s); err != nil {
		return nil, err
	}
	m.mu.Lock()
	m.stats.restored++
	m.mu.Unlock()
	return s, nil
}

// storeError 請求期限已過時回傳 504，其餘儲存錯誤回傳 503
func storeError(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return common.ErrGatewayTimeout.Wrap(err)
	}
	return common.ErrServiceUnavailable.Wrap(err)
}

// Get 取得 session 內容
func (m *Manager) Get(ctx context.Context, id string) (View, error) {
	s, err := m.lookup(ctx, id)
	if err != nil {
		return View{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return m.viewOf(s), nil
}

// viewOf 呼叫端須持有 s.mu；到期時間由 m.mu 保護
func (m *Manager) viewOf(s *Session) View {
	v := s.view()
	m.mu.RLock()
	v.ExpiresAt = s.expiresAt
	m.mu.RUnlock()
	return v
}

// Update 在 session 鎖內執行 fn，成功後寫入外部儲存
func (m *Manager) Update(ctx context.Context, id string, fn func(s *Session) error) (View, error) {
	s, err := m.lookup(ctx, id)
	if err != nil {
		return View{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := fn(s); err != nil {
		return m.viewOf(s), err
	}
	m.persist(ctx, s)
	return m.viewOf(s), nil
}

// persist 呼叫端須持有 s.mu；寫入失敗只記錄，不影響記憶體狀態
func (m *Manager) persist(ctx context.Context, s *Session) {
	if m.store == nil {
		return
	}
	if err := m.store.Save(ctx, s.persisted()); err != nil {
		m.mu.Lock()
		m.stats.errors++
		m.mu.Unlock()
		common.LogError("Failed to persist session",
			zap.Error(err),
			zap.String("session_id", s.ID),
		)
	}
}

// Delete 刪除 session
func (m *Manager) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	_, exists := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if m.store != nil {
		if err := m.store.Delete(ctx, id); err != nil {
			if !errors.Is(err, ErrNotStored) {
				return storeError(ctx, err)
			}
		} else {
			exists = true
		}
	}

	if !exists {
		return common.ErrSessionNotFound
	}

	common.LogInfo("Session 已刪除", zap.String("session_id", id))
	return nil
}

// startCleanup 啟動清理過期 session 的協程
func (m *Manager) startCleanup() {
	ticker := time.NewTicker(m.sessionCfg.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.mu.Lock()
			m.cleanup()
			m.mu.Unlock()
		case <-m.done:
			return
		}
	}
}

// cleanup 清理過期的 session，呼叫端須持有 m.mu
func (m *Manager) cleanup() int {
	now := m.now()
	count := 0

	for id, s := range m.sessions {
		if now.After(s.expiresAt) {
			delete(m.sessions, id)
			count++
			m.stats.evictions++
		}
	}

	if count > 0 {
		common.LogInfo("Cleaned up expired sessions",
			zap.Int("count", count),
			zap.Int64("total_evictions", m.stats.evictions),
			zap.Int("remaining_size", len(m.sessions)),
		)
	}

	return count
}

// evictLRU 淘汰最久未使用的 session，呼叫端須持有 m.mu
func (m *Manager) evictLRU() {
	var oldestID string
	var oldestAccess time.Time

	for id, s := range m.sessions {
		if oldestID == "" || s.lastAccess.Before(oldestAccess) {
			oldestID = id
			oldestAccess = s.lastAccess
		}
	}

	if oldestID != "" {
		delete(m.sessions, oldestID)
		m.stats.evictions++
		common.LogInfo("Session 已淘汰(LRU)",
			zap.String("session_id", oldestID),
		)
	}
}

// Len 記憶體中的 session 數
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// GetStats 獲取統計信息
func (m *Manager) GetStats() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	hitRatio := 0.0
	if total := m.stats.hits + m.stats.misses; total > 0 {
		hitRatio = float64(m.stats.hits) / float64(total)
	}

	return map[string]interface{}{
		"size":      len(m.sessions),
		"max_size":  m.sessionCfg.MaxSessions,
		"hits":      m.stats.hits,
		"misses":    m.stats.misses,
		"restored":  m.stats.restored,
		"evictions": m.stats.evictions,
		"errors":    m.stats.errors,
		"hit_ratio": hitRatio,
	}
}

// Close 停止清理協程並清空記憶體
func (m *Manager) Close() error {
	m.once.Do(func() { close(m.done) })

	m.mu.Lock()
	defer m.mu.Unlock()

	m.sessions = make(map[string]*Session)
	common.LogInfo("Session 管理員已關閉",
		zap.Int64("命中次數", m.stats.hits),
		zap.Int64("未命中次數", m.stats.misses),
		zap.Int64("淘汰次數", m.stats.evictions),
	)
	return nil
}
