// Package selector 在配對限制下隨機挑選食材
package selector

import (
	"math/rand/v2"
	"time"

	"flavor-pairing/internal/pkg/common"

	"github.com/emirpasic/gods/stacks/arraystack"
	"go.uber.org/zap"
)

// DefaultMaxAttempts 預設的外層嘗試次數上限
const DefaultMaxAttempts = 200

// Graph 選取所需的配對圖操作；Neighbors 與 AllIngredients 必須回傳副本
type Graph interface {
	Has(a, b string) bool
	Neighbors(a string) []string
	Degree(a string) int
	AllIngredients() []string
}

// Rand 可注入的隨機來源，*rand.Rand 即符合
type Rand interface {
	IntN(n int) int
	Shuffle(n int, swap func(i, j int))
}

// RestrictFunc 回傳 true 表示食材被排除；nil 表示不排除
type RestrictFunc func(name string) bool

// NewRand 以 seed 建立隨機來源，seed 為 0 時使用目前時間
func NewRand(seed uint64) *rand.Rand {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return rand.New(rand.NewPCG(seed, seed))
}

// DefaultBacktrackLimit 完美模式單輪嘗試的回溯上限
const DefaultBacktrackLimit = 1000

// Observer 接收每次選取的結果，可跨 goroutine 共用
type Observer interface {
	ObserveSelection(mode string, success bool, duration time.Duration)
}

// Selector 不可跨 goroutine 共用（隨機來源非併發安全）
type Selector struct {
	graph          Graph
	rng            Rand
	maxAttempts    int
	backtrackLimit int
	observer       Observer
}

// Option Selector 選項
type Option func(*Selector)

// WithMaxAttempts 設定外層嘗試次數
func WithMaxAttempts(n int) Option {
	return func(s *Selector) {
		if n > 0 {
			s.maxAttempts = n
		}
	}
}

// WithBacktrackLimit 設定完美模式單輪的回溯上限
func WithBacktrackLimit(n int) Option {
	return func(s *Selector) {
		if n >= 0 {
			s.backtrackLimit = n
		}
	}
}

// WithObserver 每次 Select 結束後回報結果
func WithObserver(o Observer) Option {
	return func(s *Selector) {
		s.observer = o
	}
}

// New 創建 Selector
func New(graph Graph, rng Rand, opts ...Option) *Selector {
	s := &Selector{
		graph:          graph,
		rng:            rng,
		maxAttempts:    DefaultMaxAttempts,
		backtrackLimit: DefaultBacktrackLimit,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Select 挑出 count 個新食材；失敗回傳空切片
func (s *Selector) Select(count int, locked []string, mode Mode, isRestricted RestrictFunc) []string {
	if count <= 0 {
		return []string{}
	}
	if isRestricted == nil {
		isRestricted = func(string) bool { return false }
	}

	start := time.Now()
	var result []string
	switch mode {
	case ModeRandom:
		result = s.selectRandom(count, locked, isRestricted)
	case ModeMixed:
		result = s.selectMixed(count, locked, isRestricted)
	case ModePerfect:
		result = s.selectPerfect(count, locked, isRestricted)
	default:
		common.LogWarn("未知的選取模式", zap.String("mode", string(mode)))
	}
	if result == nil {
		result = []string{}
	}

	elapsed := time.Since(start)
	common.LogSelection(string(mode), count, len(locked), len(result), elapsed)
	if s.observer != nil {
		s.observer.ObserveSelection(string(mode), len(result) == count, elapsed)
	}
	return result
}

// eligible 全部食材扣除鎖定與被排除者，保持排序
func (s *Selector) eligible(exclude map[string]struct{}, isRestricted RestrictFunc) []string {
	all := s.graph.AllIngredients()
	pool := all[:0]
	for _, name := range all {
		if _, skip := exclude[name]; skip {
			continue
		}
		if isRestricted(name) {
			continue
		}
		pool = append(pool, name)
	}
	return pool
}

func (s *Selector) selectRandom(count int, locked []string, isRestricted RestrictFunc) []string {
	pool := s.eligible(toSet(locked), isRestricted)

	picked := make([]string, 0, count)
	for len(picked) < count && len(pool) > 0 {
		i := s.rng.IntN(len(pool))
		picked = append(picked, pool[i])
		pool[i] = pool[len(pool)-1]
		pool = pool[:len(pool)-1]
	}
	return picked
}

func (s *Selector) selectMixed(count int, locked []string, isRestricted RestrictFunc) []string {
	pool := s.eligible(toSet(locked), isRestricted)
	if len(pool) < count {
		return nil
	}
	shuffled := make([]string, len(pool))

	for attempt := 0; attempt < s.maxAttempts; attempt++ {
		copy(shuffled, pool)
		s.rng.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})

		combined := append(make([]string, 0, len(locked)+count), locked...)
		accepted := make([]string, 0, count)
		for _, candidate := range shuffled {
			if len(accepted) == count {
				break
			}
			if len(combined) == 0 || s.pairsWithAny(candidate, combined) {
				accepted = append(accepted, candidate)
				combined = append(combined, candidate)
			}
		}

		if len(accepted) == count && s.everyMemberPaired(combined) {
			return accepted
		}
	}
	return nil
}

func (s *Selector) pairsWithAny(candidate string, set []string) bool {
	for _, member := range set {
		if s.graph.Has(member, candidate) {
			return true
		}
	}
	return false
}

// everyMemberPaired 每個成員至少與集合中另一個成員配對
func (s *Selector) everyMemberPaired(set []string) bool {
	for i, a := range set {
		paired := false
		for j, b := range set {
			if i != j && s.graph.Has(a, b) {
				paired = true
				break
			}
		}
		if !paired {
			return false
		}
	}
	return true
}

// frame 回溯堆疊的一層：該層選中的食材與該層已嘗試過的候選
type frame struct {
	pick  string
	tried map[string]struct{}
}

func (s *Selector) selectPerfect(count int, locked []string, isRestricted RestrictFunc) []string {
	exclude := toSet(locked)

	for attempt := 0; attempt < s.maxAttempts; attempt++ {
		stack := arraystack.New()
		selections := make([]string, 0, count)
		tried := make(map[string]struct{})
		backtracks := 0

		for len(selections) < count && backtracks <= s.backtrackLimit {
			pool := s.perfectPool(selections, locked, exclude, tried, isRestricted)

			if len(pool) > 0 {
				pick := pool[s.rng.IntN(len(pool))]
				tried[pick] = struct{}{}
				stack.Push(frame{pick: pick, tried: tried})
				selections = append(selections, pick)
				exclude[pick] = struct{}{}
				tried = make(map[string]struct{})
				continue
			}

			if stack.Empty() {
				// 第一層的候選全部試過，重試也不會有解
				common.LogDebug("完美模式搜尋空間已窮盡",
					zap.Int("attempt", attempt+1),
					zap.Int("count", count),
					zap.Int("locked", len(locked)),
				)
				return nil
			}

			top, _ := stack.Pop()
			f := top.(frame)
			selections = selections[:len(selections)-1]
			delete(exclude, f.pick)
			tried = f.tried
			backtracks++
		}

		if len(selections) == count {
			return selections
		}

		// 超過回溯上限，清掉本輪選取後重新開始
		for _, pick := range selections {
			delete(exclude, pick)
		}
	}
	return nil
}

// perfectPool 與 selections ∪ locked 全部配對、且未排除未嘗試過的候選
func (s *Selector) perfectPool(selections, locked []string, exclude, tried map[string]struct{}, isRestricted RestrictFunc) []string {
	refs := make([]string, 0, len(selections)+len(locked))
	refs = append(refs, locked...)
	refs = append(refs, selections...)

	var base []string
	if len(refs) == 0 {
		base = s.graph.AllIngredients()
	} else {
		anchor := refs[0]
		for _, r := range refs[1:] {
			if s.graph.Degree(r) < s.graph.Degree(anchor) {
				anchor = r
			}
		}
		base = s.graph.Neighbors(anchor)
	}

	pool := base[:0]
	for _, candidate := range base {
		if _, skip := exclude[candidate]; skip {
			continue
		}
		if _, skip := tried[candidate]; skip {
			continue
		}
		if !s.pairsWithAll(candidate, refs) {
			continue
		}
		if isRestricted(candidate) {
			continue
		}
		pool = append(pool, candidate)
	}
	return pool
}

func (s *Selector) pairsWithAll(candidate string, refs []string) bool {
	for _, r := range refs {
		if !s.graph.Has(r, candidate) {
			return false
		}
	}
	return true
}

func toSet(names []string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return set
}
