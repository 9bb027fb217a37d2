// Package selection 目前選取的食材、鎖定格與目標數量，以及復原歷史
package selection

import (
	"fmt"
	"sort"

	"flavor-pairing/internal/pkg/common"
)

// 預設值
const (
	DefaultMaxSize      = 5
	DefaultTarget       = 3
	DefaultHistoryLimit = 50
)

// Picker 在 locked 之外挑出 count 個新食材，失敗時回傳較短或空的切片
type Picker func(count int, locked []string) []string

// Options State 參數
type Options struct {
	MaxSize      int
	Target       int
	HistoryLimit int
}

func (o Options) withDefaults() Options {
	if o.MaxSize <= 0 {
		o.MaxSize = DefaultMaxSize
	}
	if o.Target < 0 {
		o.Target = 0
	}
	if o.Target > o.MaxSize {
		o.Target = o.MaxSize
	}
	if o.HistoryLimit <= 0 {
		o.HistoryLimit = DefaultHistoryLimit
	}
	return o
}

// Snapshot 某一時刻的選取狀態
type Snapshot struct {
	Items  []string `json:"items"`
	Locked []int    `json:"locked"`
	Target int      `json:"target"`
}

// State 選取狀態，只能透過方法修改；非併發安全
type State struct {
	opts    Options
	items   []string
	locked  map[int]struct{}
	target  int
	history []Snapshot
}

// New 建立空的選取狀態
func New(opts Options) *State {
	opts = opts.withDefaults()
	return &State{
		opts:   opts,
		locked: make(map[int]struct{}),
		target: opts.Target,
	}
}

// Items 目前食材（副本）
func (s *State) Items() []string {
	out := make([]string, len(s.items))
	copy(out, s.items)
	return out
}

// Len 目前食材數
func (s *State) Len() int { return len(s.items) }

// Target 目標數量
func (s *State) Target() int { return s.target }

// MaxSize 最多可選數量
func (s *State) MaxSize() int { return s.opts.MaxSize }

// IsLocked 檢查 index 是否鎖定
func (s *State) IsLocked(index int) bool {
	_, ok := s.locked[index]
	return ok
}

// LockedIndices 已鎖定的 index，遞增排序
func (s *State) LockedIndices() []int {
	out := make([]int, 0, len(s.locked))
	for i := range s.locked {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}

// LockedItems 已鎖定的食材，依 index 順序
func (s *State) LockedItems() []string {
	idx := s.LockedIndices()
	out := make([]string, 0, len(idx))
	for _, i := range idx {
		out = append(out, s.items[i])
	}
	return out
}

// Contains 食材是否已在選取中
func (s *State) Contains(name string) bool {
	for _, item := range s.items {
		if item == name {
			return true
		}
	}
	return false
}

// CanUndo 是否有可復原的歷史
func (s *State) CanUndo() bool { return len(s.history) > 0 }

// HistoryLen 歷史筆數
func (s *State) HistoryLen() int { return len(s.history) }

// Snapshot 目前狀態的深拷貝
func (s *State) Snapshot() Snapshot {
	return Snapshot{
		Items:  s.Items(),
		Locked: s.LockedIndices(),
		Target: s.target,
	}
}

// saveToHistory 每個修改操作在修改前呼叫
func (s *State) saveToHistory() {
	s.history = append(s.history, s.Snapshot())
	if over := len(s.history) - s.opts.HistoryLimit; over > 0 {
		s.history = append(s.history[:0:0], s.history[over:]...)
	}
}

// restore 整體替換目前狀態，不寫入歷史
func (s *State) restore(snap Snapshot) {
	s.items = append([]string(nil), snap.Items...)
	s.locked = make(map[int]struct{}, len(snap.Locked))
	for _, i := range snap.Locked {
		if i >= 0 && i < len(s.items) {
			s.locked[i] = struct{}{}
		}
	}
	s.target = snap.Target
	s.normalize()
}

// Undo 回到上一個狀態；沒有歷史時不做事並回傳 false
func (s *State) Undo() bool {
	n := len(s.history)
	if n == 0 {
		return false
	}
	prev := s.history[n-1]
	s.history = s.history[:n-1]
	s.restore(prev)
	return true
}

// normalize 維持 len(items) <= target <= MaxSize 且 target >= 鎖定數
func (s *State) normalize() {
	if s.target < len(s.items) {
		s.target = len(s.items)
	}
	if s.target < len(s.locked) {
		s.target = len(s.locked)
	}
	if s.target > s.opts.MaxSize {
		s.target = s.opts.MaxSize
	}
}

func (s *State) checkIndex(index int) error {
	if index < 0 || index >= len(s.items) {
		return common.ErrInvalidSlot.Wrap(fmt.Errorf("index %d out of range [0,%d)", index, len(s.items)))
	}
	return nil
}

// LockToggle 切換 index 的鎖定狀態
func (s *State) LockToggle(index int) error {
	if err := s.checkIndex(index); err != nil {
		return err
	}
	s.saveToHistory()
	if s.IsLocked(index) {
		delete(s.locked, index)
	} else {
		s.locked[index] = struct{}{}
	}
	s.normalize()
	return nil
}

// Remove 移除 index 的食材，大於 index 的鎖定往前移一格，目標數縮到新長度
func (s *State) Remove(index int) error {
	if err := s.checkIndex(index); err != nil {
		return err
	}
	s.saveToHistory()
	s.removeAt(index)
	if s.target > len(s.items) {
		s.target = len(s.items)
	}
	s.normalize()
	return nil
}

func (s *State) removeAt(index int) {
	s.items = append(s.items[:index], s.items[index+1:]...)

	shifted := make(map[int]struct{}, len(s.locked))
	for i := range s.locked {
		switch {
		case i < index:
			shifted[i] = struct{}{}
		case i > index:
			shifted[i-1] = struct{}{}
		}
	}
	s.locked = shifted
}

// IncrementTarget 找一個與全部已選食材都配對的新食材：
// 找到就加入（原本已達目標數時才提高目標數），找不到就只提高目標數留下空格。
// pick 應使用完美模式。回傳狀態是否改變。
func (s *State) IncrementTarget(pick Picker) bool {
	if len(s.items) >= s.opts.MaxSize {
		return false
	}

	if found := pick(1, s.Items()); len(found) == 1 && !s.Contains(found[0]) {
		s.saveToHistory()
		wasFull := len(s.items) >= s.target
		s.items = append(s.items, found[0])
		if wasFull {
			s.target++
		}
		s.normalize()
		return true
	}

	if s.target >= s.opts.MaxSize {
		return false
	}
	s.saveToHistory()
	s.target++
	return true
}

// DecrementTarget 先消耗空格；沒有空格時移除最後一個未鎖定的食材。
// 全部鎖定時不做事。回傳狀態是否改變。
func (s *State) DecrementTarget() bool {
	if s.target > len(s.items) {
		s.saveToHistory()
		s.target--
		s.normalize()
		return true
	}

	for i := len(s.items) - 1; i >= 0; i-- {
		if s.IsLocked(i) {
			continue
		}
		s.saveToHistory()
		s.removeAt(i)
		s.target = len(s.items)
		s.normalize()
		return true
	}
	return false
}

// Generate 保留鎖定格，其餘 0..target-1 的位置重新挑選。
// pick 結果不足時回傳 ErrGenerationFailed，狀態不變。
func (s *State) Generate(pick Picker) error {
	lockedItems := s.LockedItems()
	need := s.target - len(lockedItems)
	if need <= 0 {
		return nil
	}

	picks := pick(need, lockedItems)
	if len(picks) < need {
		return common.ErrGenerationFailed.Wrap(
			fmt.Errorf("wanted %d ingredients, found %d", need, len(picks)))
	}

	s.saveToHistory()
	items := make([]string, s.target)
	next := 0
	for i := range items {
		if s.IsLocked(i) {
			items[i] = s.items[i]
			continue
		}
		items[i] = picks[next]
		next++
	}
	s.items = items
	s.normalize()
	return nil
}

// Add 手動加入食材：有空格時填入空格，否則在上限內提高目標數
func (s *State) Add(name string) error {
	if s.Contains(name) {
		return common.ErrDuplicate.Wrap(fmt.Errorf("%q already selected", name))
	}
	if len(s.items) >= s.opts.MaxSize {
		return common.ErrSelectionFull
	}
	s.saveToHistory()
	s.items = append(s.items, name)
	s.normalize()
	return nil
}

// Reset 清空選取並回到預設目標數，可復原
func (s *State) Reset() bool {
	if len(s.items) == 0 && len(s.locked) == 0 && s.target == s.opts.Target {
		return false
	}
	s.saveToHistory()
	s.items = nil
	s.locked = make(map[int]struct{})
	s.target = s.opts.Target
	return true
}
