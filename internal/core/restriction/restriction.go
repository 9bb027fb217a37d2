// Package restriction 飲食限制過濾
package restriction

import (
	"sort"
	"strings"

	"flavor-pairing/internal/core/pairing"
)

// specialPrefix 保留給特殊限制的鍵前綴
const specialPrefix = "_"

// Kind 特殊限制種類
type Kind int

const (
	Nuts Kind = iota
	Nightshades
	Fodmap
)

// 特殊限制的設定鍵
const (
	KeyNuts        = "_nuts"
	KeyNightshades = "_nightshades"
	KeyFodmap      = "_fodmap"
)

func (k Kind) String() string {
	switch k {
	case Nuts:
		return "nuts"
	case Nightshades:
		return "nightshades"
	case Fodmap:
		return "fodmap"
	default:
		return "unknown"
	}
}

// Config 限制設定：鍵 -> 是否允許；沒有的鍵視為允許
type Config map[string]bool

// ProfileLookup 查詢食材分類
type ProfileLookup interface {
	Lookup(name string) (pairing.Profile, bool)
}

// Restriction 已停用的限制，CategoryRestriction 或 SpecialRestriction
type Restriction interface {
	Key() string
	restriction()
}

// CategoryRestriction 依 category:subcategory 排除
type CategoryRestriction struct {
	Category    string
	Subcategory string
}

// Key 實作 Restriction
func (r CategoryRestriction) Key() string {
	return r.Category + ":" + r.Subcategory
}

func (CategoryRestriction) restriction() {}

// SpecialRestriction 依固定清單排除
type SpecialRestriction struct {
	Kind Kind
}

// Key 實作 Restriction
func (r SpecialRestriction) Key() string {
	return specialPrefix + r.Kind.String()
}

func (SpecialRestriction) restriction() {}

// ParseKey 解析限制鍵；未知的保留鍵與格式錯誤的鍵回傳 false
func ParseKey(key string) (Restriction, bool) {
	key = strings.TrimSpace(key)
	if strings.HasPrefix(key, specialPrefix) {
		switch strings.ToLower(key) {
		case KeyNuts:
			return SpecialRestriction{Kind: Nuts}, true
		case KeyNightshades:
			return SpecialRestriction{Kind: Nightshades}, true
		case KeyFodmap:
			return SpecialRestriction{Kind: Fodmap}, true
		default:
			return nil, false
		}
	}

	category, subcategory, ok := strings.Cut(key, ":")
	if !ok {
		return nil, false
	}
	return CategoryRestriction{
		Category:    strings.ToLower(strings.TrimSpace(category)),
		Subcategory: strings.ToLower(strings.TrimSpace(subcategory)),
	}, true
}

// Disabled 回傳設定中被停用（值為 false）的限制，依鍵排序
func (c Config) Disabled() []Restriction {
	keys := make([]string, 0, len(c))
	for key, allowed := range c {
		if !allowed {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	out := make([]Restriction, 0, len(keys))
	for _, key := range keys {
		if r, ok := ParseKey(key); ok {
			out = append(out, r)
		}
	}
	return out
}

// Filter 預先解析過的限制判斷器
type Filter struct {
	special    []Kind
	categories map[string]struct{}
	sets       SpecialSets
	profiles   ProfileLookup
}

// NewFilter 以預設的特殊清單建立 Filter
func NewFilter(cfg Config, profiles ProfileLookup) *Filter {
	return NewFilterWithSets(cfg, profiles, DefaultSpecialSets())
}

// NewFilterWithSets 使用自訂特殊清單建立 Filter
func NewFilterWithSets(cfg Config, profiles ProfileLookup, sets SpecialSets) *Filter {
	f := &Filter{
		categories: make(map[string]struct{}),
		sets:       sets,
		profiles:   profiles,
	}
	for _, r := range cfg.Disabled() {
		switch r := r.(type) {
		case SpecialRestriction:
			f.special = append(f.special, r.Kind)
		case CategoryRestriction:
			f.categories[r.Key()] = struct{}{}
		}
	}
	return f
}

// Empty 沒有任何停用的限制
func (f *Filter) Empty() bool {
	return f == nil || (len(f.special) == 0 && len(f.categories) == 0)
}

// IsRestricted 判斷食材是否被排除
func (f *Filter) IsRestricted(name string) bool {
	if f.Empty() {
		return false
	}

	lower := strings.ToLower(strings.TrimSpace(name))
	for _, kind := range f.special {
		if f.sets.Contains(kind, lower) {
			return true
		}
	}

	if len(f.categories) == 0 || f.profiles == nil {
		return false
	}

	profile, ok := f.profiles.Lookup(name)
	if !ok {
		return false
	}

	key := strings.ToLower(profile.Category) + ":" + strings.ToLower(profile.Subcategory)
	_, hit := f.categories[key]
	return hit
}

// IsRestricted 單次判斷，不保留解析結果
func IsRestricted(name string, cfg Config, profiles ProfileLookup) bool {
	return NewFilter(cfg, profiles).IsRestricted(name)
}
