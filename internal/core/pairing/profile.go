package pairing

import (
	"flavor-pairing/internal/pkg/common"
)

// 風味強度範圍
const (
	minIntensity = 0
	maxIntensity = 10
)

// FlavorVector 七種味覺強度，每項 0-10
type FlavorVector struct {
	Sweet  float64 `json:"sweet"`
	Salty  float64 `json:"salty"`
	Sour   float64 `json:"sour"`
	Bitter float64 `json:"bitter"`
	Umami  float64 `json:"umami"`
	Fat    float64 `json:"fat"`
	Spicy  float64 `json:"spicy"`
}

// Clamp 將每項強度限制在 0-10
func (v FlavorVector) Clamp() FlavorVector {
	return FlavorVector{
		Sweet:  clamp(v.Sweet),
		Salty:  clamp(v.Salty),
		Sour:   clamp(v.Sour),
		Bitter: clamp(v.Bitter),
		Umami:  clamp(v.Umami),
		Fat:    clamp(v.Fat),
		Spicy:  clamp(v.Spicy),
	}
}

func clamp(x float64) float64 {
	if x < minIntensity {
		return minIntensity
	}
	if x > maxIntensity {
		return maxIntensity
	}
	return x
}

// Profile 食材的靜態參考資料
type Profile struct {
	Name        string       `json:"name"`
	Category    string       `json:"category"`
	Subcategory string       `json:"subcategory"`
	Flavor      FlavorVector `json:"flavor"`
}

// ProfileIndex 以不分大小寫的名稱查詢食材資料
type ProfileIndex struct {
	byName map[string]Profile
}

// NewProfileIndex 建立索引；重複名稱以第一筆為準
func NewProfileIndex(profiles []Profile) *ProfileIndex {
	idx := &ProfileIndex{byName: make(map[string]Profile, len(profiles))}
	for _, p := range profiles {
		key := common.NormalizeName(p.Name)
		if key == "" {
			continue
		}
		if _, exists := idx.byName[key]; exists {
			continue
		}
		p.Flavor = p.Flavor.Clamp()
		idx.byName[key] = p
	}
	return idx
}

// Lookup 查詢食材資料
func (idx *ProfileIndex) Lookup(name string) (Profile, bool) {
	if idx == nil {
		return Profile{}, false
	}
	p, ok := idx.byName[common.NormalizeName(name)]
	return p, ok
}

// Len 資料筆數
func (idx *ProfileIndex) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.byName)
}
