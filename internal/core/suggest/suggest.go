// Package suggest 建議清單與食材查詢
package suggest

import (
	"fmt"
	"strings"

	"flavor-pairing/internal/core/compat"
	"flavor-pairing/internal/core/pairing"
	"flavor-pairing/internal/core/restriction"
	"flavor-pairing/internal/pkg/common"
)

// Service 建議服務
type Service struct {
	provider *pairing.Provider
}

// NewService 創建建議服務
func NewService(provider *pairing.Provider) *Service {
	return &Service{provider: provider}
}

// Request 建議參數
type Request struct {
	Selection           []string
	Query               string
	IncludePartial      bool
	IncludeExperimental bool
	Restrictions        restriction.Config
	Limit               int
}

// Suggestions 以目前選取為參考，排序全部候選
func (s *Service) Suggestions(req Request) []compat.Suggestion {
	graph := s.provider.Graph(req.IncludeExperimental)
	filter := restriction.NewFilter(req.Restrictions, s.provider.Profiles())

	selected := make(map[string]struct{}, len(req.Selection))
	for _, name := range req.Selection {
		selected[name] = struct{}{}
	}

	candidates := make([]string, 0)
	for _, name := range s.Search(req.Query, req.IncludeExperimental) {
		if _, skip := selected[name]; skip {
			continue
		}
		if filter.IsRestricted(name) {
			continue
		}
		candidates = append(candidates, name)
	}

	ranked := compat.Rank(candidates, req.Selection, graph, req.IncludePartial)
	if req.Limit > 0 && len(ranked) > req.Limit {
		ranked = ranked[:req.Limit]
	}
	return ranked
}

// Search 全部食材中名稱包含 query 的項目（不分大小寫），已排序
func (s *Service) Search(query string, includeExperimental bool) []string {
	all := s.provider.Graph(includeExperimental).AllIngredients()
	q := common.NormalizeName(query)
	if q == "" {
		return all
	}

	out := all[:0]
	for _, name := range all {
		if strings.Contains(strings.ToLower(name), q) {
			out = append(out, name)
		}
	}
	return out
}

// Detail 單一食材的資料與配對
type Detail struct {
	Name        string                `json:"name"`
	Category    string                `json:"category,omitempty"`
	Subcategory string                `json:"subcategory,omitempty"`
	Flavor      *pairing.FlavorVector `json:"flavor,omitempty"`
	Pairings    []string              `json:"pairings"`
}

// Ingredient 查詢食材，名稱不分大小寫
func (s *Service) Ingredient(name string, includeExperimental bool) (Detail, error) {
	graph := s.provider.Graph(includeExperimental)
	canonical, ok := graph.Resolve(name)
	if !ok {
		return Detail{}, common.ErrIngredientUnknown.Wrap(fmt.Errorf("%q", name))
	}

	d := Detail{
		Name:     canonical,
		Pairings: graph.Neighbors(canonical),
	}
	if p, ok := s.provider.Profiles().Lookup(canonical); ok {
		flavor := p.Flavor
		d.Category = p.Category
		d.Subcategory = p.Subcategory
		d.Flavor = &flavor
	}
	return d, nil
}

// Check 逐一判斷食材是否被限制
func (s *Service) Check(names []string, cfg restriction.Config) map[string]bool {
	filter := restriction.NewFilter(cfg, s.provider.Profiles())
	out := make(map[string]bool, len(names))
	for _, name := range names {
		out[name] = filter.IsRestricted(name)
	}
	return out
}
