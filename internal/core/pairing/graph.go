// Package pairing 食材配對圖：哪些食材常一起使用
package pairing

import (
	"sort"
	"strings"
)

// pairSeparator 配對字串 "A,B" 的分隔符
const pairSeparator = ","

// Graph 無向、無權重的食材配對圖，建構後唯讀
type Graph struct {
	adj       map[string]map[string]struct{}
	neighbors map[string][]string
	universe  []string
	edges     int
}

// Build 由基礎配對清單建圖，extraPairs（實驗性配對）只在兩個方向都不存在時加入
func Build(basePairs []string, extraPairs []string) *Graph {
	g := &Graph{adj: make(map[string]map[string]struct{})}

	for _, entry := range basePairs {
		a, b, ok := parsePair(entry)
		if !ok {
			continue
		}
		g.addEdge(a, b)
	}

	for _, entry := range extraPairs {
		a, b, ok := parsePair(entry)
		if !ok {
			continue
		}
		if g.Has(a, b) || g.Has(b, a) {
			continue
		}
		g.addEdge(a, b)
	}

	g.freeze()
	return g
}

// parsePair 解析 "A,B"；缺少任一邊或自我配對視為格式錯誤
func parsePair(entry string) (string, string, bool) {
	parts := strings.Split(entry, pairSeparator)
	if len(parts) < 2 {
		return "", "", false
	}
	a := strings.TrimSpace(parts[0])
	b := strings.TrimSpace(parts[1])
	if a == "" || b == "" || a == b {
		return "", "", false
	}
	return a, b, true
}

func (g *Graph) addEdge(a, b string) {
	if _, exists := g.adj[a][b]; exists {
		return
	}
	g.link(a, b)
	g.link(b, a)
	g.edges++
}

func (g *Graph) link(from, to string) {
	set, ok := g.adj[from]
	if !ok {
		set = make(map[string]struct{})
		g.adj[from] = set
	}
	set[to] = struct{}{}
}

// freeze 預先計算排序後的鄰居與全部食材
func (g *Graph) freeze() {
	g.neighbors = make(map[string][]string, len(g.adj))
	g.universe = make([]string, 0, len(g.adj))
	for name, set := range g.adj {
		list := make([]string, 0, len(set))
		for n := range set {
			list = append(list, n)
		}
		SortNames(list)
		g.neighbors[name] = list
		g.universe = append(g.universe, name)
	}
	SortNames(g.universe)
}

// Has 檢查 a 是否與 b 配對
func (g *Graph) Has(a, b string) bool {
	_, ok := g.adj[a][b]
	return ok
}

// Contains 檢查食材是否在圖中
func (g *Graph) Contains(name string) bool {
	_, ok := g.adj[name]
	return ok
}

// Neighbors 回傳 a 的配對食材（已排序的副本），未知食材回傳空切片
func (g *Graph) Neighbors(a string) []string {
	list := g.neighbors[a]
	out := make([]string, len(list))
	copy(out, list)
	return out
}

// Degree 回傳 a 的配對數
func (g *Graph) Degree(a string) int {
	return len(g.adj[a])
}

// AllIngredients 回傳全部食材，依名稱排序（不分大小寫）
func (g *Graph) AllIngredients() []string {
	out := make([]string, len(g.universe))
	copy(out, g.universe)
	return out
}

// Resolve 以不分大小寫的方式找出圖中的正式名稱
func (g *Graph) Resolve(name string) (string, bool) {
	trimmed := strings.TrimSpace(name)
	if g.Contains(trimmed) {
		return trimmed, true
	}
	for _, candidate := range g.universe {
		if strings.EqualFold(candidate, trimmed) {
			return candidate, true
		}
	}
	return "", false
}

// Size 食材數量
func (g *Graph) Size() int {
	return len(g.adj)
}

// EdgeCount 無向邊數量
func (g *Graph) EdgeCount() int {
	return g.edges
}

// SortNames 依名稱排序（不分大小寫，相同時依位元組順序）
func SortNames(names []string) {
	sort.Slice(names, func(i, j int) bool {
		li, lj := strings.ToLower(names[i]), strings.ToLower(names[j])
		if li != lj {
			return li < lj
		}
		return names[i] < names[j]
	})
}
