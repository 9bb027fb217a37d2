// Package compat 計算候選食材與既有選取的相容度
package compat

import (
	"math"
	"sort"
	"strings"
)

// PairChecker 配對查詢
type PairChecker interface {
	Has(a, b string) bool
}

// Result 相容度結果
type Result struct {
	Score       int      `json:"score"`
	MatchedWith []string `json:"matched_with"`
}

// Score 計算 candidate 與 reference 中多少比例的食材配對，reference 為空時為 100
func Score(candidate string, reference []string, graph PairChecker) Result {
	if len(reference) == 0 {
		return Result{Score: 100, MatchedWith: []string{}}
	}

	matched := make([]string, 0, len(reference))
	for _, r := range reference {
		if graph.Has(r, candidate) {
			matched = append(matched, r)
		}
	}

	return Result{
		Score:       int(math.Round(100 * float64(len(matched)) / float64(len(reference)))),
		MatchedWith: matched,
	}
}

// Accept 呼叫端的顯示策略：滿分一律接受，部分相容只在 includePartial 時接受
func Accept(r Result, includePartial bool) bool {
	if r.Score >= 100 {
		return true
	}
	return includePartial && r.Score > 0
}

// Suggestion 排序後的建議項目
type Suggestion struct {
	Name string `json:"name"`
	Result
}

// Rank 對候選清單評分、過濾並排序（分數高到低，同分依名稱）
func Rank(candidates, reference []string, graph PairChecker, includePartial bool) []Suggestion {
	out := make([]Suggestion, 0, len(candidates))
	for _, c := range candidates {
		r := Score(c, reference, graph)
		if !Accept(r, includePartial) {
			continue
		}
		out = append(out, Suggestion{Name: c, Result: r})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out
}
