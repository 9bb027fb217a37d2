package selector

import (
	"fmt"
	"testing"
	"time"

	"flavor-pairing/internal/core/pairing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSelector(g *pairing.Graph, seed uint64, opts ...Option) *Selector {
	return New(g, NewRand(seed), opts...)
}

func kitchenGraph() *pairing.Graph {
	return pairing.Build([]string{
		"Tomato,Basil", "Tomato,Garlic", "Tomato,Mozzarella", "Tomato,Olive Oil",
		"Basil,Garlic", "Basil,Mozzarella", "Basil,Olive Oil",
		"Garlic,Olive Oil", "Mozzarella,Olive Oil",
		"Lemon,Garlic", "Lemon,Olive Oil", "Lemon,Salmon", "Salmon,Dill",
		"Chocolate,Strawberry",
	}, nil)
}

func assertAllPairs(t *testing.T, g *pairing.Graph, set []string) {
	t.Helper()
	for i, a := range set {
		for j, b := range set {
			if i != j {
				assert.True(t, g.Has(a, b), "%s should pair with %s", a, b)
			}
		}
	}
}

func assertEachPaired(t *testing.T, g *pairing.Graph, set []string) {
	t.Helper()
	for i, a := range set {
		found := false
		for j, b := range set {
			if i != j && g.Has(a, b) {
				found = true
				break
			}
		}
		assert.True(t, found, "%s has no partner in %v", a, set)
	}
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode(" Perfect ")
	require.NoError(t, err)
	assert.Equal(t, ModePerfect, m)

	_, err = ParseMode("strict")
	assert.Error(t, err)
}

func TestSelectCountZero(t *testing.T) {
	s := newSelector(kitchenGraph(), 1)
	for _, mode := range []Mode{ModePerfect, ModeMixed, ModeRandom} {
		assert.Empty(t, s.Select(0, nil, mode, nil), mode)
		assert.NotNil(t, s.Select(-1, nil, mode, nil), mode)
	}
}

func TestPerfectTriangle(t *testing.T) {
	g := pairing.Build([]string{"A,B", "B,C", "A,C"}, nil)

	for seed := uint64(1); seed <= 20; seed++ {
		got := newSelector(g, seed).Select(3, nil, ModePerfect, nil)
		assert.ElementsMatch(t, []string{"A", "B", "C"}, got, "seed %d", seed)
	}
}

func TestPerfectDisjointEdges(t *testing.T) {
	g := pairing.Build([]string{"A,B", "C,D"}, nil)
	got := newSelector(g, 7).Select(3, nil, ModePerfect, nil)
	assert.Empty(t, got)
	assert.NotNil(t, got)
}

func TestPerfectRespectsLocked(t *testing.T) {
	g := kitchenGraph()
	locked := []string{"Tomato", "Basil"}

	for seed := uint64(1); seed <= 20; seed++ {
		got := newSelector(g, seed).Select(2, locked, ModePerfect, nil)
		require.Len(t, got, 2, "seed %d", seed)
		assert.NotContains(t, got, "Tomato")
		assert.NotContains(t, got, "Basil")
		assertAllPairs(t, g, append(append([]string{}, locked...), got...))
	}
}

func TestPerfectRespectsRestrictions(t *testing.T) {
	g := kitchenGraph()
	noGarlic := func(name string) bool { return name == "Garlic" }

	for seed := uint64(1); seed <= 20; seed++ {
		got := newSelector(g, seed).Select(4, nil, ModePerfect, noGarlic)
		require.Len(t, got, 4)
		assert.NotContains(t, got, "Garlic")
		assertAllPairs(t, g, got)
	}
}

func TestPerfectUnsatisfiableLocked(t *testing.T) {
	g := kitchenGraph()
	got := newSelector(g, 3).Select(3, []string{"Chocolate", "Salmon"}, ModePerfect, nil)
	assert.Empty(t, got)
}

func TestPerfectUnknownLocked(t *testing.T) {
	got := newSelector(kitchenGraph(), 3).Select(1, []string{"Unobtainium"}, ModePerfect, nil)
	assert.Empty(t, got)
}

func TestPerfectBacktracks(t *testing.T) {
	// 只有 A-B-C-D 是 4-clique，其餘是容易走進死路的三角形
	pairs := []string{"A,B", "A,C", "A,D", "B,C", "B,D", "C,D"}
	for i := 0; i < 10; i++ {
		x, y := fmt.Sprintf("X%d", i), fmt.Sprintf("Y%d", i)
		pairs = append(pairs, "A,"+x, "A,"+y, x+","+y)
	}
	g := pairing.Build(pairs, nil)

	for seed := uint64(1); seed <= 20; seed++ {
		got := newSelector(g, seed).Select(4, nil, ModePerfect, nil)
		assert.ElementsMatch(t, []string{"A", "B", "C", "D"}, got, "seed %d", seed)
	}
}

func TestPerfectBacktrackLimitGivesUp(t *testing.T) {
	g := pairing.Build([]string{"A,B", "C,D"}, nil)
	got := newSelector(g, 5, WithBacktrackLimit(0), WithMaxAttempts(3)).Select(3, nil, ModePerfect, nil)
	assert.Empty(t, got)
}

func TestPerfectDeterministicWithSeed(t *testing.T) {
	g := kitchenGraph()
	a := newSelector(g, 42).Select(3, nil, ModePerfect, nil)
	b := newSelector(g, 42).Select(3, nil, ModePerfect, nil)
	assert.Equal(t, a, b)
}

func TestMixed(t *testing.T) {
	g := kitchenGraph()

	for seed := uint64(1); seed <= 20; seed++ {
		got := newSelector(g, seed).Select(4, nil, ModeMixed, nil)
		require.Len(t, got, 4, "seed %d", seed)
		assertEachPaired(t, g, got)
	}
}

func TestMixedWithLocked(t *testing.T) {
	g := kitchenGraph()
	locked := []string{"Salmon"}

	for seed := uint64(1); seed <= 20; seed++ {
		got := newSelector(g, seed).Select(2, locked, ModeMixed, nil)
		require.Len(t, got, 2, "seed %d", seed)
		assert.NotContains(t, got, "Salmon")
		assertEachPaired(t, g, append([]string{"Salmon"}, got...))
	}
}

func TestMixedUnsatisfiable(t *testing.T) {
	g := pairing.Build([]string{"A,B"}, nil)
	assert.Empty(t, newSelector(g, 9).Select(3, nil, ModeMixed, nil))
}

func TestMixedIsolatedLocked(t *testing.T) {
	g := pairing.Build([]string{"A,B", "B,C", "D,E"}, nil)
	// F 不在圖中，永遠找不到夥伴
	assert.Empty(t, newSelector(g, 2).Select(2, []string{"F"}, ModeMixed, nil))
}

func TestRandom(t *testing.T) {
	g := kitchenGraph()
	locked := []string{"Tomato"}
	noDill := func(name string) bool { return name == "Dill" }

	got := newSelector(g, 11).Select(5, locked, ModeRandom, noDill)
	require.Len(t, got, 5)
	assert.NotContains(t, got, "Tomato")
	assert.NotContains(t, got, "Dill")

	seen := map[string]bool{}
	for _, name := range got {
		assert.False(t, seen[name], "duplicate %s", name)
		seen[name] = true
	}
}

func TestRandomShortWhenPoolExhausted(t *testing.T) {
	g := pairing.Build([]string{"A,B"}, nil)
	got := newSelector(g, 1).Select(5, []string{"A"}, ModeRandom, nil)
	assert.Equal(t, []string{"B"}, got)
}

func TestUnknownMode(t *testing.T) {
	assert.Empty(t, newSelector(kitchenGraph(), 1).Select(2, nil, Mode("chaos"), nil))
}

type recordingObserver struct {
	calls []string
}

func (r *recordingObserver) ObserveSelection(mode string, success bool, _ time.Duration) {
	r.calls = append(r.calls, fmt.Sprintf("%s:%t", mode, success))
}

func TestObserverNotified(t *testing.T) {
	obs := &recordingObserver{}
	s := newSelector(kitchenGraph(), 3, WithObserver(obs))

	s.Select(3, nil, ModePerfect, nil)
	s.Select(3, []string{"Chocolate"}, ModePerfect, nil)
	s.Select(0, nil, ModeRandom, nil)

	assert.Equal(t, []string{"perfect:true", "perfect:false"}, obs.calls)
}
