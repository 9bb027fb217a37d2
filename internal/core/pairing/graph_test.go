package pairing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuild(t *testing.T) {
	g := Build([]string{
		"Tomato,Basil",
		" Garlic , Olive Oil ",
		"Basil,Tomato",
		"malformed",
		",Lemon",
		"Mint,",
		"Salt,Salt",
		"",
	}, nil)

	assert.Equal(t, 4, g.Size())
	assert.Equal(t, 2, g.EdgeCount())
	assert.True(t, g.Has("Tomato", "Basil"))
	assert.True(t, g.Has("Garlic", "Olive Oil"))
	assert.False(t, g.Contains("Lemon"))
	assert.False(t, g.Contains("Salt"))
}

func TestSymmetry(t *testing.T) {
	g := Build(
		[]string{"A,B", "B,C", "C,D", "D,A"},
		[]string{"A,C", "E,B"},
	)

	for _, a := range g.AllIngredients() {
		for _, b := range g.AllIngredients() {
			assert.Equal(t, g.Has(a, b), g.Has(b, a), "%s/%s", a, b)
		}
		for _, n := range g.Neighbors(a) {
			assert.Contains(t, g.Neighbors(n), a)
		}
	}
}

func TestExperimentalPrecedence(t *testing.T) {
	base := []string{"Tomato,Basil", "Tomato,Garlic"}
	plain := Build(base, nil)
	merged := Build(base, []string{"Basil,Tomato", "Tomato,Basil", "Basil,Mint"})

	assert.Equal(t, plain.Degree("Tomato"), merged.Degree("Tomato"))
	assert.Equal(t, plain.EdgeCount()+1, merged.EdgeCount())
	assert.True(t, merged.Has("Mint", "Basil"))
	assert.False(t, plain.Contains("Mint"))
}

func TestNeighbors(t *testing.T) {
	g := Build([]string{"Tomato,basil", "Tomato,Garlic", "Tomato,Anchovy"}, nil)

	assert.Equal(t, []string{"Anchovy", "basil", "Garlic"}, g.Neighbors("Tomato"))
	assert.Empty(t, g.Neighbors("Unknown"))

	// 回傳副本
	n := g.Neighbors("Tomato")
	n[0] = "changed"
	assert.Equal(t, "Anchovy", g.Neighbors("Tomato")[0])
}

func TestAllIngredientsSorted(t *testing.T) {
	g := Build([]string{"b,A", "a,C", "B,c"}, nil)
	assert.Equal(t, []string{"A", "a", "B", "b", "C", "c"}, g.AllIngredients())
}

func TestResolve(t *testing.T) {
	g := Build([]string{"Olive Oil,Garlic"}, nil)

	name, ok := g.Resolve("  olive oil ")
	assert.True(t, ok)
	assert.Equal(t, "Olive Oil", name)

	name, ok = g.Resolve("Garlic")
	assert.True(t, ok)
	assert.Equal(t, "Garlic", name)

	_, ok = g.Resolve("butter")
	assert.False(t, ok)
}

func TestEmptyGraph(t *testing.T) {
	g := Build(nil, nil)
	assert.Equal(t, 0, g.Size())
	assert.Empty(t, g.AllIngredients())
	assert.False(t, g.Has("A", "B"))
	assert.Equal(t, 0, g.Degree("A"))
}
