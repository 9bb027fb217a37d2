package suggest

import (
	"errors"
	"testing"

	"flavor-pairing/internal/core/pairing"
	"flavor-pairing/internal/core/restriction"
	"flavor-pairing/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService() *Service {
	return NewService(pairing.NewProvider(&pairing.Dataset{
		Base: []string{
			"Tomato,Basil", "Tomato,Garlic", "Basil,Garlic",
			"Tomato,Onion", "Lemon,Garlic", "Walnut,Basil",
		},
		Experimental: []string{"Lemon,Tomato"},
		Profiles: []pairing.Profile{
			{Name: "Basil", Category: "herb", Subcategory: "leafy", Flavor: pairing.FlavorVector{Sweet: 2, Bitter: 12}},
		},
	}))
}

func names(t *testing.T, s *Service, req Request) []string {
	t.Helper()
	out := []string{}
	for _, sug := range s.Suggestions(req) {
		out = append(out, sug.Name)
	}
	return out
}

func TestSuggestions(t *testing.T) {
	s := newTestService()

	t.Run("empty selection lists everything", func(t *testing.T) {
		got := names(t, s, Request{})
		assert.Equal(t, []string{"Basil", "Garlic", "Lemon", "Onion", "Tomato", "Walnut"}, got)
	})

	t.Run("full matches only", func(t *testing.T) {
		got := names(t, s, Request{Selection: []string{"Tomato", "Basil"}})
		assert.Equal(t, []string{"Garlic"}, got)
	})

	t.Run("partial sorted by score", func(t *testing.T) {
		got := s.Suggestions(Request{Selection: []string{"Tomato", "Basil"}, IncludePartial: true})
		require.Len(t, got, 3)
		assert.Equal(t, "Garlic", got[0].Name)
		assert.Equal(t, 100, got[0].Score)
		for _, sug := range got[1:] {
			assert.Equal(t, 50, sug.Score)
		}
	})

	t.Run("experimental pairs", func(t *testing.T) {
		got := names(t, s, Request{Selection: []string{"Tomato", "Garlic"}, IncludeExperimental: true})
		assert.Equal(t, []string{"Basil", "Lemon"}, got)
	})

	t.Run("restricted removed", func(t *testing.T) {
		got := names(t, s, Request{Selection: []string{"Basil"}, Restrictions: restriction.Config{"_nuts": false}})
		assert.NotContains(t, got, "Walnut")
		assert.Contains(t, got, "Garlic")
	})

	t.Run("query and limit", func(t *testing.T) {
		got := names(t, s, Request{Query: "O", Limit: 2})
		assert.Equal(t, []string{"Lemon", "Onion"}, got)
	})
}

func TestSearch(t *testing.T) {
	s := newTestService()
	assert.Equal(t, []string{"Garlic"}, s.Search(" GAR ", false))
	assert.Len(t, s.Search("", false), 6)
	assert.Empty(t, s.Search("zzz", false))
}

func TestIngredient(t *testing.T) {
	s := newTestService()

	d, err := s.Ingredient("basil", false)
	require.NoError(t, err)
	assert.Equal(t, "Basil", d.Name)
	assert.Equal(t, "herb", d.Category)
	assert.Equal(t, []string{"Garlic", "Tomato", "Walnut"}, d.Pairings)
	require.NotNil(t, d.Flavor)
	assert.Equal(t, 10.0, d.Flavor.Bitter)

	d, err = s.Ingredient("Lemon", false)
	require.NoError(t, err)
	assert.Nil(t, d.Flavor)
	assert.Equal(t, []string{"Garlic"}, d.Pairings)

	_, err = s.Ingredient("Dragonfruit", false)
	assert.True(t, errors.Is(err, common.ErrIngredientUnknown))
}

func TestCheck(t *testing.T) {
	s := newTestService()
	got := s.Check([]string{"Walnut", "Basil", "Tomato"}, restriction.Config{"_nuts": false, "herb:leafy": false})
	assert.Equal(t, map[string]bool{"Walnut": true, "Basil": true, "Tomato": false}, got)
}
