// Package query derives the visible recipe list from the catalog given a
// search term and a category selector. Filtering is recomputed from scratch
// on every call; there is no index to keep in sync with the store.
package query

import (
	"strings"

	"github.com/mesh-intelligence/recipebox/pkg/types"
)

// Criteria is the per-session filter state. The zero value selects every
// recipe.
type Criteria struct {
	Search   string // Free text; matched case-insensitively as a substring.
	Selector string // A category, types.SelectorAll, or types.SelectorFavorites.
}

// Filter returns the recipes that pass both the category gate and the
// search gate, in their original order. It does not modify its inputs and
// returns a new slice sharing the recipe pointers.
func Filter(recipes []*types.Recipe, favorites types.FavoriteSet, search, selector string) []*types.Recipe {
	return Criteria{Search: search, Selector: selector}.Apply(recipes, favorites)
}

// Apply is Filter with the criteria bundled.
func (c Criteria) Apply(recipes []*types.Recipe, favorites types.FavoriteSet) []*types.Recipe {
	needle := normalize(c.Search)
	out := make([]*types.Recipe, 0, len(recipes))
	for _, r := range recipes {
		if c.passesCategory(r, favorites) && matchesSearch(r, needle) {
			out = append(out, r)
		}
	}
	return out
}

// Match reports whether a single recipe passes the criteria.
func (c Criteria) Match(r *types.Recipe, favorites types.FavoriteSet) bool {
	return c.passesCategory(r, favorites) && matchesSearch(r, normalize(c.Search))
}

func (c Criteria) passesCategory(r *types.Recipe, favorites types.FavoriteSet) bool {
	switch c.Selector {
	case "", types.SelectorAll:
		return true
	case types.SelectorFavorites:
		return favorites.Has(r.RecipeID)
	default:
		return r.Category == c.Selector
	}
}

// matchesSearch expects needle already normalized. An empty needle matches
// everything.
func matchesSearch(r *types.Recipe, needle string) bool {
	if needle == "" {
		return true
	}
	if strings.Contains(strings.ToLower(r.Name), needle) ||
		strings.Contains(strings.ToLower(r.Category), needle) {
		return true
	}
	for _, ing := range r.Ingredients {
		if strings.Contains(strings.ToLower(ing), needle) {
			return true
		}
	}
	return false
}

func normalize(search string) string {
	return strings.TrimSpace(strings.ToLower(search))
}
