package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/recipebox/pkg/types"
)

func seededSession(t *testing.T) (*Session, map[string]*types.Recipe) {
	t.Helper()
	s := Open(&memGateway{})
	byName := make(map[string]*types.Recipe)
	for _, f := range []types.Fields{
		fields("Hot Chocolate", types.CategoryBeverage, "Milk", "Cocoa"),
		fields("Brownies", types.CategoryDessert, "Chocolate chips", "Flour"),
		fields("Caesar Salad", types.CategoryLunch, "Romaine", "Croutons"),
	} {
		r, err := s.Create(f)
		require.NoError(t, err)
		byName[r.Name] = r
	}
	return NewSession(s), byName
}

func TestSessionStartsUnfiltered(t *testing.T) {
	sess, _ := seededSession(t)

	assert.Equal(t, types.SelectorAll, sess.Criteria().Selector)
	assert.Empty(t, sess.Criteria().Search)
	assert.Equal(t, []string{"Hot Chocolate", "Brownies", "Caesar Salad"}, names(sess.Visible()))
}

func TestSessionSearchAndSelector(t *testing.T) {
	sess, byName := seededSession(t)

	assert.Equal(t, []string{"Hot Chocolate", "Brownies"}, names(sess.SetSearch("choc")))

	view, err := sess.SetSelector(types.CategoryDessert)
	require.NoError(t, err)
	assert.Equal(t, []string{"Brownies"}, names(view))

	_, err = sess.SetSelector("Brunch")
	assert.ErrorIs(t, err, types.ErrInvalidSelector)
	assert.Equal(t, types.CategoryDessert, sess.Criteria().Selector, "invalid selector leaves state")

	_, err = sess.SetSelector(types.SelectorFavorites)
	require.NoError(t, err)
	assert.Empty(t, sess.Visible())

	_, err = sess.ToggleFavorite(byName["Hot Chocolate"].RecipeID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Hot Chocolate"}, names(sess.Visible()), "mutations refresh the view")

	sess.SetSearch("")
	assert.Equal(t, []string{"Hot Chocolate"}, names(sess.Visible()))
}

func TestSessionMutationsRefreshView(t *testing.T) {
	sess, byName := seededSession(t)
	sess.SetSearch("salad")

	_, err := sess.Add(fields("Greek Salad", types.CategoryLunch, "Feta"))
	require.NoError(t, err)
	assert.Equal(t, []string{"Caesar Salad", "Greek Salad"}, names(sess.Visible()))

	require.NoError(t, sess.Update(byName["Caesar Salad"].RecipeID, fields("Caesar Wrap", types.CategoryLunch, "Tortilla")))
	assert.Equal(t, []string{"Greek Salad"}, names(sess.Visible()))

	require.NoError(t, sess.Delete(byName["Brownies"].RecipeID))
	assert.Equal(t, 3, sess.Store().Len())

	err = sess.Delete("missing")
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestSessionVisibleIsCallerOwned(t *testing.T) {
	sess, _ := seededSession(t)
	v := sess.Visible()
	v[0] = nil
	assert.NotNil(t, sess.Visible()[0])
}
