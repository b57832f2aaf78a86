package store

import (
	"github.com/mesh-intelligence/recipebox/internal/query"
	"github.com/mesh-intelligence/recipebox/pkg/types"
)

// Session pairs a Store with the filter state of one user session and the
// view it produces. Filter state is never persisted; a new Session starts
// with every recipe visible.
//
// Mutations go through the Session so the view is recomputed after the
// store has flushed, mirroring mutate, save, redisplay.
type Session struct {
	store    *Store
	criteria query.Criteria
	visible  []*types.Recipe
}

// NewSession returns a Session over s with no filter applied.
func NewSession(s *Store) *Session {
	sess := &Session{
		store:    s,
		criteria: query.Criteria{Selector: types.SelectorAll},
	}
	sess.visible = s.Recipes()
	return sess
}

// Store returns the underlying Store.
func (s *Session) Store() *Store { return s.store }

// Criteria returns the current filter state.
func (s *Session) Criteria() query.Criteria { return s.criteria }

// Visible returns the current view. The slice is owned by the caller.
func (s *Session) Visible() []*types.Recipe {
	out := make([]*types.Recipe, len(s.visible))
	copy(out, s.visible)
	return out
}

// SetSearch changes the search text and returns the recomputed view.
func (s *Session) SetSearch(text string) []*types.Recipe {
	s.criteria.Search = text
	return s.Refresh()
}

// SetSelector changes the category selector and returns the recomputed
// view. An invalid selector leaves the state unchanged.
func (s *Session) SetSelector(selector string) ([]*types.Recipe, error) {
	sel, err := types.ParseSelector(selector)
	if err != nil {
		return nil, err
	}
	s.criteria.Selector = sel
	return s.Refresh(), nil
}

// Refresh recomputes the view from the store.
func (s *Session) Refresh() []*types.Recipe {
	s.visible = s.criteria.Apply(s.store.Recipes(), s.store.Favorites())
	return s.Visible()
}

// Add creates a recipe and refreshes the view.
func (s *Session) Add(f types.Fields) (*types.Recipe, error) {
	r, err := s.store.Create(f)
	s.Refresh()
	return r, err
}

// Update edits a recipe and refreshes the view.
func (s *Session) Update(id string, f types.Fields) error {
	err := s.store.Update(id, f)
	s.Refresh()
	return err
}

// Delete removes a recipe and refreshes the view.
func (s *Session) Delete(id string) error {
	err := s.store.Delete(id)
	s.Refresh()
	return err
}

// ToggleFavorite flips a favorite and refreshes the view.
func (s *Session) ToggleFavorite(id string) (bool, error) {
	fav, err := s.store.ToggleFavorite(id)
	s.Refresh()
	return fav, err
}
