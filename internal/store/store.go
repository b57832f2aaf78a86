// Package store owns the authoritative recipe list and favorite set.
// Every mutation is flushed through a types.Gateway before the mutator
// returns; a failed flush keeps the mutation in memory and is reported to
// the caller as a types.ErrPersistence error.
package store

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/mesh-intelligence/recipebox/internal/lockfile"
	"github.com/mesh-intelligence/recipebox/pkg/types"
)

// Store holds the catalog. It is meant to be driven from a single logical
// thread; the mutex only guards against accidental concurrent use.
type Store struct {
	mu        sync.Mutex
	gateway   types.Gateway
	logger    *slog.Logger
	recovery  string
	lock      *lockfile.Lock
	recipes   []*types.Recipe
	favorites types.FavoriteSet
	recovered []string
}

// Option configures a Store at Open.
type Option func(*Store)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithRecovery sets the load recovery policy, types.RecoveryCoupled or
// types.RecoveryIndependent. Unknown values fall back to coupled.
func WithRecovery(policy string) Option {
	return func(s *Store) { s.recovery = policy }
}

// WithLock hands a held data-directory lock to the Store; Close releases it.
func WithLock(l *lockfile.Lock) Option {
	return func(s *Store) { s.lock = l }
}

// Open loads the catalog through gateway. Load failures never surface as
// errors: the affected state is reset to empty according to the recovery
// policy and the failure is logged. Recovered reports what was reset.
func Open(gateway types.Gateway, opts ...Option) *Store {
	s := &Store{
		gateway:   gateway,
		logger:    slog.New(slog.DiscardHandler),
		recovery:  types.RecoveryCoupled,
		favorites: types.FavoriteSet{},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.load()
	return s
}

func (s *Store) load() {
	snap, err := s.gateway.Load()
	if snap.Favorites == nil {
		snap.Favorites = types.FavoriteSet{}
	}
	s.recipes = snap.Recipes
	s.favorites = snap.Favorites
	if err == nil {
		s.logger.Debug("catalog_loaded", "recipes", len(s.recipes), "favorites", len(s.favorites))
		return
	}

	failed := types.FailedBlobs(err)
	resetRecipes := true
	resetFavorites := true
	if s.recovery == types.RecoveryIndependent && len(failed) > 0 {
		resetRecipes = failed[types.BlobRecipes]
		resetFavorites = failed[types.BlobFavorites]
	}

	s.recovered = nil
	if resetRecipes {
		s.recipes = nil
		s.recovered = append(s.recovered, types.BlobRecipes)
	}
	if resetFavorites {
		s.favorites = types.FavoriteSet{}
		s.recovered = append(s.recovered, types.BlobFavorites)
	}
	s.logger.Warn("load_recovered",
		"policy", s.recovery,
		"reset", s.recovered,
		"error", err,
	)
}

// Recovered returns the blobs that were reset to empty at Open because they
// failed to load. It is empty after a clean load.
func (s *Store) Recovered() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.recovered)
}

// Close releases the data-directory lock, if one was handed over.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := s.lock.Release()
	s.lock = nil
	return err
}

// Create builds a recipe from fields, appends it, and flushes. The returned
// recipe is a copy. On a flush failure the recipe is returned alongside the
// error because it was kept in memory.
func (s *Store) Create(f types.Fields) (*types.Recipe, error) {
	r, err := types.NewRecipe(f.Name, f.Category, f.Ingredients, f.Steps)
	if err != nil {
		return nil, err
	}
	if err := s.Add(r); err != nil {
		if errors.Is(err, types.ErrPersistence) {
			return r.Clone(), err
		}
		return nil, err
	}
	return r.Clone(), nil
}

// Add appends a copy of r to the end of the catalog and flushes. Names may
// repeat; identifiers may not.
func (s *Store) Add(r *types.Recipe) error {
	if r == nil {
		return &types.ValidationError{Field: "recipe", Err: types.ErrInvalidID}
	}
	if err := r.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexOf(r.RecipeID) >= 0 {
		return &types.ValidationError{Field: "recipe_id", Err: types.ErrDuplicateID}
	}
	s.recipes = append(s.recipes, r.Clone())
	return s.flushLocked()
}

// Update replaces the mutable fields of the recipe with the given id. The
// recipe keeps its position and identifier.
func (s *Store) Update(id string, f types.Fields) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return &types.NotFoundError{ID: id}
	}
	if err := s.recipes[i].Apply(f); err != nil {
		return err
	}
	return s.flushLocked()
}

// Delete removes the recipe with the given id. The id leaves the favorite
// set even when no recipe has it.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.favorites.Remove(id)
	i := s.indexOf(id)
	if i < 0 {
		return &types.NotFoundError{ID: id}
	}
	s.recipes = slices.Delete(s.recipes, i, i+1)
	return s.flushLocked()
}

// ToggleFavorite flips favorite membership for id and returns the new
// state. Favoriting requires a recipe with that id to exist.
func (s *Store) ToggleFavorite(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexOf(id) < 0 {
		return false, &types.NotFoundError{ID: id}
	}
	favorite := !s.favorites.Has(id)
	if favorite {
		s.favorites.Add(id)
	} else {
		s.favorites.Remove(id)
	}
	return favorite, s.flushLocked()
}

// Get returns a copy of the recipe with the given id.
func (s *Store) Get(id string) (*types.Recipe, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return nil, &types.NotFoundError{ID: id}
	}
	return s.recipes[i].Clone(), nil
}

// Recipes returns copies of every recipe in store order.
func (s *Store) Recipes() []*types.Recipe {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneAll(s.recipes)
}

// Favorites returns a copy of the favorite set. It may hold identifiers
// with no recipe until the next flush prunes them.
func (s *Store) Favorites() types.FavoriteSet {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.favorites.Clone()
}

// IsFavorite reports whether id is marked as a favorite.
func (s *Store) IsFavorite(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.favorites.Has(id)
}

// Len returns the number of recipes.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.recipes)
}

// Flush writes the current state through the gateway. Mutators call it
// implicitly; it is exported so a caller can retry after a failed save.
func (s *Store) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flushLocked()
}

// flushLocked prunes dangling favorites and saves. The caller must hold s.mu.
func (s *Store) flushLocked() error {
	s.pruneFavoritesLocked()
	err := s.gateway.Save(types.Snapshot{Recipes: s.recipes, Favorites: s.favorites})
	if err != nil {
		s.logger.Warn("save_failed", "recipes", len(s.recipes), "favorites", len(s.favorites), "error", err)
		return fmt.Errorf("saving catalog: %w", err)
	}
	s.logger.Debug("catalog_saved", "recipes", len(s.recipes), "favorites", len(s.favorites))
	return nil
}

// pruneFavoritesLocked drops favorite ids that match no recipe, which can
// only come from a loaded favorites blob.
func (s *Store) pruneFavoritesLocked() {
	if len(s.favorites) == 0 {
		return
	}
	present := make(map[string]bool, len(s.recipes))
	for _, r := range s.recipes {
		present[r.RecipeID] = true
	}
	for id := range s.favorites {
		if !present[id] {
			delete(s.favorites, id)
			s.logger.Debug("favorite_pruned", "recipe_id", id)
		}
	}
}

func (s *Store) indexOf(id string) int {
	return slices.IndexFunc(s.recipes, func(r *types.Recipe) bool { return r.RecipeID == id })
}

func cloneAll(recipes []*types.Recipe) []*types.Recipe {
	out := make([]*types.Recipe, len(recipes))
	for i, r := range recipes {
		out[i] = r.Clone()
	}
	return out
}
