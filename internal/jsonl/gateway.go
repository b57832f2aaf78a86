package jsonl

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mesh-intelligence/recipebox/pkg/types"
)

// File names inside the data directory.
const (
	RecipesFile   = "recipes.jsonl"
	FavoritesFile = "favorites.jsonl"
)

// Header format names.
const (
	recipesFormat   = "recipebox/recipes"
	favoritesFormat = "recipebox/favorites"
)

var (
	errMalformed = types.ErrMalformedEntry
	errForeign   = types.ErrForeignFormat
)

// Compile-time interface check.
var _ types.Gateway = (*Gateway)(nil)

// recipeJSON represents a recipe in recipes.jsonl.
type recipeJSON struct {
	RecipeID    string   `json:"recipe_id"`
	Name        string   `json:"name"`
	Category    string   `json:"category"`
	Ingredients []string `json:"ingredients"`
	Steps       string   `json:"steps"`
}

// favoriteJSON represents a favorite in favorites.jsonl.
type favoriteJSON struct {
	RecipeID string `json:"recipe_id"`
}

// Gateway persists the catalog as recipes.jsonl and favorites.jsonl.
type Gateway struct {
	dataDir string
}

// NewGateway returns a Gateway rooted at dataDir. The directory is created
// on first Save or Init, not here.
func NewGateway(dataDir string) *Gateway {
	if dataDir == "" {
		dataDir = "."
	}
	return &Gateway{dataDir: dataDir}
}

// RecipesPath returns the path of the recipes blob.
func (g *Gateway) RecipesPath() string { return filepath.Join(g.dataDir, RecipesFile) }

// FavoritesPath returns the path of the favorites blob.
func (g *Gateway) FavoritesPath() string { return filepath.Join(g.dataDir, FavoritesFile) }

// Init creates the data directory and writes empty blobs for any file that
// does not exist yet. Existing files are left untouched.
func (g *Gateway) Init() error {
	if err := os.MkdirAll(g.dataDir, 0o755); err != nil {
		return fmt.Errorf("creating data dir: %w", err)
	}
	for _, f := range []struct{ path, format string }{
		{g.RecipesPath(), recipesFormat},
		{g.FavoritesPath(), favoritesFormat},
	} {
		if _, err := os.Stat(f.path); err == nil {
			continue
		}
		if err := writeJSONL(f.path, f.format, nil); err != nil {
			return fmt.Errorf("initializing %s: %w", filepath.Base(f.path), err)
		}
	}
	return nil
}

// Load reads both blobs independently. Blobs that fail are reported as
// *types.PersistenceError and left empty in the returned Snapshot.
func (g *Gateway) Load() (types.Snapshot, error) {
	snap := types.Snapshot{Favorites: types.FavoriteSet{}}
	var errs []error

	recipes, err := g.loadRecipes()
	if err != nil {
		errs = append(errs, &types.PersistenceError{Op: "load", Blob: types.BlobRecipes, Path: g.RecipesPath(), Err: err})
	} else {
		snap.Recipes = recipes
	}

	favorites, err := g.loadFavorites()
	if err != nil {
		errs = append(errs, &types.PersistenceError{Op: "load", Blob: types.BlobFavorites, Path: g.FavoritesPath(), Err: err})
	} else {
		snap.Favorites = favorites
	}

	return snap, errors.Join(errs...)
}

func (g *Gateway) loadRecipes() ([]*types.Recipe, error) {
	records, err := readJSONL(g.RecipesPath(), recipesFormat)
	if errors.Is(err, errMissing) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	recipes := make([]*types.Recipe, 0, len(records))
	seen := make(map[string]bool, len(records))
	for i, rec := range records {
		var rj recipeJSON
		if err := json.Unmarshal(rec, &rj); err != nil {
			return nil, fmt.Errorf("record %d: %w", i+1, errMalformed)
		}
		r := &types.Recipe{
			RecipeID:    rj.RecipeID,
			Name:        rj.Name,
			Category:    rj.Category,
			Ingredients: rj.Ingredients,
			Steps:       rj.Steps,
		}
		if err := r.Validate(); err != nil {
			return nil, fmt.Errorf("record %d: %w: %w", i+1, errMalformed, err)
		}
		if seen[r.RecipeID] {
			return nil, fmt.Errorf("record %d: duplicate recipe_id %q: %w", i+1, r.RecipeID, errMalformed)
		}
		seen[r.RecipeID] = true
		recipes = append(recipes, r)
	}
	return recipes, nil
}

func (g *Gateway) loadFavorites() (types.FavoriteSet, error) {
	favorites := types.FavoriteSet{}
	records, err := readJSONL(g.FavoritesPath(), favoritesFormat)
	if errors.Is(err, errMissing) {
		return favorites, nil
	}
	if err != nil {
		return nil, err
	}

	for i, rec := range records {
		var fj favoriteJSON
		if err := json.Unmarshal(rec, &fj); err != nil || fj.RecipeID == "" {
			return nil, fmt.Errorf("record %d: %w", i+1, errMalformed)
		}
		favorites.Add(fj.RecipeID)
	}
	return favorites, nil
}

// Save rewrites both blobs. Both writes are attempted even if the first
// fails; failures are joined.
func (g *Gateway) Save(snap types.Snapshot) error {
	if err := os.MkdirAll(g.dataDir, 0o755); err != nil {
		return &types.PersistenceError{Op: "save", Blob: types.BlobRecipes, Path: g.dataDir, Err: err}
	}

	var errs []error
	if err := g.saveRecipes(snap.Recipes); err != nil {
		errs = append(errs, &types.PersistenceError{Op: "save", Blob: types.BlobRecipes, Path: g.RecipesPath(), Err: err})
	}
	if err := g.saveFavorites(snap.Favorites); err != nil {
		errs = append(errs, &types.PersistenceError{Op: "save", Blob: types.BlobFavorites, Path: g.FavoritesPath(), Err: err})
	}
	return errors.Join(errs...)
}

func (g *Gateway) saveRecipes(recipes []*types.Recipe) error {
	records := make([]json.RawMessage, 0, len(recipes))
	for _, r := range recipes {
		b, err := json.Marshal(recipeJSON{
			RecipeID:    r.RecipeID,
			Name:        r.Name,
			Category:    r.Category,
			Ingredients: r.Ingredients,
			Steps:       r.Steps,
		})
		if err != nil {
			return fmt.Errorf("encoding recipe %s: %w", r.RecipeID, err)
		}
		records = append(records, b)
	}
	return writeJSONL(g.RecipesPath(), recipesFormat, records)
}

func (g *Gateway) saveFavorites(favorites types.FavoriteSet) error {
	ids := favorites.IDs()
	records := make([]json.RawMessage, 0, len(ids))
	for _, id := range ids {
		b, err := json.Marshal(favoriteJSON{RecipeID: id})
		if err != nil {
			return fmt.Errorf("encoding favorite %s: %w", id, err)
		}
		records = append(records, b)
	}
	return writeJSONL(g.FavoritesPath(), favoritesFormat, records)
}
