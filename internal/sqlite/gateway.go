package sqlite

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/recipebox/pkg/types"
)

// File names inside the data directory.
const (
	RecipesFile   = "recipes.db"
	FavoritesFile = "favorites.db"
)

// Compile-time interface check.
var _ types.Gateway = (*Gateway)(nil)

// Gateway persists the catalog as two SQLite databases. Save builds each
// database in a temp file and renames it into place, so a crash leaves the
// previous file intact and a corrupt file is always replaceable.
type Gateway struct {
	dataDir string
}

// NewGateway returns a Gateway rooted at dataDir.
func NewGateway(dataDir string) *Gateway {
	if dataDir == "" {
		dataDir = "."
	}
	return &Gateway{dataDir: dataDir}
}

// RecipesPath returns the path of the recipes database.
func (g *Gateway) RecipesPath() string { return filepath.Join(g.dataDir, RecipesFile) }

// FavoritesPath returns the path of the favorites database.
func (g *Gateway) FavoritesPath() string { return filepath.Join(g.dataDir, FavoritesFile) }

// Init creates the data directory and writes empty databases for any file
// that does not exist yet.
func (g *Gateway) Init() error {
	if err := os.MkdirAll(g.dataDir, 0o755); err != nil {
		return fmt.Errorf("creating data dir: %w", err)
	}
	if _, err := os.Stat(g.RecipesPath()); err != nil {
		if err := g.saveRecipes(nil); err != nil {
			return fmt.Errorf("initializing %s: %w", RecipesFile, err)
		}
	}
	if _, err := os.Stat(g.FavoritesPath()); err != nil {
		if err := g.saveFavorites(nil); err != nil {
			return fmt.Errorf("initializing %s: %w", FavoritesFile, err)
		}
	}
	return nil
}

// Load reads both databases independently. Missing files are empty; files
// that fail to open, carry the wrong format, or hold invalid rows are
// reported as *types.PersistenceError. Load never creates files.
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

// openExisting opens path for reading and verifies its format marker.
// It returns (nil, nil) when the file does not exist.
func openExisting(path, format string) (*sql.DB, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if err := checkFormat(db, format); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func checkFormat(db *sql.DB, format string) error {
	rows, err := db.Query("SELECT key, value FROM meta")
	if err != nil {
		return fmt.Errorf("reading meta: %w: %w", types.ErrForeignFormat, err)
	}
	defer rows.Close()

	meta := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return fmt.Errorf("scanning meta: %w", err)
		}
		meta[k] = v
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating meta: %w", err)
	}
	if meta[metaKeyFormat] != format || meta[metaKeyVersion] != formatVersion {
		return fmt.Errorf("meta %q v%q: %w", meta[metaKeyFormat], meta[metaKeyVersion], types.ErrForeignFormat)
	}
	return nil
}

func (g *Gateway) loadRecipes() ([]*types.Recipe, error) {
	db, err := openExisting(g.RecipesPath(), recipesFormat)
	if err != nil || db == nil {
		return nil, err
	}
	defer db.Close()

	rows, err := db.Query("SELECT recipe_id, name, category, ingredients, steps FROM recipes ORDER BY ordinal")
	if err != nil {
		return nil, fmt.Errorf("querying recipes: %w", err)
	}
	defer rows.Close()

	var recipes []*types.Recipe
	for rows.Next() {
		r, err := hydrateRecipe(rows)
		if err != nil {
			return nil, err
		}
		recipes = append(recipes, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating recipes: %w", err)
	}
	return recipes, nil
}

// hydrateRecipe converts a row into a validated Recipe.
func hydrateRecipe(rows *sql.Rows) (*types.Recipe, error) {
	var (
		r           types.Recipe
		ingredients string
	)
	if err := rows.Scan(&r.RecipeID, &r.Name, &r.Category, &ingredients, &r.Steps); err != nil {
		return nil, fmt.Errorf("scanning recipe: %w", err)
	}
	if err := json.Unmarshal([]byte(ingredients), &r.Ingredients); err != nil {
		return nil, fmt.Errorf("recipe %s ingredients: %w", r.RecipeID, types.ErrMalformedEntry)
	}
	if err := r.Validate(); err != nil {
		return nil, fmt.Errorf("recipe %s: %w: %w", r.RecipeID, types.ErrMalformedEntry, err)
	}
	return &r, nil
}

func (g *Gateway) loadFavorites() (types.FavoriteSet, error) {
	favorites := types.FavoriteSet{}
	db, err := openExisting(g.FavoritesPath(), favoritesFormat)
	if err != nil {
		return nil, err
	}
	if db == nil {
		return favorites, nil
	}
	defer db.Close()

	rows, err := db.Query("SELECT recipe_id FROM favorites")
	if err != nil {
		return nil, fmt.Errorf("querying favorites: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning favorite: %w", err)
		}
		if id == "" {
			return nil, fmt.Errorf("empty favorite id: %w", types.ErrMalformedEntry)
		}
		favorites.Add(id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating favorites: %w", err)
	}
	return favorites, nil
}

// Save rewrites both databases. Both writes are attempted; failures are
// joined.
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
	return replaceDB(g.RecipesPath(), recipesFormat, recipesSchema, func(tx *sql.Tx) error {
		stmt, err := tx.Prepare("INSERT INTO recipes (recipe_id, ordinal, name, category, ingredients, steps) VALUES (?, ?, ?, ?, ?, ?)")
		if err != nil {
			return fmt.Errorf("preparing insert: %w", err)
		}
		defer stmt.Close()

		for i, r := range recipes {
			ingredients, err := json.Marshal(r.Ingredients)
			if err != nil {
				return fmt.Errorf("encoding ingredients for %s: %w", r.RecipeID, err)
			}
			if _, err := stmt.Exec(r.RecipeID, i, r.Name, r.Category, string(ingredients), r.Steps); err != nil {
				return fmt.Errorf("inserting recipe %s: %w", r.RecipeID, err)
			}
		}
		return nil
	})
}

func (g *Gateway) saveFavorites(favorites types.FavoriteSet) error {
	return replaceDB(g.FavoritesPath(), favoritesFormat, favoritesSchema, func(tx *sql.Tx) error {
		stmt, err := tx.Prepare("INSERT INTO favorites (recipe_id) VALUES (?)")
		if err != nil {
			return fmt.Errorf("preparing insert: %w", err)
		}
		defer stmt.Close()

		for _, id := range favorites.IDs() {
			if _, err := stmt.Exec(id); err != nil {
				return fmt.Errorf("inserting favorite %s: %w", id, err)
			}
		}
		return nil
	})
}

// replaceDB builds a fresh database next to path, fills it inside one
// transaction, closes it, and renames it over path.
func replaceDB(path, format string, schema []string, fill func(*sql.Tx) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".db-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := buildDB(tmpName, format, schema, fill); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

func buildDB(path, format string, schema []string, fill func(*sql.Tx) error) (err error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer func() {
		if cerr := db.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing %s: %w", path, cerr)
		}
	}()

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, ddl := range schema {
		if _, err := tx.Exec(ddl); err != nil {
			return fmt.Errorf("creating schema: %w", err)
		}
	}
	if _, err := tx.Exec("INSERT INTO meta (key, value) VALUES (?, ?), (?, ?)",
		metaKeyFormat, format, metaKeyVersion, formatVersion); err != nil {
		return fmt.Errorf("writing meta: %w", err)
	}
	if err := fill(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing: %w", err)
	}
	return nil
}
