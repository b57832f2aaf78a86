// Package sqlite implements the SQLite Gateway for recipebox.
// The catalog lives in two database files, recipes.db and favorites.db, so
// the two blobs can be written and recovered independently.
package sqlite

// Schema DDL. Each file carries a meta table naming its format so a foreign
// database is rejected rather than misread.
const (
	createMeta = `CREATE TABLE meta (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL
);`

	createRecipes = `CREATE TABLE recipes (
    recipe_id TEXT PRIMARY KEY,
    ordinal INTEGER NOT NULL UNIQUE,
    name TEXT NOT NULL,
    category TEXT NOT NULL,
    ingredients TEXT NOT NULL,
    steps TEXT NOT NULL
);`

	createFavorites = `CREATE TABLE favorites (
    recipe_id TEXT PRIMARY KEY
);`
)

// Format markers stored in meta.
const (
	metaKeyFormat   = "format"
	metaKeyVersion  = "version"
	recipesFormat   = "recipebox/recipes"
	favoritesFormat = "recipebox/favorites"
	formatVersion   = "1"
)

// recipesSchema and favoritesSchema are executed on a fresh temp database.
var (
	recipesSchema   = []string{createMeta, createRecipes}
	favoritesSchema = []string{createMeta, createFavorites}
)
