package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/recipebox/internal/jsonl"
	"github.com/mesh-intelligence/recipebox/internal/lockfile"
	"github.com/mesh-intelligence/recipebox/internal/sqlite"
	"github.com/mesh-intelligence/recipebox/pkg/recipebox"
	"github.com/mesh-intelligence/recipebox/pkg/types"
)

// env is an isolated pair of config and data directories.
type env struct {
	t         *testing.T
	configDir string
	dataDir   string
}

func newEnv(t *testing.T) *env {
	t.Helper()
	t.Setenv("RECIPEBOX_CONFIG_DIR", "")
	t.Setenv("RECIPEBOX_DATA_DIR", "")
	root := t.TempDir()
	return &env{
		t:         t,
		configDir: filepath.Join(root, "config"),
		dataDir:   filepath.Join(root, "data"),
	}
}

// run executes the CLI with the env's directories and returns stdout,
// stderr, and the exit code.
func (e *env) run(args ...string) (string, string, int) {
	e.t.Helper()
	var stdout, stderr bytes.Buffer
	full := append([]string{"--config-dir", e.configDir, "--data-dir", e.dataDir}, args...)
	code := Run(full, &stdout, &stderr)
	return stdout.String(), stderr.String(), code
}

// runWithInput is run with stdin replaced by input.
func (e *env) runWithInput(input string, args ...string) (string, string, int) {
	e.t.Helper()
	var stdout, stderr bytes.Buffer
	root := NewRootCmd()
	root.SetArgs(append([]string{"--config-dir", e.configDir, "--data-dir", e.dataDir}, args...))
	root.SetIn(strings.NewReader(input))
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	if err := root.Execute(); err != nil {
		stderr.WriteString(err.Error())
		return stdout.String(), stderr.String(), exitCode(err)
	}
	return stdout.String(), stderr.String(), exitSuccess
}

// mustRun fails the test unless the command exits 0.
func (e *env) mustRun(args ...string) string {
	e.t.Helper()
	out, errOut, code := e.run(args...)
	require.Equal(e.t, exitSuccess, code, "args %v\nstderr: %s", args, errOut)
	return out
}

type recipeOut struct {
	RecipeID    string   `json:"recipe_id"`
	Name        string   `json:"name"`
	Category    string   `json:"category"`
	Ingredients []string `json:"ingredients"`
	Steps       string   `json:"steps"`
	Favorite    bool     `json:"favorite"`
}

// add creates a recipe through the CLI and returns its id.
func (e *env) add(name, category string, ingredients ...string) string {
	e.t.Helper()
	args := []string{"--json", "add", "--name", name, "--category", category, "--steps", "Cook it."}
	for _, ing := range ingredients {
		args = append(args, "--ingredient", ing)
	}
	var r recipeOut
	require.NoError(e.t, json.Unmarshal([]byte(e.mustRun(args...)), &r))
	require.NotEmpty(e.t, r.RecipeID)
	return r.RecipeID
}

func (e *env) listJSON(args ...string) []recipeOut {
	e.t.Helper()
	var out []recipeOut
	require.NoError(e.t, json.Unmarshal([]byte(e.mustRun(append([]string{"--json", "list"}, args...)...)), &out))
	return out
}

func namesOf(recipes []recipeOut) []string {
	out := make([]string, 0, len(recipes))
	for _, r := range recipes {
		out = append(out, r.Name)
	}
	return out
}

func TestVersion(t *testing.T) {
	e := newEnv(t)
	out := e.mustRun("version")
	assert.Equal(t, "recipebox v"+recipebox.Version+"\nmodule: "+modulePath+"\n", out)
}

func TestInit(t *testing.T) {
	t.Run("jsonl default", func(t *testing.T) {
		e := newEnv(t)
		out := e.mustRun("init")
		assert.Contains(t, out, "jsonl backend")

		assert.FileExists(t, filepath.Join(e.configDir, "config.yaml"))
		assert.FileExists(t, filepath.Join(e.dataDir, jsonl.RecipesFile))
		assert.FileExists(t, filepath.Join(e.dataDir, jsonl.FavoritesFile))

		// Idempotent.
		e.mustRun("init")
	})

	t.Run("sqlite backend is recorded in config", func(t *testing.T) {
		e := newEnv(t)
		e.mustRun("init", "--backend", "sqlite")
		assert.FileExists(t, filepath.Join(e.dataDir, sqlite.RecipesFile))
		assert.FileExists(t, filepath.Join(e.dataDir, sqlite.FavoritesFile))

		data, err := os.ReadFile(filepath.Join(e.configDir, "config.yaml"))
		require.NoError(t, err)
		assert.Contains(t, string(data), "backend: sqlite")
		assert.Contains(t, string(data), "data_dir: "+e.dataDir)
	})

	t.Run("unknown backend", func(t *testing.T) {
		e := newEnv(t)
		_, stderr, code := e.run("init", "--backend", "csv")
		assert.Equal(t, exitUserError, code)
		assert.Contains(t, stderr, "unknown backend")
	})
}

func TestAddListShow(t *testing.T) {
	e := newEnv(t)
	e.mustRun("init")

	out := e.mustRun("list")
	assert.Equal(t, emptyListMessage+"\n", out)

	cake := e.add("Chocolate Cake", "Dessert", "Flour", "Sugar", "Cocoa", "Eggs")
	e.add("Omelette", "Breakfast", "Eggs", "Butter")
	e.add("Mocha", "Beverage", "Espresso", "Dark chocolate")

	out = e.mustRun("list")
	assert.Contains(t, out, "Chocolate Cake")
	assert.Contains(t, out, "Flour, Sugar, Cocoa (+1 more)")
	assert.Contains(t, out, "Total: 3 recipe(s)")

	assert.Equal(t, []string{"Chocolate Cake", "Mocha"}, namesOf(e.listJSON("--search", "CHOC")))
	assert.Equal(t, []string{"Omelette"}, namesOf(e.listJSON("--category", "Breakfast")))
	assert.Equal(t, []string{"Chocolate Cake", "Omelette"}, namesOf(e.listJSON("--search", "eggs", "--category", "All")))
	assert.Empty(t, e.listJSON("--category", "Favorites"))

	out = e.mustRun("list", "--search", "zucchini")
	assert.Equal(t, emptyListMessage+"\n", out)

	out = e.mustRun("show", cake)
	assert.Contains(t, out, "Chocolate Cake\n")
	assert.Contains(t, out, "Category: Dessert")
	assert.Contains(t, out, "  • Cocoa\n")
	assert.Contains(t, out, "Cook it.")

	// The short id printed by list resolves too.
	out = e.mustRun("show", cake[len(cake)-8:])
	assert.Contains(t, out, cake)
}

func TestAddValidation(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"blank name", []string{"--name", "  ", "--category", "Lunch", "-i", "x", "--steps", "s"}, "name"},
		{"bad category", []string{"--name", "Soup", "--category", "Brunch", "-i", "x", "--steps", "s"}, "category"},
		{"no ingredients", []string{"--name", "Soup", "--category", "Lunch", "--steps", "s"}, "ingredients"},
		{"blank ingredients only", []string{"--name", "Soup", "--category", "Lunch", "-i", " ", "--steps", "s"}, "ingredients"},
		{"no steps", []string{"--name", "Soup", "--category", "Lunch", "-i", "x"}, "steps"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEnv(t)
			_, stderr, code := e.run(append([]string{"add"}, tt.args...)...)
			assert.Equal(t, exitUserError, code)
			assert.Contains(t, stderr, tt.wantErr)
			assert.NoFileExists(t, filepath.Join(e.dataDir, jsonl.RecipesFile), "nothing is written")
		})
	}
}

func TestAddIngredientsFile(t *testing.T) {
	e := newEnv(t)
	path := filepath.Join(t.TempDir(), "ingredients.txt")
	require.NoError(t, os.WriteFile(path, []byte("  rice \n\nnori\n salmon\n"), 0o644))

	e.mustRun("add", "--name", "Sushi", "--category", "Dinner", "-i", "soy sauce", "--ingredients-file", path, "--steps", "Roll.")

	got := e.listJSON()
	require.Len(t, got, 1)
	assert.Equal(t, []string{"soy sauce", "rice", "nori", "salmon"}, got[0].Ingredients)
}

func TestEditKeepsUnspecifiedFields(t *testing.T) {
	e := newEnv(t)
	id := e.add("Pancakes", "Breakfast", "Flour", "Milk")

	e.mustRun("edit", id, "--name", "  Buttermilk Pancakes ")
	got := e.listJSON()
	require.Len(t, got, 1)
	assert.Equal(t, recipeOut{
		RecipeID:    id,
		Name:        "Buttermilk Pancakes",
		Category:    "Breakfast",
		Ingredients: []string{"Flour", "Milk"},
		Steps:       "Cook it.",
	}, got[0])

	e.mustRun("edit", id, "-i", "Flour", "-i", "Buttermilk", "--category", "Dessert")
	got = e.listJSON()
	assert.Equal(t, []string{"Flour", "Buttermilk"}, got[0].Ingredients)
	assert.Equal(t, "Dessert", got[0].Category)
	assert.Equal(t, "Buttermilk Pancakes", got[0].Name)

	_, stderr, code := e.run("edit", id, "--steps", "")
	assert.Equal(t, exitUserError, code)
	assert.Contains(t, stderr, "steps")
	assert.Equal(t, "Cook it.", e.listJSON()[0].Steps)
}

func TestFavoriteAndDelete(t *testing.T) {
	e := newEnv(t)
	soup := e.add("Soup", "Lunch", "Water")
	e.add("Salad", "Lunch", "Lettuce")

	out := e.mustRun("favorite", soup)
	assert.Equal(t, "★ Soup is now a favorite\n", out)
	assert.Equal(t, []string{"Soup"}, namesOf(e.listJSON("--category", "Favorites")))
	assert.True(t, e.listJSON("--search", "soup")[0].Favorite)
	assert.Contains(t, e.mustRun("list"), "★")

	out = e.mustRun("favorite", soup)
	assert.Equal(t, "Soup is no longer a favorite\n", out)
	assert.Empty(t, e.listJSON("--category", "Favorites"))

	e.mustRun("favorite", soup)
	out = e.mustRun("delete", "--yes", soup)
	assert.Contains(t, out, "Deleted recipe "+soup)
	assert.Equal(t, []string{"Salad"}, namesOf(e.listJSON()))
	assert.Empty(t, e.listJSON("--category", "Favorites"))

	_, stderr, code := e.run("favorite", soup)
	assert.Equal(t, exitUserError, code)
	assert.Contains(t, stderr, "not found")
}

func TestDeleteConfirmation(t *testing.T) {
	e := newEnv(t)
	soup := e.add("Soup", "Lunch", "Water")

	for _, input := range []string{"", "n\n", "nope\n"} {
		out, _, code := e.runWithInput(input, "delete", soup)
		assert.Equal(t, exitSuccess, code, "input %q", input)
		assert.Contains(t, out, `Delete "Soup"? [y/N]: `)
		assert.Contains(t, out, "Canceled.")
	}
	assert.Equal(t, []string{"Soup"}, namesOf(e.listJSON()))

	_, stderr, code := e.run("--json", "delete", soup)
	assert.Equal(t, exitUserError, code)
	assert.Contains(t, stderr, "--yes is required")
	assert.Equal(t, []string{"Soup"}, namesOf(e.listJSON()))

	out, _, code := e.runWithInput("Y\n", "delete", soup)
	assert.Equal(t, exitSuccess, code)
	assert.Contains(t, out, "Deleted recipe "+soup)
	assert.Empty(t, e.listJSON())

	salad := e.add("Salad", "Lunch", "Lettuce")
	out = e.mustRun("--json", "delete", "-y", shortID(salad))
	assert.JSONEq(t, `{"deleted":"`+salad+`"}`, out)
	assert.Empty(t, e.listJSON())
}

func TestShortIDLookup(t *testing.T) {
	e := newEnv(t)
	soup := e.add("Soup", "Lunch", "Water")

	out := e.mustRun("show", shortID(soup))
	assert.Contains(t, out, soup)

	// Suffixes shorter than the one list prints are not accepted.
	for _, ref := range []string{"", soup[len(soup)-1:], soup[len(soup)-7:]} {
		_, stderr, code := e.run("show", ref)
		assert.Equal(t, exitUserError, code, "ref %q", ref)
		assert.Contains(t, stderr, "not found", "ref %q", ref)
	}
	_, _, code := e.run("delete", "--yes", soup[len(soup)-1:])
	assert.Equal(t, exitUserError, code)
	assert.Equal(t, []string{"Soup"}, namesOf(e.listJSON()))
}

func TestAmbiguousShortID(t *testing.T) {
	e := newEnv(t)
	e.mustRun("init")

	first := &types.Recipe{RecipeID: "0190a1b2-0000-7000-8000-0000cafef00d", Name: "First",
		Category: types.CategoryLunch, Ingredients: []string{"x"}, Steps: "Cook."}
	second := &types.Recipe{RecipeID: "0190c3d4-0000-7000-8000-0000cafef00d", Name: "Second",
		Category: types.CategoryLunch, Ingredients: []string{"y"}, Steps: "Cook."}
	require.NoError(t, jsonl.NewGateway(e.dataDir).Save(types.Snapshot{
		Recipes:   []*types.Recipe{first, second},
		Favorites: types.NewFavoriteSet(),
	}))

	for _, args := range [][]string{
		{"show", "cafef00d"},
		{"favorite", "cafef00d"},
		{"delete", "--yes", "cafef00d"},
	} {
		_, stderr, code := e.run(args...)
		assert.Equal(t, exitUserError, code, "args %v", args)
		assert.Contains(t, stderr, "ambiguous", "args %v", args)
	}
	assert.Equal(t, []string{"First", "Second"}, namesOf(e.listJSON()))

	out := e.mustRun("show", second.RecipeID)
	assert.Contains(t, out, "Second")
}

func TestNotFoundAndBadArgs(t *testing.T) {
	e := newEnv(t)
	e.add("Soup", "Lunch", "Water")

	for _, args := range [][]string{
		{"show", "nope"},
		{"edit", "nope", "--name", "x"},
		{"delete", "nope"},
		{"delete", "--yes", "nope"},
		{"delete"},
		{"list", "--category", "Brunch"},
		{"bogus"},
	} {
		_, _, code := e.run(args...)
		assert.Equal(t, exitUserError, code, "args %v", args)
	}
}

func TestCategories(t *testing.T) {
	e := newEnv(t)
	out := e.mustRun("categories")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Equal(t, "All", lines[0])
	assert.Equal(t, "Favorites", lines[len(lines)-1])
	assert.Contains(t, lines, "Dessert")
}

func TestSQLiteBackend(t *testing.T) {
	e := newEnv(t)
	e.mustRun("init", "--backend", "sqlite")

	a := e.add("Tacos", "Dinner", "Tortillas", "Beans")
	e.add("Lemonade", "Beverage", "Lemons")
	e.mustRun("favorite", a)

	got := e.listJSON()
	assert.Equal(t, []string{"Tacos", "Lemonade"}, namesOf(got))
	assert.True(t, got[0].Favorite)
	assert.NoFileExists(t, filepath.Join(e.dataDir, jsonl.RecipesFile))
}

func TestCorruptFavoritesResetsCatalog(t *testing.T) {
	e := newEnv(t)
	e.add("Soup", "Lunch", "Water")
	require.NoError(t, os.WriteFile(filepath.Join(e.dataDir, jsonl.FavoritesFile), []byte("not json\n"), 0o644))

	out, stderr, code := e.run("list")
	assert.Equal(t, exitSuccess, code)
	assert.Equal(t, emptyListMessage+"\n", out)
	assert.Contains(t, stderr, "reset to empty")
	assert.Contains(t, stderr, "load_recovered")
}

func TestIndependentRecoveryKeepsRecipes(t *testing.T) {
	e := newEnv(t)
	require.NoError(t, os.MkdirAll(e.configDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(e.configDir, "config.yaml"),
		[]byte("backend: jsonl\nrecovery: independent\n"), 0o644))

	e.add("Soup", "Lunch", "Water")
	require.NoError(t, os.WriteFile(filepath.Join(e.dataDir, jsonl.FavoritesFile), []byte("not json\n"), 0o644))

	assert.Equal(t, []string{"Soup"}, namesOf(e.listJSON()))
}

func TestInvalidConfig(t *testing.T) {
	e := newEnv(t)
	require.NoError(t, os.MkdirAll(e.configDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(e.configDir, "config.yaml"), []byte("backend: postgres\n"), 0o644))

	_, stderr, code := e.run("list")
	assert.Equal(t, exitUserError, code)
	assert.Contains(t, stderr, "unknown backend")
}

func TestSaveFailureExitsWithSystemError(t *testing.T) {
	e := newEnv(t)
	e.mustRun("init")

	// A non-empty directory where favorites.jsonl should be makes every
	// favorites write fail.
	favPath := filepath.Join(e.dataDir, jsonl.FavoritesFile)
	require.NoError(t, os.Remove(favPath))
	require.NoError(t, os.MkdirAll(filepath.Join(favPath, "blocker"), 0o755))

	_, stderr, code := e.run("add", "--name", "Soup", "--category", "Lunch", "-i", "Water", "--steps", "Boil.")
	assert.Equal(t, exitSysError, code)
	assert.Contains(t, stderr, "change was not saved")
}

func TestLockBusy(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("advisory locks are not enforced on windows")
	}
	e := newEnv(t)
	lock, err := lockfile.Acquire(e.dataDir)
	require.NoError(t, err)
	defer lock.Release()

	_, stderr, code := e.run("list")
	assert.Equal(t, exitSysError, code)
	assert.Contains(t, stderr, "locked")
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, exitSuccess, exitCode(nil))
	assert.Equal(t, exitSysError, exitCode(systemError("boom")))
	assert.Equal(t, exitSysError, exitCode(lockfile.ErrLockBusy))
	assert.Equal(t, exitUserError, exitCode(errAmbiguousID))
}
