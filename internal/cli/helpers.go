// Shared helpers for recipebox commands.
package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/recipebox/internal/jsonl"
	"github.com/mesh-intelligence/recipebox/internal/lockfile"
	"github.com/mesh-intelligence/recipebox/internal/sqlite"
	"github.com/mesh-intelligence/recipebox/internal/store"
	"github.com/mesh-intelligence/recipebox/pkg/types"
)

// backend is a Gateway that can also lay down empty blobs for init.
type backend interface {
	types.Gateway
	Init() error
}

func newBackend(cfg types.Config) (backend, error) {
	switch cfg.Backend {
	case types.BackendJSONL:
		return jsonl.NewGateway(cfg.DataDir), nil
	case types.BackendSQLite:
		return sqlite.NewGateway(cfg.DataDir), nil
	default:
		return nil, fmt.Errorf("%w: %q", types.ErrBackendUnknown, cfg.Backend)
	}
}

// openStore resolves configuration, locks the data directory, and loads the
// catalog. The caller must Close the returned Store. A blob that had to be
// reset on load is reported on stderr.
func (a *app) openStore(cmd *cobra.Command) (*store.Store, error) {
	cfg, err := a.resolveConfig()
	if err != nil {
		return nil, err
	}
	gw, err := newBackend(cfg)
	if err != nil {
		return nil, err
	}
	lock, err := lockfile.Acquire(cfg.DataDir)
	if err != nil {
		if errors.Is(err, lockfile.ErrLockBusy) {
			return nil, fmt.Errorf("%s: %w", cfg.DataDir, err)
		}
		return nil, systemError("lock data dir: %w", err)
	}

	st := store.Open(gw,
		store.WithLogger(a.logger),
		store.WithRecovery(cfg.RecoveryPolicy()),
		store.WithLock(lock),
	)
	if reset := st.Recovered(); len(reset) > 0 {
		fmt.Fprintf(cmd.ErrOrStderr(),
			"warning: stored %s could not be read and %s reset to empty\n",
			strings.Join(reset, " and "), pluralVerb(len(reset)))
	}
	return st, nil
}

func pluralVerb(n int) string {
	if n == 1 {
		return "was"
	}
	return "were"
}

// closeStore releases st, folding a release failure into err.
func closeStore(st *store.Store, err *error) {
	if cerr := st.Close(); cerr != nil && *err == nil {
		*err = systemError("release lock: %w", cerr)
	}
}

// notSaved wraps a failed flush so the user knows the change is lost.
func notSaved(err error) error {
	if errors.Is(err, types.ErrPersistence) {
		return fmt.Errorf("change was not saved: %w", err)
	}
	return err
}

// writeJSON writes v as indented JSON followed by a newline.
func writeJSON(w io.Writer, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return systemError("marshal JSON: %w", err)
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}

// recipeView is the JSON shape of a recipe together with its favorite flag.
type recipeView struct {
	*types.Recipe
	Favorite bool `json:"favorite"`
}

func viewOf(st *store.Store, r *types.Recipe) recipeView {
	return recipeView{Recipe: r, Favorite: st.IsFavorite(r.RecipeID)}
}

// readIngredientsFile reads one ingredient per line from path, or from
// stdin when path is "-".
func readIngredientsFile(cmd *cobra.Command, path string) ([]string, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read ingredients: %w", err)
	}
	return types.ParseIngredients(string(data)), nil
}

// trimAll trims every element and drops the blank ones.
func trimAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// errAmbiguousID reports a short id that matches more than one recipe.
var errAmbiguousID = errors.New("ambiguous recipe id")

// lookup finds a recipe by full id, or by an id suffix at least as long as
// the one printed by list.
func lookup(st *store.Store, ref string) (*types.Recipe, error) {
	if r, err := st.Get(ref); err == nil {
		return r, nil
	}
	var match *types.Recipe
	if len(ref) >= shortIDLen {
		for _, r := range st.Recipes() {
			if !strings.HasSuffix(r.RecipeID, ref) {
				continue
			}
			if match != nil {
				return nil, fmt.Errorf("%w: %q", errAmbiguousID, ref)
			}
			match = r
		}
	}
	if match == nil {
		return nil, &types.NotFoundError{ID: ref}
	}
	return match, nil
}
