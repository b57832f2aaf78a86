package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/recipebox/internal/store"
	"github.com/mesh-intelligence/recipebox/pkg/types"
)

const emptyListMessage = "No recipes found. Add your first recipe!"

func newListCmd(a *app) *cobra.Command {
	var search, category string
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List recipes",
		Long: `List recipes in the order they were added.

--search keeps recipes whose name, category, or any ingredient contains the
text, ignoring case. --category narrows to one category, or to "All" or
"Favorites".

Example:
  recipebox list
  recipebox list --category Dessert --search chocolate
  recipebox list --category Favorites --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			selector, err := types.ParseSelector(category)
			if err != nil {
				return fmt.Errorf("%w (valid: %s)", err, strings.Join(types.Selectors(), ", "))
			}

			st, err := a.openStore(cmd)
			if err != nil {
				return err
			}
			defer closeStore(st, &err)

			sess := store.NewSession(st)
			sess.SetSearch(search)
			visible, err := sess.SetSelector(selector)
			if err != nil {
				return err
			}

			if a.jsonMode {
				views := make([]recipeView, 0, len(visible))
				for _, r := range visible {
					views = append(views, viewOf(st, r))
				}
				return writeJSON(cmd.OutOrStdout(), views)
			}
			printRecipeTable(cmd.OutOrStdout(), st, visible)
			return nil
		},
	}
	cmd.Flags().StringVarP(&search, "search", "s", "", "case-insensitive text to match")
	cmd.Flags().StringVarP(&category, "category", "c", types.SelectorAll, "category, All, or Favorites")
	return cmd
}

// printRecipeTable prints one row per recipe: favorite star, short id,
// name, category, and ingredient summary.
func printRecipeTable(out io.Writer, st *store.Store, recipes []*types.Recipe) {
	if len(recipes) == 0 {
		fmt.Fprintln(out, emptyListMessage)
		return
	}

	var sb strings.Builder
	w := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, " \tID\tNAME\tCATEGORY\tINGREDIENTS")
	for _, r := range recipes {
		star := " "
		if st.IsFavorite(r.RecipeID) {
			star = "★"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", star, shortID(r.RecipeID), r.Name, r.Category, r.ShortIngredientSummary())
	}
	w.Flush()

	for line := range strings.SplitSeq(strings.TrimSuffix(sb.String(), "\n"), "\n") {
		fmt.Fprintln(out, strings.TrimRight(line, " "))
	}
	fmt.Fprintf(out, "Total: %d recipe(s)\n", len(recipes))
}

// shortIDLen is the length of the id suffix printed by list and accepted
// by lookup.
const shortIDLen = 8

// shortID keeps the tail of a UUID v7, whose leading characters encode the
// creation time and repeat across recipes made close together.
func shortID(id string) string {
	if len(id) <= shortIDLen {
		return id
	}
	return id[len(id)-shortIDLen:]
}
