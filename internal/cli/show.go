package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

func newShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a recipe in full",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			st, err := a.openStore(cmd)
			if err != nil {
				return err
			}
			defer closeStore(st, &err)

			r, err := lookup(st, args[0])
			if err != nil {
				return err
			}
			view := viewOf(st, r)
			if a.jsonMode {
				return writeJSON(cmd.OutOrStdout(), view)
			}
			printRecipe(cmd.OutOrStdout(), view)
			return nil
		},
	}
}

func printRecipe(w io.Writer, v recipeView) {
	title := v.Name
	if v.Favorite {
		title = "★ " + title
	}
	fmt.Fprintln(w, title)
	fmt.Fprintf(w, "ID:       %s\n", v.RecipeID)
	fmt.Fprintf(w, "Category: %s\n", v.Category)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Ingredients:")
	for _, ing := range v.Ingredients {
		fmt.Fprintf(w, "  • %s\n", ing)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Steps:")
	fmt.Fprintln(w, v.Steps)
}
