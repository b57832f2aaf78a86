package cli

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var errYesRequired = errors.New("--yes is required with --json")

func newDeleteCmd(a *app) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a recipe",
		Long: `Delete the recipe with the given id. It is also removed from favorites.
Asks for confirmation unless --yes is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			if a.jsonMode && !yes {
				return errYesRequired
			}
			st, err := a.openStore(cmd)
			if err != nil {
				return err
			}
			defer closeStore(st, &err)

			r, err := lookup(st, args[0])
			if err != nil {
				return err
			}
			if !yes && !confirm(cmd, fmt.Sprintf("Delete %q?", r.Name)) {
				fmt.Fprintln(cmd.OutOrStdout(), "Canceled.")
				return nil
			}
			if err := st.Delete(r.RecipeID); err != nil {
				return notSaved(err)
			}
			if a.jsonMode {
				return writeJSON(cmd.OutOrStdout(), map[string]string{"deleted": r.RecipeID})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted recipe %s: %s\n", r.RecipeID, r.Name)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

// confirm prints question and reads one line from the command's input.
// Only "y" or "yes" confirms; EOF declines.
func confirm(cmd *cobra.Command, question string) bool {
	fmt.Fprintf(cmd.OutOrStdout(), "%s [y/N]: ", question)
	line, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}

func newFavoriteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "favorite <id>",
		Aliases: []string{"fav"},
		Short:   "Toggle a recipe's favorite mark",
		Args:    cobra.ExactArgs(1),
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
			favorite, err := st.ToggleFavorite(r.RecipeID)
			if err != nil {
				return notSaved(err)
			}
			if a.jsonMode {
				return writeJSON(cmd.OutOrStdout(), recipeView{Recipe: r, Favorite: favorite})
			}
			if favorite {
				fmt.Fprintf(cmd.OutOrStdout(), "★ %s is now a favorite\n", r.Name)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "%s is no longer a favorite\n", r.Name)
			}
			return nil
		},
	}
}
