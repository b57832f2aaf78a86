package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newEditCmd(a *app) *cobra.Command {
	var f recipeFlags
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit a recipe",
		Long: `Edit the recipe with the given id. Only the fields whose flags are given
change; the rest keep their current values. Passing any --ingredient or
--ingredients-file replaces the whole ingredient list.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			st, err := a.openStore(cmd)
			if err != nil {
				return err
			}
			defer closeStore(st, &err)

			current, err := lookup(st, args[0])
			if err != nil {
				return err
			}
			id := current.RecipeID

			fields := current.Fields()
			flags := cmd.Flags()
			if flags.Changed("name") {
				fields.Name = strings.TrimSpace(f.name)
			}
			if flags.Changed("category") {
				fields.Category = strings.TrimSpace(f.category)
			}
			if flags.Changed("ingredient") || flags.Changed("ingredients-file") {
				if fields.Ingredients, err = f.ingredientList(cmd); err != nil {
					return err
				}
			}
			if flags.Changed("steps") {
				fields.Steps = strings.TrimSpace(f.steps)
			}

			if err := st.Update(id, fields); err != nil {
				return notSaved(err)
			}
			updated, err := st.Get(id)
			if err != nil {
				return err
			}
			if a.jsonMode {
				return writeJSON(cmd.OutOrStdout(), viewOf(st, updated))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated recipe %s: %s\n", updated.RecipeID, updated.Name)
			return nil
		},
	}
	f.register(cmd)
	return cmd
}
