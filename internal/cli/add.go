package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/recipebox/pkg/types"
)

// recipeFlags are the field flags shared by add and edit.
type recipeFlags struct {
	name            string
	category        string
	ingredients     []string
	ingredientsFile string
	steps           string
}

func (f *recipeFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.name, "name", "", "recipe name")
	cmd.Flags().StringVar(&f.category, "category", "", "category ("+strings.Join(types.Categories(), ", ")+")")
	cmd.Flags().StringArrayVarP(&f.ingredients, "ingredient", "i", nil, "ingredient (repeatable, kept in order)")
	cmd.Flags().StringVar(&f.ingredientsFile, "ingredients-file", "", "file with one ingredient per line (- for stdin)")
	cmd.Flags().StringVar(&f.steps, "steps", "", "preparation steps")
}

// ingredientList collects --ingredient values followed by the lines of
// --ingredients-file, trimmed.
func (f *recipeFlags) ingredientList(cmd *cobra.Command) ([]string, error) {
	out := trimAll(f.ingredients)
	if f.ingredientsFile != "" {
		lines, err := readIngredientsFile(cmd, f.ingredientsFile)
		if err != nil {
			return nil, err
		}
		out = append(out, lines...)
	}
	return out, nil
}

func newAddCmd(a *app) *cobra.Command {
	var f recipeFlags
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a recipe",
		Long: `Add a recipe to the catalog. Every field is required.

Example:
  recipebox add --name "Pancakes" --category Breakfast \
    -i "2 cups flour" -i "2 eggs" -i "1 cup milk" \
    --steps "Whisk, rest 10 minutes, fry."`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			ingredients, err := f.ingredientList(cmd)
			if err != nil {
				return err
			}
			fields := types.Fields{
				Name:        strings.TrimSpace(f.name),
				Category:    strings.TrimSpace(f.category),
				Ingredients: ingredients,
				Steps:       strings.TrimSpace(f.steps),
			}
			// Validate before opening storage.
			if err := fields.Validate(); err != nil {
				return err
			}

			st, err := a.openStore(cmd)
			if err != nil {
				return err
			}
			defer closeStore(st, &err)

			r, err := st.Create(fields)
			if err != nil {
				return notSaved(err)
			}
			if a.jsonMode {
				return writeJSON(cmd.OutOrStdout(), viewOf(st, r))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added recipe %s: %s\n", r.RecipeID, r.Name)
			return nil
		},
	}
	f.register(cmd)
	return cmd
}
