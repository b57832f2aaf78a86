package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/recipebox/pkg/recipebox"
	"github.com/mesh-intelligence/recipebox/pkg/types"
)

const modulePath = "github.com/mesh-intelligence/recipebox"

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the recipebox version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "recipebox v%s\nmodule: %s\n", recipebox.Version, modulePath)
			return nil
		},
	}
}

func newCategoriesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List the categories accepted by add, edit, and list",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			selectors := types.Selectors()
			if a.jsonMode {
				return writeJSON(cmd.OutOrStdout(), selectors)
			}
			fmt.Fprintln(cmd.OutOrStdout(), strings.Join(selectors, "\n"))
			return nil
		},
	}
}
