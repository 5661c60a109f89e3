package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/ikorchynskyi/opsworks-curator/internal/curator"
	"github.com/ikorchynskyi/opsworks-curator/internal/types"
)

var recipes = writeCommand{command: types.Command{Name: curator.CommandNameExecuteRecipes}}

// recipesCmd represents the recipes command
var recipesCmd = &cobra.Command{
	Use:   "recipes <recipe1,recipe2>",
	Short: "Execute recipes on the filtered stacks",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		recipes.command.Recipes = strings.Split(args[0], ",")
		return recipes.run(cmd)
	},
}

func init() {
	addWriteFlags(recipesCmd, &recipes, true)
	rootCmd.AddCommand(recipesCmd)
}
