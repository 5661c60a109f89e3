package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ikorchynskyi/opsworks-curator/internal/render"
)

// stacksCmd represents the stacks command
var stacksCmd = &cobra.Command{
	Use:   "stacks",
	Short: "List stacks and their layers",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		expressions, err := initClients(ctx)
		if err != nil {
			return err
		}

		stacks, err := loadStacks(ctx, expressions, []stage{inventoryClient.FetchLayers}, nil)
		if err != nil {
			return err
		}
		return output(cmd.OutOrStdout(), stacks, render.TreeOptions{Layers: true})
	},
}

func init() {
	rootCmd.AddCommand(stacksCmd)
}
