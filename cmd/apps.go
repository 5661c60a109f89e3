package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ikorchynskyi/opsworks-curator/internal/render"
)

// appsCmd represents the apps command
var appsCmd = &cobra.Command{
	Use:   "apps",
	Short: "List apps per stack",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		expressions, err := initClients(ctx)
		if err != nil {
			return err
		}

		// layers are fetched so that layer filters select stacks
		stacks, err := loadStacks(ctx, expressions, []stage{inventoryClient.FetchLayers, inventoryClient.FetchApps}, nil)
		if err != nil {
			return err
		}
		return output(cmd.OutOrStdout(), stacks, render.TreeOptions{Apps: true})
	},
}

func init() {
	rootCmd.AddCommand(appsCmd)
}
