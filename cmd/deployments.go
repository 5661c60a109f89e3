package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ikorchynskyi/opsworks-curator/internal/filter"
	"github.com/ikorchynskyi/opsworks-curator/internal/render"
)

var deploymentsLimit int

// deploymentsCmd represents the deployments command
var deploymentsCmd = &cobra.Command{
	Use:   "deployments",
	Short: "List the latest deployments per stack",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if deploymentsLimit < 0 {
			return fmt.Errorf("invalid number of deployments %d", deploymentsLimit)
		}

		ctx := cmd.Context()
		expressions, err := initClients(ctx)
		if err != nil {
			return err
		}
		if filter.HasLayerFilter(expressions) {
			logger.Warn("You specified a layer filter, deployments are per stack and not per layer. Fetching deployments for stacks that match your filters.")
		}

		stacks, err := loadStacks(ctx, expressions, []stage{inventoryClient.FetchLayers}, []stage{inventoryClient.FetchDeployments})
		if err != nil {
			return err
		}
		for i := range stacks {
			if len(stacks[i].Deployments) > deploymentsLimit {
				stacks[i].Deployments = stacks[i].Deployments[:deploymentsLimit]
			}
		}

		out := cmd.OutOrStdout()
		if outputFormat == render.FormatTable {
			render.DeploymentsTable(out, stacks, deploymentsLimit)
			return nil
		}
		return output(out, stacks, render.TreeOptions{Deployments: deploymentsLimit})
	},
}

func init() {
	deploymentsCmd.Flags().IntVarP(&deploymentsLimit, "number", "n", 5, "Number of deployments per stack")
	rootCmd.AddCommand(deploymentsCmd)
}
