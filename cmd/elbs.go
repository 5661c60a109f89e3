package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/ikorchynskyi/opsworks-curator/internal/inventory"
	"github.com/ikorchynskyi/opsworks-curator/internal/render"
	"github.com/ikorchynskyi/opsworks-curator/internal/types"
)

// elbsCmd represents the elbs command
var elbsCmd = &cobra.Command{
	Use:   "elbs",
	Short: "Inspect load balancers and the health of their instances",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		expressions, err := initClients(ctx)
		if err != nil {
			return err
		}

		match := func(ctx context.Context, stacks []types.Stack) ([]types.Stack, error) {
			return inventory.MatchLoadBalancerInstances(stacks), nil
		}
		stacks, err := loadStacks(ctx, expressions,
			[]stage{inventoryClient.FetchLayers},
			[]stage{inventoryClient.FetchLoadBalancers, inventoryClient.FetchInstances, match},
		)
		if err != nil {
			return err
		}
		return output(cmd.OutOrStdout(), stacks, render.TreeOptions{Layers: true, LoadBalancers: true})
	},
}

func init() {
	rootCmd.AddCommand(elbsCmd)
}
