package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ikorchynskyi/opsworks-curator/internal/render"
)

var instancesCSV bool
var instancesEC2 bool

// instancesCmd represents the instances command
var instancesCmd = &cobra.Command{
	Use:   "instances",
	Short: "List instances per stack and layer",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		expressions, err := initClients(ctx)
		if err != nil {
			return err
		}

		after := []stage{inventoryClient.FetchInstances}
		if instancesEC2 {
			after = append(after, inventoryClient.FetchEC2State)
		}
		stacks, err := loadStacks(ctx, expressions, []stage{inventoryClient.FetchLayers}, after)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		switch {
		case instancesCSV:
			return render.InstancesCSV(out, stacks)
		case outputFormat == render.FormatTable:
			render.InstancesTable(out, stacks)
			return nil
		}
		return output(out, stacks, render.TreeOptions{Layers: true, Instances: true})
	},
}

func init() {
	instancesCmd.Flags().BoolVarP(&instancesCSV, "csv", "c", false, "Print instances as CSV")
	instancesCmd.Flags().BoolVar(&instancesEC2, "ec2", false, "Include the EC2 instance state")
	rootCmd.AddCommand(instancesCmd)
}
