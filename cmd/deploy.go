package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ikorchynskyi/opsworks-curator/internal/curator"
	"github.com/ikorchynskyi/opsworks-curator/internal/types"
)

var deploy = writeCommand{command: types.Command{Name: curator.CommandNameDeploy}, needsApps: true}

// deployCmd represents the deploy command
var deployCmd = &cobra.Command{
	Use:   "deploy <app>",
	Short: "Deploy an app on the filtered stacks",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		deploy.command.App = args[0]
		return deploy.run(cmd)
	},
}

func init() {
	addWriteFlags(deployCmd, &deploy, true)
	rootCmd.AddCommand(deployCmd)
}
