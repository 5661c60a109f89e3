package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ikorchynskyi/opsworks-curator/internal/curator"
	"github.com/ikorchynskyi/opsworks-curator/internal/types"
)

var setup = writeCommand{command: types.Command{Name: curator.CommandNameSetup}}

// setupCmd represents the setup command
var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Run the setup lifecycle event on the filtered stacks",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return setup.run(cmd)
	},
}

func init() {
	addWriteFlags(setupCmd, &setup, true)
	rootCmd.AddCommand(setupCmd)
}
