package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ikorchynskyi/opsworks-curator/internal/curator"
	"github.com/ikorchynskyi/opsworks-curator/internal/types"
)

var configure = writeCommand{command: types.Command{Name: curator.CommandNameConfigure}}

// configureCmd represents the configure command
var configureCmd = &cobra.Command{
	Use:   "configure",
	Short: "Run the configure lifecycle event on the filtered stacks",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return configure.run(cmd)
	},
}

func init() {
	addWriteFlags(configureCmd, &configure, true)
	rootCmd.AddCommand(configureCmd)
}
