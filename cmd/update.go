package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ikorchynskyi/opsworks-curator/internal/curator"
	"github.com/ikorchynskyi/opsworks-curator/internal/types"
)

var update = writeCommand{command: types.Command{Name: curator.CommandNameUpdateCustomCookbooks}}

// updateCmd represents the update command
var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update custom cookbooks on the filtered stacks",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return update.run(cmd)
	},
}

func init() {
	addWriteFlags(updateCmd, &update, false)
	rootCmd.AddCommand(updateCmd)
}
