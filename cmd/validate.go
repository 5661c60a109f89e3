package cmd

import (
	"github.com/k0kubun/pp/v3"
	"github.com/spf13/cobra"

	"github.com/ikorchynskyi/opsworks-curator/internal/filter"
)

// validateCmd represents the validate command
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration and filters without calling AWS",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		expressions, err := filter.Parse(filter.Split(filterFlag))
		if err != nil {
			return err
		}

		pp.Printf("Configuration: %v\n", *cfg)
		pp.Printf("Filters: %v\n", expressions)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
