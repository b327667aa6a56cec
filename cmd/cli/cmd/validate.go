// Package cmd - validate command
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"quote-pricer/core/pricer"
	"quote-pricer/internal/config"
)

// validateCmd loads every configuration artifact and reports defects
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the rating configuration",
	Long: `Load the category mapping, band specification, rating plan and
rating tables, running every load-time check: band contiguity and
overlap, plan/table binding, operation names. Exits non-zero on the
first configuration error.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Get()

		if _, err := pricer.LoadContext(cfg); err != nil {
			return err
		}

		fmt.Println("configuration OK")
		return nil
	},
}
