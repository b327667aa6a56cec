// Package cmd - batch command
package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"quote-pricer/core/dataset"
	"quote-pricer/core/pricer"
	"quote-pricer/internal/config"
)

var batchFormat string

// batchCmd rates a whole batch file or directory of quote files
var batchCmd = &cobra.Command{
	Use:   "batch <file-or-dir>",
	Short: "Price a batch of quote records",
	Long: `Price every record of a columnar batch file (CSV, XLSX) or a
directory of individual JSON quote files. Records that fail keep their
error descriptor in the output; the batch itself never aborts.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Get()

		pctx, err := pricer.LoadContext(cfg)
		if err != nil {
			return err
		}

		table, err := dataset.Load(args[0])
		if err != nil {
			return err
		}
		if err := dataset.Validate(table, pctx.PrimaryKey()); err != nil {
			return err
		}

		result := pctx.PriceBatch(cmd.Context(), table)

		if batchFormat == "json" {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		}

		for _, out := range result.Outcomes {
			if out.Err != nil {
				fmt.Printf("%-12s ERROR  %s\n", out.RecordID, out.Err.Error())
				continue
			}
			fmt.Printf("%-12s %12s\n", out.RecordID, out.Premium.FinalPremium.StringFixed(2))
		}
		fmt.Printf("\n%d priced, %d failed of %d records\n",
			result.Succeeded, result.Failed, table.Len())
		return nil
	},
}

func init() {
	batchCmd.Flags().StringVar(&batchFormat, "format", "text", "output format (text, json)")
}
