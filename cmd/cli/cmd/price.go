// Package cmd - price command
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

var priceFormat string

// priceCmd rates a single quote file interactively
var priceCmd = &cobra.Command{
	Use:   "price <quote-file>",
	Short: "Price a single quote record",
	Long: `Price one quote from a JSON record file and print the premium
breakdown: base value, each factor with its running total, final premium.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Get()

		pctx, err := pricer.LoadContext(cfg)
		if err != nil {
			return err
		}

		table, err := dataset.LoadFile(args[0])
		if err != nil {
			return err
		}
		if table.Len() != 1 {
			return fmt.Errorf("%s holds %d records; price expects exactly one (use batch)", args[0], table.Len())
		}
		if err := dataset.Validate(table, pctx.PrimaryKey()); err != nil {
			return err
		}

		result, err := pctx.PriceQuote(table.Records[0])
		if err != nil {
			return err
		}

		if priceFormat == "json" {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		}

		printPremium(result)
		return nil
	},
}

func printPremium(result *pricer.QuoteResult) {
	p := result.Premium
	fmt.Printf("Record %s\n", p.RecordID)
	if p.BaseKey != "" {
		fmt.Printf("  base [%s]              %12s\n", p.BaseKey, p.Base.StringFixed(2))
	} else {
		fmt.Printf("  base                     %12s\n", p.Base.StringFixed(2))
	}
	for _, f := range p.Factors {
		marker := ""
		if f.Defaulted {
			marker = " (neutral)"
		}
		fmt.Printf("  %-8s %-12s %8s%s  -> %12s\n",
			f.Operation, f.Name, f.Value.String(), marker, f.RunningTotal.StringFixed(2))
	}
	fmt.Printf("  final premium            %12s\n", p.FinalPremium.StringFixed(2))
}

func init() {
	priceCmd.Flags().StringVar(&priceFormat, "format", "text", "output format (text, json)")
}
