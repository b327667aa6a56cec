// Package cmd provides the CLI commands for quote-pricer.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"quote-pricer/internal/config"
	"quote-pricer/internal/logging"
)

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "quote-pricer",
	Short: "Compute insurance premiums from raw quote records",
	Long: `quote-pricer runs the load → transform → rate pipeline: raw quote
attributes are normalized through categorical indexing and continuous
banding, then a configurable rating plan composes table-driven factors
into a final premium with a full factor trace.

Examples:
  quote-pricer price quote.json
  quote-pricer batch ./data/batch/policies.csv
  quote-pricer validate`,
}

// Execute runs the CLI
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./quote-pricer.json)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")

	rootCmd.AddCommand(priceCmd)
	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(versionCmd)
}

func initConfig() {
	path := cfgFile
	if path == "" {
		path = "quote-pricer.json"
	}
	cfg, err := config.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	config.Set(cfg)

	if verbose {
		cfg.Logging.Level = "debug"
	}
	if err := logging.Initialize(cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logging: %v\n", err)
	}
}

// versionCmd prints version information
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("quote-pricer version 0.1.0")
	},
}
