// Package main is the entry point for the quote-pricer CLI.
package main

import (
	"os"

	"quote-pricer/cmd/cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
