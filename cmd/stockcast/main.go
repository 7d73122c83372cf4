package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

var noColor bool

var rootCmd = &cobra.Command{
	Use:     "stockcast",
	Short:   "Retail demand, inventory, and pricing decision service",
	Version: version,
	Long: `stockcast runs a decision pipeline over stored retail records: it asks a
prediction service for a demand forecast, a reorder recommendation, and a
pricing recommendation, and persists the combined outcome as decision
snapshots.`,
}

func main() {
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(stopCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(cycleCmd)
	rootCmd.AddCommand(snapshotsCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(configCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
