package commands

import (
	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "dealerflow",
	Short: "Dealerflow - market instability scoring pipeline",
	Long: `Dealerflow CLI

Daily batch pipeline turning raw market observations (option chains,
futures curves, COT reports, FX rates) into per-asset instability
scores and a cross-asset macro state.

Usage:
  go run ./cmd/dealerflow [command]

Examples:
  go run ./cmd/dealerflow run --date 2026-08-28
  go run ./cmd/dealerflow features equity --date 2026-08-28
  go run ./cmd/dealerflow score --date 2026-08-28
  go run ./cmd/dealerflow state --date 2026-08-28
  go run ./cmd/dealerflow api
  go run ./cmd/dealerflow scheduler`,
}

// Execute runs the root command. Called once from main.
func Execute() error {
	return rootCmd.Execute()
}
