package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dealerflow/dealerflow/internal/contracts"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full daily pipeline for one date",
	Long: `Runs feature extraction for every universe asset, the macro
snapshot, then scoring, in one pass. Failures are isolated per asset;
the run continues and reports everything that failed at the end.

Example:
  go run ./cmd/dealerflow run
  go run ./cmd/dealerflow run --date 2026-08-28`,
	RunE: runPipeline,
}

var runDate string

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVar(&runDate, "date", "", "trading date (YYYY-MM-DD, default today)")
}

func runPipeline(cmd *cobra.Command, args []string) error {
	asOf, err := parseDateFlag(runDate)
	if err != nil {
		return err
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	dateStr := asOf.Format(contracts.DateLayout)
	PrintHeader("Daily Pipeline @ " + dateStr)

	result, runErr := a.runner.Run(context.Background(), asOf)

	fmt.Printf("  Run ID          : %s\n", result.RunID)
	fmt.Printf("  Features OK     : %d\n", result.FeaturesOK)
	fmt.Printf("  Features failed : %d\n", result.FeaturesFailed)
	fmt.Printf("  Macro computed  : %t\n", result.MacroComputed)
	fmt.Printf("  Scored          : %d\n", result.Scoring.Scored)
	fmt.Printf("  Skipped         : %d\n", result.Scoring.Skipped)
	fmt.Printf("  Score failures  : %d\n", result.Scoring.Failed)
	PrintSeparator()

	if runErr != nil {
		PrintWarning("Pipeline completed with failures")
		return runErr
	}

	PrintSuccess("Pipeline completed")
	return nil
}
