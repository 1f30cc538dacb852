package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dealerflow/dealerflow/internal/contracts"
)

// scoreCmd represents the score command
var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score all universe assets for one date",
	Long: `Reads the date's feature rows and upserts instability scores.
Assets without a feature row for the date are skipped.

Example:
  go run ./cmd/dealerflow score --date 2026-08-28`,
	RunE: runScore,
}

var scoreDate string

func init() {
	rootCmd.AddCommand(scoreCmd)

	scoreCmd.Flags().StringVar(&scoreDate, "date", "", "trading date (YYYY-MM-DD, default today)")
}

func runScore(cmd *cobra.Command, args []string) error {
	asOf, err := parseDateFlag(scoreDate)
	if err != nil {
		return err
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := context.Background()
	dateStr := asOf.Format(contracts.DateLayout)

	PrintHeader("Scoring @ " + dateStr)

	summary, err := a.engine.ScoreDate(ctx, asOf, a.universe)
	if err != nil {
		return fmt.Errorf("score date %s: %w", dateStr, err)
	}

	scores, err := a.scores.GetByDate(ctx, asOf)
	if err != nil {
		return fmt.Errorf("fetch scores: %w", err)
	}

	for _, sc := range scores {
		fmt.Printf("  %-10s %-9s  index=%6.2f  regime=%-9s pressure=%s\n",
			sc.Symbol, sc.AssetType, sc.InstabilityIndex, sc.Regime, sc.Pressure)
	}

	PrintSeparator()
	PrintSuccess(fmt.Sprintf("Scored %d, skipped %d, failed %d", summary.Scored, summary.Skipped, summary.Failed))

	return nil
}
