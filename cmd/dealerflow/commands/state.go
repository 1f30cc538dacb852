package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dealerflow/dealerflow/internal/macro"
)

// stateCmd represents the state command
var stateCmd = &cobra.Command{
	Use:   "state",
	Short: "Print the macro state for one date as JSON",
	Long: `Assembles the date's score rows and macro feature row into the
cross-asset state and prints it as JSON. Assets without a score for
the date appear as PENDING.

Example:
  go run ./cmd/dealerflow state --date 2026-08-28`,
	RunE: runState,
}

var stateDate string

func init() {
	rootCmd.AddCommand(stateCmd)

	stateCmd.Flags().StringVar(&stateDate, "date", "", "trading date (YYYY-MM-DD, default today)")
}

func runState(cmd *cobra.Command, args []string) error {
	asOf, err := parseDateFlag(stateDate)
	if err != nil {
		return err
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	builder := macro.NewStateBuilder(a.scores, a.macros, a.logger)

	state, err := builder.Build(context.Background(), asOf, a.universe)
	if err != nil {
		return fmt.Errorf("build state: %w", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(state); err != nil {
		return fmt.Errorf("encode state: %w", err)
	}

	if state.Pending() {
		PrintWarning("Some assets are still PENDING for this date")
	}

	return nil
}
