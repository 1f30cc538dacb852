package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dealerflow/dealerflow/internal/contracts"
	"github.com/dealerflow/dealerflow/internal/universe"
)

// featuresCmd represents the features command
var featuresCmd = &cobra.Command{
	Use:   "features [equity|commodity|fx|macro|all]",
	Short: "Run feature extraction for one date",
	Long: `Runs feature extraction for the given asset class (or all of them)
and upserts the resulting rows.

Stages:
  equity     - dealer gamma/delta exposure from option chains
  commodity  - curve shape and COT positioning from futures
  fx         - realized vol, carry and COT positioning
  macro      - rates spreads, reflexivity and cross-border stress
  all        - every stage above

Example:
  go run ./cmd/dealerflow features all --date 2026-08-28
  go run ./cmd/dealerflow features equity --date 2026-08-28`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"equity", "commodity", "fx", "macro", "all"},
	RunE:      runFeatures,
}

var featuresDate string

func init() {
	rootCmd.AddCommand(featuresCmd)

	featuresCmd.Flags().StringVar(&featuresDate, "date", "", "trading date (YYYY-MM-DD, default today)")
}

func runFeatures(cmd *cobra.Command, args []string) error {
	asOf, err := parseDateFlag(featuresDate)
	if err != nil {
		return err
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	stage := args[0]
	ctx := context.Background()

	PrintHeader(fmt.Sprintf("Feature Extraction: %s @ %s", stage, asOf.Format(contracts.DateLayout)))

	var errs []error
	var done int

	runClass := func(class universe.Class) {
		for _, asset := range a.universe.ByClass(class) {
			var err error
			switch class {
			case universe.ClassEquity:
				err = a.equityExt.Compute(ctx, asOf, asset.Symbol)
			case universe.ClassCommodity:
				err = a.commodExt.Compute(ctx, asOf, asset.Symbol, asset.COTMarket)
			case universe.ClassFX:
				err = a.fxExt.Compute(ctx, asOf, asset.Symbol, asset.COTMarket)
			}
			if err != nil {
				PrintError(fmt.Sprintf("%s: %v", asset.Symbol, err))
				errs = append(errs, fmt.Errorf("%s: %w", asset.Symbol, err))
				continue
			}
			PrintSuccess(asset.Symbol)
			done++
		}
	}

	switch stage {
	case "equity":
		runClass(universe.ClassEquity)
	case "commodity":
		runClass(universe.ClassCommodity)
	case "fx":
		runClass(universe.ClassFX)
	case "macro":
		if err := a.macroExt.Compute(ctx, asOf); err != nil {
			errs = append(errs, fmt.Errorf("macro: %w", err))
			PrintError(fmt.Sprintf("macro: %v", err))
		} else {
			PrintSuccess("macro")
			done++
		}
	case "all":
		runClass(universe.ClassEquity)
		runClass(universe.ClassCommodity)
		runClass(universe.ClassFX)
		if err := a.macroExt.Compute(ctx, asOf); err != nil {
			errs = append(errs, fmt.Errorf("macro: %w", err))
			PrintError(fmt.Sprintf("macro: %v", err))
		} else {
			PrintSuccess("macro")
			done++
		}
	default:
		return fmt.Errorf("unknown stage %q", stage)
	}

	PrintSeparator()
	fmt.Printf("Completed: %d, failed: %d\n", done, len(errs))

	return errors.Join(errs...)
}
