package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dealerflow/dealerflow/internal/contracts"
	"github.com/dealerflow/dealerflow/internal/features"
	"github.com/dealerflow/dealerflow/internal/macro"
	"github.com/dealerflow/dealerflow/internal/scoring"
	"github.com/dealerflow/dealerflow/internal/universe"
	"github.com/dealerflow/dealerflow/pkg/logger"
)

// Runner executes the full per-date batch: feature extraction for every
// universe asset, the macro snapshot, then scoring. Each date is fully
// independent; running the same date twice with unchanged inputs yields
// identical rows.
type Runner struct {
	equity    *features.EquityExtractor
	commodity *features.CommodityExtractor
	fx        *features.FXExtractor
	macro     *macro.Extractor
	engine    *scoring.Engine
	universe  *universe.Universe
	logger    *logger.Logger
}

// NewRunner creates a new pipeline Runner
func NewRunner(
	equity *features.EquityExtractor,
	commodity *features.CommodityExtractor,
	fx *features.FXExtractor,
	macroExtractor *macro.Extractor,
	engine *scoring.Engine,
	u *universe.Universe,
	log *logger.Logger,
) *Runner {
	return &Runner{
		equity:    equity,
		commodity: commodity,
		fx:        fx,
		macro:     macroExtractor,
		engine:    engine,
		universe:  u,
		logger:    log,
	}
}

// Result summarizes one pipeline run
type Result struct {
	RunID          string
	Date           time.Time
	FeaturesOK     int
	FeaturesFailed int
	MacroComputed  bool
	Scoring        scoring.Summary
}

// Run computes features and scores for one date. Failures are isolated
// per asset and per stage; everything that can complete does, and all
// failures come back joined in the error.
func (r *Runner) Run(ctx context.Context, asOf time.Time) (*Result, error) {
	asOf = contracts.NormalizeDate(asOf)

	result := &Result{
		RunID: uuid.NewString(),
		Date:  asOf,
	}

	log := r.logger.WithFields(map[string]interface{}{
		"run_id": result.RunID,
		"date":   asOf.Format(contracts.DateLayout),
	})
	log.Info("Starting pipeline run")

	var errs []error

	for _, asset := range r.universe.Assets {
		if err := r.extract(ctx, asOf, asset); err != nil {
			log.WithFields(map[string]interface{}{
				"symbol": asset.Symbol,
				"error":  err.Error(),
			}).Warn("Feature extraction failed for asset")
			result.FeaturesFailed++
			errs = append(errs, fmt.Errorf("features %s: %w", asset.Symbol, err))
			continue
		}
		result.FeaturesOK++
	}

	if err := r.macro.Compute(ctx, asOf); err != nil {
		log.WithError(err).Warn("Macro feature extraction failed")
		errs = append(errs, fmt.Errorf("macro features: %w", err))
	} else {
		result.MacroComputed = true
	}

	summary, err := r.engine.ScoreDate(ctx, asOf, r.universe)
	result.Scoring = summary
	if err != nil {
		errs = append(errs, err)
	}

	log.WithFields(map[string]interface{}{
		"features_ok":     result.FeaturesOK,
		"features_failed": result.FeaturesFailed,
		"scored":          summary.Scored,
		"skipped":         summary.Skipped,
		"failed":          summary.Failed,
	}).Info("Pipeline run completed")

	return result, errors.Join(errs...)
}

// extract dispatches one asset to its asset-class extractor
func (r *Runner) extract(ctx context.Context, asOf time.Time, asset universe.Asset) error {
	switch asset.Class {
	case universe.ClassEquity:
		return r.equity.Compute(ctx, asOf, asset.Symbol)
	case universe.ClassCommodity:
		return r.commodity.Compute(ctx, asOf, asset.Symbol, asset.COTMarket)
	case universe.ClassFX:
		return r.fx.Compute(ctx, asOf, asset.Symbol, asset.COTMarket)
	default:
		return fmt.Errorf("unknown asset class %q", asset.Class)
	}
}
