package scoring

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dealerflow/dealerflow/internal/contracts"
	"github.com/dealerflow/dealerflow/internal/universe"
	"github.com/dealerflow/dealerflow/pkg/logger"
)

// Engine maps each asset's feature row for a date into an instability
// score row. One scorer exists per asset class; the formulas differ on
// purpose and are never unified.
type Engine struct {
	equity    contracts.EquityFeatureStore
	commodity contracts.CommodityFeatureStore
	fx        contracts.FXFeatureStore
	scores    contracts.ScoreStore
	logger    *logger.Logger
}

// NewEngine creates a new scoring Engine
func NewEngine(
	equity contracts.EquityFeatureStore,
	commodity contracts.CommodityFeatureStore,
	fx contracts.FXFeatureStore,
	scores contracts.ScoreStore,
	log *logger.Logger,
) *Engine {
	return &Engine{
		equity:    equity,
		commodity: commodity,
		fx:        fx,
		scores:    scores,
		logger:    log,
	}
}

// Summary reports what a scoring run did
type Summary struct {
	Scored  int
	Skipped int
	Failed  int
}

// ScoreDate scores every universe asset with a feature row present for the
// date. Assets without a feature row are skipped, never given a zero
// score. A failure on one asset does not block the others; all failures
// are joined into the returned error.
func (e *Engine) ScoreDate(ctx context.Context, asOf time.Time, u *universe.Universe) (Summary, error) {
	asOf = contracts.NormalizeDate(asOf)

	var summary Summary
	var errs []error

	for _, asset := range u.Assets {
		score, err := e.scoreAsset(ctx, asOf, asset)
		if err != nil {
			e.logger.WithFields(map[string]interface{}{
				"date":   asOf.Format(contracts.DateLayout),
				"symbol": asset.Symbol,
				"error":  err.Error(),
			}).Warn("Failed to score asset")
			summary.Failed++
			errs = append(errs, fmt.Errorf("score %s: %w", asset.Symbol, err))
			continue
		}

		if score == nil {
			e.logger.WithFields(map[string]interface{}{
				"date":   asOf.Format(contracts.DateLayout),
				"symbol": asset.Symbol,
			}).Debug("No feature row for asset, skipping score")
			summary.Skipped++
			continue
		}

		if err := e.scores.Upsert(ctx, score); err != nil {
			e.logger.WithFields(map[string]interface{}{
				"date":   asOf.Format(contracts.DateLayout),
				"symbol": asset.Symbol,
				"error":  err.Error(),
			}).Warn("Failed to persist score")
			summary.Failed++
			errs = append(errs, fmt.Errorf("persist score %s: %w", asset.Symbol, err))
			continue
		}

		e.logger.WithFields(map[string]interface{}{
			"date":        asOf.Format(contracts.DateLayout),
			"symbol":      asset.Symbol,
			"instability": score.InstabilityIndex,
			"regime":      score.Regime,
			"pressure":    score.Pressure,
		}).Info("Scored asset")
		summary.Scored++
	}

	return summary, errors.Join(errs...)
}

// scoreAsset computes one asset's score. A nil score with nil error means
// the asset has no feature row for the date.
func (e *Engine) scoreAsset(ctx context.Context, asOf time.Time, asset universe.Asset) (*contracts.AssetScore, error) {
	switch asset.Class {
	case universe.ClassEquity:
		f, err := e.equity.GetByDate(ctx, asOf, asset.Symbol)
		if err != nil || f == nil {
			return nil, err
		}
		return ScoreEquity(f), nil

	case universe.ClassCommodity:
		f, err := e.commodity.GetByDate(ctx, asOf, asset.Symbol)
		if err != nil || f == nil {
			return nil, err
		}
		return ScoreCommodity(f), nil

	case universe.ClassFX:
		f, err := e.fx.GetByDate(ctx, asOf, asset.Symbol)
		if err != nil || f == nil {
			return nil, err
		}
		return ScoreFX(f), nil

	default:
		return nil, fmt.Errorf("unknown asset class %q", asset.Class)
	}
}
