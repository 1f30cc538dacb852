package features

import (
	"context"
	"fmt"
	"time"

	"github.com/dealerflow/dealerflow/internal/contracts"
	"github.com/dealerflow/dealerflow/pkg/logger"
)

// CommodityExtractor computes term-structure and COT positioning features
// for a futures market.
type CommodityExtractor struct {
	futures contracts.FuturesRepository
	cot     contracts.COTRepository
	store   contracts.CommodityFeatureStore
	logger  *logger.Logger
}

// NewCommodityExtractor creates a new CommodityExtractor
func NewCommodityExtractor(futures contracts.FuturesRepository, cot contracts.COTRepository, store contracts.CommodityFeatureStore, log *logger.Logger) *CommodityExtractor {
	return &CommodityExtractor{
		futures: futures,
		cot:     cot,
		store:   store,
		logger:  log,
	}
}

// Compute derives and upserts the commodity feature row for
// (asOf, underlying). cotMarket names the matching market in the COT
// report, which may differ from the futures underlying.
func (c *CommodityExtractor) Compute(ctx context.Context, asOf time.Time, underlying, cotMarket string) error {
	asOf = contracts.NormalizeDate(asOf)

	curve, err := c.futures.GetByDateAndUnderlying(ctx, asOf, underlying)
	if err != nil {
		return fmt.Errorf("fetch futures curve: %w", err)
	}

	if len(curve) == 0 {
		c.logger.WithFields(map[string]interface{}{
			"date":       asOf.Format(contracts.DateLayout),
			"underlying": underlying,
		}).Warn("No futures data for date, skipping commodity features")
		return nil
	}

	cotRow, err := c.cot.GetLatestByMarket(ctx, cotMarket, asOf)
	if err != nil {
		return fmt.Errorf("fetch cot row: %w", err)
	}

	feats := calculateCommodity(asOf, underlying, curve, cotRow)

	if err := c.store.Upsert(ctx, feats); err != nil {
		return fmt.Errorf("upsert commodity features: %w", err)
	}

	c.logger.WithFields(map[string]interface{}{
		"date":              asOf.Format(contracts.DateLayout),
		"underlying":        underlying,
		"backwardation_pct": feats.BackwardationPct,
		"spec_net":          feats.SpecNetPosition,
	}).Info("Computed commodity features")

	return nil
}

// calculateCommodity is the pure feature computation. A front-only curve is
// valid but uninformative: term-structure features default to 0. A missing
// COT row defaults positions to 0.
func calculateCommodity(asOf time.Time, underlying string, curve []contracts.RawFuturesRow, cotRow *contracts.RawCOTRow) *contracts.CommodityFeatures {
	feats := &contracts.CommodityFeatures{
		AsOf:       asOf,
		Underlying: underlying,
	}

	if len(curve) >= 2 {
		front := curve[0].SettlePrice
		back := curve[1].SettlePrice

		if front > 0 {
			// Positive means backwardation: near month pricier, a
			// scarcity signal. Negative means contango.
			feats.BackwardationPct = (front - back) / front
			// Raw spread, not annualized
			feats.RollYield = feats.BackwardationPct
		}
	}

	if cotRow != nil {
		feats.HedgerNetPosition = cotRow.HedgerLong - cotRow.HedgerShort
		feats.SpecNetPosition = cotRow.SpecLong - cotRow.SpecShort
	}

	return feats
}
