package features

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/dealerflow/dealerflow/internal/contracts"
	"github.com/dealerflow/dealerflow/pkg/logger"
)

const (
	// Trailing calendar window fetched for realized vol
	volLookbackDays = 60

	// Realized vol uses the most recent 20 daily log returns and requires
	// at least 20 priced days before computing anything.
	volWindow = 20

	// Annualization factor for daily vol
	tradingDaysPerYear = 252
)

// FXExtractor computes carry, realized volatility and COT positioning
// features for a currency pair.
type FXExtractor struct {
	fx     contracts.FXRepository
	cot    contracts.COTRepository
	store  contracts.FXFeatureStore
	logger *logger.Logger
}

// NewFXExtractor creates a new FXExtractor
func NewFXExtractor(fx contracts.FXRepository, cot contracts.COTRepository, store contracts.FXFeatureStore, log *logger.Logger) *FXExtractor {
	return &FXExtractor{
		fx:     fx,
		cot:    cot,
		store:  store,
		logger: log,
	}
}

// Compute derives and upserts the FX feature row for (asOf, pair).
// cotMarket names the corresponding futures market in the COT report
// (e.g. "AUD" for AUDUSD). A pair with no priced history in the trailing
// window is a defined no-op; thin history and missing rate or COT rows
// degrade individual fields to 0 within the same row.
func (e *FXExtractor) Compute(ctx context.Context, asOf time.Time, pair, cotMarket string) error {
	asOf = contracts.NormalizeDate(asOf)
	from := asOf.AddDate(0, 0, -volLookbackDays)

	history, err := e.fx.GetByPairAndDateRange(ctx, pair, from, asOf)
	if err != nil {
		return fmt.Errorf("fetch fx history: %w", err)
	}

	if len(history) == 0 {
		e.logger.WithFields(map[string]interface{}{
			"date": asOf.Format(contracts.DateLayout),
			"pair": pair,
		}).Warn("No FX data in trailing window, skipping fx features")
		return nil
	}

	rateRow, err := e.fx.GetByPairAndDate(ctx, pair, asOf)
	if err != nil {
		return fmt.Errorf("fetch fx rate row: %w", err)
	}

	cotRow, err := e.cot.GetLatestByMarket(ctx, cotMarket, asOf)
	if err != nil {
		return fmt.Errorf("fetch cot row: %w", err)
	}

	feats := calculateFX(asOf, pair, history, rateRow, cotRow)

	if err := e.store.Upsert(ctx, feats); err != nil {
		return fmt.Errorf("upsert fx features: %w", err)
	}

	e.logger.WithFields(map[string]interface{}{
		"date":  asOf.Format(contracts.DateLayout),
		"pair":  pair,
		"carry": feats.CarryAttractiveness,
		"vol":   feats.FXVolLevel,
	}).Info("Computed fx features")

	return nil
}

// calculateFX is the pure feature computation over the trailing history
func calculateFX(asOf time.Time, pair string, history []contracts.RawFXRow, rateRow *contracts.RawFXRow, cotRow *contracts.RawCOTRow) *contracts.FXFeatures {
	feats := &contracts.FXFeatures{
		AsOf: asOf,
		Pair: pair,
		Aux:  map[string]float64{},
	}

	feats.FXVolLevel = realizedVol(history)

	// Carry ~ rate differential, base minus quote. Missing rates yield a
	// carry of 0, a defined fallback.
	if rateRow != nil {
		feats.CarryAttractiveness = rateRow.ShortRateBase - rateRow.ShortRateQuote
	}
	feats.RateDiff = feats.CarryAttractiveness

	pctOfOI := 0.0
	if cotRow != nil {
		net := cotRow.SpecLong - cotRow.SpecShort
		// Proxy for open interest, not a ledger value: half the sum of
		// all reported long and short legs.
		approxOI := (cotRow.HedgerLong + cotRow.HedgerShort + cotRow.SpecLong + cotRow.SpecShort) / 2

		feats.COTNetPosition = net
		if approxOI > 0 {
			pctOfOI = net / approxOI * 100
		}
	}
	feats.Aux[contracts.AuxCOTNetSpecPctOI] = pctOfOI

	return feats
}

// realizedVol computes annualized realized volatility in percent from
// daily log returns over the trailing history. Fewer than volWindow priced
// days is a defined zero-output case, not an error.
func realizedVol(history []contracts.RawFXRow) float64 {
	if len(history) < volWindow {
		return 0
	}

	var returns []float64
	for i := 1; i < len(history); i++ {
		prev := history[i-1].SpotPrice
		curr := history[i].SpotPrice
		if prev <= 0 || curr <= 0 {
			continue
		}
		returns = append(returns, math.Log(curr/prev))
	}

	if len(returns) > volWindow {
		returns = returns[len(returns)-volWindow:]
	}
	if len(returns) < 2 {
		return 0
	}

	return sampleStd(returns) * math.Sqrt(tradingDaysPerYear) * 100
}

// sampleStd is the sample standard deviation (n-1 denominator)
func sampleStd(values []float64) float64 {
	n := float64(len(values))

	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / n

	var ss float64
	for _, v := range values {
		d := v - mean
		ss += d * d
	}

	return math.Sqrt(ss / (n - 1))
}
