package macro

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/dealerflow/dealerflow/internal/contracts"
	"github.com/dealerflow/dealerflow/pkg/logger"
)

const (
	// Return windows, calendar days fetched with buffer for weekends
	returnWindowDays = 20
	returnFetchDays  = 30
	corrWindowDays   = 60
	corrFetchDays    = 90
	corrMinReturns   = 20

	// JGB 10Y above this level counts as rising off the policy floor
	jgbRisingAbove = 0.55

	// Dollar-wrecking-ball stress bands, percent returns over 20 days
	dxyStressAbove = 2.0
	spxStressBelow = -1.0
)

// Symbols the macro extractor reads alongside the per-asset tables
const (
	usdjpyPair    = "USDJPY"
	dxyPair       = "DXY"
	spxUnderlying = "SPX"
)

// Extractor computes the cross-asset rates and stress snapshot for a date.
// It feeds the macro state and reporting only; the scoring engine never
// reads its output.
type Extractor struct {
	rates   contracts.RatesRepository
	fx      contracts.FXRepository
	options contracts.OptionRepository
	store   contracts.MacroFeatureStore
	logger  *logger.Logger
}

// NewExtractor creates a new macro Extractor
func NewExtractor(
	rates contracts.RatesRepository,
	fx contracts.FXRepository,
	options contracts.OptionRepository,
	store contracts.MacroFeatureStore,
	log *logger.Logger,
) *Extractor {
	return &Extractor{
		rates:   rates,
		fx:      fx,
		options: options,
		store:   store,
		logger:  log,
	}
}

// Compute derives and upserts the macro feature row for a date. Missing
// inputs degrade individual fields to zero/NORMAL defaults within the same
// row rather than aborting the snapshot.
func (e *Extractor) Compute(ctx context.Context, asOf time.Time) error {
	asOf = contracts.NormalizeDate(asOf)

	feats := &contracts.MacroFeatures{
		AsOf:            asOf,
		PolicyErrorRisk: contracts.PolicyRiskLow,
		FXEquityStress:  contracts.StressNormal,
	}

	rateRow, err := e.rates.GetLatest(ctx, asOf)
	if err != nil {
		return fmt.Errorf("fetch macro rates: %w", err)
	}
	if rateRow != nil {
		feats.US10Y = rateRow.US10Y
		feats.JP10Y = rateRow.JP10Y
		feats.US2Y = rateRow.US2Y
		feats.JP2Y = rateRow.JP2Y
		feats.SpreadUSJP10Y = rateRow.US10Y - rateRow.JP10Y
		feats.SpreadUSJP2Y = rateRow.US2Y - rateRow.JP2Y
		if rateRow.US2Y < rateRow.US10Y {
			feats.PolicyErrorRisk = contracts.PolicyRiskRising
		}
	} else {
		e.logger.WithField("date", asOf.Format(contracts.DateLayout)).
			Warn("No macro rates at or before date, rate fields default to 0")
	}

	usdjpyRet, err := e.fxReturn(ctx, usdjpyPair, asOf)
	if err != nil {
		return fmt.Errorf("compute usdjpy return: %w", err)
	}

	// A weakening yen (USDJPY up) while JGB yields rise off the floor is
	// the reflexive carry-unwind loop.
	feats.YenWeakening = usdjpyRet > 0
	feats.JGBYieldsRising = feats.JP10Y > jgbRisingAbove
	feats.ReflexiveLoopActive = feats.YenWeakening && feats.JGBYieldsRising
	if feats.ReflexiveLoopActive {
		feats.ReflexivityComment = "Yen carry trade unwinding pressure building."
	}

	dxyRet, err := e.fxReturn(ctx, dxyPair, asOf)
	if err != nil {
		return fmt.Errorf("compute dxy return: %w", err)
	}
	feats.DXYRet20D = dxyRet

	spxHistory, err := e.options.GetSpotHistory(ctx, spxUnderlying, asOf.AddDate(0, 0, -returnFetchDays), asOf)
	if err != nil {
		return fmt.Errorf("fetch spx spot history: %w", err)
	}
	feats.SPXRet20D = windowReturn(spxHistory, returnWindowDays)

	corr, err := e.spxDXYCorrelation(ctx, asOf)
	if err != nil {
		return fmt.Errorf("compute spx/dxy correlation: %w", err)
	}
	feats.CorrSPXDXY60D = corr

	if feats.DXYRet20D > dxyStressAbove && feats.SPXRet20D < spxStressBelow {
		feats.FXEquityStress = contracts.StressWarning
	}

	if err := e.store.Upsert(ctx, feats); err != nil {
		return fmt.Errorf("upsert macro features: %w", err)
	}

	e.logger.WithFields(map[string]interface{}{
		"date":      asOf.Format(contracts.DateLayout),
		"spread":    feats.SpreadUSJP10Y,
		"reflexive": feats.ReflexiveLoopActive,
		"stress":    feats.FXEquityStress,
	}).Info("Computed macro features")

	return nil
}

// fxReturn computes the trailing 20-observation percent return for a pair
func (e *Extractor) fxReturn(ctx context.Context, pair string, asOf time.Time) (float64, error) {
	history, err := e.fx.GetByPairAndDateRange(ctx, pair, asOf.AddDate(0, 0, -returnFetchDays), asOf)
	if err != nil {
		return 0, err
	}

	prices := make([]contracts.DatedPrice, len(history))
	for i, row := range history {
		prices[i] = contracts.DatedPrice{AsOf: row.AsOf, Price: row.SpotPrice}
	}

	return windowReturn(prices, returnWindowDays), nil
}

// spxDXYCorrelation computes the trailing correlation of daily log returns
// between the equity index and the dollar index. Too little overlapping
// history yields 0.
func (e *Extractor) spxDXYCorrelation(ctx context.Context, asOf time.Time) (float64, error) {
	from := asOf.AddDate(0, 0, -corrFetchDays)

	spxHistory, err := e.options.GetSpotHistory(ctx, spxUnderlying, from, asOf)
	if err != nil {
		return 0, err
	}

	dxyRows, err := e.fx.GetByPairAndDateRange(ctx, dxyPair, from, asOf)
	if err != nil {
		return 0, err
	}

	dxyHistory := make([]contracts.DatedPrice, len(dxyRows))
	for i, row := range dxyRows {
		dxyHistory[i] = contracts.DatedPrice{AsOf: row.AsOf, Price: row.SpotPrice}
	}

	return returnCorrelation(spxHistory, dxyHistory, corrWindowDays), nil
}

// windowReturn is the percent change from the first to the last of the
// most recent n observations. Fewer than 2 observations yields 0.
func windowReturn(prices []contracts.DatedPrice, n int) float64 {
	if len(prices) > n {
		prices = prices[len(prices)-n:]
	}
	if len(prices) < 2 {
		return 0
	}

	first := prices[0].Price
	last := prices[len(prices)-1].Price
	if first <= 0 {
		return 0
	}

	return (last - first) / first * 100
}

// returnCorrelation is the Pearson correlation of daily log returns on
// dates both series priced, over the most recent window observations.
func returnCorrelation(a, b []contracts.DatedPrice, window int) float64 {
	bByDate := make(map[time.Time]float64, len(b))
	for _, p := range b {
		bByDate[contracts.NormalizeDate(p.AsOf)] = p.Price
	}

	// Paired prices on common dates, in a's (ascending) order
	var pairedA, pairedB []float64
	for _, p := range a {
		if bp, ok := bByDate[contracts.NormalizeDate(p.AsOf)]; ok && p.Price > 0 && bp > 0 {
			pairedA = append(pairedA, p.Price)
			pairedB = append(pairedB, bp)
		}
	}

	retA := logReturns(pairedA)
	retB := logReturns(pairedB)
	if len(retA) > window {
		retA = retA[len(retA)-window:]
		retB = retB[len(retB)-window:]
	}
	if len(retA) < corrMinReturns {
		return 0
	}

	return pearson(retA, retB)
}

func logReturns(prices []float64) []float64 {
	if len(prices) < 2 {
		return nil
	}
	out := make([]float64, 0, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		out = append(out, math.Log(prices[i]/prices[i-1]))
	}
	return out
}

func pearson(x, y []float64) float64 {
	n := float64(len(x))
	if n < 2 {
		return 0
	}

	var sumX, sumY float64
	for i := range x {
		sumX += x[i]
		sumY += y[i]
	}
	meanX, meanY := sumX/n, sumY/n

	var cov, varX, varY float64
	for i := range x {
		dx, dy := x[i]-meanX, y[i]-meanY
		cov += dx * dy
		varX += dx * dx
		varY += dy * dy
	}

	if varX == 0 || varY == 0 {
		return 0
	}

	return cov / math.Sqrt(varX*varY)
}
