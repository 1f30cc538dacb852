package features

import (
	"context"
	"fmt"
	"time"

	"github.com/dealerflow/dealerflow/internal/contracts"
	"github.com/dealerflow/dealerflow/pkg/logger"
)

const (
	// Listed index options carry a fixed 100x contract multiplier
	contractMultiplier = 100.0

	// Contracts expiring within this many calendar days count as near-term
	nearTermWindowDays = 5

	// DealerShort encodes the modeling assumption that dealers are
	// structurally short every listed contract, calls and puts alike.
	// It is an assumption, not a market fact; the score series is only
	// reproducible if it stays fixed.
	DealerShort = -1.0
)

// EquityExtractor computes dealer gamma/delta positioning features from a
// raw option chain snapshot.
type EquityExtractor struct {
	options contracts.OptionRepository
	store   contracts.EquityFeatureStore
	logger  *logger.Logger

	// DealerDirection is applied to every quoted delta when aggregating
	// dealer net delta. Defaults to DealerShort.
	DealerDirection float64
}

// NewEquityExtractor creates a new EquityExtractor
func NewEquityExtractor(options contracts.OptionRepository, store contracts.EquityFeatureStore, log *logger.Logger) *EquityExtractor {
	return &EquityExtractor{
		options:         options,
		store:           store,
		logger:          log,
		DealerDirection: DealerShort,
	}
}

// Compute derives and upserts the equity feature row for (asOf, underlying).
// A day with no option rows is a defined no-op: it logs and writes nothing,
// so downstream sees a sparse series rather than a zero-filled row.
func (e *EquityExtractor) Compute(ctx context.Context, asOf time.Time, underlying string) error {
	asOf = contracts.NormalizeDate(asOf)

	rows, err := e.options.GetByDateAndUnderlying(ctx, asOf, underlying)
	if err != nil {
		return fmt.Errorf("fetch option chain: %w", err)
	}

	if len(rows) == 0 {
		e.logger.WithFields(map[string]interface{}{
			"date":       asOf.Format(contracts.DateLayout),
			"underlying": underlying,
		}).Warn("No option data for date, skipping equity features")
		return nil
	}

	feats := e.calculate(asOf, underlying, rows)

	if err := e.store.Upsert(ctx, feats); err != nil {
		return fmt.Errorf("upsert equity features: %w", err)
	}

	e.logger.WithFields(map[string]interface{}{
		"date":       asOf.Format(contracts.DateLayout),
		"underlying": underlying,
		"net_gamma":  feats.NetGamma,
		"net_delta":  feats.NetDelta,
	}).Info("Computed equity features")

	return nil
}

// calculate is the pure feature computation over one day's chain
func (e *EquityExtractor) calculate(asOf time.Time, underlying string, rows []contracts.RawOptionRow) *contracts.EquityFeatures {
	// All rows in a snapshot share one spot reference
	spot := rows[0].UnderlyingPrice

	var callGex, putGex float64
	var nearCallGex, nearPutGex float64
	var callOI, putOI float64
	var netDelta float64

	for _, row := range rows {
		gex := row.Gamma * row.OpenInterest * contractMultiplier * spot
		nearTerm := daysBetween(asOf, row.Expiry) <= nearTermWindowDays

		switch row.Type {
		case contracts.OptionCall:
			callGex += gex
			callOI += row.OpenInterest
			if nearTerm {
				nearCallGex += gex
			}
		case contracts.OptionPut:
			putGex += gex
			putOI += row.OpenInterest
			if nearTerm {
				nearPutGex += gex
			}
		}

		netDelta += e.DealerDirection * row.Delta * row.OpenInterest
	}

	netGamma := callGex - putGex
	nearTermGex := nearCallGex - nearPutGex

	gammaSlope := 0.0
	if spot > 0 {
		gammaSlope = netGamma / spot
	}

	// Defined degenerate case, not an error
	nearTermRatio := 0.0
	if netGamma != 0 {
		nearTermRatio = nearTermGex / netGamma
	}

	pcr := 0.0
	if callOI > 0 {
		pcr = putOI / callOI
	}

	return &contracts.EquityFeatures{
		AsOf:               asOf,
		Underlying:         underlying,
		NetGamma:           netGamma,
		GammaSlope:         gammaSlope,
		GammaNearExpiry:    nearTermGex,
		NearTermGammaRatio: nearTermRatio,
		PutCallOIRatio:     pcr,
		NetDelta:           netDelta,
	}
}

// daysBetween returns whole calendar days from a to b
func daysBetween(a, b time.Time) int {
	return int(contracts.NormalizeDate(b).Sub(contracts.NormalizeDate(a)).Hours() / 24)
}
