package features

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dealerflow/dealerflow/internal/contracts"
	"github.com/dealerflow/dealerflow/pkg/logger"
)

type fakeFXRepo struct {
	history []contracts.RawFXRow
	rateRow *contracts.RawFXRow
}

func (r *fakeFXRepo) GetByPairAndDate(ctx context.Context, pair string, asOf time.Time) (*contracts.RawFXRow, error) {
	return r.rateRow, nil
}

func (r *fakeFXRepo) GetByPairAndDateRange(ctx context.Context, pair string, from, to time.Time) ([]contracts.RawFXRow, error) {
	return r.history, nil
}

type fakeFXFeatureStore struct {
	upserted []*contracts.FXFeatures
}

func (s *fakeFXFeatureStore) Upsert(ctx context.Context, f *contracts.FXFeatures) error {
	s.upserted = append(s.upserted, f)
	return nil
}

func (s *fakeFXFeatureStore) GetByDate(ctx context.Context, asOf time.Time, pair string) (*contracts.FXFeatures, error) {
	return nil, nil
}

// flatHistory builds n days of constant spot
func flatHistory(asOf time.Time, n int, spot float64) []contracts.RawFXRow {
	rows := make([]contracts.RawFXRow, n)
	for i := 0; i < n; i++ {
		rows[i] = contracts.RawFXRow{
			AsOf:      asOf.AddDate(0, 0, i-n+1),
			Pair:      "AUDUSD",
			SpotPrice: spot,
		}
	}
	return rows
}

func TestRealizedVol_FlatSeriesIsZero(t *testing.T) {
	asOf := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, 0.0, realizedVol(flatHistory(asOf, 30, 0.65)))
}

func TestRealizedVol_InsufficientHistoryIsZero(t *testing.T) {
	asOf := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)
	// 19 priced days is below the 20 day gate
	assert.Equal(t, 0.0, realizedVol(flatHistory(asOf, 19, 0.65)))
}

func TestRealizedVol_AlternatingSeries(t *testing.T) {
	asOf := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)

	// Alternate between two spots so every daily log return is +/-r
	rows := make([]contracts.RawFXRow, 30)
	for i := range rows {
		spot := 0.65
		if i%2 == 1 {
			spot = 0.66
		}
		rows[i] = contracts.RawFXRow{AsOf: asOf.AddDate(0, 0, i-29), SpotPrice: spot}
	}

	got := realizedVol(rows)

	// Sample std of 10 values at +r and 10 at -r, annualized to percent
	r := math.Log(0.66 / 0.65)
	returns := make([]float64, 20)
	for i := range returns {
		if i%2 == 0 {
			returns[i] = r
		} else {
			returns[i] = -r
		}
	}
	want := sampleStd(returns) * math.Sqrt(252) * 100

	assert.InDelta(t, want, got, 1e-9)
	assert.Greater(t, got, 0.0)
}

func TestRealizedVol_SkipsUnpricedDays(t *testing.T) {
	asOf := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)

	rows := flatHistory(asOf, 30, 0.65)
	// A zero spot is an unpriced day and must not produce a return
	rows[10].SpotPrice = 0

	got := realizedVol(rows)
	assert.False(t, math.IsNaN(got) || math.IsInf(got, 0))
	assert.Equal(t, 0.0, got)
}

func TestSampleStd(t *testing.T) {
	// Known sample: {2, 4, 4, 4, 5, 5, 7, 9} has sample std ~2.1381
	values := []float64{2, 4, 4, 4, 5, 5, 7, 9}
	assert.InDelta(t, 2.13809, sampleStd(values), 1e-4)
}

func TestCalculateFX_CarryAndPositioning(t *testing.T) {
	asOf := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)
	history := flatHistory(asOf, 30, 0.65)
	rateRow := &contracts.RawFXRow{
		Pair:           "AUDUSD",
		SpotPrice:      0.65,
		ShortRateBase:  4.35,
		ShortRateQuote: 5.25,
	}
	cot := &contracts.RawCOTRow{
		Market:      "AUD",
		HedgerLong:  40000,
		HedgerShort: 60000,
		SpecLong:    80000,
		SpecShort:   20000,
	}

	feats := calculateFX(asOf, "AUDUSD", history, rateRow, cot)

	assert.InDelta(t, -0.9, feats.CarryAttractiveness, 1e-9)
	assert.Equal(t, feats.CarryAttractiveness, feats.RateDiff)
	assert.Equal(t, 60000.0, feats.COTNetPosition)

	// approx OI = (40000+60000+80000+20000)/2 = 100000
	// pct of OI = 60000/100000*100 = 60
	assert.InDelta(t, 60.0, feats.AuxValue(contracts.AuxCOTNetSpecPctOI), 1e-9)
}

func TestCalculateFX_MissingInputsDegradeToZero(t *testing.T) {
	asOf := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)
	history := flatHistory(asOf, 30, 0.65)

	feats := calculateFX(asOf, "AUDUSD", history, nil, nil)

	assert.Equal(t, 0.0, feats.CarryAttractiveness)
	assert.Equal(t, 0.0, feats.RateDiff)
	assert.Equal(t, 0.0, feats.COTNetPosition)
	assert.Equal(t, 0.0, feats.AuxValue(contracts.AuxCOTNetSpecPctOI))
}

func TestFXExtractor_ComputeSkipsEmptyWindow(t *testing.T) {
	store := &fakeFXFeatureStore{}
	e := NewFXExtractor(&fakeFXRepo{}, &fakeCOTRepo{}, store, logger.NewNop())

	err := e.Compute(context.Background(), time.Now(), "AUDUSD", "AUD")
	require.NoError(t, err)
	assert.Empty(t, store.upserted)
}

func TestFXExtractor_ComputeUpserts(t *testing.T) {
	asOf := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)
	repo := &fakeFXRepo{
		history: flatHistory(asOf, 30, 0.65),
		rateRow: &contracts.RawFXRow{ShortRateBase: 4.35, ShortRateQuote: 5.25},
	}
	store := &fakeFXFeatureStore{}

	e := NewFXExtractor(repo, &fakeCOTRepo{}, store, logger.NewNop())

	err := e.Compute(context.Background(), asOf, "AUDUSD", "AUD")
	require.NoError(t, err)
	require.Len(t, store.upserted, 1)
	assert.Equal(t, "AUDUSD", store.upserted[0].Pair)
	assert.InDelta(t, -0.9, store.upserted[0].CarryAttractiveness, 1e-9)
}
