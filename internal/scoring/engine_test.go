package scoring

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dealerflow/dealerflow/internal/contracts"
	"github.com/dealerflow/dealerflow/internal/universe"
	"github.com/dealerflow/dealerflow/pkg/logger"
)

type fakeEquityStore struct {
	rows map[string]*contracts.EquityFeatures
	err  error
}

func (s *fakeEquityStore) Upsert(ctx context.Context, f *contracts.EquityFeatures) error {
	return nil
}

func (s *fakeEquityStore) GetByDate(ctx context.Context, asOf time.Time, underlying string) (*contracts.EquityFeatures, error) {
	return s.rows[underlying], s.err
}

type fakeCommodityStore struct {
	rows map[string]*contracts.CommodityFeatures
}

func (s *fakeCommodityStore) Upsert(ctx context.Context, f *contracts.CommodityFeatures) error {
	return nil
}

func (s *fakeCommodityStore) GetByDate(ctx context.Context, asOf time.Time, underlying string) (*contracts.CommodityFeatures, error) {
	return s.rows[underlying], nil
}

type fakeFXStore struct {
	rows map[string]*contracts.FXFeatures
}

func (s *fakeFXStore) Upsert(ctx context.Context, f *contracts.FXFeatures) error {
	return nil
}

func (s *fakeFXStore) GetByDate(ctx context.Context, asOf time.Time, pair string) (*contracts.FXFeatures, error) {
	return s.rows[pair], nil
}

type fakeScoreStore struct {
	upserted  []*contracts.AssetScore
	upsertErr map[string]error
}

func (s *fakeScoreStore) Upsert(ctx context.Context, score *contracts.AssetScore) error {
	if err := s.upsertErr[score.Symbol]; err != nil {
		return err
	}
	s.upserted = append(s.upserted, score)
	return nil
}

func (s *fakeScoreStore) GetByDate(ctx context.Context, asOf time.Time) ([]contracts.AssetScore, error) {
	var out []contracts.AssetScore
	for _, sc := range s.upserted {
		out = append(out, *sc)
	}
	return out, nil
}

func (s *fakeScoreStore) GetByDateAndSymbol(ctx context.Context, asOf time.Time, symbol string) (*contracts.AssetScore, error) {
	for _, sc := range s.upserted {
		if sc.Symbol == symbol {
			return sc, nil
		}
	}
	return nil, nil
}

func testUniverse() *universe.Universe {
	return &universe.Universe{
		Assets: []universe.Asset{
			{Symbol: "SPX", Class: universe.ClassEquity},
			{Symbol: "GOLD", Class: universe.ClassCommodity, COTMarket: "GOLD"},
			{Symbol: "AUDUSD", Class: universe.ClassFX, COTMarket: "AUD"},
		},
	}
}

func TestEngine_ScoreDate(t *testing.T) {
	asOf := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)

	equity := &fakeEquityStore{rows: map[string]*contracts.EquityFeatures{
		"SPX": {AsOf: asOf, Underlying: "SPX", NetGamma: -1000, GammaSlope: 0.8},
	}}
	commodity := &fakeCommodityStore{rows: map[string]*contracts.CommodityFeatures{
		"GOLD": {AsOf: asOf, Underlying: "GOLD", BackwardationPct: 0.05, SpecNetPosition: 100000},
	}}
	fx := &fakeFXStore{rows: map[string]*contracts.FXFeatures{
		"AUDUSD": {AsOf: asOf, Pair: "AUDUSD", FXVolLevel: 20, CarryAttractiveness: 2,
			Aux: map[string]float64{contracts.AuxCOTNetSpecPctOI: 25}},
	}}
	scores := &fakeScoreStore{}

	engine := NewEngine(equity, commodity, fx, scores, logger.NewNop())

	summary, err := engine.ScoreDate(context.Background(), asOf, testUniverse())
	require.NoError(t, err)

	assert.Equal(t, 3, summary.Scored)
	assert.Equal(t, 0, summary.Skipped)
	assert.Equal(t, 0, summary.Failed)
	require.Len(t, scores.upserted, 3)

	bySymbol := make(map[string]*contracts.AssetScore)
	for _, sc := range scores.upserted {
		bySymbol[sc.Symbol] = sc
	}

	assert.InDelta(t, 80.0, bySymbol["SPX"].InstabilityIndex, 1e-9)
	assert.InDelta(t, 70.0, bySymbol["GOLD"].InstabilityIndex, 1e-9)
	assert.InDelta(t, 75.0, bySymbol["AUDUSD"].InstabilityIndex, 1e-9)
}

func TestEngine_SkipsAssetsWithoutFeatureRow(t *testing.T) {
	asOf := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)

	equity := &fakeEquityStore{rows: map[string]*contracts.EquityFeatures{
		"SPX": {AsOf: asOf, Underlying: "SPX", NetGamma: 1000},
	}}
	scores := &fakeScoreStore{}

	engine := NewEngine(equity, &fakeCommodityStore{}, &fakeFXStore{}, scores, logger.NewNop())

	summary, err := engine.ScoreDate(context.Background(), asOf, testUniverse())
	require.NoError(t, err)

	// No feature row must mean no score row, never a zero-filled score
	assert.Equal(t, 1, summary.Scored)
	assert.Equal(t, 2, summary.Skipped)
	require.Len(t, scores.upserted, 1)
	assert.Equal(t, "SPX", scores.upserted[0].Symbol)
}

func TestEngine_IsolatesPerAssetFailures(t *testing.T) {
	asOf := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)

	equity := &fakeEquityStore{rows: map[string]*contracts.EquityFeatures{
		"SPX": {AsOf: asOf, Underlying: "SPX", NetGamma: 1000},
	}}
	fx := &fakeFXStore{rows: map[string]*contracts.FXFeatures{
		"AUDUSD": {AsOf: asOf, Pair: "AUDUSD", FXVolLevel: 10},
	}}
	scores := &fakeScoreStore{upsertErr: map[string]error{
		"SPX": errors.New("connection reset"),
	}}

	engine := NewEngine(equity, &fakeCommodityStore{}, fx, scores, logger.NewNop())

	summary, err := engine.ScoreDate(context.Background(), asOf, testUniverse())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SPX")

	// The failing asset does not block the others
	assert.Equal(t, 1, summary.Scored)
	assert.Equal(t, 1, summary.Skipped)
	assert.Equal(t, 1, summary.Failed)
	require.Len(t, scores.upserted, 1)
	assert.Equal(t, "AUDUSD", scores.upserted[0].Symbol)
}

func TestEngine_FetchErrorCountsAsFailure(t *testing.T) {
	asOf := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)

	equity := &fakeEquityStore{err: errors.New("query timeout")}
	scores := &fakeScoreStore{}

	engine := NewEngine(equity, &fakeCommodityStore{}, &fakeFXStore{}, scores, logger.NewNop())

	summary, err := engine.ScoreDate(context.Background(), asOf, testUniverse())
	require.Error(t, err)

	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, 2, summary.Skipped)
	assert.Empty(t, scores.upserted)
}
