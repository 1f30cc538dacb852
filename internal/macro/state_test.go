package macro

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dealerflow/dealerflow/internal/contracts"
	"github.com/dealerflow/dealerflow/internal/universe"
	"github.com/dealerflow/dealerflow/pkg/logger"
)

type fakeScoreStore struct {
	scores []contracts.AssetScore
}

func (s *fakeScoreStore) Upsert(ctx context.Context, score *contracts.AssetScore) error {
	return nil
}

func (s *fakeScoreStore) GetByDate(ctx context.Context, asOf time.Time) ([]contracts.AssetScore, error) {
	return s.scores, nil
}

func (s *fakeScoreStore) GetByDateAndSymbol(ctx context.Context, asOf time.Time, symbol string) (*contracts.AssetScore, error) {
	return nil, nil
}

type fakeMacroStore struct {
	feats *contracts.MacroFeatures
}

func (s *fakeMacroStore) Upsert(ctx context.Context, f *contracts.MacroFeatures) error {
	return nil
}

func (s *fakeMacroStore) GetByDate(ctx context.Context, asOf time.Time) (*contracts.MacroFeatures, error) {
	return s.feats, nil
}

func TestStateBuilder_Build(t *testing.T) {
	asOf := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)

	scores := &fakeScoreStore{scores: []contracts.AssetScore{
		{
			AsOf:             asOf,
			AssetType:        contracts.AssetEquity,
			Symbol:           "SPX",
			InstabilityIndex: 80,
			Regime:           contracts.RegimeExplosive,
			Pressure:         contracts.PressureDown,
		},
	}}
	macros := &fakeMacroStore{feats: &contracts.MacroFeatures{
		AsOf:                asOf,
		US10Y:               4.2,
		JP10Y:               0.9,
		SpreadUSJP10Y:       3.3,
		PolicyErrorRisk:     contracts.PolicyRiskRising,
		ReflexiveLoopActive: true,
		ReflexivityComment:  "Yen carry trade unwinding pressure building.",
		DXYRet20D:           2.5,
		SPXRet20D:           -1.8,
		FXEquityStress:      contracts.StressWarning,
	}}

	builder := NewStateBuilder(scores, macros, logger.NewNop())

	state, err := builder.Build(context.Background(), asOf, universe.Default())
	require.NoError(t, err)

	assert.Equal(t, "2026-08-28", state.AsOf)
	require.Len(t, state.Assets, 3)

	// Scored asset carries its score through
	spx := state.Assets["SPX"]
	assert.Equal(t, contracts.RegimeExplosive, spx.Regime)
	assert.Equal(t, 80.0, spx.Instability)
	assert.Equal(t, contracts.PressureDown, spx.Pressure)

	// Unscored assets surface as PENDING, never as a stable zero
	assert.Equal(t, contracts.RegimePending, state.Assets["GOLD"].Regime)
	assert.Equal(t, contracts.RegimePending, state.Assets["AUDUSD"].Regime)
	assert.True(t, state.Pending())

	assert.Equal(t, 4.2, state.Rates.US10Y)
	assert.Equal(t, contracts.PolicyRiskRising, state.Rates.PolicyRisk)
	assert.True(t, state.ReflexiveLoopActive)
	assert.Equal(t, contracts.StressWarning, state.FXEquityStress)
	assert.Equal(t, 2.5, state.DXYRet20D)
}

func TestStateBuilder_BuildWithoutMacroRow(t *testing.T) {
	asOf := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)

	builder := NewStateBuilder(&fakeScoreStore{}, &fakeMacroStore{}, logger.NewNop())

	state, err := builder.Build(context.Background(), asOf, universe.Default())
	require.NoError(t, err)

	// Absent macro features leave safe defaults in place
	assert.Equal(t, contracts.StressNormal, state.FXEquityStress)
	assert.Equal(t, contracts.PolicyRiskLow, state.Rates.PolicyRisk)
	assert.False(t, state.ReflexiveLoopActive)
	assert.True(t, state.Pending())
}

func TestStateBuilder_FullyCovered(t *testing.T) {
	asOf := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)

	scores := &fakeScoreStore{scores: []contracts.AssetScore{
		{AsOf: asOf, AssetType: contracts.AssetEquity, Symbol: "SPX", Regime: contracts.RegimeStable},
		{AsOf: asOf, AssetType: contracts.AssetCommodity, Symbol: "GOLD", Regime: contracts.RegimeFragile},
		{AsOf: asOf, AssetType: contracts.AssetFX, Symbol: "AUDUSD", Regime: contracts.RegimeUnstable},
	}}

	builder := NewStateBuilder(scores, &fakeMacroStore{}, logger.NewNop())

	state, err := builder.Build(context.Background(), asOf, universe.Default())
	require.NoError(t, err)

	assert.False(t, state.Pending())
}
