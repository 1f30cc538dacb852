package scoring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/dealerflow/dealerflow/internal/contracts"
)

func equityFeatures(netGamma, gammaSlope, netDelta float64) *contracts.EquityFeatures {
	return &contracts.EquityFeatures{
		AsOf:       time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC),
		Underlying: "SPX",
		NetGamma:   netGamma,
		GammaSlope: gammaSlope,
		NetDelta:   netDelta,
	}
}

func TestScoreEquity_NegativeGammaExplosive(t *testing.T) {
	// flow = 50+30 = 80, vol = min(0.8*100, 100) = 80
	// instability = 0.6*80 + 0.4*80 = 80
	score := ScoreEquity(equityFeatures(-1000, 0.8, 0))

	assert.Equal(t, 80.0, score.FlowRisk)
	assert.Equal(t, 80.0, score.VolRisk)
	assert.InDelta(t, 80.0, score.InstabilityIndex, 1e-9)
	assert.Equal(t, contracts.RegimeExplosive, score.Regime)
	assert.Equal(t, contracts.PressureNeutral, score.Pressure)
	assert.Equal(t, contracts.AssetEquity, score.AssetType)
	assert.Equal(t, "SPX", score.Symbol)
}

func TestScoreEquity_PositiveGammaStable(t *testing.T) {
	// flow = 50-20 = 30, vol = 0, instability = 18
	score := ScoreEquity(equityFeatures(1000, 0, 0))

	assert.Equal(t, 30.0, score.FlowRisk)
	assert.Equal(t, 0.0, score.VolRisk)
	assert.InDelta(t, 18.0, score.InstabilityIndex, 1e-9)
	assert.Equal(t, contracts.RegimeStable, score.Regime)
}

func TestScoreEquity_ZeroGammaTakesPositiveBranch(t *testing.T) {
	// net_gamma == 0 is not negative, so flow = 30
	score := ScoreEquity(equityFeatures(0, 0, 0))

	assert.Equal(t, 30.0, score.FlowRisk)
}

func TestScoreEquity_VolRiskCapped(t *testing.T) {
	score := ScoreEquity(equityFeatures(-1, 5.0, 0))

	assert.Equal(t, 100.0, score.VolRisk)
}

func TestScoreEquity_RegimeBoundaries(t *testing.T) {
	tests := []struct {
		name       string
		netGamma   float64
		gammaSlope float64
		wantIndex  float64
		wantRegime contracts.Regime
	}{
		// flow=30, vol=30 -> 0.6*30+0.4*30 = 30, boundary is FRAGILE
		{"exactly 30 is fragile", 1000, 0.30, 30.0, contracts.RegimeFragile},
		// flow=80, vol=55 -> 48+22 = 70, boundary is FRAGILE
		{"exactly 70 is fragile", -1000, 0.55, 70.0, contracts.RegimeFragile},
		// flow=80, vol=60 -> 48+24 = 72
		{"above 70 is explosive", -1000, 0.60, 72.0, contracts.RegimeExplosive},
		// flow=30, vol=25 -> 18+10 = 28
		{"below 30 is stable", 1000, 0.25, 28.0, contracts.RegimeStable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score := ScoreEquity(equityFeatures(tt.netGamma, tt.gammaSlope, 0))
			assert.InDelta(t, tt.wantIndex, score.InstabilityIndex, 1e-9)
			assert.Equal(t, tt.wantRegime, score.Regime)
		})
	}
}

func TestScoreEquity_Pressure(t *testing.T) {
	tests := []struct {
		name     string
		netDelta float64
		want     contracts.Pressure
	}{
		{"large negative delta", -1500, contracts.PressureDown},
		{"large positive delta", 1500, contracts.PressureUp},
		{"exactly -1000 is neutral", -1000, contracts.PressureNeutral},
		{"exactly 1000 is neutral", 1000, contracts.PressureNeutral},
		{"zero delta", 0, contracts.PressureNeutral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score := ScoreEquity(equityFeatures(-1000, 0, tt.netDelta))
			assert.Equal(t, tt.want, score.Pressure)
		})
	}
}

func TestScoreEquity_IndexAlwaysInRange(t *testing.T) {
	for _, netGamma := range []float64{-1e9, -1, 0, 1, 1e9} {
		for _, slope := range []float64{-100, -1, 0, 1, 100} {
			score := ScoreEquity(equityFeatures(netGamma, slope, 0))
			assert.GreaterOrEqual(t, score.InstabilityIndex, 0.0)
			assert.LessOrEqual(t, score.InstabilityIndex, 100.0)
		}
	}
}
