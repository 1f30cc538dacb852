package scoring

import (
	"math"

	"github.com/dealerflow/dealerflow/internal/contracts"
)

// FX scoring thresholds. The regime split is three-way (STABLE, FRAGILE,
// UNSTABLE), distinct from the two-threshold scheme the other asset
// classes use; the formulas are genuinely different and must not be
// unified.
const (
	// Vol maps linearly: 5% annualized -> 0, 20% -> 100
	fxVolFloor = 5.0
	fxVolSpan  = 15.0

	// Carry clamps to [-3, 5] and is inverted: high carry reads as
	// crowding risk, not stability.
	fxCarryMin  = -3.0
	fxCarryMax  = 5.0
	fxCarrySpan = 8.0

	// Positioning saturates at 40% of open interest
	fxPosCap = 40.0

	fxVolWeight   = 0.50
	fxCarryWeight = 0.25
	fxPosWeight   = 0.25

	fxStableBelow   = 30.0
	fxUnstableAbove = 60.0

	// Pressure bands on pct-of-OI positioning
	fxCrowdedLongPct  = 20.0
	fxCrowdedShortPct = -20.0
)

// ScoreFX maps an FX feature row to an instability score
func ScoreFX(f *contracts.FXFeatures) *contracts.AssetScore {
	vol := f.FXVolLevel
	carry := f.CarryAttractiveness
	pctOfOI := f.AuxValue(contracts.AuxCOTNetSpecPctOI)

	volScore := contracts.Clamp((vol-fxVolFloor)/fxVolSpan*100, 0, 100)
	carryScore := (fxCarryMax - contracts.Clamp(carry, fxCarryMin, fxCarryMax)) / fxCarrySpan * 100
	posScore := contracts.Clamp(math.Abs(pctOfOI), 0, fxPosCap) / fxPosCap * 100

	instability := contracts.Clamp(
		fxVolWeight*volScore+fxCarryWeight*carryScore+fxPosWeight*posScore, 0, 100)

	// Exactly 60 is still FRAGILE; only above 60 is UNSTABLE
	regime := contracts.RegimeUnstable
	if instability < fxStableBelow {
		regime = contracts.RegimeStable
	} else if instability <= fxUnstableAbove {
		regime = contracts.RegimeFragile
	}

	pressure := contracts.PressureNeutral
	if pctOfOI > fxCrowdedLongPct && carry > 1.0 {
		// Crowded long on high carry: downside washout risk
		pressure = contracts.PressureDown
	} else if pctOfOI < fxCrowdedShortPct && carry > 0.0 {
		// Crowded short on positive carry: squeeze risk
		pressure = contracts.PressureUp
	}

	return &contracts.AssetScore{
		AsOf:             f.AsOf,
		AssetType:        contracts.AssetFX,
		Symbol:           f.Pair,
		InstabilityIndex: instability,
		Regime:           regime,
		Pressure:         pressure,
		FlowRisk:         posScore,
		VolRisk:          volScore,
		GlobalFlowScore:  instability,
	}
}
