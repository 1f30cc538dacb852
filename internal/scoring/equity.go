package scoring

import (
	"math"

	"github.com/dealerflow/dealerflow/internal/contracts"
)

// Equity scoring thresholds. The flow risk offsets are deliberately
// asymmetric: a negative-gamma regime is penalized harder than a
// positive-gamma regime is rewarded. Two fixed offsets, not a continuous
// function of magnitude.
const (
	equityFlowBase        = 50.0
	equityNegGammaPenalty = 30.0
	equityPosGammaReward  = 20.0

	equityFlowWeight = 0.6
	equityVolWeight  = 0.4

	equityStableBelow    = 30.0
	equityExplosiveAbove = 70.0

	equityDeltaPressureBand = 1000.0
)

// ScoreEquity maps an equity feature row to an instability score
func ScoreEquity(f *contracts.EquityFeatures) *contracts.AssetScore {
	flowRisk := equityFlowBase
	if f.NetGamma < 0 {
		flowRisk += equityNegGammaPenalty
	} else {
		flowRisk -= equityPosGammaReward
	}

	volRisk := math.Min(math.Abs(f.GammaSlope)*100, 100)

	instability := contracts.Clamp(flowRisk*equityFlowWeight+volRisk*equityVolWeight, 0, 100)

	// 30 and 70 themselves are FRAGILE
	regime := contracts.RegimeFragile
	if instability < equityStableBelow {
		regime = contracts.RegimeStable
	} else if instability > equityExplosiveAbove {
		regime = contracts.RegimeExplosive
	}

	pressure := contracts.PressureNeutral
	if f.NetDelta < -equityDeltaPressureBand {
		pressure = contracts.PressureDown
	} else if f.NetDelta > equityDeltaPressureBand {
		pressure = contracts.PressureUp
	}

	return &contracts.AssetScore{
		AsOf:             f.AsOf,
		AssetType:        contracts.AssetEquity,
		Symbol:           f.Underlying,
		InstabilityIndex: instability,
		Regime:           regime,
		Pressure:         pressure,
		FlowRisk:         flowRisk,
		VolRisk:          volRisk,
		GlobalFlowScore:  instability,
	}
}
