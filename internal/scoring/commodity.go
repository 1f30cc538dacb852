package scoring

import "github.com/dealerflow/dealerflow/internal/contracts"

// Commodity scoring thresholds. The backwardation branches and the
// positioning branches are each mutually exclusive by construction of the
// thresholds; they must stay if/else chains so neither pair can ever
// double-apply.
const (
	commodityBase = 50.0

	// > 0.1% backwardation reads as scarcity stress
	backwardationStress = 0.001
	// < -0.5% is deep contango, stable supply
	contangoRelief = -0.005

	backwardationPenalty = 20.0
	contangoReward       = 10.0

	// Spec positioning bands, contracts
	crowdedLongAbove = 200000.0
	specFledBelow    = 50000.0

	crowdedLongPenalty = 20.0
	specFledPenalty    = 10.0

	commodityStableBelow    = 40.0
	commodityExplosiveAbove = 75.0
)

// ScoreCommodity maps a commodity feature row to an instability score
func ScoreCommodity(f *contracts.CommodityFeatures) *contracts.AssetScore {
	instability := commodityBase
	pressure := contracts.PressureNeutral

	if f.BackwardationPct > backwardationStress {
		instability += backwardationPenalty
		// Scarcity drives price up
		pressure = contracts.PressureUp
	} else if f.BackwardationPct < contangoRelief {
		instability -= contangoReward
		pressure = contracts.PressureDown
	}

	if f.SpecNetPosition > crowdedLongAbove {
		// Crowded long, prone to washouts
		instability += crowdedLongPenalty
	} else if f.SpecNetPosition < specFledBelow {
		instability += specFledPenalty
	}

	instability = contracts.Clamp(instability, 0, 100)

	regime := contracts.RegimeFragile
	if instability < commodityStableBelow {
		regime = contracts.RegimeStable
	} else if instability > commodityExplosiveAbove {
		regime = contracts.RegimeExplosive
	}

	return &contracts.AssetScore{
		AsOf:             f.AsOf,
		AssetType:        contracts.AssetCommodity,
		Symbol:           f.Underlying,
		InstabilityIndex: instability,
		Regime:           regime,
		Pressure:         pressure,
		// Term-structure stress on a comparable scale; audit value only
		FlowRisk:        f.BackwardationPct * 1000,
		VolRisk:         0,
		GlobalFlowScore: instability,
	}
}
