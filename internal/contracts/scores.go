package contracts

import "time"

// AssetType tags which asset-class scorer produced a score
type AssetType string

const (
	AssetEquity    AssetType = "EQUITY"
	AssetCommodity AssetType = "COMMODITY"
	AssetFX        AssetType = "FX"
)

// Regime is the discrete classification of the instability index.
// RegimePending is never persisted; it marks an absent score in the
// macro state so that "no data" cannot masquerade as "stable".
type Regime string

const (
	RegimeStable    Regime = "STABLE"
	RegimeFragile   Regime = "FRAGILE"
	RegimeExplosive Regime = "EXPLOSIVE"
	RegimeUnstable  Regime = "UNSTABLE"
	RegimePending   Regime = "PENDING"
)

// Pressure is the inferred direction of structural flow-driven price pressure
type Pressure string

const (
	PressureUp      Pressure = "UP"
	PressureDown    Pressure = "DOWN"
	PressureNeutral Pressure = "NEUTRAL"
)

// AssetScore is the terminal artifact of the pipeline: one instability
// snapshot per (date, symbol). Sub-scores are retained for auditability.
type AssetScore struct {
	AsOf      time.Time `json:"as_of"`
	AssetType AssetType `json:"asset_type"`
	Symbol    string    `json:"symbol"`

	// 0-100, clamped
	InstabilityIndex float64  `json:"instability_index"`
	Regime           Regime   `json:"regime"`
	Pressure         Pressure `json:"pressure_direction"`

	// Retained sub-scores for auditability
	FlowRisk float64 `json:"flow_risk"`
	VolRisk  float64 `json:"vol_risk"`

	// Currently mirrors InstabilityIndex
	GlobalFlowScore float64 `json:"global_flow_score"`
}

// Clamp bounds a value to [lo, hi]
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
