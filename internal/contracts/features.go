package contracts

import "time"

// Derived feature rows, one per (date, symbol). Recomputation overwrites
// in place; there is never more than one row per key.

// EquityFeatures holds dealer-positioning features derived from an option
// chain snapshot.
type EquityFeatures struct {
	AsOf       time.Time
	Underlying string

	// Call GEX minus put GEX, dollar terms
	NetGamma float64
	// Net gamma sensitivity per spot unit
	GammaSlope float64
	// Dollar GEX of contracts expiring within the near-term window
	GammaNearExpiry float64
	// GammaNearExpiry / NetGamma, 0 when NetGamma is 0
	NearTermGammaRatio float64
	PutCallOIRatio     float64
	// Aggregate dealer delta under the dealer-short convention
	NetDelta float64
}

// CommodityFeatures holds term-structure and positioning features for a
// futures market.
type CommodityFeatures struct {
	AsOf       time.Time
	Underlying string

	HedgerNetPosition float64
	SpecNetPosition   float64
	// (front - back) / front; positive means backwardation
	BackwardationPct float64
	// Currently identical to BackwardationPct. Not annualized; a known
	// approximation kept until a proper time-to-roll normalization lands.
	RollYield float64
}

// FXFeatures holds carry, volatility and positioning features for a
// currency pair.
type FXFeatures struct {
	AsOf time.Time
	Pair string

	COTNetPosition float64
	// Base minus quote short rate, percentage points
	RateDiff            float64
	CarryAttractiveness float64
	// Annualized realized vol of daily log returns, percent
	FXVolLevel float64

	// Secondary derived metrics keyed by name, persisted as JSONB.
	Aux map[string]float64
}

// Aux map keys
const (
	AuxCOTNetSpecPctOI = "cot_net_spec_pct_oi"
)

// AuxValue returns a secondary metric by key, 0 when absent
func (f *FXFeatures) AuxValue(key string) float64 {
	if f.Aux == nil {
		return 0
	}
	return f.Aux[key]
}

// StressLevel classifies cross-border FX/equity stress
type StressLevel string

const (
	StressNormal  StressLevel = "NORMAL"
	StressWarning StressLevel = "WARNING"
)

// PolicyRisk classifies rate-path risk from the curve shape
type PolicyRisk string

const (
	PolicyRiskLow    PolicyRisk = "LOW"
	PolicyRiskRising PolicyRisk = "RISING"
)

// MacroFeatures holds the cross-asset rates and stress snapshot for a date.
// It feeds reporting and the macro state, never the scoring engine.
type MacroFeatures struct {
	AsOf time.Time

	// Rates and spreads
	US10Y           float64
	JP10Y           float64
	US2Y            float64
	JP2Y            float64
	SpreadUSJP10Y   float64
	SpreadUSJP2Y    float64
	PolicyErrorRisk PolicyRisk

	// JPY reflexivity loop
	YenWeakening        bool
	JGBYieldsRising     bool
	ReflexiveLoopActive bool
	ReflexivityComment  string

	// Cross-border flows
	SPXRet20D      float64
	DXYRet20D      float64
	CorrSPXDXY60D  float64
	FXEquityStress StressLevel
}
