package macro

import (
	"context"
	"fmt"
	"time"

	"github.com/dealerflow/dealerflow/internal/contracts"
	"github.com/dealerflow/dealerflow/internal/universe"
	"github.com/dealerflow/dealerflow/pkg/logger"
)

// AssetSnapshot is one asset's entry in the macro state. An asset without
// a score row for the date renders as PENDING with a zero index, so "no
// data" can never read as a computed stable state.
type AssetSnapshot struct {
	AssetType   contracts.AssetType `json:"asset_type"`
	Instability float64             `json:"instability_index"`
	Regime      contracts.Regime    `json:"regime"`
	Pressure    contracts.Pressure  `json:"pressure_direction"`
}

// RatesSummary is the rates slice of the macro state
type RatesSummary struct {
	US10Y         float64              `json:"us10y"`
	JP10Y         float64              `json:"jp10y"`
	SpreadUSJP10Y float64              `json:"spread_usjp_10y"`
	PolicyRisk    contracts.PolicyRisk `json:"policy_error_risk"`
}

// MacroState is the read-only aggregate view joining score rows and macro
// feature rows for one date. Downstream reporting consumes it as-is.
type MacroState struct {
	AsOf   string                   `json:"as_of"`
	Assets map[string]AssetSnapshot `json:"assets"`

	Rates               RatesSummary          `json:"rates"`
	ReflexiveLoopActive bool                  `json:"reflexive_loop_active"`
	ReflexivityComment  string                `json:"reflexivity_comment,omitempty"`
	DXYRet20D           float64               `json:"dxy_ret_20d"`
	SPXRet20D           float64               `json:"spx_ret_20d"`
	FXEquityStress      contracts.StressLevel `json:"fx_equity_stress"`
}

// StateBuilder assembles the macro state for a date
type StateBuilder struct {
	scores contracts.ScoreStore
	store  contracts.MacroFeatureStore
	logger *logger.Logger
}

// NewStateBuilder creates a new StateBuilder
func NewStateBuilder(scores contracts.ScoreStore, store contracts.MacroFeatureStore, log *logger.Logger) *StateBuilder {
	return &StateBuilder{
		scores: scores,
		store:  store,
		logger: log,
	}
}

// classAssetType maps universe classes to persisted asset types
func classAssetType(class universe.Class) contracts.AssetType {
	switch class {
	case universe.ClassEquity:
		return contracts.AssetEquity
	case universe.ClassCommodity:
		return contracts.AssetCommodity
	default:
		return contracts.AssetFX
	}
}

// Build joins the date's score rows and macro feature row into one state.
// Every universe asset appears in the result; missing scores are PENDING.
func (b *StateBuilder) Build(ctx context.Context, asOf time.Time, u *universe.Universe) (*MacroState, error) {
	asOf = contracts.NormalizeDate(asOf)

	state := &MacroState{
		AsOf:           asOf.Format(contracts.DateLayout),
		Assets:         make(map[string]AssetSnapshot, len(u.Assets)),
		FXEquityStress: contracts.StressNormal,
		Rates:          RatesSummary{PolicyRisk: contracts.PolicyRiskLow},
	}

	for _, asset := range u.Assets {
		state.Assets[asset.Symbol] = AssetSnapshot{
			AssetType: classAssetType(asset.Class),
			Regime:    contracts.RegimePending,
		}
	}

	scores, err := b.scores.GetByDate(ctx, asOf)
	if err != nil {
		return nil, fmt.Errorf("fetch scores: %w", err)
	}
	for _, sc := range scores {
		state.Assets[sc.Symbol] = AssetSnapshot{
			AssetType:   sc.AssetType,
			Instability: sc.InstabilityIndex,
			Regime:      sc.Regime,
			Pressure:    sc.Pressure,
		}
	}

	feats, err := b.store.GetByDate(ctx, asOf)
	if err != nil {
		return nil, fmt.Errorf("fetch macro features: %w", err)
	}
	if feats != nil {
		state.Rates = RatesSummary{
			US10Y:         feats.US10Y,
			JP10Y:         feats.JP10Y,
			SpreadUSJP10Y: feats.SpreadUSJP10Y,
			PolicyRisk:    feats.PolicyErrorRisk,
		}
		state.ReflexiveLoopActive = feats.ReflexiveLoopActive
		state.ReflexivityComment = feats.ReflexivityComment
		state.DXYRet20D = feats.DXYRet20D
		state.SPXRet20D = feats.SPXRet20D
		state.FXEquityStress = feats.FXEquityStress
	} else {
		b.logger.WithField("date", state.AsOf).Debug("No macro features for date")
	}

	return state, nil
}

// Pending reports whether any asset is still awaiting a score
func (s *MacroState) Pending() bool {
	for _, a := range s.Assets {
		if a.Regime == contracts.RegimePending {
			return true
		}
	}
	return false
}
