package features

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dealerflow/dealerflow/internal/contracts"
)

// Feature stores. Each store owns the writes to exactly one table and its
// upsert overwrites only the columns this stage owns, so a shared table
// could never have another stage's columns clobbered.

// EquityStore owns the features_equity table
type EquityStore struct {
	db *pgxpool.Pool
}

// NewEquityStore creates a new EquityStore
func NewEquityStore(db *pgxpool.Pool) *EquityStore {
	return &EquityStore{db: db}
}

// Upsert writes one feature row keyed by (as_of, underlying)
func (s *EquityStore) Upsert(ctx context.Context, f *contracts.EquityFeatures) error {
	query := `
		INSERT INTO features_equity (
			as_of, underlying, net_gamma, gamma_slope, gamma_near_expiry,
			near_term_gamma_ratio, put_call_oi_ratio, net_delta, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
		ON CONFLICT (as_of, underlying) DO UPDATE SET
			net_gamma = EXCLUDED.net_gamma,
			gamma_slope = EXCLUDED.gamma_slope,
			gamma_near_expiry = EXCLUDED.gamma_near_expiry,
			near_term_gamma_ratio = EXCLUDED.near_term_gamma_ratio,
			put_call_oi_ratio = EXCLUDED.put_call_oi_ratio,
			net_delta = EXCLUDED.net_delta,
			updated_at = NOW()
	`

	_, err := s.db.Exec(ctx, query,
		contracts.NormalizeDate(f.AsOf), f.Underlying, f.NetGamma, f.GammaSlope,
		f.GammaNearExpiry, f.NearTermGammaRatio, f.PutCallOIRatio, f.NetDelta,
	)
	if err != nil {
		return fmt.Errorf("upsert features_equity: %w", err)
	}

	return nil
}

// GetByDate returns the feature row for (asOf, underlying), nil when absent
func (s *EquityStore) GetByDate(ctx context.Context, asOf time.Time, underlying string) (*contracts.EquityFeatures, error) {
	query := `
		SELECT as_of, underlying, net_gamma, gamma_slope, gamma_near_expiry,
			near_term_gamma_ratio, put_call_oi_ratio, net_delta
		FROM features_equity
		WHERE as_of = $1 AND underlying = $2
	`

	var f contracts.EquityFeatures
	err := s.db.QueryRow(ctx, query, contracts.NormalizeDate(asOf), underlying).Scan(
		&f.AsOf, &f.Underlying, &f.NetGamma, &f.GammaSlope, &f.GammaNearExpiry,
		&f.NearTermGammaRatio, &f.PutCallOIRatio, &f.NetDelta,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("query features_equity: %w", err)
	}

	return &f, nil
}

// CommodityStore owns the features_commodity table
type CommodityStore struct {
	db *pgxpool.Pool
}

// NewCommodityStore creates a new CommodityStore
func NewCommodityStore(db *pgxpool.Pool) *CommodityStore {
	return &CommodityStore{db: db}
}

// Upsert writes one feature row keyed by (as_of, underlying)
func (s *CommodityStore) Upsert(ctx context.Context, f *contracts.CommodityFeatures) error {
	query := `
		INSERT INTO features_commodity (
			as_of, underlying, hedger_net_position, spec_net_position,
			backwardation_pct, roll_yield, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, NOW())
		ON CONFLICT (as_of, underlying) DO UPDATE SET
			hedger_net_position = EXCLUDED.hedger_net_position,
			spec_net_position = EXCLUDED.spec_net_position,
			backwardation_pct = EXCLUDED.backwardation_pct,
			roll_yield = EXCLUDED.roll_yield,
			updated_at = NOW()
	`

	_, err := s.db.Exec(ctx, query,
		contracts.NormalizeDate(f.AsOf), f.Underlying, f.HedgerNetPosition,
		f.SpecNetPosition, f.BackwardationPct, f.RollYield,
	)
	if err != nil {
		return fmt.Errorf("upsert features_commodity: %w", err)
	}

	return nil
}

// GetByDate returns the feature row for (asOf, underlying), nil when absent
func (s *CommodityStore) GetByDate(ctx context.Context, asOf time.Time, underlying string) (*contracts.CommodityFeatures, error) {
	query := `
		SELECT as_of, underlying, hedger_net_position, spec_net_position,
			backwardation_pct, roll_yield
		FROM features_commodity
		WHERE as_of = $1 AND underlying = $2
	`

	var f contracts.CommodityFeatures
	err := s.db.QueryRow(ctx, query, contracts.NormalizeDate(asOf), underlying).Scan(
		&f.AsOf, &f.Underlying, &f.HedgerNetPosition, &f.SpecNetPosition,
		&f.BackwardationPct, &f.RollYield,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("query features_commodity: %w", err)
	}

	return &f, nil
}

// FXStore owns the features_fx table
type FXStore struct {
	db *pgxpool.Pool
}

// NewFXStore creates a new FXStore
func NewFXStore(db *pgxpool.Pool) *FXStore {
	return &FXStore{db: db}
}

// Upsert writes one feature row keyed by (as_of, pair). Secondary metrics
// travel in the feature_vector JSONB column.
func (s *FXStore) Upsert(ctx context.Context, f *contracts.FXFeatures) error {
	aux := f.Aux
	if aux == nil {
		aux = map[string]float64{}
	}
	auxJSON, err := json.Marshal(aux)
	if err != nil {
		return fmt.Errorf("marshal feature vector: %w", err)
	}

	query := `
		INSERT INTO features_fx (
			as_of, pair, cot_net_position, rate_diff, carry_attractiveness,
			fx_vol_level, feature_vector, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		ON CONFLICT (as_of, pair) DO UPDATE SET
			cot_net_position = EXCLUDED.cot_net_position,
			rate_diff = EXCLUDED.rate_diff,
			carry_attractiveness = EXCLUDED.carry_attractiveness,
			fx_vol_level = EXCLUDED.fx_vol_level,
			feature_vector = EXCLUDED.feature_vector,
			updated_at = NOW()
	`

	_, err = s.db.Exec(ctx, query,
		contracts.NormalizeDate(f.AsOf), f.Pair, f.COTNetPosition, f.RateDiff,
		f.CarryAttractiveness, f.FXVolLevel, auxJSON,
	)
	if err != nil {
		return fmt.Errorf("upsert features_fx: %w", err)
	}

	return nil
}

// GetByDate returns the feature row for (asOf, pair), nil when absent
func (s *FXStore) GetByDate(ctx context.Context, asOf time.Time, pair string) (*contracts.FXFeatures, error) {
	query := `
		SELECT as_of, pair, cot_net_position, rate_diff, carry_attractiveness,
			fx_vol_level, feature_vector
		FROM features_fx
		WHERE as_of = $1 AND pair = $2
	`

	var f contracts.FXFeatures
	var auxJSON []byte
	err := s.db.QueryRow(ctx, query, contracts.NormalizeDate(asOf), pair).Scan(
		&f.AsOf, &f.Pair, &f.COTNetPosition, &f.RateDiff,
		&f.CarryAttractiveness, &f.FXVolLevel, &auxJSON,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("query features_fx: %w", err)
	}

	f.Aux = map[string]float64{}
	if len(auxJSON) > 0 {
		if err := json.Unmarshal(auxJSON, &f.Aux); err != nil {
			return nil, fmt.Errorf("unmarshal feature vector: %w", err)
		}
	}

	return &f, nil
}
