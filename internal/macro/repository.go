package macro

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dealerflow/dealerflow/internal/contracts"
)

// Store owns the three macro feature tables. The snapshot spans all three,
// so the upsert runs in one transaction keyed by as_of.
type Store struct {
	db *pgxpool.Pool
}

// NewStore creates a new macro feature Store
func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

// Upsert writes the rates, reflexivity and cross-border rows for a date
func (s *Store) Upsert(ctx context.Context, f *contracts.MacroFeatures) error {
	asOf := contracts.NormalizeDate(f.AsOf)

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	ratesQuery := `
		INSERT INTO features_rates_spreads (
			as_of, us10y, jp10y, us2y, jp2y,
			spread_usjp_10y, spread_usjp_2y, policy_error_risk, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
		ON CONFLICT (as_of) DO UPDATE SET
			us10y = EXCLUDED.us10y,
			jp10y = EXCLUDED.jp10y,
			us2y = EXCLUDED.us2y,
			jp2y = EXCLUDED.jp2y,
			spread_usjp_10y = EXCLUDED.spread_usjp_10y,
			spread_usjp_2y = EXCLUDED.spread_usjp_2y,
			policy_error_risk = EXCLUDED.policy_error_risk,
			updated_at = NOW()
	`
	if _, err := tx.Exec(ctx, ratesQuery,
		asOf, f.US10Y, f.JP10Y, f.US2Y, f.JP2Y,
		f.SpreadUSJP10Y, f.SpreadUSJP2Y, f.PolicyErrorRisk,
	); err != nil {
		return fmt.Errorf("upsert features_rates_spreads: %w", err)
	}

	reflexQuery := `
		INSERT INTO features_reflexivity_jp (
			as_of, yen_weakening_with_infl, jgb_yields_rising,
			reflexive_loop_active, comment, updated_at
		) VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (as_of) DO UPDATE SET
			yen_weakening_with_infl = EXCLUDED.yen_weakening_with_infl,
			jgb_yields_rising = EXCLUDED.jgb_yields_rising,
			reflexive_loop_active = EXCLUDED.reflexive_loop_active,
			comment = EXCLUDED.comment,
			updated_at = NOW()
	`
	if _, err := tx.Exec(ctx, reflexQuery,
		asOf, f.YenWeakening, f.JGBYieldsRising, f.ReflexiveLoopActive, f.ReflexivityComment,
	); err != nil {
		return fmt.Errorf("upsert features_reflexivity_jp: %w", err)
	}

	crossQuery := `
		INSERT INTO features_crossborder_fx_equity (
			as_of, spx_ret_20d, dxy_ret_20d, corr_spx_dxy_60d,
			fx_equity_stress, updated_at
		) VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (as_of) DO UPDATE SET
			spx_ret_20d = EXCLUDED.spx_ret_20d,
			dxy_ret_20d = EXCLUDED.dxy_ret_20d,
			corr_spx_dxy_60d = EXCLUDED.corr_spx_dxy_60d,
			fx_equity_stress = EXCLUDED.fx_equity_stress,
			updated_at = NOW()
	`
	if _, err := tx.Exec(ctx, crossQuery,
		asOf, f.SPXRet20D, f.DXYRet20D, f.CorrSPXDXY60D, f.FXEquityStress,
	); err != nil {
		return fmt.Errorf("upsert features_crossborder_fx_equity: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

// GetByDate reassembles the macro snapshot for a date, nil when no macro
// table has a row for it. A partially present snapshot keeps zero defaults
// for the missing parts.
func (s *Store) GetByDate(ctx context.Context, asOf time.Time) (*contracts.MacroFeatures, error) {
	date := contracts.NormalizeDate(asOf)

	f := &contracts.MacroFeatures{
		AsOf:            date,
		PolicyErrorRisk: contracts.PolicyRiskLow,
		FXEquityStress:  contracts.StressNormal,
	}
	found := false

	ratesQuery := `
		SELECT us10y, jp10y, us2y, jp2y, spread_usjp_10y, spread_usjp_2y, policy_error_risk
		FROM features_rates_spreads
		WHERE as_of = $1
	`
	err := s.db.QueryRow(ctx, ratesQuery, date).Scan(
		&f.US10Y, &f.JP10Y, &f.US2Y, &f.JP2Y,
		&f.SpreadUSJP10Y, &f.SpreadUSJP2Y, &f.PolicyErrorRisk,
	)
	switch {
	case err == nil:
		found = true
	case errors.Is(err, pgx.ErrNoRows):
	default:
		return nil, fmt.Errorf("query features_rates_spreads: %w", err)
	}

	reflexQuery := `
		SELECT yen_weakening_with_infl, jgb_yields_rising, reflexive_loop_active, comment
		FROM features_reflexivity_jp
		WHERE as_of = $1
	`
	err = s.db.QueryRow(ctx, reflexQuery, date).Scan(
		&f.YenWeakening, &f.JGBYieldsRising, &f.ReflexiveLoopActive, &f.ReflexivityComment,
	)
	switch {
	case err == nil:
		found = true
	case errors.Is(err, pgx.ErrNoRows):
	default:
		return nil, fmt.Errorf("query features_reflexivity_jp: %w", err)
	}

	crossQuery := `
		SELECT spx_ret_20d, dxy_ret_20d, corr_spx_dxy_60d, fx_equity_stress
		FROM features_crossborder_fx_equity
		WHERE as_of = $1
	`
	err = s.db.QueryRow(ctx, crossQuery, date).Scan(
		&f.SPXRet20D, &f.DXYRet20D, &f.CorrSPXDXY60D, &f.FXEquityStress,
	)
	switch {
	case err == nil:
		found = true
	case errors.Is(err, pgx.ErrNoRows):
	default:
		return nil, fmt.Errorf("query features_crossborder_fx_equity: %w", err)
	}

	if !found {
		return nil, nil
	}

	return f, nil
}
