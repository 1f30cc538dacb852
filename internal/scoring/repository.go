package scoring

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dealerflow/dealerflow/internal/contracts"
)

// Store owns the asset_scores table. Score rows are created or overwritten
// once per scoring run per (date, symbol) and never deleted here.
type Store struct {
	db *pgxpool.Pool
}

// NewStore creates a new score Store
func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

// Upsert writes one score row keyed by (as_of, symbol)
func (s *Store) Upsert(ctx context.Context, score *contracts.AssetScore) error {
	query := `
		INSERT INTO asset_scores (
			as_of, asset_type, symbol, instability_index, regime,
			pressure_direction, flow_risk, vol_risk, global_flow_score, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())
		ON CONFLICT (as_of, symbol) DO UPDATE SET
			asset_type = EXCLUDED.asset_type,
			instability_index = EXCLUDED.instability_index,
			regime = EXCLUDED.regime,
			pressure_direction = EXCLUDED.pressure_direction,
			flow_risk = EXCLUDED.flow_risk,
			vol_risk = EXCLUDED.vol_risk,
			global_flow_score = EXCLUDED.global_flow_score,
			updated_at = NOW()
	`

	_, err := s.db.Exec(ctx, query,
		contracts.NormalizeDate(score.AsOf), score.AssetType, score.Symbol,
		score.InstabilityIndex, score.Regime, score.Pressure,
		score.FlowRisk, score.VolRisk, score.GlobalFlowScore,
	)
	if err != nil {
		return fmt.Errorf("upsert asset score: %w", err)
	}

	return nil
}

// GetByDate returns every score row for the date ordered by symbol
func (s *Store) GetByDate(ctx context.Context, asOf time.Time) ([]contracts.AssetScore, error) {
	query := `
		SELECT as_of, asset_type, symbol, instability_index, regime,
			pressure_direction, flow_risk, vol_risk, global_flow_score
		FROM asset_scores
		WHERE as_of = $1
		ORDER BY symbol
	`

	rows, err := s.db.Query(ctx, query, contracts.NormalizeDate(asOf))
	if err != nil {
		return nil, fmt.Errorf("query asset scores: %w", err)
	}
	defer rows.Close()

	var scores []contracts.AssetScore
	for rows.Next() {
		var sc contracts.AssetScore
		if err := rows.Scan(
			&sc.AsOf, &sc.AssetType, &sc.Symbol, &sc.InstabilityIndex, &sc.Regime,
			&sc.Pressure, &sc.FlowRisk, &sc.VolRisk, &sc.GlobalFlowScore,
		); err != nil {
			return nil, fmt.Errorf("scan asset score: %w", err)
		}
		scores = append(scores, sc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return scores, nil
}

// GetByDateAndSymbol returns one score row, nil when absent
func (s *Store) GetByDateAndSymbol(ctx context.Context, asOf time.Time, symbol string) (*contracts.AssetScore, error) {
	query := `
		SELECT as_of, asset_type, symbol, instability_index, regime,
			pressure_direction, flow_risk, vol_risk, global_flow_score
		FROM asset_scores
		WHERE as_of = $1 AND symbol = $2
	`

	var sc contracts.AssetScore
	err := s.db.QueryRow(ctx, query, contracts.NormalizeDate(asOf), symbol).Scan(
		&sc.AsOf, &sc.AssetType, &sc.Symbol, &sc.InstabilityIndex, &sc.Regime,
		&sc.Pressure, &sc.FlowRisk, &sc.VolRisk, &sc.GlobalFlowScore,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("query asset score: %w", err)
	}

	return &sc, nil
}
