package marketdata

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dealerflow/dealerflow/internal/contracts"
	"github.com/dealerflow/dealerflow/pkg/logger"
)

// FXRepository reads the raw_fx table
type FXRepository struct {
	db     *pgxpool.Pool
	logger *logger.Logger
}

// NewFXRepository creates a new FXRepository
func NewFXRepository(db *pgxpool.Pool, log *logger.Logger) *FXRepository {
	return &FXRepository{db: db, logger: log}
}

// GetByPairAndDate returns the single observation at exactly asOf, nil when
// the day is missing.
func (r *FXRepository) GetByPairAndDate(ctx context.Context, pair string, asOf time.Time) (*contracts.RawFXRow, error) {
	query := `
		SELECT as_of, pair, spot_price::text, short_rate_base::text, short_rate_quote::text
		FROM raw_fx
		WHERE pair = $1 AND as_of = $2
	`

	var row contracts.RawFXRow
	var spot, rateBase, rateQuote *string

	err := r.db.QueryRow(ctx, query, pair, contracts.NormalizeDate(asOf)).Scan(
		&row.AsOf, &row.Pair, &spot, &rateBase, &rateQuote,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("query raw fx row: %w", err)
	}

	row.SpotPrice = coerceFloat(r.logger, "raw_fx", "spot_price", spot)
	row.ShortRateBase = coerceFloat(r.logger, "raw_fx", "short_rate_base", rateBase)
	row.ShortRateQuote = coerceFloat(r.logger, "raw_fx", "short_rate_quote", rateQuote)

	return &row, nil
}

// GetByPairAndDateRange returns observations ordered by date ascending
func (r *FXRepository) GetByPairAndDateRange(ctx context.Context, pair string, from, to time.Time) ([]contracts.RawFXRow, error) {
	query := `
		SELECT as_of, pair, spot_price::text, short_rate_base::text, short_rate_quote::text
		FROM raw_fx
		WHERE pair = $1 AND as_of >= $2 AND as_of <= $3
		ORDER BY as_of ASC
	`

	rows, err := r.db.Query(ctx, query, pair, contracts.NormalizeDate(from), contracts.NormalizeDate(to))
	if err != nil {
		return nil, fmt.Errorf("query raw fx range: %w", err)
	}
	defer rows.Close()

	var result []contracts.RawFXRow
	for rows.Next() {
		var row contracts.RawFXRow
		var spot, rateBase, rateQuote *string

		if err := rows.Scan(&row.AsOf, &row.Pair, &spot, &rateBase, &rateQuote); err != nil {
			return nil, fmt.Errorf("scan raw fx row: %w", err)
		}

		row.SpotPrice = coerceFloat(r.logger, "raw_fx", "spot_price", spot)
		row.ShortRateBase = coerceFloat(r.logger, "raw_fx", "short_rate_base", rateBase)
		row.ShortRateQuote = coerceFloat(r.logger, "raw_fx", "short_rate_quote", rateQuote)

		result = append(result, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return result, nil
}
