package marketdata

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dealerflow/dealerflow/internal/contracts"
	"github.com/dealerflow/dealerflow/pkg/logger"
)

// OptionRepository reads the raw_options table
type OptionRepository struct {
	db     *pgxpool.Pool
	logger *logger.Logger
}

// NewOptionRepository creates a new OptionRepository
func NewOptionRepository(db *pgxpool.Pool, log *logger.Logger) *OptionRepository {
	return &OptionRepository{db: db, logger: log}
}

// GetByDateAndUnderlying returns every option contract observation for the
// date. An empty day returns an empty slice, not an error.
func (r *OptionRepository) GetByDateAndUnderlying(ctx context.Context, asOf time.Time, underlying string) ([]contracts.RawOptionRow, error) {
	query := `
		SELECT
			as_of, underlying, option_symbol, type, expiry,
			strike::text, underlying_price::text, open_interest::text,
			delta::text, gamma::text
		FROM raw_options
		WHERE as_of = $1 AND underlying = $2
	`

	rows, err := r.db.Query(ctx, query, contracts.NormalizeDate(asOf), underlying)
	if err != nil {
		return nil, fmt.Errorf("query raw options: %w", err)
	}
	defer rows.Close()

	var result []contracts.RawOptionRow
	for rows.Next() {
		var row contracts.RawOptionRow
		var optType string
		var strike, spot, oi, delta, gamma *string

		if err := rows.Scan(
			&row.AsOf, &row.Underlying, &row.OptionSymbol, &optType, &row.Expiry,
			&strike, &spot, &oi, &delta, &gamma,
		); err != nil {
			return nil, fmt.Errorf("scan raw option row: %w", err)
		}

		row.Type = contracts.OptionType(optType)
		row.Strike = coerceFloat(r.logger, "raw_options", "strike", strike)
		row.UnderlyingPrice = coerceFloat(r.logger, "raw_options", "underlying_price", spot)
		row.OpenInterest = coerceFloat(r.logger, "raw_options", "open_interest", oi)
		row.Delta = coerceFloat(r.logger, "raw_options", "delta", delta)
		row.Gamma = coerceFloat(r.logger, "raw_options", "gamma", gamma)

		result = append(result, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return result, nil
}

// GetSpotHistory collapses the chain to one spot reference per date. All
// rows in a daily snapshot share one spot, so any aggregate works; MAX is
// used for determinism.
func (r *OptionRepository) GetSpotHistory(ctx context.Context, underlying string, from, to time.Time) ([]contracts.DatedPrice, error) {
	query := `
		SELECT as_of, MAX(underlying_price)::text
		FROM raw_options
		WHERE underlying = $1 AND as_of >= $2 AND as_of <= $3
		GROUP BY as_of
		ORDER BY as_of ASC
	`

	rows, err := r.db.Query(ctx, query, underlying, contracts.NormalizeDate(from), contracts.NormalizeDate(to))
	if err != nil {
		return nil, fmt.Errorf("query spot history: %w", err)
	}
	defer rows.Close()

	var result []contracts.DatedPrice
	for rows.Next() {
		var p contracts.DatedPrice
		var price *string

		if err := rows.Scan(&p.AsOf, &price); err != nil {
			return nil, fmt.Errorf("scan spot history row: %w", err)
		}

		p.Price = coerceFloat(r.logger, "raw_options", "underlying_price", price)
		result = append(result, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return result, nil
}
