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

// RatesRepository reads the raw_macro_rates table
type RatesRepository struct {
	db     *pgxpool.Pool
	logger *logger.Logger
}

// NewRatesRepository creates a new RatesRepository
func NewRatesRepository(db *pgxpool.Pool, log *logger.Logger) *RatesRepository {
	return &RatesRepository{db: db, logger: log}
}

// GetLatest returns the most recent yield snapshot at or before asOf, nil
// when none exists yet.
func (r *RatesRepository) GetLatest(ctx context.Context, asOf time.Time) (*contracts.RawRateRow, error) {
	query := `
		SELECT as_of, us10y::text, jp10y::text, us2y::text, jp2y::text
		FROM raw_macro_rates
		WHERE as_of <= $1
		ORDER BY as_of DESC
		LIMIT 1
	`

	var row contracts.RawRateRow
	var us10y, jp10y, us2y, jp2y *string

	err := r.db.QueryRow(ctx, query, contracts.NormalizeDate(asOf)).Scan(
		&row.AsOf, &us10y, &jp10y, &us2y, &jp2y,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("query latest macro rates: %w", err)
	}

	row.US10Y = coerceFloat(r.logger, "raw_macro_rates", "us10y", us10y)
	row.JP10Y = coerceFloat(r.logger, "raw_macro_rates", "jp10y", jp10y)
	row.US2Y = coerceFloat(r.logger, "raw_macro_rates", "us2y", us2y)
	row.JP2Y = coerceFloat(r.logger, "raw_macro_rates", "jp2y", jp2y)

	return &row, nil
}
