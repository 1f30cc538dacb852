package marketdata

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dealerflow/dealerflow/internal/contracts"
	"github.com/dealerflow/dealerflow/pkg/logger"
)

// FuturesRepository reads the raw_futures table
type FuturesRepository struct {
	db     *pgxpool.Pool
	logger *logger.Logger
}

// NewFuturesRepository creates a new FuturesRepository
func NewFuturesRepository(db *pgxpool.Pool, log *logger.Logger) *FuturesRepository {
	return &FuturesRepository{db: db, logger: log}
}

// GetByDateAndUnderlying returns the futures curve for the date ordered by
// expiry ascending, so the first row is the front leg.
func (r *FuturesRepository) GetByDateAndUnderlying(ctx context.Context, asOf time.Time, underlying string) ([]contracts.RawFuturesRow, error) {
	query := `
		SELECT
			as_of, underlying, contract_symbol, expiry,
			settle_price::text, open_interest::text
		FROM raw_futures
		WHERE as_of = $1 AND underlying = $2
		ORDER BY expiry ASC
	`

	rows, err := r.db.Query(ctx, query, contracts.NormalizeDate(asOf), underlying)
	if err != nil {
		return nil, fmt.Errorf("query raw futures: %w", err)
	}
	defer rows.Close()

	var result []contracts.RawFuturesRow
	for rows.Next() {
		var row contracts.RawFuturesRow
		var settle, oi *string

		if err := rows.Scan(
			&row.AsOf, &row.Underlying, &row.ContractSymbol, &row.Expiry,
			&settle, &oi,
		); err != nil {
			return nil, fmt.Errorf("scan raw futures row: %w", err)
		}

		row.SettlePrice = coerceFloat(r.logger, "raw_futures", "settle_price", settle)
		row.OpenInterest = coerceFloat(r.logger, "raw_futures", "open_interest", oi)

		result = append(result, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return result, nil
}
