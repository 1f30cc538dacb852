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

// COTRepository reads the raw_cot table
type COTRepository struct {
	db     *pgxpool.Pool
	logger *logger.Logger
}

// NewCOTRepository creates a new COTRepository
func NewCOTRepository(db *pgxpool.Pool, log *logger.Logger) *COTRepository {
	return &COTRepository{db: db, logger: log}
}

// GetLatestByMarket returns the most recent weekly report at or before
// asOf. The COT series is weekly, so looking back is expected; a market
// with no history returns nil without error.
func (r *COTRepository) GetLatestByMarket(ctx context.Context, market string, asOf time.Time) (*contracts.RawCOTRow, error) {
	query := `
		SELECT
			as_of, market,
			hedger_long::text, hedger_short::text,
			spec_long::text, spec_short::text,
			small_long::text, small_short::text
		FROM raw_cot
		WHERE market = $1 AND as_of <= $2
		ORDER BY as_of DESC
		LIMIT 1
	`

	var row contracts.RawCOTRow
	var hl, hs, sl, ss, ml, ms *string

	err := r.db.QueryRow(ctx, query, market, contracts.NormalizeDate(asOf)).Scan(
		&row.AsOf, &row.Market, &hl, &hs, &sl, &ss, &ml, &ms,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("query latest cot row: %w", err)
	}

	row.HedgerLong = coerceFloat(r.logger, "raw_cot", "hedger_long", hl)
	row.HedgerShort = coerceFloat(r.logger, "raw_cot", "hedger_short", hs)
	row.SpecLong = coerceFloat(r.logger, "raw_cot", "spec_long", sl)
	row.SpecShort = coerceFloat(r.logger, "raw_cot", "spec_short", ss)
	row.SmallLong = coerceFloat(r.logger, "raw_cot", "small_long", ml)
	row.SmallShort = coerceFloat(r.logger, "raw_cot", "small_short", ms)

	return &row, nil
}
