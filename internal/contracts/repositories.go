package contracts

import (
	"context"
	"time"
)

// Repository interfaces are defined here and implemented against Postgres
// in the stage packages. Raw repositories are read-only; each store owns
// the writes to exactly one derived table and upserts only the columns it
// owns.

// OptionRepository reads raw option chain snapshots
type OptionRepository interface {
	// GetByDateAndUnderlying returns every contract observation for the
	// date, empty slice when the day is missing.
	GetByDateAndUnderlying(ctx context.Context, asOf time.Time, underlying string) ([]RawOptionRow, error)

	// GetSpotHistory returns one spot reference per date over the range,
	// ordered by date ascending. Used for index return windows in the
	// macro extractor.
	GetSpotHistory(ctx context.Context, underlying string, from, to time.Time) ([]DatedPrice, error)
}

// FuturesRepository reads raw futures curve snapshots
type FuturesRepository interface {
	// GetByDateAndUnderlying returns contracts ordered by expiry
	// ascending (front leg first).
	GetByDateAndUnderlying(ctx context.Context, asOf time.Time, underlying string) ([]RawFuturesRow, error)
}

// COTRepository reads weekly positioning reports
type COTRepository interface {
	// GetLatestByMarket returns the most recent row at or before asOf,
	// nil when the market has no history yet.
	GetLatestByMarket(ctx context.Context, market string, asOf time.Time) (*RawCOTRow, error)
}

// FXRepository reads raw FX spot/rate observations
type FXRepository interface {
	GetByPairAndDate(ctx context.Context, pair string, asOf time.Time) (*RawFXRow, error)
	// GetByPairAndDateRange returns rows ordered by date ascending
	GetByPairAndDateRange(ctx context.Context, pair string, from, to time.Time) ([]RawFXRow, error)
}

// RatesRepository reads sovereign yield snapshots for the macro extractor
type RatesRepository interface {
	// GetLatest returns the most recent snapshot at or before asOf,
	// nil when none exists.
	GetLatest(ctx context.Context, asOf time.Time) (*RawRateRow, error)
}

// EquityFeatureStore owns the features_equity table
type EquityFeatureStore interface {
	Upsert(ctx context.Context, f *EquityFeatures) error
	GetByDate(ctx context.Context, asOf time.Time, underlying string) (*EquityFeatures, error)
}

// CommodityFeatureStore owns the features_commodity table
type CommodityFeatureStore interface {
	Upsert(ctx context.Context, f *CommodityFeatures) error
	GetByDate(ctx context.Context, asOf time.Time, underlying string) (*CommodityFeatures, error)
}

// FXFeatureStore owns the features_fx table
type FXFeatureStore interface {
	Upsert(ctx context.Context, f *FXFeatures) error
	GetByDate(ctx context.Context, asOf time.Time, pair string) (*FXFeatures, error)
}

// MacroFeatureStore owns the macro feature tables
type MacroFeatureStore interface {
	Upsert(ctx context.Context, f *MacroFeatures) error
	GetByDate(ctx context.Context, asOf time.Time) (*MacroFeatures, error)
}

// ScoreStore owns the asset_scores table
type ScoreStore interface {
	Upsert(ctx context.Context, score *AssetScore) error
	GetByDate(ctx context.Context, asOf time.Time) ([]AssetScore, error)
	GetByDateAndSymbol(ctx context.Context, asOf time.Time, symbol string) (*AssetScore, error)
}
