package contracts

import "time"

// Raw market snapshot rows. These tables are owned by ingestion; the
// pipeline only ever reads them.

// OptionType distinguishes calls from puts in raw option rows
type OptionType string

const (
	OptionCall OptionType = "call"
	OptionPut  OptionType = "put"
)

// RawOptionRow is one listed option contract observation for a date.
// All rows in a daily snapshot share one underlying spot reference.
type RawOptionRow struct {
	AsOf            time.Time
	Underlying      string
	OptionSymbol    string
	Type            OptionType
	Strike          float64
	Expiry          time.Time
	UnderlyingPrice float64
	OpenInterest    float64
	Delta           float64
	Gamma           float64
}

// RawFuturesRow is one futures contract settle observation. Multiple rows
// exist per (date, underlying), one per tenor; expiry ordering identifies
// the front and back legs.
type RawFuturesRow struct {
	AsOf           time.Time
	Underlying     string
	ContractSymbol string
	Expiry         time.Time
	SettlePrice    float64
	OpenInterest   float64
}

// RawCOTRow is one weekly Commitments of Traders report row. The series is
// sparse; consumers look back to the most recent row at or before the
// target date, never forward.
type RawCOTRow struct {
	AsOf        time.Time
	Market      string
	HedgerLong  float64
	HedgerShort float64
	SpecLong    float64
	SpecShort   float64
	SmallLong   float64
	SmallShort  float64
}

// RawFXRow is one FX spot/rate observation for a pair
type RawFXRow struct {
	AsOf           time.Time
	Pair           string
	SpotPrice      float64
	ShortRateBase  float64
	ShortRateQuote float64
}

// RawRateRow is one sovereign yield snapshot used by the macro extractor
type RawRateRow struct {
	AsOf  time.Time
	US10Y float64
	JP10Y float64
	US2Y  float64
	JP2Y  float64
}

// DatedPrice is one (date, price) observation from a derived price series
type DatedPrice struct {
	AsOf  time.Time
	Price float64
}

// DateLayout is the wire format for business dates throughout the pipeline
const DateLayout = "2006-01-02"

// NormalizeDate truncates a timestamp to its calendar date in UTC.
// Every (date, symbol) key in the pipeline uses normalized dates.
func NormalizeDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
