package marketdata

import (
	"strconv"

	"github.com/dealerflow/dealerflow/pkg/logger"
)

// Raw tables carry NUMERIC columns that occasionally arrive malformed from
// upstream feeds. Repositories read them as text and coerce here so that a
// single bad field degrades to 0 with a warning instead of failing the
// whole date's batch.

// coerceFloat parses a nullable numeric-as-text column. NULL and malformed
// values both map to 0; malformed values are logged.
func coerceFloat(log *logger.Logger, table, column string, raw *string) float64 {
	if raw == nil || *raw == "" {
		return 0
	}

	v, err := strconv.ParseFloat(*raw, 64)
	if err != nil {
		log.WithFields(map[string]interface{}{
			"table":  table,
			"column": column,
			"value":  *raw,
		}).Warn("Malformed numeric field coerced to 0")
		return 0
	}

	return v
}
