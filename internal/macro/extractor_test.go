package macro

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/dealerflow/dealerflow/internal/contracts"
)

func pricesFrom(asOf time.Time, values ...float64) []contracts.DatedPrice {
	out := make([]contracts.DatedPrice, len(values))
	for i, v := range values {
		out[i] = contracts.DatedPrice{AsOf: asOf.AddDate(0, 0, i-len(values)+1), Price: v}
	}
	return out
}

func TestWindowReturn(t *testing.T) {
	asOf := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)

	t.Run("basic return", func(t *testing.T) {
		got := windowReturn(pricesFrom(asOf, 100, 105, 110), 20)
		assert.InDelta(t, 10.0, got, 1e-9)
	})

	t.Run("uses only the last n observations", func(t *testing.T) {
		// With n=2 only 105 -> 110 counts
		got := windowReturn(pricesFrom(asOf, 100, 105, 110), 2)
		assert.InDelta(t, (110.0-105.0)/105.0*100, got, 1e-9)
	})

	t.Run("single observation yields zero", func(t *testing.T) {
		assert.Equal(t, 0.0, windowReturn(pricesFrom(asOf, 100), 20))
	})

	t.Run("empty series yields zero", func(t *testing.T) {
		assert.Equal(t, 0.0, windowReturn(nil, 20))
	})

	t.Run("zero base price yields zero", func(t *testing.T) {
		assert.Equal(t, 0.0, windowReturn(pricesFrom(asOf, 0, 110), 20))
	})
}

func TestLogReturns(t *testing.T) {
	got := logReturns([]float64{100, 110, 99})

	assert.Len(t, got, 2)
	assert.InDelta(t, math.Log(1.1), got[0], 1e-9)
	assert.InDelta(t, math.Log(0.9), got[1], 1e-9)

	assert.Nil(t, logReturns([]float64{100}))
	assert.Nil(t, logReturns(nil))
}

func TestPearson(t *testing.T) {
	t.Run("perfect positive", func(t *testing.T) {
		x := []float64{1, 2, 3, 4, 5}
		y := []float64{2, 4, 6, 8, 10}
		assert.InDelta(t, 1.0, pearson(x, y), 1e-9)
	})

	t.Run("perfect negative", func(t *testing.T) {
		x := []float64{1, 2, 3, 4, 5}
		y := []float64{10, 8, 6, 4, 2}
		assert.InDelta(t, -1.0, pearson(x, y), 1e-9)
	})

	t.Run("constant series yields zero", func(t *testing.T) {
		x := []float64{1, 2, 3}
		y := []float64{5, 5, 5}
		assert.Equal(t, 0.0, pearson(x, y))
	})

	t.Run("too short yields zero", func(t *testing.T) {
		assert.Equal(t, 0.0, pearson([]float64{1}, []float64{2}))
	})
}

func TestReturnCorrelation(t *testing.T) {
	asOf := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)

	t.Run("identical series correlate perfectly", func(t *testing.T) {
		// 30 days of a drifting random-ish walk, same on both sides
		values := make([]float64, 30)
		for i := range values {
			values[i] = 100 + float64(i) + 3*math.Sin(float64(i))
		}
		a := pricesFrom(asOf, values...)
		b := pricesFrom(asOf, values...)

		assert.InDelta(t, 1.0, returnCorrelation(a, b, 60), 1e-9)
	})

	t.Run("too few overlapping returns yields zero", func(t *testing.T) {
		a := pricesFrom(asOf, 100, 101, 102, 103, 104)
		b := pricesFrom(asOf, 50, 51, 52, 53, 54)

		// 4 common returns is below the 20 return minimum
		assert.Equal(t, 0.0, returnCorrelation(a, b, 60))
	})

	t.Run("disjoint dates yield zero", func(t *testing.T) {
		a := pricesFrom(asOf, 100, 101, 102)
		b := pricesFrom(asOf.AddDate(1, 0, 0), 50, 51, 52)

		assert.Equal(t, 0.0, returnCorrelation(a, b, 60))
	})
}
