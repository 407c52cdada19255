package analytics_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"storefront/internal/analytics"
)

func TestTrend(t *testing.T) {
	tests := []struct {
		name          string
		current       int64
		previous      int64
		delta         int64
		percentChange int64
	}{
		{name: "zero against zero", current: 0, previous: 0, delta: 0, percentChange: 0},
		{name: "growth from zero", current: 5, previous: 0, delta: 5, percentChange: 100},
		{name: "doubled", current: 20, previous: 10, delta: 10, percentChange: 100},
		{name: "dropped to zero", current: 0, previous: 8, delta: -8, percentChange: -100},
		{name: "unchanged", current: 7, previous: 7, delta: 0, percentChange: 0},
		{name: "rounds to nearest", current: 4, previous: 3, delta: 1, percentChange: 33},
		{name: "rounds half away from zero", current: 3, previous: 8, delta: -5, percentChange: -63},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			trend := analytics.Trend(tt.current, tt.previous)
			assert.Equal(t, tt.delta, trend.Delta)
			assert.Equal(t, tt.percentChange, trend.PercentChange)
			assert.Equal(t, tt.current, trend.Current)
			assert.Equal(t, tt.previous, trend.Previous)
		})
	}
}

func TestTrendLargeCounts(t *testing.T) {
	tests := []struct {
		name          string
		current       int64
		previous      int64
		percentChange int64
	}{
		{name: "doubled past the scaled range", current: 200_000_000_000_000_000, previous: 100_000_000_000_000_000, percentChange: 100},
		{name: "dropped to zero from a huge count", current: 0, previous: 4_000_000_000_000_000_000, percentChange: -100},
		{name: "third of a huge count", current: 4_000_000_000_000_000_000, previous: 3_000_000_000_000_000_000, percentChange: 33},
		{name: "saturates above int64", current: 1_000_000_000_000_000_000, previous: 1, percentChange: math.MaxInt64},
		{name: "saturates below int64", current: math.MinInt64 / 2, previous: 1, percentChange: math.MinInt64},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			trend := analytics.Trend(tt.current, tt.previous)
			assert.Equal(t, tt.current-tt.previous, trend.Delta)
			assert.Equal(t, tt.percentChange, trend.PercentChange)
		})
	}
}
