package analytics

// TrendDelta is the period-over-period change of a metric.
type TrendDelta struct {
	Current       int64 `json:"current"`
	Previous      int64 `json:"previous"`
	Delta         int64 `json:"delta"`
	PercentChange int64 `json:"percent_change"`
}

// Trend compares a current period count against the previous period.
// A previous count of zero never divides: growth from zero reports 100,
// zero against zero reports 0.
func Trend(current, previous int64) TrendDelta {
	trend := TrendDelta{
		Current:  current,
		Previous: previous,
		Delta:    current - previous,
	}

	switch {
	case previous == 0 && current > 0:
		trend.PercentChange = 100
	case previous == 0:
		trend.PercentChange = 0
	default:
		trend.PercentChange = roundedPercent(current-previous, previous)
	}

	return trend
}
