// Package analytics turns snapshots of raw events into dashboard-ready
// aggregates. Every function here is pure: it reads the events it is given,
// never mutates them, and holds no state between calls.
//
// The package is organized into focused modules:
//   - attribution.go: attribution key resolution ("Direct" fallback)
//   - sources.go: per-source counts and percentages
//   - metrics.go: top-N rankings (products by views, contact methods)
//   - comparison.go: period-over-period trend deltas
package analytics

// MetricValue is a labelled metric observation fed into a ranking.
type MetricValue struct {
	Label string `json:"label"`
	Value int64  `json:"value"`
}

// RankedEntry is one row of a top-N ranking. Rank is 1-based.
type RankedEntry struct {
	Label string `json:"label"`
	Count int64  `json:"count"`
	Rank  int    `json:"rank"`
}

// SourceShare is the share of events attributed to one source.
type SourceShare struct {
	Key        string `json:"key"`
	Count      int64  `json:"count"`
	Percentage int64  `json:"percentage"`
}
