package analytics

import (
	"sort"

	"storefront/internal/events"
)

// TopN returns the n entries with the highest value, ranked from 1.
// Ties keep their input order. n <= 0 yields an empty list; an n larger
// than the input returns every entry.
func TopN(entries []MetricValue, n int) []RankedEntry {
	if n <= 0 || len(entries) == 0 {
		return []RankedEntry{}
	}

	sorted := make([]MetricValue, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Value > sorted[j].Value
	})

	if n > len(sorted) {
		n = len(sorted)
	}

	results := make([]RankedEntry, n)
	for i := 0; i < n; i++ {
		results[i] = RankedEntry{
			Label: sorted[i].Label,
			Count: sorted[i].Value,
			Rank:  i + 1,
		}
	}
	return results
}

// CountBySubject counts events per subject, in the order subjects first appear.
// Events without a subject (e.g. a view of the storefront itself rather than a
// product) are not counted.
func CountBySubject(evts []events.Event) []MetricValue {
	results := []MetricValue{}
	index := make(map[string]int)

	for _, event := range evts {
		if event.Subject == "" {
			continue
		}
		i, ok := index[event.Subject]
		if !ok {
			i = len(results)
			index[event.Subject] = i
			results = append(results, MetricValue{Label: event.Subject})
		}
		results[i].Value++
	}

	return results
}
