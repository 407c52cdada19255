package analytics

import (
	"sort"

	"storefront/internal/events"
)

// SourceBreakdown groups events by attribution key and reports each group's
// count and rounded percentage of the total. Groups are ordered by count,
// descending; equal counts keep the order in which the group first appeared.
// Empty input yields an empty list.
func SourceBreakdown(evts []events.Event) []SourceShare {
	results := []SourceShare{}
	if len(evts) == 0 {
		return results
	}

	index := make(map[string]int)
	for _, event := range evts {
		key := ResolveAttributionKey(event.Attribution)
		i, ok := index[key]
		if !ok {
			i = len(results)
			index[key] = i
			results = append(results, SourceShare{Key: key})
		}
		results[i].Count++
	}

	total := int64(len(evts))
	for i := range results {
		results[i].Percentage = roundedPercent(results[i].Count, total)
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Count > results[j].Count
	})

	return results
}
