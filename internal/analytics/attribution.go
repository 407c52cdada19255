package analytics

import (
	"strings"

	"storefront/internal/events"
)

// DirectAttributionKey is the key for events without a usable source.
const DirectAttributionKey = "Direct"

// ResolveAttributionKey returns the grouping key for an event's attribution.
// A missing attribution or a blank source resolves to DirectAttributionKey;
// any other source is returned unchanged, without case folding or trimming.
func ResolveAttributionKey(attribution *events.Attribution) string {
	if attribution == nil || strings.TrimSpace(attribution.Source) == "" {
		return DirectAttributionKey
	}
	return attribution.Source
}
