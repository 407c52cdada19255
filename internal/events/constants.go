package events

import "errors"

var (
	// ErrInvalidEvent is returned when an event fails validation at the ingestion boundary.
	ErrInvalidEvent = errors.New("invalid event")

	// ErrInvalidQuery is returned when a query uses an unsupported filter.
	ErrInvalidQuery = errors.New("invalid event query")

	// ErrStoreUnavailable marks failures of the underlying event store. The original
	// error is joined alongside it so callers can inspect either.
	ErrStoreUnavailable = errors.New("event store unavailable")
)

// UTM query parameter names recognised on landing URLs
const (
	UTMSourceParam   = "utm_source"
	UTMMediumParam   = "utm_medium"
	UTMCampaignParam = "utm_campaign"
	UTMContentParam  = "utm_content"
	UTMTermParam     = "utm_term"
)
