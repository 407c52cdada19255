package events

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/karloscodes/cartridge"

	"storefront/internal/pkg/telemetry"
)

// CollectEventInput defines the loosely typed payload accepted from the storefront.
type CollectEventInput struct {
	TenantID    string
	Kind        string
	Timestamp   time.Time
	Subject     string
	LandingURL  string
	Attribution *Attribution
}

// NewEvent validates an ingestion payload and converts it into an Event.
// A zero timestamp is replaced by now; all timestamps are stored in UTC.
func NewEvent(input *CollectEventInput, now time.Time) (Event, error) {
	if input == nil {
		return Event{}, fmt.Errorf("%w: empty payload", ErrInvalidEvent)
	}

	tenantID := strings.TrimSpace(input.TenantID)
	if tenantID == "" {
		return Event{}, fmt.Errorf("%w: tenant id is required", ErrInvalidEvent)
	}

	kind, err := ParseKind(input.Kind)
	if err != nil {
		return Event{}, err
	}

	occurredAt := input.Timestamp
	if occurredAt.IsZero() {
		occurredAt = now
	}

	attribution := input.Attribution
	if attribution == nil || attribution.IsEmpty() {
		attribution = AttributionFromURL(input.LandingURL)
	}

	return Event{
		TenantID:    tenantID,
		Kind:        kind,
		OccurredAt:  occurredAt.UTC(),
		Attribution: attribution,
		Subject:     strings.TrimSpace(input.Subject),
	}, nil
}

// AttributionFromURL reads the utm_* query parameters of a landing URL.
// Returns nil when the URL is empty, unparseable or carries no UTM parameters.
func AttributionFromURL(rawURL string) *Attribution {
	if rawURL == "" {
		return nil
	}

	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return nil
	}

	query := parsedURL.Query()
	attribution := Attribution{
		Source:   query.Get(UTMSourceParam),
		Medium:   query.Get(UTMMediumParam),
		Campaign: query.Get(UTMCampaignParam),
		Content:  query.Get(UTMContentParam),
		Term:     query.Get(UTMTermParam),
	}
	if attribution.IsEmpty() {
		return nil
	}
	return &attribution
}

// CollectEvent validates the payload and appends it to the event store.
func CollectEvent(dbManager cartridge.DBManager, logger *slog.Logger, input *CollectEventInput, now time.Time) (Event, error) {
	event, err := NewEvent(input, now)
	if err != nil {
		telemetry.EventsRejected.Inc()
		logger.Debug("Rejected event payload", slog.Any("error", err))
		return Event{}, err
	}

	if err := InsertEvent(dbManager.GetConnection(), logger, event); err != nil {
		logger.Error("Failed to store event", slog.Any("error", err), slog.String("tenant", event.TenantID))
		return Event{}, err
	}

	telemetry.EventsCollected.WithLabelValues(string(event.Kind)).Inc()
	return event, nil
}
