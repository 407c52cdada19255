package events

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/karloscodes/cartridge/sqlite"
	"gorm.io/gorm"

	"storefront/internal/pkg/telemetry"
)

const insertBatchSize = 500

// Record is the stored row for an Event. Rows are only ever inserted.
type Record struct {
	ID          uint      `gorm:"primaryKey;autoIncrement"`
	TenantID    string    `gorm:"index:idx_tenant_occurred;not null"`
	Kind        string    `gorm:"index;not null"`
	OccurredAt  time.Time `gorm:"index:idx_tenant_occurred;not null"`
	Subject     string    `gorm:"index"`
	UTMSource   string
	UTMMedium   string
	UTMCampaign string
	UTMContent  string
	UTMTerm     string
	CreatedAt   time.Time
}

// TableName keeps the table name stable regardless of the struct name.
func (Record) TableName() string {
	return "events"
}

func newRecord(event Event) *Record {
	record := &Record{
		TenantID:   event.TenantID,
		Kind:       string(event.Kind),
		OccurredAt: event.OccurredAt.UTC(),
		Subject:    event.Subject,
		CreatedAt:  time.Now().UTC(),
	}
	if event.Attribution != nil {
		record.UTMSource = event.Attribution.Source
		record.UTMMedium = event.Attribution.Medium
		record.UTMCampaign = event.Attribution.Campaign
		record.UTMContent = event.Attribution.Content
		record.UTMTerm = event.Attribution.Term
	}
	return record
}

// ToEvent re-validates a stored row and converts it into an Event.
func (r Record) ToEvent() (Event, error) {
	if strings.TrimSpace(r.TenantID) == "" {
		return Event{}, fmt.Errorf("%w: row %d has no tenant id", ErrInvalidEvent, r.ID)
	}
	kind, err := ParseKind(r.Kind)
	if err != nil {
		return Event{}, fmt.Errorf("row %d: %w", r.ID, err)
	}
	if r.OccurredAt.IsZero() {
		return Event{}, fmt.Errorf("%w: row %d has no timestamp", ErrInvalidEvent, r.ID)
	}

	event := Event{
		TenantID:   r.TenantID,
		Kind:       kind,
		OccurredAt: r.OccurredAt.UTC(),
		Subject:    r.Subject,
	}
	attribution := Attribution{
		Source:   r.UTMSource,
		Medium:   r.UTMMedium,
		Campaign: r.UTMCampaign,
		Content:  r.UTMContent,
		Term:     r.UTMTerm,
	}
	if !attribution.IsEmpty() {
		event.Attribution = &attribution
	}
	return event, nil
}

// filterColumns whitelists the equality filters a Query may carry.
var filterColumns = map[string]string{
	"subject":        "subject",
	UTMSourceParam:   "utm_source",
	UTMMediumParam:   "utm_medium",
	UTMCampaignParam: "utm_campaign",
	UTMContentParam:  "utm_content",
	UTMTermParam:     "utm_term",
}

// Query describes a read against the event store.
type Query struct {
	TenantID string
	Kind     Kind      // optional
	From     time.Time // optional, inclusive
	To       time.Time // optional, inclusive
	Filters  map[string]string
}

// QueryEvents returns the tenant's events matching q ordered by occurrence, then insertion.
// Rows that fail validation are skipped and logged rather than returned.
func QueryEvents(db *gorm.DB, logger *slog.Logger, q Query) ([]Event, error) {
	if q.TenantID == "" {
		return nil, fmt.Errorf("%w: tenant id is required", ErrInvalidQuery)
	}

	query := db.Model(&Record{}).Where("tenant_id = ?", q.TenantID)

	if q.Kind != "" {
		query = query.Where("kind = ?", string(q.Kind))
	}
	if !q.From.IsZero() {
		query = query.Where("occurred_at >= ?", q.From.UTC())
	}
	if !q.To.IsZero() {
		query = query.Where("occurred_at <= ?", q.To.UTC())
	}

	keys := make([]string, 0, len(q.Filters))
	for key := range q.Filters {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		column, ok := filterColumns[key]
		if !ok {
			return nil, fmt.Errorf("%w: unsupported filter %q", ErrInvalidQuery, key)
		}
		query = query.Where(column+" = ?", q.Filters[key])
	}

	var records []Record
	if err := query.Order("occurred_at ASC").Order("id ASC").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}

	events := make([]Event, 0, len(records))
	for _, record := range records {
		event, err := record.ToEvent()
		if err != nil {
			telemetry.EventsQuarantined.Inc()
			logger.Warn("Quarantined malformed event row",
				slog.Uint64("id", uint64(record.ID)),
				slog.String("tenant", record.TenantID),
				slog.Any("error", err))
			continue
		}
		events = append(events, event)
	}

	return events, nil
}

// InsertEvent appends a validated event to the store.
func InsertEvent(db *gorm.DB, logger *slog.Logger, event Event) error {
	record := newRecord(event)
	err := sqlite.PerformWrite(logger, db, func(tx *gorm.DB) error {
		return tx.Create(record).Error
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	return nil
}

// InsertEvents appends events in batches within a single write transaction.
func InsertEvents(db *gorm.DB, logger *slog.Logger, evts []Event) error {
	if len(evts) == 0 {
		return nil
	}

	records := make([]*Record, len(evts))
	for i, event := range evts {
		records[i] = newRecord(event)
	}

	err := sqlite.PerformWrite(logger, db, func(tx *gorm.DB) error {
		return tx.CreateInBatches(records, insertBatchSize).Error
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	return nil
}
