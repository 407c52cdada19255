package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/karloscodes/cartridge"
	"gorm.io/gorm"

	"storefront/internal/events"
	"storefront/internal/vendors"
)

// EventStore reads and appends events and vendor configuration through a
// cartridge.DBManager. Every call runs on the caller's context.
type EventStore struct {
	dbManager cartridge.DBManager
	logger    *slog.Logger
}

// NewEventStore creates an EventStore backed by dbManager.
func NewEventStore(dbManager cartridge.DBManager, logger *slog.Logger) *EventStore {
	return &EventStore{dbManager: dbManager, logger: logger}
}

func (s *EventStore) conn(ctx context.Context) (*gorm.DB, error) {
	db := s.dbManager.GetConnection()
	if db == nil {
		return nil, fmt.Errorf("%w: %w", events.ErrStoreUnavailable, gorm.ErrInvalidDB)
	}
	return db.WithContext(ctx), nil
}

// QueryEvents returns the events matching q.
func (s *EventStore) QueryEvents(ctx context.Context, q events.Query) ([]events.Event, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}
	return events.QueryEvents(db, s.logger, q)
}

// InsertEvent appends event to the store.
func (s *EventStore) InsertEvent(ctx context.Context, event events.Event) error {
	db, err := s.conn(ctx)
	if err != nil {
		return err
	}
	return events.InsertEvent(db, s.logger, event)
}

// ReadVendorConfig returns the tenant's stored operating-hours document.
// An unknown tenant yields a *vendors.VendorNotFoundError.
func (s *EventStore) ReadVendorConfig(ctx context.Context, tenantID string) (json.RawMessage, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}

	vendor, err := vendors.GetVendorByTenant(db, tenantID)
	if err != nil {
		if errors.Is(err, vendors.ErrVendorNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", events.ErrStoreUnavailable, err)
	}
	return vendor.OperatingHoursDocument(), nil
}
