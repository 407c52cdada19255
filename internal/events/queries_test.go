package events_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/events"
	"storefront/internal/testsupport"
)

func TestQueryEvents(t *testing.T) {
	dbManager, logger := testsupport.SetupTestDBManager(t)
	db := dbManager.GetConnection()
	testsupport.CleanAllTables(db)

	base := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	require.NoError(t, events.InsertEvents(db, logger, []events.Event{
		{TenantID: "tacos", Kind: events.KindScan, OccurredAt: base.Add(2 * time.Hour), Attribution: &events.Attribution{Source: "flyer"}},
		{TenantID: "tacos", Kind: events.KindScan, OccurredAt: base, Attribution: &events.Attribution{Source: "qr_code", Medium: "print"}},
		{TenantID: "tacos", Kind: events.KindPageView, OccurredAt: base.Add(time.Hour), Subject: "burrito"},
		{TenantID: "tacos", Kind: events.KindScan, OccurredAt: base.Add(2 * time.Hour)},
		{TenantID: "burgers", Kind: events.KindScan, OccurredAt: base},
	}))

	t.Run("ordered by occurrence then insertion", func(t *testing.T) {
		evts, err := events.QueryEvents(db, logger, events.Query{TenantID: "tacos"})
		require.NoError(t, err)
		require.Len(t, evts, 4)

		assert.Equal(t, "qr_code", evts[0].Attribution.Source)
		assert.Equal(t, "print", evts[0].Attribution.Medium)
		assert.Equal(t, "burrito", evts[1].Subject)
		assert.Equal(t, "flyer", evts[2].Attribution.Source)
		assert.Nil(t, evts[3].Attribution)
		for _, event := range evts {
			assert.Equal(t, "tacos", event.TenantID)
			assert.Equal(t, time.UTC, event.OccurredAt.Location())
		}
	})

	t.Run("kind and inclusive time range", func(t *testing.T) {
		evts, err := events.QueryEvents(db, logger, events.Query{
			TenantID: "tacos",
			Kind:     events.KindScan,
			From:     base,
			To:       base.Add(time.Hour),
		})
		require.NoError(t, err)
		require.Len(t, evts, 1)
		assert.Equal(t, base, evts[0].OccurredAt)
	})

	t.Run("whitelisted filters", func(t *testing.T) {
		evts, err := events.QueryEvents(db, logger, events.Query{
			TenantID: "tacos",
			Filters:  map[string]string{"utm_source": "flyer"},
		})
		require.NoError(t, err)
		require.Len(t, evts, 1)

		evts, err = events.QueryEvents(db, logger, events.Query{
			TenantID: "tacos",
			Filters:  map[string]string{"subject": "burrito"},
		})
		require.NoError(t, err)
		require.Len(t, evts, 1)
	})

	t.Run("unknown filter is rejected", func(t *testing.T) {
		_, err := events.QueryEvents(db, logger, events.Query{
			TenantID: "tacos",
			Filters:  map[string]string{"tenant_id = 'burgers' OR 1": "1"},
		})
		assert.ErrorIs(t, err, events.ErrInvalidQuery)
	})

	t.Run("tenant is required", func(t *testing.T) {
		_, err := events.QueryEvents(db, logger, events.Query{})
		assert.ErrorIs(t, err, events.ErrInvalidQuery)
	})
}

func TestQueryEventsQuarantinesMalformedRows(t *testing.T) {
	dbManager, logger := testsupport.SetupTestDBManager(t)
	db := dbManager.GetConnection()
	testsupport.CleanAllTables(db)

	at := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	require.NoError(t, events.InsertEvent(db, logger, events.Event{TenantID: "tacos", Kind: events.KindScan, OccurredAt: at}))
	// Rows written by an older client with a kind this build no longer knows
	require.NoError(t, db.Create(&events.Record{TenantID: "tacos", Kind: "qr_scan", OccurredAt: at}).Error)

	evts, err := events.QueryEvents(db, logger, events.Query{TenantID: "tacos"})
	require.NoError(t, err)
	require.Len(t, evts, 1)
	assert.Equal(t, events.KindScan, evts[0].Kind)
}

func TestRecordToEvent(t *testing.T) {
	at := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	_, err := events.Record{ID: 1, Kind: "scan", OccurredAt: at}.ToEvent()
	assert.ErrorIs(t, err, events.ErrInvalidEvent)

	_, err = events.Record{ID: 2, TenantID: "tacos", Kind: "scan"}.ToEvent()
	assert.ErrorIs(t, err, events.ErrInvalidEvent)

	event, err := events.Record{ID: 3, TenantID: "tacos", Kind: "contact", OccurredAt: at, Subject: "phone"}.ToEvent()
	require.NoError(t, err)
	assert.Equal(t, events.Event{TenantID: "tacos", Kind: events.KindContact, OccurredAt: at, Subject: "phone"}, event)
}
