package events_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/events"
	"storefront/internal/testsupport"
)

var now = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func TestNewEvent(t *testing.T) {
	madrid := time.FixedZone("CET", 3600)

	t.Run("valid payload is normalized to UTC", func(t *testing.T) {
		event, err := events.NewEvent(&events.CollectEventInput{
			TenantID:  " tacos ",
			Kind:      "contact",
			Timestamp: time.Date(2025, 3, 10, 1, 30, 0, 0, madrid),
			Subject:   " whatsapp ",
		}, now)
		require.NoError(t, err)

		assert.Equal(t, "tacos", event.TenantID)
		assert.Equal(t, events.KindContact, event.Kind)
		assert.Equal(t, time.Date(2025, 3, 10, 0, 30, 0, 0, time.UTC), event.OccurredAt)
		assert.Equal(t, time.UTC, event.OccurredAt.Location())
		assert.Equal(t, "whatsapp", event.Subject)
		assert.Nil(t, event.Attribution)
	})

	t.Run("zero timestamp defaults to now", func(t *testing.T) {
		event, err := events.NewEvent(&events.CollectEventInput{TenantID: "tacos", Kind: "scan"}, now)
		require.NoError(t, err)
		assert.Equal(t, now, event.OccurredAt)
	})

	t.Run("explicit attribution wins over landing url", func(t *testing.T) {
		event, err := events.NewEvent(&events.CollectEventInput{
			TenantID:    "tacos",
			Kind:        "scan",
			LandingURL:  "https://shop.example/tacos?utm_source=flyer",
			Attribution: &events.Attribution{Source: "qr_code"},
		}, now)
		require.NoError(t, err)
		assert.Equal(t, &events.Attribution{Source: "qr_code"}, event.Attribution)
	})

	t.Run("attribution falls back to landing url", func(t *testing.T) {
		event, err := events.NewEvent(&events.CollectEventInput{
			TenantID:    "tacos",
			Kind:        "scan",
			LandingURL:  "https://shop.example/tacos?utm_source=qr_code&utm_medium=print&utm_campaign=table_tent",
			Attribution: &events.Attribution{},
		}, now)
		require.NoError(t, err)
		assert.Equal(t, &events.Attribution{Source: "qr_code", Medium: "print", Campaign: "table_tent"}, event.Attribution)
	})

	t.Run("invalid payloads", func(t *testing.T) {
		inputs := []*events.CollectEventInput{
			nil,
			{Kind: "scan"},
			{TenantID: "   ", Kind: "scan"},
			{TenantID: "tacos", Kind: "purchase"},
			{TenantID: "tacos"},
		}
		for _, input := range inputs {
			_, err := events.NewEvent(input, now)
			assert.ErrorIs(t, err, events.ErrInvalidEvent)
		}
	})
}

func TestAttributionFromURL(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		expected *events.Attribution
	}{
		{name: "empty", url: "", expected: nil},
		{name: "no utm parameters", url: "https://shop.example/tacos?ref=abc", expected: nil},
		{name: "unparseable", url: "://bad url", expected: nil},
		{
			name:     "all parameters",
			url:      "https://shop.example/?utm_source=instagram&utm_medium=social&utm_campaign=spring&utm_content=story&utm_term=tacos",
			expected: &events.Attribution{Source: "instagram", Medium: "social", Campaign: "spring", Content: "story", Term: "tacos"},
		},
		{name: "medium only", url: "/tacos?utm_medium=print", expected: &events.Attribution{Medium: "print"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, events.AttributionFromURL(tt.url))
		})
	}
}

func TestCollectEvent(t *testing.T) {
	dbManager, logger := testsupport.SetupTestDBManager(t)
	db := dbManager.GetConnection()
	testsupport.CleanAllTables(db)

	event, err := events.CollectEvent(dbManager, logger, &events.CollectEventInput{
		TenantID:   "tacos",
		Kind:       "scan",
		Timestamp:  now,
		LandingURL: "https://shop.example/tacos?utm_source=qr_code",
	}, now)
	require.NoError(t, err)
	assert.Equal(t, "qr_code", event.Attribution.Source)

	var count int64
	require.NoError(t, db.Model(&events.Record{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	_, err = events.CollectEvent(dbManager, logger, &events.CollectEventInput{TenantID: "tacos", Kind: "nope"}, now)
	assert.ErrorIs(t, err, events.ErrInvalidEvent)

	require.NoError(t, db.Model(&events.Record{}).Count(&count).Error)
	assert.Equal(t, int64(1), count, "rejected payloads are not stored")
}
