package events_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/events"
)

func TestParseKind(t *testing.T) {
	for _, kind := range events.Kinds {
		parsed, err := events.ParseKind(string(kind))
		require.NoError(t, err)
		assert.Equal(t, kind, parsed)
	}

	parsed, err := events.ParseKind(" scan ")
	require.NoError(t, err)
	assert.Equal(t, events.KindScan, parsed)

	for _, raw := range []string{"", "Scan", "pageview", "click"} {
		_, err := events.ParseKind(raw)
		assert.ErrorIs(t, err, events.ErrInvalidEvent, raw)
	}
}

func TestAttributionIsEmpty(t *testing.T) {
	assert.True(t, events.Attribution{}.IsEmpty())
	assert.False(t, events.Attribution{Term: "tacos"}.IsEmpty())
}
