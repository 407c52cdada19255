package analytics_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"storefront/internal/analytics"
	"storefront/internal/events"
)

func TestResolveAttributionKey(t *testing.T) {
	tests := []struct {
		name        string
		attribution *events.Attribution
		expected    string
	}{
		{name: "absent attribution", attribution: nil, expected: "Direct"},
		{name: "empty source", attribution: &events.Attribution{Medium: "print"}, expected: "Direct"},
		{name: "whitespace source", attribution: &events.Attribution{Source: "  \t"}, expected: "Direct"},
		{name: "plain source", attribution: &events.Attribution{Source: "qr_code"}, expected: "qr_code"},
		{name: "case is preserved", attribution: &events.Attribution{Source: "Instagram"}, expected: "Instagram"},
		{name: "surrounding spaces are kept", attribution: &events.Attribution{Source: " flyer "}, expected: " flyer "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, analytics.ResolveAttributionKey(tt.attribution))
		})
	}
}
