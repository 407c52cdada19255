package events

import (
	"fmt"
	"strings"
	"time"
)

// Kind represents the type of interaction an event records.
type Kind string

const (
	KindScan     Kind = "scan"
	KindPageView Kind = "page_view"
	KindContact  Kind = "contact"
)

// Kinds lists every supported event kind.
var Kinds = []Kind{KindScan, KindPageView, KindContact}

// ParseKind converts a raw string into a Kind, rejecting unknown values.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.TrimSpace(s)); k {
	case KindScan, KindPageView, KindContact:
		return k, nil
	default:
		return "", fmt.Errorf("%w: unknown event kind %q", ErrInvalidEvent, s)
	}
}

// Attribution holds the UTM-like marketing fields captured with an event.
// Empty fields mean the value was absent.
type Attribution struct {
	Source   string `json:"source,omitempty"`
	Medium   string `json:"medium,omitempty"`
	Campaign string `json:"campaign,omitempty"`
	Content  string `json:"content,omitempty"`
	Term     string `json:"term,omitempty"`
}

// IsEmpty reports whether no attribution field is set.
func (a Attribution) IsEmpty() bool {
	return a == Attribution{}
}

// Event is one immutable interaction fact owned by a tenant.
type Event struct {
	TenantID    string       `json:"tenant_id"`
	Kind        Kind         `json:"kind"`
	OccurredAt  time.Time    `json:"occurred_at"`
	Attribution *Attribution `json:"attribution,omitempty"`
	// Subject is the kind-specific payload: the contacted method for contacts,
	// the viewed product id for page views.
	Subject string `json:"subject,omitempty"`
}
