// Package telemetry exposes Prometheus counters for the event pipeline.
package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// EventsCollected counts events accepted at the ingestion boundary, by kind.
	EventsCollected = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "storefront",
		Name:      "events_collected_total",
		Help:      "Events accepted and appended to the event store.",
	}, []string{"kind"})

	// EventsRejected counts ingestion payloads that failed validation.
	EventsRejected = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "storefront",
		Name:      "events_rejected_total",
		Help:      "Ingestion payloads rejected by validation.",
	})

	// EventsQuarantined counts stored rows skipped because they no longer parse.
	EventsQuarantined = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "storefront",
		Name:      "events_quarantined_total",
		Help:      "Stored event rows skipped during reads because they failed validation.",
	})

	// SchedulesDefaulted counts operating-hours days filled from the default table.
	SchedulesDefaulted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "storefront",
		Name:      "schedule_days_defaulted_total",
		Help:      "Operating-hours days replaced by the default because they were missing or malformed.",
	})
)

// Handler returns the HTTP handler serving the default Prometheus registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
