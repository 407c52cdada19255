// Package dashboard answers the storefront dashboard's questions for one
// tenant at a time: daily series, source breakdowns, rankings, trends and the
// vendor's normalized operating hours.
//
// The service fetches raw events through a Store and hands them to the pure
// functions in analytics, timeframe and hours. It keeps no state between
// calls; every input arrives as an argument.
package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"storefront/internal/analytics"
	"storefront/internal/events"
	"storefront/internal/hours"
	"storefront/internal/pkg/async"
	"storefront/internal/pkg/telemetry"
	"storefront/internal/timeframe"
)

// ErrUnknownMetric is returned for ranking or trend metrics the service does not know.
var ErrUnknownMetric = errors.New("unknown metric")

// Ranking metrics
const (
	MetricTopProducts    = "top_products"
	MetricContactMethods = "contact_methods"
)

// Trend metrics
const (
	MetricScans     = "scans"
	MetricPageViews = "page_views"
	MetricContacts  = "contacts"
)

// rankingKinds maps each ranking metric to the event kind whose subjects it ranks.
var rankingKinds = map[string]events.Kind{
	MetricTopProducts:    events.KindPageView,
	MetricContactMethods: events.KindContact,
}

var trendKinds = map[string]events.Kind{
	MetricScans:     events.KindScan,
	MetricPageViews: events.KindPageView,
	MetricContacts:  events.KindContact,
}

// Store is the subset of the event store the dashboard reads from.
type Store interface {
	QueryEvents(ctx context.Context, q events.Query) ([]events.Event, error)
	ReadVendorConfig(ctx context.Context, tenantID string) (json.RawMessage, error)
}

// Options tunes a Service. Zero values fall back to the defaults.
type Options struct {
	DefaultWindowDays int
	MaxWindowDays     int
	Workers           int
}

type Service struct {
	store       Store
	bucketizer  *timeframe.Bucketizer
	clock       timeframe.TimeProvider
	logger      *slog.Logger
	pool        *async.Pool
	defaultDays int
	maxDays     int
}

// NewService creates a Service. The bucketizer's location is the reference
// zone for every calendar-day computation.
func NewService(store Store, bucketizer *timeframe.Bucketizer, clock timeframe.TimeProvider, logger *slog.Logger, opts Options) *Service {
	if bucketizer == nil {
		bucketizer = timeframe.NewBucketizer(nil)
	}
	if clock == nil {
		clock = &timeframe.DefaultTimeProvider{}
	}
	if opts.DefaultWindowDays < 1 {
		opts.DefaultWindowDays = timeframe.DefaultWindowDays
	}
	if opts.MaxWindowDays < 1 {
		opts.MaxWindowDays = timeframe.DefaultMaxWindowDays
	}
	if opts.Workers < 1 {
		opts.Workers = 4
	}

	return &Service{
		store:       store,
		bucketizer:  bucketizer,
		clock:       clock,
		logger:      logger,
		pool:        async.NewPool(opts.Workers),
		defaultDays: opts.DefaultWindowDays,
		maxDays:     opts.MaxWindowDays,
	}
}

// Location returns the reference zone.
func (s *Service) Location() *time.Location {
	return s.bucketizer.Location
}

// DefaultWindow returns the configured default window ending today.
func (s *Service) DefaultWindow() (timeframe.DayWindow, error) {
	return s.lastNDays(s.defaultDays)
}

func (s *Service) lastNDays(days int) (timeframe.DayWindow, error) {
	if days > s.maxDays {
		return timeframe.DayWindow{}, fmt.Errorf("%w: %d days requested, the limit is %d", timeframe.ErrInvalidWindow, days, s.maxDays)
	}
	loc := s.Location()
	return timeframe.LastNDays(s.clock.Now(loc), days, loc)
}

// fetch loads the tenant's events of kind (all kinds when empty) inside window.
// Windows longer than the configured maximum are rejected before any query runs.
func (s *Service) fetch(ctx context.Context, tenantID string, kind events.Kind, window timeframe.DayWindow) ([]events.Event, error) {
	if err := window.CheckMaxDays(s.maxDays); err != nil {
		return nil, err
	}

	from, to := window.Bounds(s.Location())
	evts, err := s.store.QueryEvents(ctx, events.Query{
		TenantID: tenantID,
		Kind:     kind,
		From:     from,
		To:       to,
	})
	if err != nil {
		s.logger.Error("Failed to query events",
			slog.String("tenant", tenantID),
			slog.String("kind", string(kind)),
			slog.String("window", window.String()),
			slog.Any("error", err))
		return nil, err
	}
	return evts, nil
}

// GetDailySeries returns one bucket per day for the last days days, today included.
func (s *Service) GetDailySeries(ctx context.Context, tenantID string, kind events.Kind, days int) ([]timeframe.DayBucket, error) {
	window, err := s.lastNDays(days)
	if err != nil {
		return nil, err
	}
	return s.GetSeriesForWindow(ctx, tenantID, kind, window)
}

// GetSeriesForWindow returns one bucket per day of window.
func (s *Service) GetSeriesForWindow(ctx context.Context, tenantID string, kind events.Kind, window timeframe.DayWindow) ([]timeframe.DayBucket, error) {
	evts, err := s.fetch(ctx, tenantID, kind, window)
	if err != nil {
		return nil, err
	}

	timestamps := make([]time.Time, len(evts))
	for i, event := range evts {
		timestamps[i] = event.OccurredAt
	}
	return s.bucketizer.BucketizeWindow(timestamps, window), nil
}

// GetSourceBreakdown groups the tenant's events in window by attribution source.
func (s *Service) GetSourceBreakdown(ctx context.Context, tenantID string, kind events.Kind, window timeframe.DayWindow) ([]analytics.SourceShare, error) {
	evts, err := s.fetch(ctx, tenantID, kind, window)
	if err != nil {
		return nil, err
	}
	return analytics.SourceBreakdown(evts), nil
}

// GetTopEntries ranks the metric's subjects over the default window.
func (s *Service) GetTopEntries(ctx context.Context, tenantID string, metric string, n int) ([]analytics.RankedEntry, error) {
	window, err := s.DefaultWindow()
	if err != nil {
		return nil, err
	}
	return s.GetTopEntriesForWindow(ctx, tenantID, metric, n, window)
}

// GetTopEntriesForWindow ranks the metric's subjects over window.
func (s *Service) GetTopEntriesForWindow(ctx context.Context, tenantID string, metric string, n int, window timeframe.DayWindow) ([]analytics.RankedEntry, error) {
	kind, ok := rankingKinds[metric]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMetric, metric)
	}
	if n <= 0 {
		return []analytics.RankedEntry{}, nil
	}

	evts, err := s.fetch(ctx, tenantID, kind, window)
	if err != nil {
		return nil, err
	}
	return analytics.TopN(analytics.CountBySubject(evts), n), nil
}

// GetTrend compares the metric's event count in current against previous.
func (s *Service) GetTrend(ctx context.Context, tenantID string, metric string, current, previous timeframe.DayWindow) (analytics.TrendDelta, error) {
	kind, ok := trendKinds[metric]
	if !ok {
		return analytics.TrendDelta{}, fmt.Errorf("%w: %q", ErrUnknownMetric, metric)
	}

	currentEvents, err := s.fetch(ctx, tenantID, kind, current)
	if err != nil {
		return analytics.TrendDelta{}, err
	}
	previousEvents, err := s.fetch(ctx, tenantID, kind, previous)
	if err != nil {
		return analytics.TrendDelta{}, err
	}

	return analytics.Trend(int64(len(currentEvents)), int64(len(previousEvents))), nil
}

// GetNormalizedSchedule returns the vendor's operating hours in canonical form.
// Unparseable hours never fail the call; they are replaced by defaults.
func (s *Service) GetNormalizedSchedule(ctx context.Context, tenantID string) (hours.WeeklySchedule, error) {
	document, err := s.store.ReadVendorConfig(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	schedule, defaulted := hours.NormalizeWithReport(hours.ParseRaw(document))
	if len(defaulted) > 0 {
		telemetry.SchedulesDefaulted.Add(float64(len(defaulted)))
		s.logger.Debug("Filled operating hours from defaults",
			slog.String("tenant", tenantID),
			slog.Any("days", defaulted))
	}
	return schedule, nil
}
