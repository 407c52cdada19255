package dashboard

import (
	"context"
	"log/slog"

	"storefront/internal/analytics"
	"storefront/internal/events"
	"storefront/internal/hours"
	"storefront/internal/pkg/async"
	"storefront/internal/timeframe"
)

// Summary is every dashboard panel for one tenant and window.
type Summary struct {
	TenantID       string                          `json:"tenant_id"`
	From           string                          `json:"from"`
	To             string                          `json:"to"`
	Scans          []timeframe.DayBucket           `json:"scans"`
	Sources        []analytics.SourceShare         `json:"sources"`
	TopProducts    []analytics.RankedEntry         `json:"top_products"`
	ContactMethods []analytics.RankedEntry         `json:"contact_methods"`
	Trends         map[string]analytics.TrendDelta `json:"trends"`
	Schedule       hours.WeeklySchedule            `json:"schedule"`
}

// GetSummary builds every dashboard panel for window concurrently. Trends
// compare window with the same number of days immediately before it. The
// first failing panel, in the order the fields are declared, fails the call.
func (s *Service) GetSummary(ctx context.Context, tenantID string, window timeframe.DayWindow, topLimit int) (*Summary, error) {
	if err := window.CheckMaxDays(s.maxDays); err != nil {
		return nil, err
	}
	previous := window.Previous()

	tasks := []async.Task{
		{Name: "scans", Execute: func(ctx context.Context) (any, error) {
			return s.GetSeriesForWindow(ctx, tenantID, events.KindScan, window)
		}},
		{Name: "sources", Execute: func(ctx context.Context) (any, error) {
			return s.GetSourceBreakdown(ctx, tenantID, events.KindScan, window)
		}},
		{Name: MetricTopProducts, Execute: func(ctx context.Context) (any, error) {
			return s.GetTopEntriesForWindow(ctx, tenantID, MetricTopProducts, topLimit, window)
		}},
		{Name: MetricContactMethods, Execute: func(ctx context.Context) (any, error) {
			return s.GetTopEntriesForWindow(ctx, tenantID, MetricContactMethods, topLimit, window)
		}},
	}
	trendMetrics := []string{MetricScans, MetricPageViews, MetricContacts}
	for _, metric := range trendMetrics {
		tasks = append(tasks, async.Task{Name: "trend:" + metric, Execute: func(ctx context.Context) (any, error) {
			return s.GetTrend(ctx, tenantID, metric, window, previous)
		}})
	}
	tasks = append(tasks, async.Task{Name: "schedule", Execute: func(ctx context.Context) (any, error) {
		return s.GetNormalizedSchedule(ctx, tenantID)
	}})

	results := s.pool.Execute(ctx, tasks)
	for _, task := range tasks {
		if err := results[task.Name].Err; err != nil {
			s.logger.Warn("Dashboard summary panel failed",
				slog.String("tenant", tenantID),
				slog.String("panel", task.Name),
				slog.Any("error", err))
			return nil, err
		}
	}

	summary := &Summary{
		TenantID:       tenantID,
		From:           window.Start.Format(timeframe.DateFormat),
		To:             window.End.Format(timeframe.DateFormat),
		Scans:          results["scans"].Data.([]timeframe.DayBucket),
		Sources:        results["sources"].Data.([]analytics.SourceShare),
		TopProducts:    results[MetricTopProducts].Data.([]analytics.RankedEntry),
		ContactMethods: results[MetricContactMethods].Data.([]analytics.RankedEntry),
		Trends:         make(map[string]analytics.TrendDelta, len(trendMetrics)),
		Schedule:       results["schedule"].Data.(hours.WeeklySchedule),
	}
	for _, metric := range trendMetrics {
		summary.Trends[metric] = results["trend:"+metric].Data.(analytics.TrendDelta)
	}

	return summary, nil
}
