package http

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/karloscodes/cartridge"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"storefront/internal/analytics"
	"storefront/internal/config"
	"storefront/internal/dashboard"
	"storefront/internal/database"
	"storefront/internal/events"
	"storefront/internal/http/middleware"
	"storefront/internal/timeframe"
	"storefront/internal/vendors"
)

// RankedEntryResponse is a ranking row with a label suitable for display.
type RankedEntryResponse struct {
	analytics.RankedEntry
	Display string `json:"display"`
}

// newDashboardService builds a service for the current request from the
// server's configuration and database.
func newDashboardService(ctx *cartridge.Context) (*dashboard.Service, *config.Config) {
	cfg := ctx.Config.(*config.Config)
	store := database.NewEventStore(ctx.DBManager, ctx.Logger)
	service := dashboard.NewService(
		store,
		timeframe.NewBucketizer(cfg.ReportLocation()),
		&timeframe.DefaultTimeProvider{},
		ctx.Logger,
		dashboard.Options{
			DefaultWindowDays: cfg.DefaultSeriesDays,
			MaxWindowDays:     cfg.MaxWindowDays,
			Workers:           cfg.GetDashboardWorkers(),
		},
	)
	return service, cfg
}

func tenantFromContext(ctx *cartridge.Context) string {
	if tenantID, ok := ctx.Locals(middleware.TenantLocalKey).(string); ok && tenantID != "" {
		return tenantID
	}
	return ctx.Params("tenant")
}

// parseKind reads the optional kind query parameter; empty means every kind.
func parseKind(ctx *cartridge.Context) (events.Kind, error) {
	raw := ctx.Query("kind")
	if raw == "" {
		return "", nil
	}
	return events.ParseKind(raw)
}

func parsePositiveInt(ctx *cartridge.Context, name string, fallback int) (int, error) {
	raw := ctx.Query(name)
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return 0, fmt.Errorf("%w: %s must be a non-negative integer", errBadParam, name)
	}
	return value, nil
}

// parseWindow reads a from/to pair. Without either, the service's default window applies.
func parseWindow(ctx *cartridge.Context, service *dashboard.Service, fromParam, toParam string) (timeframe.DayWindow, error) {
	from, to := ctx.Query(fromParam), ctx.Query(toParam)
	if from == "" && to == "" {
		return service.DefaultWindow()
	}
	return timeframe.NewWindowParser(service.Location()).ParseDayWindow(from, to)
}

var errBadParam = errors.New("invalid parameter")

// respondError maps domain errors to HTTP statuses.
func respondError(ctx *cartridge.Context, err error) error {
	status, code := fiber.StatusInternalServerError, "INTERNAL_ERROR"
	switch {
	case errors.Is(err, timeframe.ErrInvalidWindow):
		status, code = fiber.StatusBadRequest, "INVALID_WINDOW"
	case errors.Is(err, events.ErrInvalidEvent):
		status, code = fiber.StatusBadRequest, "INVALID_EVENT"
	case errors.Is(err, events.ErrInvalidQuery):
		status, code = fiber.StatusBadRequest, "INVALID_QUERY"
	case errors.Is(err, dashboard.ErrUnknownMetric):
		status, code = fiber.StatusBadRequest, "UNKNOWN_METRIC"
	case errors.Is(err, errBadParam):
		status, code = fiber.StatusBadRequest, "INVALID_PARAMETER"
	case errors.Is(err, vendors.ErrVendorNotFound):
		status, code = fiber.StatusNotFound, "VENDOR_NOT_FOUND"
	case errors.Is(err, events.ErrStoreUnavailable):
		status, code = fiber.StatusServiceUnavailable, "STORE_UNAVAILABLE"
	}

	message := err.Error()
	if status >= fiber.StatusInternalServerError {
		ctx.Logger.Error("Dashboard request failed", slog.String("path", ctx.Path()), slog.Any("error", err))
		message = strings.ToLower(strings.ReplaceAll(code, "_", " "))
	}

	return ctx.Status(status).JSON(fiber.Map{
		"error": message,
		"code":  code,
	})
}

// SeriesAction handles GET /api/v1/tenants/:tenant/series?kind=&days=
func SeriesAction(ctx *cartridge.Context) error {
	service, cfg := newDashboardService(ctx)

	kind, err := parseKind(ctx)
	if err != nil {
		return respondError(ctx, err)
	}
	days, err := parsePositiveInt(ctx, "days", cfg.DefaultSeriesDays)
	if err != nil {
		return respondError(ctx, err)
	}

	series, err := service.GetDailySeries(ctx.UserContext(), tenantFromContext(ctx), kind, days)
	if err != nil {
		return respondError(ctx, err)
	}

	return ctx.JSON(fiber.Map{
		"kind":    kind,
		"buckets": series,
	})
}

// SourcesAction handles GET /api/v1/tenants/:tenant/sources?kind=&from=&to=
func SourcesAction(ctx *cartridge.Context) error {
	service, _ := newDashboardService(ctx)

	kind, err := parseKind(ctx)
	if err != nil {
		return respondError(ctx, err)
	}
	window, err := parseWindow(ctx, service, "from", "to")
	if err != nil {
		return respondError(ctx, err)
	}

	sources, err := service.GetSourceBreakdown(ctx.UserContext(), tenantFromContext(ctx), kind, window)
	if err != nil {
		return respondError(ctx, err)
	}

	return ctx.JSON(fiber.Map{
		"from":    window.Start.Format(timeframe.DateFormat),
		"to":      window.End.Format(timeframe.DateFormat),
		"sources": sources,
	})
}

// TopEntriesAction handles GET /api/v1/tenants/:tenant/top/:metric?limit=&from=&to=
func TopEntriesAction(ctx *cartridge.Context) error {
	service, cfg := newDashboardService(ctx)
	metric := ctx.Params("metric")

	limit, err := parsePositiveInt(ctx, "limit", cfg.TopEntriesLimit)
	if err != nil {
		return respondError(ctx, err)
	}
	window, err := parseWindow(ctx, service, "from", "to")
	if err != nil {
		return respondError(ctx, err)
	}

	entries, err := service.GetTopEntriesForWindow(ctx.UserContext(), tenantFromContext(ctx), metric, limit, window)
	if err != nil {
		return respondError(ctx, err)
	}

	return ctx.JSON(fiber.Map{
		"metric":  metric,
		"entries": presentRanking(metric, entries),
	})
}

// TrendAction handles GET /api/v1/tenants/:tenant/trend/:metric?from=&to=&prev_from=&prev_to=
// Without prev_from and prev_to the previous window is the one immediately before the current.
func TrendAction(ctx *cartridge.Context) error {
	service, _ := newDashboardService(ctx)
	metric := ctx.Params("metric")

	current, err := parseWindow(ctx, service, "from", "to")
	if err != nil {
		return respondError(ctx, err)
	}
	previous := current.Previous()
	if ctx.Query("prev_from") != "" || ctx.Query("prev_to") != "" {
		previous, err = timeframe.NewWindowParser(service.Location()).ParseDayWindow(ctx.Query("prev_from"), ctx.Query("prev_to"))
		if err != nil {
			return respondError(ctx, err)
		}
	}

	trend, err := service.GetTrend(ctx.UserContext(), tenantFromContext(ctx), metric, current, previous)
	if err != nil {
		return respondError(ctx, err)
	}

	return ctx.JSON(fiber.Map{
		"metric":   metric,
		"current":  current.String(),
		"previous": previous.String(),
		"trend":    trend,
	})
}

// ScheduleAction handles GET /api/v1/tenants/:tenant/schedule
func ScheduleAction(ctx *cartridge.Context) error {
	service, _ := newDashboardService(ctx)

	schedule, err := service.GetNormalizedSchedule(ctx.UserContext(), tenantFromContext(ctx))
	if err != nil {
		return respondError(ctx, err)
	}

	return ctx.JSON(fiber.Map{
		"schedule": schedule,
	})
}

// SummaryAction handles GET /api/v1/tenants/:tenant/summary?from=&to=
func SummaryAction(ctx *cartridge.Context) error {
	service, cfg := newDashboardService(ctx)
	tenantID := tenantFromContext(ctx)

	window, err := parseWindow(ctx, service, "from", "to")
	if err != nil {
		return respondError(ctx, err)
	}

	ctx.Logger.Info("Dashboard summary requested",
		slog.String("tenant", tenantID),
		slog.String("window", window.String()))

	summary, err := service.GetSummary(ctx.UserContext(), tenantID, window, cfg.TopEntriesLimit)
	if err != nil {
		return respondError(ctx, err)
	}

	return ctx.JSON(summary)
}

// presentRanking adds display labels. Contact methods are stored as
// identifiers such as "phone_call" and shown as "Phone Call"; product ids are shown as is.
func presentRanking(metric string, entries []analytics.RankedEntry) []RankedEntryResponse {
	results := make([]RankedEntryResponse, len(entries))
	for i, entry := range entries {
		display := entry.Label
		if metric == dashboard.MetricContactMethods {
			display = contactMethodLabel(entry.Label)
		}
		results[i] = RankedEntryResponse{RankedEntry: entry, Display: display}
	}
	return results
}

func contactMethodLabel(method string) string {
	words := strings.FieldsFunc(method, func(r rune) bool {
		return r == '_' || r == '-' || r == ' '
	})
	if len(words) == 0 {
		return method
	}
	// A Caser keeps state between calls, so each label gets its own.
	return cases.Title(language.English).String(strings.Join(words, " "))
}
