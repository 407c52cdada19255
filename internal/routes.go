package internal

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/karloscodes/cartridge"
	cartridgemiddleware "github.com/karloscodes/cartridge/middleware"

	v1 "storefront/api/v1"
	"storefront/internal/config"
	"storefront/internal/http"
	"storefront/internal/http/middleware"
)

// publicCORSConfig lets storefront pages on any origin post events.
var publicCORSConfig = &cors.Config{
	AllowOrigins: "*",
	AllowMethods: "POST,GET,OPTIONS",
	AllowHeaders: "Origin, Content-Type, Accept, Referrer, User-Agent",
}

// MountAppRoutes mounts all application routes using cartridge's route API
func MountAppRoutes(srv *cartridge.Server) {
	cfg := config.GetConfig()

	// Rate limiting would interfere with tests, so it only applies in production
	conditionalRateLimiter := func(limiter fiber.Handler) fiber.Handler {
		return func(c *fiber.Ctx) error {
			if cfg.IsProduction() {
				return limiter(c)
			}
			return c.Next()
		}
	}

	// Storefront pages send a few events per visit; 120/min per IP leaves room for shared NATs
	publicRateLimiter := conditionalRateLimiter(cartridgemiddleware.RateLimiter(
		cartridgemiddleware.WithMax(120),
		cartridgemiddleware.WithDuration(time.Minute),
	))

	publicAPIConfig := &cartridge.RouteConfig{
		EnableCORS:         true,
		EnableSecFetchSite: cartridge.Bool(false),
		CustomMiddleware:   []fiber.Handler{publicRateLimiter},
		CORSConfig:         publicCORSConfig,
	}

	db := srv.GetDBManager().GetConnection()
	logger := srv.GetLogger()

	// Dashboard API: every route is scoped to a registered vendor
	tenantAPIConfig := &cartridge.RouteConfig{
		EnableSecFetchSite: cartridge.Bool(false),
		CustomMiddleware: []fiber.Handler{
			middleware.VendorScope(db, logger),
		},
	}

	internalConfig := &cartridge.RouteConfig{
		EnableSecFetchSite: cartridge.Bool(false),
	}

	// === OPERATIONS ===
	srv.Get("/_health", http.HealthIndexAction, internalConfig)
	srv.Head("/_health", http.HealthIndexAction, internalConfig)
	srv.Get("/metrics", http.MetricsAction, internalConfig)

	// === EVENT INGESTION ===
	srv.Post("/api/v1/events", v1.CreateEventPublicAPIHandler, publicAPIConfig)
	srv.Options("/api/v1/events", func(ctx *cartridge.Context) error {
		return ctx.SendStatus(fiber.StatusNoContent)
	}, publicAPIConfig)
	srv.Post("/api/v1/events/beacon", v1.CreateEventBeaconHandler, publicAPIConfig)
	srv.Options("/api/v1/events/beacon", func(ctx *cartridge.Context) error {
		return ctx.SendStatus(fiber.StatusNoContent)
	}, publicAPIConfig)

	// === DASHBOARD ===
	srv.Get("/api/v1/tenants/:tenant/series", http.SeriesAction, tenantAPIConfig)
	srv.Get("/api/v1/tenants/:tenant/sources", http.SourcesAction, tenantAPIConfig)
	srv.Get("/api/v1/tenants/:tenant/top/:metric", http.TopEntriesAction, tenantAPIConfig)
	srv.Get("/api/v1/tenants/:tenant/trend/:metric", http.TrendAction, tenantAPIConfig)
	srv.Get("/api/v1/tenants/:tenant/schedule", http.ScheduleAction, tenantAPIConfig)
	srv.Get("/api/v1/tenants/:tenant/summary", http.SummaryAction, tenantAPIConfig)
}
