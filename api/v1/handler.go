package v1

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/karloscodes/cartridge"

	"storefront/internal/events"
	"storefront/internal/vendors"
)

const (
	msgEventAdded     = "Event added successfully"
	errInvalidRequest = "Invalid request"
)

// AttributionParams carries explicit UTM values sent by the storefront page.
type AttributionParams struct {
	Source   string `json:"source"`
	Medium   string `json:"medium"`
	Campaign string `json:"campaign"`
	Content  string `json:"content"`
	Term     string `json:"term"`
}

type CreateEventParams struct {
	TenantID    string             `json:"tenantId"`
	Kind        string             `json:"kind"`
	Timestamp   time.Time          `json:"timestamp"`
	Subject     string             `json:"subject"`
	URL         string             `json:"url"`
	Attribution *AttributionParams `json:"attribution"`
}

func (p *CreateEventParams) toInput() *events.CollectEventInput {
	input := &events.CollectEventInput{
		TenantID:   p.TenantID,
		Kind:       p.Kind,
		Timestamp:  p.Timestamp,
		Subject:    p.Subject,
		LandingURL: p.URL,
	}
	if p.Attribution != nil {
		input.Attribution = &events.Attribution{
			Source:   p.Attribution.Source,
			Medium:   p.Attribution.Medium,
			Campaign: p.Attribution.Campaign,
			Content:  p.Attribution.Content,
			Term:     p.Attribution.Term,
		}
	}
	return input
}

// CreateEventPublicAPIHandler handles POST /api/v1/events
func CreateEventPublicAPIHandler(ctx *cartridge.Context) error {
	ctx.Logger.Debug("Received event request", slog.String("method", ctx.Method()), slog.String("path", ctx.Path()))

	var params CreateEventParams
	if err := ctx.BodyParser(&params); err != nil {
		ctx.Logger.Debug("Failed to parse event request", slog.Any("error", err))
		return ctx.Status(http.StatusBadRequest).JSON(fiber.Map{
			"error": errInvalidRequest,
			"code":  "INVALID_REQUEST",
		})
	}

	if err := collect(ctx, &params); err != nil {
		return handleError(ctx, err)
	}

	return ctx.Status(http.StatusAccepted).JSON(fiber.Map{
		"message": msgEventAdded,
		"status":  http.StatusAccepted,
	})
}

// CreateEventBeaconHandler handles events sent via navigator.sendBeacon.
// Beacons cannot read responses, so every request answers 202.
func CreateEventBeaconHandler(ctx *cartridge.Context) error {
	var params CreateEventParams
	if err := json.Unmarshal(ctx.Body(), &params); err != nil {
		ctx.Logger.Debug("Failed to parse beacon request", slog.Any("error", err))
		return ctx.SendStatus(http.StatusAccepted)
	}

	if err := collect(ctx, &params); err != nil {
		ctx.Logger.Debug("Dropped beacon event", slog.Any("error", err))
	}

	return ctx.SendStatus(http.StatusAccepted)
}

// collect checks the tenant is a registered vendor, then validates and stores the event.
func collect(ctx *cartridge.Context, params *CreateEventParams) error {
	tenantID := strings.TrimSpace(params.TenantID)
	if tenantID != "" {
		if _, err := vendors.GetVendorByTenant(ctx.DB(), tenantID); err != nil {
			if errors.Is(err, vendors.ErrVendorNotFound) {
				return err
			}
			return fmt.Errorf("%w: %w", events.ErrStoreUnavailable, err)
		}
	}

	event, err := events.CollectEvent(ctx.DBManager, ctx.Logger, params.toInput(), time.Now().UTC())
	if err != nil {
		return err
	}

	ctx.Logger.Debug("Collected event",
		slog.String("tenant", event.TenantID),
		slog.String("kind", string(event.Kind)))
	return nil
}

func handleError(ctx *cartridge.Context, err error) error {
	switch {
	case errors.Is(err, events.ErrInvalidEvent):
		return ctx.Status(http.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
			"code":  "INVALID_EVENT",
		})
	case errors.Is(err, vendors.ErrVendorNotFound):
		return ctx.Status(http.StatusNotFound).JSON(fiber.Map{
			"error": "Vendor not found - please register the tenant first",
			"code":  "VENDOR_NOT_FOUND",
		})
	case errors.Is(err, events.ErrStoreUnavailable):
		return ctx.Status(http.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "Failed to collect event",
			"code":  "STORE_UNAVAILABLE",
		})
	}

	ctx.Logger.Error("Failed to collect event", slog.Any("error", err))
	return ctx.Status(http.StatusInternalServerError).JSON(fiber.Map{
		"error": "Failed to collect event",
		"code":  "COLLECTION_ERROR",
	})
}
