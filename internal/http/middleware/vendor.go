package middleware

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"storefront/internal/vendors"
)

// TenantLocalKey is the fiber.Locals key holding the resolved tenant id.
const TenantLocalKey = "tenant_id"

// VendorScope resolves the :tenant route parameter to a registered vendor
// and stores its tenant id in the request locals.
// Dependencies are injected via the factory function for clean architecture.
func VendorScope(db *gorm.DB, logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tenantID := strings.TrimSpace(c.Params("tenant"))
		if tenantID == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Missing tenant",
				"code":  "INVALID_TENANT",
			})
		}

		vendor, err := vendors.GetVendorByTenant(db.WithContext(c.UserContext()), tenantID)
		if err != nil {
			if errors.Is(err, vendors.ErrVendorNotFound) {
				logger.Debug("Unknown tenant requested", slog.String("tenant", tenantID))
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
					"error": err.Error(),
					"code":  "VENDOR_NOT_FOUND",
				})
			}
			logger.Error("Failed to resolve tenant", slog.String("tenant", tenantID), slog.Any("error", err))
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"error": "Event store unavailable",
				"code":  "STORE_UNAVAILABLE",
			})
		}

		c.Locals(TenantLocalKey, vendor.TenantID)
		return c.Next()
	}
}
