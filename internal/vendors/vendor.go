package vendors

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/karloscodes/cartridge/sqlite"
	"gorm.io/gorm"
)

// ErrVendorNotFound matches every VendorNotFoundError via errors.Is.
var ErrVendorNotFound = errors.New("vendor not found")

// VendorNotFoundError represents an error when no vendor owns a tenant id
type VendorNotFoundError struct {
	TenantID string
}

func (e *VendorNotFoundError) Error() string {
	return fmt.Sprintf("vendor not found for tenant: %s", e.TenantID)
}

func (e *VendorNotFoundError) Is(target error) bool {
	return target == ErrVendorNotFound
}

// NewVendorNotFoundError creates a new VendorNotFoundError
func NewVendorNotFoundError(tenantID string) *VendorNotFoundError {
	return &VendorNotFoundError{TenantID: tenantID}
}

// Vendor is a storefront tenant. OperatingHours holds the hours document
// exactly as the vendor saved it; it is normalized only when read.
type Vendor struct {
	ID             uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	TenantID       string    `gorm:"uniqueIndex;not null" json:"tenant_id"`
	Name           string    `gorm:"not null" json:"name"`
	OperatingHours string    `gorm:"type:text" json:"operating_hours"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// GetVendorByTenant retrieves the vendor owning tenantID
func GetVendorByTenant(db *gorm.DB, tenantID string) (*Vendor, error) {
	var vendor Vendor
	if err := db.Where("tenant_id = ?", tenantID).First(&vendor).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewVendorNotFoundError(tenantID)
		}
		return nil, fmt.Errorf("unexpected error querying vendor: %w", err)
	}
	return &vendor, nil
}

// OperatingHoursDocument returns the stored hours as raw JSON.
// An empty column reads as JSON null so callers always get a document.
func (v *Vendor) OperatingHoursDocument() json.RawMessage {
	if strings.TrimSpace(v.OperatingHours) == "" {
		return json.RawMessage("null")
	}
	return json.RawMessage(v.OperatingHours)
}

// CreateVendor creates a new vendor
func CreateVendor(db *gorm.DB, logger *slog.Logger, vendor *Vendor) error {
	vendor.TenantID = strings.TrimSpace(vendor.TenantID)
	if vendor.TenantID == "" {
		return errors.New("tenant id is required")
	}
	if vendor.Name == "" {
		vendor.Name = vendor.TenantID
	}

	now := time.Now().UTC()
	vendor.CreatedAt = now
	vendor.UpdatedAt = now

	return sqlite.PerformWrite(logger, db, func(tx *gorm.DB) error {
		return tx.Create(vendor).Error
	})
}

// UpdateOperatingHours stores a new hours document for the tenant as given.
// The document is not validated; malformed hours degrade to defaults when read.
func UpdateOperatingHours(db *gorm.DB, logger *slog.Logger, tenantID string, document json.RawMessage) error {
	var updated int64
	err := sqlite.PerformWrite(logger, db, func(tx *gorm.DB) error {
		result := tx.Model(&Vendor{}).
			Where("tenant_id = ?", tenantID).
			Updates(map[string]any{
				"operating_hours": string(document),
				"updated_at":      time.Now().UTC(),
			})
		updated = result.RowsAffected
		return result.Error
	})
	if err != nil {
		return fmt.Errorf("failed to update operating hours: %w", err)
	}
	if updated == 0 {
		return NewVendorNotFoundError(tenantID)
	}
	return nil
}
