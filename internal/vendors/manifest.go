package vendors

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

// Manifest lists vendors to provision in bulk, typically from a YAML file:
//
//	vendors:
//	  - tenant: demo-taqueria
//	    name: Demo Taqueria
//	    hours:
//	      monday: closed
//	      tuesday: "11:00 AM - 9:00 PM"
type Manifest struct {
	Vendors []ManifestVendor `yaml:"vendors"`
}

// ManifestVendor is one vendor entry. Hours are kept in whatever shape the
// file uses and stored as JSON; normalization happens on read.
type ManifestVendor struct {
	TenantID string         `yaml:"tenant"`
	Name     string         `yaml:"name"`
	Hours    map[string]any `yaml:"hours"`
}

// ImportResult reports what an import changed.
type ImportResult struct {
	Created []string
	Updated []string
}

// LoadManifest decodes a YAML manifest. Unknown keys are rejected so typos
// in a hand-written file surface instead of silently dropping hours.
func LoadManifest(r io.Reader) (*Manifest, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)

	var manifest Manifest
	if err := decoder.Decode(&manifest); err != nil {
		if errors.Is(err, io.EOF) {
			return &manifest, nil
		}
		return nil, fmt.Errorf("invalid vendor manifest: %w", err)
	}

	seen := make(map[string]bool, len(manifest.Vendors))
	for i, vendor := range manifest.Vendors {
		tenantID := strings.TrimSpace(vendor.TenantID)
		if tenantID == "" {
			return nil, fmt.Errorf("invalid vendor manifest: entry %d has no tenant", i+1)
		}
		if seen[tenantID] {
			return nil, fmt.Errorf("invalid vendor manifest: tenant %q listed twice", tenantID)
		}
		seen[tenantID] = true
		manifest.Vendors[i].TenantID = tenantID
	}

	return &manifest, nil
}

// ImportManifest creates missing vendors and replaces the hours of existing
// ones. Entries without hours leave an existing vendor's hours untouched.
func ImportManifest(db *gorm.DB, logger *slog.Logger, manifest *Manifest) (ImportResult, error) {
	result := ImportResult{Created: []string{}, Updated: []string{}}

	for _, entry := range manifest.Vendors {
		document, err := entry.hoursDocument()
		if err != nil {
			return result, err
		}

		_, err = GetVendorByTenant(db, entry.TenantID)
		switch {
		case errors.Is(err, ErrVendorNotFound):
			vendor := &Vendor{TenantID: entry.TenantID, Name: entry.Name, OperatingHours: string(document)}
			if err := CreateVendor(db, logger, vendor); err != nil {
				return result, fmt.Errorf("failed to create vendor %s: %w", entry.TenantID, err)
			}
			result.Created = append(result.Created, entry.TenantID)
		case err != nil:
			return result, err
		case document != nil:
			if err := UpdateOperatingHours(db, logger, entry.TenantID, document); err != nil {
				return result, err
			}
			result.Updated = append(result.Updated, entry.TenantID)
		}
	}

	logger.Info("Vendor manifest imported",
		slog.Int("created", len(result.Created)),
		slog.Int("updated", len(result.Updated)))
	return result, nil
}

func (v ManifestVendor) hoursDocument() (json.RawMessage, error) {
	if v.Hours == nil {
		return nil, nil
	}
	document, err := json.Marshal(v.Hours)
	if err != nil {
		return nil, fmt.Errorf("hours for %s cannot be stored: %w", v.TenantID, err)
	}
	return document, nil
}
