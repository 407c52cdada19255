package seeder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/url"
	"time"

	"github.com/karloscodes/cartridge"

	"storefront/internal/events"
	"storefront/internal/vendors"
)

// defaultVendors are created by Run when missing.
var defaultVendors = []struct {
	tenantID string
	name     string
	hours    string
}{
	{
		tenantID: "demo-taqueria",
		name:     "Demo Taqueria",
		hours:    `{"monday": "closed", "tuesday": "11:00 AM - 9:00 PM", "wednesday": "11:00 AM - 9:00 PM", "thursday": "11:00 AM - 9:00 PM", "friday": "11:00 AM - 11:00 PM", "saturday": "10:00 AM - 11:00 PM", "sunday": "10:00 AM - 6:00 PM"}`,
	},
	{
		tenantID: "demo-florist",
		name:     "Demo Florist",
		hours:    `{"monday": {"open": "08:00", "close": "18:00", "closed": false}, "sunday": "Closed", "saturday": "9:00 AM - 1:00 PM"}`,
	},
}

// Scan sources weighted by how often a visitor arrives through them.
// An empty source is a visitor who typed the storefront address directly.
type trafficSource struct {
	source   string
	medium   string
	campaign string
	weight   int
}

var scanSources = []trafficSource{
	{"qr_code", "print", "table_tent", 45},
	{"qr_code", "print", "window_sticker", 15},
	{"instagram", "social", "bio_link", 15},
	{"flyer", "print", "spring_promo", 10},
	{"", "", "", 15},
}

var products = []string{"prod-101", "prod-102", "prod-103", "prod-104", "prod-105", "prod-106"}

var contactMethods = []string{"whatsapp", "phone_call", "email", "directions"}

// Seeder fills vendors with plausible storefront traffic: a visitor scans or
// opens the storefront, views a few products and sometimes gets in touch.
type Seeder struct {
	DBManager  cartridge.DBManager
	Logger     *slog.Logger
	EventCount int
	Days       int
	rng        *rand.Rand
}

// NewSeeder creates a new seeder instance spreading events over the last 30 days.
func NewSeeder(dbManager cartridge.DBManager, logger *slog.Logger, eventCount int) *Seeder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Seeder{
		DBManager:  dbManager,
		Logger:     logger,
		EventCount: eventCount,
		Days:       30,
		rng:        rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0x5eed)),
	}
}

// WithSeed makes the generated traffic reproducible.
func (s *Seeder) WithSeed(seed uint64) *Seeder {
	s.rng = rand.New(rand.NewPCG(seed, 0x5eed))
	return s
}

// Run creates the demo vendors when missing and seeds each with EventCount events.
func (s *Seeder) Run(ctx context.Context, now time.Time) error {
	start := time.Now()
	s.Logger.Info("Starting database seeding...", slog.Int("eventCount", s.EventCount))

	db := s.DBManager.GetConnection()
	for _, demo := range defaultVendors {
		_, err := vendors.GetVendorByTenant(db, demo.tenantID)
		if errors.Is(err, vendors.ErrVendorNotFound) {
			vendor := &vendors.Vendor{TenantID: demo.tenantID, Name: demo.name, OperatingHours: demo.hours}
			if err := vendors.CreateVendor(db, s.Logger, vendor); err != nil {
				return fmt.Errorf("failed to create vendor %s: %w", demo.tenantID, err)
			}
			s.Logger.Info("Vendor created", slog.String("tenant", demo.tenantID))
		} else if err != nil {
			return err
		}

		if _, err := s.SeedVendor(ctx, demo.tenantID, now); err != nil {
			return fmt.Errorf("failed to generate data for %s: %w", demo.tenantID, err)
		}
	}

	s.Logger.Info("Seeding completed successfully", slog.Duration("elapsed", time.Since(start)))
	return nil
}

// SeedVendor appends EventCount events for an existing vendor, all within the
// Days days ending at now. Returns the number of events written.
func (s *Seeder) SeedVendor(ctx context.Context, tenantID string, now time.Time) (int, error) {
	db := s.DBManager.GetConnection()
	if _, err := vendors.GetVendorByTenant(db, tenantID); err != nil {
		return 0, err
	}

	generated := make([]events.Event, 0, s.EventCount)
	for len(generated) < s.EventCount {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		generated = append(generated, s.visit(tenantID, now)...)
	}
	generated = generated[:s.EventCount]

	if err := events.InsertEvents(db.WithContext(ctx), s.Logger, generated); err != nil {
		return 0, err
	}

	s.Logger.Info("Generated storefront traffic",
		slog.String("tenant", tenantID),
		slog.Int("totalEvents", len(generated)))
	return len(generated), nil
}

// visit produces the events of one storefront visit in chronological order.
func (s *Seeder) visit(tenantID string, now time.Time) []events.Event {
	days := max(s.Days, 1)
	// Keep the whole visit before now: it spans at most a few minutes.
	offset := time.Duration(s.rng.Int64N(int64(days)*int64(24*time.Hour) - int64(time.Hour)))
	at := now.Add(-offset - time.Hour)

	source := s.pickSource()
	landing := url.URL{Scheme: "https", Host: "shop.example", Path: "/" + tenantID}
	if source.source != "" {
		landing.RawQuery = url.Values{
			events.UTMSourceParam:   {source.source},
			events.UTMMediumParam:   {source.medium},
			events.UTMCampaignParam: {source.campaign},
		}.Encode()
	}

	var visit []events.Event
	add := func(kind events.Kind, subject string) {
		event, err := events.NewEvent(&events.CollectEventInput{
			TenantID:   tenantID,
			Kind:       string(kind),
			Timestamp:  at,
			Subject:    subject,
			LandingURL: landing.String(),
		}, now)
		if err != nil {
			s.Logger.Error("Failed to build seeded event", slog.Any("error", err))
			return
		}
		visit = append(visit, event)
		at = at.Add(time.Duration(s.rng.IntN(110)+10) * time.Second)
	}

	if source.source != "" {
		add(events.KindScan, "")
	}
	add(events.KindPageView, "")
	for i := s.rng.IntN(4); i > 0; i-- {
		add(events.KindPageView, products[s.rng.IntN(len(products))])
	}
	if s.rng.Float64() < 0.2 {
		add(events.KindContact, contactMethods[s.rng.IntN(len(contactMethods))])
	}

	return visit
}

func (s *Seeder) pickSource() trafficSource {
	total := 0
	for _, candidate := range scanSources {
		total += candidate.weight
	}
	roll := s.rng.IntN(total)
	for _, candidate := range scanSources {
		if roll < candidate.weight {
			return candidate
		}
		roll -= candidate.weight
	}
	return scanSources[len(scanSources)-1]
}
