package testsupport

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/karloscodes/cartridge"
	ctestsupport "github.com/karloscodes/cartridge/testsupport"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/events"
	"storefront/internal/vendors"
)

// testDBCache caches test databases by root test name so that subtests and
// helpers called within one test share the same database.
var testDBCache = make(map[string]*gorm.DB)
var testDBCacheMu sync.Mutex

// TestDBManager wraps cartridge's TestDBManager
type TestDBManager struct {
	*ctestsupport.TestDBManager
}

// NewTestDBManager creates a TestDBManager that implements cartridge.DBManager
func NewTestDBManager(db *gorm.DB) *TestDBManager {
	return &TestDBManager{
		TestDBManager: ctestsupport.NewTestDBManager(db),
	}
}

var _ cartridge.DBManager = (*TestDBManager)(nil)

// SetupTestDB creates a migrated in-memory database.
// cache=shared lets every connection of the pool see the same database.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	rootName := t.Name()
	if idx := strings.Index(rootName, "/"); idx > 0 {
		rootName = rootName[:idx]
	}

	testDBCacheMu.Lock()
	if db, exists := testDBCache[rootName]; exists {
		testDBCacheMu.Unlock()
		return db
	}
	testDBCacheMu.Unlock()

	dsn := fmt.Sprintf("file:test_%s_%d?mode=memory&cache=shared", rootName, time.Now().UnixNano())

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("testsupport: failed to open test database: %v", err)
	}

	db.Exec("PRAGMA foreign_keys = ON")

	if err := db.AutoMigrate(database.Models()...); err != nil {
		t.Fatalf("testsupport: failed to migrate models: %v", err)
	}

	testDBCacheMu.Lock()
	testDBCache[rootName] = db
	testDBCacheMu.Unlock()

	t.Cleanup(func() {
		testDBCacheMu.Lock()
		delete(testDBCache, rootName)
		testDBCacheMu.Unlock()
		sqlDB, err := db.DB()
		if err == nil {
			sqlDB.Close()
		}
	})

	return db
}

// TestConfig returns the shared configuration switched to the test environment.
func TestConfig() *config.Config {
	cfg := config.GetConfig()
	cfg.Environment = config.Test
	return cfg
}

// SetupTestDBManager creates a test DB manager using cartridge's testsupport
func SetupTestDBManager(t *testing.T) (*TestDBManager, *slog.Logger) {
	TestConfig()
	db := SetupTestDB(t)
	return NewTestDBManager(db), GetLogger()
}

// CleanAllTables clears every table of the storefront
func CleanAllTables(db *gorm.DB) {
	db.Transaction(func(tx *gorm.DB) error {
		for _, table := range []string{"events", "vendors"} {
			tx.Exec("DELETE FROM " + table)
			tx.Exec("DELETE FROM sqlite_sequence WHERE name=?", table)
		}
		return nil
	})
}

// CreateTestVendor creates a vendor with the given hours document, or returns the existing one
func CreateTestVendor(db *gorm.DB, tenantID, operatingHours string) vendors.Vendor {
	var vendor vendors.Vendor
	if db.Where("tenant_id = ?", tenantID).First(&vendor).Error != nil {
		vendor = vendors.Vendor{
			TenantID:       tenantID,
			Name:           tenantID,
			OperatingHours: operatingHours,
			CreatedAt:      time.Now().UTC(),
			UpdatedAt:      time.Now().UTC(),
		}
		db.Create(&vendor)
	}
	return vendor
}

// CreateEvent appends an event directly to the store
func CreateEvent(t *testing.T, dbManager cartridge.DBManager, event events.Event) {
	t.Helper()
	require.NoError(t, events.InsertEvent(dbManager.GetConnection(), GetLogger(), event))
}

// CreateScan appends a scan attributed to source; an empty source records a direct scan
func CreateScan(t *testing.T, dbManager cartridge.DBManager, tenantID, source string, at time.Time) {
	t.Helper()
	event := events.Event{TenantID: tenantID, Kind: events.KindScan, OccurredAt: at}
	if source != "" {
		event.Attribution = &events.Attribution{Source: source, Medium: "qr"}
	}
	CreateEvent(t, dbManager, event)
}

// CreateSubjectEvent appends a page view or contact about subject
func CreateSubjectEvent(t *testing.T, dbManager cartridge.DBManager, tenantID string, kind events.Kind, subject string, at time.Time) {
	t.Helper()
	CreateEvent(t, dbManager, events.Event{TenantID: tenantID, Kind: kind, OccurredAt: at, Subject: subject})
}

// GetLogger returns a test logger
func GetLogger() *slog.Logger {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError})
	return slog.New(handler)
}

// CreateMinimalTestApp creates a test Fiber app with routes mounted by mount
func CreateMinimalTestApp(t *testing.T, db *gorm.DB, mount func(*cartridge.Server)) *fiber.App {
	t.Helper()

	appConfig := TestConfig()
	appConfig.PublicDirectory = t.TempDir()

	cfg := cartridge.DefaultServerConfig()
	cfg.Config = appConfig
	cfg.Logger = GetLogger()
	cfg.DBManager = NewTestDBManager(db)
	cfg.StaticDirectory = appConfig.PublicDirectory
	cfg.StaticPrefix = appConfig.PublicAssetsUrlPrefix
	cfg.TemplatesDirectory = appConfig.PublicDirectory

	srv, err := cartridge.NewServer(cfg)
	require.NoError(t, err)

	mount(srv)
	return srv.App()
}
