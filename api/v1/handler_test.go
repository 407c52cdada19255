// Package v1_test contains tests for the API v1 handlers
package v1_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"storefront/internal"
	"storefront/internal/events"
	"storefront/internal/testsupport"
)

func postJSON(t *testing.T, app *fiber.App, path string, payload any) (*http.Response, map[string]any) {
	t.Helper()

	jsonPayload, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest("POST", path, bytes.NewReader(jsonPayload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Origin", "https://shop.example")
	req.Header.Set("X-Forwarded-For", "127.0.0.1")
	req.Header.Set("Sec-Fetch-Site", "cross-site")

	resp, err := app.Test(req, 30000)
	require.NoError(t, err)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()

	var respBody map[string]any
	if len(body) > 0 {
		require.NoError(t, json.Unmarshal(body, &respBody), "body: %s", body)
	}
	return resp, respBody
}

func countEvents(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var count int64
	require.NoError(t, db.Model(&events.Record{}).Count(&count).Error)
	return count
}

func TestCreateEventPublicAPIHandler(t *testing.T) {
	t.Run("accepts valid event for registered vendor", func(t *testing.T) {
		dbManager, logger := testsupport.SetupTestDBManager(t)
		db := dbManager.GetConnection()
		testsupport.CleanAllTables(db)
		testsupport.CreateTestVendor(db, "tacos", "")

		app := testsupport.CreateMinimalTestApp(t, db, internal.MountAppRoutes)

		occurredAt := time.Date(2025, 3, 9, 18, 30, 0, 0, time.FixedZone("CST", -6*3600))
		resp, respBody := postJSON(t, app, "/api/v1/events", map[string]any{
			"tenantId":  "tacos",
			"kind":      "page_view",
			"timestamp": occurredAt,
			"subject":   " prod-101 ",
			"url":       "https://shop.example/tacos?utm_source=flyer",
		})

		assert.Equal(t, http.StatusAccepted, resp.StatusCode)
		assert.Equal(t, "Event added successfully", respBody["message"])
		assert.Equal(t, float64(http.StatusAccepted), respBody["status"])

		stored, err := events.QueryEvents(db, logger, events.Query{TenantID: "tacos"})
		require.NoError(t, err)
		require.Len(t, stored, 1)
		assert.Equal(t, events.KindPageView, stored[0].Kind)
		assert.Equal(t, "prod-101", stored[0].Subject)
		assert.True(t, stored[0].OccurredAt.Equal(occurredAt))
		assert.Equal(t, time.UTC, stored[0].OccurredAt.Location())
		require.NotNil(t, stored[0].Attribution)
		assert.Equal(t, "flyer", stored[0].Attribution.Source)
	})

	t.Run("explicit attribution wins over landing url", func(t *testing.T) {
		dbManager, logger := testsupport.SetupTestDBManager(t)
		db := dbManager.GetConnection()
		testsupport.CleanAllTables(db)
		testsupport.CreateTestVendor(db, "tacos", "")

		app := testsupport.CreateMinimalTestApp(t, db, internal.MountAppRoutes)

		resp, _ := postJSON(t, app, "/api/v1/events", map[string]any{
			"tenantId":    "tacos",
			"kind":        "scan",
			"url":         "https://shop.example/tacos?utm_source=flyer",
			"attribution": map[string]any{"source": "qr_code", "medium": "print", "campaign": "table_tent"},
		})
		require.Equal(t, http.StatusAccepted, resp.StatusCode)

		stored, err := events.QueryEvents(db, logger, events.Query{TenantID: "tacos"})
		require.NoError(t, err)
		require.Len(t, stored, 1)
		assert.Equal(t, &events.Attribution{Source: "qr_code", Medium: "print", Campaign: "table_tent"}, stored[0].Attribution)
	})

	t.Run("rejects unknown kind", func(t *testing.T) {
		dbManager, _ := testsupport.SetupTestDBManager(t)
		db := dbManager.GetConnection()
		testsupport.CleanAllTables(db)
		testsupport.CreateTestVendor(db, "tacos", "")

		app := testsupport.CreateMinimalTestApp(t, db, internal.MountAppRoutes)

		resp, respBody := postJSON(t, app, "/api/v1/events", map[string]any{
			"tenantId": "tacos",
			"kind":     "purchase",
		})

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "INVALID_EVENT", respBody["code"])
		assert.Equal(t, int64(0), countEvents(t, db))
	})

	t.Run("rejects missing tenant", func(t *testing.T) {
		dbManager, _ := testsupport.SetupTestDBManager(t)
		db := dbManager.GetConnection()
		testsupport.CleanAllTables(db)

		app := testsupport.CreateMinimalTestApp(t, db, internal.MountAppRoutes)

		resp, respBody := postJSON(t, app, "/api/v1/events", map[string]any{"kind": "scan"})

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "INVALID_EVENT", respBody["code"])
	})

	t.Run("rejects unregistered vendor", func(t *testing.T) {
		dbManager, _ := testsupport.SetupTestDBManager(t)
		db := dbManager.GetConnection()
		testsupport.CleanAllTables(db)

		app := testsupport.CreateMinimalTestApp(t, db, internal.MountAppRoutes)

		resp, respBody := postJSON(t, app, "/api/v1/events", map[string]any{
			"tenantId": "ghost",
			"kind":     "scan",
		})

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "VENDOR_NOT_FOUND", respBody["code"])
		assert.Equal(t, int64(0), countEvents(t, db))
	})

	t.Run("rejects malformed body", func(t *testing.T) {
		dbManager, _ := testsupport.SetupTestDBManager(t)
		db := dbManager.GetConnection()
		testsupport.CleanAllTables(db)

		app := testsupport.CreateMinimalTestApp(t, db, internal.MountAppRoutes)

		req := httptest.NewRequest("POST", "/api/v1/events", bytes.NewReader([]byte(`{"tenantId": `)))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req, 30000)
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestCreateEventBeaconHandler(t *testing.T) {
	dbManager, _ := testsupport.SetupTestDBManager(t)
	db := dbManager.GetConnection()
	testsupport.CleanAllTables(db)
	testsupport.CreateTestVendor(db, "tacos", "")

	app := testsupport.CreateMinimalTestApp(t, db, internal.MountAppRoutes)

	tests := []struct {
		name    string
		payload any
	}{
		{"valid contact", map[string]any{"tenantId": "tacos", "kind": "contact", "subject": "whatsapp"}},
		{"invalid kind", map[string]any{"tenantId": "tacos", "kind": "purchase"}},
		{"unknown vendor", map[string]any{"tenantId": "ghost", "kind": "scan"}},
		{"not an object", []string{"scan"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, _ := postJSON(t, app, "/api/v1/events/beacon", tt.payload)
			assert.Equal(t, http.StatusAccepted, resp.StatusCode)
		})
	}

	assert.Equal(t, int64(1), countEvents(t, db))
}

func TestEventsPreflight(t *testing.T) {
	dbManager, _ := testsupport.SetupTestDBManager(t)
	app := testsupport.CreateMinimalTestApp(t, dbManager.GetConnection(), internal.MountAppRoutes)

	req := httptest.NewRequest("OPTIONS", "/api/v1/events", nil)
	req.Header.Set("Origin", "https://shop.example")
	req.Header.Set("Access-Control-Request-Method", "POST")

	resp, err := app.Test(req, 30000)
	require.NoError(t, err)
	assert.Less(t, resp.StatusCode, 300)
	assert.NotEmpty(t, resp.Header.Get("Access-Control-Allow-Origin"))
}
