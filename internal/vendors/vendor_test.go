package vendors_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/testsupport"
	"storefront/internal/vendors"
)

func TestCreateVendor(t *testing.T) {
	dbManager, logger := testsupport.SetupTestDBManager(t)
	db := dbManager.GetConnection()
	testsupport.CleanAllTables(db)

	t.Run("trims tenant and defaults name", func(t *testing.T) {
		vendor := &vendors.Vendor{TenantID: "  tacos  "}
		require.NoError(t, vendors.CreateVendor(db, logger, vendor))
		assert.NotZero(t, vendor.ID)
		assert.Equal(t, "tacos", vendor.TenantID)
		assert.Equal(t, "tacos", vendor.Name)
		assert.False(t, vendor.CreatedAt.IsZero())
	})

	t.Run("rejects empty tenant", func(t *testing.T) {
		err := vendors.CreateVendor(db, logger, &vendors.Vendor{TenantID: "   "})
		assert.Error(t, err)
	})

	t.Run("rejects duplicate tenant", func(t *testing.T) {
		err := vendors.CreateVendor(db, logger, &vendors.Vendor{TenantID: "tacos"})
		assert.Error(t, err)
	})
}

func TestGetVendorByTenant(t *testing.T) {
	dbManager, _ := testsupport.SetupTestDBManager(t)
	db := dbManager.GetConnection()
	testsupport.CleanAllTables(db)
	testsupport.CreateTestVendor(db, "tacos", `{"monday":"closed"}`)

	vendor, err := vendors.GetVendorByTenant(db, "tacos")
	require.NoError(t, err)
	assert.Equal(t, `{"monday":"closed"}`, vendor.OperatingHours)

	_, err = vendors.GetVendorByTenant(db, "ghost")
	require.Error(t, err)
	assert.ErrorIs(t, err, vendors.ErrVendorNotFound)

	var notFound *vendors.VendorNotFoundError
	require.True(t, errors.As(err, &notFound))
	assert.Equal(t, "ghost", notFound.TenantID)
}

func TestOperatingHoursDocument(t *testing.T) {
	assert.JSONEq(t, "null", string((&vendors.Vendor{}).OperatingHoursDocument()))
	assert.JSONEq(t, "null", string((&vendors.Vendor{OperatingHours: "  "}).OperatingHoursDocument()))
	assert.JSONEq(t, `{"sunday":"closed"}`,
		string((&vendors.Vendor{OperatingHours: `{"sunday":"closed"}`}).OperatingHoursDocument()))
}

func TestUpdateOperatingHours(t *testing.T) {
	dbManager, logger := testsupport.SetupTestDBManager(t)
	db := dbManager.GetConnection()
	testsupport.CleanAllTables(db)
	testsupport.CreateTestVendor(db, "tacos", "")

	document := json.RawMessage(`{"friday":"9:00 AM - 5:00 PM"}`)
	require.NoError(t, vendors.UpdateOperatingHours(db, logger, "tacos", document))

	vendor, err := vendors.GetVendorByTenant(db, "tacos")
	require.NoError(t, err)
	assert.JSONEq(t, string(document), string(vendor.OperatingHoursDocument()))

	err = vendors.UpdateOperatingHours(db, logger, "ghost", document)
	assert.ErrorIs(t, err, vendors.ErrVendorNotFound)
}
