package services

import (
	"testing"
	"time"

	"github.com/restoweb/pos-api/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupBillingTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	if err := db.AutoMigrate(&models.Order{}, &models.OrderItem{}, &models.Bill{}, &models.BillItem{}); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	return db
}

func seedOrder(t *testing.T, db *gorm.DB) *models.Order {
	order := &models.Order{
		Table:       "T4",
		Status:      models.StatusPending,
		TotalAmount: 250,
		Items: []models.OrderItem{
			{Name: "Paneer Tikka", Qty: 1, Price: 250},
		},
		PaymentMethod: "Cash",
	}
	require.NoError(t, db.Create(order).Error)
	return order
}

func TestSyncFromOrderCreates(t *testing.T) {
	db := setupBillingTestDB(t)
	billing := NewBillingService(db)
	order := seedOrder(t, db)

	bill, existed, err := billing.SyncFromOrder(order, true)
	require.NoError(t, err)
	assert.False(t, existed)
	assert.Equal(t, order.ID, bill.OrderID)
	assert.Equal(t, "T4", bill.Table)
	assert.Equal(t, 250.0, bill.TotalAmount)
	assert.WithinDuration(t, order.CreatedAt, bill.BilledAt, time.Second,
		"invoice date comes from order placement, not bill creation")

	stored, err := billing.FindByOrder(order.ID)
	require.NoError(t, err)
	require.Len(t, stored.Items, 1)
	assert.Equal(t, "Paneer Tikka", stored.Items[0].Name)
}

func TestSyncFromOrderOverwritesOnMerge(t *testing.T) {
	db := setupBillingTestDB(t)
	billing := NewBillingService(db)
	order := seedOrder(t, db)

	_, _, err := billing.SyncFromOrder(order, true)
	require.NoError(t, err)

	// Extend the order: new line, bigger total, moved along the kitchen flow.
	order.Items = append(order.Items, models.OrderItem{OrderID: order.ID, Name: "Lassi", Qty: 2, Price: 60})
	order.TotalAmount = 370
	order.Status = models.StatusPreparing
	order.Notes = "less spicy"
	require.NoError(t, db.Save(order).Error)

	bill, existed, err := billing.SyncFromOrder(order, false)
	require.NoError(t, err)
	assert.True(t, existed)
	assert.Equal(t, 370.0, bill.TotalAmount)

	stored, err := billing.FindByOrder(order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPreparing, stored.Status)
	assert.Equal(t, "less spicy", stored.Notes)
	require.Len(t, stored.Items, 2, "item list is replaced, not appended")

	var itemCount int64
	db.Model(&models.BillItem{}).Count(&itemCount)
	assert.Equal(t, int64(2), itemCount, "stale mirrored lines are removed")

	var billCount int64
	db.Model(&models.Bill{}).Count(&billCount)
	assert.Equal(t, int64(1), billCount)
}

func TestMirrorKeepsLineSequence(t *testing.T) {
	db := setupBillingTestDB(t)
	billing := NewBillingService(db)
	order := seedOrder(t, db)

	_, _, err := billing.SyncFromOrder(order, true)
	require.NoError(t, err)

	// Each round appends a line and re-syncs; the mirror's rows are deleted
	// and re-inserted every time, so the load order must come from the query,
	// not from whatever the storage engine returns.
	for _, name := range []string{"Lassi", "Roti", "Kheer"} {
		order.Items = append(order.Items, models.OrderItem{OrderID: order.ID, Name: name, Qty: 1, Price: 40})
		require.NoError(t, db.Save(order).Error)
		_, _, err := billing.SyncFromOrder(order, false)
		require.NoError(t, err)
	}

	stored, err := billing.FindByOrder(order.ID)
	require.NoError(t, err)
	require.Len(t, stored.Items, 4)

	names := make([]string, 0, len(stored.Items))
	for i, line := range stored.Items {
		names = append(names, line.Name)
		if i > 0 {
			assert.Greater(t, line.ID, stored.Items[i-1].ID, "lines come back in insertion order")
		}
	}
	assert.Equal(t, []string{"Paneer Tikka", "Lassi", "Roti", "Kheer"}, names)
}

func TestSyncFromOrderRecreatesMissingBill(t *testing.T) {
	db := setupBillingTestDB(t)
	billing := NewBillingService(db)
	order := seedOrder(t, db)

	// No bill exists for this order; a merge-time sync must not error out.
	bill, existed, err := billing.SyncFromOrder(order, false)
	require.NoError(t, err)
	assert.False(t, existed)
	assert.Equal(t, order.ID, bill.OrderID)

	stored, err := billing.FindByOrder(order.ID)
	require.NoError(t, err)
	assert.Equal(t, 250.0, stored.TotalAmount)
}

func TestOnlyOneBillPerOrder(t *testing.T) {
	db := setupBillingTestDB(t)
	order := seedOrder(t, db)

	first := &models.Bill{OrderID: order.ID, Table: order.Table, TotalAmount: 250, Status: order.Status, BilledAt: order.CreatedAt}
	require.NoError(t, db.Create(first).Error)

	second := &models.Bill{OrderID: order.ID, Table: order.Table, TotalAmount: 999, Status: order.Status, BilledAt: order.CreatedAt}
	assert.Error(t, db.Create(second).Error, "orderRef is unique")
}
