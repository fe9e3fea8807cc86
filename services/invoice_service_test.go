package services

import (
	"errors"
	"testing"

	mysql "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"resort-backend/models"
)

func TestIsDuplicateErr(t *testing.T) {
	assert.False(t, isDuplicateErr(nil))

	// Only a unique-key violation counts as a booking-code collision.
	assert.True(t, isDuplicateErr(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'FS-12345678'"}))
	assert.True(t, isDuplicateErr(errors.New("UNIQUE constraint failed: invoices.booking_code")))

	// FK and other failures must not be retried as collisions.
	assert.False(t, isDuplicateErr(&mysql.MySQLError{Number: 1452, Message: "a foreign key constraint fails"}))
	assert.False(t, isDuplicateErr(errors.New("a foreign key constraint fails")))
	assert.False(t, isDuplicateErr(errors.New("connection refused")))
}

func newLedgerDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// One in-memory database per test; a second pooled connection would see
	// an empty schema.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.Invoice{},
		&models.BookedRoom{},
		&models.BookedService{},
	))
	return db
}

func newTestInvoiceService(t *testing.T) (*InvoiceService, *mockDispatcher) {
	t.Helper()
	catalog := fixtureCatalog()
	notify := &mockDispatcher{}
	return NewInvoiceService(newLedgerDB(t), catalog, catalog, catalog, notify), notify
}

func lineSum(inv *models.Invoice) float64 {
	var total float64
	for i := range inv.Rooms {
		total += inv.Rooms[i].TotalPrice
	}
	for i := range inv.Services {
		total += inv.Services[i].TotalPrice
	}
	return total
}

func TestInvoiceMutationsKeepTotalConsistent(t *testing.T) {
	svc, notify := newTestInvoiceService(t)

	roomID := uint(1)
	inv, err := svc.Create(CheckoutPayload{
		CustomerName:  "A. Nguyen",
		CustomerEmail: "a.nguyen@example.com",
		PaymentMethod: models.PaymentCash,
		Rooms: []RoomSelection{
			{RoomID: &roomID, CheckIn: "2026-03-10", CheckOut: "2026-03-12"},
		},
		Services: []ServiceSelection{
			{ServiceID: 3, Dates: []string{"2026-03-10", "2026-03-11"}},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusAwaitingConfirmation, inv.Status)
	assert.Equal(t, 1400000.0, inv.TotalAmount)
	assert.Equal(t, lineSum(inv), inv.TotalAmount)
	assert.Equal(t, []string{NotifyConfirmation + ":" + inv.BookingCode}, notify.events)

	// Line edits are refused until the booking is confirmed.
	_, err = svc.AddServices(inv.ID, []ServiceSelection{{ServiceID: 3}})
	assert.ErrorIs(t, err, ErrStateConflict)

	inv, err = svc.UpdateStatus(inv.ID, models.StatusConfirmedAwaiting)
	require.NoError(t, err)

	// Add a dateless service line (quantity 1).
	inv, err = svc.AddServices(inv.ID, []ServiceSelection{{ServiceID: 3}})
	require.NoError(t, err)
	require.Len(t, inv.Services, 2)
	assert.Equal(t, 1600000.0, inv.TotalAmount)
	assert.Equal(t, lineSum(inv), inv.TotalAmount)

	// Stretch the stay to three nights.
	inv, err = svc.RescheduleRoom(inv.ID, inv.Rooms[0].ID, "2026-03-10", "2026-03-13")
	require.NoError(t, err)
	assert.Equal(t, 3, inv.Rooms[0].Nights)
	assert.Equal(t, 2100000.0, inv.TotalAmount)
	assert.Equal(t, lineSum(inv), inv.TotalAmount)

	// Drop the first service line down to one date.
	inv, err = svc.RescheduleServiceDates(inv.ID, inv.Services[0].ID, []string{"2026-03-10"})
	require.NoError(t, err)
	assert.Equal(t, 1, inv.Services[0].Quantity)
	assert.Equal(t, 1900000.0, inv.TotalAmount)
	assert.Equal(t, lineSum(inv), inv.TotalAmount)

	// Remove the added line entirely.
	inv, err = svc.RemoveService(inv.ID, inv.Services[1].ID)
	require.NoError(t, err)
	require.Len(t, inv.Services, 1)
	assert.Equal(t, 1700000.0, inv.TotalAmount)
	assert.Equal(t, lineSum(inv), inv.TotalAmount)

	// Removing it again is a proper not-found, not a silent no-op.
	_, err = svc.RemoveService(inv.ID, 9999)
	assert.ErrorIs(t, err, ErrLineNotFound)
}
