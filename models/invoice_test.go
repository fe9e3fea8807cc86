package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func stayDate(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestInitialStatus(t *testing.T) {
	assert.Equal(t, StatusAwaitingConfirmation, InitialStatus(PaymentCash))
	assert.Equal(t, StatusAwaitingOnlinePayment, InitialStatus(PaymentOnlineA))
	assert.Equal(t, StatusAwaitingOnlinePayment, InitialStatus(PaymentOnlineB))
}

func TestIsTerminalAndEditable(t *testing.T) {
	for _, status := range []string{StatusCompleted, StatusCancelled} {
		inv := Invoice{Status: status}
		assert.True(t, inv.IsTerminal(), status)
	}
	for _, status := range []string{
		StatusAwaitingConfirmation, StatusAwaitingOnlinePayment,
		StatusConfirmedAwaiting, StatusPaidAwaiting, StatusCheckedIn,
	} {
		inv := Invoice{Status: status}
		assert.False(t, inv.IsTerminal(), status)
	}

	editable := map[string]bool{
		StatusAwaitingConfirmation:  false,
		StatusAwaitingOnlinePayment: false,
		StatusCancelled:             false,
		StatusConfirmedAwaiting:     true,
		StatusPaidAwaiting:          true,
		StatusCheckedIn:             true,
		StatusCompleted:             true,
	}
	for status, want := range editable {
		inv := Invoice{Status: status}
		assert.Equal(t, want, inv.IsEditable(), status)
	}
}

func TestRecomputeTotal(t *testing.T) {
	// Two room lines plus one service: 500k x 2 nights + 800k x 1 night
	// + 200k x 2 dates = 2,200,000.
	garden := BookedRoom{
		CheckIn:       stayDate("2026-03-10"),
		CheckOut:      stayDate("2026-03-12"),
		PricePerNight: 500000,
		Status:        RoomPendingCheckin,
	}
	garden.Recalculate()
	assert.Equal(t, 2, garden.Nights)
	assert.Equal(t, 1000000.0, garden.TotalPrice)

	seaView := BookedRoom{
		CheckIn:       stayDate("2026-03-10"),
		CheckOut:      stayDate("2026-03-11"),
		PricePerNight: 800000,
		Status:        RoomPendingCheckin,
	}
	seaView.Recalculate()
	assert.Equal(t, 800000.0, seaView.TotalPrice)

	spa := BookedService{UnitPrice: 200000}
	spa.SetDates([]string{"2026-03-10", "2026-03-11"})
	assert.Equal(t, 2, spa.Quantity)
	assert.Equal(t, 400000.0, spa.TotalPrice)

	inv := Invoice{
		Rooms:    []BookedRoom{garden, seaView},
		Services: []BookedService{spa},
	}
	inv.RecomputeTotal()
	assert.Equal(t, 2200000.0, inv.TotalAmount)

	// A dateless service counts as quantity 1.
	transfer := BookedService{UnitPrice: 350000}
	transfer.Recalculate()
	assert.Equal(t, 1, transfer.Quantity)
	assert.Equal(t, 350000.0, transfer.TotalPrice)

	inv.Services = append(inv.Services, transfer)
	inv.RecomputeTotal()
	assert.Equal(t, 2550000.0, inv.TotalAmount)
}

func TestDeriveInvoiceStatus(t *testing.T) {
	room := func(status string) BookedRoom { return BookedRoom{Status: status} }

	t.Run("no lines leaves status alone", func(t *testing.T) {
		got, changed := DeriveInvoiceStatus(nil, false, StatusConfirmedAwaiting)
		assert.Equal(t, StatusConfirmedAwaiting, got)
		assert.False(t, changed)
	})

	t.Run("pending line keeps awaiting state", func(t *testing.T) {
		rooms := []BookedRoom{room(RoomCheckedIn), room(RoomPendingCheckin)}

		got, changed := DeriveInvoiceStatus(rooms, false, StatusConfirmedAwaiting)
		assert.Equal(t, StatusConfirmedAwaiting, got)
		assert.False(t, changed)

		// A paid booking must not be demoted to the unpaid awaiting state.
		got, changed = DeriveInvoiceStatus(rooms, true, StatusPaidAwaiting)
		assert.Equal(t, StatusPaidAwaiting, got)
		assert.False(t, changed)
	})

	t.Run("all settled with a checkin", func(t *testing.T) {
		rooms := []BookedRoom{room(RoomCheckedIn), room(RoomCancelled)}
		got, changed := DeriveInvoiceStatus(rooms, true, StatusPaidAwaiting)
		assert.Equal(t, StatusCheckedIn, got)
		assert.True(t, changed)
	})

	t.Run("all cancelled", func(t *testing.T) {
		rooms := []BookedRoom{room(RoomCancelled), room(RoomCancelled)}
		got, changed := DeriveInvoiceStatus(rooms, false, StatusConfirmedAwaiting)
		assert.Equal(t, StatusCancelled, got)
		assert.True(t, changed)
	})

	t.Run("unchanged derivation reports no change", func(t *testing.T) {
		rooms := []BookedRoom{room(RoomCheckedIn)}
		got, changed := DeriveInvoiceStatus(rooms, true, StatusCheckedIn)
		assert.Equal(t, StatusCheckedIn, got)
		assert.False(t, changed)
	})
}
