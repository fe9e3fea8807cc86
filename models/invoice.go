package models

import (
	"time"

	"gorm.io/gorm"
)

// Invoice statuses. COMPLETED and CANCELLED are terminal.
const (
	StatusAwaitingConfirmation  = "AWAITING_CONFIRMATION"
	StatusAwaitingOnlinePayment = "AWAITING_ONLINE_PAYMENT"
	StatusConfirmedAwaiting     = "CONFIRMED_AWAITING_CHECKIN"
	StatusPaidAwaiting          = "PAID_AWAITING_CHECKIN"
	StatusCheckedIn             = "CHECKED_IN"
	StatusCompleted             = "COMPLETED"
	StatusCancelled             = "CANCELLED"
)

// Payment methods accepted at checkout.
const (
	PaymentCash    = "CASH"
	PaymentOnlineA = "ONLINE-A"
	PaymentOnlineB = "ONLINE-B"
)

type Invoice struct {
	ID uint `gorm:"primaryKey" json:"id"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// External human-facing identifier, stable once assigned.
	BookingCode string `gorm:"column:booking_code;uniqueIndex;size:32" json:"bookingCode"`

	// Customer snapshot taken at booking time. A copy, never a live
	// reference, so later profile edits don't rewrite past invoices.
	CustomerName  string `gorm:"column:customer_name;size:255" json:"customerName"`
	CustomerEmail string `gorm:"column:customer_email;size:150" json:"customerEmail"`
	CustomerPhone string `gorm:"column:customer_phone;size:50" json:"customerPhone"`
	CustomerNotes string `gorm:"column:customer_notes;type:text" json:"customerNotes,omitempty"`

	PaymentMethod  string `gorm:"column:payment_method;size:32" json:"paymentMethod"`
	Paid           bool   `gorm:"column:paid;default:false" json:"paid"`
	TransactionRef string `gorm:"column:transaction_ref;size:128" json:"transactionRef,omitempty"`

	Status string `gorm:"column:status;size:64" json:"status"`

	// Derived, recomputed after every mutation that touches lines.
	TotalAmount float64 `gorm:"column:total_amount" json:"totalAmount"`

	Rooms    []BookedRoom    `gorm:"foreignKey:InvoiceID" json:"rooms"`
	Services []BookedService `gorm:"foreignKey:InvoiceID" json:"services"`
}

// IsTerminal reports whether no further status transitions are allowed.
func (inv *Invoice) IsTerminal() bool {
	return inv.Status == StatusCompleted || inv.Status == StatusCancelled
}

// IsEditable reports whether room/service line edits are allowed. Editing
// requires a confirmed/paid or checked-in booking.
func (inv *Invoice) IsEditable() bool {
	switch inv.Status {
	case StatusAwaitingConfirmation, StatusAwaitingOnlinePayment, StatusCancelled:
		return false
	}
	return true
}

// InitialStatus returns the status a fresh invoice starts in for the given
// payment method.
func InitialStatus(paymentMethod string) string {
	if paymentMethod == PaymentOnlineA || paymentMethod == PaymentOnlineB {
		return StatusAwaitingOnlinePayment
	}
	return StatusAwaitingConfirmation
}

// RecomputeTotal resets TotalAmount to the sum of current room and service
// line totals. Cancelled room lines still count: cancellation policy is a
// staff concern, the ledger only keeps lines and total consistent.
func (inv *Invoice) RecomputeTotal() {
	var total float64
	for i := range inv.Rooms {
		total += inv.Rooms[i].TotalPrice
	}
	for i := range inv.Services {
		total += inv.Services[i].TotalPrice
	}
	inv.TotalAmount = total
}

// DeriveInvoiceStatus computes the ledger status implied by the per-room
// line statuses:
//   - every line CHECKED_IN or CANCELLED, at least one CHECKED_IN -> CHECKED_IN
//   - every line CANCELLED -> CANCELLED
//   - otherwise (some line still PENDING_CHECKIN) -> the awaiting-checkin
//     state matching the paid flag, so a paid booking is not demoted.
//
// Returns the derived status and whether it differs from current (callers
// skip the write when unchanged).
func DeriveInvoiceStatus(rooms []BookedRoom, paid bool, current string) (string, bool) {
	if len(rooms) == 0 {
		return current, false
	}

	anyCheckedIn := false
	anyPending := false
	for i := range rooms {
		switch rooms[i].Status {
		case RoomCheckedIn:
			anyCheckedIn = true
		case RoomCancelled:
			// settled
		default:
			anyPending = true
		}
	}

	var derived string
	switch {
	case anyPending:
		if paid {
			derived = StatusPaidAwaiting
		} else {
			derived = StatusConfirmedAwaiting
		}
	case anyCheckedIn:
		derived = StatusCheckedIn
	default:
		derived = StatusCancelled
	}

	return derived, derived != current
}
