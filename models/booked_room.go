package models

import (
	"time"

	"gorm.io/gorm"

	"resort-backend/utils"
)

// Per-room line statuses.
const (
	RoomPendingCheckin = "PENDING_CHECKIN"
	RoomCheckedIn      = "CHECKED_IN"
	RoomCancelled      = "CANCELLED"
)

// BookedRoom is one reserved room line inside an invoice. Either RoomID or
// OfferID is set: a direct room booking references the room, a bundled
// package booking references the offer that contains its rooms.
type BookedRoom struct {
	gorm.Model
	InvoiceID uint  `gorm:"index;column:invoice_id" json:"invoice_id"`
	RoomID    *uint `gorm:"index;column:room_id" json:"room_id,omitempty"`
	OfferID   *uint `gorm:"index;column:offer_id" json:"offer_id,omitempty"`

	// Denormalized snapshot so historical invoices render correctly even if
	// the catalog entry changes later.
	Title     string `gorm:"column:title;size:255" json:"title"`
	Thumbnail string `gorm:"column:thumbnail;size:255" json:"thumbnail,omitempty"`

	CheckIn  time.Time `gorm:"column:check_in" json:"check_in"`
	CheckOut time.Time `gorm:"column:check_out" json:"check_out"`

	PricePerNight float64 `gorm:"column:price_per_night" json:"price_per_night"`
	Nights        int     `gorm:"column:nights" json:"nights"`
	TotalPrice    float64 `gorm:"column:total_room_price" json:"total_room_price"`

	Status string `gorm:"column:status;size:32" json:"status"`
}

// Recalculate refreshes the derived fields from dates and nightly price.
// nights == ceil((check_out - check_in) / 1 day); total == nights * price.
func (br *BookedRoom) Recalculate() {
	br.Nights = utils.Nights(br.CheckIn, br.CheckOut)
	br.TotalPrice = utils.RoundMoney(float64(br.Nights) * br.PricePerNight)
}
