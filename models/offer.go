package models

import (
	"gorm.io/gorm"
)

// Offer is a bundled package: a fixed-price bundle referencing one or more
// catalog rooms. Booking an offer occupies every member room for the
// booking's interval.
type Offer struct {
	gorm.Model

	Slug      string `json:"slug" gorm:"column:slug;uniqueIndex;size:150"`
	Title     string `json:"title" gorm:"size:255"`
	Thumbnail string `json:"thumbnail" gorm:"size:255"`

	Price       float64 `json:"price"`
	Description string  `json:"description" gorm:"type:text"`

	Rooms []OfferRoom `gorm:"foreignKey:OfferID" json:"rooms"`
}

// OfferRoom links an offer to one of its member rooms.
type OfferRoom struct {
	gorm.Model
	OfferID uint `gorm:"index;column:offer_id" json:"offer_id"`
	RoomID  uint `gorm:"index;column:room_id" json:"room_id"`

	Room Room `gorm:"foreignKey:RoomID;references:ID" json:"room,omitempty"`
}
