package models

import (
	"encoding/json"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Room is a catalog entry the booking core reads but never writes through
// the core paths. Occupancy configurations are free text maintained by
// content staff ("2 adults, 1 child"); the availability resolver parses
// them, defaulting to zero capacity when unparseable.
type Room struct {
	gorm.Model

	Slug      string `json:"slug" gorm:"column:slug;uniqueIndex;size:150"`
	Title     string `json:"title" gorm:"size:255"`
	Thumbnail string `json:"thumbnail" gorm:"size:255"`

	PricePerNight float64 `json:"pricePerNight" gorm:"column:price_per_night"`

	// JSON array of occupancy descriptor strings.
	OccupancyOptions datatypes.JSON `json:"occupancyOptions" gorm:"column:occupancy_options"`

	Description string `json:"description" gorm:"type:text"`
}

// OccupancyTexts decodes the occupancy descriptors, tolerating bad JSON.
func (r *Room) OccupancyTexts() []string {
	if len(r.OccupancyOptions) == 0 {
		return nil
	}
	var out []string
	if err := json.Unmarshal(r.OccupancyOptions, &out); err != nil {
		return nil
	}
	return out
}
