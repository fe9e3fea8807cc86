package models

import (
	"encoding/json"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"resort-backend/utils"
)

// BookedService is one generic service line inside an invoice (spa booking,
// airport transfer, ...). It may carry one booking date or a set of selected
// dates; quantity is derived from the dates.
type BookedService struct {
	gorm.Model
	InvoiceID uint  `gorm:"index;column:invoice_id" json:"invoice_id"`
	ServiceID *uint `gorm:"index;column:service_id" json:"service_id,omitempty"`

	Title     string `gorm:"column:title;size:255" json:"title"`
	Thumbnail string `gorm:"column:thumbnail;size:255" json:"thumbnail,omitempty"`

	UnitPrice float64 `gorm:"column:unit_price" json:"unit_price"`

	// JSON array of "YYYY-MM-DD" strings. Empty means a single unscheduled
	// booking (quantity 1).
	SelectedDates datatypes.JSON `gorm:"column:selected_dates" json:"selected_dates,omitempty"`

	Quantity   int     `gorm:"column:quantity" json:"quantity"`
	TotalPrice float64 `gorm:"column:total_service_price" json:"total_service_price"`
}

// Dates decodes SelectedDates, tolerating malformed stored JSON (empty list).
func (bs *BookedService) Dates() []string {
	if len(bs.SelectedDates) == 0 {
		return nil
	}
	var out []string
	if err := json.Unmarshal(bs.SelectedDates, &out); err != nil {
		return nil
	}
	return out
}

// SetDates stores the selected dates and refreshes the derived fields.
func (bs *BookedService) SetDates(dates []string) {
	if len(dates) == 0 {
		bs.SelectedDates = nil
	} else {
		raw, _ := json.Marshal(dates)
		bs.SelectedDates = datatypes.JSON(raw)
	}
	bs.Recalculate()
}

// Recalculate refreshes quantity (= count of dates, or 1 if none) and total.
func (bs *BookedService) Recalculate() {
	qty := len(bs.Dates())
	if qty == 0 {
		qty = 1
	}
	bs.Quantity = qty
	bs.TotalPrice = utils.RoundMoney(bs.UnitPrice * float64(qty))
}
