package models

import "time"

// Cart line item types.
const (
	CartItemRoom    = "room"
	CartItemOffer   = "offer"
	CartItemService = "service"
)

// CartItem is one typed line in a session cart. Room and offer lines are
// always server-priced; only generic service lines may carry a
// client-supplied precomputed total.
type CartItem struct {
	ID   string `json:"id"`
	Type string `json:"type"`

	RefID     uint   `json:"refId"`
	Title     string `json:"title"`
	Thumbnail string `json:"thumbnail,omitempty"`

	CheckIn  *time.Time `json:"checkIn,omitempty"`
	CheckOut *time.Time `json:"checkOut,omitempty"`

	SelectedDates []string `json:"selectedDates,omitempty"`
	Quantity      int      `json:"quantity"`

	UnitPrice float64 `json:"unitPrice"`
	Total     float64 `json:"total"`
}

// Cart is the ephemeral, session-scoped pre-checkout collection. It lives in
// memory only and expires after a fixed idle period; it is not an audit
// record once an invoice is created from it.
type Cart struct {
	SessionID string     `json:"sessionId"`
	Items     []CartItem `json:"items"`
	Total     float64    `json:"total"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// RecomputeTotal resets Total to the sum of line totals.
func (c *Cart) RecomputeTotal() {
	var total float64
	for i := range c.Items {
		total += c.Items[i].Total
	}
	c.Total = total
}
