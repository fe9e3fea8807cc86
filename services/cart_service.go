// services/cart_service.go
package services

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"resort-backend/models"
	"resort-backend/utils"
)

// CartTTL is the fixed idle period after which a cart silently expires.
const CartTTL = 24 * time.Hour

// CartItemRequest is one add-to-cart payload. Room and offer lines are
// priced from the catalog; only generic service lines may carry
// client-side pricing (they are re-priced by the ledger at checkout).
type CartItemRequest struct {
	Type string `json:"type"`

	RefID    uint   `json:"ref_id"`
	CheckIn  string `json:"check_in,omitempty"`
	CheckOut string `json:"check_out,omitempty"`

	Dates    []string `json:"dates,omitempty"`
	Quantity int      `json:"quantity,omitempty"`

	// Service lines only.
	Title     string   `json:"title,omitempty"`
	UnitPrice float64  `json:"unit_price,omitempty"`
	Total     *float64 `json:"total,omitempty"`
}

// CartService keeps one ephemeral cart per session in memory. Carts are
// not an audit record; they disappear on checkout, clear, or idle expiry.
type CartService struct {
	mu    sync.Mutex
	carts map[string]*models.Cart

	rooms    RoomReader
	offers   OfferReader
	services ServiceReader

	ttl time.Duration
	now func() time.Time
}

func NewCartService(rooms RoomReader, offers OfferReader, services ServiceReader) *CartService {
	return &CartService{
		carts:    make(map[string]*models.Cart),
		rooms:    rooms,
		offers:   offers,
		services: services,
		ttl:      CartTTL,
		now:      time.Now,
	}
}

// Get returns the session's cart. A missing or expired cart reads as an
// empty cart, never a not-found error.
func (s *CartService) Get(sessionID string) *models.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot(sessionID)
}

func (s *CartService) snapshot(sessionID string) *models.Cart {
	cart, ok := s.carts[sessionID]
	if !ok || s.expired(cart) {
		return &models.Cart{SessionID: sessionID, Items: []models.CartItem{}}
	}
	cp := *cart
	cp.Items = append([]models.CartItem(nil), cart.Items...)
	return &cp
}

func (s *CartService) expired(cart *models.Cart) bool {
	return s.now().Sub(cart.UpdatedAt) > s.ttl
}

func (s *CartService) liveCart(sessionID string) *models.Cart {
	cart, ok := s.carts[sessionID]
	if !ok || s.expired(cart) {
		cart = &models.Cart{SessionID: sessionID, Items: []models.CartItem{}}
		s.carts[sessionID] = cart
	}
	return cart
}

// AddItem appends or replaces a line. Adding the same catalog entry again
// (matched by type + catalog reference) replaces the prior line so "change
// my dates" doesn't grow the cart. Free-form lines with no catalog
// reference always append; they have no identity to match on.
func (s *CartService) AddItem(sessionID string, req CartItemRequest) (*models.Cart, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, fmt.Errorf("%w: missing cart session", ErrValidation)
	}

	item, err := s.buildItem(req)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cart := s.liveCart(sessionID)
	replaced := false
	if item.RefID != 0 {
		for i := range cart.Items {
			if cart.Items[i].Type == item.Type && cart.Items[i].RefID == item.RefID {
				item.ID = cart.Items[i].ID
				cart.Items[i] = item
				replaced = true
				break
			}
		}
	}
	if !replaced {
		cart.Items = append(cart.Items, item)
	}
	cart.RecomputeTotal()
	cart.UpdatedAt = s.now()
	return s.snapshot(sessionID), nil
}

func (s *CartService) buildItem(req CartItemRequest) (models.CartItem, error) {
	qty := req.Quantity
	if qty <= 0 {
		qty = 1
	}

	item := models.CartItem{
		ID:       uuid.NewString(),
		Type:     req.Type,
		RefID:    req.RefID,
		Quantity: qty,
	}

	switch req.Type {
	case models.CartItemRoom:
		room, err := s.rooms.GetRoom(req.RefID)
		if err != nil {
			return item, fmt.Errorf("%w: room %d not found", ErrValidation, req.RefID)
		}
		ci, err := utils.ParseDate(req.CheckIn)
		if err != nil {
			return item, fmt.Errorf("%w: check_in: %v", ErrValidation, err)
		}
		co, err := utils.ParseDate(req.CheckOut)
		if err != nil {
			return item, fmt.Errorf("%w: check_out: %v", ErrValidation, err)
		}
		if !co.After(ci) {
			return item, ErrInvalidDates
		}
		item.Title = room.Title
		item.Thumbnail = room.Thumbnail
		item.CheckIn = &ci
		item.CheckOut = &co
		item.Quantity = 1
		item.UnitPrice = room.PricePerNight
		item.Total = utils.RoundMoney(float64(utils.Nights(ci, co)) * room.PricePerNight)

	case models.CartItemOffer:
		offer, err := s.offers.GetOffer(req.RefID)
		if err != nil {
			return item, fmt.Errorf("%w: offer %d not found", ErrValidation, req.RefID)
		}
		item.Title = offer.Title
		item.Thumbnail = offer.Thumbnail
		item.UnitPrice = offer.Price
		item.Total = utils.RoundMoney(offer.Price * float64(qty))

	case models.CartItemService:
		item.Title = strings.TrimSpace(req.Title)
		item.UnitPrice = req.UnitPrice
		item.SelectedDates = req.Dates
		if req.RefID != 0 {
			if svc, err := s.services.GetService(req.RefID); err == nil {
				item.Title = svc.Title
				item.Thumbnail = svc.Thumbnail
				item.UnitPrice = svc.UnitPrice
			}
		}
		if item.Title == "" {
			return item, fmt.Errorf("%w: service title is required", ErrValidation)
		}
		if req.Total != nil {
			// The one item type whose precomputed total is accepted as-is;
			// the ledger re-prices everything at checkout.
			item.Total = *req.Total
		} else {
			count := len(req.Dates)
			if count == 0 {
				count = 1
			}
			item.Total = utils.RoundMoney(item.UnitPrice * float64(count) * float64(qty))
		}

	default:
		return item, fmt.Errorf("%w: unknown cart item type %q", ErrValidation, req.Type)
	}

	return item, nil
}

// RemoveItem deletes a line by id. A missing id is a no-op, not an error.
func (s *CartService) RemoveItem(sessionID, itemID string) *models.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()

	cart, ok := s.carts[sessionID]
	if !ok || s.expired(cart) {
		return s.snapshot(sessionID)
	}
	for i := range cart.Items {
		if cart.Items[i].ID == itemID {
			cart.Items = append(cart.Items[:i], cart.Items[i+1:]...)
			break
		}
	}
	cart.RecomputeTotal()
	cart.UpdatedAt = s.now()
	return s.snapshot(sessionID)
}

// Clear discards the session's cart entirely.
func (s *CartService) Clear(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, sessionID)
}

// Sweep evicts expired carts. Run periodically from main.
func (s *CartService) Sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, cart := range s.carts {
		if s.expired(cart) {
			delete(s.carts, id)
		}
	}
}
