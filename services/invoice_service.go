// services/invoice_service.go
package services

import (
	"errors"
	"fmt"
	"log"
	"strings"

	mysql "github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"resort-backend/models"
	"resort-backend/utils"
)

var (
	ErrInvoiceNotFound = errors.New("invoice not found")
	ErrLineNotFound    = errors.New("invoice line not found")
	ErrInvalidDates    = errors.New("check_out must be after check_in")
	ErrStateConflict   = errors.New("operation not allowed in current status")
	ErrValidation      = errors.New("validation failed")
)

var validInvoiceStatuses = map[string]bool{
	models.StatusAwaitingConfirmation:  true,
	models.StatusAwaitingOnlinePayment: true,
	models.StatusConfirmedAwaiting:     true,
	models.StatusPaidAwaiting:          true,
	models.StatusCheckedIn:             true,
	models.StatusCompleted:             true,
	models.StatusCancelled:             true,
}

var validRoomStatuses = map[string]bool{
	models.RoomPendingCheckin: true,
	models.RoomCheckedIn:      true,
	models.RoomCancelled:      true,
}

// RoomSelection is one requested room line at checkout: exactly one of
// RoomID / OfferID is set.
type RoomSelection struct {
	RoomID   *uint  `json:"room_id,omitempty"`
	OfferID  *uint  `json:"offer_id,omitempty"`
	CheckIn  string `json:"check_in"`
	CheckOut string `json:"check_out"`
}

// ServiceSelection is one requested service line at checkout or add time.
type ServiceSelection struct {
	ServiceID uint     `json:"service_id"`
	Dates     []string `json:"dates,omitempty"`
}

// CheckoutPayload is everything needed to create an invoice.
type CheckoutPayload struct {
	CustomerName  string `json:"customer_name"`
	CustomerEmail string `json:"customer_email"`
	CustomerPhone string `json:"customer_phone"`
	CustomerNotes string `json:"customer_notes,omitempty"`

	PaymentMethod string `json:"payment_method"`

	Rooms    []RoomSelection    `json:"rooms"`
	Services []ServiceSelection `json:"services,omitempty"`
}

// InvoiceService owns the booking ledger: invoice creation, the status
// state machine, line edits and total recomputation.
type InvoiceService struct {
	DB *gorm.DB

	rooms    RoomReader
	offers   OfferReader
	services ServiceReader
	notify   Dispatcher
}

func NewInvoiceService(db *gorm.DB, rooms RoomReader, offers OfferReader, services ServiceReader, notify Dispatcher) *InvoiceService {
	return &InvoiceService{DB: db, rooms: rooms, offers: offers, services: services, notify: notify}
}

// recomputeInvoiceTotal is the single place invoice totals are refreshed.
// Every mutation path runs it inside the same transaction as the edit, so
// lines and total can never be observed disagreeing.
func recomputeInvoiceTotal(tx *gorm.DB, invoiceID uint) error {
	var inv models.Invoice
	if err := tx.Where("invoice_id = ?", invoiceID).Find(&inv.Rooms).Error; err != nil {
		return err
	}
	if err := tx.Where("invoice_id = ?", invoiceID).Find(&inv.Services).Error; err != nil {
		return err
	}
	inv.RecomputeTotal()
	return tx.Model(&models.Invoice{}).Where("id = ?", invoiceID).
		Update("total_amount", inv.TotalAmount).Error
}

// isDuplicateErr detects a unique-key violation (MySQL 1062). FK and other
// constraint failures must not match: those are real errors, not
// booking-code collisions worth retrying.
func isDuplicateErr(err error) bool {
	if err == nil {
		return false
	}
	var merr *mysql.MySQLError
	if errors.As(err, &merr) {
		return merr.Number == 1062
	}
	lc := strings.ToLower(err.Error())
	return strings.Contains(lc, "duplicate entry") || strings.Contains(lc, "unique constraint")
}

// Create builds an invoice from a checkout payload: customer snapshot,
// server-priced line snapshots, generated booking code and the initial
// status derived from the payment method.
func (s *InvoiceService) Create(payload CheckoutPayload) (*models.Invoice, error) {
	name := strings.TrimSpace(payload.CustomerName)
	email := strings.TrimSpace(payload.CustomerEmail)
	if name == "" || email == "" {
		return nil, fmt.Errorf("%w: customer name and email are required", ErrValidation)
	}
	switch payload.PaymentMethod {
	case models.PaymentCash, models.PaymentOnlineA, models.PaymentOnlineB:
	default:
		return nil, fmt.Errorf("%w: unknown payment method %q", ErrValidation, payload.PaymentMethod)
	}
	if len(payload.Rooms) == 0 {
		return nil, fmt.Errorf("%w: at least one room or package is required", ErrValidation)
	}

	roomLines := make([]models.BookedRoom, 0, len(payload.Rooms))
	for i, sel := range payload.Rooms {
		if (sel.RoomID == nil) == (sel.OfferID == nil) {
			return nil, fmt.Errorf("%w: line %d must reference exactly one room or offer", ErrValidation, i)
		}
		ci, err := utils.ParseDate(sel.CheckIn)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d check_in: %v", ErrValidation, i, err)
		}
		co, err := utils.ParseDate(sel.CheckOut)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d check_out: %v", ErrValidation, i, err)
		}
		if !co.After(ci) {
			return nil, fmt.Errorf("%w: line %d", ErrInvalidDates, i)
		}

		line := models.BookedRoom{
			CheckIn:  ci,
			CheckOut: co,
			Status:   models.RoomPendingCheckin,
		}
		if sel.RoomID != nil {
			room, err := s.rooms.GetRoom(*sel.RoomID)
			if err != nil {
				return nil, fmt.Errorf("%w: room %d not found", ErrValidation, *sel.RoomID)
			}
			line.RoomID = sel.RoomID
			line.Title = room.Title
			line.Thumbnail = room.Thumbnail
			line.PricePerNight = room.PricePerNight
		} else {
			offer, err := s.offers.GetOffer(*sel.OfferID)
			if err != nil {
				return nil, fmt.Errorf("%w: offer %d not found", ErrValidation, *sel.OfferID)
			}
			line.OfferID = sel.OfferID
			line.Title = offer.Title
			line.Thumbnail = offer.Thumbnail
			// A bundled package is priced per night of the bundle.
			line.PricePerNight = offer.Price
		}
		line.Recalculate()
		roomLines = append(roomLines, line)
	}

	serviceLines, err := s.buildServiceLines(payload.Services)
	if err != nil {
		return nil, err
	}

	inv := models.Invoice{
		CustomerName:  name,
		CustomerEmail: email,
		CustomerPhone: strings.TrimSpace(payload.CustomerPhone),
		CustomerNotes: strings.TrimSpace(payload.CustomerNotes),
		PaymentMethod: payload.PaymentMethod,
		Status:        models.InitialStatus(payload.PaymentMethod),
		Rooms:         roomLines,
		Services:      serviceLines,
	}
	inv.RecomputeTotal()

	// Booking codes are unique by index; retry generation on collision.
	const maxRetries = 5
	var createErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		code, gErr := utils.GenerateBookingCode()
		if gErr != nil {
			return nil, fmt.Errorf("failed to generate booking code: %w", gErr)
		}
		inv.BookingCode = code

		createErr = s.DB.Create(&inv).Error
		if createErr == nil {
			break
		}
		if isDuplicateErr(createErr) {
			log.Printf("booking code collision (attempt %d) - retrying", attempt+1)
			inv.ID = 0
			continue
		}
		return nil, fmt.Errorf("failed to create invoice: %w", createErr)
	}
	if createErr != nil {
		return nil, fmt.Errorf("failed to create invoice after retries: %w", createErr)
	}

	created, err := s.GetByID(inv.ID)
	if err != nil {
		return nil, err
	}

	// Cash bookings are confirmed to the guest right away; online ones get
	// their confirmation after the verified payment callback.
	if created.PaymentMethod == models.PaymentCash {
		s.notify.Enqueue(*created, NotifyConfirmation)
	}
	return created, nil
}

func (s *InvoiceService) buildServiceLines(selections []ServiceSelection) ([]models.BookedService, error) {
	lines := make([]models.BookedService, 0, len(selections))
	for i, sel := range selections {
		svc, err := s.services.GetService(sel.ServiceID)
		if err != nil {
			return nil, fmt.Errorf("%w: service %d not found", ErrValidation, sel.ServiceID)
		}
		for _, d := range sel.Dates {
			if _, err := utils.ParseDate(d); err != nil {
				return nil, fmt.Errorf("%w: service line %d has invalid date %q", ErrValidation, i, d)
			}
		}
		sid := sel.ServiceID
		line := models.BookedService{
			ServiceID: &sid,
			Title:     svc.Title,
			Thumbnail: svc.Thumbnail,
			UnitPrice: svc.UnitPrice,
		}
		line.SetDates(sel.Dates)
		lines = append(lines, line)
	}
	return lines, nil
}

func (s *InvoiceService) GetByID(id uint) (*models.Invoice, error) {
	var inv models.Invoice
	if err := s.DB.Preload("Rooms").Preload("Services").First(&inv, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvoiceNotFound
		}
		return nil, fmt.Errorf("failed to load invoice %d: %w", id, err)
	}
	return &inv, nil
}

func (s *InvoiceService) GetByCode(code string) (*models.Invoice, error) {
	var inv models.Invoice
	if err := s.DB.Preload("Rooms").Preload("Services").
		Where("booking_code = ?", strings.ToUpper(strings.TrimSpace(code))).
		First(&inv).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvoiceNotFound
		}
		return nil, fmt.Errorf("failed to load invoice %s: %w", code, err)
	}
	return &inv, nil
}

func (s *InvoiceService) List() ([]models.Invoice, error) {
	var list []models.Invoice
	if err := s.DB.Preload("Rooms").Preload("Services").
		Order("created_at DESC").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}
	return list, nil
}

// ActiveRoomLines is the ledger's read API for the availability resolver:
// every live room line occupying the given room directly or through one of
// the listed bundled offers. Cancelled lines and lines on cancelled
// invoices don't occupy anything.
func (s *InvoiceService) ActiveRoomLines(roomID uint, offerIDs []uint) ([]models.BookedRoom, error) {
	q := s.DB.Model(&models.BookedRoom{}).
		Joins("JOIN invoices ON invoices.id = booked_rooms.invoice_id").
		Where("invoices.status <> ?", models.StatusCancelled).
		Where("invoices.deleted_at IS NULL").
		Where("booked_rooms.status <> ?", models.RoomCancelled)

	if len(offerIDs) > 0 {
		q = q.Where("(booked_rooms.room_id = ? OR booked_rooms.offer_id IN ?)", roomID, offerIDs)
	} else {
		q = q.Where("booked_rooms.room_id = ?", roomID)
	}

	var lines []models.BookedRoom
	if err := q.Find(&lines).Error; err != nil {
		return nil, fmt.Errorf("failed to scan booked lines for room %d: %w", roomID, err)
	}
	return lines, nil
}

// UpdateStatus is the staff override: any non-terminal invoice may be moved
// to any valid status. Setting COMPLETED marks the invoice paid; setting
// CANCELLED fires a cancellation notice. Terminal invoices are immutable.
func (s *InvoiceService) UpdateStatus(id uint, status string) (*models.Invoice, error) {
	if !validInvoiceStatuses[status] {
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, status)
	}

	inv, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	if inv.IsTerminal() {
		return nil, fmt.Errorf("%w: invoice %s is %s", ErrStateConflict, inv.BookingCode, inv.Status)
	}
	if inv.Status == status {
		return inv, nil
	}

	updates := map[string]interface{}{"status": status}
	if status == models.StatusCompleted {
		updates["paid"] = true
	}
	if err := s.DB.Model(&models.Invoice{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update status: %w", err)
	}

	updated, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	if status == models.StatusCancelled {
		s.notify.Enqueue(*updated, NotifyCancellation)
	}
	return updated, nil
}

// UpdateRoomStatus updates one room line's status and re-derives the ledger
// status from all lines. The derivation is authoritative but idempotent:
// the invoice row is only written when the derived status differs.
func (s *InvoiceService) UpdateRoomStatus(invoiceID, lineID uint, status string) (*models.Invoice, error) {
	if !validRoomStatuses[status] {
		return nil, fmt.Errorf("%w: unknown room status %q", ErrValidation, status)
	}

	cancelled := false
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var inv models.Invoice
		if err := tx.Preload("Rooms").First(&inv, invoiceID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrInvoiceNotFound
			}
			return err
		}
		if inv.IsTerminal() {
			return fmt.Errorf("%w: invoice %s is %s", ErrStateConflict, inv.BookingCode, inv.Status)
		}

		idx := -1
		for i := range inv.Rooms {
			if inv.Rooms[i].ID == lineID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return ErrLineNotFound
		}

		if err := tx.Model(&models.BookedRoom{}).Where("id = ?", lineID).
			Update("status", status).Error; err != nil {
			return err
		}
		inv.Rooms[idx].Status = status

		derived, changed := models.DeriveInvoiceStatus(inv.Rooms, inv.Paid, inv.Status)
		if changed {
			if err := tx.Model(&models.Invoice{}).Where("id = ?", invoiceID).
				Update("status", derived).Error; err != nil {
				return err
			}
			cancelled = derived == models.StatusCancelled
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	updated, err := s.GetByID(invoiceID)
	if err != nil {
		return nil, err
	}
	if cancelled {
		s.notify.Enqueue(*updated, NotifyCancellation)
	}
	return updated, nil
}

// RescheduleRoom changes a room line's stay interval and recomputes the
// line and invoice totals atomically.
func (s *InvoiceService) RescheduleRoom(invoiceID, lineID uint, checkIn, checkOut string) (*models.Invoice, error) {
	ci, err := utils.ParseDate(checkIn)
	if err != nil {
		return nil, fmt.Errorf("%w: check_in: %v", ErrValidation, err)
	}
	co, err := utils.ParseDate(checkOut)
	if err != nil {
		return nil, fmt.Errorf("%w: check_out: %v", ErrValidation, err)
	}
	if !co.After(ci) {
		return nil, ErrInvalidDates
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		line, err := s.loadEditableLine(tx, invoiceID, lineID)
		if err != nil {
			return err
		}

		line.CheckIn = ci
		line.CheckOut = co
		line.Recalculate()
		if err := tx.Model(&models.BookedRoom{}).Where("id = ?", line.ID).Updates(map[string]interface{}{
			"check_in":         line.CheckIn,
			"check_out":        line.CheckOut,
			"nights":           line.Nights,
			"total_room_price": line.TotalPrice,
		}).Error; err != nil {
			return err
		}
		return recomputeInvoiceTotal(tx, invoiceID)
	})
	if err != nil {
		return nil, err
	}
	return s.GetByID(invoiceID)
}

// loadEditableLine fetches the invoice and one of its room lines, enforcing
// the edit guard shared by all line mutations.
func (s *InvoiceService) loadEditableLine(tx *gorm.DB, invoiceID, lineID uint) (*models.BookedRoom, error) {
	var inv models.Invoice
	if err := tx.Preload("Rooms").First(&inv, invoiceID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvoiceNotFound
		}
		return nil, err
	}
	if !inv.IsEditable() {
		return nil, fmt.Errorf("%w: invoice %s is %s", ErrStateConflict, inv.BookingCode, inv.Status)
	}
	for i := range inv.Rooms {
		if inv.Rooms[i].ID == lineID {
			return &inv.Rooms[i], nil
		}
	}
	return nil, ErrLineNotFound
}

func (s *InvoiceService) loadEditable(tx *gorm.DB, invoiceID uint) (*models.Invoice, error) {
	var inv models.Invoice
	if err := tx.Preload("Services").First(&inv, invoiceID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvoiceNotFound
		}
		return nil, err
	}
	if !inv.IsEditable() {
		return nil, fmt.Errorf("%w: invoice %s is %s", ErrStateConflict, inv.BookingCode, inv.Status)
	}
	return &inv, nil
}

// AddServices appends service lines to a confirmed booking.
func (s *InvoiceService) AddServices(invoiceID uint, selections []ServiceSelection) (*models.Invoice, error) {
	if len(selections) == 0 {
		return nil, fmt.Errorf("%w: no services selected", ErrValidation)
	}
	lines, err := s.buildServiceLines(selections)
	if err != nil {
		return nil, err
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		inv, err := s.loadEditable(tx, invoiceID)
		if err != nil {
			return err
		}
		for i := range lines {
			lines[i].InvoiceID = inv.ID
			if err := tx.Create(&lines[i]).Error; err != nil {
				return err
			}
		}
		return recomputeInvoiceTotal(tx, invoiceID)
	})
	if err != nil {
		return nil, err
	}
	return s.GetByID(invoiceID)
}

// RemoveService deletes one service line.
func (s *InvoiceService) RemoveService(invoiceID, lineID uint) (*models.Invoice, error) {
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		inv, err := s.loadEditable(tx, invoiceID)
		if err != nil {
			return err
		}
		res := tx.Where("id = ? AND invoice_id = ?", lineID, inv.ID).Delete(&models.BookedService{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrLineNotFound
		}
		return recomputeInvoiceTotal(tx, invoiceID)
	})
	if err != nil {
		return nil, err
	}
	return s.GetByID(invoiceID)
}

// RescheduleServiceDates replaces the selected dates of one service line.
func (s *InvoiceService) RescheduleServiceDates(invoiceID, lineID uint, dates []string) (*models.Invoice, error) {
	for _, d := range dates {
		if _, err := utils.ParseDate(d); err != nil {
			return nil, fmt.Errorf("%w: invalid date %q", ErrValidation, d)
		}
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		inv, err := s.loadEditable(tx, invoiceID)
		if err != nil {
			return err
		}
		var line *models.BookedService
		for i := range inv.Services {
			if inv.Services[i].ID == lineID {
				line = &inv.Services[i]
				break
			}
		}
		if line == nil {
			return ErrLineNotFound
		}

		line.SetDates(dates)
		if err := tx.Model(&models.BookedService{}).Where("id = ?", line.ID).Updates(map[string]interface{}{
			"selected_dates":      line.SelectedDates,
			"quantity":            line.Quantity,
			"total_service_price": line.TotalPrice,
		}).Error; err != nil {
			return err
		}
		return recomputeInvoiceTotal(tx, invoiceID)
	})
	if err != nil {
		return nil, err
	}
	return s.GetByID(invoiceID)
}

// MarkPaid applies a verified successful payment to the ledger. It is
// idempotent: an invoice already paid (or further along, or terminal) is
// left untouched and changed=false is returned. The row is locked for the
// duration of the transaction so redelivered callbacks cannot interleave.
func (s *InvoiceService) MarkPaid(code, transactionRef string) (*models.Invoice, bool, error) {
	changed := false
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var inv models.Invoice
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("booking_code = ?", strings.ToUpper(strings.TrimSpace(code))).
			First(&inv).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrInvoiceNotFound
			}
			return err
		}

		switch {
		case inv.Paid,
			inv.Status == models.StatusPaidAwaiting,
			inv.Status == models.StatusCheckedIn,
			inv.IsTerminal():
			return nil // no-op, provider redelivered the callback
		}

		if err := tx.Model(&models.Invoice{}).Where("id = ?", inv.ID).Updates(map[string]interface{}{
			"paid":            true,
			"transaction_ref": transactionRef,
			"status":          models.StatusPaidAwaiting,
		}).Error; err != nil {
			return err
		}
		changed = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}

	inv, err := s.GetByCode(code)
	if err != nil {
		return nil, false, err
	}
	return inv, changed, nil
}
