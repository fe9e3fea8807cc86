// services/availability_service.go
package services

import (
	"errors"
	"fmt"
	"time"

	"resort-backend/models"
	"resort-backend/utils"
)

var ErrNoRoomAvailable = errors.New("no room available for the requested stay")

// BookedInterval is one occupied stay range for a room.
type BookedInterval struct {
	CheckIn  time.Time `json:"check_in"`
	CheckOut time.Time `json:"check_out"`
	Status   string    `json:"status"`
}

// LedgerReader is the booking ledger's read API: every live room line that
// occupies the given room, either directly or through one of the listed
// bundled offers. Cancelled lines and cancelled invoices are excluded.
type LedgerReader interface {
	ActiveRoomLines(roomID uint, offerIDs []uint) ([]models.BookedRoom, error)
}

// AvailabilityService resolves stay conflicts and capacity. The scan is
// advisory: it reads a snapshot without locking, it does not reserve.
type AvailabilityService struct {
	rooms  RoomReader
	offers OfferReader
	ledger LedgerReader
}

func NewAvailabilityService(rooms RoomReader, offers OfferReader, ledger LedgerReader) *AvailabilityService {
	return &AvailabilityService{rooms: rooms, offers: offers, ledger: ledger}
}

// FindAvailableRoom returns the first catalog room (by catalog order) whose
// capacity fits the party and whose booked intervals don't overlap the
// requested half-open stay [checkIn, checkOut).
func (s *AvailabilityService) FindAvailableRoom(checkIn, checkOut string, adults, children int) (*models.Room, error) {
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
	if adults <= 0 {
		return nil, fmt.Errorf("%w: at least one adult is required", ErrValidation)
	}
	if children < 0 {
		children = 0
	}

	rooms, err := s.rooms.ListRooms()
	if err != nil {
		return nil, err
	}

	for i := range rooms {
		room := &rooms[i]
		if !utils.AnyFits(room.OccupancyTexts(), adults, children) {
			continue
		}

		free, err := s.isFree(room.ID, ci, co)
		if err != nil {
			return nil, err
		}
		if free {
			return room, nil
		}
	}
	return nil, fmt.Errorf("%w: %d adult(s), %d child(ren), %s to %s",
		ErrNoRoomAvailable, adults, children, ci.Format("2006-01-02"), co.Format("2006-01-02"))
}

func (s *AvailabilityService) isFree(roomID uint, ci, co time.Time) (bool, error) {
	lines, err := s.occupyingLines(roomID)
	if err != nil {
		return false, err
	}
	for i := range lines {
		if utils.RangesOverlap(lines[i].CheckIn, lines[i].CheckOut, ci, co) {
			return false, nil
		}
	}
	return true, nil
}

// occupyingLines expands the packages that include the room, then pulls
// every live line that occupies it.
func (s *AvailabilityService) occupyingLines(roomID uint) ([]models.BookedRoom, error) {
	offerIDs, err := s.offers.OfferIDsContainingRoom(roomID)
	if err != nil {
		return nil, err
	}
	return s.ledger.ActiveRoomLines(roomID, offerIDs)
}

// BookedIntervals lists the occupied stay ranges for one room, bundled
// package bookings included.
func (s *AvailabilityService) BookedIntervals(roomID uint) ([]BookedInterval, error) {
	if _, err := s.rooms.GetRoom(roomID); err != nil {
		return nil, err
	}
	lines, err := s.occupyingLines(roomID)
	if err != nil {
		return nil, err
	}
	intervals := make([]BookedInterval, 0, len(lines))
	for i := range lines {
		intervals = append(intervals, BookedInterval{
			CheckIn:  lines[i].CheckIn,
			CheckOut: lines[i].CheckOut,
			Status:   lines[i].Status,
		})
	}
	return intervals, nil
}
