package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"resort-backend/models"
)

// fakeCatalog backs the catalog reader interfaces with in-memory fixtures.
type fakeCatalog struct {
	rooms    []models.Room
	offers   map[uint]*models.Offer
	services map[uint]*models.CatalogService
	offerIdx map[uint][]uint // roomID -> offers containing it
}

func (f *fakeCatalog) ListRooms() ([]models.Room, error) { return f.rooms, nil }

func (f *fakeCatalog) GetRoom(id uint) (*models.Room, error) {
	for i := range f.rooms {
		if f.rooms[i].ID == id {
			return &f.rooms[i], nil
		}
	}
	return nil, ErrCatalogNotFound
}

func (f *fakeCatalog) GetOffer(id uint) (*models.Offer, error) {
	if o, ok := f.offers[id]; ok {
		return o, nil
	}
	return nil, ErrCatalogNotFound
}

func (f *fakeCatalog) OfferIDsContainingRoom(roomID uint) ([]uint, error) {
	return f.offerIdx[roomID], nil
}

func (f *fakeCatalog) GetService(id uint) (*models.CatalogService, error) {
	if s, ok := f.services[id]; ok {
		return s, nil
	}
	return nil, ErrCatalogNotFound
}

// fakeLedger serves ActiveRoomLines from a flat fixture slice.
type fakeLedger struct {
	lines []models.BookedRoom
}

func (f *fakeLedger) ActiveRoomLines(roomID uint, offerIDs []uint) ([]models.BookedRoom, error) {
	var out []models.BookedRoom
	for _, l := range f.lines {
		if l.Status == models.RoomCancelled {
			continue
		}
		if l.RoomID != nil && *l.RoomID == roomID {
			out = append(out, l)
			continue
		}
		if l.OfferID != nil {
			for _, id := range offerIDs {
				if *l.OfferID == id {
					out = append(out, l)
					break
				}
			}
		}
	}
	return out, nil
}

func testDate(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func occupancy(texts string) datatypes.JSON {
	return datatypes.JSON([]byte(texts))
}

func fixtureCatalog() *fakeCatalog {
	return &fakeCatalog{
		rooms: []models.Room{
			{
				Model:            gorm.Model{ID: 1},
				Title:            "Garden Bungalow",
				PricePerNight:    500000,
				OccupancyOptions: occupancy(`["2 adults"]`),
			},
			{
				Model:            gorm.Model{ID: 2},
				Title:            "Sea View Deluxe",
				PricePerNight:    800000,
				OccupancyOptions: occupancy(`["2 adults, 2 children"]`),
			},
		},
		offers: map[uint]*models.Offer{
			7: {Model: gorm.Model{ID: 7}, Title: "Honeymoon Bundle", Price: 1100000},
		},
		services: map[uint]*models.CatalogService{
			3: {Model: gorm.Model{ID: 3}, Title: "Spa Session", UnitPrice: 200000},
		},
		offerIdx: map[uint][]uint{1: {7}, 2: {7}},
	}
}

func roomLine(roomID uint, in, out, status string) models.BookedRoom {
	id := roomID
	return models.BookedRoom{
		RoomID:   &id,
		CheckIn:  testDate(in),
		CheckOut: testDate(out),
		Status:   status,
	}
}

func offerLine(offerID uint, in, out string) models.BookedRoom {
	id := offerID
	return models.BookedRoom{
		OfferID:  &id,
		CheckIn:  testDate(in),
		CheckOut: testDate(out),
		Status:   models.RoomPendingCheckin,
	}
}

func TestFindAvailableRoomCapacity(t *testing.T) {
	svc := NewAvailabilityService(fixtureCatalog(), fixtureCatalog(), &fakeLedger{})

	// 2 adults fits the first room in catalog order.
	room, err := svc.FindAvailableRoom("2026-03-10", "2026-03-12", 2, 0)
	require.NoError(t, err)
	assert.Equal(t, uint(1), room.ID)

	// 2 adults + 2 children only fits the deluxe.
	room, err = svc.FindAvailableRoom("2026-03-10", "2026-03-12", 2, 2)
	require.NoError(t, err)
	assert.Equal(t, uint(2), room.ID)

	// Nothing holds 5 adults.
	_, err = svc.FindAvailableRoom("2026-03-10", "2026-03-12", 5, 0)
	assert.ErrorIs(t, err, ErrNoRoomAvailable)
}

func TestFindAvailableRoomConflicts(t *testing.T) {
	ledger := &fakeLedger{lines: []models.BookedRoom{
		roomLine(1, "2026-03-10", "2026-03-12", models.RoomPendingCheckin),
	}}
	svc := NewAvailabilityService(fixtureCatalog(), fixtureCatalog(), ledger)

	// Overlapping stay skips the occupied room and falls through to the next.
	room, err := svc.FindAvailableRoom("2026-03-11", "2026-03-13", 2, 0)
	require.NoError(t, err)
	assert.Equal(t, uint(2), room.ID)

	// Touching intervals are not conflicts: checkout day is checkin day.
	room, err = svc.FindAvailableRoom("2026-03-12", "2026-03-14", 2, 0)
	require.NoError(t, err)
	assert.Equal(t, uint(1), room.ID)

	room, err = svc.FindAvailableRoom("2026-03-08", "2026-03-10", 2, 0)
	require.NoError(t, err)
	assert.Equal(t, uint(1), room.ID)
}

func TestFindAvailableRoomOfferExpansion(t *testing.T) {
	// A booked bundle occupies every member room for the interval.
	ledger := &fakeLedger{lines: []models.BookedRoom{
		offerLine(7, "2026-03-10", "2026-03-12"),
	}}
	svc := NewAvailabilityService(fixtureCatalog(), fixtureCatalog(), ledger)

	_, err := svc.FindAvailableRoom("2026-03-11", "2026-03-13", 2, 0)
	assert.ErrorIs(t, err, ErrNoRoomAvailable)

	room, err := svc.FindAvailableRoom("2026-03-12", "2026-03-14", 2, 0)
	require.NoError(t, err)
	assert.Equal(t, uint(1), room.ID)
}

func TestFindAvailableRoomCancelledLinesIgnored(t *testing.T) {
	ledger := &fakeLedger{lines: []models.BookedRoom{
		roomLine(1, "2026-03-10", "2026-03-12", models.RoomCancelled),
	}}
	svc := NewAvailabilityService(fixtureCatalog(), fixtureCatalog(), ledger)

	room, err := svc.FindAvailableRoom("2026-03-10", "2026-03-12", 2, 0)
	require.NoError(t, err)
	assert.Equal(t, uint(1), room.ID)
}

func TestFindAvailableRoomValidation(t *testing.T) {
	svc := NewAvailabilityService(fixtureCatalog(), fixtureCatalog(), &fakeLedger{})

	_, err := svc.FindAvailableRoom("not-a-date", "2026-03-12", 2, 0)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.FindAvailableRoom("2026-03-12", "2026-03-10", 2, 0)
	assert.ErrorIs(t, err, ErrInvalidDates)

	_, err = svc.FindAvailableRoom("2026-03-10", "2026-03-10", 2, 0)
	assert.ErrorIs(t, err, ErrInvalidDates)

	_, err = svc.FindAvailableRoom("2026-03-10", "2026-03-12", 0, 2)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestBookedIntervals(t *testing.T) {
	ledger := &fakeLedger{lines: []models.BookedRoom{
		roomLine(1, "2026-03-10", "2026-03-12", models.RoomPendingCheckin),
		offerLine(7, "2026-03-20", "2026-03-22"),
	}}
	svc := NewAvailabilityService(fixtureCatalog(), fixtureCatalog(), ledger)

	intervals, err := svc.BookedIntervals(1)
	require.NoError(t, err)
	require.Len(t, intervals, 2)
	assert.Equal(t, testDate("2026-03-10"), intervals[0].CheckIn)
	assert.Equal(t, testDate("2026-03-22"), intervals[1].CheckOut)

	_, err = svc.BookedIntervals(99)
	assert.ErrorIs(t, err, ErrCatalogNotFound)
}
