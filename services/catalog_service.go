// services/catalog_service.go
package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"resort-backend/models"
)

var ErrCatalogNotFound = errors.New("catalog entry not found")

// Read-only catalog access. The booking core (availability resolver, cart
// aggregator, invoice creation) depends on these interfaces instead of
// ambient DB lookups so it stays testable with fixtures.
type RoomReader interface {
	ListRooms() ([]models.Room, error)
	GetRoom(id uint) (*models.Room, error)
}

type OfferReader interface {
	GetOffer(id uint) (*models.Offer, error)
	// OfferIDsContainingRoom expands "which packages include room X".
	OfferIDsContainingRoom(roomID uint) ([]uint, error)
}

type ServiceReader interface {
	GetService(id uint) (*models.CatalogService, error)
}

// CatalogService is the gorm-backed catalog. The core only reads through
// it; the write methods exist for the admin content screens.
type CatalogService struct {
	DB *gorm.DB
}

func NewCatalogService(db *gorm.DB) *CatalogService {
	return &CatalogService{DB: db}
}

func (s *CatalogService) ListRooms() ([]models.Room, error) {
	var rooms []models.Room
	if err := s.DB.Order("id ASC").Find(&rooms).Error; err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}
	return rooms, nil
}

func (s *CatalogService) GetRoom(id uint) (*models.Room, error) {
	var room models.Room
	if err := s.DB.First(&room, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCatalogNotFound
		}
		return nil, fmt.Errorf("db error loading room %d: %w", id, err)
	}
	return &room, nil
}

func (s *CatalogService) ListOffers() ([]models.Offer, error) {
	var offers []models.Offer
	if err := s.DB.Preload("Rooms.Room").Order("id ASC").Find(&offers).Error; err != nil {
		return nil, fmt.Errorf("failed to list offers: %w", err)
	}
	return offers, nil
}

func (s *CatalogService) GetOffer(id uint) (*models.Offer, error) {
	var offer models.Offer
	if err := s.DB.Preload("Rooms").First(&offer, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCatalogNotFound
		}
		return nil, fmt.Errorf("db error loading offer %d: %w", id, err)
	}
	return &offer, nil
}

func (s *CatalogService) OfferIDsContainingRoom(roomID uint) ([]uint, error) {
	var ids []uint
	if err := s.DB.Model(&models.OfferRoom{}).
		Where("room_id = ?", roomID).
		Pluck("offer_id", &ids).Error; err != nil {
		return nil, fmt.Errorf("failed to expand offers for room %d: %w", roomID, err)
	}
	return ids, nil
}

func (s *CatalogService) ListServices() ([]models.CatalogService, error) {
	var svcs []models.CatalogService
	if err := s.DB.Order("id ASC").Find(&svcs).Error; err != nil {
		return nil, fmt.Errorf("failed to list services: %w", err)
	}
	return svcs, nil
}

func (s *CatalogService) GetService(id uint) (*models.CatalogService, error) {
	var svc models.CatalogService
	if err := s.DB.First(&svc, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCatalogNotFound
		}
		return nil, fmt.Errorf("db error loading service %d: %w", id, err)
	}
	return &svc, nil
}

// ---- admin write side (plain field CRUD, outside the booking core) ----

func (s *CatalogService) CreateRoom(room *models.Room) error {
	return s.DB.Create(room).Error
}

func (s *CatalogService) UpdateRoom(id uint, fields map[string]interface{}) (*models.Room, error) {
	room, err := s.GetRoom(id)
	if err != nil {
		return nil, err
	}
	if err := s.DB.Model(room).Updates(fields).Error; err != nil {
		return nil, err
	}
	return room, nil
}

func (s *CatalogService) DeleteRoom(id uint) error {
	res := s.DB.Delete(&models.Room{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrCatalogNotFound
	}
	return nil
}

func (s *CatalogService) CreateOffer(offer *models.Offer) error {
	return s.DB.Create(offer).Error
}

func (s *CatalogService) DeleteOffer(id uint) error {
	res := s.DB.Delete(&models.Offer{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrCatalogNotFound
	}
	return nil
}

func (s *CatalogService) CreateService(svc *models.CatalogService) error {
	return s.DB.Create(svc).Error
}

func (s *CatalogService) DeleteService(id uint) error {
	res := s.DB.Delete(&models.CatalogService{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrCatalogNotFound
	}
	return nil
}
