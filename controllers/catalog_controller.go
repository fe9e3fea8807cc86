// controllers/catalog_controller.go
package controllers

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"resort-backend/models"
	"resort-backend/services"
	"resort-backend/utils"
)

// CatalogController exposes the room/offer/service catalog: public reads
// for the booking UI plus the plain CRUD the admin screens use.
type CatalogController struct {
	CatalogSvc *services.CatalogService
}

func NewCatalogController(catalogSvc *services.CatalogService) *CatalogController {
	return &CatalogController{CatalogSvc: catalogSvc}
}

// ----------------------------------------------------
// Rooms
// ----------------------------------------------------

func (ctrl *CatalogController) GetRooms(c *gin.Context) {
	rooms, err := ctrl.CatalogSvc.ListRooms()
	if err != nil {
		log.Printf("GetRooms error: %v", err)
		utils.JSONError(c, http.StatusInternalServerError, "error.internal", "failed to fetch rooms")
		return
	}
	c.JSON(http.StatusOK, rooms)
}

func (ctrl *CatalogController) CreateRoom(c *gin.Context) {
	var room models.Room
	if err := c.ShouldBindJSON(&room); err != nil {
		utils.JSONErrorDetails(c, http.StatusBadRequest, "error.invalidPayload", "invalid room payload", err.Error())
		return
	}

	room.Title = strings.TrimSpace(room.Title)
	if room.Title == "" {
		utils.JSONError(c, http.StatusBadRequest, "error.validation", "room title is required")
		return
	}

	if err := ctrl.CatalogSvc.CreateRoom(&room); err != nil {
		if strings.Contains(err.Error(), "Duplicate entry") {
			utils.JSONError(c, http.StatusConflict, "error.duplicateSlug", "a room with this slug already exists")
			return
		}
		log.Printf("CreateRoom DB error: %v", err)
		utils.JSONError(c, http.StatusInternalServerError, "error.internal", "database error")
		return
	}
	c.JSON(http.StatusCreated, room)
}

func (ctrl *CatalogController) UpdateRoom(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	var fields map[string]interface{}
	if err := c.ShouldBindJSON(&fields); err != nil {
		utils.JSONErrorDetails(c, http.StatusBadRequest, "error.invalidPayload", "invalid room payload", err.Error())
		return
	}
	// Whitelist plain content fields; pricing edits go through here too but
	// identity/timestamps never do.
	allowed := map[string]bool{"title": true, "slug": true, "thumbnail": true, "description": true,
		"price_per_night": true, "occupancy_options": true}
	for k := range fields {
		if !allowed[k] {
			delete(fields, k)
		}
	}

	room, err := ctrl.CatalogSvc.UpdateRoom(id, fields)
	if err != nil {
		if errors.Is(err, services.ErrCatalogNotFound) {
			utils.JSONError(c, http.StatusNotFound, "error.roomNotFound", "room not found")
			return
		}
		log.Printf("UpdateRoom error: %v", err)
		utils.JSONError(c, http.StatusInternalServerError, "error.internal", "database error")
		return
	}
	c.JSON(http.StatusOK, room)
}

func (ctrl *CatalogController) DeleteRoom(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	if err := ctrl.CatalogSvc.DeleteRoom(id); err != nil {
		if errors.Is(err, services.ErrCatalogNotFound) {
			utils.JSONError(c, http.StatusNotFound, "error.roomNotFound", "room not found")
			return
		}
		log.Printf("DeleteRoom error: %v", err)
		utils.JSONError(c, http.StatusInternalServerError, "error.internal", "database error")
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"deleted": id})
}

// ----------------------------------------------------
// Offers (bundled packages)
// ----------------------------------------------------

func (ctrl *CatalogController) GetOffers(c *gin.Context) {
	offers, err := ctrl.CatalogSvc.ListOffers()
	if err != nil {
		log.Printf("GetOffers error: %v", err)
		utils.JSONError(c, http.StatusInternalServerError, "error.internal", "failed to fetch offers")
		return
	}
	c.JSON(http.StatusOK, offers)
}

func (ctrl *CatalogController) CreateOffer(c *gin.Context) {
	var offer models.Offer
	if err := c.ShouldBindJSON(&offer); err != nil {
		utils.JSONErrorDetails(c, http.StatusBadRequest, "error.invalidPayload", "invalid offer payload", err.Error())
		return
	}
	if strings.TrimSpace(offer.Title) == "" {
		utils.JSONError(c, http.StatusBadRequest, "error.validation", "offer title is required")
		return
	}
	if err := ctrl.CatalogSvc.CreateOffer(&offer); err != nil {
		if isForeignKeyError(err) {
			utils.JSONError(c, http.StatusBadRequest, "error.foreignKey", "offer references an unknown room")
			return
		}
		log.Printf("CreateOffer DB error: %v", err)
		utils.JSONError(c, http.StatusInternalServerError, "error.internal", "database error")
		return
	}
	c.JSON(http.StatusCreated, offer)
}

func (ctrl *CatalogController) DeleteOffer(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	if err := ctrl.CatalogSvc.DeleteOffer(id); err != nil {
		if errors.Is(err, services.ErrCatalogNotFound) {
			utils.JSONError(c, http.StatusNotFound, "error.offerNotFound", "offer not found")
			return
		}
		log.Printf("DeleteOffer error: %v", err)
		utils.JSONError(c, http.StatusInternalServerError, "error.internal", "database error")
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"deleted": id})
}

// ----------------------------------------------------
// Services
// ----------------------------------------------------

func (ctrl *CatalogController) GetServices(c *gin.Context) {
	svcs, err := ctrl.CatalogSvc.ListServices()
	if err != nil {
		log.Printf("GetServices error: %v", err)
		utils.JSONError(c, http.StatusInternalServerError, "error.internal", "failed to fetch services")
		return
	}
	c.JSON(http.StatusOK, svcs)
}

func (ctrl *CatalogController) CreateService(c *gin.Context) {
	var svc models.CatalogService
	if err := c.ShouldBindJSON(&svc); err != nil {
		utils.JSONErrorDetails(c, http.StatusBadRequest, "error.invalidPayload", "invalid service payload", err.Error())
		return
	}
	if strings.TrimSpace(svc.Title) == "" {
		utils.JSONError(c, http.StatusBadRequest, "error.validation", "service title is required")
		return
	}
	if err := ctrl.CatalogSvc.CreateService(&svc); err != nil {
		log.Printf("CreateService DB error: %v", err)
		utils.JSONError(c, http.StatusInternalServerError, "error.internal", "database error")
		return
	}
	c.JSON(http.StatusCreated, svc)
}

func (ctrl *CatalogController) DeleteService(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	if err := ctrl.CatalogSvc.DeleteService(id); err != nil {
		if errors.Is(err, services.ErrCatalogNotFound) {
			utils.JSONError(c, http.StatusNotFound, "error.serviceNotFound", "service not found")
			return
		}
		log.Printf("DeleteService error: %v", err)
		utils.JSONError(c, http.StatusInternalServerError, "error.internal", "database error")
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"deleted": id})
}
