// controllers/availability_controller.go
package controllers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"resort-backend/services"
	"resort-backend/utils"
)

type AvailabilitySearchPayload struct {
	CheckIn  string `json:"check_in" binding:"required"`
	CheckOut string `json:"check_out" binding:"required"`
	Adults   int    `json:"adults" binding:"required"`
	Children int    `json:"children"`
}

type AvailabilityController struct {
	AvailabilitySvc *services.AvailabilityService
}

func NewAvailabilityController(availabilitySvc *services.AvailabilityService) *AvailabilityController {
	return &AvailabilityController{AvailabilitySvc: availabilitySvc}
}

// Search finds the first free room matching dates and party size.
func (ctrl *AvailabilityController) Search(c *gin.Context) {
	var payload AvailabilitySearchPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		utils.JSONErrorDetails(c, http.StatusBadRequest, "error.invalidPayload", "check_in, check_out and adults are required", err.Error())
		return
	}

	room, err := ctrl.AvailabilitySvc.FindAvailableRoom(payload.CheckIn, payload.CheckOut, payload.Adults, payload.Children)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNoRoomAvailable):
			utils.JSONError(c, http.StatusNotFound, "error.noRoomAvailable", err.Error())
		case errors.Is(err, services.ErrValidation), errors.Is(err, services.ErrInvalidDates):
			utils.JSONError(c, http.StatusBadRequest, "error.validation", err.Error())
		default:
			log.Printf("availability search error: %v", err)
			utils.JSONError(c, http.StatusInternalServerError, "error.internal", "internal error")
		}
		return
	}
	utils.JSONSuccess(c, http.StatusOK, room)
}

// BookedIntervals lists the occupied stay ranges for one room.
func (ctrl *AvailabilityController) BookedIntervals(c *gin.Context) {
	roomID, ok := parseUintParam(c, "roomId")
	if !ok {
		return
	}

	intervals, err := ctrl.AvailabilitySvc.BookedIntervals(roomID)
	if err != nil {
		if errors.Is(err, services.ErrCatalogNotFound) {
			utils.JSONError(c, http.StatusNotFound, "error.roomNotFound", "room not found")
			return
		}
		log.Printf("booked intervals error for room %d: %v", roomID, err)
		utils.JSONError(c, http.StatusInternalServerError, "error.internal", "internal error")
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"roomId": roomID, "booked": intervals})
}
