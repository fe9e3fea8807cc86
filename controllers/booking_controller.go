// controllers/booking_controller.go
package controllers

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	mysql "github.com/go-sql-driver/mysql"

	"resort-backend/models"
	"resort-backend/services"
	"resort-backend/utils"
)

// ---------------------------
// Payload / DTOs
// ---------------------------

type UpdateStatusPayload struct {
	Status string `json:"status" binding:"required"`
}

type RescheduleRoomPayload struct {
	CheckIn  string `json:"check_in" binding:"required"`
	CheckOut string `json:"check_out" binding:"required"`
}

type AddServicesPayload struct {
	Services []services.ServiceSelection `json:"services" binding:"required"`
}

type RescheduleServicePayload struct {
	Dates []string `json:"dates"`
}

// ---------------------------
// Controller
// ---------------------------

type BookingController struct {
	InvoiceSvc *services.InvoiceService
	PaymentSvc *services.PaymentService
}

func NewBookingController(invoiceSvc *services.InvoiceService, paymentSvc *services.PaymentService) *BookingController {
	return &BookingController{InvoiceSvc: invoiceSvc, PaymentSvc: paymentSvc}
}

func parseUintParam(c *gin.Context, name string) (uint, bool) {
	v, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "error.invalidId", "parameter "+name+" must be numeric")
		return 0, false
	}
	return uint(v), true
}

// respondServiceError maps ledger errors onto the API's error envelope.
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrInvoiceNotFound):
		utils.JSONError(c, http.StatusNotFound, "error.bookingNotFound", "booking not found")
	case errors.Is(err, services.ErrLineNotFound):
		utils.JSONError(c, http.StatusNotFound, "error.lineNotFound", "booking line not found")
	case errors.Is(err, services.ErrInvalidDates):
		utils.JSONError(c, http.StatusBadRequest, "error.invalidDates", err.Error())
	case errors.Is(err, services.ErrValidation):
		utils.JSONError(c, http.StatusBadRequest, "error.validation", err.Error())
	case errors.Is(err, services.ErrStateConflict):
		utils.JSONError(c, http.StatusConflict, "error.stateConflict", err.Error())
	case isForeignKeyError(err):
		utils.JSONError(c, http.StatusBadRequest, "error.foreignKey", err.Error())
	default:
		log.Printf("internal error: %v", err)
		utils.JSONError(c, http.StatusInternalServerError, "error.internal", "internal error")
	}
}

func isForeignKeyError(err error) bool {
	if err == nil {
		return false
	}
	var merr *mysql.MySQLError
	if errors.As(err, &merr) {
		return merr.Number == 1452
	}
	lower := strings.ToLower(err.Error())
	return strings.Contains(lower, "foreign key") || strings.Contains(lower, "1452")
}

// CreateBooking creates an invoice from a checkout payload. For online
// payment methods the response carries the signed gateway redirect URL.
func (ctrl *BookingController) CreateBooking(c *gin.Context) {
	var payload services.CheckoutPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		utils.JSONErrorDetails(c, http.StatusBadRequest, "error.invalidPayload", "invalid request body", err.Error())
		return
	}

	inv, err := ctrl.InvoiceSvc.Create(payload)
	if err != nil {
		log.Printf("CreateBooking error: %v", err)
		respondServiceError(c, err)
		return
	}

	resp := gin.H{"bookingCode": inv.BookingCode, "invoice": inv}
	if inv.Status == models.StatusAwaitingOnlinePayment {
		payURL, payErr := ctrl.PaymentSvc.BuildPaymentURL(inv, c.ClientIP())
		if payErr != nil {
			log.Printf("warning: failed to build payment url for %s: %v", inv.BookingCode, payErr)
		} else {
			resp["paymentUrl"] = payURL
		}
	}

	c.JSON(http.StatusCreated, gin.H{"status": "success", "data": resp})
}

func (ctrl *BookingController) GetBookings(c *gin.Context) {
	invoices, err := ctrl.InvoiceSvc.List()
	if err != nil {
		log.Printf("GetBookings error: %v", err)
		utils.JSONError(c, http.StatusInternalServerError, "error.fetchBookings", "failed to fetch bookings")
		return
	}
	c.JSON(http.StatusOK, invoices)
}

// GetBooking looks an invoice up by its external booking code, falling back
// to the numeric id for staff screens.
func (ctrl *BookingController) GetBooking(c *gin.Context) {
	ref := strings.TrimSpace(c.Param("id"))
	if ref == "" {
		utils.JSONError(c, http.StatusBadRequest, "error.missingBookingCode", "booking code is required")
		return
	}

	var (
		inv *models.Invoice
		err error
	)
	if utils.IsValidBookingCode(ref) {
		inv, err = ctrl.InvoiceSvc.GetByCode(ref)
	} else if id, perr := strconv.ParseUint(ref, 10, 64); perr == nil {
		inv, err = ctrl.InvoiceSvc.GetByID(uint(id))
	} else {
		utils.JSONError(c, http.StatusBadRequest, "error.invalidBookingCode", "booking reference must be FS-<digits> or a numeric id")
		return
	}
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, inv)
}

// UpdateStatus is the staff status override.
func (ctrl *BookingController) UpdateStatus(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	var payload UpdateStatusPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		utils.JSONErrorDetails(c, http.StatusBadRequest, "error.invalidPayload", "status is required", err.Error())
		return
	}

	inv, err := ctrl.InvoiceSvc.UpdateStatus(id, payload.Status)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, inv)
}

// UpdateRoomStatus updates one room line; the ledger status is re-derived.
func (ctrl *BookingController) UpdateRoomStatus(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	lineID, ok := parseUintParam(c, "lineId")
	if !ok {
		return
	}
	var payload UpdateStatusPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		utils.JSONErrorDetails(c, http.StatusBadRequest, "error.invalidPayload", "status is required", err.Error())
		return
	}

	inv, err := ctrl.InvoiceSvc.UpdateRoomStatus(id, lineID, payload.Status)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, inv)
}

func (ctrl *BookingController) RescheduleRoom(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	lineID, ok := parseUintParam(c, "lineId")
	if !ok {
		return
	}
	var payload RescheduleRoomPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		utils.JSONErrorDetails(c, http.StatusBadRequest, "error.invalidPayload", "check_in and check_out are required", err.Error())
		return
	}

	inv, err := ctrl.InvoiceSvc.RescheduleRoom(id, lineID, payload.CheckIn, payload.CheckOut)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, inv)
}

func (ctrl *BookingController) AddServices(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	var payload AddServicesPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		utils.JSONErrorDetails(c, http.StatusBadRequest, "error.invalidPayload", "services are required", err.Error())
		return
	}

	inv, err := ctrl.InvoiceSvc.AddServices(id, payload.Services)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, inv)
}

func (ctrl *BookingController) RemoveService(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	lineID, ok := parseUintParam(c, "lineId")
	if !ok {
		return
	}

	inv, err := ctrl.InvoiceSvc.RemoveService(id, lineID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, inv)
}

func (ctrl *BookingController) RescheduleService(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	lineID, ok := parseUintParam(c, "lineId")
	if !ok {
		return
	}
	var payload RescheduleServicePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		utils.JSONErrorDetails(c, http.StatusBadRequest, "error.invalidPayload", "dates are required", err.Error())
		return
	}

	inv, err := ctrl.InvoiceSvc.RescheduleServiceDates(id, lineID, payload.Dates)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, inv)
}
