// controllers/payment_controller.go
package controllers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"resort-backend/services"
	"resort-backend/utils"
)

type PaymentController struct {
	PaymentSvc *services.PaymentService
}

func NewPaymentController(paymentSvc *services.PaymentService) *PaymentController {
	return &PaymentController{PaymentSvc: paymentSvc}
}

// Callback is the gateway's browser return. Whatever happens inside
// (signature mismatch, unknown booking, store failure) the customer gets
// a redirect to a result page, never an error body.
func (ctrl *PaymentController) Callback(c *gin.Context) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("panic in payment callback: %v", r)
			c.Redirect(http.StatusFound, ctrl.PaymentSvc.FailureRedirect())
		}
	}()

	target := ctrl.PaymentSvc.HandleCallback(c.Request.URL.Query())
	c.Redirect(http.StatusFound, target)
}

// RegeneratePaymentURL re-issues the signed redirect for an invoice still
// awaiting online payment.
func (ctrl *PaymentController) RegeneratePaymentURL(c *gin.Context) {
	code := c.Param("code")
	payURL, err := ctrl.PaymentSvc.RegeneratePaymentURL(code, c.ClientIP())
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvoiceNotFound):
			utils.JSONError(c, http.StatusNotFound, "error.bookingNotFound", "booking not found")
		case errors.Is(err, services.ErrPaymentState):
			utils.JSONError(c, http.StatusConflict, "error.paymentState", err.Error())
		default:
			log.Printf("RegeneratePaymentURL error for %s: %v", code, err)
			utils.JSONError(c, http.StatusInternalServerError, "error.internal", "internal error")
		}
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"paymentUrl": payURL})
}
