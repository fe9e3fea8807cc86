// controllers/cart_controller.go
package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"resort-backend/services"
	"resort-backend/utils"
)

// Carts are scoped by an opaque session id the frontend keeps in a cookie
// or local storage and sends on every cart call.
const cartSessionHeader = "X-Cart-Session"

type CartController struct {
	CartSvc *services.CartService
}

func NewCartController(cartSvc *services.CartService) *CartController {
	return &CartController{CartSvc: cartSvc}
}

func cartSession(c *gin.Context) (string, bool) {
	sid := strings.TrimSpace(c.GetHeader(cartSessionHeader))
	if sid == "" {
		sid = strings.TrimSpace(c.Query("session"))
	}
	if sid == "" {
		utils.JSONError(c, http.StatusBadRequest, "error.missingCartSession", "missing "+cartSessionHeader+" header")
		return "", false
	}
	return sid, true
}

// GetCart returns the session's cart; a fresh session reads as empty.
func (ctrl *CartController) GetCart(c *gin.Context) {
	sid, ok := cartSession(c)
	if !ok {
		return
	}
	utils.JSONSuccess(c, http.StatusOK, ctrl.CartSvc.Get(sid))
}

func (ctrl *CartController) AddItem(c *gin.Context) {
	sid, ok := cartSession(c)
	if !ok {
		return
	}

	var payload services.CartItemRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		utils.JSONErrorDetails(c, http.StatusBadRequest, "error.invalidPayload", "invalid cart item", err.Error())
		return
	}

	cart, err := ctrl.CartSvc.AddItem(sid, payload)
	if err != nil {
		if errors.Is(err, services.ErrValidation) || errors.Is(err, services.ErrInvalidDates) {
			utils.JSONError(c, http.StatusBadRequest, "error.validation", err.Error())
			return
		}
		utils.JSONError(c, http.StatusInternalServerError, "error.internal", "internal error")
		return
	}
	utils.JSONSuccess(c, http.StatusOK, cart)
}

// RemoveItem removes a line; unknown ids are a silent no-op.
func (ctrl *CartController) RemoveItem(c *gin.Context) {
	sid, ok := cartSession(c)
	if !ok {
		return
	}
	utils.JSONSuccess(c, http.StatusOK, ctrl.CartSvc.RemoveItem(sid, c.Param("id")))
}

func (ctrl *CartController) ClearCart(c *gin.Context) {
	sid, ok := cartSession(c)
	if !ok {
		return
	}
	ctrl.CartSvc.Clear(sid)
	utils.JSONSuccess(c, http.StatusOK, gin.H{"cleared": true})
}
