// internal/interfaces/http/handlers/checkout.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Ahmedelshkhwy/pharmacy-cart/internal/domain/checkout"
	"github.com/Ahmedelshkhwy/pharmacy-cart/internal/interfaces/http/middleware"
)

// CheckoutHandler handles checkout and order history endpoints
type CheckoutHandler struct {
	service *checkout.Service
}

// NewCheckoutHandler creates a new checkout handler
func NewCheckoutHandler(service *checkout.Service) *CheckoutHandler {
	return &CheckoutHandler{
		service: service,
	}
}

// Checkout handles POST /checkout
func (h *CheckoutHandler) Checkout(c *gin.Context) {
	sess := middleware.GetSession(c)

	var req checkout.PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	placed, err := h.service.PlaceOrder(c.Request.Context(), sess, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Order placed successfully",
		"data":    placed,
	})
}

// ListOrders handles GET /orders
func (h *CheckoutHandler) ListOrders(c *gin.Context) {
	sess := middleware.GetSession(c)

	orders, err := h.service.History(c.Request.Context(), sess)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Orders retrieved successfully",
		"data":    orders,
	})
}

// CancelOrder handles PUT /orders/:id/cancel
func (h *CheckoutHandler) CancelOrder(c *gin.Context) {
	sess := middleware.GetSession(c)

	cancelled, err := h.service.Cancel(c.Request.Context(), sess, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Order cancelled successfully",
		"data":    cancelled,
	})
}
