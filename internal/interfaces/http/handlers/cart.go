// internal/interfaces/http/handlers/cart.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Ahmedelshkhwy/pharmacy-cart/internal/domain/cart"
	"github.com/Ahmedelshkhwy/pharmacy-cart/internal/interfaces/http/middleware"
	"github.com/Ahmedelshkhwy/pharmacy-cart/internal/pkg/auth"
)

// CartHandler handles cart endpoints
type CartHandler struct {
	carts *cart.Coordinator
}

// NewCartHandler creates a new cart handler
func NewCartHandler(carts *cart.Coordinator) *CartHandler {
	return &CartHandler{
		carts: carts,
	}
}

// AddToCartRequest represents add to cart request. Name, unit price and stock
// are display snapshots from the product screen; for authenticated sessions
// the backend's own product data wins on reconcile.
type AddToCartRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,min=1"`
	Name      string `json:"name"`
	UnitPrice int64  `json:"unit_price"`
	Stock     *int   `json:"stock"`
}

// UpdateCartItemRequest represents update cart item request
type UpdateCartItemRequest struct {
	Quantity int `json:"quantity" binding:"min=0"`
}

// cartPayload is the cart representation returned to the UI
type cartPayload struct {
	Items         []cart.Line `json:"items"`
	TotalQuantity int         `json:"total_quantity"`
	Subtotal      int64       `json:"subtotal"`
	Unsynced      []string    `json:"unsynced,omitempty"`
	SyncStatus    string      `json:"sync_status,omitempty"`
}

// GetCart handles GET /cart
func (h *CartHandler) GetCart(c *gin.Context) {
	sess := middleware.GetSession(c)

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart retrieved successfully",
		"data":    h.payload(c, sess, ""),
	})
}

// AddToCart handles POST /cart/items
func (h *CartHandler) AddToCart(c *gin.Context) {
	sess := middleware.GetSession(c)

	var req AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	result, err := h.carts.Add(c.Request.Context(), sess, cart.Line{
		ProductID: req.ProductID,
		Name:      req.Name,
		UnitPrice: req.UnitPrice,
		Quantity:  req.Quantity,
		Stock:     req.Stock,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Item added to cart successfully",
		"data":    h.payload(c, sess, string(result.Status)),
	})
}

// UpdateCartItem handles PUT /cart/items/:id
func (h *CartHandler) UpdateCartItem(c *gin.Context) {
	sess := middleware.GetSession(c)
	productID := c.Param("id")

	var req UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	result, err := h.carts.SetQuantity(c.Request.Context(), sess, productID, req.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart item updated successfully",
		"data":    h.payload(c, sess, string(result.Status)),
	})
}

// RemoveFromCart handles DELETE /cart/items/:id
func (h *CartHandler) RemoveFromCart(c *gin.Context) {
	sess := middleware.GetSession(c)
	productID := c.Param("id")

	result := h.carts.Remove(c.Request.Context(), sess, productID)

	c.JSON(http.StatusOK, gin.H{
		"message": "Item removed from cart successfully",
		"data":    h.payload(c, sess, string(result.Status)),
	})
}

// ClearCart handles DELETE /cart
func (h *CartHandler) ClearCart(c *gin.Context) {
	sess := middleware.GetSession(c)

	h.carts.Clear(c.Request.Context(), sess)

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart cleared successfully",
	})
}

// RefreshCart handles POST /cart/refresh - pull the authoritative backend
// cart, e.g. on screen focus or pull-to-refresh
func (h *CartHandler) RefreshCart(c *gin.Context) {
	sess := middleware.GetSession(c)

	if err := h.carts.Refresh(c.Request.Context(), sess); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart refreshed successfully",
		"data":    h.payload(c, sess, ""),
	})
}

// GetCartCount handles GET /cart/count
func (h *CartHandler) GetCartCount(c *gin.Context) {
	sess := middleware.GetSession(c)

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart count retrieved successfully",
		"data": gin.H{
			"count": h.carts.Count(c.Request.Context(), sess),
		},
	})
}

func (h *CartHandler) payload(c *gin.Context, sess auth.Session, status string) cartPayload {
	ctx := c.Request.Context()

	return cartPayload{
		Items:         h.carts.Lines(ctx, sess),
		TotalQuantity: h.carts.Count(ctx, sess),
		Subtotal:      h.carts.Subtotal(ctx, sess),
		Unsynced:      h.carts.Unsynced(ctx, sess),
		SyncStatus:    status,
	}
}
