// internal/interfaces/http/handlers/product.go
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Ahmedelshkhwy/pharmacy-cart/internal/domain/checkout"
	"github.com/Ahmedelshkhwy/pharmacy-cart/internal/domain/discount"
	"github.com/Ahmedelshkhwy/pharmacy-cart/internal/domain/pricing"
)

// ProductHandler handles priced product listing endpoints
type ProductHandler struct {
	source    checkout.CatalogSource
	discounts *discount.Catalog
	engine    *pricing.Engine
}

// NewProductHandler creates a new product handler
func NewProductHandler(source checkout.CatalogSource, discounts *discount.Catalog, engine *pricing.Engine) *ProductHandler {
	return &ProductHandler{
		source:    source,
		discounts: discounts,
		engine:    engine,
	}
}

// GetProducts handles GET /products - the catalog annotated with each
// product's best applicable promotion
func (h *ProductHandler) GetProducts(c *gin.Context) {
	ctx := c.Request.Context()

	products, err := h.source.ListProducts(ctx)
	if err != nil {
		respondError(c, err)
		return
	}

	priced := h.engine.PriceAll(products, h.refreshDiscounts(c))

	c.JSON(http.StatusOK, gin.H{
		"message": "Products retrieved successfully",
		"data":    priced,
	})
}

// GetProduct handles GET /products/:id
func (h *ProductHandler) GetProduct(c *gin.Context) {
	ctx := c.Request.Context()
	productID := c.Param("id")

	products, err := h.source.ListProducts(ctx)
	if err != nil {
		respondError(c, err)
		return
	}

	valid := h.refreshDiscounts(c)
	for i := range products {
		if products[i].ID != productID {
			continue
		}
		c.JSON(http.StatusOK, gin.H{
			"message": "Product retrieved successfully",
			"data":    h.engine.PriceFor(&products[i], valid),
		})
		return
	}

	c.JSON(http.StatusNotFound, gin.H{
		"error": "Product not found",
	})
}

// GetDiscounts handles GET /discounts - the promotions valid right now
func (h *ProductHandler) GetDiscounts(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Discounts retrieved successfully",
		"data":    h.refreshDiscounts(c),
	})
}

// refreshDiscounts pulls the discount collection from the backend when
// reachable, falling back to the cached catalog, and returns the discounts
// valid at this instant.
func (h *ProductHandler) refreshDiscounts(c *gin.Context) []discount.Discount {
	if list, err := h.source.ListDiscounts(c.Request.Context()); err == nil {
		h.discounts.Replace(list)
	}
	return h.discounts.ValidAt(time.Now().UTC())
}
