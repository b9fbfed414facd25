// internal/domain/catalog/entity.go
package catalog

// Product represents a storefront product as served by the pharmacy backend.
// The catalog is owned upstream; products are immutable from this service's
// perspective.
type Product struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Price      int64  `json:"price"` // Price in halalas
	CategoryID string `json:"category_id"`
	Stock      int    `json:"stock"`
	IsActive   bool   `json:"is_active"`
}

// Category represents a product category
type Category struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	IsActive bool   `json:"is_active"`
}

// Business methods for Product

func (p *Product) IsInStock() bool {
	return p.Stock > 0
}

// GetFormattedPrice returns the price in SAR
func (p *Product) GetFormattedPrice() float64 {
	return float64(p.Price) / 100
}
