// internal/domain/discount/entity.go
package discount

import (
	"time"

	"github.com/Ahmedelshkhwy/pharmacy-cart/internal/domain/catalog"
)

// Kind represents the discount kind
type Kind string

const (
	KindPercentage Kind = "percentage"
	KindFixed      Kind = "fixed"
)

// Discount represents a promotion as served by the pharmacy backend.
//
// Value is interpreted by Kind: for percentage discounts it is a whole
// percent (0 < v <= 100), for fixed discounts it is an amount in halalas.
type Discount struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Code           string    `json:"code,omitempty"` // Unique when present
	Kind           Kind      `json:"kind"`
	Value          int64     `json:"value"`
	MinOrderAmount *int64    `json:"min_order_amount,omitempty"` // In halalas
	MaxDiscount    *int64    `json:"max_discount,omitempty"`     // Percentage kind only, in halalas
	StartsAt       time.Time `json:"starts_at"`
	EndsAt         time.Time `json:"ends_at"`
	IsActive       bool      `json:"is_active"`
	ProductIDs     []string  `json:"product_ids,omitempty"`
	CategoryIDs    []string  `json:"category_ids,omitempty"`
}

// Business methods for Discount

// IsGlobal reports whether the discount applies to every product. A discount
// with neither product nor category scoping is storefront-wide.
func (d *Discount) IsGlobal() bool {
	return len(d.ProductIDs) == 0 && len(d.CategoryIDs) == 0
}

// ValidAt reports whether the discount is active and inside its validity
// window. Both bounds are inclusive: a discount stays valid through the full
// instant of EndsAt.
func (d *Discount) ValidAt(now time.Time) bool {
	if !d.IsActive {
		return false
	}
	return !now.Before(d.StartsAt) && !now.After(d.EndsAt)
}

// AppliesTo reports whether the discount covers the given product.
// Scope precedence: an explicit product list wins over a category list,
// which wins over global applicability.
func (d *Discount) AppliesTo(p *catalog.Product) bool {
	if len(d.ProductIDs) > 0 {
		return containsID(d.ProductIDs, p.ID)
	}
	if len(d.CategoryIDs) > 0 {
		return containsID(d.CategoryIDs, p.CategoryID)
	}
	return true
}

func containsID(ids []string, id string) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}
