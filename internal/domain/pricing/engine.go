// internal/domain/pricing/engine.go
package pricing

import (
	"math"

	"github.com/Ahmedelshkhwy/pharmacy-cart/internal/domain/catalog"
	"github.com/Ahmedelshkhwy/pharmacy-cart/internal/domain/discount"
)

// AppliedDiscount records the winning discount on a priced product
type AppliedDiscount struct {
	ID    string        `json:"id"`
	Name  string        `json:"name"`
	Kind  discount.Kind `json:"kind"`
	Value int64         `json:"value"`
}

// PricedProduct is a product annotated with its best discounted price.
// All amounts are in halalas.
type PricedProduct struct {
	Product         catalog.Product  `json:"product"`
	OriginalPrice   int64            `json:"original_price"`
	FinalPrice      int64            `json:"final_price"`
	DiscountAmount  int64            `json:"discount_amount"`
	DiscountPercent int              `json:"discount_percent"`
	Applied         *AppliedDiscount `json:"applied_discount,omitempty"`
}

// Engine computes the single best discounted price for a product given a set
// of candidate discounts. It is pure and deterministic: the same product and
// the same discount ordering always produce the same result.
type Engine struct{}

// NewEngine creates a new pricing engine
func NewEngine() *Engine {
	return &Engine{}
}

// PriceFor annotates a product with the best applicable discount.
//
// Among all applicable discounts the one with the strictly largest discount
// amount wins; ties keep the first encountered in input order. A discount
// whose minimum order amount exceeds the product price is skipped. The result
// always satisfies 0 <= FinalPrice <= OriginalPrice.
func (e *Engine) PriceFor(p *catalog.Product, discounts []discount.Discount) PricedProduct {
	priced := PricedProduct{
		Product:       *p,
		OriginalPrice: p.Price,
		FinalPrice:    p.Price,
	}

	var winner *discount.Discount
	var winnerAmount int64

	for i := range discounts {
		d := &discounts[i]

		if !d.AppliesTo(p) {
			continue
		}

		// Minimum order amount is evaluated against the single product's
		// price here, not a cart total.
		if d.MinOrderAmount != nil && *d.MinOrderAmount > p.Price {
			continue
		}

		amount := e.amountFor(p, d)
		if amount > winnerAmount {
			winner = d
			winnerAmount = amount
		}
	}

	if winner == nil || winnerAmount <= 0 {
		return priced
	}

	priced.DiscountAmount = winnerAmount
	priced.FinalPrice = p.Price - winnerAmount
	priced.DiscountPercent = int(math.Round(float64(winnerAmount) / float64(p.Price) * 100))
	priced.Applied = &AppliedDiscount{
		ID:    winner.ID,
		Name:  winner.Name,
		Kind:  winner.Kind,
		Value: winner.Value,
	}

	return priced
}

// PriceAll annotates every product against the same discount set
func (e *Engine) PriceAll(products []catalog.Product, discounts []discount.Discount) []PricedProduct {
	priced := make([]PricedProduct, len(products))
	for i := range products {
		priced[i] = e.PriceFor(&products[i], discounts)
	}
	return priced
}

// amountFor computes the candidate discount amount for a single discount.
// A percentage amount is clamped to the discount's MaxDiscount when present;
// a fixed amount may never exceed the item price.
func (e *Engine) amountFor(p *catalog.Product, d *discount.Discount) int64 {
	switch d.Kind {
	case discount.KindPercentage:
		amount := p.Price * d.Value / 100
		if d.MaxDiscount != nil && amount > *d.MaxDiscount {
			amount = *d.MaxDiscount
		}
		return amount
	case discount.KindFixed:
		if d.Value > p.Price {
			return p.Price
		}
		return d.Value
	default:
		return 0
	}
}
