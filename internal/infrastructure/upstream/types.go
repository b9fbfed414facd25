// internal/infrastructure/upstream/types.go
package upstream

import (
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/Ahmedelshkhwy/pharmacy-cart/internal/domain/cart"
	"github.com/Ahmedelshkhwy/pharmacy-cart/internal/domain/catalog"
	"github.com/Ahmedelshkhwy/pharmacy-cart/internal/domain/discount"
)

// Ref decodes a backend reference field that arrives either as a bare id
// string or as an embedded document carrying _id. The representation is
// resolved once here, at the ingestion boundary; downstream code only ever
// sees the id.
type Ref string

// UnmarshalJSON implements json.Unmarshaler
func (r *Ref) UnmarshalJSON(data []byte) error {
	if len(data) == 0 || string(data) == "null" {
		*r = ""
		return nil
	}

	if data[0] == '"' {
		var id string
		if err := json.Unmarshal(data, &id); err != nil {
			return err
		}
		*r = Ref(id)
		return nil
	}

	var doc struct {
		ID    string `json:"_id"`
		AltID string `json:"id"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("reference is neither an id nor a document: %w", err)
	}
	if doc.ID != "" {
		*r = Ref(doc.ID)
	} else {
		*r = Ref(doc.AltID)
	}
	return nil
}

func (r Ref) String() string {
	return string(r)
}

// Backend wire shapes. Prices arrive as SAR decimals and are converted to
// halalas at this boundary.

type cartResponse struct {
	Items []cartItem `json:"items"`
}

type cartItem struct {
	ProductID Ref             `json:"productId"`
	Quantity  int             `json:"quantity"`
	Product   embeddedProduct `json:"product"`
}

type embeddedProduct struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
	Stock int     `json:"stock"`
}

type productDoc struct {
	ID       string  `json:"_id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Category Ref     `json:"category"`
	Stock    int     `json:"stock"`
	IsActive *bool   `json:"isActive"`
}

type discountDoc struct {
	ID                   string    `json:"_id"`
	Name                 string    `json:"name"`
	Code                 string    `json:"code"`
	DiscountType         string    `json:"discountType"`
	DiscountValue        float64   `json:"discountValue"`
	MinAmount            *float64  `json:"minAmount"`
	MaxDiscount          *float64  `json:"maxDiscount"`
	StartDate            time.Time `json:"startDate"`
	EndDate              time.Time `json:"endDate"`
	IsActive             bool      `json:"isActive"`
	ApplicableProducts   []Ref     `json:"applicableProducts"`
	ApplicableCategories []Ref     `json:"applicableCategories"`
}

// halalas converts a SAR decimal amount to halalas
func halalas(sar float64) int64 {
	return int64(math.Round(sar * 100))
}

func (c *cartResponse) toLines() []cart.Line {
	lines := make([]cart.Line, 0, len(c.Items))
	for _, item := range c.Items {
		stock := item.Product.Stock
		lines = append(lines, cart.Line{
			ProductID: item.ProductID.String(),
			Name:      item.Product.Name,
			UnitPrice: halalas(item.Product.Price),
			Quantity:  item.Quantity,
			Stock:     &stock,
		})
	}
	return lines
}

func (p *productDoc) toDomain() catalog.Product {
	active := true
	if p.IsActive != nil {
		active = *p.IsActive
	}
	return catalog.Product{
		ID:         p.ID,
		Name:       p.Name,
		Price:      halalas(p.Price),
		CategoryID: p.Category.String(),
		Stock:      p.Stock,
		IsActive:   active,
	}
}

func (d *discountDoc) toDomain() discount.Discount {
	out := discount.Discount{
		ID:       d.ID,
		Name:     d.Name,
		Code:     d.Code,
		StartsAt: d.StartDate,
		EndsAt:   d.EndDate,
		IsActive: d.IsActive,
	}

	switch d.DiscountType {
	case "fixed":
		out.Kind = discount.KindFixed
		out.Value = halalas(d.DiscountValue)
	default:
		out.Kind = discount.KindPercentage
		out.Value = int64(math.Round(d.DiscountValue))
	}

	if d.MinAmount != nil {
		min := halalas(*d.MinAmount)
		out.MinOrderAmount = &min
	}
	if d.MaxDiscount != nil {
		max := halalas(*d.MaxDiscount)
		out.MaxDiscount = &max
	}

	for _, ref := range d.ApplicableProducts {
		if ref != "" {
			out.ProductIDs = append(out.ProductIDs, ref.String())
		}
	}
	for _, ref := range d.ApplicableCategories {
		if ref != "" {
			out.CategoryIDs = append(out.CategoryIDs, ref.String())
		}
	}

	return out
}
