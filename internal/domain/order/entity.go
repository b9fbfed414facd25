// internal/domain/order/entity.go
package order

import (
	"fmt"
	"time"
)

// Status represents the order status
type Status string

const (
	StatusPending        Status = "pending"
	StatusConfirmed      Status = "confirmed"
	StatusProcessing     Status = "processing"
	StatusShipped        Status = "shipped"
	StatusOutForDelivery Status = "out_for_delivery"
	StatusDelivered      Status = "delivered"
	StatusCancelled      Status = "cancelled"
)

// PaymentMethod represents how the customer chose to pay
type PaymentMethod string

const (
	PaymentCashOnDelivery PaymentMethod = "cash_on_delivery"
	PaymentCard           PaymentMethod = "card"
	PaymentSTCPay         PaymentMethod = "stcpay"
)

// Order is the terminal checkout artifact: a snapshot of cart lines with
// locked unit prices and the totals computed at placement time. Orders are
// immutable apart from status transitions.
type Order struct {
	ID          string `json:"id"`
	OrderNumber string `json:"order_number"`
	UserID      string `json:"user_id,omitempty"`

	Items []Item `json:"items"`

	// Financial information, in halalas
	Subtotal      int64  `json:"subtotal"`
	DiscountTotal int64  `json:"discount_total"`
	Total         int64  `json:"total"`
	Currency      string `json:"currency"`

	PaymentMethod   PaymentMethod `json:"payment_method"`
	ShippingAddress Address       `json:"shipping_address"`

	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	StatusHistory []StatusChange `json:"status_history,omitempty"`
}

// Item is an order line with its price locked at placement time
type Item struct {
	ProductID      string `json:"product_id"`
	Name           string `json:"name"`
	Quantity       int    `json:"quantity"`
	UnitPrice      int64  `json:"unit_price"`  // Original price per unit in halalas
	FinalPrice     int64  `json:"final_price"` // Discounted price per unit
	DiscountAmount int64  `json:"discount_amount"`
	DiscountName   string `json:"discount_name,omitempty"`
	TotalPrice     int64  `json:"total_price"` // Quantity * FinalPrice
}

// StatusChange tracks order status transitions
type StatusChange struct {
	Status    Status    `json:"status"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Address represents a shipping address
type Address struct {
	Name       string `json:"name"`
	Phone      string `json:"phone"`
	City       string `json:"city"`
	District   string `json:"district,omitempty"`
	Street     string `json:"street"`
	PostalCode string `json:"postal_code,omitempty"`
}

// Business methods for Order

// GenerateOrderNumber generates an order number of the form ORD-YYYYMMDD-XXXXX
func GenerateOrderNumber(now time.Time, seq int64) string {
	return fmt.Sprintf("ORD-%s-%05d", now.Format("20060102"), seq%100000)
}

// GetFormattedTotal returns total amount in SAR
func (o *Order) GetFormattedTotal() float64 {
	return float64(o.Total) / 100
}

// TotalQuantity returns the sum of all item quantities
func (o *Order) TotalQuantity() int {
	total := 0
	for _, item := range o.Items {
		total += item.Quantity
	}
	return total
}

// CanBeCancelled checks if the order can still be cancelled
func (o *Order) CanBeCancelled() bool {
	return o.Status == StatusPending || o.Status == StatusConfirmed
}

// IsCompleted checks if the order reached a terminal delivered state
func (o *Order) IsCompleted() bool {
	return o.Status == StatusDelivered
}

// Transition moves the order to a new status and records the change
func (o *Order) Transition(status Status, comment string, at time.Time) {
	o.Status = status
	o.UpdatedAt = at
	o.StatusHistory = append(o.StatusHistory, StatusChange{
		Status:    status,
		Comment:   comment,
		CreatedAt: at,
	})
}
