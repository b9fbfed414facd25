// internal/domain/checkout/service.go
package checkout

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Ahmedelshkhwy/pharmacy-cart/internal/domain/cart"
	"github.com/Ahmedelshkhwy/pharmacy-cart/internal/domain/catalog"
	"github.com/Ahmedelshkhwy/pharmacy-cart/internal/domain/discount"
	"github.com/Ahmedelshkhwy/pharmacy-cart/internal/domain/order"
	"github.com/Ahmedelshkhwy/pharmacy-cart/internal/domain/pricing"
	"github.com/Ahmedelshkhwy/pharmacy-cart/internal/pkg/apperrors"
	"github.com/Ahmedelshkhwy/pharmacy-cart/internal/pkg/auth"
)

// CatalogSource serves the upstream product and discount collections
type CatalogSource interface {
	ListProducts(ctx context.Context) ([]catalog.Product, error)
	ListDiscounts(ctx context.Context) ([]discount.Discount, error)
}

// HistoryStore persists one serialized order-history list per session as an
// opaque blob, fully overwritten on each save.
type HistoryStore interface {
	SaveHistory(ctx context.Context, key string, orders []order.Order) error
	LoadHistory(ctx context.Context, key string) ([]order.Order, error)
}

// PlaceOrderRequest represents a checkout request
type PlaceOrderRequest struct {
	PaymentMethod   order.PaymentMethod `json:"payment_method" binding:"required"`
	ShippingAddress order.Address       `json:"shipping_address" binding:"required"`
}

// Service turns the current cart into an order snapshot with locked prices.
// Pricing uses the discounts valid at placement time; totals are computed
// per line from the best applicable discount.
type Service struct {
	carts     *cart.Coordinator
	engine    *pricing.Engine
	discounts *discount.Catalog
	source    CatalogSource
	history   HistoryStore
	log       *logrus.Logger

	now func() time.Time
	seq atomic.Int64
}

// NewService creates a new checkout service
func NewService(carts *cart.Coordinator, engine *pricing.Engine, discounts *discount.Catalog, source CatalogSource, history HistoryStore, log *logrus.Logger) *Service {
	if log == nil {
		log = logrus.New()
	}
	s := &Service{
		carts:     carts,
		engine:    engine,
		discounts: discounts,
		source:    source,
		history:   history,
		log:       log,
		now:       func() time.Time { return time.Now().UTC() },
	}
	s.seq.Store(time.Now().UnixNano() % 100000)
	return s
}

// PlaceOrder snapshots the session's cart into an order with locked prices,
// appends it to the session's order history and clears the cart. The cart
// backend is told best-effort; the order itself is the terminal artifact.
func (s *Service) PlaceOrder(ctx context.Context, sess auth.Session, req *PlaceOrderRequest) (*order.Order, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	lines := s.carts.Lines(ctx, sess)
	if len(lines) == 0 {
		return nil, apperrors.NewValidation("cart is empty")
	}

	now := s.now()
	valid := s.validDiscounts(ctx, now)
	products := s.productIndex(ctx)

	items := make([]order.Item, 0, len(lines))
	var subtotal, discountTotal int64

	for _, line := range lines {
		// Price against the snapshot the customer saw, with live category
		// scoping when the catalog is reachable.
		product := catalog.Product{
			ID:       line.ProductID,
			Name:     line.Name,
			Price:    line.UnitPrice,
			IsActive: true,
		}
		if live, ok := products[line.ProductID]; ok {
			product.CategoryID = live.CategoryID
		}

		priced := s.engine.PriceFor(&product, valid)

		item := order.Item{
			ProductID:      line.ProductID,
			Name:           line.Name,
			Quantity:       line.Quantity,
			UnitPrice:      priced.OriginalPrice,
			FinalPrice:     priced.FinalPrice,
			DiscountAmount: priced.DiscountAmount,
			TotalPrice:     priced.FinalPrice * int64(line.Quantity),
		}
		if priced.Applied != nil {
			item.DiscountName = priced.Applied.Name
		}

		items = append(items, item)
		subtotal += priced.OriginalPrice * int64(line.Quantity)
		discountTotal += priced.DiscountAmount * int64(line.Quantity)
	}

	placed := &order.Order{
		ID:              uuid.New().String(),
		OrderNumber:     order.GenerateOrderNumber(now, s.seq.Add(1)),
		UserID:          sess.UserID,
		Items:           items,
		Subtotal:        subtotal,
		DiscountTotal:   discountTotal,
		Total:           subtotal - discountTotal,
		Currency:        "SAR",
		PaymentMethod:   req.PaymentMethod,
		ShippingAddress: req.ShippingAddress,
		Status:          order.StatusPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	placed.StatusHistory = []order.StatusChange{{Status: order.StatusPending, CreatedAt: now}}

	if err := s.appendHistory(ctx, sess, placed); err != nil {
		return nil, err
	}

	s.carts.Clear(ctx, sess)

	s.log.WithFields(logrus.Fields{
		"order_number": placed.OrderNumber,
		"items":        len(placed.Items),
		"total":        placed.Total,
	}).Info("order placed")

	return placed, nil
}

// History returns the session's order history, newest first
func (s *Service) History(ctx context.Context, sess auth.Session) ([]order.Order, error) {
	orders, err := s.history.LoadHistory(ctx, sess.CacheKey())
	if err != nil {
		return nil, fmt.Errorf("failed to load order history: %w", err)
	}
	return orders, nil
}

// Cancel cancels an order in the session's history when its status allows it
func (s *Service) Cancel(ctx context.Context, sess auth.Session, orderID string) (*order.Order, error) {
	orders, err := s.history.LoadHistory(ctx, sess.CacheKey())
	if err != nil {
		return nil, fmt.Errorf("failed to load order history: %w", err)
	}

	for i := range orders {
		if orders[i].ID != orderID && orders[i].OrderNumber != orderID {
			continue
		}
		if !orders[i].CanBeCancelled() {
			return nil, apperrors.NewValidation(
				fmt.Sprintf("order %s can no longer be cancelled", orders[i].OrderNumber))
		}
		orders[i].Transition(order.StatusCancelled, "cancelled by customer", s.now())

		if err := s.history.SaveHistory(ctx, sess.CacheKey(), orders); err != nil {
			return nil, fmt.Errorf("failed to save order history: %w", err)
		}
		cancelled := orders[i]
		return &cancelled, nil
	}

	return nil, apperrors.NewValidation("order not found")
}

// validDiscounts refreshes the catalog from the backend when reachable and
// returns the discounts valid at now. A transport failure falls back to the
// cached collection.
func (s *Service) validDiscounts(ctx context.Context, now time.Time) []discount.Discount {
	if list, err := s.source.ListDiscounts(ctx); err == nil {
		s.discounts.Replace(list)
	} else {
		s.log.WithError(err).Warn("discount refresh failed, using cached catalog")
	}
	return s.discounts.ValidAt(now)
}

// productIndex fetches the live catalog for category scoping. An empty index
// just means discounts fall back to product-level and global scoping.
func (s *Service) productIndex(ctx context.Context) map[string]catalog.Product {
	products, err := s.source.ListProducts(ctx)
	if err != nil {
		s.log.WithError(err).Warn("product listing failed, pricing from cart snapshots only")
		return nil
	}

	index := make(map[string]catalog.Product, len(products))
	for _, p := range products {
		index[p.ID] = p
	}
	return index
}

func (s *Service) appendHistory(ctx context.Context, sess auth.Session, placed *order.Order) error {
	key := sess.CacheKey()

	orders, err := s.history.LoadHistory(ctx, key)
	if err != nil {
		return fmt.Errorf("failed to load order history: %w", err)
	}

	orders = append([]order.Order{*placed}, orders...)
	if err := s.history.SaveHistory(ctx, key, orders); err != nil {
		return fmt.Errorf("failed to save order history: %w", err)
	}
	return nil
}

func validateRequest(req *PlaceOrderRequest) error {
	switch req.PaymentMethod {
	case order.PaymentCashOnDelivery, order.PaymentCard, order.PaymentSTCPay:
	default:
		return apperrors.NewValidation(fmt.Sprintf("unsupported payment method: %s", req.PaymentMethod))
	}

	addr := req.ShippingAddress
	if addr.Name == "" || addr.Phone == "" || addr.City == "" || addr.Street == "" {
		return apperrors.NewValidation("shipping address requires name, phone, city and street")
	}
	return nil
}
