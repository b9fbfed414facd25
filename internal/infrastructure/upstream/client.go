// internal/infrastructure/upstream/client.go
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/Ahmedelshkhwy/pharmacy-cart/internal/config"
	"github.com/Ahmedelshkhwy/pharmacy-cart/internal/domain/cart"
	"github.com/Ahmedelshkhwy/pharmacy-cart/internal/domain/catalog"
	"github.com/Ahmedelshkhwy/pharmacy-cart/internal/domain/discount"
	"github.com/Ahmedelshkhwy/pharmacy-cart/internal/pkg/apperrors"
)

// maxResponseBytes bounds how much of an upstream response we will read
const maxResponseBytes = 4 << 20

// Client is the typed REST client for the pharmacy backend. Responses with a
// 4xx status become ValidationErrors carrying the backend's message; network
// failures and 5xx statuses become TransportErrors. Timeout policy lives in
// the underlying http.Client and per-request contexts.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *logrus.Logger
}

// NewClient creates a new backend client
func NewClient(cfg *config.Config, log *logrus.Logger) *Client {
	if log == nil {
		log = logrus.New()
	}
	return &Client{
		baseURL: cfg.Upstream.BaseURL,
		httpClient: &http.Client{
			Timeout: cfg.Upstream.Timeout,
		},
		log: log,
	}
}

// FetchCart retrieves the authoritative cart for the session
func (c *Client) FetchCart(ctx context.Context, token string) ([]cart.Line, error) {
	var resp cartResponse
	if err := c.do(ctx, http.MethodGet, "/cart", token, nil, &resp); err != nil {
		return nil, err
	}
	return resp.toLines(), nil
}

// AddItem adds a product to the backend cart and returns the refreshed cart
func (c *Client) AddItem(ctx context.Context, token, productID string, quantity int) ([]cart.Line, error) {
	body := map[string]interface{}{
		"productId": productID,
		"quantity":  quantity,
	}
	var resp cartResponse
	if err := c.do(ctx, http.MethodPost, "/cart", token, body, &resp); err != nil {
		return nil, err
	}
	return resp.toLines(), nil
}

// UpdateItem updates a cart line's quantity and returns the refreshed cart
func (c *Client) UpdateItem(ctx context.Context, token, productID string, quantity int) ([]cart.Line, error) {
	body := map[string]interface{}{
		"quantity": quantity,
	}
	var resp cartResponse
	if err := c.do(ctx, http.MethodPut, "/cart/"+productID, token, body, &resp); err != nil {
		return nil, err
	}
	return resp.toLines(), nil
}

// RemoveItem removes a product from the backend cart
func (c *Client) RemoveItem(ctx context.Context, token, productID string) error {
	return c.do(ctx, http.MethodDelete, "/cart/"+productID, token, nil, nil)
}

// ListProducts retrieves the full product collection
func (c *Client) ListProducts(ctx context.Context) ([]catalog.Product, error) {
	var docs []productDoc
	if err := c.do(ctx, http.MethodGet, "/products", "", nil, &docs); err != nil {
		return nil, err
	}

	products := make([]catalog.Product, len(docs))
	for i := range docs {
		products[i] = docs[i].toDomain()
	}
	return products, nil
}

// ListDiscounts retrieves the full discount collection. Time/active filtering
// happens locally in the discount catalog, not here.
func (c *Client) ListDiscounts(ctx context.Context) ([]discount.Discount, error) {
	var docs []discountDoc
	if err := c.do(ctx, http.MethodGet, "/discounts", "", nil, &docs); err != nil {
		return nil, err
	}

	discounts := make([]discount.Discount, len(docs))
	for i := range docs {
		discounts[i] = docs[i].toDomain()
	}
	return discounts, nil
}

// Health probes the backend with a lightweight catalog request
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/products", "", nil, nil)
}

// do executes one backend request and classifies the failure modes
func (c *Client) do(ctx context.Context, method, path, token string, body, out interface{}) error {
	op := fmt.Sprintf("%s %s", method, path)

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &apperrors.TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return &apperrors.TransportError{Op: op, Err: err}
	}

	switch {
	case resp.StatusCode >= http.StatusInternalServerError:
		return &apperrors.TransportError{
			Op:  op,
			Err: fmt.Errorf("backend returned status %d", resp.StatusCode),
		}
	case resp.StatusCode >= http.StatusBadRequest:
		return apperrors.NewValidation(validationMessage(data, resp.StatusCode))
	}

	if out == nil || len(data) == 0 {
		return nil
	}

	if err := json.Unmarshal(data, out); err != nil {
		// Treat a garbled body like a connectivity problem: callers keep
		// their optimistic state instead of rolling back.
		return &apperrors.TransportError{Op: op, Err: fmt.Errorf("failed to decode response: %w", err)}
	}

	return nil
}

// validationMessage pulls the human-readable message out of a 4xx body
func validationMessage(data []byte, status int) string {
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(data, &body); err == nil {
		if body.Message != "" {
			return body.Message
		}
		if body.Error != "" {
			return body.Error
		}
	}
	return fmt.Sprintf("request rejected by backend (status %d)", status)
}
