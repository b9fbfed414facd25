// internal/infrastructure/upstream/client_test.go
package upstream

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ahmedelshkhwy/pharmacy-cart/internal/config"
	"github.com/Ahmedelshkhwy/pharmacy-cart/internal/pkg/apperrors"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := &config.Config{}
	cfg.Upstream.BaseURL = server.URL
	cfg.Upstream.Timeout = 2 * time.Second

	return NewClient(cfg, nil), server
}

func TestClientFetchCart(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/cart", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"items":[{"productId":"p1","quantity":2,"product":{"name":"Panadol","price":15.5,"stock":8}}]}`))
	}))

	lines, err := client.FetchCart(context.Background(), "tok")

	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, "p1", lines[0].ProductID)
	assert.Equal(t, int64(1550), lines[0].UnitPrice)
	assert.Equal(t, 2, lines[0].Quantity)
}

func TestClientAddItemValidationRejection(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"message":"insufficient stock"}`))
	}))

	_, err := client.AddItem(context.Background(), "tok", "p1", 99)

	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
	assert.Equal(t, "insufficient stock", err.Error())
}

func TestClientServerErrorIsTransport(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))

	_, err := client.FetchCart(context.Background(), "tok")

	require.Error(t, err)
	assert.True(t, apperrors.IsTransport(err))
}

func TestClientUnreachableIsTransport(t *testing.T) {
	cfg := &config.Config{}
	cfg.Upstream.BaseURL = "http://127.0.0.1:1"
	cfg.Upstream.Timeout = 500 * time.Millisecond
	client := NewClient(cfg, nil)

	_, err := client.FetchCart(context.Background(), "tok")

	require.Error(t, err)
	assert.True(t, apperrors.IsTransport(err))
}

func TestClientGarbledBodyIsTransport(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"items": [truncated`))
	}))

	_, err := client.FetchCart(context.Background(), "tok")

	require.Error(t, err)
	assert.True(t, apperrors.IsTransport(err))
}

func TestClientValidationMessageFallbacks(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"message field", `{"message":"bad quantity"}`, "bad quantity"},
		{"error field", `{"error":"out of stock"}`, "out of stock"},
		{"unparseable body", `nope`, "request rejected by backend (status 422)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnprocessableEntity)
				w.Write([]byte(tt.body))
			}))

			_, err := client.UpdateItem(context.Background(), "tok", "p1", 2)

			require.Error(t, err)
			assert.True(t, apperrors.IsValidation(err))
			assert.Equal(t, tt.want, err.Error())
		})
	}
}

func TestClientRemoveItemNoContent(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/cart/p1", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	}))

	assert.NoError(t, client.RemoveItem(context.Background(), "tok", "p1"))
}

func TestClientListProducts(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/products", r.URL.Path)
		w.Write([]byte(`[{"_id":"p1","name":"Panadol","price":24.75,"category":"c1","stock":5}]`))
	}))

	products, err := client.ListProducts(context.Background())

	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, int64(2475), products[0].Price)
	assert.Equal(t, "c1", products[0].CategoryID)
}
