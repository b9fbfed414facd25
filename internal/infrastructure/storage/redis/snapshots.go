// internal/infrastructure/storage/redis/snapshots.go
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Ahmedelshkhwy/pharmacy-cart/internal/domain/cart"
	"github.com/Ahmedelshkhwy/pharmacy-cart/internal/domain/order"
)

// SnapshotStore persists per-session cart and order-history snapshots as
// opaque JSON blobs. Every save overwrites the whole blob; there is no
// incremental patching, the last writer wins.
type SnapshotStore struct {
	redis *redis.Client
	ttl   time.Duration
}

// NewSnapshotStore creates a snapshot store on top of a Redis client
func NewSnapshotStore(client *redis.Client, ttl time.Duration) *SnapshotStore {
	return &SnapshotStore{
		redis: client,
		ttl:   ttl,
	}
}

// SaveCart stores the cart snapshot for a session key
func (s *SnapshotStore) SaveCart(ctx context.Context, key string, lines []cart.Line) error {
	data, err := json.Marshal(lines)
	if err != nil {
		return fmt.Errorf("failed to encode cart snapshot: %w", err)
	}
	return s.redis.Set(ctx, cartKey(key), data, s.ttl).Err()
}

// LoadCart retrieves the cart snapshot for a session key. A missing snapshot
// is an empty cart, not an error.
func (s *SnapshotStore) LoadCart(ctx context.Context, key string) ([]cart.Line, error) {
	data, err := s.redis.Get(ctx, cartKey(key)).Result()
	if err == redis.Nil {
		return nil, nil
	} else if err != nil {
		return nil, err
	}

	var lines []cart.Line
	if err := json.Unmarshal([]byte(data), &lines); err != nil {
		return nil, fmt.Errorf("failed to decode cart snapshot: %w", err)
	}
	return lines, nil
}

// DeleteCart removes the cart snapshot for a session key
func (s *SnapshotStore) DeleteCart(ctx context.Context, key string) error {
	return s.redis.Del(ctx, cartKey(key)).Err()
}

// SaveHistory stores the order-history list for a session key
func (s *SnapshotStore) SaveHistory(ctx context.Context, key string, orders []order.Order) error {
	data, err := json.Marshal(orders)
	if err != nil {
		return fmt.Errorf("failed to encode order history: %w", err)
	}
	return s.redis.Set(ctx, historyKey(key), data, s.ttl).Err()
}

// LoadHistory retrieves the order-history list for a session key. A missing
// history is an empty list, not an error.
func (s *SnapshotStore) LoadHistory(ctx context.Context, key string) ([]order.Order, error) {
	data, err := s.redis.Get(ctx, historyKey(key)).Result()
	if err == redis.Nil {
		return nil, nil
	} else if err != nil {
		return nil, err
	}

	var orders []order.Order
	if err := json.Unmarshal([]byte(data), &orders); err != nil {
		return nil, fmt.Errorf("failed to decode order history: %w", err)
	}
	return orders, nil
}

func cartKey(key string) string {
	return fmt.Sprintf("cart:snapshot:%s", key)
}

func historyKey(key string) string {
	return fmt.Sprintf("orders:history:%s", key)
}
