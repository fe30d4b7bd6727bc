package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tomeriko7/finalProject-sub000/internal/domain"
	apperrors "github.com/tomeriko7/finalProject-sub000/pkg/errors"
)

const cartKeyPrefix = "cart:"

// CartRepository implements repository.CartRepository using Redis. The
// whole cart is stored as one JSON value per user; every save rewrites
// it and refreshes the TTL.
type CartRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCartRepository creates a new Redis-backed cart repository.
func NewCartRepository(client *redis.Client, ttl time.Duration) *CartRepository {
	return &CartRepository{client: client, ttl: ttl}
}

func (r *CartRepository) key(userID string) string {
	return cartKeyPrefix + userID
}

// Get retrieves the user's cart.
func (r *CartRepository) Get(ctx context.Context, userID string) (*domain.Cart, error) {
	val, err := r.client.Get(ctx, r.key(userID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("get cart from redis: %w", err)
	}

	var cart domain.Cart
	if err := json.Unmarshal([]byte(val), &cart); err != nil {
		return nil, fmt.Errorf("unmarshal cart: %w", err)
	}

	return &cart, nil
}

// Save persists the full cart and refreshes its TTL.
func (r *CartRepository) Save(ctx context.Context, cart *domain.Cart) error {
	cart.UpdatedAt = time.Now().UTC()

	data, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("marshal cart: %w", err)
	}

	if err := r.client.Set(ctx, r.key(cart.UserID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("save cart to redis: %w", err)
	}

	return nil
}

// Delete removes the user's cart entirely.
func (r *CartRepository) Delete(ctx context.Context, userID string) error {
	if err := r.client.Del(ctx, r.key(userID)).Err(); err != nil {
		return fmt.Errorf("delete cart from redis: %w", err)
	}
	return nil
}
