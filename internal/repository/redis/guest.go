package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tomeriko7/finalProject-sub000/internal/domain"
)

const (
	guestKeyPrefix = "guest:"

	guestCartKey              = "cart"
	guestFavoritesKey         = "favorites"
	guestFavoritesQuantityKey = "favoritesQuantity"
)

// GuestStateRepository implements repository.GuestStateRepository using
// Redis. Each collection (cart, favorites, favoritesQuantity) lives under
// its own key beneath the guest token prefix and is written wholesale on
// every mutation. Reads of absent keys return empty collections: the
// holding area is created lazily on first write and vanishes entirely
// when reconciliation deletes the keys or the TTL fires.
type GuestStateRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewGuestStateRepository creates a new Redis-backed guest state repository.
func NewGuestStateRepository(client *redis.Client, ttl time.Duration) *GuestStateRepository {
	return &GuestStateRepository{client: client, ttl: ttl}
}

func (r *GuestStateRepository) key(token, name string) string {
	return guestKeyPrefix + token + ":" + name
}

// GetCart returns the guest's cart lines, or an empty slice when absent.
func (r *GuestStateRepository) GetCart(ctx context.Context, token string) ([]domain.GuestCartLine, error) {
	var lines []domain.GuestCartLine
	if err := r.getJSON(ctx, r.key(token, guestCartKey), &lines); err != nil {
		return nil, err
	}
	if lines == nil {
		lines = []domain.GuestCartLine{}
	}
	return lines, nil
}

// SaveCart persists the full guest cart.
func (r *GuestStateRepository) SaveCart(ctx context.Context, token string, lines []domain.GuestCartLine) error {
	return r.setJSON(ctx, r.key(token, guestCartKey), lines)
}

// GetFavorites returns the guest's favorites, or an empty slice when absent.
func (r *GuestStateRepository) GetFavorites(ctx context.Context, token string) ([]domain.GuestFavorite, error) {
	var favorites []domain.GuestFavorite
	if err := r.getJSON(ctx, r.key(token, guestFavoritesKey), &favorites); err != nil {
		return nil, err
	}
	if favorites == nil {
		favorites = []domain.GuestFavorite{}
	}
	return favorites, nil
}

// SaveFavorites persists the full guest favorites list.
func (r *GuestStateRepository) SaveFavorites(ctx context.Context, token string, favorites []domain.GuestFavorite) error {
	return r.setJSON(ctx, r.key(token, guestFavoritesKey), favorites)
}

// GetFavoritesQuantity returns the per-product quantity map, or an empty
// map when absent.
func (r *GuestStateRepository) GetFavoritesQuantity(ctx context.Context, token string) (map[string]int, error) {
	var quantities map[string]int
	if err := r.getJSON(ctx, r.key(token, guestFavoritesQuantityKey), &quantities); err != nil {
		return nil, err
	}
	if quantities == nil {
		quantities = map[string]int{}
	}
	return quantities, nil
}

// SaveFavoritesQuantity persists the full quantity map.
func (r *GuestStateRepository) SaveFavoritesQuantity(ctx context.Context, token string, quantities map[string]int) error {
	return r.setJSON(ctx, r.key(token, guestFavoritesQuantityKey), quantities)
}

// DeleteAll removes every key for the guest token in one call.
func (r *GuestStateRepository) DeleteAll(ctx context.Context, token string) error {
	keys := []string{
		r.key(token, guestCartKey),
		r.key(token, guestFavoritesKey),
		r.key(token, guestFavoritesQuantityKey),
	}
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("delete guest state from redis: %w", err)
	}
	return nil
}

func (r *GuestStateRepository) getJSON(ctx context.Context, key string, target any) error {
	val, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return fmt.Errorf("get %s from redis: %w", key, err)
	}

	if err := json.Unmarshal([]byte(val), target); err != nil {
		return fmt.Errorf("unmarshal %s: %w", key, err)
	}

	return nil
}

func (r *GuestStateRepository) setJSON(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}

	if err := r.client.Set(ctx, key, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("save %s to redis: %w", key, err)
	}

	return nil
}
