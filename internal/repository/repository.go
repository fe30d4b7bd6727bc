package repository

import (
	"context"
	"time"

	"github.com/tomeriko7/finalProject-sub000/internal/domain"
)

// ProductFilter defines filter criteria for listing catalog products.
type ProductFilter struct {
	Category      string
	Search        string
	MinPriceCents *int64
	MaxPriceCents *int64
	Status        string // empty means published only
	Page          int
	PerPage       int
}

// ProductRepository defines persistence operations for catalog products.
type ProductRepository interface {
	// Create inserts a new product.
	Create(ctx context.Context, p *domain.Product) error

	// GetByID retrieves a product by its unique identifier.
	GetByID(ctx context.Context, id string) (*domain.Product, error)

	// GetBySlug retrieves a product by its URL slug.
	GetBySlug(ctx context.Context, slug string) (*domain.Product, error)

	// GetByIDs retrieves all products matching the given IDs. Missing IDs
	// are silently absent from the result.
	GetByIDs(ctx context.Context, ids []string) ([]domain.Product, error)

	// List returns products matching the filter along with the total count.
	List(ctx context.Context, filter ProductFilter) ([]domain.Product, int, error)

	// Update modifies an existing product.
	Update(ctx context.Context, p *domain.Product) error

	// Delete removes a product by its ID.
	Delete(ctx context.Context, id string) error

	// AdjustStock atomically applies a stock delta and returns the new
	// level. Fails when the adjustment would take stock below zero.
	AdjustStock(ctx context.Context, id string, delta int) (int, error)
}

// UserRepository defines persistence operations for user accounts.
type UserRepository interface {
	Create(ctx context.Context, u *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, u *domain.User) error
}

// RefreshTokenRepository defines persistence for hashed refresh tokens.
type RefreshTokenRepository interface {
	Create(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error
	GetByHash(ctx context.Context, tokenHash string) (*domain.RefreshToken, error)
	Revoke(ctx context.Context, tokenHash string) error
	RevokeByUserID(ctx context.Context, userID string) error
}

// FavoriteRepository defines persistence operations for user favorites.
type FavoriteRepository interface {
	// Add inserts a favorite. Returns an already-exists error when the
	// product is already favorited.
	Add(ctx context.Context, userID, productID string) error

	// Remove deletes a favorite. Returns not-found when absent.
	Remove(ctx context.Context, userID, productID string) error

	// List returns the user's favorites ordered newest first, with total.
	List(ctx context.Context, userID string, page, perPage int) ([]domain.FavoriteEntry, int, error)

	// Exists checks whether a product is favorited by the user.
	Exists(ctx context.Context, userID, productID string) (bool, error)

	// Clear removes all favorites for the user.
	Clear(ctx context.Context, userID string) error
}

// OrderFilter defines filter criteria for listing orders.
type OrderFilter struct {
	UserID  string // empty means all users (admin)
	Status  string
	Page    int
	PerPage int
}

// OrderRepository defines persistence operations for orders.
type OrderRepository interface {
	// Create places the order and decrements product stock atomically in
	// one transaction. Fails with an insufficient-stock error when any
	// item exceeds the live stock level.
	Create(ctx context.Context, o *domain.Order) error

	// GetByID retrieves an order with its items.
	GetByID(ctx context.Context, id string) (*domain.Order, error)

	// List returns orders matching the filter along with the total count.
	List(ctx context.Context, filter OrderFilter) ([]domain.Order, int, error)

	// UpdateStatus sets the order status.
	UpdateStatus(ctx context.Context, id, status string) error
}

// CartRepository defines persistence for authoritative per-user carts.
type CartRepository interface {
	// Get retrieves the user's cart. Returns not-found when no cart exists.
	Get(ctx context.Context, userID string) (*domain.Cart, error)

	// Save persists the full cart, refreshing its TTL.
	Save(ctx context.Context, cart *domain.Cart) error

	// Delete removes the user's cart entirely.
	Delete(ctx context.Context, userID string) error
}

// GuestStateRepository defines persistence for guest holding areas. Each
// collection lives under its own key beneath the guest token; mutators
// persist whole collections, never deltas.
type GuestStateRepository interface {
	GetCart(ctx context.Context, token string) ([]domain.GuestCartLine, error)
	SaveCart(ctx context.Context, token string, lines []domain.GuestCartLine) error

	GetFavorites(ctx context.Context, token string) ([]domain.GuestFavorite, error)
	SaveFavorites(ctx context.Context, token string, favorites []domain.GuestFavorite) error

	GetFavoritesQuantity(ctx context.Context, token string) (map[string]int, error)
	SaveFavoritesQuantity(ctx context.Context, token string, quantities map[string]int) error

	// DeleteAll removes every key for the guest token in one call.
	DeleteAll(ctx context.Context, token string) error
}
