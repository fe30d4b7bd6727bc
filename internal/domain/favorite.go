package domain

import (
	"time"
)

// FavoriteEntry marks a product as favorited by a user. The pair
// (UserID, ProductID) is unique.
type FavoriteEntry struct {
	UserID    string    `json:"user_id"`
	ProductID string    `json:"product_id"`
	AddedAt   time.Time `json:"added_at"`
}

// ResolvedFavorite is a favorite entry joined with its live product.
type ResolvedFavorite struct {
	ProductID  string    `json:"product_id"`
	Name       string    `json:"name"`
	Slug       string    `json:"slug"`
	PriceCents int64     `json:"price_cents"`
	ImageURL   string    `json:"image_url,omitempty"`
	Stock      int       `json:"stock"`
	AddedAt    time.Time `json:"added_at"`
}
