package domain

import (
	"time"
)

// GuestCartLine is a cart entry in a guest's Redis holding area. Unlike
// authenticated cart lines, it carries a denormalized product snapshot
// captured at add time; the snapshot is never refreshed, so prices and
// stock reflect the moment the guest added the item.
type GuestCartLine struct {
	ProductID  string    `json:"product_id"`
	Name       string    `json:"name"`
	PriceCents int64     `json:"price_cents"`
	ImageURL   string    `json:"image_url,omitempty"`
	StockAtAdd int       `json:"stock_at_add"`
	Quantity   int       `json:"quantity"`
	AddedAt    time.Time `json:"added_at"`
}

// GuestFavorite is a favorited product snapshot in a guest's holding area.
type GuestFavorite struct {
	ProductID  string    `json:"product_id"`
	Name       string    `json:"name"`
	Slug       string    `json:"slug"`
	PriceCents int64     `json:"price_cents"`
	ImageURL   string    `json:"image_url,omitempty"`
	AddedAt    time.Time `json:"added_at"`
}

// GuestState is the full holding area for one guest token: the cart, the
// favorites list, and the per-product favorite quantities the client uses
// to pre-fill "add to cart" from the favorites page. It exists only until
// the guest signs in; reconciliation destroys it wholesale.
type GuestState struct {
	Cart              []GuestCartLine `json:"cart"`
	Favorites         []GuestFavorite `json:"favorites"`
	FavoritesQuantity map[string]int  `json:"favorites_quantity"`
}

// FindGuestCartLine returns the index of the guest cart line for the given
// product, or -1.
func FindGuestCartLine(lines []GuestCartLine, productID string) int {
	for i, line := range lines {
		if line.ProductID == productID {
			return i
		}
	}
	return -1
}

// FindGuestFavorite returns the index of the guest favorite for the given
// product, or -1.
func FindGuestFavorite(favorites []GuestFavorite, productID string) int {
	for i, f := range favorites {
		if f.ProductID == productID {
			return i
		}
	}
	return -1
}
