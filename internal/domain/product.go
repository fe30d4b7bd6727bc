package domain

import (
	"time"
)

// Product status constants.
const (
	ProductStatusDraft     = "draft"
	ProductStatusPublished = "published"
	ProductStatusArchived  = "archived"
)

// Product represents an item in the storefront catalog. Prices are stored
// in cents to avoid floating-point arithmetic on money.
type Product struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	PriceCents  int64     `json:"price_cents"`
	Stock       int       `json:"stock"`
	ImageURL    string    `json:"image_url,omitempty"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// IsPurchasable reports whether the product can appear in carts and orders.
func (p *Product) IsPurchasable() bool {
	return p.Status == ProductStatusPublished
}

// ValidProductStatuses returns the set of valid product statuses.
func ValidProductStatuses() []string {
	return []string{ProductStatusDraft, ProductStatusPublished, ProductStatusArchived}
}

// IsValidProductStatus checks whether the given status string is valid.
func IsValidProductStatus(status string) bool {
	for _, s := range ValidProductStatuses() {
		if s == status {
			return true
		}
	}
	return false
}
