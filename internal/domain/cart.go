package domain

import (
	"time"
)

// CartLine is a single product entry in a cart. A cart holds at most one
// line per product; adding the same product again increments the quantity
// of the existing line. AddedAt is set when the line is first inserted and
// survives quantity changes.
type CartLine struct {
	ID        string    `json:"id"`
	ProductID string    `json:"product_id"`
	Quantity  int       `json:"quantity"`
	AddedAt   time.Time `json:"added_at"`
}

// Cart is the authoritative per-user cart.
type Cart struct {
	UserID    string     `json:"user_id"`
	Lines     []CartLine `json:"lines"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// TotalQuantity returns the sum of quantities across all lines.
func (c *Cart) TotalQuantity() int {
	total := 0
	for _, line := range c.Lines {
		total += line.Quantity
	}
	return total
}

// FindLine returns the index of the line with the given ID, or -1.
func (c *Cart) FindLine(lineID string) int {
	for i, line := range c.Lines {
		if line.ID == lineID {
			return i
		}
	}
	return -1
}

// FindLineByProduct returns the index of the line holding the given
// product, or -1.
func (c *Cart) FindLineByProduct(productID string) int {
	for i, line := range c.Lines {
		if line.ProductID == productID {
			return i
		}
	}
	return -1
}

// RemoveLineAt deletes the line at index i, preserving order.
func (c *Cart) RemoveLineAt(i int) {
	c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
}

// ResolvedCartLine is a cart line joined with the live product it refers
// to. Lines whose product has vanished or is no longer published are
// omitted from resolved views.
type ResolvedCartLine struct {
	ID         string    `json:"id"`
	ProductID  string    `json:"product_id"`
	Name       string    `json:"name"`
	PriceCents int64     `json:"price_cents"`
	ImageURL   string    `json:"image_url,omitempty"`
	Stock      int       `json:"stock"`
	Quantity   int       `json:"quantity"`
	AddedAt    time.Time `json:"added_at"`
}

// ResolvedCart is the view of a cart returned to clients.
type ResolvedCart struct {
	Lines      []ResolvedCartLine `json:"lines"`
	TotalItems int                `json:"total_items"`
	TotalPrice int64              `json:"total_price"`
}
