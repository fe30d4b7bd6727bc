package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func testCart() *Cart {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	return &Cart{
		UserID: "user-1",
		Lines: []CartLine{
			{ID: "line-1", ProductID: "prod-rose", Quantity: 2, AddedAt: now},
			{ID: "line-2", ProductID: "prod-tulip", Quantity: 5, AddedAt: now},
		},
		UpdatedAt: now,
	}
}

func TestCart_TotalQuantity(t *testing.T) {
	cart := testCart()
	assert.Equal(t, 7, cart.TotalQuantity())

	empty := &Cart{UserID: "user-2"}
	assert.Equal(t, 0, empty.TotalQuantity())
}

func TestCart_FindLine(t *testing.T) {
	cart := testCart()

	assert.Equal(t, 0, cart.FindLine("line-1"))
	assert.Equal(t, 1, cart.FindLine("line-2"))
	assert.Equal(t, -1, cart.FindLine("line-missing"))
}

func TestCart_FindLineByProduct(t *testing.T) {
	cart := testCart()

	assert.Equal(t, 1, cart.FindLineByProduct("prod-tulip"))
	assert.Equal(t, -1, cart.FindLineByProduct("prod-orchid"))
}

func TestCart_RemoveLineAt(t *testing.T) {
	cart := testCart()

	cart.RemoveLineAt(0)
	assert.Len(t, cart.Lines, 1)
	assert.Equal(t, "line-2", cart.Lines[0].ID)
}

func TestProduct_IsPurchasable(t *testing.T) {
	tests := []struct {
		status string
		want   bool
	}{
		{ProductStatusPublished, true},
		{ProductStatusDraft, false},
		{ProductStatusArchived, false},
	}

	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			p := &Product{Status: tt.status}
			assert.Equal(t, tt.want, p.IsPurchasable())
		})
	}
}

func TestFindGuestCartLine(t *testing.T) {
	lines := []GuestCartLine{
		{ProductID: "prod-rose", Quantity: 1},
		{ProductID: "prod-lily", Quantity: 3},
	}

	assert.Equal(t, 1, FindGuestCartLine(lines, "prod-lily"))
	assert.Equal(t, -1, FindGuestCartLine(lines, "prod-missing"))
	assert.Equal(t, -1, FindGuestCartLine(nil, "prod-rose"))
}
