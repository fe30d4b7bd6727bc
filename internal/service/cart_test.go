package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/tomeriko7/finalProject-sub000/internal/domain"
	apperrors "github.com/tomeriko7/finalProject-sub000/pkg/errors"
)

func newCartTestService(cartRepo *mockCartRepository, productRepo *mockProductRepository) *CartService {
	return NewCartService(cartRepo, productRepo, newTestProducer(), newTestLogger())
}

func cartWithLine(userID, lineID, productID string, quantity int) *domain.Cart {
	return &domain.Cart{
		UserID: userID,
		Lines: []domain.CartLine{
			{
				ID:        lineID,
				ProductID: productID,
				Quantity:  quantity,
				AddedAt:   time.Now().UTC().Add(-time.Hour),
			},
		},
		UpdatedAt: time.Now().UTC(),
	}
}

func TestCartGetCart_Empty(t *testing.T) {
	cartRepo := new(mockCartRepository)
	productRepo := new(mockProductRepository)
	svc := newCartTestService(cartRepo, productRepo)
	ctx := context.Background()

	cartRepo.On("Get", ctx, "user-1").Return(nil, apperrors.NotFound("cart", "user-1"))
	productRepo.On("GetByIDs", ctx, mock.Anything).Return([]domain.Product{}, nil)

	cart, err := svc.GetCart(ctx, "user-1")

	require.NoError(t, err)
	assert.Empty(t, cart.Lines)
	assert.Zero(t, cart.TotalItems)
	assert.Zero(t, cart.TotalPrice)

	cartRepo.AssertExpectations(t)
}

func TestCartAddItem_NewLine(t *testing.T) {
	cartRepo := new(mockCartRepository)
	productRepo := new(mockProductRepository)
	svc := newCartTestService(cartRepo, productRepo)
	ctx := context.Background()

	product := publishedProduct("prod-1", 4999, 25)
	cartRepo.On("Get", ctx, "user-1").Return(nil, apperrors.NotFound("cart", "user-1"))
	productRepo.On("GetByID", ctx, "prod-1").Return(product, nil)
	cartRepo.On("Save", ctx, mock.AnythingOfType("*domain.Cart")).Return(nil)
	productRepo.On("GetByIDs", ctx, mock.Anything).Return([]domain.Product{*product}, nil)

	cart, err := svc.AddItem(ctx, "user-1", "prod-1", 2)

	require.NoError(t, err)
	require.Len(t, cart.Lines, 1)
	assert.Equal(t, "prod-1", cart.Lines[0].ProductID)
	assert.Equal(t, 2, cart.Lines[0].Quantity)
	assert.NotEmpty(t, cart.Lines[0].ID)
	assert.Equal(t, 2, cart.TotalItems)
	assert.Equal(t, int64(9998), cart.TotalPrice)

	cartRepo.AssertExpectations(t)
	productRepo.AssertExpectations(t)
}

func TestCartAddItem_MergesExistingLine(t *testing.T) {
	cartRepo := new(mockCartRepository)
	productRepo := new(mockProductRepository)
	svc := newCartTestService(cartRepo, productRepo)
	ctx := context.Background()

	existing := cartWithLine("user-1", "line-1", "prod-1", 2)
	originalAddedAt := existing.Lines[0].AddedAt
	product := publishedProduct("prod-1", 4999, 25)

	cartRepo.On("Get", ctx, "user-1").Return(existing, nil)
	productRepo.On("GetByID", ctx, "prod-1").Return(product, nil)
	cartRepo.On("Save", ctx, mock.AnythingOfType("*domain.Cart")).Return(nil)
	productRepo.On("GetByIDs", ctx, mock.Anything).Return([]domain.Product{*product}, nil)

	cart, err := svc.AddItem(ctx, "user-1", "prod-1", 3)

	require.NoError(t, err)
	require.Len(t, cart.Lines, 1)
	assert.Equal(t, "line-1", cart.Lines[0].ID)
	assert.Equal(t, 5, cart.Lines[0].Quantity)
	assert.Equal(t, originalAddedAt, cart.Lines[0].AddedAt)

	cartRepo.AssertExpectations(t)
}

func TestCartAddItem_StockBoundary(t *testing.T) {
	cartRepo := new(mockCartRepository)
	productRepo := new(mockProductRepository)
	svc := newCartTestService(cartRepo, productRepo)
	ctx := context.Background()

	// Two already in the cart, five in stock: adding three fills the
	// cart to exactly the stock level.
	existing := cartWithLine("user-1", "line-1", "prod-1", 2)
	product := publishedProduct("prod-1", 4999, 5)

	cartRepo.On("Get", ctx, "user-1").Return(existing, nil)
	productRepo.On("GetByID", ctx, "prod-1").Return(product, nil)
	cartRepo.On("Save", ctx, mock.AnythingOfType("*domain.Cart")).Return(nil)
	productRepo.On("GetByIDs", ctx, mock.Anything).Return([]domain.Product{*product}, nil)

	cart, err := svc.AddItem(ctx, "user-1", "prod-1", 3)

	require.NoError(t, err)
	assert.Equal(t, 5, cart.Lines[0].Quantity)
}

func TestCartAddItem_InsufficientStock(t *testing.T) {
	cartRepo := new(mockCartRepository)
	productRepo := new(mockProductRepository)
	svc := newCartTestService(cartRepo, productRepo)
	ctx := context.Background()

	existing := cartWithLine("user-1", "line-1", "prod-1", 3)
	product := publishedProduct("prod-1", 4999, 5)

	cartRepo.On("Get", ctx, "user-1").Return(existing, nil)
	productRepo.On("GetByID", ctx, "prod-1").Return(product, nil)

	_, err := svc.AddItem(ctx, "user-1", "prod-1", 3)

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrInsufficientStock)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 2, appErr.Details["remaining"])
	assert.Equal(t, 3, appErr.Details["in_cart"])

	cartRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestCartAddItem_InvalidQuantity(t *testing.T) {
	svc := newCartTestService(new(mockCartRepository), new(mockProductRepository))
	ctx := context.Background()

	_, err := svc.AddItem(ctx, "user-1", "prod-1", 0)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	_, err = svc.AddItem(ctx, "user-1", "prod-1", MaxQuantityPerItem+1)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestCartAddItem_UnpublishedProduct(t *testing.T) {
	cartRepo := new(mockCartRepository)
	productRepo := new(mockProductRepository)
	svc := newCartTestService(cartRepo, productRepo)
	ctx := context.Background()

	draft := publishedProduct("prod-1", 4999, 25)
	draft.Status = domain.ProductStatusDraft
	productRepo.On("GetByID", ctx, "prod-1").Return(draft, nil)

	_, err := svc.AddItem(ctx, "user-1", "prod-1", 1)

	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestCartUpdateQuantity_ZeroRemovesLine(t *testing.T) {
	cartRepo := new(mockCartRepository)
	productRepo := new(mockProductRepository)
	svc := newCartTestService(cartRepo, productRepo)
	ctx := context.Background()

	existing := cartWithLine("user-1", "line-1", "prod-1", 2)
	cartRepo.On("Get", ctx, "user-1").Return(existing, nil)
	cartRepo.On("Save", ctx, mock.AnythingOfType("*domain.Cart")).Return(nil)
	productRepo.On("GetByIDs", ctx, mock.Anything).Return([]domain.Product{}, nil)

	cart, err := svc.UpdateQuantity(ctx, "user-1", "line-1", 0)

	require.NoError(t, err)
	assert.Empty(t, cart.Lines)

	// Removal never consults the catalog.
	productRepo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestCartUpdateQuantity_SetsQuantity(t *testing.T) {
	cartRepo := new(mockCartRepository)
	productRepo := new(mockProductRepository)
	svc := newCartTestService(cartRepo, productRepo)
	ctx := context.Background()

	existing := cartWithLine("user-1", "line-1", "prod-1", 2)
	product := publishedProduct("prod-1", 4999, 25)

	cartRepo.On("Get", ctx, "user-1").Return(existing, nil)
	productRepo.On("GetByID", ctx, "prod-1").Return(product, nil)
	cartRepo.On("Save", ctx, mock.AnythingOfType("*domain.Cart")).Return(nil)
	productRepo.On("GetByIDs", ctx, mock.Anything).Return([]domain.Product{*product}, nil)

	cart, err := svc.UpdateQuantity(ctx, "user-1", "line-1", 7)

	require.NoError(t, err)
	assert.Equal(t, 7, cart.Lines[0].Quantity)
}

func TestCartUpdateQuantity_LineNotFound(t *testing.T) {
	cartRepo := new(mockCartRepository)
	productRepo := new(mockProductRepository)
	svc := newCartTestService(cartRepo, productRepo)
	ctx := context.Background()

	cartRepo.On("Get", ctx, "user-1").Return(cartWithLine("user-1", "line-1", "prod-1", 2), nil)

	_, err := svc.UpdateQuantity(ctx, "user-1", "line-999", 3)

	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestCartUpdateQuantity_ExceedsStock(t *testing.T) {
	cartRepo := new(mockCartRepository)
	productRepo := new(mockProductRepository)
	svc := newCartTestService(cartRepo, productRepo)
	ctx := context.Background()

	existing := cartWithLine("user-1", "line-1", "prod-1", 2)
	product := publishedProduct("prod-1", 4999, 5)

	cartRepo.On("Get", ctx, "user-1").Return(existing, nil)
	productRepo.On("GetByID", ctx, "prod-1").Return(product, nil)

	_, err := svc.UpdateQuantity(ctx, "user-1", "line-1", 6)

	assert.ErrorIs(t, err, apperrors.ErrInsufficientStock)
	cartRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestCartRemove(t *testing.T) {
	cartRepo := new(mockCartRepository)
	productRepo := new(mockProductRepository)
	svc := newCartTestService(cartRepo, productRepo)
	ctx := context.Background()

	existing := cartWithLine("user-1", "line-1", "prod-1", 2)
	cartRepo.On("Get", ctx, "user-1").Return(existing, nil)
	cartRepo.On("Save", ctx, mock.AnythingOfType("*domain.Cart")).Return(nil)
	productRepo.On("GetByIDs", ctx, mock.Anything).Return([]domain.Product{}, nil)

	cart, err := svc.Remove(ctx, "user-1", "line-1")

	require.NoError(t, err)
	assert.Empty(t, cart.Lines)
}

func TestCartRemove_NotFound(t *testing.T) {
	cartRepo := new(mockCartRepository)
	svc := newCartTestService(cartRepo, new(mockProductRepository))
	ctx := context.Background()

	cartRepo.On("Get", ctx, "user-1").Return(cartWithLine("user-1", "line-1", "prod-1", 2), nil)

	_, err := svc.Remove(ctx, "user-1", "line-999")

	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestCartClear(t *testing.T) {
	cartRepo := new(mockCartRepository)
	svc := newCartTestService(cartRepo, new(mockProductRepository))
	ctx := context.Background()

	cartRepo.On("Delete", ctx, "user-1").Return(nil)

	err := svc.Clear(ctx, "user-1")

	require.NoError(t, err)
	cartRepo.AssertExpectations(t)
}

func TestCartSync_ReplacesWholeCart(t *testing.T) {
	cartRepo := new(mockCartRepository)
	productRepo := new(mockProductRepository)
	svc := newCartTestService(cartRepo, productRepo)
	ctx := context.Background()

	product := publishedProduct("prod-1", 4999, 25)
	productRepo.On("GetByID", ctx, "prod-1").Return(product, nil)

	var saved *domain.Cart
	cartRepo.On("Save", ctx, mock.AnythingOfType("*domain.Cart")).Run(func(args mock.Arguments) {
		saved = args.Get(1).(*domain.Cart)
	}).Return(nil)
	productRepo.On("GetByIDs", ctx, mock.Anything).Return([]domain.Product{*product}, nil)

	cart, dropped, err := svc.Sync(ctx, "user-1", []SyncLine{{ProductID: "prod-1", Quantity: 4}})

	require.NoError(t, err)
	assert.Zero(t, dropped)
	require.Len(t, cart.Lines, 1)
	assert.Equal(t, 4, cart.Lines[0].Quantity)

	// The replace is wholesale: the previous cart is never read.
	cartRepo.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
	require.NotNil(t, saved)
	assert.Len(t, saved.Lines, 1)
}

func TestCartSync_MergesDuplicateProducts(t *testing.T) {
	cartRepo := new(mockCartRepository)
	productRepo := new(mockProductRepository)
	svc := newCartTestService(cartRepo, productRepo)
	ctx := context.Background()

	product := publishedProduct("prod-1", 4999, 25)
	productRepo.On("GetByID", ctx, "prod-1").Return(product, nil)
	cartRepo.On("Save", ctx, mock.AnythingOfType("*domain.Cart")).Return(nil)
	productRepo.On("GetByIDs", ctx, mock.Anything).Return([]domain.Product{*product}, nil)

	cart, dropped, err := svc.Sync(ctx, "user-1", []SyncLine{
		{ProductID: "prod-1", Quantity: 2},
		{ProductID: "prod-1", Quantity: 3},
	})

	require.NoError(t, err)
	assert.Zero(t, dropped)
	require.Len(t, cart.Lines, 1)
	assert.Equal(t, 5, cart.Lines[0].Quantity)
}

func TestCartSync_DropsInvalidLines(t *testing.T) {
	cartRepo := new(mockCartRepository)
	productRepo := new(mockProductRepository)
	svc := newCartTestService(cartRepo, productRepo)
	ctx := context.Background()

	good := publishedProduct("prod-1", 4999, 25)
	lowStock := publishedProduct("prod-2", 2999, 1)
	archived := publishedProduct("prod-3", 1999, 10)
	archived.Status = domain.ProductStatusArchived

	productRepo.On("GetByID", ctx, "prod-1").Return(good, nil)
	productRepo.On("GetByID", ctx, "prod-2").Return(lowStock, nil)
	productRepo.On("GetByID", ctx, "prod-3").Return(archived, nil)
	productRepo.On("GetByID", ctx, "prod-gone").Return(nil, apperrors.NotFound("product", "prod-gone"))
	cartRepo.On("Save", ctx, mock.AnythingOfType("*domain.Cart")).Return(nil)
	productRepo.On("GetByIDs", ctx, mock.Anything).Return([]domain.Product{*good}, nil)

	cart, dropped, err := svc.Sync(ctx, "user-1", []SyncLine{
		{ProductID: "prod-1", Quantity: 2},
		{ProductID: "prod-2", Quantity: 5},
		{ProductID: "prod-3", Quantity: 1},
		{ProductID: "prod-gone", Quantity: 1},
		{ProductID: "prod-zero", Quantity: 0},
	})

	require.NoError(t, err)
	assert.Equal(t, 4, dropped)
	require.Len(t, cart.Lines, 1)
	assert.Equal(t, "prod-1", cart.Lines[0].ProductID)
}

func TestCartSync_EmptyInputEmptiesCart(t *testing.T) {
	cartRepo := new(mockCartRepository)
	productRepo := new(mockProductRepository)
	svc := newCartTestService(cartRepo, productRepo)
	ctx := context.Background()

	var saved *domain.Cart
	cartRepo.On("Save", ctx, mock.AnythingOfType("*domain.Cart")).Run(func(args mock.Arguments) {
		saved = args.Get(1).(*domain.Cart)
	}).Return(nil)
	productRepo.On("GetByIDs", ctx, mock.Anything).Return([]domain.Product{}, nil)

	cart, dropped, err := svc.Sync(ctx, "user-1", nil)

	require.NoError(t, err)
	assert.Zero(t, dropped)
	assert.Empty(t, cart.Lines)
	require.NotNil(t, saved)
	assert.Empty(t, saved.Lines)
}
