package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/tomeriko7/finalProject-sub000/internal/domain"
	"github.com/tomeriko7/finalProject-sub000/internal/repository"
	apperrors "github.com/tomeriko7/finalProject-sub000/pkg/errors"
	"github.com/tomeriko7/finalProject-sub000/pkg/pagination"
)

func newOrderTestService(orderRepo *mockOrderRepository, cartRepo *mockCartRepository, productRepo *mockProductRepository) *OrderService {
	return NewOrderService(orderRepo, cartRepo, productRepo, newTestProducer(), newTestLogger())
}

func testAddress() domain.Address {
	return domain.Address{
		FullName:    "Dana Levi",
		AddressLine: "12 Rothschild Blvd",
		City:        "Tel Aviv",
		PostalCode:  "6688112",
		Country:     "IL",
		Phone:       "+972501234567",
	}
}

func TestPlaceOrder_SnapshotsPricesAndClearsCart(t *testing.T) {
	orderRepo := new(mockOrderRepository)
	cartRepo := new(mockCartRepository)
	productRepo := new(mockProductRepository)
	svc := newOrderTestService(orderRepo, cartRepo, productRepo)
	ctx := context.Background()

	cart := cartWithLine("user-1", "line-1", "prod-1", 2)
	cartRepo.On("Get", ctx, "user-1").Return(cart, nil)
	productRepo.On("GetByIDs", ctx, []string{"prod-1"}).
		Return([]domain.Product{*publishedProduct("prod-1", 4999, 25)}, nil)

	var created *domain.Order
	orderRepo.On("Create", ctx, mock.AnythingOfType("*domain.Order")).Run(func(args mock.Arguments) {
		created = args.Get(1).(*domain.Order)
	}).Return(nil)
	cartRepo.On("Delete", ctx, "user-1").Return(nil)

	order, err := svc.PlaceOrder(ctx, "user-1", PlaceOrderInput{ShippingAddress: testAddress()})

	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusPending, order.Status)
	require.Len(t, order.Items, 1)
	assert.Equal(t, int64(4999), order.Items[0].PriceCents)
	assert.Equal(t, "Red Rose Bouquet", order.Items[0].Name)
	assert.Equal(t, int64(9998), order.TotalCents)
	require.NotNil(t, created)

	cartRepo.AssertExpectations(t)
	orderRepo.AssertExpectations(t)
}

func TestPlaceOrder_EmptyCart(t *testing.T) {
	orderRepo := new(mockOrderRepository)
	cartRepo := new(mockCartRepository)
	svc := newOrderTestService(orderRepo, cartRepo, new(mockProductRepository))
	ctx := context.Background()

	cartRepo.On("Get", ctx, "user-1").Return(nil, apperrors.NotFound("cart", "user-1"))

	_, err := svc.PlaceOrder(ctx, "user-1", PlaceOrderInput{ShippingAddress: testAddress()})

	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	orderRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestPlaceOrder_MissingAddress(t *testing.T) {
	svc := newOrderTestService(new(mockOrderRepository), new(mockCartRepository), new(mockProductRepository))
	ctx := context.Background()

	addr := testAddress()
	addr.City = ""

	_, err := svc.PlaceOrder(ctx, "user-1", PlaceOrderInput{ShippingAddress: addr})

	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestPlaceOrder_InsufficientStock(t *testing.T) {
	orderRepo := new(mockOrderRepository)
	cartRepo := new(mockCartRepository)
	productRepo := new(mockProductRepository)
	svc := newOrderTestService(orderRepo, cartRepo, productRepo)
	ctx := context.Background()

	cart := cartWithLine("user-1", "line-1", "prod-1", 2)
	cartRepo.On("Get", ctx, "user-1").Return(cart, nil)
	productRepo.On("GetByIDs", ctx, []string{"prod-1"}).
		Return([]domain.Product{*publishedProduct("prod-1", 4999, 25)}, nil)
	orderRepo.On("Create", ctx, mock.AnythingOfType("*domain.Order")).
		Return(apperrors.InsufficientStock(1, 0))

	_, err := svc.PlaceOrder(ctx, "user-1", PlaceOrderInput{ShippingAddress: testAddress()})

	assert.ErrorIs(t, err, apperrors.ErrInsufficientStock)
	cartRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestPlaceOrder_SkipsUnpurchasableLines(t *testing.T) {
	orderRepo := new(mockOrderRepository)
	cartRepo := new(mockCartRepository)
	productRepo := new(mockProductRepository)
	svc := newOrderTestService(orderRepo, cartRepo, productRepo)
	ctx := context.Background()

	cart := cartWithLine("user-1", "line-1", "prod-archived", 2)
	cartRepo.On("Get", ctx, "user-1").Return(cart, nil)

	archived := publishedProduct("prod-archived", 4999, 25)
	archived.Status = domain.ProductStatusArchived
	productRepo.On("GetByIDs", ctx, []string{"prod-archived"}).
		Return([]domain.Product{*archived}, nil)

	_, err := svc.PlaceOrder(ctx, "user-1", PlaceOrderInput{ShippingAddress: testAddress()})

	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestGetOrder_OtherUsersOrderIsNotFound(t *testing.T) {
	orderRepo := new(mockOrderRepository)
	svc := newOrderTestService(orderRepo, new(mockCartRepository), new(mockProductRepository))
	ctx := context.Background()

	order := &domain.Order{ID: "ord-1", UserID: "user-2", Status: domain.OrderStatusPending}
	orderRepo.On("GetByID", ctx, "ord-1").Return(order, nil)

	_, err := svc.GetOrder(ctx, "user-1", "ord-1")

	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestListOrders_ScopedToUser(t *testing.T) {
	orderRepo := new(mockOrderRepository)
	svc := newOrderTestService(orderRepo, new(mockCartRepository), new(mockProductRepository))
	ctx := context.Background()

	orderRepo.On("List", ctx, repository.OrderFilter{UserID: "user-1", Page: 1, PerPage: 20}).
		Return([]domain.Order{{ID: "ord-1", UserID: "user-1"}}, 1, nil)

	result, err := svc.ListOrders(ctx, "user-1", pagination.DefaultParams())

	require.NoError(t, err)
	assert.Len(t, result.Data, 1)
	orderRepo.AssertExpectations(t)
}

func TestUpdateStatus_ValidTransition(t *testing.T) {
	orderRepo := new(mockOrderRepository)
	svc := newOrderTestService(orderRepo, new(mockCartRepository), new(mockProductRepository))
	ctx := context.Background()

	order := &domain.Order{
		ID:        "ord-1",
		UserID:    "user-1",
		Status:    domain.OrderStatusPending,
		UpdatedAt: time.Now().UTC().Add(-time.Hour),
	}
	orderRepo.On("GetByID", ctx, "ord-1").Return(order, nil)
	orderRepo.On("UpdateStatus", ctx, "ord-1", domain.OrderStatusPaid).Return(nil)

	updated, err := svc.UpdateStatus(ctx, "ord-1", domain.OrderStatusPaid)

	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusPaid, updated.Status)
	orderRepo.AssertExpectations(t)
}

func TestUpdateStatus_InvalidTransition(t *testing.T) {
	orderRepo := new(mockOrderRepository)
	svc := newOrderTestService(orderRepo, new(mockCartRepository), new(mockProductRepository))
	ctx := context.Background()

	order := &domain.Order{ID: "ord-1", Status: domain.OrderStatusDelivered}
	orderRepo.On("GetByID", ctx, "ord-1").Return(order, nil)

	_, err := svc.UpdateStatus(ctx, "ord-1", domain.OrderStatusPending)

	assert.ErrorIs(t, err, apperrors.ErrConflict)
	orderRepo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateStatus_UnknownStatus(t *testing.T) {
	svc := newOrderTestService(new(mockOrderRepository), new(mockCartRepository), new(mockProductRepository))
	ctx := context.Background()

	_, err := svc.UpdateStatus(ctx, "ord-1", "misplaced")

	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}
