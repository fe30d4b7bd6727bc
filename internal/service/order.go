package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/tomeriko7/finalProject-sub000/internal/domain"
	"github.com/tomeriko7/finalProject-sub000/internal/event"
	"github.com/tomeriko7/finalProject-sub000/internal/repository"
	apperrors "github.com/tomeriko7/finalProject-sub000/pkg/errors"
	"github.com/tomeriko7/finalProject-sub000/pkg/pagination"
)

// OrderService implements checkout and order management.
type OrderService struct {
	orderRepo   repository.OrderRepository
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
	producer    *event.Producer
	logger      *slog.Logger
}

// NewOrderService creates a new order service.
func NewOrderService(
	orderRepo repository.OrderRepository,
	cartRepo repository.CartRepository,
	productRepo repository.ProductRepository,
	producer *event.Producer,
	logger *slog.Logger,
) *OrderService {
	return &OrderService{
		orderRepo:   orderRepo,
		cartRepo:    cartRepo,
		productRepo: productRepo,
		producer:    producer,
		logger:      logger,
	}
}

// PlaceOrderInput holds the checkout parameters.
type PlaceOrderInput struct {
	ShippingAddress domain.Address
	Notes           string
}

// PlaceOrder creates an order from the user's cart. Item prices are
// snapshotted from the live catalog; stock is re-validated and
// decremented atomically inside the order transaction. The cart is
// cleared only after the order is committed.
func (s *OrderService) PlaceOrder(ctx context.Context, userID string, input PlaceOrderInput) (*domain.Order, error) {
	if input.ShippingAddress.FullName == "" {
		return nil, apperrors.InvalidInput("shipping full name is required")
	}
	if input.ShippingAddress.AddressLine == "" {
		return nil, apperrors.InvalidInput("shipping address is required")
	}
	if input.ShippingAddress.City == "" {
		return nil, apperrors.InvalidInput("shipping city is required")
	}
	if input.ShippingAddress.Country == "" {
		return nil, apperrors.InvalidInput("shipping country is required")
	}

	cart, err := s.cartRepo.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.InvalidInput("cart is empty")
		}
		return nil, fmt.Errorf("get cart for checkout: %w", err)
	}
	if len(cart.Lines) == 0 {
		return nil, apperrors.InvalidInput("cart is empty")
	}

	items, total, err := s.buildOrderItems(ctx, cart)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, apperrors.InvalidInput("cart holds no purchasable products")
	}

	now := time.Now().UTC()
	order := &domain.Order{
		ID:              uuid.New().String(),
		UserID:          userID,
		Status:          domain.OrderStatusPending,
		Items:           items,
		TotalCents:      total,
		ShippingAddress: input.ShippingAddress,
		Notes:           input.Notes,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.orderRepo.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("place order: %w", err)
	}

	// The order is committed; a cart that fails to clear leaves stale
	// lines, never a lost order.
	if err := s.cartRepo.Delete(ctx, userID); err != nil {
		s.logger.ErrorContext(ctx, "failed to clear cart after checkout",
			slog.String("user_id", userID),
			slog.String("order_id", order.ID),
			slog.String("error", err.Error()),
		)
	}

	if err := s.producer.PublishOrderPlaced(ctx, order); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish order.placed event",
			slog.String("order_id", order.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "order placed",
		slog.String("order_id", order.ID),
		slog.String("user_id", userID),
		slog.Int64("total_cents", order.TotalCents),
	)

	return order, nil
}

// ListOrders returns the user's own orders, newest first.
func (s *OrderService) ListOrders(ctx context.Context, userID string, params pagination.Params) (*pagination.Result[domain.Order], error) {
	orders, total, err := s.orderRepo.List(ctx, repository.OrderFilter{
		UserID:  userID,
		Page:    params.Page,
		PerPage: params.PerPage,
	})
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}

	result := pagination.NewResult(orders, total, params)
	return &result, nil
}

// GetOrder returns one of the user's own orders. Other users' orders
// read as not found, never as forbidden, to avoid leaking order IDs.
func (s *OrderService) GetOrder(ctx context.Context, userID, orderID string) (*domain.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("order", orderID)
		}
		return nil, fmt.Errorf("get order: %w", err)
	}

	if order.UserID != userID {
		return nil, apperrors.NotFound("order", orderID)
	}

	return order, nil
}

// --- Admin operations ---

// AdminListOrders returns orders across all users, optionally filtered
// by status.
func (s *OrderService) AdminListOrders(ctx context.Context, status string, params pagination.Params) (*pagination.Result[domain.Order], error) {
	if status != "" && !domain.IsValidOrderStatus(status) {
		return nil, apperrors.InvalidInput(fmt.Sprintf("invalid order status %q", status))
	}

	orders, total, err := s.orderRepo.List(ctx, repository.OrderFilter{
		Status:  status,
		Page:    params.Page,
		PerPage: params.PerPage,
	})
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}

	result := pagination.NewResult(orders, total, params)
	return &result, nil
}

// AdminGetOrder returns any order by ID.
func (s *OrderService) AdminGetOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("order", orderID)
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	return order, nil
}

// UpdateStatus transitions an order to a new status, enforcing the
// transition matrix.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID, status string) (*domain.Order, error) {
	if !domain.IsValidOrderStatus(status) {
		return nil, apperrors.InvalidInput(fmt.Sprintf("invalid order status %q", status))
	}

	order, err := s.AdminGetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if !order.CanTransitionTo(status) {
		return nil, apperrors.Conflict(
			fmt.Sprintf("order cannot transition from %s to %s", order.Status, status),
		)
	}

	if err := s.orderRepo.UpdateStatus(ctx, orderID, status); err != nil {
		return nil, fmt.Errorf("update order status: %w", err)
	}

	oldStatus := order.Status
	order.Status = status
	order.UpdatedAt = time.Now().UTC()

	if err := s.producer.PublishOrderStatusChanged(ctx, order, oldStatus); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish order.status_changed event",
			slog.String("order_id", orderID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "order status updated",
		slog.String("order_id", orderID),
		slog.String("old_status", oldStatus),
		slog.String("new_status", status),
	)

	return order, nil
}

// buildOrderItems snapshots the cart lines against the live catalog.
// Lines whose product vanished or is unpublished are skipped, matching
// the resolved cart view the shopper just saw.
func (s *OrderService) buildOrderItems(ctx context.Context, cart *domain.Cart) ([]domain.OrderItem, int64, error) {
	ids := make([]string, 0, len(cart.Lines))
	for _, line := range cart.Lines {
		ids = append(ids, line.ProductID)
	}

	products, err := s.productRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, 0, fmt.Errorf("resolve checkout products: %w", err)
	}

	byID := make(map[string]domain.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	var items []domain.OrderItem
	var total int64
	for _, line := range cart.Lines {
		product, ok := byID[line.ProductID]
		if !ok || !product.IsPurchasable() {
			continue
		}
		items = append(items, domain.OrderItem{
			ProductID:  line.ProductID,
			Name:       product.Name,
			PriceCents: product.PriceCents,
			Quantity:   line.Quantity,
		})
		total += product.PriceCents * int64(line.Quantity)
	}

	return items, total, nil
}
