package event

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/tomeriko7/finalProject-sub000/internal/domain"
	pkgkafka "github.com/tomeriko7/finalProject-sub000/pkg/kafka"
	"github.com/tomeriko7/finalProject-sub000/pkg/logger"
)

// source identifies this service in event envelopes.
const source = "storefront"

// Kafka topics published by the storefront.
var (
	TopicUserRegistered     = pkgkafka.Topic("user", "registered")
	TopicProductCreated     = pkgkafka.Topic("product", "created")
	TopicProductUpdated     = pkgkafka.Topic("product", "updated")
	TopicCartUpdated        = pkgkafka.Topic("cart", "updated")
	TopicCartSynced         = pkgkafka.Topic("cart", "synced")
	TopicOrderPlaced        = pkgkafka.Topic("order", "placed")
	TopicOrderStatusChanged = pkgkafka.Topic("order", "status_changed")
)

// --- Event payloads ---

// UserRegisteredPayload is the data for user.registered events.
type UserRegisteredPayload struct {
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	CreatedAt time.Time `json:"created_at"`
}

// ProductPayload is the data for product.created and product.updated events.
type ProductPayload struct {
	ProductID  string `json:"product_id"`
	Name       string `json:"name"`
	Slug       string `json:"slug"`
	Category   string `json:"category"`
	PriceCents int64  `json:"price_cents"`
	Stock      int    `json:"stock"`
	Status     string `json:"status"`
}

// CartUpdatedPayload is the data for cart.updated events.
type CartUpdatedPayload struct {
	UserID     string `json:"user_id"`
	LineCount  int    `json:"line_count"`
	TotalItems int    `json:"total_items"`
}

// CartSyncedPayload is the data for cart.synced events, emitted when a
// guest cart replaces the account cart at login.
type CartSyncedPayload struct {
	UserID        string `json:"user_id"`
	LinesAccepted int    `json:"lines_accepted"`
	LinesDropped  int    `json:"lines_dropped"`
}

// OrderPlacedPayload is the data for order.placed events.
type OrderPlacedPayload struct {
	OrderID    string `json:"order_id"`
	UserID     string `json:"user_id"`
	ItemCount  int    `json:"item_count"`
	TotalCents int64  `json:"total_cents"`
}

// OrderStatusChangedPayload is the data for order.status_changed events.
type OrderStatusChangedPayload struct {
	OrderID   string `json:"order_id"`
	UserID    string `json:"user_id"`
	OldStatus string `json:"old_status"`
	NewStatus string `json:"new_status"`
}

// Producer publishes storefront domain events to Kafka.
type Producer struct {
	producer *pkgkafka.Producer
	logger   *slog.Logger
}

// NewProducer creates a new domain event producer.
func NewProducer(producer *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{producer: producer, logger: logger}
}

// PublishUserRegistered publishes a user.registered event.
func (p *Producer) PublishUserRegistered(ctx context.Context, user *domain.User) error {
	payload := UserRegisteredPayload{
		UserID:    user.ID,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		CreatedAt: user.CreatedAt,
	}
	return p.publish(ctx, TopicUserRegistered, "user.registered", user.ID, "user", payload)
}

// PublishProductCreated publishes a product.created event.
func (p *Producer) PublishProductCreated(ctx context.Context, product *domain.Product) error {
	return p.publish(ctx, TopicProductCreated, "product.created", product.ID, "product", productPayload(product))
}

// PublishProductUpdated publishes a product.updated event.
func (p *Producer) PublishProductUpdated(ctx context.Context, product *domain.Product) error {
	return p.publish(ctx, TopicProductUpdated, "product.updated", product.ID, "product", productPayload(product))
}

// PublishCartUpdated publishes a cart.updated event.
func (p *Producer) PublishCartUpdated(ctx context.Context, cart *domain.Cart) error {
	payload := CartUpdatedPayload{
		UserID:     cart.UserID,
		LineCount:  len(cart.Lines),
		TotalItems: cart.TotalQuantity(),
	}
	return p.publish(ctx, TopicCartUpdated, "cart.updated", cart.UserID, "cart", payload)
}

// PublishCartSynced publishes a cart.synced event.
func (p *Producer) PublishCartSynced(ctx context.Context, userID string, accepted, dropped int) error {
	payload := CartSyncedPayload{
		UserID:        userID,
		LinesAccepted: accepted,
		LinesDropped:  dropped,
	}
	return p.publish(ctx, TopicCartSynced, "cart.synced", userID, "cart", payload)
}

// PublishOrderPlaced publishes an order.placed event.
func (p *Producer) PublishOrderPlaced(ctx context.Context, order *domain.Order) error {
	payload := OrderPlacedPayload{
		OrderID:    order.ID,
		UserID:     order.UserID,
		ItemCount:  len(order.Items),
		TotalCents: order.TotalCents,
	}
	return p.publish(ctx, TopicOrderPlaced, "order.placed", order.ID, "order", payload)
}

// PublishOrderStatusChanged publishes an order.status_changed event.
func (p *Producer) PublishOrderStatusChanged(ctx context.Context, order *domain.Order, oldStatus string) error {
	payload := OrderStatusChangedPayload{
		OrderID:   order.ID,
		UserID:    order.UserID,
		OldStatus: oldStatus,
		NewStatus: order.Status,
	}
	return p.publish(ctx, TopicOrderStatusChanged, "order.status_changed", order.ID, "order", payload)
}

func (p *Producer) publish(ctx context.Context, topic, eventType, aggregateID, aggregateType string, data any) error {
	event, err := pkgkafka.NewEvent(eventType, aggregateID, aggregateType, source, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", eventType, err)
	}

	if correlationID := logger.CorrelationIDFromContext(ctx); correlationID != "" {
		event.WithCorrelationID(correlationID)
	}

	if err := p.producer.Publish(ctx, topic, event); err != nil {
		return fmt.Errorf("publish %s event: %w", eventType, err)
	}

	p.logger.DebugContext(ctx, "domain event published",
		slog.String("topic", topic),
		slog.String("event_type", eventType),
		slog.String("aggregate_id", aggregateID),
	)

	return nil
}

func productPayload(product *domain.Product) ProductPayload {
	return ProductPayload{
		ProductID:  product.ID,
		Name:       product.Name,
		Slug:       product.Slug,
		Category:   product.Category,
		PriceCents: product.PriceCents,
		Stock:      product.Stock,
		Status:     product.Status,
	}
}
