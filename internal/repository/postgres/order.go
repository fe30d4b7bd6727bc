package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/tomeriko7/finalProject-sub000/internal/domain"
	"github.com/tomeriko7/finalProject-sub000/internal/repository"
	apperrors "github.com/tomeriko7/finalProject-sub000/pkg/errors"
)

// OrderRepository implements repository.OrderRepository using PostgreSQL.
type OrderRepository struct {
	pool DB
}

// NewOrderRepository creates a new PostgreSQL-backed order repository.
func NewOrderRepository(pool DB) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Create places the order inside a single transaction: each item's stock
// is decremented with a guard against going negative, then the order and
// its items are inserted. Any stock shortfall aborts the whole order.
func (r *OrderRepository) Create(ctx context.Context, o *domain.Order) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	now := time.Now().UTC()
	for _, item := range o.Items {
		ct, err := tx.Exec(ctx,
			`UPDATE products SET stock = stock - $2, updated_at = $3
			 WHERE id = $1 AND status = $4 AND stock >= $2`,
			item.ProductID, item.Quantity, now, domain.ProductStatusPublished,
		)
		if err != nil {
			return fmt.Errorf("decrement stock for %s: %w", item.ProductID, err)
		}

		if ct.RowsAffected() == 0 {
			var remaining int
			err := tx.QueryRow(ctx,
				`SELECT stock FROM products WHERE id = $1 AND status = $2`,
				item.ProductID, domain.ProductStatusPublished,
			).Scan(&remaining)
			if err != nil {
				if errors.Is(err, pgx.ErrNoRows) {
					return apperrors.NotFound("product", item.ProductID)
				}
				return fmt.Errorf("check stock for %s: %w", item.ProductID, err)
			}
			return apperrors.InsufficientStock(remaining, 0)
		}
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO orders (id, user_id, status, total_cents, ship_full_name, ship_address_line, ship_city, ship_postal_code, ship_country, ship_phone, notes, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		o.ID,
		o.UserID,
		o.Status,
		o.TotalCents,
		o.ShippingAddress.FullName,
		o.ShippingAddress.AddressLine,
		o.ShippingAddress.City,
		o.ShippingAddress.PostalCode,
		o.ShippingAddress.Country,
		o.ShippingAddress.Phone,
		o.Notes,
		o.CreatedAt,
		o.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	for _, item := range o.Items {
		_, err = tx.Exec(ctx,
			`INSERT INTO order_items (order_id, product_id, name, price_cents, quantity)
			 VALUES ($1, $2, $3, $4, $5)`,
			o.ID, item.ProductID, item.Name, item.PriceCents, item.Quantity,
		)
		if err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

const orderColumns = `id, user_id, status, total_cents, ship_full_name, ship_address_line, ship_city, ship_postal_code, ship_country, ship_phone, notes, created_at, updated_at`

// GetByID retrieves an order with its items.
func (r *OrderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	var o domain.Order
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&o.ID,
		&o.UserID,
		&o.Status,
		&o.TotalCents,
		&o.ShippingAddress.FullName,
		&o.ShippingAddress.AddressLine,
		&o.ShippingAddress.City,
		&o.ShippingAddress.PostalCode,
		&o.ShippingAddress.Country,
		&o.ShippingAddress.Phone,
		&o.Notes,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan order: %w", err)
	}

	items, err := r.loadItems(ctx, id)
	if err != nil {
		return nil, err
	}
	o.Items = items

	return &o, nil
}

// List returns orders matching the filter, newest first, with the total
// count. Items are loaded per order.
func (r *OrderRepository) List(ctx context.Context, filter repository.OrderFilter) ([]domain.Order, int, error) {
	var conditions []string
	var args []any

	if filter.UserID != "" {
		args = append(args, filter.UserID)
		conditions = append(conditions, fmt.Sprintf("user_id = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	countQuery := `SELECT COUNT(*) FROM orders` + where
	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count orders: %w", err)
	}

	offset := (filter.Page - 1) * filter.PerPage
	query := fmt.Sprintf(
		`SELECT %s FROM orders%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		orderColumns, where, len(args)+1, len(args)+2,
	)
	args = append(args, filter.PerPage, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		var o domain.Order
		if err := rows.Scan(
			&o.ID,
			&o.UserID,
			&o.Status,
			&o.TotalCents,
			&o.ShippingAddress.FullName,
			&o.ShippingAddress.AddressLine,
			&o.ShippingAddress.City,
			&o.ShippingAddress.PostalCode,
			&o.ShippingAddress.Country,
			&o.ShippingAddress.Phone,
			&o.Notes,
			&o.CreatedAt,
			&o.UpdatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("scan order row: %w", err)
		}
		orders = append(orders, o)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate order rows: %w", err)
	}

	for i := range orders {
		items, err := r.loadItems(ctx, orders[i].ID)
		if err != nil {
			return nil, 0, err
		}
		orders[i].Items = items
	}

	if orders == nil {
		orders = []domain.Order{}
	}

	return orders, total, nil
}

// UpdateStatus sets the order status.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id, status string) error {
	query := `UPDATE orders SET status = $1, updated_at = $2 WHERE id = $3`

	ct, err := r.pool.Exec(ctx, query, status, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("order", id)
	}

	return nil
}

func (r *OrderRepository) loadItems(ctx context.Context, orderID string) ([]domain.OrderItem, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT product_id, name, price_cents, quantity FROM order_items WHERE order_id = $1`,
		orderID,
	)
	if err != nil {
		return nil, fmt.Errorf("query order items: %w", err)
	}
	defer rows.Close()

	var items []domain.OrderItem
	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(&item.ProductID, &item.Name, &item.PriceCents, &item.Quantity); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order item rows: %w", err)
	}

	if items == nil {
		items = []domain.OrderItem{}
	}

	return items, nil
}
