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

const productColumns = `id, name, slug, description, category, price_cents, stock, image_url, status, created_at, updated_at`

// ProductRepository implements repository.ProductRepository using PostgreSQL.
type ProductRepository struct {
	pool DB
}

// NewProductRepository creates a new PostgreSQL-backed product repository.
func NewProductRepository(pool DB) *ProductRepository {
	return &ProductRepository{pool: pool}
}

// Create inserts a new product into the database.
func (r *ProductRepository) Create(ctx context.Context, p *domain.Product) error {
	query := `
		INSERT INTO products (id, name, slug, description, category, price_cents, stock, image_url, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := r.pool.Exec(ctx, query,
		p.ID,
		p.Name,
		p.Slug,
		p.Description,
		p.Category,
		p.PriceCents,
		p.Stock,
		p.ImageURL,
		p.Status,
		p.CreatedAt,
		p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("product", "slug", p.Slug)
		}
		return fmt.Errorf("insert product: %w", err)
	}

	return nil
}

// GetByID retrieves a product by its ID.
func (r *ProductRepository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	return r.scanProduct(ctx, query, id)
}

// GetBySlug retrieves a product by its URL slug.
func (r *ProductRepository) GetBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE slug = $1`
	return r.scanProduct(ctx, query, slug)
}

// GetByIDs retrieves all products matching the given IDs.
func (r *ProductRepository) GetByIDs(ctx context.Context, ids []string) ([]domain.Product, error) {
	if len(ids) == 0 {
		return []domain.Product{}, nil
	}

	query := `SELECT ` + productColumns + ` FROM products WHERE id = ANY($1)`

	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("query products by ids: %w", err)
	}
	defer rows.Close()

	return scanProductRows(rows)
}

// List returns products matching the filter along with the total count.
// An empty filter status restricts results to published products, which
// is what the public catalog serves; admin listings pass an explicit
// status or "all".
func (r *ProductRepository) List(ctx context.Context, filter repository.ProductFilter) ([]domain.Product, int, error) {
	where, args := buildProductWhere(filter)

	countQuery := `SELECT COUNT(*) FROM products` + where
	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}

	offset := (filter.Page - 1) * filter.PerPage
	query := fmt.Sprintf(
		`SELECT %s FROM products%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		productColumns, where, len(args)+1, len(args)+2,
	)
	args = append(args, filter.PerPage, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	products, err := scanProductRows(rows)
	if err != nil {
		return nil, 0, err
	}

	return products, total, nil
}

// Update modifies an existing product in the database.
func (r *ProductRepository) Update(ctx context.Context, p *domain.Product) error {
	p.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE products
		SET name = $1, slug = $2, description = $3, category = $4, price_cents = $5,
		    stock = $6, image_url = $7, status = $8, updated_at = $9
		WHERE id = $10`

	ct, err := r.pool.Exec(ctx, query,
		p.Name,
		p.Slug,
		p.Description,
		p.Category,
		p.PriceCents,
		p.Stock,
		p.ImageURL,
		p.Status,
		p.UpdatedAt,
		p.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("product", "slug", p.Slug)
		}
		return fmt.Errorf("update product: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("product", p.ID)
	}

	return nil
}

// Delete removes a product from the database by its ID.
func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM products WHERE id = $1`

	ct, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("product", id)
	}

	return nil
}

// AdjustStock atomically applies a stock delta and returns the new level.
func (r *ProductRepository) AdjustStock(ctx context.Context, id string, delta int) (int, error) {
	query := `
		UPDATE products
		SET stock = stock + $2, updated_at = $3
		WHERE id = $1 AND stock + $2 >= 0
		RETURNING stock`

	var stock int
	err := r.pool.QueryRow(ctx, query, id, delta, time.Now().UTC()).Scan(&stock)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Either the product is missing or the delta would go negative.
			if _, getErr := r.GetByID(ctx, id); getErr != nil {
				return 0, getErr
			}
			return 0, apperrors.Conflict("stock adjustment would drop below zero")
		}
		return 0, fmt.Errorf("adjust product stock: %w", err)
	}

	return stock, nil
}

// scanProduct executes a query expected to return a single product row.
func (r *ProductRepository) scanProduct(ctx context.Context, query string, args ...any) (*domain.Product, error) {
	var p domain.Product

	err := r.pool.QueryRow(ctx, query, args...).Scan(
		&p.ID,
		&p.Name,
		&p.Slug,
		&p.Description,
		&p.Category,
		&p.PriceCents,
		&p.Stock,
		&p.ImageURL,
		&p.Status,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan product: %w", err)
	}

	return &p, nil
}

func scanProductRows(rows pgx.Rows) ([]domain.Product, error) {
	var products []domain.Product
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(
			&p.ID,
			&p.Name,
			&p.Slug,
			&p.Description,
			&p.Category,
			&p.PriceCents,
			&p.Stock,
			&p.ImageURL,
			&p.Status,
			&p.CreatedAt,
			&p.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan product row: %w", err)
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate product rows: %w", err)
	}

	if products == nil {
		products = []domain.Product{}
	}

	return products, nil
}

// buildProductWhere assembles the WHERE clause and positional args for a
// product listing filter.
func buildProductWhere(filter repository.ProductFilter) (string, []any) {
	var conditions []string
	var args []any

	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	switch filter.Status {
	case "", domain.ProductStatusPublished:
		conditions = append(conditions, "status = "+arg(domain.ProductStatusPublished))
	case "all":
		// no status condition
	default:
		conditions = append(conditions, "status = "+arg(filter.Status))
	}

	if filter.Category != "" {
		conditions = append(conditions, "category = "+arg(filter.Category))
	}
	if filter.Search != "" {
		p := arg("%" + filter.Search + "%")
		conditions = append(conditions, fmt.Sprintf("(name ILIKE %s OR description ILIKE %s)", p, p))
	}
	if filter.MinPriceCents != nil {
		conditions = append(conditions, "price_cents >= "+arg(*filter.MinPriceCents))
	}
	if filter.MaxPriceCents != nil {
		conditions = append(conditions, "price_cents <= "+arg(*filter.MaxPriceCents))
	}

	if len(conditions) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}
