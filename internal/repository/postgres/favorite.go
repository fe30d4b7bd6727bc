package postgres

import (
	"context"
	"fmt"

	"github.com/tomeriko7/finalProject-sub000/internal/domain"
	apperrors "github.com/tomeriko7/finalProject-sub000/pkg/errors"
)

// FavoriteRepository implements repository.FavoriteRepository using PostgreSQL.
type FavoriteRepository struct {
	pool DB
}

// NewFavoriteRepository creates a new PostgreSQL-backed favorite repository.
func NewFavoriteRepository(pool DB) *FavoriteRepository {
	return &FavoriteRepository{pool: pool}
}

// Add inserts a favorite for the user. ON CONFLICT DO NOTHING lets the
// row count tell duplicates apart from successful inserts.
func (r *FavoriteRepository) Add(ctx context.Context, userID, productID string) error {
	query := `
		INSERT INTO favorites (user_id, product_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, product_id) DO NOTHING`

	ct, err := r.pool.Exec(ctx, query, userID, productID)
	if err != nil {
		return fmt.Errorf("add favorite: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.AlreadyExists("favorite", "product", productID)
	}

	return nil
}

// Remove deletes a favorite for the user.
func (r *FavoriteRepository) Remove(ctx context.Context, userID, productID string) error {
	query := `DELETE FROM favorites WHERE user_id = $1 AND product_id = $2`

	ct, err := r.pool.Exec(ctx, query, userID, productID)
	if err != nil {
		return fmt.Errorf("remove favorite: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("favorite", productID)
	}

	return nil
}

// List returns the user's favorites newest first, with the total count.
func (r *FavoriteRepository) List(ctx context.Context, userID string, page, perPage int) ([]domain.FavoriteEntry, int, error) {
	countQuery := `SELECT COUNT(*) FROM favorites WHERE user_id = $1`

	var total int
	if err := r.pool.QueryRow(ctx, countQuery, userID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count favorites: %w", err)
	}

	offset := (page - 1) * perPage
	query := `
		SELECT user_id, product_id, added_at
		FROM favorites
		WHERE user_id = $1
		ORDER BY added_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.pool.Query(ctx, query, userID, perPage, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list favorites: %w", err)
	}
	defer rows.Close()

	var entries []domain.FavoriteEntry
	for rows.Next() {
		var e domain.FavoriteEntry
		if err := rows.Scan(&e.UserID, &e.ProductID, &e.AddedAt); err != nil {
			return nil, 0, fmt.Errorf("scan favorite: %w", err)
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate favorite rows: %w", err)
	}

	if entries == nil {
		entries = []domain.FavoriteEntry{}
	}

	return entries, total, nil
}

// Exists checks whether a product is favorited by the user.
func (r *FavoriteRepository) Exists(ctx context.Context, userID, productID string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM favorites WHERE user_id = $1 AND product_id = $2)`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, userID, productID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check favorite exists: %w", err)
	}

	return exists, nil
}

// Clear removes all favorites for the user.
func (r *FavoriteRepository) Clear(ctx context.Context, userID string) error {
	query := `DELETE FROM favorites WHERE user_id = $1`

	if _, err := r.pool.Exec(ctx, query, userID); err != nil {
		return fmt.Errorf("clear favorites: %w", err)
	}

	return nil
}
