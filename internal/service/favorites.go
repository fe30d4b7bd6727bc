package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/tomeriko7/finalProject-sub000/internal/domain"
	"github.com/tomeriko7/finalProject-sub000/internal/repository"
	apperrors "github.com/tomeriko7/finalProject-sub000/pkg/errors"
	"github.com/tomeriko7/finalProject-sub000/pkg/pagination"
)

// FavoritesService implements the business logic for authenticated
// favorites, backed by Postgres.
type FavoritesService struct {
	favoriteRepo repository.FavoriteRepository
	productRepo  repository.ProductRepository
	logger       *slog.Logger
}

// NewFavoritesService creates a new favorites service.
func NewFavoritesService(
	favoriteRepo repository.FavoriteRepository,
	productRepo repository.ProductRepository,
	logger *slog.Logger,
) *FavoritesService {
	return &FavoritesService{
		favoriteRepo: favoriteRepo,
		productRepo:  productRepo,
		logger:       logger,
	}
}

// List returns the user's favorites resolved against the live catalog.
// Entries whose product has vanished or is unpublished are omitted.
func (s *FavoritesService) List(ctx context.Context, userID string, params pagination.Params) (*pagination.Result[domain.ResolvedFavorite], error) {
	entries, total, err := s.favoriteRepo.List(ctx, userID, params.Page, params.PerPage)
	if err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}

	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.ProductID)
	}

	products, err := s.productRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("resolve favorite products: %w", err)
	}

	byID := make(map[string]domain.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	resolved := make([]domain.ResolvedFavorite, 0, len(entries))
	for _, e := range entries {
		product, ok := byID[e.ProductID]
		if !ok || !product.IsPurchasable() {
			continue
		}
		resolved = append(resolved, domain.ResolvedFavorite{
			ProductID:  e.ProductID,
			Name:       product.Name,
			Slug:       product.Slug,
			PriceCents: product.PriceCents,
			ImageURL:   product.ImageURL,
			Stock:      product.Stock,
			AddedAt:    e.AddedAt,
		})
	}

	result := pagination.NewResult(resolved, total, params)
	return &result, nil
}

// Add favorites a product for the user. Fails when the product does not
// exist or is already favorited.
func (s *FavoritesService) Add(ctx context.Context, userID, productID string) error {
	if _, err := s.lookupProduct(ctx, productID); err != nil {
		return err
	}

	if err := s.favoriteRepo.Add(ctx, userID, productID); err != nil {
		return fmt.Errorf("add favorite: %w", err)
	}

	s.logger.InfoContext(ctx, "favorite added",
		slog.String("user_id", userID),
		slog.String("product_id", productID),
	)

	return nil
}

// Remove unfavorites a product. Fails when the product is not favorited.
func (s *FavoritesService) Remove(ctx context.Context, userID, productID string) error {
	if err := s.favoriteRepo.Remove(ctx, userID, productID); err != nil {
		return fmt.Errorf("remove favorite: %w", err)
	}

	s.logger.InfoContext(ctx, "favorite removed",
		slog.String("user_id", userID),
		slog.String("product_id", productID),
	)

	return nil
}

// Toggle flips a product's favorite membership and returns the resulting
// state. Toggling twice always restores the original state.
func (s *FavoritesService) Toggle(ctx context.Context, userID, productID string) (bool, error) {
	exists, err := s.favoriteRepo.Exists(ctx, userID, productID)
	if err != nil {
		return false, fmt.Errorf("check favorite: %w", err)
	}

	if exists {
		if err := s.favoriteRepo.Remove(ctx, userID, productID); err != nil {
			// A concurrent remove already won; the end state matches.
			if errors.Is(err, apperrors.ErrNotFound) {
				return false, nil
			}
			return false, fmt.Errorf("remove favorite: %w", err)
		}
		return false, nil
	}

	if _, err := s.lookupProduct(ctx, productID); err != nil {
		return false, err
	}

	if err := s.favoriteRepo.Add(ctx, userID, productID); err != nil {
		if errors.Is(err, apperrors.ErrAlreadyExists) {
			return true, nil
		}
		return false, fmt.Errorf("add favorite: %w", err)
	}

	return true, nil
}

// Clear removes all favorites for the user.
func (s *FavoritesService) Clear(ctx context.Context, userID string) error {
	if err := s.favoriteRepo.Clear(ctx, userID); err != nil {
		return fmt.Errorf("clear favorites: %w", err)
	}

	s.logger.InfoContext(ctx, "favorites cleared", slog.String("user_id", userID))
	return nil
}

func (s *FavoritesService) lookupProduct(ctx context.Context, productID string) (*domain.Product, error) {
	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("product", productID)
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	if !product.IsPurchasable() {
		return nil, apperrors.NotFound("product", productID)
	}
	return product, nil
}
