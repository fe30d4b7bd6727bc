package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/tomeriko7/finalProject-sub000/internal/domain"
	"github.com/tomeriko7/finalProject-sub000/internal/repository"
	apperrors "github.com/tomeriko7/finalProject-sub000/pkg/errors"
)

// GuestService implements the guest holding area: the same cart and
// favorites mutators as the authenticated path, but backed by Redis
// snapshots keyed by a client-held guest token. Snapshots are captured
// at add time and never refreshed; stock checks run against the stored
// snapshot, not the live catalog. Every mutation rewrites the full
// collection.
type GuestService struct {
	guestRepo   repository.GuestStateRepository
	productRepo repository.ProductRepository
	logger      *slog.Logger
}

// NewGuestService creates a new guest service.
func NewGuestService(
	guestRepo repository.GuestStateRepository,
	productRepo repository.ProductRepository,
	logger *slog.Logger,
) *GuestService {
	return &GuestService{
		guestRepo:   guestRepo,
		productRepo: productRepo,
		logger:      logger,
	}
}

// GetCart returns the guest's cart lines.
func (s *GuestService) GetCart(ctx context.Context, token string) ([]domain.GuestCartLine, error) {
	lines, err := s.guestRepo.GetCart(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("get guest cart: %w", err)
	}
	return lines, nil
}

// AddItem adds a product to the guest cart, capturing a product snapshot
// at call time. Adding a product already present increments the existing
// line and validates against the stock recorded when it was first added.
func (s *GuestService) AddItem(ctx context.Context, token, productID string, quantity int) ([]domain.GuestCartLine, error) {
	if quantity <= 0 {
		return nil, apperrors.InvalidInput("quantity must be at least 1")
	}
	if quantity > MaxQuantityPerItem {
		return nil, apperrors.InvalidInput(fmt.Sprintf("quantity must not exceed %d", MaxQuantityPerItem))
	}

	lines, err := s.guestRepo.GetCart(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("get guest cart: %w", err)
	}

	idx := domain.FindGuestCartLine(lines, productID)
	if idx >= 0 {
		line := &lines[idx]
		if line.Quantity+quantity > line.StockAtAdd {
			remaining := line.StockAtAdd - line.Quantity
			if remaining < 0 {
				remaining = 0
			}
			return nil, apperrors.InsufficientStock(remaining, line.Quantity)
		}
		line.Quantity += quantity
	} else {
		product, err := s.lookupProduct(ctx, productID)
		if err != nil {
			return nil, err
		}
		if quantity > product.Stock {
			return nil, apperrors.InsufficientStock(product.Stock, 0)
		}
		if len(lines) >= MaxItemsPerCart {
			return nil, apperrors.InvalidInput(fmt.Sprintf("cart cannot hold more than %d distinct products", MaxItemsPerCart))
		}
		lines = append(lines, domain.GuestCartLine{
			ProductID:  productID,
			Name:       product.Name,
			PriceCents: product.PriceCents,
			ImageURL:   product.ImageURL,
			StockAtAdd: product.Stock,
			Quantity:   quantity,
			AddedAt:    time.Now().UTC(),
		})
	}

	if err := s.guestRepo.SaveCart(ctx, token, lines); err != nil {
		return nil, fmt.Errorf("save guest cart: %w", err)
	}

	return lines, nil
}

// UpdateQuantity sets the quantity of a guest cart line. Zero or less
// removes the line. Updating a product that is not in the cart is a
// no-op; the guest path never surfaces missing-line errors.
func (s *GuestService) UpdateQuantity(ctx context.Context, token, productID string, quantity int) ([]domain.GuestCartLine, error) {
	if quantity > MaxQuantityPerItem {
		return nil, apperrors.InvalidInput(fmt.Sprintf("quantity must not exceed %d", MaxQuantityPerItem))
	}

	lines, err := s.guestRepo.GetCart(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("get guest cart: %w", err)
	}

	idx := domain.FindGuestCartLine(lines, productID)
	if idx < 0 {
		return lines, nil
	}

	if quantity <= 0 {
		lines = append(lines[:idx], lines[idx+1:]...)
	} else {
		line := &lines[idx]
		if quantity > line.StockAtAdd {
			return nil, apperrors.InsufficientStock(line.StockAtAdd, line.Quantity)
		}
		line.Quantity = quantity
	}

	if err := s.guestRepo.SaveCart(ctx, token, lines); err != nil {
		return nil, fmt.Errorf("save guest cart: %w", err)
	}

	return lines, nil
}

// Remove deletes a product from the guest cart. Removing an absent
// product is a no-op.
func (s *GuestService) Remove(ctx context.Context, token, productID string) ([]domain.GuestCartLine, error) {
	lines, err := s.guestRepo.GetCart(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("get guest cart: %w", err)
	}

	idx := domain.FindGuestCartLine(lines, productID)
	if idx < 0 {
		return lines, nil
	}

	lines = append(lines[:idx], lines[idx+1:]...)

	if err := s.guestRepo.SaveCart(ctx, token, lines); err != nil {
		return nil, fmt.Errorf("save guest cart: %w", err)
	}

	return lines, nil
}

// ClearCart empties the guest cart.
func (s *GuestService) ClearCart(ctx context.Context, token string) error {
	if err := s.guestRepo.SaveCart(ctx, token, []domain.GuestCartLine{}); err != nil {
		return fmt.Errorf("clear guest cart: %w", err)
	}
	return nil
}

// ListFavorites returns the guest's favorites and the per-product
// quantity map.
func (s *GuestService) ListFavorites(ctx context.Context, token string) ([]domain.GuestFavorite, map[string]int, error) {
	favorites, err := s.guestRepo.GetFavorites(ctx, token)
	if err != nil {
		return nil, nil, fmt.Errorf("get guest favorites: %w", err)
	}

	quantities, err := s.guestRepo.GetFavoritesQuantity(ctx, token)
	if err != nil {
		return nil, nil, fmt.Errorf("get guest favorite quantities: %w", err)
	}

	return favorites, quantities, nil
}

// ToggleFavorite flips a product's favorite membership and returns the
// resulting state. Toggling on captures a snapshot and seeds the
// quantity map with 1; toggling off drops both.
func (s *GuestService) ToggleFavorite(ctx context.Context, token, productID string) (bool, error) {
	favorites, err := s.guestRepo.GetFavorites(ctx, token)
	if err != nil {
		return false, fmt.Errorf("get guest favorites: %w", err)
	}

	quantities, err := s.guestRepo.GetFavoritesQuantity(ctx, token)
	if err != nil {
		return false, fmt.Errorf("get guest favorite quantities: %w", err)
	}

	idx := domain.FindGuestFavorite(favorites, productID)
	isFavorite := idx < 0

	if isFavorite {
		product, err := s.lookupProduct(ctx, productID)
		if err != nil {
			return false, err
		}
		favorites = append(favorites, domain.GuestFavorite{
			ProductID:  productID,
			Name:       product.Name,
			Slug:       product.Slug,
			PriceCents: product.PriceCents,
			ImageURL:   product.ImageURL,
			AddedAt:    time.Now().UTC(),
		})
		quantities[productID] = 1
	} else {
		favorites = append(favorites[:idx], favorites[idx+1:]...)
		delete(quantities, productID)
	}

	if err := s.guestRepo.SaveFavorites(ctx, token, favorites); err != nil {
		return false, fmt.Errorf("save guest favorites: %w", err)
	}
	if err := s.guestRepo.SaveFavoritesQuantity(ctx, token, quantities); err != nil {
		return false, fmt.Errorf("save guest favorite quantities: %w", err)
	}

	return isFavorite, nil
}

// SetFavoriteQuantity updates the quantity associated with a favorited
// product. Quantities for products that are not favorited are ignored.
func (s *GuestService) SetFavoriteQuantity(ctx context.Context, token, productID string, quantity int) (map[string]int, error) {
	favorites, err := s.guestRepo.GetFavorites(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("get guest favorites: %w", err)
	}

	quantities, err := s.guestRepo.GetFavoritesQuantity(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("get guest favorite quantities: %w", err)
	}

	if domain.FindGuestFavorite(favorites, productID) < 0 {
		return quantities, nil
	}

	if quantity <= 0 {
		delete(quantities, productID)
	} else {
		quantities[productID] = quantity
	}

	if err := s.guestRepo.SaveFavoritesQuantity(ctx, token, quantities); err != nil {
		return nil, fmt.Errorf("save guest favorite quantities: %w", err)
	}

	return quantities, nil
}

func (s *GuestService) lookupProduct(ctx context.Context, productID string) (*domain.Product, error) {
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
