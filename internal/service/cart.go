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
)

// Cart limits.
const (
	MaxQuantityPerItem = 100
	MaxItemsPerCart    = 50
)

// CartService implements the business logic for the authoritative
// per-user cart.
type CartService struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
	producer    *event.Producer
	logger      *slog.Logger
}

// NewCartService creates a new cart service.
func NewCartService(
	cartRepo repository.CartRepository,
	productRepo repository.ProductRepository,
	producer *event.Producer,
	logger *slog.Logger,
) *CartService {
	return &CartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
		producer:    producer,
		logger:      logger,
	}
}

// SyncLine is one incoming guest cart line for Sync.
type SyncLine struct {
	ProductID string
	Quantity  int
}

// GetCart returns the user's cart resolved against the live catalog.
// Lines whose product has vanished or is unpublished are omitted from
// the view but stay in storage.
func (s *CartService) GetCart(ctx context.Context, userID string) (*domain.ResolvedCart, error) {
	cart, err := s.getOrCreateCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.resolve(ctx, cart)
}

// AddItem adds a product to the cart. Adding a product already in the
// cart increments the existing line's quantity and preserves its AddedAt.
func (s *CartService) AddItem(ctx context.Context, userID, productID string, quantity int) (*domain.ResolvedCart, error) {
	if quantity <= 0 {
		return nil, apperrors.InvalidInput("quantity must be at least 1")
	}
	if quantity > MaxQuantityPerItem {
		return nil, apperrors.InvalidInput(fmt.Sprintf("quantity must not exceed %d", MaxQuantityPerItem))
	}

	product, err := s.getPurchasableProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	cart, err := s.getOrCreateCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	idx := cart.FindLineByProduct(productID)
	inCart := 0
	if idx >= 0 {
		inCart = cart.Lines[idx].Quantity
	}

	if inCart+quantity > product.Stock {
		remaining := product.Stock - inCart
		if remaining < 0 {
			remaining = 0
		}
		return nil, apperrors.InsufficientStock(remaining, inCart)
	}

	if idx >= 0 {
		cart.Lines[idx].Quantity += quantity
	} else {
		if len(cart.Lines) >= MaxItemsPerCart {
			return nil, apperrors.InvalidInput(fmt.Sprintf("cart cannot hold more than %d distinct products", MaxItemsPerCart))
		}
		cart.Lines = append(cart.Lines, domain.CartLine{
			ID:        uuid.New().String(),
			ProductID: productID,
			Quantity:  quantity,
			AddedAt:   time.Now().UTC(),
		})
	}

	if err := s.cartRepo.Save(ctx, cart); err != nil {
		return nil, fmt.Errorf("save cart: %w", err)
	}

	s.publishCartUpdated(ctx, cart)

	return s.resolve(ctx, cart)
}

// UpdateQuantity sets the quantity of an existing line. A quantity of
// zero or less removes the line, exactly as Remove would.
func (s *CartService) UpdateQuantity(ctx context.Context, userID, lineID string, quantity int) (*domain.ResolvedCart, error) {
	if quantity > MaxQuantityPerItem {
		return nil, apperrors.InvalidInput(fmt.Sprintf("quantity must not exceed %d", MaxQuantityPerItem))
	}

	cart, err := s.getOrCreateCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	idx := cart.FindLine(lineID)
	if idx < 0 {
		return nil, apperrors.NotFound("cart line", lineID)
	}

	if quantity <= 0 {
		cart.RemoveLineAt(idx)
	} else {
		product, err := s.getPurchasableProduct(ctx, cart.Lines[idx].ProductID)
		if err != nil {
			return nil, err
		}
		if quantity > product.Stock {
			return nil, apperrors.InsufficientStock(product.Stock, cart.Lines[idx].Quantity)
		}
		cart.Lines[idx].Quantity = quantity
	}

	if err := s.cartRepo.Save(ctx, cart); err != nil {
		return nil, fmt.Errorf("save cart: %w", err)
	}

	s.publishCartUpdated(ctx, cart)

	return s.resolve(ctx, cart)
}

// Remove deletes a line from the cart.
func (s *CartService) Remove(ctx context.Context, userID, lineID string) (*domain.ResolvedCart, error) {
	cart, err := s.getOrCreateCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	idx := cart.FindLine(lineID)
	if idx < 0 {
		return nil, apperrors.NotFound("cart line", lineID)
	}

	cart.RemoveLineAt(idx)

	if err := s.cartRepo.Save(ctx, cart); err != nil {
		return nil, fmt.Errorf("save cart: %w", err)
	}

	s.publishCartUpdated(ctx, cart)

	return s.resolve(ctx, cart)
}

// Clear empties the user's cart unconditionally.
func (s *CartService) Clear(ctx context.Context, userID string) error {
	if err := s.cartRepo.Delete(ctx, userID); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}

	s.publishCartUpdated(ctx, &domain.Cart{UserID: userID})

	s.logger.InfoContext(ctx, "cart cleared", slog.String("user_id", userID))
	return nil
}

// Sync replaces the entire cart with the given lines. Each line is
// validated against product existence, published status, per-item limits,
// and live stock; invalid lines are silently dropped and counted.
// Duplicate products in the input are merged first. The replace is
// destructive: whatever the cart held before is gone, even when the
// input is empty. Sync never fails on bad lines, only on storage errors.
func (s *CartService) Sync(ctx context.Context, userID string, lines []SyncLine) (*domain.ResolvedCart, int, error) {
	merged := make([]SyncLine, 0, len(lines))
	byProduct := make(map[string]int)
	for _, line := range lines {
		if i, ok := byProduct[line.ProductID]; ok {
			merged[i].Quantity += line.Quantity
			continue
		}
		byProduct[line.ProductID] = len(merged)
		merged = append(merged, line)
	}

	now := time.Now().UTC()
	newLines := make([]domain.CartLine, 0, len(merged))
	dropped := 0

	for _, line := range merged {
		if line.Quantity <= 0 || line.Quantity > MaxQuantityPerItem {
			dropped++
			continue
		}

		product, err := s.getPurchasableProduct(ctx, line.ProductID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				dropped++
				continue
			}
			return nil, 0, err
		}

		if line.Quantity > product.Stock {
			dropped++
			continue
		}

		if len(newLines) >= MaxItemsPerCart {
			dropped++
			continue
		}

		newLines = append(newLines, domain.CartLine{
			ID:        uuid.New().String(),
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			AddedAt:   now,
		})
	}

	cart := &domain.Cart{UserID: userID, Lines: newLines}
	if err := s.cartRepo.Save(ctx, cart); err != nil {
		return nil, 0, fmt.Errorf("save synced cart: %w", err)
	}

	if err := s.producer.PublishCartSynced(ctx, userID, len(newLines), dropped); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish cart.synced event",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "cart synced",
		slog.String("user_id", userID),
		slog.Int("accepted", len(newLines)),
		slog.Int("dropped", dropped),
	)

	resolved, err := s.resolve(ctx, cart)
	if err != nil {
		return nil, 0, err
	}
	return resolved, dropped, nil
}

// --- Helpers ---

func (s *CartService) getOrCreateCart(ctx context.Context, userID string) (*domain.Cart, error) {
	cart, err := s.cartRepo.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return &domain.Cart{UserID: userID, Lines: []domain.CartLine{}}, nil
		}
		return nil, fmt.Errorf("get cart: %w", err)
	}
	return cart, nil
}

// getPurchasableProduct loads a product and treats anything unpublished
// as not found: draft and archived products are invisible to shoppers.
func (s *CartService) getPurchasableProduct(ctx context.Context, productID string) (*domain.Product, error) {
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

func (s *CartService) resolve(ctx context.Context, cart *domain.Cart) (*domain.ResolvedCart, error) {
	ids := make([]string, 0, len(cart.Lines))
	for _, line := range cart.Lines {
		ids = append(ids, line.ProductID)
	}

	products, err := s.productRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("resolve cart products: %w", err)
	}

	byID := make(map[string]domain.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	resolved := &domain.ResolvedCart{Lines: []domain.ResolvedCartLine{}}
	for _, line := range cart.Lines {
		product, ok := byID[line.ProductID]
		if !ok || !product.IsPurchasable() {
			continue
		}
		resolved.Lines = append(resolved.Lines, domain.ResolvedCartLine{
			ID:         line.ID,
			ProductID:  line.ProductID,
			Name:       product.Name,
			PriceCents: product.PriceCents,
			ImageURL:   product.ImageURL,
			Stock:      product.Stock,
			Quantity:   line.Quantity,
			AddedAt:    line.AddedAt,
		})
		resolved.TotalItems += line.Quantity
		resolved.TotalPrice += product.PriceCents * int64(line.Quantity)
	}

	return resolved, nil
}

func (s *CartService) publishCartUpdated(ctx context.Context, cart *domain.Cart) {
	if err := s.producer.PublishCartUpdated(ctx, cart); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish cart.updated event",
			slog.String("user_id", cart.UserID),
			slog.String("error", err.Error()),
		)
	}
}
