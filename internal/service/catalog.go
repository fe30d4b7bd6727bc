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
	"github.com/tomeriko7/finalProject-sub000/pkg/slug"
)

const maxPriceCents = 100_000_00

// CatalogService implements the product catalog: public reads over
// published products and the admin back-office mutations.
type CatalogService struct {
	productRepo repository.ProductRepository
	producer    *event.Producer
	logger      *slog.Logger
}

// NewCatalogService creates a new catalog service.
func NewCatalogService(
	productRepo repository.ProductRepository,
	producer *event.Producer,
	logger *slog.Logger,
) *CatalogService {
	return &CatalogService{
		productRepo: productRepo,
		producer:    producer,
		logger:      logger,
	}
}

// ListInput holds the filters for a public catalog listing.
type ListInput struct {
	Category      string
	Search        string
	MinPriceCents *int64
	MaxPriceCents *int64
}

// List returns published products matching the filters.
func (s *CatalogService) List(ctx context.Context, input ListInput, params pagination.Params) (*pagination.Result[domain.Product], error) {
	filter := repository.ProductFilter{
		Category:      input.Category,
		Search:        input.Search,
		MinPriceCents: input.MinPriceCents,
		MaxPriceCents: input.MaxPriceCents,
		Page:          params.Page,
		PerPage:       params.PerPage,
	}

	products, total, err := s.productRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	result := pagination.NewResult(products, total, params)
	return &result, nil
}

// Get returns a published product by ID. Draft and archived products are
// invisible on the public path.
func (s *CatalogService) Get(ctx context.Context, id string) (*domain.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("product", id)
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	if !product.IsPurchasable() {
		return nil, apperrors.NotFound("product", id)
	}
	return product, nil
}

// GetBySlug returns a published product by its URL slug.
func (s *CatalogService) GetBySlug(ctx context.Context, productSlug string) (*domain.Product, error) {
	product, err := s.productRepo.GetBySlug(ctx, productSlug)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("product", productSlug)
		}
		return nil, fmt.Errorf("get product by slug: %w", err)
	}
	if !product.IsPurchasable() {
		return nil, apperrors.NotFound("product", productSlug)
	}
	return product, nil
}

// --- Admin operations ---

// CreateProductInput holds the parameters for creating a product.
type CreateProductInput struct {
	Name        string
	Description string
	Category    string
	PriceCents  int64
	Stock       int
	ImageURL    string
	Status      string
}

// UpdateProductInput holds the parameters for updating a product. Nil
// fields are left unchanged.
type UpdateProductInput struct {
	Name        *string
	Description *string
	Category    *string
	PriceCents  *int64
	Stock       *int
	ImageURL    *string
	Status      *string
}

// AdminList returns products across all statuses for the back-office.
func (s *CatalogService) AdminList(ctx context.Context, status string, params pagination.Params) (*pagination.Result[domain.Product], error) {
	if status == "" {
		status = "all"
	} else if status != "all" && !domain.IsValidProductStatus(status) {
		return nil, apperrors.InvalidInput(fmt.Sprintf("invalid product status %q", status))
	}

	filter := repository.ProductFilter{
		Status:  status,
		Page:    params.Page,
		PerPage: params.PerPage,
	}

	products, total, err := s.productRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	result := pagination.NewResult(products, total, params)
	return &result, nil
}

// AdminGet returns a product regardless of status.
func (s *CatalogService) AdminGet(ctx context.Context, id string) (*domain.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("product", id)
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return product, nil
}

// CreateProduct creates a new catalog product, generating its slug from
// the name.
func (s *CatalogService) CreateProduct(ctx context.Context, input CreateProductInput) (*domain.Product, error) {
	if input.Name == "" {
		return nil, apperrors.InvalidInput("name is required")
	}
	if input.PriceCents <= 0 || input.PriceCents > maxPriceCents {
		return nil, apperrors.InvalidInput("price must be positive and within range")
	}
	if input.Stock < 0 {
		return nil, apperrors.InvalidInput("stock must not be negative")
	}

	status := input.Status
	if status == "" {
		status = domain.ProductStatusDraft
	}
	if !domain.IsValidProductStatus(status) {
		return nil, apperrors.InvalidInput(fmt.Sprintf("invalid product status %q", status))
	}

	now := time.Now().UTC()
	product := &domain.Product{
		ID:          uuid.New().String(),
		Name:        input.Name,
		Slug:        slug.Generate(input.Name),
		Description: input.Description,
		Category:    input.Category,
		PriceCents:  input.PriceCents,
		Stock:       input.Stock,
		ImageURL:    input.ImageURL,
		Status:      status,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}

	if err := s.producer.PublishProductCreated(ctx, product); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish product.created event",
			slog.String("product_id", product.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "product created",
		slog.String("product_id", product.ID),
		slog.String("slug", product.Slug),
	)

	return product, nil
}

// UpdateProduct applies partial updates to a product. Renaming a product
// regenerates its slug.
func (s *CatalogService) UpdateProduct(ctx context.Context, id string, input UpdateProductInput) (*domain.Product, error) {
	product, err := s.AdminGet(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		if *input.Name == "" {
			return nil, apperrors.InvalidInput("name must not be empty")
		}
		product.Name = *input.Name
		product.Slug = slug.Generate(*input.Name)
	}
	if input.Description != nil {
		product.Description = *input.Description
	}
	if input.Category != nil {
		product.Category = *input.Category
	}
	if input.PriceCents != nil {
		if *input.PriceCents <= 0 || *input.PriceCents > maxPriceCents {
			return nil, apperrors.InvalidInput("price must be positive and within range")
		}
		product.PriceCents = *input.PriceCents
	}
	if input.Stock != nil {
		if *input.Stock < 0 {
			return nil, apperrors.InvalidInput("stock must not be negative")
		}
		product.Stock = *input.Stock
	}
	if input.ImageURL != nil {
		product.ImageURL = *input.ImageURL
	}
	if input.Status != nil {
		if !domain.IsValidProductStatus(*input.Status) {
			return nil, apperrors.InvalidInput(fmt.Sprintf("invalid product status %q", *input.Status))
		}
		product.Status = *input.Status
	}

	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}

	if err := s.producer.PublishProductUpdated(ctx, product); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish product.updated event",
			slog.String("product_id", product.ID),
			slog.String("error", err.Error()),
		)
	}

	return product, nil
}

// DeleteProduct removes a product from the catalog.
func (s *CatalogService) DeleteProduct(ctx context.Context, id string) error {
	if err := s.productRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete product: %w", err)
	}

	s.logger.InfoContext(ctx, "product deleted", slog.String("product_id", id))
	return nil
}

// AdjustStock applies a stock delta and returns the new level.
func (s *CatalogService) AdjustStock(ctx context.Context, id string, delta int) (int, error) {
	if delta == 0 {
		return 0, apperrors.InvalidInput("stock delta must not be zero")
	}

	stock, err := s.productRepo.AdjustStock(ctx, id, delta)
	if err != nil {
		return 0, fmt.Errorf("adjust stock: %w", err)
	}

	s.logger.InfoContext(ctx, "stock adjusted",
		slog.String("product_id", id),
		slog.Int("delta", delta),
		slog.Int("stock", stock),
	)

	return stock, nil
}
