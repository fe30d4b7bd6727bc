package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tomeriko7/finalProject-sub000/internal/service"
	"github.com/tomeriko7/finalProject-sub000/pkg/httputil"
	"github.com/tomeriko7/finalProject-sub000/pkg/pagination"
	"github.com/tomeriko7/finalProject-sub000/pkg/validator"
)

// AdminHandler serves the back-office endpoints: product management
// across all statuses, stock adjustment, and order fulfillment.
type AdminHandler struct {
	catalog *service.CatalogService
	orders  *service.OrderService
	logger  *slog.Logger
}

// NewAdminHandler creates a new admin HTTP handler.
func NewAdminHandler(catalog *service.CatalogService, orders *service.OrderService, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{catalog: catalog, orders: orders, logger: logger}
}

// --- Request DTOs ---

// CreateProductRequest is the JSON body for creating a product.
type CreateProductRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=500"`
	Description string `json:"description" validate:"omitempty,max=5000"`
	Category    string `json:"category" validate:"omitempty,max=100"`
	PriceCents  int64  `json:"price_cents" validate:"required,gt=0"`
	Stock       int    `json:"stock" validate:"gte=0"`
	ImageURL    string `json:"image_url" validate:"omitempty,url"`
	Status      string `json:"status" validate:"omitempty,oneof=draft published archived"`
}

// UpdateProductRequest is the JSON body for partial product updates.
type UpdateProductRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=500"`
	Description *string `json:"description" validate:"omitempty,max=5000"`
	Category    *string `json:"category" validate:"omitempty,max=100"`
	PriceCents  *int64  `json:"price_cents" validate:"omitempty,gt=0"`
	Stock       *int    `json:"stock" validate:"omitempty,gte=0"`
	ImageURL    *string `json:"image_url" validate:"omitempty,url"`
	Status      *string `json:"status" validate:"omitempty,oneof=draft published archived"`
}

// AdjustStockRequest is the JSON body for applying a stock delta.
type AdjustStockRequest struct {
	Delta int `json:"delta" validate:"required"`
}

// UpdateOrderStatusRequest is the JSON body for an order transition.
type UpdateOrderStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending paid shipped delivered canceled"`
}

// --- Product handlers ---

// ListProducts handles GET /api/v1/admin/products
func (h *AdminHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	result, err := h.catalog.AdminList(r.Context(), r.URL.Query().Get("status"), pagination.FromRequest(r))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: result})
}

// GetProduct handles GET /api/v1/admin/products/{productID}
func (h *AdminHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	product, err := h.catalog.AdminGet(r.Context(), chi.URLParam(r, "productID"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: product})
}

// CreateProduct handles POST /api/v1/admin/products
func (h *AdminHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var req CreateProductRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	product, err := h.catalog.CreateProduct(r.Context(), service.CreateProductInput{
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		PriceCents:  req.PriceCents,
		Stock:       req.Stock,
		ImageURL:    req.ImageURL,
		Status:      req.Status,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: product})
}

// UpdateProduct handles PUT /api/v1/admin/products/{productID}
func (h *AdminHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var req UpdateProductRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	product, err := h.catalog.UpdateProduct(r.Context(), chi.URLParam(r, "productID"), service.UpdateProductInput{
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		PriceCents:  req.PriceCents,
		Stock:       req.Stock,
		ImageURL:    req.ImageURL,
		Status:      req.Status,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: product})
}

// DeleteProduct handles DELETE /api/v1/admin/products/{productID}
func (h *AdminHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.catalog.DeleteProduct(r.Context(), chi.URLParam(r, "productID")); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AdjustStock handles POST /api/v1/admin/products/{productID}/stock
func (h *AdminHandler) AdjustStock(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var req AdjustStockRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	stock, err := h.catalog.AdjustStock(r.Context(), chi.URLParam(r, "productID"), req.Delta)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]int{"stock": stock}})
}

// --- Order handlers ---

// ListOrders handles GET /api/v1/admin/orders
func (h *AdminHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	result, err := h.orders.AdminListOrders(r.Context(), r.URL.Query().Get("status"), pagination.FromRequest(r))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: result})
}

// GetOrder handles GET /api/v1/admin/orders/{orderID}
func (h *AdminHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.orders.AdminGetOrder(r.Context(), chi.URLParam(r, "orderID"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: order})
}

// UpdateOrderStatus handles PUT /api/v1/admin/orders/{orderID}/status
func (h *AdminHandler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var req UpdateOrderStatusRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	order, err := h.orders.UpdateStatus(r.Context(), chi.URLParam(r, "orderID"), req.Status)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: order})
}
