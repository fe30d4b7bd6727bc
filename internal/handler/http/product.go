package http

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/tomeriko7/finalProject-sub000/internal/service"
	"github.com/tomeriko7/finalProject-sub000/pkg/httputil"
	"github.com/tomeriko7/finalProject-sub000/pkg/pagination"
)

// ProductHandler serves the public product catalog.
type ProductHandler struct {
	catalog *service.CatalogService
	logger  *slog.Logger
}

// NewProductHandler creates a new catalog HTTP handler.
func NewProductHandler(catalog *service.CatalogService, logger *slog.Logger) *ProductHandler {
	return &ProductHandler{catalog: catalog, logger: logger}
}

// List handles GET /api/v1/products
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	input := service.ListInput{
		Category: q.Get("category"),
		Search:   q.Get("search"),
	}

	if raw := q.Get("min_price"); raw != "" {
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || v < 0 {
			httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
				Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "min_price must be a non-negative integer"},
			})
			return
		}
		input.MinPriceCents = &v
	}
	if raw := q.Get("max_price"); raw != "" {
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || v < 0 {
			httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
				Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "max_price must be a non-negative integer"},
			})
			return
		}
		input.MaxPriceCents = &v
	}

	result, err := h.catalog.List(r.Context(), input, pagination.FromRequest(r))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: result})
}

// Get handles GET /api/v1/products/{productID}
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	product, err := h.catalog.Get(r.Context(), chi.URLParam(r, "productID"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: product})
}

// GetBySlug handles GET /api/v1/products/slug/{slug}
func (h *ProductHandler) GetBySlug(w http.ResponseWriter, r *http.Request) {
	product, err := h.catalog.GetBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: product})
}
