package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tomeriko7/finalProject-sub000/internal/domain"
	"github.com/tomeriko7/finalProject-sub000/internal/service"
	"github.com/tomeriko7/finalProject-sub000/pkg/httputil"
	"github.com/tomeriko7/finalProject-sub000/pkg/middleware"
	"github.com/tomeriko7/finalProject-sub000/pkg/pagination"
	"github.com/tomeriko7/finalProject-sub000/pkg/validator"
)

// OrderHandler serves the authenticated checkout and order endpoints.
type OrderHandler struct {
	orders *service.OrderService
	logger *slog.Logger
}

// NewOrderHandler creates a new order HTTP handler.
func NewOrderHandler(orders *service.OrderService, logger *slog.Logger) *OrderHandler {
	return &OrderHandler{orders: orders, logger: logger}
}

// PlaceOrderRequest is the JSON body for checkout.
type PlaceOrderRequest struct {
	FullName    string `json:"full_name" validate:"required,min=1,max=200"`
	AddressLine string `json:"address_line" validate:"required,min=1,max=500"`
	City        string `json:"city" validate:"required,min=1,max=100"`
	PostalCode  string `json:"postal_code" validate:"omitempty,max=20"`
	Country     string `json:"country" validate:"required,min=2,max=100"`
	Phone       string `json:"phone" validate:"omitempty,max=32"`
	Notes       string `json:"notes" validate:"omitempty,max=1000"`
}

// Create handles POST /api/v1/orders
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var req PlaceOrderRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	order, err := h.orders.PlaceOrder(r.Context(), middleware.UserIDFromContext(r.Context()), service.PlaceOrderInput{
		ShippingAddress: domain.Address{
			FullName:    req.FullName,
			AddressLine: req.AddressLine,
			City:        req.City,
			PostalCode:  req.PostalCode,
			Country:     req.Country,
			Phone:       req.Phone,
		},
		Notes: req.Notes,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: order})
}

// List handles GET /api/v1/orders
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	result, err := h.orders.ListOrders(r.Context(), middleware.UserIDFromContext(r.Context()), pagination.FromRequest(r))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: result})
}

// Get handles GET /api/v1/orders/{orderID}
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	order, err := h.orders.GetOrder(r.Context(), middleware.UserIDFromContext(r.Context()), chi.URLParam(r, "orderID"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: order})
}
