package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tomeriko7/finalProject-sub000/internal/domain"
	"github.com/tomeriko7/finalProject-sub000/internal/service"
	"github.com/tomeriko7/finalProject-sub000/pkg/httputil"
	"github.com/tomeriko7/finalProject-sub000/pkg/middleware"
	"github.com/tomeriko7/finalProject-sub000/pkg/validator"
)

const maxBodyBytes = 1 << 20

// CartHandler serves the dual-path cart endpoints. Each request is
// routed fresh: a valid bearer token selects the authoritative cart,
// otherwise the guest token header selects the Redis guest cart. The
// item URL parameter means line ID on the authenticated path and
// product ID on the guest path.
type CartHandler struct {
	cart   *service.CartService
	guest  *service.GuestService
	logger *slog.Logger
}

// NewCartHandler creates a new cart HTTP handler.
func NewCartHandler(cart *service.CartService, guest *service.GuestService, logger *slog.Logger) *CartHandler {
	return &CartHandler{cart: cart, guest: guest, logger: logger}
}

// --- Request DTOs ---

// AddItemRequest is the JSON body for adding a product to the cart.
type AddItemRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,gte=1"`
}

// UpdateQuantityRequest is the JSON body for setting a line's quantity.
type UpdateQuantityRequest struct {
	Quantity int `json:"quantity" validate:"gte=0"`
}

// guestCartView mirrors the resolved cart shape for the guest path,
// totaled from the stored snapshots.
type guestCartView struct {
	Lines      []domain.GuestCartLine `json:"lines"`
	TotalItems int                    `json:"total_items"`
	TotalPrice int64                  `json:"total_price"`
}

func newGuestCartView(lines []domain.GuestCartLine) guestCartView {
	view := guestCartView{Lines: lines}
	if view.Lines == nil {
		view.Lines = []domain.GuestCartLine{}
	}
	for _, line := range lines {
		view.TotalItems += line.Quantity
		view.TotalPrice += line.PriceCents * int64(line.Quantity)
	}
	return view
}

// --- Handlers ---

// Get handles GET /api/v1/cart
func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	if userID := middleware.UserIDFromContext(r.Context()); userID != "" {
		cart, err := h.cart.GetCart(r.Context(), userID)
		if err != nil {
			httputil.WriteError(w, r, err, h.logger)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: cart})
		return
	}

	token := guestToken(r)
	if token == "" {
		writeMissingSession(w)
		return
	}

	lines, err := h.guest.GetCart(r.Context(), token)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: newGuestCartView(lines)})
}

// AddItem handles POST /api/v1/cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var req AddItemRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	if userID := middleware.UserIDFromContext(r.Context()); userID != "" {
		cart, err := h.cart.AddItem(r.Context(), userID, req.ProductID, req.Quantity)
		if err != nil {
			httputil.WriteError(w, r, err, h.logger)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: cart})
		return
	}

	token := guestToken(r)
	if token == "" {
		writeMissingSession(w)
		return
	}

	lines, err := h.guest.AddItem(r.Context(), token, req.ProductID, req.Quantity)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: newGuestCartView(lines)})
}

// UpdateItem handles PUT /api/v1/cart/items/{itemID}
func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	itemID := chi.URLParam(r, "itemID")

	var req UpdateQuantityRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	if userID := middleware.UserIDFromContext(r.Context()); userID != "" {
		cart, err := h.cart.UpdateQuantity(r.Context(), userID, itemID, req.Quantity)
		if err != nil {
			httputil.WriteError(w, r, err, h.logger)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: cart})
		return
	}

	token := guestToken(r)
	if token == "" {
		writeMissingSession(w)
		return
	}

	lines, err := h.guest.UpdateQuantity(r.Context(), token, itemID, req.Quantity)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: newGuestCartView(lines)})
}

// RemoveItem handles DELETE /api/v1/cart/items/{itemID}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	itemID := chi.URLParam(r, "itemID")

	if userID := middleware.UserIDFromContext(r.Context()); userID != "" {
		cart, err := h.cart.Remove(r.Context(), userID, itemID)
		if err != nil {
			httputil.WriteError(w, r, err, h.logger)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: cart})
		return
	}

	token := guestToken(r)
	if token == "" {
		writeMissingSession(w)
		return
	}

	lines, err := h.guest.Remove(r.Context(), token, itemID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: newGuestCartView(lines)})
}

// Clear handles DELETE /api/v1/cart
func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	if userID := middleware.UserIDFromContext(r.Context()); userID != "" {
		if err := h.cart.Clear(r.Context(), userID); err != nil {
			httputil.WriteError(w, r, err, h.logger)
			return
		}
		w.WriteHeader(http.StatusNoContent)
		return
	}

	token := guestToken(r)
	if token == "" {
		writeMissingSession(w)
		return
	}

	if err := h.guest.ClearCart(r.Context(), token); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
