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

// FavoritesHandler serves the dual-path favorites endpoints.
type FavoritesHandler struct {
	favorites *service.FavoritesService
	guest     *service.GuestService
	logger    *slog.Logger
}

// NewFavoritesHandler creates a new favorites HTTP handler.
func NewFavoritesHandler(favorites *service.FavoritesService, guest *service.GuestService, logger *slog.Logger) *FavoritesHandler {
	return &FavoritesHandler{favorites: favorites, guest: guest, logger: logger}
}

// SetQuantityRequest is the JSON body for setting a favorite's intended
// purchase quantity on the guest path.
type SetQuantityRequest struct {
	Quantity int `json:"quantity" validate:"gte=0"`
}

type guestFavoritesView struct {
	Favorites  []domain.GuestFavorite `json:"favorites"`
	Quantities map[string]int         `json:"quantities"`
}

type toggleResponse struct {
	ProductID  string `json:"product_id"`
	IsFavorite bool   `json:"is_favorite"`
}

// List handles GET /api/v1/favorites
func (h *FavoritesHandler) List(w http.ResponseWriter, r *http.Request) {
	if userID := middleware.UserIDFromContext(r.Context()); userID != "" {
		result, err := h.favorites.List(r.Context(), userID, pagination.FromRequest(r))
		if err != nil {
			httputil.WriteError(w, r, err, h.logger)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: result})
		return
	}

	token := guestToken(r)
	if token == "" {
		writeMissingSession(w)
		return
	}

	favorites, quantities, err := h.guest.ListFavorites(r.Context(), token)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	if favorites == nil {
		favorites = []domain.GuestFavorite{}
	}
	if quantities == nil {
		quantities = map[string]int{}
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{
		Data: guestFavoritesView{Favorites: favorites, Quantities: quantities},
	})
}

// Toggle handles POST /api/v1/favorites/{productID}/toggle
func (h *FavoritesHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productID")

	if userID := middleware.UserIDFromContext(r.Context()); userID != "" {
		isFavorite, err := h.favorites.Toggle(r.Context(), userID, productID)
		if err != nil {
			httputil.WriteError(w, r, err, h.logger)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, httputil.Response{
			Data: toggleResponse{ProductID: productID, IsFavorite: isFavorite},
		})
		return
	}

	token := guestToken(r)
	if token == "" {
		writeMissingSession(w)
		return
	}

	isFavorite, err := h.guest.ToggleFavorite(r.Context(), token, productID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{
		Data: toggleResponse{ProductID: productID, IsFavorite: isFavorite},
	})
}

// Add handles POST /api/v1/favorites/{productID} (authenticated only).
func (h *FavoritesHandler) Add(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	if userID == "" {
		writeMissingSession(w)
		return
	}

	productID := chi.URLParam(r, "productID")
	if err := h.favorites.Add(r.Context(), userID, productID); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{
		Data: toggleResponse{ProductID: productID, IsFavorite: true},
	})
}

// Remove handles DELETE /api/v1/favorites/{productID}
func (h *FavoritesHandler) Remove(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productID")

	if userID := middleware.UserIDFromContext(r.Context()); userID != "" {
		if err := h.favorites.Remove(r.Context(), userID, productID); err != nil {
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

	// The guest path removes by toggling off; absent entries are a no-op.
	favorites, _, err := h.guest.ListFavorites(r.Context(), token)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	if domain.FindGuestFavorite(favorites, productID) >= 0 {
		if _, err := h.guest.ToggleFavorite(r.Context(), token, productID); err != nil {
			httputil.WriteError(w, r, err, h.logger)
			return
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

// SetQuantity handles PUT /api/v1/favorites/{productID}/quantity
// (guest path only; authenticated favorites carry no quantity).
func (h *FavoritesHandler) SetQuantity(w http.ResponseWriter, r *http.Request) {
	if middleware.UserIDFromContext(r.Context()) != "" {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{
				Code:    "INVALID_INPUT",
				Message: "favorite quantities exist only for guest sessions",
			},
		})
		return
	}

	token := guestToken(r)
	if token == "" {
		writeMissingSession(w)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var req SetQuantityRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	quantities, err := h.guest.SetFavoriteQuantity(r.Context(), token, chi.URLParam(r, "productID"), req.Quantity)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: quantities})
}

// Clear handles DELETE /api/v1/favorites (authenticated only).
func (h *FavoritesHandler) Clear(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	if userID == "" {
		writeMissingSession(w)
		return
	}

	if err := h.favorites.Clear(r.Context(), userID); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
