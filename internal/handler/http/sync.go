package http

import (
	"log/slog"
	"net/http"

	"github.com/tomeriko7/finalProject-sub000/internal/service"
	"github.com/tomeriko7/finalProject-sub000/pkg/httputil"
	"github.com/tomeriko7/finalProject-sub000/pkg/middleware"
)

// SyncHandler serves the post-login reconciliation endpoint.
type SyncHandler struct {
	sync   *service.SyncService
	logger *slog.Logger
}

// NewSyncHandler creates a new sync HTTP handler.
func NewSyncHandler(sync *service.SyncService, logger *slog.Logger) *SyncHandler {
	return &SyncHandler{sync: sync, logger: logger}
}

// Reconcile handles POST /api/v1/sync. The guest token header is
// optional: clients that never shopped anonymously still call this to
// hydrate their favorites and cart after login.
func (h *SyncHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())

	result, err := h.sync.Reconcile(r.Context(), userID, guestToken(r))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: result})
}
