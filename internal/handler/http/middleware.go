package http

import (
	"net/http"
	"strings"

	"github.com/tomeriko7/finalProject-sub000/pkg/httputil"
)

// GuestTokenHeader carries the client-generated guest token on anonymous
// shopper requests.
const GuestTokenHeader = "X-Guest-Token"

// ContentTypeJSON enforces the JSON content type on mutating requests.
func ContentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost || r.Method == http.MethodPut || r.Method == http.MethodPatch {
			ct := r.Header.Get("Content-Type")
			if ct != "" && !strings.HasPrefix(ct, "application/json") {
				httputil.WriteJSON(w, http.StatusUnsupportedMediaType, httputil.Response{
					Error: &httputil.ErrorResponse{
						Code:    "UNSUPPORTED_MEDIA_TYPE",
						Message: "Content-Type must be application/json",
					},
				})
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func guestToken(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get(GuestTokenHeader))
}

func writeMissingSession(w http.ResponseWriter) {
	httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
		Error: &httputil.ErrorResponse{
			Code:    "INVALID_INPUT",
			Message: "authenticate or supply the " + GuestTokenHeader + " header",
		},
	})
}
