package middleware

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/JonMunkholm/buyerleads/internal/auth"
	"github.com/JonMunkholm/buyerleads/internal/logging"
)

// RequireUser rejects requests without a valid session with 401 and puts
// the authenticated user into the context of the rest.
func RequireUser(tokens *auth.TokenManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := tokens.CurrentUser(r)
			if err != nil {
				if !errors.Is(err, auth.ErrNoToken) {
					logging.FromContext(r.Context()).Warn("auth: rejected session token",
						"path", r.URL.Path,
						"method", r.Method,
						"remote_addr", r.RemoteAddr,
						"error", err,
					)
				}
				writeJSONError(w, http.StatusUnauthorized, "Please sign in to continue.", "AUTH001")
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithUser(r.Context(), user)))
		})
	}
}

// errorBody mirrors the error fields of the API handlers' responses.
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// writeJSONError writes the error body shape used by the API handlers.
func writeJSONError(w http.ResponseWriter, status int, message, code string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(errorBody{Error: message, Message: message, Code: code}); err != nil {
		slog.Warn("write error response", "error", err)
	}
}
