package middleware

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/foliohq/folio/internal/auth"
	"github.com/foliohq/folio/internal/token"
)

// RequireAuth validates the Authorization bearer token and puts the user id
// in the request context. A missing token gets 401, a failing one 403; the
// client sees a single opaque rejection either way, while the verification
// sub-cause (malformed, bad signature, expired) goes to the log.
func RequireAuth(issuer *token.Issuer, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			tok, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || tok == "" {
				writeAuthError(w, http.StatusUnauthorized, "No token provided")
				return
			}

			userID, err := issuer.Verify(tok)
			if err != nil {
				logger.Warn("token rejected", "reason", rejectReason(err), "remote", RealIP(r))
				writeAuthError(w, http.StatusForbidden, "Invalid token")
				return
			}

			ctx := auth.WithUser(r.Context(), userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, token.ErrMalformed):
		return "malformed"
	case errors.Is(err, token.ErrInvalidSignature):
		return "invalid_signature"
	case errors.Is(err, token.ErrExpired):
		return "expired"
	default:
		return "unknown"
	}
}

func writeAuthError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": "unauthorized", "message": message})
}
