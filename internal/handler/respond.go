package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// Error kinds surfaced in JSON error responses.
const (
	KindInvalidInput         = "invalid_input"
	KindDuplicateEmail       = "duplicate_email"
	KindInvalidCredentials   = "invalid_credentials"
	KindUserNotFound         = "user_not_found"
	KindInvalidOrExpiredCode = "invalid_or_expired_code"
	KindUnauthorized         = "unauthorized"
	KindNotFound             = "not_found"
	KindDeliveryFailure      = "delivery_failure"
	KindInternal             = "internal"
)

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, kind, message string) {
	writeJSON(w, status, errorResponse{Error: kind, Message: message})
}

// decodeJSON reads the request body into dst. Bodies are untrusted; anything
// that fails to decode is an input error, not a server error.
func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("decode body: %w", err)
	}
	return nil
}
