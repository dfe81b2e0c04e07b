package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/foliohq/folio/internal/auth"
	"github.com/foliohq/folio/internal/model"
)

// AuthHandler exposes the authentication protocol as JSON endpoints. All
// failure responses carry a generic message; which sub-cause fired is only
// visible in the logs.
type AuthHandler struct {
	auth   *auth.Service
	logger *slog.Logger
}

func NewAuthHandler(svc *auth.Service, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{auth: svc, logger: logger}
}

type authResponse struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

type registerRequest struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	PhoneNumber string `json:"phoneNumber"`
	Domain      string `json:"domain"`
}

func (req *registerRequest) validate() string {
	switch {
	case strings.TrimSpace(req.Name) == "":
		return "name is required"
	case strings.TrimSpace(req.Email) == "":
		return "email is required"
	case req.Password == "":
		return "password is required"
	}
	return ""
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, KindInvalidInput, "Invalid request body")
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusBadRequest, KindInvalidInput, msg)
		return
	}

	user, tok, err := h.auth.Register(req.Name, req.Email, req.Password, req.PhoneNumber, req.Domain)
	if err != nil {
		if errors.Is(err, auth.ErrDuplicateEmail) {
			writeError(w, http.StatusBadRequest, KindDuplicateEmail, "User already exists")
			return
		}
		h.logger.Error("register", "error", err)
		writeError(w, http.StatusInternalServerError, KindInternal, "Server error")
		return
	}

	writeJSON(w, http.StatusCreated, authResponse{Token: tok, User: user})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, KindInvalidInput, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, KindInvalidInput, "email and password are required")
		return
	}

	user, tok, err := h.auth.Login(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			writeError(w, http.StatusBadRequest, KindInvalidCredentials, "Invalid credentials")
			return
		}
		h.logger.Error("login", "error", err)
		writeError(w, http.StatusInternalServerError, KindInternal, "Server error")
		return
	}

	writeJSON(w, http.StatusOK, authResponse{Token: tok, User: user})
}

type requestResetRequest struct {
	Email string `json:"email"`
}

func (h *AuthHandler) RequestReset(w http.ResponseWriter, r *http.Request) {
	var req requestResetRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, KindInvalidInput, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Email) == "" {
		writeError(w, http.StatusBadRequest, KindInvalidInput, "email is required")
		return
	}

	if err := h.auth.RequestReset(req.Email); err != nil {
		switch {
		case errors.Is(err, auth.ErrUserNotFound):
			// Status preserved from the legacy API; the body stays generic.
			writeError(w, http.StatusNotFound, KindUserNotFound, "Unable to send reset code")
		case errors.Is(err, auth.ErrDeliveryFailure):
			h.logger.Error("reset code delivery", "error", err)
			writeError(w, http.StatusInternalServerError, KindDeliveryFailure, "Failed to send reset code")
		default:
			h.logger.Error("request reset", "error", err)
			writeError(w, http.StatusInternalServerError, KindInternal, "Server error")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Reset code sent to email"})
}

type verifyCodeRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

func (h *AuthHandler) VerifyResetCode(w http.ResponseWriter, r *http.Request) {
	var req verifyCodeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, KindInvalidInput, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Email) == "" || strings.TrimSpace(req.Code) == "" {
		writeError(w, http.StatusBadRequest, KindInvalidInput, "email and code are required")
		return
	}

	if err := h.auth.VerifyResetCode(req.Email, req.Code); err != nil {
		if errors.Is(err, auth.ErrInvalidOrExpiredCode) {
			writeError(w, http.StatusBadRequest, KindInvalidOrExpiredCode, "Invalid or expired reset code")
			return
		}
		h.logger.Error("verify reset code", "error", err)
		writeError(w, http.StatusInternalServerError, KindInternal, "Server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Reset code verified"})
}

type completeResetRequest struct {
	Email       string `json:"email"`
	Code        string `json:"code"`
	NewPassword string `json:"newPassword"`
}

func (h *AuthHandler) CompleteReset(w http.ResponseWriter, r *http.Request) {
	var req completeResetRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, KindInvalidInput, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Email) == "" || strings.TrimSpace(req.Code) == "" || req.NewPassword == "" {
		writeError(w, http.StatusBadRequest, KindInvalidInput, "email, code, and newPassword are required")
		return
	}

	if err := h.auth.CompleteReset(req.Email, req.Code, req.NewPassword); err != nil {
		if errors.Is(err, auth.ErrInvalidOrExpiredCode) {
			writeError(w, http.StatusBadRequest, KindInvalidOrExpiredCode, "Invalid or expired reset code")
			return
		}
		h.logger.Error("complete reset", "error", err)
		writeError(w, http.StatusInternalServerError, KindInternal, "Server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Password updated successfully"})
}
