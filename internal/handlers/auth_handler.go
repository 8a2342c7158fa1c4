package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/respondo/internal/interfaces"
	"github.com/ternarybob/respondo/internal/models"
)

type accountContextKey struct{}

// AccountFromContext returns the authenticated account, if any.
func AccountFromContext(ctx context.Context) *models.Account {
	account, _ := ctx.Value(accountContextKey{}).(*models.Account)
	return account
}

// AuthHandler serves admin console registration, login and token-guarded
// profile endpoints.
type AuthHandler struct {
	auth   interfaces.AuthService
	logger arbor.ILogger
}

func NewAuthHandler(auth interfaces.AuthService, logger arbor.ILogger) *AuthHandler {
	return &AuthHandler{
		auth:   auth,
		logger: logger,
	}
}

type registerRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required"`
}

type profileResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// RegisterHandler handles POST /api/auth/register.
func (h *AuthHandler) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	var req registerRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	account, err := h.auth.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		status := http.StatusBadRequest
		if strings.Contains(err.Error(), "already exists") {
			status = http.StatusConflict
		}
		WriteError(w, status, err.Error())
		return
	}

	WriteJSON(w, http.StatusCreated, profileResponse{ID: account.ID, Email: account.Email})
}

// LoginHandler handles POST /api/auth/login.
func (h *AuthHandler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	var req loginRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	token, account, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		WriteError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"access_token": token,
		"token_type":   "bearer",
		"account":      profileResponse{ID: account.ID, Email: account.Email},
	})
}

// MeHandler handles GET /api/admin/me.
func (h *AuthHandler) MeHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	account := AccountFromContext(r.Context())
	if account == nil {
		WriteError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	WriteJSON(w, http.StatusOK, profileResponse{ID: account.ID, Email: account.Email})
}

// LogoutHandler handles POST /api/admin/logout. Tokens are stateless, so
// logout is client-side token deletion; the endpoint exists for symmetry.
func (h *AuthHandler) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}
	WriteSuccess(w, "Logged out")
}

// ChangePasswordHandler handles POST /api/admin/password.
func (h *AuthHandler) ChangePasswordHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	account := AccountFromContext(r.Context())
	if account == nil {
		WriteError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	var req changePasswordRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	if err := h.auth.ChangePassword(r.Context(), account.ID, req.CurrentPassword, req.NewPassword); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	WriteSuccess(w, "Password changed")
}

// Middleware returns a handler that requires a valid bearer token and
// stores the account on the request context.
func (h *AuthHandler) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			WriteError(w, http.StatusUnauthorized, "Missing bearer token")
			return
		}

		account, err := h.auth.VerifyToken(r.Context(), strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			WriteError(w, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		ctx := context.WithValue(r.Context(), accountContextKey{}, account)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
