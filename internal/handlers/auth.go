package handlers

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/mivora/playlist-bot/internal/service"
)

// LoginRequest represents an admin login
type LoginRequest struct {
	AdminID int64  `json:"admin_id"`
	Key     string `json:"key"`
}

// Login exchanges the shared admin key for a JWT. Only user ids from the
// configured admin list may log in.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if h.cfg.AdminAPIKey == "" {
		writeAPIError(w, "Admin API is disabled", http.StatusForbidden)
		return
	}
	if !h.cfg.IsAdmin(req.AdminID) ||
		subtle.ConstantTimeCompare([]byte(req.Key), []byte(h.cfg.AdminAPIKey)) != 1 {
		writeAPIError(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}

	username := ""
	if user, ok := h.db.GetUser(req.AdminID); ok {
		username = user.Username
	}

	token, err := service.GenerateToken(req.AdminID, username)
	if err != nil {
		writeAPIError(w, "Failed to generate token", http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "auth_token",
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	writeAPISuccess(w, map[string]string{"token": token})
}

// RefreshTokenHandler exchanges a valid or recently expired token for a
// fresh one. It sits outside AuthMiddleware on purpose: the middleware
// rejects expired tokens, and refreshing those is the whole point.
func (h *Handler) RefreshTokenHandler(w http.ResponseWriter, r *http.Request) {
	tokenString := bearerToken(r)
	if tokenString == "" {
		writeAPIError(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	token, err := service.RefreshToken(tokenString)
	if err != nil {
		writeAPIError(w, "Invalid token", http.StatusUnauthorized)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "auth_token",
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	writeAPISuccess(w, map[string]string{"token": token})
}

// bearerToken pulls the JWT from the Authorization header, falling back to
// the auth cookie.
func bearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		cookie, err := r.Cookie("auth_token")
		if err != nil {
			return ""
		}
		return cookie.Value
	}
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(authHeader, "Bearer ")
}
