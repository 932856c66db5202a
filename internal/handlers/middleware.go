package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/mivora/playlist-bot/internal/service"
)

type contextKey string

const claimsKey contextKey = "claims"

// AuthMiddleware validates JWT tokens on admin API routes.
func AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			// Try to get token from cookie as fallback
			cookie, err := r.Cookie("auth_token")
			if err != nil {
				writeAPIError(w, "Authentication required", http.StatusUnauthorized)
				return
			}
			authHeader = "Bearer " + cookie.Value
		}

		if !strings.HasPrefix(authHeader, "Bearer ") {
			writeAPIError(w, "Invalid authorization header format", http.StatusUnauthorized)
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")

		claims, err := service.ValidateToken(tokenString)
		if err != nil {
			if err == service.ErrExpiredToken {
				writeAPIError(w, "Token expired", http.StatusUnauthorized)
			} else {
				writeAPIError(w, "Invalid token", http.StatusUnauthorized)
			}
			return
		}

		ctx := context.WithValue(r.Context(), claimsKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetClaimsFromContext retrieves JWT claims from request context
func GetClaimsFromContext(r *http.Request) (*service.Claims, bool) {
	claims, ok := r.Context().Value(claimsKey).(*service.Claims)
	return claims, ok
}
