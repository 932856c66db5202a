package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
)

// RegisterRoutes wires the HTTP surface: the payment callback, the public
// read-only API and the JWT-guarded admin API.
func RegisterRoutes(r *mux.Router, h *Handler) {
	r.HandleFunc("/payment/verify", h.PaymentCallback).Methods("GET")
	r.HandleFunc("/login", h.Login).Methods("POST")
	r.HandleFunc("/refresh", h.RefreshTokenHandler).Methods("POST")

	// API routes
	api := r.PathPrefix("/api").Subrouter()

	// Public routes (no auth required)
	api.HandleFunc("/leaderboard", h.GetLeaderboard).Methods("GET")
	api.HandleFunc("/playlists", h.GetPublicPlaylists).Methods("GET")
	api.HandleFunc("/playlists/{playlistID}", h.GetPlaylist).Methods("GET")

	// Admin routes (require authentication)
	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(AuthMiddleware)
	admin.HandleFunc("/stats", h.GetStats).Methods("GET")
	admin.HandleFunc("/users/{userID}/ban", h.SetUserBan).Methods("POST")
	admin.HandleFunc("/users/{userID}/premium", h.GrantPremium).Methods("POST")

	// Enable CORS for all API routes
	api.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	})
}
