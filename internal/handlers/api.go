package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/mivora/playlist-bot/internal/config"
	"github.com/mivora/playlist-bot/internal/db"
	"github.com/mivora/playlist-bot/internal/payment"
)

// APIResponse represents a standard API response
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Message string      `json:"message,omitempty"`
}

// Notifier delivers out-of-band messages to bot users. The Telegram layer
// implements it; tests substitute a fake.
type Notifier interface {
	NotifyPremiumActivated(userID int64, planTitle string)
	NotifyPaymentFailed(userID int64)
}

// Handler bundles the dependencies the HTTP surface needs.
type Handler struct {
	db       *db.Database
	gateway  payment.Gateway
	notifier Notifier
	cfg      *config.Config
}

// New returns a handler set over the given dependencies.
func New(database *db.Database, gateway payment.Gateway, notifier Notifier, cfg *config.Config) *Handler {
	return &Handler{db: database, gateway: gateway, notifier: notifier, cfg: cfg}
}

// PlaylistResponse is the public view of a playlist.
type PlaylistResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	OwnerName string `json:"owner_name"`
	Mood      string `json:"mood"`
	Songs     int    `json:"songs"`
	Likes     int    `json:"likes"`
	Plays     int    `json:"plays"`
}

func toPlaylistResponse(p *db.Playlist) PlaylistResponse {
	return PlaylistResponse{
		ID:        p.ID,
		Name:      p.Name,
		OwnerName: p.OwnerName,
		Mood:      p.Mood,
		Songs:     len(p.Songs),
		Likes:     len(p.Likes),
		Plays:     p.Plays,
	}
}

// GetLeaderboard returns the ranked users for the requested dimension.
func (h *Handler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	sortBy := r.URL.Query().Get("sort")
	if sortBy == "" {
		sortBy = db.SortByScore
	}

	limit := h.cfg.LeaderboardSize
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 100 {
			writeAPIError(w, "limit must be between 1 and 100", http.StatusBadRequest)
			return
		}
		limit = n
	}

	writeAPISuccess(w, h.db.Leaderboard(sortBy, limit))
}

// GetPublicPlaylists returns the browsable playlist catalog.
func (h *Handler) GetPublicPlaylists(w http.ResponseWriter, r *http.Request) {
	var playlists []*db.Playlist
	switch r.URL.Query().Get("filter") {
	case "trending":
		playlists = h.db.TrendingPlaylists(7, 50)
	case "top":
		playlists = h.db.TopPlaylists(50)
	default:
		playlists = h.db.NewestPlaylists(50)
	}

	out := make([]PlaylistResponse, 0, len(playlists))
	for _, p := range playlists {
		out = append(out, toPlaylistResponse(p))
	}
	writeAPISuccess(w, out)
}

// GetPlaylist returns one public playlist with its songs.
func (h *Handler) GetPlaylist(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	playlist, ok := h.db.GetPlaylist(vars["playlistID"])
	if !ok || playlist.IsPrivate || playlist.Status != db.PlaylistPublished {
		writeAPIError(w, "Playlist not found", http.StatusNotFound)
		return
	}

	type songView struct {
		ID        string `json:"id"`
		Title     string `json:"title"`
		Performer string `json:"performer"`
		Duration  int    `json:"duration"`
		Likes     int    `json:"likes"`
	}
	songs := make([]songView, 0, len(playlist.Songs))
	for _, s := range h.db.PlaylistSongs(playlist.ID) {
		songs = append(songs, songView{
			ID: s.ID, Title: s.Title, Performer: s.Performer,
			Duration: s.Duration, Likes: len(s.Likes),
		})
	}

	writeAPISuccess(w, map[string]interface{}{
		"playlist": toPlaylistResponse(playlist),
		"songs":    songs,
	})
}

// GetStats returns the global dashboard metrics. Admin only.
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.db.GetGlobalStats()
	if err != nil {
		log.Printf("Error computing global stats: %v", err)
		writeAPIError(w, "Failed to compute stats", http.StatusInternalServerError)
		return
	}
	writeAPISuccess(w, stats)
}

// BanRequest represents a ban/unban request
type BanRequest struct {
	Banned bool `json:"banned"`
}

// SetUserBan bans or unbans a user. Admin only.
func (h *Handler) SetUserBan(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(mux.Vars(r)["userID"], 10, 64)
	if err != nil {
		writeAPIError(w, "Invalid user ID", http.StatusBadRequest)
		return
	}
	if _, ok := h.db.GetUser(userID); !ok {
		writeAPIError(w, "User not found", http.StatusNotFound)
		return
	}

	var req BanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.Banned {
		err = h.db.BanUser(userID)
	} else {
		err = h.db.UnbanUser(userID)
	}
	if err != nil {
		writeAPIError(w, "Failed to update user", http.StatusInternalServerError)
		return
	}
	writeAPISuccess(w, map[string]bool{"banned": req.Banned})
}

// GrantPremiumRequest represents an admin premium grant
type GrantPremiumRequest struct {
	Days int `json:"days"`
}

// GrantPremium activates premium for a user without a payment. Admin only.
func (h *Handler) GrantPremium(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(mux.Vars(r)["userID"], 10, 64)
	if err != nil {
		writeAPIError(w, "Invalid user ID", http.StatusBadRequest)
		return
	}
	if _, ok := h.db.GetUser(userID); !ok {
		writeAPIError(w, "User not found", http.StatusNotFound)
		return
	}

	var req GrantPremiumRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Days < 1 {
		writeAPIError(w, "days must be a positive number", http.StatusBadRequest)
		return
	}

	if err := h.db.ActivatePremium(userID, req.Days, "", 0); err != nil {
		writeAPIError(w, "Failed to activate premium", http.StatusInternalServerError)
		return
	}
	writeAPISuccess(w, map[string]interface{}{"user_id": userID, "days": req.Days})
}

func writeAPISuccess(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	response := APIResponse{
		Success: true,
		Data:    data,
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
	}
}

func writeAPIError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	response := APIResponse{
		Success: false,
		Error:   message,
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Printf("Error encoding JSON error response: %v", err)
	}
}
