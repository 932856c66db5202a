package db

import (
	"fmt"
	"sort"
)

// Leaderboard sort dimensions.
const (
	SortByLikes = "likes"
	SortByPlays = "plays"
	SortBySongs = "songs"
	SortByScore = "score"
)

// Composite score weights. Tunable; only determinism matters.
const (
	scoreWeightLikes = 10
	scoreWeightPlays = 2
	scoreWeightSongs = 1
)

// LeaderboardEntry is one ranked row.
type LeaderboardEntry struct {
	UserID    int64  `json:"user_id"`
	Name      string `json:"name"`
	Username  string `json:"username"`
	Score     int    `json:"score"`
	Likes     int    `json:"likes"`
	Plays     int    `json:"plays"`
	Songs     int    `json:"songs"`
	Playlists int    `json:"playlists"`
	Followers int    `json:"followers"`
	IsPremium bool   `json:"is_premium"`

	primaryMetric int
	joinUnix      int64
}

// CompositeScore is the weighted ranking score for a user's counters.
func CompositeScore(likes, plays, songs int) int {
	return likes*scoreWeightLikes + plays*scoreWeightPlays + songs*scoreWeightSongs
}

// Leaderboard ranks all non-banned users. The primary metric follows the
// requested dimension; ties cascade through composite score, likes, plays,
// uploads, followers, and finally earliest join date. The full chain makes
// the ordering reproducible.
func (d *Database) Leaderboard(sortBy string, limit int) []LeaderboardEntry {
	d.mu.RLock()
	defer d.mu.RUnlock()

	entries := make([]LeaderboardEntry, 0, len(d.state.Users))
	for id, user := range d.state.Users {
		if user.Banned {
			continue
		}

		entry := LeaderboardEntry{
			UserID:    id,
			Name:      displayName(user),
			Username:  user.Username,
			Score:     CompositeScore(user.TotalLikesReceived, user.TotalPlays, user.TotalSongsUploaded),
			Likes:     user.TotalLikesReceived,
			Plays:     user.TotalPlays,
			Songs:     user.TotalSongsUploaded,
			Playlists: len(user.Playlists),
			Followers: len(user.Followers),
			IsPremium: user.Premium,
			joinUnix:  user.JoinDate.UnixNano(),
		}

		switch sortBy {
		case SortByLikes:
			entry.primaryMetric = entry.Likes
		case SortByPlays:
			entry.primaryMetric = entry.Plays
		case SortBySongs:
			entry.primaryMetric = entry.Songs
		default:
			entry.primaryMetric = entry.Score
		}

		entries = append(entries, entry)
	}

	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.primaryMetric != b.primaryMetric {
			return a.primaryMetric > b.primaryMetric
		}
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.Likes != b.Likes {
			return a.Likes > b.Likes
		}
		if a.Plays != b.Plays {
			return a.Plays > b.Plays
		}
		if a.Songs != b.Songs {
			return a.Songs > b.Songs
		}
		if a.Followers != b.Followers {
			return a.Followers > b.Followers
		}
		if a.joinUnix != b.joinUnix {
			return a.joinUnix < b.joinUnix
		}
		return a.UserID < b.UserID
	})

	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries
}

// UserRank returns the user's 1-based position for the given dimension, or
// 0 when not ranked. Re-runs the full sort; acceptable at this scale.
func (d *Database) UserRank(userID int64, sortBy string) int {
	for i, entry := range d.Leaderboard(sortBy, 0) {
		if entry.UserID == userID {
			return i + 1
		}
	}
	return 0
}

func displayName(user *User) string {
	if user.FirstName != "" && user.FirstName != "Unknown" && user.FirstName != "unknown" {
		return user.FirstName
	}
	if user.Username != "" {
		return "@" + user.Username
	}
	id := fmt.Sprintf("%d", user.ID)
	if len(id) > 4 {
		id = id[len(id)-4:]
	}
	return "User " + id
}
