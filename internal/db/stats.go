package db

// GlobalStats is the admin dashboard snapshot.
type GlobalStats struct {
	TotalUsers     int     `json:"total_users"`
	ActiveUsers    int     `json:"active_users"`
	BannedUsers    int     `json:"banned_users"`
	ActiveToday    int     `json:"active_today"`
	NewToday       int     `json:"new_today"`
	NewLastWeek    int     `json:"new_last_week"`
	TotalPlaylists int     `json:"total_playlists"`
	TotalSongs     int     `json:"total_songs"`
	TotalLikes     int     `json:"total_likes"`
	TotalPlays     int     `json:"total_plays"`
	PremiumUsers   int     `json:"premium_users"`
	PremiumRatio   float64 `json:"premium_ratio"`
	Revenue        int     `json:"revenue"`
}

// GetGlobalStats computes the dashboard metrics in one pass over the
// document. Expired premium flags encountered during the scan are flipped
// and the downgrade persisted, same lazy-expiry rule as IsPremium.
func (d *Database) GetGlobalStats() (GlobalStats, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.clock()
	today := DateKey(now)
	weekAgo := now.AddDate(0, 0, -6)

	stats := GlobalStats{
		TotalSongs: len(d.state.Songs),
		TotalLikes: d.state.Stats.TotalLikes,
		TotalPlays: d.state.Stats.TotalPlays,
	}

	for _, playlist := range d.state.Playlists {
		if playlist.Status == PlaylistPublished {
			stats.TotalPlaylists++
		}
	}

	premiumChanged := false
	for _, user := range d.state.Users {
		stats.TotalUsers++
		if user.Banned {
			stats.BannedUsers++
			continue
		}

		// Day keys sort lexically, so string comparison is date comparison.
		joinDay := DateKey(user.JoinDate)
		if joinDay == today {
			stats.NewToday++
		}
		if joinDay >= DateKey(weekAgo) {
			stats.NewLastWeek++
		}
		if DateKey(user.LastSeen) == today {
			stats.ActiveToday++
		}

		if user.Premium {
			if user.PremiumUntil != nil && now.After(*user.PremiumUntil) {
				user.Premium = false
				d.applyPlaylistSongLimits(user, d.limits.PremiumSongsPerPlaylist, d.limits.FreeSongsPerPlaylist)
				premiumChanged = true
			} else {
				stats.PremiumUsers++
				stats.Revenue += user.PremiumPrice
			}
		}
	}

	stats.ActiveUsers = stats.TotalUsers - stats.BannedUsers
	if stats.ActiveUsers > 0 {
		stats.PremiumRatio = float64(stats.PremiumUsers) / float64(stats.ActiveUsers)
	}

	if premiumChanged {
		if err := d.persist(); err != nil {
			return stats, err
		}
	}
	return stats, nil
}
