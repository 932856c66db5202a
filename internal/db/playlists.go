package db

import (
	"sort"
	"strings"

	"github.com/google/uuid"
)

// CreatePlaylist creates a draft playlist owned by the user and makes it
// their active upload target. Returns "" when the user is unknown or their
// tier's playlist quota is already met. An unknown mood falls back to the
// first registered category.
func (d *Database) CreatePlaylist(ownerID int64, name, mood string) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	user, ok := d.state.Users[ownerID]
	if !ok {
		return "", nil
	}

	limit := d.limits.FreePlaylists
	maxSongs := d.limits.FreeSongsPerPlaylist
	if d.isPremiumLocked(ownerID) {
		limit = d.limits.PremiumPlaylists
		maxSongs = d.limits.PremiumSongsPerPlaylist
	}
	if limit > 0 && len(user.Playlists) >= limit {
		return "", nil
	}

	if !d.moodExistsLocked(mood) {
		mood = d.defaultMoodLocked()
	}

	playlistID := "pl_" + uuid.NewString()[:12]
	playlist := &Playlist{
		ID:        playlistID,
		Name:      name,
		OwnerID:   ownerID,
		OwnerName: user.FirstName,
		Mood:      mood,
		Songs:     []string{},
		Likes:     []int64{},
		CreatedAt: d.clock(),
		Status:    PlaylistDraft,
		MaxSongs:  maxSongs,
	}

	d.state.Playlists[playlistID] = playlist
	user.Playlists = append(user.Playlists, playlistID)
	user.ActivePlaylistID = playlistID

	if len(user.Playlists) == 1 {
		d.grantBadge(user, BadgeFirstPlaylist)
	}

	if err := d.persist(); err != nil {
		return "", err
	}
	return playlistID, nil
}

// GetPlaylist returns a snapshot of the playlist.
func (d *Database) GetPlaylist(playlistID string) (*Playlist, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	playlist, ok := d.state.Playlists[playlistID]
	if !ok {
		return nil, false
	}
	return playlist.clone(), true
}

// UserPlaylists returns the user's own playlists, drafts first.
func (d *Database) UserPlaylists(userID int64) []*Playlist {
	d.mu.RLock()
	defer d.mu.RUnlock()

	user, ok := d.state.Users[userID]
	if !ok {
		return nil
	}

	var drafts, published []*Playlist
	for _, id := range user.Playlists {
		playlist, ok := d.state.Playlists[id]
		if !ok {
			continue
		}
		if playlist.Status == PlaylistPublished {
			published = append(published, playlist.clone())
		} else {
			drafts = append(drafts, playlist.clone())
		}
	}
	return append(drafts, published...)
}

// SetVisibility sets the playlist's private flag. Owner-gated.
func (d *Database) SetVisibility(userID int64, playlistID string, private bool) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	playlist, ok := d.state.Playlists[playlistID]
	if !ok || playlist.OwnerID != userID {
		return false, nil
	}
	playlist.IsPrivate = private
	return true, d.persist()
}

// ToggleVisibility flips the playlist's private flag and returns the new
// state. Owner-gated.
func (d *Database) ToggleVisibility(userID int64, playlistID string) (private, ok bool, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	playlist, found := d.state.Playlists[playlistID]
	if !found || playlist.OwnerID != userID {
		return false, false, nil
	}
	playlist.IsPrivate = !playlist.IsPrivate
	return playlist.IsPrivate, true, d.persist()
}

// SetPlaylistMaxSongs overrides a playlist's song cap (0 = unlimited).
// Admin-only surface. A customized cap no longer matches the owner's tier
// default, so tier changes leave it alone.
func (d *Database) SetPlaylistMaxSongs(playlistID string, maxSongs int) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	playlist, ok := d.state.Playlists[playlistID]
	if !ok || maxSongs < 0 {
		return false, nil
	}
	playlist.MaxSongs = maxSongs
	return true, d.persist()
}

// PublishPlaylist force-publishes regardless of song count. Returns false
// if the playlist does not exist or is already published.
func (d *Database) PublishPlaylist(playlistID string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	playlist, ok := d.state.Playlists[playlistID]
	if !ok || playlist.Status == PlaylistPublished {
		return false, nil
	}

	playlist.Status = PlaylistPublished
	t := d.clock()
	playlist.PublishedAt = &t
	return true, d.persist()
}

// GetActivePlaylist returns the user's current upload target. When the
// stored pointer is stale it falls back to the most recently created owned
// playlist without persisting the fallback.
func (d *Database) GetActivePlaylist(userID int64) (*Playlist, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	user, ok := d.state.Users[userID]
	if !ok {
		return nil, false
	}

	if user.ActivePlaylistID != "" {
		if playlist, ok := d.state.Playlists[user.ActivePlaylistID]; ok && playlist.OwnerID == userID {
			return playlist.clone(), true
		}
	}

	if id := d.fallbackPlaylistIDLocked(user); id != "" {
		return d.state.Playlists[id].clone(), true
	}
	return nil, false
}

// SetActivePlaylist stores the user's upload target. Passing "" clears it.
func (d *Database) SetActivePlaylist(userID int64, playlistID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	user, ok := d.state.Users[userID]
	if !ok {
		return nil
	}

	if playlistID != "" {
		playlist, ok := d.state.Playlists[playlistID]
		if !ok || playlist.OwnerID != userID {
			return nil
		}
	}

	user.ActivePlaylistID = playlistID
	return d.persist()
}

// fallbackPlaylistIDLocked returns the user's most recently created owned
// playlist id, or "".
func (d *Database) fallbackPlaylistIDLocked(user *User) string {
	for i := len(user.Playlists) - 1; i >= 0; i-- {
		id := user.Playlists[i]
		if playlist, ok := d.state.Playlists[id]; ok && playlist.OwnerID == user.ID {
			return id
		}
	}
	return ""
}

// DeletePlaylist removes the playlist with all its songs, unlinks it from
// the owner, and returns the storage references that no remaining song
// points at so the caller can purge them from the archive channel.
func (d *Database) DeletePlaylist(playlistID string) ([]StorageRef, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	playlist, ok := d.state.Playlists[playlistID]
	if !ok {
		return nil, nil
	}

	var orphans []StorageRef
	for _, songID := range playlist.Songs {
		song, ok := d.state.Songs[songID]
		if !ok {
			continue
		}
		if song.ChannelMessageID != 0 && d.storageRefUniqueLocked(songID, song.Ref()) {
			orphans = append(orphans, song.Ref())
		}
		delete(d.state.Songs, songID)
	}

	if owner, ok := d.state.Users[playlist.OwnerID]; ok {
		owner.Playlists = removeString(owner.Playlists, playlistID)
		if owner.ActivePlaylistID == playlistID {
			owner.ActivePlaylistID = d.fallbackPlaylistIDLocked(owner)
		}
	}

	delete(d.state.Playlists, playlistID)
	if err := d.persist(); err != nil {
		return nil, err
	}
	return orphans, nil
}

// publicPlaylistsLocked returns published non-private playlists sorted by
// creation time (newest first) with an id tie-break so iteration order is
// deterministic.
func (d *Database) publicPlaylistsLocked() []*Playlist {
	var out []*Playlist
	for _, playlist := range d.state.Playlists {
		if playlist.IsPrivate || playlist.Status != PlaylistPublished {
			continue
		}
		out = append(out, playlist.clone())
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// PublicPlaylists returns every published, non-private playlist.
func (d *Database) PublicPlaylists() []*Playlist {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.publicPlaylistsLocked()
}

// TrendingPlaylists returns public playlists created within the window,
// most played first.
func (d *Database) TrendingPlaylists(days, limit int) []*Playlist {
	d.mu.RLock()
	defer d.mu.RUnlock()

	cutoff := d.clock().AddDate(0, 0, -days)
	var out []*Playlist
	for _, playlist := range d.publicPlaylistsLocked() {
		if playlist.CreatedAt.After(cutoff) {
			out = append(out, playlist)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Plays > out[j].Plays
	})
	return capList(out, limit)
}

// TopPlaylists returns public playlists ordered by like count.
func (d *Database) TopPlaylists(limit int) []*Playlist {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := d.publicPlaylistsLocked()
	sort.SliceStable(out, func(i, j int) bool {
		return len(out[i].Likes) > len(out[j].Likes)
	})
	return capList(out, limit)
}

// NewestPlaylists returns public playlists, newest first.
func (d *Database) NewestPlaylists(limit int) []*Playlist {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return capList(d.publicPlaylistsLocked(), limit)
}

// PlaylistsByMood returns public playlists tagged with the mood, ordered by
// like count.
func (d *Database) PlaylistsByMood(mood string, limit int) []*Playlist {
	d.mu.RLock()
	defer d.mu.RUnlock()

	var out []*Playlist
	for _, playlist := range d.publicPlaylistsLocked() {
		if playlist.Mood == mood {
			out = append(out, playlist)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return len(out[i].Likes) > len(out[j].Likes)
	})
	return capList(out, limit)
}

// SearchPlaylists returns public playlists whose name contains the query,
// case-insensitively.
func (d *Database) SearchPlaylists(query string) []*Playlist {
	d.mu.RLock()
	defer d.mu.RUnlock()

	query = strings.ToLower(query)
	var out []*Playlist
	for _, playlist := range d.publicPlaylistsLocked() {
		if strings.Contains(strings.ToLower(playlist.Name), query) {
			out = append(out, playlist)
		}
	}
	return out
}

// AddedPlaylists returns the playlists the user has saved songs from.
func (d *Database) AddedPlaylists(userID int64) []*Playlist {
	d.mu.RLock()
	defer d.mu.RUnlock()

	user, ok := d.state.Users[userID]
	if !ok {
		return nil
	}

	seen := make(map[string]bool)
	var out []*Playlist
	for _, id := range user.AddedPlaylists {
		if seen[id] {
			continue
		}
		seen[id] = true
		if playlist, ok := d.state.Playlists[id]; ok {
			out = append(out, playlist.clone())
		}
	}
	return out
}

func capList(playlists []*Playlist, limit int) []*Playlist {
	if limit > 0 && len(playlists) > limit {
		return playlists[:limit]
	}
	return playlists
}

func removeString(list []string, value string) []string {
	out := list[:0]
	for _, v := range list {
		if v != value {
			out = append(out, v)
		}
	}
	return out
}

func removeInt64(list []int64, value int64) []int64 {
	out := list[:0]
	for _, v := range list {
		if v != value {
			out = append(out, v)
		}
	}
	return out
}
