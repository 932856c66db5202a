package db

import (
	"github.com/google/uuid"
)

// SongUpload carries everything the chat layer knows about a freshly
// archived track. The storage reference must already exist: uploads are
// durably archived before the core records them.
type SongUpload struct {
	Title            string
	Performer        string
	Duration         int
	FileSize         int64
	StorageChannelID int64
	ChannelMessageID int
	UploaderID       int64
	UploaderName     string
}

// RemoveResult reports the outcome of a song removal.
type RemoveResult struct {
	Status Status
	// StorageOrphans lists storage messages no song references anymore.
	// Deleting them from the archive channel is the caller's job.
	StorageOrphans []StorageRef
	// PlaylistNowDraft is true when the removal demoted a published
	// playlist back to draft.
	PlaylistNowDraft bool
	RemainingSongs   int
	MaxSongs         int
}

// AddSong records an uploaded song in a playlist. Outcomes:
// playlist_not_found, playlist_full, storage_missing on failure;
// playlist_published when this insertion publishes the draft,
// draft_progress for an insertion into a still-draft playlist,
// song_added otherwise.
func (d *Database) AddSong(playlistID string, upload SongUpload) (Status, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	playlist, ok := d.state.Playlists[playlistID]
	if !ok {
		return StatusPlaylistNotFound, nil
	}

	if playlist.MaxSongs > 0 && len(playlist.Songs) >= playlist.MaxSongs {
		return StatusPlaylistFull, nil
	}

	if upload.ChannelMessageID == 0 {
		return StatusStorageMissing, nil
	}

	uploaderID := upload.UploaderID
	if uploaderID == 0 {
		uploaderID = playlist.OwnerID
	}
	uploaderName := upload.UploaderName
	if uploaderName == "" {
		uploaderName = playlist.OwnerName
	}

	songID := "song_" + uuid.NewString()[:12]
	song := &Song{
		ID:               songID,
		Title:            upload.Title,
		Performer:        upload.Performer,
		Duration:         upload.Duration,
		FileSize:         upload.FileSize,
		StorageChannelID: upload.StorageChannelID,
		ChannelMessageID: upload.ChannelMessageID,
		PlaylistID:       playlistID,
		UploaderID:       uploaderID,
		UploaderName:     uploaderName,
		UploadedAt:       d.clock(),
		Likes:            []int64{},
		OriginalSongID:   songID,
		AddedBy:          playlist.OwnerID,
	}

	d.state.Songs[songID] = song
	playlist.Songs = append(playlist.Songs, songID)

	if owner, ok := d.state.Users[playlist.OwnerID]; ok {
		owner.TotalSongsUploaded++
		if owner.TotalSongsUploaded >= uploadsForMusicLover {
			d.grantBadge(owner, BadgeMusicLover)
		}
	}

	status := StatusSongAdded
	if playlist.Status != PlaylistPublished {
		if len(playlist.Songs) >= d.limits.MinSongsToPublish {
			playlist.Status = PlaylistPublished
			t := d.clock()
			playlist.PublishedAt = &t
			status = StatusPlaylistPublished
		} else {
			status = StatusDraftProgress
		}
	}

	if err := d.persist(); err != nil {
		return status, err
	}
	return status, nil
}

// GetSong returns a snapshot of the song record.
func (d *Database) GetSong(songID string) (*Song, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	song, ok := d.state.Songs[songID]
	if !ok {
		return nil, false
	}
	return song.clone(), true
}

// PlaylistSongs returns snapshots of the playlist's songs in order.
func (d *Database) PlaylistSongs(playlistID string) []*Song {
	d.mu.RLock()
	defer d.mu.RUnlock()

	playlist, ok := d.state.Playlists[playlistID]
	if !ok {
		return nil
	}

	out := make([]*Song, 0, len(playlist.Songs))
	for _, songID := range playlist.Songs {
		if song, ok := d.state.Songs[songID]; ok {
			out = append(out, song.clone())
		}
	}
	return out
}

// CloneSong copies an existing song into the actor's playlist, sharing the
// source's storage message. Duplicate detection keys on the storage
// reference, not the song id, so re-cloning the same underlying track from
// anywhere is rejected.
func (d *Database) CloneSong(sourceSongID, targetPlaylistID string, actorID int64) (Status, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	source, ok := d.state.Songs[sourceSongID]
	target, targetOK := d.state.Playlists[targetPlaylistID]
	actor, actorOK := d.state.Users[actorID]
	if !ok || !targetOK || !actorOK {
		return StatusNotFound, nil
	}

	if target.OwnerID != actorID {
		return StatusNotOwner, nil
	}

	if target.MaxSongs > 0 && len(target.Songs) >= target.MaxSongs {
		return StatusPlaylistFull, nil
	}

	signature := source.Ref()
	for _, existingID := range target.Songs {
		existing, ok := d.state.Songs[existingID]
		if ok && existing.Ref() == signature {
			return StatusDuplicate, nil
		}
	}

	cloneID := "song_" + uuid.NewString()[:12]
	clone := &Song{
		ID:                  cloneID,
		Title:               source.Title,
		Performer:           source.Performer,
		Duration:            source.Duration,
		FileSize:            source.FileSize,
		StorageChannelID:    source.StorageChannelID,
		ChannelMessageID:    source.ChannelMessageID,
		PlaylistID:          targetPlaylistID,
		UploaderID:          source.UploaderID,
		UploaderName:        source.UploaderName,
		UploadedAt:          d.clock(),
		Likes:               []int64{},
		OriginalSongID:      source.OriginalSongID,
		AddedFromPlaylistID: source.PlaylistID,
		AddedBy:             actorID,
	}

	d.state.Songs[cloneID] = clone
	target.Songs = append(target.Songs, cloneID)
	actor.TotalAdds++

	if sourcePlaylist, ok := d.state.Playlists[source.PlaylistID]; ok && sourcePlaylist.OwnerID != actorID {
		if !containsString(actor.AddedPlaylists, source.PlaylistID) {
			actor.AddedPlaylists = append(actor.AddedPlaylists, source.PlaylistID)
		}
	}

	if err := d.persist(); err != nil {
		return StatusAdded, err
	}
	return StatusAdded, nil
}

// RemoveSong removes a song from a playlist. Only the playlist owner may
// remove. Removal rolls the relevant counter back (adds for clones, uploads
// for originals), drops the source playlist from the actor's added list
// when no other owned clone remains, demotes the playlist to draft if it
// falls below the publish minimum, and reports newly orphaned storage
// messages.
func (d *Database) RemoveSong(playlistID, songID string, actorID int64) (RemoveResult, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	playlist, ok := d.state.Playlists[playlistID]
	if !ok {
		return RemoveResult{Status: StatusPlaylistNotFound}, nil
	}
	if playlist.OwnerID != actorID {
		return RemoveResult{Status: StatusNotOwner}, nil
	}
	if !containsString(playlist.Songs, songID) {
		return RemoveResult{Status: StatusSongNotInPlaylist}, nil
	}

	song := d.state.Songs[songID]

	var orphans []StorageRef
	if song != nil && song.ChannelMessageID != 0 && d.storageRefUniqueLocked(songID, song.Ref()) {
		orphans = append(orphans, song.Ref())
	}

	playlist.Songs = removeString(playlist.Songs, songID)

	actor := d.state.Users[actorID]
	if actor != nil && song != nil {
		switch {
		case song.IsClone() && song.AddedBy == actorID:
			if actor.TotalAdds > 0 {
				actor.TotalAdds--
			}
			if !d.userStillHasCloneFromLocked(actor, song.AddedFromPlaylistID) {
				actor.AddedPlaylists = removeString(actor.AddedPlaylists, song.AddedFromPlaylistID)
			}
		case song.AddedBy == actorID:
			if actor.TotalSongsUploaded > 0 {
				actor.TotalSongsUploaded--
			}
		}
	}

	remaining := len(playlist.Songs)
	nowDraft := false
	if playlist.Status == PlaylistPublished && remaining < d.limits.MinSongsToPublish {
		playlist.Status = PlaylistDraft
		playlist.PublishedAt = nil
		nowDraft = true
	}

	delete(d.state.Songs, songID)

	result := RemoveResult{
		Status:           StatusRemoved,
		StorageOrphans:   orphans,
		PlaylistNowDraft: nowDraft,
		RemainingSongs:   remaining,
		MaxSongs:         playlist.MaxSongs,
	}
	if err := d.persist(); err != nil {
		return result, err
	}
	return result, nil
}

// userStillHasCloneFromLocked reports whether any playlist the user owns
// still holds a song cloned from the given source playlist.
func (d *Database) userStillHasCloneFromLocked(user *User, sourcePlaylistID string) bool {
	if sourcePlaylistID == "" {
		return false
	}
	for _, ownedID := range user.Playlists {
		owned, ok := d.state.Playlists[ownedID]
		if !ok {
			continue
		}
		for _, ownedSongID := range owned.Songs {
			if song, ok := d.state.Songs[ownedSongID]; ok && song.AddedFromPlaylistID == sourcePlaylistID {
				return true
			}
		}
	}
	return false
}

// storageRefUniqueLocked reports whether no song other than excludeSongID
// references the given storage message. Linear scan; fine at this scale,
// a fingerprint index is the upgrade path if the archive grows.
func (d *Database) storageRefUniqueLocked(excludeSongID string, ref StorageRef) bool {
	if ref.MessageID == 0 {
		return false
	}
	for id, song := range d.state.Songs {
		if id == excludeSongID {
			continue
		}
		if song.Ref() == ref {
			return false
		}
	}
	return true
}

// LikeSong registers a like. Returns false when the user already liked the
// song (idempotent no-op). A genuine new like bumps the uploader's lifetime
// counter and the current day's ledger entry.
func (d *Database) LikeSong(userID int64, songID string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	song, ok := d.state.Songs[songID]
	if !ok {
		return false, nil
	}
	if _, userOK := d.state.Users[userID]; !userOK {
		return false, nil
	}

	if song.LikedBy(userID) {
		return false, nil
	}
	song.Likes = append(song.Likes, userID)

	d.recordSongDailyLikeLocked(songID)

	if uploader, ok := d.state.Users[song.UploaderID]; ok {
		uploader.TotalLikesReceived++
		if uploader.TotalLikesReceived >= likesForPopular {
			d.grantBadge(uploader, BadgePopular)
		}
	}

	return true, d.persist()
}

// UnlikeSong removes a like. Returns false when the user had not liked the
// song. Unliking does not touch the daily ledger.
func (d *Database) UnlikeSong(userID int64, songID string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	song, ok := d.state.Songs[songID]
	if !ok {
		return false, nil
	}
	if _, userOK := d.state.Users[userID]; !userOK {
		return false, nil
	}

	if !song.LikedBy(userID) {
		return false, nil
	}
	song.Likes = removeInt64(song.Likes, userID)

	if uploader, ok := d.state.Users[song.UploaderID]; ok && uploader.TotalLikesReceived > 0 {
		uploader.TotalLikesReceived--
	}

	return true, d.persist()
}

// CountClones returns how many songs besides the original itself descend
// from it. Rendered as "added by N people".
func (d *Database) CountClones(originalSongID string) int {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if originalSongID == "" {
		return 0
	}
	count := 0
	for id, song := range d.state.Songs {
		if song.OriginalSongID == originalSongID && id != originalSongID {
			count++
		}
	}
	return count
}

// UserHasSongCopy reports whether any playlist the user owns already holds
// a descendant of the given original song.
func (d *Database) UserHasSongCopy(userID int64, originalSongID string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	user, ok := d.state.Users[userID]
	if !ok {
		return false
	}
	for _, playlistID := range user.Playlists {
		playlist, ok := d.state.Playlists[playlistID]
		if !ok {
			continue
		}
		for _, songID := range playlist.Songs {
			if song, ok := d.state.Songs[songID]; ok && song.OriginalSongID == originalSongID {
				return true
			}
		}
	}
	return false
}

func containsString(list []string, value string) bool {
	for _, v := range list {
		if v == value {
			return true
		}
	}
	return false
}
