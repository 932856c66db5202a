package db_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mivora/playlist-bot/internal/db"
)

func TestCreatePlaylistDefaults(t *testing.T) {
	d, _ := newTestDB(t)
	seedUser(t, d, 1, "Ana")

	id, err := d.CreatePlaylist(1, "Morning Mix", "nonexistent_mood")
	require.NoError(t, err)
	require.NotEmpty(t, id)

	playlist, ok := d.GetPlaylist(id)
	require.True(t, ok)
	assert.Equal(t, db.PlaylistDraft, playlist.Status)
	assert.Nil(t, playlist.PublishedAt)
	assert.Equal(t, db.DefaultLimits().FreeSongsPerPlaylist, playlist.MaxSongs)
	assert.Equal(t, "happy", playlist.Mood, "invalid mood falls back to first category")
	assert.Equal(t, "Ana", playlist.OwnerName)

	user, ok := d.GetUser(1)
	require.True(t, ok)
	assert.Equal(t, id, user.ActivePlaylistID, "new playlist becomes upload target")
	assert.True(t, user.HasBadge(db.BadgeFirstPlaylist))
}

func TestCreatePlaylistQuota(t *testing.T) {
	limits := db.DefaultLimits()
	limits.FreePlaylists = 3
	d, _ := newTestDBWithLimits(t, limits)
	seedUser(t, d, 1, "Ana")

	for i := 0; i < 3; i++ {
		id, err := d.CreatePlaylist(1, "List", "happy")
		require.NoError(t, err)
		require.NotEmpty(t, id)
	}

	id, err := d.CreatePlaylist(1, "One Too Many", "happy")
	require.NoError(t, err)
	assert.Empty(t, id, "fourth playlist must be rejected at the quota")
}

func TestAutoPublishAtMinimum(t *testing.T) {
	d, _ := newTestDB(t)
	seedUser(t, d, 1, "Ana")
	id := seedPlaylist(t, d, 1, "Mix")

	status, err := d.AddSong(id, upload(1, 100))
	require.NoError(t, err)
	assert.Equal(t, db.StatusDraftProgress, status)

	status, err = d.AddSong(id, upload(1, 101))
	require.NoError(t, err)
	assert.Equal(t, db.StatusDraftProgress, status)

	playlist, _ := d.GetPlaylist(id)
	assert.Equal(t, db.PlaylistDraft, playlist.Status)

	status, err = d.AddSong(id, upload(1, 102))
	require.NoError(t, err)
	assert.Equal(t, db.StatusPlaylistPublished, status)

	playlist, _ = d.GetPlaylist(id)
	assert.Equal(t, db.PlaylistPublished, playlist.Status)
	require.NotNil(t, playlist.PublishedAt)

	status, err = d.AddSong(id, upload(1, 103))
	require.NoError(t, err)
	assert.Equal(t, db.StatusSongAdded, status, "inserts after publish are plain adds")
}

func TestRemoveSongDemotesPublishedPlaylist(t *testing.T) {
	d, _ := newTestDB(t)
	seedUser(t, d, 1, "Ana")
	id := seedPlaylist(t, d, 1, "Mix")
	fillSongs(t, d, id, 1, 3, 100)

	playlist, _ := d.GetPlaylist(id)
	require.Equal(t, db.PlaylistPublished, playlist.Status)

	result, err := d.RemoveSong(id, songIDAt(t, d, id, 0), 1)
	require.NoError(t, err)
	assert.Equal(t, db.StatusRemoved, result.Status)
	assert.True(t, result.PlaylistNowDraft)
	assert.Equal(t, 2, result.RemainingSongs)

	playlist, _ = d.GetPlaylist(id)
	assert.Equal(t, db.PlaylistDraft, playlist.Status)
	assert.Nil(t, playlist.PublishedAt)
}

func TestRemoveSongAuthorization(t *testing.T) {
	d, _ := newTestDB(t)
	seedUser(t, d, 1, "Ana")
	seedUser(t, d, 2, "Ben")
	id := seedPlaylist(t, d, 1, "Mix")
	fillSongs(t, d, id, 1, 1, 100)
	songID := songIDAt(t, d, id, 0)

	result, err := d.RemoveSong(id, songID, 2)
	require.NoError(t, err)
	assert.Equal(t, db.StatusNotOwner, result.Status)

	result, err = d.RemoveSong(id, "song_missing", 1)
	require.NoError(t, err)
	assert.Equal(t, db.StatusSongNotInPlaylist, result.Status)

	result, err = d.RemoveSong("pl_missing", songID, 1)
	require.NoError(t, err)
	assert.Equal(t, db.StatusPlaylistNotFound, result.Status)
}

func TestManualPublish(t *testing.T) {
	d, _ := newTestDB(t)
	seedUser(t, d, 1, "Ana")
	id := seedPlaylist(t, d, 1, "Mix")

	ok, err := d.PublishPlaylist(id)
	require.NoError(t, err)
	assert.True(t, ok, "manual publish ignores the song minimum")

	ok, err = d.PublishPlaylist(id)
	require.NoError(t, err)
	assert.False(t, ok, "publishing twice is a no-op")
}

func TestDeletePlaylist(t *testing.T) {
	d, _ := newTestDB(t)
	seedUser(t, d, 1, "Ana")
	first := seedPlaylist(t, d, 1, "First")
	second := seedPlaylist(t, d, 1, "Second")
	fillSongs(t, d, second, 1, 2, 100)
	songID := songIDAt(t, d, second, 0)

	orphans, err := d.DeletePlaylist(second)
	require.NoError(t, err)
	require.Len(t, orphans, 2, "both storage messages become orphaned")

	_, ok := d.GetPlaylist(second)
	assert.False(t, ok)
	_, ok = d.GetSong(songID)
	assert.False(t, ok)

	user, _ := d.GetUser(1)
	assert.Equal(t, []string{first}, user.Playlists)
	assert.Equal(t, first, user.ActivePlaylistID, "active pointer falls back to remaining playlist")
}

func TestVisibilityOwnerGated(t *testing.T) {
	d, _ := newTestDB(t)
	seedUser(t, d, 1, "Ana")
	seedUser(t, d, 2, "Ben")
	id := seedPlaylist(t, d, 1, "Mix")

	ok, err := d.SetVisibility(2, id, true)
	require.NoError(t, err)
	assert.False(t, ok)

	private, ok, err := d.ToggleVisibility(1, id)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, private)

	private, ok, err = d.ToggleVisibility(1, id)
	require.NoError(t, err)
	require.True(t, ok)
	assert.False(t, private)
}

func TestSetActivePlaylistOwnerGated(t *testing.T) {
	d, _ := newTestDB(t)
	seedUser(t, d, 1, "Ana")
	seedUser(t, d, 2, "Ben")
	mine := seedPlaylist(t, d, 1, "Mine")
	theirs := seedPlaylist(t, d, 2, "Theirs")

	require.NoError(t, d.SetActivePlaylist(1, theirs))
	user, _ := d.GetUser(1)
	assert.Equal(t, mine, user.ActivePlaylistID, "cannot target someone else's playlist")

	active, ok := d.GetActivePlaylist(1)
	require.True(t, ok)
	assert.Equal(t, mine, active.ID)
}

func TestBrowseFiltersDraftsAndPrivate(t *testing.T) {
	d, clock := newTestDB(t)
	seedUser(t, d, 1, "Ana")

	draft := seedPlaylist(t, d, 1, "Draft")
	published := seedPlaylist(t, d, 1, "Published")
	fillSongs(t, d, published, 1, 3, 100)

	clock.Advance(time.Hour)
	hidden := seedPlaylist(t, d, 1, "Hidden")
	fillSongs(t, d, hidden, 1, 3, 200)
	_, err := d.SetVisibility(1, hidden, true)
	require.NoError(t, err)

	public := d.PublicPlaylists()
	require.Len(t, public, 1)
	assert.Equal(t, published, public[0].ID)
	_ = draft

	results := d.SearchPlaylists("publish")
	require.Len(t, results, 1)
	assert.Equal(t, published, results[0].ID)

	byMood := d.PlaylistsByMood("happy", 10)
	require.Len(t, byMood, 1)

	trending := d.TrendingPlaylists(7, 10)
	require.Len(t, trending, 1)
}
