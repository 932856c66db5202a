package db_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mivora/playlist-bot/internal/db"
)

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "store.json")
	clock := &testClock{now: time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)}

	d, err := db.Open(db.NewFileStore(path), db.DefaultLimits(), clock.Now)
	require.NoError(t, err)
	seedUser(t, d, 1, "Ana")
	id := seedPlaylist(t, d, 1, "Mix")
	fillSongs(t, d, id, 1, 3, 100)
	songID := songIDAt(t, d, id, 0)
	mustLikeSong(t, d, 1, songID)

	// A second open against the same file sees everything.
	reopened, err := db.Open(db.NewFileStore(path), db.DefaultLimits(), clock.Now)
	require.NoError(t, err)

	user, ok := reopened.GetUser(1)
	require.True(t, ok)
	assert.Equal(t, []string{id}, user.Playlists)
	assert.Equal(t, id, user.ActivePlaylistID)

	playlist, ok := reopened.GetPlaylist(id)
	require.True(t, ok)
	assert.Equal(t, db.PlaylistPublished, playlist.Status)
	assert.Len(t, playlist.Songs, 3)

	song, ok := reopened.GetSong(songID)
	require.True(t, ok)
	assert.Equal(t, []int64{1}, song.Likes)

	top, count := reopened.TopSongOfDay("")
	require.NotNil(t, top)
	assert.Equal(t, songID, top.ID)
	assert.Equal(t, 1, count)
}

func TestFileStoreMissingFileStartsFresh(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope", "store.json")

	state, err := db.NewFileStore(path).Load()
	require.NoError(t, err)
	require.NotNil(t, state)
	assert.Empty(t, state.Users)
}

func TestFileStoreCorruptFileStartsFresh(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	state, err := db.NewFileStore(path).Load()
	require.NoError(t, err)
	require.NotNil(t, state)
	assert.Empty(t, state.Users)
}

func TestFileStoreLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "store.json")
	store := db.NewFileStore(path)

	require.NoError(t, store.Save(db.NewState()))
	require.NoError(t, store.Save(db.NewState()))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, entry := range entries {
		assert.False(t, strings.HasPrefix(entry.Name(), ".store-"),
			"temp file %s left behind", entry.Name())
	}
}

func TestOpenNormalizesLegacyDocuments(t *testing.T) {
	// A hand-rolled document missing optional collections and cap fields,
	// as older snapshots look. Opening it must fill in the gaps.
	path := filepath.Join(t.TempDir(), "store.json")
	legacy := `{
		"users": {
			"7": {"user_id": 7, "first_name": "Old", "playlists": ["pl_legacy"]}
		},
		"playlists": {
			"pl_legacy": {
				"id": "pl_legacy", "owner_id": 7, "name": "Legacy",
				"songs": ["song_a", "song_b", "song_c"]
			}
		},
		"songs": {
			"song_a": {"id": "song_a", "title": "A"},
			"song_b": {"id": "song_b", "title": "B"},
			"song_c": {"id": "song_c", "title": "C"}
		}
	}`
	require.NoError(t, os.WriteFile(path, []byte(legacy), 0o644))

	clock := &testClock{now: time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)}
	d, err := db.Open(db.NewFileStore(path), db.DefaultLimits(), clock.Now)
	require.NoError(t, err)

	playlist, ok := d.GetPlaylist("pl_legacy")
	require.True(t, ok)
	assert.Equal(t, db.DefaultLimits().FreeSongsPerPlaylist, playlist.MaxSongs,
		"zero cap replaced with owner tier default")
	assert.Equal(t, db.PlaylistPublished, playlist.Status,
		"draft at or above the publish minimum is promoted")
	require.NotNil(t, playlist.PublishedAt)

	song, ok := d.GetSong("song_a")
	require.True(t, ok)
	assert.Equal(t, "song_a", song.OriginalSongID, "missing origin defaults to self")

	assert.NotEmpty(t, d.Moods(), "mood registry seeded with defaults")
	assert.NotEmpty(t, d.PremiumPlans(), "plan registry seeded with defaults")

	user, ok := d.GetUser(7)
	require.True(t, ok)
	assert.False(t, user.JoinDate.IsZero())
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	store := db.NewMemoryStore()
	clock := &testClock{now: time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)}

	d, err := db.Open(store, db.DefaultLimits(), clock.Now)
	require.NoError(t, err)
	seedUser(t, d, 1, "Ana")

	state, err := store.Load()
	require.NoError(t, err)
	require.Contains(t, state.Users, int64(1))
	assert.Equal(t, "Ana", state.Users[1].FirstName)
}
