package db_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mivora/playlist-bot/internal/db"
)

const testStorageChannel int64 = -1001234567890

type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time {
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

func newTestDB(t *testing.T) (*db.Database, *testClock) {
	t.Helper()
	return newTestDBWithLimits(t, db.DefaultLimits())
}

func newTestDBWithLimits(t *testing.T, limits db.Limits) (*db.Database, *testClock) {
	t.Helper()
	clock := &testClock{now: time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)}
	database, err := db.Open(db.NewMemoryStore(), limits, clock.Now)
	require.NoError(t, err)
	return database, clock
}

func seedUser(t *testing.T, d *db.Database, id int64, name string) {
	t.Helper()
	_, err := d.CreateUser(id, fmt.Sprintf("user%d", id), name)
	require.NoError(t, err)
}

func seedPlaylist(t *testing.T, d *db.Database, owner int64, name string) string {
	t.Helper()
	id, err := d.CreatePlaylist(owner, name, "happy")
	require.NoError(t, err)
	require.NotEmpty(t, id)
	return id
}

// upload builds a song upload with a unique storage message id.
func upload(owner int64, messageID int) db.SongUpload {
	return db.SongUpload{
		Title:            fmt.Sprintf("Track %d", messageID),
		Performer:        "Performer",
		Duration:         180,
		FileSize:         4 << 20,
		StorageChannelID: testStorageChannel,
		ChannelMessageID: messageID,
		UploaderID:       owner,
	}
}

// fillSongs adds n songs with message ids start..start+n-1.
func fillSongs(t *testing.T, d *db.Database, playlistID string, owner int64, n, start int) {
	t.Helper()
	for i := 0; i < n; i++ {
		status, err := d.AddSong(playlistID, upload(owner, start+i))
		require.NoError(t, err)
		require.True(t, status.OK(), "unexpected status %s", status)
	}
}

// firstSongID returns the id of the playlist's song at the given position.
func songIDAt(t *testing.T, d *db.Database, playlistID string, idx int) string {
	t.Helper()
	songs := d.PlaylistSongs(playlistID)
	require.Greater(t, len(songs), idx)
	return songs[idx].ID
}
