package db_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mivora/playlist-bot/internal/db"
)

func TestAddSongCapacity(t *testing.T) {
	limits := db.DefaultLimits()
	limits.FreeSongsPerPlaylist = 2
	d, _ := newTestDBWithLimits(t, limits)
	seedUser(t, d, 1, "Ana")
	id := seedPlaylist(t, d, 1, "Mix")

	fillSongs(t, d, id, 1, 2, 100)

	status, err := d.AddSong(id, upload(1, 102))
	require.NoError(t, err)
	assert.Equal(t, db.StatusPlaylistFull, status)

	playlist, _ := d.GetPlaylist(id)
	assert.LessOrEqual(t, len(playlist.Songs), playlist.MaxSongs)
}

func TestAddSongStorageMissing(t *testing.T) {
	d, _ := newTestDB(t)
	seedUser(t, d, 1, "Ana")
	id := seedPlaylist(t, d, 1, "Mix")

	song := upload(1, 0) // no storage reference
	status, err := d.AddSong(id, song)
	require.NoError(t, err)
	assert.Equal(t, db.StatusStorageMissing, status)

	status, err = d.AddSong("pl_missing", upload(1, 100))
	require.NoError(t, err)
	assert.Equal(t, db.StatusPlaylistNotFound, status)
}

func TestAddSongCountsUpload(t *testing.T) {
	d, _ := newTestDB(t)
	seedUser(t, d, 1, "Ana")
	id := seedPlaylist(t, d, 1, "Mix")
	fillSongs(t, d, id, 1, 2, 100)

	user, _ := d.GetUser(1)
	assert.Equal(t, 2, user.TotalSongsUploaded)

	song := d.PlaylistSongs(id)[0]
	assert.Equal(t, song.ID, song.OriginalSongID, "originals point at themselves")
	assert.False(t, song.IsClone())
}

func TestCloneDuplicateRule(t *testing.T) {
	d, _ := newTestDB(t)
	seedUser(t, d, 1, "Ana")
	seedUser(t, d, 2, "Ben")
	source := seedPlaylist(t, d, 1, "Source")
	fillSongs(t, d, source, 1, 1, 100)
	sourceSong := songIDAt(t, d, source, 0)
	target := seedPlaylist(t, d, 2, "Target")

	status, err := d.CloneSong(sourceSong, target, 2)
	require.NoError(t, err)
	assert.Equal(t, db.StatusAdded, status)

	status, err = d.CloneSong(sourceSong, target, 2)
	require.NoError(t, err)
	assert.Equal(t, db.StatusDuplicate, status, "same storage signature already in target")
}

func TestCloneAuthorizationAndCapacity(t *testing.T) {
	limits := db.DefaultLimits()
	limits.FreeSongsPerPlaylist = 1
	d, _ := newTestDBWithLimits(t, limits)
	seedUser(t, d, 1, "Ana")
	seedUser(t, d, 2, "Ben")
	source := seedPlaylist(t, d, 1, "Source")
	fillSongs(t, d, source, 1, 1, 100)
	sourceSong := songIDAt(t, d, source, 0)
	target := seedPlaylist(t, d, 2, "Target")

	status, err := d.CloneSong(sourceSong, target, 1)
	require.NoError(t, err)
	assert.Equal(t, db.StatusNotOwner, status, "actor must own the target")

	status, err = d.CloneSong("song_missing", target, 2)
	require.NoError(t, err)
	assert.Equal(t, db.StatusNotFound, status)

	fillSongs(t, d, target, 2, 1, 200)
	status, err = d.CloneSong(sourceSong, target, 2)
	require.NoError(t, err)
	assert.Equal(t, db.StatusPlaylistFull, status)
}

func TestCloneProvenance(t *testing.T) {
	d, _ := newTestDB(t)
	seedUser(t, d, 1, "Ana")
	seedUser(t, d, 2, "Ben")
	source := seedPlaylist(t, d, 1, "Source")
	fillSongs(t, d, source, 1, 1, 100)
	sourceSong := songIDAt(t, d, source, 0)
	target := seedPlaylist(t, d, 2, "Target")

	status, err := d.CloneSong(sourceSong, target, 2)
	require.NoError(t, err)
	require.Equal(t, db.StatusAdded, status)

	clone := d.PlaylistSongs(target)[0]
	assert.Equal(t, sourceSong, clone.OriginalSongID)
	assert.Equal(t, source, clone.AddedFromPlaylistID)
	assert.Equal(t, int64(2), clone.AddedBy)
	assert.Equal(t, int64(1), clone.UploaderID, "uploader is preserved on clones")
	assert.True(t, clone.IsClone())

	actor, _ := d.GetUser(2)
	assert.Equal(t, 1, actor.TotalAdds)
	assert.Contains(t, actor.AddedPlaylists, source)

	assert.Equal(t, 1, d.CountClones(sourceSong))
	assert.True(t, d.UserHasSongCopy(2, sourceSong))
	assert.False(t, d.UserHasSongCopy(1, clone.ID))
}

func TestCloneFromOwnPlaylistSkipsAddedList(t *testing.T) {
	d, _ := newTestDB(t)
	seedUser(t, d, 1, "Ana")
	source := seedPlaylist(t, d, 1, "Source")
	fillSongs(t, d, source, 1, 1, 100)
	sourceSong := songIDAt(t, d, source, 0)
	other := seedPlaylist(t, d, 1, "Other")

	status, err := d.CloneSong(sourceSong, other, 1)
	require.NoError(t, err)
	require.Equal(t, db.StatusAdded, status)

	user, _ := d.GetUser(1)
	assert.Empty(t, user.AddedPlaylists, "own playlists never enter the added list")
}

func TestRemoveCloneAdjustsAddedList(t *testing.T) {
	d, _ := newTestDB(t)
	seedUser(t, d, 1, "Ana")
	seedUser(t, d, 2, "Ben")
	source := seedPlaylist(t, d, 1, "Source")
	fillSongs(t, d, source, 1, 2, 100)

	targetA := seedPlaylist(t, d, 2, "A")
	targetB := seedPlaylist(t, d, 2, "B")
	_, err := d.CloneSong(songIDAt(t, d, source, 0), targetA, 2)
	require.NoError(t, err)
	_, err = d.CloneSong(songIDAt(t, d, source, 1), targetB, 2)
	require.NoError(t, err)

	actor, _ := d.GetUser(2)
	require.Equal(t, 2, actor.TotalAdds)
	require.Contains(t, actor.AddedPlaylists, source)

	result, err := d.RemoveSong(targetA, songIDAt(t, d, targetA, 0), 2)
	require.NoError(t, err)
	require.Equal(t, db.StatusRemoved, result.Status)

	actor, _ = d.GetUser(2)
	assert.Equal(t, 1, actor.TotalAdds)
	assert.Contains(t, actor.AddedPlaylists, source,
		"another owned playlist still holds a clone from the source")

	result, err = d.RemoveSong(targetB, songIDAt(t, d, targetB, 0), 2)
	require.NoError(t, err)
	require.Equal(t, db.StatusRemoved, result.Status)

	actor, _ = d.GetUser(2)
	assert.Equal(t, 0, actor.TotalAdds)
	assert.NotContains(t, actor.AddedPlaylists, source)
}

func TestOrphanDetection(t *testing.T) {
	d, _ := newTestDB(t)
	seedUser(t, d, 1, "Ana")
	seedUser(t, d, 2, "Ben")
	source := seedPlaylist(t, d, 1, "Source")
	fillSongs(t, d, source, 1, 1, 100)
	sourceSong := songIDAt(t, d, source, 0)

	target := seedPlaylist(t, d, 2, "Target")
	_, err := d.CloneSong(sourceSong, target, 2)
	require.NoError(t, err)
	cloneID := songIDAt(t, d, target, 0)

	// Two songs share the storage message: removing one orphans nothing.
	result, err := d.RemoveSong(source, sourceSong, 1)
	require.NoError(t, err)
	require.Equal(t, db.StatusRemoved, result.Status)
	assert.Empty(t, result.StorageOrphans)

	// Removing the last reference reports the orphan.
	result, err = d.RemoveSong(target, cloneID, 2)
	require.NoError(t, err)
	require.Equal(t, db.StatusRemoved, result.Status)
	require.Len(t, result.StorageOrphans, 1)
	assert.Equal(t, db.StorageRef{ChannelID: testStorageChannel, MessageID: 100}, result.StorageOrphans[0])
}

func TestLikeSongIdempotent(t *testing.T) {
	d, _ := newTestDB(t)
	seedUser(t, d, 1, "Ana")
	seedUser(t, d, 2, "Ben")
	id := seedPlaylist(t, d, 1, "Mix")
	fillSongs(t, d, id, 1, 1, 100)
	songID := songIDAt(t, d, id, 0)

	liked, err := d.LikeSong(2, songID)
	require.NoError(t, err)
	assert.True(t, liked)

	liked, err = d.LikeSong(2, songID)
	require.NoError(t, err)
	assert.False(t, liked, "second like is a no-op")

	uploader, _ := d.GetUser(1)
	assert.Equal(t, 1, uploader.TotalLikesReceived)

	unliked, err := d.UnlikeSong(2, songID)
	require.NoError(t, err)
	assert.True(t, unliked)

	unliked, err = d.UnlikeSong(2, songID)
	require.NoError(t, err)
	assert.False(t, unliked)

	uploader, _ = d.GetUser(1)
	assert.Equal(t, 0, uploader.TotalLikesReceived)

	// The daily ledger keeps the original like even after the unlike.
	top, count := d.TopSongOfDay("")
	require.NotNil(t, top)
	assert.Equal(t, songID, top.ID)
	assert.Equal(t, 1, count)
}
