package db_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mivora/playlist-bot/internal/db"
)

func TestAddMoodNormalizesKey(t *testing.T) {
	d, _ := newTestDB(t)

	key, status, err := d.AddMood("  Lo Fi Beats ", "🎧 Lo-Fi Beats")
	require.NoError(t, err)
	assert.Equal(t, db.StatusAdded, status)
	assert.Equal(t, "lo_fi_beats", key)

	title, ok := d.MoodTitle("lo_fi_beats")
	require.True(t, ok)
	assert.Equal(t, "🎧 Lo-Fi Beats", title)
}

func TestAddMoodValidation(t *testing.T) {
	d, _ := newTestDB(t)

	_, status, err := d.AddMood("драйв", "Drive")
	require.NoError(t, err)
	assert.Equal(t, db.StatusInvalidKey, status)

	_, status, err = d.AddMood("quiet", "   ")
	require.NoError(t, err)
	assert.Equal(t, db.StatusInvalidTitle, status)

	_, status, err = d.AddMood("happy", "Happy Again")
	require.NoError(t, err)
	assert.Equal(t, db.StatusExists, status)
}

func TestDeleteMoodReassignsPlaylists(t *testing.T) {
	d, _ := newTestDB(t)
	seedUser(t, d, 1, "Ana")

	p1, err := d.CreatePlaylist(1, "One", "sad")
	require.NoError(t, err)
	p2, err := d.CreatePlaylist(1, "Two", "sad")
	require.NoError(t, err)

	fallback, status, err := d.DeleteMood("sad")
	require.NoError(t, err)
	require.Equal(t, db.StatusRemoved, status)
	assert.Equal(t, "happy", fallback, "first remaining key wins")

	for _, id := range []string{p1, p2} {
		playlist, ok := d.GetPlaylist(id)
		require.True(t, ok)
		assert.Equal(t, fallback, playlist.Mood)
	}
	_, ok := d.MoodTitle("sad")
	assert.False(t, ok)
	_, ok = d.MoodTitle(fallback)
	assert.True(t, ok, "fallback still registered")
}

func TestDeleteMoodGuards(t *testing.T) {
	d, _ := newTestDB(t)

	_, status, err := d.DeleteMood("no_such_mood")
	require.NoError(t, err)
	assert.Equal(t, db.StatusNotFound, status)

	// Drop all but one, then try to delete the survivor.
	moods := d.Moods()
	for _, m := range moods[1:] {
		_, status, err := d.DeleteMood(m.Key)
		require.NoError(t, err)
		require.Equal(t, db.StatusRemoved, status)
	}

	_, status, err = d.DeleteMood(moods[0].Key)
	require.NoError(t, err)
	assert.Equal(t, db.StatusLastOne, status)
	assert.Len(t, d.Moods(), 1, "registry unchanged after rejected delete")
}
