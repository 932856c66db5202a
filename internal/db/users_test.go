package db_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateUserIdempotent(t *testing.T) {
	d, clock := newTestDB(t)

	user, err := d.CreateUser(1, "ana", "Ana")
	require.NoError(t, err)
	assert.Equal(t, clock.Now(), user.JoinDate)
	assert.True(t, user.NotificationsEnabled)

	again, err := d.CreateUser(1, "other", "Other")
	require.NoError(t, err)
	assert.Equal(t, "Ana", again.FirstName, "re-registering never overwrites")

	stats, err := d.GetGlobalStats()
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalUsers)
}

func TestTouchUserSuppression(t *testing.T) {
	d, clock := newTestDB(t)
	seedUser(t, d, 1, "Ana")
	joined := clock.Now()

	clock.Advance(30 * time.Second)
	require.NoError(t, d.TouchUser(1))
	user, _ := d.GetUser(1)
	assert.Equal(t, joined, user.LastSeen, "touches within a minute are dropped")

	clock.Advance(45 * time.Second)
	require.NoError(t, d.TouchUser(1))
	user, _ = d.GetUser(1)
	assert.Equal(t, clock.Now(), user.LastSeen)

	require.NoError(t, d.TouchUser(404))
}

func TestBanLifecycle(t *testing.T) {
	d, _ := newTestDB(t)
	seedUser(t, d, 1, "Ana")
	seedUser(t, d, 2, "Ben")

	require.NoError(t, d.BanUser(2))
	assert.True(t, d.IsBanned(2))
	assert.False(t, d.IsBanned(1))
	assert.False(t, d.IsBanned(404))

	assert.ElementsMatch(t, []int64{1}, d.AllUserIDs())

	require.NoError(t, d.UnbanUser(2))
	assert.False(t, d.IsBanned(2))
	assert.ElementsMatch(t, []int64{1, 2}, d.AllUserIDs())
}

func TestNotifiableUserIDs(t *testing.T) {
	d, _ := newTestDB(t)
	seedUser(t, d, 1, "Ana")
	seedUser(t, d, 2, "Ben")
	seedUser(t, d, 3, "Cleo")

	require.NoError(t, d.SetNotifications(2, false))
	require.NoError(t, d.BanUser(3))

	assert.ElementsMatch(t, []int64{1}, d.NotifiableUserIDs())
}
