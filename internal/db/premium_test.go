package db_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mivora/playlist-bot/internal/db"
)

func TestActivatePremiumFromPlan(t *testing.T) {
	d, clock := newTestDB(t)
	seedUser(t, d, 1, "Ana")

	plans := d.PremiumPlans()
	require.NotEmpty(t, plans)
	plan := plans[0]

	require.NoError(t, d.ActivatePremium(1, 0, plan.ID, -1))

	user, _ := d.GetUser(1)
	assert.True(t, user.Premium)
	require.NotNil(t, user.PremiumUntil)
	assert.Equal(t, clock.Now().AddDate(0, 0, plan.DurationDays), *user.PremiumUntil)
	assert.Equal(t, plan.Price, user.PremiumPrice)
	assert.Equal(t, plan.ID, user.PremiumPlanID)
	assert.True(t, user.HasBadge(db.BadgePremium))
	assert.True(t, d.IsPremium(1))
}

func TestActivatePremiumDefaults(t *testing.T) {
	d, clock := newTestDB(t)
	seedUser(t, d, 1, "Ana")

	require.NoError(t, d.ActivatePremium(1, 0, "", -1))

	user, _ := d.GetUser(1)
	require.NotNil(t, user.PremiumUntil)
	assert.Equal(t, clock.Now().AddDate(0, 0, 30), *user.PremiumUntil)
	assert.Equal(t, 0, user.PremiumPrice)
}

func TestLazyExpiryResetsTierCaps(t *testing.T) {
	d, clock := newTestDB(t)
	seedUser(t, d, 1, "Ana")

	standard := seedPlaylist(t, d, 1, "Standard")
	custom := seedPlaylist(t, d, 1, "Custom")

	require.NoError(t, d.ActivatePremium(1, 30, "", 0))

	playlist, _ := d.GetPlaylist(standard)
	assert.Equal(t, d.Limits().PremiumSongsPerPlaylist, playlist.MaxSongs,
		"activation lifts existing playlists to the premium cap")

	// An admin-customized cap no longer matches any tier default.
	ok, err := d.SetPlaylistMaxSongs(custom, 7)
	require.NoError(t, err)
	require.True(t, ok)

	clock.Advance(31 * 24 * time.Hour)
	assert.False(t, d.IsPremium(1), "expiry is observed on the next check")

	user, _ := d.GetUser(1)
	assert.False(t, user.Premium)

	playlist, _ = d.GetPlaylist(standard)
	assert.Equal(t, d.Limits().FreeSongsPerPlaylist, playlist.MaxSongs,
		"caps equal to the premium default fall back to the free default")

	playlist, _ = d.GetPlaylist(custom)
	assert.Equal(t, 7, playlist.MaxSongs, "customized caps survive tier changes")
}

func TestPendingPaymentSingleSlot(t *testing.T) {
	d, _ := newTestDB(t)
	seedUser(t, d, 1, "Ana")

	require.NoError(t, d.SetPendingPayment(1, db.PendingPayment{
		Authority: "AUTH-1", Amount: 100, PlanID: "monthly30", Title: "1 Month", DurationDays: 30,
	}))
	require.NoError(t, d.SetPendingPayment(1, db.PendingPayment{
		Authority: "AUTH-2", Amount: 200, PlanID: "quarter90", Title: "3 Months", DurationDays: 90,
	}))

	pending, ok := d.GetPendingPayment(1)
	require.True(t, ok)
	assert.Equal(t, "AUTH-2", pending.Authority, "a new attempt replaces the previous one")

	require.NoError(t, d.ClearPendingPayment(1))
	_, ok = d.GetPendingPayment(1)
	assert.False(t, ok)
}

func TestActivationClearsPendingPayment(t *testing.T) {
	d, _ := newTestDB(t)
	seedUser(t, d, 1, "Ana")

	require.NoError(t, d.SetPendingPayment(1, db.PendingPayment{Authority: "AUTH-1", Amount: 100}))
	require.NoError(t, d.ActivatePremium(1, 30, "", 0))

	_, ok := d.GetPendingPayment(1)
	assert.False(t, ok)
}

func TestPremiumPlanCRUD(t *testing.T) {
	d, _ := newTestDB(t)
	base := len(d.PremiumPlans())

	plan, err := d.AddPremiumPlan("6 Months", 900000, 180)
	require.NoError(t, err)
	assert.NotEmpty(t, plan.ID)
	assert.Len(t, d.PremiumPlans(), base+1)

	ok, err := d.UpdatePremiumPlan(plan.ID, "Half Year", 850000, 180)
	require.NoError(t, err)
	require.True(t, ok)

	got, ok := d.GetPremiumPlan(plan.ID)
	require.True(t, ok)
	assert.Equal(t, "Half Year", got.Title)
	assert.Equal(t, 850000, got.Price)

	ok, err = d.DeletePremiumPlan(plan.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = d.DeletePremiumPlan(plan.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDeletePremiumPlanIsUnconditional(t *testing.T) {
	// Keeping at least one plan is an admin-panel guard, not a data-layer
	// invariant: the store itself deletes the last plan when asked.
	d, _ := newTestDB(t)

	for _, plan := range d.PremiumPlans() {
		ok, err := d.DeletePremiumPlan(plan.ID)
		require.NoError(t, err)
		require.True(t, ok)
	}
	assert.Empty(t, d.PremiumPlans())
}
