package db

import (
	"github.com/google/uuid"
)

const defaultPremiumDays = 30

// IsPremium reports whether the user currently has an active premium
// entitlement. Expiry is evaluated lazily on read: the first check past the
// expiry flips the flag, re-applies free-tier playlist caps and persists.
func (d *Database) IsPremium(id int64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.isPremiumLocked(id)
}

// isPremiumLocked is the expiry check for callers already holding the write
// lock. A failed persist of the downgrade is deliberately not fatal to the
// read; the flags are re-derived on the next check anyway.
func (d *Database) isPremiumLocked(id int64) bool {
	user, ok := d.state.Users[id]
	if !ok || !user.Premium {
		return false
	}

	if user.PremiumUntil != nil && d.clock().After(*user.PremiumUntil) {
		user.Premium = false
		d.applyPlaylistSongLimits(user, d.limits.PremiumSongsPerPlaylist, d.limits.FreeSongsPerPlaylist)
		_ = d.persist()
		return false
	}
	return true
}

// ActivatePremium grants the user a premium window. Days and price fall
// back to the referenced plan when unset (days <= 0, price < 0), and to
// 30 days / 0 when no plan is given either. Any pending payment is cleared
// and existing playlists are lifted to the premium song cap.
func (d *Database) ActivatePremium(userID int64, days int, planID string, price int) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	user, ok := d.state.Users[userID]
	if !ok {
		return nil
	}

	if days <= 0 {
		days = defaultPremiumDays
		if plan, ok := d.premiumPlanLocked(planID); ok {
			days = plan.DurationDays
		}
	}
	if price < 0 {
		price = 0
		if plan, ok := d.premiumPlanLocked(planID); ok {
			price = plan.Price
		}
	}

	expiry := d.clock().AddDate(0, 0, days)
	user.Premium = true
	user.PremiumUntil = &expiry
	user.PremiumPlanID = planID
	user.PremiumPrice = price
	user.PendingPayment = nil

	d.applyPlaylistSongLimits(user, d.limits.FreeSongsPerPlaylist, d.limits.PremiumSongsPerPlaylist)
	d.grantBadge(user, BadgePremium)

	return d.persist()
}

// applyPlaylistSongLimits moves the owner's playlists from one tier's song
// cap to the other. Only caps still equal to the outgoing tier default are
// touched, so a per-playlist cap that was customized survives tier changes.
func (d *Database) applyPlaylistSongLimits(user *User, fromLimit, toLimit int) {
	for _, playlistID := range user.Playlists {
		playlist, ok := d.state.Playlists[playlistID]
		if !ok {
			continue
		}
		if playlist.MaxSongs == fromLimit && playlist.MaxSongs != toLimit {
			playlist.MaxSongs = toLimit
		}
	}
}

// SetPendingPayment records the user's single in-flight purchase attempt,
// replacing any previous one.
func (d *Database) SetPendingPayment(userID int64, pending PendingPayment) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	user, ok := d.state.Users[userID]
	if !ok {
		return nil
	}

	pending.CreatedAt = d.clock()
	user.PendingPayment = &pending
	return d.persist()
}

// ClearPendingPayment drops the user's in-flight purchase attempt, if any.
func (d *Database) ClearPendingPayment(userID int64) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	user, ok := d.state.Users[userID]
	if !ok || user.PendingPayment == nil {
		return nil
	}
	user.PendingPayment = nil
	return d.persist()
}

// GetPendingPayment returns a snapshot of the user's in-flight purchase.
func (d *Database) GetPendingPayment(userID int64) (*PendingPayment, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	user, ok := d.state.Users[userID]
	if !ok || user.PendingPayment == nil {
		return nil, false
	}
	p := *user.PendingPayment
	return &p, true
}

// PremiumPlans returns the ordered plan catalog.
func (d *Database) PremiumPlans() []PremiumPlan {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]PremiumPlan(nil), d.state.PremiumPlans...)
}

// GetPremiumPlan returns the plan with the given id.
func (d *Database) GetPremiumPlan(planID string) (PremiumPlan, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	plan, ok := d.premiumPlanLocked(planID)
	return plan, ok
}

func (d *Database) premiumPlanLocked(planID string) (PremiumPlan, bool) {
	if planID == "" {
		return PremiumPlan{}, false
	}
	for _, plan := range d.state.PremiumPlans {
		if plan.ID == planID {
			return plan, true
		}
	}
	return PremiumPlan{}, false
}

// AddPremiumPlan appends a new plan to the catalog with a generated id.
func (d *Database) AddPremiumPlan(title string, price, durationDays int) (PremiumPlan, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	plan := PremiumPlan{
		ID:           uuid.NewString()[:8],
		Title:        title,
		Price:        price,
		DurationDays: durationDays,
	}
	d.state.PremiumPlans = append(d.state.PremiumPlans, plan)
	if err := d.persist(); err != nil {
		return PremiumPlan{}, err
	}
	return plan, nil
}

// UpdatePremiumPlan rewrites an existing plan in place.
func (d *Database) UpdatePremiumPlan(planID, title string, price, durationDays int) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for i := range d.state.PremiumPlans {
		if d.state.PremiumPlans[i].ID != planID {
			continue
		}
		d.state.PremiumPlans[i].Title = title
		d.state.PremiumPlans[i].Price = price
		d.state.PremiumPlans[i].DurationDays = durationDays
		return true, d.persist()
	}
	return false, nil
}

// DeletePremiumPlan removes a plan from the catalog. The data layer deletes
// unconditionally; refusing to drop the last remaining plan is the admin
// panel's concern.
func (d *Database) DeletePremiumPlan(planID string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for i, plan := range d.state.PremiumPlans {
		if plan.ID != planID {
			continue
		}
		d.state.PremiumPlans = append(d.state.PremiumPlans[:i], d.state.PremiumPlans[i+1:]...)
		return true, d.persist()
	}
	return false, nil
}
