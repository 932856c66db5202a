package db

import (
	"time"
)

// touchSuppressWindow bounds how often last-seen updates hit the store.
const touchSuppressWindow = time.Minute

// CreateUser registers a new user, or returns the existing record if the id
// is already known. The returned record is a snapshot.
func (d *Database) CreateUser(id int64, username, firstName string) (*User, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if existing, ok := d.state.Users[id]; ok {
		return existing.clone(), nil
	}

	now := d.clock()
	user := &User{
		ID:                   id,
		Username:             username,
		FirstName:            firstName,
		Playlists:            []string{},
		LikedPlaylists:       []string{},
		AddedPlaylists:       []string{},
		Following:            []int64{},
		Followers:            []int64{},
		Badges:               []string{},
		NotificationsEnabled: true,
		JoinDate:             now,
		LastSeen:             now,
	}

	d.state.Users[id] = user
	d.state.Stats.TotalUsers++
	if err := d.persist(); err != nil {
		return nil, err
	}
	return user.clone(), nil
}

// GetUser returns a snapshot of the user record.
func (d *Database) GetUser(id int64) (*User, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	user, ok := d.state.Users[id]
	if !ok {
		return nil, false
	}
	return user.clone(), true
}

// TouchUser refreshes the user's last-seen timestamp. Updates within a
// minute of the previous one are skipped to keep the store write rate down.
func (d *Database) TouchUser(id int64) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	user, ok := d.state.Users[id]
	if !ok {
		return nil
	}

	now := d.clock()
	if now.Sub(user.LastSeen) < touchSuppressWindow {
		return nil
	}

	user.LastSeen = now
	return d.persist()
}

// SetNotifications stores the user's notification preference.
func (d *Database) SetNotifications(id int64, enabled bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	user, ok := d.state.Users[id]
	if !ok {
		return nil
	}
	if user.NotificationsEnabled == enabled {
		return nil
	}
	user.NotificationsEnabled = enabled
	return d.persist()
}

// BanUser flags the user as banned. Banned users are excluded from the
// leaderboard and ignored by broadcasts.
func (d *Database) BanUser(id int64) error {
	return d.setBanned(id, true)
}

// UnbanUser clears the banned flag.
func (d *Database) UnbanUser(id int64) error {
	return d.setBanned(id, false)
}

func (d *Database) setBanned(id int64, banned bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	user, ok := d.state.Users[id]
	if !ok {
		return nil
	}
	if user.Banned == banned {
		return nil
	}
	user.Banned = banned
	return d.persist()
}

// IsBanned reports whether the user exists and is banned.
func (d *Database) IsBanned(id int64) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	user, ok := d.state.Users[id]
	return ok && user.Banned
}

// AllUserIDs returns the ids of every registered user, banned ones
// excluded. Broadcasts iterate this.
func (d *Database) AllUserIDs() []int64 {
	d.mu.RLock()
	defer d.mu.RUnlock()

	ids := make([]int64, 0, len(d.state.Users))
	for id, u := range d.state.Users {
		if u.Banned {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

// NotifiableUserIDs returns ids of users who have notifications enabled and
// are not banned.
func (d *Database) NotifiableUserIDs() []int64 {
	d.mu.RLock()
	defer d.mu.RUnlock()

	ids := make([]int64, 0, len(d.state.Users))
	for id, u := range d.state.Users {
		if u.Banned || !u.NotificationsEnabled {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}
