package db

// Badge keys. Awarding checks against this catalog so a typo in a call
// site can never mint a new badge.
const (
	BadgeFirstPlaylist = "first_playlist"
	BadgePopular       = "popular"
	BadgeViral         = "viral"
	BadgeMusicLover    = "music_lover"
	BadgePremium       = "premium"
	BadgeCuratorKing   = "curator_king"
)

// Badge thresholds, evaluated inline where the counters change.
const (
	likesForPopular      = 100
	playsForViral        = 1000
	uploadsForMusicLover = 100
)

var validBadges = map[string]bool{
	BadgeFirstPlaylist: true,
	BadgePopular:       true,
	BadgeViral:         true,
	BadgeMusicLover:    true,
	BadgePremium:       true,
	BadgeCuratorKing:   true,
}

// grantBadge appends a badge if it is in the catalog and not already held.
// Callers hold the write lock and persist afterwards.
func (d *Database) grantBadge(user *User, badge string) {
	if !validBadges[badge] || user.HasBadge(badge) {
		return
	}
	user.Badges = append(user.Badges, badge)
}

// AddBadge awards a badge to a user. Idempotent; unknown badge keys and
// unknown users are rejected.
func (d *Database) AddBadge(userID int64, badge string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	user, ok := d.state.Users[userID]
	if !ok || !validBadges[badge] || user.HasBadge(badge) {
		return false, nil
	}
	user.Badges = append(user.Badges, badge)
	return true, d.persist()
}

// LikePlaylist registers a like from the user. Idempotent: a second like is
// a no-op returning false. A genuine like bumps the owner's lifetime
// counter and the global stats.
func (d *Database) LikePlaylist(userID int64, playlistID string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	playlist, ok := d.state.Playlists[playlistID]
	user, userOK := d.state.Users[userID]
	if !ok || !userOK {
		return false, nil
	}

	if playlist.LikedBy(userID) {
		return false, nil
	}
	playlist.Likes = append(playlist.Likes, userID)

	if !containsString(user.LikedPlaylists, playlistID) {
		user.LikedPlaylists = append(user.LikedPlaylists, playlistID)
	}

	if owner, ok := d.state.Users[playlist.OwnerID]; ok {
		owner.TotalLikesReceived++
		if owner.TotalLikesReceived >= likesForPopular {
			d.grantBadge(owner, BadgePopular)
		}
	}

	d.state.Stats.TotalLikes++
	return true, d.persist()
}

// UnlikePlaylist removes the user's like, rolling back the owner's counter.
func (d *Database) UnlikePlaylist(userID int64, playlistID string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	playlist, ok := d.state.Playlists[playlistID]
	user, userOK := d.state.Users[userID]
	if !ok || !userOK {
		return false, nil
	}

	if !playlist.LikedBy(userID) {
		return false, nil
	}
	playlist.Likes = removeInt64(playlist.Likes, userID)
	user.LikedPlaylists = removeString(user.LikedPlaylists, playlistID)

	if owner, ok := d.state.Users[playlist.OwnerID]; ok && owner.TotalLikesReceived > 0 {
		owner.TotalLikesReceived--
	}

	return true, d.persist()
}

// IncrementPlays bumps a playlist's play counter, the owner's lifetime
// plays and the global counter, and checks the viral badge.
func (d *Database) IncrementPlays(playlistID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	playlist, ok := d.state.Playlists[playlistID]
	if !ok {
		return nil
	}

	playlist.Plays++
	if owner, ok := d.state.Users[playlist.OwnerID]; ok {
		owner.TotalPlays++
		if playlist.Plays >= playsForViral {
			d.grantBadge(owner, BadgeViral)
		}
	}

	d.state.Stats.TotalPlays++
	return d.persist()
}

// FollowUser links follower -> following. Returns false on self-follow,
// unknown users, duplicate follow, or when the follower's tier follow
// quota is met.
func (d *Database) FollowUser(followerID, followingID int64) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	follower, ok := d.state.Users[followerID]
	following, followingOK := d.state.Users[followingID]
	if !ok || !followingOK || followerID == followingID {
		return false, nil
	}

	if containsInt64(follower.Following, followingID) {
		return false, nil
	}

	limit := d.limits.FreeFollows
	if d.isPremiumLocked(followerID) {
		limit = d.limits.PremiumFollows
	}
	if limit > 0 && len(follower.Following) >= limit {
		return false, nil
	}

	follower.Following = append(follower.Following, followingID)
	following.Followers = append(following.Followers, followerID)
	return true, d.persist()
}

// UnfollowUser removes the link on both sides.
func (d *Database) UnfollowUser(followerID, followingID int64) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	follower, ok := d.state.Users[followerID]
	following, followingOK := d.state.Users[followingID]
	if !ok || !followingOK {
		return false, nil
	}

	follower.Following = removeInt64(follower.Following, followingID)
	following.Followers = removeInt64(following.Followers, followerID)
	return true, d.persist()
}

func containsInt64(list []int64, value int64) bool {
	for _, v := range list {
		if v == value {
			return true
		}
	}
	return false
}
