package db

import (
	"sync"
	"time"
)

// Clock supplies the current time. Injecting it keeps expiry and daily
// ranking logic deterministic in tests.
type Clock func() time.Time

// Limits holds the tier quota profile. A value of 0 means unlimited.
type Limits struct {
	FreePlaylists           int
	PremiumPlaylists        int
	FreeSongsPerPlaylist    int
	PremiumSongsPerPlaylist int
	FreeFollows             int
	PremiumFollows          int
	MinSongsToPublish       int
}

// DefaultLimits returns the stock quota profile.
func DefaultLimits() Limits {
	return Limits{
		FreePlaylists:           5,
		PremiumPlaylists:        999,
		FreeSongsPerPlaylist:    20,
		PremiumSongsPerPlaylist: 0,
		FreeFollows:             50,
		PremiumFollows:          999,
		MinSongsToPublish:       3,
	}
}

// Status is the machine-readable outcome of a domain operation. The chat
// layer maps each code to user-facing copy; the core never renders text.
type Status string

const (
	// Success outcomes.
	StatusSongAdded         Status = "song_added"
	StatusPlaylistPublished Status = "playlist_published"
	StatusDraftProgress     Status = "draft_progress"
	StatusAdded             Status = "added"
	StatusRemoved           Status = "removed"

	// Failure outcomes.
	StatusNotFound          Status = "not_found"
	StatusPlaylistNotFound  Status = "playlist_not_found"
	StatusSongNotInPlaylist Status = "song_not_in_playlist"
	StatusNotOwner          Status = "not_owner"
	StatusPlaylistFull      Status = "playlist_full"
	StatusStorageMissing    Status = "storage_missing"
	StatusDuplicate         Status = "duplicate"
	StatusLimitReached      Status = "limit_reached"
	StatusInvalidKey        Status = "invalid_key"
	StatusInvalidTitle      Status = "invalid_title"
	StatusExists            Status = "exists"
	StatusLastOne           Status = "last_one"
)

// OK reports whether the status is a success outcome.
func (s Status) OK() bool {
	switch s {
	case StatusSongAdded, StatusPlaylistPublished, StatusDraftProgress, StatusAdded, StatusRemoved:
		return true
	}
	return false
}

// Database owns the in-memory document and serializes every operation
// behind one lock. Telegram updates are handled concurrently, and
// read-modify-write-then-persist sequences are not atomic without it.
type Database struct {
	mu     sync.RWMutex
	store  Store
	state  *State
	clock  Clock
	limits Limits
}

// Open loads the document from the store, applies schema defaults for
// fields older documents are missing, and returns a ready Database.
func Open(store Store, limits Limits, clock Clock) (*Database, error) {
	if clock == nil {
		clock = time.Now
	}

	state, err := store.Load()
	if err != nil {
		return nil, err
	}

	d := &Database{
		store:  store,
		state:  state,
		clock:  clock,
		limits: limits,
	}
	d.ensureDefaults()
	return d, nil
}

// Limits returns the quota profile the database was opened with.
func (d *Database) Limits() Limits {
	return d.limits
}

// persist writes the whole document through the store. Callers hold the
// write lock. A failed write aborts the mutating call with an error so the
// divergence between memory and disk is never silent.
func (d *Database) persist() error {
	return d.store.Save(d.state)
}

// ensureDefaults upgrades documents written by older versions: every new
// field gets a safe default so the rest of the code never checks for nil
// collections.
func (d *Database) ensureDefaults() {
	s := d.state
	now := d.clock()

	if s.Users == nil {
		s.Users = make(map[int64]*User)
	}
	if s.Playlists == nil {
		s.Playlists = make(map[string]*Playlist)
	}
	if s.Songs == nil {
		s.Songs = make(map[string]*Song)
	}
	if s.SongDailyLikes == nil {
		s.SongDailyLikes = make(map[string][]DailyLike)
	}
	if len(s.Moods) == 0 {
		s.Moods = DefaultMoods()
	}
	if len(s.PremiumPlans) == 0 {
		s.PremiumPlans = DefaultPremiumPlans()
	}

	for id, u := range s.Users {
		u.ID = id
		if u.JoinDate.IsZero() {
			u.JoinDate = now
		}
		if u.LastSeen.IsZero() {
			u.LastSeen = u.JoinDate
		}
	}

	for id, p := range s.Playlists {
		p.ID = id
		if p.Status != PlaylistDraft && p.Status != PlaylistPublished {
			p.Status = PlaylistDraft
		}
		// Documents that predate per-playlist caps get the owner's current
		// tier default. A stored 0 is indistinguishable from "missing", but
		// 0 is only a legitimate cap on the premium tier anyway.
		if p.MaxSongs == 0 {
			if owner, ok := s.Users[p.OwnerID]; ok && owner.Premium {
				p.MaxSongs = d.limits.PremiumSongsPerPlaylist
			} else {
				p.MaxSongs = d.limits.FreeSongsPerPlaylist
			}
		}
		if p.Status == PlaylistDraft && len(p.Songs) >= d.limits.MinSongsToPublish {
			p.Status = PlaylistPublished
			if p.PublishedAt == nil {
				t := now
				p.PublishedAt = &t
			}
		}
	}

	for id, song := range s.Songs {
		song.ID = id
		if song.OriginalSongID == "" {
			song.OriginalSongID = id
		}
	}
}
