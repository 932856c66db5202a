package db

import (
	"time"
)

// PlaylistStatus is the publish state of a playlist.
type PlaylistStatus string

const (
	PlaylistDraft     PlaylistStatus = "draft"
	PlaylistPublished PlaylistStatus = "published"
)

// PendingPayment tracks a single in-flight premium purchase for a user.
// Starting a new purchase overwrites the previous one.
type PendingPayment struct {
	Authority    string    `json:"authority"`
	Amount       int       `json:"amount"`
	PlanID       string    `json:"plan_id"`
	Title        string    `json:"title"`
	DurationDays int       `json:"duration_days"`
	CreatedAt    time.Time `json:"created_at"`
}

// User represents a bot user and their social/counter state.
type User struct {
	ID                   int64           `json:"user_id"`
	Username             string          `json:"username"`
	FirstName            string          `json:"first_name"`
	Playlists            []string        `json:"playlists"`
	LikedPlaylists       []string        `json:"liked_playlists"`
	AddedPlaylists       []string        `json:"added_playlists"`
	Following            []int64         `json:"following"`
	Followers            []int64         `json:"followers"`
	Badges               []string        `json:"badges"`
	Premium              bool            `json:"premium"`
	PremiumUntil         *time.Time      `json:"premium_until,omitempty"`
	PremiumPlanID        string          `json:"premium_plan_id,omitempty"`
	PremiumPrice         int             `json:"premium_price"`
	Banned               bool            `json:"banned"`
	TotalPlays           int             `json:"total_plays"`
	TotalLikesReceived   int             `json:"total_likes_received"`
	TotalSongsUploaded   int             `json:"total_songs_uploaded"`
	TotalAdds            int             `json:"total_adds"`
	NotificationsEnabled bool            `json:"notifications_enabled"`
	JoinDate             time.Time       `json:"join_date"`
	LastSeen             time.Time       `json:"last_seen"`
	ActivePlaylistID     string          `json:"active_playlist_id,omitempty"`
	PendingPayment       *PendingPayment `json:"pending_payment,omitempty"`
}

// HasBadge reports whether the user already holds the given badge.
func (u *User) HasBadge(badge string) bool {
	for _, b := range u.Badges {
		if b == badge {
			return true
		}
	}
	return false
}

func (u *User) clone() *User {
	c := *u
	c.Playlists = append([]string(nil), u.Playlists...)
	c.LikedPlaylists = append([]string(nil), u.LikedPlaylists...)
	c.AddedPlaylists = append([]string(nil), u.AddedPlaylists...)
	c.Following = append([]int64(nil), u.Following...)
	c.Followers = append([]int64(nil), u.Followers...)
	c.Badges = append([]string(nil), u.Badges...)
	if u.PremiumUntil != nil {
		t := *u.PremiumUntil
		c.PremiumUntil = &t
	}
	if u.PendingPayment != nil {
		p := *u.PendingPayment
		c.PendingPayment = &p
	}
	return &c
}

// Playlist represents a curated, mood-tagged list of songs.
// MaxSongs of 0 means unlimited.
type Playlist struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	OwnerID     int64          `json:"owner_id"`
	OwnerName   string         `json:"owner_name"`
	Mood        string         `json:"mood"`
	Songs       []string       `json:"songs"`
	Likes       []int64        `json:"likes"`
	Plays       int            `json:"plays"`
	CreatedAt   time.Time      `json:"created_at"`
	IsPrivate   bool           `json:"is_private"`
	Status      PlaylistStatus `json:"status"`
	MaxSongs    int            `json:"max_songs"`
	PublishedAt *time.Time     `json:"published_at,omitempty"`
}

// LikedBy reports whether the given user has liked this playlist.
func (p *Playlist) LikedBy(userID int64) bool {
	for _, id := range p.Likes {
		if id == userID {
			return true
		}
	}
	return false
}

func (p *Playlist) clone() *Playlist {
	c := *p
	c.Songs = append([]string(nil), p.Songs...)
	c.Likes = append([]int64(nil), p.Likes...)
	if p.PublishedAt != nil {
		t := *p.PublishedAt
		c.PublishedAt = &t
	}
	return &c
}

// StorageRef points at an audio message in the durable storage channel.
// The bot never interprets the content, it only tracks reference uniqueness
// so orphaned messages can be deleted from the channel.
type StorageRef struct {
	ChannelID int64 `json:"channel_id"`
	MessageID int   `json:"message_id"`
}

// Song represents a single archived track inside a playlist. Clones created
// via "add to my playlist" share the same storage reference as the original
// and point back at it through OriginalSongID.
type Song struct {
	ID                  string    `json:"id"`
	Title               string    `json:"title"`
	Performer           string    `json:"performer"`
	Duration            int       `json:"duration"`
	FileSize            int64     `json:"file_size"`
	StorageChannelID    int64     `json:"storage_channel_id"`
	ChannelMessageID    int       `json:"channel_message_id"`
	PlaylistID          string    `json:"playlist_id"`
	UploaderID          int64     `json:"uploader_id"`
	UploaderName        string    `json:"uploader_name"`
	UploadedAt          time.Time `json:"uploaded_at"`
	Likes               []int64   `json:"likes"`
	OriginalSongID      string    `json:"original_song_id"`
	AddedFromPlaylistID string    `json:"added_from_playlist_id,omitempty"`
	AddedBy             int64     `json:"added_by,omitempty"`
}

// Ref returns the song's storage channel reference.
func (s *Song) Ref() StorageRef {
	return StorageRef{ChannelID: s.StorageChannelID, MessageID: s.ChannelMessageID}
}

// IsClone reports whether this record was added from another playlist.
func (s *Song) IsClone() bool {
	return s.AddedFromPlaylistID != ""
}

// LikedBy reports whether the given user has liked this song.
func (s *Song) LikedBy(userID int64) bool {
	for _, id := range s.Likes {
		if id == userID {
			return true
		}
	}
	return false
}

func (s *Song) clone() *Song {
	c := *s
	c.Likes = append([]int64(nil), s.Likes...)
	return &c
}

// Mood is one entry of the playlist category registry. The registry is an
// ordered list so "first category" is well defined for defaults and
// deletion fallbacks.
type Mood struct {
	Key   string `json:"key"`
	Title string `json:"title"`
}

// PremiumPlan is one purchasable subscription option.
type PremiumPlan struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Price        int    `json:"price"`
	DurationDays int    `json:"duration_days"`
}

// Stats holds global lifetime counters.
type Stats struct {
	TotalPlays int `json:"total_plays"`
	TotalLikes int `json:"total_likes"`
	TotalUsers int `json:"total_users"`
}

// DailyLike is one song's accrued like count for a single day. Buckets keep
// insertion order so daily ranking ties resolve to the song that reached the
// top count first.
type DailyLike struct {
	SongID string `json:"song_id"`
	Count  int    `json:"count"`
}

// State is the whole persisted document. It is read once at startup and
// rewritten wholesale after every mutation.
type State struct {
	Users                map[int64]*User        `json:"users"`
	Playlists            map[string]*Playlist   `json:"playlists"`
	Songs                map[string]*Song       `json:"songs"`
	Moods                []Mood                 `json:"moods"`
	Stats                Stats                  `json:"stats"`
	PremiumPlans         []PremiumPlan          `json:"premium_plans"`
	SongDailyLikes       map[string][]DailyLike `json:"song_daily_likes"`
	LastTopSongBroadcast string                 `json:"last_top_song_broadcast,omitempty"`
}

// NewState returns an empty document with all collections initialized.
func NewState() *State {
	return &State{
		Users:          make(map[int64]*User),
		Playlists:      make(map[string]*Playlist),
		Songs:          make(map[string]*Song),
		Moods:          DefaultMoods(),
		PremiumPlans:   DefaultPremiumPlans(),
		SongDailyLikes: make(map[string][]DailyLike),
	}
}

// DefaultMoods returns the built-in category registry used for fresh
// documents and for old documents with an empty registry.
func DefaultMoods() []Mood {
	return []Mood{
		{Key: "happy", Title: "😊 Happy"},
		{Key: "sad", Title: "😢 Sad"},
		{Key: "chill", Title: "😌 Chill"},
		{Key: "party", Title: "🔥 Party"},
		{Key: "workout", Title: "💪 Workout"},
		{Key: "romantic", Title: "💖 Romantic"},
		{Key: "angry", Title: "😤 Angry"},
		{Key: "focus", Title: "🎯 Focus"},
	}
}

// DefaultPremiumPlans returns the plan catalog used for fresh documents.
func DefaultPremiumPlans() []PremiumPlan {
	return []PremiumPlan{
		{ID: "monthly30", Title: "1 Month", Price: 200000, DurationDays: 30},
		{ID: "quarter90", Title: "3 Months", Price: 500000, DurationDays: 90},
	}
}
