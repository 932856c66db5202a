package db

import (
	"time"
)

// dateKeyLayout is the ledger's day key format.
const dateKeyLayout = "2006-01-02"

// dailyLikeRetention bounds ledger growth; older day buckets are dropped on
// each write. Compaction only, not correctness-critical.
const dailyLikeRetention = 14 * 24 * time.Hour

// DateKey formats a time as a ledger day key.
func DateKey(t time.Time) string {
	return t.Format(dateKeyLayout)
}

// recordSongDailyLikeLocked bumps the song's counter in today's bucket.
// First-like order within the bucket is preserved so daily ranking ties are
// deterministic. Callers hold the write lock and persist afterwards.
func (d *Database) recordSongDailyLikeLocked(songID string) {
	if songID == "" {
		return
	}

	key := DateKey(d.clock())
	bucket := d.state.SongDailyLikes[key]
	found := false
	for i := range bucket {
		if bucket[i].SongID == songID {
			bucket[i].Count++
			found = true
			break
		}
	}
	if !found {
		bucket = append(bucket, DailyLike{SongID: songID, Count: 1})
	}
	d.state.SongDailyLikes[key] = bucket

	d.pruneDailyLikesLocked()
}

// pruneDailyLikesLocked drops day buckets older than the retention window.
// Unparseable keys are left alone.
func (d *Database) pruneDailyLikesLocked() {
	cutoff := d.clock().Add(-dailyLikeRetention)
	for key := range d.state.SongDailyLikes {
		day, err := time.Parse(dateKeyLayout, key)
		if err != nil {
			continue
		}
		if day.Before(cutoff) {
			delete(d.state.SongDailyLikes, key)
		}
	}
}

// TopSongOfDay returns the song with the highest like count for the given
// day key ("" means today) together with that count. Ties go to the song
// that entered the bucket first. Songs deleted since being liked are
// skipped.
func (d *Database) TopSongOfDay(date string) (*Song, int) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if date == "" {
		date = DateKey(d.clock())
	}

	var best *Song
	bestCount := 0
	for _, entry := range d.state.SongDailyLikes[date] {
		if entry.Count <= bestCount {
			continue
		}
		song, ok := d.state.Songs[entry.SongID]
		if !ok {
			continue
		}
		best = song
		bestCount = entry.Count
	}

	if best == nil {
		return nil, 0
	}
	return best.clone(), bestCount
}

// LastTopSongBroadcast returns the day key of the most recent top-song
// broadcast, or "".
func (d *Database) LastTopSongBroadcast() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.state.LastTopSongBroadcast
}

// SetLastTopSongBroadcast records that the daily broadcast ran for the
// given day, making the job idempotent.
func (d *Database) SetLastTopSongBroadcast(date string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.state.LastTopSongBroadcast = date
	return d.persist()
}
