package db

import (
	"regexp"
	"strings"
)

var moodKeyPattern = regexp.MustCompile(`^[a-z0-9_]+$`)

// Moods returns the ordered category registry.
func (d *Database) Moods() []Mood {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]Mood(nil), d.state.Moods...)
}

// MoodTitle returns the display title for a category key.
func (d *Database) MoodTitle(key string) (string, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	for _, m := range d.state.Moods {
		if m.Key == key {
			return m.Title, true
		}
	}
	return "", false
}

// DefaultMood returns the first registered category key, used when a
// requested mood is unknown.
func (d *Database) DefaultMood() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.defaultMoodLocked()
}

func (d *Database) defaultMoodLocked() string {
	if len(d.state.Moods) == 0 {
		return "happy"
	}
	return d.state.Moods[0].Key
}

func (d *Database) moodExistsLocked(key string) bool {
	for _, m := range d.state.Moods {
		if m.Key == key {
			return true
		}
	}
	return false
}

// NormalizeMoodKey lowercases, trims, and replaces whitespace runs with
// underscores. Returns "" when the result is not a valid key.
func NormalizeMoodKey(key string) string {
	key = strings.ToLower(strings.TrimSpace(key))
	key = strings.Join(strings.Fields(key), "_")
	if !moodKeyPattern.MatchString(key) {
		return ""
	}
	return key
}

// AddMood registers a new category. An empty key is derived from the title.
// Returns the normalized key and a status: invalid_key, invalid_title,
// exists, or added.
func (d *Database) AddMood(key, title string) (string, Status, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	title = strings.TrimSpace(title)
	if key == "" {
		key = title
	}
	normalized := NormalizeMoodKey(key)
	if normalized == "" {
		return "", StatusInvalidKey, nil
	}
	if title == "" {
		return "", StatusInvalidTitle, nil
	}
	if d.moodExistsLocked(normalized) {
		return "", StatusExists, nil
	}

	d.state.Moods = append(d.state.Moods, Mood{Key: normalized, Title: title})
	if err := d.persist(); err != nil {
		return "", StatusAdded, err
	}
	return normalized, StatusAdded, nil
}

// DeleteMood removes a category and retags every playlist referencing it
// with the first remaining key, which is returned so the caller can inform
// the admin. Deleting the last category is rejected with last_one.
func (d *Database) DeleteMood(key string) (string, Status, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	idx := -1
	for i, m := range d.state.Moods {
		if m.Key == key {
			idx = i
			break
		}
	}
	if idx < 0 {
		return "", StatusNotFound, nil
	}
	if len(d.state.Moods) <= 1 {
		return "", StatusLastOne, nil
	}

	fallback := ""
	for _, m := range d.state.Moods {
		if m.Key != key {
			fallback = m.Key
			break
		}
	}

	for _, playlist := range d.state.Playlists {
		if playlist.Mood == key {
			playlist.Mood = fallback
		}
	}

	d.state.Moods = append(d.state.Moods[:idx], d.state.Moods[idx+1:]...)
	if err := d.persist(); err != nil {
		return fallback, StatusRemoved, err
	}
	return fallback, StatusRemoved, nil
}
