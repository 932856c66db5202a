package utils

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// Audio upload limits enforced before a track is archived.
const (
	MaxAudioFileSize = 50 << 20 // 50 MB
	MaxAudioDuration = 30 * 60  // 30 minutes, in seconds
)

// Playlist name length bounds.
const (
	MinPlaylistNameLen = 2
	MaxPlaylistNameLen = 100
)

// FormatDuration formats a track length in seconds as m:ss or h:mm:ss.
func FormatDuration(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}

	hours := seconds / 3600
	minutes := (seconds % 3600) / 60
	secs := seconds % 60

	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, secs)
	}
	return fmt.Sprintf("%d:%02d", minutes, secs)
}

// FormatNumber renders an integer with thousands separators: 1234567 -> "1,234,567".
func FormatNumber(n int) string {
	sign := ""
	if n < 0 {
		sign = "-"
		n = -n
	}

	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return sign + s
	}

	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return sign + b.String()
}

// TimeAgo renders how long ago t was, relative to now.
func TimeAgo(t, now time.Time) string {
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		m := int(d.Minutes())
		return fmt.Sprintf("%dm ago", m)
	case d < 24*time.Hour:
		h := int(d.Hours())
		return fmt.Sprintf("%dh ago", h)
	case d < 30*24*time.Hour:
		days := int(d.Hours() / 24)
		return fmt.Sprintf("%dd ago", days)
	default:
		months := int(d.Hours() / 24 / 30)
		if months < 12 {
			return fmt.Sprintf("%dmo ago", months)
		}
		return fmt.Sprintf("%dy ago", months/12)
	}
}

// Truncate shortens s to at most max runes, appending an ellipsis when cut.
func Truncate(s string, max int) string {
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	if max == 1 {
		return "…"
	}
	return string(runes[:max-1]) + "…"
}

// IsValidPlaylistName checks the trimmed name length bounds.
func IsValidPlaylistName(name string) bool {
	n := utf8.RuneCountInString(strings.TrimSpace(name))
	return n >= MinPlaylistNameLen && n <= MaxPlaylistNameLen
}

// IsValidAudioFile checks the archive limits for an uploaded track.
func IsValidAudioFile(fileSize int64, durationSeconds int) bool {
	if fileSize <= 0 || fileSize > MaxAudioFileSize {
		return false
	}
	return durationSeconds > 0 && durationSeconds <= MaxAudioDuration
}

// RankBadge returns the medal for a 1-based leaderboard position, or the
// plain number for positions past the podium.
func RankBadge(position int) string {
	switch position {
	case 1:
		return "🥇"
	case 2:
		return "🥈"
	case 3:
		return "🥉"
	default:
		return fmt.Sprintf("%d.", position)
	}
}
