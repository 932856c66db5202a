package telegram

import (
	"fmt"
	"log"
	"strconv"
	"time"

	tele "gopkg.in/telebot.v3"

	"github.com/mivora/playlist-bot/internal/db"
)

// Daily top-song broadcast settings. The loop polls instead of sleeping to
// the exact hour so restarts never skip a day.
const (
	topSongBroadcastHour = 21
	topSongCheckInterval = 10 * time.Minute
)

func (b *Bot) runDailyTopSongLoop() {
	ticker := time.NewTicker(topSongCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-b.stopCh:
			return
		case <-ticker.C:
			b.maybeBroadcastTopSong(time.Now())
		}
	}
}

// maybeBroadcastTopSong sends today's most-liked song to everyone with
// notifications on, at most once per day, only after the broadcast hour.
func (b *Bot) maybeBroadcastTopSong(now time.Time) {
	if now.Hour() < topSongBroadcastHour {
		return
	}

	today := db.DateKey(now)
	if b.db.LastTopSongBroadcast() == today {
		return
	}

	song, likes := b.db.TopSongOfDay(today)
	if song == nil {
		// Nothing was liked today; mark the day done so we stop checking.
		if err := b.db.SetLastTopSongBroadcast(today); err != nil {
			log.Printf("mark top-song broadcast: %v", err)
		}
		return
	}

	caption := fmt.Sprintf("🎖 Song of the day: %s — %s (❤️ %d)", song.Title, song.Performer, likes)
	stored := tele.StoredMessage{
		ChatID:    song.StorageChannelID,
		MessageID: strconv.Itoa(song.ChannelMessageID),
	}

	for _, id := range b.db.NotifiableUserIDs() {
		if _, err := b.tele.Send(tele.ChatID(id), caption); err != nil {
			log.Printf("top-song notice to %d: %v", id, err)
			continue
		}
		if _, err := b.tele.Copy(tele.ChatID(id), stored); err != nil {
			log.Printf("top-song audio to %d: %v", id, err)
		}
	}

	if err := b.db.SetLastTopSongBroadcast(today); err != nil {
		log.Printf("mark top-song broadcast: %v", err)
	}
}
