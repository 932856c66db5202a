package telegram

import (
	"fmt"
	"log"
	"strconv"

	tele "gopkg.in/telebot.v3"

	"github.com/mivora/playlist-bot/internal/db"
	"github.com/mivora/playlist-bot/internal/utils"
)

// handleAudio archives an uploaded track in the storage channel and records
// it in the sender's active playlist.
func (b *Bot) handleAudio(c tele.Context) error {
	userID := c.Sender().ID
	audio := c.Message().Audio
	if audio == nil {
		return nil
	}

	if !utils.IsValidAudioFile(audio.FileSize, audio.Duration) {
		return c.Send("⚠️ That file is too big or too long. Limit: 50 MB and 30 minutes.")
	}

	playlist, ok := b.db.GetActivePlaylist(userID)
	if !ok {
		return c.Send("You have no playlist to add this to. Tap ➕ New Playlist first.")
	}

	// Archive first: the storage copy is the durable source of the audio.
	stored, err := b.tele.Copy(tele.ChatID(b.cfg.StorageChannelID), c.Message())
	if err != nil {
		log.Printf("archive audio for %d: %v", userID, err)
		return c.Send("⚠️ Could not archive the file, try again.")
	}

	title := audio.Title
	if title == "" {
		title = audio.FileName
	}
	if title == "" {
		title = "Untitled"
	}

	status, err := b.db.AddSong(playlist.ID, db.SongUpload{
		Title:            title,
		Performer:        audio.Performer,
		Duration:         audio.Duration,
		FileSize:         audio.FileSize,
		StorageChannelID: b.cfg.StorageChannelID,
		ChannelMessageID: stored.ID,
		UploaderID:       userID,
		UploaderName:     c.Sender().FirstName,
	})
	if err != nil {
		return c.Send("⚠️ Something went wrong, try again.")
	}

	switch status {
	case db.StatusPlaylistFull:
		// The archive copy is unreferenced; clean it up right away.
		b.deleteOrphans([]db.StorageRef{{ChannelID: b.cfg.StorageChannelID, MessageID: stored.ID}})
		return c.Send(fmt.Sprintf(
			"“%s” is full (%d songs). Go ⭐ Premium for unlimited space, or remove something.",
			playlist.Name, playlist.MaxSongs))
	case db.StatusPlaylistPublished:
		return c.Send(fmt.Sprintf("🚀 “%s” just went live with this song!", playlist.Name))
	case db.StatusDraftProgress:
		current, _ := b.db.GetPlaylist(playlist.ID)
		need := b.db.Limits().MinSongsToPublish
		have := 0
		if current != nil {
			have = len(current.Songs)
		}
		return c.Send(fmt.Sprintf("Added to “%s” (%d/%d to publish).", playlist.Name, have, need))
	case db.StatusSongAdded:
		return c.Send(fmt.Sprintf("✅ Added to “%s”.", playlist.Name))
	default:
		return c.Send("⚠️ Could not add the song.")
	}
}

// sendPlaylistAudio forwards every archived track of the playlist to the chat.
func (b *Bot) sendPlaylistAudio(c tele.Context, playlistID string) error {
	songs := b.db.PlaylistSongs(playlistID)
	for _, s := range songs {
		msg := tele.StoredMessage{
			ChatID:    s.StorageChannelID,
			MessageID: strconv.Itoa(s.ChannelMessageID),
		}
		if _, err := b.tele.Copy(c.Recipient(), msg); err != nil {
			log.Printf("send song %s: %v", s.ID, err)
		}
	}
	return nil
}

func (b *Bot) handleSongPlay(c tele.Context) error {
	song, ok := b.db.GetSong(c.Data())
	if !ok {
		return c.Respond(&tele.CallbackResponse{Text: "Song not found."})
	}
	if err := c.Respond(&tele.CallbackResponse{}); err != nil {
		return err
	}

	msg := tele.StoredMessage{
		ChatID:    song.StorageChannelID,
		MessageID: strconv.Itoa(song.ChannelMessageID),
	}
	if _, err := b.tele.Copy(c.Recipient(), msg); err != nil {
		log.Printf("send song %s: %v", song.ID, err)
		return c.Send("⚠️ Could not send the track.")
	}
	return nil
}

func (b *Bot) handleSongLike(c tele.Context) error {
	liked, err := b.db.LikeSong(c.Sender().ID, c.Data())
	if err != nil {
		return c.Respond(&tele.CallbackResponse{Text: "Something went wrong."})
	}
	if !liked {
		return c.Respond(&tele.CallbackResponse{Text: "You already liked this one."})
	}
	return c.Respond(&tele.CallbackResponse{Text: "❤️ Liked!"})
}

// handleSongAdd shows the picker of the user's own playlists as clone targets.
func (b *Bot) handleSongAdd(c tele.Context) error {
	songID := c.Data()
	if _, ok := b.db.GetSong(songID); !ok {
		return c.Respond(&tele.CallbackResponse{Text: "Song not found."})
	}

	playlists := b.db.UserPlaylists(c.Sender().ID)
	if len(playlists) == 0 {
		return c.Respond(&tele.CallbackResponse{Text: "Create a playlist first."})
	}
	if err := c.Respond(&tele.CallbackResponse{}); err != nil {
		return err
	}

	markup := &tele.ReplyMarkup{}
	var rows []tele.Row
	for _, p := range playlists {
		rows = append(rows, markup.Row(markup.Data(
			utils.Truncate(p.Name, 30), btnSongAddTo.Unique, songID+"|"+p.ID)))
	}
	markup.Inline(rows...)
	return c.Send("Add it to which playlist?", markup)
}

func (b *Bot) handleSongAddTo(c tele.Context) error {
	songID, playlistID, ok := splitPair(c.Data())
	if !ok {
		return c.Respond(&tele.CallbackResponse{Text: "This menu has expired."})
	}

	status, err := b.db.CloneSong(songID, playlistID, c.Sender().ID)
	if err != nil {
		return c.Respond(&tele.CallbackResponse{Text: "Something went wrong."})
	}

	switch status {
	case db.StatusAdded:
		return c.Respond(&tele.CallbackResponse{Text: "➕ Added to your playlist!"})
	case db.StatusDuplicate:
		return c.Respond(&tele.CallbackResponse{Text: "That track is already in there."})
	case db.StatusPlaylistFull:
		return c.Respond(&tele.CallbackResponse{Text: "That playlist is full."})
	case db.StatusNotOwner:
		return c.Respond(&tele.CallbackResponse{Text: "Not your playlist."})
	default:
		return c.Respond(&tele.CallbackResponse{Text: "Could not add the song."})
	}
}

func (b *Bot) handleSongRemove(c tele.Context) error {
	song, ok := b.db.GetSong(c.Data())
	if !ok {
		return c.Respond(&tele.CallbackResponse{Text: "Song not found."})
	}

	result, err := b.db.RemoveSong(song.PlaylistID, song.ID, c.Sender().ID)
	if err != nil {
		return c.Respond(&tele.CallbackResponse{Text: "Something went wrong."})
	}
	if !result.Status.OK() {
		if result.Status == db.StatusNotOwner {
			return c.Respond(&tele.CallbackResponse{Text: "Not your playlist."})
		}
		return c.Respond(&tele.CallbackResponse{Text: "Could not remove the song."})
	}

	b.deleteOrphans(result.StorageOrphans)

	if result.PlaylistNowDraft {
		if err := c.Respond(&tele.CallbackResponse{Text: "Removed."}); err != nil {
			return err
		}
		return c.Send(fmt.Sprintf(
			"The playlist dropped below %d songs and went back to draft.",
			b.db.Limits().MinSongsToPublish))
	}
	return c.Respond(&tele.CallbackResponse{Text: "🗑 Removed."})
}

func splitPair(data string) (string, string, bool) {
	for i := 0; i < len(data); i++ {
		if data[i] == '|' {
			return data[:i], data[i+1:], true
		}
	}
	return "", "", false
}
