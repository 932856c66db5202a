package telegram

import (
	"fmt"
	"strings"

	tele "gopkg.in/telebot.v3"

	"github.com/mivora/playlist-bot/internal/db"
	"github.com/mivora/playlist-bot/internal/utils"
)

const browsePageSize = 5

// startNewPlaylist begins the name -> mood conversation.
func (b *Bot) startNewPlaylist(c tele.Context) error {
	b.setConversation(c.Sender().ID, stepPlaylistName, nil)
	return c.Send("📝 Send me a name for the new playlist (2–100 characters).\n\n/cancel to abort.")
}

func (b *Bot) finishPlaylistName(c tele.Context, name string) error {
	if !utils.IsValidPlaylistName(name) {
		return c.Send("That name doesn't work — it must be 2 to 100 characters. Try again, or /cancel.")
	}

	b.setConversation(c.Sender().ID, stepPlaylistMood, map[string]string{"name": strings.TrimSpace(name)})
	return c.Send("🎭 Pick a mood for it:", moodKeyboard(b.db.Moods()))
}

func (b *Bot) handleMoodPicked(c tele.Context) error {
	userID := c.Sender().ID
	conv, ok := b.getConversation(userID)
	if !ok || conv.step != stepPlaylistMood {
		return c.Respond(&tele.CallbackResponse{Text: "This menu has expired."})
	}
	b.clearConversation(userID)

	id, err := b.db.CreatePlaylist(userID, conv.data["name"], c.Data())
	if err != nil {
		return c.Respond(&tele.CallbackResponse{Text: "Something went wrong."})
	}
	if id == "" {
		limit := b.db.Limits().FreePlaylists
		if err := c.Respond(&tele.CallbackResponse{}); err != nil {
			return err
		}
		return c.Send(fmt.Sprintf(
			"You've reached the limit of %d playlists. Go ⭐ Premium for more, or delete one first.", limit))
	}

	if err := c.Respond(&tele.CallbackResponse{Text: "Created!"}); err != nil {
		return err
	}
	minSongs := b.db.Limits().MinSongsToPublish
	return c.Send(fmt.Sprintf(
		"✅ Playlist created and set as your upload target.\n\n"+
			"Send me audio files to fill it. It goes live at %d songs.", minSongs))
}

func (b *Bot) sendMyPlaylists(c tele.Context) error {
	playlists := b.db.UserPlaylists(c.Sender().ID)
	if len(playlists) == 0 {
		return c.Send("You have no playlists yet. Tap ➕ New Playlist to start one.")
	}

	markup := &tele.ReplyMarkup{}
	var rows []tele.Row
	for _, p := range playlists {
		label := fmt.Sprintf("%s (%d)", utils.Truncate(p.Name, 28), len(p.Songs))
		if p.Status == db.PlaylistDraft {
			label = "📝 " + label
		} else if p.IsPrivate {
			label = "🙈 " + label
		}
		rows = append(rows, markup.Row(markup.Data(label, btnPlaylistOpen.Unique, p.ID)))
	}
	markup.Inline(rows...)
	return c.Send("🎵 Your playlists:", markup)
}

func (b *Bot) handlePlaylistOpen(c tele.Context) error {
	playlist, ok := b.db.GetPlaylist(c.Data())
	if !ok {
		return c.Respond(&tele.CallbackResponse{Text: "Playlist not found."})
	}
	if playlist.OwnerID != c.Sender().ID {
		return b.sendPlaylistView(c, playlist)
	}

	status := "published"
	if playlist.Status == db.PlaylistDraft {
		status = fmt.Sprintf("draft — needs %d songs to go live", b.db.Limits().MinSongsToPublish)
	}
	visibility := "public"
	if playlist.IsPrivate {
		visibility = "private"
	}
	capLabel := "unlimited"
	if playlist.MaxSongs > 0 {
		capLabel = fmt.Sprintf("%d", playlist.MaxSongs)
	}

	text := fmt.Sprintf(
		"🎵 %s\n\nMood: %s\nStatus: %s\nVisibility: %s\nSongs: %d / %s\nLikes: %d · Plays: %d\n\nShare: https://t.me/%s?start=%s",
		playlist.Name, b.moodLabel(playlist.Mood), status, visibility,
		len(playlist.Songs), capLabel, len(playlist.Likes), playlist.Plays,
		b.tele.Me.Username, playlist.ID,
	)
	return c.Send(text, playlistManageKeyboard(playlist))
}

func (b *Bot) handlePlaylistPublish(c tele.Context) error {
	playlist, ok := b.db.GetPlaylist(c.Data())
	if !ok || playlist.OwnerID != c.Sender().ID {
		return c.Respond(&tele.CallbackResponse{Text: "Playlist not found."})
	}

	published, err := b.db.PublishPlaylist(playlist.ID)
	if err != nil {
		return c.Respond(&tele.CallbackResponse{Text: "Something went wrong."})
	}
	if !published {
		return c.Respond(&tele.CallbackResponse{Text: "Already published."})
	}
	return c.Respond(&tele.CallbackResponse{Text: "🚀 Published!"})
}

func (b *Bot) handlePlaylistToggleVisibility(c tele.Context) error {
	private, ok, err := b.db.ToggleVisibility(c.Sender().ID, c.Data())
	if err != nil || !ok {
		return c.Respond(&tele.CallbackResponse{Text: "Playlist not found."})
	}
	if private {
		return c.Respond(&tele.CallbackResponse{Text: "Now private 🙈"})
	}
	return c.Respond(&tele.CallbackResponse{Text: "Now public 👁"})
}

func (b *Bot) handlePlaylistSetActive(c tele.Context) error {
	if err := b.db.SetActivePlaylist(c.Sender().ID, c.Data()); err != nil {
		return c.Respond(&tele.CallbackResponse{Text: "Something went wrong."})
	}
	return c.Respond(&tele.CallbackResponse{Text: "📌 New uploads go here now."})
}

func (b *Bot) handlePlaylistDelete(c tele.Context) error {
	playlist, ok := b.db.GetPlaylist(c.Data())
	if !ok || playlist.OwnerID != c.Sender().ID {
		return c.Respond(&tele.CallbackResponse{Text: "Playlist not found."})
	}

	markup := &tele.ReplyMarkup{}
	markup.Inline(markup.Row(
		markup.Data("⚠️ Yes, delete it", btnPlaylistDeleteYes.Unique, playlist.ID),
	))
	return c.Send(fmt.Sprintf(
		"Delete “%s” with %d songs? This cannot be undone.",
		playlist.Name, len(playlist.Songs)), markup)
}

func (b *Bot) handlePlaylistDeleteConfirmed(c tele.Context) error {
	playlist, ok := b.db.GetPlaylist(c.Data())
	if !ok || playlist.OwnerID != c.Sender().ID {
		return c.Respond(&tele.CallbackResponse{Text: "Playlist not found."})
	}

	orphans, err := b.db.DeletePlaylist(playlist.ID)
	if err != nil {
		return c.Respond(&tele.CallbackResponse{Text: "Something went wrong."})
	}
	b.deleteOrphans(orphans)

	if err := c.Respond(&tele.CallbackResponse{Text: "Deleted."}); err != nil {
		return err
	}
	return c.Send("🗑 Playlist deleted.")
}

// browse

func (b *Bot) sendBrowseMenu(c tele.Context) error {
	markup := &tele.ReplyMarkup{}
	rows := []tele.Row{
		markup.Row(
			markup.Data("🔥 Trending", btnBrowsePage.Unique, "trending"),
			markup.Data("⭐ Top", btnBrowsePage.Unique, "top"),
		),
		markup.Row(markup.Data("🆕 Newest", btnBrowsePage.Unique, "new")),
	}

	var moodRow []tele.Btn
	for _, mood := range b.db.Moods() {
		moodRow = append(moodRow, markup.Data(mood.Title, btnBrowseMood.Unique, mood.Key))
		if len(moodRow) == 2 {
			rows = append(rows, markup.Row(moodRow...))
			moodRow = nil
		}
	}
	if len(moodRow) > 0 {
		rows = append(rows, markup.Row(moodRow...))
	}
	markup.Inline(rows...)
	return c.Send("🔎 What are you in the mood for?", markup)
}

func (b *Bot) handleBrowsePage(c tele.Context) error {
	var playlists []*db.Playlist
	var title string
	switch c.Data() {
	case "trending":
		playlists = b.db.TrendingPlaylists(7, browsePageSize)
		title = "🔥 Trending this week"
	case "top":
		playlists = b.db.TopPlaylists(browsePageSize)
		title = "⭐ All-time favorites"
	default:
		playlists = b.db.NewestPlaylists(browsePageSize)
		title = "🆕 Fresh playlists"
	}
	return b.sendPlaylistList(c, title, playlists)
}

func (b *Bot) handleBrowseMood(c tele.Context) error {
	mood := c.Data()
	playlists := b.db.PlaylistsByMood(mood, browsePageSize)
	return b.sendPlaylistList(c, fmt.Sprintf("%s playlists", b.moodLabel(mood)), playlists)
}

func (b *Bot) sendPlaylistList(c tele.Context, title string, playlists []*db.Playlist) error {
	if len(playlists) == 0 {
		return c.Send("Nothing here yet — publish something first!")
	}

	markup := &tele.ReplyMarkup{}
	var rows []tele.Row
	var sb strings.Builder
	sb.WriteString(title + "\n\n")
	for i, p := range playlists {
		fmt.Fprintf(&sb, "%d. %s — %s · %d songs · ❤️ %d\n",
			i+1, utils.Truncate(p.Name, 30), utils.Truncate(p.OwnerName, 20),
			len(p.Songs), len(p.Likes))
		rows = append(rows, markup.Row(
			markup.Data(fmt.Sprintf("%d. %s", i+1, utils.Truncate(p.Name, 24)), btnPlaylistOpen.Unique, p.ID),
		))
	}
	markup.Inline(rows...)
	return c.Send(sb.String(), markup)
}

func (b *Bot) sendPlaylistView(c tele.Context, playlist *db.Playlist) error {
	text := fmt.Sprintf(
		"🎵 %s\nby %s\n\nMood: %s\nSongs: %d · ❤️ %d · ▶️ %d",
		playlist.Name, playlist.OwnerName, b.moodLabel(playlist.Mood),
		len(playlist.Songs), len(playlist.Likes), playlist.Plays,
	)
	return c.Send(text, playlistViewKeyboard(playlist))
}

func (b *Bot) handlePlaylistLike(c tele.Context) error {
	liked, err := b.db.LikePlaylist(c.Sender().ID, c.Data())
	if err != nil {
		return c.Respond(&tele.CallbackResponse{Text: "Something went wrong."})
	}
	if !liked {
		return c.Respond(&tele.CallbackResponse{Text: "You already liked this one."})
	}
	return c.Respond(&tele.CallbackResponse{Text: "❤️ Liked!"})
}

func (b *Bot) handlePlaylistPlay(c tele.Context) error {
	playlist, ok := b.db.GetPlaylist(c.Data())
	if !ok {
		return c.Respond(&tele.CallbackResponse{Text: "Playlist not found."})
	}

	if err := b.db.IncrementPlays(playlist.ID); err != nil {
		return c.Respond(&tele.CallbackResponse{Text: "Something went wrong."})
	}
	if err := c.Respond(&tele.CallbackResponse{Text: "▶️ Sending songs…"}); err != nil {
		return err
	}
	return b.sendPlaylistAudio(c, playlist.ID)
}

func (b *Bot) handlePlaylistSongs(c tele.Context) error {
	playlist, ok := b.db.GetPlaylist(c.Data())
	if !ok {
		return c.Respond(&tele.CallbackResponse{Text: "Playlist not found."})
	}

	songs := b.db.PlaylistSongs(playlist.ID)
	if len(songs) == 0 {
		return c.Respond(&tele.CallbackResponse{Text: "No songs yet."})
	}
	if err := c.Respond(&tele.CallbackResponse{}); err != nil {
		return err
	}

	viewerOwnsIt := playlist.OwnerID == c.Sender().ID
	var sb strings.Builder
	fmt.Fprintf(&sb, "🎶 %s\n\n", playlist.Name)
	markup := &tele.ReplyMarkup{}
	var rows []tele.Row
	for i, s := range songs {
		fmt.Fprintf(&sb, "%d. %s — %s · %s · ❤️ %d\n",
			i+1, utils.Truncate(s.Title, 30), utils.Truncate(s.Performer, 20),
			utils.FormatDuration(s.Duration), len(s.Likes))
		label := fmt.Sprintf("%d. %s", i+1, utils.Truncate(s.Title, 24))
		if viewerOwnsIt {
			rows = append(rows, markup.Row(
				markup.Data(label, btnSongPlay.Unique, s.ID),
				markup.Data("🗑", btnSongRemove.Unique, s.ID),
			))
		} else {
			rows = append(rows, markup.Row(
				markup.Data(label, btnSongPlay.Unique, s.ID),
				markup.Data("❤️", btnSongLike.Unique, s.ID),
				markup.Data("➕", btnSongAdd.Unique, s.ID),
			))
		}
	}
	markup.Inline(rows...)
	return c.Send(sb.String(), markup)
}

// social callbacks piggyback on the playlist id to find the owner.

func (b *Bot) handleFollowUser(c tele.Context) error {
	playlist, ok := b.db.GetPlaylist(c.Data())
	if !ok {
		return c.Respond(&tele.CallbackResponse{Text: "Playlist not found."})
	}

	followed, err := b.db.FollowUser(c.Sender().ID, playlist.OwnerID)
	if err != nil {
		return c.Respond(&tele.CallbackResponse{Text: "Something went wrong."})
	}
	if !followed {
		return c.Respond(&tele.CallbackResponse{Text: "Can't follow — maybe you already do, or hit your follow limit."})
	}
	return c.Respond(&tele.CallbackResponse{Text: fmt.Sprintf("Following %s!", playlist.OwnerName)})
}

func (b *Bot) handleUnfollowUser(c tele.Context) error {
	playlist, ok := b.db.GetPlaylist(c.Data())
	if !ok {
		return c.Respond(&tele.CallbackResponse{Text: "Playlist not found."})
	}
	if _, err := b.db.UnfollowUser(c.Sender().ID, playlist.OwnerID); err != nil {
		return c.Respond(&tele.CallbackResponse{Text: "Something went wrong."})
	}
	return c.Respond(&tele.CallbackResponse{Text: "Unfollowed."})
}

func (b *Bot) moodLabel(key string) string {
	if title, ok := b.db.MoodTitle(key); ok {
		return title
	}
	return key
}
