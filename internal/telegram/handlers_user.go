package telegram

import (
	"fmt"
	"strings"

	tele "gopkg.in/telebot.v3"

	"github.com/mivora/playlist-bot/internal/db"
	"github.com/mivora/playlist-bot/internal/utils"
)

func (b *Bot) handleStart(c tele.Context) error {
	// Deep links carry a playlist id: t.me/<bot>?start=pl_<id>
	payload := c.Message().Payload
	if strings.HasPrefix(payload, "pl_") {
		if playlist, ok := b.db.GetPlaylist(payload); ok && !playlist.IsPrivate {
			return b.sendPlaylistView(c, playlist)
		}
	}

	text := fmt.Sprintf(
		"👋 Hi %s!\n\nBuild mood-tagged playlists, share them and discover what others listen to.\n\n"+
			"Send an audio file to add it to your active playlist, or use the menu below.",
		c.Sender().FirstName,
	)
	return c.Send(text, mainMenu())
}

func (b *Bot) handleHelp(c tele.Context) error {
	return c.Send(
		"🎵 How it works:\n\n" +
			"1. Create a playlist and pick its mood.\n" +
			"2. Send audio files — they land in your active playlist.\n" +
			"3. A playlist goes live once it has 3 songs.\n" +
			"4. Browse other playlists, like songs and add them to your own.\n\n" +
			"/cancel aborts any multi-step action.",
	)
}

func (b *Bot) handleCancel(c tele.Context) error {
	b.clearConversation(c.Sender().ID)
	return c.Send("Cancelled.", mainMenu())
}

// handleText routes free-form text: first to an in-flight conversation step,
// then to the main menu labels.
func (b *Bot) handleText(c tele.Context) error {
	userID := c.Sender().ID
	text := strings.TrimSpace(c.Text())

	if conv, ok := b.getConversation(userID); ok {
		return b.continueConversation(c, conv, text)
	}

	switch text {
	case menuNewPlaylist:
		return b.startNewPlaylist(c)
	case menuMyPlaylists:
		return b.sendMyPlaylists(c)
	case menuBrowse:
		return b.sendBrowseMenu(c)
	case menuLeaderboard:
		return b.sendLeaderboard(c)
	case menuProfile:
		return b.sendProfile(c)
	case menuPremium:
		return b.sendPremiumMenu(c)
	case menuSettings:
		return b.sendSettings(c)
	}

	// Anything else is treated as a playlist search.
	if len([]rune(text)) >= 2 {
		if results := b.db.SearchPlaylists(text); len(results) > 0 {
			if len(results) > browsePageSize {
				results = results[:browsePageSize]
			}
			return b.sendPlaylistList(c, fmt.Sprintf("🔎 Results for “%s”", utils.Truncate(text, 30)), results)
		}
	}
	return c.Send("No playlists match that. Use the menu below, or send an audio file to add it to your active playlist.", mainMenu())
}

func (b *Bot) continueConversation(c tele.Context, conv *conversation, text string) error {
	userID := c.Sender().ID

	switch conv.step {
	case stepPlaylistName:
		return b.finishPlaylistName(c, text)
	case stepBroadcastText:
		b.clearConversation(userID)
		return b.runBroadcast(c, text)
	case stepBanUserID, stepUnbanUserID, stepGrantUserID:
		return b.finishAdminUserStep(c, conv.step, text)
	case stepMoodNew:
		b.clearConversation(userID)
		return b.finishMoodAdd(c, text)
	case stepPlanNew:
		b.clearConversation(userID)
		return b.finishPlanAdd(c, text)
	}

	b.clearConversation(userID)
	return c.Send("Use the menu below.", mainMenu())
}

func (b *Bot) sendProfile(c tele.Context) error {
	user, ok := b.db.GetUser(c.Sender().ID)
	if !ok {
		return c.Send("Profile not found.")
	}

	premium := "Free"
	if b.db.IsPremium(user.ID) {
		premium = "⭐ Premium"
		if refreshed, ok := b.db.GetUser(user.ID); ok {
			user = refreshed
		}
	}

	rank := b.db.UserRank(user.ID, db.SortByScore)
	rankLine := "unranked"
	if rank > 0 {
		rankLine = fmt.Sprintf("#%s", utils.FormatNumber(rank))
	}

	badges := "none yet"
	if len(user.Badges) > 0 {
		badges = strings.Join(user.Badges, ", ")
	}

	text := fmt.Sprintf(
		"👤 %s\n\n"+
			"Tier: %s\n"+
			"Rank: %s\n"+
			"Score: %s\n\n"+
			"Playlists: %d\n"+
			"Songs uploaded: %s\n"+
			"Likes received: %s\n"+
			"Plays: %s\n"+
			"Following: %d · Followers: %d\n\n"+
			"Badges: %s",
		user.FirstName,
		premium,
		rankLine,
		utils.FormatNumber(db.CompositeScore(user.TotalLikesReceived, user.TotalPlays, user.TotalSongsUploaded)),
		len(user.Playlists),
		utils.FormatNumber(user.TotalSongsUploaded),
		utils.FormatNumber(user.TotalLikesReceived),
		utils.FormatNumber(user.TotalPlays),
		len(user.Following), len(user.Followers),
		badges,
	)
	return c.Send(text)
}

func (b *Bot) sendLeaderboard(c tele.Context) error {
	entries := b.db.Leaderboard(db.SortByScore, b.cfg.LeaderboardSize)
	if len(entries) == 0 {
		return c.Send("The leaderboard is empty. Be the first!")
	}

	var sb strings.Builder
	sb.WriteString("🏆 Top curators\n\n")
	for i, entry := range entries {
		premium := ""
		if entry.IsPremium {
			premium = " ⭐"
		}
		fmt.Fprintf(&sb, "%s %s%s — %s pts\n",
			utils.RankBadge(i+1), utils.Truncate(entry.Name, 24), premium,
			utils.FormatNumber(entry.Score))
	}

	if rank := b.db.UserRank(c.Sender().ID, db.SortByScore); rank > len(entries) {
		fmt.Fprintf(&sb, "\nYour position: %s", utils.RankBadge(rank))
	}
	return c.Send(sb.String())
}

func (b *Bot) sendSettings(c tele.Context) error {
	user, ok := b.db.GetUser(c.Sender().ID)
	if !ok {
		return c.Send("Profile not found.")
	}

	state := "on 🔔"
	toggle := "Turn notifications off"
	if !user.NotificationsEnabled {
		state = "off 🔕"
		toggle = "Turn notifications on"
	}

	markup := &tele.ReplyMarkup{}
	markup.Inline(markup.Row(markup.Data(toggle, btnToggleNotify.Unique)))
	return c.Send(fmt.Sprintf("⚙️ Settings\n\nDaily top-song notifications: %s", state), markup)
}

func (b *Bot) handleToggleNotifications(c tele.Context) error {
	user, ok := b.db.GetUser(c.Sender().ID)
	if !ok {
		return c.Respond(&tele.CallbackResponse{Text: "Profile not found."})
	}
	if err := b.db.SetNotifications(user.ID, !user.NotificationsEnabled); err != nil {
		return c.Respond(&tele.CallbackResponse{Text: "Something went wrong."})
	}
	if err := c.Respond(&tele.CallbackResponse{Text: "Saved."}); err != nil {
		return err
	}
	return b.sendSettings(c)
}
