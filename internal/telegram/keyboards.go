package telegram

import (
	tele "gopkg.in/telebot.v3"

	"github.com/mivora/playlist-bot/internal/db"
)

// Main menu labels. The text handler matches on these.
const (
	menuNewPlaylist = "➕ New Playlist"
	menuMyPlaylists = "🎵 My Playlists"
	menuBrowse      = "🔎 Browse"
	menuLeaderboard = "🏆 Leaderboard"
	menuProfile     = "👤 Profile"
	menuPremium     = "⭐ Premium"
	menuSettings    = "⚙️ Settings"
)

// Inline button definitions. Dynamic instances are built from these uniques
// so one registered handler serves every copy.
var (
	btnMoodPick          = tele.Btn{Unique: "mood_pick"}
	btnPlaylistOpen      = tele.Btn{Unique: "pl_open"}
	btnPlaylistPublish   = tele.Btn{Unique: "pl_publish"}
	btnPlaylistToggleVis = tele.Btn{Unique: "pl_vis"}
	btnPlaylistSetActive = tele.Btn{Unique: "pl_active"}
	btnPlaylistDelete    = tele.Btn{Unique: "pl_delete"}
	btnPlaylistDeleteYes = tele.Btn{Unique: "pl_delete_yes"}
	btnPlaylistLike      = tele.Btn{Unique: "pl_like"}
	btnPlaylistPlay      = tele.Btn{Unique: "pl_play"}
	btnPlaylistSongs     = tele.Btn{Unique: "pl_songs"}

	btnSongLike   = tele.Btn{Unique: "song_like"}
	btnSongAdd    = tele.Btn{Unique: "song_add"}
	btnSongAddTo  = tele.Btn{Unique: "song_add_to"}
	btnSongRemove = tele.Btn{Unique: "song_remove"}
	btnSongPlay   = tele.Btn{Unique: "song_play"}

	btnBrowseMood = tele.Btn{Unique: "browse_mood"}
	btnBrowsePage = tele.Btn{Unique: "browse_page"}

	btnFollowUser   = tele.Btn{Unique: "follow"}
	btnUnfollowUser = tele.Btn{Unique: "unfollow"}

	btnPremiumBuy = tele.Btn{Unique: "premium_buy"}

	btnToggleNotify = tele.Btn{Unique: "toggle_notify"}

	btnAdminStats     = tele.Btn{Unique: "adm_stats"}
	btnAdminBroadcast = tele.Btn{Unique: "adm_broadcast"}
	btnAdminBan       = tele.Btn{Unique: "adm_ban"}
	btnAdminUnban     = tele.Btn{Unique: "adm_unban"}
	btnAdminGrant     = tele.Btn{Unique: "adm_grant"}
	btnAdminMoods     = tele.Btn{Unique: "adm_moods"}
	btnAdminMoodAdd   = tele.Btn{Unique: "adm_mood_add"}
	btnAdminMoodDel   = tele.Btn{Unique: "adm_mood_del"}
	btnAdminPlans     = tele.Btn{Unique: "adm_plans"}
	btnAdminPlanAdd   = tele.Btn{Unique: "adm_plan_add"}
	btnAdminPlanDel   = tele.Btn{Unique: "adm_plan_del"}
)

func mainMenu() *tele.ReplyMarkup {
	menu := &tele.ReplyMarkup{ResizeKeyboard: true}
	menu.Reply(
		menu.Row(menu.Text(menuNewPlaylist), menu.Text(menuMyPlaylists)),
		menu.Row(menu.Text(menuBrowse), menu.Text(menuLeaderboard)),
		menu.Row(menu.Text(menuProfile), menu.Text(menuPremium)),
		menu.Row(menu.Text(menuSettings)),
	)
	return menu
}

func moodKeyboard(moods []db.Mood) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	var rows []tele.Row
	var row []tele.Btn
	for _, mood := range moods {
		row = append(row, markup.Data(mood.Title, btnMoodPick.Unique, mood.Key))
		if len(row) == 2 {
			rows = append(rows, markup.Row(row...))
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, markup.Row(row...))
	}
	markup.Inline(rows...)
	return markup
}

func playlistManageKeyboard(p *db.Playlist) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}

	visLabel := "🙈 Make Private"
	if p.IsPrivate {
		visLabel = "👁 Make Public"
	}

	rows := []tele.Row{
		markup.Row(
			markup.Data("🎶 Songs", btnPlaylistSongs.Unique, p.ID),
			markup.Data("📌 Set Active", btnPlaylistSetActive.Unique, p.ID),
		),
	}
	if p.Status == db.PlaylistDraft {
		rows = append(rows, markup.Row(markup.Data("🚀 Publish", btnPlaylistPublish.Unique, p.ID)))
	}
	rows = append(rows,
		markup.Row(markup.Data(visLabel, btnPlaylistToggleVis.Unique, p.ID)),
		markup.Row(markup.Data("🗑 Delete", btnPlaylistDelete.Unique, p.ID)),
	)
	markup.Inline(rows...)
	return markup
}

func playlistViewKeyboard(p *db.Playlist) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	markup.Inline(
		markup.Row(
			markup.Data("❤️ Like", btnPlaylistLike.Unique, p.ID),
			markup.Data("▶️ Play", btnPlaylistPlay.Unique, p.ID),
		),
		markup.Row(
			markup.Data("🎶 Songs", btnPlaylistSongs.Unique, p.ID),
		),
		markup.Row(
			markup.Data("➕ Follow Owner", btnFollowUser.Unique, p.ID),
			markup.Data("➖ Unfollow", btnUnfollowUser.Unique, p.ID),
		),
	)
	return markup
}
