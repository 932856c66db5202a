package telegram

import (
	"fmt"
	"log"
	"strconv"
	"sync"
	"time"

	tele "gopkg.in/telebot.v3"

	"github.com/mivora/playlist-bot/internal/config"
	"github.com/mivora/playlist-bot/internal/db"
	"github.com/mivora/playlist-bot/internal/payment"
)

// Bot is the Telegram front end. All state lives in the database; the bot
// only keeps per-chat conversation cursors.
type Bot struct {
	tele    *tele.Bot
	db      *db.Database
	cfg     *config.Config
	gateway payment.Gateway

	mu       sync.Mutex
	pending  map[int64]*conversation
	stopOnce sync.Once
	stopCh   chan struct{}
}

// conversation tracks a multi-step interaction with one user.
type conversation struct {
	step string
	data map[string]string
}

// Conversation steps.
const (
	stepPlaylistName  = "playlist_name"
	stepPlaylistMood  = "playlist_mood"
	stepBroadcastText = "broadcast_text"
	stepBanUserID     = "ban_user_id"
	stepUnbanUserID   = "unban_user_id"
	stepGrantUserID   = "grant_user_id"
	stepMoodNew       = "mood_new"
	stepPlanNew       = "plan_new"
)

// New builds the bot and registers every handler.
func New(cfg *config.Config, database *db.Database, gateway payment.Gateway) (*Bot, error) {
	pref := tele.Settings{
		Token:  cfg.BotToken,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	}

	teleBot, err := tele.NewBot(pref)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}

	b := &Bot{
		tele:    teleBot,
		db:      database,
		cfg:     cfg,
		gateway: gateway,
		pending: make(map[int64]*conversation),
		stopCh:  make(chan struct{}),
	}
	b.registerHandlers()
	return b, nil
}

// Start runs the poller and the daily broadcast loop. Blocks until Stop.
func (b *Bot) Start() {
	go b.runDailyTopSongLoop()
	b.tele.Start()
}

// Stop shuts the poller and background loops down.
func (b *Bot) Stop() {
	b.stopOnce.Do(func() {
		close(b.stopCh)
		b.tele.Stop()
	})
}

func (b *Bot) registerHandlers() {
	b.tele.Use(b.middleware)

	b.tele.Handle("/start", b.handleStart)
	b.tele.Handle("/help", b.handleHelp)
	b.tele.Handle("/cancel", b.handleCancel)
	b.tele.Handle("/admin", b.handleAdminPanel)

	b.tele.Handle(tele.OnText, b.handleText)
	b.tele.Handle(tele.OnAudio, b.handleAudio)

	// Playlist management
	b.tele.Handle(&btnMoodPick, b.handleMoodPicked)
	b.tele.Handle(&btnPlaylistOpen, b.handlePlaylistOpen)
	b.tele.Handle(&btnPlaylistPublish, b.handlePlaylistPublish)
	b.tele.Handle(&btnPlaylistToggleVis, b.handlePlaylistToggleVisibility)
	b.tele.Handle(&btnPlaylistSetActive, b.handlePlaylistSetActive)
	b.tele.Handle(&btnPlaylistDelete, b.handlePlaylistDelete)
	b.tele.Handle(&btnPlaylistDeleteYes, b.handlePlaylistDeleteConfirmed)
	b.tele.Handle(&btnPlaylistLike, b.handlePlaylistLike)
	b.tele.Handle(&btnPlaylistPlay, b.handlePlaylistPlay)
	b.tele.Handle(&btnPlaylistSongs, b.handlePlaylistSongs)

	// Songs
	b.tele.Handle(&btnSongLike, b.handleSongLike)
	b.tele.Handle(&btnSongAdd, b.handleSongAdd)
	b.tele.Handle(&btnSongAddTo, b.handleSongAddTo)
	b.tele.Handle(&btnSongRemove, b.handleSongRemove)
	b.tele.Handle(&btnSongPlay, b.handleSongPlay)

	// Browse
	b.tele.Handle(&btnBrowseMood, b.handleBrowseMood)
	b.tele.Handle(&btnBrowsePage, b.handleBrowsePage)

	// Social
	b.tele.Handle(&btnFollowUser, b.handleFollowUser)
	b.tele.Handle(&btnUnfollowUser, b.handleUnfollowUser)

	// Premium
	b.tele.Handle(&btnPremiumBuy, b.handlePremiumBuy)

	// Settings
	b.tele.Handle(&btnToggleNotify, b.handleToggleNotifications)

	// Admin
	b.tele.Handle(&btnAdminStats, b.handleAdminStats)
	b.tele.Handle(&btnAdminBroadcast, b.handleAdminBroadcast)
	b.tele.Handle(&btnAdminBan, b.handleAdminBan)
	b.tele.Handle(&btnAdminUnban, b.handleAdminUnban)
	b.tele.Handle(&btnAdminGrant, b.handleAdminGrant)
	b.tele.Handle(&btnAdminMoods, b.handleAdminMoods)
	b.tele.Handle(&btnAdminMoodAdd, b.handleAdminMoodAdd)
	b.tele.Handle(&btnAdminMoodDel, b.handleAdminMoodDelete)
	b.tele.Handle(&btnAdminPlans, b.handleAdminPlans)
	b.tele.Handle(&btnAdminPlanAdd, b.handleAdminPlanAdd)
	b.tele.Handle(&btnAdminPlanDel, b.handleAdminPlanDelete)
}

// middleware registers the user, refreshes last-seen and drops banned users.
func (b *Bot) middleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		sender := c.Sender()
		if sender == nil {
			return nil
		}

		if b.db.IsBanned(sender.ID) {
			return nil
		}

		if _, ok := b.db.GetUser(sender.ID); !ok {
			if _, err := b.db.CreateUser(sender.ID, sender.Username, sender.FirstName); err != nil {
				log.Printf("register user %d: %v", sender.ID, err)
			}
		} else if err := b.db.TouchUser(sender.ID); err != nil {
			log.Printf("touch user %d: %v", sender.ID, err)
		}

		return next(c)
	}
}

func (b *Bot) isAdmin(userID int64) bool {
	return b.cfg.IsAdmin(userID)
}

// conversation helpers

func (b *Bot) setConversation(userID int64, step string, data map[string]string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if data == nil {
		data = make(map[string]string)
	}
	b.pending[userID] = &conversation{step: step, data: data}
}

func (b *Bot) getConversation(userID int64) (*conversation, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	conv, ok := b.pending[userID]
	return conv, ok
}

func (b *Bot) clearConversation(userID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.pending, userID)
}

// NotifyPremiumActivated implements the payment callback notifier.
func (b *Bot) NotifyPremiumActivated(userID int64, planTitle string) {
	text := "🎉 Premium activated!"
	if planTitle != "" {
		text = fmt.Sprintf("🎉 Premium activated: %s. Enjoy!", planTitle)
	}
	if _, err := b.tele.Send(tele.ChatID(userID), text); err != nil {
		log.Printf("notify premium %d: %v", userID, err)
	}
}

// NotifyPaymentFailed implements the payment callback notifier.
func (b *Bot) NotifyPaymentFailed(userID int64) {
	if _, err := b.tele.Send(tele.ChatID(userID), "❌ Payment was not completed. You can try again from the premium menu."); err != nil {
		log.Printf("notify payment failure %d: %v", userID, err)
	}
}

// deleteOrphans removes storage channel messages no song references anymore.
// Best effort: a failed delete only leaves a stray message in the channel.
func (b *Bot) deleteOrphans(orphans []db.StorageRef) {
	for _, ref := range orphans {
		msg := tele.StoredMessage{
			ChatID:    ref.ChannelID,
			MessageID: strconv.Itoa(ref.MessageID),
		}
		if err := b.tele.Delete(msg); err != nil {
			log.Printf("delete storage message %d/%d: %v", ref.ChannelID, ref.MessageID, err)
		}
	}
}
