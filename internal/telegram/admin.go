package telegram

import (
	"fmt"
	"log"
	"strconv"
	"strings"

	tele "gopkg.in/telebot.v3"

	"github.com/mivora/playlist-bot/internal/db"
	"github.com/mivora/playlist-bot/internal/utils"
)

func (b *Bot) handleAdminPanel(c tele.Context) error {
	if !b.isAdmin(c.Sender().ID) {
		return nil
	}

	markup := &tele.ReplyMarkup{}
	markup.Inline(
		markup.Row(
			markup.Data("📊 Stats", btnAdminStats.Unique),
			markup.Data("📣 Broadcast", btnAdminBroadcast.Unique),
		),
		markup.Row(
			markup.Data("🚫 Ban", btnAdminBan.Unique),
			markup.Data("✅ Unban", btnAdminUnban.Unique),
			markup.Data("⭐ Grant", btnAdminGrant.Unique),
		),
		markup.Row(
			markup.Data("🎭 Moods", btnAdminMoods.Unique),
			markup.Data("💳 Plans", btnAdminPlans.Unique),
		),
	)
	return c.Send("🛠 Admin panel", markup)
}

func (b *Bot) requireAdmin(c tele.Context) bool {
	if b.isAdmin(c.Sender().ID) {
		return true
	}
	_ = c.Respond(&tele.CallbackResponse{Text: "Admins only."})
	return false
}

func (b *Bot) handleAdminStats(c tele.Context) error {
	if !b.requireAdmin(c) {
		return nil
	}

	stats, err := b.db.GetGlobalStats()
	if err != nil {
		return c.Respond(&tele.CallbackResponse{Text: "Failed to compute stats."})
	}
	if err := c.Respond(&tele.CallbackResponse{}); err != nil {
		return err
	}

	text := fmt.Sprintf(
		"📊 Stats\n\n"+
			"Users: %s (banned %d)\n"+
			"New today: %d · this week: %d\n"+
			"Active today: %d\n\n"+
			"Published playlists: %s\n"+
			"Songs: %s\n"+
			"Likes: %s · Plays: %s\n\n"+
			"Premium: %d (%.1f%%)\n"+
			"Revenue: %s",
		utils.FormatNumber(stats.TotalUsers), stats.BannedUsers,
		stats.NewToday, stats.NewLastWeek,
		stats.ActiveToday,
		utils.FormatNumber(stats.TotalPlaylists),
		utils.FormatNumber(stats.TotalSongs),
		utils.FormatNumber(stats.TotalLikes), utils.FormatNumber(stats.TotalPlays),
		stats.PremiumUsers, stats.PremiumRatio*100,
		utils.FormatNumber(stats.Revenue),
	)
	return c.Send(text)
}

func (b *Bot) handleAdminBroadcast(c tele.Context) error {
	if !b.requireAdmin(c) {
		return nil
	}
	b.setConversation(c.Sender().ID, stepBroadcastText, nil)
	if err := c.Respond(&tele.CallbackResponse{}); err != nil {
		return err
	}
	return c.Send("Send the broadcast text. It goes to every user with notifications on.\n\n/cancel to abort.")
}

func (b *Bot) runBroadcast(c tele.Context, text string) error {
	if !b.isAdmin(c.Sender().ID) {
		return nil
	}

	ids := b.db.NotifiableUserIDs()
	sent := 0
	for _, id := range ids {
		if _, err := b.tele.Send(tele.ChatID(id), text); err != nil {
			log.Printf("broadcast to %d: %v", id, err)
			continue
		}
		sent++
	}
	return c.Send(fmt.Sprintf("📣 Broadcast delivered to %d of %d users.", sent, len(ids)))
}

func (b *Bot) handleAdminBan(c tele.Context) error {
	return b.startAdminUserStep(c, stepBanUserID, "Send the user id to ban.")
}

func (b *Bot) handleAdminUnban(c tele.Context) error {
	return b.startAdminUserStep(c, stepUnbanUserID, "Send the user id to unban.")
}

func (b *Bot) handleAdminGrant(c tele.Context) error {
	return b.startAdminUserStep(c, stepGrantUserID, "Send: <user id> <days> to grant premium.")
}

func (b *Bot) startAdminUserStep(c tele.Context, step, prompt string) error {
	if !b.requireAdmin(c) {
		return nil
	}
	b.setConversation(c.Sender().ID, step, nil)
	if err := c.Respond(&tele.CallbackResponse{}); err != nil {
		return err
	}
	return c.Send(prompt + "\n\n/cancel to abort.")
}

func (b *Bot) finishAdminUserStep(c tele.Context, step, text string) error {
	adminID := c.Sender().ID
	if !b.isAdmin(adminID) {
		b.clearConversation(adminID)
		return nil
	}
	b.clearConversation(adminID)

	fields := strings.Fields(text)
	if len(fields) == 0 {
		return c.Send("That doesn't look like a user id.")
	}
	userID, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return c.Send("That doesn't look like a user id.")
	}
	if _, ok := b.db.GetUser(userID); !ok {
		return c.Send("No such user.")
	}

	switch step {
	case stepBanUserID:
		if err := b.db.BanUser(userID); err != nil {
			return c.Send("Something went wrong.")
		}
		return c.Send(fmt.Sprintf("🚫 User %d banned.", userID))
	case stepUnbanUserID:
		if err := b.db.UnbanUser(userID); err != nil {
			return c.Send("Something went wrong.")
		}
		return c.Send(fmt.Sprintf("✅ User %d unbanned.", userID))
	case stepGrantUserID:
		days := 30
		if len(fields) > 1 {
			if n, err := strconv.Atoi(fields[1]); err == nil && n > 0 {
				days = n
			}
		}
		if err := b.db.ActivatePremium(userID, days, "", 0); err != nil {
			return c.Send("Something went wrong.")
		}
		return c.Send(fmt.Sprintf("⭐ User %d is premium for %d days.", userID, days))
	}
	return nil
}

// mood registry management

func (b *Bot) handleAdminMoods(c tele.Context) error {
	if !b.requireAdmin(c) {
		return nil
	}
	if err := c.Respond(&tele.CallbackResponse{}); err != nil {
		return err
	}

	moods := b.db.Moods()
	var sb strings.Builder
	sb.WriteString("🎭 Mood registry\n\n")
	markup := &tele.ReplyMarkup{}
	rows := []tele.Row{markup.Row(markup.Data("➕ Add mood", btnAdminMoodAdd.Unique))}
	for _, mood := range moods {
		fmt.Fprintf(&sb, "• %s (%s)\n", mood.Title, mood.Key)
		rows = append(rows, markup.Row(
			markup.Data("🗑 "+mood.Title, btnAdminMoodDel.Unique, mood.Key)))
	}
	markup.Inline(rows...)
	return c.Send(sb.String(), markup)
}

func (b *Bot) handleAdminMoodAdd(c tele.Context) error {
	if !b.requireAdmin(c) {
		return nil
	}
	b.setConversation(c.Sender().ID, stepMoodNew, nil)
	if err := c.Respond(&tele.CallbackResponse{}); err != nil {
		return err
	}
	return c.Send("Send the new mood as: <key> | <title>\nExample: lo_fi | 🎧 Lo-Fi\n\nKey may be omitted to derive it from the title.")
}

func (b *Bot) finishMoodAdd(c tele.Context, text string) error {
	if !b.isAdmin(c.Sender().ID) {
		return nil
	}

	key, title := "", text
	if before, after, found := strings.Cut(text, "|"); found {
		key, title = strings.TrimSpace(before), strings.TrimSpace(after)
	}

	newKey, status, err := b.db.AddMood(key, title)
	if err != nil {
		return c.Send("Something went wrong.")
	}
	switch status {
	case db.StatusAdded:
		return c.Send(fmt.Sprintf("✅ Mood %q added as %s.", title, newKey))
	case db.StatusExists:
		return c.Send("A mood with that key already exists.")
	case db.StatusInvalidKey:
		return c.Send("Keys may only contain a-z, 0-9 and underscores.")
	case db.StatusInvalidTitle:
		return c.Send("The title can't be empty.")
	default:
		return c.Send("Could not add the mood.")
	}
}

func (b *Bot) handleAdminMoodDelete(c tele.Context) error {
	if !b.requireAdmin(c) {
		return nil
	}

	fallback, status, err := b.db.DeleteMood(c.Data())
	if err != nil {
		return c.Respond(&tele.CallbackResponse{Text: "Something went wrong."})
	}
	switch status {
	case db.StatusRemoved:
		return c.Respond(&tele.CallbackResponse{
			Text: fmt.Sprintf("Deleted. Its playlists moved to %s.", fallback)})
	case db.StatusLastOne:
		return c.Respond(&tele.CallbackResponse{Text: "Can't delete the last mood."})
	default:
		return c.Respond(&tele.CallbackResponse{Text: "Mood not found."})
	}
}

// premium plan management

func (b *Bot) handleAdminPlans(c tele.Context) error {
	if !b.requireAdmin(c) {
		return nil
	}
	if err := c.Respond(&tele.CallbackResponse{}); err != nil {
		return err
	}

	plans := b.db.PremiumPlans()
	var sb strings.Builder
	sb.WriteString("💳 Premium plans\n\n")
	markup := &tele.ReplyMarkup{}
	rows := []tele.Row{markup.Row(markup.Data("➕ Add plan", btnAdminPlanAdd.Unique))}
	for _, plan := range plans {
		fmt.Fprintf(&sb, "• %s — %s for %d days\n",
			plan.Title, utils.FormatNumber(plan.Price), plan.DurationDays)
		rows = append(rows, markup.Row(
			markup.Data("🗑 "+plan.Title, btnAdminPlanDel.Unique, plan.ID)))
	}
	markup.Inline(rows...)
	return c.Send(sb.String(), markup)
}

func (b *Bot) handleAdminPlanAdd(c tele.Context) error {
	if !b.requireAdmin(c) {
		return nil
	}
	b.setConversation(c.Sender().ID, stepPlanNew, nil)
	if err := c.Respond(&tele.CallbackResponse{}); err != nil {
		return err
	}
	return c.Send("Send the new plan as: <title> | <price> | <days>\nExample: 6 Months | 900000 | 180")
}

func (b *Bot) finishPlanAdd(c tele.Context, text string) error {
	if !b.isAdmin(c.Sender().ID) {
		return nil
	}

	parts := strings.Split(text, "|")
	if len(parts) != 3 {
		return c.Send("Format: <title> | <price> | <days>")
	}
	title := strings.TrimSpace(parts[0])
	price, err1 := strconv.Atoi(strings.TrimSpace(parts[1]))
	days, err2 := strconv.Atoi(strings.TrimSpace(parts[2]))
	if title == "" || err1 != nil || err2 != nil || price < 0 || days < 1 {
		return c.Send("Format: <title> | <price> | <days>")
	}

	plan, err := b.db.AddPremiumPlan(title, price, days)
	if err != nil {
		return c.Send("Something went wrong.")
	}
	return c.Send(fmt.Sprintf("✅ Plan %s added (%s).", plan.Title, plan.ID))
}

func (b *Bot) handleAdminPlanDelete(c tele.Context) error {
	if !b.requireAdmin(c) {
		return nil
	}

	// Keep at least one plan so the premium menu never goes empty.
	if len(b.db.PremiumPlans()) <= 1 {
		return c.Respond(&tele.CallbackResponse{Text: "Can't delete the last plan."})
	}

	ok, err := b.db.DeletePremiumPlan(c.Data())
	if err != nil {
		return c.Respond(&tele.CallbackResponse{Text: "Something went wrong."})
	}
	if !ok {
		return c.Respond(&tele.CallbackResponse{Text: "Plan not found."})
	}
	return c.Respond(&tele.CallbackResponse{Text: "Deleted."})
}
