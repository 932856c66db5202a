package telegram

import (
	"fmt"
	"log"

	tele "gopkg.in/telebot.v3"

	"github.com/mivora/playlist-bot/internal/db"
	"github.com/mivora/playlist-bot/internal/utils"
)

func (b *Bot) sendPremiumMenu(c tele.Context) error {
	userID := c.Sender().ID
	limits := b.db.Limits()

	if b.db.IsPremium(userID) {
		user, _ := b.db.GetUser(userID)
		until := "—"
		if user != nil && user.PremiumUntil != nil {
			until = user.PremiumUntil.Format("2006-01-02")
		}
		return c.Send(fmt.Sprintf("⭐ You're Premium until %s. Enjoy unlimited songs per playlist!", until))
	}

	text := fmt.Sprintf(
		"⭐ Premium\n\n"+
			"Free tier: %d playlists, %d songs each, %d follows.\n"+
			"Premium: %d playlists, unlimited songs, %d follows.\n\n"+
			"Pick a plan:",
		limits.FreePlaylists, limits.FreeSongsPerPlaylist, limits.FreeFollows,
		limits.PremiumPlaylists, limits.PremiumFollows,
	)

	markup := &tele.ReplyMarkup{}
	var rows []tele.Row
	for _, plan := range b.db.PremiumPlans() {
		label := fmt.Sprintf("%s — %s", plan.Title, utils.FormatNumber(plan.Price))
		rows = append(rows, markup.Row(markup.Data(label, btnPremiumBuy.Unique, plan.ID)))
	}
	if len(rows) == 0 {
		return c.Send("No plans are available right now.")
	}
	markup.Inline(rows...)
	return c.Send(text, markup)
}

func (b *Bot) handlePremiumBuy(c tele.Context) error {
	userID := c.Sender().ID
	plan, ok := b.db.GetPremiumPlan(c.Data())
	if !ok {
		return c.Respond(&tele.CallbackResponse{Text: "That plan is gone."})
	}

	if b.gateway == nil {
		return c.Respond(&tele.CallbackResponse{Text: "Payments are not configured."})
	}

	request, err := b.gateway.CreatePayment(plan.Price, fmt.Sprintf("Premium: %s", plan.Title), userID)
	if err != nil {
		log.Printf("create payment for %d: %v", userID, err)
		return c.Respond(&tele.CallbackResponse{Text: "Payment gateway is unavailable, try later."})
	}

	err = b.db.SetPendingPayment(userID, db.PendingPayment{
		Authority:    request.Authority,
		Amount:       plan.Price,
		PlanID:       plan.ID,
		Title:        plan.Title,
		DurationDays: plan.DurationDays,
	})
	if err != nil {
		return c.Respond(&tele.CallbackResponse{Text: "Something went wrong."})
	}

	if err := c.Respond(&tele.CallbackResponse{}); err != nil {
		return err
	}

	markup := &tele.ReplyMarkup{}
	markup.Inline(markup.Row(markup.URL("💳 Pay now", request.PaymentURL)))
	return c.Send(fmt.Sprintf(
		"%s — %s\n\nTap the button to pay. I'll confirm here once the gateway does.",
		plan.Title, utils.FormatNumber(plan.Price)), markup)
}
