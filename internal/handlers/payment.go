package handlers

import (
	"fmt"
	"log"
	"net/http"
	"strconv"
)

// PaymentCallback handles the gateway redirect after a purchase attempt.
// The gateway appends Authority and Status to the callback URL; user_id was
// put there by us when the session was created.
func (h *Handler) PaymentCallback(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	authority := query.Get("Authority")
	status := query.Get("Status")

	userID, err := strconv.ParseInt(query.Get("user_id"), 10, 64)
	if err != nil {
		writePaymentPage(w, http.StatusBadRequest, "Invalid payment callback.")
		return
	}

	pending, ok := h.db.GetPendingPayment(userID)
	if !ok || pending.Authority != authority {
		writePaymentPage(w, http.StatusNotFound, "No matching payment found. If you paid, contact support.")
		return
	}

	if status != "OK" {
		if err := h.db.ClearPendingPayment(userID); err != nil {
			log.Printf("Error clearing cancelled payment for %d: %v", userID, err)
		}
		if h.notifier != nil {
			h.notifier.NotifyPaymentFailed(userID)
		}
		writePaymentPage(w, http.StatusOK, "Payment cancelled. You can try again from the bot.")
		return
	}

	paid, err := h.gateway.VerifyPayment(authority, pending.Amount)
	if err != nil {
		log.Printf("Error verifying payment %s for %d: %v", authority, userID, err)
		writePaymentPage(w, http.StatusBadGateway, "Could not verify the payment. If you paid, contact support.")
		return
	}
	if !paid {
		if err := h.db.ClearPendingPayment(userID); err != nil {
			log.Printf("Error clearing failed payment for %d: %v", userID, err)
		}
		if h.notifier != nil {
			h.notifier.NotifyPaymentFailed(userID)
		}
		writePaymentPage(w, http.StatusOK, "Payment was not completed. You can try again from the bot.")
		return
	}

	if err := h.db.ActivatePremium(userID, pending.DurationDays, pending.PlanID, pending.Amount); err != nil {
		log.Printf("Error activating premium for %d after payment %s: %v", userID, authority, err)
		writePaymentPage(w, http.StatusInternalServerError, "Payment received but activation failed. Contact support.")
		return
	}

	if h.notifier != nil {
		h.notifier.NotifyPremiumActivated(userID, pending.Title)
	}
	writePaymentPage(w, http.StatusOK, "Payment successful! Premium is now active. Return to the bot.")
}

func writePaymentPage(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(statusCode)
	fmt.Fprintf(w, "<html><body><h2>%s</h2></body></html>", message)
}
