package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/stripe/stripe-go/v81"

	"github.com/menuqr/menuqr/access"
)

// HandleStripeWebhook handles POST /webhooks/stripe. It confirms payments
// server-side on payment_intent.succeeded, sharing the confirmation path
// with the client-driven endpoint so double delivery stays idempotent.
func (h *WebhookHandlers) HandleStripeWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		h.Deps.Logger.Printf("ERROR %s - Failed to read webhook body: %v", r.URL.Path, err)
		renderError(w, http.StatusBadRequest, "failed to read request body")

		return
	}

	signature := r.Header.Get("Stripe-Signature")
	if signature == "" {
		renderError(w, http.StatusBadRequest, "missing Stripe-Signature header")
		return
	}

	event, err := h.Deps.StripeClient.VerifyWebhook(body, signature, h.Deps.WebhookSecret)
	if err != nil {
		h.Deps.Logger.Printf("ERROR %s - Failed to verify webhook signature: %v", r.URL.Path, err)
		renderError(w, http.StatusBadRequest, "invalid webhook signature")

		return
	}

	h.Deps.Logger.Printf("POST %s - Verified webhook event: %s (ID: %s)", r.URL.Path, event.Type, event.ID)

	switch event.Type {
	case "payment_intent.succeeded":
		if err := h.handlePaymentIntentSucceeded(r, event); err != nil {
			h.Deps.Logger.Printf("ERROR %s - Failed to process event %s: %v", r.URL.Path, event.ID, err)
			renderError(w, http.StatusInternalServerError, "failed to process webhook event")

			return
		}
	default:
		// Unhandled event types are acknowledged so Stripe stops retrying.
	}

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func (h *WebhookHandlers) handlePaymentIntentSucceeded(r *http.Request, event *stripe.Event) error {
	var intent stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
		return err
	}

	userID := intent.Metadata["user_id"]
	if userID == "" {
		h.Deps.Logger.Printf("Webhook event %s has no user_id metadata, skipping", event.ID)
		return nil
	}

	err := h.Deps.AccessSvc.ConfirmPayment(r.Context(), userID, intent.ID)
	if err != nil && !errors.Is(err, access.ErrAlreadyConfirmed) && !errors.Is(err, access.ErrNotRequired) {
		return err
	}

	return nil
}
