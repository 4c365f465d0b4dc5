package stripe

import (
	"context"
	"fmt"

	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/paymentintent"
	"github.com/stripe/stripe-go/v81/webhook"
)

// Client interface for Stripe operations
type Client interface {
	CreatePaymentIntent(ctx context.Context, userID string, amountCents int64, currency string) (string, error)
	VerifyPaymentIntent(ctx context.Context, id, userID string) error
	VerifyWebhook(payload []byte, signature, secret string) (*stripe.Event, error)
}

// client implements the Client interface
type client struct {
	apiKey string
}

// NewClient creates a new Stripe client
func NewClient(apiKey string) Client {
	stripe.Key = apiKey
	return &client{apiKey: apiKey}
}

// CreatePaymentIntent creates a one-time payment intent for a user.
// The user id is stored in metadata so verification can tie the intent
// back to the account being unlocked.
func (c *client) CreatePaymentIntent(ctx context.Context, userID string, amountCents int64, currency string) (string, error) {
	params := &stripe.PaymentIntentParams{
		Params: stripe.Params{
			Context: ctx,
		},
		Amount:   stripe.Int64(amountCents),
		Currency: stripe.String(currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
		Metadata: map[string]string{
			"user_id": userID,
		},
	}

	intent, err := paymentintent.New(params)
	if err != nil {
		return "", fmt.Errorf("failed to create payment intent: %w", err)
	}

	return intent.ClientSecret, nil
}

// VerifyPaymentIntent retrieves the payment intent from Stripe and checks
// that it succeeded and belongs to the given user.
func (c *client) VerifyPaymentIntent(ctx context.Context, id, userID string) error {
	params := &stripe.PaymentIntentParams{
		Params: stripe.Params{
			Context: ctx,
		},
	}

	intent, err := paymentintent.Get(id, params)
	if err != nil {
		return fmt.Errorf("failed to get payment intent: %w", err)
	}

	return verifyIntentOwnership(intent, userID)
}

// verifyIntentOwnership accepts only a succeeded intent carrying the user id
// in its metadata. Intents without metadata are rejected: an intent created
// outside this flow must never unlock an account.
func verifyIntentOwnership(intent *stripe.PaymentIntent, userID string) error {
	if intent.Status != stripe.PaymentIntentStatusSucceeded {
		return fmt.Errorf("payment intent %s has status %s", intent.ID, intent.Status)
	}

	if intent.Metadata["user_id"] != userID {
		return fmt.Errorf("payment intent %s does not belong to this user", intent.ID)
	}

	return nil
}

// VerifyWebhook verifies a webhook signature
func (c *client) VerifyWebhook(payload []byte, signature, secret string) (*stripe.Event, error) {
	// Use ConstructEventWithOptions to ignore API version mismatch
	event, err := webhook.ConstructEventWithOptions(payload, signature, secret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to verify webhook: %w", err)
	}

	return &event, nil
}
