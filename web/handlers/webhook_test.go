package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v81"

	"github.com/menuqr/menuqr/models"
)

type fakeStripeClient struct {
	event     *stripe.Event
	verifyErr error
}

func (f *fakeStripeClient) CreatePaymentIntent(_ context.Context, _ string, _ int64, _ string) (string, error) {
	return "pi_secret_123", nil
}

func (f *fakeStripeClient) VerifyPaymentIntent(_ context.Context, _, _ string) error {
	return nil
}

func (f *fakeStripeClient) VerifyWebhook(_ []byte, _, _ string) (*stripe.Event, error) {
	return f.event, f.verifyErr
}

func paymentIntentEvent(t *testing.T, eventType, intentID, userID string) *stripe.Event {
	t.Helper()

	raw, err := json.Marshal(map[string]any{
		"id":       intentID,
		"metadata": map[string]string{"user_id": userID},
	})
	require.NoError(t, err)

	return &stripe.Event{
		ID:   "evt_1",
		Type: stripe.EventType(eventType),
		Data: &stripe.EventData{Raw: raw},
	}
}

func (e *testEnv) postWebhook(t *testing.T, fake *fakeStripeClient, withSignature bool) *httptest.ResponseRecorder {
	t.Helper()

	e.group.Webhook.Deps.StripeClient = fake
	e.group.Webhook.Deps.WebhookSecret = "whsec_test"

	req := httptest.NewRequest(http.MethodPost, "/webhooks/stripe", strings.NewReader("{}"))
	if withSignature {
		req.Header.Set("Stripe-Signature", "t=1,v1=sig")
	}

	rec := httptest.NewRecorder()
	e.group.Webhook.HandleStripeWebhook(rec, req)

	return rec
}

func TestHandleStripeWebhook(t *testing.T) {
	t.Run("payment intent succeeded marks the user paid", func(t *testing.T) {
		env := newTestEnv(t)
		env.createUser(t, models.User{ID: "u1", Email: "a@b.c"})

		fake := &fakeStripeClient{event: paymentIntentEvent(t, "payment_intent.succeeded", "pi_1", "u1")}

		rec := env.postWebhook(t, fake, true)
		require.Equal(t, http.StatusOK, rec.Code)

		user, err := env.users.GetByID(context.Background(), "u1")
		require.NoError(t, err)
		assert.True(t, user.HasPaid)
	})

	t.Run("double delivery stays idempotent", func(t *testing.T) {
		env := newTestEnv(t)
		env.createUser(t, models.User{ID: "u1", Email: "a@b.c"})

		fake := &fakeStripeClient{event: paymentIntentEvent(t, "payment_intent.succeeded", "pi_1", "u1")}

		rec := env.postWebhook(t, fake, true)
		require.Equal(t, http.StatusOK, rec.Code)

		rec = env.postWebhook(t, fake, true)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("missing signature header", func(t *testing.T) {
		env := newTestEnv(t)

		rec := env.postWebhook(t, &fakeStripeClient{}, false)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("invalid signature", func(t *testing.T) {
		env := newTestEnv(t)

		fake := &fakeStripeClient{verifyErr: errors.New("signature mismatch")}

		rec := env.postWebhook(t, fake, true)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unhandled event types are acknowledged", func(t *testing.T) {
		env := newTestEnv(t)

		fake := &fakeStripeClient{event: &stripe.Event{ID: "evt_2", Type: "customer.created", Data: &stripe.EventData{Raw: []byte("{}")}}}

		rec := env.postWebhook(t, fake, true)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("event without user metadata is skipped", func(t *testing.T) {
		env := newTestEnv(t)

		fake := &fakeStripeClient{event: paymentIntentEvent(t, "payment_intent.succeeded", "pi_1", "")}

		rec := env.postWebhook(t, fake, true)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}
