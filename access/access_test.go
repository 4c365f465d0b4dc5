package access_test

import (
	"context"
	"errors"
	"io"
	"log"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/menuqr/menuqr/access"
	"github.com/menuqr/menuqr/memory"
	"github.com/menuqr/menuqr/models"
)

type fakeProvider struct {
	verifyErr error
	createErr error
	calls     int32
}

func (f *fakeProvider) CreatePaymentIntent(_ context.Context, _ string, _ int64, _ string) (string, error) {
	return "pi_secret_123", f.createErr
}

func (f *fakeProvider) VerifyPaymentIntent(ctx context.Context, _, _ string) error {
	atomic.AddInt32(&f.calls, 1)

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	return f.verifyErr
}

type fakeConfig struct{}

func (fakeConfig) GetInt(_ context.Context, _ string, def int) (int, error) { return def, nil }

func (fakeConfig) GetString(_ context.Context, _ string, def string) (string, error) {
	return def, nil
}

func newTestService(t *testing.T, provider *fakeProvider, users ...models.User) (*access.Service, models.UserRepository) {
	t.Helper()

	repo := memory.NewUserRepository()
	for i := range users {
		require.NoError(t, repo.Create(context.Background(), &users[i]))
	}

	logger := log.New(io.Discard, "", 0)

	return access.NewService(repo, provider, fakeConfig{}, logger), repo
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name    string
		user    models.User
		allowed bool
	}{
		{"unpaid non-admin is denied", models.User{}, false},
		{"paid user is allowed", models.User{HasPaid: true}, true},
		{"admin is allowed without paying", models.User{IsAdmin: true}, true},
		{"paid admin is allowed", models.User{IsAdmin: true, HasPaid: true}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decision := access.Evaluate(tt.user)

			assert.Equal(t, tt.allowed, decision.Allowed)

			if !tt.allowed {
				assert.Equal(t, access.ReasonPaymentRequired, decision.Reason)
			}
		})
	}
}

func TestConfirmPayment(t *testing.T) {
	ctx := context.Background()

	t.Run("success then idempotent", func(t *testing.T) {
		provider := &fakeProvider{}
		svc, repo := newTestService(t, provider, models.User{ID: "u1", Email: "a@b.c"})

		require.NoError(t, svc.ConfirmPayment(ctx, "u1", "pi_123"))

		user, err := repo.GetByID(ctx, "u1")
		require.NoError(t, err)
		assert.True(t, user.HasPaid)
		require.NotNil(t, user.PaymentDate)

		firstDate := *user.PaymentDate

		err = svc.ConfirmPayment(ctx, "u1", "pi_123")
		assert.ErrorIs(t, err, access.ErrAlreadyConfirmed)

		user, err = repo.GetByID(ctx, "u1")
		require.NoError(t, err)
		require.NotNil(t, user.PaymentDate)
		assert.Equal(t, firstDate, *user.PaymentDate, "second confirmation must not overwrite the payment date")
	})

	t.Run("admin gets not required", func(t *testing.T) {
		provider := &fakeProvider{}
		svc, repo := newTestService(t, provider, models.User{ID: "admin", Email: "x@y.z", IsAdmin: true})

		err := svc.ConfirmPayment(ctx, "admin", "pi_123")
		assert.ErrorIs(t, err, access.ErrNotRequired)
		assert.Zero(t, atomic.LoadInt32(&provider.calls), "admin confirmation must not hit the provider")

		user, err := repo.GetByID(ctx, "admin")
		require.NoError(t, err)
		assert.False(t, user.HasPaid)
	})

	t.Run("provider failure leaves user unpaid", func(t *testing.T) {
		provider := &fakeProvider{verifyErr: errors.New("intent not succeeded")}
		svc, repo := newTestService(t, provider, models.User{ID: "u2", Email: "c@d.e"})

		err := svc.ConfirmPayment(ctx, "u2", "pi_bad")
		assert.ErrorIs(t, err, access.ErrProviderVerification)

		user, err := repo.GetByID(ctx, "u2")
		require.NoError(t, err)
		assert.False(t, user.HasPaid)
		assert.Nil(t, user.PaymentDate)
	})

	t.Run("unknown user", func(t *testing.T) {
		svc, _ := newTestService(t, &fakeProvider{})

		err := svc.ConfirmPayment(ctx, "missing", "pi_123")
		assert.ErrorIs(t, err, models.ErrNotFound)
	})
}

func TestConfirmPaymentConcurrent(t *testing.T) {
	ctx := context.Background()
	provider := &fakeProvider{}
	svc, repo := newTestService(t, provider, models.User{ID: "u1", Email: "a@b.c"})

	const attempts = 2

	var (
		wg   sync.WaitGroup
		errs = make([]error, attempts)
	)

	for i := 0; i < attempts; i++ {
		wg.Add(1)

		go func(i int) {
			defer wg.Done()
			errs[i] = svc.ConfirmPayment(ctx, "u1", "pi_123")
		}(i)
	}

	wg.Wait()

	var okCount, alreadyCount int

	for _, err := range errs {
		switch {
		case err == nil:
			okCount++
		case errors.Is(err, access.ErrAlreadyConfirmed):
			alreadyCount++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	assert.Equal(t, 1, okCount, "exactly one confirmation must win")
	assert.Equal(t, attempts-1, alreadyCount)

	user, err := repo.GetByID(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, user.HasPaid)
	require.NotNil(t, user.PaymentDate)
}

func TestConfirmPaymentVerifyTimeout(t *testing.T) {
	provider := &fakeProvider{}
	svc, repo := newTestService(t, provider, models.User{ID: "u1", Email: "a@b.c"})
	svc.SetVerifyTimeout(-time.Second) // already expired when verification starts

	err := svc.ConfirmPayment(context.Background(), "u1", "pi_123")
	assert.ErrorIs(t, err, access.ErrProviderVerification)

	user, err := repo.GetByID(context.Background(), "u1")
	require.NoError(t, err)
	assert.False(t, user.HasPaid, "timeout must not leave a half-applied payment")
}

func TestStartPayment(t *testing.T) {
	ctx := context.Background()

	t.Run("unpaid user gets a client secret", func(t *testing.T) {
		svc, _ := newTestService(t, &fakeProvider{}, models.User{ID: "u1", Email: "a@b.c"})

		resp, err := svc.StartPayment(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, "pi_secret_123", resp.ClientSecret)
		assert.NotZero(t, resp.AmountCents)
	})

	t.Run("paid user gets not required", func(t *testing.T) {
		svc, _ := newTestService(t, &fakeProvider{}, models.User{ID: "u1", Email: "a@b.c", HasPaid: true})

		_, err := svc.StartPayment(ctx, "u1")
		assert.ErrorIs(t, err, access.ErrNotRequired)
	})
}
