// Package access decides whether a principal may reach payment-gated
// functionality and drives the one-time payment confirmation.
package access

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/menuqr/menuqr/models"
)

var (
	// ErrAlreadyConfirmed means the user was already marked as paid.
	ErrAlreadyConfirmed = errors.New("payment already confirmed")
	// ErrNotRequired means the user does not need to pay (admin).
	ErrNotRequired = errors.New("payment not required")
	// ErrProviderVerification means the payment provider did not confirm the payment.
	ErrProviderVerification = errors.New("payment provider verification failed")
)

// Reason explains a denied decision.
type Reason string

const ReasonPaymentRequired Reason = "payment_required"

// Decision is the admission verdict for a user snapshot.
type Decision struct {
	Allowed bool
	Reason  Reason
}

// Evaluate computes the admission decision from a user snapshot.
// It is pure: same snapshot, same decision. Callers must fetch a fresh
// snapshot before evaluating.
func Evaluate(user models.User) Decision {
	if user.IsAdmin || user.HasPaid {
		return Decision{Allowed: true}
	}

	return Decision{Allowed: false, Reason: ReasonPaymentRequired}
}

// PaymentProvider is the external payment collaborator.
type PaymentProvider interface {
	// CreatePaymentIntent starts a payment for the user and returns the
	// client secret the frontend needs to collect the payment.
	CreatePaymentIntent(ctx context.Context, userID string, amountCents int64, currency string) (string, error)

	// VerifyPaymentIntent checks out-of-band that the given confirmation id
	// refers to a succeeded payment belonging to userID.
	VerifyPaymentIntent(ctx context.Context, id, userID string) error
}

// PriceConfig supplies the one-time price. Backed by the config service.
type PriceConfig interface {
	GetInt(ctx context.Context, key string, defaultValue int) (int, error)
	GetString(ctx context.Context, key string, defaultValue string) (string, error)
}

const (
	defaultVerifyTimeout = 15 * time.Second

	defaultPriceCents = 4900
	defaultCurrency   = "eur"
)

// Service handles payment status and confirmation for users.
type Service struct {
	userRepo      models.UserRepository
	provider      PaymentProvider
	cfg           PriceConfig
	verifyTimeout time.Duration
	logger        *log.Logger
}

// NewService creates a new access service
func NewService(userRepo models.UserRepository, provider PaymentProvider, cfg PriceConfig, logger *log.Logger) *Service {
	return &Service{
		userRepo:      userRepo,
		provider:      provider,
		cfg:           cfg,
		verifyTimeout: defaultVerifyTimeout,
		logger:        logger,
	}
}

// SetVerifyTimeout overrides the provider verification timeout.
func (s *Service) SetVerifyTimeout(d time.Duration) {
	s.verifyTimeout = d
}

// PaymentStatus returns a fresh payment snapshot for the user.
func (s *Service) PaymentStatus(ctx context.Context, userID string) (models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return models.User{}, fmt.Errorf("failed to get user: %w", err)
	}

	return user, nil
}

// StartPayment creates a payment intent for an unpaid user.
// Admins and already-paid users get ErrNotRequired.
func (s *Service) StartPayment(ctx context.Context, userID string) (models.PaymentIntentResponse, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return models.PaymentIntentResponse{}, fmt.Errorf("failed to get user: %w", err)
	}

	if user.IsAdmin || user.HasPaid {
		return models.PaymentIntentResponse{}, ErrNotRequired
	}

	amount, err := s.cfg.GetInt(ctx, "payment.price_cents", defaultPriceCents)
	if err != nil {
		return models.PaymentIntentResponse{}, fmt.Errorf("failed to read price: %w", err)
	}

	currency, err := s.cfg.GetString(ctx, "payment.currency", defaultCurrency)
	if err != nil {
		return models.PaymentIntentResponse{}, fmt.Errorf("failed to read currency: %w", err)
	}

	clientSecret, err := s.provider.CreatePaymentIntent(ctx, userID, int64(amount), currency)
	if err != nil {
		return models.PaymentIntentResponse{}, fmt.Errorf("failed to create payment intent: %w", err)
	}

	return models.PaymentIntentResponse{
		ClientSecret: clientSecret,
		AmountCents:  int64(amount),
		Currency:     currency,
	}, nil
}

// ConfirmPayment verifies the provider confirmation and marks the user as
// paid. It is idempotent: a second call for a paid user returns
// ErrAlreadyConfirmed without touching the record. The local write happens
// only after the provider verdict, and only through the repository's
// conditional update, so concurrent confirmations result in exactly one
// effective transition.
func (s *Service) ConfirmPayment(ctx context.Context, userID, confirmationID string) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}

	if user.IsAdmin {
		return ErrNotRequired
	}

	if user.HasPaid {
		return ErrAlreadyConfirmed
	}

	vctx, cancel := context.WithTimeout(ctx, s.verifyTimeout)
	defer cancel()

	if err := s.provider.VerifyPaymentIntent(vctx, confirmationID, userID); err != nil {
		return fmt.Errorf("%w: %v", ErrProviderVerification, err)
	}

	ok, err := s.userRepo.SetPaid(ctx, userID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to mark user as paid: %w", err)
	}

	if !ok {
		// Lost the race against a concurrent confirmation.
		return ErrAlreadyConfirmed
	}

	s.logger.Printf("Confirmed payment for user %s (intent %s)", userID, confirmationID)

	return nil
}
