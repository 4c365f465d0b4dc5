// Package invite implements the single-use invitation lifecycle: an
// administrator issues a time-bounded code for a restaurant, a recipient
// redeems it exactly once. Status is derived from timestamps at read time;
// only redemption writes.
package invite

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/menuqr/menuqr/models"
)

var (
	ErrNotFound    = errors.New("invitation not found")
	ErrExpired     = errors.New("invitation expired")
	ErrAlreadyUsed = errors.New("invitation already used")
)

// DefaultTTL applies when an invitation is created without an explicit one.
const DefaultTTL = 7 * 24 * time.Hour

// View is what lookup exposes. It never carries the raw code.
type View struct {
	RestaurantID string
	Status       models.InvitationStatus
	ExpiresAt    time.Time
}

// Service handles invitation issuance and redemption.
type Service struct {
	repo   models.InvitationRepository
	now    func() time.Time
	logger *log.Logger
}

// NewService creates a new invitation service
func NewService(repo models.InvitationRepository, logger *log.Logger) *Service {
	return &Service{
		repo:   repo,
		now:    time.Now,
		logger: logger,
	}
}

// SetClock overrides the time source. Used by tests.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// Create issues a new invitation for the restaurant with an opaque code.
func (s *Service) Create(ctx context.Context, restaurantID string, ttl time.Duration) (models.Invitation, error) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	inv := models.Invitation{
		Code:         uuid.New().String(),
		RestaurantID: restaurantID,
		ExpiresAt:    s.now().UTC().Add(ttl),
	}

	if err := s.repo.Create(ctx, &inv); err != nil {
		return models.Invitation{}, fmt.Errorf("failed to create invitation: %w", err)
	}

	s.logger.Printf("Created invitation for restaurant %s, expires %s", restaurantID, inv.ExpiresAt.Format(time.RFC3339))

	return inv, nil
}

// ListByRestaurant returns the restaurant's invitations for the owner dashboard.
func (s *Service) ListByRestaurant(ctx context.Context, restaurantID string) ([]models.Invitation, error) {
	return s.repo.ListByRestaurant(ctx, restaurantID)
}

// Lookup returns the derived status and restaurant reference for a code.
func (s *Service) Lookup(ctx context.Context, code string) (View, error) {
	inv, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return View{}, ErrNotFound
		}

		return View{}, fmt.Errorf("failed to get invitation: %w", err)
	}

	return View{
		RestaurantID: inv.RestaurantID,
		Status:       inv.StatusAt(s.now()),
		ExpiresAt:    inv.ExpiresAt,
	}, nil
}

// Redeem converts a valid invitation into authorization for its restaurant,
// exactly once. The used_at write is a conditional update in the store, so
// of two concurrent redemptions one gets the restaurant reference and the
// other ErrAlreadyUsed. Expired invitations are never mutated.
func (s *Service) Redeem(ctx context.Context, code string) (string, error) {
	inv, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return "", ErrNotFound
		}

		return "", fmt.Errorf("failed to get invitation: %w", err)
	}

	now := s.now().UTC()

	// Fail fast on the snapshot, then let the conditional write re-check.
	switch inv.StatusAt(now) {
	case models.InvitationUsed:
		return "", ErrAlreadyUsed
	case models.InvitationExpired:
		return "", ErrExpired
	}

	ok, err := s.repo.MarkUsed(ctx, code, now)
	if err != nil {
		return "", fmt.Errorf("failed to mark invitation used: %w", err)
	}

	if !ok {
		// The conditional update found the invitation used or expired in
		// the meantime. Re-read to report which.
		inv, err = s.repo.GetByCode(ctx, code)
		if err != nil {
			if errors.Is(err, models.ErrNotFound) {
				return "", ErrNotFound
			}

			return "", fmt.Errorf("failed to get invitation: %w", err)
		}

		if inv.StatusAt(s.now()) == models.InvitationExpired {
			return "", ErrExpired
		}

		return "", ErrAlreadyUsed
	}

	s.logger.Printf("Redeemed invitation for restaurant %s", inv.RestaurantID)

	return inv.RestaurantID, nil
}
