package models

import (
	"context"
	"time"
)

// InvitationStatus is derived from the stored timestamps at read time.
// There is no stored "expired" transition.
type InvitationStatus string

const (
	InvitationValid   InvitationStatus = "valid"
	InvitationExpired InvitationStatus = "expired"
	InvitationUsed    InvitationStatus = "used"
)

// Invitation is a single-use offer to manage a specific restaurant's menu.
type Invitation struct {
	Code         string
	RestaurantID string
	ExpiresAt    time.Time
	UsedAt       *time.Time
	CreatedAt    time.Time
}

// StatusAt derives the invitation status at the given instant.
// A set used_at wins over expiry.
func (inv Invitation) StatusAt(now time.Time) InvitationStatus {
	switch {
	case inv.UsedAt != nil:
		return InvitationUsed
	case !inv.ExpiresAt.After(now):
		// Matches the store's conditional write, which requires
		// expires_at strictly after the redemption instant.
		return InvitationExpired
	default:
		return InvitationValid
	}
}

// InvitationRepository manages invitation records
type InvitationRepository interface {
	GetByCode(ctx context.Context, code string) (Invitation, error)
	Create(ctx context.Context, inv *Invitation) error
	ListByRestaurant(ctx context.Context, restaurantID string) ([]Invitation, error)

	// MarkUsed sets used_at conditionally: the write only happens when
	// used_at is still unset and the invitation has not expired at usedAt.
	// It returns false when the condition did not hold.
	MarkUsed(ctx context.Context, code string, usedAt time.Time) (bool, error)
}
