package models

import (
	"context"
	"time"
)

// User represents a registered user in the system
type User struct {
	ID          string
	Email       string
	IsAdmin     bool
	HasPaid     bool
	PaymentDate *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// UserRepository manages user operations
type UserRepository interface {
	GetByID(ctx context.Context, id string) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	Create(ctx context.Context, user *User) error
	Delete(ctx context.Context, id string) error

	// SetPaid marks the user as paid with the given payment date.
	// The update is conditional on has_paid being false; it returns false
	// when another caller already flipped the flag.
	SetPaid(ctx context.Context, id string, paidAt time.Time) (bool, error)
}
