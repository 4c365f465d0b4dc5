// Package memory provides in-memory repository implementations backed by a
// mutex-guarded map. They honor the same conditional-update semantics as
// the postgres repositories and back the service tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/menuqr/menuqr/models"
)

type userRepo struct {
	mu    *sync.RWMutex
	items map[string]models.User
}

// NewUserRepository returns an in-memory models.UserRepository.
func NewUserRepository() models.UserRepository {
	return &userRepo{
		mu:    &sync.RWMutex{},
		items: make(map[string]models.User),
	}
}

func (r *userRepo) GetByID(ctx context.Context, id string) (models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.items[id]
	if !ok {
		return models.User{}, models.ErrNotFound
	}

	return user, nil
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, user := range r.items {
		if user.Email == email {
			return user, nil
		}
	}

	return models.User{}, models.ErrNotFound
}

func (r *userRepo) Create(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[user.ID]; ok {
		return models.ErrAlreadyExists
	}

	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}

	if user.UpdatedAt.IsZero() {
		user.UpdatedAt = now
	}

	r.items[user.ID] = *user

	return nil
}

func (r *userRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return models.ErrNotFound
	}

	delete(r.items, id)

	return nil
}

func (r *userRepo) SetPaid(ctx context.Context, id string, paidAt time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.items[id]
	if !ok {
		return false, models.ErrNotFound
	}

	if user.HasPaid {
		return false, nil
	}

	paidAt = paidAt.UTC()
	user.HasPaid = true
	user.PaymentDate = &paidAt
	user.UpdatedAt = paidAt
	r.items[id] = user

	return true, nil
}

type invitationRepo struct {
	mu    *sync.RWMutex
	items map[string]models.Invitation
}

// NewInvitationRepository returns an in-memory models.InvitationRepository.
func NewInvitationRepository() models.InvitationRepository {
	return &invitationRepo{
		mu:    &sync.RWMutex{},
		items: make(map[string]models.Invitation),
	}
}

func (r *invitationRepo) GetByCode(ctx context.Context, code string) (models.Invitation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	inv, ok := r.items[code]
	if !ok {
		return models.Invitation{}, models.ErrNotFound
	}

	return inv, nil
}

func (r *invitationRepo) Create(ctx context.Context, inv *models.Invitation) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[inv.Code]; ok {
		return models.ErrAlreadyExists
	}

	if inv.CreatedAt.IsZero() {
		inv.CreatedAt = time.Now().UTC()
	}

	r.items[inv.Code] = *inv

	return nil
}

func (r *invitationRepo) ListByRestaurant(ctx context.Context, restaurantID string) ([]models.Invitation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []models.Invitation

	for _, inv := range r.items {
		if inv.RestaurantID == restaurantID {
			out = append(out, inv)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	return out, nil
}

func (r *invitationRepo) MarkUsed(ctx context.Context, code string, usedAt time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	inv, ok := r.items[code]
	if !ok {
		// Same contract as the SQL backend: a non-matching row reports
		// false, not an error.
		return false, nil
	}

	if inv.UsedAt != nil || !inv.ExpiresAt.After(usedAt) {
		return false, nil
	}

	usedAt = usedAt.UTC()
	inv.UsedAt = &usedAt
	r.items[code] = inv

	return true, nil
}
