package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/menuqr/menuqr/models"
)

// Invitation is an alias to the models.Invitation struct
type Invitation = models.Invitation

// InvitationRepository is an alias to the models.InvitationRepository interface
type InvitationRepository = models.InvitationRepository

// invitationRepository implements the InvitationRepository interface
type invitationRepository struct {
	db *sql.DB
}

// NewInvitationRepository creates a new InvitationRepository
func NewInvitationRepository(db *sql.DB) InvitationRepository {
	return &invitationRepository{db: db}
}

// GetByCode retrieves an invitation by its code
func (repo *invitationRepository) GetByCode(ctx context.Context, code string) (Invitation, error) {
	const q = `SELECT code, restaurant_id, expires_at, used_at, created_at
	           FROM invitations WHERE code = $1`

	row := repo.db.QueryRowContext(ctx, q, code)

	var inv Invitation
	err := row.Scan(&inv.Code, &inv.RestaurantID, &inv.ExpiresAt, &inv.UsedAt, &inv.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Invitation{}, models.ErrNotFound
		}

		return Invitation{}, err
	}

	return inv, nil
}

// Create inserts a new invitation
func (repo *invitationRepository) Create(ctx context.Context, inv *Invitation) error {
	const q = `INSERT INTO invitations (code, restaurant_id, expires_at, created_at)
	           VALUES ($1, $2, $3, $4)`

	if inv.CreatedAt.IsZero() {
		inv.CreatedAt = time.Now().UTC()
	}

	_, err := repo.db.ExecContext(ctx, q, inv.Code, inv.RestaurantID, inv.ExpiresAt, inv.CreatedAt)

	return err
}

// ListByRestaurant returns all invitations issued for a restaurant
func (repo *invitationRepository) ListByRestaurant(ctx context.Context, restaurantID string) ([]Invitation, error) {
	const q = `SELECT code, restaurant_id, expires_at, used_at, created_at
	           FROM invitations WHERE restaurant_id = $1 ORDER BY created_at DESC`

	rows, err := repo.db.QueryContext(ctx, q, restaurantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var invs []Invitation

	for rows.Next() {
		var inv Invitation
		if err := rows.Scan(&inv.Code, &inv.RestaurantID, &inv.ExpiresAt, &inv.UsedAt, &inv.CreatedAt); err != nil {
			return nil, err
		}

		invs = append(invs, inv)
	}

	return invs, rows.Err()
}

// MarkUsed sets used_at in a single conditional update. The predicate
// re-checks both single-use and expiry at write time, so a redemption
// racing with another redemption or with the expiry instant cannot slip
// through a stale earlier read.
func (repo *invitationRepository) MarkUsed(ctx context.Context, code string, usedAt time.Time) (bool, error) {
	const q = `UPDATE invitations
	           SET used_at = $1
	           WHERE code = $2 AND used_at IS NULL AND expires_at > $1`

	res, err := repo.db.ExecContext(ctx, q, usedAt.UTC(), code)
	if err != nil {
		return false, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	return affected == 1, nil
}
