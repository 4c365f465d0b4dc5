package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/menuqr/menuqr/models"
)

// User is an alias to the models.User struct
type User = models.User

// UserRepository is an alias to the models.UserRepository interface
type UserRepository = models.UserRepository

// userRepository implements the UserRepository interface
type userRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *sql.DB) UserRepository {
	return &userRepository{db: db}
}

const userColumns = `id, email, is_admin, has_paid, payment_date, created_at, updated_at`

func scanUser(row *sql.Row) (User, error) {
	var user User
	err := row.Scan(&user.ID, &user.Email, &user.IsAdmin, &user.HasPaid,
		&user.PaymentDate, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, models.ErrNotFound
		}

		return User{}, err
	}

	return user, nil
}

// GetByID retrieves a user by ID
func (repo *userRepository) GetByID(ctx context.Context, id string) (User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	return scanUser(repo.db.QueryRowContext(ctx, q, id))
}

// GetByEmail retrieves a user by email
func (repo *userRepository) GetByEmail(ctx context.Context, email string) (User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	return scanUser(repo.db.QueryRowContext(ctx, q, email))
}

// Create inserts a new user
func (repo *userRepository) Create(ctx context.Context, user *User) error {
	const q = `INSERT INTO users (id, email, is_admin, has_paid, payment_date, created_at, updated_at)
	           VALUES ($1, $2, $3, $4, $5, $6, $7)`

	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}

	if user.UpdatedAt.IsZero() {
		user.UpdatedAt = now
	}

	_, err := repo.db.ExecContext(ctx, q, user.ID, user.Email, user.IsAdmin,
		user.HasPaid, user.PaymentDate, user.CreatedAt, user.UpdatedAt)

	return err
}

// Delete removes a user
func (repo *userRepository) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM users WHERE id = $1`

	_, err := repo.db.ExecContext(ctx, q, id)

	return err
}

// SetPaid flips has_paid in a single conditional update. The WHERE clause
// carries the expected state, so of two concurrent confirmations only one
// update reports an affected row.
func (repo *userRepository) SetPaid(ctx context.Context, id string, paidAt time.Time) (bool, error) {
	const q = `UPDATE users
	           SET has_paid = TRUE, payment_date = $1, updated_at = $1
	           WHERE id = $2 AND has_paid = FALSE`

	res, err := repo.db.ExecContext(ctx, q, paidAt.UTC(), id)
	if err != nil {
		return false, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	return affected == 1, nil
}
