package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/menuqr/menuqr/models"
)

// restaurantRepository implements models.RestaurantRepository
type restaurantRepository struct {
	db *sql.DB
}

// NewRestaurantRepository creates a new RestaurantRepository
func NewRestaurantRepository(db *sql.DB) models.RestaurantRepository {
	return &restaurantRepository{db: db}
}

const restaurantColumns = `id, owner_id, name, subdomain, template, published, created_at, updated_at`

func scanRestaurant(row *sql.Row) (models.Restaurant, error) {
	var r models.Restaurant
	err := row.Scan(&r.ID, &r.OwnerID, &r.Name, &r.Subdomain, &r.Template,
		&r.Published, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Restaurant{}, models.ErrNotFound
		}

		return models.Restaurant{}, err
	}

	return r, nil
}

func (repo *restaurantRepository) GetByID(ctx context.Context, id string) (models.Restaurant, error) {
	const q = `SELECT ` + restaurantColumns + ` FROM restaurants WHERE id = $1`

	return scanRestaurant(repo.db.QueryRowContext(ctx, q, id))
}

func (repo *restaurantRepository) GetBySubdomain(ctx context.Context, subdomain string) (models.Restaurant, error) {
	const q = `SELECT ` + restaurantColumns + ` FROM restaurants WHERE subdomain = $1`

	return scanRestaurant(repo.db.QueryRowContext(ctx, q, subdomain))
}

func (repo *restaurantRepository) ListByOwner(ctx context.Context, ownerID string) ([]models.Restaurant, error) {
	const q = `SELECT ` + restaurantColumns + ` FROM restaurants WHERE owner_id = $1 ORDER BY created_at`

	rows, err := repo.db.QueryContext(ctx, q, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Restaurant

	for rows.Next() {
		var r models.Restaurant
		if err := rows.Scan(&r.ID, &r.OwnerID, &r.Name, &r.Subdomain, &r.Template,
			&r.Published, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, err
		}

		out = append(out, r)
	}

	return out, rows.Err()
}

func (repo *restaurantRepository) Create(ctx context.Context, r *models.Restaurant) error {
	const q = `INSERT INTO restaurants (id, owner_id, name, subdomain, template, published, created_at, updated_at)
	           VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	now := time.Now().UTC()
	if r.CreatedAt.IsZero() {
		r.CreatedAt = now
	}

	if r.UpdatedAt.IsZero() {
		r.UpdatedAt = now
	}

	_, err := repo.db.ExecContext(ctx, q, r.ID, r.OwnerID, r.Name, r.Subdomain,
		r.Template, r.Published, r.CreatedAt, r.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return models.ErrAlreadyExists
		}

		return err
	}

	return nil
}

func (repo *restaurantRepository) Update(ctx context.Context, r *models.Restaurant) error {
	const q = `UPDATE restaurants SET name = $1, subdomain = $2, template = $3, updated_at = $4
	           WHERE id = $5`

	r.UpdatedAt = time.Now().UTC()

	_, err := repo.db.ExecContext(ctx, q, r.Name, r.Subdomain, r.Template, r.UpdatedAt, r.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return models.ErrAlreadyExists
		}

		return err
	}

	return nil
}

func (repo *restaurantRepository) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM restaurants WHERE id = $1`

	_, err := repo.db.ExecContext(ctx, q, id)

	return err
}

func (repo *restaurantRepository) SetPublished(ctx context.Context, id string, published bool) error {
	const q = `UPDATE restaurants SET published = $1, updated_at = $2 WHERE id = $3`

	_, err := repo.db.ExecContext(ctx, q, published, time.Now().UTC(), id)

	return err
}
