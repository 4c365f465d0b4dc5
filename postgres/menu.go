package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/menuqr/menuqr/models"
)

// menuRepository implements models.MenuRepository
type menuRepository struct {
	db *sql.DB
}

// NewMenuRepository creates a new MenuRepository
func NewMenuRepository(db *sql.DB) models.MenuRepository {
	return &menuRepository{db: db}
}

func (repo *menuRepository) CreateCategory(ctx context.Context, c *models.MenuCategory) error {
	const q = `INSERT INTO menu_categories (id, restaurant_id, name, position, created_at, updated_at)
	           VALUES ($1, $2, $3, $4, $5, $6)`

	now := time.Now().UTC()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}

	if c.UpdatedAt.IsZero() {
		c.UpdatedAt = now
	}

	_, err := repo.db.ExecContext(ctx, q, c.ID, c.RestaurantID, c.Name, c.Position, c.CreatedAt, c.UpdatedAt)

	return err
}

func (repo *menuRepository) GetCategory(ctx context.Context, id string) (models.MenuCategory, error) {
	const q = `SELECT id, restaurant_id, name, position, created_at, updated_at
	           FROM menu_categories WHERE id = $1`

	var c models.MenuCategory
	err := repo.db.QueryRowContext(ctx, q, id).Scan(&c.ID, &c.RestaurantID, &c.Name,
		&c.Position, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.MenuCategory{}, models.ErrNotFound
		}

		return models.MenuCategory{}, err
	}

	return c, nil
}

func (repo *menuRepository) ListCategories(ctx context.Context, restaurantID string) ([]models.MenuCategory, error) {
	const q = `SELECT id, restaurant_id, name, position, created_at, updated_at
	           FROM menu_categories WHERE restaurant_id = $1 ORDER BY position, created_at`

	rows, err := repo.db.QueryContext(ctx, q, restaurantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.MenuCategory

	for rows.Next() {
		var c models.MenuCategory
		if err := rows.Scan(&c.ID, &c.RestaurantID, &c.Name, &c.Position, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}

		out = append(out, c)
	}

	return out, rows.Err()
}

func (repo *menuRepository) UpdateCategory(ctx context.Context, c *models.MenuCategory) error {
	const q = `UPDATE menu_categories SET name = $1, position = $2, updated_at = $3 WHERE id = $4`

	c.UpdatedAt = time.Now().UTC()

	_, err := repo.db.ExecContext(ctx, q, c.Name, c.Position, c.UpdatedAt, c.ID)

	return err
}

func (repo *menuRepository) DeleteCategory(ctx context.Context, id string) error {
	// Items go with the category.
	const itemsQ = `DELETE FROM menu_items WHERE category_id = $1`
	if _, err := repo.db.ExecContext(ctx, itemsQ, id); err != nil {
		return err
	}

	const q = `DELETE FROM menu_categories WHERE id = $1`
	_, err := repo.db.ExecContext(ctx, q, id)

	return err
}

func (repo *menuRepository) CreateItem(ctx context.Context, it *models.MenuItem) error {
	const q = `INSERT INTO menu_items (id, category_id, name, description, price_cents, allergens, position, created_at, updated_at)
	           VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	now := time.Now().UTC()
	if it.CreatedAt.IsZero() {
		it.CreatedAt = now
	}

	if it.UpdatedAt.IsZero() {
		it.UpdatedAt = now
	}

	allergens, err := json.Marshal(it.Allergens)
	if err != nil {
		return err
	}

	_, err = repo.db.ExecContext(ctx, q, it.ID, it.CategoryID, it.Name, it.Description,
		it.PriceCents, allergens, it.Position, it.CreatedAt, it.UpdatedAt)

	return err
}

func (repo *menuRepository) GetItem(ctx context.Context, id string) (models.MenuItem, error) {
	const q = `SELECT id, category_id, name, description, price_cents, allergens, position, created_at, updated_at
	           FROM menu_items WHERE id = $1`

	var (
		it        models.MenuItem
		allergens []byte
	)

	err := repo.db.QueryRowContext(ctx, q, id).Scan(&it.ID, &it.CategoryID, &it.Name,
		&it.Description, &it.PriceCents, &allergens, &it.Position, &it.CreatedAt, &it.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.MenuItem{}, models.ErrNotFound
		}

		return models.MenuItem{}, err
	}

	if len(allergens) > 0 {
		if err := json.Unmarshal(allergens, &it.Allergens); err != nil {
			return models.MenuItem{}, err
		}
	}

	return it, nil
}

func (repo *menuRepository) ListItems(ctx context.Context, categoryID string) ([]models.MenuItem, error) {
	const q = `SELECT id, category_id, name, description, price_cents, allergens, position, created_at, updated_at
	           FROM menu_items WHERE category_id = $1 ORDER BY position, created_at`

	rows, err := repo.db.QueryContext(ctx, q, categoryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.MenuItem

	for rows.Next() {
		var (
			it        models.MenuItem
			allergens []byte
		)

		if err := rows.Scan(&it.ID, &it.CategoryID, &it.Name, &it.Description,
			&it.PriceCents, &allergens, &it.Position, &it.CreatedAt, &it.UpdatedAt); err != nil {
			return nil, err
		}

		if len(allergens) > 0 {
			if err := json.Unmarshal(allergens, &it.Allergens); err != nil {
				return nil, err
			}
		}

		out = append(out, it)
	}

	return out, rows.Err()
}

func (repo *menuRepository) UpdateItem(ctx context.Context, it *models.MenuItem) error {
	const q = `UPDATE menu_items
	           SET name = $1, description = $2, price_cents = $3, allergens = $4, position = $5, updated_at = $6
	           WHERE id = $7`

	it.UpdatedAt = time.Now().UTC()

	allergens, err := json.Marshal(it.Allergens)
	if err != nil {
		return err
	}

	_, err = repo.db.ExecContext(ctx, q, it.Name, it.Description, it.PriceCents,
		allergens, it.Position, it.UpdatedAt, it.ID)

	return err
}

func (repo *menuRepository) DeleteItem(ctx context.Context, id string) error {
	const q = `DELETE FROM menu_items WHERE id = $1`

	_, err := repo.db.ExecContext(ctx, q, id)

	return err
}
