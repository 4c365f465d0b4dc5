package models

import (
	"context"
	"time"
)

// Restaurant is the tenant unit: one owner, one subdomain, one menu.
type Restaurant struct {
	ID        string
	OwnerID   string
	Name      string
	Subdomain string
	Template  string
	Published bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// MenuCategory groups menu items, ordered by Position.
type MenuCategory struct {
	ID           string
	RestaurantID string
	Name         string
	Position     int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// MenuItem is a single dish on the published menu.
type MenuItem struct {
	ID          string
	CategoryID  string
	Name        string
	Description string
	PriceCents  int
	Allergens   []string
	Position    int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// RestaurantRepository manages restaurant records
type RestaurantRepository interface {
	GetByID(ctx context.Context, id string) (Restaurant, error)
	GetBySubdomain(ctx context.Context, subdomain string) (Restaurant, error)
	ListByOwner(ctx context.Context, ownerID string) ([]Restaurant, error)
	Create(ctx context.Context, r *Restaurant) error
	Update(ctx context.Context, r *Restaurant) error
	Delete(ctx context.Context, id string) error
	SetPublished(ctx context.Context, id string, published bool) error
}

// MenuRepository manages categories and items for a restaurant's menu
type MenuRepository interface {
	CreateCategory(ctx context.Context, c *MenuCategory) error
	GetCategory(ctx context.Context, id string) (MenuCategory, error)
	ListCategories(ctx context.Context, restaurantID string) ([]MenuCategory, error)
	UpdateCategory(ctx context.Context, c *MenuCategory) error
	DeleteCategory(ctx context.Context, id string) error

	CreateItem(ctx context.Context, it *MenuItem) error
	GetItem(ctx context.Context, id string) (MenuItem, error)
	ListItems(ctx context.Context, categoryID string) ([]MenuItem, error)
	UpdateItem(ctx context.Context, it *MenuItem) error
	DeleteItem(ctx context.Context, id string) error
}
