package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/menuqr/menuqr/models"
)

type restaurantRepo struct {
	mu    *sync.RWMutex
	items map[string]models.Restaurant
}

// NewRestaurantRepository returns an in-memory models.RestaurantRepository.
func NewRestaurantRepository() models.RestaurantRepository {
	return &restaurantRepo{
		mu:    &sync.RWMutex{},
		items: make(map[string]models.Restaurant),
	}
}

func (r *restaurantRepo) GetByID(ctx context.Context, id string) (models.Restaurant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rest, ok := r.items[id]
	if !ok {
		return models.Restaurant{}, models.ErrNotFound
	}

	return rest, nil
}

func (r *restaurantRepo) GetBySubdomain(ctx context.Context, subdomain string) (models.Restaurant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, rest := range r.items {
		if rest.Subdomain == subdomain {
			return rest, nil
		}
	}

	return models.Restaurant{}, models.ErrNotFound
}

func (r *restaurantRepo) ListByOwner(ctx context.Context, ownerID string) ([]models.Restaurant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []models.Restaurant

	for _, rest := range r.items {
		if rest.OwnerID == ownerID {
			out = append(out, rest)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})

	return out, nil
}

func (r *restaurantRepo) Create(ctx context.Context, rest *models.Restaurant) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[rest.ID]; ok {
		return models.ErrAlreadyExists
	}

	for _, existing := range r.items {
		if existing.Subdomain == rest.Subdomain {
			return models.ErrAlreadyExists
		}
	}

	now := time.Now().UTC()
	if rest.CreatedAt.IsZero() {
		rest.CreatedAt = now
	}

	if rest.UpdatedAt.IsZero() {
		rest.UpdatedAt = now
	}

	r.items[rest.ID] = *rest

	return nil
}

func (r *restaurantRepo) Update(ctx context.Context, rest *models.Restaurant) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[rest.ID]; !ok {
		return models.ErrNotFound
	}

	for id, existing := range r.items {
		if id != rest.ID && existing.Subdomain == rest.Subdomain {
			return models.ErrAlreadyExists
		}
	}

	rest.UpdatedAt = time.Now().UTC()
	r.items[rest.ID] = *rest

	return nil
}

func (r *restaurantRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return models.ErrNotFound
	}

	delete(r.items, id)

	return nil
}

func (r *restaurantRepo) SetPublished(ctx context.Context, id string, published bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rest, ok := r.items[id]
	if !ok {
		return models.ErrNotFound
	}

	rest.Published = published
	rest.UpdatedAt = time.Now().UTC()
	r.items[id] = rest

	return nil
}

type menuRepo struct {
	mu         *sync.RWMutex
	categories map[string]models.MenuCategory
	items      map[string]models.MenuItem
}

// NewMenuRepository returns an in-memory models.MenuRepository.
func NewMenuRepository() models.MenuRepository {
	return &menuRepo{
		mu:         &sync.RWMutex{},
		categories: make(map[string]models.MenuCategory),
		items:      make(map[string]models.MenuItem),
	}
}

func (r *menuRepo) CreateCategory(ctx context.Context, c *models.MenuCategory) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.categories[c.ID]; ok {
		return models.ErrAlreadyExists
	}

	now := time.Now().UTC()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}

	if c.UpdatedAt.IsZero() {
		c.UpdatedAt = now
	}

	r.categories[c.ID] = *c

	return nil
}

func (r *menuRepo) GetCategory(ctx context.Context, id string) (models.MenuCategory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.categories[id]
	if !ok {
		return models.MenuCategory{}, models.ErrNotFound
	}

	return c, nil
}

func (r *menuRepo) ListCategories(ctx context.Context, restaurantID string) ([]models.MenuCategory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []models.MenuCategory

	for _, c := range r.categories {
		if c.RestaurantID == restaurantID {
			out = append(out, c)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].Position < out[j].Position
	})

	return out, nil
}

func (r *menuRepo) UpdateCategory(ctx context.Context, c *models.MenuCategory) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.categories[c.ID]; !ok {
		return models.ErrNotFound
	}

	c.UpdatedAt = time.Now().UTC()
	r.categories[c.ID] = *c

	return nil
}

func (r *menuRepo) DeleteCategory(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.categories[id]; !ok {
		return models.ErrNotFound
	}

	delete(r.categories, id)

	for itemID, it := range r.items {
		if it.CategoryID == id {
			delete(r.items, itemID)
		}
	}

	return nil
}

func (r *menuRepo) CreateItem(ctx context.Context, it *models.MenuItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[it.ID]; ok {
		return models.ErrAlreadyExists
	}

	now := time.Now().UTC()
	if it.CreatedAt.IsZero() {
		it.CreatedAt = now
	}

	if it.UpdatedAt.IsZero() {
		it.UpdatedAt = now
	}

	r.items[it.ID] = *it

	return nil
}

func (r *menuRepo) GetItem(ctx context.Context, id string) (models.MenuItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	it, ok := r.items[id]
	if !ok {
		return models.MenuItem{}, models.ErrNotFound
	}

	return it, nil
}

func (r *menuRepo) ListItems(ctx context.Context, categoryID string) ([]models.MenuItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []models.MenuItem

	for _, it := range r.items {
		if it.CategoryID == categoryID {
			out = append(out, it)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].Position < out[j].Position
	})

	return out, nil
}

func (r *menuRepo) UpdateItem(ctx context.Context, it *models.MenuItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[it.ID]; !ok {
		return models.ErrNotFound
	}

	it.UpdatedAt = time.Now().UTC()
	r.items[it.ID] = *it

	return nil
}

func (r *menuRepo) DeleteItem(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return models.ErrNotFound
	}

	delete(r.items, id)

	return nil
}
