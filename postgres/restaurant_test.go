package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/menuqr/menuqr/models"
)

func TestRestaurantRepository(t *testing.T) {
	db := openTestDB(t)

	userRepo := NewUserRepository(db)
	restRepo := NewRestaurantRepository(db)

	ctx := context.Background()
	restaurant := createTestRestaurant(t, userRepo, restRepo)

	t.Run("GetByID", func(t *testing.T) {
		fetched, err := restRepo.GetByID(ctx, restaurant.ID)
		if err != nil {
			t.Fatalf("Failed to get restaurant: %v", err)
		}

		if fetched.Subdomain != restaurant.Subdomain {
			t.Errorf("Expected subdomain %s, got %s", restaurant.Subdomain, fetched.Subdomain)
		}

		if fetched.Published {
			t.Errorf("Expected new restaurant to be unpublished")
		}
	})

	t.Run("GetBySubdomain", func(t *testing.T) {
		fetched, err := restRepo.GetBySubdomain(ctx, restaurant.Subdomain)
		if err != nil {
			t.Fatalf("Failed to get restaurant by subdomain: %v", err)
		}

		if fetched.ID != restaurant.ID {
			t.Errorf("Expected restaurant ID %s, got %s", restaurant.ID, fetched.ID)
		}
	})

	t.Run("DuplicateSubdomain", func(t *testing.T) {
		dup := models.Restaurant{
			ID:        uuid.New().String(),
			OwnerID:   restaurant.OwnerID,
			Name:      "Duplicate",
			Subdomain: restaurant.Subdomain,
			Template:  "classic",
		}

		err := restRepo.Create(ctx, &dup)
		if !errors.Is(err, models.ErrAlreadyExists) {
			t.Errorf("Expected ErrAlreadyExists, got %v", err)
		}
	})

	t.Run("ListByOwner", func(t *testing.T) {
		restaurants, err := restRepo.ListByOwner(ctx, restaurant.OwnerID)
		if err != nil {
			t.Fatalf("Failed to list restaurants: %v", err)
		}

		if len(restaurants) != 1 {
			t.Errorf("Expected 1 restaurant, got %d", len(restaurants))
		}
	})

	t.Run("SetPublished", func(t *testing.T) {
		if err := restRepo.SetPublished(ctx, restaurant.ID, true); err != nil {
			t.Fatalf("Failed to publish restaurant: %v", err)
		}

		fetched, err := restRepo.GetByID(ctx, restaurant.ID)
		if err != nil {
			t.Fatalf("Failed to get restaurant: %v", err)
		}

		if !fetched.Published {
			t.Errorf("Expected restaurant to be published")
		}
	})

	t.Run("UpdateToTakenSubdomain", func(t *testing.T) {
		other := createTestRestaurant(t, userRepo, restRepo)
		other.Subdomain = restaurant.Subdomain

		err := restRepo.Update(ctx, &other)
		if !errors.Is(err, models.ErrAlreadyExists) {
			t.Errorf("Expected ErrAlreadyExists, got %v", err)
		}
	})

	t.Run("Update", func(t *testing.T) {
		restaurant.Name = "Renamed"

		if err := restRepo.Update(ctx, &restaurant); err != nil {
			t.Fatalf("Failed to update restaurant: %v", err)
		}

		fetched, err := restRepo.GetByID(ctx, restaurant.ID)
		if err != nil {
			t.Fatalf("Failed to get restaurant: %v", err)
		}

		if fetched.Name != "Renamed" {
			t.Errorf("Expected name Renamed, got %s", fetched.Name)
		}
	})
}

func TestMenuRepository(t *testing.T) {
	db := openTestDB(t)

	userRepo := NewUserRepository(db)
	restRepo := NewRestaurantRepository(db)
	menuRepo := NewMenuRepository(db)

	ctx := context.Background()
	restaurant := createTestRestaurant(t, userRepo, restRepo)

	category := models.MenuCategory{
		ID:           uuid.New().String(),
		RestaurantID: restaurant.ID,
		Name:         "Starters",
		Position:     1,
	}

	t.Run("CreateCategory", func(t *testing.T) {
		if err := menuRepo.CreateCategory(ctx, &category); err != nil {
			t.Fatalf("Failed to create category: %v", err)
		}
	})

	item := models.MenuItem{
		ID:         uuid.New().String(),
		CategoryID: category.ID,
		Name:       "Bruschetta",
		PriceCents: 650,
		Allergens:  []string{"gluten"},
	}

	t.Run("CreateItem", func(t *testing.T) {
		if err := menuRepo.CreateItem(ctx, &item); err != nil {
			t.Fatalf("Failed to create item: %v", err)
		}
	})

	t.Run("GetItemRoundTripsAllergens", func(t *testing.T) {
		fetched, err := menuRepo.GetItem(ctx, item.ID)
		if err != nil {
			t.Fatalf("Failed to get item: %v", err)
		}

		if len(fetched.Allergens) != 1 || fetched.Allergens[0] != "gluten" {
			t.Errorf("Expected allergens [gluten], got %v", fetched.Allergens)
		}
	})

	t.Run("ListCategories", func(t *testing.T) {
		categories, err := menuRepo.ListCategories(ctx, restaurant.ID)
		if err != nil {
			t.Fatalf("Failed to list categories: %v", err)
		}

		if len(categories) != 1 {
			t.Errorf("Expected 1 category, got %d", len(categories))
		}
	})

	t.Run("DeleteCategoryCascades", func(t *testing.T) {
		if err := menuRepo.DeleteCategory(ctx, category.ID); err != nil {
			t.Fatalf("Failed to delete category: %v", err)
		}

		if _, err := menuRepo.GetItem(ctx, item.ID); !errors.Is(err, models.ErrNotFound) {
			t.Errorf("Expected item to be deleted with its category, got %v", err)
		}
	})
}
