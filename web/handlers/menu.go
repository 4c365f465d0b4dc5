package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/menuqr/menuqr/models"
	"github.com/menuqr/menuqr/web/auth"
)

type categoryResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Position int    `json:"position"`
}

type itemResponse struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	PriceCents  int      `json:"price_cents"`
	Allergens   []string `json:"allergens"`
	Position    int      `json:"position"`
}

type publicMenuResponse struct {
	Restaurant models.RestaurantResponse `json:"restaurant"`
	Categories []publicCategory          `json:"categories"`
}

type publicCategory struct {
	Name  string         `json:"name"`
	Items []itemResponse `json:"items"`
}

func toItemResponse(it models.MenuItem) itemResponse {
	allergens := it.Allergens
	if allergens == nil {
		allergens = []string{}
	}

	return itemResponse{
		ID:          it.ID,
		Name:        it.Name,
		Description: it.Description,
		PriceCents:  it.PriceCents,
		Allergens:   allergens,
		Position:    it.Position,
	}
}

// CreateCategory handles POST /api/restaurants/{id}/categories
func (h *RestaurantHandlers) CreateCategory(w http.ResponseWriter, r *http.Request) {
	restaurant, ok := requireOwner(w, r, h.Deps)
	if !ok {
		return
	}

	var req models.MenuCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		renderError(w, http.StatusUnprocessableEntity, "invalid payload")
		return
	}

	if err := h.Deps.Validate.Struct(&req); err != nil {
		renderError(w, http.StatusBadRequest, "invalid category payload")
		return
	}

	category := models.MenuCategory{
		ID:           uuid.New().String(),
		RestaurantID: restaurant.ID,
		Name:         req.Name,
		Position:     req.Position,
	}

	if err := h.Deps.MenuRepo.CreateCategory(r.Context(), &category); err != nil {
		renderError(w, http.StatusServiceUnavailable, "failed to create category")
		return
	}

	renderJSON(w, http.StatusCreated, categoryResponse{ID: category.ID, Name: category.Name, Position: category.Position})
}

// ListCategories handles GET /api/restaurants/{id}/categories
func (h *RestaurantHandlers) ListCategories(w http.ResponseWriter, r *http.Request) {
	restaurant, ok := requireOwner(w, r, h.Deps)
	if !ok {
		return
	}

	categories, err := h.Deps.MenuRepo.ListCategories(r.Context(), restaurant.ID)
	if err != nil {
		renderError(w, http.StatusServiceUnavailable, "failed to list categories")
		return
	}

	out := make([]categoryResponse, 0, len(categories))
	for _, c := range categories {
		out = append(out, categoryResponse{ID: c.ID, Name: c.Name, Position: c.Position})
	}

	renderJSON(w, http.StatusOK, out)
}

// requireCategoryOwner resolves a category and checks ownership through its restaurant.
func requireCategoryOwner(w http.ResponseWriter, r *http.Request, deps Dependencies, categoryID string) (models.MenuCategory, bool) {
	userID, err := auth.GetUserID(r.Context())
	if err != nil || userID == "" {
		renderError(w, http.StatusUnauthorized, "User not authenticated")
		return models.MenuCategory{}, false
	}

	category, err := deps.MenuRepo.GetCategory(r.Context(), categoryID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			renderError(w, http.StatusNotFound, "category not found")
			return models.MenuCategory{}, false
		}

		renderError(w, http.StatusServiceUnavailable, "failed to load category")

		return models.MenuCategory{}, false
	}

	restaurant, err := deps.RestaurantRepo.GetByID(r.Context(), category.RestaurantID)
	if err != nil {
		renderError(w, http.StatusServiceUnavailable, "failed to load restaurant")
		return models.MenuCategory{}, false
	}

	if restaurant.OwnerID != userID {
		user, err := deps.UserRepo.GetByID(r.Context(), userID)
		if err != nil || !user.IsAdmin {
			renderError(w, http.StatusForbidden, "not the restaurant owner")
			return models.MenuCategory{}, false
		}
	}

	return category, true
}

// UpdateCategory handles PUT /api/categories/{id}
func (h *RestaurantHandlers) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	category, ok := requireCategoryOwner(w, r, h.Deps, mux.Vars(r)["id"])
	if !ok {
		return
	}

	var req models.MenuCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		renderError(w, http.StatusUnprocessableEntity, "invalid payload")
		return
	}

	if err := h.Deps.Validate.Struct(&req); err != nil {
		renderError(w, http.StatusBadRequest, "invalid category payload")
		return
	}

	category.Name = req.Name
	category.Position = req.Position

	if err := h.Deps.MenuRepo.UpdateCategory(r.Context(), &category); err != nil {
		renderError(w, http.StatusServiceUnavailable, "failed to update category")
		return
	}

	renderJSON(w, http.StatusOK, categoryResponse{ID: category.ID, Name: category.Name, Position: category.Position})
}

// DeleteCategory handles DELETE /api/categories/{id}
func (h *RestaurantHandlers) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	category, ok := requireCategoryOwner(w, r, h.Deps, mux.Vars(r)["id"])
	if !ok {
		return
	}

	if err := h.Deps.MenuRepo.DeleteCategory(r.Context(), category.ID); err != nil {
		renderError(w, http.StatusServiceUnavailable, "failed to delete category")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// CreateItem handles POST /api/categories/{id}/items
func (h *RestaurantHandlers) CreateItem(w http.ResponseWriter, r *http.Request) {
	category, ok := requireCategoryOwner(w, r, h.Deps, mux.Vars(r)["id"])
	if !ok {
		return
	}

	var req models.MenuItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		renderError(w, http.StatusUnprocessableEntity, "invalid payload")
		return
	}

	if err := h.Deps.Validate.Struct(&req); err != nil {
		renderError(w, http.StatusBadRequest, "invalid item payload")
		return
	}

	item := models.MenuItem{
		ID:          uuid.New().String(),
		CategoryID:  category.ID,
		Name:        req.Name,
		Description: req.Description,
		PriceCents:  req.PriceCents,
		Allergens:   req.Allergens,
		Position:    req.Position,
	}

	if err := h.Deps.MenuRepo.CreateItem(r.Context(), &item); err != nil {
		renderError(w, http.StatusServiceUnavailable, "failed to create item")
		return
	}

	renderJSON(w, http.StatusCreated, toItemResponse(item))
}

// ListItems handles GET /api/categories/{id}/items
func (h *RestaurantHandlers) ListItems(w http.ResponseWriter, r *http.Request) {
	category, ok := requireCategoryOwner(w, r, h.Deps, mux.Vars(r)["id"])
	if !ok {
		return
	}

	items, err := h.Deps.MenuRepo.ListItems(r.Context(), category.ID)
	if err != nil {
		renderError(w, http.StatusServiceUnavailable, "failed to list items")
		return
	}

	out := make([]itemResponse, 0, len(items))
	for _, it := range items {
		out = append(out, toItemResponse(it))
	}

	renderJSON(w, http.StatusOK, out)
}

// UpdateItem handles PUT /api/items/{id}
func (h *RestaurantHandlers) UpdateItem(w http.ResponseWriter, r *http.Request) {
	item, err := h.Deps.MenuRepo.GetItem(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			renderError(w, http.StatusNotFound, "item not found")
			return
		}

		renderError(w, http.StatusServiceUnavailable, "failed to load item")

		return
	}

	if _, ok := requireCategoryOwner(w, r, h.Deps, item.CategoryID); !ok {
		return
	}

	var req models.MenuItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		renderError(w, http.StatusUnprocessableEntity, "invalid payload")
		return
	}

	if err := h.Deps.Validate.Struct(&req); err != nil {
		renderError(w, http.StatusBadRequest, "invalid item payload")
		return
	}

	item.Name = req.Name
	item.Description = req.Description
	item.PriceCents = req.PriceCents
	item.Allergens = req.Allergens
	item.Position = req.Position

	if err := h.Deps.MenuRepo.UpdateItem(r.Context(), &item); err != nil {
		renderError(w, http.StatusServiceUnavailable, "failed to update item")
		return
	}

	renderJSON(w, http.StatusOK, toItemResponse(item))
}

// DeleteItem handles DELETE /api/items/{id}
func (h *RestaurantHandlers) DeleteItem(w http.ResponseWriter, r *http.Request) {
	item, err := h.Deps.MenuRepo.GetItem(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			renderError(w, http.StatusNotFound, "item not found")
			return
		}

		renderError(w, http.StatusServiceUnavailable, "failed to load item")

		return
	}

	if _, ok := requireCategoryOwner(w, r, h.Deps, item.CategoryID); !ok {
		return
	}

	if err := h.Deps.MenuRepo.DeleteItem(r.Context(), item.ID); err != nil {
		renderError(w, http.StatusServiceUnavailable, "failed to delete item")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetPublicMenu handles GET /api/menus/{subdomain}. It serves the published
// menu for the public site; unpublished restaurants read as not found.
func (h *RestaurantHandlers) GetPublicMenu(w http.ResponseWriter, r *http.Request) {
	restaurant, err := h.Deps.RestaurantRepo.GetBySubdomain(r.Context(), mux.Vars(r)["subdomain"])
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			renderError(w, http.StatusNotFound, "menu not found")
			return
		}

		h.Deps.Logger.Printf("Failed to load restaurant by subdomain: %v", err)
		renderError(w, http.StatusServiceUnavailable, "failed to load menu")

		return
	}

	if !restaurant.Published {
		renderError(w, http.StatusNotFound, "menu not found")
		return
	}

	categories, err := h.Deps.MenuRepo.ListCategories(r.Context(), restaurant.ID)
	if err != nil {
		renderError(w, http.StatusServiceUnavailable, "failed to load menu")
		return
	}

	resp := publicMenuResponse{
		Restaurant: restaurantResponse(restaurant),
		Categories: make([]publicCategory, 0, len(categories)),
	}

	for _, c := range categories {
		items, err := h.Deps.MenuRepo.ListItems(r.Context(), c.ID)
		if err != nil {
			renderError(w, http.StatusServiceUnavailable, "failed to load menu")
			return
		}

		pc := publicCategory{Name: c.Name, Items: make([]itemResponse, 0, len(items))}
		for _, it := range items {
			pc.Items = append(pc.Items, toItemResponse(it))
		}

		resp.Categories = append(resp.Categories, pc)
	}

	renderJSON(w, http.StatusOK, resp)
}
