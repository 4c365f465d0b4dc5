package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/menuqr/menuqr/models"
	"github.com/menuqr/menuqr/web/auth"
)

func restaurantResponse(r models.Restaurant) models.RestaurantResponse {
	return models.RestaurantResponse{
		ID:        r.ID,
		Name:      r.Name,
		Subdomain: r.Subdomain,
		Template:  r.Template,
		Published: r.Published,
		CreatedAt: r.CreatedAt,
	}
}

// CreateRestaurant handles POST /api/restaurants
func (h *RestaurantHandlers) CreateRestaurant(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.GetUserID(r.Context())
	if err != nil || userID == "" {
		renderError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req models.CreateRestaurantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		renderError(w, http.StatusUnprocessableEntity, "invalid payload")
		return
	}

	if err := h.Deps.Validate.Struct(&req); err != nil {
		renderError(w, http.StatusBadRequest, "invalid restaurant payload")
		return
	}

	if req.Template == "" {
		req.Template = "classic"
	}

	restaurant := models.Restaurant{
		ID:        uuid.New().String(),
		OwnerID:   userID,
		Name:      req.Name,
		Subdomain: req.Subdomain,
		Template:  req.Template,
	}

	if err := h.Deps.RestaurantRepo.Create(r.Context(), &restaurant); err != nil {
		if errors.Is(err, models.ErrAlreadyExists) {
			renderError(w, http.StatusConflict, "subdomain already taken")
			return
		}

		h.Deps.Logger.Printf("Failed to create restaurant: %v", err)
		renderError(w, http.StatusServiceUnavailable, "failed to create restaurant")

		return
	}

	renderJSON(w, http.StatusCreated, restaurantResponse(restaurant))
}

// ListRestaurants handles GET /api/restaurants
func (h *RestaurantHandlers) ListRestaurants(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.GetUserID(r.Context())
	if err != nil || userID == "" {
		renderError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	restaurants, err := h.Deps.RestaurantRepo.ListByOwner(r.Context(), userID)
	if err != nil {
		renderError(w, http.StatusServiceUnavailable, "failed to list restaurants")
		return
	}

	out := make([]models.RestaurantResponse, 0, len(restaurants))
	for _, restaurant := range restaurants {
		out = append(out, restaurantResponse(restaurant))
	}

	renderJSON(w, http.StatusOK, out)
}

// GetRestaurant handles GET /api/restaurants/{id}
func (h *RestaurantHandlers) GetRestaurant(w http.ResponseWriter, r *http.Request) {
	restaurant, ok := requireOwner(w, r, h.Deps)
	if !ok {
		return
	}

	renderJSON(w, http.StatusOK, restaurantResponse(restaurant))
}

// UpdateRestaurant handles PUT /api/restaurants/{id}
func (h *RestaurantHandlers) UpdateRestaurant(w http.ResponseWriter, r *http.Request) {
	restaurant, ok := requireOwner(w, r, h.Deps)
	if !ok {
		return
	}

	var req models.CreateRestaurantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		renderError(w, http.StatusUnprocessableEntity, "invalid payload")
		return
	}

	if err := h.Deps.Validate.Struct(&req); err != nil {
		renderError(w, http.StatusBadRequest, "invalid restaurant payload")
		return
	}

	restaurant.Name = req.Name
	restaurant.Subdomain = req.Subdomain

	if req.Template != "" {
		restaurant.Template = req.Template
	}

	if err := h.Deps.RestaurantRepo.Update(r.Context(), &restaurant); err != nil {
		if errors.Is(err, models.ErrAlreadyExists) {
			renderError(w, http.StatusConflict, "subdomain already taken")
			return
		}

		h.Deps.Logger.Printf("Failed to update restaurant %s: %v", restaurant.ID, err)
		renderError(w, http.StatusServiceUnavailable, "failed to update restaurant")

		return
	}

	renderJSON(w, http.StatusOK, restaurantResponse(restaurant))
}

// DeleteRestaurant handles DELETE /api/restaurants/{id}
func (h *RestaurantHandlers) DeleteRestaurant(w http.ResponseWriter, r *http.Request) {
	restaurant, ok := requireOwner(w, r, h.Deps)
	if !ok {
		return
	}

	if err := h.Deps.RestaurantRepo.Delete(r.Context(), restaurant.ID); err != nil {
		renderError(w, http.StatusServiceUnavailable, "failed to delete restaurant")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// kept for request parsing in this layer
type publishRequest struct {
	Published bool `json:"published"`
}

// SetPublished handles PUT /api/restaurants/{id}/publish
func (h *RestaurantHandlers) SetPublished(w http.ResponseWriter, r *http.Request) {
	restaurant, ok := requireOwner(w, r, h.Deps)
	if !ok {
		return
	}

	var req publishRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		renderError(w, http.StatusUnprocessableEntity, "invalid payload")
		return
	}

	if err := h.Deps.RestaurantRepo.SetPublished(r.Context(), restaurant.ID, req.Published); err != nil {
		renderError(w, http.StatusServiceUnavailable, "failed to update publish state")
		return
	}

	restaurant.Published = req.Published
	renderJSON(w, http.StatusOK, restaurantResponse(restaurant))
}
