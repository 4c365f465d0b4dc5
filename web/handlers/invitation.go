package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/menuqr/menuqr/invite"
	"github.com/menuqr/menuqr/models"
	"github.com/menuqr/menuqr/web/auth"
)

// LookupInvitation handles GET /api/invitations/{code}. It is public: the
// recipient does not have an account yet.
func (h *InvitationHandlers) LookupInvitation(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]

	view, err := h.Deps.InviteSvc.Lookup(r.Context(), code)
	if err != nil {
		if errors.Is(err, invite.ErrNotFound) {
			renderError(w, http.StatusNotFound, "invitation not found")
			return
		}

		h.Deps.Logger.Printf("Failed to look up invitation: %v", err)
		renderError(w, http.StatusServiceUnavailable, "failed to look up invitation")

		return
	}

	renderJSON(w, http.StatusOK, models.InvitationViewResponse{
		RestaurantID: view.RestaurantID,
		Status:       string(view.Status),
		ExpiresAt:    view.ExpiresAt,
	})
}

// RedeemInvitation handles POST /api/invitations/{code}/redeem. Each
// failure names its cause: an expired code needs a new invite, a used one
// means someone got there first.
func (h *InvitationHandlers) RedeemInvitation(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]

	restaurantID, err := h.Deps.InviteSvc.Redeem(r.Context(), code)

	switch {
	case err == nil:
		renderJSON(w, http.StatusOK, models.RedeemInvitationResponse{RestaurantID: restaurantID})
	case errors.Is(err, invite.ErrNotFound):
		renderError(w, http.StatusNotFound, "invitation not found")
	case errors.Is(err, invite.ErrExpired):
		renderError(w, http.StatusGone, "invitation expired")
	case errors.Is(err, invite.ErrAlreadyUsed):
		renderError(w, http.StatusConflict, "invitation already used")
	default:
		h.Deps.Logger.Printf("Failed to redeem invitation: %v", err)
		renderError(w, http.StatusServiceUnavailable, "failed to redeem invitation")
	}
}

// CreateInvitation handles POST /api/restaurants/{id}/invitations.
// Only the restaurant owner or an admin may issue invitations.
func (h *InvitationHandlers) CreateInvitation(w http.ResponseWriter, r *http.Request) {
	restaurant, ok := requireOwner(w, r, h.Deps)
	if !ok {
		return
	}

	var req models.CreateInvitationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		renderError(w, http.StatusUnprocessableEntity, "invalid payload")
		return
	}

	if err := h.Deps.Validate.Struct(&req); err != nil {
		renderError(w, http.StatusBadRequest, "ttl_hours must be between 1 and 720")
		return
	}

	ttlHours := req.TTLHours
	if ttlHours == 0 && h.Deps.Cfg != nil {
		configured, err := h.Deps.Cfg.GetInt(r.Context(), "invitation.ttl_hours", 0)
		if err != nil {
			h.Deps.Logger.Printf("Failed to read invitation TTL config, using default: %v", err)
		} else {
			ttlHours = configured
		}
	}

	inv, err := h.Deps.InviteSvc.Create(r.Context(), restaurant.ID, time.Duration(ttlHours)*time.Hour)
	if err != nil {
		h.Deps.Logger.Printf("Failed to create invitation: %v", err)
		renderError(w, http.StatusServiceUnavailable, "failed to create invitation")

		return
	}

	renderJSON(w, http.StatusCreated, models.CreateInvitationResponse{
		Code:      inv.Code,
		ExpiresAt: inv.ExpiresAt,
	})
}

// ListInvitations handles GET /api/restaurants/{id}/invitations
func (h *InvitationHandlers) ListInvitations(w http.ResponseWriter, r *http.Request) {
	restaurant, ok := requireOwner(w, r, h.Deps)
	if !ok {
		return
	}

	invs, err := h.Deps.InviteSvc.ListByRestaurant(r.Context(), restaurant.ID)
	if err != nil {
		h.Deps.Logger.Printf("Failed to list invitations: %v", err)
		renderError(w, http.StatusServiceUnavailable, "failed to list invitations")

		return
	}

	now := time.Now()
	out := make([]models.InvitationViewResponse, 0, len(invs))

	for _, inv := range invs {
		out = append(out, models.InvitationViewResponse{
			RestaurantID: inv.RestaurantID,
			Status:       string(inv.StatusAt(now)),
			ExpiresAt:    inv.ExpiresAt,
		})
	}

	renderJSON(w, http.StatusOK, out)
}

// requireOwner loads the restaurant from the route and checks the caller
// owns it (admins pass). Writes the error response itself.
func requireOwner(w http.ResponseWriter, r *http.Request, deps Dependencies) (models.Restaurant, bool) {
	userID, err := auth.GetUserID(r.Context())
	if err != nil || userID == "" {
		renderError(w, http.StatusUnauthorized, "User not authenticated")
		return models.Restaurant{}, false
	}

	restaurant, err := deps.RestaurantRepo.GetByID(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			renderError(w, http.StatusNotFound, "restaurant not found")
			return models.Restaurant{}, false
		}

		renderError(w, http.StatusServiceUnavailable, "failed to load restaurant")

		return models.Restaurant{}, false
	}

	if restaurant.OwnerID != userID {
		user, err := deps.UserRepo.GetByID(r.Context(), userID)
		if err != nil || !user.IsAdmin {
			renderError(w, http.StatusForbidden, "not the restaurant owner")
			return models.Restaurant{}, false
		}
	}

	return restaurant, true
}
