package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
)

// Register wires all routes onto the router. Invitation lookup/redemption
// and the public menu are unauthenticated: the invitation recipient has no
// account yet, and the menu is the public product. Payment endpoints need
// a principal but not a paid one; everything under restaurant management
// sits behind the payment gate.
func (g *HandlerGroup) Register(r *mux.Router, deps Dependencies) {
	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	}).Methods(http.MethodGet)

	r.HandleFunc("/webhooks/stripe", g.Webhook.HandleStripeWebhook).Methods(http.MethodPost)

	// Public surfaces. Registered before the authenticated /api subrouter
	// so they match first.
	r.HandleFunc("/api/invitations/{code}", g.Invitation.LookupInvitation).Methods(http.MethodGet)
	r.HandleFunc("/api/invitations/{code}/redeem", g.Invitation.RedeemInvitation).Methods(http.MethodPost)
	r.HandleFunc("/api/menus/{subdomain}", g.Restaurant.GetPublicMenu).Methods(http.MethodGet)

	authed := r.PathPrefix("/api").Subrouter()
	authed.Use(deps.Auth.Authenticate)

	authed.HandleFunc("/payment/status", g.Payment.GetPaymentStatus).Methods(http.MethodGet)
	authed.HandleFunc("/payment/intent", g.Payment.StartPayment).Methods(http.MethodPost)
	authed.HandleFunc("/payment/confirm", g.Payment.ConfirmPayment).Methods(http.MethodPost)

	gated := authed.NewRoute().Subrouter()
	gated.Use(deps.Auth.RequirePaid)

	gated.HandleFunc("/restaurants", g.Restaurant.CreateRestaurant).Methods(http.MethodPost)
	gated.HandleFunc("/restaurants", g.Restaurant.ListRestaurants).Methods(http.MethodGet)
	gated.HandleFunc("/restaurants/{id}", g.Restaurant.GetRestaurant).Methods(http.MethodGet)
	gated.HandleFunc("/restaurants/{id}", g.Restaurant.UpdateRestaurant).Methods(http.MethodPut)
	gated.HandleFunc("/restaurants/{id}", g.Restaurant.DeleteRestaurant).Methods(http.MethodDelete)
	gated.HandleFunc("/restaurants/{id}/publish", g.Restaurant.SetPublished).Methods(http.MethodPut)

	gated.HandleFunc("/restaurants/{id}/invitations", g.Invitation.CreateInvitation).Methods(http.MethodPost)
	gated.HandleFunc("/restaurants/{id}/invitations", g.Invitation.ListInvitations).Methods(http.MethodGet)

	gated.HandleFunc("/restaurants/{id}/categories", g.Restaurant.CreateCategory).Methods(http.MethodPost)
	gated.HandleFunc("/restaurants/{id}/categories", g.Restaurant.ListCategories).Methods(http.MethodGet)
	gated.HandleFunc("/categories/{id}", g.Restaurant.UpdateCategory).Methods(http.MethodPut)
	gated.HandleFunc("/categories/{id}", g.Restaurant.DeleteCategory).Methods(http.MethodDelete)
	gated.HandleFunc("/categories/{id}/items", g.Restaurant.CreateItem).Methods(http.MethodPost)
	gated.HandleFunc("/categories/{id}/items", g.Restaurant.ListItems).Methods(http.MethodGet)
	gated.HandleFunc("/items/{id}", g.Restaurant.UpdateItem).Methods(http.MethodPut)
	gated.HandleFunc("/items/{id}", g.Restaurant.DeleteItem).Methods(http.MethodDelete)
}
