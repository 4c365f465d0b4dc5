package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"

	"github.com/menuqr/menuqr/access"
	"github.com/menuqr/menuqr/invite"
	"github.com/menuqr/menuqr/memory"
	"github.com/menuqr/menuqr/models"
	"github.com/menuqr/menuqr/web/auth"
	"github.com/menuqr/menuqr/web/handlers"
)

type fakeProvider struct {
	verifyErr error
}

func (f *fakeProvider) CreatePaymentIntent(_ context.Context, _ string, _ int64, _ string) (string, error) {
	return "pi_secret_123", nil
}

func (f *fakeProvider) VerifyPaymentIntent(_ context.Context, _, _ string) error {
	return f.verifyErr
}

type staticConfig struct{}

func (staticConfig) GetInt(_ context.Context, _ string, def int) (int, error) { return def, nil }

func (staticConfig) GetString(_ context.Context, _ string, def string) (string, error) {
	return def, nil
}

type testEnv struct {
	group    *handlers.HandlerGroup
	users    models.UserRepository
	rests    models.RestaurantRepository
	menus    models.MenuRepository
	invites  models.InvitationRepository
	provider *fakeProvider
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := log.New(io.Discard, "", 0)

	users := memory.NewUserRepository()
	rests := memory.NewRestaurantRepository()
	menus := memory.NewMenuRepository()
	invites := memory.NewInvitationRepository()
	provider := &fakeProvider{}

	deps := handlers.Dependencies{
		Logger:         logger,
		AccessSvc:      access.NewService(users, provider, staticConfig{}, logger),
		InviteSvc:      invite.NewService(invites, logger),
		UserRepo:       users,
		RestaurantRepo: rests,
		MenuRepo:       menus,
	}

	return &testEnv{
		group:    handlers.NewHandlerGroup(deps),
		users:    users,
		rests:    rests,
		menus:    menus,
		invites:  invites,
		provider: provider,
	}
}

// router mirrors the production route shapes without the token middleware.
// asUser injects the authenticated principal the way the auth layer would.
func (e *testEnv) router(asUser string) *mux.Router {
	r := mux.NewRouter()

	if asUser != "" {
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				next.ServeHTTP(w, req.WithContext(auth.WithUserID(req.Context(), asUser)))
			})
		})
	}

	r.HandleFunc("/api/invitations/{code}", e.group.Invitation.LookupInvitation).Methods(http.MethodGet)
	r.HandleFunc("/api/invitations/{code}/redeem", e.group.Invitation.RedeemInvitation).Methods(http.MethodPost)
	r.HandleFunc("/api/menus/{subdomain}", e.group.Restaurant.GetPublicMenu).Methods(http.MethodGet)

	r.HandleFunc("/api/payment/status", e.group.Payment.GetPaymentStatus).Methods(http.MethodGet)
	r.HandleFunc("/api/payment/intent", e.group.Payment.StartPayment).Methods(http.MethodPost)
	r.HandleFunc("/api/payment/confirm", e.group.Payment.ConfirmPayment).Methods(http.MethodPost)

	r.HandleFunc("/api/restaurants", e.group.Restaurant.CreateRestaurant).Methods(http.MethodPost)
	r.HandleFunc("/api/restaurants", e.group.Restaurant.ListRestaurants).Methods(http.MethodGet)
	r.HandleFunc("/api/restaurants/{id}", e.group.Restaurant.GetRestaurant).Methods(http.MethodGet)
	r.HandleFunc("/api/restaurants/{id}", e.group.Restaurant.UpdateRestaurant).Methods(http.MethodPut)
	r.HandleFunc("/api/restaurants/{id}", e.group.Restaurant.DeleteRestaurant).Methods(http.MethodDelete)
	r.HandleFunc("/api/restaurants/{id}/publish", e.group.Restaurant.SetPublished).Methods(http.MethodPut)
	r.HandleFunc("/api/restaurants/{id}/invitations", e.group.Invitation.CreateInvitation).Methods(http.MethodPost)
	r.HandleFunc("/api/restaurants/{id}/invitations", e.group.Invitation.ListInvitations).Methods(http.MethodGet)
	r.HandleFunc("/api/restaurants/{id}/categories", e.group.Restaurant.CreateCategory).Methods(http.MethodPost)
	r.HandleFunc("/api/restaurants/{id}/categories", e.group.Restaurant.ListCategories).Methods(http.MethodGet)
	r.HandleFunc("/api/categories/{id}", e.group.Restaurant.UpdateCategory).Methods(http.MethodPut)
	r.HandleFunc("/api/categories/{id}", e.group.Restaurant.DeleteCategory).Methods(http.MethodDelete)
	r.HandleFunc("/api/categories/{id}/items", e.group.Restaurant.CreateItem).Methods(http.MethodPost)
	r.HandleFunc("/api/categories/{id}/items", e.group.Restaurant.ListItems).Methods(http.MethodGet)
	r.HandleFunc("/api/items/{id}", e.group.Restaurant.UpdateItem).Methods(http.MethodPut)
	r.HandleFunc("/api/items/{id}", e.group.Restaurant.DeleteItem).Methods(http.MethodDelete)

	return r
}

func (e *testEnv) do(t *testing.T, asUser, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader

	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()

	e.router(asUser).ServeHTTP(rec, req)

	return rec
}

func (e *testEnv) createUser(t *testing.T, user models.User) {
	t.Helper()
	require.NoError(t, e.users.Create(context.Background(), &user))
}

func (e *testEnv) createRestaurant(t *testing.T, restaurant models.Restaurant) models.Restaurant {
	t.Helper()
	require.NoError(t, e.rests.Create(context.Background(), &restaurant))

	return restaurant
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var out T

	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))

	return out
}
