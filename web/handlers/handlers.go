package handlers

import (
	"context"
	"database/sql"
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/menuqr/menuqr/access"
	"github.com/menuqr/menuqr/invite"
	"github.com/menuqr/menuqr/models"
	stripeclient "github.com/menuqr/menuqr/stripe"
	"github.com/menuqr/menuqr/web/auth"
)

// ConfigStore reads dynamic settings. Backed by the config service.
type ConfigStore interface {
	GetInt(ctx context.Context, key string, defaultValue int) (int, error)
}

// Dependencies aggregates shared services used by handlers.
type Dependencies struct {
	Logger         *log.Logger
	DB             *sql.DB
	Cfg            ConfigStore
	AccessSvc      *access.Service
	InviteSvc      *invite.Service
	UserRepo       models.UserRepository
	RestaurantRepo models.RestaurantRepository
	MenuRepo       models.MenuRepository
	StripeClient   stripeclient.Client
	WebhookSecret  string
	Auth           *auth.AuthMiddleware
	Validate       *validator.Validate
}

// HandlerGroup groups all handler categories for routing setup.
type HandlerGroup struct {
	Payment    *PaymentHandlers
	Invitation *InvitationHandlers
	Restaurant *RestaurantHandlers
	Webhook    *WebhookHandlers
}

// NewHandlerGroup constructs a HandlerGroup with initialized handlers.
func NewHandlerGroup(deps Dependencies) *HandlerGroup {
	if deps.Validate == nil {
		deps.Validate = validator.New()
	}

	return &HandlerGroup{
		Payment:    &PaymentHandlers{Deps: deps},
		Invitation: &InvitationHandlers{Deps: deps},
		Restaurant: &RestaurantHandlers{Deps: deps},
		Webhook:    &WebhookHandlers{Deps: deps},
	}
}

// PaymentHandlers contains routes for payment status and confirmation.
type PaymentHandlers struct{ Deps Dependencies }

// InvitationHandlers contains routes for invitation lookup, redemption, and issuance.
type InvitationHandlers struct{ Deps Dependencies }

// RestaurantHandlers contains routes for restaurant and menu management.
type RestaurantHandlers struct{ Deps Dependencies }

// WebhookHandlers contains routes for payment provider webhooks.
type WebhookHandlers struct{ Deps Dependencies }

func renderJSON(w http.ResponseWriter, code int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(data)
}

func renderError(w http.ResponseWriter, code int, msg string) {
	renderJSON(w, code, models.APIError{Code: code, Message: msg})
}
