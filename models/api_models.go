package models

import "time"

type APIError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// response for payment status check
type PaymentStatusResponse struct {
	HasPaid     bool       `json:"has_paid"`
	IsAdmin     bool       `json:"is_admin"`
	PaymentDate *time.Time `json:"payment_date,omitempty"`
}

// returned with 402 so clients know where to send the user
type PaymentRequiredResponse struct {
	Code       int    `json:"code"`
	Message    string `json:"message"`
	RedirectTo string `json:"redirect_to"`
}

type ConfirmPaymentRequest struct {
	PaymentIntentID string `json:"payment_intent_id" validate:"required"`
}

type ConfirmPaymentResponse struct {
	Status string `json:"status"`
}

// response for starting a payment
type PaymentIntentResponse struct {
	ClientSecret string `json:"client_secret"`
	AmountCents  int64  `json:"amount_cents"`
	Currency     string `json:"currency"`
}

// invitation lookup never echoes the code back
type InvitationViewResponse struct {
	RestaurantID string    `json:"restaurant_id"`
	Status       string    `json:"status"`
	ExpiresAt    time.Time `json:"expires_at"`
}

type RedeemInvitationResponse struct {
	RestaurantID string `json:"restaurant_id"`
}

type CreateInvitationRequest struct {
	TTLHours int `json:"ttl_hours" validate:"omitempty,min=1,max=720"`
}

type CreateInvitationResponse struct {
	Code      string    `json:"code"`
	ExpiresAt time.Time `json:"expires_at"`
}

type CreateRestaurantRequest struct {
	Name      string `json:"name" validate:"required,max=120"`
	Subdomain string `json:"subdomain" validate:"required,hostname_rfc1123,max=63"`
	Template  string `json:"template" validate:"omitempty,max=40"`
}

type RestaurantResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Subdomain string    `json:"subdomain"`
	Template  string    `json:"template"`
	Published bool      `json:"published"`
	CreatedAt time.Time `json:"created_at"`
}

type MenuCategoryRequest struct {
	Name     string `json:"name" validate:"required,max=120"`
	Position int    `json:"position" validate:"omitempty,min=0"`
}

type MenuItemRequest struct {
	Name        string   `json:"name" validate:"required,max=120"`
	Description string   `json:"description" validate:"omitempty,max=500"`
	PriceCents  int      `json:"price_cents" validate:"omitempty,min=0"`
	Allergens   []string `json:"allergens" validate:"omitempty,dive,max=40"`
	Position    int      `json:"position" validate:"omitempty,min=0"`
}
