package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/menuqr/menuqr/access"
	"github.com/menuqr/menuqr/models"
	"github.com/menuqr/menuqr/web/auth"
)

// GetPaymentStatus handles GET /api/payment/status
func (h *PaymentHandlers) GetPaymentStatus(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.GetUserID(r.Context())
	if err != nil || userID == "" {
		renderError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	user, err := h.Deps.AccessSvc.PaymentStatus(r.Context(), userID)
	if err != nil {
		renderError(w, http.StatusServiceUnavailable, "failed to load payment status")
		return
	}

	renderJSON(w, http.StatusOK, models.PaymentStatusResponse{
		HasPaid:     user.HasPaid,
		IsAdmin:     user.IsAdmin,
		PaymentDate: user.PaymentDate,
	})
}

// StartPayment handles POST /api/payment/intent
func (h *PaymentHandlers) StartPayment(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.GetUserID(r.Context())
	if err != nil || userID == "" {
		renderError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	resp, err := h.Deps.AccessSvc.StartPayment(r.Context(), userID)
	if err != nil {
		if errors.Is(err, access.ErrNotRequired) {
			renderError(w, http.StatusConflict, "payment not required")
			return
		}

		h.Deps.Logger.Printf("Failed to start payment for user %s: %v", userID, err)
		renderError(w, http.StatusBadGateway, "failed to start payment")

		return
	}

	renderJSON(w, http.StatusOK, resp)
}

// ConfirmPayment handles POST /api/payment/confirm. Repeated confirmations
// report their outcome in the status field instead of failing, so clients
// retrying after a timeout do not need special handling.
func (h *PaymentHandlers) ConfirmPayment(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.GetUserID(r.Context())
	if err != nil || userID == "" {
		renderError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req models.ConfirmPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		renderError(w, http.StatusUnprocessableEntity, "invalid payload")
		return
	}

	if err := h.Deps.Validate.Struct(&req); err != nil {
		renderError(w, http.StatusBadRequest, "payment_intent_id is required")
		return
	}

	err = h.Deps.AccessSvc.ConfirmPayment(r.Context(), userID, req.PaymentIntentID)

	switch {
	case err == nil:
		renderJSON(w, http.StatusOK, models.ConfirmPaymentResponse{Status: "confirmed"})
	case errors.Is(err, access.ErrAlreadyConfirmed):
		renderJSON(w, http.StatusOK, models.ConfirmPaymentResponse{Status: "already_confirmed"})
	case errors.Is(err, access.ErrNotRequired):
		renderJSON(w, http.StatusOK, models.ConfirmPaymentResponse{Status: "not_required"})
	case errors.Is(err, access.ErrProviderVerification):
		renderError(w, http.StatusPaymentRequired, "payment verification failed")
	default:
		h.Deps.Logger.Printf("Failed to confirm payment for user %s: %v", userID, err)
		renderError(w, http.StatusServiceUnavailable, "failed to confirm payment")
	}
}
