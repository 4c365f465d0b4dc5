package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/clerkinc/clerk-sdk-go/clerk"

	"github.com/menuqr/menuqr/access"
	"github.com/menuqr/menuqr/models"
)

// AuthMiddleware handles Clerk authentication and adds user info to the request context
type AuthMiddleware struct {
	client   clerk.Client
	userRepo models.UserRepository
	logger   *log.Logger
}

// ContextKey is used to store user information in the request context
type ContextKey string

const (
	// UserIDKey is the context key for storing the user ID
	UserIDKey ContextKey = "user_id"
	// AuthHeaderName is the name of the authentication header
	AuthHeaderName = "Authorization"

	// PaymentRedirectPath is where denied principals are sent to start a payment.
	PaymentRedirectPath = "/billing"
)

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(clerkAPIKey string, userRepo models.UserRepository, logger *log.Logger) (*AuthMiddleware, error) {
	client, err := clerk.NewClient(clerkAPIKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create Clerk client: %w", err)
	}

	return &AuthMiddleware{
		client:   client,
		userRepo: userRepo,
		logger:   logger,
	}, nil
}

// Authenticate verifies the bearer token and puts the user id into the
// request context. The user record is created at first login.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get(AuthHeaderName)
		if authHeader == "" {
			writeError(w, http.StatusUnauthorized, "missing authorization header")
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			writeError(w, http.StatusUnauthorized, "invalid authorization format")
			return
		}

		claims, err := m.client.VerifyToken(parts[1])
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}

		userID := claims.Subject
		if userID == "" {
			writeError(w, http.StatusUnauthorized, "invalid user claims")
			return
		}

		if _, err := m.userRepo.GetByID(r.Context(), userID); err != nil {
			if !errors.Is(err, models.ErrNotFound) {
				writeError(w, http.StatusServiceUnavailable, "failed to load user record")
				return
			}

			if err := m.createFirstLoginUser(r.Context(), userID); err != nil {
				m.logger.Printf("Failed to create user %s at first login: %v", userID, err)
				writeError(w, http.StatusInternalServerError, "failed to create user record")

				return
			}
		}

		ctx := context.WithValue(r.Context(), UserIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequirePaid gates payment-protected routes. It fetches a fresh user
// snapshot on every request and evaluates the access gate on it; a denied
// principal gets 402 with the payment-initiation path, never the protected
// content.
func (m *AuthMiddleware) RequirePaid(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, err := GetUserID(r.Context())
		if err != nil {
			writeError(w, http.StatusUnauthorized, "user not authenticated")
			return
		}

		user, err := m.userRepo.GetByID(r.Context(), userID)
		if err != nil {
			writeError(w, http.StatusServiceUnavailable, "failed to load user record")
			return
		}

		if decision := access.Evaluate(user); !decision.Allowed {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusPaymentRequired)
			_ = json.NewEncoder(w).Encode(models.PaymentRequiredResponse{
				Code:       http.StatusPaymentRequired,
				Message:    string(decision.Reason),
				RedirectTo: PaymentRedirectPath,
			})

			return
		}

		next.ServeHTTP(w, r)
	})
}

// GetUserID extracts the user ID from the request context
func GetUserID(ctx context.Context) (string, error) {
	userID, ok := ctx.Value(UserIDKey).(string)
	if !ok {
		return "", errors.New("user not authenticated")
	}

	return userID, nil
}

// WithUserID returns a context carrying the user id. Used by tests and by
// the webhook path, which authenticates via signature instead of a token.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, UserIDKey, userID)
}

func (m *AuthMiddleware) createFirstLoginUser(ctx context.Context, userID string) error {
	clerkUser, err := m.client.Users().Read(userID)
	if err != nil {
		return fmt.Errorf("failed to read user from Clerk: %w", err)
	}

	var email string

	if clerkUser.PrimaryEmailAddressID != nil {
		primaryID := *clerkUser.PrimaryEmailAddressID
		for _, emailAddr := range clerkUser.EmailAddresses {
			if emailAddr.ID == primaryID {
				email = emailAddr.EmailAddress
				break
			}
		}
	} else if len(clerkUser.EmailAddresses) > 0 {
		email = clerkUser.EmailAddresses[0].EmailAddress
	}

	if email == "" {
		return errors.New("user has no email address")
	}

	user := models.User{
		ID:    userID,
		Email: email,
	}

	if err := m.userRepo.Create(ctx, &user); err != nil && !errors.Is(err, models.ErrAlreadyExists) {
		return err
	}

	return nil
}

func writeError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(models.APIError{Code: code, Message: msg})
}
