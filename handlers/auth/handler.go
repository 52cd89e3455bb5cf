package auth

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/igtharvillage/thar-api/model"
	"github.com/igtharvillage/thar-api/services"
	"github.com/igtharvillage/thar-api/services/identity"
	"github.com/igtharvillage/thar-api/utils/response"
	"github.com/igtharvillage/thar-api/utils/validation"
	"go.uber.org/zap"
)

// AccountCreator registers new identities and removes them again when
// registration cannot complete
type AccountCreator interface {
	CreateAccount(ctx context.Context, email, password string) (*model.Account, error)
	DeleteAccount(ctx context.Context, uid string) error
}

// Profiles stores the profiles of identities
type Profiles interface {
	Create(ctx context.Context, profile *model.UserProfile) error
	Get(ctx context.Context, uid string) (*model.UserProfile, error)
	SetDisplayName(ctx context.Context, uid, name string) error
}

// AuthHandler handles authentication-related requests
type AuthHandler struct {
	gate      *services.RoleGate
	accounts  AccountCreator
	profiles  Profiles
	validator *validation.Validator
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(gate *services.RoleGate, accounts AccountCreator, profiles Profiles) *AuthHandler {
	return &AuthHandler{
		gate:      gate,
		accounts:  accounts,
		profiles:  profiles,
		validator: validation.NewValidator(),
	}
}

// RegisterRequest represents a user registration request
type RegisterRequest struct {
	Email       string `json:"email" validate:"required,email,max=255"`
	Password    string `json:"password" validate:"required,min=8,max=72"`
	DisplayName string `json:"display_name" validate:"omitempty,min=2,max=255"`
}

// Register handles POST /api/v1/auth/register. New accounts always get the
// user role; admins are promoted from the admin panel.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if errs := h.validator.Check(req); errs != nil {
		return response.ValidationError(c, errs)
	}

	ctx := c.UserContext()
	account, err := h.accounts.CreateAccount(ctx, req.Email, req.Password)
	if err != nil {
		switch identity.CodeOf(err) {
		case identity.CodeEmailInUse:
			return response.Conflict(c, "An account with this email already exists")
		case identity.CodeInvalidEmail:
			return response.ValidationError(c, map[string]string{"email": "Invalid email format"})
		case identity.CodeWeakPassword:
			return response.ValidationError(c, map[string]string{"password": "password must be at least 8 characters"})
		default:
			zap.S().Errorf("[IDENTITY] registration failed: %v", err)
			return response.InternalServerError(c, "Failed to create account")
		}
	}

	profile := &model.UserProfile{
		ID:    account.UID,
		Email: account.Email,
		Role:  model.RoleUser,
	}
	if name := validation.SanitizeString(req.DisplayName); name != "" {
		profile.DisplayName = &name
	}
	if err := h.profiles.Create(ctx, profile); err != nil {
		zap.S().Errorf("[IDENTITY] failed to create profile for %s: %v", account.UID, err)
		// drop the account so the email can register again
		if delErr := h.accounts.DeleteAccount(ctx, account.UID); delErr != nil {
			zap.S().Errorf("[IDENTITY] account %s left without profile: %v", account.UID, delErr)
		}
		return response.InternalServerError(c, "Failed to create profile")
	}

	return response.Created(c, profile)
}
