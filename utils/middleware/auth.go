package middleware

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/igtharvillage/thar-api/model"
	"github.com/igtharvillage/thar-api/services/identity"
	"github.com/igtharvillage/thar-api/utils/response"
	"go.uber.org/zap"
)

// TokenVerifier resolves a bearer token to the identity holding it
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*identity.Identity, error)
}

// RoleLookup returns the role stored on an identity's profile
type RoleLookup interface {
	RoleOf(ctx context.Context, uid string) (role string, found bool, err error)
}

// AuthMiddleware handles bearer token authentication
type AuthMiddleware struct {
	verifier TokenVerifier
	roles    RoleLookup
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(verifier TokenVerifier, roles RoleLookup) *AuthMiddleware {
	return &AuthMiddleware{
		verifier: verifier,
		roles:    roles,
	}
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" header
func BearerToken(c *fiber.Ctx) (string, bool) {
	parts := strings.SplitN(c.Get(fiber.HeaderAuthorization), " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// Required is middleware that requires a valid token
func (m *AuthMiddleware) Required() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := m.authenticate(c)
		if id == nil {
			return err
		}
		return c.Next()
	}
}

// RequireAdmin is middleware that requires a valid token whose holder has
// the admin role
func (m *AuthMiddleware) RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := m.authenticate(c)
		if id == nil {
			return err
		}

		role, found, err := m.roles.RoleOf(c.UserContext(), id.UID)
		if err != nil {
			zap.S().Errorf("[GATE] role lookup for %s failed: %v", id.UID, err)
			return response.InternalServerError(c, "Failed to load profile")
		}
		if !found || role != model.RoleAdmin {
			return response.Forbidden(c, "Admin privileges required")
		}

		c.Locals("user_role", role)
		return c.Next()
	}
}

// authenticate verifies the bearer token and stores the identity in the
// context. A nil identity means the error response has already been written.
func (m *AuthMiddleware) authenticate(c *fiber.Ctx) (*identity.Identity, error) {
	token, ok := BearerToken(c)
	if !ok {
		if c.Get(fiber.HeaderAuthorization) == "" {
			return nil, response.Unauthorized(c, "Missing authorization token")
		}
		return nil, response.Unauthorized(c, "Invalid authorization format")
	}

	id, err := m.verifier.Verify(c.UserContext(), token)
	if err != nil {
		switch identity.CodeOf(err) {
		case identity.CodeInvalidToken:
			return nil, response.Unauthorized(c, "Invalid or expired token")
		case identity.CodeUserDisabled:
			return nil, response.Unauthorized(c, "This account has been disabled")
		default:
			zap.S().Errorf("[GATE] token verification failed: %v", err)
			return nil, response.InternalServerError(c, "Failed to check token status")
		}
	}

	c.Locals("user_id", id.UID)
	c.Locals("user_email", id.Email)
	c.Locals("token", token)
	return id, nil
}

// GetUserID extracts the identity uid from context
func GetUserID(c *fiber.Ctx) (string, bool) {
	uid, ok := c.Locals("user_id").(string)
	return uid, ok && uid != ""
}

// GetUserEmail extracts user email from context
func GetUserEmail(c *fiber.Ctx) (string, bool) {
	email, ok := c.Locals("user_email").(string)
	return email, ok
}

// GetToken extracts the verified bearer token from context
func GetToken(c *fiber.Ctx) (string, bool) {
	token, ok := c.Locals("token").(string)
	return token, ok
}
