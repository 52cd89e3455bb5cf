package auth

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/igtharvillage/thar-api/model"
	"github.com/igtharvillage/thar-api/services"
	"github.com/igtharvillage/thar-api/services/identity"
	"github.com/igtharvillage/thar-api/utils/middleware"
	"github.com/igtharvillage/thar-api/utils/response"
	"go.uber.org/zap"
)

// LoginRequest represents an admin login request
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse represents a successful admin login
type LoginResponse struct {
	AccessToken string             `json:"access_token"`
	ExpiresAt   time.Time          `json:"expires_at"`
	ExpiresIn   int                `json:"expires_in"` // in seconds
	Profile     *model.UserProfile `json:"profile"`
}

// SessionResponse reports who holds the presented token
type SessionResponse struct {
	Authenticated bool               `json:"authenticated"`
	IsAdmin       bool               `json:"is_admin"`
	Profile       *model.UserProfile `json:"profile,omitempty"`
}

func loginStatus(code string) int {
	switch code {
	case identity.CodeTooManyRequests:
		return fiber.StatusTooManyRequests
	case services.CodeAdminRequired, services.CodeProfileNotFound:
		return fiber.StatusForbidden
	case identity.CodeInternal:
		return fiber.StatusInternalServerError
	default:
		return fiber.StatusUnauthorized
	}
}

// AdminLogin handles POST /api/v1/admin/login
func (h *AuthHandler) AdminLogin(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if errs := h.validator.Check(req); errs != nil {
		return response.ValidationError(c, errs)
	}

	session, err := h.gate.AdminLogin(c.UserContext(), req.Email, req.Password)
	if err != nil {
		var loginErr *services.LoginError
		if !errors.As(err, &loginErr) {
			zap.S().Errorf("[GATE] admin login failed: %v", err)
			return response.InternalServerError(c, "Login failed. Please try again")
		}
		if loginErr.Code == identity.CodeInternal {
			zap.S().Errorf("[GATE] admin login failed: %v", loginErr.Err)
		}
		return response.Error(c, loginStatus(loginErr.Code), loginErr.Message, loginErr.Code)
	}

	expiresIn := int(time.Until(session.Session.ExpiresAt).Seconds())
	if expiresIn < 0 {
		expiresIn = 0
	}
	return response.Success(c, LoginResponse{
		AccessToken: session.Session.Token,
		ExpiresAt:   session.Session.ExpiresAt,
		ExpiresIn:   expiresIn,
		Profile:     session.Profile,
	})
}

// Logout handles POST /api/v1/admin/logout
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	token, ok := middleware.GetToken(c)
	if !ok {
		token, ok = middleware.BearerToken(c)
	}
	if !ok {
		return response.Unauthorized(c, "Missing authorization token")
	}

	if err := h.gate.Logout(c.UserContext(), token); err != nil {
		zap.S().Errorf("[GATE] logout failed: %v", err)
		return response.InternalServerError(c, "Failed to sign out")
	}
	return response.SuccessWithMessage(c, "Signed out", nil)
}

// Session handles GET /api/v1/admin/session. A missing or invalid token is
// reported as unauthenticated rather than as an error.
func (h *AuthHandler) Session(c *fiber.Ctx) error {
	token, ok := middleware.BearerToken(c)
	if !ok {
		return response.Success(c, SessionResponse{})
	}

	state, err := h.gate.CheckSession(c.UserContext(), token)
	if err != nil {
		if identity.CodeOf(err) == identity.CodeInternal {
			zap.S().Errorf("[GATE] session check failed: %v", err)
			return response.InternalServerError(c, "Failed to check session")
		}
		return response.Success(c, SessionResponse{})
	}

	return response.Success(c, SessionResponse{
		Authenticated: true,
		IsAdmin:       state.IsAdmin,
		Profile:       state.Profile,
	})
}
