package auth

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/igtharvillage/thar-api/services"
	"github.com/igtharvillage/thar-api/utils/middleware"
	"github.com/igtharvillage/thar-api/utils/response"
	"github.com/igtharvillage/thar-api/utils/validation"
	"go.uber.org/zap"
)

// UpdateProfileRequest represents a profile update request
type UpdateProfileRequest struct {
	DisplayName string `json:"display_name" validate:"omitempty,min=2,max=255"`
}

// GetProfile retrieves the current user's profile
func (h *AuthHandler) GetProfile(c *fiber.Ctx) error {
	uid, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	profile, err := h.profiles.Get(c.UserContext(), uid)
	if err != nil {
		if errors.Is(err, services.ErrProfileNotFound) {
			return response.NotFound(c, "Profile not found")
		}
		zap.S().Errorf("[IDENTITY] failed to load profile %s: %v", uid, err)
		return response.InternalServerError(c, "Failed to load profile")
	}

	return response.Success(c, profile)
}

// UpdateProfile updates the current user's display name
func (h *AuthHandler) UpdateProfile(c *fiber.Ctx) error {
	uid, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	var req UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if errs := h.validator.Check(req); errs != nil {
		return response.ValidationError(c, errs)
	}

	ctx := c.UserContext()
	if err := h.profiles.SetDisplayName(ctx, uid, validation.SanitizeString(req.DisplayName)); err != nil {
		if errors.Is(err, services.ErrProfileNotFound) {
			return response.NotFound(c, "Profile not found")
		}
		zap.S().Errorf("[IDENTITY] failed to update profile %s: %v", uid, err)
		return response.InternalServerError(c, "Failed to update profile")
	}

	return h.GetProfile(c)
}
