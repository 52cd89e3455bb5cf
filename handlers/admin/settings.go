package admin

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/igtharvillage/thar-api/model"
	"github.com/igtharvillage/thar-api/services"
	"github.com/igtharvillage/thar-api/utils/response"
	"go.uber.org/zap"
)

// GetSiteSettings returns the current site settings snapshot
// GET /admin/settings
func (h *AdminHandler) GetSiteSettings(c *fiber.Ctx) error {
	return response.Success(c, h.settings.Current())
}

// UpdateSiteSettings writes the supplied site settings fields
// PUT /admin/settings
func (h *AdminHandler) UpdateSiteSettings(c *fiber.Ctx) error {
	var patch model.SiteSettingsPatch
	if err := c.BodyParser(&patch); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if errs := h.validator.Check(patch); errs != nil {
		return response.ValidationError(c, errs)
	}

	settings, err := h.settings.Update(c.UserContext(), patch)
	if err != nil {
		zap.S().Errorf("[SETTINGS] update failed: %v", err)
		return response.InternalServerError(c, "Failed to update settings")
	}

	return response.SuccessWithMessage(c, "Settings updated successfully", settings)
}

// ListSettings retrieves all stored setting rows
// GET /admin/settings/raw
func (h *AdminHandler) ListSettings(c *fiber.Ctx) error {
	settings, err := h.settings.All(c.UserContext())
	if err != nil {
		zap.S().Errorf("[SETTINGS] list failed: %v", err)
		return response.InternalServerError(c, "Failed to fetch settings")
	}

	return response.SuccessWithMessage(c, "Settings retrieved successfully", settings)
}

// GetSetting retrieves a specific setting by key
// GET /admin/settings/:key
func (h *AdminHandler) GetSetting(c *fiber.Ctx) error {
	setting, err := h.settings.Get(c.UserContext(), c.Params("key"))
	if err != nil {
		if errors.Is(err, services.ErrSettingNotFound) {
			return response.NotFound(c, "Setting not found")
		}
		zap.S().Errorf("[SETTINGS] get failed: %v", err)
		return response.InternalServerError(c, "Failed to fetch setting")
	}

	return response.SuccessWithMessage(c, "Setting retrieved successfully", setting)
}
