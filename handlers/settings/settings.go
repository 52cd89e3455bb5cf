package settings

import (
	"github.com/gofiber/fiber/v2"
	"github.com/igtharvillage/thar-api/model"
	"github.com/igtharvillage/thar-api/utils/response"
)

// Source provides the current site settings snapshot
type Source interface {
	Current() model.SiteSettings
}

// GetPublicSettings handles GET /api/v1/settings
func GetPublicSettings(source Source) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Set(fiber.HeaderCacheControl, "public, max-age=60")
		return response.Success(c, source.Current())
	}
}
