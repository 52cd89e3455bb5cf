package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/igtharvillage/thar-api/database"
	"go.uber.org/zap"
)

// HandleCheckHealth reports whether the API and its database are reachable
func HandleCheckHealth(c *fiber.Ctx, store database.Storage) error {
	if err := store.HealthCheck(); err != nil {
		zap.S().Warnf("[DB] health check failed: %v", err)
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "unavailable"})
	}
	return c.JSON(fiber.Map{"status": "ok"})
}
