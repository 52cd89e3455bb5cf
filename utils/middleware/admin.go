package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/igtharvillage/thar-api/model"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AuditSink persists audit entries
type AuditSink interface {
	Record(entry model.AdminAuditLog)
}

// DBAuditSink writes audit entries in the background
type DBAuditSink struct {
	db *gorm.DB
}

func NewDBAuditSink(db *gorm.DB) *DBAuditSink {
	return &DBAuditSink{db: db}
}

func (s *DBAuditSink) Record(entry model.AdminAuditLog) {
	go func() {
		if err := s.db.Create(&entry).Error; err != nil {
			zap.S().Warnf("[AUDIT] failed to record %s on %s: %v", entry.Action, entry.Resource, err)
		}
	}()
}

// AdminAuditLog creates an audit log entry for a successful admin mutation.
// Handlers may set the "resource_id" local when the id is not a route param
// (e.g. on create).
func AdminAuditLog(sink AuditSink, action, resource string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		adminID, ok := GetUserID(c)
		if !ok {
			return c.Next() // Continue without logging if user not found
		}

		// fiber reuses the request buffers once the handler returns
		entry := model.AdminAuditLog{
			AdminID:     adminID,
			Action:      action,
			Resource:    resource,
			ResourceID:  utils.CopyString(c.Params("id", c.Params("key"))),
			IPAddress:   c.IP(),
			UserAgent:   utils.CopyString(c.Get(fiber.HeaderUserAgent)),
			Description: c.Method() + " " + c.Path(),
		}
		if strings.HasPrefix(string(c.Request().Header.ContentType()), fiber.MIMEApplicationJSON) {
			entry.NewValue = string(c.Body())
		}

		err := c.Next()

		if err != nil || c.Response().StatusCode() >= fiber.StatusBadRequest {
			return err
		}
		if id, ok := c.Locals("resource_id").(string); ok && entry.ResourceID == "" {
			entry.ResourceID = id
		}
		sink.Record(entry)

		return err
	}
}
