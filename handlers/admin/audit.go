package admin

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/igtharvillage/thar-api/model"
	"github.com/igtharvillage/thar-api/utils/response"
	"gorm.io/gorm"
)

// ListAuditLogs retrieves admin audit logs with pagination
// GET /admin/audit
func (h *AdminHandler) ListAuditLogs(c *fiber.Ctx) error {
	page, limit := response.PageParams(c, 20)

	// Filters
	query := h.db.WithContext(c.UserContext()).Model(&model.AdminAuditLog{})
	if action := c.Query("action"); action != "" {
		query = query.Where("action = ?", action)
	}
	if resource := c.Query("resource"); resource != "" {
		query = query.Where("resource = ?", resource)
	}
	if adminID := c.Query("admin_id"); adminID != "" {
		query = query.Where("admin_id = ?", adminID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return response.InternalServerError(c, "Failed to count audit logs")
	}

	logs := []model.AdminAuditLog{}
	offset := (page - 1) * limit
	if err := query.Offset(offset).Limit(limit).Order("created_at DESC, id DESC").Find(&logs).Error; err != nil {
		return response.InternalServerError(c, "Failed to fetch audit logs")
	}

	return response.Paginated(c, logs, response.CalculatePagination(page, limit, total))
}

// GetAuditLog retrieves a specific audit log entry
// GET /admin/audit/:id
func (h *AdminHandler) GetAuditLog(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return response.BadRequest(c, "Invalid audit log ID")
	}

	var entry model.AdminAuditLog
	if err := h.db.WithContext(c.UserContext()).First(&entry, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Audit log not found")
		}
		return response.InternalServerError(c, "Failed to fetch audit log")
	}

	return response.Success(c, entry)
}
