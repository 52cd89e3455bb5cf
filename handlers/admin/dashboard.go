package admin

import (
	"github.com/gofiber/fiber/v2"
	"github.com/igtharvillage/thar-api/model"
	"github.com/igtharvillage/thar-api/utils/response"
	"go.uber.org/zap"
)

// ContentCount is the size of one content collection
type ContentCount struct {
	Total   int64 `json:"total"`
	Visible int64 `json:"visible"`
}

// DashboardStats is the admin landing page summary
type DashboardStats struct {
	Content     map[string]ContentCount `json:"content"`
	Admins      int64                   `json:"admins"`
	Users       int64                   `json:"users"`
	RecentAudit []model.AdminAuditLog   `json:"recent_audit"`
	LastJobs    []model.CronJobLog      `json:"last_jobs"`
}

// GetDashboard retrieves content and user counts for the admin landing page.
// Counts that fail to load are logged and reported as zero.
// GET /admin/dashboard
func (h *AdminHandler) GetDashboard(c *fiber.Ctx) error {
	ctx := c.UserContext()
	db := h.db.WithContext(ctx)

	stats := DashboardStats{
		Content:     map[string]ContentCount{},
		RecentAudit: []model.AdminAuditLog{},
		LastJobs:    []model.CronJobLog{},
	}

	for _, collection := range h.content {
		total, visible, err := collection.Count(ctx)
		if err != nil {
			zap.S().Warnf("[DASHBOARD] %v", err)
		}
		stats.Content[collection.Name()] = ContentCount{Total: total, Visible: visible}
	}

	if err := db.Model(&model.UserProfile{}).Where("role = ?", model.RoleAdmin).Count(&stats.Admins).Error; err != nil {
		zap.S().Warnf("[DASHBOARD] failed to count admins: %v", err)
		stats.Admins = 0
	}
	if err := db.Model(&model.UserProfile{}).Where("role = ?", model.RoleUser).Count(&stats.Users).Error; err != nil {
		zap.S().Warnf("[DASHBOARD] failed to count users: %v", err)
		stats.Users = 0
	}

	if err := db.Order("created_at DESC, id DESC").Limit(10).Find(&stats.RecentAudit).Error; err != nil {
		zap.S().Warnf("[DASHBOARD] failed to load recent audit entries: %v", err)
		stats.RecentAudit = []model.AdminAuditLog{}
	}
	if err := db.Order("started_at DESC, id DESC").Limit(10).Find(&stats.LastJobs).Error; err != nil {
		zap.S().Warnf("[DASHBOARD] failed to load recent cron runs: %v", err)
		stats.LastJobs = []model.CronJobLog{}
	}

	return response.SuccessWithMessage(c, "Dashboard retrieved successfully", stats)
}
