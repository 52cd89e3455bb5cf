package model

import (
	"time"
)

// AdminAuditLog represents audit trail for admin actions
type AdminAuditLog struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	AdminID     string    `gorm:"type:varchar(64);not null;index" json:"admin_id"`
	Action      string    `gorm:"type:varchar(100);not null" json:"action"` // e.g., "product_create", "settings_update"
	Resource    string    `gorm:"type:varchar(100)" json:"resource"`        // e.g., "products", "settings"
	ResourceID  string    `gorm:"type:varchar(64)" json:"resource_id"`
	NewValue    string    `gorm:"type:text" json:"new_value"`
	IPAddress   string    `gorm:"type:varchar(45)" json:"ip_address"`
	UserAgent   string    `gorm:"type:text" json:"user_agent"`
	Description string    `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
}

// TableName specifies the table name for AdminAuditLog
func (AdminAuditLog) TableName() string {
	return "admin_audit_logs"
}
