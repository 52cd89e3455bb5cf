package model

import (
	"time"
)

// Role values stored on a user profile
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// UserProfile is the application-side record of an identity. Its ID is the
// identity provider's uid.
type UserProfile struct {
	ID          string     `gorm:"type:varchar(64);primaryKey" json:"id"`
	Email       string     `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Role        string     `gorm:"type:varchar(20);index;not null" json:"role"` // admin, user
	DisplayName *string    `gorm:"type:varchar(255)" json:"display_name,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	LastLogin   *time.Time `json:"last_login,omitempty"`
}

// TableName specifies the table name for UserProfile
func (UserProfile) TableName() string {
	return "user_profiles"
}
