package model

import (
	"time"
)

// Account is the identity provider's credential record
type Account struct {
	UID          string    `gorm:"type:varchar(64);primaryKey" json:"uid"`
	Email        string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"not null" json:"-"` // Never expose password in JSON
	Disabled     bool      `json:"disabled"`
	TokenVersion int       `gorm:"not null" json:"-"` // Increment to invalidate all tokens
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName specifies the table name for Account
func (Account) TableName() string {
	return "accounts"
}
