package model

import (
	"time"
)

// SettingCategorySite groups the rows that make up SiteSettings
const SettingCategorySite = "site"

// AppSetting represents application-wide configuration settings
type AppSetting struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Key         string    `gorm:"type:varchar(100);uniqueIndex;not null" json:"key"`
	Value       string    `gorm:"type:text;not null" json:"value"`
	Type        string    `gorm:"type:varchar(20);not null" json:"type"` // string, int, bool, json
	Description string    `gorm:"type:text" json:"description"`
	IsPublic    bool      `json:"is_public"` // If true, can be accessed without auth
	Category    string    `gorm:"type:varchar(50);index" json:"category"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName specifies the table name for AppSetting
func (AppSetting) TableName() string {
	return "app_settings"
}

// SiteSettings is the singleton display configuration read by every page.
// Each field is persisted as one AppSetting row keyed by its mapstructure tag.
type SiteSettings struct {
	SiteName   string    `mapstructure:"site_name" json:"site_name"`
	Tagline    string    `mapstructure:"tagline" json:"tagline"`
	LogoURL    string    `mapstructure:"logo_url" json:"logo_url"`
	FaviconURL string    `mapstructure:"favicon_url" json:"favicon_url"`
	Address    string    `mapstructure:"address" json:"address"`
	Phone      string    `mapstructure:"phone" json:"phone"`
	Email      string    `mapstructure:"email" json:"email"`
	IsLaunched bool      `mapstructure:"is_launched" json:"is_launched"`
	CreatedAt  time.Time `mapstructure:"-" json:"created_at"`
	UpdatedAt  time.Time `mapstructure:"-" json:"updated_at"`
}

// SiteSettingsPatch holds the fields of a partial settings update
type SiteSettingsPatch struct {
	SiteName   *string `mapstructure:"site_name,omitempty" json:"site_name" validate:"omitempty,min=1,max=255"`
	Tagline    *string `mapstructure:"tagline,omitempty" json:"tagline" validate:"omitempty,max=255"`
	LogoURL    *string `mapstructure:"logo_url,omitempty" json:"logo_url" validate:"omitempty,url"`
	FaviconURL *string `mapstructure:"favicon_url,omitempty" json:"favicon_url" validate:"omitempty,url"`
	Address    *string `mapstructure:"address,omitempty" json:"address" validate:"omitempty,max=500"`
	Phone      *string `mapstructure:"phone,omitempty" json:"phone" validate:"omitempty,max=50"`
	Email      *string `mapstructure:"email,omitempty" json:"email" validate:"omitempty,email"`
	IsLaunched *bool   `mapstructure:"is_launched,omitempty" json:"is_launched"`
}
