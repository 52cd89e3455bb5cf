package model

import (
	"gorm.io/datatypes"
)

// ServiceCategory classifies guest experiences
type ServiceCategory string

const (
	ServiceCategorySafari      ServiceCategory = "safari"
	ServiceCategoryCultural    ServiceCategory = "cultural"
	ServiceCategoryAdventure   ServiceCategory = "adventure"
	ServiceCategorySpiritual   ServiceCategory = "spiritual"
	ServiceCategoryEducational ServiceCategory = "educational"
)

// Service represents a guided experience offered to visitors
type Service struct {
	Base
	Name             string                      `gorm:"type:varchar(255);not null" json:"name"`
	Description      string                      `gorm:"type:text" json:"description"`
	ShortDescription string                      `gorm:"type:varchar(500)" json:"short_description"`
	Images           datatypes.JSONSlice[string] `json:"images"`
	Price            float64                     `gorm:"not null" json:"price"`
	Duration         string                      `gorm:"type:varchar(100)" json:"duration"`
	Category         ServiceCategory             `gorm:"type:varchar(30);index;not null" json:"category"`
	Features         datatypes.JSONSlice[string] `json:"features"`
	Featured         bool                        `gorm:"index" json:"featured"`
	Available        bool                        `gorm:"index" json:"available"`
	MaxParticipants  int                         `gorm:"not null" json:"max_participants"`
}

// TableName specifies the table name for Service
func (Service) TableName() string {
	return "services"
}

// ImageURLs returns the record's stored image URLs
func (s *Service) ImageURLs() []string {
	return s.Images
}

// ServicePatch holds the fields of a partial service update
type ServicePatch struct {
	Name             *string          `json:"name" validate:"omitempty,min=2,max=255"`
	Description      *string          `json:"description"`
	ShortDescription *string          `json:"short_description" validate:"omitempty,max=500"`
	Images           *[]string        `json:"images"`
	Price            *float64         `json:"price" validate:"omitempty,gt=0"`
	Duration         *string          `json:"duration" validate:"omitempty,max=100"`
	Category         *ServiceCategory `json:"category" validate:"omitempty,oneof=safari cultural adventure spiritual educational"`
	Features         *[]string        `json:"features"`
	Featured         *bool            `json:"featured"`
	Available        *bool            `json:"available"`
	MaxParticipants  *int             `json:"max_participants" validate:"omitempty,gt=0"`
}

// Columns returns the supplied fields keyed by column name
func (p ServicePatch) Columns() map[string]interface{} {
	cols := map[string]interface{}{}
	setString(cols, "name", p.Name)
	setString(cols, "description", p.Description)
	setString(cols, "short_description", p.ShortDescription)
	setList(cols, "images", p.Images)
	if p.Price != nil {
		cols["price"] = *p.Price
	}
	setString(cols, "duration", p.Duration)
	if p.Category != nil {
		cols["category"] = *p.Category
	}
	setList(cols, "features", p.Features)
	setBool(cols, "featured", p.Featured)
	setBool(cols, "available", p.Available)
	if p.MaxParticipants != nil {
		cols["max_participants"] = *p.MaxParticipants
	}
	return cols
}

// NewImages returns the replacement image list, if the patch carries one
func (p ServicePatch) NewImages() ([]string, bool) {
	if p.Images == nil {
		return nil, false
	}
	return *p.Images, true
}
