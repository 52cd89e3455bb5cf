package model

import (
	"gorm.io/datatypes"
)

// PropertyCategory is the kind of stay a property offers
type PropertyCategory string

const (
	PropertyCategoryFarmStay     PropertyCategory = "farm-stay"
	PropertyCategoryDesertCamp   PropertyCategory = "desert-camp"
	PropertyCategoryHeritageRoom PropertyCategory = "heritage-room"
	PropertyCategoryLuxuryTent   PropertyCategory = "luxury-tent"
)

// Property represents a bookable stay listed on the site
type Property struct {
	Base
	Name             string                      `gorm:"type:varchar(255);not null" json:"name"`
	Description      string                      `gorm:"type:text" json:"description"`
	ShortDescription string                      `gorm:"type:varchar(500)" json:"short_description"`
	Images           datatypes.JSONSlice[string] `json:"images"`
	Amenities        datatypes.JSONSlice[string] `json:"amenities"`
	PricePerNight    float64                     `gorm:"not null" json:"price_per_night"`
	MaxGuests        int                         `gorm:"not null" json:"max_guests"`
	Category         PropertyCategory            `gorm:"type:varchar(30);index;not null" json:"category"`
	Featured         bool                        `gorm:"index" json:"featured"`
	Available        bool                        `gorm:"index" json:"available"`
	Location         string                      `gorm:"type:varchar(255)" json:"location"`
}

// TableName specifies the table name for Property
func (Property) TableName() string {
	return "properties"
}

// ImageURLs returns the record's stored image URLs
func (p *Property) ImageURLs() []string {
	return p.Images
}

// PropertyPatch holds the fields of a partial property update; nil fields are left untouched
type PropertyPatch struct {
	Name             *string           `json:"name" validate:"omitempty,min=2,max=255"`
	Description      *string           `json:"description"`
	ShortDescription *string           `json:"short_description" validate:"omitempty,max=500"`
	Images           *[]string         `json:"images"`
	Amenities        *[]string         `json:"amenities"`
	PricePerNight    *float64          `json:"price_per_night" validate:"omitempty,gt=0"`
	MaxGuests        *int              `json:"max_guests" validate:"omitempty,gt=0"`
	Category         *PropertyCategory `json:"category" validate:"omitempty,oneof=farm-stay desert-camp heritage-room luxury-tent"`
	Featured         *bool             `json:"featured"`
	Available        *bool             `json:"available"`
	Location         *string           `json:"location"`
}

// Columns returns the supplied fields keyed by column name
func (p PropertyPatch) Columns() map[string]interface{} {
	cols := map[string]interface{}{}
	setString(cols, "name", p.Name)
	setString(cols, "description", p.Description)
	setString(cols, "short_description", p.ShortDescription)
	setList(cols, "images", p.Images)
	setList(cols, "amenities", p.Amenities)
	if p.PricePerNight != nil {
		cols["price_per_night"] = *p.PricePerNight
	}
	if p.MaxGuests != nil {
		cols["max_guests"] = *p.MaxGuests
	}
	if p.Category != nil {
		cols["category"] = *p.Category
	}
	setBool(cols, "featured", p.Featured)
	setBool(cols, "available", p.Available)
	setString(cols, "location", p.Location)
	return cols
}

// NewImages returns the replacement image list, if the patch carries one
func (p PropertyPatch) NewImages() ([]string, bool) {
	if p.Images == nil {
		return nil, false
	}
	return *p.Images, true
}
