package model

import (
	"gorm.io/datatypes"
)

// GalleryImage is a photo shown on the public gallery page
type GalleryImage struct {
	Base
	Title       string                      `gorm:"type:varchar(255);not null" json:"title"`
	Description string                      `gorm:"type:text" json:"description"`
	Category    string                      `gorm:"type:varchar(50);index" json:"category"`
	ImageURL    string                      `gorm:"type:text;not null" json:"image_url"`
	Featured    bool                        `gorm:"index" json:"featured"`
	Visible     bool                        `gorm:"index" json:"visible"`
	Tags        datatypes.JSONSlice[string] `json:"tags"`
}

// TableName specifies the table name for GalleryImage
func (GalleryImage) TableName() string {
	return "gallery_images"
}

// ImageURLs returns the record's stored image URL
func (g *GalleryImage) ImageURLs() []string {
	if g.ImageURL == "" {
		return nil
	}
	return []string{g.ImageURL}
}

// GalleryImagePatch holds the fields of a partial gallery image update
type GalleryImagePatch struct {
	Title       *string   `json:"title" validate:"omitempty,min=1,max=255"`
	Description *string   `json:"description"`
	Category    *string   `json:"category" validate:"omitempty,max=50"`
	ImageURL    *string   `json:"image_url" validate:"omitempty,url"`
	Featured    *bool     `json:"featured"`
	Visible     *bool     `json:"visible"`
	Tags        *[]string `json:"tags"`
}

// Columns returns the supplied fields keyed by column name
func (p GalleryImagePatch) Columns() map[string]interface{} {
	cols := map[string]interface{}{}
	setString(cols, "title", p.Title)
	setString(cols, "description", p.Description)
	setString(cols, "category", p.Category)
	setString(cols, "image_url", p.ImageURL)
	setBool(cols, "featured", p.Featured)
	setBool(cols, "visible", p.Visible)
	setList(cols, "tags", p.Tags)
	return cols
}

// NewImages returns the replacement image, if the patch carries one
func (p GalleryImagePatch) NewImages() ([]string, bool) {
	if p.ImageURL == nil {
		return nil, false
	}
	return []string{*p.ImageURL}, true
}
