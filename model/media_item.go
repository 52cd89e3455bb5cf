package model

import (
	"gorm.io/datatypes"
)

// MediaItem is an uploaded asset (banner, video still, award scan) managed from the admin media library
type MediaItem struct {
	Base
	Title    string                      `gorm:"type:varchar(255)" json:"title"`
	Type     string                      `gorm:"type:varchar(30);index;not null" json:"type"`
	URL      string                      `gorm:"type:text;not null" json:"url"`
	Featured bool                        `gorm:"index" json:"featured"`
	Visible  bool                        `gorm:"index" json:"visible"`
	Tags     datatypes.JSONSlice[string] `json:"tags"`
}

// TableName specifies the table name for MediaItem
func (MediaItem) TableName() string {
	return "media_items"
}

// ImageURLs returns the record's stored asset URL
func (m *MediaItem) ImageURLs() []string {
	if m.URL == "" {
		return nil
	}
	return []string{m.URL}
}

// MediaItemPatch holds the fields of a partial media item update
type MediaItemPatch struct {
	Title    *string   `json:"title" validate:"omitempty,max=255"`
	Type     *string   `json:"type" validate:"omitempty,min=1,max=30"`
	URL      *string   `json:"url" validate:"omitempty,url"`
	Featured *bool     `json:"featured"`
	Visible  *bool     `json:"visible"`
	Tags     *[]string `json:"tags"`
}

// Columns returns the supplied fields keyed by column name
func (p MediaItemPatch) Columns() map[string]interface{} {
	cols := map[string]interface{}{}
	setString(cols, "title", p.Title)
	setString(cols, "type", p.Type)
	setString(cols, "url", p.URL)
	setBool(cols, "featured", p.Featured)
	setBool(cols, "visible", p.Visible)
	setList(cols, "tags", p.Tags)
	return cols
}

// NewImages returns the replacement asset URL, if the patch carries one
func (p MediaItemPatch) NewImages() ([]string, bool) {
	if p.URL == nil {
		return nil, false
	}
	return []string{*p.URL}, true
}
