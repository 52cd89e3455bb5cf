package model

import (
	"gorm.io/datatypes"
)

// BlogPost is an article on the village blog
type BlogPost struct {
	Base
	Title      string                      `gorm:"type:varchar(255);not null" json:"title"`
	Slug       string                      `gorm:"type:varchar(255);uniqueIndex;not null" json:"slug"`
	Excerpt    string                      `gorm:"type:varchar(500)" json:"excerpt"`
	Content    string                      `gorm:"type:text" json:"content"`
	CoverImage string                      `gorm:"type:text" json:"cover_image"`
	Author     string                      `gorm:"type:varchar(255)" json:"author"`
	Category   string                      `gorm:"type:varchar(50);index" json:"category"`
	Tags       datatypes.JSONSlice[string] `json:"tags"`
	Featured   bool                        `gorm:"index" json:"featured"`
	Published  bool                        `gorm:"index" json:"published"`
}

// TableName specifies the table name for BlogPost
func (BlogPost) TableName() string {
	return "blog_posts"
}

// ImageURLs returns the post's cover image
func (b *BlogPost) ImageURLs() []string {
	if b.CoverImage == "" {
		return nil
	}
	return []string{b.CoverImage}
}

// BlogPostPatch holds the fields of a partial blog post update
type BlogPostPatch struct {
	Title      *string   `json:"title" validate:"omitempty,min=3,max=255"`
	Slug       *string   `json:"slug" validate:"omitempty,min=3,max=255"`
	Excerpt    *string   `json:"excerpt" validate:"omitempty,max=500"`
	Content    *string   `json:"content"`
	CoverImage *string   `json:"cover_image" validate:"omitempty,url"`
	Author     *string   `json:"author" validate:"omitempty,max=255"`
	Category   *string   `json:"category" validate:"omitempty,max=50"`
	Tags       *[]string `json:"tags"`
	Featured   *bool     `json:"featured"`
	Published  *bool     `json:"published"`
}

// Columns returns the supplied fields keyed by column name
func (p BlogPostPatch) Columns() map[string]interface{} {
	cols := map[string]interface{}{}
	setString(cols, "title", p.Title)
	setString(cols, "slug", p.Slug)
	setString(cols, "excerpt", p.Excerpt)
	setString(cols, "content", p.Content)
	setString(cols, "cover_image", p.CoverImage)
	setString(cols, "author", p.Author)
	setString(cols, "category", p.Category)
	setList(cols, "tags", p.Tags)
	setBool(cols, "featured", p.Featured)
	setBool(cols, "published", p.Published)
	return cols
}

// NewImages returns the replacement cover image, if the patch carries one
func (p BlogPostPatch) NewImages() ([]string, bool) {
	if p.CoverImage == nil {
		return nil, false
	}
	return []string{*p.CoverImage}, true
}
