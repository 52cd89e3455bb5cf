package model

import (
	"gorm.io/datatypes"
)

// ProductCategory groups farm products on the shop pages
type ProductCategory string

const (
	ProductCategoryDairy       ProductCategory = "dairy"
	ProductCategoryGrains      ProductCategory = "grains"
	ProductCategoryVegetables  ProductCategory = "vegetables"
	ProductCategorySpices      ProductCategory = "spices"
	ProductCategoryHandicrafts ProductCategory = "handicrafts"
	ProductCategoryOther       ProductCategory = "other"
)

// Product represents a farm product sold through the site
type Product struct {
	Base
	Name             string                      `gorm:"type:varchar(255);not null" json:"name"`
	Description      string                      `gorm:"type:text" json:"description"`
	ShortDescription string                      `gorm:"type:varchar(500)" json:"short_description"`
	Images           datatypes.JSONSlice[string] `json:"images"`
	Price            float64                     `gorm:"not null" json:"price"`
	Unit             string                      `gorm:"type:varchar(50);not null" json:"unit"`
	Category         ProductCategory             `gorm:"type:varchar(30);index;not null" json:"category"`
	InStock          bool                        `gorm:"index" json:"in_stock"`
	Featured         bool                        `gorm:"index" json:"featured"`
	Organic          bool                        `json:"organic"`
	Weight           *string                     `gorm:"type:varchar(50)" json:"weight,omitempty"`
	NutritionalInfo  *string                     `gorm:"type:text" json:"nutritional_info,omitempty"`
}

// TableName specifies the table name for Product
func (Product) TableName() string {
	return "products"
}

// ImageURLs returns the record's stored image URLs
func (p *Product) ImageURLs() []string {
	return p.Images
}

// ProductPatch holds the fields of a partial product update
type ProductPatch struct {
	Name             *string          `json:"name" validate:"omitempty,min=2,max=255"`
	Description      *string          `json:"description"`
	ShortDescription *string          `json:"short_description" validate:"omitempty,max=500"`
	Images           *[]string        `json:"images"`
	Price            *float64         `json:"price" validate:"omitempty,gt=0"`
	Unit             *string          `json:"unit" validate:"omitempty,min=1,max=50"`
	Category         *ProductCategory `json:"category" validate:"omitempty,oneof=dairy grains vegetables spices handicrafts other"`
	InStock          *bool            `json:"in_stock"`
	Featured         *bool            `json:"featured"`
	Organic          *bool            `json:"organic"`
	Weight           *string          `json:"weight" validate:"omitempty,max=50"`
	NutritionalInfo  *string          `json:"nutritional_info"`
}

// Columns returns the supplied fields keyed by column name
func (p ProductPatch) Columns() map[string]interface{} {
	cols := map[string]interface{}{}
	setString(cols, "name", p.Name)
	setString(cols, "description", p.Description)
	setString(cols, "short_description", p.ShortDescription)
	setList(cols, "images", p.Images)
	if p.Price != nil {
		cols["price"] = *p.Price
	}
	setString(cols, "unit", p.Unit)
	if p.Category != nil {
		cols["category"] = *p.Category
	}
	setBool(cols, "in_stock", p.InStock)
	setBool(cols, "featured", p.Featured)
	setBool(cols, "organic", p.Organic)
	if p.Weight != nil {
		cols["weight"] = optionalString(p.Weight)
	}
	if p.NutritionalInfo != nil {
		cols["nutritional_info"] = optionalString(p.NutritionalInfo)
	}
	return cols
}

// NewImages returns the replacement image list, if the patch carries one
func (p ProductPatch) NewImages() ([]string, bool) {
	if p.Images == nil {
		return nil, false
	}
	return *p.Images, true
}
