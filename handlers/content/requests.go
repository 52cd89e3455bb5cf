package content

import (
	"strings"

	"github.com/igtharvillage/thar-api/model"
	"github.com/igtharvillage/thar-api/utils/validation"
	"gorm.io/datatypes"
)

func list(values []string) datatypes.JSONSlice[string] {
	if values == nil {
		return datatypes.JSONSlice[string]{}
	}
	return datatypes.JSONSlice[string](values)
}

func optional(v string) *string {
	v = validation.SanitizeString(v)
	if v == "" {
		return nil
	}
	return &v
}

// CreatePropertyRequest represents the request body for creating a property
type CreatePropertyRequest struct {
	Name             string                 `json:"name" validate:"required,min=2,max=255"`
	Description      string                 `json:"description" validate:"required"`
	ShortDescription string                 `json:"short_description" validate:"max=500"`
	Images           []string               `json:"images" validate:"dive,url"`
	Amenities        []string               `json:"amenities"`
	PricePerNight    float64                `json:"price_per_night" validate:"required,gt=0"`
	MaxGuests        int                    `json:"max_guests" validate:"required,gt=0"`
	Category         model.PropertyCategory `json:"category" validate:"required,oneof=farm-stay desert-camp heritage-room luxury-tent"`
	Featured         bool                   `json:"featured"`
	Available        *bool                  `json:"available"`
	Location         string                 `json:"location" validate:"max=255"`
}

func (r CreatePropertyRequest) ToModel() *model.Property {
	return &model.Property{
		Name:             validation.SanitizeString(r.Name),
		Description:      r.Description,
		ShortDescription: validation.SanitizeString(r.ShortDescription),
		Images:           list(r.Images),
		Amenities:        list(r.Amenities),
		PricePerNight:    r.PricePerNight,
		MaxGuests:        r.MaxGuests,
		Category:         r.Category,
		Featured:         r.Featured,
		Available:        defaultTrue(r.Available),
		Location:         validation.SanitizeString(r.Location),
	}
}

// CreateProductRequest represents the request body for creating a product
type CreateProductRequest struct {
	Name             string                `json:"name" validate:"required,min=2,max=255"`
	Description      string                `json:"description" validate:"required"`
	ShortDescription string                `json:"short_description" validate:"max=500"`
	Images           []string              `json:"images" validate:"dive,url"`
	Price            float64               `json:"price" validate:"required,gt=0"`
	Unit             string                `json:"unit" validate:"required,max=50"`
	Category         model.ProductCategory `json:"category" validate:"required,oneof=dairy grains vegetables spices handicrafts other"`
	InStock          *bool                 `json:"in_stock"`
	Featured         bool                  `json:"featured"`
	Organic          bool                  `json:"organic"`
	Weight           string                `json:"weight" validate:"max=50"`
	NutritionalInfo  string                `json:"nutritional_info"`
}

func (r CreateProductRequest) ToModel() *model.Product {
	return &model.Product{
		Name:             validation.SanitizeString(r.Name),
		Description:      r.Description,
		ShortDescription: validation.SanitizeString(r.ShortDescription),
		Images:           list(r.Images),
		Price:            r.Price,
		Unit:             validation.SanitizeString(r.Unit),
		Category:         r.Category,
		InStock:          defaultTrue(r.InStock),
		Featured:         r.Featured,
		Organic:          r.Organic,
		Weight:           optional(r.Weight),
		NutritionalInfo:  optional(r.NutritionalInfo),
	}
}

// CreateServiceRequest represents the request body for creating a service
type CreateServiceRequest struct {
	Name             string                `json:"name" validate:"required,min=2,max=255"`
	Description      string                `json:"description" validate:"required"`
	ShortDescription string                `json:"short_description" validate:"max=500"`
	Images           []string              `json:"images" validate:"dive,url"`
	Price            float64               `json:"price" validate:"required,gt=0"`
	Duration         string                `json:"duration" validate:"max=100"`
	Category         model.ServiceCategory `json:"category" validate:"required,oneof=safari cultural adventure spiritual educational"`
	Features         []string              `json:"features"`
	Featured         bool                  `json:"featured"`
	Available        *bool                 `json:"available"`
	MaxParticipants  int                   `json:"max_participants" validate:"required,gt=0"`
}

func (r CreateServiceRequest) ToModel() *model.Service {
	return &model.Service{
		Name:             validation.SanitizeString(r.Name),
		Description:      r.Description,
		ShortDescription: validation.SanitizeString(r.ShortDescription),
		Images:           list(r.Images),
		Price:            r.Price,
		Duration:         validation.SanitizeString(r.Duration),
		Category:         r.Category,
		Features:         list(r.Features),
		Featured:         r.Featured,
		Available:        defaultTrue(r.Available),
		MaxParticipants:  r.MaxParticipants,
	}
}

// CreateGalleryImageRequest represents the request body for adding a gallery image
type CreateGalleryImageRequest struct {
	Title       string   `json:"title" validate:"required,max=255"`
	Description string   `json:"description"`
	Category    string   `json:"category" validate:"max=50"`
	ImageURL    string   `json:"image_url" validate:"required,url"`
	Featured    bool     `json:"featured"`
	Visible     *bool    `json:"visible"`
	Tags        []string `json:"tags"`
}

func (r CreateGalleryImageRequest) ToModel() *model.GalleryImage {
	return &model.GalleryImage{
		Title:       validation.SanitizeString(r.Title),
		Description: r.Description,
		Category:    validation.SanitizeString(r.Category),
		ImageURL:    strings.TrimSpace(r.ImageURL),
		Featured:    r.Featured,
		Visible:     defaultTrue(r.Visible),
		Tags:        list(r.Tags),
	}
}

// CreateMediaItemRequest represents the request body for adding a media item
type CreateMediaItemRequest struct {
	Title    string   `json:"title" validate:"max=255"`
	Type     string   `json:"type" validate:"required,max=30"`
	URL      string   `json:"url" validate:"required,url"`
	Featured bool     `json:"featured"`
	Visible  *bool    `json:"visible"`
	Tags     []string `json:"tags"`
}

func (r CreateMediaItemRequest) ToModel() *model.MediaItem {
	return &model.MediaItem{
		Title:    validation.SanitizeString(r.Title),
		Type:     strings.ToLower(validation.SanitizeString(r.Type)),
		URL:      strings.TrimSpace(r.URL),
		Featured: r.Featured,
		Visible:  defaultTrue(r.Visible),
		Tags:     list(r.Tags),
	}
}

// CreateBlogPostRequest represents the request body for creating a blog post
type CreateBlogPostRequest struct {
	Title      string   `json:"title" validate:"required,min=3,max=255"`
	Slug       string   `json:"slug" validate:"required,min=3,max=255"`
	Excerpt    string   `json:"excerpt" validate:"max=500"`
	Content    string   `json:"content" validate:"required"`
	CoverImage string   `json:"cover_image" validate:"omitempty,url"`
	Author     string   `json:"author" validate:"max=255"`
	Category   string   `json:"category" validate:"max=50"`
	Tags       []string `json:"tags"`
	Featured   bool     `json:"featured"`
	Published  bool     `json:"published"`
}

func (r CreateBlogPostRequest) ToModel() *model.BlogPost {
	return &model.BlogPost{
		Title:      validation.SanitizeString(r.Title),
		Slug:       strings.ToLower(validation.SanitizeString(r.Slug)),
		Excerpt:    validation.SanitizeString(r.Excerpt),
		Content:    r.Content,
		CoverImage: strings.TrimSpace(r.CoverImage),
		Author:     validation.SanitizeString(r.Author),
		Category:   validation.SanitizeString(r.Category),
		Tags:       list(r.Tags),
		Featured:   r.Featured,
		Published:  r.Published,
	}
}

// visibility flags default to on when omitted
func defaultTrue(v *bool) bool {
	return v == nil || *v
}
