package repository

import (
	"context"

	"github.com/igtharvillage/thar-api/model"
	"gorm.io/gorm"
)

type (
	Properties = Collection[model.Property, *model.Property]
	Products   = Collection[model.Product, *model.Product]
	Services   = Collection[model.Service, *model.Service]
	Gallery    = Collection[model.GalleryImage, *model.GalleryImage]
	Media      = Collection[model.MediaItem, *model.MediaItem]
	Blogs      = Collection[model.BlogPost, *model.BlogPost]
)

// Store groups the content collections of the site
type Store struct {
	Properties *Properties
	Products   *Products
	Services   *Services
	Gallery    *Gallery
	Media      *Media
	Blogs      *Blogs
}

// Counter reports the size of one collection
type Counter interface {
	Name() string
	Count(ctx context.Context) (total, visible int64, err error)
}

// Counters returns every collection in display order
func (s *Store) Counters() []Counter {
	return []Counter{s.Properties, s.Products, s.Services, s.Gallery, s.Media, s.Blogs}
}

// NewStore builds every content collection over db
func NewStore(db *gorm.DB) *Store {
	return &Store{
		Properties: NewCollection[model.Property](db, Options{
			Name:          "properties",
			VisibleColumn: "available",
			FeaturedLimit: 3,
			SearchColumns: []string{"name", "short_description", "description", "location"},
		}),
		Products: NewCollection[model.Product](db, Options{
			Name:          "products",
			VisibleColumn: "in_stock",
			FeaturedLimit: 6,
			SearchColumns: []string{"name", "short_description", "description"},
		}),
		Services: NewCollection[model.Service](db, Options{
			Name:          "services",
			VisibleColumn: "available",
			FeaturedLimit: 3,
			SearchColumns: []string{"name", "short_description", "description"},
		}),
		Gallery: NewCollection[model.GalleryImage](db, Options{
			Name:          "gallery",
			VisibleColumn: "visible",
			FeaturedLimit: 6,
			SearchColumns: []string{"title", "description"},
		}),
		Media: NewCollection[model.MediaItem](db, Options{
			Name:           "media",
			VisibleColumn:  "visible",
			CategoryColumn: "type",
			FeaturedLimit:  6,
			SearchColumns:  []string{"title"},
		}),
		Blogs: NewCollection[model.BlogPost](db, Options{
			Name:          "blogs",
			VisibleColumn: "published",
			FeaturedLimit: 3,
			SearchColumns: []string{"title", "excerpt", "content"},
		}),
	}
}
