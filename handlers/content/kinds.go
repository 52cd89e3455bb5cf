package content

import (
	"strings"

	"github.com/igtharvillage/thar-api/model"
	"github.com/igtharvillage/thar-api/repository"
	"github.com/igtharvillage/thar-api/services/search"
)

const summaryLength = 160

func firstImage(images []string) string {
	if len(images) == 0 {
		return ""
	}
	return images[0]
}

func summary(short, long string) string {
	if strings.TrimSpace(short) != "" {
		return search.Summarize(short, summaryLength)
	}
	return search.Summarize(long, summaryLength)
}

func propertyDocument(p *model.Property) search.Document {
	return search.Document{
		ID:       p.ID,
		Title:    p.Name,
		Summary:  summary(p.ShortDescription, p.Description),
		Body:     p.Description + " " + p.Location,
		Category: string(p.Category),
		Image:    firstImage(p.Images),
		Visible:  p.Available,
		Featured: p.Featured,
	}
}

func productDocument(p *model.Product) search.Document {
	return search.Document{
		ID:       p.ID,
		Title:    p.Name,
		Summary:  summary(p.ShortDescription, p.Description),
		Body:     p.Description,
		Category: string(p.Category),
		Image:    firstImage(p.Images),
		Visible:  p.InStock,
		Featured: p.Featured,
	}
}

func serviceDocument(s *model.Service) search.Document {
	return search.Document{
		ID:       s.ID,
		Title:    s.Name,
		Summary:  summary(s.ShortDescription, s.Description),
		Body:     s.Description + " " + strings.Join(s.Features, " "),
		Category: string(s.Category),
		Image:    firstImage(s.Images),
		Visible:  s.Available,
		Featured: s.Featured,
	}
}

func galleryDocument(g *model.GalleryImage) search.Document {
	return search.Document{
		ID:       g.ID,
		Title:    g.Title,
		Summary:  search.Summarize(g.Description, summaryLength),
		Body:     strings.Join(g.Tags, " "),
		Category: g.Category,
		Image:    g.ImageURL,
		Visible:  g.Visible,
		Featured: g.Featured,
	}
}

func mediaDocument(m *model.MediaItem) search.Document {
	return search.Document{
		ID:       m.ID,
		Title:    m.Title,
		Body:     strings.Join(m.Tags, " "),
		Category: m.Type,
		Image:    m.URL,
		Visible:  m.Visible,
		Featured: m.Featured,
	}
}

func blogDocument(b *model.BlogPost) search.Document {
	return search.Document{
		ID:       b.ID,
		Title:    b.Title,
		Summary:  summary(b.Excerpt, b.Content),
		Body:     b.Content,
		Category: b.Category,
		Image:    b.CoverImage,
		Visible:  b.Published,
		Featured: b.Featured,
	}
}

// NewKinds builds the HTTP resources for every content collection in store
func NewKinds(store *repository.Store, images ImageCleaner, indexer search.Indexer) []Kind {
	return []Kind{
		NewResource[model.Property, *model.Property, CreatePropertyRequest, model.PropertyPatch](
			store.Properties, "property", "Property", images, indexer, propertyDocument),
		NewResource[model.Product, *model.Product, CreateProductRequest, model.ProductPatch](
			store.Products, "product", "Product", images, indexer, productDocument),
		NewResource[model.Service, *model.Service, CreateServiceRequest, model.ServicePatch](
			store.Services, "service", "Service", images, indexer, serviceDocument),
		NewResource[model.GalleryImage, *model.GalleryImage, CreateGalleryImageRequest, model.GalleryImagePatch](
			store.Gallery, "gallery_image", "Gallery image", images, indexer, galleryDocument),
		NewResource[model.MediaItem, *model.MediaItem, CreateMediaItemRequest, model.MediaItemPatch](
			store.Media, "media_item", "Media item", images, indexer, mediaDocument),
		NewResource[model.BlogPost, *model.BlogPost, CreateBlogPostRequest, model.BlogPostPatch](
			store.Blogs, "blog_post", "Blog post", images, indexer, blogDocument),
	}
}

// KindNames returns the collection names of kinds, for index setup
func KindNames(kinds []Kind) []string {
	names := make([]string, 0, len(kinds))
	for _, k := range kinds {
		names = append(names, k.Name())
	}
	return names
}
