package content

import (
	"context"
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/igtharvillage/thar-api/repository"
	"github.com/igtharvillage/thar-api/services/search"
	"github.com/igtharvillage/thar-api/utils/response"
	"github.com/igtharvillage/thar-api/utils/validation"
	"go.uber.org/zap"
)

// ImageCleaner removes images a record no longer references
type ImageCleaner interface {
	ReplaceImages(ctx context.Context, previous, current []string)
}

// Kind is one content collection exposed over HTTP
type Kind interface {
	Name() string
	Register(public, admin fiber.Router, audit func(action, resource string) fiber.Handler)
	Reindex(ctx context.Context) (int, error)
	SearchLocal(ctx context.Context, term string, limit int) []search.Hit
}

type record[T any] interface {
	repository.Record[T]
	ImageURLs() []string
}

type patch interface {
	repository.Patch
	NewImages() ([]string, bool)
}

type createRequest[T any] interface {
	ToModel() *T
}

// Resource serves one collection: public reads and admin CRUD. C is the
// create request body and U the update patch.
type Resource[T any, P record[T], C createRequest[T], U patch] struct {
	name       string
	singular   string
	label      string
	collection *repository.Collection[T, P]
	images     ImageCleaner
	indexer    search.Indexer
	document   func(*T) search.Document
	validator  *validation.Validator
}

// NewResource creates a resource handler. images may be nil when no object
// store is configured.
func NewResource[T any, P record[T], C createRequest[T], U patch](
	collection *repository.Collection[T, P],
	singular, label string,
	images ImageCleaner,
	indexer search.Indexer,
	document func(*T) search.Document,
) *Resource[T, P, C, U] {
	if indexer == nil {
		indexer = search.NoopIndexer{}
	}
	return &Resource[T, P, C, U]{
		name:       collection.Name(),
		singular:   singular,
		label:      label,
		collection: collection,
		images:     images,
		indexer:    indexer,
		document:   document,
		validator:  validation.NewValidator(),
	}
}

func (r *Resource[T, P, C, U]) Name() string {
	return r.name
}

// Register mounts the public and admin routes of the collection
func (r *Resource[T, P, C, U]) Register(public, admin fiber.Router, audit func(action, resource string) fiber.Handler) {
	base := "/" + r.name

	public.Get(base, r.List)
	public.Get(base+"/:id", r.Get)

	admin.Get(base, r.AdminList)
	admin.Get(base+"/:id", r.AdminGet)
	admin.Post(base, audit(r.singular+"_create", r.name), r.Create)
	admin.Put(base+"/:id", audit(r.singular+"_update", r.name), r.Update)
	admin.Delete(base+"/:id", audit(r.singular+"_delete", r.name), r.Delete)
}

func listFilter(c *fiber.Ctx) repository.ListFilter {
	return repository.ListFilter{
		FeaturedOnly: c.QueryBool("featured", false),
		Category:     c.Query("category"),
	}
}

func parseID(c *fiber.Ctx) (uint, bool) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// List handles GET /api/v1/<kind>?featured=true&category=x
func (r *Resource[T, P, C, U]) List(c *fiber.Ctx) error {
	return response.Success(c, r.collection.List(c.UserContext(), listFilter(c)))
}

// Get handles GET /api/v1/<kind>/:id. Hidden records are not found.
func (r *Resource[T, P, C, U]) Get(c *fiber.Ctx) error {
	return r.get(c, r.collection.GetVisible)
}

// AdminGet handles GET /api/v1/admin/<kind>/:id; hidden records are included
func (r *Resource[T, P, C, U]) AdminGet(c *fiber.Ctx) error {
	return r.get(c, r.collection.GetByID)
}

func (r *Resource[T, P, C, U]) get(c *fiber.Ctx, load func(ctx context.Context, id uint) *T) error {
	id, ok := parseID(c)
	if !ok {
		return response.BadRequest(c, "Invalid "+r.singular+" ID")
	}

	item := load(c.UserContext(), id)
	if item == nil {
		return response.NotFound(c, r.label+" not found")
	}
	return response.Success(c, item)
}

// AdminList handles GET /api/v1/admin/<kind>; hidden records are included
func (r *Resource[T, P, C, U]) AdminList(c *fiber.Ctx) error {
	items, err := r.collection.ListAll(c.UserContext(), listFilter(c))
	if err != nil {
		zap.S().Errorf("[%s] admin list failed: %v", r.name, err)
		return response.InternalServerError(c, "Failed to fetch "+r.name)
	}
	return response.Success(c, items)
}

// Create handles POST /api/v1/admin/<kind>
func (r *Resource[T, P, C, U]) Create(c *fiber.Ctx) error {
	var req C
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if errs := r.validator.Check(req); errs != nil {
		return response.ValidationError(c, errs)
	}

	item := req.ToModel()
	id, err := r.collection.Create(c.UserContext(), P(item))
	if err != nil {
		zap.S().Errorf("[%s] create failed: %v", r.name, err)
		return response.InternalServerError(c, "Failed to create "+r.singular)
	}
	c.Locals("resource_id", strconv.FormatUint(uint64(id), 10))

	r.index(item)
	return response.Created(c, item)
}

// Update handles PUT /api/v1/admin/<kind>/:id. Only the supplied fields are
// written; images dropped by the update are removed from the object store.
func (r *Resource[T, P, C, U]) Update(c *fiber.Ctx) error {
	id, ok := parseID(c)
	if !ok {
		return response.BadRequest(c, "Invalid "+r.singular+" ID")
	}

	var req U
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if errs := r.validator.Check(req); errs != nil {
		return response.ValidationError(c, errs)
	}

	ctx := c.UserContext()
	previous := r.collection.GetByID(ctx, id)

	if err := r.collection.Update(ctx, id, req); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return response.NotFound(c, r.label+" not found")
		}
		zap.S().Errorf("[%s] update %d failed: %v", r.name, id, err)
		return response.InternalServerError(c, "Failed to update "+r.singular)
	}

	if current, replaced := req.NewImages(); replaced && previous != nil && r.images != nil {
		r.images.ReplaceImages(ctx, P(previous).ImageURLs(), current)
	}

	updated := r.collection.GetByID(ctx, id)
	if updated == nil {
		return response.SuccessWithMessage(c, r.label+" updated successfully", fiber.Map{"id": id})
	}
	r.index(updated)
	return response.SuccessWithMessage(c, r.label+" updated successfully", updated)
}

// Delete handles DELETE /api/v1/admin/<kind>/:id. Deleting a missing record
// succeeds.
func (r *Resource[T, P, C, U]) Delete(c *fiber.Ctx) error {
	id, ok := parseID(c)
	if !ok {
		return response.BadRequest(c, "Invalid "+r.singular+" ID")
	}

	ctx := c.UserContext()
	previous := r.collection.GetByID(ctx, id)

	if err := r.collection.Delete(ctx, id); err != nil {
		zap.S().Errorf("[%s] delete %d failed: %v", r.name, id, err)
		return response.InternalServerError(c, "Failed to delete "+r.singular)
	}

	if previous != nil && r.images != nil {
		r.images.ReplaceImages(ctx, P(previous).ImageURLs(), nil)
	}
	if r.indexer.Enabled() {
		if err := r.indexer.Remove(r.name, id); err != nil {
			zap.S().Warnf("[SEARCH] failed to remove %s %d: %v", r.name, id, err)
		}
	}

	return response.SuccessWithMessage(c, r.label+" deleted successfully", fiber.Map{"id": id})
}

// Reindex pushes every record of the collection to the search index
func (r *Resource[T, P, C, U]) Reindex(ctx context.Context) (int, error) {
	if !r.indexer.Enabled() {
		return 0, nil
	}
	items, err := r.collection.ListAll(ctx, repository.ListFilter{})
	if err != nil {
		return 0, err
	}
	for i := range items {
		if err := r.indexer.Upsert(r.name, r.document(&items[i])); err != nil {
			return i, err
		}
	}
	return len(items), nil
}

// SearchLocal searches the collection in the database
func (r *Resource[T, P, C, U]) SearchLocal(ctx context.Context, term string, limit int) []search.Hit {
	items := r.collection.Search(ctx, term, limit)
	hits := make([]search.Hit, 0, len(items))
	for i := range items {
		hits = append(hits, search.HitFrom(r.name, r.document(&items[i])))
	}
	return hits
}

func (r *Resource[T, P, C, U]) index(item *T) {
	if !r.indexer.Enabled() {
		return
	}
	if err := r.indexer.Upsert(r.name, r.document(item)); err != nil {
		zap.S().Warnf("[SEARCH] failed to index %s %d: %v", r.name, P(item).Identifier(), err)
	}
}
