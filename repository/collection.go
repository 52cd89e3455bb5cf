package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ErrNotFound is returned by write operations that target a missing record
var ErrNotFound = errors.New("record not found")

// Record is the pointer constraint satisfied by every content model that
// embeds model.Base.
type Record[T any] interface {
	*T
	Identifier() uint
	Stamp(now time.Time)
}

// Patch is a partial update: only the returned columns are written
type Patch interface {
	Columns() map[string]interface{}
}

// ListFilter narrows a listing
type ListFilter struct {
	FeaturedOnly bool
	Category     string
}

// Options configures a collection for one record kind
type Options struct {
	// Name identifies the collection in logs and search indexes
	Name string
	// VisibleColumn is the boolean column public listings require to be true
	VisibleColumn string
	// CategoryColumn is the column matched by ListFilter.Category
	CategoryColumn string
	// FeaturedLimit caps featured-only listings
	FeaturedLimit int
	// SearchColumns are matched by Search
	SearchColumns []string
}

// Collection provides typed CRUD access to one table.
//
// Reads are best effort: failures are logged and degrade to an empty list or
// nil record. Writes return their errors to the caller.
type Collection[T any, P Record[T]] struct {
	db   *gorm.DB
	opts Options
	now  func() time.Time
}

// NewCollection creates a collection over db
func NewCollection[T any, P Record[T]](db *gorm.DB, opts Options) *Collection[T, P] {
	if opts.CategoryColumn == "" {
		opts.CategoryColumn = "category"
	}
	if opts.FeaturedLimit <= 0 {
		opts.FeaturedLimit = 3
	}
	return &Collection[T, P]{
		db:   db,
		opts: opts,
		now:  time.Now,
	}
}

// WithClock replaces the time source used for timestamps
func (c *Collection[T, P]) WithClock(now func() time.Time) *Collection[T, P] {
	c.now = now
	return c
}

// Name returns the collection name
func (c *Collection[T, P]) Name() string {
	return c.opts.Name
}

// List returns publicly visible records, newest first
func (c *Collection[T, P]) List(ctx context.Context, filter ListFilter) []T {
	query := c.db.WithContext(ctx).Model(new(T))
	if c.opts.VisibleColumn != "" {
		query = query.Where(map[string]interface{}{c.opts.VisibleColumn: true})
	}
	query = c.applyFilter(query, filter)

	records := []T{}
	if err := query.Order("created_at DESC, id DESC").Find(&records).Error; err != nil {
		zap.S().Errorf("[%s] list failed: %v", c.opts.Name, err)
		return []T{}
	}
	return records
}

// ListAll returns every record including hidden ones, newest first. Used by
// admin screens, which need to see read failures.
func (c *Collection[T, P]) ListAll(ctx context.Context, filter ListFilter) ([]T, error) {
	query := c.applyFilter(c.db.WithContext(ctx).Model(new(T)), filter)

	records := []T{}
	if err := query.Order("created_at DESC, id DESC").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", c.opts.Name, err)
	}
	return records, nil
}

// Count returns the number of records and how many of them are publicly
// visible
func (c *Collection[T, P]) Count(ctx context.Context) (total, visible int64, err error) {
	db := c.db.WithContext(ctx)
	if err := db.Model(new(T)).Count(&total).Error; err != nil {
		return 0, 0, fmt.Errorf("failed to count %s: %w", c.opts.Name, err)
	}
	if c.opts.VisibleColumn == "" {
		return total, total, nil
	}
	if err := db.Model(new(T)).Where(map[string]interface{}{c.opts.VisibleColumn: true}).Count(&visible).Error; err != nil {
		return 0, 0, fmt.Errorf("failed to count visible %s: %w", c.opts.Name, err)
	}
	return total, visible, nil
}

// GetByID returns the record or nil when it does not exist or cannot be read
func (c *Collection[T, P]) GetByID(ctx context.Context, id uint) *T {
	if id == 0 {
		return nil
	}
	record := new(T)
	if err := c.db.WithContext(ctx).First(record, id).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			zap.S().Errorf("[%s] get %d failed: %v", c.opts.Name, id, err)
		}
		return nil
	}
	return record
}

// GetVisible is GetByID restricted to publicly visible records
func (c *Collection[T, P]) GetVisible(ctx context.Context, id uint) *T {
	if id == 0 {
		return nil
	}
	query := c.db.WithContext(ctx)
	if c.opts.VisibleColumn != "" {
		query = query.Where(map[string]interface{}{c.opts.VisibleColumn: true})
	}
	record := new(T)
	if err := query.First(record, id).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			zap.S().Errorf("[%s] get %d failed: %v", c.opts.Name, id, err)
		}
		return nil
	}
	return record
}

// Create inserts record and returns its assigned id
func (c *Collection[T, P]) Create(ctx context.Context, record P) (uint, error) {
	record.Stamp(c.timestamp())
	if err := c.db.WithContext(ctx).Create(record).Error; err != nil {
		return 0, fmt.Errorf("failed to create %s: %w", c.opts.Name, err)
	}
	return record.Identifier(), nil
}

// Update merges the patch's columns into the record and moves updated_at
// forward. The new updated_at is always strictly later than the stored one.
func (c *Collection[T, P]) Update(ctx context.Context, id uint, patch Patch) error {
	columns := patch.Columns()
	delete(columns, "id")
	delete(columns, "created_at")

	err := c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current struct {
			UpdatedAt time.Time
		}
		if err := tx.Model(new(T)).Select("updated_at").Where("id = ?", id).Take(&current).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		updatedAt := c.timestamp()
		if !updatedAt.After(current.UpdatedAt) {
			updatedAt = current.UpdatedAt.Add(time.Microsecond)
		}
		columns["updated_at"] = updatedAt

		return tx.Model(new(T)).Where("id = ?", id).Updates(columns).Error
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return fmt.Errorf("%s %d: %w", c.opts.Name, id, ErrNotFound)
		}
		return fmt.Errorf("failed to update %s %d: %w", c.opts.Name, id, err)
	}
	return nil
}

// Delete removes the record permanently. Deleting a missing id is not an error.
func (c *Collection[T, P]) Delete(ctx context.Context, id uint) error {
	if err := c.db.WithContext(ctx).Delete(new(T), id).Error; err != nil {
		return fmt.Errorf("failed to delete %s %d: %w", c.opts.Name, id, err)
	}
	return nil
}

// Search returns visible records whose search columns contain term
func (c *Collection[T, P]) Search(ctx context.Context, term string, limit int) []T {
	term = strings.TrimSpace(strings.ToLower(term))
	if term == "" || len(c.opts.SearchColumns) == 0 {
		return []T{}
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	query := c.db.WithContext(ctx).Model(new(T))
	if c.opts.VisibleColumn != "" {
		query = query.Where(map[string]interface{}{c.opts.VisibleColumn: true})
	}

	like := "%" + term + "%"
	conditions := make([]string, 0, len(c.opts.SearchColumns))
	args := make([]interface{}, 0, len(c.opts.SearchColumns))
	for _, column := range c.opts.SearchColumns {
		conditions = append(conditions, "LOWER("+column+") LIKE ?")
		args = append(args, like)
	}
	query = query.Where(strings.Join(conditions, " OR "), args...)

	records := []T{}
	if err := query.Order("created_at DESC, id DESC").Limit(limit).Find(&records).Error; err != nil {
		zap.S().Errorf("[%s] search failed: %v", c.opts.Name, err)
		return []T{}
	}
	return records
}

// timestamp returns now at the precision Postgres stores
func (c *Collection[T, P]) timestamp() time.Time {
	return c.now().UTC().Truncate(time.Microsecond)
}

func (c *Collection[T, P]) applyFilter(query *gorm.DB, filter ListFilter) *gorm.DB {
	if filter.Category != "" {
		query = query.Where(map[string]interface{}{c.opts.CategoryColumn: filter.Category})
	}
	if filter.FeaturedOnly {
		query = query.Where(map[string]interface{}{"featured": true}).Limit(c.opts.FeaturedLimit)
	}
	return query
}
