package repository

import (
	"context"
	"time"

	"github.com/oggyb/storefront/internal/db"
	"github.com/oggyb/storefront/internal/utils/pagination"

	"gorm.io/gorm"
)

// ProductRepository provides data access methods for the Product model.
// It encapsulates the catalog queries the recommendation and tiered-discount
// selectors are built on.
type ProductRepository struct {
	db *gorm.DB
}

// NewProductRepository creates a new repository bound to the given DB connection.
func NewProductRepository(database *gorm.DB) *ProductRepository {
	return &ProductRepository{db: database}
}

// List returns catalog products ordered by created_at DESC, id DESC.
//
// Behavior:
//   - Optional category filter (categoryID != nil).
//   - Cursor-based pagination via paginationToken.
//
// Example:
//
//	repo.List(ctx, nil, nil, 20) // first 20 products, newest first
func (r *ProductRepository) List(
	ctx context.Context,
	categoryID *uint64,
	paginationToken *string,
	limit int,
) ([]db.Product, *string, error) {
	var products []db.Product

	cursor, err := pagination.Decode(getString(paginationToken))
	if err != nil {
		return nil, nil, err
	}

	query := r.db.WithContext(ctx).
		Model(&db.Product{}).
		Preload("Category").
		Order("created_at DESC, id DESC").
		Limit(limit + 1)

	if categoryID != nil {
		query = query.Where("category_id = ?", *categoryID)
	}

	// apply cursor
	if cursor.ID > 0 && cursor.CreatedUnix > 0 {
		ts := time.UnixMilli(cursor.CreatedUnix)
		query = query.Where(
			"(created_at < ? OR (created_at = ? AND id < ?))",
			ts, ts, cursor.ID,
		)
	}

	if err := query.Find(&products).Error; err != nil {
		return nil, nil, err
	}

	// pagination: build next cursor if needed
	var nextToken *string
	if len(products) > limit {
		last := products[limit-1]
		token, _ := pagination.Encode(pagination.Cursor{
			ID:          last.ID,
			CreatedUnix: last.CreatedAt.UnixMilli(),
		})
		nextToken = &token
		products = products[:limit]
	}

	return products, nextToken, nil
}

// GetBySlug returns a single product by its unique slug.
func (r *ProductRepository) GetBySlug(ctx context.Context, slug string) (*db.Product, error) {
	var p db.Product
	err := r.db.WithContext(ctx).
		Preload("Category").
		Where("slug = ?", slug).
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetByID returns a single product by id.
func (r *ProductRepository) GetByID(ctx context.Context, id uint64) (*db.Product, error) {
	var p db.Product
	err := r.db.WithContext(ctx).
		Preload("Category").
		First(&p, id).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// OneInCategory picks the newest product in a category not already selected.
// Returns nil (not an error) when the category has nothing left to offer.
func (r *ProductRepository) OneInCategory(
	ctx context.Context,
	categoryID uint64,
	excludeIDs []uint64,
) (*db.Product, error) {
	var products []db.Product
	query := r.db.WithContext(ctx).
		Where("category_id = ?", categoryID).
		Order("created_at DESC, id DESC").
		Limit(1)
	query = excluding(query, excludeIDs)
	if err := query.Find(&products).Error; err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return nil, nil
	}
	return &products[0], nil
}

// FeaturedLatest returns up to limit featured products, newest first.
func (r *ProductRepository) FeaturedLatest(
	ctx context.Context,
	limit int,
	excludeIDs []uint64,
) ([]db.Product, error) {
	var products []db.Product
	query := r.db.WithContext(ctx).
		Where("featured = ?", true).
		Order("created_at DESC, id DESC").
		Limit(limit)
	query = excluding(query, excludeIDs)
	err := query.Find(&products).Error
	return products, err
}

// Latest returns up to limit most recently created products.
func (r *ProductRepository) Latest(
	ctx context.Context,
	limit int,
	excludeIDs []uint64,
) ([]db.Product, error) {
	var products []db.Product
	query := r.db.WithContext(ctx).
		Order("created_at DESC, id DESC").
		Limit(limit)
	query = excluding(query, excludeIDs)
	err := query.Find(&products).Error
	return products, err
}

// CheapestInPriceRange picks the cheapest not-yet-chosen product in a category
// whose price falls inside (lo, hi]. hi <= 0 means unbounded above.
// Returns nil when the band is empty.
func (r *ProductRepository) CheapestInPriceRange(
	ctx context.Context,
	categoryID uint64,
	lo, hi float64,
	excludeIDs []uint64,
) (*db.Product, error) {
	var products []db.Product
	query := r.db.WithContext(ctx).
		Where("category_id = ? AND price > ?", categoryID, lo).
		Order("price ASC, id ASC").
		Limit(1)
	if hi > 0 {
		query = query.Where("price <= ?", hi)
	}
	query = excluding(query, excludeIDs)
	if err := query.Find(&products).Error; err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return nil, nil
	}
	return &products[0], nil
}

// MostExpensiveInCategory returns the priciest remaining product in a category,
// or nil when none exists.
func (r *ProductRepository) MostExpensiveInCategory(
	ctx context.Context,
	categoryID uint64,
	excludeIDs []uint64,
) (*db.Product, error) {
	var products []db.Product
	query := r.db.WithContext(ctx).
		Where("category_id = ?", categoryID).
		Order("price DESC, id ASC").
		Limit(1)
	query = excluding(query, excludeIDs)
	if err := query.Find(&products).Error; err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return nil, nil
	}
	return &products[0], nil
}

// RecentInCategory returns up to limit products in a category, newest first.
// Used to backfill tiered offers when the price bands come up short.
func (r *ProductRepository) RecentInCategory(
	ctx context.Context,
	categoryID uint64,
	limit int,
	excludeIDs []uint64,
) ([]db.Product, error) {
	var products []db.Product
	query := r.db.WithContext(ctx).
		Where("category_id = ?", categoryID).
		Order("created_at DESC, id DESC").
		Limit(limit)
	query = excluding(query, excludeIDs)
	err := query.Find(&products).Error
	return products, err
}

// excluding filters out already-selected product ids.
func excluding(query *gorm.DB, excludeIDs []uint64) *gorm.DB {
	if len(excludeIDs) > 0 {
		query = query.Where("id NOT IN ?", excludeIDs)
	}
	return query
}

// getString safely dereferences a string pointer for pagination tokens.
func getString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
