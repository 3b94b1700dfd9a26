package repository

import (
	"context"

	"github.com/oggyb/storefront/internal/db"

	"gorm.io/gorm"
)

// CategoryRepository resolves category slugs to rows and lists the catalog tree.
type CategoryRepository struct {
	db *gorm.DB
}

// NewCategoryRepository creates a new repository bound to the given DB connection.
func NewCategoryRepository(database *gorm.DB) *CategoryRepository {
	return &CategoryRepository{db: database}
}

// GetBySlug resolves a category slug to its row.
func (r *CategoryRepository) GetBySlug(ctx context.Context, slug string) (*db.Category, error) {
	var c db.Category
	err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// List returns all categories ordered by name.
func (r *CategoryRepository) List(ctx context.Context) ([]db.Category, error) {
	var categories []db.Category
	err := r.db.WithContext(ctx).Order("name ASC").Find(&categories).Error
	return categories, err
}
