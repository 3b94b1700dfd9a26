package repository

import (
	"context"

	"github.com/oggyb/storefront/internal/db"

	"gorm.io/gorm"
)

// AdRepository lists the advertisements the merchandising surfaces render.
type AdRepository struct {
	db *gorm.DB
}

// NewAdRepository creates a new repository bound to the given DB connection.
func NewAdRepository(database *gorm.DB) *AdRepository {
	return &AdRepository{db: database}
}

// ListActive returns active ads, optionally filtered by placement.
func (r *AdRepository) ListActive(ctx context.Context, placement string) ([]db.Advertisement, error) {
	var ads []db.Advertisement
	query := r.db.WithContext(ctx).
		Where("active = ?", true).
		Order("created_at DESC, id DESC")
	if placement != "" {
		query = query.Where("placement = ?", placement)
	}
	err := query.Find(&ads).Error
	return ads, err
}
