package repository

import (
	"context"

	"github.com/oggyb/storefront/internal/db"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// WishlistRepository provides data access methods for the WishlistItem model.
type WishlistRepository struct {
	db *gorm.DB
}

// NewWishlistRepository creates a new repository bound to the given DB connection.
func NewWishlistRepository(database *gorm.DB) *WishlistRepository {
	return &WishlistRepository{db: database}
}

// Add inserts a wishlist row; re-adding an existing pair is a no-op.
func (r *WishlistRepository) Add(ctx context.Context, userID, productID uint64) error {
	item := db.WishlistItem{UserID: userID, ProductID: productID}
	return r.db.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "product_id"}},
			DoNothing: true,
		}).
		Create(&item).Error
}

// Remove deletes a wishlist row. Removing an absent row is not an error.
func (r *WishlistRepository) Remove(ctx context.Context, userID, productID uint64) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Delete(&db.WishlistItem{}).Error
}

// List returns the user's wishlist with products preloaded, newest first.
func (r *WishlistRepository) List(ctx context.Context, userID uint64) ([]db.WishlistItem, error) {
	var items []db.WishlistItem
	err := r.db.WithContext(ctx).
		Preload("Product").
		Preload("Product.Category").
		Where("user_id = ?", userID).
		Order("created_at DESC, product_id DESC").
		Find(&items).Error
	return items, err
}

// Count returns the wishlist size. Used as the DB fallback behind the
// Redis-cached counter.
func (r *WishlistRepository) Count(ctx context.Context, userID uint64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&db.WishlistItem{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	return count, err
}
