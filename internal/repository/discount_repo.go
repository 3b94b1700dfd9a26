package repository

import (
	"context"
	"time"

	"github.com/oggyb/storefront/internal/db"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DiscountRepository provides data access methods for the TemporaryDiscount
// model. The composite PK (user_id, product_id) enforces at most one live
// discount per pair; refreshes land on the same row.
type DiscountRepository struct {
	db *gorm.DB
}

// NewDiscountRepository creates a new repository bound to the given DB connection.
func NewDiscountRepository(database *gorm.DB) *DiscountRepository {
	return &DiscountRepository{db: database}
}

// Get returns the raw row for a pair, expired or not.
// Callers that need live-only semantics go through the merch service.
func (r *DiscountRepository) Get(ctx context.Context, userID, productID uint64) (*db.TemporaryDiscount, error) {
	var d db.TemporaryDiscount
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		First(&d).Error
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// Upsert inserts or fully refreshes a discount row for the pair.
//
// Behavior:
//   - If (user_id, product_id) exists → the row is overwritten with the new
//     prices, window and source; created_at restarts so the 24h retention
//     rule counts from the refresh.
//   - If it doesn't exist → a new row is inserted.
func (r *DiscountRepository) Upsert(ctx context.Context, d *db.TemporaryDiscount) error {
	now := time.Now()
	d.CreatedAt = now
	d.UpdatedAt = now
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "product_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"original_price", "discount_price", "discount_percent",
				"source", "added_to_cart", "expires_at", "created_at", "updated_at",
			}),
		}).
		Create(d).Error
}

// MarkAddedToCart flips the flag only while the discount is unexpired.
// Returns whether a row was actually updated.
func (r *DiscountRepository) MarkAddedToCart(ctx context.Context, userID, productID uint64, now time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&db.TemporaryDiscount{}).
		Where("user_id = ? AND product_id = ? AND expires_at > ?", userID, productID, now).
		Update("added_to_cart", true)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// LiveForUser returns all unexpired discounts for the user, keyed by product id.
// Cart pricing reads from this map so expired rows never reach checkout.
func (r *DiscountRepository) LiveForUser(ctx context.Context, userID uint64, now time.Time) (map[uint64]db.TemporaryDiscount, error) {
	var rows []db.TemporaryDiscount
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND expires_at > ?", userID, now).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[uint64]db.TemporaryDiscount, len(rows))
	for _, d := range rows {
		out[d.ProductID] = d
	}
	return out, nil
}

// Cleanup deletes stale rows in two passes:
//   - expired and never added to cart
//   - added to cart but created more than maxCartAge ago
//
// Safe to run on any cadence; both deletes are idempotent.
func (r *DiscountRepository) Cleanup(ctx context.Context, now time.Time, maxCartAge time.Duration) (expired int64, oldInCart int64, err error) {
	res := r.db.WithContext(ctx).
		Where("expires_at <= ? AND added_to_cart = ?", now, false).
		Delete(&db.TemporaryDiscount{})
	if res.Error != nil {
		return 0, 0, res.Error
	}
	expired = res.RowsAffected

	res = r.db.WithContext(ctx).
		Where("created_at <= ? AND added_to_cart = ?", now.Add(-maxCartAge), true).
		Delete(&db.TemporaryDiscount{})
	if res.Error != nil {
		return expired, 0, res.Error
	}
	oldInCart = res.RowsAffected

	return expired, oldInCart, nil
}
