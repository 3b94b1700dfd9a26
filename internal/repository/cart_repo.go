package repository

import (
	"context"

	"github.com/oggyb/storefront/internal/db"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CartRepository provides data access methods for the CartItem model.
// All methods are keyed by the owning user; the composite PK
// (user_id, product_id) gives the one-row-per-pair guarantee.
type CartRepository struct {
	db *gorm.DB
}

// NewCartRepository creates a new repository bound to the given DB connection.
func NewCartRepository(database *gorm.DB) *CartRepository {
	return &CartRepository{db: database}
}

// AddItem inserts a cart row or increments the quantity of an existing one.
//
// Behavior:
//   - If (user_id, product_id) exists → quantity += qty.
//   - If it doesn't → a new row with the given quantity is inserted.
//   - Upsert atomicity comes from the database's conflict handling.
//
// Example:
//
//	repo.AddItem(ctx, 1, 7, 2) // user 1 adds two of product 7
func (r *CartRepository) AddItem(ctx context.Context, userID, productID uint64, qty int) error {
	item := db.CartItem{
		UserID:    userID,
		ProductID: productID,
		Quantity:  qty,
	}
	return r.db.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "product_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"quantity": gorm.Expr("cart_items.quantity + ?", qty),
			}),
		}).
		Create(&item).Error
}

// SetQuantity overwrites the quantity for a pair; qty <= 0 removes the row.
func (r *CartRepository) SetQuantity(ctx context.Context, userID, productID uint64, qty int) error {
	if qty <= 0 {
		return r.RemoveItem(ctx, userID, productID)
	}
	res := r.db.WithContext(ctx).
		Model(&db.CartItem{}).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Update("quantity", qty)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// RemoveItem deletes a cart row. Removing an absent row is not an error.
func (r *CartRepository) RemoveItem(ctx context.Context, userID, productID uint64) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Delete(&db.CartItem{}).Error
}

// ListItems returns the user's cart with products preloaded, oldest first.
func (r *CartRepository) ListItems(ctx context.Context, userID uint64) ([]db.CartItem, error) {
	var items []db.CartItem
	err := r.db.WithContext(ctx).
		Preload("Product").
		Preload("Product.Category").
		Where("user_id = ?", userID).
		Order("created_at ASC, product_id ASC").
		Find(&items).Error
	return items, err
}

// CountDistinct returns how many distinct products the cart holds.
// Feeds the volume discount rate.
func (r *CartRepository) CountDistinct(ctx context.Context, userID uint64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&db.CartItem{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	return count, err
}

// Clear empties the user's cart (checkout).
func (r *CartRepository) Clear(ctx context.Context, userID uint64) error {
	return r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&db.CartItem{}).Error
}
