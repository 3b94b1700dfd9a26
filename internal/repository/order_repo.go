package repository

import (
	"context"

	"github.com/oggyb/storefront/internal/db"

	"gorm.io/gorm"
)

// OrderRepository provides data access methods for orders and their lines.
type OrderRepository struct {
	db *gorm.DB
}

// NewOrderRepository creates a new repository bound to the given DB connection.
func NewOrderRepository(database *gorm.DB) *OrderRepository {
	return &OrderRepository{db: database}
}

// CreateFromCart writes the order header plus lines and empties the cart in
// one transaction, so a checkout either fully lands or not at all.
func (r *OrderRepository) CreateFromCart(ctx context.Context, order *db.Order) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(order).Error; err != nil {
			return err
		}
		return tx.Where("user_id = ?", order.UserID).Delete(&db.CartItem{}).Error
	})
}

// ListByUser returns the user's orders, newest first, lines preloaded.
func (r *OrderRepository) ListByUser(ctx context.Context, userID uint64) ([]db.Order, error) {
	var orders []db.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Items.Product").
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&orders).Error
	return orders, err
}

// GetForUser returns one order scoped to its owner.
// Another user's order id yields gorm.ErrRecordNotFound, not a leak.
func (r *OrderRepository) GetForUser(ctx context.Context, userID, orderID uint64) (*db.Order, error) {
	var o db.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Items.Product").
		Where("id = ? AND user_id = ?", orderID, userID).
		First(&o).Error
	if err != nil {
		return nil, err
	}
	return &o, nil
}
