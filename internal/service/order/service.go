package order

import (
	"context"
	"errors"

	"github.com/oggyb/storefront/internal/app"
	"github.com/oggyb/storefront/internal/db"
	svcErr "github.com/oggyb/storefront/internal/errors"
	"github.com/oggyb/storefront/internal/repository"
	cartsvc "github.com/oggyb/storefront/internal/service/cart"

	"gorm.io/gorm"
)

// Service implements checkout and order history.
type Service struct {
	appCtx    *app.AppContext
	orderRepo *repository.OrderRepository
	cartSvc   *cartsvc.Service
}

// NewOrderService creates a new order service with dependencies from
// AppContext.
func NewOrderService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx:    appCtx,
		orderRepo: repository.NewOrderRepository(appCtx.DB),
		cartSvc:   cartsvc.NewCartService(appCtx),
	}
}

// Checkout turns the current cart into an order.
//
// The cart is priced at this instant (live temporary discounts per line,
// volume discount on the subtotal); the resulting unit prices are
// snapshotted onto the order lines and the cart is emptied, all in one
// transaction.
func (s *Service) Checkout(ctx context.Context, userID uint64) (*db.Order, error) {
	summary, err := s.cartSvc.Summarize(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(summary.Items) == 0 {
		return nil, svcErr.InvalidArgument("cart is empty")
	}

	o := &db.Order{
		UserID:         userID,
		Status:         "pending",
		Subtotal:       summary.Subtotal,
		VolumeDiscount: summary.VolumeDiscount,
		Total:          summary.Total,
	}
	for _, item := range summary.Items {
		o.Items = append(o.Items, db.OrderItem{
			ProductID: item.Product.ID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}

	if err := s.orderRepo.CreateFromCart(ctx, o); err != nil {
		return nil, err
	}

	s.appCtx.Logger.Info("order placed",
		"user_id", userID, "order_id", o.ID,
		"items", len(o.Items), "total", o.Total)

	return o, nil
}

// List returns the user's order history, newest first.
func (s *Service) List(ctx context.Context, userID uint64) ([]db.Order, error) {
	return s.orderRepo.ListByUser(ctx, userID)
}

// Get returns one of the user's orders by id.
func (s *Service) Get(ctx context.Context, userID, orderID uint64) (*db.Order, error) {
	o, err := s.orderRepo.GetForUser(ctx, userID, orderID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, svcErr.NotFound("order not found")
	} else if err != nil {
		return nil, err
	}
	return o, nil
}
