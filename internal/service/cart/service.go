package cart

import (
	"context"
	"errors"
	"time"

	"github.com/oggyb/storefront/internal/app"
	"github.com/oggyb/storefront/internal/db"
	svcErr "github.com/oggyb/storefront/internal/errors"
	"github.com/oggyb/storefront/internal/repository"
	"github.com/oggyb/storefront/internal/utils/money"

	"gorm.io/gorm"
)

// VolumeDiscountPercent is the extra reduction on the cart subtotal once the
// cart holds more than one distinct product.
const VolumeDiscountPercent = 1.5

// VolumeDiscountRate is pure: the subtotal multiplier earned by carrying
// more than one distinct product. It applies to the subtotal only, never to
// tax or shipping.
func VolumeDiscountRate(distinctProducts int) float64 {
	if distinctProducts > 1 {
		return VolumeDiscountPercent / 100
	}
	return 0
}

// PricedItem is one cart line with its effective unit price resolved.
type PricedItem struct {
	Product         db.Product `json:"product"`
	Quantity        int        `json:"quantity"`
	UnitPrice       float64    `json:"unitPrice"`
	LineTotal       float64    `json:"lineTotal"`
	DiscountApplied bool       `json:"discountApplied"`
}

// Summary is the fully priced cart: per-item temporary discounts first,
// then the volume discount on the subtotal.
type Summary struct {
	Items              []PricedItem `json:"items"`
	Subtotal           float64      `json:"subtotal"`
	VolumeDiscountRate float64      `json:"volumeDiscountRate"`
	VolumeDiscount     float64      `json:"volumeDiscount"`
	Total              float64      `json:"total"`
}

// Service implements cart operations and cart pricing.
type Service struct {
	appCtx       *app.AppContext
	cartRepo     *repository.CartRepository
	productRepo  *repository.ProductRepository
	discountRepo *repository.DiscountRepository
}

// NewCartService creates a new cart service with dependencies from AppContext.
func NewCartService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx:       appCtx,
		cartRepo:     repository.NewCartRepository(appCtx.DB),
		productRepo:  repository.NewProductRepository(appCtx.DB),
		discountRepo: repository.NewDiscountRepository(appCtx.DB),
	}
}

// Add puts qty units of a product into the user's cart (incrementing the
// existing line if present). A live temporary discount on the product is
// flagged added-to-cart so the sweep keeps it for the 24h grace period.
func (s *Service) Add(ctx context.Context, userID, productID uint64, qty int) error {
	if qty <= 0 {
		return svcErr.InvalidArgument("quantity must be positive")
	}

	if _, err := s.productRepo.GetByID(ctx, productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return svcErr.NotFound("product not found")
		}
		return err
	}

	if err := s.cartRepo.AddItem(ctx, userID, productID, qty); err != nil {
		return err
	}

	flipped, err := s.discountRepo.MarkAddedToCart(ctx, userID, productID, time.Now())
	if err != nil {
		// pricing still works without the flag; log and move on
		s.appCtx.Logger.Warn("failed to flag discount as carted",
			"user_id", userID, "product_id", productID, "err", err)
	} else if flipped {
		s.appCtx.Logger.Debug("discount flagged as carted",
			"user_id", userID, "product_id", productID)
	}

	return nil
}

// SetQuantity overwrites a line's quantity; zero or below removes the line.
func (s *Service) SetQuantity(ctx context.Context, userID, productID uint64, qty int) error {
	return s.cartRepo.SetQuantity(ctx, userID, productID, qty)
}

// Remove deletes a line from the cart.
func (s *Service) Remove(ctx context.Context, userID, productID uint64) error {
	return s.cartRepo.RemoveItem(ctx, userID, productID)
}

// Summarize prices the cart at the current instant.
//
// Per line: a live (unexpired) temporary discount overrides the unit price;
// expired discounts are ignored even if their rows still exist. The volume
// discount then applies to the subtotal when the cart holds more than one
// distinct product.
func (s *Service) Summarize(ctx context.Context, userID uint64) (*Summary, error) {
	items, err := s.cartRepo.ListItems(ctx, userID)
	if err != nil {
		return nil, err
	}

	live, err := s.discountRepo.LiveForUser(ctx, userID, time.Now())
	if err != nil {
		return nil, err
	}

	summary := &Summary{Items: make([]PricedItem, 0, len(items))}
	for _, item := range items {
		unit := item.Product.Price
		discountApplied := false
		if d, ok := live[item.ProductID]; ok {
			unit = d.DiscountPrice
			discountApplied = true
		}
		line := money.Round2(unit * float64(item.Quantity))
		summary.Items = append(summary.Items, PricedItem{
			Product:         item.Product,
			Quantity:        item.Quantity,
			UnitPrice:       unit,
			LineTotal:       line,
			DiscountApplied: discountApplied,
		})
		summary.Subtotal += line
	}
	summary.Subtotal = money.Round2(summary.Subtotal)

	summary.VolumeDiscountRate = VolumeDiscountRate(len(items))
	summary.VolumeDiscount = money.Round2(summary.Subtotal * summary.VolumeDiscountRate)
	summary.Total = money.Round2(summary.Subtotal - summary.VolumeDiscount)

	return summary, nil
}
