package wishlist

import (
	"context"
	"errors"
	"strconv"

	"github.com/oggyb/storefront/internal/app"
	"github.com/oggyb/storefront/internal/db"
	svcErr "github.com/oggyb/storefront/internal/errors"
	"github.com/oggyb/storefront/internal/repository"

	"gorm.io/gorm"
)

// Service implements wishlist operations with a Redis-cached size counter.
type Service struct {
	appCtx       *app.AppContext
	wishlistRepo *repository.WishlistRepository
	productRepo  *repository.ProductRepository
}

// NewWishlistService creates a new wishlist service with dependencies from
// AppContext.
func NewWishlistService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx:       appCtx,
		wishlistRepo: repository.NewWishlistRepository(appCtx.DB),
		productRepo:  repository.NewProductRepository(appCtx.DB),
	}
}

// Add saves a product to the wishlist; re-adding is a no-op.
func (s *Service) Add(ctx context.Context, userID, productID uint64) error {
	if _, err := s.productRepo.GetByID(ctx, productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return svcErr.NotFound("product not found")
		}
		return err
	}
	if err := s.wishlistRepo.Add(ctx, userID, productID); err != nil {
		return err
	}
	_ = s.appCtx.RedisCache.InvalidateWishlistCount(ctx, userID)
	return nil
}

// Remove drops a product from the wishlist.
func (s *Service) Remove(ctx context.Context, userID, productID uint64) error {
	if err := s.wishlistRepo.Remove(ctx, userID, productID); err != nil {
		return err
	}
	_ = s.appCtx.RedisCache.InvalidateWishlistCount(ctx, userID)
	return nil
}

// List returns the user's wishlist, newest first.
func (s *Service) List(ctx context.Context, userID uint64) ([]db.WishlistItem, error) {
	return s.wishlistRepo.List(ctx, userID)
}

// Count returns the wishlist size.
// Cache-first strategy:
//  1. Attempts to read wishlist:count:userID from Redis.
//  2. On cache miss, falls back to DB and writes the count back with a TTL.
func (s *Service) Count(ctx context.Context, userID uint64) (int64, error) {
	if n, ok, err := s.appCtx.RedisCache.GetWishlistCount(ctx, userID); err == nil && ok {
		return n, nil
	}

	count, err := s.wishlistRepo.Count(ctx, userID)
	if err != nil {
		return 0, err
	}

	if err := s.appCtx.RedisCache.UpdateWishlistCount(ctx, userID, count); err != nil {
		s.appCtx.Logger.Debug("failed to cache wishlist count",
			"user_id", strconv.FormatUint(userID, 10), "err", err)
	}

	return count, nil
}
