package merch

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

const (
	// DiscountWindow is how long a clicked offer stays valid.
	DiscountWindow = 10 * time.Minute

	// MaxCartDiscountAge is how long an added-to-cart discount survives
	// before the sweep reclaims it.
	MaxCartDiscountAge = 24 * time.Hour

	// StandardDiscountPercent applies to the three price-band picks.
	StandardDiscountPercent = 8

	// PremiumDiscountPercent applies to the single upsell pick.
	PremiumDiscountPercent = 16

	// maxViewedForRecommend caps how many recently viewed categories seed
	// the recommendation list.
	maxViewedForRecommend = 4
)

// Price band edges for tiered offers, in post-discount terms.
var bands = []struct {
	lo, hi float64 // hi == 0 means unbounded above
	tag    string
}{
	{0, 350, "low"},
	{350, 700, "mid"},
	{700, 0, "high"},
}

// DiscountedProduct is one tiered-offer entry.
type DiscountedProduct struct {
	Product         db.Product `json:"product"`
	OriginalPrice   float64    `json:"originalPrice"`
	DiscountPrice   float64    `json:"discountPrice"`
	DiscountPercent float64    `json:"discountPercent"`
	Range           string     `json:"range"` // low | mid | high | special | premium
}

// TieredOffer is the sidebar payload: a cross-sell category plus up to four
// discounted products (three banded picks and one premium upsell).
type TieredOffer struct {
	Category db.Category         `json:"category"`
	Products []DiscountedProduct `json:"products"`
}

// Service implements the personalized merchandising engine: recommendation
// selection, tiered discount selection, and the temporary discount ledger.
type Service struct {
	appCtx       *app.AppContext
	productRepo  *repository.ProductRepository
	categoryRepo *repository.CategoryRepository
	discountRepo *repository.DiscountRepository
}

// NewMerchService creates a new merchandising service with dependencies
// from AppContext.
func NewMerchService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx:       appCtx,
		productRepo:  repository.NewProductRepository(appCtx.DB),
		categoryRepo: repository.NewCategoryRepository(appCtx.DB),
		discountRepo: repository.NewDiscountRepository(appCtx.DB),
	}
}

// Recommend picks up to limit distinct products for a user.
//
// Source order:
//  1. The most recently viewed categories (up to 4, newest first), one
//     product each.
//  2. Favorite categories, excluding already-selected products.
//  3. Featured products.
//  4. Most recently created products.
//
// Anonymous users (nil preferences) get the limit newest featured products.
// A short result when the catalog is exhausted is acceptable, not an error.
func (s *Service) Recommend(ctx context.Context, prefs *db.UserPreferences, limit int) ([]db.Product, error) {
	if limit <= 0 {
		limit = 4
	}
	if limit > 50 {
		limit = 50
	}

	if prefs == nil {
		return s.productRepo.FeaturedLatest(ctx, limit, nil)
	}

	selected := make([]db.Product, 0, limit)
	var selectedIDs []uint64
	pick := func(p db.Product) {
		selected = append(selected, p)
		selectedIDs = append(selectedIDs, p.ID)
	}

	// 1. recently viewed categories, newest first
	for _, slug := range prefs.RecentCategories(maxViewedForRecommend) {
		if len(selected) >= limit {
			return selected, nil
		}
		cat, err := s.categoryRepo.GetBySlug(ctx, slug)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			continue // stale slug in preferences
		} else if err != nil {
			return nil, err
		}
		p, err := s.productRepo.OneInCategory(ctx, cat.ID, selectedIDs)
		if err != nil {
			return nil, err
		}
		if p != nil {
			pick(*p)
		}
	}

	// 2. favorite categories
	for _, slug := range prefs.FavoriteCategories {
		if len(selected) >= limit {
			return selected, nil
		}
		cat, err := s.categoryRepo.GetBySlug(ctx, slug)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			continue
		} else if err != nil {
			return nil, err
		}
		more, err := s.productRepo.RecentInCategory(ctx, cat.ID, limit-len(selected), selectedIDs)
		if err != nil {
			return nil, err
		}
		for _, p := range more {
			pick(p)
		}
	}

	// 3. featured fallback
	if len(selected) < limit {
		more, err := s.productRepo.FeaturedLatest(ctx, limit-len(selected), selectedIDs)
		if err != nil {
			return nil, err
		}
		for _, p := range more {
			pick(p)
		}
	}

	// 4. newest products fallback
	if len(selected) < limit {
		more, err := s.productRepo.Latest(ctx, limit-len(selected), selectedIDs)
		if err != nil {
			return nil, err
		}
		for _, p := range more {
			pick(p)
		}
	}

	return selected, nil
}

// TieredDiscounts builds the sidebar offer for a user viewing currentSlug.
//
// Target category resolution:
//   - current category is itself a favorite → the user's other favorite
//   - else → the user's first favorite
//   - no favorites → the current category itself
//
// Per ascending price band the cheapest remaining product whose price/0.92
// stays in-band is offered at 8% off. Fewer than 2 banded picks → backfill
// from the target category by recency at 8%, tagged "special". The offer
// closes with the priciest remaining product of the *current* category at
// 16% off, tagged "premium" (silently omitted when the category is empty).
func (s *Service) TieredDiscounts(ctx context.Context, prefs *db.UserPreferences, currentSlug string) (*TieredOffer, error) {
	currentCat, err := s.categoryRepo.GetBySlug(ctx, currentSlug)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, svcErr.NotFound("category not found")
	} else if err != nil {
		return nil, err
	}

	targetSlug := currentSlug
	if prefs != nil && len(prefs.FavoriteCategories) > 0 {
		targetSlug = prefs.FavoriteCategories[0]
		if prefs.HasFavorite(currentSlug) {
			for _, slug := range prefs.FavoriteCategories {
				if slug != currentSlug {
					targetSlug = slug
					break
				}
			}
		}
	}

	targetCat := currentCat
	if targetSlug != currentSlug {
		targetCat, err = s.categoryRepo.GetBySlug(ctx, targetSlug)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, svcErr.NotFound("category not found")
		} else if err != nil {
			return nil, err
		}
	}

	offer := &TieredOffer{Category: *targetCat}
	var selectedIDs []uint64

	for _, band := range bands {
		// pre-discount filter keeping the discounted price inside the band
		lo := band.lo * 0.92
		hi := band.hi * 0.92
		p, err := s.productRepo.CheapestInPriceRange(ctx, targetCat.ID, lo, hi, selectedIDs)
		if err != nil {
			return nil, err
		}
		if p == nil {
			continue
		}
		offer.Products = append(offer.Products, discounted(*p, StandardDiscountPercent, band.tag))
		selectedIDs = append(selectedIDs, p.ID)
	}

	if len(offer.Products) < 2 {
		backfill, err := s.productRepo.RecentInCategory(ctx, targetCat.ID, len(bands)-len(offer.Products), selectedIDs)
		if err != nil {
			return nil, err
		}
		for _, p := range backfill {
			offer.Products = append(offer.Products, discounted(p, StandardDiscountPercent, "special"))
			selectedIDs = append(selectedIDs, p.ID)
		}
	}

	premium, err := s.productRepo.MostExpensiveInCategory(ctx, currentCat.ID, selectedIDs)
	if err != nil {
		return nil, err
	}
	if premium != nil {
		offer.Products = append(offer.Products, discounted(*premium, PremiumDiscountPercent, "premium"))
	}

	return offer, nil
}

func discounted(p db.Product, percent float64, tag string) DiscountedProduct {
	return DiscountedProduct{
		Product:         p,
		OriginalPrice:   p.Price,
		DiscountPrice:   money.Round2(p.Price * (1 - percent/100)),
		DiscountPercent: percent,
		Range:           tag,
	}
}

// CreateOrRefreshDiscount upserts the (user, product) discount row.
//
// Behavior:
//   - An unexpired row is returned unchanged: re-clicking an offer inside
//     the 10-minute window is idempotent.
//   - Otherwise the discount is recomputed from the product's *current*
//     price and the window restarts.
func (s *Service) CreateOrRefreshDiscount(ctx context.Context, userID, productID uint64, percent float64, source string) (*db.TemporaryDiscount, error) {
	if percent <= 0 {
		percent = StandardDiscountPercent
	}
	if percent >= 100 {
		return nil, svcErr.InvalidArgument("discountPercent must be below 100")
	}

	now := time.Now()

	existing, err := s.discountRepo.Get(ctx, userID, productID)
	if err == nil && !existing.Expired(now) {
		s.appCtx.Logger.Debug("discount still live, returning unchanged",
			"user_id", userID, "product_id", productID, "expires_at", existing.ExpiresAt)
		return existing, nil
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	product, err := s.productRepo.GetByID(ctx, productID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, svcErr.NotFound("product not found")
	} else if err != nil {
		return nil, err
	}

	d := &db.TemporaryDiscount{
		UserID:          userID,
		ProductID:       productID,
		OriginalPrice:   product.Price,
		DiscountPrice:   money.Round2(product.Price * (1 - percent/100)),
		DiscountPercent: percent,
		Source:          source,
		AddedToCart:     false,
		ExpiresAt:       now.Add(DiscountWindow),
	}
	if err := s.discountRepo.Upsert(ctx, d); err != nil {
		return nil, err
	}

	s.appCtx.Logger.Info("temporary discount created",
		"user_id", userID, "product_id", productID,
		"percent", percent, "source", source, "expires_at", d.ExpiresAt)

	return d, nil
}

// MarkDiscountAddedToCart flips the added-to-cart flag while the window is
// still open. Returns false when the discount is absent or already expired.
func (s *Service) MarkDiscountAddedToCart(ctx context.Context, userID, productID uint64) (bool, error) {
	return s.discountRepo.MarkAddedToCart(ctx, userID, productID, time.Now())
}

// GetDiscount returns the live discount for a pair, or nil when absent or
// expired. Expiry is lazy: the stale row may sit in the table until the
// sweep, but it is never surfaced.
func (s *Service) GetDiscount(ctx context.Context, userID, productID uint64) (*db.TemporaryDiscount, error) {
	d, err := s.discountRepo.Get(ctx, userID, productID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	if d.Expired(time.Now()) {
		return nil, nil
	}
	return d, nil
}

// CleanupResult reports what the sweep deleted.
type CleanupResult struct {
	ExpiredDiscountsDeleted int64 `json:"expiredDiscountsDeleted"`
	OldCartDiscountsDeleted int64 `json:"oldCartDiscountsDeleted"`
	TotalDeleted            int64 `json:"totalDeleted"`
}

// CleanupDiscounts runs the housekeeping sweep: expired never-carted rows
// and carted rows older than 24h are removed. Correctness never depends on
// it; readers already treat expired rows as absent.
func (s *Service) CleanupDiscounts(ctx context.Context) (*CleanupResult, error) {
	expired, oldInCart, err := s.discountRepo.Cleanup(ctx, time.Now(), MaxCartDiscountAge)
	if err != nil {
		return nil, err
	}
	res := &CleanupResult{
		ExpiredDiscountsDeleted: expired,
		OldCartDiscountsDeleted: oldInCart,
		TotalDeleted:            expired + oldInCart,
	}
	s.appCtx.Logger.Info("discount cleanup sweep",
		"expired", expired, "old_in_cart", oldInCart)
	return res, nil
}
