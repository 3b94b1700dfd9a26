package merch_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/oggyb/storefront/internal/app"
	"github.com/oggyb/storefront/internal/cache"
	"github.com/oggyb/storefront/internal/config"
	"github.com/oggyb/storefront/internal/db"
	"github.com/oggyb/storefront/internal/logger"
	"github.com/oggyb/storefront/internal/service/merch"
)

//
// Test helpers
//

// seedCatalog wipes the DB and inserts a deterministic catalog.
//
// Dataset:
//   - Categories: smartphones, laptops, audio
//   - Laptops cover all three tiered price bands: 299.99 (low), 549.99 (mid),
//     1299.99 (high) plus a 2399.00 workstation.
//   - Smartphones: 199.99 featured, 499.00, and a 1799.00 flagship (the
//     premium upsell candidate).
//   - Audio: one cheap featured product.
//
// This dataset exercises band selection, backfill, the premium pick, and
// every recommendation fallback.
func seedCatalog(t *testing.T, gdb *gorm.DB) map[string]db.Category {
	t.Helper()

	require.NoError(t, gdb.Exec("DELETE FROM temporary_discounts").Error)
	require.NoError(t, gdb.Exec("DELETE FROM products").Error)
	require.NoError(t, gdb.Exec("DELETE FROM categories").Error)
	require.NoError(t, gdb.Exec("DELETE FROM users").Error)

	categories := []db.Category{
		{Slug: "smartphones", Name: "Smartphones"},
		{Slug: "laptops", Name: "Laptops"},
		{Slug: "audio", Name: "Audio"},
	}
	require.NoError(t, gdb.Create(&categories).Error)

	byID := map[string]db.Category{}
	for _, c := range categories {
		byID[c.Slug] = c
	}

	products := []db.Product{
		{Slug: "phone-basic", Name: "Phone Basic", Price: 199.99, Featured: true, CategoryID: byID["smartphones"].ID},
		{Slug: "phone-mid", Name: "Phone Mid", Price: 499.00, CategoryID: byID["smartphones"].ID},
		{Slug: "phone-flagship", Name: "Phone Flagship", Price: 1799.00, CategoryID: byID["smartphones"].ID},

		{Slug: "laptop-low", Name: "Laptop Low", Price: 299.99, CategoryID: byID["laptops"].ID},
		{Slug: "laptop-mid", Name: "Laptop Mid", Price: 549.99, CategoryID: byID["laptops"].ID},
		{Slug: "laptop-high", Name: "Laptop High", Price: 1299.99, CategoryID: byID["laptops"].ID},
		{Slug: "laptop-workstation", Name: "Laptop Workstation", Price: 2399.00, CategoryID: byID["laptops"].ID},

		{Slug: "earbuds", Name: "Earbuds", Price: 79.99, Featured: true, CategoryID: byID["audio"].ID},
	}
	require.NoError(t, gdb.Create(&products).Error)

	return byID
}

// setupService spins up an in-memory SQLite DB, applies migrations, starts
// a miniredis, and wires everything into a merch Service instance.
//
// Each test gets its own isolated DB + Redis.
func setupService(t *testing.T) (*merch.Service, *gorm.DB) {
	t.Helper()

	dbName := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	gdb, err := gorm.Open(sqlite.Open(dbName), &gorm.Config{
		NowFunc:                func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.Migrate(gdb))

	mr := miniredis.RunT(t)
	cfg := &config.Config{}
	cfg.Redis.Addr = mr.Addr()
	redisCache := cache.NewRedisCache(cfg)

	appCtx := app.New(gdb, redisCache, logger.L())
	return merch.NewMerchService(appCtx), gdb
}

//
// Recommendation selector
//

func TestRecommend_AnonymousGetsFeatured(t *testing.T) {
	svc, gdb := setupService(t)
	seedCatalog(t, gdb)

	products, err := svc.Recommend(context.Background(), nil, 4)
	require.NoError(t, err)

	require.Len(t, products, 2) // only two featured products exist
	for _, p := range products {
		assert.True(t, p.Featured)
	}
}

func TestRecommend_NoDuplicatesAndLimit(t *testing.T) {
	svc, gdb := setupService(t)
	seedCatalog(t, gdb)

	prefs := &db.UserPreferences{
		ViewedCategories:   []string{"audio", "laptops", "smartphones", "laptops"},
		FavoriteCategories: []string{"smartphones"},
	}

	products, err := svc.Recommend(context.Background(), prefs, 5)
	require.NoError(t, err)

	assert.LessOrEqual(t, len(products), 5)
	seen := map[uint64]bool{}
	for _, p := range products {
		assert.False(t, seen[p.ID], "duplicate product id %d", p.ID)
		seen[p.ID] = true
	}
}

func TestRecommend_ViewedCategoriesComeFirst(t *testing.T) {
	svc, gdb := setupService(t)
	byID := seedCatalog(t, gdb)

	prefs := &db.UserPreferences{
		ViewedCategories: []string{"smartphones", "audio"}, // audio is newest
	}

	products, err := svc.Recommend(context.Background(), prefs, 2)
	require.NoError(t, err)
	require.Len(t, products, 2)

	// newest viewed category seeds the first slot
	assert.Equal(t, byID["audio"].ID, products[0].CategoryID)
	assert.Equal(t, byID["smartphones"].ID, products[1].CategoryID)
}

func TestRecommend_ExhaustedCatalogReturnsShortList(t *testing.T) {
	svc, gdb := setupService(t)
	seedCatalog(t, gdb)

	prefs := &db.UserPreferences{FavoriteCategories: []string{"audio"}}

	products, err := svc.Recommend(context.Background(), prefs, 50)
	require.NoError(t, err)

	// whole catalog is 8 products; short list is fine, not an error
	assert.Len(t, products, 8)
}

func TestRecommend_StalePreferenceSlugIsSkipped(t *testing.T) {
	svc, gdb := setupService(t)
	seedCatalog(t, gdb)

	prefs := &db.UserPreferences{
		ViewedCategories:   []string{"discontinued-category"},
		FavoriteCategories: []string{"also-gone"},
	}

	products, err := svc.Recommend(context.Background(), prefs, 3)
	require.NoError(t, err)
	assert.Len(t, products, 3) // fell through to featured/newest
}

//
// Tiered discount selector
//

func TestTieredDiscounts_CrossSellScenario(t *testing.T) {
	svc, gdb := setupService(t)
	seedCatalog(t, gdb)

	// Favorites smartphones+laptops, currently viewing smartphones:
	// the cross-sell category is the other favorite, laptops.
	prefs := &db.UserPreferences{FavoriteCategories: []string{"smartphones", "laptops"}}

	offer, err := svc.TieredDiscounts(context.Background(), prefs, "smartphones")
	require.NoError(t, err)

	assert.Equal(t, "laptops", offer.Category.Slug)
	require.LessOrEqual(t, len(offer.Products), 4)

	// three banded laptop picks at 8%
	require.GreaterOrEqual(t, len(offer.Products), 3)
	assert.Equal(t, "laptop-low", offer.Products[0].Product.Slug)
	assert.Equal(t, "low", offer.Products[0].Range)
	assert.Equal(t, "laptop-mid", offer.Products[1].Product.Slug)
	assert.Equal(t, "mid", offer.Products[1].Range)
	assert.Equal(t, "laptop-high", offer.Products[2].Product.Slug)
	assert.Equal(t, "high", offer.Products[2].Range)
	for _, p := range offer.Products[:3] {
		assert.Equal(t, float64(8), p.DiscountPercent)
		assert.InDelta(t, p.OriginalPrice*0.92, p.DiscountPrice, 0.005)
	}

	// the 4th entry is the priciest product of the *current* category at 16%
	last := offer.Products[len(offer.Products)-1]
	assert.Equal(t, "premium", last.Range)
	assert.Equal(t, "phone-flagship", last.Product.Slug)
	assert.Equal(t, float64(16), last.DiscountPercent)
	assert.Equal(t, 1511.16, last.DiscountPrice) // round(1799 * 0.84, 2)
}

func TestTieredDiscounts_ExactRounding(t *testing.T) {
	svc, gdb := setupService(t)
	seedCatalog(t, gdb)

	offer, err := svc.TieredDiscounts(context.Background(), nil, "laptops")
	require.NoError(t, err)

	// no favorites: target is the current category itself
	assert.Equal(t, "laptops", offer.Category.Slug)
	require.NotEmpty(t, offer.Products)
	assert.Equal(t, 275.99, offer.Products[0].DiscountPrice) // round(299.99 * 0.92, 2)
}

func TestTieredDiscounts_BackfillWhenBandsComeUpShort(t *testing.T) {
	svc, gdb := setupService(t)
	seedCatalog(t, gdb)

	// audio has a single cheap product: one banded pick, then backfill has
	// nothing left, then the premium entry from the same category is gone too
	offer, err := svc.TieredDiscounts(context.Background(), nil, "audio")
	require.NoError(t, err)

	assert.Equal(t, "audio", offer.Category.Slug)
	require.Len(t, offer.Products, 1)
	assert.Equal(t, "earbuds", offer.Products[0].Product.Slug)
	assert.Equal(t, "low", offer.Products[0].Range)
}

func TestTieredDiscounts_UnknownCategory(t *testing.T) {
	svc, gdb := setupService(t)
	seedCatalog(t, gdb)

	_, err := svc.TieredDiscounts(context.Background(), nil, "no-such-category")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "category not found")
}

func TestTieredDiscounts_UnknownFavoriteCategory(t *testing.T) {
	svc, gdb := setupService(t)
	seedCatalog(t, gdb)

	prefs := &db.UserPreferences{FavoriteCategories: []string{"deleted-favorite"}}

	_, err := svc.TieredDiscounts(context.Background(), prefs, "laptops")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "category not found")
}

//
// Temporary discount ledger
//

func productID(t *testing.T, gdb *gorm.DB, slug string) uint64 {
	t.Helper()
	var p db.Product
	require.NoError(t, gdb.Where("slug = ?", slug).First(&p).Error)
	return p.ID
}

func TestCreateOrRefreshDiscount_IdempotentWithinWindow(t *testing.T) {
	svc, gdb := setupService(t)
	seedCatalog(t, gdb)
	ctx := context.Background()
	pid := productID(t, gdb, "laptop-mid")

	first, err := svc.CreateOrRefreshDiscount(ctx, 1, pid, 8, "sidebar_ad")
	require.NoError(t, err)
	assert.Equal(t, 505.99, first.DiscountPrice) // round(549.99 * 0.92, 2)

	second, err := svc.CreateOrRefreshDiscount(ctx, 1, pid, 8, "sidebar_ad")
	require.NoError(t, err)
	assert.Equal(t, first.ExpiresAt.UnixMilli(), second.ExpiresAt.UnixMilli())

	// still exactly one row for the pair
	var count int64
	require.NoError(t, gdb.Model(&db.TemporaryDiscount{}).
		Where("user_id = ? AND product_id = ?", 1, pid).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestGetDiscount_LazyExpiry(t *testing.T) {
	svc, gdb := setupService(t)
	seedCatalog(t, gdb)
	ctx := context.Background()
	pid := productID(t, gdb, "phone-mid")

	// expired row, still physically present
	expired := db.TemporaryDiscount{
		UserID: 1, ProductID: pid,
		OriginalPrice: 499.00, DiscountPrice: 459.08, DiscountPercent: 8,
		ExpiresAt: time.Now().Add(-time.Minute),
	}
	require.NoError(t, gdb.Create(&expired).Error)

	d, err := svc.GetDiscount(ctx, 1, pid)
	require.NoError(t, err)
	assert.Nil(t, d, "expired discount must read as absent")

	// refresh re-opens the window on the same row
	fresh, err := svc.CreateOrRefreshDiscount(ctx, 1, pid, 8, "sidebar_ad")
	require.NoError(t, err)
	assert.True(t, fresh.ExpiresAt.After(time.Now()))

	d, err = svc.GetDiscount(ctx, 1, pid)
	require.NoError(t, err)
	require.NotNil(t, d)
	assert.Equal(t, 459.08, d.DiscountPrice)
}

func TestMarkDiscountAddedToCart_OnlyWhileUnexpired(t *testing.T) {
	svc, gdb := setupService(t)
	seedCatalog(t, gdb)
	ctx := context.Background()
	pid := productID(t, gdb, "laptop-low")

	_, err := svc.CreateOrRefreshDiscount(ctx, 1, pid, 8, "sidebar_ad")
	require.NoError(t, err)

	updated, err := svc.MarkDiscountAddedToCart(ctx, 1, pid)
	require.NoError(t, err)
	assert.True(t, updated)

	// an expired row cannot be flagged
	expired := db.TemporaryDiscount{
		UserID: 2, ProductID: pid,
		OriginalPrice: 299.99, DiscountPrice: 275.99, DiscountPercent: 8,
		ExpiresAt: time.Now().Add(-time.Second),
	}
	require.NoError(t, gdb.Create(&expired).Error)

	updated, err = svc.MarkDiscountAddedToCart(ctx, 2, pid)
	require.NoError(t, err)
	assert.False(t, updated)
}

func TestCleanupDiscounts_RetentionRules(t *testing.T) {
	svc, gdb := setupService(t)
	seedCatalog(t, gdb)
	ctx := context.Background()
	pid := productID(t, gdb, "laptop-low")
	now := time.Now()

	rows := []db.TemporaryDiscount{
		// expired an hour ago, never carted → delete
		{UserID: 1, ProductID: pid, OriginalPrice: 299.99, DiscountPrice: 275.99,
			DiscountPercent: 8, ExpiresAt: now.Add(-time.Hour), CreatedAt: now.Add(-70 * time.Minute)},
		// carted but 25h old → delete
		{UserID: 2, ProductID: pid, OriginalPrice: 299.99, DiscountPrice: 275.99,
			DiscountPercent: 8, AddedToCart: true,
			ExpiresAt: now.Add(-24 * time.Hour), CreatedAt: now.Add(-25 * time.Hour)},
		// carted 1h ago → retain despite expiry
		{UserID: 3, ProductID: pid, OriginalPrice: 299.99, DiscountPrice: 275.99,
			DiscountPercent: 8, AddedToCart: true,
			ExpiresAt: now.Add(-50 * time.Minute), CreatedAt: now.Add(-time.Hour)},
		// live and not carted → retain
		{UserID: 4, ProductID: pid, OriginalPrice: 299.99, DiscountPrice: 275.99,
			DiscountPercent: 8, ExpiresAt: now.Add(5 * time.Minute), CreatedAt: now},
	}
	require.NoError(t, gdb.Create(&rows).Error)

	res, err := svc.CleanupDiscounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.ExpiredDiscountsDeleted)
	assert.Equal(t, int64(1), res.OldCartDiscountsDeleted)
	assert.Equal(t, int64(2), res.TotalDeleted)

	var remaining []db.TemporaryDiscount
	require.NoError(t, gdb.Order("user_id").Find(&remaining).Error)
	require.Len(t, remaining, 2)
	assert.Equal(t, uint64(3), remaining[0].UserID)
	assert.Equal(t, uint64(4), remaining[1].UserID)
}

// sanity check on the JSON round-trip the preference blob relies on
func TestPreferencesSurviveJSONColumn(t *testing.T) {
	_, gdb := setupService(t)
	seedCatalog(t, gdb)

	user := db.User{
		Username: "dana", Email: "dana@example.com", PasswordHash: "x", Active: true,
		Preferences: datatypes.NewJSONType(db.UserPreferences{
			ViewedCategories:   []string{"audio", "laptops"},
			FavoriteCategories: []string{"laptops"},
			AdPreferences:      []string{"deals"},
		}),
	}
	require.NoError(t, gdb.Create(&user).Error)

	var loaded db.User
	require.NoError(t, gdb.First(&loaded, user.ID).Error)
	prefs := loaded.Preferences.Data()
	assert.Equal(t, []string{"audio", "laptops"}, prefs.ViewedCategories)
	assert.True(t, prefs.HasFavorite("laptops"))
}
