package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/oggyb/storefront/internal/db"
	"github.com/oggyb/storefront/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedBandedCatalog(t *testing.T, dbase *gorm.DB) db.Category {
	t.Helper()

	cat := db.Category{Slug: "laptops", Name: "Laptops"}
	require.NoError(t, dbase.Create(&cat).Error)

	base := time.Now().Add(-time.Hour)
	products := []db.Product{
		{Slug: "low", Name: "Low", Price: 299.99, CategoryID: cat.ID, CreatedAt: base},
		{Slug: "mid", Name: "Mid", Price: 549.99, CategoryID: cat.ID, CreatedAt: base.Add(time.Minute)},
		{Slug: "high", Name: "High", Price: 1299.99, CategoryID: cat.ID, CreatedAt: base.Add(2 * time.Minute)},
		{Slug: "top", Name: "Top", Price: 2399.00, CategoryID: cat.ID, CreatedAt: base.Add(3 * time.Minute)},
	}
	require.NoError(t, dbase.Create(&products).Error)
	return cat
}

func TestCheapestInPriceRange(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	repo := repository.NewProductRepository(dbase)
	cat := seedBandedCatalog(t, dbase)

	// pre-discount bounds for the (350, 700] post-discount band
	p, err := repo.CheapestInPriceRange(ctx, cat.ID, 350*0.92, 700*0.92, nil)
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "mid", p.Slug)

	// unbounded band picks the cheapest above the floor
	p, err = repo.CheapestInPriceRange(ctx, cat.ID, 700*0.92, 0, nil)
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "high", p.Slug)

	// empty band is nil, not an error
	p, err = repo.CheapestInPriceRange(ctx, cat.ID, 5000, 0, nil)
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestMostExpensiveInCategoryExcludes(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	repo := repository.NewProductRepository(dbase)
	cat := seedBandedCatalog(t, dbase)

	top, err := repo.MostExpensiveInCategory(ctx, cat.ID, nil)
	require.NoError(t, err)
	require.NotNil(t, top)
	assert.Equal(t, "top", top.Slug)

	next, err := repo.MostExpensiveInCategory(ctx, cat.ID, []uint64{top.ID})
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.Equal(t, "high", next.Slug)
}

func TestListPagination(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	repo := repository.NewProductRepository(dbase)
	cat := seedBandedCatalog(t, dbase)

	page1, next, err := repo.List(ctx, &cat.ID, nil, 3)
	require.NoError(t, err)
	require.Len(t, page1, 3)
	require.NotNil(t, next)
	assert.Equal(t, "top", page1[0].Slug) // newest first

	page2, next2, err := repo.List(ctx, &cat.ID, next, 3)
	require.NoError(t, err)
	require.Len(t, page2, 1)
	assert.Nil(t, next2)
	assert.Equal(t, "low", page2[0].Slug)

	// no overlap between pages
	for _, a := range page1 {
		for _, b := range page2 {
			assert.NotEqual(t, a.ID, b.ID)
		}
	}
}

func TestFeaturedLatest(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	repo := repository.NewProductRepository(dbase)

	cat := db.Category{Slug: "audio", Name: "Audio"}
	require.NoError(t, dbase.Create(&cat).Error)
	products := []db.Product{
		{Slug: "a", Name: "A", Price: 10, Featured: true, CategoryID: cat.ID},
		{Slug: "b", Name: "B", Price: 20, CategoryID: cat.ID},
		{Slug: "c", Name: "C", Price: 30, Featured: true, CategoryID: cat.ID},
	}
	require.NoError(t, dbase.Create(&products).Error)

	got, err := repo.FeaturedLatest(ctx, 10, nil)
	require.NoError(t, err)
	require.Len(t, got, 2)
	for _, p := range got {
		assert.True(t, p.Featured)
	}
}
