package catalog

import (
	"context"
	"errors"

	"github.com/oggyb/storefront/internal/app"
	"github.com/oggyb/storefront/internal/db"
	svcErr "github.com/oggyb/storefront/internal/errors"
	"github.com/oggyb/storefront/internal/repository"

	"gorm.io/gorm"
)

// Service implements catalog browsing: product listings, product detail,
// categories, and the view tracking that feeds personalization.
type Service struct {
	appCtx       *app.AppContext
	productRepo  *repository.ProductRepository
	categoryRepo *repository.CategoryRepository
	userRepo     *repository.UserRepository
}

// NewCatalogService creates a new catalog service with dependencies from
// AppContext.
func NewCatalogService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx:       appCtx,
		productRepo:  repository.NewProductRepository(appCtx.DB),
		categoryRepo: repository.NewCategoryRepository(appCtx.DB),
		userRepo:     repository.NewUserRepository(appCtx.DB),
	}
}

// ListProducts returns a page of products, optionally scoped to a category
// slug, with an opaque cursor for the next page.
func (s *Service) ListProducts(
	ctx context.Context,
	categorySlug string,
	paginationToken *string,
	limit int,
) ([]db.Product, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	var categoryID *uint64
	if categorySlug != "" {
		cat, err := s.categoryRepo.GetBySlug(ctx, categorySlug)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, svcErr.NotFound("category not found")
		} else if err != nil {
			return nil, nil, err
		}
		categoryID = &cat.ID
	}

	return s.productRepo.List(ctx, categoryID, paginationToken, limit)
}

// GetProduct returns one product by slug.
func (s *Service) GetProduct(ctx context.Context, slug string) (*db.Product, error) {
	p, err := s.productRepo.GetBySlug(ctx, slug)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, svcErr.NotFound("product not found")
	} else if err != nil {
		return nil, err
	}
	return p, nil
}

// ListCategories returns the category tree.
func (s *Service) ListCategories(ctx context.Context) ([]db.Category, error) {
	return s.categoryRepo.List(ctx)
}

// GetCategory resolves a category and, for an authenticated viewer
// (userID > 0), appends the slug to their viewed-categories window.
// View tracking failures do not fail the read.
func (s *Service) GetCategory(ctx context.Context, slug string, userID uint64) (*db.Category, error) {
	cat, err := s.categoryRepo.GetBySlug(ctx, slug)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, svcErr.NotFound("category not found")
	} else if err != nil {
		return nil, err
	}

	if userID > 0 {
		if _, err := s.userRepo.UpdatePreferences(ctx, userID, func(p *db.UserPreferences) {
			p.AppendViewedCategory(slug)
		}); err != nil {
			s.appCtx.Logger.Warn("failed to record category view",
				"user_id", userID, "slug", slug, "err", err)
		}
	}

	return cat, nil
}
