package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/oggyb/storefront/internal/app"
	"github.com/oggyb/storefront/internal/middleware"
	catalogsvc "github.com/oggyb/storefront/internal/service/catalog"
)

// CatalogHandler exposes product and category browsing.
type CatalogHandler struct {
	appCtx *app.AppContext
	svc    *catalogsvc.Service
}

// NewCatalogHandler wires the catalog endpoints to the catalog service.
func NewCatalogHandler(appCtx *app.AppContext) *CatalogHandler {
	return &CatalogHandler{appCtx: appCtx, svc: catalogsvc.NewCatalogService(appCtx)}
}

// ListProducts handles GET /api/products?category=slug&limit=N&cursor=...
func (h *CatalogHandler) ListProducts(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	var token *string
	if cur := c.Query("cursor"); cur != "" {
		token = &cur
	}

	products, nextToken, err := h.svc.ListProducts(c.Request.Context(), c.Query("category"), token, limit)
	if err != nil {
		respondError(c, h.appCtx.Logger, err)
		return
	}

	resp := gin.H{"products": products}
	if nextToken != nil {
		resp["nextCursor"] = *nextToken
	}
	c.JSON(http.StatusOK, resp)
}

// GetProduct handles GET /api/products/:slug
func (h *CatalogHandler) GetProduct(c *gin.Context) {
	product, err := h.svc.GetProduct(c.Request.Context(), c.Param("slug"))
	if err != nil {
		respondError(c, h.appCtx.Logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"product": product})
}

// ListCategories handles GET /api/categories
func (h *CatalogHandler) ListCategories(c *gin.Context) {
	categories, err := h.svc.ListCategories(c.Request.Context())
	if err != nil {
		respondError(c, h.appCtx.Logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

// GetCategory handles GET /api/categories/:slug. When the viewer is
// authenticated the view lands in their preference window.
func (h *CatalogHandler) GetCategory(c *gin.Context) {
	category, err := h.svc.GetCategory(c.Request.Context(), c.Param("slug"), middleware.UserID(c))
	if err != nil {
		respondError(c, h.appCtx.Logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"category": category})
}
