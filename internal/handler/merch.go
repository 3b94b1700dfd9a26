package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/oggyb/storefront/internal/app"
	"github.com/oggyb/storefront/internal/db"
	svcErr "github.com/oggyb/storefront/internal/errors"
	"github.com/oggyb/storefront/internal/middleware"
	"github.com/oggyb/storefront/internal/repository"
	merchsvc "github.com/oggyb/storefront/internal/service/merch"
)

// MerchHandler exposes the merchandising surfaces: recommendations, the
// tiered sidebar offer, and the temporary discount ledger.
type MerchHandler struct {
	appCtx   *app.AppContext
	svc      *merchsvc.Service
	userRepo *repository.UserRepository
}

// NewMerchHandler wires the merchandising endpoints to the merch service.
func NewMerchHandler(appCtx *app.AppContext) *MerchHandler {
	return &MerchHandler{
		appCtx:   appCtx,
		svc:      merchsvc.NewMerchService(appCtx),
		userRepo: repository.NewUserRepository(appCtx.DB),
	}
}

// prefsFor loads the preference blob for an authenticated viewer; anonymous
// requests get nil, which selects the featured fallback path.
func (h *MerchHandler) prefsFor(c *gin.Context) (*db.UserPreferences, error) {
	userID := middleware.UserID(c)
	if userID == 0 {
		return nil, nil
	}
	return h.userRepo.GetPreferences(c.Request.Context(), userID)
}

// Recommendations handles GET /api/recommendations?limit=N.
// Personalized when a session is present, featured products otherwise.
func (h *MerchHandler) Recommendations(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "4"))

	prefs, err := h.prefsFor(c)
	if err != nil {
		respondError(c, h.appCtx.Logger, err)
		return
	}

	products, err := h.svc.Recommend(c.Request.Context(), prefs, limit)
	if err != nil {
		respondError(c, h.appCtx.Logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}

// TieredDiscounts handles GET /api/discounts/tiered?category=slug.
func (h *MerchHandler) TieredDiscounts(c *gin.Context) {
	slug := c.Query("category")
	if slug == "" {
		respondError(c, h.appCtx.Logger, svcErr.InvalidArgument("category is required"))
		return
	}

	prefs, err := h.prefsFor(c)
	if err != nil {
		respondError(c, h.appCtx.Logger, err)
		return
	}

	offer, err := h.svc.TieredDiscounts(c.Request.Context(), prefs, slug)
	if err != nil {
		respondError(c, h.appCtx.Logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"category": offer.Category,
		"products": offer.Products,
		"discount": merchsvc.StandardDiscountPercent,
		"message":  "limited time offers picked for you",
	})
}

type createDiscountRequest struct {
	ProductID       uint64  `json:"productId" binding:"required"`
	DiscountPercent float64 `json:"discountPercent"`
	Source          string  `json:"source"`
}

// CreateTemporaryDiscount handles POST /api/discounts/temporary.
// Re-posting inside the 10-minute window is an upsert, not a duplicate.
func (h *MerchHandler) CreateTemporaryDiscount(c *gin.Context) {
	var req createDiscountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.appCtx.Logger, svcErr.InvalidArgument("productId is required"))
		return
	}

	discount, err := h.svc.CreateOrRefreshDiscount(
		c.Request.Context(), middleware.UserID(c), req.ProductID, req.DiscountPercent, req.Source)
	if err != nil {
		respondError(c, h.appCtx.Logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"discount": discount})
}

type updateDiscountRequest struct {
	ProductID   uint64 `json:"productId" binding:"required"`
	AddedToCart bool   `json:"addedToCart"`
}

// UpdateTemporaryDiscount handles PUT /api/discounts/temporary.
// Only the added-to-cart flag can change, and only inside the window.
func (h *MerchHandler) UpdateTemporaryDiscount(c *gin.Context) {
	var req updateDiscountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.appCtx.Logger, svcErr.InvalidArgument("productId is required"))
		return
	}

	updated := false
	if req.AddedToCart {
		var err error
		updated, err = h.svc.MarkDiscountAddedToCart(c.Request.Context(), middleware.UserID(c), req.ProductID)
		if err != nil {
			respondError(c, h.appCtx.Logger, err)
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "updated": updated})
}

// CleanupDiscounts handles POST /api/discounts/cleanup.
func (h *MerchHandler) CleanupDiscounts(c *gin.Context) {
	res, err := h.svc.CleanupDiscounts(c.Request.Context())
	if err != nil {
		respondError(c, h.appCtx.Logger, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
