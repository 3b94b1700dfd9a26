package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/oggyb/storefront/internal/app"
	svcErr "github.com/oggyb/storefront/internal/errors"
	"github.com/oggyb/storefront/internal/middleware"
	wishlistsvc "github.com/oggyb/storefront/internal/service/wishlist"
)

// WishlistHandler exposes wishlist CRUD.
type WishlistHandler struct {
	appCtx *app.AppContext
	svc    *wishlistsvc.Service
}

// NewWishlistHandler wires the wishlist endpoints to the wishlist service.
func NewWishlistHandler(appCtx *app.AppContext) *WishlistHandler {
	return &WishlistHandler{appCtx: appCtx, svc: wishlistsvc.NewWishlistService(appCtx)}
}

// List handles GET /api/wishlist.
func (h *WishlistHandler) List(c *gin.Context) {
	userID := middleware.UserID(c)

	items, err := h.svc.List(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.appCtx.Logger, err)
		return
	}
	count, err := h.svc.Count(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.appCtx.Logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": items, "count": count})
}

type wishlistRequest struct {
	ProductID uint64 `json:"productId" binding:"required"`
}

// Add handles POST /api/wishlist. Re-adding is a no-op.
func (h *WishlistHandler) Add(c *gin.Context) {
	var req wishlistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.appCtx.Logger, svcErr.InvalidArgument("productId is required"))
		return
	}

	if err := h.svc.Add(c.Request.Context(), middleware.UserID(c), req.ProductID); err != nil {
		respondError(c, h.appCtx.Logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Remove handles DELETE /api/wishlist/:productId.
func (h *WishlistHandler) Remove(c *gin.Context) {
	productID, err := strconv.ParseUint(c.Param("productId"), 10, 64)
	if err != nil {
		respondError(c, h.appCtx.Logger, svcErr.InvalidArgument("productId must be a valid id"))
		return
	}

	if err := h.svc.Remove(c.Request.Context(), middleware.UserID(c), productID); err != nil {
		respondError(c, h.appCtx.Logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
