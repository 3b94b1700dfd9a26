package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/oggyb/storefront/internal/app"
	svcErr "github.com/oggyb/storefront/internal/errors"
	"github.com/oggyb/storefront/internal/middleware"
	cartsvc "github.com/oggyb/storefront/internal/service/cart"
)

// CartHandler exposes cart CRUD plus the priced cart summary.
type CartHandler struct {
	appCtx *app.AppContext
	svc    *cartsvc.Service
}

// NewCartHandler wires the cart endpoints to the cart service.
func NewCartHandler(appCtx *app.AppContext) *CartHandler {
	return &CartHandler{appCtx: appCtx, svc: cartsvc.NewCartService(appCtx)}
}

// Get handles GET /api/cart — the fully priced cart.
func (h *CartHandler) Get(c *gin.Context) {
	summary, err := h.svc.Summarize(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondError(c, h.appCtx.Logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cart": summary})
}

type addToCartRequest struct {
	ProductID uint64 `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity"`
}

// Add handles POST /api/cart. Repeated adds increment the line quantity.
func (h *CartHandler) Add(c *gin.Context) {
	var req addToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.appCtx.Logger, svcErr.InvalidArgument("productId is required"))
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	if err := h.svc.Add(c.Request.Context(), middleware.UserID(c), req.ProductID, req.Quantity); err != nil {
		respondError(c, h.appCtx.Logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

type updateCartRequest struct {
	ProductID uint64 `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity"`
}

// Update handles PUT /api/cart. Quantity <= 0 removes the line.
func (h *CartHandler) Update(c *gin.Context) {
	var req updateCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.appCtx.Logger, svcErr.InvalidArgument("productId is required"))
		return
	}

	if err := h.svc.SetQuantity(c.Request.Context(), middleware.UserID(c), req.ProductID, req.Quantity); err != nil {
		respondError(c, h.appCtx.Logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Remove handles DELETE /api/cart/:productId.
func (h *CartHandler) Remove(c *gin.Context) {
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
