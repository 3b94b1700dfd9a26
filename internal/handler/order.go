package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/oggyb/storefront/internal/app"
	svcErr "github.com/oggyb/storefront/internal/errors"
	"github.com/oggyb/storefront/internal/middleware"
	ordersvc "github.com/oggyb/storefront/internal/service/order"
)

// OrderHandler exposes checkout and order history.
type OrderHandler struct {
	appCtx *app.AppContext
	svc    *ordersvc.Service
}

// NewOrderHandler wires the order endpoints to the order service.
func NewOrderHandler(appCtx *app.AppContext) *OrderHandler {
	return &OrderHandler{appCtx: appCtx, svc: ordersvc.NewOrderService(appCtx)}
}

// Checkout handles POST /api/orders — place an order from the current cart.
func (h *OrderHandler) Checkout(c *gin.Context) {
	order, err := h.svc.Checkout(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondError(c, h.appCtx.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"order": order})
}

// List handles GET /api/orders.
func (h *OrderHandler) List(c *gin.Context) {
	orders, err := h.svc.List(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondError(c, h.appCtx.Logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

// Get handles GET /api/orders/:id.
func (h *OrderHandler) Get(c *gin.Context) {
	orderID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, h.appCtx.Logger, svcErr.InvalidArgument("order id must be a valid id"))
		return
	}

	order, err := h.svc.Get(c.Request.Context(), middleware.UserID(c), orderID)
	if err != nil {
		respondError(c, h.appCtx.Logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": order})
}
