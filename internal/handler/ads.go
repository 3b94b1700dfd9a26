package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oggyb/storefront/internal/app"
	"github.com/oggyb/storefront/internal/repository"
)

// AdsHandler exposes the advertisement listings merchandising widgets render.
type AdsHandler struct {
	appCtx *app.AppContext
	repo   *repository.AdRepository
}

// NewAdsHandler wires the ad endpoints to the ad repository.
func NewAdsHandler(appCtx *app.AppContext) *AdsHandler {
	return &AdsHandler{appCtx: appCtx, repo: repository.NewAdRepository(appCtx.DB)}
}

// List handles GET /api/advertisements?placement=sidebar.
func (h *AdsHandler) List(c *gin.Context) {
	ads, err := h.repo.ListActive(c.Request.Context(), c.Query("placement"))
	if err != nil {
		respondError(c, h.appCtx.Logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"advertisements": ads})
}
