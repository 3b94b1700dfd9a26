package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oggyb/storefront/internal/app"
	"github.com/oggyb/storefront/internal/db"
	svcErr "github.com/oggyb/storefront/internal/errors"
	"github.com/oggyb/storefront/internal/middleware"
	"github.com/oggyb/storefront/internal/repository"
)

// PreferencesHandler exposes the per-user preference blob: viewed history,
// favorite categories and ad tags. All mutations go read-merge-write
// through the user repository.
type PreferencesHandler struct {
	appCtx   *app.AppContext
	userRepo *repository.UserRepository
}

// NewPreferencesHandler wires the preference endpoints to the user repository.
func NewPreferencesHandler(appCtx *app.AppContext) *PreferencesHandler {
	return &PreferencesHandler{appCtx: appCtx, userRepo: repository.NewUserRepository(appCtx.DB)}
}

// Get handles GET /api/preferences.
func (h *PreferencesHandler) Get(c *gin.Context) {
	prefs, err := h.userRepo.GetPreferences(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondError(c, h.appCtx.Logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"preferences": prefs})
}

type adPreferencesRequest struct {
	AdPreferences []string `json:"adPreferences"`
}

// Update handles PUT /api/preferences — replaces the ad preference tags.
// Viewed history is owned by the view tracker and is not writable here.
func (h *PreferencesHandler) Update(c *gin.Context) {
	var req adPreferencesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.appCtx.Logger, svcErr.InvalidArgument("adPreferences must be a list of tags"))
		return
	}

	prefs, err := h.userRepo.UpdatePreferences(c.Request.Context(), middleware.UserID(c), func(p *db.UserPreferences) {
		p.AdPreferences = req.AdPreferences
	})
	if err != nil {
		respondError(c, h.appCtx.Logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"preferences": prefs})
}

type favoriteRequest struct {
	Category string `json:"category" binding:"required"`
}

// ToggleFavorite handles POST /api/preferences/favorites.
func (h *PreferencesHandler) ToggleFavorite(c *gin.Context) {
	var req favoriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.appCtx.Logger, svcErr.InvalidArgument("category is required"))
		return
	}

	favorited := false
	prefs, err := h.userRepo.UpdatePreferences(c.Request.Context(), middleware.UserID(c), func(p *db.UserPreferences) {
		favorited = p.ToggleFavorite(req.Category)
	})
	if err != nil {
		respondError(c, h.appCtx.Logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"favorited": favorited, "preferences": prefs})
}
