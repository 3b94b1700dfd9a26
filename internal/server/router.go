package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/oggyb/storefront/internal/app"
	"github.com/oggyb/storefront/internal/handler"
	"github.com/oggyb/storefront/internal/middleware"
)

// NewRouter wires every handler into the gin engine.
//
// Route groups:
//   - public: health, auth, catalog browsing, recommendations, ads
//     (recommendations and category detail personalize when a session is
//     present, so they run behind OptionalAuth)
//   - protected: everything keyed by the session user id; 401 without one
func NewRouter(appCtx *app.AppContext) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "http://localhost:5173"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	authMW := middleware.NewAuth(appCtx)

	authHandler := handler.NewAuthHandler(appCtx)
	catalogHandler := handler.NewCatalogHandler(appCtx)
	merchHandler := handler.NewMerchHandler(appCtx)
	cartHandler := handler.NewCartHandler(appCtx)
	wishlistHandler := handler.NewWishlistHandler(appCtx)
	orderHandler := handler.NewOrderHandler(appCtx)
	prefsHandler := handler.NewPreferencesHandler(appCtx)
	adsHandler := handler.NewAdsHandler(appCtx)

	router.GET("/healthcheck", handler.HealthCheck)

	api := router.Group("/api")
	api.Use(authMW.OptionalAuth())
	{
		api.POST("/register", authHandler.Register)
		api.POST("/login", authHandler.Login)

		api.GET("/products", catalogHandler.ListProducts)
		api.GET("/products/:slug", catalogHandler.GetProduct)
		api.GET("/categories", catalogHandler.ListCategories)
		api.GET("/categories/:slug", catalogHandler.GetCategory)

		api.GET("/recommendations", merchHandler.Recommendations)
		api.GET("/advertisements", adsHandler.List)
	}

	protected := router.Group("/api")
	protected.Use(authMW.RequireAuth())
	{
		protected.POST("/logout", authHandler.Logout)

		protected.GET("/preferences", prefsHandler.Get)
		protected.PUT("/preferences", prefsHandler.Update)
		protected.POST("/preferences/favorites", prefsHandler.ToggleFavorite)

		protected.GET("/cart", cartHandler.Get)
		protected.POST("/cart", cartHandler.Add)
		protected.PUT("/cart", cartHandler.Update)
		protected.DELETE("/cart/:productId", cartHandler.Remove)

		protected.GET("/wishlist", wishlistHandler.List)
		protected.POST("/wishlist", wishlistHandler.Add)
		protected.DELETE("/wishlist/:productId", wishlistHandler.Remove)

		protected.GET("/discounts/tiered", merchHandler.TieredDiscounts)
		protected.POST("/discounts/temporary", merchHandler.CreateTemporaryDiscount)
		protected.PUT("/discounts/temporary", merchHandler.UpdateTemporaryDiscount)
		protected.POST("/discounts/cleanup", merchHandler.CleanupDiscounts)

		protected.POST("/orders", orderHandler.Checkout)
		protected.GET("/orders", orderHandler.List)
		protected.GET("/orders/:id", orderHandler.Get)
	}

	return router
}
