// internal/interfaces/http/routes/routes.go
package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/your-org/kupipodariday-backend/internal/config"
	"github.com/your-org/kupipodariday-backend/internal/interfaces/http/handlers"
	"github.com/your-org/kupipodariday-backend/internal/interfaces/http/middleware"
)

// Handlers groups the API handlers mounted under /api/v1
type Handlers struct {
	Auth     *handlers.AuthHandler
	User     *handlers.UserHandler
	Wish     *handlers.WishHandler
	Offer    *handlers.OfferHandler
	Wishlist *handlers.WishlistHandler
}

// SetupAuthRoutes sets up authentication related routes
func SetupAuthRoutes(rg *gin.RouterGroup, h *handlers.AuthHandler) {
	auth := rg.Group("/auth")
	{
		auth.POST("/signup", h.Signup)
		auth.POST("/signin", h.Signin)
		auth.POST("/refresh", h.RefreshToken)
		auth.POST("/forgot-password", h.ForgotPassword)
		auth.POST("/reset-password", h.ResetPassword)
	}
}

// SetupUserRoutes sets up user related routes
func SetupUserRoutes(rg *gin.RouterGroup, h *handlers.UserHandler, cfg *config.Config) {
	users := rg.Group("/users")
	users.Use(middleware.AuthMiddleware(cfg))
	{
		users.GET("/me", h.GetMe)
		users.PATCH("/me", h.UpdateMe)
		users.GET("/me/wishes", h.GetMyWishes)
		users.GET("/me/offers", h.GetMyOffers)
		users.POST("/find", h.Find)
		users.GET("/:username", h.GetByUsername)
		users.GET("/:username/wishes", h.GetUserWishes)
		users.GET("/:username/wishlists", h.GetUserWishlists)
	}
}

// SetupWishRoutes sets up wish catalog routes. Rankings and single wishes
// are public; a token, when sent, still identifies the caller in the logs.
func SetupWishRoutes(rg *gin.RouterGroup, h *handlers.WishHandler, cfg *config.Config) {
	wishes := rg.Group("/wishes")
	{
		public := wishes.Group("")
		public.Use(middleware.OptionalAuthMiddleware(cfg))
		{
			public.GET("/top", h.GetTop)
			public.GET("/last", h.GetLast)
			public.GET("/:id", h.GetWish)
		}

		protected := wishes.Group("")
		protected.Use(middleware.AuthMiddleware(cfg))
		{
			protected.POST("", h.CreateWish)
			protected.PATCH("/:id", h.UpdateWish)
			protected.DELETE("/:id", h.DeleteWish)
			protected.POST("/:id/copy", h.CopyWish)
		}
	}
}

// SetupOfferRoutes sets up contribution routes
func SetupOfferRoutes(rg *gin.RouterGroup, h *handlers.OfferHandler, cfg *config.Config) {
	offers := rg.Group("/offers")
	offers.Use(middleware.AuthMiddleware(cfg))
	{
		offers.POST("", h.CreateOffer)
		offers.GET("", h.GetOffers)
		offers.GET("/:id", h.GetOffer)
	}

	rg.GET("/wishes/:id/offers", middleware.AuthMiddleware(cfg), h.GetWishOffers)
}

// SetupWishlistRoutes sets up wishlist routes
func SetupWishlistRoutes(rg *gin.RouterGroup, h *handlers.WishlistHandler, cfg *config.Config) {
	wishlists := rg.Group("/wishlistlists")
	{
		public := wishlists.Group("")
		public.Use(middleware.OptionalAuthMiddleware(cfg))
		{
			public.GET("", h.GetWishlists)
			public.GET("/:id", h.GetWishlist)
			public.GET("/:id/pdf", h.ExportWishlist)
		}

		protected := wishlists.Group("")
		protected.Use(middleware.AuthMiddleware(cfg))
		{
			protected.POST("", h.CreateWishlist)
			protected.PATCH("/:id", h.UpdateWishlist)
			protected.DELETE("/:id", h.DeleteWishlist)
		}
	}
}

// SetupRoutes mounts every API route group
func SetupRoutes(rg *gin.RouterGroup, h *Handlers, cfg *config.Config) {
	SetupAuthRoutes(rg, h.Auth)
	SetupUserRoutes(rg, h.User, cfg)
	SetupWishRoutes(rg, h.Wish, cfg)
	SetupOfferRoutes(rg, h.Offer, cfg)
	SetupWishlistRoutes(rg, h.Wishlist, cfg)
}
