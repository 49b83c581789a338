package routes

import (
	"github.com/gin-gonic/gin"
	cartControllers "github.com/natrenakres/prostore/controllers/cart"
	reviewControllers "github.com/natrenakres/prostore/controllers/review"
	userControllers "github.com/natrenakres/prostore/controllers/user"
	"github.com/natrenakres/prostore/middleware"
	"gorm.io/gorm"
)

// SetupUserRoutes registers all "/user/*" endpoints. Requires JWT middleware.
func SetupUserRoutes(r *gin.Engine, db *gorm.DB) {
	userGroup := r.Group("/user")
	userGroup.Use(middleware.ValidateToken)
	{
		// ──────────────── User Profile ────────────────
		userGroup.GET("/", userControllers.GetProfile(db))
		userGroup.PUT("/address", userControllers.SaveAddress(db))
		userGroup.PUT("/payment-method", userControllers.SavePaymentMethod(db))

		// ──────────────── Shopping Cart ────────────────
		cartGroup := userGroup.Group("/cart")
		{
			cartGroup.GET("/", cartControllers.GetCartHandler(db))
			cartGroup.POST("/", cartControllers.AddToCartHandler(db))
			cartGroup.DELETE("/:product_id", cartControllers.RemoveFromCartHandler(db))
			cartGroup.DELETE("/", cartControllers.ClearCartHandler(db))
		}

		// ──────────────── Reviews ────────────────
		userGroup.POST("/reviews", reviewControllers.UpsertReviewHandler(db))
		userGroup.GET("/reviews/:product_id", reviewControllers.GetMyReviewHandler(db))
	}
}
