package routes

import (
	"github.com/gin-gonic/gin"
	productcontroller "github.com/natrenakres/prostore/controllers/product"
	reviewControllers "github.com/natrenakres/prostore/controllers/review"
	"gorm.io/gorm"
)

// SetupProductRoutes registers the public "/products/*" browsing endpoints.
func SetupProductRoutes(r *gin.Engine, db *gorm.DB) {
	products := r.Group("/products")
	{
		products.GET("", productcontroller.GetProducts(db))
		products.GET("/featured", productcontroller.GetFeaturedProducts(db))
		products.GET("/latest", productcontroller.GetLatestProducts(db))
		products.GET("/categories", productcontroller.GetAllCategories(db))
		products.GET("/slug/:slug", productcontroller.GetProductBySlug(db))
		products.GET("/:id", productcontroller.GetProductByID(db))
		products.GET("/:id/reviews", reviewControllers.GetReviewsHandler(db))
	}
}
