package routes

import (
	"github.com/gin-gonic/gin"
	orderControllers "github.com/natrenakres/prostore/controllers/order"
	productcontroller "github.com/natrenakres/prostore/controllers/product"
	userControllers "github.com/natrenakres/prostore/controllers/user"
	"github.com/natrenakres/prostore/middleware"
	"gorm.io/gorm"
)

// SetupAdminRoutes registers all "/admin/*" endpoints. Requires an admin JWT.
func SetupAdminRoutes(r *gin.Engine, db *gorm.DB) {
	adminGroup := r.Group("/admin")
	adminGroup.Use(middleware.ValidateToken, middleware.RequireAdmin)
	{
		// ─────────── Overview ───────────
		adminGroup.GET("/overview", orderControllers.GetOrderSummaryHandler(db))

		// ─────────── User Management ───────────
		adminGroup.GET("/users", userControllers.GetAllUsers(db))
		adminGroup.PUT("/users/:id", userControllers.UpdateUser(db))
		adminGroup.DELETE("/users/:id", userControllers.DeleteUser(db))

		// ─────────── Product Management ───────────
		productAdmin := adminGroup.Group("/products")
		{
			productAdmin.POST("", productcontroller.CreateProduct(db))
			productAdmin.PUT("/:id", productcontroller.UpdateProduct(db))
			productAdmin.GET("", productcontroller.GetProducts(db))
			productAdmin.DELETE("/:id", productcontroller.DeleteProduct(db))
		}

		// ─────────── Order Management ───────────
		orderAdmin := adminGroup.Group("/orders")
		{
			orderAdmin.GET("", orderControllers.GetAllOrdersHandler(db))
			orderAdmin.GET("/export-excel", orderControllers.ExportOrdersToExcel(db))
			orderAdmin.PUT("/:orderRef/deliver", orderControllers.MarkDeliveredHandler(db))
			orderAdmin.DELETE("/:orderRef", orderControllers.DeleteOrderHandler(db))
		}
	}
}
