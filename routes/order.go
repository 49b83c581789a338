package routes

import (
	"github.com/gin-gonic/gin"
	orderControllers "github.com/natrenakres/prostore/controllers/order"
	"github.com/natrenakres/prostore/middleware"
	"gorm.io/gorm"
)

func SetupOrderRoutes(r *gin.Engine, db *gorm.DB) {
	orders := r.Group("/orders")
	{
		// websocket endpoint for real-time order updates
		orders.GET("/ws", orderControllers.OrderWebSocketHandler)

		authed := orders.Group("")
		authed.Use(middleware.ValidateToken)
		{
			// Convert the current cart into an order
			authed.POST("/place", orderControllers.PlaceOrderHandler(db))

			// Orders of the signed-in user
			authed.GET("/mine", orderControllers.GetMyOrdersHandler(db))

			// Fetch a single order
			authed.GET("/:orderRef", orderControllers.GetOrderHandler(db))
		}
	}
}
