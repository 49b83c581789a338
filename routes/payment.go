package routes

import (
	"github.com/gin-gonic/gin"
	orderControllers "github.com/natrenakres/prostore/controllers/order"
	"github.com/natrenakres/prostore/middleware"
	"gorm.io/gorm"
)

func SetupPaymentRoutes(r *gin.Engine, db *gorm.DB) {
	paymentGroup := r.Group("/payment")
	paymentGroup.Use(middleware.ValidateToken)
	{
		// Create the provider-side intent for the order
		paymentGroup.POST("/:orderRef/provider-order", orderControllers.CreateProviderOrderHandler(db))

		// PayPal approval callback
		paymentGroup.POST("/:orderRef/paypal/approve", orderControllers.ApprovePayPalOrderHandler(db))

		// Stripe redirect verification
		paymentGroup.POST("/:orderRef/stripe/verify", orderControllers.VerifyStripePaymentHandler(db))
	}
}
