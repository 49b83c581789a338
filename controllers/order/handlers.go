package orderControllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/natrenakres/prostore/models"
	"github.com/natrenakres/prostore/payment"
	"gorm.io/gorm"
)

func currentUserID(c *gin.Context) (string, bool) {
	v, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Unauthorized"})
		return "", false
	}
	id, ok := v.(string)
	if !ok || id == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Unauthorized"})
		return "", false
	}
	return id, true
}

// POST /orders/place
func PlaceOrderHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}

		result, err := PlaceOrder(db, userID)
		if err != nil {
			if errors.Is(err, ErrUserNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "User not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to place order"})
			return
		}
		if result.Success {
			broadcastOrderEvent(OrderEvent{Type: EventOrderPlaced, OrderRef: result.OrderRef})
		}
		c.JSON(http.StatusOK, result)
	}
}

// GET /orders/:orderRef
func GetOrderHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderRef := c.Param("orderRef")
		var order models.Order
		if err := db.
			Preload("Items").
			Preload("User").
			Where("order_ref = ?", orderRef).
			First(&order).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Order not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to fetch order"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Order fetched", "data": order})
	}
}

// GET /orders/mine
func GetMyOrdersHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		var orders []models.Order
		if err := db.
			Where("user_id = ?", userID).
			Preload("Items").
			Order("created_at DESC").
			Find(&orders).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to fetch orders"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Orders fetched", "data": orders})
	}
}

// GET /admin/orders
func GetAllOrdersHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var orders []models.Order
		if err := db.
			Preload("User").
			Preload("Items").
			Order("created_at DESC").
			Find(&orders).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to fetch orders"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Orders fetched", "data": orders})
	}
}

// PUT /admin/orders/:orderRef/deliver
func MarkDeliveredHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderRef := c.Param("orderRef")
		if err := MarkDelivered(db, orderRef); err != nil {
			status := http.StatusInternalServerError
			msg := "Failed to update order"
			switch {
			case errors.Is(err, ErrOrderNotFound):
				status, msg = http.StatusNotFound, "Order not found"
			case errors.Is(err, ErrNotPaid):
				status, msg = http.StatusBadRequest, "Order is not paid"
			case errors.Is(err, ErrAlreadyDelivered):
				status, msg = http.StatusBadRequest, "Order is already delivered"
			}
			c.JSON(status, gin.H{"success": false, "message": msg})
			return
		}
		broadcastOrderEvent(OrderEvent{Type: EventOrderDelivered, OrderRef: orderRef})
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Order marked as delivered"})
	}
}

// DELETE /admin/orders/:orderRef
func DeleteOrderHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderRef := c.Param("orderRef")

		var order models.Order
		if err := db.Where("order_ref = ?", orderRef).First(&order).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Order not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to fetch order"})
			return
		}

		err := db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Where("order_id = ?", order.ID).Delete(&models.OrderItem{}).Error; err != nil {
				return err
			}
			return tx.Delete(&order).Error
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to delete order"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Order deleted"})
	}
}

// POST /payment/:orderRef/provider-order
// Creates the provider-side intent for the order using the payment method
// chosen at checkout.
func CreateProviderOrderHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderRef := c.Param("orderRef")

		var order models.Order
		if err := db.Where("order_ref = ?", orderRef).First(&order).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Order not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to fetch order"})
			return
		}

		provider, err := payment.ForMethod(order.PaymentMethod)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
			return
		}

		externalID, err := CreateProviderOrder(db, provider, orderRef)
		if err != nil {
			if errors.Is(err, ErrAlreadyPaid) {
				c.JSON(http.StatusConflict, gin.H{"success": false, "message": "Order is already paid"})
				return
			}
			c.JSON(http.StatusBadGateway, gin.H{"success": false, "message": "Failed to create provider order"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Provider order created", "data": externalID})
	}
}

type approvePayPalInput struct {
	ProviderOrderID string `json:"provider_order_id" binding:"required"`
}

// POST /payment/:orderRef/paypal/approve
func ApprovePayPalOrderHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderRef := c.Param("orderRef")
		var input approvePayPalInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid input: " + err.Error()})
			return
		}

		provider, err := payment.ForMethod(payment.MethodPayPal)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": err.Error()})
			return
		}

		if err := reconcileToJSON(c, ReconcilePayPalPayment(db, provider, orderRef, input.ProviderOrderID)); err != nil {
			return
		}
		broadcastOrderEvent(OrderEvent{Type: EventOrderPaid, OrderRef: orderRef})
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Your order has been paid"})
	}
}

type verifyStripeInput struct {
	PaymentIntentID string `json:"payment_intent_id" binding:"required"`
}

// POST /payment/:orderRef/stripe/verify
// Called after the hosted redirect; the intent id comes back in the
// payment_intent query parameter on the success URL.
func VerifyStripePaymentHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderRef := c.Param("orderRef")
		var input verifyStripeInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid input: " + err.Error()})
			return
		}

		provider, err := payment.ForMethod(payment.MethodStripe)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": err.Error()})
			return
		}

		if err := reconcileToJSON(c, ReconcileCardPayment(db, provider, orderRef, input.PaymentIntentID)); err != nil {
			return
		}
		broadcastOrderEvent(OrderEvent{Type: EventOrderPaid, OrderRef: orderRef})
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Your order has been paid"})
	}
}

// reconcileToJSON writes the failure response for a reconcile error, if any,
// and reports whether one was written.
func reconcileToJSON(c *gin.Context, err error) error {
	if err == nil {
		return nil
	}
	status := http.StatusBadGateway
	msg := "Error in payment"
	switch {
	case errors.Is(err, ErrOrderNotFound):
		status, msg = http.StatusNotFound, "Order not found"
	case errors.Is(err, ErrAlreadyPaid):
		status, msg = http.StatusConflict, "Order is already paid"
	case errors.Is(err, ErrPaymentMismatch):
		status, msg = http.StatusBadRequest, "Payment does not match order"
	}
	c.JSON(status, gin.H{"success": false, "message": msg})
	return err
}
