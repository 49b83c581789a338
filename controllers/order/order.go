package orderControllers

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/natrenakres/prostore/models"
	"github.com/natrenakres/prostore/payment"
	"gorm.io/gorm"
)

var (
	ErrOrderNotFound    = errors.New("order not found")
	ErrUserNotFound     = errors.New("user not found")
	ErrAlreadyPaid      = errors.New("order is already paid")
	ErrNotPaid          = errors.New("order is not paid")
	ErrAlreadyDelivered = errors.New("order is already delivered")
	ErrPaymentMismatch  = errors.New("payment does not match order")
)

// PlaceOrderResult is the tagged outcome of PlaceOrder. A declined
// precondition is not an error: each reason carries the screen the caller
// should send the user to next.
type PlaceOrderResult struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	RedirectTo string `json:"redirect_to,omitempty"`
	OrderRef   string `json:"order_ref,omitempty"`
}

// PlaceOrder converts the user's cart into an immutable order. Preconditions
// are checked in sequence: non-empty cart, saved shipping address, chosen
// payment method. On success the order, its items and the cart clear are
// applied in a single transaction.
func PlaceOrder(db *gorm.DB, userID string) (PlaceOrderResult, error) {
	var user models.User
	if err := db.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return PlaceOrderResult{}, ErrUserNotFound
		}
		return PlaceOrderResult{}, err
	}

	var cart models.Cart
	err := db.Preload("Items").Where("user_id = ?", userID).First(&cart).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return PlaceOrderResult{}, err
	}

	if len(cart.Items) == 0 {
		return PlaceOrderResult{Message: "Your cart is empty", RedirectTo: "/cart"}, nil
	}
	if user.Address.Empty() {
		return PlaceOrderResult{Message: "No shipping address", RedirectTo: "/shipping-address"}, nil
	}
	if user.PaymentMethod == "" {
		return PlaceOrderResult{Message: "No payment method", RedirectTo: "/payment-method"}, nil
	}

	order := models.Order{
		OrderRef:        uuid.NewString(),
		UserID:          user.ID,
		ShippingAddress: user.Address,
		PaymentMethod:   user.PaymentMethod,
		ItemsPrice:      cart.ItemsPrice,
		ShippingPrice:   cart.ShippingPrice,
		TaxPrice:        cart.TaxPrice,
		TotalPrice:      cart.TotalPrice,
		CreatedAt:       time.Now(),
	}
	for _, item := range cart.Items {
		order.Items = append(order.Items, models.OrderItem{
			ProductID:    item.ProductID,
			ProductName:  item.ProductName,
			ProductSlug:  item.ProductSlug,
			ProductImage: item.ProductImage,
			Price:        item.Price,
			Quantity:     item.Quantity,
		})
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&order).Error; err != nil {
			return err
		}
		if err := tx.Where("cart_id = ?", cart.CartID).Delete(&models.CartItem{}).Error; err != nil {
			return err
		}
		return tx.Model(&models.Cart{}).Where("cart_id = ?", cart.CartID).Updates(map[string]interface{}{
			"items_price":    0,
			"shipping_price": 0,
			"tax_price":      0,
			"total_price":    0,
		}).Error
	})
	if err != nil {
		return PlaceOrderResult{}, err
	}

	return PlaceOrderResult{
		Success:    true,
		Message:    "Order created",
		RedirectTo: "/order/" + order.OrderRef,
		OrderRef:   order.OrderRef,
	}, nil
}

// UpdateOrderToPaid marks the order paid and decrements product stock by the
// quantities snapshotted at order creation. The paid flag is flipped with a
// guarded UPDATE, so of two concurrent calls exactly one wins and the loser
// observes ErrAlreadyPaid without touching stock.
func UpdateOrderToPaid(db *gorm.DB, orderRef string, result models.PaymentResult) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var order models.Order
		if err := tx.Preload("Items").Where("order_ref = ?", orderRef).First(&order).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOrderNotFound
			}
			return err
		}
		if order.IsPaid {
			return ErrAlreadyPaid
		}

		now := time.Now()
		res := tx.Model(&models.Order{}).
			Where("id = ? AND is_paid = ?", order.ID, false).
			Updates(map[string]interface{}{
				"is_paid":             true,
				"paid_at":             &now,
				"payment_provider_id": result.ProviderID,
				"payment_status":      result.Status,
				"payment_payer_email": result.PayerEmail,
				"payment_amount_paid": result.AmountPaid,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrAlreadyPaid
		}

		for _, item := range order.Items {
			if err := tx.Model(&models.Product{}).
				Where("id = ?", item.ProductID).
				Update("stock", gorm.Expr("stock - ?", item.Quantity)).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// MarkDelivered flags a paid order as delivered, exactly once.
func MarkDelivered(db *gorm.DB, orderRef string) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var order models.Order
		if err := tx.Where("order_ref = ?", orderRef).First(&order).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOrderNotFound
			}
			return err
		}
		if !order.IsPaid {
			return ErrNotPaid
		}

		now := time.Now()
		res := tx.Model(&models.Order{}).
			Where("id = ? AND is_delivered = ?", order.ID, false).
			Updates(map[string]interface{}{
				"is_delivered": true,
				"delivered_at": &now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrAlreadyDelivered
		}
		return nil
	})
}

// CreateProviderOrder asks the payment provider for a payable intent covering
// the order total and records its id on the order for later reconciliation.
func CreateProviderOrder(db *gorm.DB, provider payment.Provider, orderRef string) (string, error) {
	var order models.Order
	if err := db.Where("order_ref = ?", orderRef).First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrOrderNotFound
		}
		return "", err
	}
	if order.IsPaid {
		return "", ErrAlreadyPaid
	}

	externalID, err := provider.CreateIntent(order.OrderRef, order.TotalPrice)
	if err != nil {
		return "", err
	}

	err = db.Model(&models.Order{}).Where("id = ?", order.ID).Updates(map[string]interface{}{
		"payment_provider_id": externalID,
		"payment_status":      "",
		"payment_payer_email": "",
		"payment_amount_paid": 0,
	}).Error
	if err != nil {
		return "", err
	}
	return externalID, nil
}

// ReconcilePayPalPayment captures the provider order and accepts it as payment
// only if the captured transaction id matches the one recorded when the
// provider order was created and the provider reports it completed.
func ReconcilePayPalPayment(db *gorm.DB, provider payment.Provider, orderRef, providerOrderID string) error {
	var order models.Order
	if err := db.Where("order_ref = ?", orderRef).First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrOrderNotFound
		}
		return err
	}

	captured, err := provider.CaptureIntent(providerOrderID)
	if err != nil {
		return err
	}
	if captured.ID == "" || captured.ID != order.PaymentResult.ProviderID || !captured.Completed {
		return ErrPaymentMismatch
	}

	return UpdateOrderToPaid(db, orderRef, models.PaymentResult{
		ProviderID: captured.ID,
		Status:     captured.Status,
		PayerEmail: captured.PayerEmail,
		AmountPaid: captured.Amount,
	})
}

// ReconcileCardPayment validates a redirect-based intent after the hosted
// checkout returns: the intent's order correlation metadata must name this
// order and its status must be the completed marker.
func ReconcileCardPayment(db *gorm.DB, provider payment.Provider, orderRef, intentID string) error {
	var order models.Order
	if err := db.Where("order_ref = ?", orderRef).First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrOrderNotFound
		}
		return err
	}

	captured, err := provider.CaptureIntent(intentID)
	if err != nil {
		return err
	}
	if captured.OrderRef == "" || captured.OrderRef != order.OrderRef || !captured.Completed {
		return ErrPaymentMismatch
	}

	return UpdateOrderToPaid(db, orderRef, models.PaymentResult{
		ProviderID: captured.ID,
		Status:     captured.Status,
		PayerEmail: captured.PayerEmail,
		AmountPaid: captured.Amount,
	})
}
