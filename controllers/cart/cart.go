package cartControllers

import (
	"errors"
	"math"
	"time"

	"github.com/natrenakres/prostore/models"
	"gorm.io/gorm"
)

// Pricing policy applied whenever cart items change.
const (
	FreeShippingMin = 100.0
	FlatShipping    = 10.0
	TaxRate         = 0.15
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrOutOfStock      = errors.New("not enough stock")
	ErrItemNotFound    = errors.New("item not in cart")
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
)

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// CalcPrices recomputes the four derived totals from the line items. Pure.
func CalcPrices(items []models.CartItem) (itemsPrice, shippingPrice, taxPrice, totalPrice float64) {
	for _, item := range items {
		itemsPrice += item.Price * float64(item.Quantity)
	}
	itemsPrice = round2(itemsPrice)
	if itemsPrice > FreeShippingMin {
		shippingPrice = 0
	} else {
		shippingPrice = FlatShipping
	}
	if len(items) == 0 {
		shippingPrice = 0
	}
	taxPrice = round2(itemsPrice * TaxRate)
	totalPrice = round2(itemsPrice + shippingPrice + taxPrice)
	return
}

// getOrCreateCart returns the owner's cart, creating an empty one on first use.
func getOrCreateCart(tx *gorm.DB, ownerID string) (*models.Cart, error) {
	var cart models.Cart
	err := tx.Preload("Items").Where("user_id = ?", ownerID).First(&cart).Error
	if err == nil {
		return &cart, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	cart = models.Cart{UserID: ownerID}
	if err := tx.Create(&cart).Error; err != nil {
		return nil, err
	}
	return &cart, nil
}

// AddToCart adds qty of a product to the owner's cart, merging with an
// existing line for the same product. The requested total quantity may not
// exceed the product's current stock. The item list and recomputed totals are
// persisted in one transaction, so a failed add leaves the cart unchanged.
func AddToCart(db *gorm.DB, ownerID string, productID uint, qty int) (*models.Cart, error) {
	if qty < 1 {
		return nil, ErrInvalidQuantity
	}

	var cart *models.Cart
	err := db.Transaction(func(tx *gorm.DB) error {
		var product models.Product
		if err := tx.First(&product, "id = ?", productID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrProductNotFound
			}
			return err
		}

		var err error
		cart, err = getOrCreateCart(tx, ownerID)
		if err != nil {
			return err
		}

		var item models.CartItem
		err = tx.Where("cart_id = ? AND product_id = ?", cart.CartID, productID).First(&item).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			if product.Stock < qty {
				return ErrOutOfStock
			}
			item = models.CartItem{
				CartID:       cart.CartID,
				ProductID:    product.ID,
				ProductName:  product.Name,
				ProductSlug:  product.Slug,
				ProductImage: product.Image,
				Price:        product.Price,
				Quantity:     qty,
				AddedAt:      time.Now(),
			}
			if err := tx.Create(&item).Error; err != nil {
				return err
			}
		case err != nil:
			return err
		default:
			if product.Stock < item.Quantity+qty {
				return ErrOutOfStock
			}
			item.Quantity += qty
			item.AddedAt = time.Now()
			if err := tx.Save(&item).Error; err != nil {
				return err
			}
		}

		return saveTotals(tx, cart)
	})
	if err != nil {
		return nil, err
	}
	return cart, nil
}

// RemoveFromCart decrements the line for the product by one, dropping the
// line entirely when its quantity reaches zero, and recomputes the totals.
func RemoveFromCart(db *gorm.DB, ownerID string, productID uint) (*models.Cart, error) {
	var cart *models.Cart
	err := db.Transaction(func(tx *gorm.DB) error {
		var err error
		var found models.Cart
		if err = tx.Where("user_id = ?", ownerID).First(&found).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrItemNotFound
			}
			return err
		}
		cart = &found

		var item models.CartItem
		err = tx.Where("cart_id = ? AND product_id = ?", cart.CartID, productID).First(&item).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrItemNotFound
			}
			return err
		}

		if item.Quantity <= 1 {
			if err := tx.Delete(&item).Error; err != nil {
				return err
			}
		} else {
			item.Quantity--
			if err := tx.Save(&item).Error; err != nil {
				return err
			}
		}

		return saveTotals(tx, cart)
	})
	if err != nil {
		return nil, err
	}
	return cart, nil
}

// ClearCart removes every line and zeroes the totals.
func ClearCart(db *gorm.DB, ownerID string) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var cart models.Cart
		if err := tx.Where("user_id = ?", ownerID).First(&cart).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}
		if err := tx.Where("cart_id = ?", cart.CartID).Delete(&models.CartItem{}).Error; err != nil {
			return err
		}
		return tx.Model(&cart).Updates(map[string]interface{}{
			"items_price":    0,
			"shipping_price": 0,
			"tax_price":      0,
			"total_price":    0,
		}).Error
	})
}

// saveTotals reloads the item list and persists the recomputed totals.
func saveTotals(tx *gorm.DB, cart *models.Cart) error {
	var items []models.CartItem
	if err := tx.Where("cart_id = ?", cart.CartID).Order("id").Find(&items).Error; err != nil {
		return err
	}
	cart.Items = items
	cart.ItemsPrice, cart.ShippingPrice, cart.TaxPrice, cart.TotalPrice = CalcPrices(items)
	return tx.Model(&models.Cart{}).Where("cart_id = ?", cart.CartID).Updates(map[string]interface{}{
		"items_price":    cart.ItemsPrice,
		"shipping_price": cart.ShippingPrice,
		"tax_price":      cart.TaxPrice,
		"total_price":    cart.TotalPrice,
	}).Error
}

// GetCart returns the owner's cart with items, or an empty cart if none yet.
func GetCart(db *gorm.DB, ownerID string) (*models.Cart, error) {
	var cart models.Cart
	err := db.Preload("Items").Where("user_id = ?", ownerID).First(&cart).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &models.Cart{UserID: ownerID, Items: []models.CartItem{}}, nil
	}
	if err != nil {
		return nil, err
	}
	return &cart, nil
}
