package cartControllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type CartItemInput struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required,min=1"`
}

func ownerID(c *gin.Context) (string, bool) {
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

// GET /user/cart
func GetCartHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		owner, ok := ownerID(c)
		if !ok {
			return
		}
		cart, err := GetCart(db, owner)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to fetch cart"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Cart fetched", "data": cart})
	}
}

// POST /user/cart
func AddToCartHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		owner, ok := ownerID(c)
		if !ok {
			return
		}
		var input CartItemInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid input: " + err.Error()})
			return
		}

		cart, err := AddToCart(db, owner, input.ProductID, input.Quantity)
		if err != nil {
			status := http.StatusInternalServerError
			msg := "Failed to add item to cart"
			switch {
			case errors.Is(err, ErrProductNotFound):
				status, msg = http.StatusBadRequest, "Product does not exist"
			case errors.Is(err, ErrOutOfStock):
				status, msg = http.StatusBadRequest, "Not enough stock"
			case errors.Is(err, ErrInvalidQuantity):
				status, msg = http.StatusBadRequest, err.Error()
			}
			c.JSON(status, gin.H{"success": false, "message": msg})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Item added to cart", "data": cart})
	}
}

// DELETE /user/cart/:product_id
func RemoveFromCartHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		owner, ok := ownerID(c)
		if !ok {
			return
		}
		pid, err := strconv.ParseUint(c.Param("product_id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid product id"})
			return
		}

		cart, err := RemoveFromCart(db, owner, uint(pid))
		if err != nil {
			if errors.Is(err, ErrItemNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Cart item not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to remove item"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Item removed from cart", "data": cart})
	}
}

// DELETE /user/cart
func ClearCartHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		owner, ok := ownerID(c)
		if !ok {
			return
		}
		if err := ClearCart(db, owner); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to clear cart"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Cart cleared"})
	}
}
