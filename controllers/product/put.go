package productcontroller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/natrenakres/prostore/models"
	"gorm.io/gorm"
)

type UpdateProductInput struct {
	Name        *string  `json:"name"`
	Slug        *string  `json:"slug"`
	Category    *string  `json:"category"`
	Brand       *string  `json:"brand"`
	Description *string  `json:"description"`
	Image       *string  `json:"image"`
	Price       *float64 `json:"price"`
	Stock       *int     `json:"stock"`
	IsFeatured  *bool    `json:"is_featured"`
}

// UpdateProduct updates the provided fields of an existing product.
// PUT /admin/products/:id
func UpdateProduct(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid product ID"})
			return
		}

		var product models.Product
		if err := db.First(&product, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Product not found"})
			} else {
				c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to fetch product"})
			}
			return
		}

		var input UpdateProductInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid input: " + err.Error()})
			return
		}

		updates := make(map[string]interface{})
		if input.Name != nil {
			updates["name"] = *input.Name
		}
		if input.Slug != nil {
			updates["slug"] = *input.Slug
		}
		if input.Category != nil {
			updates["category"] = *input.Category
		}
		if input.Brand != nil {
			updates["brand"] = *input.Brand
		}
		if input.Description != nil {
			updates["description"] = *input.Description
		}
		if input.Image != nil {
			updates["image"] = *input.Image
		}
		if input.Price != nil {
			updates["price"] = *input.Price
		}
		if input.Stock != nil {
			updates["stock"] = *input.Stock
		}
		if input.IsFeatured != nil {
			updates["is_featured"] = *input.IsFeatured
		}

		if len(updates) > 0 {
			if err := db.Model(&product).Updates(updates).Error; err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to update product"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Product updated", "data": product})
	}
}
