package productcontroller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/natrenakres/prostore/models"
	"gorm.io/gorm"
)

type ProductInput struct {
	Name        string  `json:"name" binding:"required,min=3"`
	Slug        string  `json:"slug" binding:"required,min=3"`
	Category    string  `json:"category" binding:"required"`
	Brand       string  `json:"brand"`
	Description string  `json:"description"`
	Image       string  `json:"image"`
	Price       float64 `json:"price" binding:"required,gt=0"`
	Stock       int     `json:"stock" binding:"min=0"`
	IsFeatured  bool    `json:"is_featured"`
}

// CreateProduct creates a new product.
// POST /admin/products
func CreateProduct(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input ProductInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid input: " + err.Error()})
			return
		}

		product := models.Product{
			Name:        input.Name,
			Slug:        input.Slug,
			Category:    input.Category,
			Brand:       input.Brand,
			Description: input.Description,
			Image:       input.Image,
			Price:       input.Price,
			Stock:       input.Stock,
			IsFeatured:  input.IsFeatured,
		}
		if err := db.Create(&product).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to create product"})
			return
		}
		c.JSON(http.StatusCreated, gin.H{"success": true, "message": "Product created", "data": product})
	}
}
