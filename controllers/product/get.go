package productcontroller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/natrenakres/prostore/models"
	"gorm.io/gorm"
)

// GetProductByID returns a single product.
// URL param: /products/:id
func GetProductByID(db *gorm.DB) gin.HandlerFunc {
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
				c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to retrieve product"})
			}
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Product fetched", "data": product})
	}
}

// GetProductBySlug returns a single product by its slug.
// URL param: /products/slug/:slug
func GetProductBySlug(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		slug := c.Param("slug")
		if slug == "" {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Slug is required"})
			return
		}

		var product models.Product
		if err := db.Where("slug = ?", slug).First(&product).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Product not found"})
			} else {
				c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to retrieve product"})
			}
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Product fetched", "data": product})
	}
}

// GetFeaturedProducts returns the latest featured products for the home banner.
// GET /products/featured
func GetFeaturedProducts(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var products []models.Product
		if err := db.Where("is_featured = ?", true).
			Order("created_at DESC").
			Limit(4).
			Find(&products).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to fetch products"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Products fetched", "data": products})
	}
}

// GetLatestProducts returns the newest products for the home page.
// GET /products/latest
func GetLatestProducts(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var products []models.Product
		if err := db.Order("created_at DESC").Limit(8).Find(&products).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to fetch products"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Products fetched", "data": products})
	}
}

// GetAllCategories returns the distinct categories with product counts.
// GET /products/categories
func GetAllCategories(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var categories []struct {
			Category string `json:"category"`
			Count    int64  `json:"count"`
		}
		if err := db.Model(&models.Product{}).
			Select("category, COUNT(*) AS count").
			Group("category").
			Order("category").
			Scan(&categories).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to fetch categories"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Categories fetched", "data": categories})
	}
}
