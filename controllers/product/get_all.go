package productcontroller

import (
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/natrenakres/prostore/models"
	"gorm.io/gorm"
)

const defaultPageSize = 12

// GetProducts lists products with search, category, price-range and rating
// filters plus sorting and pagination.
// GET /products?q=&category=&price=min-max&rating=&sort=&page=
func GetProducts(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		q := c.Query("q")
		category := c.Query("category")
		priceRange := c.Query("price")
		ratingStr := c.Query("rating")
		sort := c.DefaultQuery("sort", "newest")

		page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
		if err != nil || page < 1 {
			page = 1
		}
		limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultPageSize)))
		if err != nil || limit < 1 {
			limit = defaultPageSize
		}

		query := db.Model(&models.Product{})

		if q != "" && q != "all" {
			likePattern := "%" + strings.ToLower(q) + "%"
			query = query.Where("LOWER(name) LIKE ?", likePattern)
		}
		if category != "" && category != "all" {
			query = query.Where("category = ?", category)
		}
		if priceRange != "" && priceRange != "all" {
			parts := strings.SplitN(priceRange, "-", 2)
			if len(parts) != 2 {
				c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid price range"})
				return
			}
			min, errMin := strconv.ParseFloat(parts[0], 64)
			max, errMax := strconv.ParseFloat(parts[1], 64)
			if errMin != nil || errMax != nil {
				c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid price range"})
				return
			}
			query = query.Where("price >= ? AND price <= ?", min, max)
		}
		if ratingStr != "" && ratingStr != "all" {
			rating, err := strconv.ParseFloat(ratingStr, 64)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid rating"})
				return
			}
			query = query.Where("rating >= ?", rating)
		}

		switch sort {
		case "lowest":
			query = query.Order("price asc")
		case "highest":
			query = query.Order("price desc")
		case "rating":
			query = query.Order("rating desc")
		default:
			query = query.Order("created_at desc")
		}

		var count int64
		if err := query.Count(&count).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to count products"})
			return
		}

		var products []models.Product
		if err := query.Offset((page - 1) * limit).Limit(limit).Find(&products).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to fetch products"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success":     true,
			"message":     "Products fetched",
			"data":        products,
			"page":        page,
			"total_pages": int(math.Ceil(float64(count) / float64(limit))),
		})
	}
}
