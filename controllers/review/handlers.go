package reviewControllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
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

// POST /user/reviews
func UpsertReviewHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		var input ReviewInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid input: " + err.Error()})
			return
		}

		if err := UpsertReview(db, userID, input); err != nil {
			status := http.StatusInternalServerError
			msg := "Failed to save review"
			switch {
			case errors.Is(err, ErrProductNotFound):
				status, msg = http.StatusNotFound, "Product not found"
			case errors.Is(err, ErrInvalidRating):
				status, msg = http.StatusBadRequest, err.Error()
			}
			c.JSON(status, gin.H{"success": false, "message": msg})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Review saved"})
	}
}

// GET /products/:id/reviews
func GetReviewsHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		pid, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid product id"})
			return
		}
		reviews, err := GetReviews(db, uint(pid))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to fetch reviews"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Reviews fetched", "data": reviews})
	}
}

// GET /user/reviews/:product_id
func GetMyReviewHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		pid, err := strconv.ParseUint(c.Param("product_id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid product id"})
			return
		}
		review, err := GetUserReview(db, userID, uint(pid))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to fetch review"})
			return
		}
		if review == nil {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "No review yet"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Review fetched", "data": review})
	}
}
