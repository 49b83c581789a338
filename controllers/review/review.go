package reviewControllers

import (
	"errors"

	"github.com/natrenakres/prostore/models"
	"gorm.io/gorm"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrInvalidRating   = errors.New("rating must be between 1 and 5")
)

type ReviewInput struct {
	ProductID   uint   `json:"product_id" binding:"required"`
	Title       string `json:"title" binding:"required"`
	Description string `json:"description" binding:"required"`
	Rating      int    `json:"rating" binding:"required"`
}

// UpsertReview writes the user's review for a product, overwriting a previous
// one for the same (user, product) pair, and recomputes the product's average
// rating and review count in the same transaction.
func UpsertReview(db *gorm.DB, userID string, input ReviewInput) error {
	if input.Rating < 1 || input.Rating > 5 {
		return ErrInvalidRating
	}

	var product models.Product
	if err := db.First(&product, "id = ?", input.ProductID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProductNotFound
		}
		return err
	}

	return db.Transaction(func(tx *gorm.DB) error {
		var existing models.Review
		err := tx.Where("product_id = ? AND user_id = ?", input.ProductID, userID).First(&existing).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			review := models.Review{
				UserID:      userID,
				ProductID:   input.ProductID,
				Title:       input.Title,
				Description: input.Description,
				Rating:      input.Rating,
			}
			if err := tx.Create(&review).Error; err != nil {
				return err
			}
		case err != nil:
			return err
		default:
			existing.Title = input.Title
			existing.Description = input.Description
			existing.Rating = input.Rating
			if err := tx.Save(&existing).Error; err != nil {
				return err
			}
		}

		var agg struct {
			AvgRating  float64
			NumReviews int64
		}
		if err := tx.Model(&models.Review{}).
			Where("product_id = ?", input.ProductID).
			Select("COALESCE(AVG(rating), 0) AS avg_rating, COUNT(*) AS num_reviews").
			Scan(&agg).Error; err != nil {
			return err
		}

		return tx.Model(&models.Product{}).
			Where("id = ?", input.ProductID).
			Updates(map[string]interface{}{
				"rating":      agg.AvgRating,
				"num_reviews": agg.NumReviews,
			}).Error
	})
}

// GetReviews lists all reviews for a product, newest first.
func GetReviews(db *gorm.DB, productID uint) ([]models.Review, error) {
	var reviews []models.Review
	err := db.Where("product_id = ?", productID).Order("created_at DESC").Find(&reviews).Error
	return reviews, err
}

// GetUserReview returns the review the user wrote for the product, if any.
func GetUserReview(db *gorm.DB, userID string, productID uint) (*models.Review, error) {
	var review models.Review
	err := db.Where("product_id = ? AND user_id = ?", productID, userID).First(&review).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &review, nil
}
