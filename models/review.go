package models

import "time"

// Review is unique per (user, product); writing a second review for the same
// pair overwrites the first one instead of inserting a duplicate.
type Review struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      string    `gorm:"uniqueIndex:idx_review_user_product;not null" json:"user_id"`
	ProductID   uint      `gorm:"uniqueIndex:idx_review_user_product;not null" json:"product_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Rating      int       `gorm:"not null" json:"rating"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
