package models

import (
	"time"

	"gorm.io/gorm"
)

type Product struct {
	ID          uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string  `gorm:"not null" json:"name"`
	Slug        string  `gorm:"uniqueIndex;not null" json:"slug"`
	Category    string  `gorm:"index" json:"category"`
	Brand       string  `json:"brand"`
	Description string  `json:"description"`
	Image       string  `json:"image"`
	Price       float64 `gorm:"not null" json:"price"`
	Stock       int     `json:"stock"`
	// Rating and NumReviews are derived from the reviews table and only
	// rewritten inside the review upsert transaction.
	Rating     float64        `json:"rating"`
	NumReviews int            `json:"num_reviews"`
	IsFeatured bool           `json:"is_featured"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}
