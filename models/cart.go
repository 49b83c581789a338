package models

import "time"

// Cart belongs to a signed-in user or to an anonymous guest session. The four
// price fields are derived from the items and recomputed on every mutation;
// TotalPrice is always ItemsPrice + ShippingPrice + TaxPrice.
type Cart struct {
	CartID        uint       `gorm:"primaryKey" json:"cart_id"`
	UserID        string     `gorm:"uniqueIndex" json:"user_id"` // Enforces ONE cart per owner
	Items         []CartItem `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE" json:"items"`
	ItemsPrice    float64    `json:"items_price"`
	ShippingPrice float64    `json:"shipping_price"`
	TaxPrice      float64    `json:"tax_price"`
	TotalPrice    float64    `json:"total_price"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

type CartItem struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	CartID       uint      `gorm:"index" json:"cart_id"` // Faster queries
	ProductID    uint      `json:"product_id"`
	ProductName  string    `json:"product_name"`
	ProductSlug  string    `json:"product_slug"`
	ProductImage string    `json:"product_image"`
	Price        float64   `json:"price"` // unit price copied from the product at add time
	Quantity     int       `json:"quantity"`
	AddedAt      time.Time `json:"added_at"`
}
