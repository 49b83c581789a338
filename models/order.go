package models

import "time"

// Order is an immutable snapshot of a cart at checkout time. IsPaid only ever
// moves false -> true, and IsDelivered may only become true once IsPaid is.
type Order struct {
	ID              uint          `gorm:"primaryKey" json:"id"`
	OrderRef        string        `gorm:"uniqueIndex;not null" json:"order_ref"`
	UserID          string        `gorm:"not null;index" json:"user_id"`
	User            User          `gorm:"foreignKey:UserID" json:"user"`
	Items           []OrderItem   `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	ShippingAddress Address       `gorm:"embedded;embeddedPrefix:shipping_" json:"shipping_address"`
	PaymentMethod   string        `gorm:"not null" json:"payment_method"`
	ItemsPrice      float64       `json:"items_price"`
	ShippingPrice   float64       `json:"shipping_price"`
	TaxPrice        float64       `json:"tax_price"`
	TotalPrice      float64       `json:"total_price"`
	IsPaid          bool          `gorm:"default:false" json:"is_paid"`
	PaidAt          *time.Time    `json:"paid_at"`
	IsDelivered     bool          `gorm:"default:false" json:"is_delivered"`
	DeliveredAt     *time.Time    `json:"delivered_at"`
	PaymentResult   PaymentResult `gorm:"embedded;embeddedPrefix:payment_" json:"payment_result"`
	CreatedAt       time.Time     `json:"created_at"`
}

// OrderItem is a denormalized copy of a cart line. It is never mutated after
// the order is created; Price is decoupled from the live product price.
type OrderItem struct {
	ID           uint    `gorm:"primaryKey" json:"id"`
	OrderID      uint    `gorm:"index" json:"order_id"`
	ProductID    uint    `json:"product_id"`
	ProductName  string  `json:"product_name"`
	ProductSlug  string  `json:"product_slug"`
	ProductImage string  `json:"product_image"`
	Price        float64 `json:"price"`
	Quantity     int     `json:"quantity"`
}

// PaymentResult holds what the payment provider reported for this order.
// ProviderID is set when the provider intent is created and must match the
// captured transaction id before the order is accepted as paid.
type PaymentResult struct {
	ProviderID string  `json:"provider_id"`
	Status     string  `json:"status"`
	PayerEmail string  `json:"payer_email"`
	AmountPaid float64 `json:"amount_paid"`
}
