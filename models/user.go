package models

import "time"

type User struct {
	ID            string    `gorm:"primaryKey" json:"id"`
	Email         string    `gorm:"unique;not null" json:"email"`
	Password      string    `gorm:"not null" json:"-"`
	Name          string    `json:"name"`
	Role          string    `gorm:"type:VARCHAR(20);default:'user'" json:"role"`
	Address       Address   `gorm:"embedded" json:"address"` // Embeds shipping address fields directly
	PaymentMethod string    `json:"payment_method"`          // e.g. "PayPal", "Stripe"
	Cart          Cart      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"cart"`
	Orders        []Order   `gorm:"foreignKey:UserID;constraint:OnDelete:SET NULL" json:"orders"`
	CreatedAt     time.Time `json:"created_at"`
}

// Address is embedded in User and snapshotted onto Order at checkout.
type Address struct {
	FullName   string `json:"full_name"`
	Street     string `json:"street"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

// Empty reports whether no shipping address has been saved yet.
func (a Address) Empty() bool {
	return a.Street == "" && a.City == "" && a.PostalCode == "" && a.Country == ""
}
