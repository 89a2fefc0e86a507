package models

import "github.com/google/uuid"

// Order is a purchase of a service by a buyer. Price is snapshotted from the
// service at creation time and does not track later price changes. An order
// counts towards history and revenue only once IsCompleted is true.
type Order struct {
	BaseModel
	BuyerID       uuid.UUID `gorm:"type:uuid;index" json:"buyer_id"`
	Buyer         *User     `gorm:"foreignKey:BuyerID" json:"buyer,omitempty"`
	ServiceID     uuid.UUID `gorm:"type:uuid;index" json:"service_id"`
	Service       *Service  `json:"service,omitempty"`
	Price         int64     `json:"price"`
	IsCompleted   bool      `json:"is_completed"`
	ContactEmail  string    `json:"contact_email"`
	ContactPhone  string    `json:"contact_phone"`
	Notes         string    `json:"notes"`
	PaymentIntent string    `gorm:"index" json:"payment_intent,omitempty"`
}
