package models

import "github.com/google/uuid"

// Message belongs to exactly one order thread. The recipient is always the
// other party on that order.
type Message struct {
	BaseModel
	SenderID    uuid.UUID `gorm:"type:uuid;index" json:"sender_id"`
	Sender      *User     `gorm:"foreignKey:SenderID" json:"sender,omitempty"`
	RecipientID uuid.UUID `gorm:"type:uuid;index" json:"recipient_id"`
	OrderID     uuid.UUID `gorm:"type:uuid;index" json:"order_id"`
	Text        string    `json:"text"`
	IsRead      bool      `json:"is_read"`
}
