package models

// User represents an internal user record mapped from the external identity
// provider. The external reference is immutable once created; email is captured
// on first sync and never updated afterwards.
type User struct {
	BaseModel
	ClerkUserID string    `gorm:"uniqueIndex" json:"clerk_user_id"`
	Email       string    `json:"email"`
	Services    []Service `gorm:"foreignKey:UserID" json:"services,omitempty"`
	Orders      []Order   `gorm:"foreignKey:BuyerID" json:"orders,omitempty"`
}
