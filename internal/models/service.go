package models

import "github.com/google/uuid"

// Service represents a listing offered for sale by its creator.
type Service struct {
	BaseModel
	UserID       uuid.UUID      `gorm:"type:uuid;index" json:"user_id"`
	CreatedBy    *User          `gorm:"foreignKey:UserID" json:"created_by,omitempty"`
	Title        string         `json:"title"`
	Description  string         `json:"description"`
	ShortDesc    string         `json:"short_desc"`
	Category     string         `json:"category"`
	Subcategory  string         `json:"subcategory"`
	Price        int64          `json:"price"`
	DeliveryTime int            `json:"delivery_time"`
	Revisions    int            `json:"revisions"`
	Features     []string       `gorm:"serializer:json" json:"features"`
	Images       []ServiceImage `json:"images,omitempty"`
	Reviews      []Review       `json:"reviews,omitempty"`
}

// ServiceImage is a stored image asset attached to a listing.
type ServiceImage struct {
	BaseModel
	ServiceID uuid.UUID `gorm:"type:uuid;index" json:"service_id"`
	URL       string    `json:"url"`
	StorageID string    `json:"storage_id"`
}
