package models

import "github.com/google/uuid"

// Review is feedback left by a buyer who has a completed order for the service.
type Review struct {
	BaseModel
	ReviewerID uuid.UUID `gorm:"type:uuid;index" json:"reviewer_id"`
	Reviewer   *User     `gorm:"foreignKey:ReviewerID" json:"reviewer,omitempty"`
	ServiceID  uuid.UUID `gorm:"type:uuid;index" json:"service_id"`
	Rating     int       `json:"rating"`
	ReviewText string    `json:"review_text"`
}
