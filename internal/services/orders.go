package services

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/lumo/internal/models"
)

// HasCompletedOrder reports whether a confirmed order exists for exactly this
// (buyer, service) pair. It gates reviews and the client-side purchase check.
func HasCompletedOrder(db *gorm.DB, buyerID, serviceID uuid.UUID) (bool, error) {
	var count int64
	err := db.Model(&models.Order{}).
		Where("buyer_id = ? AND service_id = ? AND is_completed = ?", buyerID, serviceID, true).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
