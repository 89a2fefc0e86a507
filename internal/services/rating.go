package services

import (
	"strconv"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/lumo/internal/models"
)

type sellerRatingRow struct {
	Total     int64
	RatingSum int64
}

// SellerRating aggregates review count and average rating across all services
// owned by the seller, not just a single listing. The average is formatted to
// one decimal place and defaults to "0.0" when the seller has no reviews.
func SellerRating(db *gorm.DB, sellerID uuid.UUID) (int64, string, error) {
	var row sellerRatingRow
	err := db.Model(&models.Review{}).
		Select("COUNT(reviews.id) AS total, COALESCE(SUM(reviews.rating), 0) AS rating_sum").
		Joins("JOIN services ON services.id = reviews.service_id").
		Where("services.user_id = ?", sellerID).
		Scan(&row).Error
	if err != nil {
		return 0, "0.0", err
	}

	if row.Total == 0 {
		return 0, "0.0", nil
	}

	average := float64(row.RatingSum) / float64(row.Total)
	return row.Total, strconv.FormatFloat(average, 'f', 1, 64), nil
}
