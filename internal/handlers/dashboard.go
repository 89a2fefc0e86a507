package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/lumo/internal/models"
)

// DashboardHandler aggregates seller-side statistics.
type DashboardHandler struct {
	db *gorm.DB
}

// NewDashboardHandler constructs DashboardHandler.
func NewDashboardHandler(db *gorm.DB) *DashboardHandler {
	return &DashboardHandler{db: db}
}

// sellerOrders scopes confirmed orders to listings owned by sellerID.
func sellerOrders(db *gorm.DB, sellerID uuid.UUID) *gorm.DB {
	return db.Model(&models.Order{}).
		Joins("JOIN services ON services.id = orders.service_id").
		Where("services.user_id = ? AND orders.is_completed = ?", sellerID, true)
}

func (h *DashboardHandler) revenueSince(sellerID uuid.UUID, since time.Time) (int64, error) {
	var row struct{ Revenue int64 }
	err := sellerOrders(h.db, sellerID).
		Select("COALESCE(SUM(orders.price), 0) AS revenue").
		Where("orders.created_at >= ?", since).
		Scan(&row).Error
	return row.Revenue, err
}

// GetSellerData returns listing, order and unread-message counts plus revenue
// windows for the current year, month and day.
func (h *DashboardHandler) GetSellerData(c *fiber.Ctx) error {
	user, err := currentUser(c, h.db)
	if err != nil {
		return err
	}

	var serviceCount int64
	if err := h.db.Model(&models.Service{}).
		Where("user_id = ?", user.ID).
		Count(&serviceCount).Error; err != nil {
		return err
	}

	var orderCount int64
	if err := sellerOrders(h.db, user.ID).Count(&orderCount).Error; err != nil {
		return err
	}

	var unreadCount int64
	if err := h.db.Model(&models.Message{}).
		Where("recipient_id = ? AND is_read = ?", user.ID, false).
		Count(&unreadCount).Error; err != nil {
		return err
	}

	now := time.Now()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	startOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	startOfYear := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location())

	yearlyRevenue, err := h.revenueSince(user.ID, startOfYear)
	if err != nil {
		return err
	}
	monthlyRevenue, err := h.revenueSince(user.ID, startOfMonth)
	if err != nil {
		return err
	}
	dailyRevenue, err := h.revenueSince(user.ID, startOfDay)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"dashboardData": fiber.Map{
			"services":       serviceCount,
			"orders":         orderCount,
			"unreadMessages": unreadCount,
			"revenue":        yearlyRevenue,
			"monthlyRevenue": monthlyRevenue,
			"dailyRevenue":   dailyRevenue,
		},
	})
}
