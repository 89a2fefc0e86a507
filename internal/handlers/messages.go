package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/lumo/internal/models"
)

// MessageHandler manages per-order messaging between buyer and seller.
type MessageHandler struct {
	db *gorm.DB
}

// NewMessageHandler constructs MessageHandler.
func NewMessageHandler(db *gorm.DB) *MessageHandler {
	return &MessageHandler{db: db}
}

// orderParties loads the order and resolves its two parties. The seller is the
// owner of the ordered service.
func (h *MessageHandler) orderParties(orderID uuid.UUID) (*models.Order, uuid.UUID, error) {
	var order models.Order
	if err := h.db.Preload("Service").First(&order, "id = ?", orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, uuid.Nil, fiber.NewError(fiber.StatusNotFound, "order not found")
		}
		return nil, uuid.Nil, err
	}
	if order.Service == nil {
		return nil, uuid.Nil, fiber.NewError(fiber.StatusNotFound, "order not found")
	}
	return &order, order.Service.UserID, nil
}

// counterpart returns the other party of the order relative to userID, or
// false when userID is not a party at all.
func counterpart(order *models.Order, sellerID, userID uuid.UUID) (uuid.UUID, bool) {
	switch userID {
	case order.BuyerID:
		return sellerID, true
	case sellerID:
		return order.BuyerID, true
	default:
		return uuid.Nil, false
	}
}

type addMessageRequest struct {
	RecipientID string `json:"recipientId"`
	Message     string `json:"message"`
}

// AddMessage appends a message to an order conversation. The sender must be a
// party to the order and the recipient must be the opposite party.
func (h *MessageHandler) AddMessage(c *fiber.Ctx) error {
	user, err := currentUser(c, h.db)
	if err != nil {
		return err
	}

	orderID, err := uuid.Parse(c.Params("orderId"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid order id")
	}

	var req addMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if req.RecipientID == "" || strings.TrimSpace(req.Message) == "" {
		return fiber.NewError(fiber.StatusBadRequest, "recipientId and message are required")
	}

	recipientID, err := uuid.Parse(req.RecipientID)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid recipient id")
	}

	order, sellerID, err := h.orderParties(orderID)
	if err != nil {
		return err
	}

	expected, isParty := counterpart(order, sellerID, user.ID)
	if !isParty {
		return fiber.NewError(fiber.StatusForbidden, "not a party to this order")
	}
	if recipientID != expected {
		return fiber.NewError(fiber.StatusBadRequest, "recipient is not the other party of this order")
	}

	message := models.Message{
		SenderID:    user.ID,
		RecipientID: recipientID,
		OrderID:     order.ID,
		Text:        req.Message,
	}
	if err := h.db.Create(&message).Error; err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": message})
}

// GetMessages returns an order's conversation oldest-first and marks the
// caller's unread messages as read in the same transaction.
func (h *MessageHandler) GetMessages(c *fiber.Ctx) error {
	user, err := currentUser(c, h.db)
	if err != nil {
		return err
	}

	orderID, err := uuid.Parse(c.Params("orderId"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid order id")
	}

	order, sellerID, err := h.orderParties(orderID)
	if err != nil {
		return err
	}

	recipientID, isParty := counterpart(order, sellerID, user.ID)
	if !isParty {
		return fiber.NewError(fiber.StatusForbidden, "not a party to this order")
	}

	var messages []models.Message
	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Sender").
			Where("order_id = ?", order.ID).
			Order("created_at asc").
			Find(&messages).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.Message{}).
			Where("order_id = ? AND recipient_id = ? AND is_read = ?", order.ID, user.ID, false).
			Update("is_read", true).Error; err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"messages":    messages,
			"recipientId": recipientID,
		},
	})
}

// GetUnreadMessages lists the caller's unread messages across all orders.
func (h *MessageHandler) GetUnreadMessages(c *fiber.Ctx) error {
	user, err := currentUser(c, h.db)
	if err != nil {
		return err
	}

	var messages []models.Message
	if err := h.db.Preload("Sender").
		Where("recipient_id = ? AND is_read = ?", user.ID, false).
		Order("created_at asc").
		Find(&messages).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": messages})
}

// MarkAsRead flags a single message read. Only its recipient may do so.
func (h *MessageHandler) MarkAsRead(c *fiber.Ctx) error {
	user, err := currentUser(c, h.db)
	if err != nil {
		return err
	}

	messageID, err := uuid.Parse(c.Params("messageId"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid message id")
	}

	var message models.Message
	if err := h.db.First(&message, "id = ?", messageID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "message not found")
		}
		return err
	}

	if message.RecipientID != user.ID {
		return fiber.NewError(fiber.StatusForbidden, "only the recipient can mark a message as read")
	}

	if err := h.db.Model(&message).Update("is_read", true).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true})
}
