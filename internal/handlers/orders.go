package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/lumo/internal/models"
	"github.com/example/lumo/internal/services"
)

// OrderHandler manages the order lifecycle. Confirmation runs in one of two
// modes per deployment: manual (buyer confirms with contact details) or
// gateway (a payment webhook confirms).
type OrderHandler struct {
	db       *gorm.DB
	gateway  services.PaymentGateway
	currency string
}

// NewOrderHandler constructs OrderHandler. gateway is nil in manual mode.
func NewOrderHandler(db *gorm.DB, gateway services.PaymentGateway, currency string) *OrderHandler {
	return &OrderHandler{db: db, gateway: gateway, currency: currency}
}

type createOrderRequest struct {
	ServiceID string `json:"serviceId"`
}

// CreateOrder places an unconfirmed order, snapshotting the listing price so
// later edits do not change what the buyer owes. In gateway mode a payment
// intent is created and its client secret returned for checkout.
func (h *OrderHandler) CreateOrder(c *fiber.Ctx) error {
	user, err := currentUser(c, h.db)
	if err != nil {
		return err
	}

	var req createOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	serviceID, err := uuid.Parse(req.ServiceID)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid service id")
	}

	var service models.Service
	if err := h.db.First(&service, "id = ?", serviceID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "service not found")
		}
		return err
	}

	order := models.Order{
		BuyerID:   user.ID,
		ServiceID: service.ID,
		Price:     service.Price,
	}

	var clientSecret string
	if h.gateway != nil {
		// Gateway amounts are in minor currency units.
		intent, err := h.gateway.CreateIntent(c.Context(), service.Price*100, h.currency)
		if err != nil {
			log.Printf("[Order] create payment intent: %v", err)
			return fiber.NewError(fiber.StatusBadGateway, "payment gateway unavailable")
		}
		order.PaymentIntent = intent.ID
		clientSecret = intent.ClientSecret
	}

	if err := h.db.Create(&order).Error; err != nil {
		return err
	}

	data := fiber.Map{"orderId": order.ID}
	if clientSecret != "" {
		data["clientSecret"] = clientSecret
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": data})
}

type confirmOrderRequest struct {
	ContactEmail string `json:"contactEmail"`
	ContactPhone string `json:"contactPhone"`
	Notes        string `json:"notes"`
}

// ConfirmOrder marks an order completed and records the buyer's contact
// details. Used in manual confirmation mode.
func (h *OrderHandler) ConfirmOrder(c *fiber.Ctx) error {
	user, err := currentUser(c, h.db)
	if err != nil {
		return err
	}

	orderID, err := uuid.Parse(c.Params("orderId"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid order id")
	}

	var req confirmOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if strings.TrimSpace(req.ContactEmail) == "" {
		return fiber.NewError(fiber.StatusBadRequest, "contactEmail is required")
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		var order models.Order
		if err := tx.First(&order, "id = ? AND buyer_id = ?", orderID, user.ID).Error; err != nil {
			return err
		}

		order.IsCompleted = true
		order.ContactEmail = req.ContactEmail
		order.ContactPhone = req.ContactPhone
		order.Notes = req.Notes
		return tx.Save(&order).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fiber.NewError(fiber.StatusNotFound, "order not found")
	}
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true})
}

type stripeEvent struct {
	Type string `json:"type"`
	Data struct {
		Object struct {
			ID string `json:"id"`
		} `json:"object"`
	} `json:"data"`
}

// StripeWebhook confirms orders from payment_intent.succeeded events. The
// signature is verified by middleware before this handler runs.
func (h *OrderHandler) StripeWebhook(c *fiber.Ctx) error {
	var event stripeEvent
	if err := json.Unmarshal(c.Body(), &event); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid event payload")
	}

	if event.Type != "payment_intent.succeeded" {
		return c.JSON(fiber.Map{"received": true})
	}

	result := h.db.Model(&models.Order{}).
		Where("payment_intent = ?", event.Data.Object.ID).
		Update("is_completed", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fiber.NewError(fiber.StatusNotFound, "order not found")
	}

	log.Printf("[Order] confirmed via payment intent %s", event.Data.Object.ID)
	return c.JSON(fiber.Map{"received": true})
}

// GetBuyerOrders lists the caller's confirmed orders with the purchased
// service.
func (h *OrderHandler) GetBuyerOrders(c *fiber.Ctx) error {
	user, err := currentUser(c, h.db)
	if err != nil {
		return err
	}

	var orders []models.Order
	if err := h.db.Preload("Service.Images").
		Where("buyer_id = ? AND is_completed = ?", user.ID, true).
		Order("created_at asc").
		Find(&orders).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": orders})
}

// GetSellerOrders lists confirmed orders placed against the caller's listings,
// including the buyer for contact.
func (h *OrderHandler) GetSellerOrders(c *fiber.Ctx) error {
	user, err := currentUser(c, h.db)
	if err != nil {
		return err
	}

	var orders []models.Order
	if err := h.db.Preload("Service.Images").
		Preload("Buyer").
		Joins("JOIN services ON services.id = orders.service_id").
		Where("services.user_id = ? AND orders.is_completed = ?", user.ID, true).
		Order("orders.created_at asc").
		Find(&orders).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": orders})
}

// GetOrder returns a single order visible to either party.
func (h *OrderHandler) GetOrder(c *fiber.Ctx) error {
	user, err := currentUser(c, h.db)
	if err != nil {
		return err
	}

	orderID, err := uuid.Parse(c.Params("orderId"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid order id")
	}

	var order models.Order
	if err := h.db.Preload("Service.Images").
		Preload("Service.CreatedBy").
		Preload("Buyer").
		First(&order, "id = ?", orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "order not found")
		}
		return err
	}

	if order.BuyerID != user.ID && (order.Service == nil || order.Service.UserID != user.ID) {
		return fiber.NewError(fiber.StatusForbidden, "not a party to this order")
	}

	return c.JSON(fiber.Map{"success": true, "data": order})
}
