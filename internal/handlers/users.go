package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/lumo/internal/services"
)

// UserHandler manages identity sync endpoints.
type UserHandler struct {
	db *gorm.DB
}

// NewUserHandler constructs UserHandler.
func NewUserHandler(db *gorm.DB) *UserHandler {
	return &UserHandler{db: db}
}

type syncUserRequest struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
}

// SyncUser lazily creates the internal record for an externally authenticated
// user. Idempotent; an existing record is returned unchanged.
func (h *UserHandler) SyncUser(c *fiber.Ctx) error {
	var req syncUserRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	user, err := services.EnsureUser(h.db, req.UserID, req.Email)
	if err != nil {
		if errors.Is(err, services.ErrMissingIdentity) {
			return fiber.NewError(fiber.StatusBadRequest, "userId and email are required")
		}
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": user})
}
