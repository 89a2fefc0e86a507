package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/lumo/internal/middleware"
	"github.com/example/lumo/internal/models"
	"github.com/example/lumo/internal/services"
)

// currentUser maps the authenticated external identity to the internal user
// record. A valid token whose identity was never synced yields 400, matching
// the missing-caller semantics of the sync flow.
func currentUser(c *fiber.Ctx, db *gorm.DB) (*models.User, error) {
	externalID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return nil, fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	user, err := services.ResolveUser(db, externalID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fiber.NewError(fiber.StatusBadRequest, "user not found")
		}
		return nil, err
	}

	return user, nil
}
