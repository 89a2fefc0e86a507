package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/example/lumo/internal/config"
	"github.com/example/lumo/internal/utils"
)

const userContextKey = "currentUserID"

// AuthMiddleware validates identity-provider JWTs and loads the external user
// ID into the request context.
func AuthMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "missing authorization header")
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid authorization header")
		}

		externalID, err := utils.ParseToken(cfg.JWTSecret, parts[1])
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid token")
		}

		c.Locals(userContextKey, externalID)
		return c.Next()
	}
}

// GetCurrentUserID extracts the authenticated external user ID from context.
func GetCurrentUserID(c *fiber.Ctx) (string, bool) {
	value := c.Locals(userContextKey)
	if value == nil {
		return "", false
	}

	if id, ok := value.(string); ok && id != "" {
		return id, true
	}

	return "", false
}
