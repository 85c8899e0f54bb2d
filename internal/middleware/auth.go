package middleware

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"todo-api/pkg/token"
)

// UseToken rejects requests without a valid bearer token and stores the
// resolved user id in c.Locals("userID") for the handlers behind it.
func UseToken(issuer *token.Issuer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "No token provided"})
		}
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Invalid token format"})
		}
		userID, err := issuer.Verify(parts[1])
		if err != nil {
			msg := "Invalid token"
			if errors.Is(err, token.ErrExpiredToken) {
				msg = "Token expired"
			}
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": msg})
		}
		c.Locals("userID", userID)
		return c.Next()
	}
}
