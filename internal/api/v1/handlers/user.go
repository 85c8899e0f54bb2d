package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"todo-api/pkg/logger"
)

// Me returns the user resolved from the bearer token.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	userID := c.Locals("userID").(int)

	user, err := h.Users.GetByID(userID)
	if err != nil {
		logger.ErrorLogger.Error("User not found", zap.Int("user_id", userID), zap.Error(err))
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "User not found"})
	}

	return c.JSON(user)
}
