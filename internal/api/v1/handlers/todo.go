package handlers

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"todo-api/internal/models"
	"todo-api/internal/repository"
	"todo-api/internal/websocket"
	"todo-api/pkg/logger"
)

// TodoHandler serves the per-user todo CRUD endpoints. Every repository call
// carries the acting user id taken from the auth middleware, so a todo owned
// by another user looks exactly like a missing one.
type TodoHandler struct {
	Todos    repository.TodoRepository
	Validate *validator.Validate
	Hub      *websocket.Hub
}

type TodoRequest struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
	Completed   bool   `json:"completed"`
}

func (h *TodoHandler) publish(userID int, action string, todo *models.Todo) {
	if h.Hub != nil {
		h.Hub.Publish(userID, action, todo)
	}
}

func (h *TodoHandler) Create(c *fiber.Ctx) error {
	userID := c.Locals("userID").(int)

	var req TodoRequest
	if err := c.BodyParser(&req); err != nil {
		logger.ErrorLogger.Error("Bad request in create todo", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Bad request"})
	}

	if err := h.Validate.Struct(req); err != nil {
		logger.ErrorLogger.Error("Validation error in create todo", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation error",
			"errors":  err.Error(),
		})
	}

	// Any client-supplied id is ignored, the store assigns one
	todo, err := h.Todos.Create(userID, req.Title, req.Description, req.Completed)
	if err != nil {
		logger.ErrorLogger.Error("Error creating todo", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Error creating todo"})
	}

	logger.AuditLogger.Info("Todo created", zap.Int("todo_id", todo.ID), zap.Int("user_id", userID))
	h.publish(userID, "created", &todo)
	return c.Status(fiber.StatusCreated).JSON(todo)
}

func (h *TodoHandler) List(c *fiber.Ctx) error {
	userID := c.Locals("userID").(int)

	todos, err := h.Todos.List(userID)
	if err != nil {
		logger.ErrorLogger.Error("Error fetching todos", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Error fetching todos"})
	}

	return c.JSON(todos)
}

func (h *TodoHandler) Get(c *fiber.Ctx) error {
	userID := c.Locals("userID").(int)

	todoID, err := c.ParamsInt("id")
	if err != nil {
		logger.ErrorLogger.Error("Invalid todo ID", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid todo ID"})
	}

	todo, err := h.Todos.Get(userID, todoID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "TODO not found"})
		}
		logger.ErrorLogger.Error("Error fetching todo", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Error fetching todo"})
	}

	return c.JSON(todo)
}

// Update replaces title, description and completed in one go.
// Id and created_at never change.
func (h *TodoHandler) Update(c *fiber.Ctx) error {
	userID := c.Locals("userID").(int)

	todoID, err := c.ParamsInt("id")
	if err != nil {
		logger.ErrorLogger.Error("Invalid todo ID", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid todo ID"})
	}

	var req TodoRequest
	if err := c.BodyParser(&req); err != nil {
		logger.ErrorLogger.Error("Bad request in update todo", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Bad request"})
	}

	if err := h.Validate.Struct(req); err != nil {
		logger.ErrorLogger.Error("Validation error in update todo", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation error",
			"errors":  err.Error(),
		})
	}

	todo, err := h.Todos.Update(userID, todoID, req.Title, req.Description, req.Completed)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "TODO not found"})
		}
		logger.ErrorLogger.Error("Error updating todo", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Error updating todo"})
	}

	logger.AuditLogger.Info("Todo updated", zap.Int("todo_id", todoID), zap.Int("user_id", userID))
	h.publish(userID, "updated", &todo)
	return c.JSON(todo)
}

// Toggle flips the completion flag.
func (h *TodoHandler) Toggle(c *fiber.Ctx) error {
	userID := c.Locals("userID").(int)

	todoID, err := c.ParamsInt("id")
	if err != nil {
		logger.ErrorLogger.Error("Invalid todo ID", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid todo ID"})
	}

	todo, err := h.Todos.Toggle(userID, todoID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "TODO not found"})
		}
		logger.ErrorLogger.Error("Error toggling todo", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Error toggling todo"})
	}

	logger.AuditLogger.Info("Todo toggled", zap.Int("todo_id", todoID), zap.Bool("completed", todo.Completed))
	h.publish(userID, "toggled", &todo)
	return c.JSON(todo)
}

func (h *TodoHandler) Delete(c *fiber.Ctx) error {
	userID := c.Locals("userID").(int)

	todoID, err := c.ParamsInt("id")
	if err != nil {
		logger.ErrorLogger.Error("Invalid todo ID", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid todo ID"})
	}

	todo, err := h.Todos.Delete(userID, todoID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "TODO not found"})
		}
		logger.ErrorLogger.Error("Error deleting todo", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Error deleting todo"})
	}

	logger.AuditLogger.Info("Todo deleted", zap.Int("todo_id", todoID), zap.Int("user_id", userID))
	h.publish(userID, "deleted", &todo)
	return c.JSON(fiber.Map{
		"message":      "TODO deleted successfully",
		"deleted_todo": todo,
	})
}

// Clear removes every todo the caller owns. Clearing an empty list succeeds.
func (h *TodoHandler) Clear(c *fiber.Ctx) error {
	userID := c.Locals("userID").(int)

	count, err := h.Todos.ClearAll(userID)
	if err != nil {
		logger.ErrorLogger.Error("Error clearing todos", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Error clearing todos"})
	}

	logger.AuditLogger.Info("Todos cleared", zap.Int("user_id", userID), zap.Int64("count", count))
	h.publish(userID, "cleared", nil)
	return c.JSON(fiber.Map{
		"message":       "All TODOs cleared",
		"deleted_count": count,
	})
}

// Root describes the API for unauthenticated visitors.
func Root(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"message": "Welcome to TODO CRUD API",
		"endpoints": fiber.Map{
			"register":  "POST /register",
			"token":     "POST /token",
			"me":        "GET /users/me",
			"create":    "POST /todos",
			"read_all":  "GET /todos",
			"read_one":  "GET /todos/{id}",
			"update":    "PUT /todos/{id}",
			"toggle":    "PATCH /todos/{id}",
			"delete":    "DELETE /todos/{id}",
			"clear_all": "DELETE /todos",
		},
	})
}
