package v1

import (
	"github.com/gofiber/fiber/v2"

	"todo-api/internal/api/v1/handlers"
	"todo-api/internal/middleware"
	"todo-api/pkg/token"
)

func RegisterRoutes(app *fiber.App, auth *handlers.AuthHandler, todos *handlers.TodoHandler, issuer *token.Issuer) {
	// Public
	app.Get("/", handlers.Root)
	app.Post("/register", auth.Register)
	app.Post("/token", auth.Login)

	// User
	userRoutes := app.Group("/users", middleware.UseToken(issuer))
	userRoutes.Get("/me", auth.Me)

	// Todo
	todoRoutes := app.Group("/todos", middleware.UseToken(issuer))
	todoRoutes.Post("/", todos.Create)
	todoRoutes.Get("/", todos.List)
	todoRoutes.Delete("/", todos.Clear)
	todoRoutes.Get("/:id", todos.Get)
	todoRoutes.Put("/:id", todos.Update)
	todoRoutes.Patch("/:id", todos.Toggle)
	todoRoutes.Delete("/:id", todos.Delete)
}
