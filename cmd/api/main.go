package main

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"todo-api/configs"
	v1 "todo-api/internal/api/v1"
	"todo-api/internal/api/v1/handlers"
	"todo-api/internal/middleware"
	"todo-api/internal/repository"
	myws "todo-api/internal/websocket"
	"todo-api/pkg/database"
	"todo-api/pkg/logger"
	"todo-api/pkg/token"
)

func main() {
	logger.InitLoggers()
	defer logger.SyncLoggers()
	logger.SystemLogger.Info("Starting application", zap.String("time", time.Now().Format(time.RFC3339)))

	cfg := configs.LoadConfig()

	db := database.ConnectDB(cfg)
	defer db.Close()
	logger.SystemLogger.Info("Database Connected")

	repository.CreateTableIfNotExists(db)

	redisClient := database.ConnectRedis(cfg)
	defer redisClient.Close()

	// Repositories and services wired explicitly, no globals
	users := repository.NewPostgresUserRepository(db)
	todos := repository.NewPostgresTodoRepository(db, redisClient)
	issuer := token.NewIssuer([]byte(cfg.JWTSecret), cfg.TokenTTL)
	validate := validator.New()

	hub := myws.NewHub()
	go hub.Run()

	authHandler := &handlers.AuthHandler{Users: users, Tokens: issuer, Validate: validate}
	todoHandler := &handlers.TodoHandler{Todos: todos, Validate: validate, Hub: hub}

	app := fiber.New()

	// Middleware
	app.Use(middleware.ErrorHandler())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
	}))

	v1.RegisterRoutes(app, authHandler, todoHandler, issuer)

	// WebSocket: pushes the caller's own todo changes
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", middleware.UseToken(issuer), websocket.New(func(conn *websocket.Conn) {
		client := &myws.Client{UserID: conn.Locals("userID").(int), Conn: conn}
		hub.Register <- client
		defer func() {
			hub.Unregister <- client
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
	}))

	addr := fmt.Sprintf(":%d", cfg.AppPort)
	logger.SystemLogger.Info("Application ready", zap.String("addr", addr))
	if err := app.Listen(addr); err != nil {
		logger.ErrorLogger.Error("Application failed to start", zap.Error(err))
	}
}
