package router

import (
	"chat_gateway_service/internal/api/handlers"
	"chat_gateway_service/pkg/middlewares"

	"github.com/gofiber/fiber/v2"
)

// Handlers REST handler set
type Handlers struct {
	Auth     *handlers.AuthHandler
	Groups   *handlers.GroupHandler
	Messages *handlers.MessageHandler
}

// RegisterRoutes 注册 REST 路由
// @title Chat Gateway API
// @version 1.0
// @BasePath /
func RegisterRoutes(app fiber.Router, h Handlers, resolver middlewares.CredentialResolver) {
	app.Get("/", handlers.ConnectCheck)
	app.Post("/debug", handlers.DebugLogFlag)

	authRoutes := app.Group("/auth")
	authRoutes.Post("/register", h.Auth.Register)
	authRoutes.Post("/login", h.Auth.Login)

	auth := middlewares.AuthMiddleware(resolver)

	userRoutes := app.Group("/user", auth)
	userRoutes.Get("/preferences", h.Auth.GetPreferences)
	userRoutes.Patch("/preferences", h.Auth.UpdatePreferences)

	groupRoutes := app.Group("/groups", auth)
	groupRoutes.Get("/", h.Groups.List)
	groupRoutes.Post("/", h.Groups.Create)
	groupRoutes.Get("/:id", h.Groups.Get)
	groupRoutes.Patch("/:id", h.Groups.Update)
	groupRoutes.Delete("/:id", h.Groups.Delete)

	messageRoutes := app.Group("/messages", auth)
	messageRoutes.Get("/", h.Messages.List)
	messageRoutes.Post("/", h.Messages.Create)
	messageRoutes.Get("/:id", h.Messages.Get)
	messageRoutes.Patch("/:id", h.Messages.Update)
	messageRoutes.Delete("/:id", h.Messages.Delete)

	app.Get("/mgroup-messages", auth, h.Groups.ListWithMessages)
}
