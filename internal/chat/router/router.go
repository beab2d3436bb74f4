package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// RegisterRoutes 註冊聊天 websocket 路由 /ws/chat/:channel_id?token=
func RegisterRoutes(r fiber.Router, chatWebsocket *ChatWebsocketHandler) {
	ws := r.Group("/ws")
	ws.Use(func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	ws.Get("/chat/:channel_id", websocket.New(chatWebsocket.HandleConnection))
}
