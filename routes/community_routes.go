package routes

import (
	"github.com/codewithedgar/bothost/handlers"
	"github.com/codewithedgar/bothost/middleware"
	websocketcontrib "github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

func CommunityRoutes(app *fiber.App, h *handlers.CommunityHandler) {
	api := app.Group("/api/v1")

	community := api.Group("/community", middleware.Protected())
	community.Get("/messages", h.ListMessages)
	community.Post("/messages", h.PostMessage)

	// The websocket upgrade cannot carry the Authorization header from
	// browsers, so the socket authenticates itself with a first message.
	app.Use("/api/v1/community/ws", func(c *fiber.Ctx) error {
		if websocketcontrib.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/api/v1/community/ws", websocketcontrib.New(h.ServeWs))
}
