package routes

import (
	"github.com/codewithedgar/bothost/handlers"
	"github.com/codewithedgar/bothost/middleware"
	"github.com/gofiber/fiber/v2"
)

func BotRoutes(app *fiber.App, h *handlers.BotHandler, p *handlers.ProvisionHandler) {
	api := app.Group("/api/v1")

	bots := api.Group("/bots", middleware.Protected())
	bots.Get("", h.ListMyBots)
	bots.Post("", h.RequestDeployment)

	// collaborator callback, shared-secret auth inside the handler
	api.Post("/provisioner/callback", p.Callback)
}
