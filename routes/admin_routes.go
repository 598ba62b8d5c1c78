package routes

import (
	"github.com/codewithedgar/bothost/handlers"
	"github.com/codewithedgar/bothost/middleware"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func AdminRoutes(app *fiber.App, db *gorm.DB, h *handlers.AdminHandler) {
	api := app.Group("/api/v1")

	admin := api.Group("/admin", middleware.Protected(), middleware.AdminRequired(db))

	admin.Get("/bots", h.ListAllBots)
	admin.Put("/bots/:botId/env", h.UpdateBotEnv)
	admin.Get("/stats", h.GetStats)
	admin.Post("/users/:userId/grant", h.GrantCoins)
}
