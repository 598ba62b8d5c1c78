package routes

import (
	"github.com/codewithedgar/bothost/handlers"
	"github.com/codewithedgar/bothost/middleware"
	"github.com/gofiber/fiber/v2"
)

func ProfileRoutes(app *fiber.App, h *handlers.ProfileHandler) {
	api := app.Group("/api/v1")

	profile := api.Group("/profile", middleware.Protected())
	profile.Get("/me", h.Me)
	profile.Post("/claim-daily", h.ClaimDaily)
}
