package routes

import (
	"github.com/codewithedgar/bothost/handlers"
	"github.com/gofiber/fiber/v2"
)

func AuthRoutes(app *fiber.App, h *handlers.AuthHandler) {
	api := app.Group("/api/v1")

	auth := api.Group("/auth")
	auth.Get("/check-username", h.CheckUsername)
	auth.Get("/check-email", h.CheckEmail)
	auth.Post("/register", h.Register)
	auth.Post("/login", h.Login)
	auth.Post("/verify-email", h.VerifyEmail)
}
