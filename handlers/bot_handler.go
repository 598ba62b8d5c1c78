package handlers

import (
	"errors"

	"github.com/codewithedgar/bothost/middleware"
	"github.com/codewithedgar/bothost/models"
	"github.com/codewithedgar/bothost/services"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type BotHandler struct {
	DB          *gorm.DB
	Deployments *services.DeploymentService
}

type DeployRequest struct {
	Name string `json:"name" validate:"required,min=3,max=64"`
	Env  string `json:"env" validate:"max=4096"`
}

func (h *BotHandler) ListMyBots(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid session identity"})
	}

	var bots []models.Bot
	if err := h.DB.Where("user_id = ?", userID).Order("created_at desc").Find(&bots).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch bots"})
	}
	return c.JSON(bots)
}

func (h *BotHandler) RequestDeployment(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid session identity"})
	}

	var req DeployRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	bot, err := h.Deployments.RequestDeployment(userID, req.Name, req.Env)
	if err != nil {
		if errors.Is(err, services.ErrInsufficientBalance) {
			return c.Status(fiber.StatusPaymentRequired).JSON(fiber.Map{
				"error": "Insufficient coins for deployment",
				"cost":  services.DeploymentCost,
			})
		}
		if errors.Is(err, services.ErrAccountNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to request deployment"})
	}

	return c.Status(fiber.StatusCreated).JSON(bot)
}
