package handlers

import (
	"errors"

	"github.com/codewithedgar/bothost/middleware"
	"github.com/codewithedgar/bothost/models"
	"github.com/codewithedgar/bothost/services"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type ProfileHandler struct {
	DB     *gorm.DB
	Claims *services.ClaimService
}

func (h *ProfileHandler) Me(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid session identity"})
	}

	var user models.User
	if err := h.DB.First(&user, "id = ?", userID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
	}

	var recentEvents []models.LedgerEvent
	h.DB.Where("user_id = ?", userID).Order("created_at desc").Limit(20).Find(&recentEvents)

	return c.JSON(fiber.Map{
		"user":          user,
		"recent_events": recentEvents,
	})
}

func (h *ProfileHandler) ClaimDaily(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid session identity"})
	}

	balance, err := h.Claims.ClaimDaily(userID)
	if err != nil {
		if errors.Is(err, services.ErrAlreadyClaimedToday) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Daily reward already claimed today"})
		}
		if errors.Is(err, services.ErrAccountNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to claim daily reward"})
	}

	return c.JSON(fiber.Map{
		"message": "Daily reward claimed",
		"amount":  services.DailyClaimAmount,
		"coins":   balance,
	})
}
