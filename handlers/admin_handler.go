package handlers

import (
	"errors"
	"strconv"

	"github.com/codewithedgar/bothost/models"
	"github.com/codewithedgar/bothost/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AdminHandler struct {
	DB     *gorm.DB
	Ledger services.Ledger
	Stats  *services.StatsService
}

func (h *AdminHandler) ListAllBots(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	pageSize, _ := strconv.Atoi(c.Query("page_size", "50"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 200 {
		pageSize = 50
	}
	offset := (page - 1) * pageSize

	query := h.DB.Preload("User", func(db *gorm.DB) *gorm.DB { return db.Select("id", "username", "email") })
	if status := c.Query("status"); status != "" {
		if !models.BotStatus(status).Valid() {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Unknown bot status"})
		}
		query = query.Where("status = ?", status)
	}

	var bots []models.Bot
	if err := query.Order("created_at desc").Limit(pageSize).Offset(offset).Find(&bots).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch bots"})
	}
	return c.JSON(bots)
}

func (h *AdminHandler) UpdateBotEnv(c *fiber.Ctx) error {
	botID := c.Params("botId")

	type Request struct {
		Env string `json:"env" validate:"max=4096"`
	}
	var req Request
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var bot models.Bot
	if err := h.DB.First(&bot, "id = ?", botID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Bot not found"})
	}

	bot.Env = req.Env
	if err := h.DB.Save(&bot).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update bot"})
	}

	return c.JSON(bot)
}

func (h *AdminHandler) GetStats(c *fiber.Ctx) error {
	stats, err := h.Stats.PlatformStats(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to compute stats"})
	}
	return c.JSON(stats)
}

// GrantCoins is the reconciliation path for failed deployments: there is no
// automatic refund, an admin credits the account explicitly.
func (h *AdminHandler) GrantCoins(c *fiber.Ctx) error {
	userID, err := uuid.Parse(c.Params("userId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid user id"})
	}

	type Request struct {
		Amount int64  `json:"amount" validate:"required,gt=0"`
		Reason string `json:"reason" validate:"required,min=3,max=255"`
	}
	var req Request
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	balance, err := h.Ledger.Credit(userID, req.Amount, models.KindAdminGrant, req.Reason)
	if err != nil {
		if errors.Is(err, services.ErrAccountNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to grant coins"})
	}

	return c.JSON(fiber.Map{"message": "Coins granted", "coins": balance})
}
