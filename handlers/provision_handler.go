package handlers

import (
	"crypto/subtle"
	"errors"
	"log"

	config "github.com/codewithedgar/bothost/configs"
	"github.com/codewithedgar/bothost/models"
	"github.com/codewithedgar/bothost/provisioning"
	"github.com/codewithedgar/bothost/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ProvisionHandler struct {
	Deployments *services.DeploymentService
}

// Callback receives asynchronous status updates from the provisioning
// collaborator. It is authenticated by a shared secret, not a user session.
func (h *ProvisionHandler) Callback(c *fiber.Ctx) error {
	secret := config.Config("PROVISIONER_CALLBACK_SECRET")
	given := c.Get("X-Provisioner-Token")
	if secret == "" || subtle.ConstantTimeCompare([]byte(secret), []byte(given)) != 1 {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid callback token"})
	}

	var update provisioning.StatusUpdate
	if err := c.BodyParser(&update); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}

	botID, err := uuid.Parse(update.BotID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid bot id"})
	}

	next := models.BotStatus(update.Status)
	if !next.Valid() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Unknown bot status"})
	}

	if err := h.Deployments.UpdateStatus(botID, next); err != nil {
		if errors.Is(err, services.ErrBotNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Bot not found"})
		}
		if errors.Is(err, services.ErrInvalidTransition) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update bot status"})
	}

	log.Printf("Bot %s moved to %s (%s)", botID, next, update.Detail)
	return c.JSON(fiber.Map{"message": "Status updated"})
}
