package handlers

import (
	"errors"
	"log"
	"strconv"

	config "github.com/codewithedgar/bothost/configs"
	"github.com/codewithedgar/bothost/middleware"
	"github.com/codewithedgar/bothost/models"
	ws "github.com/codewithedgar/bothost/websocket"
	websocketcontrib "github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CommunityHandler struct {
	DB  *gorm.DB
	Hub *ws.Hub
}

type PostMessageRequest struct {
	Content string `json:"content" validate:"required,min=1,max=500"`
}

func (h *CommunityHandler) ListMessages(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	pageSize, _ := strconv.Atoi(c.Query("page_size", "50"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 50
	}
	offset := (page - 1) * pageSize

	var messages []models.Message
	if err := h.DB.
		Preload("User", func(db *gorm.DB) *gorm.DB { return db.Select("id", "username") }).
		Order("created_at desc").
		Limit(pageSize).
		Offset(offset).
		Find(&messages).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch messages"})
	}

	return c.JSON(messages)
}

func (h *CommunityHandler) PostMessage(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid session identity"})
	}

	var req PostMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	message := models.Message{UserID: userID, Content: req.Content}
	if err := h.DB.Create(&message).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to post message"})
	}

	h.Hub.Broadcast(&message)

	return c.Status(fiber.StatusCreated).JSON(message)
}

// ServeWs upgrades the connection after an initial auth message carrying a
// JWT, then streams community messages until the client disconnects.
func (h *CommunityHandler) ServeWs(c *websocketcontrib.Conn) {
	type AuthMessage struct {
		Type  string `json:"type"`
		Token string `json:"token"`
	}
	var authMsg AuthMessage
	if err := c.ReadJSON(&authMsg); err != nil || authMsg.Type != "auth" {
		_ = c.WriteJSON(fiber.Map{"error": "Invalid or missing auth message"})
		c.Close()
		return
	}

	userID, err := parseWsToken(authMsg.Token)
	if err != nil {
		log.Printf("WebSocket auth failed: %v", err)
		_ = c.WriteJSON(fiber.Map{"error": "Invalid token"})
		c.Close()
		return
	}

	client := &ws.Client{UserID: userID, Conn: c}
	h.Hub.Register(client)
	defer func() {
		h.Hub.Unregister(client)
		c.Close()
	}()

	// Messages are posted over HTTP; the socket is read only to detect
	// disconnects.
	for {
		if _, _, err := c.ReadMessage(); err != nil {
			return
		}
	}
}

func parseWsToken(tokenString string) (uuid.UUID, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(config.Config("JWT_SECRET")), nil
	})
	if err != nil || !token.Valid {
		return uuid.Nil, errors.New("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return uuid.Nil, errors.New("unexpected claims type")
	}
	raw, ok := claims["user_id"].(string)
	if !ok {
		return uuid.Nil, errors.New("user_id claim missing")
	}
	return uuid.Parse(raw)
}
