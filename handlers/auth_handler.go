package handlers

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	config "github.com/codewithedgar/bothost/configs"
	"github.com/codewithedgar/bothost/models"
	"github.com/codewithedgar/bothost/notifications"
	"github.com/codewithedgar/bothost/services"
	"github.com/codewithedgar/bothost/utils"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var validate = validator.New()

type AuthHandler struct {
	DB     *gorm.DB
	Mailer *notifications.Mailer
}

type RegisterRequest struct {
	Username     string  `json:"username" validate:"required,alphanum,min=3,max=32"`
	Email        string  `json:"email" validate:"required,email"`
	Password     string  `json:"password" validate:"required,min=6"`
	ReferralCode *string `json:"referral_code,omitempty"`
}

type UserResponse struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	ReferralCode string    `json:"referral_code"`
	Coins        int64     `json:"coins"`
	Verified     bool      `json:"verified"`
	CreatedAt    time.Time `json:"created_at"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (h *AuthHandler) CheckUsername(c *fiber.Ctx) error {
	username := c.Query("username")
	if username == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "username query parameter is required"})
	}

	var count int64
	if err := h.DB.Model(&models.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}
	return c.JSON(fiber.Map{"username": username, "available": count == 0})
}

func (h *AuthHandler) CheckEmail(c *fiber.Ctx) error {
	email := c.Query("email")
	if email == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "email query parameter is required"})
	}

	var count int64
	if err := h.DB.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}
	return c.JSON(fiber.Map{"email": email, "available": count == 0})
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to hash password"})
	}

	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to generate verification token"})
	}
	verificationToken := hex.EncodeToString(tokenBytes)

	var newUser models.User
	err = h.DB.Transaction(func(tx *gorm.DB) error {
		code, err := utils.GenerateReferralCode(tx, req.Username)
		if err != nil {
			return err
		}

		newUser = models.User{
			Username:          req.Username,
			Email:             req.Email,
			Password:          string(hashedPassword),
			ReferralCode:      code,
			ReferredByCode:    req.ReferralCode,
			VerificationToken: &verificationToken,
		}
		if err := tx.Create(&newUser).Error; err != nil {
			return err
		}

		if req.ReferralCode != nil {
			if err := services.ApplyReferralTx(tx, &newUser, *req.ReferralCode); err != nil {
				return err
			}
			// pick up the welcome bonus for the response
			if err := tx.First(&newUser, "id = ?", newUser.ID).Error; err != nil {
				return err
			}
		}
		return nil
	})

	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Username or email already exists"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create user"})
	}

	verifyLink := fmt.Sprintf("%s/verify-email?token=%s", config.Config("FRONTEND_URL"), verificationToken)
	h.Mailer.Enqueue(
		newUser.Username,
		newUser.Email,
		"Verify your BotHost account",
		fmt.Sprintf("<h1>Welcome to BotHost!</h1><p>Click the link below to verify your email and activate your account.</p><p><a href='%s'>Verify Email</a></p>", verifyLink),
	)

	return c.Status(fiber.StatusCreated).JSON(UserResponse{
		ID:           newUser.ID.String(),
		Username:     newUser.Username,
		Email:        newUser.Email,
		ReferralCode: newUser.ReferralCode,
		Coins:        newUser.Coins,
		Verified:     newUser.Verified,
		CreatedAt:    newUser.CreatedAt,
	})
}

func (h *AuthHandler) VerifyEmail(c *fiber.Ctx) error {
	type Request struct {
		Token string `json:"token" validate:"required"`
	}
	var req Request
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	// The token match and the flag flip are one statement, so a token can
	// never verify twice.
	res := h.DB.Model(&models.User{}).
		Where("verification_token = ?", req.Token).
		Updates(map[string]interface{}{
			"verified":           true,
			"verification_token": nil,
		})
	if res.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to verify email"})
	}
	if res.RowsAffected == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid or already used verification token"})
	}

	return c.JSON(fiber.Map{"message": "Email verified successfully. You can now log in."})
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var user models.User
	if err := h.DB.Where("email = ?", req.Email).First(&user).Error; err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid email or password"})
	}

	// Verification gate comes before the password check; callers see
	// "not verified" without proving they know the password.
	if !user.Verified {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Email not verified. Please check your inbox."})
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid email or password"})
	}

	// Admin status is deliberately not in the claims; admin routes re-check
	// the database on every call.
	claims := jwt.MapClaims{
		"user_id": user.ID.String(),
		"exp":     time.Now().Add(time.Hour * 72).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	t, err := token.SignedString([]byte(config.Config("JWT_SECRET")))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create token"})
	}

	return c.JSON(fiber.Map{"token": t})
}
