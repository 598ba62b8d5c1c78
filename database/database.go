package database

import (
	"fmt"
	"log"

	config "github.com/codewithedgar/bothost/configs"
	"github.com/codewithedgar/bothost/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func Connect() (*gorm.DB, error) {
	dsn := config.Config("DATABASE_URL")

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		SkipDefaultTransaction: true,
		// TranslateError lets callers match gorm.ErrDuplicatedKey instead of
		// driver-specific unique-violation errors.
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	fmt.Println("✅ Database connected successfully")
	return db, nil
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.LedgerEvent{},
		&models.Referral{},
		&models.Bot{},
		&models.Message{},
	)
}

// SeedAdmin creates the admin account from env if it does not exist yet.
// Admin status is never self-service, this is the only path that sets it.
func SeedAdmin(db *gorm.DB) {
	adminEmail := config.Config("ADMIN_EMAIL")
	adminPassword := config.Config("ADMIN_PASSWORD")
	if adminEmail == "" || adminPassword == "" {
		log.Println("Admin credentials not configured, skipping admin seed.")
		return
	}

	var count int64
	if err := db.Model(&models.User{}).Where("email = ?", adminEmail).Count(&count).Error; err != nil {
		log.Printf("🔥 Failed to check for admin user: %v", err)
		return
	}
	if count > 0 {
		log.Println("Admin user already exists.")
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("🔥 Failed to hash admin password: %v", err)
		return
	}

	admin := models.User{
		Username:     config.Config("ADMIN_USERNAME"),
		Email:        adminEmail,
		Password:     string(hashedPassword),
		ReferralCode: "ADMIN-SEED",
		Verified:     true,
		IsAdmin:      true,
	}
	if err := db.Create(&admin).Error; err != nil {
		log.Printf("🔥 Failed to seed admin user: %v", err)
		return
	}

	log.Println("✅ Admin user seeded successfully")
}
