package services

import (
	"fmt"
	"strings"
	"testing"

	"github.com/codewithedgar/bothost/models"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
	})
	require.NoError(t, err)

	// A single connection keeps the whole in-memory database on one handle
	// and serializes transactions the way row locks would on postgres.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.LedgerEvent{},
		&models.Referral{},
		&models.Bot{},
		&models.Message{},
	))
	return db
}

func createUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()

	user := &models.User{
		Username:     username,
		Email:        fmt.Sprintf("%s@example.com", username),
		Password:     "not-a-real-hash",
		ReferralCode: strings.ToUpper(username) + "1X",
		Verified:     true,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// fund credits through the ledger so the balance/event-sum invariant holds
// for seeded accounts too.
func fund(t *testing.T, db *gorm.DB, user *models.User, amount int64) {
	t.Helper()

	ledger := NewLedgerService(db)
	_, err := ledger.Credit(user.ID, amount, models.KindAdminGrant, "test funding")
	require.NoError(t, err)
}

func eventSum(t *testing.T, db *gorm.DB, user *models.User) int64 {
	t.Helper()

	var sum int64
	require.NoError(t, db.Model(&models.LedgerEvent{}).
		Where("user_id = ?", user.ID).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&sum).Error)
	return sum
}

func currentCoins(t *testing.T, db *gorm.DB, user *models.User) int64 {
	t.Helper()

	var fresh models.User
	require.NoError(t, db.First(&fresh, "id = ?", user.ID).Error)
	return fresh.Coins
}
