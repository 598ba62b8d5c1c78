package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/codewithedgar/bothost/handlers"
	"github.com/codewithedgar/bothost/models"
	"github.com/codewithedgar/bothost/notifications"
	"github.com/codewithedgar/bothost/routes"
	"github.com/codewithedgar/bothost/services"
	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret")

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
	})
	require.NoError(t, err)
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

	app := fiber.New()
	routes.AuthRoutes(app, &handlers.AuthHandler{DB: db, Mailer: notifications.NewMailer()})
	routes.ProfileRoutes(app, &handlers.ProfileHandler{DB: db, Claims: services.NewClaimService(db)})
	routes.AdminRoutes(app, db, &handlers.AdminHandler{
		DB:     db,
		Ledger: services.NewLedgerService(db),
		Stats:  services.NewStatsService(db, nil),
	})
	return app, db
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body interface{}, token string) (int, map[string]interface{}) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var decoded map[string]interface{}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &decoded)
	}
	return resp.StatusCode, decoded
}

func register(t *testing.T, app *fiber.App, username, email string, referralCode *string) map[string]interface{} {
	t.Helper()
	body := map[string]interface{}{
		"username": username,
		"email":    email,
		"password": "secret123",
	}
	if referralCode != nil {
		body["referral_code"] = *referralCode
	}
	status, resp := doJSON(t, app, http.MethodPost, "/api/v1/auth/register", body, "")
	require.Equal(t, http.StatusCreated, status, "register %s: %v", username, resp)
	return resp
}

func verifyAndLogin(t *testing.T, app *fiber.App, db *gorm.DB, email string) string {
	t.Helper()

	var user models.User
	require.NoError(t, db.First(&user, "email = ?", email).Error)
	require.NotNil(t, user.VerificationToken)

	status, _ := doJSON(t, app, http.MethodPost, "/api/v1/auth/verify-email",
		map[string]string{"token": *user.VerificationToken}, "")
	require.Equal(t, http.StatusOK, status)

	status, resp := doJSON(t, app, http.MethodPost, "/api/v1/auth/login",
		map[string]string{"email": email, "password": "secret123"}, "")
	require.Equal(t, http.StatusOK, status)
	token, _ := resp["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func TestRegisterCreatesUnverifiedAccountWithZeroCoins(t *testing.T) {
	app, db := setupApp(t)

	resp := register(t, app, "alice", "alice@example.com", nil)
	assert.Equal(t, "alice", resp["username"])
	assert.Equal(t, float64(0), resp["coins"])
	assert.Equal(t, false, resp["verified"])

	var user models.User
	require.NoError(t, db.First(&user, "email = ?", "alice@example.com").Error)
	assert.NotEmpty(t, user.ReferralCode)
	assert.NotNil(t, user.VerificationToken)
}

func TestRegisterDuplicateIdentityRejected(t *testing.T) {
	app, _ := setupApp(t)
	register(t, app, "alice", "alice@example.com", nil)

	status, _ := doJSON(t, app, http.MethodPost, "/api/v1/auth/register", map[string]string{
		"username": "alice", "email": "other@example.com", "password": "secret123",
	}, "")
	assert.Equal(t, http.StatusConflict, status)

	status, _ = doJSON(t, app, http.MethodPost, "/api/v1/auth/register", map[string]string{
		"username": "alice2", "email": "alice@example.com", "password": "secret123",
	}, "")
	assert.Equal(t, http.StatusConflict, status)
}

func TestRegisterWithReferralCodePaysBonusPair(t *testing.T) {
	app, db := setupApp(t)
	register(t, app, "alice", "alice@example.com", nil)

	var alice models.User
	require.NoError(t, db.First(&alice, "username = ?", "alice").Error)

	resp := register(t, app, "bob", "bob@example.com", &alice.ReferralCode)
	assert.Equal(t, float64(services.ReferredBonusAmount), resp["coins"])

	require.NoError(t, db.First(&alice, "id = ?", alice.ID).Error)
	assert.Equal(t, int64(services.ReferrerBonusAmount), alice.Coins)

	var count int64
	db.Model(&models.Referral{}).Where("referrer_id = ?", alice.ID).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestRegisterWithUnknownReferralCodeStillSucceeds(t *testing.T) {
	app, _ := setupApp(t)
	code := "TOTALLYFAKE"
	resp := register(t, app, "carol", "carol@example.com", &code)
	assert.Equal(t, float64(0), resp["coins"])
}

func TestVerifyEmailConsumesTokenOnce(t *testing.T) {
	app, db := setupApp(t)
	register(t, app, "alice", "alice@example.com", nil)

	var user models.User
	require.NoError(t, db.First(&user, "email = ?", "alice@example.com").Error)
	token := *user.VerificationToken

	status, _ := doJSON(t, app, http.MethodPost, "/api/v1/auth/verify-email", map[string]string{"token": token}, "")
	assert.Equal(t, http.StatusOK, status)

	status, _ = doJSON(t, app, http.MethodPost, "/api/v1/auth/verify-email", map[string]string{"token": token}, "")
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestLoginGates(t *testing.T) {
	app, db := setupApp(t)
	register(t, app, "alice", "alice@example.com", nil)

	// unverified accounts are told so before any password check
	status, _ := doJSON(t, app, http.MethodPost, "/api/v1/auth/login",
		map[string]string{"email": "alice@example.com", "password": "wrong-password"}, "")
	assert.Equal(t, http.StatusForbidden, status)

	var user models.User
	require.NoError(t, db.First(&user, "email = ?", "alice@example.com").Error)
	doJSON(t, app, http.MethodPost, "/api/v1/auth/verify-email", map[string]string{"token": *user.VerificationToken}, "")

	status, _ = doJSON(t, app, http.MethodPost, "/api/v1/auth/login",
		map[string]string{"email": "alice@example.com", "password": "wrong-password"}, "")
	assert.Equal(t, http.StatusUnauthorized, status)

	// unknown email is indistinguishable from a wrong password
	status, _ = doJSON(t, app, http.MethodPost, "/api/v1/auth/login",
		map[string]string{"email": "ghost@example.com", "password": "secret123"}, "")
	assert.Equal(t, http.StatusUnauthorized, status)

	status, resp := doJSON(t, app, http.MethodPost, "/api/v1/auth/login",
		map[string]string{"email": "alice@example.com", "password": "secret123"}, "")
	assert.Equal(t, http.StatusOK, status)
	assert.NotEmpty(t, resp["token"])
}

func TestClaimDailyEndpoint(t *testing.T) {
	app, db := setupApp(t)
	register(t, app, "alice", "alice@example.com", nil)
	token := verifyAndLogin(t, app, db, "alice@example.com")

	status, resp := doJSON(t, app, http.MethodPost, "/api/v1/profile/claim-daily", nil, token)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(services.DailyClaimAmount), resp["coins"])

	status, _ = doJSON(t, app, http.MethodPost, "/api/v1/profile/claim-daily", nil, token)
	assert.Equal(t, http.StatusConflict, status)
}

func TestAdminRoutesRequireFreshAdminFlag(t *testing.T) {
	app, db := setupApp(t)
	register(t, app, "alice", "alice@example.com", nil)
	token := verifyAndLogin(t, app, db, "alice@example.com")

	status, _ := doJSON(t, app, http.MethodGet, "/api/v1/admin/stats", nil, token)
	assert.Equal(t, http.StatusForbidden, status)

	// promoting the account takes effect on the next call with the same token
	require.NoError(t, db.Model(&models.User{}).Where("email = ?", "alice@example.com").
		Update("is_admin", true).Error)

	status, resp := doJSON(t, app, http.MethodGet, "/api/v1/admin/stats", nil, token)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(1), resp["total_users"])
}

func TestAdminGrantCreditsLedger(t *testing.T) {
	app, db := setupApp(t)
	register(t, app, "alice", "alice@example.com", nil)
	require.NoError(t, db.Model(&models.User{}).Where("username = ?", "alice").Update("is_admin", true).Error)
	token := verifyAndLogin(t, app, db, "alice@example.com")

	register(t, app, "bob", "bob@example.com", nil)
	var bob models.User
	require.NoError(t, db.First(&bob, "username = ?", "bob").Error)

	status, resp := doJSON(t, app, http.MethodPost,
		fmt.Sprintf("/api/v1/admin/users/%s/grant", bob.ID),
		map[string]interface{}{"amount": 75, "reason": "failed deployment reconciliation"}, token)
	require.Equal(t, http.StatusOK, status, "%v", resp)
	assert.Equal(t, float64(75), resp["coins"])

	var event models.LedgerEvent
	require.NoError(t, db.First(&event, "user_id = ? AND kind = ?", bob.ID, models.KindAdminGrant).Error)
	assert.Equal(t, int64(75), event.Amount)
}
