package controller

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"planforge_backend/pkg/database"
	"planforge_backend/pkg/utils/jwt"
)

func TestMain(m *testing.M) {
	jwt.Init("controller-test-secret")
	m.Run()
}

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 sqlDB,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return db, mock
}

// swapGlobalDB points the shared handle at the mock for the duration of a test.
func swapGlobalDB(t *testing.T, db *gorm.DB) {
	t.Helper()
	previous := database.DB
	database.DB = db
	t.Cleanup(func() { database.DB = previous })
}

func userRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "email", "password", "role",
		"refresh_token", "refresh_token_expires_at", "is_active",
	})
}

func TestRefresh_RotatesToken(t *testing.T) {
	db, mock := newMockDB(t)
	swapGlobalDB(t, db)

	app := fiber.New()
	app.Post("/refresh", Refresh)

	oldToken := "old-refresh-token-value"
	expiry := time.Now().Add(24 * time.Hour)

	mock.ExpectQuery(`SELECT \* FROM "users"`).
		WillReturnRows(userRows().
			AddRow(1, "buyer@example.com", "hash", "CUSTOMER", oldToken, expiry, true))
	// The rotation happens in the same UPDATE that stores the new token
	mock.ExpectExec(`UPDATE "users" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	req := httptest.NewRequest("POST", "/refresh",
		strings.NewReader(`{"refresh_token":"`+oldToken+`"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))

	assert.NotEmpty(t, body.RefreshToken)
	assert.NotEqual(t, oldToken, body.RefreshToken, "refresh must rotate the token")

	claims, err := jwt.ValidateAccessToken(body.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, uint(1), claims.UserID)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRefresh_ReplayedOldTokenRejected(t *testing.T) {
	db, mock := newMockDB(t)
	swapGlobalDB(t, db)

	app := fiber.New()
	app.Post("/refresh", Refresh)

	// After rotation the old token matches no user row
	mock.ExpectQuery(`SELECT \* FROM "users"`).
		WillReturnRows(userRows())

	req := httptest.NewRequest("POST", "/refresh",
		strings.NewReader(`{"refresh_token":"old-refresh-token-value"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestRefresh_ExpiredTokenRejected(t *testing.T) {
	db, mock := newMockDB(t)
	swapGlobalDB(t, db)

	app := fiber.New()
	app.Post("/refresh", Refresh)

	expired := time.Now().Add(-time.Hour)
	mock.ExpectQuery(`SELECT \* FROM "users"`).
		WillReturnRows(userRows().
			AddRow(1, "buyer@example.com", "hash", "CUSTOMER", "stale-token", expired, true))
	// Expired tokens are cleared so the next attempt misses entirely
	mock.ExpectExec(`UPDATE "users" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	req := httptest.NewRequest("POST", "/refresh",
		strings.NewReader(`{"refresh_token":"stale-token"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}
