package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/soorihai2/ssksilks-sub000/internal/config"
	"github.com/soorihai2/ssksilks-sub000/internal/models"
	"github.com/soorihai2/ssksilks-sub000/internal/utils"
)

const testJWTSecret = "test-secret"

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.Customer{},
		&models.Address{},
		&models.PasswordResetToken{},
		&models.Order{},
		&models.OrderItem{},
	))

	return db
}

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:    testJWTSecret,
		TokenExpires: 24 * time.Hour,
	}
}

func newTestApp() *fiber.App {
	return fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			message := "internal server error"
			if fiberErr, ok := err.(*fiber.Error); ok {
				code = fiberErr.Code
				message = fiberErr.Message
			}
			return c.Status(code).JSON(fiber.Map{"success": false, "message": message})
		},
	})
}

func tokenFor(t *testing.T, customer *models.Customer) string {
	t.Helper()

	token, err := utils.GenerateToken(testJWTSecret, utils.TokenIdentity{
		CustomerID: customer.ID,
		Role:       customer.Role,
		Email:      customer.Email,
		Phone:      customer.Phone,
		Name:       customer.Name,
		Type:       customer.Source,
	}, 24*time.Hour)
	require.NoError(t, err)
	return token
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body any, token string) (*http.Response, map[string]any) {
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

	var decoded map[string]any
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &decoded))
	}

	return resp, decoded
}
