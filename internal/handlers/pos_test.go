package handlers

import (
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/soorihai2/ssksilks-sub000/internal/middleware"
	"github.com/soorihai2/ssksilks-sub000/internal/models"
)

func setupPOSApp(t *testing.T) (*fiber.App, *gorm.DB, string) {
	t.Helper()

	db := setupTestDB(t)
	cfg := testConfig()

	adminCustomer := &models.Customer{
		Name:   "Store Admin",
		Email:  "admin@ssksilks.com",
		Phone:  "9999999999",
		Role:   "admin",
		Source: models.CustomerSourceWeb,
	}
	require.NoError(t, db.Create(adminCustomer).Error)

	app := newTestApp()
	app.Post("/api/orders/pos", middleware.AuthMiddleware(cfg), middleware.RequireAdmin(), NewPOSHandler(db).Checkout)

	return app, db, tokenFor(t, adminCustomer)
}

func TestPOSCheckoutEmptyCartFlagged(t *testing.T) {
	app, db, token := setupPOSApp(t)

	resp, body := doJSON(t, app, http.MethodPost, "/api/orders/pos", fiber.Map{
		"customer":    fiber.Map{"phone": "9000000001"},
		"items":       []fiber.Map{},
		"paymentMode": "cash",
	}, token)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	validation := body["validation"].(map[string]any)
	assert.Equal(t, true, validation["cart"])
	assert.Equal(t, false, validation["customer"])
	assert.Equal(t, false, validation["payment"])

	var count int64
	require.NoError(t, db.Model(&models.Order{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestPOSCheckoutMissingPaymentModeFlagged(t *testing.T) {
	app, _, token := setupPOSApp(t)

	resp, body := doJSON(t, app, http.MethodPost, "/api/orders/pos", fiber.Map{
		"items": []fiber.Map{{"name": "Silk Saree", "price": 1000, "quantity": 1}},
	}, token)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	validation := body["validation"].(map[string]any)
	assert.Equal(t, true, validation["customer"])
	assert.Equal(t, true, validation["payment"])
	assert.Equal(t, false, validation["cart"])
}

func TestPOSCheckoutComputesDiscountedTotal(t *testing.T) {
	app, db, token := setupPOSApp(t)

	resp, body := doJSON(t, app, http.MethodPost, "/api/orders/pos", fiber.Map{
		"customer": fiber.Map{"phone": "9000000001", "name": "R"},
		"items": []fiber.Map{
			{"name": "Kanchipuram Silk Saree", "price": 2000, "quantity": 2},
			{"name": "Blouse Piece", "price": 500, "quantity": 1},
		},
		"paymentMode":        "upi",
		"discountPercentage": 10,
		"cashDiscount":       100,
	}, token)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	// 4500 - 450 - 100
	data := body["data"].(map[string]any)
	assert.InDelta(t, 4500.0, data["subtotal"], 0.001)
	assert.InDelta(t, 450.0, data["discount_amount"], 0.001)
	assert.InDelta(t, 3950.0, data["total"], 0.001)

	var order models.Order
	require.NoError(t, db.Preload("Items").First(&order).Error)
	assert.Equal(t, models.OrderTypePOS, order.Type)
	assert.Equal(t, models.OrderStatusCompleted, order.Status)
	assert.Equal(t, models.PaymentStatusCompleted, order.PaymentStatus)
	assert.Equal(t, "upi", order.PaymentMode)
	assert.Len(t, order.Items, 2)
}

func TestPOSCheckoutRejectsDiscountOutsideCaps(t *testing.T) {
	app, db, token := setupPOSApp(t)

	cases := []fiber.Map{
		{"discountPercentage": 25, "cashDiscount": 0},
		{"discountPercentage": -1, "cashDiscount": 0},
		{"discountPercentage": 0, "cashDiscount": 501},
		{"discountPercentage": 0, "cashDiscount": -10},
	}
	for _, tc := range cases {
		resp, _ := doJSON(t, app, http.MethodPost, "/api/orders/pos", fiber.Map{
			"customer":           fiber.Map{"phone": "9000000001"},
			"items":              []fiber.Map{{"name": "Silk Saree", "price": 1000, "quantity": 1}},
			"paymentMode":        "cash",
			"discountPercentage": tc["discountPercentage"],
			"cashDiscount":       tc["cashDiscount"],
		}, token)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "case %v", tc)
	}

	var count int64
	require.NoError(t, db.Model(&models.Order{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestPOSCheckoutUpdatesCustomerAggregates(t *testing.T) {
	app, db, token := setupPOSApp(t)

	sale := fiber.Map{
		"customer":    fiber.Map{"phone": "9000000001", "name": "R"},
		"items":       []fiber.Map{{"name": "Silk Saree", "price": 1000, "quantity": 1}},
		"paymentMode": "cash",
	}

	resp, _ := doJSON(t, app, http.MethodPost, "/api/orders/pos", sale, token)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp, _ = doJSON(t, app, http.MethodPost, "/api/orders/pos", sale, token)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var customer models.Customer
	require.NoError(t, db.Where("phone = ?", "9000000001").First(&customer).Error)
	assert.Equal(t, models.CustomerSourcePOS, customer.Source)
	assert.Equal(t, 2, customer.TotalOrders)
	assert.InDelta(t, 2000.0, customer.TotalSpent, 0.001)
	assert.False(t, customer.IsNew)

	var orders []models.Order
	require.NoError(t, db.Where("customer_id = ?", customer.ID).Find(&orders).Error)
	assert.Len(t, orders, 2)
}

func TestPOSCheckoutWalkInWithoutPhone(t *testing.T) {
	app, db, token := setupPOSApp(t)

	resp, _ := doJSON(t, app, http.MethodPost, "/api/orders/pos", fiber.Map{
		"customer":    fiber.Map{"name": "Walk-in Customer"},
		"items":       []fiber.Map{{"name": "Silk Saree", "price": 750, "quantity": 1}},
		"paymentMode": "card",
	}, token)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var order models.Order
	require.NoError(t, db.First(&order).Error)
	assert.Nil(t, order.CustomerID)
	assert.Equal(t, "Walk-in Customer", order.CustomerName)

	// No customer record is created for anonymous walk-ins.
	var count int64
	require.NoError(t, db.Model(&models.Customer{}).Where("source = ?", models.CustomerSourcePOS).Count(&count).Error)
	assert.Zero(t, count)
}

func TestPOSCheckoutRequiresAdmin(t *testing.T) {
	app, db, _ := setupPOSApp(t)

	shopper := &models.Customer{
		Name:   "Plain Shopper",
		Email:  "shopper@x.com",
		Phone:  "9000000002",
		Role:   "customer",
		Source: models.CustomerSourceWeb,
	}
	require.NoError(t, db.Create(shopper).Error)

	resp, _ := doJSON(t, app, http.MethodPost, "/api/orders/pos", fiber.Map{
		"customer":    fiber.Map{"phone": "9000000003"},
		"items":       []fiber.Map{{"name": "Silk Saree", "price": 1000, "quantity": 1}},
		"paymentMode": "cash",
	}, tokenFor(t, shopper))
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}
