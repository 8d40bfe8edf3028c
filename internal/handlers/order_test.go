package handlers

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/soorihai2/ssksilks-sub000/internal/middleware"
	"github.com/soorihai2/ssksilks-sub000/internal/models"
	"github.com/soorihai2/ssksilks-sub000/internal/services"
)

const testRazorpaySecret = "rzp-test-secret"

func setupOrderApp(t *testing.T) (*fiber.App, *gorm.DB, *services.RazorpayService) {
	t.Helper()

	db := setupTestDB(t)
	cfg := testConfig()

	razorpay := services.NewRazorpayService("rzp_test_key", testRazorpaySecret)
	mailer := services.NewMailerService("", 0, "", "", "", "SSK Silks")
	orderHandler := NewOrderHandler(db, razorpay, mailer)

	app := newTestApp()
	app.Post("/api/orders", middleware.OptionalAuthMiddleware(cfg), orderHandler.CreateOrder)
	app.Post("/api/orders/verify", orderHandler.VerifyPayment)
	app.Post("/api/orders/failed", orderHandler.ReportFailure)
	app.Put("/api/orders/:id", orderHandler.UpdateOrder)

	return app, db, razorpay
}

func signPayment(orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(testRazorpaySecret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func seedPendingOrder(t *testing.T, db *gorm.DB, gatewayOrderID string) *models.Order {
	t.Helper()

	order := &models.Order{
		OrderNumber:     "order_1700000000000_000042",
		Type:            models.OrderTypeOnline,
		Status:          models.OrderStatusPending,
		PaymentStatus:   models.PaymentStatusPending,
		PaymentMode:     "razorpay",
		PlacedAt:        time.Now(),
		ShippingEmail:   "buyer@x.com",
		TotalAmount:     2499,
		RazorpayOrderID: gatewayOrderID,
	}
	require.NoError(t, db.Create(order).Error)
	return order
}

func TestVerifyPaymentCompletesOrder(t *testing.T) {
	app, db, _ := setupOrderApp(t)
	seedPendingOrder(t, db, "rzp_order_abc")

	payload := fiber.Map{
		"razorpay_order_id":   "rzp_order_abc",
		"razorpay_payment_id": "pay_123",
		"razorpay_signature":  signPayment("rzp_order_abc", "pay_123"),
	}

	resp, body := doJSON(t, app, http.MethodPost, "/api/orders/verify", payload, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["success"])

	var order models.Order
	require.NoError(t, db.Where("razorpay_order_id = ?", "rzp_order_abc").First(&order).Error)
	assert.Equal(t, models.PaymentStatusCompleted, order.PaymentStatus)
	assert.Equal(t, models.OrderStatusProcessing, order.Status)
	assert.Equal(t, "pay_123", order.RazorpayPaymentID)

	// Re-verification with the same payload is a no-op success.
	resp, _ = doJSON(t, app, http.MethodPost, "/api/orders/verify", payload, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	require.NoError(t, db.Where("razorpay_order_id = ?", "rzp_order_abc").First(&order).Error)
	assert.Equal(t, models.PaymentStatusCompleted, order.PaymentStatus)
}

func TestVerifyPaymentTamperedSignature(t *testing.T) {
	app, db, _ := setupOrderApp(t)
	seedPendingOrder(t, db, "rzp_order_abc")

	resp, _ := doJSON(t, app, http.MethodPost, "/api/orders/verify", fiber.Map{
		"razorpay_order_id":   "rzp_order_abc",
		"razorpay_payment_id": "pay_123",
		"razorpay_signature":  signPayment("rzp_order_abc", "pay_other"),
	}, "")
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var order models.Order
	require.NoError(t, db.Where("razorpay_order_id = ?", "rzp_order_abc").First(&order).Error)
	assert.Equal(t, models.PaymentStatusPending, order.PaymentStatus)
	assert.Empty(t, order.RazorpayPaymentID)
}

func TestVerifyPaymentMissingFields(t *testing.T) {
	app, _, _ := setupOrderApp(t)

	resp, _ := doJSON(t, app, http.MethodPost, "/api/orders/verify", fiber.Map{
		"razorpay_order_id":   "rzp_order_abc",
		"razorpay_payment_id": "pay_123",
	}, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCreateOrderMintsGatewayOrder(t *testing.T) {
	app, db, razorpay := setupOrderApp(t)

	var minted struct {
		Amount   int64  `json:"amount"`
		Currency string `json:"currency"`
		Receipt  string `json:"receipt"`
	}
	gateway := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&minted))
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":       "rzp_order_minted",
			"amount":   minted.Amount,
			"currency": minted.Currency,
			"receipt":  minted.Receipt,
			"status":   "created",
		})
	}))
	defer gateway.Close()
	razorpay.SetBaseURL(gateway.URL)

	resp, body := doJSON(t, app, http.MethodPost, "/api/orders", fiber.Map{
		"orderId": "order_1700000000000_000042",
		"items": []fiber.Map{
			{"name": "Kanchipuram Silk Saree", "price": 1299.50, "quantity": 2},
		},
		"shippingAddress": fiber.Map{
			"fullName": "A",
			"email":    "a@x.com",
			"phone":    "9000000001",
			"address":  "12 Temple St",
			"city":     "Salem",
			"state":    "Tamil Nadu",
			"pincode":  "636001",
			"country":  "India",
		},
		"total": 2599.00,
	}, "")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "rzp_order_minted", body["razorpayOrderId"])
	assert.Equal(t, "order_1700000000000_000042", body["orderNumber"])

	// Rupees converted to integer paise on the gateway boundary.
	assert.EqualValues(t, 259900, minted.Amount)
	assert.Equal(t, "INR", minted.Currency)

	var order models.Order
	require.NoError(t, db.Preload("Items").Where("order_number = ?", "order_1700000000000_000042").First(&order).Error)
	assert.Equal(t, models.PaymentStatusPending, order.PaymentStatus)
	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.True(t, order.IsGuestOrder)
	assert.Equal(t, "a@x.com", order.GuestEmail)
	assert.Equal(t, "rzp_order_minted", order.RazorpayOrderID)
	require.Len(t, order.Items, 1)
	assert.InDelta(t, 2599.00, order.Items[0].LineTotal, 0.001)
}

func TestCreateOrderGatewayFailureLeavesOrderPending(t *testing.T) {
	app, db, razorpay := setupOrderApp(t)

	gateway := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer gateway.Close()
	razorpay.SetBaseURL(gateway.URL)

	resp, _ := doJSON(t, app, http.MethodPost, "/api/orders", fiber.Map{
		"items": []fiber.Map{{"name": "Soft Silk Saree", "price": 999, "quantity": 1}},
		"shippingAddress": fiber.Map{
			"email":   "a@x.com",
			"address": "12 Temple St",
		},
	}, "")
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var order models.Order
	require.NoError(t, db.First(&order).Error)
	assert.Equal(t, models.PaymentStatusPending, order.PaymentStatus)
	assert.Empty(t, order.RazorpayOrderID)
}

func TestReportFailureOnlyFlipsPendingOrders(t *testing.T) {
	app, db, _ := setupOrderApp(t)
	order := seedPendingOrder(t, db, "rzp_order_abc")

	resp, _ := doJSON(t, app, http.MethodPost, "/api/orders/failed", fiber.Map{
		"orderId": order.OrderNumber,
		"error":   "modal dismissed",
	}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var reloaded models.Order
	require.NoError(t, db.First(&reloaded, "id = ?", order.ID).Error)
	assert.Equal(t, models.PaymentStatusFailed, reloaded.PaymentStatus)

	// Already-resolved orders are left alone.
	resp, _ = doJSON(t, app, http.MethodPost, "/api/orders/failed", fiber.Map{
		"orderId": order.OrderNumber,
	}, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestUpdateOrderStatus(t *testing.T) {
	app, db, _ := setupOrderApp(t)
	order := seedPendingOrder(t, db, "rzp_order_abc")

	resp, _ := doJSON(t, app, http.MethodPut, "/api/orders/"+order.ID.String(), fiber.Map{
		"status": "shipped",
	}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var reloaded models.Order
	require.NoError(t, db.First(&reloaded, "id = ?", order.ID).Error)
	assert.Equal(t, models.OrderStatusShipped, reloaded.Status)

	resp, _ = doJSON(t, app, http.MethodPut, "/api/orders/"+order.ID.String(), fiber.Map{
		"status": "teleported",
	}, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
