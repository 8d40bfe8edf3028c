package handlers

import (
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/soorihai2/ssksilks-sub000/internal/middleware"
	"github.com/soorihai2/ssksilks-sub000/internal/models"
	"github.com/soorihai2/ssksilks-sub000/internal/services"
	"github.com/soorihai2/ssksilks-sub000/internal/utils"
)

// OrderHandler manages online checkout, payment verification, and the admin
// order endpoints.
type OrderHandler struct {
	db       *gorm.DB
	razorpay *services.RazorpayService
	mailer   *services.MailerService
}

// NewOrderHandler constructs OrderHandler.
func NewOrderHandler(db *gorm.DB, razorpay *services.RazorpayService, mailer *services.MailerService) *OrderHandler {
	return &OrderHandler{db: db, razorpay: razorpay, mailer: mailer}
}

type orderItemRequest struct {
	ProductID string  `json:"id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
	Image     string  `json:"image"`
}

type shippingAddressRequest struct {
	FullName    string `json:"fullName"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	AddressLine string `json:"address"`
	City        string `json:"city"`
	State       string `json:"state"`
	Pincode     string `json:"pincode"`
	Country     string `json:"country"`
}

type createOrderRequest struct {
	OrderID         string                 `json:"orderId"`
	Items           []orderItemRequest     `json:"items"`
	ShippingAddress shippingAddressRequest `json:"shippingAddress"`
	Total           float64                `json:"total"`
}

// CreateOrder places an online order: the ledger record is written first
// with pending status, then a gateway counterpart order is minted for the
// checkout widget to charge against. Both ids are retained.
func (h *OrderHandler) CreateOrder(c *fiber.Ctx) error {
	var req createOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if len(req.Items) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "cart is empty")
	}
	// Stored lowercased so account linking matches case-insensitively.
	req.ShippingAddress.Email = strings.ToLower(strings.TrimSpace(req.ShippingAddress.Email))
	if req.ShippingAddress.Email == "" || req.ShippingAddress.AddressLine == "" {
		return fiber.NewError(fiber.StatusBadRequest, "shipping address is incomplete")
	}

	claims, authenticated := middleware.GetCurrentClaims(c)

	order := models.Order{
		OrderNumber:         req.OrderID,
		Type:                models.OrderTypeOnline,
		Status:              models.OrderStatusPending,
		PaymentStatus:       models.PaymentStatusPending,
		PaymentMode:         "razorpay",
		PlacedAt:            time.Now(),
		Currency:            "INR",
		IsGuestOrder:        !authenticated,
		ShippingFullName:    req.ShippingAddress.FullName,
		ShippingEmail:       req.ShippingAddress.Email,
		ShippingPhone:       req.ShippingAddress.Phone,
		ShippingAddressLine: req.ShippingAddress.AddressLine,
		ShippingCity:        req.ShippingAddress.City,
		ShippingState:       req.ShippingAddress.State,
		ShippingPincode:     req.ShippingAddress.Pincode,
		ShippingCountry:     req.ShippingAddress.Country,
	}

	if order.OrderNumber == "" {
		order.OrderNumber = generateOrderNumber()
	}

	if authenticated {
		if id, err := uuid.Parse(claims.CustomerID); err == nil {
			order.CustomerID = &id
			order.CustomerName = claims.Name
			order.CustomerEmail = claims.Email
			order.CustomerPhone = claims.Phone
		}
	} else {
		order.GuestName = req.ShippingAddress.FullName
		order.GuestEmail = req.ShippingAddress.Email
		order.GuestPhone = req.ShippingAddress.Phone
	}

	var subtotal float64
	for _, item := range req.Items {
		line := models.OrderItem{
			ProductName: item.Name,
			UnitPrice:   item.Price,
			Quantity:    item.Quantity,
			LineTotal:   item.Price * float64(item.Quantity),
			Image:       item.Image,
		}
		if item.ProductID != "" {
			if id, err := uuid.Parse(item.ProductID); err == nil {
				line.ProductID = &id
			}
		}
		subtotal += line.LineTotal
		order.Items = append(order.Items, line)
	}

	order.Subtotal = subtotal
	order.TotalAmount = req.Total
	if order.TotalAmount == 0 {
		order.TotalAmount = subtotal
	}

	if err := h.db.Create(&order).Error; err != nil {
		return err
	}

	gatewayOrder, err := h.razorpay.CreateOrder(order.TotalAmount, order.OrderNumber)
	if err != nil {
		// Ledger record stays pending; the client may retry checkout.
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	if err := h.db.Model(&order).Update("razorpay_order_id", gatewayOrder.ID).Error; err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success":         true,
		"orderId":         order.ID,
		"orderNumber":     order.OrderNumber,
		"razorpayOrderId": gatewayOrder.ID,
		"amount":          gatewayOrder.Amount,
		"currency":        gatewayOrder.Currency,
		"keyId":           h.razorpay.KeyID(),
	})
}

type verifyPaymentRequest struct {
	RazorpayOrderID   string `json:"razorpay_order_id"`
	RazorpayPaymentID string `json:"razorpay_payment_id"`
	RazorpaySignature string `json:"razorpay_signature"`
}

// VerifyPayment is the trust boundary where money-confirmation happens. Only
// a signature check against the merchant secret may flip an order to paid;
// the client asserting success is never enough.
func (h *OrderHandler) VerifyPayment(c *fiber.Ctx) error {
	var req verifyPaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if req.RazorpayOrderID == "" || req.RazorpayPaymentID == "" || req.RazorpaySignature == "" {
		return fiber.NewError(fiber.StatusBadRequest, "payment id, order id and signature are required")
	}

	if !h.razorpay.VerifySignature(req.RazorpayOrderID, req.RazorpayPaymentID, req.RazorpaySignature) {
		log.Printf("[Orders] Signature mismatch for gateway order %s", req.RazorpayOrderID)
		return fiber.NewError(fiber.StatusBadRequest, "Payment verification failed")
	}

	var order models.Order
	if err := h.db.Preload("Items").
		Where("razorpay_order_id = ?", req.RazorpayOrderID).
		First(&order).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusNotFound, "order not found")
		}
		return err
	}

	// Re-verification of an already-completed order is a no-op success.
	if order.PaymentStatus != models.PaymentStatusCompleted {
		updates := map[string]interface{}{
			"payment_status":      models.PaymentStatusCompleted,
			"status":              models.OrderStatusProcessing,
			"razorpay_payment_id": req.RazorpayPaymentID,
		}
		if err := h.db.Model(&order).Updates(updates).Error; err != nil {
			return err
		}
		order.PaymentStatus = models.PaymentStatusCompleted
		order.Status = models.OrderStatusProcessing
		order.RazorpayPaymentID = req.RazorpayPaymentID
	}

	emailStatus := "sent"
	if err := h.mailer.SendOrderConfirmation(&order); err != nil {
		emailStatus = "failed"
	}

	return c.JSON(fiber.Map{
		"success":     true,
		"data":        order,
		"emailStatus": emailStatus,
	})
}

type reportFailureRequest struct {
	OrderID string `json:"orderId"`
	Error   string `json:"error"`
}

// ReportFailure records a client-reported payment failure. Advisory only:
// the ledger is flipped to failed just for pending orders, and a later
// successful verification still wins.
func (h *OrderHandler) ReportFailure(c *fiber.Ctx) error {
	var req reportFailureRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if req.OrderID == "" {
		return fiber.NewError(fiber.StatusBadRequest, "orderId is required")
	}

	result := h.db.Model(&models.Order{}).
		Where("order_number = ? AND payment_status = ?", req.OrderID, models.PaymentStatusPending).
		Update("payment_status", models.PaymentStatusFailed)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fiber.NewError(fiber.StatusNotFound, "no pending order to mark failed")
	}

	if req.Error != "" {
		log.Printf("[Orders] Payment failure reported for %s: %s", req.OrderID, req.Error)
	}

	return c.JSON(fiber.Map{"success": true, "message": "payment failure recorded"})
}

// Admin endpoints

// ListOrders returns all orders with pagination and filters.
func (h *OrderHandler) ListOrders(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c)
	query := h.db.Model(&models.Order{})

	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if orderType := c.Query("type"); orderType != "" {
		query = query.Where("type = ?", orderType)
	}
	if search := c.Query("search"); search != "" {
		query = query.Where(
			"order_number ILIKE ? OR customer_name ILIKE ? OR shipping_email ILIKE ?",
			"%"+search+"%", "%"+search+"%", "%"+search+"%",
		)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return err
	}

	var orders []models.Order
	if err := query.Preload("Items").
		Order("placed_at desc").
		Limit(pg.Limit).Offset(pg.Offset).
		Find(&orders).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    orders,
		"pagination": fiber.Map{
			"current_page":   pg.Page,
			"items_per_page": pg.Limit,
			"total_items":    total,
		},
	})
}

// GetOrder returns a single order by id.
func (h *OrderHandler) GetOrder(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var order models.Order
	if err := h.db.Preload("Items").First(&order, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusNotFound, "order not found")
		}
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": order})
}

type updateOrderRequest struct {
	Status string `json:"status"`
}

var allowedStatusUpdates = map[string]bool{
	models.OrderStatusProcessing: true,
	models.OrderStatusShipped:    true,
	models.OrderStatusDelivered:  true,
	models.OrderStatusCancelled:  true,
}

// UpdateOrder lets the back office advance fulfillment status.
func (h *OrderHandler) UpdateOrder(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var req updateOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if !allowedStatusUpdates[req.Status] {
		return fiber.NewError(fiber.StatusBadRequest, "unknown order status")
	}

	result := h.db.Model(&models.Order{}).
		Where("id = ?", id).
		Update("status", req.Status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fiber.NewError(fiber.StatusNotFound, "order not found")
	}

	return c.JSON(fiber.Map{"success": true, "message": "order updated"})
}

func generateOrderNumber() string {
	return fmt.Sprintf("order_%d_%06d", time.Now().UnixMilli(), rand.Intn(1000000))
}
