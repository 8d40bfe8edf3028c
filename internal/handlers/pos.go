package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/soorihai2/ssksilks-sub000/internal/models"
	"github.com/soorihai2/ssksilks-sub000/internal/services"
)

const walkInCustomerName = "Walk-in Customer"

// POSHandler manages the in-store register checkout.
type POSHandler struct {
	db *gorm.DB
}

// NewPOSHandler constructs POSHandler.
func NewPOSHandler(db *gorm.DB) *POSHandler {
	return &POSHandler{db: db}
}

type posCustomerRequest struct {
	Phone string `json:"phone"`
	Name  string `json:"name"`
}

type posCheckoutRequest struct {
	Customer        posCustomerRequest     `json:"customer"`
	Phone           string                 `json:"phone"`
	Items           []services.POSCartItem `json:"items"`
	PaymentMode     string                 `json:"paymentMode"`
	DiscountPercent float64                `json:"discountPercentage"`
	CashDiscount    float64                `json:"cashDiscount"`
}

var posPaymentModes = map[string]bool{
	"cash": true,
	"card": true,
	"upi":  true,
}

// Checkout records a register sale. POS orders are paid and fulfilled at
// creation; there is no gateway verification step. The customer aggregates
// are updated in the same transaction as the order write.
func (h *POSHandler) Checkout(c *fiber.Ctx) error {
	var req posCheckoutRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	phone := req.Customer.Phone
	if phone == "" {
		phone = req.Phone
	}
	name := req.Customer.Name

	flags := services.ValidatePOSCheckout(phone, name, req.Items, req.PaymentMode)
	if flags.Failed() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success":    false,
			"message":    "checkout validation failed",
			"validation": flags,
		})
	}

	if !posPaymentModes[req.PaymentMode] {
		return fiber.NewError(fiber.StatusBadRequest, "payment mode must be cash, card or upi")
	}

	totals, err := services.ComputePOSTotals(req.Items, req.DiscountPercent, req.CashDiscount)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	if name == "" {
		name = walkInCustomerName
	}

	order := models.Order{
		OrderNumber:     generateOrderNumber(),
		Type:            models.OrderTypePOS,
		Status:          models.OrderStatusCompleted,
		PaymentStatus:   models.PaymentStatusCompleted,
		PaymentMode:     req.PaymentMode,
		PlacedAt:        time.Now(),
		Currency:        "INR",
		Subtotal:        totals.Subtotal,
		DiscountPercent: req.DiscountPercent,
		CashDiscount:    totals.CashDiscount,
		TotalAmount:     totals.Total,
		CustomerName:    name,
		CustomerPhone:   phone,
	}

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
		order.Items = append(order.Items, line)
	}

	var customer *models.Customer
	err = h.db.Transaction(func(tx *gorm.DB) error {
		if phone != "" && phone != walkInCustomerName {
			found, err := h.findOrCreatePOSCustomer(tx, phone, name)
			if err != nil {
				return err
			}
			customer = found
			order.CustomerID = &customer.ID
		}

		if err := tx.Create(&order).Error; err != nil {
			return err
		}

		if customer != nil {
			return tx.Model(customer).Updates(map[string]interface{}{
				"total_orders": gorm.Expr("total_orders + 1"),
				"total_spent":  gorm.Expr("total_spent + ?", order.TotalAmount),
				"is_new":       false,
			}).Error
		}
		return nil
	})
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"id":               order.ID,
			"order_number":     order.OrderNumber,
			"status":           order.Status,
			"payment_status":   order.PaymentStatus,
			"payment_mode":     order.PaymentMode,
			"subtotal":         order.Subtotal,
			"discount_percent": order.DiscountPercent,
			"discount_amount":  totals.DiscountAmount,
			"cash_discount":    order.CashDiscount,
			"total":            order.TotalAmount,
			"customer_name":    order.CustomerName,
			"customer_phone":   order.CustomerPhone,
			"placed_at":        order.PlacedAt,
		},
	})
}

// findOrCreatePOSCustomer resolves the register customer by phone, creating
// a POS-provenance record on first sight. An existing web customer with the
// same phone is reused rather than duplicated.
func (h *POSHandler) findOrCreatePOSCustomer(tx *gorm.DB, phone, name string) (*models.Customer, error) {
	var customer models.Customer
	err := tx.Where("phone = ?", phone).First(&customer).Error
	if err == nil {
		return &customer, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	customer = models.Customer{
		Name:   name,
		Phone:  phone,
		Role:   "customer",
		Source: models.CustomerSourcePOS,
		IsNew:  true,
	}
	if customer.Name == "" {
		customer.Name = walkInCustomerName
	}

	if err := tx.Create(&customer).Error; err != nil {
		return nil, err
	}

	return &customer, nil
}
