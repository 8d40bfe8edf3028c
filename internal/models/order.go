package models

import (
	"time"

	"github.com/google/uuid"
)

// Order types.
const (
	OrderTypeOnline = "online"
	OrderTypePOS    = "pos"
)

// Order statuses.
const (
	OrderStatusPending    = "pending"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
	OrderStatusCancelled  = "cancelled"
	OrderStatusCompleted  = "completed"
)

// Payment statuses.
const (
	PaymentStatusPending   = "pending"
	PaymentStatusCompleted = "completed"
	PaymentStatusFailed    = "failed"
)

// Order is a single purchase record, online or POS. CustomerID is nil for
// guest checkouts until the account-linking step claims the order.
type Order struct {
	BaseModel
	CustomerID    *uuid.UUID `gorm:"type:uuid;index" json:"customer_id"`
	Customer      *Customer  `json:"customer,omitempty"`
	OrderNumber   string     `gorm:"uniqueIndex" json:"order_number"`
	Type          string     `gorm:"index" json:"type"`
	Status        string     `json:"status"`
	PaymentStatus string     `json:"payment_status"`
	PaymentMode   string     `json:"payment_mode"`
	PlacedAt      time.Time  `json:"placed_at"`

	Subtotal        float64 `json:"subtotal"`
	DiscountPercent float64 `json:"discount_percent"`
	CashDiscount    float64 `json:"cash_discount"`
	TotalAmount     float64 `json:"total_amount"`
	Currency        string  `json:"currency"`

	CustomerName  string `json:"customer_name"`
	CustomerEmail string `gorm:"index" json:"customer_email"`
	CustomerPhone string `json:"customer_phone"`

	IsGuestOrder bool   `json:"is_guest_order"`
	GuestName    string `json:"guest_name,omitempty"`
	GuestEmail   string `json:"guest_email,omitempty"`
	GuestPhone   string `json:"guest_phone,omitempty"`

	ShippingFullName    string `json:"shipping_full_name"`
	ShippingEmail       string `gorm:"index" json:"shipping_email"`
	ShippingPhone       string `json:"shipping_phone"`
	ShippingAddressLine string `json:"shipping_address_line"`
	ShippingCity        string `json:"shipping_city"`
	ShippingState       string `json:"shipping_state"`
	ShippingPincode     string `json:"shipping_pincode"`
	ShippingCountry     string `json:"shipping_country"`

	RazorpayOrderID   string `gorm:"index" json:"razorpay_order_id"`
	RazorpayPaymentID string `json:"razorpay_payment_id"`

	Items []OrderItem `json:"items,omitempty"`
}

// OrderItem is a purchased line within an order.
type OrderItem struct {
	BaseModel
	OrderID     uuid.UUID  `gorm:"type:uuid;index" json:"order_id"`
	ProductID   *uuid.UUID `gorm:"type:uuid" json:"product_id"`
	ProductName string     `json:"product_name"`
	UnitPrice   float64    `json:"unit_price"`
	Quantity    int        `json:"quantity"`
	LineTotal   float64    `json:"line_total"`
	Image       string     `json:"image"`
}
