package models

import (
	"time"

	"github.com/google/uuid"
)

// Customer provenance values. Web customers register with a password;
// POS customers are created ad hoc at the register and carry no hash.
const (
	CustomerSourceWeb = "web"
	CustomerSourcePOS = "pos"
)

// Customer represents a storefront or point-of-sale customer. The single
// table holds both provenances: email is unique when present, phone is
// always unique.
type Customer struct {
	BaseModel
	Name         string     `json:"name"`
	Email        string     `gorm:"uniqueIndex:udx_customers_email,where:email <> ''" json:"email"`
	Phone        string     `gorm:"uniqueIndex" json:"phone"`
	PasswordHash string     `json:"-"`
	Role         string     `gorm:"default:customer" json:"role"`
	Source       string     `gorm:"default:web;index" json:"source"`
	TotalOrders  int        `json:"total_orders"`
	TotalSpent   float64    `json:"total_spent"`
	IsNew        bool       `json:"is_new"`
	LastLogin    *time.Time `json:"last_login"`
	Addresses    []Address  `json:"addresses,omitempty"`
	Orders       []Order    `json:"orders,omitempty"`
}

// Address is a saved shipping address belonging to a customer.
type Address struct {
	BaseModel
	CustomerID  uuid.UUID `gorm:"type:uuid;index" json:"customer_id"`
	FullName    string    `json:"full_name"`
	Phone       string    `json:"phone"`
	AddressLine string    `json:"address_line"`
	City        string    `json:"city"`
	State       string    `json:"state"`
	Pincode     string    `json:"pincode"`
	Country     string    `json:"country"`
	IsDefault   bool      `json:"is_default"`
}

// PasswordResetToken tracks outstanding reset tokens issued by the
// forgot-password flow.
type PasswordResetToken struct {
	BaseModel
	Email     string     `gorm:"index" json:"email"`
	Token     string     `gorm:"uniqueIndex" json:"token"`
	ExpiresAt time.Time  `json:"expires_at"`
	UsedAt    *time.Time `json:"used_at"`
}
