package services

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// POS discount caps. The register UI enforces the same bounds; the server
// is the authority.
const (
	MaxDiscountPercent = 20.0
	MaxCashDiscount    = 500.0
)

// POSCartItem is one line on the register cart.
type POSCartItem struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
	Image     string  `json:"image"`
}

// POSValidation flags each independently-checked precondition so the
// register UI can highlight exactly which gate failed.
type POSValidation struct {
	Customer bool `json:"customer"`
	Cart     bool `json:"cart"`
	Payment  bool `json:"payment"`
}

// Failed reports whether any precondition was flagged.
func (v POSValidation) Failed() bool {
	return v.Customer || v.Cart || v.Payment
}

// ValidatePOSCheckout checks the three register preconditions: a customer
// identifier (phone or name, "Walk-in Customer" counts), a non-empty cart,
// and a chosen payment mode.
func ValidatePOSCheckout(customerPhone, customerName string, cart []POSCartItem, paymentMode string) POSValidation {
	return POSValidation{
		Customer: customerPhone == "" && customerName == "",
		Cart:     len(cart) == 0,
		Payment:  paymentMode == "",
	}
}

// POSTotals is the computed money breakdown of a register sale.
type POSTotals struct {
	Subtotal       float64
	DiscountAmount float64
	CashDiscount   float64
	Total          float64
}

// ComputePOSTotals computes subtotal and the discounted total using decimal
// arithmetic. Each discount is capped on its own; there is no combined cap,
// so stacked discounts can reach the whole subtotal. The total is clamped
// at zero.
func ComputePOSTotals(cart []POSCartItem, discountPercent, cashDiscount float64) (POSTotals, error) {
	if discountPercent < 0 || discountPercent > MaxDiscountPercent {
		return POSTotals{}, fmt.Errorf("discount percentage must be between 0 and %.0f", MaxDiscountPercent)
	}
	if cashDiscount < 0 || cashDiscount > MaxCashDiscount {
		return POSTotals{}, fmt.Errorf("cash discount must be between 0 and %.0f", MaxCashDiscount)
	}

	subtotal := decimal.Zero
	for _, item := range cart {
		line := decimal.NewFromFloat(item.Price).Mul(decimal.NewFromInt(int64(item.Quantity)))
		subtotal = subtotal.Add(line)
	}

	percentOff := subtotal.Mul(decimal.NewFromFloat(discountPercent)).Div(decimal.NewFromInt(100)).Round(2)
	cashOff := decimal.NewFromFloat(cashDiscount)

	total := subtotal.Sub(percentOff).Sub(cashOff)
	if total.IsNegative() {
		total = decimal.Zero
	}

	sub, _ := subtotal.Round(2).Float64()
	off, _ := percentOff.Float64()
	cash, _ := cashOff.Float64()
	tot, _ := total.Round(2).Float64()

	return POSTotals{
		Subtotal:       sub,
		DiscountAmount: off,
		CashDiscount:   cash,
		Total:          tot,
	}, nil
}
