package services

import (
	"log"

	"gorm.io/gorm"

	"github.com/soorihai2/ssksilks-sub000/internal/models"
)

// ReconcilerService retroactively attaches guest orders to newly registered
// accounts by matching the shipping contact email.
type ReconcilerService struct {
	db *gorm.DB
}

// NewReconcilerService creates a ReconcilerService.
func NewReconcilerService(db *gorm.DB) *ReconcilerService {
	return &ReconcilerService{db: db}
}

// LinkGuestOrders claims every unowned order whose shipping email matches
// the customer. Ownership and the denormalized contact columns are stamped
// in one bulk update, so re-running against already-linked orders is a
// no-op: a linked order no longer satisfies the predicate. Returns the
// number of orders linked.
func (s *ReconcilerService) LinkGuestOrders(tx *gorm.DB, customer *models.Customer) (int64, error) {
	if tx == nil {
		tx = s.db
	}

	result := tx.Model(&models.Order{}).
		Where("shipping_email = ? AND customer_id IS NULL", customer.Email).
		Updates(map[string]interface{}{
			"customer_id":    customer.ID,
			"customer_name":  customer.Name,
			"customer_email": customer.Email,
			"customer_phone": customer.Phone,
		})
	if result.Error != nil {
		return 0, result.Error
	}

	if result.RowsAffected > 0 {
		log.Printf("[Reconciler] Linked %d guest orders to customer %s", result.RowsAffected, customer.ID)
	}

	return result.RowsAffected, nil
}
