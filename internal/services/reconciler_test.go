package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/soorihai2/ssksilks-sub000/internal/models"
)

func setupReconcilerDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Customer{}, &models.Order{}, &models.OrderItem{}))
	return db
}

func TestLinkGuestOrdersClaimsMatchingOrders(t *testing.T) {
	db := setupReconcilerDB(t)

	for _, email := range []string{"priya@example.com", "priya@example.com", "someone.else@example.com"} {
		order := models.Order{
			OrderNumber:   "order_" + email + "_" + uuid.NewString(),
			Type:          models.OrderTypeOnline,
			Status:        models.OrderStatusPending,
			PaymentStatus: models.PaymentStatusPending,
			IsGuestOrder:  true,
			ShippingEmail: email,
		}
		require.NoError(t, db.Create(&order).Error)
	}

	customer := models.Customer{
		Name:   "Priya",
		Email:  "priya@example.com",
		Phone:  "9000000001",
		Source: models.CustomerSourceWeb,
	}
	require.NoError(t, db.Create(&customer).Error)

	linked, err := NewReconcilerService(db).LinkGuestOrders(nil, &customer)
	require.NoError(t, err)
	assert.Equal(t, int64(2), linked)

	var owned []models.Order
	require.NoError(t, db.Where("customer_id = ?", customer.ID).Find(&owned).Error)
	require.Len(t, owned, 2)
	for _, o := range owned {
		assert.Equal(t, "Priya", o.CustomerName)
		assert.Equal(t, "priya@example.com", o.CustomerEmail)
		assert.Equal(t, "9000000001", o.CustomerPhone)
	}

	var unclaimed int64
	require.NoError(t, db.Model(&models.Order{}).Where("customer_id IS NULL").Count(&unclaimed).Error)
	assert.Equal(t, int64(1), unclaimed)
}

func TestLinkGuestOrdersSkipsOwnedOrders(t *testing.T) {
	db := setupReconcilerDB(t)

	owner := models.Customer{Name: "First", Email: "shared@example.com", Phone: "9000000002", Source: models.CustomerSourceWeb}
	require.NoError(t, db.Create(&owner).Error)

	order := models.Order{
		OrderNumber:   "order_owned_1",
		Type:          models.OrderTypeOnline,
		Status:        models.OrderStatusProcessing,
		PaymentStatus: models.PaymentStatusCompleted,
		CustomerID:    &owner.ID,
		CustomerName:  owner.Name,
		ShippingEmail: "shared@example.com",
	}
	require.NoError(t, db.Create(&order).Error)

	rival := models.Customer{Name: "Second", Email: "shared@example.com", Phone: "9000000003", Source: models.CustomerSourceWeb}
	require.NoError(t, db.Create(&rival).Error)

	linked, err := NewReconcilerService(db).LinkGuestOrders(nil, &rival)
	require.NoError(t, err)
	assert.Zero(t, linked)

	var reloaded models.Order
	require.NoError(t, db.First(&reloaded, "order_number = ?", "order_owned_1").Error)
	require.NotNil(t, reloaded.CustomerID)
	assert.Equal(t, owner.ID, *reloaded.CustomerID)
	assert.Equal(t, "First", reloaded.CustomerName)
}

func TestLinkGuestOrdersIsIdempotent(t *testing.T) {
	db := setupReconcilerDB(t)

	order := models.Order{
		OrderNumber:   "order_guest_42",
		Type:          models.OrderTypeOnline,
		Status:        models.OrderStatusPending,
		PaymentStatus: models.PaymentStatusPending,
		IsGuestOrder:  true,
		ShippingEmail: "repeat@example.com",
	}
	require.NoError(t, db.Create(&order).Error)

	customer := models.Customer{Name: "Repeat", Email: "repeat@example.com", Phone: "9000000004", Source: models.CustomerSourceWeb}
	require.NoError(t, db.Create(&customer).Error)

	svc := NewReconcilerService(db)

	linked, err := svc.LinkGuestOrders(nil, &customer)
	require.NoError(t, err)
	assert.Equal(t, int64(1), linked)

	linked, err = svc.LinkGuestOrders(nil, &customer)
	require.NoError(t, err)
	assert.Zero(t, linked)
}
