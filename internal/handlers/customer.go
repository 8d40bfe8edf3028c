package handlers

import (
	"regexp"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/soorihai2/ssksilks-sub000/internal/config"
	"github.com/soorihai2/ssksilks-sub000/internal/models"
	"github.com/soorihai2/ssksilks-sub000/internal/services"
	"github.com/soorihai2/ssksilks-sub000/internal/utils"
)

var phonePattern = regexp.MustCompile(`^\d{10}$`)

// CustomerHandler bundles dependencies for registration, login, and
// customer lookup endpoints.
type CustomerHandler struct {
	db         *gorm.DB
	cfg        *config.Config
	reconciler *services.ReconcilerService
}

// NewCustomerHandler constructs a CustomerHandler.
func NewCustomerHandler(db *gorm.DB, cfg *config.Config, reconciler *services.ReconcilerService) *CustomerHandler {
	return &CustomerHandler{db: db, cfg: cfg, reconciler: reconciler}
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

// Register creates a new customer account and links any guest orders placed
// under the same email before registration.
func (h *CustomerHandler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	if req.Name == "" || req.Email == "" || req.Password == "" {
		return fiber.NewError(fiber.StatusBadRequest, "missing required fields")
	}

	if !phonePattern.MatchString(req.Phone) {
		return fiber.NewError(fiber.StatusBadRequest, "phone must be exactly 10 digits")
	}

	// Collisions are checked across both provenances and the error names
	// the offending field.
	var existing models.Customer
	if err := h.db.Where("email = ?", req.Email).First(&existing).Error; err == nil {
		return fiber.NewError(fiber.StatusBadRequest, "email already registered")
	} else if err != gorm.ErrRecordNotFound {
		return err
	}
	if err := h.db.Where("phone = ?", req.Phone).First(&existing).Error; err == nil {
		return fiber.NewError(fiber.StatusBadRequest, "phone already registered")
	} else if err != gorm.ErrRecordNotFound {
		return err
	}

	passwordHash, err := utils.HashPassword(req.Password)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid customer data")
	}

	customer := models.Customer{
		Name:         req.Name,
		Email:        req.Email,
		Phone:        req.Phone,
		PasswordHash: passwordHash,
		Role:         "customer",
		Source:       models.CustomerSourceWeb,
	}

	var linked int64
	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&customer).Error; err != nil {
			return err
		}

		count, err := h.reconciler.LinkGuestOrders(tx, &customer)
		if err != nil {
			return err
		}
		linked = count
		return nil
	})
	if err != nil {
		return err
	}

	token, err := utils.GenerateToken(h.cfg.JWTSecret, utils.TokenIdentity{
		CustomerID: customer.ID,
		Role:       customer.Role,
		Email:      customer.Email,
		Phone:      customer.Phone,
		Name:       customer.Name,
		Type:       models.CustomerSourceWeb,
	}, h.cfg.TokenExpires)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to generate token")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success":      true,
		"token":        token,
		"customer":     customerResponse(&customer),
		"linkedOrders": linked,
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

// Login authenticates by email or phone. Phone logins fall back to the POS
// directory when no web account matches; the issued token is tagged with
// the directory the identity came from.
func (h *CustomerHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	if req.Email == "" && req.Phone == "" {
		return fiber.NewError(fiber.StatusBadRequest, "Email or phone is required")
	}

	var customer models.Customer
	switch {
	case req.Email != "":
		err := h.db.Where("email = ? AND source = ?", req.Email, models.CustomerSourceWeb).First(&customer).Error
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return fiber.NewError(fiber.StatusBadRequest, "Invalid credentials")
			}
			return err
		}
	default:
		// Web account first, then the POS directory.
		err := h.db.Where("phone = ? AND source = ?", req.Phone, models.CustomerSourceWeb).First(&customer).Error
		if err == gorm.ErrRecordNotFound {
			err = h.db.Where("phone = ? AND source = ?", req.Phone, models.CustomerSourcePOS).First(&customer).Error
		}
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return fiber.NewError(fiber.StatusBadRequest, "Invalid credentials")
			}
			return err
		}
	}

	// POS customers have no hash; CheckPassword fails closed on empty.
	if !utils.CheckPassword(customer.PasswordHash, req.Password) {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid credentials")
	}

	now := time.Now()
	if err := h.db.Model(&customer).Update("last_login", &now).Error; err != nil {
		return err
	}

	token, err := utils.GenerateToken(h.cfg.JWTSecret, utils.TokenIdentity{
		CustomerID: customer.ID,
		Role:       customer.Role,
		Email:      customer.Email,
		Phone:      customer.Phone,
		Name:       customer.Name,
		Type:       customer.Source,
	}, h.cfg.TokenExpires)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to generate token")
	}

	return c.JSON(fiber.Map{
		"success":  true,
		"token":    token,
		"customer": customerResponse(&customer),
	})
}

// LookupByPhone returns a customer summary for the POS register. Public so
// the register can prefill before any sale exists.
func (h *CustomerHandler) LookupByPhone(c *fiber.Ctx) error {
	phone := c.Params("phone")
	if !phonePattern.MatchString(phone) {
		return fiber.NewError(fiber.StatusBadRequest, "phone must be exactly 10 digits")
	}

	var customer models.Customer
	if err := h.db.Where("phone = ?", phone).First(&customer).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusNotFound, "customer not found")
		}
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"id":           customer.ID,
			"name":         customer.Name,
			"phone":        customer.Phone,
			"source":       customer.Source,
			"total_orders": customer.TotalOrders,
			"total_spent":  customer.TotalSpent,
			"is_new":       customer.IsNew,
		},
	})
}

func customerResponse(customer *models.Customer) fiber.Map {
	return fiber.Map{
		"id":           customer.ID,
		"name":         customer.Name,
		"email":        customer.Email,
		"phone":        customer.Phone,
		"role":         customer.Role,
		"source":       customer.Source,
		"total_orders": customer.TotalOrders,
		"total_spent":  customer.TotalSpent,
		"last_login":   customer.LastLogin,
		"created_at":   customer.CreatedAt,
	}
}
