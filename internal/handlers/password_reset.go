package handlers

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/soorihai2/ssksilks-sub000/internal/models"
	"github.com/soorihai2/ssksilks-sub000/internal/services"
	"github.com/soorihai2/ssksilks-sub000/internal/utils"
)

const resetTokenTTL = 10 * time.Minute

// PasswordResetHandler manages forgot-password endpoints.
type PasswordResetHandler struct {
	db     *gorm.DB
	mailer *services.MailerService
}

// NewPasswordResetHandler constructs a PasswordResetHandler.
func NewPasswordResetHandler(db *gorm.DB, mailer *services.MailerService) *PasswordResetHandler {
	return &PasswordResetHandler{db: db, mailer: mailer}
}

type resetRequestRequest struct {
	Email string `json:"email"`
}

// RequestReset initiates the password-reset flow: generates a token, stores
// it with a 10-minute expiry, and mails it to the account email. The
// response does not reveal whether the email exists.
func (h *PasswordResetHandler) RequestReset(c *fiber.Ctx) error {
	var req resetRequestRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" {
		return fiber.NewError(fiber.StatusBadRequest, "email is required")
	}

	var customer models.Customer
	err := h.db.Where("email = ? AND source = ?", req.Email, models.CustomerSourceWeb).First(&customer).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			// Same response as the success path, anti-enumeration.
			return c.JSON(fiber.Map{"success": true, "message": "if the account exists, a reset mail has been sent"})
		}
		return err
	}

	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to generate token")
	}
	resetToken := hex.EncodeToString(tokenBytes)

	// Expire any previous unused tokens for this email.
	h.db.Model(&models.PasswordResetToken{}).
		Where("email = ? AND used_at IS NULL", req.Email).
		Update("expires_at", time.Now())

	record := models.PasswordResetToken{
		Email:     req.Email,
		Token:     resetToken,
		ExpiresAt: time.Now().Add(resetTokenTTL),
	}
	if err := h.db.Create(&record).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to create reset token")
	}

	if err := h.mailer.SendPasswordReset(req.Email, resetToken); err != nil {
		// Mail failure is logged inside the mailer; the token still stands.
		return c.JSON(fiber.Map{"success": true, "emailStatus": "failed"})
	}

	return c.JSON(fiber.Map{"success": true, "emailStatus": "sent"})
}

type resetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"newPassword"`
}

// ResetPassword consumes a valid token and sets the new password hash.
func (h *PasswordResetHandler) ResetPassword(c *fiber.Ctx) error {
	var req resetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if req.Token == "" || req.NewPassword == "" {
		return fiber.NewError(fiber.StatusBadRequest, "token and new password are required")
	}

	var record models.PasswordResetToken
	if err := h.db.Where("token = ?", req.Token).First(&record).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusBadRequest, "invalid or expired token")
		}
		return err
	}

	if record.UsedAt != nil || record.ExpiresAt.Before(time.Now()) {
		return fiber.NewError(fiber.StatusBadRequest, "invalid or expired token")
	}

	hash, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to update password")
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Customer{}).
			Where("email = ?", record.Email).
			Update("password_hash", hash).Error; err != nil {
			return err
		}

		now := time.Now()
		return tx.Model(&record).Update("used_at", &now).Error
	})
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "message": "password reset"})
}
