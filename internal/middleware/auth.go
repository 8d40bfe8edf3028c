package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/soorihai2/ssksilks-sub000/internal/config"
	"github.com/soorihai2/ssksilks-sub000/internal/utils"
)

const claimsContextKey = "currentClaims"

// AuthMiddleware validates JWT bearer tokens and loads the authenticated
// claims into context.
func AuthMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, err := parseBearer(c, cfg)
		if err != nil {
			return err
		}

		c.Locals(claimsContextKey, claims)
		return c.Next()
	}
}

// OptionalAuthMiddleware loads claims when a valid token is present but lets
// anonymous requests through. Guest checkout relies on this.
func OptionalAuthMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if claims, err := parseBearer(c, cfg); err == nil {
			c.Locals(claimsContextKey, claims)
		}
		return c.Next()
	}
}

// RequireAdmin rejects tokens whose role claim is not admin. Must run after
// AuthMiddleware.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, ok := GetCurrentClaims(c)
		if !ok || claims.Role != "admin" {
			return fiber.NewError(fiber.StatusForbidden, "admin access required")
		}
		return c.Next()
	}
}

func parseBearer(c *fiber.Ctx, cfg *config.Config) (*utils.TokenClaims, error) {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return nil, fiber.NewError(fiber.StatusUnauthorized, "missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return nil, fiber.NewError(fiber.StatusUnauthorized, "invalid authorization header")
	}

	claims, err := utils.ParseToken(cfg.JWTSecret, parts[1])
	if err != nil {
		return nil, fiber.NewError(fiber.StatusUnauthorized, "invalid token")
	}

	return claims, nil
}

// GetCurrentClaims extracts the authenticated claims from context.
func GetCurrentClaims(c *fiber.Ctx) (*utils.TokenClaims, bool) {
	value := c.Locals(claimsContextKey)
	if value == nil {
		return nil, false
	}

	claims, ok := value.(*utils.TokenClaims)
	return claims, ok
}

// GetCurrentCustomerID extracts the authenticated customer ID from context.
func GetCurrentCustomerID(c *fiber.Ctx) (uuid.UUID, bool) {
	claims, ok := GetCurrentClaims(c)
	if !ok {
		return uuid.Nil, false
	}

	id, err := uuid.Parse(claims.CustomerID)
	if err != nil {
		return uuid.Nil, false
	}

	return id, true
}
