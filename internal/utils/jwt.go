package utils

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenClaims is the session payload embedded in issued JWTs.
type TokenClaims struct {
	CustomerID string `json:"customer_id"`
	Role       string `json:"role"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Name       string `json:"name"`
	Type       string `json:"type"`
	jwt.RegisteredClaims
}

// TokenIdentity describes the customer a token is issued for. Type records
// which directory the identity resolved from ("web" or "pos").
type TokenIdentity struct {
	CustomerID uuid.UUID
	Role       string
	Email      string
	Phone      string
	Name       string
	Type       string
}

// GenerateToken creates a signed JWT embedding the customer identity.
func GenerateToken(secret string, identity TokenIdentity, ttl time.Duration) (string, error) {
	claims := &TokenClaims{
		CustomerID: identity.CustomerID.String(),
		Role:       identity.Role,
		Email:      identity.Email,
		Phone:      identity.Phone,
		Name:       identity.Name,
		Type:       identity.Type,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.CustomerID.String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseToken validates the token and returns the embedded claims.
func ParseToken(secret, tokenString string) (*TokenClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &TokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*TokenClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, jwt.ErrTokenInvalidClaims
}
