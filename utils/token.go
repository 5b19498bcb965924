package utils

import (
	"errors"
	"time"

	"infrasense-be/models"

	"github.com/dgrijalva/jwt-go"
)

// DefaultTokenTTL matches the lifetime of a provider session token.
const DefaultTokenTTL = 72 * time.Hour

var ErrMissingSecret = errors.New("JWT secret is not set")

// GenerateToken signs an HS256 identity token for userID carrying role in the
// publicMetadata claim, the shape AuthMiddleware reads.
func GenerateToken(secret, userID string, role models.Role, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", ErrMissingSecret
	}
	if userID == "" {
		return "", errors.New("user id is required")
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub": userID,
		"iat": now.Unix(),
		"exp": now.Add(ttl).Unix(),
	}
	if role != "" {
		claims["publicMetadata"] = map[string]interface{}{"role": string(role)}
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}
