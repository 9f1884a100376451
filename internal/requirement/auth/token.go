package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// GenerateToken issues a signed JWT carrying the subject and its role.
func GenerateToken(userID, role, secret string) (string, error) {
	claims := jwt.MapClaims{
		"sub":  userID,
		"role": role,
		"exp":  time.Now().Add(time.Hour * 24).Unix(),
		"iat":  time.Now().Unix(),
		"iss":  "auth-service",
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}
