package middleware

import (
	"errors"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/sharktrack/sharktrack-backend-go/pkg/response"
)

// ErrAuthDisabled is returned when no signing secret is configured
var ErrAuthDisabled = errors.New("token signing secret is not configured")

// NewToken signs an HS256 token for subject that expires after ttl
func NewToken(secret, subject string, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", ErrAuthDisabled
	}

	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// ParseToken verifies a token and returns its subject
func ParseToken(secret, tokenString string) (string, error) {
	if secret == "" {
		return "", ErrAuthDisabled
	}

	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}

// Auth middleware requires a valid bearer token.
// With no secret configured every request is refused.
func Auth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		tokenString, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || tokenString == "" {
			response.Unauthorized(c, "Missing bearer token")
			c.Abort()
			return
		}

		subject, err := ParseToken(secret, tokenString)
		if err != nil {
			_ = c.Error(err)
			response.Unauthorized(c, "Invalid token")
			c.Abort()
			return
		}

		c.Set("subject", subject)
		c.Next()
	}
}
