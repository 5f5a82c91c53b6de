package middleware

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"fintrack/internal/config"
	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"
)

// Context keys set by AuthMiddleware for downstream handlers.
const (
	ContextUserID    = "userID"
	ContextUsername  = "username"
	ContextTokenHash = "tokenHash"
	ContextTokenExp  = "tokenExpiresAt"
)

// RevocationChecker reports whether a bearer token has been revoked.
// Implemented by the token service; kept as a local interface so the
// middleware does not depend on the services package.
type RevocationChecker interface {
	IsRevoked(tokenHash string) bool
}

// getJWTKey returns the JWT key from configuration
func getJWTKey() []byte {
	return []byte(config.Get().JWTSecret)
}

// Claims represents the claims carried by an access token.
type Claims struct {
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// GenerateAccessToken generates a signed JWT access token for a user.
// Expiry comes from JWT_EXPIRES_IN in the application config.
func GenerateAccessToken(user *models.User) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID:   user.ID,
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(config.Get().JWTExpirationDur)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    "fintrack-api",
			Subject:   fmt.Sprintf("%d", user.ID),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(getJWTKey())
}

// HashToken returns the SHA-256 hex digest of a token string.
func HashToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:])
}

// abortWithError writes a structured error body and stops the chain.
func abortWithError(c *gin.Context, appErr *apperrors.AppError) {
	c.AbortWithStatusJSON(appErr.StatusCode, gin.H{
		"error": gin.H{
			"code":    appErr.Code,
			"message": appErr.Message,
		},
	})
}

// AuthMiddleware verifies the bearer token, rejects expired, malformed, and
// revoked credentials, and sets the owning user in the context. Structurally
// malformed tokens are reported as 422, everything else as 401.
func AuthMiddleware(revocations RevocationChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortWithError(c, apperrors.ErrUnauthorized)
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			abortWithError(c, apperrors.WithMessage(apperrors.ErrUnauthorized, "Invalid authorization header format"))
			return
		}

		tokenString := parts[1]
		claims := &Claims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return getJWTKey(), nil
		})

		switch {
		case errors.Is(err, jwt.ErrTokenMalformed):
			abortWithError(c, apperrors.ErrMalformedToken)
			return
		case errors.Is(err, jwt.ErrTokenExpired):
			abortWithError(c, apperrors.ErrTokenExpired)
			return
		case err != nil || !token.Valid:
			abortWithError(c, apperrors.WithMessage(apperrors.ErrUnauthorized, "Invalid or expired token"))
			return
		}

		tokenHash := HashToken(tokenString)
		if revocations != nil && revocations.IsRevoked(tokenHash) {
			abortWithError(c, apperrors.ErrTokenRevoked)
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextUsername, claims.Username)
		c.Set(ContextTokenHash, tokenHash)
		c.Set(ContextTokenExp, claims.ExpiresAt.Time)
		c.Next()
	}
}
