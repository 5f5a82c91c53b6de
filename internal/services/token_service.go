package services

import (
	"time"

	"gorm.io/gorm"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/logger"
	"fintrack/internal/models"
)

// tokenService tracks revoked bearer tokens.
type tokenService struct {
	db *gorm.DB
}

// NewTokenService creates a new TokenServicer.
func NewTokenService(db *gorm.DB) TokenServicer {
	return &tokenService{db: db}
}

// Revoke records a token digest as revoked until its natural expiry.
// Revoking an already-revoked token is a no-op.
func (s *tokenService) Revoke(userID uint, tokenHash string, expiresAt time.Time) error {
	if s.IsRevoked(tokenHash) {
		return nil
	}

	entry := &models.RevokedToken{
		TokenHash: tokenHash,
		UserID:    userID,
		ExpiresAt: expiresAt,
	}
	if err := s.db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(entry).Error
	}); err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// IsRevoked reports whether the token digest is on the revocation list.
// Lookup failures are logged and treated as not revoked so that a store
// hiccup cannot lock every user out.
func (s *tokenService) IsRevoked(tokenHash string) bool {
	var count int64
	if err := s.db.Model(&models.RevokedToken{}).
		Where("token_hash = ?", tokenHash).
		Count(&count).Error; err != nil {
		logger.Get().Errorw("failed to check token revocation", "error", err)
		return false
	}
	return count > 0
}
