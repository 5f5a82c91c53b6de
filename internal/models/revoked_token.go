package models

import "time"

// RevokedToken records a bearer token that was invalidated before its natural
// expiry. Only the SHA-256 digest of the token is stored.
type RevokedToken struct {
	Base
	TokenHash string    `gorm:"size:64;uniqueIndex;not null" json:"-"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`
}
