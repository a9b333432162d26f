package model

import (
	"time"

	"gorm.io/gorm"
)

// Session is the durable record of an issued refresh token. Only a
// SHA-256 fingerprint of the token is stored, never the token itself.
type Session struct {
	gorm.Model
	UserID    uint       `gorm:"column:user_id;index;not null"`
	TokenHash string     `gorm:"column:token_hash;uniqueIndex;not null"`
	IPAddress string     `gorm:"column:ip_address"`
	UserAgent string     `gorm:"column:user_agent"`
	ExpiresAt time.Time  `gorm:"column:expires_at;not null"`
	Revoked   bool       `gorm:"column:revoked;not null;default:false"`
	RevokedAt *time.Time `gorm:"column:revoked_at"`
}

// Active reports whether the session can still back a refresh.
func (s *Session) Active(now time.Time) bool {
	return !s.Revoked && now.Before(s.ExpiresAt)
}
