package model

import (
	"time"

	"gorm.io/gorm"
)

// PasswordResetToken authorizes exactly one password reset.
type PasswordResetToken struct {
	gorm.Model
	UserID    uint      `gorm:"column:user_id;index;not null"`
	Token     string    `gorm:"column:token;uniqueIndex;not null"`
	IPAddress string    `gorm:"column:ip_address"`
	ExpiresAt time.Time `gorm:"column:expires_at;not null"`
	Used      bool      `gorm:"column:used;not null;default:false"`
}
