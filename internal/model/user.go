package model

import (
	"time"

	"gorm.io/gorm"
)

// User is the durable identity record. Lockout and verification state
// live here; sessions and audit rows reference it.
type User struct {
	gorm.Model
	FullName            string     `gorm:"column:full_name;not null"`
	Phone               string     `gorm:"column:phone"`
	Email               string     `gorm:"column:email;unique;not null"`
	Password            string     `gorm:"column:password;not null"`
	Role                string     `gorm:"column:role;not null;default:owner"`
	EmailVerified       bool       `gorm:"column:email_verified;not null;default:false"`
	IsActive            bool       `gorm:"column:is_active;not null;default:true"`
	FailedLoginAttempts int        `gorm:"column:failed_login_attempts;not null;default:0"`
	LockedUntil         *time.Time `gorm:"column:locked_until"`
	LastLoginAt         *time.Time `gorm:"column:last_login_at"`
}

// Locked reports whether the account is inside an active lockout window.
func (u *User) Locked(now time.Time) bool {
	return u.LockedUntil != nil && now.Before(*u.LockedUntil)
}
