package model

import (
	"time"

	"gorm.io/gorm"
)

// VerificationCode proves control of an email address ahead of
// registration. At most one outstanding row exists per email; a new
// request supersedes the previous row.
type VerificationCode struct {
	gorm.Model
	Email     string    `gorm:"column:email;uniqueIndex;not null"`
	Code      string    `gorm:"column:code;not null"`
	ExpiresAt time.Time `gorm:"column:expires_at;not null"`
	Attempts  int       `gorm:"column:attempts;not null;default:0"`
	Verified  bool      `gorm:"column:verified;not null;default:false"`
}

// Expired reports whether the code's nominal validity window has passed.
func (v *VerificationCode) Expired(now time.Time) bool {
	return now.After(v.ExpiresAt)
}

// UsableForRegistration reports whether a verified code still authorizes
// registration. The window extends past the code's own expiry by the
// grace period so the verify and register steps can straddle the
// nominal cutoff.
func (v *VerificationCode) UsableForRegistration(now time.Time, grace time.Duration) bool {
	return v.Verified && !now.After(v.ExpiresAt.Add(grace))
}
