package model

import "time"

// LoginAttempt is the append-only login audit log. Rows are written
// before the outcome of a login is known; the most recent row for an
// email is flipped to success when the login completes.
type LoginAttempt struct {
	ID          uint      `gorm:"primarykey"`
	Email       string    `gorm:"column:email;index;not null"`
	IPAddress   string    `gorm:"column:ip_address"`
	UserAgent   string    `gorm:"column:user_agent"`
	Success     bool      `gorm:"column:success;not null;default:false"`
	AttemptedAt time.Time `gorm:"column:attempted_at;not null"`
}
