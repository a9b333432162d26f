package database

import (
	"gorm.io/gorm"

	"github.com/rukshanyomal11/farm-management-system/internal/model"
)

// AutoMigrate runs database migrations for all models
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.VerificationCode{},
		&model.Session{},
		&model.LoginAttempt{},
		&model.PasswordResetToken{},
		&model.Farm{},
		&model.EmailLog{},
	)
}
