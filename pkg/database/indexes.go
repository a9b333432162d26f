package database

import (
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/rukshanyomal11/farm-management-system/pkg/logger"
)

// CreateAuthIndexes creates the indexes the hot auth paths lean on.
// Everything here is additive and idempotent.
func CreateAuthIndexes(db *gorm.DB) error {
	// AutoMigrate already covers the unique indexes declared on the
	// models; these serve the lookup patterns of login and refresh.
	indexes := []string{
		// Login audit: latest attempt per email, recent-failure counting.
		"CREATE INDEX IF NOT EXISTS idx_login_attempts_email_attempted ON login_attempts(email, attempted_at DESC);",

		// Session sweep on logout / reset: all live sessions of a user.
		"CREATE INDEX IF NOT EXISTS idx_sessions_user_revoked ON sessions(user_id, revoked);",

		// Lockout expiry checks.
		"CREATE INDEX IF NOT EXISTS idx_users_locked_until ON users(locked_until) WHERE locked_until IS NOT NULL;",

		// Reset token expiry housekeeping.
		"CREATE INDEX IF NOT EXISTS idx_password_reset_tokens_expires ON password_reset_tokens(expires_at);",
	}

	for _, stmt := range indexes {
		if err := db.Exec(stmt).Error; err != nil {
			logger.GetLogger().Warn("Index creation failed",
				zap.String("statement", stmt),
				zap.Error(err),
			)
			return err
		}
	}

	logger.GetLogger().Info("Auth indexes ensured", zap.Int("count", len(indexes)))
	return nil
}
