package repository

import (
	"context"
	"time"

	"github.com/rukshanyomal11/farm-management-system/internal/model"
	ctxutil "github.com/rukshanyomal11/farm-management-system/pkg/context"
	"github.com/rukshanyomal11/farm-management-system/pkg/logger"
	"gorm.io/gorm"
)

type LoginAttemptRepository struct {
	db *gorm.DB
}

func NewLoginAttemptRepository(db *gorm.DB) *LoginAttemptRepository {
	return &LoginAttemptRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction.
func (r *LoginAttemptRepository) WithTx(tx *gorm.DB) *LoginAttemptRepository {
	return &LoginAttemptRepository{db: tx}
}

// Record appends an audit row. Written before the outcome of a login is
// known, so every attempt leaves a trace even when the flow aborts.
func (r *LoginAttemptRepository) Record(ctx context.Context, email, ip, userAgent string, success bool) (*model.LoginAttempt, error) {
	ctx = ctxutil.WithOperation(ctx, "repository", "LoginAttemptRecord")

	attempt := &model.LoginAttempt{
		Email:       email,
		IPAddress:   ip,
		UserAgent:   userAgent,
		Success:     success,
		AttemptedAt: time.Now(),
	}

	if err := r.db.WithContext(ctx).Create(attempt).Error; err != nil {
		logger.ErrorWithContext(ctx, "Failed to record login attempt").
			String("email", email).
			Err(err).
			Log()
		return nil, err
	}

	return attempt, nil
}

// MarkSuccess flips a previously recorded attempt row to success.
func (r *LoginAttemptRepository) MarkSuccess(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Model(&model.LoginAttempt{}).
		Where("id = ?", id).Update("success", true).Error
}
