package repository

import (
	"context"
	"time"

	"github.com/rukshanyomal11/farm-management-system/internal/model"
	ctxutil "github.com/rukshanyomal11/farm-management-system/pkg/context"
	"github.com/rukshanyomal11/farm-management-system/pkg/logger"
	"gorm.io/gorm"
)

type SessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction.
func (r *SessionRepository) WithTx(tx *gorm.DB) *SessionRepository {
	return &SessionRepository{db: tx}
}

func (r *SessionRepository) Create(ctx context.Context, session *model.Session) error {
	ctx = ctxutil.WithOperation(ctx, "repository", "SessionCreate")

	if err := r.db.WithContext(ctx).Create(session).Error; err != nil {
		logger.ErrorWithContext(ctx, "Failed to create session").
			Uint("user_id", session.UserID).
			Err(err).
			Log()
		return err
	}

	return nil
}

// GetByTokenHash finds the session backing a refresh token by the
// token's SHA-256 fingerprint.
func (r *SessionRepository) GetByTokenHash(ctx context.Context, tokenHash string) (*model.Session, error) {
	var session model.Session
	if err := r.db.WithContext(ctx).Where("token_hash = ?", tokenHash).First(&session).Error; err != nil {
		return nil, err
	}
	return &session, nil
}

// RevokeAllForUser marks every non-revoked session of the identity as
// revoked. Already-revoked rows are never touched again.
func (r *SessionRepository) RevokeAllForUser(ctx context.Context, userID uint, at time.Time) error {
	ctx = ctxutil.WithOperation(ctx, "repository", "SessionRevokeAllForUser")

	result := r.db.WithContext(ctx).Model(&model.Session{}).
		Where("user_id = ? AND revoked = ?", userID, false).
		Updates(map[string]any{
			"revoked":    true,
			"revoked_at": at,
		})
	if result.Error != nil {
		logger.ErrorWithContext(ctx, "Failed to revoke sessions").
			Uint("user_id", userID).
			Err(result.Error).
			Log()
		return result.Error
	}

	logger.InfoWithContext(ctx, "Sessions revoked").
		Uint("user_id", userID).
		Int64("revoked_count", result.RowsAffected).
		Log()

	return nil
}
