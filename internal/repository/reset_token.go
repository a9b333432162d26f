package repository

import (
	"context"

	"github.com/rukshanyomal11/farm-management-system/internal/model"
	ctxutil "github.com/rukshanyomal11/farm-management-system/pkg/context"
	"github.com/rukshanyomal11/farm-management-system/pkg/logger"
	"gorm.io/gorm"
)

type ResetTokenRepository struct {
	db *gorm.DB
}

func NewResetTokenRepository(db *gorm.DB) *ResetTokenRepository {
	return &ResetTokenRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction.
func (r *ResetTokenRepository) WithTx(tx *gorm.DB) *ResetTokenRepository {
	return &ResetTokenRepository{db: tx}
}

func (r *ResetTokenRepository) Create(ctx context.Context, token *model.PasswordResetToken) error {
	ctx = ctxutil.WithOperation(ctx, "repository", "ResetTokenCreate")

	if err := r.db.WithContext(ctx).Create(token).Error; err != nil {
		logger.ErrorWithContext(ctx, "Failed to create reset token").
			Uint("user_id", token.UserID).
			Err(err).
			Log()
		return err
	}

	return nil
}

func (r *ResetTokenRepository) GetByToken(ctx context.Context, token string) (*model.PasswordResetToken, error) {
	var row model.PasswordResetToken
	if err := r.db.WithContext(ctx).Where("token = ?", token).First(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *ResetTokenRepository) MarkUsed(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Model(&model.PasswordResetToken{}).
		Where("id = ?", id).Update("used", true).Error
}
