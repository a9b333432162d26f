package repository

import (
	"context"

	"github.com/rukshanyomal11/farm-management-system/internal/model"
	ctxutil "github.com/rukshanyomal11/farm-management-system/pkg/context"
	"github.com/rukshanyomal11/farm-management-system/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type VerificationCodeRepository struct {
	db *gorm.DB
}

func NewVerificationCodeRepository(db *gorm.DB) *VerificationCodeRepository {
	return &VerificationCodeRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction.
func (r *VerificationCodeRepository) WithTx(tx *gorm.DB) *VerificationCodeRepository {
	return &VerificationCodeRepository{db: tx}
}

// Replace removes any outstanding code row for the email and inserts the
// new one, so at most one row per email ever exists.
func (r *VerificationCodeRepository) Replace(ctx context.Context, code *model.VerificationCode) error {
	ctx = ctxutil.WithOperation(ctx, "repository", "VerificationReplace")

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("email = ?", code.Email).
			Delete(&model.VerificationCode{}).Error; err != nil {
			return err
		}
		return tx.Create(code).Error
	})
	if err != nil {
		logger.ErrorWithContext(ctx, "Failed to store verification code").
			String("email", code.Email).
			Err(err).
			Log()
		return err
	}

	return nil
}

// GetByEmailForUpdate loads the code row for the email, holding a row
// lock for the rest of the transaction on postgres so concurrent checks
// for the same email serialize. The sqlite dialect used in tests has no
// FOR UPDATE; its single-writer model covers the same guarantee.
func (r *VerificationCodeRepository) GetByEmailForUpdate(ctx context.Context, email string) (*model.VerificationCode, error) {
	query := r.db.WithContext(ctx)
	if r.db.Dialector.Name() == "postgres" {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var code model.VerificationCode
	if err := query.Where("email = ?", email).First(&code).Error; err != nil {
		return nil, err
	}

	return &code, nil
}

func (r *VerificationCodeRepository) GetByEmail(ctx context.Context, email string) (*model.VerificationCode, error) {
	var code model.VerificationCode
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&code).Error; err != nil {
		return nil, err
	}
	return &code, nil
}

func (r *VerificationCodeRepository) UpdateAttempts(ctx context.Context, id uint, attempts int) error {
	return r.db.WithContext(ctx).Model(&model.VerificationCode{}).
		Where("id = ?", id).Update("attempts", attempts).Error
}

func (r *VerificationCodeRepository) MarkVerified(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Model(&model.VerificationCode{}).
		Where("id = ?", id).Update("verified", true).Error
}
