package repository

import (
	"context"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/rukshanyomal11/farm-management-system/internal/model"
	ctxutil "github.com/rukshanyomal11/farm-management-system/pkg/context"
	"github.com/rukshanyomal11/farm-management-system/pkg/logger"
	"github.com/rukshanyomal11/farm-management-system/pkg/mailer"
)

type EmailLogRepository struct {
	db *gorm.DB
}

func NewEmailLogRepository(db *gorm.DB) *EmailLogRepository {
	return &EmailLogRepository{db: db}
}

// Record persists a dispatch outcome. A failure here is logged and
// swallowed; the mail pipeline must never fail its caller.
func (r *EmailLogRepository) Record(ctx context.Context, rec mailer.DispatchRecord) {
	ctx = ctxutil.WithOperation(ctx, "repository", "EmailLogRecord")

	entry := &model.EmailLog{
		Recipient: rec.Recipient,
		Template:  rec.Template,
		Subject:   rec.Subject,
		Payload:   datatypes.JSON(rec.Payload),
		Success:   rec.Success,
		ErrorText: rec.ErrorText,
	}

	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		logger.ErrorWithContext(ctx, "Failed to record email dispatch").
			String("recipient", entry.Recipient).
			String("template", entry.Template).
			Err(err).
			Log()
	}
}
