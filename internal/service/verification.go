package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/rukshanyomal11/farm-management-system/config"
	"github.com/rukshanyomal11/farm-management-system/internal/constants"
	domainerrors "github.com/rukshanyomal11/farm-management-system/internal/errors"
	"github.com/rukshanyomal11/farm-management-system/internal/model"
	"github.com/rukshanyomal11/farm-management-system/internal/repository"
	ctxutil "github.com/rukshanyomal11/farm-management-system/pkg/context"
	"github.com/rukshanyomal11/farm-management-system/pkg/logger"
	"github.com/rukshanyomal11/farm-management-system/pkg/mailer"
)

// VerificationService issues and checks the numeric codes that gate
// registration.
type VerificationService struct {
	db       *gorm.DB
	users    *repository.UserRepository
	codes    *repository.VerificationCodeRepository
	notifier mailer.Notifier
	cfg      config.AuthConfig
}

func NewVerificationService(db *gorm.DB, users *repository.UserRepository, codes *repository.VerificationCodeRepository, notifier mailer.Notifier, cfg config.AuthConfig) *VerificationService {
	return &VerificationService{
		db:       db,
		users:    users,
		codes:    codes,
		notifier: notifier,
		cfg:      cfg,
	}
}

// RequestCode issues a fresh code for an email that has no account
// yet. Any outstanding code for the email is superseded. The caller
// gets success as soon as the code is durably stored; delivery runs
// async and its failure is only logged.
func (s *VerificationService) RequestCode(ctx context.Context, email string) error {
	ctx = ctxutil.WithOperation(ctx, "verification", "RequestCode")

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return domainerrors.ErrEmailExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return domainerrors.WrapError(domainerrors.ErrInternal, err)
	}

	code, err := GenerateNumericCode(constants.VerificationCodeLength)
	if err != nil {
		return domainerrors.WrapError(domainerrors.ErrInternal, err)
	}

	row := &model.VerificationCode{
		Email:     email,
		Code:      code,
		ExpiresAt: time.Now().Add(s.cfg.CodeTTL),
	}
	if err := s.codes.Replace(ctx, row); err != nil {
		return domainerrors.WrapError(domainerrors.ErrInternal, err)
	}

	s.notifier.Enqueue(mailer.Job{
		To:       email,
		Template: constants.MailTemplateVerificationCode,
		Data: map[string]any{
			"Code":      code,
			"ExpiresIn": fmt.Sprintf("%d minutes", int(s.cfg.CodeTTL.Minutes())),
		},
	})

	logger.InfoWithContext(ctx, "verification code issued").
		String("email", email).
		Log()

	return nil
}

// CheckCode verifies a submitted code against the outstanding row for
// the email. The read, compare, and counter update run inside one
// transaction with the row locked, so concurrent guesses for the same
// email serialize and the attempt cap cannot be undercounted.
func (s *VerificationService) CheckCode(ctx context.Context, email, code string) error {
	ctx = ctxutil.WithOperation(ctx, "verification", "CheckCode")
	now := time.Now()

	// The rejection is carried out of the closure instead of being
	// returned from it: returning an error would roll the transaction
	// back and lose the attempt increment a wrong guess must persist.
	var checkErr error
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		codes := s.codes.WithTx(tx)

		row, err := codes.GetByEmailForUpdate(ctx, email)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				checkErr = domainerrors.ErrCodeNotFound
				return nil
			}
			return domainerrors.WrapError(domainerrors.ErrInternal, err)
		}

		if row.Verified {
			return nil
		}
		if row.Expired(now) {
			checkErr = domainerrors.ErrCodeExpired
			return nil
		}
		if row.Attempts >= s.cfg.CodeMaxAttempts {
			checkErr = domainerrors.ErrTooManyAttempts
			return nil
		}

		if row.Code != code {
			attempts := row.Attempts + 1
			if err := codes.UpdateAttempts(ctx, row.ID, attempts); err != nil {
				return domainerrors.WrapError(domainerrors.ErrInternal, err)
			}
			remaining := s.cfg.CodeMaxAttempts - attempts
			logger.WarnWithContext(ctx, "verification code mismatch").
				String("email", email).
				Int("attempts", attempts).
				Log()
			if remaining <= 0 {
				checkErr = domainerrors.ErrTooManyAttempts
			} else {
				checkErr = domainerrors.InvalidCodeRemaining(remaining)
			}
			return nil
		}

		if err := codes.MarkVerified(ctx, row.ID); err != nil {
			return domainerrors.WrapError(domainerrors.ErrInternal, err)
		}

		logger.InfoWithContext(ctx, "email verified").
			String("email", email).
			Log()

		return nil
	})
	if err != nil {
		return err
	}
	return checkErr
}
