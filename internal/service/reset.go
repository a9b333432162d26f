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

// ResetService handles the forgot-password / reset-password pair.
type ResetService struct {
	db        *gorm.DB
	users     *repository.UserRepository
	tokens    *repository.ResetTokenRepository
	sessions  *repository.SessionRepository
	passwords *PasswordService
	notifier  mailer.Notifier
	cache     *ProfileCache
	cfg       config.AuthConfig
}

func NewResetService(
	db *gorm.DB,
	users *repository.UserRepository,
	tokens *repository.ResetTokenRepository,
	sessions *repository.SessionRepository,
	passwords *PasswordService,
	notifier mailer.Notifier,
	cache *ProfileCache,
	cfg config.AuthConfig,
) *ResetService {
	return &ResetService{
		db:        db,
		users:     users,
		tokens:    tokens,
		sessions:  sessions,
		passwords: passwords,
		notifier:  notifier,
		cache:     cache,
		cfg:       cfg,
	}
}

// ForgotPassword issues a reset token when the email belongs to an
// account. The response is identical either way; the endpoint must not
// reveal which addresses are registered.
func (s *ResetService) ForgotPassword(ctx context.Context, email, ip string) error {
	ctx = ctxutil.WithOperation(ctx, "reset", "ForgotPassword")

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.InfoWithContext(ctx, "password reset requested for unknown email").Log()
			return nil
		}
		return domainerrors.WrapError(domainerrors.ErrInternal, err)
	}

	token, err := GenerateOpaqueToken()
	if err != nil {
		return domainerrors.WrapError(domainerrors.ErrInternal, err)
	}

	row := &model.PasswordResetToken{
		UserID:    user.ID,
		Token:     token,
		IPAddress: ip,
		ExpiresAt: time.Now().Add(s.cfg.ResetTokenTTL),
	}
	if err := s.tokens.Create(ctx, row); err != nil {
		return domainerrors.WrapError(domainerrors.ErrInternal, err)
	}

	s.notifier.Enqueue(mailer.Job{
		To:       user.Email,
		Template: constants.MailTemplatePasswordReset,
		Data: map[string]any{
			"FullName":  user.FullName,
			"Token":     token,
			"ExpiresIn": fmt.Sprintf("%d hour(s)", int(s.cfg.ResetTokenTTL.Hours())),
		},
	})

	logger.InfoWithContext(ctx, "password reset token issued").
		Uint("user_id", user.ID).
		Log()

	return nil
}

// ResetPassword consumes a reset token. The token-consume, password
// rehash, and session revocation commit together; a token is never
// burned without the password actually changing.
func (s *ResetService) ResetPassword(ctx context.Context, token, newPassword string) error {
	ctx = ctxutil.WithOperation(ctx, "reset", "ResetPassword")
	now := time.Now()

	var userID uint
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tokens := s.tokens.WithTx(tx)
		users := s.users.WithTx(tx)
		sessions := s.sessions.WithTx(tx)

		row, err := tokens.GetByToken(ctx, token)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domainerrors.ErrInvalidToken
			}
			return domainerrors.WrapError(domainerrors.ErrInternal, err)
		}
		if row.Used {
			return domainerrors.ErrTokenAlreadyUsed
		}
		if now.After(row.ExpiresAt) {
			return domainerrors.ErrTokenExpired
		}

		hash, err := s.passwords.Hash(newPassword)
		if err != nil {
			return domainerrors.WrapError(domainerrors.ErrInternal, err)
		}

		if err := tokens.MarkUsed(ctx, row.ID); err != nil {
			return domainerrors.WrapError(domainerrors.ErrInternal, err)
		}
		if err := users.UpdatePassword(ctx, row.UserID, hash); err != nil {
			return domainerrors.WrapError(domainerrors.ErrInternal, err)
		}
		if err := sessions.RevokeAllForUser(ctx, row.UserID, now); err != nil {
			return domainerrors.WrapError(domainerrors.ErrInternal, err)
		}

		userID = row.UserID
		return nil
	})
	if err != nil {
		return err
	}

	s.cache.Invalidate(ctx, userID)

	logger.InfoWithContext(ctx, "password reset completed").
		Uint("user_id", userID).
		Log()

	return nil
}
