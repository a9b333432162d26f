package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/rukshanyomal11/farm-management-system/config"
	"github.com/rukshanyomal11/farm-management-system/internal/constants"
	"github.com/rukshanyomal11/farm-management-system/internal/dto"
	domainerrors "github.com/rukshanyomal11/farm-management-system/internal/errors"
	"github.com/rukshanyomal11/farm-management-system/internal/model"
	"github.com/rukshanyomal11/farm-management-system/internal/repository"
	ctxutil "github.com/rukshanyomal11/farm-management-system/pkg/context"
	"github.com/rukshanyomal11/farm-management-system/pkg/logger"
	"github.com/rukshanyomal11/farm-management-system/pkg/mailer"
)

// UserService owns the credential lifecycle: registration, login,
// token refresh, logout, and the administrative account operations.
type UserService struct {
	db        *gorm.DB
	users     *repository.UserRepository
	codes     *repository.VerificationCodeRepository
	sessions  *repository.SessionRepository
	attempts  *repository.LoginAttemptRepository
	farms     *repository.FarmRepository
	tokens    *TokenService
	passwords *PasswordService
	notifier  mailer.Notifier
	cache     *ProfileCache
	cfg       config.AuthConfig
}

func NewUserService(
	db *gorm.DB,
	users *repository.UserRepository,
	codes *repository.VerificationCodeRepository,
	sessions *repository.SessionRepository,
	attempts *repository.LoginAttemptRepository,
	farms *repository.FarmRepository,
	tokens *TokenService,
	passwords *PasswordService,
	notifier mailer.Notifier,
	cache *ProfileCache,
	cfg config.AuthConfig,
) *UserService {
	return &UserService{
		db:        db,
		users:     users,
		codes:     codes,
		sessions:  sessions,
		attempts:  attempts,
		farms:     farms,
		tokens:    tokens,
		passwords: passwords,
		notifier:  notifier,
		cache:     cache,
		cfg:       cfg,
	}
}

func toUserResponse(user *model.User) dto.UserResponse {
	return dto.UserResponse{
		ID:            user.ID,
		FullName:      user.FullName,
		Email:         user.Email,
		Phone:         user.Phone,
		Role:          user.Role,
		EmailVerified: user.EmailVerified,
		IsActive:      user.IsActive,
		LastLoginAt:   user.LastLoginAt,
		CreatedAt:     user.CreatedAt,
		UpdatedAt:     user.UpdatedAt,
	}
}

// Register creates a self-service account. The verification check,
// identity insert, and farm provisioning run in one transaction; a
// failure at any step leaves no trace.
func (s *UserService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.UserResponse, error) {
	ctx = ctxutil.WithOperation(ctx, "user", "Register")
	now := time.Now()

	var created model.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		codes := s.codes.WithTx(tx)
		users := s.users.WithTx(tx)
		farms := s.farms.WithTx(tx)

		row, err := codes.GetByEmailForUpdate(ctx, req.Email)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domainerrors.ErrEmailNotVerified
			}
			return domainerrors.WrapError(domainerrors.ErrInternal, err)
		}
		if !row.Verified {
			return domainerrors.ErrEmailNotVerified
		}
		if !row.UsableForRegistration(now, s.cfg.CodeGracePeriod) {
			return domainerrors.ErrVerificationExpired
		}

		if _, err := users.GetByEmail(ctx, req.Email); err == nil {
			return domainerrors.ErrEmailExists
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return domainerrors.WrapError(domainerrors.ErrInternal, err)
		}

		hash, err := s.passwords.Hash(req.Password)
		if err != nil {
			return domainerrors.WrapError(domainerrors.ErrInternal, err)
		}

		user := model.User{
			FullName:      req.FullName,
			Phone:         req.Phone,
			Email:         req.Email,
			Password:      hash,
			Role:          constants.RoleOwner,
			EmailVerified: true,
			IsActive:      true,
		}
		if err := users.Create(ctx, &user); err != nil {
			return err
		}

		farmName := req.FarmName
		if farmName == "" {
			farmName = fmt.Sprintf("%s's Farm", req.FullName)
		}
		if err := farms.Create(ctx, &model.Farm{Name: farmName, OwnerID: user.ID}); err != nil {
			return domainerrors.WrapError(domainerrors.ErrInternal, err)
		}

		created = user
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Enqueue(mailer.Job{
		To:       created.Email,
		Template: constants.MailTemplateWelcome,
		Data: map[string]any{
			"FullName": created.FullName,
			"FarmName": req.FarmName,
		},
	})

	logger.InfoWithContext(ctx, "user registered").
		Uint("user_id", created.ID).
		String("email", created.Email).
		Log()

	resp := toUserResponse(&created)
	return &resp, nil
}

// RegisterAdmin creates an administrator account. The path is guarded
// by a deployment-level shared secret and skips the email verification
// gate: whoever holds the secret already controls the deployment.
func (s *UserService) RegisterAdmin(ctx context.Context, req *dto.AdminRegisterRequest, secret string) (*dto.UserResponse, error) {
	ctx = ctxutil.WithOperation(ctx, "user", "RegisterAdmin")

	if s.cfg.AdminRegistrationKey == "" ||
		subtle.ConstantTimeCompare([]byte(secret), []byte(s.cfg.AdminRegistrationKey)) != 1 {
		return nil, domainerrors.ErrForbidden
	}

	if _, err := s.users.GetByEmail(ctx, req.Email); err == nil {
		return nil, domainerrors.ErrEmailExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domainerrors.WrapError(domainerrors.ErrInternal, err)
	}

	hash, err := s.passwords.Hash(req.Password)
	if err != nil {
		return nil, domainerrors.WrapError(domainerrors.ErrInternal, err)
	}

	user := model.User{
		FullName:      req.FullName,
		Phone:         req.Phone,
		Email:         req.Email,
		Password:      hash,
		Role:          constants.RoleAdministrator,
		EmailVerified: true,
		IsActive:      true,
	}
	if err := s.users.Create(ctx, &user); err != nil {
		return nil, err
	}

	logger.InfoWithContext(ctx, "administrator registered").
		Uint("user_id", user.ID).
		String("email", user.Email).
		Log()

	resp := toUserResponse(&user)
	return &resp, nil
}

// Login runs the full guard sequence and, on success, mints the token
// pair and persists the session. Every attempt leaves an audit row,
// written before the outcome is known.
func (s *UserService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	ctx = ctxutil.WithOperation(ctx, "user", "Login")
	now := time.Now()

	attempt, err := s.attempts.Record(ctx, req.Email, req.IPAddress, req.UserAgent, false)
	if err != nil {
		return nil, domainerrors.WrapError(domainerrors.ErrInternal, err)
	}

	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrInvalidCredentials
		}
		return nil, domainerrors.WrapError(domainerrors.ErrInternal, err)
	}

	// Lock check comes before any password work so a locked account
	// costs nothing to probe and the counter stays frozen.
	if user.Locked(now) {
		logger.WarnWithContext(ctx, "login rejected, account locked").
			Uint("user_id", user.ID).
			Log()
		return nil, domainerrors.ErrAccountLocked
	}

	if err := s.passwords.Verify(user.Password, req.Password); err != nil {
		if !errors.Is(err, domainerrors.ErrInvalidCredentials) {
			return nil, err
		}

		attempts := user.FailedLoginAttempts + 1
		var lockUntil *time.Time
		if attempts >= s.cfg.MaxFailedLogins {
			until := now.Add(s.cfg.LockDuration)
			lockUntil = &until
		}
		if err := s.users.RecordFailedLogin(ctx, user.ID, attempts, lockUntil); err != nil {
			return nil, domainerrors.WrapError(domainerrors.ErrInternal, err)
		}

		logger.WarnWithContext(ctx, "login failed, bad password").
			Uint("user_id", user.ID).
			Int("failed_attempts", attempts).
			Bool("locked", lockUntil != nil).
			Log()

		if lockUntil != nil {
			return nil, domainerrors.ErrAccountLocked
		}
		return nil, domainerrors.InvalidCredentialsRemaining(s.cfg.MaxFailedLogins - attempts)
	}

	if !user.EmailVerified {
		return nil, domainerrors.ErrEmailNotVerified
	}
	if !user.IsActive {
		return nil, domainerrors.ErrAccountDeactivated
	}

	accessToken, err := s.tokens.GenerateAccessToken(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, domainerrors.WrapError(domainerrors.ErrInternal, err)
	}
	refreshToken, err := s.tokens.GenerateRefreshToken(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, domainerrors.WrapError(domainerrors.ErrInternal, err)
	}

	sessionTTL := s.cfg.SessionTTL
	if req.RememberMe {
		sessionTTL = s.cfg.RememberMeSessionTTL
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.users.WithTx(tx).RecordSuccessfulLogin(ctx, user.ID, now); err != nil {
			return err
		}
		if err := s.attempts.WithTx(tx).MarkSuccess(ctx, attempt.ID); err != nil {
			return err
		}
		return s.sessions.WithTx(tx).Create(ctx, &model.Session{
			UserID:    user.ID,
			TokenHash: HashToken(refreshToken),
			IPAddress: req.IPAddress,
			UserAgent: req.UserAgent,
			ExpiresAt: now.Add(sessionTTL),
		})
	})
	if err != nil {
		return nil, domainerrors.WrapError(domainerrors.ErrInternal, err)
	}

	user.FailedLoginAttempts = 0
	user.LockedUntil = nil
	user.LastLoginAt = &now

	logger.InfoWithContext(ctx, "login succeeded").
		Uint("user_id", user.ID).
		Bool("remember_me", req.RememberMe).
		Log()

	return &dto.LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int(s.tokens.AccessExpiry().Seconds()),
		User:         toUserResponse(user),
	}, nil
}

// Refresh exchanges a still-valid refresh token for a new access
// token. The refresh token itself is not rotated; its session row must
// exist, be unexpired, and not be revoked.
func (s *UserService) Refresh(ctx context.Context, refreshToken string) (*dto.RefreshResponse, error) {
	ctx = ctxutil.WithOperation(ctx, "user", "Refresh")
	now := time.Now()

	claims, err := s.tokens.VerifyRefreshToken(refreshToken)
	if err != nil {
		return nil, err
	}

	session, err := s.sessions.GetByTokenHash(ctx, HashToken(refreshToken))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrInvalidToken
		}
		return nil, domainerrors.WrapError(domainerrors.ErrInternal, err)
	}
	if session.Revoked {
		return nil, domainerrors.ErrSessionRevoked
	}
	if !session.Active(now) {
		return nil, domainerrors.ErrTokenExpired
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrInvalidToken
		}
		return nil, domainerrors.WrapError(domainerrors.ErrInternal, err)
	}
	if !user.IsActive {
		return nil, domainerrors.ErrAccountDeactivated
	}

	accessToken, err := s.tokens.GenerateAccessToken(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, domainerrors.WrapError(domainerrors.ErrInternal, err)
	}

	return &dto.RefreshResponse{
		AccessToken: accessToken,
		ExpiresIn:   int(s.tokens.AccessExpiry().Seconds()),
	}, nil
}

// Logout revokes every session for the identity. Access tokens already
// in flight stay valid until they expire; the short TTL bounds the
// exposure.
func (s *UserService) Logout(ctx context.Context, userID uint) error {
	ctx = ctxutil.WithOperation(ctx, "user", "Logout")

	if err := s.sessions.RevokeAllForUser(ctx, userID, time.Now()); err != nil {
		return domainerrors.WrapError(domainerrors.ErrInternal, err)
	}
	s.cache.Invalidate(ctx, userID)

	logger.InfoWithContext(ctx, "user logged out").
		Uint("user_id", userID).
		Log()

	return nil
}

// GetProfile returns the public identity fields, served from the
// profile cache when possible.
func (s *UserService) GetProfile(ctx context.Context, userID uint) (*dto.UserResponse, error) {
	ctx = ctxutil.WithOperation(ctx, "user", "GetProfile")

	if cached, ok := s.cache.Get(ctx, userID); ok {
		return cached, nil
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrUserNotFound
		}
		return nil, domainerrors.WrapError(domainerrors.ErrInternal, err)
	}

	resp := toUserResponse(user)
	s.cache.Set(ctx, &resp)
	return &resp, nil
}

// ListUsers returns a page of accounts for the admin console.
func (s *UserService) ListUsers(ctx context.Context, limit, offset int) ([]dto.UserResponse, int64, error) {
	ctx = ctxutil.WithOperation(ctx, "user", "ListUsers")

	users, total, err := s.users.List(ctx, limit, offset)
	if err != nil {
		return nil, 0, domainerrors.WrapError(domainerrors.ErrInternal, err)
	}

	out := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		out = append(out, toUserResponse(&users[i]))
	}
	return out, total, nil
}

// SetUserActive activates or deactivates an account. Deactivation also
// revokes every session so the account goes dark immediately.
func (s *UserService) SetUserActive(ctx context.Context, userID uint, active bool) error {
	ctx = ctxutil.WithOperation(ctx, "user", "SetUserActive")

	if _, err := s.users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domainerrors.ErrUserNotFound
		}
		return domainerrors.WrapError(domainerrors.ErrInternal, err)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.users.WithTx(tx).SetActive(ctx, userID, active); err != nil {
			return err
		}
		if !active {
			return s.sessions.WithTx(tx).RevokeAllForUser(ctx, userID, time.Now())
		}
		return nil
	})
	if err != nil {
		return domainerrors.WrapError(domainerrors.ErrInternal, err)
	}

	s.cache.Invalidate(ctx, userID)

	logger.InfoWithContext(ctx, "user active flag changed").
		Uint("user_id", userID).
		Bool("active", active).
		Log()

	return nil
}

// DeleteUser removes an account. The final administrator is protected;
// a deployment must never lock itself out of its own admin console.
func (s *UserService) DeleteUser(ctx context.Context, userID uint) error {
	ctx = ctxutil.WithOperation(ctx, "user", "DeleteUser")

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domainerrors.ErrUserNotFound
		}
		return domainerrors.WrapError(domainerrors.ErrInternal, err)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		users := s.users.WithTx(tx)

		if user.Role == constants.RoleAdministrator {
			admins, err := users.CountAdministrators(ctx)
			if err != nil {
				return domainerrors.WrapError(domainerrors.ErrInternal, err)
			}
			if admins <= 1 {
				return domainerrors.ErrLastAdministrator
			}
		}

		if err := s.sessions.WithTx(tx).RevokeAllForUser(ctx, userID, time.Now()); err != nil {
			return domainerrors.WrapError(domainerrors.ErrInternal, err)
		}
		return users.Delete(ctx, userID)
	})
	if err != nil {
		return err
	}

	s.cache.Invalidate(ctx, userID)

	logger.InfoWithContext(ctx, "user deleted").
		Uint("user_id", userID).
		Log()

	return nil
}

// ForceLogout is the admin variant of Logout.
func (s *UserService) ForceLogout(ctx context.Context, userID uint) error {
	ctx = ctxutil.WithOperation(ctx, "user", "ForceLogout")

	if _, err := s.users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domainerrors.ErrUserNotFound
		}
		return domainerrors.WrapError(domainerrors.ErrInternal, err)
	}

	return s.Logout(ctx, userID)
}
