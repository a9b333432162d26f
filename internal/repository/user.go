package repository

import (
	"context"
	"time"

	"github.com/rukshanyomal11/farm-management-system/internal/constants"
	"github.com/rukshanyomal11/farm-management-system/internal/model"
	ctxutil "github.com/rukshanyomal11/farm-management-system/pkg/context"
	"github.com/rukshanyomal11/farm-management-system/pkg/logger"
	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction.
func (r *UserRepository) WithTx(tx *gorm.DB) *UserRepository {
	return &UserRepository{db: tx}
}

func (r *UserRepository) GetByID(ctx context.Context, id uint) (*model.User, error) {
	ctx = ctxutil.WithOperation(ctx, "repository", "UserGetByID")

	var user model.User
	result := r.db.WithContext(ctx).Where("id = ?", id).First(&user)
	if result.Error != nil {
		if result.Error != gorm.ErrRecordNotFound {
			logger.ErrorWithContext(ctx, "Failed to get user by ID").
				Uint("user_id", id).
				Err(result.Error).
				Log()
		}
		return nil, result.Error
	}

	return &user, nil
}

// GetByEmail finds a user by email. Returns gorm.ErrRecordNotFound when
// no identity exists for the address.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	ctx = ctxutil.WithOperation(ctx, "repository", "UserGetByEmail")

	var user model.User
	result := r.db.WithContext(ctx).Where("email = ?", email).First(&user)
	if result.Error != nil {
		if result.Error != gorm.ErrRecordNotFound {
			logger.ErrorWithContext(ctx, "Failed to get user by email").
				String("email", email).
				Err(result.Error).
				Log()
		}
		return nil, result.Error
	}

	return &user, nil
}

func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	ctx = ctxutil.WithOperation(ctx, "repository", "UserCreate")

	start := time.Now()
	result := r.db.WithContext(ctx).Create(user)
	if result.Error != nil {
		logger.ErrorWithContext(ctx, "Failed to create user").
			String("email", user.Email).
			Duration(time.Since(start)).
			Err(result.Error).
			Log()
		return result.Error
	}

	logger.InfoWithContext(ctx, "User created").
		String("email", user.Email).
		Uint("user_id", user.ID).
		Duration(time.Since(start)).
		Log()

	return nil
}

// List returns a page of users plus the unfiltered total.
func (r *UserRepository) List(ctx context.Context, limit, offset int) ([]model.User, int64, error) {
	ctx = ctxutil.WithOperation(ctx, "repository", "UserList")

	var users []model.User
	var total int64

	query := r.db.WithContext(ctx).Model(&model.User{})
	if err := query.Count(&total).Error; err != nil {
		logger.ErrorWithContext(ctx, "Failed to count users").Err(err).Log()
		return nil, 0, err
	}

	if err := query.Order("id").Limit(limit).Offset(offset).Find(&users).Error; err != nil {
		logger.ErrorWithContext(ctx, "Failed to list users").Err(err).Log()
		return nil, 0, err
	}

	return users, total, nil
}

// RecordFailedLogin increments the failed-attempt counter and, when
// lockUntil is non-nil, starts the lockout window in the same update.
func (r *UserRepository) RecordFailedLogin(ctx context.Context, id uint, attempts int, lockUntil *time.Time) error {
	ctx = ctxutil.WithOperation(ctx, "repository", "UserRecordFailedLogin")

	updates := map[string]any{
		"failed_login_attempts": attempts,
		"locked_until":          lockUntil,
	}

	if err := r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		logger.ErrorWithContext(ctx, "Failed to record failed login").
			Uint("user_id", id).
			Err(err).
			Log()
		return err
	}

	return nil
}

// RecordSuccessfulLogin zeroes the attempt counter, clears any lock, and
// stamps last_login_at.
func (r *UserRepository) RecordSuccessfulLogin(ctx context.Context, id uint, at time.Time) error {
	ctx = ctxutil.WithOperation(ctx, "repository", "UserRecordSuccessfulLogin")

	updates := map[string]any{
		"failed_login_attempts": 0,
		"locked_until":          nil,
		"last_login_at":         at,
	}

	if err := r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		logger.ErrorWithContext(ctx, "Failed to record successful login").
			Uint("user_id", id).
			Err(err).
			Log()
		return err
	}

	return nil
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id uint, passwordHash string) error {
	ctx = ctxutil.WithOperation(ctx, "repository", "UserUpdatePassword")

	if err := r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).
		Update("password", passwordHash).Error; err != nil {
		logger.ErrorWithContext(ctx, "Failed to update password").
			Uint("user_id", id).
			Err(err).
			Log()
		return err
	}

	return nil
}

func (r *UserRepository) SetActive(ctx context.Context, id uint, active bool) error {
	ctx = ctxutil.WithOperation(ctx, "repository", "UserSetActive")

	if err := r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).
		Update("is_active", active).Error; err != nil {
		logger.ErrorWithContext(ctx, "Failed to update active flag").
			Uint("user_id", id).
			Bool("active", active).
			Err(err).
			Log()
		return err
	}

	return nil
}

// CountAdministrators counts identities carrying the administrator role,
// used to protect the final administrator from deletion.
func (r *UserRepository) CountAdministrators(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.User{}).
		Where("role = ?", constants.RoleAdministrator).Count(&count).Error
	return count, err
}

// Delete removes the row for good. A soft delete would keep the email
// under the unique constraint and block the address from ever
// registering again.
func (r *UserRepository) Delete(ctx context.Context, id uint) error {
	ctx = ctxutil.WithOperation(ctx, "repository", "UserDelete")

	if err := r.db.WithContext(ctx).Unscoped().Delete(&model.User{}, id).Error; err != nil {
		logger.ErrorWithContext(ctx, "Failed to delete user").
			Uint("user_id", id).
			Err(err).
			Log()
		return err
	}

	logger.InfoWithContext(ctx, "User deleted").Uint("user_id", id).Log()
	return nil
}
