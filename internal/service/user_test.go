package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rukshanyomal11/farm-management-system/internal/constants"
	"github.com/rukshanyomal11/farm-management-system/internal/dto"
	domainerrors "github.com/rukshanyomal11/farm-management-system/internal/errors"
	"github.com/rukshanyomal11/farm-management-system/internal/model"
)

func TestRegisterRequiresVerifiedCode(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	req := dtoRegister("unverified@farm.lk", "correct-horse-9")
	_, err := env.userSvc.Register(ctx, &req)
	assert.ErrorIs(t, err, domainerrors.ErrEmailNotVerified)

	// A requested but unchecked code is not enough either.
	require.NoError(t, env.verification.RequestCode(ctx, "unverified@farm.lk"))
	_, err = env.userSvc.Register(ctx, &req)
	assert.ErrorIs(t, err, domainerrors.ErrEmailNotVerified)
}

func TestRegisterCreatesOwnerWithFarm(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user := env.registerUser(t, "owner@farm.lk", "correct-horse-9")

	assert.Equal(t, constants.RoleOwner, user.Role)
	assert.True(t, user.EmailVerified)
	assert.True(t, user.IsActive)
	assert.NotEqual(t, "correct-horse-9", user.Password)

	farm, err := env.farms.GetByOwner(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Test Farm", farm.Name)

	welcome := env.notifier.byTemplate("welcome")
	require.Len(t, welcome, 1)
	assert.Equal(t, "owner@farm.lk", welcome[0].To)
}

func TestRegisterWithinGraceWindow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	require.NoError(t, env.verification.RequestCode(ctx, "late@farm.lk"))
	require.NoError(t, env.verification.CheckCode(ctx, "late@farm.lk", env.notifier.lastCode(t)))

	// Code expired 19 minutes ago; grace window is 20 minutes.
	env.backdateCode(t, "late@farm.lk", time.Now().Add(-19*time.Minute))

	req := dtoRegister("late@farm.lk", "correct-horse-9")
	_, err := env.userSvc.Register(ctx, &req)
	assert.NoError(t, err)
}

func TestRegisterPastGraceWindow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	require.NoError(t, env.verification.RequestCode(ctx, "toolate@farm.lk"))
	require.NoError(t, env.verification.CheckCode(ctx, "toolate@farm.lk", env.notifier.lastCode(t)))

	// Past expires_at + 20m: verified flag no longer authorizes registration.
	env.backdateCode(t, "toolate@farm.lk", time.Now().Add(-21*time.Minute))

	req := dtoRegister("toolate@farm.lk", "correct-horse-9")
	_, err := env.userSvc.Register(ctx, &req)
	assert.ErrorIs(t, err, domainerrors.ErrVerificationExpired)

	// The aborted transaction left no identity behind.
	_, err = env.userSvc.Login(ctx, dtoLogin("toolate@farm.lk", "correct-horse-9"))
	assert.ErrorIs(t, err, domainerrors.ErrInvalidCredentials)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.registerUser(t, "dup@farm.lk", "correct-horse-9")

	// The verified code row is still inside its grace window, so the
	// duplicate identity is what the second attempt trips on.
	req := dtoRegister("dup@farm.lk", "correct-horse-9")
	_, err := env.userSvc.Register(ctx, &req)
	assert.ErrorIs(t, err, domainerrors.ErrEmailExists)
}

func TestRegisterAdmin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	req := &dto.AdminRegisterRequest{
		FullName: "Site Admin",
		Email:    "admin@farm.lk",
		Password: "very-secret-99",
	}

	_, err := env.userSvc.RegisterAdmin(ctx, req, "wrong-secret")
	assert.ErrorIs(t, err, domainerrors.ErrForbidden)

	resp, err := env.userSvc.RegisterAdmin(ctx, req, "test-admin-secret")
	require.NoError(t, err)
	assert.Equal(t, constants.RoleAdministrator, resp.Role)

	// Admin can log in without ever requesting a verification code.
	_, err = env.userSvc.Login(ctx, dtoLogin("admin@farm.lk", "very-secret-99"))
	assert.NoError(t, err)
}

func TestLoginSuccess(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.registerUser(t, "login@farm.lk", "correct-horse-9")

	resp, err := env.userSvc.Login(ctx, dtoLogin("login@farm.lk", "correct-horse-9"))
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.NotNil(t, resp.User.LastLoginAt)

	claims, err := env.tokens.VerifyAccessToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "login@farm.lk", claims.Email)
	assert.Equal(t, constants.RoleOwner, claims.Role)

	// Session row stores the hash, never the raw token.
	session, err := env.sessions.GetByTokenHash(ctx, HashToken(resp.RefreshToken))
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, session.UserID)
	assert.NotEqual(t, resp.RefreshToken, session.TokenHash)

	// Audit trail: the attempt row was flipped to success.
	var attempt model.LoginAttempt
	require.NoError(t, env.db.Where("email = ?", "login@farm.lk").
		Order("id DESC").First(&attempt).Error)
	assert.True(t, attempt.Success)
}

func TestLoginUnknownEmail(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.userSvc.Login(context.Background(), dtoLogin("ghost@farm.lk", "whatever-123"))
	assert.ErrorIs(t, err, domainerrors.ErrInvalidCredentials)

	// Unknown emails still leave an audit row.
	var count int64
	require.NoError(t, env.db.Model(&model.LoginAttempt{}).
		Where("email = ?", "ghost@farm.lk").Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestLoginLockoutAfterMaxFailures(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user := env.registerUser(t, "lock@farm.lk", "correct-horse-9")

	// Four wrong passwords: still INVALID_CREDENTIALS.
	for i := 0; i < 4; i++ {
		_, err := env.userSvc.Login(ctx, dtoLogin("lock@farm.lk", "wrong-password"))
		assert.ErrorIs(t, err, domainerrors.ErrInvalidCredentials)
	}

	// The fifth wrong password trips the lock.
	_, err := env.userSvc.Login(ctx, dtoLogin("lock@farm.lk", "wrong-password"))
	assert.ErrorIs(t, err, domainerrors.ErrAccountLocked)

	// Even the correct password is rejected while locked.
	_, err = env.userSvc.Login(ctx, dtoLogin("lock@farm.lk", "correct-horse-9"))
	assert.ErrorIs(t, err, domainerrors.ErrAccountLocked)

	// The lock check never touched the counter.
	locked, err := env.users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, locked.FailedLoginAttempts)

	// Expire the lock; the first success resets the counter.
	past := time.Now().Add(-time.Second)
	require.NoError(t, env.db.Model(&model.User{}).
		Where("id = ?", user.ID).
		Update("locked_until", past).Error)

	resp, err := env.userSvc.Login(ctx, dtoLogin("lock@farm.lk", "correct-horse-9"))
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)

	fresh, err := env.users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Zero(t, fresh.FailedLoginAttempts)
	assert.Nil(t, fresh.LockedUntil)
}

func TestLoginUnverifiedEmailCheckedAfterPassword(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user := env.registerUser(t, "unv@farm.lk", "correct-horse-9")
	require.NoError(t, env.db.Model(&model.User{}).
		Where("id = ?", user.ID).
		Update("email_verified", false).Error)

	// Wrong password reports credentials, not verification state.
	_, err := env.userSvc.Login(ctx, dtoLogin("unv@farm.lk", "wrong-password"))
	assert.ErrorIs(t, err, domainerrors.ErrInvalidCredentials)

	_, err = env.userSvc.Login(ctx, dtoLogin("unv@farm.lk", "correct-horse-9"))
	assert.ErrorIs(t, err, domainerrors.ErrEmailNotVerified)
}

func TestLoginDeactivatedAccount(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user := env.registerUser(t, "off@farm.lk", "correct-horse-9")
	require.NoError(t, env.userSvc.SetUserActive(ctx, user.ID, false))

	_, err := env.userSvc.Login(ctx, dtoLogin("off@farm.lk", "correct-horse-9"))
	assert.ErrorIs(t, err, domainerrors.ErrAccountDeactivated)
}

func TestRememberMeExtendsSession(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.registerUser(t, "remember@farm.lk", "correct-horse-9")

	short, err := env.userSvc.Login(ctx, dtoLogin("remember@farm.lk", "correct-horse-9"))
	require.NoError(t, err)

	long := dtoLogin("remember@farm.lk", "correct-horse-9")
	long.RememberMe = true
	extended, err := env.userSvc.Login(ctx, long)
	require.NoError(t, err)

	shortSession, err := env.sessions.GetByTokenHash(ctx, HashToken(short.RefreshToken))
	require.NoError(t, err)
	longSession, err := env.sessions.GetByTokenHash(ctx, HashToken(extended.RefreshToken))
	require.NoError(t, err)

	assert.True(t, longSession.ExpiresAt.After(shortSession.ExpiresAt.Add(20*24*time.Hour)))
}

func TestRefreshMintsNewAccessTokenOnly(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.registerUser(t, "fresh@farm.lk", "correct-horse-9")
	login, err := env.userSvc.Login(ctx, dtoLogin("fresh@farm.lk", "correct-horse-9"))
	require.NoError(t, err)

	resp, err := env.userSvc.Refresh(ctx, login.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)

	_, err = env.tokens.VerifyAccessToken(resp.AccessToken)
	assert.NoError(t, err)

	// The same refresh token keeps working: no rotation.
	_, err = env.userSvc.Refresh(ctx, login.RefreshToken)
	assert.NoError(t, err)
}

func TestRefreshRejectsGarbageAndAccessTokens(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.registerUser(t, "mix@farm.lk", "correct-horse-9")
	login, err := env.userSvc.Login(ctx, dtoLogin("mix@farm.lk", "correct-horse-9"))
	require.NoError(t, err)

	_, err = env.userSvc.Refresh(ctx, "not-a-token")
	assert.ErrorIs(t, err, domainerrors.ErrInvalidToken)

	// An access token is signed with the other secret and must not refresh.
	_, err = env.userSvc.Refresh(ctx, login.AccessToken)
	assert.ErrorIs(t, err, domainerrors.ErrInvalidToken)
}

func TestLogoutRevokesAllSessions(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user := env.registerUser(t, "bye@farm.lk", "correct-horse-9")

	first, err := env.userSvc.Login(ctx, dtoLogin("bye@farm.lk", "correct-horse-9"))
	require.NoError(t, err)
	second, err := env.userSvc.Login(ctx, dtoLogin("bye@farm.lk", "correct-horse-9"))
	require.NoError(t, err)

	require.NoError(t, env.userSvc.Logout(ctx, user.ID))

	_, err = env.userSvc.Refresh(ctx, first.RefreshToken)
	assert.ErrorIs(t, err, domainerrors.ErrSessionRevoked)
	_, err = env.userSvc.Refresh(ctx, second.RefreshToken)
	assert.ErrorIs(t, err, domainerrors.ErrSessionRevoked)
}

func TestDeleteUserProtectsFinalAdministrator(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	admin, err := env.userSvc.RegisterAdmin(ctx, &dto.AdminRegisterRequest{
		FullName: "Only Admin",
		Email:    "only@farm.lk",
		Password: "very-secret-99",
	}, "test-admin-secret")
	require.NoError(t, err)

	err = env.userSvc.DeleteUser(ctx, admin.ID)
	assert.ErrorIs(t, err, domainerrors.ErrLastAdministrator)

	// With a second administrator in place the delete goes through.
	_, err = env.userSvc.RegisterAdmin(ctx, &dto.AdminRegisterRequest{
		FullName: "Second Admin",
		Email:    "second@farm.lk",
		Password: "very-secret-99",
	}, "test-admin-secret")
	require.NoError(t, err)

	require.NoError(t, env.userSvc.DeleteUser(ctx, admin.ID))
	_, err = env.users.GetByID(ctx, admin.ID)
	assert.Error(t, err)
}

func TestDeleteOrdinaryUser(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user := env.registerUser(t, "gone@farm.lk", "correct-horse-9")
	login, err := env.userSvc.Login(ctx, dtoLogin("gone@farm.lk", "correct-horse-9"))
	require.NoError(t, err)

	require.NoError(t, env.userSvc.DeleteUser(ctx, user.ID))

	// Sessions died with the account.
	session, err := env.sessions.GetByTokenHash(ctx, HashToken(login.RefreshToken))
	require.NoError(t, err)
	assert.True(t, session.Revoked)
}

func TestForceLogout(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user := env.registerUser(t, "forced@farm.lk", "correct-horse-9")
	login, err := env.userSvc.Login(ctx, dtoLogin("forced@farm.lk", "correct-horse-9"))
	require.NoError(t, err)

	require.NoError(t, env.userSvc.ForceLogout(ctx, user.ID))

	_, err = env.userSvc.Refresh(ctx, login.RefreshToken)
	assert.ErrorIs(t, err, domainerrors.ErrSessionRevoked)

	assert.ErrorIs(t, env.userSvc.ForceLogout(ctx, 99999), domainerrors.ErrUserNotFound)
}

func TestFullLifecycleScenario(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	// Request code, guess wrong twice, then get it right.
	require.NoError(t, env.verification.RequestCode(ctx, "a@x.com"))
	code := env.notifier.lastCode(t)
	wrong := "000000"
	if wrong == code {
		wrong = "000001"
	}
	for i := 0; i < 2; i++ {
		err := env.verification.CheckCode(ctx, "a@x.com", wrong)
		assert.ErrorIs(t, err, domainerrors.ErrInvalidCode)
	}
	require.NoError(t, env.verification.CheckCode(ctx, "a@x.com", code))

	// Register and confirm the identity is verified.
	req := dtoRegister("a@x.com", "str0ng-password!")
	resp, err := env.userSvc.Register(ctx, &req)
	require.NoError(t, err)
	assert.True(t, resp.EmailVerified)

	// Five wrong passwords, then even the correct one is locked out.
	for i := 0; i < 5; i++ {
		_, err := env.userSvc.Login(ctx, dtoLogin("a@x.com", "not-the-password"))
		assert.Error(t, err)
	}
	_, err = env.userSvc.Login(ctx, dtoLogin("a@x.com", "str0ng-password!"))
	assert.ErrorIs(t, err, domainerrors.ErrAccountLocked)
}

func TestBackToBackLoginsKeepSeparateSessions(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.registerUser(t, "twodevices@farm.lk", "correct-horse-9")

	first, err := env.userSvc.Login(ctx, dtoLogin("twodevices@farm.lk", "correct-horse-9"))
	require.NoError(t, err)
	second, err := env.userSvc.Login(ctx, dtoLogin("twodevices@farm.lk", "correct-horse-9"))
	require.NoError(t, err)

	require.NotEqual(t, first.RefreshToken, second.RefreshToken)

	// Both sessions coexist and both refresh tokens work.
	var count int64
	require.NoError(t, env.db.Model(&model.Session{}).
		Where("revoked = ?", false).Count(&count).Error)
	assert.Equal(t, int64(2), count)

	_, err = env.userSvc.Refresh(ctx, first.RefreshToken)
	assert.NoError(t, err)
	_, err = env.userSvc.Refresh(ctx, second.RefreshToken)
	assert.NoError(t, err)
}

func TestDeletedEmailCanRegisterAgain(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user := env.registerUser(t, "returning@farm.lk", "correct-horse-9")
	require.NoError(t, env.userSvc.DeleteUser(ctx, user.ID))

	// The address starts over from scratch: fresh code, fresh account.
	reborn := env.registerUser(t, "returning@farm.lk", "different-pass-9")
	assert.NotEqual(t, user.ID, reborn.ID)

	login, err := env.userSvc.Login(ctx, dtoLogin("returning@farm.lk", "different-pass-9"))
	require.NoError(t, err)
	assert.Equal(t, "returning@farm.lk", login.User.Email)
}
