package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/rukshanyomal11/farm-management-system/config"
	"github.com/rukshanyomal11/farm-management-system/internal/dto"
	"github.com/rukshanyomal11/farm-management-system/internal/model"
	"github.com/rukshanyomal11/farm-management-system/internal/repository"
	"github.com/rukshanyomal11/farm-management-system/pkg/logger"
	"github.com/rukshanyomal11/farm-management-system/pkg/mailer"
)

func init() {
	logger.InitTestLogger()
}

// recordingNotifier captures enqueued mail jobs instead of sending.
type recordingNotifier struct {
	mu   sync.Mutex
	jobs []mailer.Job
}

func (n *recordingNotifier) Enqueue(job mailer.Job) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.jobs = append(n.jobs, job)
}

func (n *recordingNotifier) byTemplate(kind string) []mailer.Job {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []mailer.Job
	for _, j := range n.jobs {
		if j.Template == kind {
			out = append(out, j)
		}
	}
	return out
}

// lastCode returns the code carried by the most recent verification mail.
func (n *recordingNotifier) lastCode(t *testing.T) string {
	t.Helper()
	jobs := n.byTemplate("verification_code")
	require.NotEmpty(t, jobs, "no verification mail enqueued")
	code, ok := jobs[len(jobs)-1].Data["Code"].(string)
	require.True(t, ok, "verification mail missing code")
	return code
}

// lastResetToken returns the token carried by the most recent reset mail.
func (n *recordingNotifier) lastResetToken(t *testing.T) string {
	t.Helper()
	jobs := n.byTemplate("password_reset")
	require.NotEmpty(t, jobs, "no reset mail enqueued")
	token, ok := jobs[len(jobs)-1].Data["Token"].(string)
	require.True(t, ok, "reset mail missing token")
	return token
}

// testEnv wires the full service stack against an in-memory database.
type testEnv struct {
	db           *gorm.DB
	users        *repository.UserRepository
	codes        *repository.VerificationCodeRepository
	sessions     *repository.SessionRepository
	attempts     *repository.LoginAttemptRepository
	resets       *repository.ResetTokenRepository
	farms        *repository.FarmRepository
	verification *VerificationService
	userSvc      *UserService
	resetSvc     *ResetService
	tokens       *TokenService
	notifier     *recordingNotifier
	cfg          config.AuthConfig
}

func testAuthConfig() config.AuthConfig {
	return config.AuthConfig{
		BcryptCost:           bcrypt.MinCost,
		MaxFailedLogins:      5,
		LockDuration:         15 * time.Minute,
		CodeTTL:              10 * time.Minute,
		CodeGracePeriod:      20 * time.Minute,
		CodeMaxAttempts:      5,
		ResetTokenTTL:        time.Hour,
		SessionTTL:           7 * 24 * time.Hour,
		RememberMeSessionTTL: 30 * 24 * time.Hour,
		AdminRegistrationKey: "test-admin-secret",
		ProfileCacheTTL:      5 * time.Minute,
	}
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&model.User{},
		&model.VerificationCode{},
		&model.Session{},
		&model.LoginAttempt{},
		&model.PasswordResetToken{},
		&model.Farm{},
		&model.EmailLog{},
	))

	cfg := testAuthConfig()
	jwtCfg := config.JWTConfig{
		AccessSecret:  "test-access-secret",
		RefreshSecret: "test-refresh-secret",
		AccessExpiry:  15 * time.Minute,
		RefreshExpiry: 7 * 24 * time.Hour,
	}

	env := &testEnv{
		db:       db,
		users:    repository.NewUserRepository(db),
		codes:    repository.NewVerificationCodeRepository(db),
		sessions: repository.NewSessionRepository(db),
		attempts: repository.NewLoginAttemptRepository(db),
		resets:   repository.NewResetTokenRepository(db),
		farms:    repository.NewFarmRepository(db),
		notifier: &recordingNotifier{},
		cfg:      cfg,
	}

	env.tokens = NewTokenService(jwtCfg)
	passwords := NewPasswordService(cfg.BcryptCost)
	cache := NewProfileCache(nil, cfg.ProfileCacheTTL)

	env.verification = NewVerificationService(db, env.users, env.codes, env.notifier, cfg)
	env.userSvc = NewUserService(db, env.users, env.codes, env.sessions, env.attempts, env.farms,
		env.tokens, passwords, env.notifier, cache, cfg)
	env.resetSvc = NewResetService(db, env.users, env.resets, env.sessions, passwords, env.notifier, cache, cfg)

	return env
}

// registerUser drives the full code-then-register flow.
func (env *testEnv) registerUser(t *testing.T, email, password string) *model.User {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, env.verification.RequestCode(ctx, email))
	require.NoError(t, env.verification.CheckCode(ctx, email, env.notifier.lastCode(t)))

	req := dtoRegister(email, password)
	_, err := env.userSvc.Register(ctx, &req)
	require.NoError(t, err)

	user, err := env.users.GetByEmail(ctx, email)
	require.NoError(t, err)
	return user
}

// backdateCode shifts the outstanding code's expiry for window tests.
func (env *testEnv) backdateCode(t *testing.T, email string, expiresAt time.Time) {
	t.Helper()
	require.NoError(t, env.db.Model(&model.VerificationCode{}).
		Where("email = ?", email).
		Update("expires_at", expiresAt).Error)
}

func dtoRegister(email, password string) dto.RegisterRequest {
	return dto.RegisterRequest{
		FullName: "Test Farmer",
		Email:    email,
		Phone:    "0771234567",
		Password: password,
		FarmName: "Test Farm",
	}
}

func dtoLogin(email, password string) *dto.LoginRequest {
	return &dto.LoginRequest{
		Email:     email,
		Password:  password,
		IPAddress: "203.0.113.7",
		UserAgent: "service-test",
	}
}
