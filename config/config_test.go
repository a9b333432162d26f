package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.App.Port)
	assert.Equal(t, 12, cfg.Auth.BcryptCost)
	assert.Equal(t, 10*time.Minute, cfg.Auth.CodeTTL)
	assert.Equal(t, 20*time.Minute, cfg.Auth.CodeGracePeriod)
	assert.Equal(t, 7*24*time.Hour, cfg.Auth.SessionTTL)
	assert.Equal(t, 30*24*time.Hour, cfg.Auth.RememberMeSessionTTL)
	assert.False(t, cfg.SMTP.Enabled)
	assert.Equal(t, 4, cfg.Mailer.Workers)
}

func TestLoadConfigFromEnvironment(t *testing.T) {
	t.Setenv("APP_PORT", "9090")
	t.Setenv("AUTH_MAX_FAILED_LOGINS", "3")
	t.Setenv("AUTH_LOCK_DURATION", "1h")
	t.Setenv("JWT_ACCESS_SECRET", "env-access-secret")
	t.Setenv("REDIS_ENABLED", "false")
	t.Setenv("DB_PORT", "not-a-number")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.App.Port)
	assert.Equal(t, 3, cfg.Auth.MaxFailedLogins)
	assert.Equal(t, time.Hour, cfg.Auth.LockDuration)
	assert.Equal(t, "env-access-secret", cfg.JWT.AccessSecret)
	assert.False(t, cfg.Redis.Enabled)
	// Unparseable values fall back to the default.
	assert.Equal(t, 5432, cfg.Database.Port)
}

func TestConnectionStrings(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Contains(t, cfg.DatabaseConnectionString(), "dbname=farm_db")
	assert.Equal(t, "localhost:6379", cfg.RedisAddress())
	assert.Equal(t, "localhost:587", cfg.SMTPAddress())
}
