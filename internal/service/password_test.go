package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	domainerrors "github.com/rukshanyomal11/farm-management-system/internal/errors"
)

func TestPasswordHashAndVerify(t *testing.T) {
	svc := NewPasswordService(bcrypt.MinCost)

	hash, err := svc.Hash("my-password-1")
	require.NoError(t, err)
	assert.NotEqual(t, "my-password-1", hash)

	assert.NoError(t, svc.Verify(hash, "my-password-1"))
	assert.ErrorIs(t, svc.Verify(hash, "wrong"), domainerrors.ErrInvalidCredentials)
}

func TestPasswordVerifyCorruptHash(t *testing.T) {
	svc := NewPasswordService(bcrypt.MinCost)

	err := svc.Verify("not-a-bcrypt-hash", "anything")
	require.Error(t, err)
	assert.NotErrorIs(t, err, domainerrors.ErrInvalidCredentials)
}

func TestGenerateNumericCodeWidth(t *testing.T) {
	for i := 0; i < 20; i++ {
		code, err := GenerateNumericCode(6)
		require.NoError(t, err)
		assert.Len(t, code, 6)
		for _, r := range code {
			assert.True(t, r >= '0' && r <= '9')
		}
	}
}

func TestGenerateOpaqueTokenUnique(t *testing.T) {
	a, err := GenerateOpaqueToken()
	require.NoError(t, err)
	b, err := GenerateOpaqueToken()
	require.NoError(t, err)

	assert.Len(t, a, 48)
	assert.NotEqual(t, a, b)
}
