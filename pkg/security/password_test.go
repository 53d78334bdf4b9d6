package security

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adriancampa/storeloom-backend/pkg/config"
)

func fastParams() config.PasswordConfig {
	return config.PasswordConfig{
		ArgonMemoryKB:    8,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     8,
		ArgonKeyLen:      16,
	}
}

func TestHashAndVerify(t *testing.T) {
	encoded, err := HashPassword("hunter2!", fastParams())
	require.NoError(t, err)
	assert.Contains(t, encoded, "$argon2id$")

	ok, err := VerifyPassword("hunter2!", encoded)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyPassword("wrong", encoded)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHashRejectsEmptyPassword(t *testing.T) {
	_, err := HashPassword("", fastParams())
	require.Error(t, err)
}

func TestVerifyRejectsMalformedHash(t *testing.T) {
	_, err := VerifyPassword("pw", "not-a-hash")
	assert.ErrorIs(t, err, ErrInvalidHash)

	_, err = VerifyPassword("pw", "$argon2id$v=19$m=8,t=1,p=1$bad salt$hash")
	assert.ErrorIs(t, err, ErrInvalidHash)
}
