package jwt

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndParse(t *testing.T) {
	token, err := GenerateToken("ops", []string{RoleWriter}, "s3cret", "budget", time.Hour)
	require.NoError(t, err)

	claims, err := ParseToken(token, "s3cret")
	require.NoError(t, err)
	assert.Equal(t, "ops", claims.Subject)
	assert.Equal(t, "budget", claims.Issuer)
	assert.True(t, claims.HasRole(RoleWriter))
	assert.False(t, claims.HasRole("auditor"))
}

func TestAdminHasAllRoles(t *testing.T) {
	token, err := GenerateToken("root", []string{RoleAdmin}, "s3cret", "budget", 0)
	require.NoError(t, err)
	claims, err := ParseToken(token, "s3cret")
	require.NoError(t, err)
	assert.True(t, claims.HasRole(RoleWriter))
	assert.Nil(t, claims.ExpiresAt)
}

func TestParseErrors(t *testing.T) {
	_, err := GenerateToken("ops", nil, "", "budget", time.Hour)
	assert.True(t, errors.Is(err, ErrMissingSecret))

	token, err := GenerateToken("ops", nil, "s3cret", "budget", time.Hour)
	require.NoError(t, err)
	_, err = ParseToken(token, "other")
	assert.True(t, errors.Is(err, ErrTokenInvalid))

	_, err = ParseToken("not-a-token", "s3cret")
	assert.True(t, errors.Is(err, ErrTokenMalformed))

	expired, err := GenerateToken("ops", nil, "s3cret", "budget", -time.Minute)
	require.NoError(t, err)
	_, err = ParseToken(expired, "s3cret")
	assert.True(t, errors.Is(err, ErrTokenExpired))
}
