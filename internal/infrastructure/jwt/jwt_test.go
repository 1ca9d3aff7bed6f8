package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidate(t *testing.T) {
	s := New("secret")

	token, err := s.GenerateJWT("ops", RoleAdmin, time.Minute)
	require.NoError(t, err)

	claims, err := s.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, claims.Role)
	assert.Equal(t, "ops", claims.Subject)
}

func TestValidateToken_WrongSecret(t *testing.T) {
	token, err := New("secret-a").GenerateJWT("ops", RoleAdmin, time.Minute)
	require.NoError(t, err)

	_, err = New("secret-b").ValidateToken(token)
	require.Error(t, err)
}

func TestValidateToken_Expired(t *testing.T) {
	s := New("secret")

	token, err := s.GenerateJWT("ops", RoleAdmin, -time.Minute)
	require.NoError(t, err)

	_, err = s.ValidateToken(token)
	require.Error(t, err)
}

func TestValidateToken_Garbage(t *testing.T) {
	_, err := New("secret").ValidateToken("not.a.token")
	require.Error(t, err)
}
