package security

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("test-secret", 60)

	token, err := tm.GenerateAccessToken(7, "pedro@lavarenta.mx", "FIELD")
	require.NoError(t, err)

	claims, err := tm.ValidateToken(token)
	require.NoError(t, err)
	assert.EqualValues(t, 7, claims.OperatorID)
	assert.Equal(t, "pedro@lavarenta.mx", claims.Email)
	assert.Equal(t, TokenTypeAccess, claims.Type)
	assert.Equal(t, "FIELD", claims.Role)
	assert.Equal(t, "lavarenta-backend", claims.Issuer)
}

func TestRefreshTokenCarriesNoRole(t *testing.T) {
	tm := NewTokenManager("test-secret", 60)

	token, err := tm.GenerateRefreshToken(7, "pedro@lavarenta.mx")
	require.NoError(t, err)

	claims, err := tm.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, TokenTypeRefresh, claims.Type)
	assert.Empty(t, claims.Role)
}

func TestValidateRejectsForeignSecret(t *testing.T) {
	token, err := NewTokenManager("secret-a", 60).GenerateAccessToken(7, "pedro@lavarenta.mx", "FIELD")
	require.NoError(t, err)

	_, err = NewTokenManager("secret-b", 60).ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateRejectsExpiredToken(t *testing.T) {
	tm := &tokenManager{secret: []byte("test-secret"), accessExpiry: -time.Minute}

	token, err := tm.GenerateAccessToken(7, "pedro@lavarenta.mx", "FIELD")
	require.NoError(t, err)

	_, err = tm.ValidateToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestValidateRejectsGarbage(t *testing.T) {
	_, err := NewTokenManager("test-secret", 60).ValidateToken("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
