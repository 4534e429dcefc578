package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAccessTokenClaims(t *testing.T) {
	at, err := NewAccessToken("secret", 12, "frontdesk", "user", 30)
	require.NoError(t, err)

	tok, err := jwt.Parse(at.Token, func(*jwt.Token) (interface{}, error) {
		return []byte("secret"), nil
	})
	require.NoError(t, err)
	require.True(t, tok.Valid)

	claims, ok := tok.Claims.(jwt.MapClaims)
	require.True(t, ok)
	assert.Equal(t, float64(12), claims["sub"])
	assert.Equal(t, "frontdesk", claims["name"])
	assert.Equal(t, "user", claims["role"])
	assert.InDelta(t, time.Now().Add(30*time.Minute).Unix(), claims["exp"].(float64), 5)
}

func TestNewAccessTokenRejectsWrongSecret(t *testing.T) {
	at, err := NewAccessToken("secret", 12, "frontdesk", "user", 30)
	require.NoError(t, err)

	_, err = jwt.Parse(at.Token, func(*jwt.Token) (interface{}, error) {
		return []byte("other"), nil
	})
	assert.Error(t, err)
}

func TestNewRefreshTokenIsRandom(t *testing.T) {
	a, err := NewRefreshToken(7)
	require.NoError(t, err)
	b, err := NewRefreshToken(7)
	require.NoError(t, err)

	assert.Len(t, a.Raw, 96)
	assert.NotEqual(t, a.Raw, b.Raw)
	assert.InDelta(t, time.Now().Add(7*24*time.Hour).Unix(), a.Exp.Unix(), 5)
}

func TestHashRefreshRawIsStable(t *testing.T) {
	assert.Equal(t, HashRefreshRaw("abc"), HashRefreshRaw("abc"))
	assert.NotEqual(t, HashRefreshRaw("abc"), HashRefreshRaw("abd"))
	assert.Len(t, HashRefreshRaw("abc"), 64)
}
