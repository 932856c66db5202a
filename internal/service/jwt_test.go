package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// expiredToken signs a well-formed token whose expiry is already in the past.
func expiredToken(t *testing.T, adminID int64, username string) string {
	t.Helper()
	claims := &Claims{
		AdminID:  adminID,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-25 * time.Hour)),
			NotBefore: jwt.NewNumericDate(time.Now().Add(-25 * time.Hour)),
			Issuer:    "playlist-bot",
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(jwtSecret)
	require.NoError(t, err)
	return token
}

func TestGenerateAndValidateToken(t *testing.T) {
	token, err := GenerateToken(7, "admin")
	require.NoError(t, err)

	claims, err := ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, int64(7), claims.AdminID)
	assert.Equal(t, "admin", claims.Username)
}

func TestValidateTokenExpiredKeepsClaims(t *testing.T) {
	claims, err := ValidateToken(expiredToken(t, 7, "admin"))

	assert.ErrorIs(t, err, ErrExpiredToken)
	require.NotNil(t, claims, "expired tokens still identify their owner")
	assert.Equal(t, int64(7), claims.AdminID)
	assert.Equal(t, "admin", claims.Username)
}

func TestValidateTokenGarbage(t *testing.T) {
	claims, err := ValidateToken("not-a-token")

	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.Nil(t, claims)
}

func TestRefreshTokenFromExpired(t *testing.T) {
	refreshed, err := RefreshToken(expiredToken(t, 7, "admin"))
	require.NoError(t, err)

	claims, err := ValidateToken(refreshed)
	require.NoError(t, err)
	assert.Equal(t, int64(7), claims.AdminID)
	assert.Equal(t, "admin", claims.Username)
}

func TestRefreshTokenRejectsInvalid(t *testing.T) {
	_, err := RefreshToken("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRefreshTokenRejectsWrongSignature(t *testing.T) {
	claims := &Claims{
		AdminID: 7,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("some-other-secret"))
	require.NoError(t, err)

	_, err = RefreshToken(forged)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
