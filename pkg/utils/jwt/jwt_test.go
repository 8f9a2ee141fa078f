package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	Init("test-signing-secret")
	m.Run()
}

func TestAccessToken_RoundTrip(t *testing.T) {
	token, err := GenerateAccessToken(42, "buyer@example.com", "CUSTOMER")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "buyer@example.com", claims.Email)
	assert.Equal(t, "CUSTOMER", claims.Role)
}

func TestAccessToken_CarriesExpiry(t *testing.T) {
	token, err := GenerateAccessToken(1, "a@b.c", "ADMIN")
	require.NoError(t, err)

	claims, err := ValidateAccessToken(token)
	require.NoError(t, err)
	require.NotNil(t, claims.ExpiresAt)
	assert.WithinDuration(t, time.Now().Add(AccessTokenTTL), claims.ExpiresAt.Time, time.Minute)
}

func TestValidateAccessToken_Tampered(t *testing.T) {
	token, err := GenerateAccessToken(1, "a@b.c", "CUSTOMER")
	require.NoError(t, err)

	tampered := token[:len(token)-2] + "xx"
	claims, err := ValidateAccessToken(tampered)
	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.Nil(t, claims)
}

func TestValidateAccessToken_Garbage(t *testing.T) {
	claims, err := ValidateAccessToken("not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.Nil(t, claims)
}

func TestValidateAccessToken_WrongSecret(t *testing.T) {
	token, err := GenerateAccessToken(1, "a@b.c", "CUSTOMER")
	require.NoError(t, err)

	Init("another-secret")
	defer Init("test-signing-secret")

	_, err = ValidateAccessToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestGenerateRefreshToken(t *testing.T) {
	first, firstExpiry := GenerateRefreshToken()
	second, secondExpiry := GenerateRefreshToken()

	assert.NotEmpty(t, first)
	assert.NotEqual(t, first, second, "refresh tokens must be unique")
	assert.WithinDuration(t, time.Now().Add(RefreshTokenTTL), firstExpiry, time.Minute)
	assert.WithinDuration(t, time.Now().Add(RefreshTokenTTL), secondExpiry, time.Minute)
}
