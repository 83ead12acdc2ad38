package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidateToken(t *testing.T) {
	secret := "test-secret-key"

	token, err := GenerateToken(secret, "ana@example.com", true, 0)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ValidateToken(secret, token)
	require.NoError(t, err)

	assert.Equal(t, "ana@example.com", claims.Email)
	assert.True(t, claims.IsAdmin)
	assert.Nil(t, claims.ExpiresAt, "expected no exp claim")
}

func TestValidateTokenWrongSecret(t *testing.T) {
	token, err := GenerateToken("secret1", "ana@example.com", false, 0)
	require.NoError(t, err)

	_, err = ValidateToken("secret2", token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateTokenInvalid(t *testing.T) {
	_, err := ValidateToken("secret", "not-a-token")
	assert.Error(t, err)
}

func TestValidateTokenRejectsNone(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{Email: "ana@example.com", IsAdmin: true})
	signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = ValidateToken("secret", signed)
	assert.Error(t, err, "unsigned token must be rejected")
}

func TestTokenExpiry(t *testing.T) {
	secret := "test"
	token, err := GenerateToken(secret, "ana@example.com", false, time.Hour)
	require.NoError(t, err)

	claims, err := ValidateToken(secret, token)
	require.NoError(t, err)
	require.NotNil(t, claims.ExpiresAt)

	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, 5*time.Second)
}

func TestExpiredTokenRejected(t *testing.T) {
	secret := "test"
	claims := Claims{
		Email: "ana@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)

	_, err = ValidateToken(secret, signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
