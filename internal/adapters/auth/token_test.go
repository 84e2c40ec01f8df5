package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTProvider_Issue(t *testing.T) {
	secret := "test-secret"
	issuer, _ := NewJWTProvider(secret)

	token, err := issuer.Issue(123, "u@example.com", []string{"admin", "user"}, 24*time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	// Parse and verify claims
	parsed, err := jwt.ParseWithClaims(token, &jwtClaims{}, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	require.NoError(t, err)
	require.True(t, parsed.Valid)
	claims, ok := parsed.Claims.(*jwtClaims)
	require.True(t, ok)
	assert.Equal(t, "123", claims.Subject)
	assert.Equal(t, "u@example.com", claims.Email)
	assert.Equal(t, []string{"admin", "user"}, claims.Roles)
}

func TestJWTProvider_Verify(t *testing.T) {
	issuer, verifier := NewJWTProvider("test-secret")

	token, err := issuer.Issue(42, "u@example.com", []string{"user"}, time.Hour)
	require.NoError(t, err)

	claims, err := verifier.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, "u@example.com", claims.Email)
	assert.False(t, claims.IsAdmin())
}

func TestJWTProvider_Verify_expired(t *testing.T) {
	issuer, verifier := NewJWTProvider("test-secret")

	token, err := issuer.Issue(42, "u@example.com", []string{"user"}, -time.Minute)
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	assert.Error(t, err)
}

func TestJWTProvider_Verify_wrong_secret(t *testing.T) {
	issuer, _ := NewJWTProvider("secret-a")
	_, verifier := NewJWTProvider("secret-b")

	token, err := issuer.Issue(42, "u@example.com", []string{"user"}, time.Hour)
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	assert.Error(t, err)
}
