package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"eventboard/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakePasswordHasher is a reversible stand-in for the bcrypt hasher.
type fakePasswordHasher struct{}

func (fakePasswordHasher) GenerateSalt() (string, error) {
	return "salt", nil
}

func (fakePasswordHasher) Hash(salt, password string) (string, error) {
	return salt + ":" + password, nil
}

func (fakePasswordHasher) Compare(hash, salt, password string) error {
	if hash != salt+":"+password {
		return fmt.Errorf("hash mismatch")
	}
	return nil
}

// fakeTokenIssuer records the roles of the last issued token.
type fakeTokenIssuer struct {
	lastRoles []string
	err       error
}

func (f *fakeTokenIssuer) Issue(userID int64, email string, roles []string, expiry time.Duration) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.lastRoles = roles
	return fmt.Sprintf("token-%d", userID), nil
}

type authFixtures struct {
	users   *fakeUserRepo
	issuer  *fakeTokenIssuer
	service domain.AuthService
}

func newAuthFixtures() *authFixtures {
	f := &authFixtures{
		users:  newFakeUserRepo(),
		issuer: &fakeTokenIssuer{},
	}
	f.service = NewAuthService(f.users, fakePasswordHasher{}, f.issuer, time.Hour, testLogger(), 5*time.Second)
	return f
}

func TestAuthService_SignUp(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixtures()

	user, token, err := f.service.SignUp(ctx, "Alice", "alice@example.com", "long-enough")
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.Equal(t, "salt:long-enough", user.PasswordHash)
	assert.Equal(t, fmt.Sprintf("token-%d", user.ID), token)
	assert.Equal(t, []string{"user"}, f.issuer.lastRoles)
}

func TestAuthService_SignUp_errors(t *testing.T) {
	tests := []struct {
		name     string
		userName string
		email    string
		password string
		wantErr  error
	}{
		{"blank name", "  ", "alice@example.com", "long-enough", domain.ErrValidation},
		{"invalid email", "Alice", "not-an-email", "long-enough", domain.ErrValidation},
		{"short password", "Alice", "alice@example.com", "short", domain.ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAuthFixtures()
			_, _, err := f.service.SignUp(context.Background(), tt.userName, tt.email, tt.password)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestAuthService_SignUp_duplicateEmail(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixtures()
	_, _, err := f.service.SignUp(ctx, "Alice", "alice@example.com", "long-enough")
	require.NoError(t, err)

	_, _, err = f.service.SignUp(ctx, "Other Alice", "alice@example.com", "long-enough")
	require.ErrorIs(t, err, domain.ErrConflict)
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixtures()
	signedUp, _, err := f.service.SignUp(ctx, "Alice", "alice@example.com", "long-enough")
	require.NoError(t, err)

	user, token, err := f.service.Login(ctx, "alice@example.com", "long-enough")
	require.NoError(t, err)
	assert.Equal(t, signedUp.ID, user.ID)
	assert.NotEmpty(t, token)
}

// Unknown emails and wrong passwords are indistinguishable to the caller.
func TestAuthService_Login_invalidCredentials(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixtures()
	_, _, err := f.service.SignUp(ctx, "Alice", "alice@example.com", "long-enough")
	require.NoError(t, err)

	_, _, err = f.service.Login(ctx, "alice@example.com", "wrong-password")
	require.ErrorIs(t, err, domain.ErrForbidden)

	_, _, err = f.service.Login(ctx, "nobody@example.com", "long-enough")
	require.ErrorIs(t, err, domain.ErrForbidden)
}

func TestAuthService_Login_adminRole(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixtures()
	admin := &domain.User{
		Name:         "Root",
		Email:        "root@example.com",
		PasswordHash: "salt:long-enough",
		Salt:         "salt",
		Admin:        true,
	}
	require.NoError(t, f.users.Create(ctx, admin))

	_, _, err := f.service.Login(ctx, "root@example.com", "long-enough")
	require.NoError(t, err)
	assert.Equal(t, []string{"user", "admin"}, f.issuer.lastRoles)
}
