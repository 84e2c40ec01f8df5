package domain

import (
	"context"
	"time"
)

// TokenClaims is the verified identity carried by an access token.
type TokenClaims struct {
	UserID int64
	Email  string
	Roles  []string
}

// IsAdmin reports whether the claims carry the admin role.
func (c *TokenClaims) IsAdmin() bool {
	for _, r := range c.Roles {
		if r == "admin" {
			return true
		}
	}
	return false
}

// TokenIssuer signs access tokens.
type TokenIssuer interface {
	Issue(userID int64, email string, roles []string, expiry time.Duration) (string, error)
}

// TokenVerifier validates access tokens and extracts claims.
type TokenVerifier interface {
	Verify(token string) (*TokenClaims, error)
}

// PasswordHasher hashes and compares passwords.
type PasswordHasher interface {
	GenerateSalt() (string, error)
	Hash(salt, password string) (string, error)
	Compare(hash, salt, password string) error
}

// AuthService handles signup and login.
type AuthService interface {
	SignUp(ctx context.Context, name, email, password string) (*User, string, error)
	Login(ctx context.Context, email, password string) (*User, string, error)
}
