package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"eventboard/internal/delivery/http/helpers"
	"eventboard/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTokenVerifier implements domain.TokenVerifier for tests.
type fakeTokenVerifier struct {
	claims *domain.TokenClaims
	err    error
}

func (f *fakeTokenVerifier) Verify(_ string) (*domain.TokenClaims, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.claims, nil
}

func TestRequireAuth(t *testing.T) {
	userClaims := &domain.TokenClaims{UserID: 7, Email: "alice@example.com", Roles: []string{"user"}}

	tests := []struct {
		name          string
		authHeader    string
		verifier      domain.TokenVerifier
		wantStatus    int
		nextCalled    bool
		wantContextID int64
	}{
		{
			name:          "valid token sets claims and calls next",
			authHeader:    "Bearer valid-token",
			verifier:      &fakeTokenVerifier{claims: userClaims},
			wantStatus:    http.StatusOK,
			nextCalled:    true,
			wantContextID: 7,
		},
		{
			name:       "missing authorization header",
			authHeader: "",
			verifier:   &fakeTokenVerifier{claims: userClaims},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "no Bearer prefix",
			authHeader: "Basic abc",
			verifier:   &fakeTokenVerifier{claims: userClaims},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "empty token after Bearer",
			authHeader: "Bearer ",
			verifier:   &fakeTokenVerifier{claims: userClaims},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "verifier rejects token",
			authHeader: "Bearer bad-token",
			verifier:   &fakeTokenVerifier{err: errors.New("invalid or expired token")},
			wantStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nextCalled := false
			var capturedID int64
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				nextCalled = true
				if claims, ok := ClaimsFromContext(r.Context()); ok {
					capturedID = claims.UserID
				}
				w.WriteHeader(http.StatusOK)
			})
			handler := RequireAuth(tt.verifier)(next)

			req := httptest.NewRequest(http.MethodGet, "http://test/users/7/requests", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rr := httptest.NewRecorder()

			handler(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code, "status code")
			assert.Equal(t, tt.nextCalled, nextCalled, "next handler called")
			if tt.nextCalled {
				assert.Equal(t, tt.wantContextID, capturedID, "user id in context")
				return
			}
			var envelope helpers.APIResponse
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope))
			require.NotNil(t, envelope.Error)
			assert.Equal(t, helpers.ErrCodeUnauthorized, envelope.Error.Code)
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	tests := []struct {
		name       string
		claims     *domain.TokenClaims
		wantStatus int
		wantCode   string
	}{
		{
			name:       "admin passes",
			claims:     &domain.TokenClaims{UserID: 1, Roles: []string{"user", "admin"}},
			wantStatus: http.StatusOK,
		},
		{
			name:       "plain user is rejected",
			claims:     &domain.TokenClaims{UserID: 7, Roles: []string{"user"}},
			wantStatus: http.StatusForbidden,
			wantCode:   helpers.ErrCodeForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			})
			handler := RequireAdmin(&fakeTokenVerifier{claims: tt.claims})(next)

			req := httptest.NewRequest(http.MethodGet, "http://test/admin/events", nil)
			req.Header.Set("Authorization", "Bearer token")
			rr := httptest.NewRecorder()

			handler(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code)
			if tt.wantCode != "" {
				var envelope helpers.APIResponse
				require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope))
				require.NotNil(t, envelope.Error)
				assert.Equal(t, tt.wantCode, envelope.Error.Code)
			}
		})
	}
}
