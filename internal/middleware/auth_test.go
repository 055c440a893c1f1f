package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spnd-app/spnd-server/internal/config"
)

func protectedEcho(t *testing.T, cfg *config.Config) http.Handler {
	t.Helper()
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := UserID(r.Context())
		require.True(t, ok)
		_, _ = w.Write([]byte(userID))
	})
	return AuthMiddleware(cfg)(next)
}

func signToken(t *testing.T, secret, subject string, expiresAt time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	})
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestAuthMiddlewareResolvesUser(t *testing.T) {
	cfg := &config.Config{JWTSecret: "secret"}
	handler := protectedEcho(t, cfg)

	req := httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "secret", "user-7", time.Now().Add(time.Hour)))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-7", rec.Body.String())
}

func TestAuthMiddlewareRejections(t *testing.T) {
	cfg := &config.Config{JWTSecret: "secret"}
	handler := protectedEcho(t, cfg)

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"not bearer", "Basic dXNlcjpwYXNz"},
		{"garbage token", "Bearer not.a.jwt"},
		{"wrong secret", "Bearer " + signToken(t, "other-secret", "user-7", time.Now().Add(time.Hour))},
		{"expired", "Bearer " + signToken(t, "secret", "user-7", time.Now().Add(-time.Minute))},
		{"empty subject", "Bearer " + signToken(t, "secret", "", time.Now().Add(time.Hour))},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/me", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestUserIDMissing(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	_, ok := UserID(req.Context())
	assert.False(t, ok)
}
