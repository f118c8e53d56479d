package middleware

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"dental-clinic-booking/config"
	"dental-clinic-booking/internal/domain/entity"
	"dental-clinic-booking/pkg/jwt"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTokenStore struct {
	live map[string]bool
}

func (f *fakeTokenStore) key(userID int, tokenType jwt.TokenType, tokenID string) string {
	return string(tokenType) + ":" + tokenID
}

func (f *fakeTokenStore) Save(ctx context.Context, userID int, tokenType jwt.TokenType, tokenID string, ttl time.Duration) error {
	f.live[f.key(userID, tokenType, tokenID)] = true
	return nil
}

func (f *fakeTokenStore) Exists(ctx context.Context, userID int, tokenType jwt.TokenType, tokenID string) (bool, error) {
	return f.live[f.key(userID, tokenType, tokenID)], nil
}

func (f *fakeTokenStore) Revoke(ctx context.Context, userID int, tokenType jwt.TokenType, tokenID string) (bool, error) {
	key := f.key(userID, tokenType, tokenID)
	live := f.live[key]
	delete(f.live, key)
	return live, nil
}

func (f *fakeTokenStore) RevokeAll(ctx context.Context, userID int) error {
	f.live = map[string]bool{}
	return nil
}

func newJWT() *jwt.JWTService {
	return jwt.NewJWTService(config.JWTConfig{Secret: "test-secret", AccessExpiry: time.Minute, RefreshExpiry: time.Hour})
}

func TestAuthenticate(t *testing.T) {
	jwtService := newJWT()
	store := &fakeTokenStore{live: map[string]bool{}}
	m := NewAuthMiddleware(jwtService, store)

	var gotUserID int
	var gotRole entity.Role
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID, _ = GetUserIDFromContext(r.Context())
		gotRole, _ = GetRoleFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	access, accessID, err := jwtService.GenerateAccessToken(2, "bob.doe@email.com", "patient")
	require.NoError(t, err)
	require.NoError(t, store.Save(context.Background(), 2, jwt.AccessToken, accessID, time.Minute))

	refresh, _, err := jwtService.GenerateRefreshToken(2, "bob.doe@email.com", "patient")
	require.NoError(t, err)

	t.Run("Valid token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/appointments", nil)
		req.Header.Set("Authorization", "Bearer "+access)
		rr := httptest.NewRecorder()

		m.Authenticate(next).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, 2, gotUserID)
		assert.Equal(t, entity.RolePatient, gotRole)
	})

	t.Run("Missing header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/appointments", nil)
		rr := httptest.NewRecorder()

		m.Authenticate(next).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("Malformed header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/appointments", nil)
		req.Header.Set("Authorization", "Token "+access)
		rr := httptest.NewRecorder()

		m.Authenticate(next).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("Refresh token rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/appointments", nil)
		req.Header.Set("Authorization", "Bearer "+refresh)
		rr := httptest.NewRecorder()

		m.Authenticate(next).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("Revoked token rejected", func(t *testing.T) {
		revoked, err := store.Revoke(context.Background(), 2, jwt.AccessToken, accessID)
		require.NoError(t, err)
		require.True(t, revoked)
		req := httptest.NewRequest(http.MethodGet, "/api/v1/appointments", nil)
		req.Header.Set("Authorization", "Bearer "+access)
		rr := httptest.NewRecorder()

		m.Authenticate(next).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Contains(t, rr.Body.String(), "revoked")
	})
}

func TestRequireDoctor(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	t.Run("Doctor allowed", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/audit-logs", nil)
		req = req.WithContext(WithUser(req.Context(), &jwt.Claims{UserID: 1, Role: "doctor"}))
		rr := httptest.NewRecorder()

		RequireDoctor(next).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNoContent, rr.Code)
	})

	t.Run("Patient forbidden", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/audit-logs", nil)
		req = req.WithContext(WithUser(req.Context(), &jwt.Claims{UserID: 2, Role: "patient"}))
		rr := httptest.NewRecorder()

		RequireDoctor(next).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusForbidden, rr.Code)
	})

	t.Run("Anonymous unauthorized", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/audit-logs", nil)
		rr := httptest.NewRecorder()

		RequireDoctor(next).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}

func TestRateLimiterBlocksAfterBurst(t *testing.T) {
	rl := NewRateLimiter(0.001, 2)
	defer rl.Stop()

	handler := rl.Limit(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", nil)
		req.RemoteAddr = "10.0.0.1:5555"
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		codes = append(codes, rr.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	// A different client has its own bucket.
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", nil)
	req.RemoteAddr = "10.0.0.2:5555"
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)

	rl.Stop()
}

func TestCORSPreflight(t *testing.T) {
	m := NewCORSMiddleware(nil)
	handler := m.Handle(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/appointments", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
	assert.NotEqual(t, http.StatusTeapot, rr.Code)
}

func TestRequestLoggerRecordsStatus(t *testing.T) {
	var buf bytes.Buffer
	log := logrus.New()
	log.SetOutput(&buf)
	log.SetFormatter(&logrus.JSONFormatter{})

	handler := RequestLogger(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/v1/appointments", nil))

	assert.Contains(t, buf.String(), `"status":409`)
	assert.Contains(t, buf.String(), `"path":"/api/v1/appointments"`)
}
