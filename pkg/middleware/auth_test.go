package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"foodtruck-market/internal/data/entity"
	"foodtruck-market/pkg/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type stubSessions struct {
	sessions map[string]*entity.Session
	err      error
}

func (s *stubSessions) Create(context.Context, *entity.Session) error { return nil }

func (s *stubSessions) FindValidSession(_ context.Context, token string) (*entity.Session, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.sessions[token], nil
}

func (s *stubSessions) Revoke(context.Context, string) error { return nil }

func (s *stubSessions) CleanExpiredSessions(context.Context) (int64, error) { return 0, nil }

func newStubSessions(role entity.UserRole) (*stubSessions, string, uuid.UUID) {
	token := uuid.NewString()
	userID := uuid.New()
	return &stubSessions{sessions: map[string]*entity.Session{
		token: {UserID: userID, ExpiresAt: time.Now().Add(time.Hour), Role: role},
	}}, token, userID
}

func echoPrincipal(w http.ResponseWriter, r *http.Request) {
	p, ok := utils.GetPrincipal(r.Context())
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	w.Write([]byte(p.UserID.String() + "|" + p.Role))
}

func TestAuthSession(t *testing.T) {
	sessions, token, userID := newStubSessions(entity.RoleHost)
	handler := AuthSession(sessions, zap.NewNop())(http.HandlerFunc(echoPrincipal))

	tests := []struct {
		name   string
		header string
		code   int
		body   string
	}{
		{name: "missing header", header: "", code: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic " + token, code: http.StatusUnauthorized},
		{name: "unknown token", header: "Bearer " + uuid.NewString(), code: http.StatusUnauthorized},
		{name: "valid", header: "Bearer " + token, code: http.StatusOK, body: userID.String() + "|host"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.code, rec.Code)
			if tt.body != "" {
				assert.Equal(t, tt.body, rec.Body.String())
			}
		})
	}
}

func TestAuthSession_RepositoryError(t *testing.T) {
	handler := AuthSession(&stubSessions{err: assert.AnError}, zap.NewNop())(http.HandlerFunc(echoPrincipal))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+uuid.NewString())
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestOptionalSession(t *testing.T) {
	sessions, token, userID := newStubSessions(entity.RoleRenter)
	handler := OptionalSession(sessions, zap.NewNop())(http.HandlerFunc(echoPrincipal))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, userID.String()+"|renter", rec.Body.String())
}

func TestRequireRole(t *testing.T) {
	handler := RequireRole(zap.NewNop(), entity.RoleHost)(http.HandlerFunc(echoPrincipal))

	tests := []struct {
		name string
		role string
		code int
	}{
		{name: "host", role: "host", code: http.StatusOK},
		{name: "admin", role: "admin", code: http.StatusOK},
		{name: "renter", role: "renter", code: http.StatusForbidden},
		{name: "anonymous", role: "", code: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", nil)
			if tt.role != "" {
				req = req.WithContext(utils.SetPrincipal(req.Context(), uuid.New(), tt.role))
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.code, rec.Code)
		})
	}
}

func TestRecover(t *testing.T) {
	handler := Recover(zap.NewNop())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}
