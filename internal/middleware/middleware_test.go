package middleware_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kdos/folio/internal/config"
	"github.com/kdos/folio/internal/domain"
	"github.com/kdos/folio/internal/metrics"
	"github.com/kdos/folio/internal/middleware"
)

type stubChecker struct {
	valid string
	err   error
}

func (c stubChecker) Check(_ context.Context, token string) (*domain.Session, error) {
	if c.err != nil {
		return nil, c.err
	}
	if token == "" || token != c.valid {
		return nil, domain.ErrUnauthenticated
	}
	return &domain.Session{ID: "session-1", Username: "admin"}, nil
}

func protected(called *bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*called = true
		session, err := middleware.GetSessionFromContext(r.Context())
		if err != nil {
			w.WriteHeader(http.StatusTeapot)
			return
		}
		w.Write([]byte(session.ID))
	})
}

func requestWithCookie(value string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/skills", nil)
	if value != "" {
		req.AddCookie(&http.Cookie{Name: config.SessionCookieName, Value: value})
	}
	return req
}

func TestRequireAuth(t *testing.T) {
	tests := []struct {
		name       string
		checker    stubChecker
		cookie     string
		wantStatus int
		wantCalled bool
	}{
		{name: "no cookie", checker: stubChecker{valid: "good"}, wantStatus: http.StatusUnauthorized},
		{name: "forged cookie", checker: stubChecker{valid: "good"}, cookie: "anything", wantStatus: http.StatusUnauthorized},
		{name: "valid cookie", checker: stubChecker{valid: "good"}, cookie: "good", wantStatus: http.StatusOK, wantCalled: true},
		{name: "store down", checker: stubChecker{err: errors.New("down")}, cookie: "good", wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			handler := middleware.NewAuthMiddleware(tt.checker).RequireAuth(protected(&called))

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, requestWithCookie(tt.cookie))

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantCalled, called)
			if tt.wantStatus == http.StatusUnauthorized {
				assert.JSONEq(t, `{"error":"Unauthorized"}`, rec.Body.String())
			}
			if tt.wantCalled {
				assert.Equal(t, "session-1", rec.Body.String())
			}
		})
	}
}

func TestRateLimiter_PerClient(t *testing.T) {
	limiter := middleware.NewRateLimiter(2, 2, false, metrics.New())
	handler := limiter.Limit(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	send := func(remote string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
		req.RemoteAddr = remote
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusNoContent, send("10.0.0.1:1234"))
	assert.Equal(t, http.StatusNoContent, send("10.0.0.1:2345"))
	assert.Equal(t, http.StatusTooManyRequests, send("10.0.0.1:3456"))

	// Other clients keep their own budget.
	assert.Equal(t, http.StatusNoContent, send("10.0.0.2:1234"))
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		forwarded  []string
		trustProxy bool
		want       string
	}{
		{name: "direct", forwarded: []string{"203.0.113.7"}, want: "192.0.2.10"},
		{name: "proxy appended entry", forwarded: []string{"203.0.113.7, 198.51.100.9"}, trustProxy: true, want: "198.51.100.9"},
		{name: "repeated header", forwarded: []string{"203.0.113.7", "198.51.100.9"}, trustProxy: true, want: "198.51.100.9"},
		{name: "no header", trustProxy: true, want: "192.0.2.10"},
		{name: "empty last entry", forwarded: []string{"203.0.113.7,"}, trustProxy: true, want: "192.0.2.10"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = "192.0.2.10:5555"
			for _, v := range tt.forwarded {
				req.Header.Add("X-Forwarded-For", v)
			}

			assert.Equal(t, tt.want, middleware.ClientIP(req, tt.trustProxy))
		})
	}
}

func TestRateLimiter_SpoofedForwardedFor(t *testing.T) {
	limiter := middleware.NewRateLimiter(5, 5, true, metrics.New())
	handler := limiter.Limit(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	limited := 0
	for i := 0; i < 50; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
		req.RemoteAddr = "10.0.0.1:4000"
		// The client rotates its own entry; the proxy appends the real address.
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("203.0.113.%d, 198.51.100.9", i))

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code == http.StatusTooManyRequests {
			limited++
		}
	}

	assert.Equal(t, 45, limited)
	assert.Equal(t, 1, limiter.Buckets())
}

func TestRateLimiter_EvictsIdleClients(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	limiter := middleware.NewRateLimiter(5, 5, false, metrics.New())
	limiter.SetClock(func() time.Time { return now })
	handler := limiter.Limit(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	send := func(remote string) {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
		req.RemoteAddr = remote
		handler.ServeHTTP(httptest.NewRecorder(), req)
	}

	for i := 0; i < 20; i++ {
		send(fmt.Sprintf("10.0.1.%d:1234", i))
	}
	require.Equal(t, 20, limiter.Buckets())

	// Within the sweep interval nothing is scanned.
	now = now.Add(30 * time.Second)
	send("10.0.2.1:1234")
	assert.Equal(t, 21, limiter.Buckets())

	now = now.Add(11 * time.Minute)
	send("10.0.2.2:1234")
	assert.Equal(t, 1, limiter.Buckets())
}
