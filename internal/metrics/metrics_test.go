package metrics_test

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kdos/folio/internal/metrics"
)

func TestMiddleware_RecordsRoutePattern(t *testing.T) {
	m := metrics.New()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/projects", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	handler := m.Middleware(mux)

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/projects", nil))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nowhere", nil))

	count, err := testutil.GatherAndCount(m.Registry(), "folio_http_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	assert.Contains(t, string(body), `folio_http_requests_total{method="GET",route="GET /api/projects",status="418"} 1`)
	assert.Contains(t, string(body), `route="unmatched",status="404"`)
}

func TestObserveCounters(t *testing.T) {
	m := metrics.New()

	m.ObserveLogin(metrics.LoginFailure)
	m.ObserveLogin(metrics.LoginFailure)
	m.ObserveContact("log", nil)
	m.ObserveContentWrite("skills", errors.New("boom"))

	count, err := testutil.GatherAndCount(m.Registry(),
		"folio_login_attempts_total", "folio_contact_messages_total", "folio_content_writes_total")
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}
