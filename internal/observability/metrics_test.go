package observability

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPMetricsMiddleware_UsesRoutePattern(t *testing.T) {
	registry := prometheus.NewRegistry()
	metrics := NewMetrics(registry)

	r := chi.NewRouter()
	r.Use(HTTPMetricsMiddleware(metrics))
	r.Delete("/contacts/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	for _, id := range []string{"a", "b", "c"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/contacts/"+id, nil))
		require.Equal(t, http.StatusNoContent, rec.Code)
	}

	assert.Equal(t, 3.0, testutil.ToFloat64(metrics.HTTPRequestsTotal.WithLabelValues("DELETE", "/contacts/{id}", "204")))
}

func TestObserveAuthAndContact(t *testing.T) {
	metrics := NewMetrics(prometheus.NewRegistry())

	metrics.ObserveAuth("login", "invalid_credentials")
	metrics.ObserveAuth("login", "invalid_credentials")
	metrics.ObserveContact("create", "success")

	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.AuthAttemptsTotal.WithLabelValues("login", "invalid_credentials")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.ContactOperationsTotal.WithLabelValues("create", "success")))

	var nilMetrics *Metrics
	assert.NotPanics(t, func() {
		nilMetrics.ObserveAuth("login", "success")
		nilMetrics.ObserveContact("list", "success")
	})
}

func TestHandlerExposesDBStats(t *testing.T) {
	registry := prometheus.NewRegistry()
	metrics := NewMetrics(registry)

	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	metrics.RegisterDB(db, "contactbook")

	metrics.ObserveAuth("register", "success")

	srv := httptest.NewServer(metrics.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	text := string(body)
	assert.True(t, strings.Contains(text, "contactbook_auth_attempts_total"), "auth counter missing")
	assert.True(t, strings.Contains(text, `go_sql_open_connections{db_name="contactbook"}`), "db stats missing")
}

