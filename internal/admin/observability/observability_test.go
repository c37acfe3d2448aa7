package observability

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestFromContextDefaultsToNoop(t *testing.T) {
	t.Parallel()

	require.NotNil(t, FromContext(context.Background()))

	logger := zap.NewExample()
	ctx := WithLogger(context.Background(), logger)
	require.Same(t, logger, FromContext(ctx))
}

func TestNewLoggerFallsBackToInfo(t *testing.T) {
	t.Parallel()

	logger, err := NewLogger("nonsense")
	require.NoError(t, err)
	require.True(t, logger.Core().Enabled(zap.InfoLevel))
	require.False(t, logger.Core().Enabled(zap.DebugLevel))

	debug, err := NewLogger("DEBUG")
	require.NoError(t, err)
	require.True(t, debug.Core().Enabled(zap.DebugLevel))
}

func TestRequestLoggerRecordsRouteAndStatus(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zap.InfoLevel)
	metrics := NewMetrics(prometheus.NewRegistry())

	router := chi.NewRouter()
	router.Use(RequestLogger(zap.New(core), metrics))
	router.Get("/products/{id}", func(w http.ResponseWriter, r *http.Request) {
		FromContext(r.Context()).Info("inside handler")
		w.WriteHeader(http.StatusTeapot)
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/products/42", nil))
	require.Equal(t, http.StatusTeapot, rec.Code)

	require.Equal(t, 1, logs.FilterMessage("inside handler").Len())
	completed := logs.FilterMessage("request completed").All()
	require.Len(t, completed, 1)
	fields := completed[0].ContextMap()
	require.Equal(t, "/products/{id}", fields["route"])
	require.EqualValues(t, http.StatusTeapot, fields["status"])
	require.Equal(t, "/products/42", fields["path"])

	body := scrape(t, metrics)
	require.Contains(t, body, `managersync_http_requests_total{method="GET",route="/products/{id}",status="418"} 1`)
}

func TestMetricsNilSafe(t *testing.T) {
	t.Parallel()

	var m *Metrics
	m.ObserveRequest("GET", "/", 200, time.Millisecond)
	m.ObserveReferenceLoad("geo", "success", time.Second)
	m.RemoteFailure("cabys")
	m.CacheLookup("cabys", true)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMetricsCounters(t *testing.T) {
	t.Parallel()

	m := NewMetrics(prometheus.NewRegistry())
	m.ObserveReferenceLoad("geo", "failure", 2*time.Second)
	m.RemoteFailure("backend")
	m.CacheLookup("cabys", false)

	body := scrape(t, m)
	require.Contains(t, body, `managersync_reference_loads_total{outcome="failure",source="geo"} 1`)
	require.Contains(t, body, `managersync_remote_failures_total{service="backend"} 1`)
	require.Contains(t, body, `managersync_cache_lookups_total{cache="cabys",result="miss"} 1`)
}

func TestTracerProviderDisabled(t *testing.T) {
	t.Parallel()

	tp, err := NewTracerProvider(context.Background(), TracingConfig{}, zap.NewNop())
	require.NoError(t, err)
	require.False(t, tp.Enabled())
	require.NoError(t, tp.Shutdown(context.Background()))
}

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	return strings.TrimSpace(string(body))
}
