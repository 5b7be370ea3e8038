package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anstrom/netsight/internal/logging"
	"github.com/anstrom/netsight/internal/metrics"
)

func TestRequestID(t *testing.T) {
	var seen string
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, rec.Header().Get(RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", seen)

	assert.Equal(t, "unknown", GetRequestID(httptest.NewRequest(http.MethodGet, "/", nil).Context()))
}

func TestLoggingLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewWithWriter(logging.Config{Level: logging.LevelDebug, Format: logging.FormatJSON}, &buf)

	status := http.StatusOK
	handler := Logging(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte("hello"))
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ok", nil))
	assert.Contains(t, buf.String(), `"level":"INFO"`)
	assert.Contains(t, buf.String(), `"response_size":5`)

	buf.Reset()
	status = http.StatusConflict
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/busy", nil))
	assert.Contains(t, buf.String(), `"level":"WARN"`)
	assert.Contains(t, buf.String(), `"status_code":409`)

	buf.Reset()
	status = http.StatusBadGateway
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/down", nil))
	assert.Contains(t, buf.String(), `"level":"ERROR"`)
}

func TestMetricsUsesRouteTemplate(t *testing.T) {
	pm := metrics.NewPrometheusMetrics()

	router := mux.NewRouter()
	router.Use(Metrics(pm))
	router.HandleFunc("/devices/{ip}/expand", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}).Methods(http.MethodPost)

	for _, ip := range []string{"10.0.0.1", "10.0.0.2"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/devices/"+ip+"/expand", nil))
		require.Equal(t, http.StatusOK, rec.Code)
	}

	count, err := testutil.GatherAndCount(pm.GetRegistry(), "netsight_console_http_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count, "one series per route, not per ip")
}

func TestRecovery(t *testing.T) {
	handler := RequestID(Recovery(logging.Discard())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "internal server error")
}
