package metrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestPrometheusMetrics_InitializationAndUpdate(t *testing.T) {
	pm := NewPrometheusMetrics()
	if pm == nil {
		t.Fatalf("NewPrometheusMetrics returned nil")
	}
	if pm.GetRegistry() == nil {
		t.Fatalf("GetRegistry returned nil")
	}

	pm.UpdateSystemMetrics()
	before := pm.GetUptime()
	time.Sleep(10 * time.Millisecond)
	after := pm.GetUptime()
	if before >= after {
		t.Fatalf("expected uptime to increase, before=%v after=%v", before, after)
	}
}

func TestPrometheusMetrics_HandlerServes(t *testing.T) {
	pm := NewPrometheusMetrics()
	pm.UpdateSystemMetrics()

	rr := httptest.NewRecorder()
	pm.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	body := rr.Body.String()
	if !strings.Contains(body, "netsight_system_uptime_seconds") {
		end := min(200, len(body))
		t.Fatalf("expected uptime metric in output, got: %s", body[:end])
	}
}

func TestPrometheusMetrics_SessionMetrics(t *testing.T) {
	pm := NewPrometheusMetrics()

	pm.IncrementScansTotal("network", "completed")
	pm.IncrementScansTotal("network", "completed")
	pm.IncrementScansTotal("single_device", "failed")

	if got := testutil.ToFloat64(pm.scansTotal.WithLabelValues("network", "completed")); got != 2 {
		t.Errorf("expected 2 completed network scans, got %v", got)
	}
	if count := testutil.CollectAndCount(pm.scansTotal); count != 2 {
		t.Errorf("expected 2 label combinations, got %d", count)
	}

	pm.RecordScanDuration("network", 5*time.Second)
	pm.RecordScanDuration("single_device", time.Second)
	if count := testutil.CollectAndCount(pm.scanDuration); count != 2 {
		t.Errorf("expected 2 request kinds, got %d", count)
	}

	pm.IncrementScanErrors("network", "TRANSPORT_ERROR")
	if got := testutil.ToFloat64(pm.scanErrors.WithLabelValues("network", "TRANSPORT_ERROR")); got != 1 {
		t.Errorf("expected 1 transport error, got %v", got)
	}

	pm.SetActiveScans(1)
	pm.SetActiveScans(0)
	if got := testutil.ToFloat64(pm.activeScans); got != 0 {
		t.Errorf("expected no active scans, got %v", got)
	}

	pm.SetDevicesInResult(12)
	if got := testutil.ToFloat64(pm.devicesInResult); got != 12 {
		t.Errorf("expected 12 devices, got %v", got)
	}
}

func TestPrometheusMetrics_ServiceAndConsoleMetrics(t *testing.T) {
	pm := NewPrometheusMetrics()

	pm.IncrementServiceRequests("/network/scan", "200")
	pm.IncrementServiceRequests("/network/scan", "500")
	pm.RecordServiceDuration("/network/scan", 250*time.Millisecond)
	if count := testutil.CollectAndCount(pm.serviceRequests); count != 2 {
		t.Errorf("expected 2 status labels, got %d", count)
	}
	if count := testutil.CollectAndCount(pm.serviceDuration); count != 1 {
		t.Errorf("expected 1 endpoint histogram, got %d", count)
	}

	pm.IncrementHTTPRequests("GET", "/api/v1/session", "200")
	pm.RecordHTTPDuration("GET", "/api/v1/session", 3*time.Millisecond)
	pm.IncrementWebSocketMessages("snapshot")
	pm.IncrementWebSocketMessages("snapshot")

	if got := testutil.ToFloat64(pm.httpRequests.WithLabelValues("GET", "/api/v1/session", "200")); got != 1 {
		t.Errorf("expected 1 console request, got %v", got)
	}
	if got := testutil.ToFloat64(pm.wsMessages.WithLabelValues("snapshot")); got != 2 {
		t.Errorf("expected 2 websocket messages, got %v", got)
	}
}

func TestPrometheusMetrics_SystemMetrics(t *testing.T) {
	pm := NewPrometheusMetrics()
	if !pm.GetLastUpdate().IsZero() {
		t.Fatalf("expected zero last update before first refresh")
	}

	pm.UpdateSystemMetrics()
	if pm.GetLastUpdate().IsZero() {
		t.Errorf("expected last update to be set")
	}
	if got := testutil.ToFloat64(pm.goroutines); got < 1 {
		t.Errorf("expected at least one goroutine, got %v", got)
	}
}

func TestPrometheusMetrics_StartPeriodicUpdates(t *testing.T) {
	pm := NewPrometheusMetrics()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		pm.StartPeriodicUpdates(ctx, 5*time.Millisecond)
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("periodic updates did not stop after cancel")
	}
	if pm.GetLastUpdate().IsZero() {
		t.Errorf("expected system metrics to be refreshed")
	}
}

func TestNoopRecorder(t *testing.T) {
	var r Recorder = Noop{}
	r.IncrementScansTotal("network", "completed")
	r.RecordScanDuration("network", time.Second)
	r.IncrementScanErrors("network", "x")
	r.SetActiveScans(1)
	r.SetDevicesInResult(1)
	r.IncrementServiceRequests("/x", "200")
	r.RecordServiceDuration("/x", time.Second)
	r.IncrementHTTPRequests("GET", "/", "200")
	r.RecordHTTPDuration("GET", "/", time.Second)
	r.IncrementWebSocketMessages("snapshot")
}
