// Package metrics provides Prometheus-based metrics collection for netsight.
// Scan sessions, scanning service calls and the console server all report
// through the Recorder interface backed by a private Prometheus registry.
package metrics

import (
	"context"
	"net/http"
	"runtime"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	// Namespace for all netsight metrics
	namespace = "netsight"

	// Subsystems
	subsystemSession = "session"
	subsystemService = "service"
	subsystemConsole = "console"
	subsystemSystem  = "system"
)

// PrometheusMetrics holds all Prometheus metric collectors
type PrometheusMetrics struct {
	// Session metrics
	scansTotal      *prometheus.CounterVec
	scanDuration    *prometheus.HistogramVec
	scanErrors      *prometheus.CounterVec
	activeScans     prometheus.Gauge
	devicesInResult prometheus.Gauge

	// Scanning service metrics
	serviceRequests *prometheus.CounterVec
	serviceDuration *prometheus.HistogramVec

	// Console metrics
	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
	wsMessages   *prometheus.CounterVec

	// System metrics
	goroutines prometheus.Gauge
	uptime     prometheus.Gauge

	startTime  time.Time
	lastUpdate time.Time
	mu         sync.RWMutex
	registry   *prometheus.Registry
}

// NewPrometheusMetrics creates a new Prometheus metrics instance with all collectors
func NewPrometheusMetrics() *PrometheusMetrics {
	registry := prometheus.NewRegistry()

	pm := &PrometheusMetrics{
		startTime: time.Now(),
		registry:  registry,
	}

	pm.initSessionMetrics()
	pm.initServiceMetrics()
	pm.initConsoleMetrics()
	pm.initSystemMetrics()
	pm.registerMetrics()

	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	return pm
}

func (pm *PrometheusMetrics) initSessionMetrics() {
	pm.scansTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystemSession,
			Name:      "scans_total",
			Help:      "Total number of scan sessions by request kind and outcome",
		},
		[]string{"kind", "status"},
	)

	pm.scanDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystemSession,
			Name:      "duration_seconds",
			Help:      "Wall time of scan sessions in seconds",
			Buckets:   []float64{0.5, 1.0, 5.0, 10.0, 30.0, 60.0, 120.0, 300.0, 600.0},
		},
		[]string{"kind"},
	)

	pm.scanErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystemSession,
			Name:      "errors_total",
			Help:      "Total number of failed scan sessions by error code",
		},
		[]string{"kind", "code"},
	)

	pm.activeScans = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystemSession,
			Name:      "active",
			Help:      "Number of sessions currently scanning",
		},
	)

	pm.devicesInResult = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystemSession,
			Name:      "result_devices",
			Help:      "Number of devices in the current scan result",
		},
	)
}

func (pm *PrometheusMetrics) initServiceMetrics() {
	pm.serviceRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystemService,
			Name:      "requests_total",
			Help:      "Total number of scanning service requests by endpoint and status",
		},
		[]string{"endpoint", "status"},
	)

	pm.serviceDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystemService,
			Name:      "request_duration_seconds",
			Help:      "Scanning service request latency in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 14),
		},
		[]string{"endpoint"},
	)
}

func (pm *PrometheusMetrics) initConsoleMetrics() {
	pm.httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystemConsole,
			Name:      "http_requests_total",
			Help:      "Total number of console HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	pm.httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystemConsole,
			Name:      "http_request_duration_seconds",
			Help:      "Console HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	pm.wsMessages = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystemConsole,
			Name:      "websocket_messages_total",
			Help:      "Total number of messages pushed to WebSocket clients",
		},
		[]string{"type"},
	)
}

func (pm *PrometheusMetrics) initSystemMetrics() {
	pm.goroutines = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystemSystem,
			Name:      "goroutines",
			Help:      "Number of goroutines",
		},
	)

	pm.uptime = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystemSystem,
			Name:      "uptime_seconds",
			Help:      "Process uptime in seconds",
		},
	)
}

func (pm *PrometheusMetrics) registerMetrics() {
	pm.registry.MustRegister(
		pm.scansTotal,
		pm.scanDuration,
		pm.scanErrors,
		pm.activeScans,
		pm.devicesInResult,
		pm.serviceRequests,
		pm.serviceDuration,
		pm.httpRequests,
		pm.httpDuration,
		pm.wsMessages,
		pm.goroutines,
		pm.uptime,
	)
}

// GetRegistry returns the Prometheus registry for HTTP handler
func (pm *PrometheusMetrics) GetRegistry() *prometheus.Registry {
	return pm.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (pm *PrometheusMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(pm.registry, promhttp.HandlerOpts{})
}

// IncrementScansTotal increments the total scan counter
func (pm *PrometheusMetrics) IncrementScansTotal(kind, status string) {
	pm.scansTotal.WithLabelValues(kind, status).Inc()
}

// RecordScanDuration records a scan duration
func (pm *PrometheusMetrics) RecordScanDuration(kind string, duration time.Duration) {
	pm.scanDuration.WithLabelValues(kind).Observe(duration.Seconds())
}

// IncrementScanErrors increments scan error counter
func (pm *PrometheusMetrics) IncrementScanErrors(kind, code string) {
	pm.scanErrors.WithLabelValues(kind, code).Inc()
}

// SetActiveScans sets the number of active scans
func (pm *PrometheusMetrics) SetActiveScans(count int) {
	pm.activeScans.Set(float64(count))
}

// SetDevicesInResult sets the device count of the current result
func (pm *PrometheusMetrics) SetDevicesInResult(count int) {
	pm.devicesInResult.Set(float64(count))
}

// IncrementServiceRequests increments the scanning service request counter
func (pm *PrometheusMetrics) IncrementServiceRequests(endpoint, status string) {
	pm.serviceRequests.WithLabelValues(endpoint, status).Inc()
}

// RecordServiceDuration records scanning service latency
func (pm *PrometheusMetrics) RecordServiceDuration(endpoint string, duration time.Duration) {
	pm.serviceDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

// IncrementHTTPRequests increments HTTP request counter
func (pm *PrometheusMetrics) IncrementHTTPRequests(method, path, status string) {
	pm.httpRequests.WithLabelValues(method, path, status).Inc()
}

// RecordHTTPDuration records HTTP request duration
func (pm *PrometheusMetrics) RecordHTTPDuration(method, path string, duration time.Duration) {
	pm.httpDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// IncrementWebSocketMessages increments the WebSocket message counter
func (pm *PrometheusMetrics) IncrementWebSocketMessages(messageType string) {
	pm.wsMessages.WithLabelValues(messageType).Inc()
}

// UpdateSystemMetrics updates all system metrics with current values
func (pm *PrometheusMetrics) UpdateSystemMetrics() {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	pm.goroutines.Set(float64(runtime.NumGoroutine()))
	pm.uptime.Set(time.Since(pm.startTime).Seconds())
	pm.lastUpdate = time.Now()
}

// GetUptime returns the application uptime
func (pm *PrometheusMetrics) GetUptime() time.Duration {
	return time.Since(pm.startTime)
}

// GetLastUpdate returns the last metrics update time
func (pm *PrometheusMetrics) GetLastUpdate() time.Time {
	pm.mu.RLock()
	defer pm.mu.RUnlock()
	return pm.lastUpdate
}

// StartPeriodicUpdates periodically updates system metrics until ctx is done
func (pm *PrometheusMetrics) StartPeriodicUpdates(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	pm.UpdateSystemMetrics()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			pm.UpdateSystemMetrics()
		}
	}
}
