// Package metrics provides interfaces for metrics collection and monitoring.
package metrics

import "time"

// Recorder defines the metrics recorded by scan sessions, the scanning
// service client and the console server. A nil Recorder is never passed
// around; use Noop instead.
type Recorder interface {
	// IncrementScansTotal counts finished scan sessions by kind and status.
	IncrementScansTotal(kind, status string)

	// RecordScanDuration records the wall time of a scan session.
	RecordScanDuration(kind string, duration time.Duration)

	// IncrementScanErrors counts failed sessions by error code.
	IncrementScanErrors(kind, code string)

	// SetActiveScans sets the number of sessions currently scanning.
	SetActiveScans(count int)

	// SetDevicesInResult sets the device count of the current result.
	SetDevicesInResult(count int)

	// IncrementServiceRequests counts scanning service exchanges.
	IncrementServiceRequests(endpoint, status string)

	// RecordServiceDuration records scanning service latency.
	RecordServiceDuration(endpoint string, duration time.Duration)

	// IncrementHTTPRequests counts console server requests.
	IncrementHTTPRequests(method, path, status string)

	// RecordHTTPDuration records console server latency.
	RecordHTTPDuration(method, path string, duration time.Duration)

	// IncrementWebSocketMessages counts messages pushed to console clients.
	IncrementWebSocketMessages(messageType string)
}

// Ensure that PrometheusMetrics implements Recorder interface.
var _ Recorder = (*PrometheusMetrics)(nil)

// Ensure that Noop implements Recorder interface.
var _ Recorder = Noop{}

// Noop discards every observation.
type Noop struct{}

func (Noop) IncrementScansTotal(string, string) {}
func (Noop) RecordScanDuration(string, time.Duration) {}
func (Noop) IncrementScanErrors(string, string) {}
func (Noop) SetActiveScans(int) {}
func (Noop) SetDevicesInResult(int) {}
func (Noop) IncrementServiceRequests(string, string) {}
func (Noop) RecordServiceDuration(string, time.Duration) {}
func (Noop) IncrementHTTPRequests(string, string, string) {}
func (Noop) RecordHTTPDuration(string, string, time.Duration) {}
func (Noop) IncrementWebSocketMessages(string) {}
