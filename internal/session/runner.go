package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/anstrom/netsight/internal/client"
	"github.com/anstrom/netsight/internal/errors"
	"github.com/anstrom/netsight/internal/logging"
	"github.com/anstrom/netsight/internal/metrics"
	"github.com/anstrom/netsight/internal/models"
	"github.com/anstrom/netsight/internal/request"
)

// DefaultTickInterval is the cadence of the progress estimator.
const DefaultTickInterval = time.Second

// Ticker is the subset of *time.Ticker used by the runner.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// TickerFactory creates a Ticker firing every d.
type TickerFactory func(d time.Duration) Ticker

type timeTicker struct{ t *time.Ticker }

func (t timeTicker) C() <-chan time.Time { return t.t.C }
func (t timeTicker) Stop()               { t.t.Stop() }

// NewTimeTicker is the TickerFactory backed by time.NewTicker.
func NewTimeTicker(d time.Duration) Ticker {
	return timeTicker{t: time.NewTicker(d)}
}

// Runner executes scans against the scanning service and drives a
// Controller through the session lifecycle.
type Runner struct {
	controller *Controller
	service    client.Service
	logger     *logging.Logger
	metrics    metrics.Recorder
	newTicker  TickerFactory
	interval   time.Duration
}

// RunnerOption customizes a Runner.
type RunnerOption func(*Runner)

// WithLogger sets the runner logger.
func WithLogger(logger *logging.Logger) RunnerOption {
	return func(r *Runner) { r.logger = logger }
}

// WithMetrics sets the metrics recorder.
func WithMetrics(recorder metrics.Recorder) RunnerOption {
	return func(r *Runner) { r.metrics = recorder }
}

// WithTicker replaces the progress ticker source and interval.
func WithTicker(factory TickerFactory, interval time.Duration) RunnerOption {
	return func(r *Runner) {
		r.newTicker = factory
		r.interval = interval
	}
}

// NewRunner creates a runner for controller backed by service.
func NewRunner(controller *Controller, service client.Service, opts ...RunnerOption) *Runner {
	r := &Runner{
		controller: controller,
		service:    service,
		logger:     logging.Default().WithComponent("session"),
		metrics:    metrics.Noop{},
		newTicker:  NewTimeTicker,
		interval:   DefaultTickInterval,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Controller returns the controller driven by the runner.
func (r *Runner) Controller() *Controller {
	return r.controller
}

// Run executes req and blocks until the session reaches Complete or Failed.
// Validation errors are returned without touching the session.
func (r *Runner) Run(ctx context.Context, req request.Request) (Snapshot, error) {
	_, done, err := r.Start(ctx, req)
	if err != nil {
		return r.controller.Snapshot(), err
	}
	final := <-done
	if final.Phase == PhaseFailed {
		return final, r.controller.Err()
	}
	return final, nil
}

// Start validates req, moves the session to Scanning and runs the exchange
// in the background. The returned channel yields the terminal snapshot.
func (r *Runner) Start(ctx context.Context, req request.Request) (string, <-chan Snapshot, error) {
	if err := request.Validate(req); err != nil {
		return "", nil, err
	}

	id, err := r.controller.Start(req)
	if err != nil {
		return "", nil, err
	}

	r.metrics.SetActiveScans(1)
	r.logger.InfoSession("Scan started", id, "kind", req.Kind(), "target", req.Target())

	done := make(chan Snapshot, 1)
	go func() {
		done <- r.execute(ctx, id, req)
		close(done)
	}()
	return id, done, nil
}

func (r *Runner) execute(ctx context.Context, id string, req request.Request) Snapshot {
	start := time.Now()

	stopTicker := r.startTicker(ctx)
	payload, err := r.fetch(ctx, req, start)
	// The ticker is fully stopped before the terminal transition.
	stopTicker()

	var result *models.ScanResult
	if err == nil {
		result, err = payload.Normalize()
	}

	elapsed := time.Since(start)
	r.metrics.SetActiveScans(0)
	r.metrics.RecordScanDuration(req.Kind(), elapsed)

	if err != nil {
		if failErr := r.controller.Fail(id, err); failErr != nil {
			r.logger.ErrorSession("Failed to record scan failure", id, failErr)
		}
		r.metrics.IncrementScansTotal(req.Kind(), string(PhaseFailed))
		r.metrics.IncrementScanErrors(req.Kind(), string(errors.GetCode(err)))
		r.logger.ErrorSession("Scan failed", id, err, "duration", elapsed)
		return r.controller.Snapshot()
	}

	if completeErr := r.controller.Complete(id, result); completeErr != nil {
		r.logger.ErrorSession("Failed to record scan result", id, completeErr)
		return r.controller.Snapshot()
	}
	r.metrics.IncrementScansTotal(req.Kind(), string(PhaseComplete))
	r.metrics.SetDevicesInResult(result.Topology.TotalCount)
	r.logger.InfoSession("Scan completed", id,
		"devices", result.Topology.TotalCount,
		"reachable", result.Topology.ReachableCount,
		"duration", elapsed)
	return r.controller.Snapshot()
}

// fetch dispatches req to the matching service call.
func (r *Runner) fetch(ctx context.Context, req request.Request, start time.Time) (Payload, error) {
	switch req := req.(type) {
	case request.NetworkScanRequest:
		result, err := r.service.ScanNetwork(ctx, req)
		if err != nil {
			return Payload{}, err
		}
		return NetworkPayload(result), nil
	case request.SingleDeviceRequest:
		device, err := r.service.ScanDevice(ctx, req)
		if err != nil {
			return Payload{}, err
		}
		return DevicePayload(device, req, time.Since(start)), nil
	default:
		return Payload{}, errors.NewValidationError(errors.MsgInvalidValue, "request", fmt.Sprintf("%T", req))
	}
}

// startTicker runs the progress estimator until the returned stop function
// is called or ctx is done. stop blocks until the ticker goroutine exits.
func (r *Runner) startTicker(ctx context.Context) (stop func()) {
	tickCtx, cancel := context.WithCancel(ctx)
	ticker := r.newTicker(r.interval)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer ticker.Stop()
		for {
			select {
			case <-tickCtx.Done():
				return
			case <-ticker.C():
				r.controller.Tick()
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			cancel()
			wg.Wait()
		})
	}
}
