// Package scheduler runs cron-scheduled rescans against the shared scan
// session. A rescan only starts when the session is not already Scanning;
// otherwise the tick is recorded as skipped.
package scheduler

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/anstrom/netsight/internal/errors"
	"github.com/anstrom/netsight/internal/logging"
	"github.com/anstrom/netsight/internal/request"
	"github.com/anstrom/netsight/internal/session"
)

// Outcome describes what the last tick of a job did.
type Outcome string

const (
	OutcomeNone      Outcome = ""
	OutcomeStarted   Outcome = "started"
	OutcomeCompleted Outcome = "completed"
	OutcomeFailed    Outcome = "failed"
	OutcomeSkipped   Outcome = "skipped"
)

// Scheduler manages scheduled rescan jobs.
type Scheduler struct {
	runner *session.Runner
	cron   *cron.Cron
	logger *logging.Logger
	jobs   map[uuid.UUID]*RescanJob
	mu     sync.RWMutex

	running bool
	ctx     context.Context
	cancel  context.CancelFunc
}

// RescanJob is a scheduled network rescan.
type RescanJob struct {
	ID          uuid.UUID           `json:"id"`
	Name        string              `json:"name"`
	Expression  string              `json:"expression"`
	Form        request.NetworkForm `json:"form"`
	LastRun     time.Time           `json:"last_run,omitempty"`
	NextRun     time.Time           `json:"next_run,omitempty"`
	LastOutcome Outcome             `json:"last_outcome,omitempty"`
	LastError   string              `json:"last_error,omitempty"`
	Runs        int                 `json:"runs"`
	Skipped     int                 `json:"skipped"`

	cronID cron.EntryID
}

// Option customizes a Scheduler.
type Option func(*Scheduler)

// WithLogger sets the scheduler logger.
func WithLogger(logger *logging.Logger) Option {
	return func(s *Scheduler) { s.logger = logger }
}

// New creates a scheduler driving runner.
func New(runner *session.Runner, opts ...Option) *Scheduler {
	s := &Scheduler{
		runner: runner,
		logger: logging.Default().WithComponent("scheduler"),
		jobs:   make(map[uuid.UUID]*RescanJob),
		ctx:    context.Background(),
	}
	for _, opt := range opts {
		opt(s)
	}
	cl := cronLogger{logger: s.logger}
	s.cron = cron.New(cron.WithLogger(cl), cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)))
	return s
}

// ValidateExpression checks a standard five-field cron expression or a
// descriptor such as @hourly or @every 10m.
func ValidateExpression(expr string) error {
	if _, err := cron.ParseStandard(expr); err != nil {
		return errors.NewValidationError(fmt.Sprintf("invalid cron expression: %v", err), "schedule", expr)
	}
	return nil
}

// AddRescanJob validates form and schedules it under expr. The form is
// rebuilt on every tick so the request always passes the builder rules.
func (s *Scheduler) AddRescanJob(name, expr string, form request.NetworkForm) (uuid.UUID, error) {
	schedule, err := cron.ParseStandard(expr)
	if err != nil {
		return uuid.Nil, ValidateExpression(expr)
	}
	if _, err := request.BuildNetworkScan(form); err != nil {
		return uuid.Nil, err
	}

	job := &RescanJob{
		ID:         uuid.New(),
		Name:       name,
		Expression: expr,
		Form:       form,
		NextRun:    schedule.Next(time.Now()),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cronID, err := s.cron.AddFunc(expr, func() { s.runJob(job.ID) })
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to add cron job: %w", err)
	}
	job.cronID = cronID
	s.jobs[job.ID] = job

	s.logger.Info("Added rescan job", "job", name, "schedule", expr, "network_range", form.NetworkRange)
	return job.ID, nil
}

// RemoveJob unschedules a job.
func (s *Scheduler) RemoveJob(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[id]
	if !ok {
		return errors.NewValidationError("job not found", "id", id.String())
	}
	s.cron.Remove(job.cronID)
	delete(s.jobs, id)

	s.logger.Info("Removed rescan job", "job", job.Name)
	return nil
}

// GetJobs returns copies of the scheduled jobs ordered by name.
func (s *Scheduler) GetJobs() []RescanJob {
	s.mu.RLock()
	defer s.mu.RUnlock()

	jobs := make([]RescanJob, 0, len(s.jobs))
	for _, job := range s.jobs {
		j := *job
		if entry := s.cron.Entry(job.cronID); entry.Valid() && !entry.Next.IsZero() {
			j.NextRun = entry.Next
		}
		jobs = append(jobs, j)
	}
	sort.Slice(jobs, func(i, k int) bool { return jobs[i].Name < jobs[k].Name })
	return jobs
}

// Start begins firing jobs. Scans started by the scheduler run on ctx.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return errors.NewStateError(errors.CodeConflict, "scheduler is already running")
	}
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.cron.Start()
	s.running = true

	s.logger.Info("Scheduler started", "jobs", len(s.jobs))
	return nil
}

// Stop halts the scheduler and waits for running jobs to return.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.cancel()
	s.mu.Unlock()

	<-s.cron.Stop().Done()
	s.logger.Info("Scheduler stopped")
}

// runJob performs one tick of a job and blocks until the scan it started
// reaches a terminal phase.
func (s *Scheduler) runJob(id uuid.UUID) {
	s.mu.RLock()
	job, ok := s.jobs[id]
	var form request.NetworkForm
	var ctx context.Context
	if ok {
		form, ctx = job.Form, s.ctx
	}
	s.mu.RUnlock()
	if !ok {
		return
	}

	logger := s.logger.WithFields("job", job.Name)

	if s.runner.Controller().Snapshot().Scanning() {
		s.record(id, OutcomeSkipped, "")
		logger.Info("Rescan skipped, a scan is already running")
		return
	}

	req, err := request.BuildNetworkScan(form)
	if err != nil {
		s.record(id, OutcomeFailed, errors.Message(err))
		logger.WithError(err).Error("Rescan request rejected")
		return
	}

	sessionID, done, err := s.runner.Start(ctx, req)
	if err != nil {
		if errors.IsCode(err, errors.CodeConflict) {
			s.record(id, OutcomeSkipped, "")
			logger.Info("Rescan skipped, a scan is already running")
			return
		}
		s.record(id, OutcomeFailed, errors.Message(err))
		logger.WithError(err).Error("Rescan failed to start")
		return
	}
	s.record(id, OutcomeStarted, "")
	logger = logger.WithSessionID(sessionID)
	logger.Info("Rescan started")

	final := <-done
	if final.Phase == session.PhaseFailed {
		s.record(id, OutcomeFailed, final.Error)
		logger.Warn("Rescan failed", "error", final.Error)
		return
	}
	s.record(id, OutcomeCompleted, "")
	logger.Info("Rescan completed", "duration", final.Duration)
}

func (s *Scheduler) record(id uuid.UUID, outcome Outcome, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[id]
	if !ok {
		return
	}
	job.LastOutcome = outcome
	job.LastError = message
	switch outcome {
	case OutcomeSkipped:
		job.Skipped++
	case OutcomeStarted:
		job.Runs++
		job.LastRun = time.Now()
	}
}

// cronLogger adapts the structured logger to cron.Logger.
type cronLogger struct {
	logger *logging.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error("cron: "+msg, append([]interface{}{"error", err}, keysAndValues...)...)
}
