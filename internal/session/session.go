// Package session implements the scan session state machine. A session moves
// Idle -> Scanning -> Complete or Failed; while Scanning a synthetic ticker
// advances progress and elapsed duration until the scanning service answers.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/anstrom/netsight/internal/errors"
	"github.com/anstrom/netsight/internal/models"
	"github.com/anstrom/netsight/internal/request"
)

// Phase is the lifecycle state of a scan session.
type Phase string

const (
	PhaseIdle     Phase = "idle"
	PhaseScanning Phase = "scanning"
	PhaseComplete Phase = "complete"
	PhaseFailed   Phase = "failed"
)

// Progress estimator constants.
const (
	ProgressStep    = 2
	ProgressCeiling = 95
	ProgressDone    = 100
)

// ErrScanInProgress is returned when a scan is started while another is
// still running.
var ErrScanInProgress = errors.NewStateError(errors.CodeConflict, "scan already in progress")

// ErrStaleSession is returned when a response arrives for a session that is
// no longer the current one.
var ErrStaleSession = errors.NewStateError(errors.CodeConflict, "session is no longer scanning")

// Snapshot is an immutable copy of the session state.
type Snapshot struct {
	ID         string             `json:"id,omitempty"`
	Phase      Phase              `json:"phase"`
	Kind       string             `json:"kind,omitempty"`
	Target     string             `json:"target,omitempty"`
	Progress   int                `json:"progress"`
	Duration   int                `json:"duration"`
	StartedAt  time.Time          `json:"started_at,omitempty"`
	FinishedAt time.Time          `json:"finished_at,omitempty"`
	Result     *models.ScanResult `json:"result,omitempty"`
	Error      string             `json:"error,omitempty"`
	ErrorCode  errors.ErrorCode   `json:"error_code,omitempty"`
}

// Scanning reports whether the snapshot is in the Scanning phase.
func (s Snapshot) Scanning() bool {
	return s.Phase == PhaseScanning
}

// Listener receives a snapshot after every state change. Listeners run
// synchronously and must not call mutating Controller methods.
type Listener func(Snapshot)

// Controller owns the session state. All transitions go through its named
// methods; it is safe for concurrent use.
type Controller struct {
	notifyMu sync.Mutex
	mu       sync.RWMutex
	state    Snapshot
	err      error

	listeners map[int]Listener
	nextID    int
	now       func() time.Time
}

// NewController returns a controller in the Idle phase.
func NewController() *Controller {
	return &Controller{
		state:     Snapshot{Phase: PhaseIdle},
		listeners: make(map[int]Listener),
		now:       time.Now,
	}
}

// Snapshot returns the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Err returns the error that failed the current session, if any.
func (c *Controller) Err() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.err
}

// Subscribe registers a listener and returns a function removing it.
func (c *Controller) Subscribe(fn Listener) func() {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.listeners, id)
		c.mu.Unlock()
	}
}

// Start moves the session to Scanning for req, discarding any previous
// result or error, and returns the new session id.
func (c *Controller) Start(req request.Request) (string, error) {
	var id string
	err := c.transition(func(s *Snapshot) error {
		if s.Phase == PhaseScanning {
			return ErrScanInProgress
		}
		id = uuid.New().String()
		*s = Snapshot{
			ID:        id,
			Phase:     PhaseScanning,
			Kind:      req.Kind(),
			Target:    req.Target(),
			StartedAt: c.now(),
		}
		c.err = nil
		return nil
	})
	return id, err
}

// Tick advances the progress estimator by one second. It reports whether
// the tick was applied; ticks outside Scanning are ignored.
func (c *Controller) Tick() bool {
	applied := false
	_ = c.transition(func(s *Snapshot) error {
		if s.Phase != PhaseScanning {
			return errSkip
		}
		s.Duration++
		s.Progress = min(s.Progress+ProgressStep, ProgressCeiling)
		applied = true
		return nil
	})
	return applied
}

// Complete stores the normalized result of session id and forces progress
// to 100.
func (c *Controller) Complete(id string, result *models.ScanResult) error {
	return c.transition(func(s *Snapshot) error {
		if s.Phase != PhaseScanning || s.ID != id {
			return ErrStaleSession
		}
		s.Phase = PhaseComplete
		s.Progress = ProgressDone
		s.Result = result
		s.FinishedAt = c.now()
		return nil
	})
}

// Fail records the failure of session id. Progress resets to 0 and no
// result is retained.
func (c *Controller) Fail(id string, cause error) error {
	return c.transition(func(s *Snapshot) error {
		if s.Phase != PhaseScanning || s.ID != id {
			return ErrStaleSession
		}
		s.Phase = PhaseFailed
		s.Progress = 0
		s.Result = nil
		s.Error = errors.Message(cause)
		s.ErrorCode = errors.GetCode(cause)
		s.FinishedAt = c.now()
		c.err = cause
		return nil
	})
}

// Reset returns a finished session to Idle.
func (c *Controller) Reset() error {
	return c.transition(func(s *Snapshot) error {
		if s.Phase == PhaseScanning {
			return ErrScanInProgress
		}
		*s = Snapshot{Phase: PhaseIdle}
		c.err = nil
		return nil
	})
}

// errSkip aborts a transition without reporting an error.
var errSkip = errors.NewStateError(errors.CodeUnknown, "skip")

// transition applies fn under the state lock and notifies listeners with
// the resulting snapshot. Notifications are delivered in transition order.
func (c *Controller) transition(fn func(*Snapshot) error) error {
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()

	c.mu.Lock()
	next := c.state
	if err := fn(&next); err != nil {
		c.mu.Unlock()
		if err == errSkip {
			return nil
		}
		return err
	}
	c.state = next
	listeners := make([]Listener, 0, len(c.listeners))
	for _, l := range c.listeners {
		listeners = append(listeners, l)
	}
	c.mu.Unlock()

	for _, l := range listeners {
		l(next)
	}
	return nil
}
