// Package countdown implements the per-second countdown that drives the
// gym timer: start, pause/resume, add time, reset and completion.
package countdown

import (
	"context"
	"errors"
	"sync"
	"time"

	"gym_timer/internal/clock"
)

// DefaultInterval is the length of one countdown step.
const DefaultInterval = time.Second

// Status is the lifecycle state of the countdown.
type Status string

const (
	StatusIdle      Status = "IDLE"
	StatusRunning   Status = "RUNNING"
	StatusPaused    Status = "PAUSED"
	StatusCompleted Status = "COMPLETED"
)

// EventType names what happened to the countdown.
type EventType string

const (
	EventUpdated   EventType = "UPDATED"
	EventPaused    EventType = "PAUSED"
	EventResumed   EventType = "RESUMED"
	EventCompleted EventType = "COMPLETED"
	EventReset     EventType = "RESET"
)

var (
	ErrNegativeDuration     = errors.New("countdown: duration must be >= 0 seconds")
	ErrNonPositiveIncrement = errors.New("countdown: added time must be > 0 seconds")
	ErrNotRunning           = errors.New("countdown: not running")
	ErrNotPaused            = errors.New("countdown: not paused")
)

// Event is emitted to the Sink on every state change.
type Event struct {
	Type      EventType
	Status    Status
	Remaining int
	At        time.Time
	// Started marks the first UPDATED of a fresh countdown.
	Started bool
}

// Sink receives events in order. It is called with the driver lock held
// and must not call back into the Driver.
type Sink func(Event)

// Snapshot is a point-in-time view of the countdown.
type Snapshot struct {
	Status    Status
	Remaining int
}

// Driver owns a single countdown and at most one background tick task.
type Driver struct {
	clock    clock.Clock
	interval time.Duration
	sink     Sink

	mu        sync.Mutex
	status    Status
	remaining int
	gen       uint64
	cancel    context.CancelFunc
}

// NewDriver builds an idle driver. A non-positive interval falls back to
// DefaultInterval; a nil sink discards events.
func NewDriver(clk clock.Clock, interval time.Duration, sink Sink) *Driver {
	if clk == nil {
		clk = clock.NewReal()
	}
	if interval <= 0 {
		interval = DefaultInterval
	}
	if sink == nil {
		sink = func(Event) {}
	}
	return &Driver{
		clock:    clk,
		interval: interval,
		sink:     sink,
		status:   StatusIdle,
	}
}

// Start begins a new countdown from seconds, replacing any active one.
func (d *Driver) Start(seconds int) error {
	if seconds < 0 {
		return ErrNegativeDuration
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.startLocked(seconds)
	return nil
}

// Pause stops ticking and keeps the remaining time.
func (d *Driver) Pause() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.status != StatusRunning {
		return ErrNotRunning
	}
	d.cancelLocked()
	d.status = StatusPaused
	d.emitLocked(EventPaused)
	return nil
}

// Resume continues a paused countdown. The next step happens one full
// interval after the call.
func (d *Driver) Resume() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.status != StatusPaused {
		return ErrNotPaused
	}
	d.status = StatusRunning
	d.emitLocked(EventResumed)
	d.launchLocked()
	return nil
}

// TogglePause pauses a running countdown or resumes a paused one and
// returns the resulting status.
func (d *Driver) TogglePause() (Status, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	switch d.status {
	case StatusRunning:
		d.cancelLocked()
		d.status = StatusPaused
		d.emitLocked(EventPaused)
	case StatusPaused:
		d.status = StatusRunning
		d.emitLocked(EventResumed)
		d.launchLocked()
	default:
		return d.status, ErrNotRunning
	}
	return d.status, nil
}

// AddSeconds extends an active (running or paused) countdown in place.
// On an idle or completed driver it starts a new countdown of n seconds
// and reports started=true.
func (d *Driver) AddSeconds(n int) (started bool, err error) {
	if n <= 0 {
		return false, ErrNonPositiveIncrement
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	switch d.status {
	case StatusRunning, StatusPaused:
		d.remaining += n
		d.emitLocked(EventUpdated)
		return false, nil
	default:
		d.startLocked(n)
		return true, nil
	}
}

// Reset cancels the countdown and zeroes it. It reports whether anything
// changed; resetting an idle driver is a no-op.
func (d *Driver) Reset() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.status == StatusIdle && d.remaining == 0 {
		return false
	}
	d.cancelLocked()
	d.remaining = 0
	d.status = StatusIdle
	d.emitLocked(EventReset)
	return true
}

// Restore loads a paused countdown, e.g. after a process restart.
func (d *Driver) Restore(remaining int) {
	if remaining <= 0 {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cancelLocked()
	d.remaining = remaining
	d.status = StatusPaused
	d.emitLocked(EventPaused)
}

// Snapshot returns the current status and remaining seconds.
func (d *Driver) Snapshot() Snapshot {
	d.mu.Lock()
	defer d.mu.Unlock()
	return Snapshot{Status: d.status, Remaining: d.remaining}
}

// Close stops the background task without emitting events.
func (d *Driver) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cancelLocked()
}

func (d *Driver) startLocked(seconds int) {
	d.cancelLocked()
	d.remaining = seconds
	d.status = StatusRunning
	if seconds == 0 {
		d.status = StatusCompleted
	}
	d.sink(d.eventLocked(EventUpdated, true))
	if seconds == 0 {
		d.emitLocked(EventCompleted)
		return
	}
	d.launchLocked()
}

// launchLocked starts a tick task tagged with a fresh generation. The
// ticker is created here, not in the goroutine, so the first tick is
// always measured from the call.
func (d *Driver) launchLocked() {
	d.cancelLocked()
	d.gen++
	ctx, cancel := context.WithCancel(context.Background())
	d.cancel = cancel
	go d.run(ctx, d.gen, d.clock.NewTicker(d.interval))
}

func (d *Driver) cancelLocked() {
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
}

func (d *Driver) run(ctx context.Context, gen uint64, ticker clock.Ticker) {
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C():
			if !d.step(gen) {
				return
			}
		}
	}
}

// step applies one decrement for task gen and reports whether the task
// should keep ticking. Ticks from a cancelled task are ignored.
func (d *Driver) step(gen uint64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if gen != d.gen || d.status != StatusRunning {
		return false
	}
	d.remaining--
	if d.remaining > 0 {
		d.emitLocked(EventUpdated)
		return true
	}
	d.remaining = 0
	d.status = StatusCompleted
	d.cancelLocked()
	d.emitLocked(EventUpdated)
	d.emitLocked(EventCompleted)
	return false
}

func (d *Driver) emitLocked(t EventType) {
	d.sink(d.eventLocked(t, false))
}

func (d *Driver) eventLocked(t EventType, started bool) Event {
	return Event{
		Type:      t,
		Status:    d.status,
		Remaining: d.remaining,
		At:        d.clock.Now(),
		Started:   started,
	}
}
