// Package alarm implements the alarm session started when a countdown
// completes: vibration, a dismiss notification and a looping sound that
// stops on dismissal or after a fixed timeout.
package alarm

import (
	"context"
	"sync"
	"time"

	"gym_timer/internal/clock"
	"gym_timer/internal/logger"

	"github.com/google/uuid"
)

// Defaults used when Config fields are zero.
const (
	DefaultTimeout            = 10 * time.Second
	DefaultVibrationDuration  = 2000 * time.Millisecond
	DefaultVibrationAmplitude = 255
	NotificationID            = "gymtimer_alarm"
	DismissCommand            = "dismiss"
)

// Reason says why an alarm stopped.
type Reason string

const (
	ReasonDismissed Reason = "DISMISSED"
	ReasonTimeout   Reason = "TIMEOUT"
	ReasonReset     Reason = "RESET"
	ReasonReplaced  Reason = "REPLACED"
	ReasonShutdown  Reason = "SHUTDOWN"
)

// Config tunes an alarm session.
type Config struct {
	Timeout   time.Duration
	Vibration Vibration
}

func (c Config) withDefaults() Config {
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.Vibration.Duration <= 0 {
		c.Vibration.Duration = DefaultVibrationDuration
	}
	if c.Vibration.Amplitude <= 0 {
		c.Vibration.Amplitude = DefaultVibrationAmplitude
	}
	return c
}

// Deps are the platform collaborators. Any of them may be nil.
type Deps struct {
	Vibrator Vibrator
	Notifier Notifier
	Player   Player
	Router   Router
	Clock    clock.Clock
	Log      *logger.Logger
}

// Info is a read-only view of an alarm session.
type Info struct {
	ID        string    `json:"id"`
	Ringing   bool      `json:"ringing"`
	StartedAt time.Time `json:"started_at"`
	Output    Output    `json:"output"`
}

// Alarm is a single-use alarm session. It is owned by whoever created it;
// there is no process-wide instance.
//
// a.mu only guards the fields below it. Collaborators are always called
// without it, so a slow audio backend never blocks Stop, Ringing or Info.
type Alarm struct {
	id     string
	cfg    Config
	deps   Deps
	onStop func(*Alarm, Reason)

	mu        sync.Mutex
	started   bool
	ringing   bool
	cancelled bool
	armed     bool // sound and routing are in place; Stop must undo them
	startedAt time.Time
	output    Output
	saved     *Route
	autoStop  clock.Timer
}

// New creates an alarm session. onStop runs once, outside the alarm's
// lock, after the alarm stops for any reason.
func New(deps Deps, cfg Config, onStop func(*Alarm, Reason)) *Alarm {
	if deps.Clock == nil {
		deps.Clock = clock.NewReal()
	}
	return &Alarm{
		id:     uuid.NewString(),
		cfg:    cfg.withDefaults(),
		deps:   deps,
		onStop: onStop,
	}
}

// ID returns the session id.
func (a *Alarm) ID() string { return a.id }

// Start rings the alarm and schedules the auto-stop. Collaborator
// failures are logged and do not interrupt the sequence. It reports
// whether the alarm is ringing when it returns: starting twice, starting
// a cancelled alarm, or a Stop that lands while the sound is being set up
// all yield false.
func (a *Alarm) Start(ctx context.Context) bool {
	a.mu.Lock()
	if a.started || a.cancelled {
		a.mu.Unlock()
		return false
	}
	a.started = true
	a.ringing = true
	a.startedAt = a.deps.Clock.Now().UTC()
	a.mu.Unlock()

	a.vibrate(ctx)
	a.showNotification(ctx)
	out, saved := a.route(ctx)
	a.play(ctx, out)

	a.mu.Lock()
	a.output = out
	if !a.ringing {
		a.mu.Unlock()
		a.teardown(ctx, saved)
		return false
	}
	a.saved = saved
	a.armed = true
	a.autoStop = a.deps.Clock.AfterFunc(a.cfg.Timeout, func() {
		if a.Stop(context.Background(), ReasonTimeout) {
			a.infow("alarm_auto_stopped", "timeout", a.cfg.Timeout)
		}
	})
	a.mu.Unlock()

	a.infow("alarm_started", "output", out.Name, "timeout", a.cfg.Timeout)
	return true
}

// Stop silences the alarm. It reports false if the alarm was not ringing,
// so repeated dismissals are no-ops. Stopping an alarm that was never
// started cancels it: a later Start does nothing and onStop is not called.
func (a *Alarm) Stop(ctx context.Context, reason Reason) bool {
	a.mu.Lock()
	if !a.started {
		a.cancelled = true
		a.mu.Unlock()
		return false
	}
	if !a.ringing {
		a.mu.Unlock()
		return false
	}
	a.ringing = false
	armed, saved, timer := a.armed, a.saved, a.autoStop
	a.armed, a.saved = false, nil
	a.mu.Unlock()

	if timer != nil {
		timer.Stop()
	}
	// an unarmed alarm is still inside Start, which tears itself down
	if armed {
		a.teardown(ctx, saved)
	}

	a.infow("alarm_stopped", "reason", reason)
	if a.onStop != nil {
		a.onStop(a, reason)
	}
	return true
}

// Ringing reports whether the alarm is currently ringing.
func (a *Alarm) Ringing() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.ringing
}

// Info returns a snapshot of the session.
func (a *Alarm) Info() Info {
	a.mu.Lock()
	defer a.mu.Unlock()
	return Info{ID: a.id, Ringing: a.ringing, StartedAt: a.startedAt, Output: a.output}
}

func (a *Alarm) vibrate(ctx context.Context) {
	if a.deps.Vibrator == nil {
		return
	}
	if err := a.deps.Vibrator.Vibrate(ctx, a.cfg.Vibration); err != nil {
		a.errorw("alarm_vibrate_failed", err)
	}
}

func (a *Alarm) showNotification(ctx context.Context) {
	if a.deps.Notifier == nil {
		return
	}
	n := Notification{
		ID:      NotificationID,
		Title:   "⏰ Gym Timer",
		Text:    "Alarm ringing – tap to stop",
		Actions: []Action{{Label: "Stop", Command: DismissCommand}},
	}
	if err := a.deps.Notifier.Show(ctx, n); err != nil {
		a.errorw("alarm_notification_failed", err)
	}
}

// route switches to a non-speaker output when one is present and returns
// the previous routing so it can be put back.
func (a *Alarm) route(ctx context.Context) (Output, *Route) {
	r := a.deps.Router
	if r == nil {
		return SelectOutput(nil), nil
	}
	outs, err := r.Outputs(ctx)
	if err != nil {
		a.errorw("alarm_list_outputs_failed", err)
	}
	out := SelectOutput(outs)

	var saved *Route
	if prev, err := r.Current(ctx); err != nil {
		a.errorw("alarm_save_route_failed", err)
	} else {
		saved = &prev
	}
	if out.ID != "" {
		if err := r.Apply(ctx, out); err != nil {
			a.errorw("alarm_apply_route_failed", err, "output", out.ID)
		}
	}
	return out, saved
}

func (a *Alarm) play(ctx context.Context, out Output) {
	if a.deps.Player == nil {
		return
	}
	if err := a.deps.Player.Play(ctx, out); err != nil {
		a.errorw("alarm_sound_failed", err)
	}
}

// teardown stops the sound, restores saved routing and removes the
// notification.
func (a *Alarm) teardown(ctx context.Context, saved *Route) {
	if a.deps.Player != nil {
		if err := a.deps.Player.Stop(); err != nil {
			a.errorw("alarm_sound_stop_failed", err)
		}
	}
	if a.deps.Router != nil && saved != nil {
		if err := a.deps.Router.Restore(ctx, *saved); err != nil {
			a.errorw("alarm_restore_route_failed", err)
		}
	}
	if a.deps.Notifier != nil {
		if err := a.deps.Notifier.Cancel(ctx, NotificationID); err != nil {
			a.errorw("alarm_notification_cancel_failed", err)
		}
	}
}

func (a *Alarm) infow(msg string, kv ...interface{}) {
	if a.deps.Log != nil {
		a.deps.Log.Infow(msg, append([]interface{}{"alarm_id", a.id}, kv...)...)
	}
}

func (a *Alarm) errorw(msg string, err error, kv ...interface{}) {
	if a.deps.Log != nil {
		a.deps.Log.Errorw(msg, append([]interface{}{"alarm_id", a.id, "err", err}, kv...)...)
	}
}
