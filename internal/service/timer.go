package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"gym_timer/internal/alarm"
	"gym_timer/internal/clock"
	"gym_timer/internal/countdown"
	"gym_timer/internal/events"
	"gym_timer/internal/logger"
	"gym_timer/internal/models"
	"gym_timer/internal/notify"
	"gym_timer/internal/repository"
)

const (
	stateRowID = 1

	minSet = 1
	maxSet = 5

	countdownNotificationID = "gymtimer_countdown"
	countdownTitle          = "⏳ Countdown Running"

	defaultRecorderQueue = 256
	alarmOpsQueue        = 16
)

var ErrInvalidSet = fmt.Errorf("set must be between %d and %d", minSet, maxSet)

// IsValidation reports whether err was caused by bad command input.
func IsValidation(err error) bool {
	return errors.Is(err, countdown.ErrNegativeDuration) ||
		errors.Is(err, countdown.ErrNonPositiveIncrement) ||
		errors.Is(err, countdown.ErrNotRunning) ||
		errors.Is(err, countdown.ErrNotPaused) ||
		errors.Is(err, ErrInvalidSet) ||
		errors.Is(err, ErrInvalidTimeRange) ||
		errors.Is(err, ErrUnknownEventType)
}

// Deps carries the collaborators of the timer session. Zero fields get
// defaults: a real clock, a fresh hub, and hub-backed vibrator and
// notifier.
type Deps struct {
	Clock         clock.Clock
	Hub           *events.Hub
	Tick          time.Duration
	Alarm         alarm.Config
	Vibrator      alarm.Vibrator
	Notifier      alarm.Notifier
	Player        alarm.Player
	Router        alarm.Router
	Auth          AuthConfig
	Presets       Presets
	RecorderQueue int
	Log           *logger.Logger
}

func (d Deps) withDefaults() Deps {
	if d.Clock == nil {
		d.Clock = clock.NewReal()
	}
	if d.Hub == nil {
		d.Hub = events.NewHub()
	}
	if d.Vibrator == nil {
		d.Vibrator = notify.NewHubVibrator(d.Hub)
	}
	if d.Notifier == nil {
		d.Notifier = notify.NewHubNotifier(d.Hub)
	}
	if len(d.Presets.Durations) == 0 {
		d.Presets.Durations = DefaultPresets().Durations
	}
	if d.Presets.AddStep <= 0 {
		d.Presets.AddStep = DefaultPresets().AddStep
	}
	if d.RecorderQueue <= 0 {
		d.RecorderQueue = defaultRecorderQueue
	}
	if d.Log == nil {
		d.Log = logger.Nop()
	}
	return d
}

// journal receives everything that should be persisted.
type journal interface {
	RecordState(models.TimerState)
	RecordEvent(models.TimerEvent)
}

// TimerSession owns the countdown, the current alarm session and the set
// counter, and mirrors them as a TimerState for clients.
//
// Lock order: the countdown driver lock is taken before s.mu (driver
// events arrive under it). s.mu is never held while calling into the
// driver or an alarm.
//
// Alarm sessions are started and replaced by a single worker, in the
// order the driver produced them, so a slow audio backend never runs
// under the driver lock.
type TimerSession struct {
	driver    *countdown.Driver
	clock     clock.Clock
	hub       *events.Hub
	notifier  alarm.Notifier
	alarmDeps alarm.Deps
	alarmCfg  alarm.Config
	stateRepo repository.StateRepo
	journal   journal
	log       *logger.Logger

	mu        sync.Mutex
	status    countdown.Status
	remaining int
	set       *int
	alarm     *alarm.Alarm
	ringing   bool
	updatedAt time.Time

	ops       chan func()
	opsDone   chan struct{}
	opsMu     sync.Mutex
	opsClosed bool
}

func NewTimerSession(deps Deps, stateRepo repository.StateRepo, j journal) *TimerSession {
	deps = deps.withDefaults()
	s := &TimerSession{
		clock:     deps.Clock,
		hub:       deps.Hub,
		notifier:  deps.Notifier,
		alarmCfg:  deps.Alarm,
		stateRepo: stateRepo,
		journal:   j,
		log:       deps.Log.Named("timer"),
		status:    countdown.StatusIdle,
		updatedAt: deps.Clock.Now().UTC(),
		ops:       make(chan func(), alarmOpsQueue),
		opsDone:   make(chan struct{}),
	}
	s.alarmDeps = alarm.Deps{
		Vibrator: deps.Vibrator,
		Notifier: deps.Notifier,
		Player:   deps.Player,
		Router:   deps.Router,
		Clock:    deps.Clock,
		Log:      deps.Log.Named("alarm"),
	}
	s.driver = countdown.NewDriver(deps.Clock, deps.Tick, s.onCountdown)
	go s.runAlarmOps()
	return s
}

// Start begins a countdown of seconds. A ringing alarm is silenced
// (REPLACED) before Start returns.
func (s *TimerSession) Start(ctx context.Context, seconds int) error {
	if seconds < 0 {
		return countdown.ErrNegativeDuration
	}
	s.record(models.EventStart, fmt.Sprintf("Countdown started (%s)", models.FormatClock(seconds)),
		map[string]any{"seconds": seconds})
	if err := s.driver.Start(seconds); err != nil {
		return err
	}
	s.syncAlarms()
	return nil
}

func (s *TimerSession) Pause(ctx context.Context) error {
	if err := s.driver.Pause(); err != nil {
		return err
	}
	s.record(models.EventPause, "Countdown paused", nil)
	return nil
}

func (s *TimerSession) Resume(ctx context.Context) error {
	if err := s.driver.Resume(); err != nil {
		return err
	}
	s.record(models.EventResume, "Countdown resumed", nil)
	return nil
}

// TogglePause pauses a running countdown or resumes a paused one and
// returns the new status.
func (s *TimerSession) TogglePause(ctx context.Context) (string, error) {
	st, err := s.driver.TogglePause()
	if err != nil {
		return string(st), err
	}
	if st == countdown.StatusPaused {
		s.record(models.EventPause, "Countdown paused", nil)
	} else {
		s.record(models.EventResume, "Countdown resumed", nil)
	}
	return string(st), nil
}

// AddSeconds extends the countdown. When nothing is counting down it
// starts a new countdown of that length.
func (s *TimerSession) AddSeconds(ctx context.Context, seconds int) error {
	started, err := s.driver.AddSeconds(seconds)
	if err != nil {
		return err
	}
	if started {
		s.syncAlarms()
	}
	s.record(models.EventAddTime, fmt.Sprintf("Added %ds", seconds),
		map[string]any{"seconds": seconds, "started": started})
	return nil
}

// Reset zeroes the countdown and silences the alarm. Resetting an idle
// timer is a no-op.
func (s *TimerSession) Reset(ctx context.Context) error {
	changed := s.driver.Reset()
	s.stopAlarm(ctx, alarm.ReasonReset)
	if changed {
		s.record(models.EventReset, "Countdown reset", nil)
	}
	return nil
}

// DismissAlarm stops the ringing alarm. It reports false when nothing was
// ringing.
func (s *TimerSession) DismissAlarm(ctx context.Context) bool {
	return s.stopAlarm(ctx, alarm.ReasonDismissed)
}

// SelectSet toggles the set counter: selecting the current set clears it.
func (s *TimerSession) SelectSet(ctx context.Context, set int) (*int, error) {
	if set < minSet || set > maxSet {
		return nil, ErrInvalidSet
	}
	s.mu.Lock()
	if s.set != nil && *s.set == set {
		s.set = nil
	} else {
		v := set
		s.set = &v
	}
	s.updatedAt = s.clock.Now().UTC()
	st := s.stateLocked()
	s.mu.Unlock()

	s.publish(events.TypeSet, st)
	s.journal.RecordState(st)
	s.record(models.EventSetSelect, "Set selected", map[string]any{"set": st.CurrentSet})
	return st.CurrentSet, nil
}

// GetState returns the live session state.
func (s *TimerSession) GetState(ctx context.Context) (models.TimerState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked(), nil
}

// Restore loads the last persisted snapshot. A countdown that was running
// or paused with time left comes back paused.
func (s *TimerSession) Restore(ctx context.Context) error {
	if s.stateRepo == nil {
		return nil
	}
	st, err := s.stateRepo.Load(ctx)
	if err != nil {
		return fmt.Errorf("load timer state: %w", err)
	}
	if st.ID == 0 {
		return nil
	}

	if st.CurrentSet != nil && *st.CurrentSet >= minSet && *st.CurrentSet <= maxSet {
		v := *st.CurrentSet
		s.mu.Lock()
		s.set = &v
		s.mu.Unlock()
	}

	switch st.Status {
	case models.StatusRunning, models.StatusPaused:
		if st.RemainingSeconds > 0 {
			s.driver.Restore(st.RemainingSeconds)
			s.log.Infow("timer_restored", "remaining", st.RemainingSeconds, "was", st.Status)
		}
	}
	return nil
}

// Close stops the tick task, silences a ringing alarm and waits for the
// alarm worker to exit.
func (s *TimerSession) Close(ctx context.Context) {
	s.driver.Close()
	s.stopAlarm(ctx, alarm.ReasonShutdown)

	s.opsMu.Lock()
	if !s.opsClosed {
		s.opsClosed = true
		close(s.ops)
	}
	s.opsMu.Unlock()
	<-s.opsDone
}

// onCountdown is the driver sink. It runs under the driver lock.
func (s *TimerSession) onCountdown(ev countdown.Event) {
	ctx := context.Background()

	s.mu.Lock()
	s.status = ev.Status
	s.remaining = ev.Remaining
	s.updatedAt = ev.At.UTC()

	// a fresh countdown or a new completion takes over the alarm slot
	var prev, next *alarm.Alarm
	if ev.Started || ev.Type == countdown.EventCompleted {
		prev = s.alarm
		s.alarm = nil
		s.ringing = false
	}
	if ev.Type == countdown.EventCompleted {
		s.advanceSetLocked()
		next = alarm.New(s.alarmDeps, s.alarmCfg, s.onAlarmStop)
		s.alarm = next
		s.ringing = true
	}
	st := s.stateLocked()
	s.mu.Unlock()

	s.publish(messageType(ev.Type), st)
	s.journal.RecordState(st)

	switch ev.Type {
	case countdown.EventUpdated, countdown.EventResumed:
		if ev.Status == countdown.StatusRunning {
			s.showCountdown(ctx, ev.Remaining)
		}
	case countdown.EventReset:
		s.cancelCountdown(ctx)
	case countdown.EventCompleted:
		s.cancelCountdown(ctx)
		s.record(models.EventComplete, "Countdown completed", map[string]any{"set": st.CurrentSet})
	}

	if prev != nil || next != nil {
		s.alarmOp(func() {
			if prev != nil {
				prev.Stop(ctx, alarm.ReasonReplaced)
			}
			if next != nil {
				s.ring(ctx, next)
			}
		})
	}
}

// ring starts a. An alarm stopped before its turn stays silent.
func (s *TimerSession) ring(ctx context.Context, a *alarm.Alarm) {
	if !a.Start(ctx) {
		return
	}
	info := a.Info()

	s.mu.Lock()
	st := s.stateLocked()
	s.mu.Unlock()

	s.record(models.EventAlarmStart, "Alarm started",
		map[string]any{"alarm_id": info.ID, "output": info.Output.Name})
	s.publish(events.TypeAlarm, AlarmPayload{
		ID:      info.ID,
		Ringing: info.Ringing,
		Output:  info.Output.Name,
		State:   st,
	})
}

// onAlarmStop runs once per alarm session, outside the alarm lock.
func (s *TimerSession) onAlarmStop(a *alarm.Alarm, reason alarm.Reason) {
	s.mu.Lock()
	if s.alarm == a {
		s.alarm = nil
		s.ringing = false
		s.updatedAt = s.clock.Now().UTC()
	}
	st := s.stateLocked()
	s.mu.Unlock()

	s.journal.RecordState(st)
	s.record(models.EventAlarmStop, "Alarm stopped",
		map[string]any{"alarm_id": a.ID(), "reason": string(reason)})
	s.publish(events.TypeAlarm, AlarmPayload{
		ID:     a.ID(),
		Reason: string(reason),
		State:  st,
	})
}

// stopAlarm silences the current alarm session, if any, and reports
// whether there was one.
func (s *TimerSession) stopAlarm(ctx context.Context, reason alarm.Reason) bool {
	s.syncAlarms()

	s.mu.Lock()
	a := s.alarm
	if a != nil {
		s.alarm = nil
		s.ringing = false
		s.updatedAt = s.clock.Now().UTC()
	}
	st := s.stateLocked()
	s.mu.Unlock()
	if a == nil {
		return false
	}
	if a.Stop(ctx, reason) {
		return true
	}
	if !a.Info().StartedAt.IsZero() {
		// lost a race with the auto-stop, which already reported it
		return false
	}

	// not started yet: the queued ring is now a no-op
	s.journal.RecordState(st)
	s.publish(events.TypeAlarm, AlarmPayload{ID: a.ID(), Reason: string(reason), State: st})
	return true
}

func (s *TimerSession) runAlarmOps() {
	defer close(s.opsDone)
	for op := range s.ops {
		op()
	}
}

// alarmOp queues op for the alarm worker. After Close it runs inline.
func (s *TimerSession) alarmOp(op func()) {
	s.opsMu.Lock()
	defer s.opsMu.Unlock()
	if s.opsClosed {
		op()
		return
	}
	s.ops <- op
}

// syncAlarms waits until every queued alarm operation has run.
func (s *TimerSession) syncAlarms() {
	done := make(chan struct{})
	s.alarmOp(func() { close(done) })
	<-done
}

// advanceSetLocked moves the set counter forward, wrapping 5 -> 1.
func (s *TimerSession) advanceSetLocked() {
	if s.set == nil {
		return
	}
	next := *s.set%maxSet + 1
	s.set = &next
}

func (s *TimerSession) stateLocked() models.TimerState {
	st := models.TimerState{
		ID:               stateRowID,
		Status:           string(s.status),
		RemainingSeconds: s.remaining,
		Display:          models.FormatClock(s.remaining),
		AlarmRinging:     s.ringing,
		UpdatedAt:        s.updatedAt,
	}
	if s.ringing && s.alarm != nil {
		st.AlarmID = s.alarm.ID()
	}
	if s.set != nil {
		v := *s.set
		st.CurrentSet = &v
	}
	return st
}

func (s *TimerSession) showCountdown(ctx context.Context, remaining int) {
	err := s.notifier.Show(ctx, alarm.Notification{
		ID:      countdownNotificationID,
		Title:   countdownTitle,
		Text:    "Time left: " + models.FormatClock(remaining),
		Ongoing: true,
	})
	if err != nil && !errors.Is(err, notify.ErrNoClients) {
		s.log.Warnw("countdown_notification_failed", "err", err)
	}
}

func (s *TimerSession) cancelCountdown(ctx context.Context) {
	err := s.notifier.Cancel(ctx, countdownNotificationID)
	if err != nil && !errors.Is(err, notify.ErrNoClients) {
		s.log.Warnw("countdown_notification_cancel_failed", "err", err)
	}
}

func (s *TimerSession) publish(typ string, data any) {
	s.hub.Publish(events.Message{Type: typ, Data: data, At: s.clock.Now().UTC()})
}

func (s *TimerSession) record(typ, description string, meta map[string]any) {
	ev := models.TimerEvent{
		OccurredAt:  s.clock.Now().UTC(),
		Type:        typ,
		Description: description,
	}
	if meta != nil {
		ev.Metadata = meta
	}
	s.journal.RecordEvent(ev)
}

func messageType(t countdown.EventType) string {
	switch t {
	case countdown.EventPaused:
		return events.TypePaused
	case countdown.EventResumed:
		return events.TypeResumed
	case countdown.EventCompleted:
		return events.TypeCompleted
	case countdown.EventReset:
		return events.TypeReset
	default:
		return events.TypeUpdated
	}
}
