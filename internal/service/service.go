package service

import (
	"context"
	"time"

	"gym_timer/internal/events"
	"gym_timer/internal/models"
	"gym_timer/internal/repository"
)

type Authorization interface {
	SignUp(username, password string) (int, error)
	GenerateToken(username, password string) (string, error)
	ParseToken(accessToken string) (int, error)
}

// Timer exposes the countdown commands.
type Timer interface {
	Start(ctx context.Context, seconds int) error
	Pause(ctx context.Context) error
	Resume(ctx context.Context) error
	TogglePause(ctx context.Context) (string, error)
	AddSeconds(ctx context.Context, seconds int) error
	Reset(ctx context.Context) error
}

// Alarm controls the ringing alarm.
type Alarm interface {
	DismissAlarm(ctx context.Context) bool
}

// Sets manages the cosmetic set counter.
type Sets interface {
	SelectSet(ctx context.Context, set int) (*int, error)
}

// Monitoring exposes read-only state.
type Monitoring interface {
	GetState(ctx context.Context) (models.TimerState, error)
	Presets() Presets
}

// EventLog exposes append-only logs with filtering access.
type EventLog interface {
	List(ctx context.Context, f LogFilter) ([]models.TimerEvent, error)
}

// Stream hands out live event subscriptions.
type Stream interface {
	Subscribe(buffer int) *events.Subscription
}

// Recorder persists state and log entries in the background until ctx
// is cancelled.
type Recorder interface {
	Run(ctx context.Context, flush time.Duration)
}

// Service aggregates the sub-services used by the HTTP layer.
type Service struct {
	Timer
	Alarm
	Sets
	Monitoring
	EventLog
	Stream
	Recorder
	Authorization

	session *TimerSession
}

// NewService wires the repositories and the session collaborators into
// concrete services.
func NewService(repos *repository.Repository, deps Deps) *Service {
	deps = deps.withDefaults()
	recorder := NewRecorderService(repos.StateRepo, repos.EventRepo, deps.Clock, deps.Log, deps.RecorderQueue)
	session := NewTimerSession(deps, repos.StateRepo, recorder)
	return &Service{
		Timer:         session,
		Alarm:         session,
		Sets:          session,
		Monitoring:    NewMonitoringService(session, deps.Presets),
		EventLog:      NewEventLogService(repos.EventRepo),
		Stream:        deps.Hub,
		Recorder:      recorder,
		Authorization: NewAuthService(repos.Auth, deps.Auth),
		session:       session,
	}
}

// Restore reloads the last persisted snapshot into the session.
func (s *Service) Restore(ctx context.Context) error {
	if s.session == nil {
		return nil
	}
	return s.session.Restore(ctx)
}

// Close stops the countdown and silences a ringing alarm.
func (s *Service) Close(ctx context.Context) {
	if s.session != nil {
		s.session.Close(ctx)
	}
}
