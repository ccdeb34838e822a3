package service

import (
	"context"
	"sync"
	"time"

	"gym_timer/internal/clock"
	"gym_timer/internal/logger"
	"gym_timer/internal/models"
	"gym_timer/internal/repository"

	"github.com/google/uuid"
)

const (
	DefaultFlushInterval = time.Second
	shutdownFlushTimeout = 3 * time.Second
)

// RecorderService persists the timer in the background. Log entries are
// queued and appended in order; state snapshots are coalesced and the
// latest one is saved on every flush tick. Persistence failures are
// logged and never reach the timer.
type RecorderService struct {
	stateRepo repository.StateRepo
	eventRepo repository.EventRepo
	clock     clock.Clock
	log       *logger.Logger

	queue chan models.TimerEvent

	mu      sync.Mutex
	pending *models.TimerState
	dropped int
}

func NewRecorderService(stateRepo repository.StateRepo, eventRepo repository.EventRepo, clk clock.Clock, log *logger.Logger, queue int) *RecorderService {
	if clk == nil {
		clk = clock.NewReal()
	}
	if log == nil {
		log = logger.Nop()
	}
	if queue <= 0 {
		queue = defaultRecorderQueue
	}
	return &RecorderService{
		stateRepo: stateRepo,
		eventRepo: eventRepo,
		clock:     clk,
		log:       log.Named("recorder"),
		queue:     make(chan models.TimerEvent, queue),
	}
}

// RecordState marks st as the snapshot to save on the next flush.
func (r *RecorderService) RecordState(st models.TimerState) {
	r.mu.Lock()
	r.pending = &st
	r.mu.Unlock()
}

// RecordEvent queues a log entry. It never blocks: when the queue is full
// the entry is dropped and counted.
func (r *RecorderService) RecordEvent(ev models.TimerEvent) {
	if ev.EventID == "" {
		ev.EventID = uuid.NewString()
	}
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = r.clock.Now().UTC()
	}
	select {
	case r.queue <- ev:
	default:
		r.mu.Lock()
		r.dropped++
		n := r.dropped
		r.mu.Unlock()
		r.log.Warnw("event_dropped", "type", ev.Type, "dropped_total", n)
	}
}

// Dropped returns how many log entries were discarded.
func (r *RecorderService) Dropped() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.dropped
}

// Run drains the queue and flushes state every flush interval until ctx
// is canceled, then writes whatever is left.
func (r *RecorderService) Run(ctx context.Context, flush time.Duration) {
	if flush <= 0 {
		flush = DefaultFlushInterval
	}
	t := r.clock.NewTicker(flush)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			r.shutdown()
			return
		case ev := <-r.queue:
			r.appendEvent(ctx, ev)
		case <-t.C():
			r.flushState(ctx)
		}
	}
}

func (r *RecorderService) shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownFlushTimeout)
	defer cancel()
	for {
		select {
		case ev := <-r.queue:
			r.appendEvent(ctx, ev)
		default:
			r.flushState(ctx)
			return
		}
	}
}

func (r *RecorderService) appendEvent(ctx context.Context, ev models.TimerEvent) {
	if err := r.eventRepo.Append(ctx, ev); err != nil {
		r.log.Errorw("event_append_failed", "err", err, "type", ev.Type, "event_id", ev.EventID)
	}
}

func (r *RecorderService) flushState(ctx context.Context) {
	r.mu.Lock()
	st := r.pending
	r.pending = nil
	r.mu.Unlock()
	if st == nil {
		return
	}
	if err := r.stateRepo.Save(ctx, *st); err != nil {
		r.log.Errorw("state_save_failed", "err", err, "status", st.Status)
		// retry on the next tick unless a newer snapshot arrived
		r.mu.Lock()
		if r.pending == nil {
			r.pending = st
		}
		r.mu.Unlock()
	}
}
