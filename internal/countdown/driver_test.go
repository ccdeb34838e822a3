package countdown

import (
	"errors"
	"testing"
	"time"

	"gym_timer/internal/clock"
)

// ---- Test helpers ----

type recorder struct {
	ch chan Event
}

func newRecorder() *recorder { return &recorder{ch: make(chan Event, 64)} }

func (r *recorder) sink(e Event) { r.ch <- e }

func (r *recorder) next(t *testing.T) Event {
	t.Helper()
	select {
	case e := <-r.ch:
		return e
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for countdown event")
		return Event{}
	}
}

func (r *recorder) expect(t *testing.T, typ EventType, remaining int) {
	t.Helper()
	e := r.next(t)
	if e.Type != typ || e.Remaining != remaining {
		t.Fatalf("got %s(%d), want %s(%d)", e.Type, e.Remaining, typ, remaining)
	}
}

func (r *recorder) expectNone(t *testing.T) {
	t.Helper()
	select {
	case e := <-r.ch:
		t.Fatalf("unexpected event %s(%d)", e.Type, e.Remaining)
	case <-time.After(50 * time.Millisecond):
	}
}

func newTestDriver() (*Driver, *clock.Fake, *recorder) {
	clk := clock.NewFake(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	rec := newRecorder()
	return NewDriver(clk, time.Second, rec.sink), clk, rec
}

// ---- Tests ----

func TestDriver_Start_DecrementsOncePerTickAndCompletesOnce(t *testing.T) {
	d, clk, rec := newTestDriver()
	defer d.Close()

	if err := d.Start(3); err != nil {
		t.Fatalf("Start: %v", err)
	}
	rec.expect(t, EventUpdated, 3)

	for want := 2; want >= 1; want-- {
		clk.Advance(time.Second)
		rec.expect(t, EventUpdated, want)
	}
	clk.Advance(time.Second)
	rec.expect(t, EventUpdated, 0)
	rec.expect(t, EventCompleted, 0)

	clk.Advance(5 * time.Second)
	rec.expectNone(t)

	snap := d.Snapshot()
	if snap.Status != StatusCompleted || snap.Remaining != 0 {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
}

func TestDriver_StartZeroCompletesImmediately(t *testing.T) {
	d, clk, rec := newTestDriver()
	defer d.Close()

	if err := d.Start(0); err != nil {
		t.Fatalf("Start(0): %v", err)
	}
	rec.expect(t, EventUpdated, 0)
	rec.expect(t, EventCompleted, 0)
	clk.Advance(3 * time.Second)
	rec.expectNone(t)
}

func TestDriver_StartRejectsNegative(t *testing.T) {
	d, _, rec := newTestDriver()
	if err := d.Start(-1); !errors.Is(err, ErrNegativeDuration) {
		t.Fatalf("expected ErrNegativeDuration, got %v", err)
	}
	rec.expectNone(t)
	if d.Snapshot().Status != StatusIdle {
		t.Fatalf("expected idle after rejected start")
	}
}

func TestDriver_PauseResumeKeepsRemaining(t *testing.T) {
	d, clk, rec := newTestDriver()
	defer d.Close()

	_ = d.Start(5)
	rec.expect(t, EventUpdated, 5)
	clk.Advance(time.Second)
	rec.expect(t, EventUpdated, 4)

	if err := d.Pause(); err != nil {
		t.Fatalf("Pause: %v", err)
	}
	rec.expect(t, EventPaused, 4)

	clk.Advance(10 * time.Second)
	rec.expectNone(t)
	if got := d.Snapshot(); got.Status != StatusPaused || got.Remaining != 4 {
		t.Fatalf("paused snapshot = %+v", got)
	}

	if err := d.Resume(); err != nil {
		t.Fatalf("Resume: %v", err)
	}
	rec.expect(t, EventResumed, 4)
	clk.Advance(time.Second)
	rec.expect(t, EventUpdated, 3)
}

func TestDriver_PauseResumeStateErrors(t *testing.T) {
	d, _, _ := newTestDriver()
	defer d.Close()

	if err := d.Pause(); !errors.Is(err, ErrNotRunning) {
		t.Fatalf("Pause on idle: got %v", err)
	}
	if err := d.Resume(); !errors.Is(err, ErrNotPaused) {
		t.Fatalf("Resume on idle: got %v", err)
	}
	if _, err := d.TogglePause(); !errors.Is(err, ErrNotRunning) {
		t.Fatalf("TogglePause on idle: got %v", err)
	}
}

func TestDriver_TogglePause(t *testing.T) {
	d, _, rec := newTestDriver()
	defer d.Close()

	_ = d.Start(10)
	rec.expect(t, EventUpdated, 10)

	st, err := d.TogglePause()
	if err != nil || st != StatusPaused {
		t.Fatalf("first toggle: status=%s err=%v", st, err)
	}
	rec.expect(t, EventPaused, 10)

	st, err = d.TogglePause()
	if err != nil || st != StatusRunning {
		t.Fatalf("second toggle: status=%s err=%v", st, err)
	}
	rec.expect(t, EventResumed, 10)
}

func TestDriver_AddSeconds(t *testing.T) {
	t.Run("running adds in place", func(t *testing.T) {
		d, clk, rec := newTestDriver()
		defer d.Close()
		_ = d.Start(5)
		rec.expect(t, EventUpdated, 5)

		started, err := d.AddSeconds(10)
		if err != nil || started {
			t.Fatalf("AddSeconds: started=%v err=%v", started, err)
		}
		rec.expect(t, EventUpdated, 15)
		clk.Advance(time.Second)
		rec.expect(t, EventUpdated, 14)
	})

	t.Run("paused adds and stays paused", func(t *testing.T) {
		d, _, rec := newTestDriver()
		defer d.Close()
		_ = d.Start(5)
		rec.expect(t, EventUpdated, 5)
		_ = d.Pause()
		rec.expect(t, EventPaused, 5)

		if _, err := d.AddSeconds(10); err != nil {
			t.Fatalf("AddSeconds: %v", err)
		}
		rec.expect(t, EventUpdated, 15)
		if got := d.Snapshot(); got.Status != StatusPaused {
			t.Fatalf("expected paused, got %s", got.Status)
		}
	})

	t.Run("idle behaves as start", func(t *testing.T) {
		d, clk, rec := newTestDriver()
		defer d.Close()
		started, err := d.AddSeconds(10)
		if err != nil || !started {
			t.Fatalf("AddSeconds on idle: started=%v err=%v", started, err)
		}
		rec.expect(t, EventUpdated, 10)
		clk.Advance(time.Second)
		rec.expect(t, EventUpdated, 9)
	})

	t.Run("completed behaves as start", func(t *testing.T) {
		d, _, rec := newTestDriver()
		defer d.Close()
		_ = d.Start(0)
		rec.expect(t, EventUpdated, 0)
		rec.expect(t, EventCompleted, 0)

		started, _ := d.AddSeconds(10)
		if !started {
			t.Fatalf("expected a new countdown after completion")
		}
		rec.expect(t, EventUpdated, 10)
	})

	t.Run("rejects non-positive", func(t *testing.T) {
		d, _, _ := newTestDriver()
		if _, err := d.AddSeconds(0); !errors.Is(err, ErrNonPositiveIncrement) {
			t.Fatalf("expected ErrNonPositiveIncrement, got %v", err)
		}
	})
}

func TestDriver_ResetIsIdempotent(t *testing.T) {
	d, clk, rec := newTestDriver()
	defer d.Close()

	_ = d.Start(5)
	rec.expect(t, EventUpdated, 5)

	if !d.Reset() {
		t.Fatalf("first Reset should report a change")
	}
	rec.expect(t, EventReset, 0)
	if d.Reset() {
		t.Fatalf("second Reset should be a no-op")
	}
	rec.expectNone(t)

	clk.Advance(3 * time.Second)
	rec.expectNone(t)
	if got := d.Snapshot(); got.Status != StatusIdle || got.Remaining != 0 {
		t.Fatalf("unexpected snapshot after reset: %+v", got)
	}
}

func TestDriver_RestartReplacesActiveCountdown(t *testing.T) {
	d, clk, rec := newTestDriver()
	defer d.Close()

	_ = d.Start(5)
	rec.expect(t, EventUpdated, 5)
	_ = d.Start(2)
	rec.expect(t, EventUpdated, 2)

	clk.Advance(time.Second)
	rec.expect(t, EventUpdated, 1)
	clk.Advance(time.Second)
	rec.expect(t, EventUpdated, 0)
	rec.expect(t, EventCompleted, 0)
	rec.expectNone(t)
}

func TestDriver_Restore(t *testing.T) {
	d, _, rec := newTestDriver()
	defer d.Close()

	d.Restore(0)
	rec.expectNone(t)

	d.Restore(42)
	rec.expect(t, EventPaused, 42)
	if got := d.Snapshot(); got.Status != StatusPaused || got.Remaining != 42 {
		t.Fatalf("unexpected snapshot: %+v", got)
	}
}

func TestDriver_StartedMarksFreshCountdownOnly(t *testing.T) {
	d, clk, rec := newTestDriver()
	defer d.Close()

	started := func(want bool) {
		t.Helper()
		if e := rec.next(t); e.Started != want {
			t.Fatalf("%s(%d): Started=%v, want %v", e.Type, e.Remaining, e.Started, want)
		}
	}

	_ = d.Start(2)
	started(true)
	clk.Advance(time.Second)
	started(false)
	_, _ = d.AddSeconds(3)
	started(false)
	_ = d.Pause()
	started(false)

	// AddSeconds from completed begins a new countdown
	_ = d.Start(0)
	started(true)
	started(false)
	if ok, _ := d.AddSeconds(1); !ok {
		t.Fatalf("AddSeconds on completed driver should start")
	}
	started(true)
	rec.expectNone(t)
}
