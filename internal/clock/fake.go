package clock

import (
	"sort"
	"sync"
	"time"
)

// Fake is a manually advanced Clock for tests.
type Fake struct {
	mu      sync.Mutex
	now     time.Time
	tickers []*fakeTicker
	timers  []*fakeTimer
}

// NewFake returns a Fake clock positioned at start.
func NewFake(start time.Time) *Fake {
	return &Fake{now: start}
}

func (f *Fake) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *Fake) NewTicker(d time.Duration) Ticker {
	if d <= 0 {
		panic("clock: non-positive interval for NewTicker")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	t := &fakeTicker{
		c:      make(chan time.Time, 1),
		period: d,
		next:   f.now.Add(d),
	}
	f.tickers = append(f.tickers, t)
	return t
}

func (f *Fake) AfterFunc(d time.Duration, fn func()) Timer {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := &fakeTimer{at: f.now.Add(d), fn: fn}
	f.timers = append(f.timers, t)
	return t
}

// Advance moves the clock forward by d, delivering ticks and running due
// AfterFunc callbacks synchronously, in deadline order.
func (f *Fake) Advance(d time.Duration) {
	f.mu.Lock()
	target := f.now.Add(d)
	f.mu.Unlock()

	for {
		f.mu.Lock()
		at, fire := f.nextDueLocked(target)
		if fire == nil {
			f.now = target
			f.mu.Unlock()
			return
		}
		f.now = at
		f.mu.Unlock()
		fire()
	}
}

// Pending reports the number of scheduled, not yet fired or stopped timers.
func (f *Fake) Pending() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, t := range f.timers {
		if !t.done() {
			n++
		}
	}
	return n
}

// nextDueLocked finds the earliest ticker or timer due at or before target
// and returns a func that fires it.
func (f *Fake) nextDueLocked(target time.Time) (time.Time, func()) {
	type due struct {
		at   time.Time
		fire func()
	}
	var cands []due

	live := f.tickers[:0]
	for _, t := range f.tickers {
		if t.stopped() {
			continue
		}
		live = append(live, t)
		if !t.next.After(target) {
			tk := t
			cands = append(cands, due{at: tk.next, fire: func() { tk.fire() }})
		}
	}
	f.tickers = live

	pending := f.timers[:0]
	for _, t := range f.timers {
		if t.done() {
			continue
		}
		pending = append(pending, t)
		if !t.at.After(target) {
			tm := t
			cands = append(cands, due{at: tm.at, fire: func() { tm.run() }})
		}
	}
	f.timers = pending

	if len(cands) == 0 {
		return time.Time{}, nil
	}
	sort.SliceStable(cands, func(i, j int) bool { return cands[i].at.Before(cands[j].at) })
	return cands[0].at, cands[0].fire
}

type fakeTicker struct {
	mu     sync.Mutex
	c      chan time.Time
	period time.Duration
	next   time.Time
	stop   bool
}

func (t *fakeTicker) C() <-chan time.Time { return t.c }

func (t *fakeTicker) Stop() {
	t.mu.Lock()
	t.stop = true
	t.mu.Unlock()
}

func (t *fakeTicker) stopped() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stop
}

// fire behaves like time.Ticker: the send is dropped if the reader lags.
func (t *fakeTicker) fire() {
	t.mu.Lock()
	at := t.next
	t.next = t.next.Add(t.period)
	t.mu.Unlock()
	select {
	case t.c <- at:
	default:
	}
}

type fakeTimer struct {
	mu    sync.Mutex
	at    time.Time
	fn    func()
	fired bool
	stop  bool
}

func (t *fakeTimer) Stop() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.fired || t.stop {
		return false
	}
	t.stop = true
	return true
}

func (t *fakeTimer) done() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.fired || t.stop
}

func (t *fakeTimer) run() {
	t.mu.Lock()
	if t.fired || t.stop {
		t.mu.Unlock()
		return
	}
	t.fired = true
	t.mu.Unlock()
	t.fn()
}
