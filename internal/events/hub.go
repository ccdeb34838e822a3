// Package events is the in-process event stream between the timer
// session and its clients.
package events

import (
	"sync"
	"time"
)

// Message types published on the hub.
const (
	TypeState              = "state"
	TypeUpdated            = "updated"
	TypePaused             = "paused"
	TypeResumed            = "resumed"
	TypeCompleted          = "completed"
	TypeReset              = "reset"
	TypeAlarm              = "alarm"
	TypeSet                = "set"
	TypeVibrate            = "vibrate"
	TypeNotification       = "notification"
	TypeNotificationCancel = "notification_cancel"
)

// DefaultBuffer is the per-subscriber queue length.
const DefaultBuffer = 32

// Message is one item on the stream.
type Message struct {
	Type string    `json:"type"`
	Data any       `json:"data,omitempty"`
	At   time.Time `json:"at"`
}

// Hub fans messages out to subscribers. Publish never blocks: a
// subscriber whose queue is full is dropped and its channel closed, and
// it has to subscribe again.
type Hub struct {
	mu     sync.Mutex
	subs   map[*Subscription]struct{}
	closed bool
}

// NewHub returns an empty hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[*Subscription]struct{})}
}

// Subscription is a live registration on the hub.
type Subscription struct {
	hub  *Hub
	c    chan Message
	once sync.Once
}

// C returns the message channel. It is closed on Close, when the
// subscriber falls behind, or when the hub shuts down.
func (s *Subscription) C() <-chan Message { return s.c }

// Close unsubscribes. Safe to call more than once.
func (s *Subscription) Close() error {
	s.hub.remove(s)
	return nil
}

// Subscribe registers a new subscriber with a queue of buffer messages.
func (h *Hub) Subscribe(buffer int) *Subscription {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	s := &Subscription{hub: h, c: make(chan Message, buffer)}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		close(s.c)
		return s
	}
	h.subs[s] = struct{}{}
	return s
}

// Publish delivers m to every subscriber and reports how many received it.
func (h *Hub) Publish(m Message) int {
	if m.At.IsZero() {
		m.At = time.Now().UTC()
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	delivered := 0
	for s := range h.subs {
		select {
		case s.c <- m:
			delivered++
		default:
			delete(h.subs, s)
			s.closeChan()
		}
	}
	return delivered
}

// Subscribers returns the number of live subscribers.
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// Close drops every subscriber; later subscriptions are closed at once.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for s := range h.subs {
		delete(h.subs, s)
		s.closeChan()
	}
}

func (h *Hub) remove(s *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.subs, s)
	s.closeChan()
}

func (s *Subscription) closeChan() {
	s.once.Do(func() { close(s.c) })
}
