// Package notify forwards vibration and notification requests to the
// clients connected to the event stream. The phone or browser on the
// other end performs them.
package notify

import (
	"context"
	"errors"

	"gym_timer/internal/alarm"
	"gym_timer/internal/events"
)

// ErrNoClients is returned when nobody is subscribed to receive a request.
var ErrNoClients = errors.New("notify: no connected clients")

// Publisher is the subset of *events.Hub used here.
type Publisher interface {
	Publish(m events.Message) int
}

// VibratePayload is the data of a vibrate message.
type VibratePayload struct {
	DurationMs int64 `json:"duration_ms"`
	Amplitude  int   `json:"amplitude"`
}

// CancelPayload is the data of a notification_cancel message.
type CancelPayload struct {
	ID string `json:"id"`
}

// HubVibrator asks connected clients to vibrate.
type HubVibrator struct {
	pub Publisher
}

func NewHubVibrator(pub Publisher) *HubVibrator {
	return &HubVibrator{pub: pub}
}

func (v *HubVibrator) Vibrate(ctx context.Context, p alarm.Vibration) error {
	return publish(ctx, v.pub, events.Message{
		Type: events.TypeVibrate,
		Data: VibratePayload{DurationMs: p.Duration.Milliseconds(), Amplitude: p.Amplitude},
	})
}

// HubNotifier shows and cancels notifications on connected clients.
type HubNotifier struct {
	pub Publisher
}

func NewHubNotifier(pub Publisher) *HubNotifier {
	return &HubNotifier{pub: pub}
}

func (n *HubNotifier) Show(ctx context.Context, note alarm.Notification) error {
	return publish(ctx, n.pub, events.Message{Type: events.TypeNotification, Data: note})
}

func (n *HubNotifier) Cancel(ctx context.Context, id string) error {
	return publish(ctx, n.pub, events.Message{Type: events.TypeNotificationCancel, Data: CancelPayload{ID: id}})
}

func publish(ctx context.Context, pub Publisher, m events.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if pub.Publish(m) == 0 {
		return ErrNoClients
	}
	return nil
}
