package alarm

import (
	"context"
	"time"
)

// Vibration describes a one-shot vibration.
type Vibration struct {
	Duration  time.Duration
	Amplitude int // 1..255
}

// Vibrator triggers device vibration.
type Vibrator interface {
	Vibrate(ctx context.Context, v Vibration) error
}

// Action is a button attached to a notification. Command is the client
// command sent back when it is pressed.
type Action struct {
	Label   string `json:"label"`
	Command string `json:"command"`
}

// Notification is a user-visible notice with optional actions.
type Notification struct {
	ID      string   `json:"id"`
	Title   string   `json:"title"`
	Text    string   `json:"text"`
	Ongoing bool     `json:"ongoing"`
	Actions []Action `json:"actions,omitempty"`
}

// Notifier shows and cancels notifications.
type Notifier interface {
	Show(ctx context.Context, n Notification) error
	Cancel(ctx context.Context, id string) error
}

// OutputKind classifies an audio output device.
type OutputKind string

const (
	KindSpeaker   OutputKind = "speaker"
	KindWired     OutputKind = "wired"
	KindBluetooth OutputKind = "bluetooth"
	KindUSB       OutputKind = "usb"
)

// Output is one audio output device.
type Output struct {
	ID   string     `json:"id"`
	Name string     `json:"name"`
	Kind OutputKind `json:"kind"`
}

// External reports whether the output is something other than the
// built-in speaker.
func (o Output) External() bool {
	return o.Kind != "" && o.Kind != KindSpeaker
}

// Route is the routing state saved before the alarm claims the output.
type Route struct {
	Output string `json:"output"`
}

// Router lists audio outputs and switches between them.
type Router interface {
	Outputs(ctx context.Context) ([]Output, error)
	Current(ctx context.Context) (Route, error)
	Apply(ctx context.Context, out Output) error
	Restore(ctx context.Context, r Route) error
}

// Player plays the alarm sound on the selected output.
type Player interface {
	Play(ctx context.Context, out Output) error
	Stop() error
}

// SelectOutput picks the first non-speaker output, falling back to the
// first speaker and then to an unnamed default speaker.
func SelectOutput(outs []Output) Output {
	for _, o := range outs {
		if o.External() {
			return o
		}
	}
	for _, o := range outs {
		if o.Kind == KindSpeaker {
			return o
		}
	}
	return Output{Kind: KindSpeaker}
}
