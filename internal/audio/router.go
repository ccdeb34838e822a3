package audio

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"gym_timer/internal/alarm"
)

// ErrNoRouter is returned by DetectRouter when no supported tool exists.
var ErrNoRouter = errors.New("audio: no supported output router found")

const pactlBin = "pactl"

// Runner executes an external command and returns its stdout.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	out, err := exec.CommandContext(ctx, name, args...).Output()
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", name, strings.Join(args, " "), err)
	}
	return out, nil
}

// PulseRouter switches the default sink of a PulseAudio or PipeWire
// server through pactl.
type PulseRouter struct {
	runner Runner
}

var _ alarm.Router = (*PulseRouter)(nil)

func NewPulseRouter(r Runner) *PulseRouter {
	if r == nil {
		r = ExecRunner{}
	}
	return &PulseRouter{runner: r}
}

// Outputs lists sinks from `pactl list short sinks`.
func (p *PulseRouter) Outputs(ctx context.Context) ([]alarm.Output, error) {
	out, err := p.runner.Run(ctx, pactlBin, "list", "short", "sinks")
	if err != nil {
		return nil, err
	}
	return parseShortSinks(out), nil
}

// Current returns the default sink.
func (p *PulseRouter) Current(ctx context.Context) (alarm.Route, error) {
	out, err := p.runner.Run(ctx, pactlBin, "get-default-sink")
	if err != nil {
		return alarm.Route{}, err
	}
	return alarm.Route{Output: strings.TrimSpace(string(out))}, nil
}

// Apply makes out the default sink.
func (p *PulseRouter) Apply(ctx context.Context, out alarm.Output) error {
	if out.ID == "" {
		return nil
	}
	_, err := p.runner.Run(ctx, pactlBin, "set-default-sink", out.ID)
	return err
}

// Restore puts back a saved default sink.
func (p *PulseRouter) Restore(ctx context.Context, r alarm.Route) error {
	if r.Output == "" {
		return nil
	}
	_, err := p.runner.Run(ctx, pactlBin, "set-default-sink", r.Output)
	return err
}

// parseShortSinks reads lines of "index<TAB>name<TAB>driver<TAB>spec<TAB>state".
func parseShortSinks(b []byte) []alarm.Output {
	var outs []alarm.Output
	sc := bufio.NewScanner(bytes.NewReader(b))
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) < 2 {
			continue
		}
		name := fields[1]
		outs = append(outs, alarm.Output{ID: name, Name: name, Kind: classifySink(name)})
	}
	return outs
}

// classifySink guesses the device kind from a sink name such as
// "bluez_output.AA_BB.1" or "alsa_output.usb-Logitech_Headset-00.analog-stereo".
func classifySink(name string) alarm.OutputKind {
	n := strings.ToLower(name)
	switch {
	case strings.Contains(n, "bluez"), strings.Contains(n, "bluetooth"):
		return alarm.KindBluetooth
	case strings.Contains(n, "usb"):
		return alarm.KindUSB
	case strings.Contains(n, "headphone"), strings.Contains(n, "headset"):
		return alarm.KindWired
	default:
		return alarm.KindSpeaker
	}
}

// NopRouter leaves routing alone.
type NopRouter struct{}

func (NopRouter) Outputs(context.Context) ([]alarm.Output, error) { return nil, nil }
func (NopRouter) Current(context.Context) (alarm.Route, error)    { return alarm.Route{}, nil }
func (NopRouter) Apply(context.Context, alarm.Output) error       { return nil }
func (NopRouter) Restore(context.Context, alarm.Route) error      { return nil }

// DetectRouter returns a PulseRouter when pactl is on PATH.
func DetectRouter(lookPath func(string) (string, error)) (alarm.Router, error) {
	if lookPath == nil {
		lookPath = exec.LookPath
	}
	if _, err := lookPath(pactlBin); err == nil {
		return NewPulseRouter(ExecRunner{}), nil
	}
	return NopRouter{}, ErrNoRouter
}

// NewRouter builds the router named in config: "pulse", "none" or "auto".
func NewRouter(kind string) (alarm.Router, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "", "auto":
		return DetectRouter(nil)
	case "pulse", "pipewire":
		return NewPulseRouter(ExecRunner{}), nil
	case "none":
		return NopRouter{}, nil
	default:
		return NopRouter{}, fmt.Errorf("audio: unknown router %q", kind)
	}
}
