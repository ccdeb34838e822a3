// Package audio plays the alarm on the host and switches the host's
// audio output so the alarm prefers headphones over the speaker.
package audio

import (
	"context"
	"sync"
	"time"

	"gym_timer/internal/alarm"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
)

const (
	sampleRate = beep.SampleRate(44100)
	bufferSize = 100 * time.Millisecond
)

// speakerAPI is the part of the beep speaker package the player uses.
type speakerAPI struct {
	init   func(sr beep.SampleRate, bufferSize int) error
	play   func(s ...beep.Streamer)
	lock   func()
	unlock func()
}

var defaultSpeaker = speakerAPI{
	init:   speaker.Init,
	play:   speaker.Play,
	lock:   speaker.Lock,
	unlock: speaker.Unlock,
}

// BeepPlayer plays a generated alarm tone through the default audio
// device. The device is opened on first use.
type BeepPlayer struct {
	tone    ToneConfig
	speaker speakerAPI

	mu          sync.Mutex
	initialized bool
	mixer       *beep.Mixer
	ctrl        *beep.Ctrl
}

var _ alarm.Player = (*BeepPlayer)(nil)

// NewBeepPlayer returns a player for the given tone.
func NewBeepPlayer(tone ToneConfig) *BeepPlayer {
	return &BeepPlayer{
		tone:    tone.withDefaults(),
		speaker: defaultSpeaker,
		mixer:   &beep.Mixer{},
	}
}

// Play starts the alarm tone, replacing one that is already playing.
// The output has already been made the default by the router; the
// player only follows it.
func (p *BeepPlayer) Play(ctx context.Context, _ alarm.Output) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.initialized {
		if err := p.speaker.init(sampleRate, sampleRate.N(bufferSize)); err != nil {
			return err
		}
		p.speaker.play(p.mixer)
		p.initialized = true
	}

	p.speaker.lock()
	defer p.speaker.unlock()
	if p.ctrl != nil {
		p.ctrl.Paused = true
	}
	p.mixer.Clear()
	p.ctrl = &beep.Ctrl{Streamer: NewAlarmTone(sampleRate, p.tone)}
	p.mixer.Add(p.ctrl)
	return nil
}

// Stop silences the tone. Stopping a silent player is a no-op.
func (p *BeepPlayer) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.initialized || p.ctrl == nil {
		return nil
	}
	p.speaker.lock()
	p.ctrl.Paused = true
	p.mixer.Clear()
	p.speaker.unlock()
	p.ctrl = nil
	return nil
}

// Playing reports whether a tone is active.
func (p *BeepPlayer) Playing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ctrl != nil && !p.ctrl.Paused
}
