package audio

import (
	"math"
	"time"

	"github.com/gopxl/beep"
)

// ToneConfig shapes the generated alarm tone.
type ToneConfig struct {
	FrequencyHz float64
	Volume      float64 // 0..1
	On          time.Duration
	Off         time.Duration
}

// DefaultTone is a classic two-beat alarm: 880 Hz, half a second on,
// half a second off.
var DefaultTone = ToneConfig{
	FrequencyHz: 880,
	Volume:      0.4,
	On:          500 * time.Millisecond,
	Off:         500 * time.Millisecond,
}

func (c ToneConfig) withDefaults() ToneConfig {
	if c.FrequencyHz <= 0 {
		c.FrequencyHz = DefaultTone.FrequencyHz
	}
	if c.Volume <= 0 || c.Volume > 1 {
		c.Volume = DefaultTone.Volume
	}
	if c.On <= 0 {
		c.On = DefaultTone.On
	}
	if c.Off < 0 {
		c.Off = DefaultTone.Off
	}
	return c
}

// rampSeconds fades each beep in and out to avoid clicks.
const rampSeconds = 0.01

// AlarmTone is an endless on/off beep pattern.
type AlarmTone struct {
	sr     beep.SampleRate
	cfg    ToneConfig
	pos    int
	on     int
	period int
}

// NewAlarmTone builds the generator for sample rate sr.
func NewAlarmTone(sr beep.SampleRate, cfg ToneConfig) *AlarmTone {
	cfg = cfg.withDefaults()
	// durations shorter than one sample still sound for one sample
	on := max(sr.N(cfg.On), 1)
	return &AlarmTone{
		sr:     sr,
		cfg:    cfg,
		on:     on,
		period: on + max(sr.N(cfg.Off), 0),
	}
}

func (g *AlarmTone) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		inCycle := g.pos % g.period
		sample := 0.0
		if inCycle < g.on {
			t := float64(inCycle) / float64(g.sr)
			rest := float64(g.on-inCycle) / float64(g.sr)
			env := math.Min(1, math.Min(t, rest)/rampSeconds)

			// Fundamental plus a soft octave for a brighter alarm.
			sample = 0.8*math.Sin(2*math.Pi*g.cfg.FrequencyHz*t) +
				0.2*math.Sin(2*math.Pi*g.cfg.FrequencyHz*2*t)
			sample *= env * g.cfg.Volume
		}
		samples[i][0] = sample
		samples[i][1] = sample
		g.pos++
	}
	return len(samples), true
}

func (g *AlarmTone) Err() error {
	return nil
}
