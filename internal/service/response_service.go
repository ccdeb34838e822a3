package service

import (
	"time"

	"gym_timer/internal/models"
)

// LogFilter supports history filtering by time range and type.
type LogFilter struct {
	From time.Time // inclusive; zero means no lower bound
	To   time.Time // inclusive; zero means no upper bound
	Type string    // "", "START", "PAUSE", "RESUME", "ADD_TIME", "RESET", "COMPLETE", "ALARM_START", "ALARM_STOP", "SET_SELECT"
}

// Presets are the quick-start durations offered to clients.
type Presets struct {
	Durations []int `json:"durations"` // seconds
	AddStep   int   `json:"add_step"`  // seconds added by the "+" button
}

// DefaultPresets mirrors the buttons of the mobile app.
func DefaultPresets() Presets {
	return Presets{Durations: []int{60, 90, 120}, AddStep: 10}
}

// AlarmPayload is published when an alarm starts or stops.
type AlarmPayload struct {
	ID      string            `json:"id"`
	Ringing bool              `json:"ringing"`
	Reason  string            `json:"reason,omitempty"`
	Output  string            `json:"output,omitempty"`
	State   models.TimerState `json:"state"`
}
