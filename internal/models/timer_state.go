package models

import (
	"fmt"
	"time"
)

// Timer status values.
const (
	StatusIdle      = "IDLE"
	StatusRunning   = "RUNNING"
	StatusPaused    = "PAUSED"
	StatusCompleted = "COMPLETED"
)

// TimerState is the snapshot shown to clients and persisted as a single row.
type TimerState struct {
	ID               int       `json:"id"`
	Status           string    `json:"status"`            // IDLE | RUNNING | PAUSED | COMPLETED
	RemainingSeconds int       `json:"remaining_seconds"` // seconds
	Display          string    `json:"display"`           // m:ss
	AlarmRinging     bool      `json:"alarm_ringing"`
	AlarmID          string    `json:"alarm_id,omitempty"`
	CurrentSet       *int      `json:"current_set,omitempty"` // 1..5, nil when not tracking sets
	UpdatedAt        time.Time `json:"updated_at"`
}

// FormatClock renders seconds as m:ss.
func FormatClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}
