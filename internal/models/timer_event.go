package models

import "time"

// Event types stored in the event log.
const (
	EventStart      = "START"
	EventPause      = "PAUSE"
	EventResume     = "RESUME"
	EventAddTime    = "ADD_TIME"
	EventReset      = "RESET"
	EventComplete   = "COMPLETE"
	EventAlarmStart = "ALARM_START"
	EventAlarmStop  = "ALARM_STOP"
	EventSetSelect  = "SET_SELECT"
)

// TimerEvent is a single log entry.
type TimerEvent struct {
	EventID     string    `json:"event_id"`
	OccurredAt  time.Time `json:"occurred_at"`
	Type        string    `json:"type"`        // START | PAUSE | RESUME | ADD_TIME | RESET | COMPLETE | ALARM_START | ALARM_STOP | SET_SELECT
	Description string    `json:"description"` // human-readable
	Metadata    any       `json:"metadata,omitempty"`
}
