package service

import (
	"context"
	"errors"
	"strings"

	"gym_timer/internal/models"
	"gym_timer/internal/repository"
)

var (
	ErrInvalidTimeRange = errors.New("invalid time range: from must be <= to")
	ErrUnknownEventType = errors.New("unknown event type")
)

var knownEventTypes = map[string]struct{}{
	models.EventStart:      {},
	models.EventPause:      {},
	models.EventResume:     {},
	models.EventAddTime:    {},
	models.EventReset:      {},
	models.EventComplete:   {},
	models.EventAlarmStart: {},
	models.EventAlarmStop:  {},
	models.EventSetSelect:  {},
}

// EventLogService answers history queries over the persisted timer events.
type EventLogService struct {
	events repository.EventRepo
}

func NewEventLogService(events repository.EventRepo) *EventLogService {
	return &EventLogService{events: events}
}

// normalized returns the filter with bounds in UTC and the type in its
// canonical upper-case form. Zero bounds stay zero.
func (f LogFilter) normalized() (LogFilter, error) {
	out := LogFilter{From: f.From, To: f.To}
	if !out.From.IsZero() {
		out.From = out.From.UTC()
	}
	if !out.To.IsZero() {
		out.To = out.To.UTC()
	}
	if !out.From.IsZero() && !out.To.IsZero() && out.From.After(out.To) {
		return LogFilter{}, ErrInvalidTimeRange
	}

	out.Type = strings.ToUpper(strings.TrimSpace(f.Type))
	if out.Type != "" {
		if _, ok := knownEventTypes[out.Type]; !ok {
			return LogFilter{}, ErrUnknownEventType
		}
	}
	return out, nil
}

// List returns events matching f, oldest first.
func (s *EventLogService) List(ctx context.Context, f LogFilter) ([]models.TimerEvent, error) {
	q, err := f.normalized()
	if err != nil {
		return nil, err
	}
	return s.events.List(ctx, q.From, q.To, q.Type)
}
