package service

import (
	"context"
	"time"

	"gym_timer/internal/models"
)

// StateSource is anything that can report the live timer state.
type StateSource interface {
	GetState(ctx context.Context) (models.TimerState, error)
}

type MonitoringService struct {
	source  StateSource
	presets Presets
}

func NewMonitoringService(source StateSource, presets Presets) *MonitoringService {
	if len(presets.Durations) == 0 {
		presets.Durations = DefaultPresets().Durations
	}
	if presets.AddStep <= 0 {
		presets.AddStep = DefaultPresets().AddStep
	}
	return &MonitoringService{source: source, presets: presets}
}

// GetState returns the live timer state, or an idle baseline snapshot
// when the source has nothing yet.
func (s *MonitoringService) GetState(ctx context.Context) (models.TimerState, error) {
	state, err := s.source.GetState(ctx)
	if err != nil {
		return models.TimerState{}, err
	}
	if state.ID == 0 {
		return baselineState(), nil
	}
	state.UpdatedAt = toUTC(state.UpdatedAt)
	state.Display = models.FormatClock(state.RemainingSeconds)
	return state, nil
}

// Presets returns a copy of the configured presets.
func (s *MonitoringService) Presets() Presets {
	out := Presets{AddStep: s.presets.AddStep}
	out.Durations = append([]int(nil), s.presets.Durations...)
	return out
}

func baselineState() models.TimerState {
	return models.TimerState{
		ID:      stateRowID,
		Status:  models.StatusIdle,
		Display: models.FormatClock(0),
	}
}

// toUTC normalizes non-zero time to UTC, preserving zero values.
func toUTC(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.UTC()
}
