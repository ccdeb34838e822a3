package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"gym_timer/internal/models"
)

type StateSQLite struct {
	db *sql.DB
}

func NewStateSQLite(db *sql.DB) *StateSQLite {
	return &StateSQLite{db: db}
}

const (
	timerStateRowID = 1

	insertOrUpdateStateSQL = `
		INSERT INTO timer_state (id, status, remaining_s, alarm_ringing, alarm_id, current_set, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			status=excluded.status,
			remaining_s=excluded.remaining_s,
			alarm_ringing=excluded.alarm_ringing,
			alarm_id=excluded.alarm_id,
			current_set=excluded.current_set,
			updated_at=excluded.updated_at
	`

	selectStateSQL = `
		SELECT id, status, remaining_s, alarm_ringing, alarm_id, current_set, updated_at
		FROM timer_state WHERE id=?
	`
)

// nullableSet maps the optional set counter to a SQL value.
func nullableSet(set *int) sql.NullInt64 {
	if set == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*set), Valid: true}
}

func nullableString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// Save upserts the timer_state row (id always 1).
func (r *StateSQLite) Save(ctx context.Context, state models.TimerState) error {
	tsUTC := state.UpdatedAt
	if tsUTC.IsZero() {
		tsUTC = time.Now().UTC()
	} else {
		tsUTC = tsUTC.UTC()
	}

	_, err := r.db.ExecContext(ctx, insertOrUpdateStateSQL,
		timerStateRowID,
		state.Status,
		state.RemainingSeconds,
		state.AlarmRinging,
		nullableString(state.AlarmID),
		nullableSet(state.CurrentSet),
		tsUTC,
	)
	return err
}

// Load fetches the timer_state row. A missing row yields the zero state.
func (r *StateSQLite) Load(ctx context.Context) (models.TimerState, error) {
	row := r.db.QueryRowContext(ctx, selectStateSQL, timerStateRowID)

	var (
		s       models.TimerState
		alarmID sql.NullString
		set     sql.NullInt64
	)
	if err := row.Scan(
		&s.ID,
		&s.Status,
		&s.RemainingSeconds,
		&s.AlarmRinging,
		&alarmID,
		&set,
		&s.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.TimerState{}, nil
		}
		return models.TimerState{}, err
	}

	if alarmID.Valid {
		s.AlarmID = alarmID.String
	}
	if set.Valid {
		v := int(set.Int64)
		s.CurrentSet = &v
	}
	s.Display = models.FormatClock(s.RemainingSeconds)
	s.UpdatedAt = s.UpdatedAt.UTC()
	return s, nil
}
