package repository

import (
	"context"
	"database/sql"
	"time"

	"gym_timer/internal/models"
)

type Authorization interface {
	Create(username, hash string) (int, error)
	GetByUsername(username string) (*models.User, error)
}

// StateRepo persists the single timer snapshot row.
type StateRepo interface {
	Save(ctx context.Context, s models.TimerState) error
	Load(ctx context.Context) (models.TimerState, error)
}

// EventRepo is the append-only timer event log.
type EventRepo interface {
	Append(ctx context.Context, e models.TimerEvent) error
	List(ctx context.Context, from, to time.Time, typ string) ([]models.TimerEvent, error)
}

type Repository struct {
	StateRepo StateRepo
	EventRepo EventRepo
	Auth      Authorization
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		StateRepo: NewStateSQLite(db),
		EventRepo: NewEventSQLite(db),
		Auth:      NewUserRepository(db),
	}
}
