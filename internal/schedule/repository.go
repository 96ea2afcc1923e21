package schedule

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateSession(ctx context.Context, className string, startTime, endTime time.Time, capacity int) (*ClassSession, error) {
	query := `
		INSERT INTO class_sessions (id, class_name, start_time, end_time, capacity)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, class_name, start_time, end_time, capacity, booked_count, created_at
	`

	var session ClassSession
	err := r.db.GetContext(ctx, &session, query, uuid.NewString(), className, startTime, endTime, capacity)
	if err != nil {
		return nil, err
	}

	return &session, nil
}

func (r *repository) GetSessionByID(ctx context.Context, id string) (*ClassSession, error) {
	query := `
		SELECT id, class_name, start_time, end_time, capacity, booked_count, created_at
		FROM class_sessions
		WHERE id = $1
	`

	var session ClassSession
	err := r.db.GetContext(ctx, &session, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}

	return &session, nil
}

func (r *repository) ListUpcoming(ctx context.Context) ([]ClassSession, error) {
	query := `
		SELECT id, class_name, start_time, end_time, capacity, booked_count, created_at
		FROM class_sessions
		WHERE start_time > NOW()
		ORDER BY start_time ASC
	`

	var sessions []ClassSession
	err := r.db.SelectContext(ctx, &sessions, query)
	if err != nil {
		return nil, err
	}

	return sessions, nil
}

func (r *repository) Reconcile(ctx context.Context, sessionID string) (*Reconciliation, error) {
	query := `
		SELECT
			cs.id AS session_id,
			cs.booked_count,
			(SELECT COUNT(*) FROM bookings b WHERE b.schedule_id = cs.id AND b.status = 'confirmed') AS confirmed_count
		FROM class_sessions cs
		WHERE cs.id = $1
	`

	var rec Reconciliation
	err := r.db.GetContext(ctx, &rec, query, sessionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}

	rec.Drift = rec.BookedCount - rec.ConfirmedCount
	return &rec, nil
}
