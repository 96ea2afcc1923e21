package waitlist

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

var ErrEntryNotFound = errors.New("waitlist entry not found")

const joinRetries = 3

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

// Join appends the member at max(position)+1 for the session. The position is
// computed and inserted in a single statement; a unique index on
// (schedule_id, position) rejects the loser of a concurrent append, which is
// retried with a fresh max.
func (r *repository) Join(ctx context.Context, scheduleID, memberID string) (*Entry, error) {
	query := `
		INSERT INTO waitlist_entries (id, schedule_id, member_id, "position")
		SELECT $1, $2, $3, COALESCE(MAX("position"), 0) + 1
		FROM waitlist_entries
		WHERE schedule_id = $2
		RETURNING id, schedule_id, member_id, "position", notified_at, created_at
	`

	var lastErr error
	for attempt := 0; attempt < joinRetries; attempt++ {
		var entry Entry
		err := r.db.GetContext(ctx, &entry, query, uuid.NewString(), scheduleID, memberID)
		if err == nil {
			return &entry, nil
		}

		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			lastErr = err
			continue
		}
		return nil, err
	}

	return nil, lastErr
}

// Head returns the front of the queue, or nil if the waitlist is empty.
func (r *repository) Head(ctx context.Context, scheduleID string) (*Entry, error) {
	query := `
		SELECT id, schedule_id, member_id, "position", notified_at, created_at
		FROM waitlist_entries
		WHERE schedule_id = $1
		ORDER BY "position" ASC
		LIMIT 1
	`

	var entry Entry
	err := r.db.GetContext(ctx, &entry, query, scheduleID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return &entry, nil
}

func (r *repository) MarkNotified(ctx context.Context, entryID string) error {
	query := `
		UPDATE waitlist_entries
		SET notified_at = NOW()
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query, entryID)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrEntryNotFound
	}

	return nil
}

func (r *repository) ListBySession(ctx context.Context, scheduleID string) ([]Entry, error) {
	query := `
		SELECT id, schedule_id, member_id, "position", notified_at, created_at
		FROM waitlist_entries
		WHERE schedule_id = $1
		ORDER BY "position" ASC
	`

	var entries []Entry
	err := r.db.SelectContext(ctx, &entries, query, scheduleID)
	if err != nil {
		return nil, err
	}

	return entries, nil
}
