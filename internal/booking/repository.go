package booking

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

var (
	ErrSessionFull                       = errors.New("class session is full")
	ErrInsufficientCredits               = errors.New("insufficient class credits")
	ErrBookingNotFoundOrAlreadyCancelled = errors.New("booking not found or already cancelled")
)

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

// ConfirmBooking performs the confirm path as one transaction: claim a spot
// with a conditional counter bump, insert the booking, and spend a credit if
// the plan is metered. The conditional updates are what make concurrent
// bookings safe - the loser of a capacity race sees zero rows affected and
// the whole transaction rolls back.
func (r *repository) ConfirmBooking(ctx context.Context, memberID, scheduleID, membershipID string, creditsUsed int) (*Booking, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`UPDATE class_sessions
		 SET booked_count = booked_count + 1
		 WHERE id = $1 AND booked_count < capacity`,
		scheduleID,
	)
	if err != nil {
		return nil, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if rowsAffected == 0 {
		return nil, ErrSessionFull
	}

	var booking Booking
	err = tx.QueryRowxContext(ctx,
		`INSERT INTO bookings (id, member_id, schedule_id, status, credits_used)
		 VALUES ($1, $2, $3, 'confirmed', $4)
		 RETURNING id, member_id, schedule_id, status, credits_used, cancellation_reason, cancelled_at, created_at`,
		uuid.NewString(), memberID, scheduleID, creditsUsed,
	).StructScan(&booking)
	if err != nil {
		return nil, err
	}

	if creditsUsed > 0 {
		result, err = tx.ExecContext(ctx,
			`UPDATE memberships
			 SET remaining_credits = remaining_credits - 1, updated_at = NOW()
			 WHERE id = $1 AND remaining_credits >= 1`,
			membershipID,
		)
		if err != nil {
			return nil, err
		}

		rowsAffected, err = result.RowsAffected()
		if err != nil {
			return nil, err
		}
		if rowsAffected == 0 {
			return nil, ErrInsufficientCredits
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return &booking, nil
}

// CancelBooking flips the booking to cancelled, releases the spot with a
// floored counter decrement, and refunds the spent credit when eligible -
// all in one transaction. Returns whether a credit was actually refunded.
func (r *repository) CancelBooking(ctx context.Context, bookingID, scheduleID, memberID, reason string, refundEligible bool, creditsUsed int) (bool, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	var reasonArg interface{}
	if reason != "" {
		reasonArg = reason
	}

	result, err := tx.ExecContext(ctx,
		`UPDATE bookings
		 SET status = 'cancelled', cancelled_at = NOW(), cancellation_reason = $2
		 WHERE id = $1 AND status = 'confirmed'`,
		bookingID, reasonArg,
	)
	if err != nil {
		return false, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	if rowsAffected == 0 {
		return false, ErrBookingNotFoundOrAlreadyCancelled
	}

	// Floored at 0 in case the counter has already drifted.
	_, err = tx.ExecContext(ctx,
		`UPDATE class_sessions
		 SET booked_count = GREATEST(booked_count - 1, 0)
		 WHERE id = $1`,
		scheduleID,
	)
	if err != nil {
		return false, err
	}

	refunded := false
	if refundEligible && creditsUsed > 0 {
		result, err = tx.ExecContext(ctx,
			`UPDATE memberships
			 SET remaining_credits = remaining_credits + $2, updated_at = NOW()
			 WHERE member_id = $1 AND status = 'active' AND remaining_credits IS NOT NULL`,
			memberID, creditsUsed,
		)
		if err != nil {
			return false, err
		}

		rowsAffected, err = result.RowsAffected()
		if err != nil {
			return false, err
		}
		refunded = rowsAffected > 0
	}

	if err := tx.Commit(); err != nil {
		return false, err
	}

	return refunded, nil
}

func (r *repository) GetBookingByID(ctx context.Context, id string) (*Booking, error) {
	query := `
		SELECT id, member_id, schedule_id, status, credits_used, cancellation_reason, cancelled_at, created_at
		FROM bookings
		WHERE id = $1
	`

	var booking Booking
	err := r.db.GetContext(ctx, &booking, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}

	return &booking, nil
}

func (r *repository) HasConfirmedBooking(ctx context.Context, memberID, scheduleID string) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM bookings
			WHERE member_id = $1 AND schedule_id = $2 AND status = 'confirmed'
		)
	`

	var exists bool
	err := r.db.GetContext(ctx, &exists, query, memberID, scheduleID)
	if err != nil {
		return false, err
	}

	return exists, nil
}

func (r *repository) GetMemberBookings(ctx context.Context, memberID string) ([]BookingWithSession, error) {
	query := `
		SELECT
			b.id,
			b.member_id,
			b.schedule_id,
			b.status,
			b.credits_used,
			b.cancellation_reason,
			b.cancelled_at,
			b.created_at,
			cs.class_name,
			cs.start_time,
			cs.end_time,
			m.name AS member_name,
			m.email AS member_email
		FROM bookings b
		JOIN class_sessions cs ON b.schedule_id = cs.id
		JOIN members m ON b.member_id = m.id
		WHERE b.member_id = $1
		ORDER BY cs.start_time DESC, b.created_at DESC
	`

	var bookings []BookingWithSession
	err := r.db.SelectContext(ctx, &bookings, query, memberID)
	if err != nil {
		return nil, err
	}

	return bookings, nil
}

func (r *repository) GetBookingsBySession(ctx context.Context, scheduleID string) ([]BookingWithSession, error) {
	query := `
		SELECT
			b.id,
			b.member_id,
			b.schedule_id,
			b.status,
			b.credits_used,
			b.cancellation_reason,
			b.cancelled_at,
			b.created_at,
			cs.class_name,
			cs.start_time,
			cs.end_time,
			m.name AS member_name,
			m.email AS member_email
		FROM bookings b
		JOIN class_sessions cs ON b.schedule_id = cs.id
		JOIN members m ON b.member_id = m.id
		WHERE b.schedule_id = $1
		ORDER BY b.created_at DESC
	`

	var bookings []BookingWithSession
	err := r.db.SelectContext(ctx, &bookings, query, scheduleID)
	if err != nil {
		return nil, err
	}

	return bookings, nil
}
