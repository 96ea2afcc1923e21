package schedule

import "time"

type ClassSession struct {
	ID          string    `db:"id" json:"id"`
	ClassName   string    `db:"class_name" json:"class_name"`
	StartTime   time.Time `db:"start_time" json:"start_time"`
	EndTime     time.Time `db:"end_time" json:"end_time"`
	Capacity    int       `db:"capacity" json:"capacity"`
	BookedCount int       `db:"booked_count" json:"booked_count"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

type SessionWithAvailability struct {
	ClassSession
	SpotsLeft int  `json:"spots_left"`
	IsFull    bool `json:"is_full"`
}

// Reconciliation compares the cached booked_count against a live count of
// confirmed bookings for the same session.
type Reconciliation struct {
	SessionID      string `db:"session_id" json:"session_id"`
	BookedCount    int    `db:"booked_count" json:"booked_count"`
	ConfirmedCount int    `db:"confirmed_count" json:"confirmed_count"`
	Drift          int    `json:"drift"`
}

type CreateSessionRequest struct {
	ClassName string `json:"class_name" binding:"required"`
	StartTime string `json:"start_time" binding:"required"`
	EndTime   string `json:"end_time" binding:"required"`
	Capacity  int    `json:"capacity" binding:"required,min=1"`
}
