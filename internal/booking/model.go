package booking

import "time"

const (
	StatusConfirmed  = "confirmed"
	StatusCancelled  = "cancelled"
	StatusWaitlisted = "waitlisted"
)

type Booking struct {
	ID                 string     `db:"id" json:"id"`
	MemberID           string     `db:"member_id" json:"member_id"`
	ScheduleID         string     `db:"schedule_id" json:"schedule_id"`
	Status             string     `db:"status" json:"status"`
	CreditsUsed        int        `db:"credits_used" json:"credits_used"`
	CancellationReason *string    `db:"cancellation_reason" json:"cancellation_reason,omitempty"`
	CancelledAt        *time.Time `db:"cancelled_at" json:"cancelled_at,omitempty"`
	CreatedAt          time.Time  `db:"created_at" json:"created_at"`
}

type BookingWithSession struct {
	Booking
	ClassName   string    `db:"class_name" json:"class_name"`
	StartTime   time.Time `db:"start_time" json:"start_time"`
	EndTime     time.Time `db:"end_time" json:"end_time"`
	MemberName  string    `db:"member_name" json:"member_name"`
	MemberEmail string    `db:"member_email" json:"member_email"`
}

type BookClassRequest struct {
	ScheduleID string `json:"scheduleId"`
	UserID     string `json:"userId"`
}

type CancelBookingRequest struct {
	BookingID string `json:"bookingId"`
	UserID    string `json:"userId"`
	Reason    string `json:"reason"`
}

type BookClassResponse struct {
	Status    string   `json:"status" example:"confirmed"`
	Booking   *Booking `json:"booking,omitempty"`
	Position  int      `json:"position,omitempty" example:"3"`
	Message   string   `json:"message"`
	ClassName string   `json:"className,omitempty"`
	StartTime string   `json:"startTime,omitempty"`
}

type CancelBookingResponse struct {
	Success        bool   `json:"success"`
	CreditRefunded bool   `json:"creditRefunded"`
	Message        string `json:"message"`
}
