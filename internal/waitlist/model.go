package waitlist

import "time"

// Entry is a member's place in line for a full class session. Positions are
// 1-based and assigned in arrival order; entries are never compacted, and a
// notified entry stays in the queue until the member books normally.
type Entry struct {
	ID         string     `db:"id" json:"id"`
	ScheduleID string     `db:"schedule_id" json:"schedule_id"`
	MemberID   string     `db:"member_id" json:"member_id"`
	Position   int        `db:"position" json:"position"`
	NotifiedAt *time.Time `db:"notified_at" json:"notified_at,omitempty"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
}
