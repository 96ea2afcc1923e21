package schedule

import (
	"context"
	"time"
)

type Repository interface {
	CreateSession(ctx context.Context, className string, startTime, endTime time.Time, capacity int) (*ClassSession, error)
	GetSessionByID(ctx context.Context, id string) (*ClassSession, error)
	ListUpcoming(ctx context.Context) ([]ClassSession, error)
	Reconcile(ctx context.Context, sessionID string) (*Reconciliation, error)
}
