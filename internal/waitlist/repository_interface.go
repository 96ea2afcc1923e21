package waitlist

import "context"

type Repository interface {
	Join(ctx context.Context, scheduleID, memberID string) (*Entry, error)
	Head(ctx context.Context, scheduleID string) (*Entry, error)
	MarkNotified(ctx context.Context, entryID string) error
	ListBySession(ctx context.Context, scheduleID string) ([]Entry, error)
}
