package schedule

import (
	"context"
	"errors"
	"time"
)

var (
	ErrSessionNotFound = errors.New("class session not found")
	ErrSessionInvalid  = errors.New("invalid class session")
)

type Service interface {
	CreateSession(ctx context.Context, req CreateSessionRequest) (*ClassSession, error)
	GetSessionByID(ctx context.Context, id string) (*ClassSession, error)
	ListUpcoming(ctx context.Context) ([]SessionWithAvailability, error)
	Reconcile(ctx context.Context, sessionID string) (*Reconciliation, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) CreateSession(ctx context.Context, req CreateSessionRequest) (*ClassSession, error) {
	startTime, err := time.Parse(time.RFC3339, req.StartTime)
	if err != nil {
		return nil, ErrSessionInvalid
	}

	endTime, err := time.Parse(time.RFC3339, req.EndTime)
	if err != nil {
		return nil, ErrSessionInvalid
	}

	if !endTime.After(startTime) {
		return nil, ErrSessionInvalid
	}

	if req.Capacity <= 0 {
		return nil, ErrSessionInvalid
	}

	return s.repo.CreateSession(ctx, req.ClassName, startTime, endTime, req.Capacity)
}

// GetSessionByID passes the repository error through untouched: missing rows
// already surface as ErrSessionNotFound, anything else is an infrastructure
// failure the caller must not mistake for a 404.
func (s *service) GetSessionByID(ctx context.Context, id string) (*ClassSession, error) {
	return s.repo.GetSessionByID(ctx, id)
}

func (s *service) ListUpcoming(ctx context.Context) ([]SessionWithAvailability, error) {
	sessions, err := s.repo.ListUpcoming(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]SessionWithAvailability, 0, len(sessions))
	for _, session := range sessions {
		spotsLeft := session.Capacity - session.BookedCount
		if spotsLeft < 0 {
			spotsLeft = 0
		}

		result = append(result, SessionWithAvailability{
			ClassSession: session,
			SpotsLeft:    spotsLeft,
			IsFull:       spotsLeft == 0,
		})
	}

	return result, nil
}

func (s *service) Reconcile(ctx context.Context, sessionID string) (*Reconciliation, error) {
	return s.repo.Reconcile(ctx, sessionID)
}
