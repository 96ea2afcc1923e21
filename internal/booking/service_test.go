package booking

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"movestrong/internal/email"
	"movestrong/internal/logger"
	"movestrong/internal/member"
	"movestrong/internal/schedule"
	"movestrong/internal/waitlist"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	logger.Init()

	code := m.Run()
	os.Exit(code)
}

// Mock repositories
type MockBookingRepo struct{ mock.Mock }
type MockScheduleRepo struct{ mock.Mock }
type MockMemberRepo struct{ mock.Mock }
type MockWaitlistRepo struct{ mock.Mock }

func (m *MockBookingRepo) ConfirmBooking(ctx context.Context, memberID, scheduleID, membershipID string, creditsUsed int) (*Booking, error) {
	args := m.Called(ctx, memberID, scheduleID, membershipID, creditsUsed)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Booking), args.Error(1)
}

func (m *MockBookingRepo) CancelBooking(ctx context.Context, bookingID, scheduleID, memberID, reason string, refundEligible bool, creditsUsed int) (bool, error) {
	args := m.Called(ctx, bookingID, scheduleID, memberID, reason, refundEligible, creditsUsed)
	return args.Bool(0), args.Error(1)
}

func (m *MockBookingRepo) GetBookingByID(ctx context.Context, id string) (*Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Booking), args.Error(1)
}

func (m *MockBookingRepo) HasConfirmedBooking(ctx context.Context, memberID, scheduleID string) (bool, error) {
	args := m.Called(ctx, memberID, scheduleID)
	return args.Bool(0), args.Error(1)
}

func (m *MockBookingRepo) GetMemberBookings(ctx context.Context, memberID string) ([]BookingWithSession, error) {
	args := m.Called(ctx, memberID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]BookingWithSession), args.Error(1)
}

func (m *MockBookingRepo) GetBookingsBySession(ctx context.Context, scheduleID string) ([]BookingWithSession, error) {
	args := m.Called(ctx, scheduleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]BookingWithSession), args.Error(1)
}

func (m *MockScheduleRepo) CreateSession(ctx context.Context, className string, startTime, endTime time.Time, capacity int) (*schedule.ClassSession, error) {
	args := m.Called(ctx, className, startTime, endTime, capacity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*schedule.ClassSession), args.Error(1)
}

func (m *MockScheduleRepo) GetSessionByID(ctx context.Context, id string) (*schedule.ClassSession, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*schedule.ClassSession), args.Error(1)
}

func (m *MockScheduleRepo) ListUpcoming(ctx context.Context) ([]schedule.ClassSession, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]schedule.ClassSession), args.Error(1)
}

func (m *MockScheduleRepo) Reconcile(ctx context.Context, sessionID string) (*schedule.Reconciliation, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*schedule.Reconciliation), args.Error(1)
}

func (m *MockMemberRepo) Create(ctx context.Context, name, email, passwordHash, role string) (*member.Member, error) {
	args := m.Called(ctx, name, email, passwordHash, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*member.Member), args.Error(1)
}

func (m *MockMemberRepo) FindByEmail(ctx context.Context, email string) (*member.Member, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*member.Member), args.Error(1)
}

func (m *MockMemberRepo) FindByID(ctx context.Context, id string) (*member.Member, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*member.Member), args.Error(1)
}

func (m *MockMemberRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockMemberRepo) GetActiveMembership(ctx context.Context, memberID string) (*member.MembershipWithPlan, error) {
	args := m.Called(ctx, memberID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*member.MembershipWithPlan), args.Error(1)
}

func (m *MockMemberRepo) GrantMembership(ctx context.Context, memberID, planID string) (*member.Membership, error) {
	args := m.Called(ctx, memberID, planID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*member.Membership), args.Error(1)
}

func (m *MockMemberRepo) ListPlans(ctx context.Context) ([]member.Plan, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]member.Plan), args.Error(1)
}

func (m *MockMemberRepo) GetPlanByID(ctx context.Context, id string) (*member.Plan, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*member.Plan), args.Error(1)
}

func (m *MockWaitlistRepo) Join(ctx context.Context, scheduleID, memberID string) (*waitlist.Entry, error) {
	args := m.Called(ctx, scheduleID, memberID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*waitlist.Entry), args.Error(1)
}

func (m *MockWaitlistRepo) Head(ctx context.Context, scheduleID string) (*waitlist.Entry, error) {
	args := m.Called(ctx, scheduleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*waitlist.Entry), args.Error(1)
}

func (m *MockWaitlistRepo) MarkNotified(ctx context.Context, entryID string) error {
	return m.Called(ctx, entryID).Error(0)
}

func (m *MockWaitlistRepo) ListBySession(ctx context.Context, scheduleID string) ([]waitlist.Entry, error) {
	args := m.Called(ctx, scheduleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]waitlist.Entry), args.Error(1)
}

func intPtr(v int) *int { return &v }

func newTestService(br *MockBookingRepo, sr *MockScheduleRepo, mr *MockMemberRepo, wr *MockWaitlistRepo) *service {
	emailService := email.New("from@test.com", "Test", "localhost", "1025", "", "", "localhost:6379")
	return NewService(br, sr, mr, wr, emailService).(*service)
}

func creditMembership(credits int) *member.MembershipWithPlan {
	return &member.MembershipWithPlan{
		Membership: member.Membership{
			ID:               "ms-1",
			MemberID:         "member-1",
			PlanID:           "plan-1",
			Status:           member.MembershipActive,
			RemainingCredits: intPtr(credits),
		},
		PlanName:         "Drop-In 10 Pack",
		UnlimitedClasses: false,
	}
}

func unlimitedMembership() *member.MembershipWithPlan {
	return &member.MembershipWithPlan{
		Membership: member.Membership{
			ID:       "ms-2",
			MemberID: "member-1",
			PlanID:   "plan-2",
			Status:   member.MembershipActive,
		},
		PlanName:         "Unlimited Monthly",
		UnlimitedClasses: true,
	}
}

func TestService_BookClass(t *testing.T) {
	futureTime := time.Now().Add(24 * time.Hour)
	pastTime := time.Now().Add(-24 * time.Hour)

	tests := []struct {
		name        string
		setupMocks  func(*MockBookingRepo, *MockScheduleRepo, *MockMemberRepo, *MockWaitlistRepo)
		expectErr   error
		checkResult func(*testing.T, *BookResult)
	}{
		{
			name: "confirms with credit plan and spends one credit",
			setupMocks: func(br *MockBookingRepo, sr *MockScheduleRepo, mr *MockMemberRepo, wr *MockWaitlistRepo) {
				br.On("HasConfirmedBooking", mock.Anything, "member-1", "sched-1").Return(false, nil)
				mr.On("GetActiveMembership", mock.Anything, "member-1").Return(creditMembership(5), nil)
				sr.On("GetSessionByID", mock.Anything, "sched-1").Return(&schedule.ClassSession{
					ID:          "sched-1",
					ClassName:   "Kettlebell Strength",
					StartTime:   futureTime,
					EndTime:     futureTime.Add(time.Hour),
					Capacity:    12,
					BookedCount: 4,
				}, nil)
				br.On("ConfirmBooking", mock.Anything, "member-1", "sched-1", "ms-1", 1).Return(&Booking{
					ID:          "bk-1",
					MemberID:    "member-1",
					ScheduleID:  "sched-1",
					Status:      StatusConfirmed,
					CreditsUsed: 1,
				}, nil)
				mr.On("FindByID", mock.Anything, "member-1").Return(&member.Member{
					ID:    "member-1",
					Name:  "Alex",
					Email: "alex@example.com",
				}, nil)
			},
			checkResult: func(t *testing.T, result *BookResult) {
				assert.Equal(t, StatusConfirmed, result.Status)
				assert.Equal(t, 1, result.Booking.CreditsUsed)
				assert.Equal(t, "Kettlebell Strength", result.ClassName)
			},
		},
		{
			name: "unlimited plan never spends credits",
			setupMocks: func(br *MockBookingRepo, sr *MockScheduleRepo, mr *MockMemberRepo, wr *MockWaitlistRepo) {
				br.On("HasConfirmedBooking", mock.Anything, "member-1", "sched-1").Return(false, nil)
				mr.On("GetActiveMembership", mock.Anything, "member-1").Return(unlimitedMembership(), nil)
				sr.On("GetSessionByID", mock.Anything, "sched-1").Return(&schedule.ClassSession{
					ID:        "sched-1",
					ClassName: "Mobility Flow",
					StartTime: futureTime,
					Capacity:  12,
				}, nil)
				br.On("ConfirmBooking", mock.Anything, "member-1", "sched-1", "ms-2", 0).Return(&Booking{
					ID:          "bk-2",
					MemberID:    "member-1",
					ScheduleID:  "sched-1",
					Status:      StatusConfirmed,
					CreditsUsed: 0,
				}, nil)
				mr.On("FindByID", mock.Anything, "member-1").Return(&member.Member{
					ID:    "member-1",
					Email: "alex@example.com",
				}, nil)
			},
			checkResult: func(t *testing.T, result *BookResult) {
				assert.Equal(t, StatusConfirmed, result.Status)
				assert.Equal(t, 0, result.Booking.CreditsUsed)
			},
		},
		{
			name: "rejects duplicate booking before anything else",
			setupMocks: func(br *MockBookingRepo, sr *MockScheduleRepo, mr *MockMemberRepo, wr *MockWaitlistRepo) {
				br.On("HasConfirmedBooking", mock.Anything, "member-1", "sched-1").Return(true, nil)
			},
			expectErr: ErrAlreadyBooked,
		},
		{
			name: "rejects when no active membership",
			setupMocks: func(br *MockBookingRepo, sr *MockScheduleRepo, mr *MockMemberRepo, wr *MockWaitlistRepo) {
				br.On("HasConfirmedBooking", mock.Anything, "member-1", "sched-1").Return(false, nil)
				mr.On("GetActiveMembership", mock.Anything, "member-1").Return(nil, member.ErrNoActiveMembership)
			},
			expectErr: ErrNoMembership,
		},
		{
			name: "rejects when credit balance is empty",
			setupMocks: func(br *MockBookingRepo, sr *MockScheduleRepo, mr *MockMemberRepo, wr *MockWaitlistRepo) {
				br.On("HasConfirmedBooking", mock.Anything, "member-1", "sched-1").Return(false, nil)
				mr.On("GetActiveMembership", mock.Anything, "member-1").Return(creditMembership(0), nil)
			},
			expectErr: ErrNoCredits,
		},
		{
			name: "rejects unknown session",
			setupMocks: func(br *MockBookingRepo, sr *MockScheduleRepo, mr *MockMemberRepo, wr *MockWaitlistRepo) {
				br.On("HasConfirmedBooking", mock.Anything, "member-1", "sched-1").Return(false, nil)
				mr.On("GetActiveMembership", mock.Anything, "member-1").Return(creditMembership(5), nil)
				sr.On("GetSessionByID", mock.Anything, "sched-1").Return(nil, schedule.ErrSessionNotFound)
			},
			expectErr: ErrClassNotFound,
		},
		{
			name: "rejects class that already started",
			setupMocks: func(br *MockBookingRepo, sr *MockScheduleRepo, mr *MockMemberRepo, wr *MockWaitlistRepo) {
				br.On("HasConfirmedBooking", mock.Anything, "member-1", "sched-1").Return(false, nil)
				mr.On("GetActiveMembership", mock.Anything, "member-1").Return(creditMembership(5), nil)
				sr.On("GetSessionByID", mock.Anything, "sched-1").Return(&schedule.ClassSession{
					ID:        "sched-1",
					ClassName: "Morning HIIT",
					StartTime: pastTime,
					Capacity:  12,
				}, nil)
			},
			expectErr: ErrClassStarted,
		},
		{
			name: "full session falls through to the waitlist",
			setupMocks: func(br *MockBookingRepo, sr *MockScheduleRepo, mr *MockMemberRepo, wr *MockWaitlistRepo) {
				br.On("HasConfirmedBooking", mock.Anything, "member-1", "sched-1").Return(false, nil)
				mr.On("GetActiveMembership", mock.Anything, "member-1").Return(creditMembership(5), nil)
				sr.On("GetSessionByID", mock.Anything, "sched-1").Return(&schedule.ClassSession{
					ID:          "sched-1",
					ClassName:   "Power Yoga",
					StartTime:   futureTime,
					Capacity:    1,
					BookedCount: 1,
				}, nil)
				br.On("ConfirmBooking", mock.Anything, "member-1", "sched-1", "ms-1", 1).Return(nil, ErrSessionFull)
				wr.On("Join", mock.Anything, "sched-1", "member-1").Return(&waitlist.Entry{
					ID:         "wl-1",
					ScheduleID: "sched-1",
					MemberID:   "member-1",
					Position:   1,
				}, nil)
			},
			checkResult: func(t *testing.T, result *BookResult) {
				assert.Equal(t, StatusWaitlisted, result.Status)
				assert.Equal(t, 1, result.Position)
				assert.Equal(t, "Class is full. You're #1 on the waitlist.", result.Message)
				assert.Nil(t, result.Booking)
			},
		},
		{
			name: "concurrent credit spend loss maps to no credits",
			setupMocks: func(br *MockBookingRepo, sr *MockScheduleRepo, mr *MockMemberRepo, wr *MockWaitlistRepo) {
				br.On("HasConfirmedBooking", mock.Anything, "member-1", "sched-1").Return(false, nil)
				mr.On("GetActiveMembership", mock.Anything, "member-1").Return(creditMembership(1), nil)
				sr.On("GetSessionByID", mock.Anything, "sched-1").Return(&schedule.ClassSession{
					ID:        "sched-1",
					ClassName: "Spin",
					StartTime: futureTime,
					Capacity:  12,
				}, nil)
				br.On("ConfirmBooking", mock.Anything, "member-1", "sched-1", "ms-1", 1).Return(nil, ErrInsufficientCredits)
			},
			expectErr: ErrNoCredits,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			br := new(MockBookingRepo)
			sr := new(MockScheduleRepo)
			mr := new(MockMemberRepo)
			wr := new(MockWaitlistRepo)

			tt.setupMocks(br, sr, mr, wr)

			svc := newTestService(br, sr, mr, wr)
			result, err := svc.BookClass(context.Background(), "sched-1", "member-1")

			if tt.expectErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.expectErr)
				assert.Nil(t, result)
			} else {
				require.NoError(t, err)
				require.NotNil(t, result)
				tt.checkResult(t, result)
			}

			br.AssertExpectations(t)
			mr.AssertExpectations(t)
			sr.AssertExpectations(t)
			wr.AssertExpectations(t)
		})
	}
}

func TestService_BookClass_SessionStoreFailureIsNotNotFound(t *testing.T) {
	br := new(MockBookingRepo)
	sr := new(MockScheduleRepo)
	mr := new(MockMemberRepo)
	wr := new(MockWaitlistRepo)

	storeErr := errors.New("connection refused")

	br.On("HasConfirmedBooking", mock.Anything, "member-1", "sched-1").Return(false, nil)
	mr.On("GetActiveMembership", mock.Anything, "member-1").Return(creditMembership(5), nil)
	sr.On("GetSessionByID", mock.Anything, "sched-1").Return(nil, storeErr)

	svc := newTestService(br, sr, mr, wr)
	result, err := svc.BookClass(context.Background(), "sched-1", "member-1")

	require.Error(t, err)
	assert.ErrorIs(t, err, storeErr)
	assert.NotErrorIs(t, err, ErrClassNotFound)
	assert.Nil(t, result)
}

func TestService_BookClass_WaitlistDoesNotTouchCounters(t *testing.T) {
	futureTime := time.Now().Add(24 * time.Hour)

	br := new(MockBookingRepo)
	sr := new(MockScheduleRepo)
	mr := new(MockMemberRepo)
	wr := new(MockWaitlistRepo)

	br.On("HasConfirmedBooking", mock.Anything, "member-2", "sched-1").Return(false, nil)
	mr.On("GetActiveMembership", mock.Anything, "member-2").Return(creditMembership(3), nil)
	sr.On("GetSessionByID", mock.Anything, "sched-1").Return(&schedule.ClassSession{
		ID:          "sched-1",
		ClassName:   "Power Yoga",
		StartTime:   futureTime,
		Capacity:    1,
		BookedCount: 1,
	}, nil)
	br.On("ConfirmBooking", mock.Anything, "member-2", "sched-1", "ms-1", 1).Return(nil, ErrSessionFull)
	wr.On("Join", mock.Anything, "sched-1", "member-2").Return(&waitlist.Entry{
		ID:       "wl-2",
		Position: 2,
	}, nil)

	svc := newTestService(br, sr, mr, wr)
	result, err := svc.BookClass(context.Background(), "sched-1", "member-2")

	require.NoError(t, err)
	assert.Equal(t, StatusWaitlisted, result.Status)
	assert.Equal(t, 2, result.Position)

	// The waitlist path must not spend a credit or send a confirmation.
	mr.AssertNotCalled(t, "FindByID", mock.Anything, "member-2")
	br.AssertExpectations(t)
}

func TestService_CancelBooking(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	confirmedBooking := func(creditsUsed int) *Booking {
		return &Booking{
			ID:          "bk-1",
			MemberID:    "member-1",
			ScheduleID:  "sched-1",
			Status:      StatusConfirmed,
			CreditsUsed: creditsUsed,
		}
	}

	session := func(start time.Time) *schedule.ClassSession {
		return &schedule.ClassSession{
			ID:          "sched-1",
			ClassName:   "Kettlebell Strength",
			StartTime:   start,
			Capacity:    12,
			BookedCount: 5,
		}
	}

	tests := []struct {
		name         string
		startTime    time.Time
		booking      *Booking
		wantEligible bool
		wantRefunded bool
		wantMessage  string
	}{
		{
			name:         "refund at exactly the two hour boundary",
			startTime:    now.Add(2 * time.Hour),
			booking:      confirmedBooking(1),
			wantEligible: true,
			wantRefunded: true,
			wantMessage:  "Booking cancelled. Your credit has been refunded.",
		},
		{
			name:         "no refund one second inside the window",
			startTime:    now.Add(2*time.Hour - time.Second),
			booking:      confirmedBooking(1),
			wantEligible: false,
			wantRefunded: false,
			wantMessage:  "Booking cancelled. Cancellations within 2 hours of class start are not refunded.",
		},
		{
			// A lapsed or replaced membership leaves no balance to credit, so
			// the conditional refund update matches no row.
			name:         "eligible refund with no active balance to credit",
			startTime:    now.Add(3 * time.Hour),
			booking:      confirmedBooking(1),
			wantEligible: true,
			wantRefunded: false,
			wantMessage:  "Booking cancelled. No credit was refunded.",
		},
		{
			name:         "unlimited booking never refunds regardless of timing",
			startTime:    now.Add(48 * time.Hour),
			booking:      confirmedBooking(0),
			wantEligible: false,
			wantRefunded: false,
			wantMessage:  "Booking cancelled.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			br := new(MockBookingRepo)
			sr := new(MockScheduleRepo)
			mr := new(MockMemberRepo)
			wr := new(MockWaitlistRepo)

			br.On("GetBookingByID", mock.Anything, "bk-1").Return(tt.booking, nil)
			sr.On("GetSessionByID", mock.Anything, "sched-1").Return(session(tt.startTime), nil)
			br.On("CancelBooking", mock.Anything, "bk-1", "sched-1", "member-1", "", tt.wantEligible, tt.booking.CreditsUsed).
				Return(tt.wantRefunded, nil)
			mr.On("FindByID", mock.Anything, "member-1").Return(&member.Member{
				ID:    "member-1",
				Email: "alex@example.com",
			}, nil)
			wr.On("Head", mock.Anything, "sched-1").Return(nil, nil)

			svc := newTestService(br, sr, mr, wr)
			svc.now = func() time.Time { return now }

			result, err := svc.CancelBooking(context.Background(), "bk-1", "member-1", "")

			require.NoError(t, err)
			assert.Equal(t, tt.wantRefunded, result.CreditRefunded)
			assert.Equal(t, tt.wantMessage, result.Message)
			br.AssertExpectations(t)
		})
	}
}

func TestService_CancelBooking_Rejections(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		setupMocks func(*MockBookingRepo, *MockScheduleRepo)
		expectErr  error
	}{
		{
			name: "unknown booking",
			setupMocks: func(br *MockBookingRepo, sr *MockScheduleRepo) {
				br.On("GetBookingByID", mock.Anything, "bk-1").Return(nil, ErrBookingNotFound)
			},
			expectErr: ErrBookingNotFound,
		},
		{
			name: "someone else's booking reads as not found",
			setupMocks: func(br *MockBookingRepo, sr *MockScheduleRepo) {
				br.On("GetBookingByID", mock.Anything, "bk-1").Return(&Booking{
					ID:         "bk-1",
					MemberID:   "member-9",
					ScheduleID: "sched-1",
					Status:     StatusConfirmed,
				}, nil)
			},
			expectErr: ErrBookingNotFound,
		},
		{
			name: "already cancelled",
			setupMocks: func(br *MockBookingRepo, sr *MockScheduleRepo) {
				br.On("GetBookingByID", mock.Anything, "bk-1").Return(&Booking{
					ID:         "bk-1",
					MemberID:   "member-1",
					ScheduleID: "sched-1",
					Status:     StatusCancelled,
				}, nil)
			},
			expectErr: ErrAlreadyCancelled,
		},
		{
			name: "class already started",
			setupMocks: func(br *MockBookingRepo, sr *MockScheduleRepo) {
				br.On("GetBookingByID", mock.Anything, "bk-1").Return(&Booking{
					ID:          "bk-1",
					MemberID:    "member-1",
					ScheduleID:  "sched-1",
					Status:      StatusConfirmed,
					CreditsUsed: 1,
				}, nil)
				sr.On("GetSessionByID", mock.Anything, "sched-1").Return(&schedule.ClassSession{
					ID:        "sched-1",
					StartTime: now.Add(-time.Hour),
				}, nil)
			},
			expectErr: ErrClassStarted,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			br := new(MockBookingRepo)
			sr := new(MockScheduleRepo)
			mr := new(MockMemberRepo)
			wr := new(MockWaitlistRepo)

			tt.setupMocks(br, sr)

			svc := newTestService(br, sr, mr, wr)
			svc.now = func() time.Time { return now }

			result, err := svc.CancelBooking(context.Background(), "bk-1", "member-1", "schedule conflict")

			require.Error(t, err)
			assert.ErrorIs(t, err, tt.expectErr)
			assert.Nil(t, result)
			br.AssertExpectations(t)
		})
	}
}

func TestService_CancelBooking_LookupFailureIsNotNotFound(t *testing.T) {
	br := new(MockBookingRepo)
	sr := new(MockScheduleRepo)
	mr := new(MockMemberRepo)
	wr := new(MockWaitlistRepo)

	storeErr := errors.New("connection refused")
	br.On("GetBookingByID", mock.Anything, "bk-1").Return(nil, storeErr)

	svc := newTestService(br, sr, mr, wr)
	result, err := svc.CancelBooking(context.Background(), "bk-1", "member-1", "")

	require.Error(t, err)
	assert.ErrorIs(t, err, storeErr)
	assert.NotErrorIs(t, err, ErrBookingNotFound)
	assert.Nil(t, result)
}

func TestService_CancelBooking_NotifiesWaitlistHead(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	start := now.Add(5 * time.Hour)

	br := new(MockBookingRepo)
	sr := new(MockScheduleRepo)
	mr := new(MockMemberRepo)
	wr := new(MockWaitlistRepo)

	br.On("GetBookingByID", mock.Anything, "bk-1").Return(&Booking{
		ID:          "bk-1",
		MemberID:    "member-1",
		ScheduleID:  "sched-1",
		Status:      StatusConfirmed,
		CreditsUsed: 1,
	}, nil)
	sr.On("GetSessionByID", mock.Anything, "sched-1").Return(&schedule.ClassSession{
		ID:        "sched-1",
		ClassName: "Power Yoga",
		StartTime: start,
	}, nil)
	br.On("CancelBooking", mock.Anything, "bk-1", "sched-1", "member-1", "", true, 1).Return(true, nil)
	mr.On("FindByID", mock.Anything, "member-1").Return(&member.Member{
		ID:    "member-1",
		Email: "alex@example.com",
	}, nil)
	wr.On("Head", mock.Anything, "sched-1").Return(&waitlist.Entry{
		ID:         "wl-1",
		ScheduleID: "sched-1",
		MemberID:   "member-7",
		Position:   1,
	}, nil)
	wr.On("MarkNotified", mock.Anything, "wl-1").Return(nil)
	mr.On("FindByID", mock.Anything, "member-7").Return(&member.Member{
		ID:    "member-7",
		Email: "sam@example.com",
	}, nil)

	svc := newTestService(br, sr, mr, wr)
	svc.now = func() time.Time { return now }

	result, err := svc.CancelBooking(context.Background(), "bk-1", "member-1", "")

	require.NoError(t, err)
	assert.True(t, result.CreditRefunded)
	wr.AssertExpectations(t)
}

func TestService_CancelBooking_NotifyFailureDoesNotFailCancellation(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	br := new(MockBookingRepo)
	sr := new(MockScheduleRepo)
	mr := new(MockMemberRepo)
	wr := new(MockWaitlistRepo)

	br.On("GetBookingByID", mock.Anything, "bk-1").Return(&Booking{
		ID:          "bk-1",
		MemberID:    "member-1",
		ScheduleID:  "sched-1",
		Status:      StatusConfirmed,
		CreditsUsed: 1,
	}, nil)
	sr.On("GetSessionByID", mock.Anything, "sched-1").Return(&schedule.ClassSession{
		ID:        "sched-1",
		StartTime: now.Add(5 * time.Hour),
	}, nil)
	br.On("CancelBooking", mock.Anything, "bk-1", "sched-1", "member-1", "", true, 1).Return(true, nil)
	mr.On("FindByID", mock.Anything, "member-1").Return(&member.Member{ID: "member-1"}, nil)
	wr.On("Head", mock.Anything, "sched-1").Return(nil, errors.New("connection refused"))

	svc := newTestService(br, sr, mr, wr)
	svc.now = func() time.Time { return now }

	result, err := svc.CancelBooking(context.Background(), "bk-1", "member-1", "")

	require.NoError(t, err)
	assert.True(t, result.CreditRefunded)
}
