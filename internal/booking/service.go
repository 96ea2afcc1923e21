package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"movestrong/internal/email"
	"movestrong/internal/logger"
	"movestrong/internal/member"
	"movestrong/internal/metrics"
	"movestrong/internal/schedule"
	"movestrong/internal/waitlist"
)

// CancellationWindow is the minimum lead time before class start for a
// cancellation to refund the spent credit. A hard cutoff, not prorated.
const CancellationWindow = 2 * time.Hour

var (
	ErrAlreadyBooked    = errors.New("member already has a booking for this class")
	ErrNoMembership     = errors.New("no active membership")
	ErrNoCredits        = errors.New("no class credits remaining")
	ErrClassNotFound    = errors.New("class not found")
	ErrClassStarted     = errors.New("class has already started")
	ErrBookingNotFound  = errors.New("booking not found")
	ErrAlreadyCancelled = errors.New("booking is already cancelled")
)

type BookResult struct {
	Status    string
	Booking   *Booking
	Position  int
	ClassName string
	StartTime time.Time
	Message   string
}

type CancelResult struct {
	CreditRefunded bool
	Message        string
}

type Service interface {
	BookClass(ctx context.Context, scheduleID, memberID string) (*BookResult, error)
	CancelBooking(ctx context.Context, bookingID, memberID, reason string) (*CancelResult, error)
	GetMemberBookings(ctx context.Context, memberID string) ([]BookingWithSession, error)
	GetBookingsBySession(ctx context.Context, scheduleID string) ([]BookingWithSession, error)
}

type service struct {
	bookingRepo  Repository
	scheduleRepo schedule.Repository
	memberRepo   member.Repository
	waitlistRepo waitlist.Repository
	emailService *email.Service
	now          func() time.Time
}

func NewService(
	bookingRepo Repository,
	scheduleRepo schedule.Repository,
	memberRepo member.Repository,
	waitlistRepo waitlist.Repository,
	emailService *email.Service,
) Service {
	return &service{
		bookingRepo:  bookingRepo,
		scheduleRepo: scheduleRepo,
		memberRepo:   memberRepo,
		waitlistRepo: waitlistRepo,
		emailService: emailService,
		now:          time.Now,
	}
}

// BookClass decides among reject-duplicate, reject-no-entitlement,
// reject-past, waitlist and confirm. The precondition order is part of the
// contract: it determines which rejection a member sees when several apply.
func (s *service) BookClass(ctx context.Context, scheduleID, memberID string) (*BookResult, error) {
	hasBooking, err := s.bookingRepo.HasConfirmedBooking(ctx, memberID, scheduleID)
	if err != nil {
		return nil, err
	}
	if hasBooking {
		return nil, ErrAlreadyBooked
	}

	ms, err := s.memberRepo.GetActiveMembership(ctx, memberID)
	if err != nil {
		if errors.Is(err, member.ErrNoActiveMembership) {
			return nil, ErrNoMembership
		}
		return nil, err
	}
	if !ms.UnlimitedClasses && ms.CreditsRemaining() < 1 {
		return nil, ErrNoCredits
	}

	session, err := s.scheduleRepo.GetSessionByID(ctx, scheduleID)
	if err != nil {
		if errors.Is(err, schedule.ErrSessionNotFound) {
			return nil, ErrClassNotFound
		}
		return nil, err
	}
	if session.StartTime.Before(s.now()) {
		return nil, ErrClassStarted
	}

	creditsUsed := 1
	if ms.UnlimitedClasses {
		creditsUsed = 0
	}

	booking, err := s.bookingRepo.ConfirmBooking(ctx, memberID, scheduleID, ms.ID, creditsUsed)
	if err != nil {
		if errors.Is(err, ErrSessionFull) {
			return s.joinWaitlist(ctx, scheduleID, memberID)
		}
		if errors.Is(err, ErrInsufficientCredits) {
			// Credits ran out between the entitlement check and the spend.
			return nil, ErrNoCredits
		}
		return nil, err
	}

	metrics.RecordBooking(StatusConfirmed)

	if m, err := s.memberRepo.FindByID(ctx, memberID); err == nil {
		_ = s.emailService.SendBookingConfirmation(ctx, m.Email, m.Name, session.ClassName, session.StartTime)
	}

	return &BookResult{
		Status:    StatusConfirmed,
		Booking:   booking,
		ClassName: session.ClassName,
		StartTime: session.StartTime,
		Message:   fmt.Sprintf("You're booked for %s!", session.ClassName),
	}, nil
}

func (s *service) joinWaitlist(ctx context.Context, scheduleID, memberID string) (*BookResult, error) {
	entry, err := s.waitlistRepo.Join(ctx, scheduleID, memberID)
	if err != nil {
		return nil, err
	}

	metrics.RecordBooking(StatusWaitlisted)
	metrics.RecordWaitlistJoin()

	return &BookResult{
		Status:   StatusWaitlisted,
		Position: entry.Position,
		Message:  fmt.Sprintf("Class is full. You're #%d on the waitlist.", entry.Position),
	}, nil
}

// CancelBooking reverses the capacity and credit effects of a booking. The
// refund is granted only when the class is still at least CancellationWindow
// away and a credit was spent at booking time. Waitlist notification is
// best-effort and never fails the cancellation.
func (s *service) CancelBooking(ctx context.Context, bookingID, memberID, reason string) (*CancelResult, error) {
	// The repository returns ErrBookingNotFound for a missing row; any other
	// error is an infrastructure failure and must not read as a 404.
	booking, err := s.bookingRepo.GetBookingByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.MemberID != memberID {
		return nil, ErrBookingNotFound
	}
	if booking.Status == StatusCancelled {
		return nil, ErrAlreadyCancelled
	}

	session, err := s.scheduleRepo.GetSessionByID(ctx, booking.ScheduleID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if session.StartTime.Before(now) {
		return nil, ErrClassStarted
	}

	refundEligible := session.StartTime.Sub(now) >= CancellationWindow && booking.CreditsUsed > 0

	refunded, err := s.bookingRepo.CancelBooking(ctx, bookingID, booking.ScheduleID, memberID, reason, refundEligible, booking.CreditsUsed)
	if err != nil {
		if errors.Is(err, ErrBookingNotFoundOrAlreadyCancelled) {
			return nil, ErrAlreadyCancelled
		}
		return nil, err
	}

	metrics.RecordCancellation(refunded)

	if m, err := s.memberRepo.FindByID(ctx, memberID); err == nil {
		_ = s.emailService.SendCancellationConfirmation(ctx, m.Email, m.Name, session.ClassName, refunded)
	}

	s.notifyWaitlistHead(ctx, booking.ScheduleID, session.ClassName, session.StartTime)

	return &CancelResult{
		CreditRefunded: refunded,
		Message:        cancelMessage(refunded, refundEligible, booking.CreditsUsed),
	}, nil
}

// notifyWaitlistHead stamps the head of the queue and queues a spot-open
// email. Failures are logged and swallowed: the cancellation has already
// committed. Entries are not promoted or removed - the notified member books
// through the normal endpoint.
func (s *service) notifyWaitlistHead(ctx context.Context, scheduleID, className string, startTime time.Time) {
	entry, err := s.waitlistRepo.Head(ctx, scheduleID)
	if err != nil {
		logger.Error("Failed to read waitlist head", "schedule_id", scheduleID, "error", err)
		return
	}
	if entry == nil {
		return
	}

	if err := s.waitlistRepo.MarkNotified(ctx, entry.ID); err != nil {
		logger.Error("Failed to mark waitlist entry notified", "entry_id", entry.ID, "error", err)
		return
	}

	metrics.RecordWaitlistNotification()

	if m, err := s.memberRepo.FindByID(ctx, entry.MemberID); err == nil {
		_ = s.emailService.SendSpotOpened(ctx, m.Email, m.Name, className, startTime)
	}
}

func cancelMessage(refunded, refundEligible bool, creditsUsed int) string {
	switch {
	case refunded:
		return "Booking cancelled. Your credit has been refunded."
	case refundEligible && creditsUsed > 0:
		// Eligible but nothing to credit back, e.g. the membership the
		// credit came from has since lapsed or been replaced.
		return "Booking cancelled. No credit was refunded."
	case creditsUsed > 0:
		return "Booking cancelled. Cancellations within 2 hours of class start are not refunded."
	default:
		return "Booking cancelled."
	}
}

func (s *service) GetMemberBookings(ctx context.Context, memberID string) ([]BookingWithSession, error) {
	return s.bookingRepo.GetMemberBookings(ctx, memberID)
}

func (s *service) GetBookingsBySession(ctx context.Context, scheduleID string) ([]BookingWithSession, error) {
	return s.bookingRepo.GetBookingsBySession(ctx, scheduleID)
}
