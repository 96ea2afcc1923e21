package booking

import "context"

type Repository interface {
	ConfirmBooking(ctx context.Context, memberID, scheduleID, membershipID string, creditsUsed int) (*Booking, error)
	CancelBooking(ctx context.Context, bookingID, scheduleID, memberID, reason string, refundEligible bool, creditsUsed int) (bool, error)
	GetBookingByID(ctx context.Context, id string) (*Booking, error)
	HasConfirmedBooking(ctx context.Context, memberID, scheduleID string) (bool, error)
	GetMemberBookings(ctx context.Context, memberID string) ([]BookingWithSession, error)
	GetBookingsBySession(ctx context.Context, scheduleID string) ([]BookingWithSession, error)
}
