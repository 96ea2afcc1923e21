package booking

import (
	"errors"
	"net/http"
	"time"

	"movestrong/internal/auth"
	"movestrong/internal/logger"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// BookClass godoc
// @Summary      Book a class
// @Description  Books a spot in a class session or joins the waitlist when full.
// @Tags         bookings
// @Accept       json
// @Produce      json
// @Param        request  body      BookClassRequest  true  "Booking request"
// @Success      200      {object}  BookClassResponse
// @Failure      400      {object}  gin.H
// @Failure      404      {object}  gin.H
// @Failure      500      {object}  gin.H
// @Router       /book-class [post]
func (h *Handler) BookClass(c *gin.Context) {
	var req BookClassRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.ScheduleID == "" || req.UserID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields: scheduleId and userId are required"})
		return
	}

	result, err := h.service.BookClass(c.Request.Context(), req.ScheduleID, req.UserID)
	if err != nil {
		switch {
		case errors.Is(err, ErrAlreadyBooked):
			c.JSON(http.StatusBadRequest, gin.H{"error": "You already have a booking for this class"})
		case errors.Is(err, ErrNoMembership):
			c.JSON(http.StatusBadRequest, gin.H{"error": "No active membership found. Please purchase a membership to book classes."})
		case errors.Is(err, ErrNoCredits):
			c.JSON(http.StatusBadRequest, gin.H{"error": "No class credits remaining. Please renew your membership."})
		case errors.Is(err, ErrClassNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Class not found"})
		case errors.Is(err, ErrClassStarted):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot book a class that has already started"})
		default:
			logger.Error("Failed to book class", "schedule_id", req.ScheduleID, "member_id", req.UserID, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to book class"})
		}
		return
	}

	if result.Status == StatusWaitlisted {
		c.JSON(http.StatusOK, BookClassResponse{
			Status:   StatusWaitlisted,
			Position: result.Position,
			Message:  result.Message,
		})
		return
	}

	c.JSON(http.StatusOK, BookClassResponse{
		Status:    StatusConfirmed,
		Booking:   result.Booking,
		Message:   result.Message,
		ClassName: result.ClassName,
		StartTime: result.StartTime.Format(time.RFC3339),
	})
}

// CancelBooking godoc
// @Summary      Cancel a booking
// @Description  Cancels a booking, refunding the credit when outside the cancellation window.
// @Tags         bookings
// @Accept       json
// @Produce      json
// @Param        request  body      CancelBookingRequest  true  "Cancellation request"
// @Success      200      {object}  CancelBookingResponse
// @Failure      400      {object}  gin.H
// @Failure      404      {object}  gin.H
// @Failure      500      {object}  gin.H
// @Router       /cancel-booking [post]
func (h *Handler) CancelBooking(c *gin.Context) {
	var req CancelBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.BookingID == "" || req.UserID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields: bookingId and userId are required"})
		return
	}

	result, err := h.service.CancelBooking(c.Request.Context(), req.BookingID, req.UserID, req.Reason)
	if err != nil {
		switch {
		case errors.Is(err, ErrBookingNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Booking not found"})
		case errors.Is(err, ErrAlreadyCancelled):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Booking is already cancelled"})
		case errors.Is(err, ErrClassStarted):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot cancel a class that has already started"})
		default:
			logger.Error("Failed to cancel booking", "booking_id", req.BookingID, "member_id", req.UserID, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to cancel booking"})
		}
		return
	}

	c.JSON(http.StatusOK, CancelBookingResponse{
		Success:        true,
		CreditRefunded: result.CreditRefunded,
		Message:        result.Message,
	})
}

// ListMyBookings godoc
// @Summary      List my bookings
// @Description  Returns bookings of the authenticated member with session details.
// @Tags         bookings
// @Security     BearerAuth
// @Produce      json
// @Success      200  {array}   BookingWithSession
// @Failure      401  {object}  gin.H
// @Failure      500  {object}  gin.H
// @Router       /my/bookings [get]
func (h *Handler) ListMyBookings(c *gin.Context) {
	memberID, exists := auth.GetMemberID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Member not authenticated"})
		return
	}

	bookings, err := h.service.GetMemberBookings(c.Request.Context(), memberID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch bookings"})
		return
	}

	c.JSON(http.StatusOK, bookings)
}

// ListBookingsBySession godoc
// @Summary      List bookings for a session
// @Description  Returns the roster for a class session. Admin only.
// @Tags         bookings
// @Security     BearerAuth
// @Produce      json
// @Param        sessionID  path      string  true  "Class session ID"
// @Success      200        {array}   BookingWithSession
// @Failure      500        {object}  gin.H
// @Router       /admin/sessions/{sessionID}/bookings [get]
func (h *Handler) ListBookingsBySession(c *gin.Context) {
	bookings, err := h.service.GetBookingsBySession(c.Request.Context(), c.Param("sessionID"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch bookings"})
		return
	}

	c.JSON(http.StatusOK, bookings)
}
