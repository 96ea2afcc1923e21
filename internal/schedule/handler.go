package schedule

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// ListSchedule godoc
// @Summary      List upcoming class sessions
// @Description  Returns upcoming sessions with remaining availability.
// @Tags         schedule
// @Produce      json
// @Success      200  {array}   SessionWithAvailability
// @Failure      500  {object}  gin.H
// @Router       /schedule [get]
func (h *Handler) ListSchedule(c *gin.Context) {
	sessions, err := h.service.ListUpcoming(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch schedule"})
		return
	}

	c.JSON(http.StatusOK, sessions)
}

// CreateSession godoc
// @Summary      Create class session
// @Description  Creates a scheduled class occurrence. Admin only.
// @Tags         schedule
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request  body      CreateSessionRequest  true  "Session data"
// @Success      201      {object}  ClassSession
// @Failure      400      {object}  gin.H
// @Failure      500      {object}  gin.H
// @Router       /admin/sessions [post]
func (h *Handler) CreateSession(c *gin.Context) {
	var req CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session, err := h.service.CreateSession(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, ErrSessionInvalid) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid session: times must be RFC3339 with end after start, capacity at least 1"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create session"})
		return
	}

	c.JSON(http.StatusCreated, session)
}

// ReconcileSession godoc
// @Summary      Reconcile booked count
// @Description  Compares the cached booked count with the live confirmed-booking count. Admin only.
// @Tags         schedule
// @Security     BearerAuth
// @Produce      json
// @Param        sessionID  path      string  true  "Class session ID"
// @Success      200        {object}  Reconciliation
// @Failure      404        {object}  gin.H
// @Failure      500        {object}  gin.H
// @Router       /admin/sessions/{sessionID}/reconcile [get]
func (h *Handler) ReconcileSession(c *gin.Context) {
	rec, err := h.service.Reconcile(c.Request.Context(), c.Param("sessionID"))
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Class session not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reconcile session"})
		return
	}

	c.JSON(http.StatusOK, rec)
}
