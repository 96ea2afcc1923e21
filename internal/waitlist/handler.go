package waitlist

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	repo Repository
}

func NewHandler(repo Repository) *Handler {
	return &Handler{repo: repo}
}

// ListBySession godoc
// @Summary      List waitlist for a session
// @Description  Returns waitlist entries in position order. Admin only.
// @Tags         waitlist
// @Security     BearerAuth
// @Produce      json
// @Param        sessionID  path      string  true  "Class session ID"
// @Success      200        {array}   Entry
// @Failure      500        {object}  gin.H
// @Router       /admin/sessions/{sessionID}/waitlist [get]
func (h *Handler) ListBySession(c *gin.Context) {
	entries, err := h.repo.ListBySession(c.Request.Context(), c.Param("sessionID"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch waitlist"})
		return
	}

	c.JSON(http.StatusOK, entries)
}
