package controller

import (
	"net/http"
	"time"

	"checklist-api/internal/apperr"
	"checklist-api/internal/models"
	"checklist-api/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AppendTimerLog records elapsed time on a checklist. With a publisher the
// write is queued and the answer is 202 with the pre-assigned id.
func (h *Handler) AppendTimerLog(c *gin.Context) {
	ctx := c.Request.Context()
	checklistID := c.Param("id")
	var body struct {
		ElapsedSeconds *int `json:"elapsed_seconds" binding:"required"`
	}
	if err := bindJSON(c, &body); err != nil {
		respondError(c, err)
		return
	}
	if *body.ElapsedSeconds < 0 {
		respondError(c, apperr.Validation("elapsed_seconds must not be negative"))
		return
	}
	if *body.ElapsedSeconds > models.MaxInteger {
		respondError(c, apperr.Validation("elapsed_seconds is too large"))
		return
	}
	if _, err := h.Checklists.Get(ctx, checklistID); err != nil {
		respondError(c, err)
		return
	}

	if h.Publisher != nil {
		cmd := &models.TimerLogCommand{
			ID:             uuid.New().String(),
			ChecklistID:    checklistID,
			ElapsedSeconds: *body.ElapsedSeconds,
			RequestedAt:    time.Now(),
		}
		if err := h.Publisher.PublishTimerLog(ctx, cmd); err != nil {
			logger.Error(ctx, "AppendTimerLog publish failed", "error", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "timer log could not be queued"})
			return
		}
		c.JSON(http.StatusAccepted, gin.H{"id": cmd.ID, "message": "timer log queued"})
		return
	}

	l := &models.TimerLog{ChecklistID: checklistID, ElapsedSeconds: *body.ElapsedSeconds}
	if err := h.TimerLogs.Append(ctx, l); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, l)
}

// ListTimerLogs returns a checklist's timer logs, newest first.
func (h *Handler) ListTimerLogs(c *gin.Context) {
	logs, err := h.TimerLogs.ListByChecklist(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, logs)
}
