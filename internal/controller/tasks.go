package controller

import (
	"context"
	"net/http"
	"strings"
	"time"

	"checklist-api/internal/apperr"
	"checklist-api/internal/cache"
	"checklist-api/internal/models"

	"github.com/gin-gonic/gin"
)

func (h *Handler) CreateTask(c *gin.Context) {
	ctx := c.Request.Context()
	var body struct {
		ChecklistID   string     `json:"checklist_id" binding:"required"`
		ParentID      *string    `json:"parent_id"`
		Title         string     `json:"title" binding:"required"`
		Description   *string    `json:"description"`
		OrderNumber   int        `json:"order_number"`
		StartTime     *time.Time `json:"start_time"`
		EndTime       *time.Time `json:"end_time"`
		AllocatedTime *int       `json:"allocated_time"`
		IsCompleted   bool       `json:"is_completed"`
	}
	if err := bindJSON(c, &body); err != nil {
		respondError(c, err)
		return
	}
	t := &models.Task{
		ChecklistID:   body.ChecklistID,
		ParentID:      body.ParentID,
		Title:         strings.TrimSpace(body.Title),
		Description:   body.Description,
		OrderNumber:   body.OrderNumber,
		StartTime:     body.StartTime,
		EndTime:       body.EndTime,
		AllocatedTime: body.AllocatedTime,
		IsCompleted:   body.IsCompleted,
	}
	if err := validateTask(t); err != nil {
		respondError(c, err)
		return
	}
	if _, err := h.Checklists.Get(ctx, t.ChecklistID); err != nil {
		respondError(c, err)
		return
	}
	if t.ParentID != nil {
		if err := h.checkParent(ctx, t.ChecklistID, "", *t.ParentID); err != nil {
			respondError(c, err)
			return
		}
	}
	if err := h.Tasks.Create(ctx, t); err != nil {
		respondError(c, err)
		return
	}
	h.Cache.Invalidate(ctx, cache.TasksKey(t.ChecklistID))
	c.JSON(http.StatusCreated, t)
}

// ListTasks returns a checklist's tasks ordered by order_number.
func (h *Handler) ListTasks(c *gin.Context) {
	checklistID := c.Param("id")
	h.serveList(c, cache.TasksKey(checklistID), func(ctx context.Context) (any, error) {
		return h.Tasks.ListByChecklist(ctx, checklistID)
	})
}

// UpdateTask applies only the fields present in the body. Nullable fields
// sent as null are cleared.
func (h *Handler) UpdateTask(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")
	var patch models.TaskPatch
	if err := bindJSON(c, &patch); err != nil {
		respondError(c, err)
		return
	}
	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			respondError(c, apperr.Validation("title must not be empty"))
			return
		}
		patch.Title = &title
	}
	if patch.AllocatedTime.Value != nil && *patch.AllocatedTime.Value < 0 {
		respondError(c, apperr.Validation("allocated_time must not be negative"))
		return
	}
	if patch.AllocatedTime.Value != nil && *patch.AllocatedTime.Value > models.MaxInteger {
		respondError(c, apperr.Validation("allocated_time is too large"))
		return
	}
	if patch.OrderNumber != nil && outOfIntegerRange(*patch.OrderNumber) {
		respondError(c, apperr.Validation("order_number is out of range"))
		return
	}
	current, err := h.Tasks.Get(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}
	merged := *current
	if patch.StartTime.Set {
		merged.StartTime = patch.StartTime.Value
	}
	if patch.EndTime.Set {
		merged.EndTime = patch.EndTime.Value
	}
	if err := validateTask(&merged); err != nil {
		respondError(c, err)
		return
	}
	if patch.ParentID.Value != nil {
		if err := h.checkParent(ctx, current.ChecklistID, id, *patch.ParentID.Value); err != nil {
			respondError(c, err)
			return
		}
	}
	t, err := h.Tasks.Update(ctx, id, patch)
	if err != nil {
		respondError(c, err)
		return
	}
	h.Cache.Invalidate(ctx, cache.TasksKey(t.ChecklistID))
	c.JSON(http.StatusOK, t)
}

// DeleteTask removes one task. Its children keep their parent_id.
func (h *Handler) DeleteTask(c *gin.Context) {
	ctx := c.Request.Context()
	t, err := h.Tasks.Get(ctx, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if err := h.Tasks.Delete(ctx, t.ID); err != nil {
		respondError(c, err)
		return
	}
	h.Cache.Invalidate(ctx, cache.TasksKey(t.ChecklistID))
	c.Status(http.StatusNoContent)
}

func validateTask(t *models.Task) error {
	if t.Title == "" {
		return apperr.Validation("title is required")
	}
	if t.AllocatedTime != nil && *t.AllocatedTime < 0 {
		return apperr.Validation("allocated_time must not be negative")
	}
	if t.AllocatedTime != nil && *t.AllocatedTime > models.MaxInteger {
		return apperr.Validation("allocated_time is too large")
	}
	if outOfIntegerRange(t.OrderNumber) {
		return apperr.Validation("order_number is out of range")
	}
	if t.StartTime != nil && t.EndTime != nil && t.EndTime.Before(*t.StartTime) {
		return apperr.Validation("end_time must not be before start_time")
	}
	return nil
}

func outOfIntegerRange(n int) bool {
	return n > models.MaxInteger || n < -models.MaxInteger-1
}

// checkParent verifies that parentID is a task of checklistID and that making
// it the parent of taskID (empty for a new task) would not create a cycle.
func (h *Handler) checkParent(ctx context.Context, checklistID, taskID, parentID string) error {
	if parentID == "" {
		return apperr.Validation("parent task not found")
	}
	if parentID == taskID {
		return apperr.Validation("task cannot be its own parent")
	}
	parent, err := h.Tasks.Get(ctx, parentID)
	if apperr.Is(err, apperr.KindNotFound) {
		return apperr.Validation("parent task not found")
	}
	if err != nil {
		return err
	}
	if parent.ChecklistID != checklistID {
		return apperr.Validation("parent task belongs to another checklist")
	}
	if taskID == "" {
		return nil
	}
	tasks, err := h.Tasks.ListByCreation(ctx, checklistID)
	if err != nil {
		return err
	}
	parents := make(map[string]string, len(tasks))
	for _, t := range tasks {
		if t.ParentID != nil {
			parents[t.ID] = *t.ParentID
		}
	}
	seen := map[string]bool{}
	for cur := parentID; cur != "" && !seen[cur]; cur = parents[cur] {
		if cur == taskID {
			return apperr.Validation("parent would create a cycle")
		}
		seen[cur] = true
	}
	return nil
}
