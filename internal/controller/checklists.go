package controller

import (
	"context"
	"net/http"
	"strings"

	"checklist-api/internal/apperr"
	"checklist-api/internal/cache"
	"checklist-api/internal/models"

	"github.com/gin-gonic/gin"
)

func (h *Handler) CreateChecklist(c *gin.Context) {
	ctx := c.Request.Context()
	var body struct {
		ProfileID string `json:"profile_id" binding:"required"`
		Title     string `json:"title" binding:"required"`
	}
	if err := bindJSON(c, &body); err != nil {
		respondError(c, err)
		return
	}
	if _, err := h.Profiles.Get(ctx, body.ProfileID); err != nil {
		respondError(c, err)
		return
	}
	cl := &models.Checklist{ProfileID: body.ProfileID, Title: strings.TrimSpace(body.Title)}
	if cl.Title == "" {
		respondError(c, apperr.Validation("title is required"))
		return
	}
	if err := h.Checklists.Create(ctx, cl); err != nil {
		respondError(c, err)
		return
	}
	h.Cache.Invalidate(ctx, cache.ChecklistsKey(cl.ProfileID))
	c.JSON(http.StatusCreated, cl)
}

// ListChecklists returns the checklists owned by the profile in the path.
func (h *Handler) ListChecklists(c *gin.Context) {
	profileID := c.Param("id")
	h.serveList(c, cache.ChecklistsKey(profileID), func(ctx context.Context) (any, error) {
		return h.Checklists.ListByOwner(ctx, profileID)
	})
}

func (h *Handler) GetChecklist(c *gin.Context) {
	cl, err := h.Checklists.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cl)
}

func (h *Handler) UpdateChecklist(c *gin.Context) {
	ctx := c.Request.Context()
	var body struct {
		Title string `json:"title" binding:"required"`
	}
	if err := bindJSON(c, &body); err != nil {
		respondError(c, err)
		return
	}
	title := strings.TrimSpace(body.Title)
	if title == "" {
		respondError(c, apperr.Validation("title is required"))
		return
	}
	cl, err := h.Checklists.UpdateTitle(ctx, c.Param("id"), title)
	if err != nil {
		respondError(c, err)
		return
	}
	h.Cache.Invalidate(ctx, cache.ChecklistsKey(cl.ProfileID))
	c.JSON(http.StatusOK, cl)
}

func (h *Handler) DeleteChecklist(c *gin.Context) {
	ctx := c.Request.Context()
	cl, err := h.Checklists.Get(ctx, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	h.deleteChecklist(c, cl)
}

// DeleteChecklistVerified deletes a checklist only after re-checking the
// owner's password. A profile_id other than the owner is refused.
func (h *Handler) DeleteChecklistVerified(c *gin.Context) {
	ctx := c.Request.Context()
	var body struct {
		ProfileID string `json:"profile_id"`
		Password  string `json:"password" binding:"required"`
	}
	if err := bindJSON(c, &body); err != nil {
		respondError(c, err)
		return
	}
	cl, err := h.Checklists.Get(ctx, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if body.ProfileID != "" && body.ProfileID != cl.ProfileID {
		respondError(c, apperr.Auth("profile does not own this checklist"))
		return
	}
	owner, err := h.Profiles.Get(ctx, cl.ProfileID)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := checkPassword(owner, body.Password); err != nil {
		respondError(c, err)
		return
	}
	h.deleteChecklist(c, cl)
}

// deleteChecklist removes the checklist row; its tasks are left in place.
func (h *Handler) deleteChecklist(c *gin.Context, cl *models.Checklist) {
	ctx := c.Request.Context()
	if err := h.Checklists.Delete(ctx, cl.ID); err != nil {
		respondError(c, err)
		return
	}
	h.Cache.Invalidate(ctx, cache.ChecklistsKey(cl.ProfileID), cache.TasksKey(cl.ID))
	c.Status(http.StatusNoContent)
}
