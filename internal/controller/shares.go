package controller

import (
	"context"
	"net/http"

	"checklist-api/internal/cache"
	"checklist-api/internal/share"

	"github.com/gin-gonic/gin"
)

// CreateShareRequest offers a checklist to the profile with receiver_name.
func (h *Handler) CreateShareRequest(c *gin.Context) {
	var body struct {
		ChecklistID  string `json:"checklist_id" binding:"required"`
		SenderID     string `json:"sender_id" binding:"required"`
		ReceiverName string `json:"receiver_name" binding:"required"`
	}
	if err := bindJSON(c, &body); err != nil {
		respondError(c, err)
		return
	}
	req, err := h.Shares.Create(c.Request.Context(), body.ChecklistID, body.SenderID, body.ReceiverName)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, req)
}

func (h *Handler) ListPendingShares(c *gin.Context) {
	pending, err := h.Shares.ListPending(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, pending)
}

// RespondShareRequest accepts or rejects a pending request. Accepting clones
// the checklist into the receiver's account.
func (h *Handler) RespondShareRequest(c *gin.Context) {
	ctx := c.Request.Context()
	var body struct {
		Action    string `json:"action" binding:"required"`
		ProfileID string `json:"profile_id"`
	}
	if err := bindJSON(c, &body); err != nil {
		respondError(c, err)
		return
	}
	action, err := share.ParseAction(body.Action)
	if err != nil {
		respondError(c, err)
		return
	}
	out, err := h.Shares.Respond(ctx, c.Param("id"), body.ProfileID, action)
	if err != nil {
		respondError(c, err)
		return
	}
	if out.Checklist != nil {
		h.Cache.Invalidate(context.WithoutCancel(ctx), cache.ChecklistsKey(out.Checklist.ProfileID))
	}
	c.JSON(http.StatusOK, out)
}
